package models

// Room is an exam location. Rooms are read-only during a generation run.
type Room struct {
	ID       string `db:"id" json:"id"`
	Name     string `db:"name" json:"name"`
	Capacity int    `db:"capacity" json:"capacity"`
	Type     string `db:"type" json:"type"`
}
