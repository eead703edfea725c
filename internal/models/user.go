package models

import "time"

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleAdmin          UserRole = "ADMIN"
	RoleViceDean       UserRole = "VICE_DEAN"
	RoleDepartmentHead UserRole = "DEPARTMENT_HEAD"
	RoleProfessor      UserRole = "PROFESSOR"
	RoleStudent        UserRole = "STUDENT"
)

// Valid reports whether the role is one the API knows about.
func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleViceDean, RoleDepartmentHead, RoleProfessor, RoleStudent:
		return true
	}
	return false
}

// User represents an application user stored in the users table.
type User struct {
	ID           string     `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	FullName     string     `db:"full_name" json:"full_name"`
	Role         UserRole   `db:"role" json:"role"`
	DepartmentID *string    `db:"department_id" json:"department_id,omitempty"`
	FormationID  *string    `db:"formation_id" json:"formation_id,omitempty"`
	ProfessorID  *string    `db:"professor_id" json:"professor_id,omitempty"`
	Active       bool       `db:"active" json:"active"`
	LastLogin    *time.Time `db:"last_login" json:"last_login,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}
