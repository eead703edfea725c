package database

import (
	"io"
	"testing"

	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/unischedule-api/pkg/config"
)

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	source, err := iofs.New(migrationsFS, "migrations")
	require.NoError(t, err)
	defer source.Close()

	first, err := source.First()
	require.NoError(t, err)
	assert.Equal(t, uint(1), first)

	up, _, err := source.ReadUp(first)
	require.NoError(t, err)
	upSQL, err := io.ReadAll(up)
	require.NoError(t, err)
	assert.Contains(t, string(upSQL), "CREATE TABLE")
	assert.Contains(t, string(upSQL), "exams")

	down, _, err := source.ReadDown(first)
	require.NoError(t, err)
	downSQL, err := io.ReadAll(down)
	require.NoError(t, err)
	assert.Contains(t, string(downSQL), "DROP TABLE")
}

func TestDSN(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", Name: "unischedule", SSLMode: "disable"})
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=unischedule sslmode=disable", dsn)
}
