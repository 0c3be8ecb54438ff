package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"

	"github.com/rpupo63/mycms/config"
	"github.com/rpupo63/mycms/models"
)

// setupTestDatabase opens a migrated SQLite database in a temp dir.
func setupTestDatabase(t *testing.T) Database {
	t.Helper()

	db, err := Open(Settings{
		Type:       TypeSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "test.db"),
		LogLevel:   logger.Silent,
	})
	require.NoError(t, err)

	d := New(db)
	require.NoError(t, d.Migrate(context.Background()))
	t.Cleanup(func() { _ = d.Close() })
	return d
}

// steppingClock returns a clock that moves forward one microsecond per call
func steppingClock(start time.Time) func() time.Time {
	current := start
	return func() time.Time {
		current = current.Add(time.Microsecond)
		return current
	}
}

func createUser(t *testing.T, d Database, username string) *models.User {
	t.Helper()
	user := &models.User{Username: username}
	require.NoError(t, user.SetPassword("secretpassword"))
	require.NoError(t, d.UserRepo().Add(context.Background(), user))
	return user
}

func TestSettingsFromConfig(t *testing.T) {
	s := SettingsFromConfig(config.Config{
		"DB_TYPE":     "supa",
		"DB_HOST":     "db.internal",
		"DB_PASSWORD": "pw",
	})
	require.Equal(t, TypePostgres, s.Type)
	require.Equal(t, "host=db.internal user=postgres password=pw dbname=mycms port=5432 sslmode=disable", s.DSN)
	require.Equal(t, logger.Warn, s.LogLevel)

	s = SettingsFromConfig(config.Config{
		"DB_TYPE":      "sqlite",
		"DATABASE_URL": "postgres://ignored",
		"SQLITE_PATH":  "/tmp/cms.db",
		"DB_DEBUG":     "true",
	})
	require.Equal(t, TypeSQLite, s.Type)
	require.Equal(t, "postgres://ignored", s.DSN)
	require.Equal(t, "/tmp/cms.db", s.SQLitePath)
	require.Equal(t, logger.Info, s.LogLevel)
}

func TestOpen_UnsupportedType(t *testing.T) {
	_, err := Open(Settings{Type: "oracle"})
	require.ErrorIs(t, err, ErrUnsupportedDBType)
	assert.ErrorContains(t, err, `"oracle"`)
}

func TestDatabase_Ping(t *testing.T) {
	d := setupTestDatabase(t)
	require.NoError(t, d.Ping(context.Background()))
}
