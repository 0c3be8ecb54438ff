package cmd

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpupo63/mycms/database"
	"github.com/rpupo63/mycms/errs"
)

// setupEnv points the commands at a fresh SQLite file
func setupEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DB_TYPE", "sqlite")
	t.Setenv("SQLITE_PATH", filepath.Join(t.TempDir(), "cms.db"))
	t.Setenv("LOG_LEVEL", "disabled")
	t.Setenv("MYCMS_PASSWORD", "")
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCommands_Registered(t *testing.T) {
	root := NewRootCommand()

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"serve", "migrate", "createuser", "deleteuser", "generate"} {
		assert.Contains(t, names, want)
	}
}

func TestUserCommands(t *testing.T) {
	setupEnv(t)

	_, err := runCommand(t, "migrate")
	require.NoError(t, err)

	out, err := runCommand(t, "createuser", "--username", "alice", "--password", "ijqs9283bfu")
	require.NoError(t, err)
	assert.Contains(t, out, "created user alice")

	_, err = runCommand(t, "createuser", "--username", "alice", "--password", "ijqs9283bfu")
	assert.ErrorIs(t, err, errs.ErrAlreadyExists)

	out, err = runCommand(t, "deleteuser", "--username", "alice")
	require.NoError(t, err)
	assert.Contains(t, out, "deleted user alice")

	_, err = runCommand(t, "deleteuser", "--username", "alice")
	assert.True(t, errs.IsNotFound(err))
}

func TestCreateUser_PasswordFromEnv(t *testing.T) {
	setupEnv(t)
	t.Setenv("MYCMS_PASSWORD", "ijqs9283bfu")

	_, err := runCommand(t, "migrate")
	require.NoError(t, err)

	_, err = runCommand(t, "createuser", "--username", "bob")
	assert.NoError(t, err)
}

func TestCreateUser_Validation(t *testing.T) {
	setupEnv(t)

	_, err := runCommand(t, "createuser", "--username", "dan!", "--password", "ijqs9283bfu")
	assert.ErrorContains(t, err, "username")

	_, err = runCommand(t, "createuser", "--username", "dan", "--password", "12345")
	assert.ErrorContains(t, err, "password")

	_, err = runCommand(t, "createuser", "--password", "ijqs9283bfu")
	assert.Error(t, err)
}

func TestGenerate_ReportOnly(t *testing.T) {
	setupEnv(t)

	_, err := runCommand(t, "migrate")
	require.NoError(t, err)

	out, err := runCommand(t, "generate", "--report-only")
	require.NoError(t, err)
	assert.Contains(t, out, "=== COLUMN MISMATCH REPORT ===")
	assert.Contains(t, out, "--- Table: blog_posts ---")
	assert.Contains(t, out, "Total mismatched columns across all tables: 0")
}

func TestMigrate_UnsupportedDatabase(t *testing.T) {
	setupEnv(t)
	t.Setenv("DB_TYPE", "oracle")

	_, err := runCommand(t, "migrate")

	assert.ErrorContains(t, err, "DB_TYPE")
	assert.ErrorIs(t, err, database.ErrUnsupportedDBType)
}
