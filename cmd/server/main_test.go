package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dbPath string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `server:
  host: "127.0.0.1"
  port: 8080
  mode: "test"
database:
  driver: "sqlite"
  sqlite:
    path: "` + filepath.ToSlash(dbPath) + `"
log:
  level: "error"
  format: "text"
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))
	return path
}

func TestMigrateCommand(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	dbPath := filepath.Join(t.TempDir(), "cli.db")
	cmd := newRootCommand(context.Background())
	cmd.SetArgs([]string{"migrate", "--config", writeConfig(t, dbPath)})

	require.NoError(t, cmd.Execute())
	_, err := os.Stat(dbPath)
	assert.NoError(t, err)
}

func TestMigrateCommand_MissingConfig(t *testing.T) {
	cmd := newRootCommand(context.Background())
	cmd.SetArgs([]string{"migrate", "-c", filepath.Join(t.TempDir(), "absent.yaml")})

	err := cmd.Execute()
	assert.ErrorContains(t, err, "failed to load config")
}

func TestRootCommand_Subcommands(t *testing.T) {
	cmd := newRootCommand(context.Background())

	for _, name := range []string{"serve", "migrate"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, sub.Name())
	}
}
