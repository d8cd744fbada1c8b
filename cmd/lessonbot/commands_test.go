package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1babii1/lessonsBot/core/buildinfo"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		configPath = ""
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, buildinfo.String()+"\n", out)
}

func TestMigrateCommandSQLite(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	dbPath := filepath.Join(dir, "lessons.db")
	require.NoError(t, os.WriteFile(cfgPath, []byte("database:\n  path: "+dbPath+"\n"), 0o600))
	t.Setenv("LESSONS_BACKEND", "sqlite")
	t.Setenv("DB_PATH", "")
	os.Unsetenv("DB_PATH")

	out, err := execute(t, "migrate", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "schema version 0 -> 1")

	_, err = os.Stat(dbPath)
	require.NoError(t, err)
}

func TestRootRequiresToken(t *testing.T) {
	t.Setenv("BOT_TOKEN", "")
	os.Unsetenv("BOT_TOKEN")
	t.Setenv("CONFIG_PATH", "")

	_, err := execute(t)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config")
}
