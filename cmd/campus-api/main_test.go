package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := fmt.Sprintf("env: \"prod\"\nstorage_path: %q\nhttp_server:\n  address: \"localhost:0\"\n",
		filepath.Join(dir, "campus.db"))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestMigrateCommands(t *testing.T) {
	cfg := writeConfig(t)

	out, err := execute(t, "migrate", "status", "--config", cfg)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out, "pending"), out)

	_, err = execute(t, "migrate", "up", "--config", cfg)
	require.NoError(t, err)

	out, err = execute(t, "migrate", "status", "--config", cfg)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out, "applied"), out)

	_, err = execute(t, "migrate", "down", "--config", cfg)
	require.NoError(t, err)

	out, err = execute(t, "migrate", "status", "--config", cfg)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(out, "applied"), out)
	assert.Contains(t, out, "00002_create_projects.sql")
}

func TestMissingConfig(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")

	_, err := execute(t, "migrate", "status")
	assert.ErrorContains(t, err, "config path is not set")
}
