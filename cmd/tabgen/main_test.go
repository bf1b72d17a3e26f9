package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tabgen/internal/config"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer

	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()

	return out.String(), err
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer

	l, err := newLogger(config.LoggingConfig{Level: "warn", Format: "json"}, &buf)
	require.NoError(t, err)

	l.Info().Msg("hidden")
	l.Warn().Str("k", "v").Msg("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"k":"v"`)
	assert.Equal(t, zerolog.WarnLevel, l.GetLevel())

	_, err = newLogger(config.LoggingConfig{Level: "loud"}, &buf)
	require.Error(t, err)

	_, err = newLogger(config.LoggingConfig{Level: "info", Format: "xml"}, &buf)
	require.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "tabgen dev")
}

func TestInitCheckBuild(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "tabgen.yaml")

	_, err := execute(t, "init", "--config", cfgPath)
	require.NoError(t, err)

	_, err = execute(t, "init", "--config", cfgPath)
	require.Error(t, err)

	sheets := filepath.Join(dir, "sheets")
	require.NoError(t, os.MkdirAll(sheets, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(sheets, "item.csv"), []byte("id,name\nint,string\n,\n1,sword\n"), 0o644))

	out, err := execute(t, "check", "--config", cfgPath, "--log-level", "error", sheets)
	require.NoError(t, err)
	assert.Contains(t, out, "item (2 fields, 1 rows)")

	outDir := filepath.Join(dir, "gen")

	out, err = execute(t, "build", "--config", cfgPath, "--log-level", "error",
		"--format", "json,yaml", "--out", outDir, sheets)
	require.NoError(t, err)
	assert.Contains(t, out, "1 sheets built, 2 files changed")

	assert.FileExists(t, filepath.Join(outDir, "item.json"))
	assert.FileExists(t, filepath.Join(outDir, "item.schema.yaml"))

	_, err = execute(t, "build", "--config", cfgPath, "--dialect", "cpp", sheets)
	require.Error(t, err)
}
