package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lrwpan/lrwpan-go/internal/cli"
	"github.com/lrwpan/lrwpan-go/pkg/config"
	"github.com/lrwpan/lrwpan-go/pkg/radio/sim"
)

func TestLoadConfigFlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wpan.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: warn\nstate_file: a.json\n"), 0o600))

	cfg, err := loadConfig(options{ConfigFile: path, StateFile: "b.json"})
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "b.json", cfg.StateFile)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := loadConfig(options{ConfigFile: filepath.Join(t.TempDir(), "missing.yaml")})
	var loadErr *config.LoadError
	assert.ErrorAs(t, err, &loadErr)
}

func TestOpenDriverDefaultsToSimulation(t *testing.T) {
	cfg := config.Default()
	logger, err := newTestLogger()
	require.NoError(t, err)

	driver, closeDriver, err := openDriver(context.Background(), cfg, cfg.ManagerConfig(), logger)
	require.NoError(t, err)
	defer closeDriver()
	assert.IsType(t, &sim.Radio{}, driver)
}

func newTestLogger() (*slog.Logger, error) {
	return cli.NewLogger(io.Discard, "error")
}
