package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ball-perceptor/internal/config"
)

func TestDumpConfig(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "robot.yaml")
	require.NoError(t, os.WriteFile(src, []byte("ball:\n  min_contrast: 55\n"), 0o644))

	out := filepath.Join(dir, "full.yaml")
	require.NoError(t, dumpConfig(src, out))

	loaded, err := config.Load(out)
	require.NoError(t, err)
	want := config.Default()
	want.Ball.MinContrast = 55
	assert.Equal(t, want.Ball, loaded.Ball)
	assert.Equal(t, want.Camera, loaded.Camera)
}

func TestDumpConfig_MissingSource(t *testing.T) {
	dir := t.TempDir()
	err := dumpConfig(filepath.Join(dir, "missing.yaml"), filepath.Join(dir, "out.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
