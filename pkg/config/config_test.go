package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, ":8081", cfg.HTTPAddr)
	assert.True(t, cfg.DBAutoMigrate)
	assert.Equal(t, "eng+ind", cfg.OCR.Lang)
	assert.Equal(t, 300, cfg.OCR.DPI)
	assert.Equal(t, 60*time.Second, cfg.OCRTimeout)
	assert.EqualValues(t, 10<<20, cfg.MaxUploadBytes())
	modes, err := cfg.OCR.Modes()
	require.NoError(t, err)
	assert.Equal(t, []int{6, 3, 4, 11, 12}, modes)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("OCR_PSM_MODES", "11, 6")
	t.Setenv("DB_AUTO_MIGRATE", "false")
	t.Setenv("OCR_TIMEOUT", "5s")
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.False(t, cfg.DBAutoMigrate)
	assert.Equal(t, 5*time.Second, cfg.OCRTimeout)
	modes, err := cfg.OCR.Modes()
	require.NoError(t, err)
	assert.Equal(t, []int{11, 6}, modes)
}

func TestLoadDotEnvDoesNotOverrideEnvironment(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("UPLOAD_BASE=/srv/struk\nMAX_UPLOAD_MB=4\n"), 0o600))
	t.Setenv("MAX_UPLOAD_MB", "2")
	t.Setenv("UPLOAD_BASE", "")
	os.Unsetenv("UPLOAD_BASE")

	cfg, err := LoadFrom(path)
	t.Cleanup(func() { os.Unsetenv("UPLOAD_BASE") })
	require.NoError(t, err)
	assert.Equal(t, "/srv/struk", cfg.UploadBase)
	assert.EqualValues(t, 2, cfg.MaxUploadMB)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("OCR_PSM_MODES", "6,abc")
	_, err := LoadFrom(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}

func TestLoadRejectsUnknownEngine(t *testing.T) {
	t.Setenv("OCR_ENGINE", "paddle")
	_, err := LoadFrom(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}
