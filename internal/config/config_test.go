package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nicoxiang/kodekloud-downloader/internal/kodekloud"
)

const cookieFile = "# Netscape HTTP Cookie File\n" +
	".kodekloud.com\tTRUE\t/\tTRUE\t0\tsession-cookie\tabc123\n"

func validConfig(t *testing.T) AppConfig {
	t.Helper()
	dir := t.TempDir()
	cookies := filepath.Join(dir, "cookies.txt")
	require.NoError(t, os.WriteFile(cookies, []byte(cookieFile), 0600))
	cfg := Default(2)
	cfg.CookieFile = cookies
	cfg.OutputDir = filepath.Join(dir, "out")
	return cfg
}

func TestValidateConfig(t *testing.T) {
	cfg := validConfig(t)
	require.NoError(t, ValidateConfig(&cfg))
	assert.DirExists(t, cfg.OutputDir)

	tests := []struct {
		option string
		modify func(*AppConfig)
	}{
		{"cookie", func(c *AppConfig) { c.CookieFile = "" }},
		{"cookie", func(c *AppConfig) { c.CookieFile = filepath.Join(t.TempDir(), "nope.txt") }},
		{"quality", func(c *AppConfig) { c.Quality = "hd" }},
		{"quality", func(c *AppConfig) { c.Quality = "1000p" }},
		{"max-duplicate-count", func(c *AppConfig) { c.MaxDuplicateCount = -1 }},
		{"concurrency", func(c *AppConfig) { c.Concurrency = 0 }},
		{"log-level", func(c *AppConfig) { c.LogLevel = "none" }},
		{"output-dir", func(c *AppConfig) { c.OutputDir = "" }},
	}
	for _, tt := range tests {
		c := validConfig(t)
		tt.modify(&c)
		err := ValidateConfig(&c)
		var ce *ConfigError
		if !errors.As(err, &ce) {
			t.Fatalf("want ConfigError for %s, but got %v", tt.option, err)
		}
		assert.Equal(t, tt.option, ce.Option)
	}
}

func TestValidateConfigDisabledGuard(t *testing.T) {
	cfg := validConfig(t)
	cfg.MaxDuplicateCount = 0
	assert.NoError(t, ValidateConfig(&cfg))
}

func TestValidateQuizConfig(t *testing.T) {
	cfg := Default(1)
	cfg.OutputDir = t.TempDir()
	assert.NoError(t, ValidateQuizConfig(&cfg))
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("quality: 720p\nmax_duplicate_count: 5\nseparate_files: true\n"), 0600))

	cfg := Default(4)
	require.NoError(t, LoadFile(path, &cfg))
	assert.Equal(t, "720p", cfg.Quality)
	assert.Equal(t, 5, cfg.MaxDuplicateCount)
	assert.True(t, cfg.SeparateFiles)
	assert.Equal(t, 4, cfg.Concurrency, "keys missing from the file keep their value")
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)

	require.NoError(t, os.WriteFile(path, []byte("quality: [\n"), 0600))
	assert.True(t, IsConfigError(LoadFile(path, &cfg)))
	assert.True(t, IsConfigError(LoadFile(filepath.Join(t.TempDir(), "missing.yaml"), &cfg)))
}

func TestReadCookies(t *testing.T) {
	cfg := validConfig(t)
	cookies, token, err := ReadCookies(&cfg)
	require.NoError(t, err)
	assert.Len(t, cookies, 1)
	assert.Equal(t, "abc123", token)

	require.NoError(t, os.WriteFile(cfg.CookieFile, []byte(".kodekloud.com\tTRUE\t/\tTRUE\t0\tother\tx\n"), 0600))
	_, _, err = ReadCookies(&cfg)
	assert.True(t, IsConfigError(err))
	assert.ErrorIs(t, err, kodekloud.ErrNoSessionToken)
}
