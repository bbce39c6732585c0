package config

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/nicoxiang/kodekloud-downloader/internal/kodekloud"
	"github.com/nicoxiang/kodekloud-downloader/internal/pkg/cookie"
)

const (
	// KodekloudDownloaderFolder app config folder name
	KodekloudDownloaderFolder = "kodekloud-downloader"
	// FileName of the optional config file
	FileName = "config.yaml"

	DefaultQuality           = "1080p"
	DefaultMaxDuplicateCount = 3
	DefaultLogLevel          = "info"
)

// AppConfig holds every option of a run. Flags override the config file,
// which overrides defaults.
type AppConfig struct {
	CookieFile        string `yaml:"cookie"`
	OutputDir         string `yaml:"output_dir"`
	Quality           string `yaml:"quality"`
	MaxDuplicateCount int    `yaml:"max_duplicate_count"`
	Concurrency       int    `yaml:"concurrency"`
	LogLevel          string `yaml:"log_level"`
	SeparateFiles     bool   `yaml:"separate_files"`
	Resume            bool   `yaml:"resume"`
}

// ConfigError is an unusable option. The run cannot start.
type ConfigError struct {
	Option string
	Reason string
	Err    error
}

// Error implements error interface
func (e *ConfigError) Error() string {
	s := fmt.Sprintf("argument '%s' is not valid", e.Option)
	if e.Reason != "" {
		s += ", " + e.Reason
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

// Unwrap ...
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Default returns the built in defaults. concurrency is passed in so the
// caller decides how to derive it.
func Default(concurrency int) AppConfig {
	return AppConfig{
		OutputDir:         defaultOutputDir(),
		Quality:           DefaultQuality,
		MaxDuplicateCount: DefaultMaxDuplicateCount,
		Concurrency:       concurrency,
		LogLevel:          DefaultLogLevel,
		Resume:            true,
	}
}

func defaultOutputDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "Downloads"
	}
	return filepath.Join(home, "Downloads")
}

// DefaultPath is $XDG_CONFIG_HOME/kodekloud-downloader/config.yaml or the
// platform equivalent
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, KodekloudDownloaderFolder, FileName)
}

// LoadFile overlays the yaml file at path onto cfg. Keys missing from the
// file keep their current value.
func LoadFile(path string, cfg *AppConfig) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return &ConfigError{Option: "config", Err: err}
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return &ConfigError{Option: "config", Reason: "malformed yaml", Err: err}
	}
	return nil
}

// ReadCookies loads the cookie file and the session token inside it
func ReadCookies(cfg *AppConfig) ([]*http.Cookie, string, error) {
	cookies, err := cookie.ReadFile(cfg.CookieFile)
	if err != nil {
		return nil, "", &ConfigError{Option: "cookie", Err: err}
	}
	token, err := kodekloud.SessionToken(cookies)
	if err != nil {
		return nil, "", &ConfigError{Option: "cookie", Err: err}
	}
	return cookies, token, nil
}

// IsConfigError ...
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
