package config

import (
	"fmt"
	"os"

	"github.com/nicoxiang/kodekloud-downloader/internal/video"
)

// ValidateConfig validates the configuration of a course download.
func ValidateConfig(cfg *AppConfig) error {
	if err := validateCookies(cfg); err != nil {
		return err
	}
	if err := validateQuality(cfg); err != nil {
		return err
	}
	if err := validateMaxDuplicateCount(cfg); err != nil {
		return err
	}
	if err := validateConcurrency(cfg); err != nil {
		return err
	}
	if err := validateLogLevel(cfg); err != nil {
		return err
	}
	return validateOutputDir(cfg)
}

// ValidateQuizConfig validates the configuration of a quiz download, which
// needs no session.
func ValidateQuizConfig(cfg *AppConfig) error {
	if err := validateLogLevel(cfg); err != nil {
		return err
	}
	return validateOutputDir(cfg)
}

func validateCookies(cfg *AppConfig) error {
	if cfg.CookieFile == "" {
		return &ConfigError{Option: "cookie", Reason: "a cookie file is required"}
	}
	f, err := os.Open(cfg.CookieFile)
	if err != nil {
		return &ConfigError{Option: "cookie", Err: err}
	}
	_ = f.Close()
	return nil
}

func validateQuality(cfg *AppConfig) error {
	if !video.IsKnownQuality(cfg.Quality) {
		return &ConfigError{Option: "quality", Reason: fmt.Sprintf("must be one of %v", video.Qualities)}
	}
	return nil
}

func validateMaxDuplicateCount(cfg *AppConfig) error {
	if cfg.MaxDuplicateCount < 0 {
		return &ConfigError{Option: "max-duplicate-count", Reason: "must be 0 (disabled) or more"}
	}
	return nil
}

func validateConcurrency(cfg *AppConfig) error {
	if cfg.Concurrency < 1 {
		return &ConfigError{Option: "concurrency", Reason: "must be at least 1"}
	}
	return nil
}

func validateLogLevel(cfg *AppConfig) error {
	validLogLevels := []string{"debug", "info", "warn", "error"}

	isValidLogLevel := false
	for _, v := range validLogLevels {
		if cfg.LogLevel == v {
			isValidLogLevel = true
			break
		}
	}

	if !isValidLogLevel {
		return &ConfigError{Option: "log-level", Reason: "must be one of debug, info, warn, error"}
	}

	return nil
}

func validateOutputDir(cfg *AppConfig) error {
	if cfg.OutputDir == "" {
		return &ConfigError{Option: "output-dir", Reason: "cannot be empty"}
	}
	if err := os.MkdirAll(cfg.OutputDir, os.ModePerm); err != nil {
		return &ConfigError{Option: "output-dir", Err: err}
	}
	f, err := os.CreateTemp(cfg.OutputDir, ".write-test-*")
	if err != nil {
		return &ConfigError{Option: "output-dir", Reason: "directory is not writable", Err: err}
	}
	name := f.Name()
	_ = f.Close()
	_ = os.Remove(name)
	return nil
}
