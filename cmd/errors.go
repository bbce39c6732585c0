package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/manifoldco/promptui"

	"github.com/nicoxiang/kodekloud-downloader/internal/config"
	"github.com/nicoxiang/kodekloud-downloader/internal/kodekloud"
	"github.com/nicoxiang/kodekloud-downloader/internal/pkg/downloader"
	"github.com/nicoxiang/kodekloud-downloader/internal/pkg/logger"
)

func checkError(err error) {
	if err == nil {
		return
	}
	msg := errorMessage(err)
	if msg != "" {
		fmt.Fprintln(os.Stderr, msg)
	}
	os.Exit(1)
}

// runFatal reports whether err stops the whole run rather than one course
func runFatal(err error) bool {
	return errors.Is(err, context.Canceled) ||
		errors.Is(err, kodekloud.ErrAuthFailed) ||
		config.IsConfigError(err)
}

// errorMessage is what the user sees for a fatal error. Empty means exit quietly.
func errorMessage(err error) string {
	var (
		ce *config.ConfigError
		ae *kodekloud.APIError
		fe *kodekloud.FormatError
		we *downloader.WriteError
	)
	switch {
	case errors.Is(err, context.Canceled) ||
		errors.Is(err, promptui.ErrInterrupt) ||
		errors.Is(err, promptui.ErrEOF):
		return ""
	case errors.As(err, &ce):
		return err.Error()
	case errors.Is(err, kodekloud.ErrAuthFailed):
		return "Authentication failed, the session cookie may have expired. Log in to kodekloud and export the cookie file again"
	case errors.Is(err, kodekloud.ErrRateLimit):
		return "Too many requests, please try again later"
	case errors.Is(err, kodekloud.ErrNotFound):
		return err.Error()
	case errors.As(err, &ae), errors.As(err, &fe):
		logger.Errorf(err, "Unexpected platform response")
		return err.Error()
	case errors.As(err, &we):
		return fmt.Sprintf("Cannot write to disk: %v", err)
	case os.IsTimeout(err):
		logger.Errorf(err, "Request Timeout")
		return "Request timeout"
	}
	logger.Errorf(err, "An error occurred")
	return fmt.Sprintf("An error occurred: %v", err)
}
