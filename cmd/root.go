package cmd

import (
	"os"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"github.com/nicoxiang/kodekloud-downloader/internal/config"
	"github.com/nicoxiang/kodekloud-downloader/internal/course"
	"github.com/nicoxiang/kodekloud-downloader/internal/loader"
	"github.com/nicoxiang/kodekloud-downloader/internal/pkg/files"
	"github.com/nicoxiang/kodekloud-downloader/internal/pkg/logger"
)

// flagValues holds raw flag input. Only flags the user set override the
// config file.
type flagValues struct {
	cookieFile        string
	outputDir         string
	quality           string
	maxDuplicateCount int
	concurrency       int
	logLevel          string
	separateFiles     bool
	noResume          bool
}

var (
	cfgFile   string
	verbosity int
	fv        flagValues
	l         *spinner.Spinner
)

// defaults must be ready before the init funcs of other files register flags
var defaults = config.Default(course.DefaultConcurrency())

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default "+config.DefaultPath()+")")
	rootCmd.PersistentFlags().StringVar(&fv.logLevel, "log-level", defaults.LogLevel, "log level, one of debug, info, warn, error")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "more verbose logs, repeatable")
	rootCmd.PersistentFlags().StringVarP(&fv.outputDir, "output-dir", "o", defaults.OutputDir, "download target folder")
	l = loader.NewSpinner()
}

var rootCmd = &cobra.Command{
	Use:           "kodekloud-downloader",
	Short:         "Kodekloud-downloader is used to download kodekloud courses and quizzes",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// loadConfig merges defaults, the config file and the flags set on cmd
func loadConfig(cmd *cobra.Command) (config.AppConfig, error) {
	cfg := defaults
	path := cfgFile
	if path == "" {
		if p := config.DefaultPath(); p != "" && files.CheckFileExists(p) {
			path = p
		}
	}
	if path != "" {
		if err := config.LoadFile(path, &cfg); err != nil {
			return cfg, err
		}
	}

	f := cmd.Flags()
	if f.Changed("cookie") {
		cfg.CookieFile = fv.cookieFile
	}
	if f.Changed("output-dir") {
		cfg.OutputDir = fv.outputDir
	}
	if f.Changed("quality") {
		cfg.Quality = fv.quality
	}
	if f.Changed("max-duplicate-count") {
		cfg.MaxDuplicateCount = fv.maxDuplicateCount
	}
	if f.Changed("concurrency") {
		cfg.Concurrency = fv.concurrency
	}
	if f.Changed("log-level") {
		cfg.LogLevel = fv.logLevel
	}
	if f.Changed("separate-files") || f.Changed("sep") {
		cfg.SeparateFiles = fv.separateFiles
	}
	if f.Changed("no-resume") {
		cfg.Resume = !fv.noResume
	}
	return cfg, nil
}

func initLogger(cfg config.AppConfig) error {
	return logger.Init(os.Stderr, cfg.LogLevel, verbosity)
}

// Execute func
func Execute() {
	checkError(rootCmd.Execute())
}
