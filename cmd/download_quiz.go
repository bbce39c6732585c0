package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/nicoxiang/kodekloud-downloader/internal/config"
	"github.com/nicoxiang/kodekloud-downloader/internal/kodekloud"
	"github.com/nicoxiang/kodekloud-downloader/internal/quiz"
)

func init() {
	downloadQuizCmd.Flags().BoolVar(&fv.separateFiles, "separate-files", false, "write one markdown file per quiz")
	downloadQuizCmd.Flags().BoolVar(&fv.separateFiles, "sep", false, "alias of --separate-files")
	rootCmd.AddCommand(downloadQuizCmd)
}

var downloadQuizCmd = &cobra.Command{
	Use:     "download-quiz",
	Aliases: []string{"dl-quiz"},
	Short:   "Download all quizzes as markdown",
	Args:    cobra.NoArgs,
	RunE:    runDownloadQuiz,
}

func runDownloadQuiz(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := initLogger(cfg); err != nil {
		return &config.ConfigError{Option: "log-level", Err: err}
	}
	if err := config.ValidateQuizConfig(&cfg); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	collector := &quiz.Collector{
		Source:      kodekloud.NewClient(nil, ""),
		Concurrency: quiz.DefaultConcurrency,
	}
	quizzes, err := collector.Collect(ctx)
	if err != nil {
		return err
	}
	paths, err := quiz.Write(cfg.OutputDir, quizzes, cfg.SeparateFiles)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d quizzes saved in %d file(s) under %s\n", len(quizzes), len(paths), cfg.OutputDir)
	return nil
}
