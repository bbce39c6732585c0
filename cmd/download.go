package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"

	"github.com/nicoxiang/kodekloud-downloader/internal/config"
	"github.com/nicoxiang/kodekloud-downloader/internal/course"
	"github.com/nicoxiang/kodekloud-downloader/internal/fsm"
	"github.com/nicoxiang/kodekloud-downloader/internal/kodekloud"
	"github.com/nicoxiang/kodekloud-downloader/internal/ledger"
	"github.com/nicoxiang/kodekloud-downloader/internal/loader"
	"github.com/nicoxiang/kodekloud-downloader/internal/markdown"
	"github.com/nicoxiang/kodekloud-downloader/internal/pkg/downloader"
	"github.com/nicoxiang/kodekloud-downloader/internal/pkg/logger"
	"github.com/nicoxiang/kodekloud-downloader/internal/video"
)

func init() {
	downloadCmd.Flags().StringVarP(&fv.cookieFile, "cookie", "c", "", "cookie file in Netscape format exported from learn.kodekloud.com (required)")
	downloadCmd.Flags().StringVarP(&fv.quality, "quality", "q", defaults.Quality, fmt.Sprintf("video quality, one of %v", video.Qualities))
	downloadCmd.Flags().IntVar(&fv.maxDuplicateCount, "max-duplicate-count", defaults.MaxDuplicateCount, "stop a course after this many identical downloads in a row, 0 disables")
	downloadCmd.Flags().IntVarP(&fv.concurrency, "concurrency", "j", defaults.Concurrency, "number of lessons downloaded in parallel")
	downloadCmd.Flags().BoolVar(&fv.noResume, "no-resume", false, "download lessons again even if an earlier run finished them")
	rootCmd.AddCommand(downloadCmd)
}

var downloadCmd = &cobra.Command{
	Use:     "download [course-url...]",
	Aliases: []string{"dl"},
	Short:   "Download courses, pick them interactively when no url is given",
	RunE:    runDownload,
}

func runDownload(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := initLogger(cfg); err != nil {
		return &config.ConfigError{Option: "log-level", Err: err}
	}
	if err := config.ValidateConfig(&cfg); err != nil {
		return err
	}
	slugs, err := parseCourseArgs(args)
	if err != nil {
		return err
	}
	cookies, token, err := config.ReadCookies(&cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	client := kodekloud.NewClient(cookies, token)
	fetcher := downloader.NewFetcher(cookies, kodekloud.DefaultUserAgent)
	// bars of parallel downloads would overwrite each other
	fetcher.ShowProgress = cfg.Concurrency == 1 && !logger.IsDebug()
	walker := &course.Walker{
		Config: course.Config{
			OutputDir:         cfg.OutputDir,
			Quality:           cfg.Quality,
			MaxDuplicateCount: cfg.MaxDuplicateCount,
			Concurrency:       cfg.Concurrency,
		},
		Source:   client,
		Resolver: video.NewResolver(cookies),
		Fetcher:  fetcher,
		Text:     markdown.NewWriter(cookies, cfg.Concurrency),
	}
	if cfg.Resume {
		lg, err := ledger.Open(cfg.OutputDir)
		if err != nil {
			return err
		}
		defer lg.Close()
		walker.Ledger = lg
	}

	d := &courseDownloader{
		load: func(ctx context.Context, slug string) (kodekloud.Course, error) {
			var c kodekloud.Course
			err := loader.Run(l, fmt.Sprintf("[ Loading course %s... ]", slug), func() error {
				var err error
				c, err = client.CourseDetail(ctx, slug)
				return err
			})
			return c, err
		},
		walker: walker,
		out:    cmd.OutOrStdout(),
	}
	defer func() {
		printSummary(cmd.OutOrStdout(), d.results)
	}()

	if len(slugs) == 0 {
		return fsm.NewFSMRunner(ctx, client, d.download, fsm.DefaultPrompter(), l).Run()
	}
	return d.downloadAll(ctx, slugs)
}

type courseWalker interface {
	Walk(ctx context.Context, c kodekloud.Course) (course.WalkResult, error)
}

// courseDownloader downloads courses one after another. A course that fails
// on its own is recorded in results and the next one still runs, only errors
// that stop the whole run are returned.
type courseDownloader struct {
	load    func(ctx context.Context, slug string) (kodekloud.Course, error)
	walker  courseWalker
	out     io.Writer
	results []course.WalkResult
	failed  *multierror.Error
}

func (d *courseDownloader) download(ctx context.Context, slug string) error {
	c, err := d.load(ctx, slug)
	res := course.WalkResult{Course: slug}
	if err == nil {
		fmt.Fprintf(d.out, "Downloading course %s (%d lessons)\n", c.Title, c.LessonCount())
		res, err = d.walker.Walk(ctx, c)
	}
	if err != nil {
		res.Fatal = err
	}
	d.results = append(d.results, res)
	if err == nil {
		return nil
	}
	if runFatal(err) {
		return err
	}
	logger.Errorf(err, "Course %s failed", slug)
	d.failed = multierror.Append(d.failed, fmt.Errorf("course %s: %w", slug, err))
	return nil
}

// downloadAll returns the run fatal error or, after all courses ran, the
// failures of single courses
func (d *courseDownloader) downloadAll(ctx context.Context, slugs []string) error {
	for _, slug := range slugs {
		if err := d.download(ctx, slug); err != nil {
			return err
		}
	}
	return d.failed.ErrorOrNil()
}

// parseCourseArgs turns course urls into slugs
func parseCourseArgs(args []string) ([]string, error) {
	slugs := make([]string, 0, len(args))
	for _, a := range args {
		slug, err := kodekloud.ParseCourseURL(a)
		if err != nil {
			return nil, &config.ConfigError{Option: "course-url", Err: err}
		}
		slugs = append(slugs, slug)
	}
	return slugs, nil
}

func printSummary(w io.Writer, results []course.WalkResult) {
	if len(results) == 0 {
		return
	}
	fmt.Fprintln(w, "\nSummary")
	for _, r := range results {
		fmt.Fprintln(w, r.String())
		if err := r.Err(); err != nil {
			logger.Debugf("%s", err)
		}
	}
}
