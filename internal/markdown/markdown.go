package markdown

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/go-resty/resty/v2"
	"golang.org/x/sync/errgroup"

	"github.com/nicoxiang/kodekloud-downloader/internal/kodekloud"
	"github.com/nicoxiang/kodekloud-downloader/internal/pkg/filenamify"
	"github.com/nicoxiang/kodekloud-downloader/internal/pkg/files"
	"github.com/nicoxiang/kodekloud-downloader/internal/pkg/logger"
)

var (
	converterOnce sync.Once
	converter     *md.Converter
	imgRegexp     = regexp.MustCompile(`!\[(.*?)]\((.*?)\)`)
)

// MDExtension ...
const MDExtension = ".md"

type markdownString struct {
	sync.Mutex
	s string
}

func (ms *markdownString) ReplaceAll(o, n string) {
	ms.Lock()
	defer ms.Unlock()
	ms.s = strings.ReplaceAll(ms.s, o, n)
}

// Writer renders lesson html to local markdown files
type Writer struct {
	HTTPClient  *resty.Client
	Concurrency int
}

// NewWriter returns a writer fetching inline images with the session cookies
func NewWriter(cs []*http.Cookie, concurrency int) *Writer {
	if concurrency <= 0 {
		concurrency = 1
	}
	c := resty.New().
		SetCookies(cs).
		SetRetryCount(1).
		SetTimeout(10*time.Second).
		SetHeader(kodekloud.UserAgent, kodekloud.DefaultUserAgent).
		SetLogger(logger.RestyLogger{})
	return &Writer{HTTPClient: c, Concurrency: concurrency}
}

// WriteLesson converts a text lesson to markdown at dest. Inline images are
// saved next to it under images/<lesson file name>/ and relinked; an image
// that cannot be fetched keeps its remote link. It returns the bytes written.
func (w *Writer) WriteLesson(ctx context.Context, html, title, dest string) (int64, error) {
	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	default:
	}
	// step1: convert to md string
	markdown, err := getDefaultConverter().ConvertString(html)
	if err != nil {
		return 0, err
	}
	// step2: download images
	ss := &markdownString{s: markdown}
	dir := filepath.Dir(dest)
	imagesFolder := filepath.Join(dir, "images", strings.TrimSuffix(filepath.Base(dest), filepath.Ext(dest)))

	// names are claimed before the fetches start so that two images with
	// the same base name never share a file
	names := filenamify.NewUniqueNames()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.Concurrency)
	for _, imageURL := range findAllImages(markdown) {
		imageURL := imageURL
		base, ext, ok := imageFileName(imageURL)
		if !ok {
			continue
		}
		imageLocalFullPath := filepath.Join(imagesFolder, names.Claim(base, ext))
		g.Go(func() error {
			w.writeImageFile(gctx, imageURL, dir, imageLocalFullPath, ss)
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	// step3: write md file
	data := []byte("# " + title + "\n\n" + ss.s + "\n")
	if err := files.WriteFileAtomic(dest, data); err != nil {
		return 0, err
	}
	return int64(len(data)), nil
}

// WriteLabPlaceholder writes a note pointing at a hands-on lab, which has no
// downloadable payload
func WriteLabPlaceholder(title, labURL, dest string) (int64, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", title)
	sb.WriteString("This lesson is a hands-on lab and has no downloadable content.\n")
	if labURL != "" {
		fmt.Fprintf(&sb, "\nLab: <%s>\n", labURL)
	}
	if err := files.WriteFileAtomic(dest, []byte(sb.String())); err != nil {
		return 0, err
	}
	return int64(sb.Len()), nil
}

func findAllImages(md string) (images []string) {
	seen := make(map[string]bool)
	for _, matches := range imgRegexp.FindAllStringSubmatch(md, -1) {
		if len(matches) == 3 && !seen[matches[2]] {
			seen[matches[2]] = true
			images = append(images, matches[2])
		}
	}
	return
}

func getDefaultConverter() *md.Converter {
	converterOnce.Do(func() {
		converter = md.NewConverter("", true, nil)
	})
	return converter
}

// imageFileName splits the local file name of a remote image
func imageFileName(imageURL string) (base, ext string, ok bool) {
	u, err := url.Parse(imageURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return "", "", false
	}
	f := path.Base(u.Path)
	if f == "" || f == "/" || f == "." {
		return "", "", false
	}
	ext = path.Ext(f)
	return filenamify.Filenamify(strings.TrimSuffix(f, ext)), ext, true
}

func (w *Writer) writeImageFile(ctx context.Context, imageURL, dir, imageLocalFullPath string, ms *markdownString) {
	rel, err := filepath.Rel(dir, imageLocalFullPath)
	if err != nil {
		return
	}

	resp, err := w.HTTPClient.R().
		SetContext(ctx).
		SetOutput(imageLocalFullPath).
		Get(imageURL)
	if err != nil {
		logger.Warnf("download image %s: %v", imageURL, err)
		return
	}
	if resp.IsError() {
		_ = os.Remove(imageLocalFullPath)
		logger.Warnf("download image %s: status code %d", imageURL, resp.StatusCode())
		return
	}

	link := (&url.URL{Path: filepath.ToSlash(rel)}).EscapedPath()
	ms.ReplaceAll("("+imageURL+")", "("+link+")")
}
