package content

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"golang.org/x/net/html"

	"github.com/nicoxiang/kodekloud-downloader/internal/kodekloud"
)

// Kind is what a lesson turns into on disk
type Kind int

const (
	// Unsupported lessons are skipped with a logged reason
	Unsupported Kind = iota
	// Video is fetched through the resolver
	Video
	// Document is fetched directly from its url
	Document
	// LabLink has no file payload, a placeholder is written
	LabLink
	// PlainText is converted to markdown
	PlainText
)

func (k Kind) String() string {
	switch k {
	case Video:
		return "video"
	case Document:
		return "document"
	case LabLink:
		return "lab"
	case PlainText:
		return "text"
	default:
		return "unsupported"
	}
}

// Downloadable reports whether the kind needs a remote fetch
func (k Kind) Downloadable() bool {
	return k == Video || k == Document
}

// Classification is the result of Classify. URL is the video/document/lab
// reference when one was found. Reason explains an Unsupported result.
type Classification struct {
	Kind   Kind
	URL    string
	Reason string
}

// Classify decides what a lesson payload represents. It never fails: any
// lesson it does not understand is Unsupported with a reason.
func Classify(l kodekloud.Lesson) Classification {
	switch l.Type {
	case kodekloud.LessonTypeVideo:
		if u := firstNonEmpty(l.VideoURL, findVideoURL(l.Content)); u != "" {
			return Classification{Kind: Video, URL: u}
		}
		return unsupported("video lesson has no video reference")
	case kodekloud.LessonTypeDocument, "pdf", "slides":
		if u := firstNonEmpty(l.DocumentURL, findDocumentResource(l.Resources), findDocumentURL(l.Content)); u != "" {
			return Classification{Kind: Document, URL: u}
		}
		return unsupported("document lesson has no document url")
	case kodekloud.LessonTypeLab:
		return Classification{Kind: LabLink, URL: l.LabURL}
	case kodekloud.LessonTypeText, kodekloud.LessonTypeArticle:
		if u := findVideoURL(l.Content); u != "" {
			return Classification{Kind: Video, URL: u}
		}
		if strings.TrimSpace(l.Content) == "" {
			return unsupported("text lesson has no content")
		}
		return Classification{Kind: PlainText}
	}
	switch {
	case l.VideoURL != "":
		return Classification{Kind: Video, URL: l.VideoURL}
	case l.DocumentURL != "":
		return Classification{Kind: Document, URL: l.DocumentURL}
	}
	return unsupported(fmt.Sprintf("lesson type %q is not downloadable", l.Type))
}

func unsupported(reason string) Classification {
	return Classification{Kind: Unsupported, Reason: reason}
}

func firstNonEmpty(ss ...string) string {
	for _, s := range ss {
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return ""
}

func findDocumentResource(rs []kodekloud.Resource) string {
	for _, r := range rs {
		if IsDocumentURL(r.URL) || strings.EqualFold(r.Type, "pdf") {
			return r.URL
		}
	}
	return ""
}

// IsDocumentURL reports whether the url path ends with a known document extension
func IsDocumentURL(raw string) bool {
	switch Extension(raw, "") {
	case ".pdf", ".pptx", ".ppt", ".docx", ".zip":
		return true
	}
	return false
}

// Extension returns the lower case extension of a url path, or def
func Extension(raw, def string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return def
	}
	ext := strings.ToLower(path.Ext(u.Path))
	if ext == "" || len(ext) > 6 {
		return def
	}
	return ext
}

// findVideoURL looks for an embedded player iframe or a <video> source in
// lesson html, e.g.
// <iframe src="https://player.vimeo.com/video/123456?h=abc" allow="autoplay"></iframe>
// <video controls><source src="https://cdn.example/intro.mp4" type="video/mp4"></video>
func findVideoURL(content string) string {
	if !strings.Contains(content, "<iframe") && !strings.Contains(content, "<video") {
		return ""
	}
	var videoURL string
	walk(content, func(n *html.Node) bool {
		switch n.Data {
		case "iframe":
			if src := attr(n, "src"); strings.Contains(src, "vimeo.com") {
				videoURL = src
				return true
			}
		case "video", "source":
			if src := attr(n, "src"); Extension(src, "") == ".mp4" {
				videoURL = src
				return true
			}
		}
		return false
	})
	return videoURL
}

// findDocumentURL looks for the first <a href> to a document in lesson html
func findDocumentURL(content string) string {
	if !strings.Contains(content, "<a") {
		return ""
	}
	var docURL string
	walk(content, func(n *html.Node) bool {
		if n.Data == "a" {
			if href := attr(n, "href"); IsDocumentURL(href) {
				docURL = href
				return true
			}
		}
		return false
	})
	return docURL
}

// walk visits element nodes depth first until visit returns true
func walk(content string, visit func(*html.Node) bool) {
	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return
	}
	var f func(*html.Node) bool
	f = func(n *html.Node) bool {
		if n.Type == html.ElementNode && visit(n) {
			return true
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if f(c) {
				return true
			}
		}
		return false
	}
	f(doc)
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return strings.TrimSpace(a.Val)
		}
	}
	return ""
}
