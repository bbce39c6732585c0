package filenamify

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
)

const (
	// MaxFileNameLength ...
	MaxFileNameLength = 100
	// Replacement for special chars
	Replacement = "-"
	// Untitled is used when nothing printable is left
	Untitled = "untitled"
	// outerCutset is stripped from both ends
	outerCutset = "-. "
)

var (
	reControlCharsRegex = regexp.MustCompile("[\u0000-\u001f\u0080-\u009f]")
	reRelativePathRegex = regexp.MustCompile(`^\.+`)
	// https://stackoverflow.com/a/31976060/5685258
	forbiddenWindowsCharsRegex = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1F]`)
	reservedWindowsNamesRegex  = regexp.MustCompile(`(?i)^(con|prn|aux|nul|com[0-9]|lpt[0-9])$`)
	repeatedReplacementRegex   = regexp.MustCompile(`(?:` + regexp.QuoteMeta(Replacement) + `){2,}`)
)

// Filenamify convert a string to a valid safe path segment.
// Filenamify(Filenamify(s)) == Filenamify(s) for every s.
func Filenamify(str string) string {
	// collapse whitespace
	str = strings.Join(strings.Fields(str), " ")

	// reserved word
	str = forbiddenWindowsCharsRegex.ReplaceAllString(str, Replacement)

	// continue
	str = reControlCharsRegex.ReplaceAllString(str, Replacement)
	str = reRelativePathRegex.ReplaceAllString(str, Replacement)

	// for repeat
	str = repeatedReplacementRegex.ReplaceAllString(str, Replacement)
	str = strings.Trim(str, outerCutset)

	// limit length
	if r := []rune(str); len(r) > MaxFileNameLength {
		str = strings.Trim(string(r[:MaxFileNameLength]), outerCutset)
	}

	if str == "" {
		return Untitled
	}

	// for windows names
	if reservedWindowsNamesRegex.MatchString(str) {
		str = str + Replacement
	}
	return str
}

// Ordinal returns a zero padded, 1-based position prefix so that
// lexical order of names matches source order.
func Ordinal(index, total int) string {
	width := len(strconv.Itoa(total))
	if width < 2 {
		width = 2
	}
	return fmt.Sprintf("%0*d", width, index+1)
}

// WithOrdinal joins an ordinal prefix and a normalized title
func WithOrdinal(index, total int, title string) string {
	return Ordinal(index, total) + Replacement + Filenamify(title)
}

// UniqueNames hands out file names that are unique within one directory.
// A second claim of the same name gets a " (2)", " (3)"... suffix.
type UniqueNames struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// NewUniqueNames ...
func NewUniqueNames() *UniqueNames {
	return &UniqueNames{seen: make(map[string]struct{})}
}

// Claim reserves base+ext, disambiguating on collision. Comparison is case
// insensitive since the target filesystem may be.
func (u *UniqueNames) Claim(base, ext string) string {
	u.mu.Lock()
	defer u.mu.Unlock()
	name := base + ext
	for n := 2; ; n++ {
		key := strings.ToLower(name)
		if _, ok := u.seen[key]; !ok {
			u.seen[key] = struct{}{}
			return name
		}
		name = fmt.Sprintf("%s (%d)%s", base, n, ext)
	}
}
