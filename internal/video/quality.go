package video

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Qualities is the fixed ranking of known tiers, best first
var Qualities = []string{"2160p", "1440p", "1080p", "720p", "540p", "480p", "360p", "240p", "144p"}

var (
	// ErrNotFound no usable quality or url for a lesson
	ErrNotFound = errors.New("no usable media found")
	// ErrInvalidQuality ...
	ErrInvalidQuality = errors.New("invalid quality")
)

// Selection is the outcome of SelectQuality. Warning is set whenever the
// requested tier was not used.
type Selection struct {
	Quality  string
	Fallback bool
	Warning  string
}

type tier struct {
	height int
	label  string
}

// ParseQuality turns "720p" into 720
func ParseQuality(q string) (int, error) {
	s := strings.ToLower(strings.TrimSpace(q))
	if !strings.HasSuffix(s, "p") {
		return 0, fmt.Errorf("%w: %q", ErrInvalidQuality, q)
	}
	h, err := strconv.Atoi(strings.TrimSuffix(s, "p"))
	if err != nil || h <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidQuality, q)
	}
	return h, nil
}

// IsKnownQuality ...
func IsKnownQuality(q string) bool {
	for _, v := range Qualities {
		if v == q {
			return true
		}
	}
	return false
}

// SelectQuality picks the requested tier when offered, else the next lower
// offered tier. When every offered tier is higher than requested the lowest
// one is used. Offered labels that are not "<n>p" are ignored. It fails with
// ErrNotFound only when nothing usable is offered.
func SelectQuality(requested string, offered []string) (Selection, error) {
	want, err := ParseQuality(requested)
	if err != nil {
		return Selection{}, err
	}

	var tiers []tier
	seen := make(map[int]bool)
	for _, o := range offered {
		h, err := ParseQuality(o)
		if err != nil || seen[h] {
			continue
		}
		seen[h] = true
		tiers = append(tiers, tier{height: h, label: o})
	}
	if len(tiers) == 0 {
		return Selection{}, fmt.Errorf("%w: no quality offered", ErrNotFound)
	}
	// best first
	sort.Slice(tiers, func(i, j int) bool { return tiers[i].height > tiers[j].height })

	for _, t := range tiers {
		if t.height == want {
			return Selection{Quality: t.label}, nil
		}
	}
	for _, t := range tiers {
		if t.height < want {
			return Selection{
				Quality:  t.label,
				Fallback: true,
				Warning:  fmt.Sprintf("quality %s not offered, falling back to %s", requested, t.label),
			}, nil
		}
	}
	lowest := tiers[len(tiers)-1]
	return Selection{
		Quality:  lowest.label,
		Fallback: true,
		Warning:  fmt.Sprintf("only qualities above %s offered, using lowest available %s", requested, lowest.label),
	}, nil
}
