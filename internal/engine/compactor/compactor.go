package compactor

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/crimson-sun/bulletin/internal/model"
)

// Verbosity controls how much detail is retained after compaction.
type Verbosity int

const (
	Minimal  Verbosity = iota // summary only, no body or raw message
	Standard                  // body truncated, raw message dropped
	Full                      // retain everything
)

const (
	defaultSummaryRunes = 160
	defaultBodyRunes    = 4000
)

func (v Verbosity) String() string {
	switch v {
	case Minimal:
		return "minimal"
	case Standard:
		return "standard"
	case Full:
		return "full"
	}
	return fmt.Sprintf("Verbosity(%d)", int(v))
}

// ParseVerbosity maps a config string to a Verbosity.
func ParseVerbosity(s string) (Verbosity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "minimal":
		return Minimal, nil
	case "standard", "":
		return Standard, nil
	case "full":
		return Full, nil
	}
	return Standard, fmt.Errorf("compactor: unknown verbosity %q", s)
}

// Compactor trims notice views to a verbosity level.
type Compactor struct {
	Verbosity    Verbosity
	summaryRunes int
	bodyRunes    int
}

// Option configures a Compactor.
type Option func(*Compactor)

// WithBodyLimit overrides the Standard body limit, in runes.
func WithBodyLimit(n int) Option {
	return func(c *Compactor) { c.bodyRunes = n }
}

// WithSummaryLimit overrides the summary length, in runes.
func WithSummaryLimit(n int) Option {
	return func(c *Compactor) { c.summaryRunes = n }
}

// New creates a Compactor with the given verbosity level.
func New(v Verbosity, opts ...Option) *Compactor {
	c := &Compactor{Verbosity: v, summaryRunes: defaultSummaryRunes, bodyRunes: defaultBodyRunes}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Compact sets the view's summary from its body and strips fields the
// verbosity level does not keep.
func (c *Compactor) Compact(v model.NoticeView) model.NoticeView {
	v.Summary = summarize(v.Body, c.summaryRunes)
	switch c.Verbosity {
	case Minimal:
		v.Body = ""
		v.Raw = ""
	case Standard:
		v.Body = truncate(v.Body, c.bodyRunes)
		v.Raw = ""
	}
	return v
}

// truncate cuts s to maxRunes runes and marks the cut with "...".
func truncate(s string, maxRunes int) string {
	if utf8.RuneCountInString(s) <= maxRunes {
		return s
	}
	i, n := 0, 0
	for i = range s {
		if n == maxRunes {
			break
		}
		n++
	}
	return s[:i] + "..."
}

// summarize collapses whitespace and cuts at a word boundary within maxRunes.
func summarize(body string, maxRunes int) string {
	s := strings.Join(strings.Fields(body), " ")
	if utf8.RuneCountInString(s) <= maxRunes {
		return s
	}
	cut := truncate(s, maxRunes)
	cut = strings.TrimSuffix(cut, "...")
	if sp := strings.LastIndexByte(cut, ' '); sp > 0 {
		cut = cut[:sp]
	}
	return strings.TrimRight(cut, " ,.;:") + "..."
}
