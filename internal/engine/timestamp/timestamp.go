// Package timestamp finds an embedded date/time expression in notice text.
//
// Two dialects are tried in order and the first hit wins:
//
//	iso:   a marker (📅, ⏰, Start:, Sent:, On:) followed by an ISO-8601 value
//	human: "*On:* March 5, 2025 at 2:30 PM IST"
//
// Calendar ranges are not validated: "February 31" rolls over the same way
// time.Date normalises it.
package timestamp

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/crimson-sun/bulletin/internal/model"
)

// Dialect names the textual form a Result was recovered from.
type Dialect string

const (
	DialectISO   Dialect = "iso"
	DialectHuman Dialect = "human"
)

// InstantLayout is the serialisation used for resolved human timestamps.
const InstantLayout = "2006-01-02T15:04:05.000Z"

// Result is a recovered timestamp. Value is the ISO-8601 string handed to
// callers; Time is its parsed form and may be zero if an ISO value carried
// out-of-range fields.
type Result struct {
	Value   string
	Time    time.Time
	Dialect Dialect
}

var (
	isoPattern = regexp.MustCompile(
		`(?:📅|⏰|\b(?:Start|Sent|On):)[\s*_\x{FE0F}]*(\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(?:\.\d+)?(?:Z|[+-]\d{2}:\d{2})?)`)

	humanPattern = regexp.MustCompile(
		`(?i)\*{0,2}\s*\bOn\s*:?\s*\*{0,2}\s*:?\s*` +
			`(January|February|March|April|May|June|July|August|September|October|November|December)` +
			`\s+(\d{1,2}),?\s+(\d{4})\s+at\s+(\d{1,2}):(\d{2})\s*(AM|PM)(?:\s*IST)?`)
)

var months = map[string]time.Month{
	"january": time.January, "february": time.February, "march": time.March,
	"april": time.April, "may": time.May, "june": time.June,
	"july": time.July, "august": time.August, "september": time.September,
	"october": time.October, "november": time.November, "december": time.December,
}

// dialect pairs a matcher with the resolver that turns its submatches into a
// Result.
type dialect struct {
	name    Dialect
	pattern *regexp.Regexp
	resolve func(m []string, loc *time.Location) Result
}

// Extractor recovers timestamps. Human-dialect values are interpreted in loc.
// An Extractor is immutable and safe for concurrent use.
type Extractor struct {
	loc      *time.Location
	dialects []dialect
}

// New creates an Extractor that builds human-dialect times in loc.
// A nil loc means time.Local.
func New(loc *time.Location) *Extractor {
	if loc == nil {
		loc = time.Local
	}
	return &Extractor{
		loc: loc,
		dialects: []dialect{
			{name: DialectISO, pattern: isoPattern, resolve: resolveISO},
			{name: DialectHuman, pattern: humanPattern, resolve: resolveHuman},
		},
	}
}

// Extract returns the first timestamp found in text, trying dialects in order.
func (e *Extractor) Extract(text string) (Result, bool) {
	if text == "" {
		return Result{}, false
	}
	for _, d := range e.dialects {
		m := d.pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		r := d.resolve(m, e.loc)
		r.Dialect = d.name
		return r, true
	}
	return Result{}, false
}

// Stamp applies the read-path policy to n: try the formatted message, then the
// content fallback, and on the first hit overwrite both CreatedAt and
// TimeSent. It reports whether a timestamp was found.
func (e *Extractor) Stamp(n *model.RawNotice) bool {
	for _, text := range []string{n.FormattedMessage, n.Content} {
		r, ok := e.Extract(text)
		if !ok || r.Value == "" {
			continue
		}
		n.CreatedAt = r.Value
		n.TimeSent = r.Value
		return true
	}
	return false
}

func resolveISO(m []string, loc *time.Location) Result {
	value := m[1]
	r := Result{Value: value}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		r.Time = t
	} else if t, err := time.ParseInLocation("2006-01-02T15:04:05", value, loc); err == nil {
		r.Time = t
	}
	return r
}

func resolveHuman(m []string, loc *time.Location) Result {
	month := months[strings.ToLower(m[1])]
	day, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])
	hour, _ := strconv.Atoi(m[4])
	minute, _ := strconv.Atoi(m[5])
	hour = to24Hour(hour, strings.ToUpper(m[6]) == "PM")

	t := time.Date(year, month, day, hour, minute, 0, 0, loc)
	return Result{Value: t.UTC().Format(InstantLayout), Time: t}
}

// to24Hour converts a 12-hour clock value: 12 AM is 0, 12 PM stays 12.
func to24Hour(hour int, pm bool) int {
	switch {
	case pm && hour != 12:
		return hour + 12
	case !pm && hour == 12:
		return 0
	}
	return hour
}
