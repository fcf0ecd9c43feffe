// Package roster recovers shortlisted-student lists from raw notice text.
package roster

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/crimson-sun/bulletin/internal/engine/category"
	"github.com/crimson-sun/bulletin/internal/engine/dedup"
	"github.com/crimson-sun/bulletin/internal/engine/markup"
	"github.com/crimson-sun/bulletin/internal/model"
)

// MinEnrollmentLength is the shortest enrollment number accepted.
const MinEnrollmentLength = 7

// enrollment matches a token of at least MinEnrollmentLength alphanumerics.
var enrollment = `[A-Za-z0-9]{` + strconv.Itoa(MinEnrollmentLength) + `,}`

var (
	horizontalSpace = regexp.MustCompile(`[^\S\n]+`)

	// Name (Enrollment)
	parenthesized = regexp.MustCompile(`([A-Za-z][A-Za-z.' -]*?)\s*\(\s*(` + enrollment + `)\s*\)`)

	// [index] Enrollment Name [email] Venue
	tabular = regexp.MustCompile(`(?:\b\d{1,4}[.)]?\s+)?\b(` + enrollment + `)\s+([^@\d\s][^@\n]*?)\s+(?:([\w.+-]+@[\w-]+(?:\.[\w-]+)+)\s+)?\b(CL\d+|[A-Z]{2}\d+)\b`)
)

// matcher pulls entries out of normalized text in one dialect.
type matcher func(text string) []model.ShortlistEntry

// dialects run in order; earlier dialects win enrollment collisions.
var dialects = []matcher{matchParenthesized, matchTabular}

// Extract returns the roster found in text, unique by enrollment number with
// the first occurrence kept.
func Extract(text string) []model.ShortlistEntry {
	text = normalize(text)
	var all []model.ShortlistEntry
	for _, m := range dialects {
		all = append(all, m(text)...)
	}
	return dedup.Unique(all, func(e model.ShortlistEntry) string {
		return strings.ToUpper(e.EnrollmentNumber)
	})
}

// Resolve returns the roster to show for n. A roster supplied with the notice
// always wins; otherwise text is scanned only for roster-eligible categories.
func Resolve(n model.RawNotice, normalizedCategory string, includeOffers bool) []model.ShortlistEntry {
	if len(n.Roster) > 0 {
		return n.Roster
	}
	if !category.RosterEligible(normalizedCategory, includeOffers) {
		return nil
	}
	return Extract(n.Message())
}

// normalize folds compatibility forms (NBSP, full-width brackets), drops
// emphasis markers and collapses horizontal whitespace. Newlines survive so
// rows stay separate.
func normalize(text string) string {
	text = markup.StripEmphasis(norm.NFKC.String(text))
	return horizontalSpace.ReplaceAllString(text, " ")
}

func matchParenthesized(text string) []model.ShortlistEntry {
	var out []model.ShortlistEntry
	for _, m := range parenthesized.FindAllStringSubmatch(text, -1) {
		name := cleanName(m[1])
		if name == "" {
			continue
		}
		out = append(out, model.ShortlistEntry{Name: name, EnrollmentNumber: m[2]})
	}
	return out
}

// matchTabular scans rows left to right. A candidate whose enrollment token
// has no digit (a heading word such as "Interview") is not a row; the scan
// resumes right after that token so a real row later on the line is kept.
func matchTabular(text string) []model.ShortlistEntry {
	var out []model.ShortlistEntry
	for pos := 0; pos < len(text); {
		m := tabular.FindStringSubmatchIndex(text[pos:])
		if m == nil {
			break
		}
		number := text[pos+m[2] : pos+m[3]]
		if !strings.ContainsAny(number, "0123456789") {
			pos += m[3]
			continue
		}
		name := cleanName(text[pos+m[4] : pos+m[5]])
		e := model.ShortlistEntry{
			Name:             name,
			EnrollmentNumber: number,
			Venue:            text[pos+m[8] : pos+m[9]],
		}
		if m[6] >= 0 {
			e.Email = text[pos+m[6] : pos+m[7]]
		}
		pos += m[1]
		if name == "" {
			continue
		}
		out = append(out, e)
	}
	return out
}

func cleanName(s string) string {
	return strings.Trim(strings.TrimSpace(s), " -,")
}
