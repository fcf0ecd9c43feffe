// Package segmenter turns a raw announcement into a typed ParsedMessage with a
// single forward pass over its lines.
package segmenter

import (
	"regexp"
	"strings"

	"github.com/crimson-sun/bulletin/internal/engine/category"
	"github.com/crimson-sun/bulletin/internal/engine/markup"
	"github.com/crimson-sun/bulletin/internal/model"
)

var (
	fieldPattern       = regexp.MustCompile(`(?i)^(company(?:\s+name)?|(?:job\s+)?role|ctc|location)\s*:\s*(.*)$`)
	deadlinePattern    = regexp.MustCompile(`^(?i:deadline)\b(?:\s+(?i:to|for)\s+[a-z ]{0,30})?\s*[:\-–]?\s*(.*)$`)
	eligibilityPattern = regexp.MustCompile(`(?i)^(?:eligibility(?:\s+criteria)?|who\s+can\s+apply)\s*:?\s*(.*)$`)
	hiringPattern      = regexp.MustCompile(`(?i)^(?:hiring|selection|recruitment|interview)\s+(?:process|flow|rounds?)\s*:?\s*(.*)$`)
	footerPattern      = regexp.MustCompile(`(?i)^(?:posted\s+by\b|on\s*:)`)
	bareBracket        = regexp.MustCompile(`^[()\[\]{}]+$`)

	headingMarks = regexp.MustCompile(`^#+\s*`)
	titleWords   = regexp.MustCompile(`(?i)\b(?:job\s+posting|shortlisting\s+update|update|announcement)\b`)
	blankRun     = regexp.MustCompile(`\n{3,}`)

	congratulations = regexp.MustCompile(`(?i)congratulations\s+to\s+the\s+following\s+students?(?:\s+(?:who\s+)?(?:have\s+been|are)\s+shortlisted)?\s*[:!.]*`)
	rosterNoise     = regexp.MustCompile(`^(?:\d+[.)]\s*)?(?:[A-Za-z][A-Za-z .'-]*)?\(\s*[A-Za-z0-9]{7,}\s*\)[,.]?$`)
)

// mode tracks which announcement section the pass believes it is inside.
type mode int

const (
	modeNone mode = iota
	modeEligibility
	modeHiring
)

func (m mode) String() string {
	switch m {
	case modeEligibility:
		return "eligibility"
	case modeHiring:
		return "hiring"
	default:
		return "none"
	}
}

// lineKind is the classification of one line, in priority order.
type lineKind int

const (
	lineContent lineKind = iota
	lineField
	lineDeadline
	lineEligibilityHeader
	lineHiringHeader
	lineFooter
)

// next is the only place the mode changes.
func (m mode) next(k lineKind) mode {
	switch k {
	case lineEligibilityHeader:
		return modeEligibility
	case lineHiringHeader:
		return modeHiring
	case lineFooter:
		return modeNone
	default:
		return m
	}
}

// classified is one line with its kind and the captures that kind needs.
type classified struct {
	kind  lineKind
	label string // lowercased field label for lineField
	value string // field value, deadline text, or header remainder
}

func classify(line string) classified {
	clean := markup.Clean(line)
	if m := fieldPattern.FindStringSubmatch(clean); m != nil {
		return classified{kind: lineField, label: strings.ToLower(m[1]), value: m[2]}
	}
	if m := deadlinePattern.FindStringSubmatch(clean); m != nil {
		return classified{kind: lineDeadline, value: strings.TrimSpace(m[1])}
	}
	if m := eligibilityPattern.FindStringSubmatch(clean); m != nil {
		return classified{kind: lineEligibilityHeader, value: strings.TrimSpace(m[1])}
	}
	if m := hiringPattern.FindStringSubmatch(clean); m != nil {
		return classified{kind: lineHiringHeader, value: strings.TrimSpace(m[1])}
	}
	if footerPattern.MatchString(clean) {
		return classified{kind: lineFooter}
	}
	return classified{kind: lineContent}
}

// Segment parses message, whose category has already been normalized.
// It is a pure function of its two arguments.
func Segment(message, normalizedCategory string) model.ParsedMessage {
	lines := preprocess(message, normalizedCategory)

	var (
		out         model.ParsedMessage
		m           = modeNone
		titleClosed bool
		body        []string
		eligibility []string
		hiring      []string
	)

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		c := classify(line)

		if !titleClosed && trimmed != "" {
			titleClosed = true
			if c.kind != lineField {
				out.Title = cleanTitle(line)
				continue
			}
		}

		switch c.kind {
		case lineField:
			setField(&out, c.label, c.value)
			continue
		case lineDeadline:
			if c.value != "" {
				out.Deadline = c.value
			}
			continue
		case lineEligibilityHeader, lineHiringHeader, lineFooter:
			m = m.next(c.kind)
			if c.value != "" {
				switch m {
				case modeEligibility:
					eligibility = append(eligibility, c.value)
				case modeHiring:
					hiring = append(hiring, c.value)
				}
			}
			continue
		}

		switch m {
		case modeEligibility:
			eligibility = append(eligibility, strings.TrimSpace(markup.StripEmphasis(line)))
		case modeHiring:
			hiring = append(hiring, trimmed)
		default:
			if !bareBracket.MatchString(trimmed) {
				body = append(body, strings.TrimRight(line, " \t"))
			}
		}
	}

	out.Body = strings.TrimSpace(blankRun.ReplaceAllString(strings.Join(body, "\n"), "\n\n"))
	out.EligibilityRaw = strings.TrimSpace(strings.Join(eligibility, "\n"))
	out.HiringRaw = strings.TrimSpace(strings.Join(hiring, "\n"))
	return out
}

// preprocess splits message into lines, dropping banner lines and, for
// shortlisting notices, the congratulatory phrase and standalone roster rows.
func preprocess(message, normalizedCategory string) []string {
	message = strings.ReplaceAll(message, "\r", "")
	shortlisting := normalizedCategory == category.Shortlisting
	if shortlisting {
		message = congratulations.ReplaceAllString(message, "")
	}

	raw := strings.Split(message, "\n")
	lines := raw[:0]
	for _, line := range raw {
		clean := markup.Clean(line)
		if isBanner(clean) {
			continue
		}
		if shortlisting && rosterNoise.MatchString(clean) {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

func isBanner(clean string) bool {
	return strings.EqualFold(strings.ReplaceAll(clean, " ", ""), "announcement")
}

func setField(out *model.ParsedMessage, label, value string) {
	value = strings.TrimSpace(value)
	switch {
	case strings.HasPrefix(label, "company"):
		value = trimStrayParen(value)
		if value != "" {
			out.Company = value
		}
	case strings.HasSuffix(label, "role"):
		value = trimStrayParen(value)
		if value != "" {
			out.Role = value
		}
	case label == "ctc":
		value = trimStrayParen(value)
		if value != "" {
			out.CTC = value
		}
	case label == "location":
		if value != "" {
			out.Location = value
		}
	}
}

// trimStrayParen drops an unmatched trailing "(" left by upstream wrapping.
func trimStrayParen(s string) string {
	return strings.TrimSpace(strings.TrimRight(s, "( "))
}

func cleanTitle(line string) string {
	s := markup.Clean(line)
	s = headingMarks.ReplaceAllString(s, "")
	s = titleWords.ReplaceAllString(s, "")
	s = strings.Join(strings.Fields(s), " ")
	return strings.Trim(s, " -–—:|")
}
