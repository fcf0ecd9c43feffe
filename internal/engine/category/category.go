// Package category maps free-form notice category strings onto the small
// canonical set used downstream.
package category

import (
	"regexp"
	"strings"
)

// Canonical categories. Anything else passes through trimmed and lowercased.
const (
	JobPosting     = "job posting"
	Shortlisting   = "shortlisting"
	Update         = "update"
	PlacementOffer = "placement offer"
)

// shortlistPattern matches the whole string: optional brackets around
// "shortlist" with an optional "ing".
var shortlistPattern = regexp.MustCompile(`^\[?shortlist(?:ing)?\]?$`)

// Normalize trims and lowercases raw and collapses every spelling of
// shortlist/shortlisting into Shortlisting. Normalize is idempotent.
func Normalize(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if shortlistPattern.MatchString(s) {
		return Shortlisting
	}
	return s
}

// NormalizeNotice is the notice-rendering variant of Normalize: it maps the
// storage spellings "job_posting" and "jobposting" to JobPosting first.
func NormalizeNotice(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch s {
	case "job_posting", "jobposting":
		return JobPosting
	}
	return Normalize(s)
}

// IsPlacementUpdate reports whether raw normalizes to one of the
// placement-update kinds the admin read path hides.
func IsPlacementUpdate(raw string) bool {
	switch Normalize(raw) {
	case "placement_update", "placement_updates":
		return true
	}
	return false
}

// IsPlacementOffer accepts both the canonical and the storage spelling.
func IsPlacementOffer(normalized string) bool {
	return normalized == PlacementOffer || normalized == "placement_offer"
}

// RosterEligible reports whether a notice of this normalized category should
// get a roster extracted from its text. Placement offers qualify only on the
// rendering path that asks for them.
func RosterEligible(normalized string, includeOffers bool) bool {
	if normalized == Shortlisting {
		return true
	}
	return includeOffers && IsPlacementOffer(normalized)
}
