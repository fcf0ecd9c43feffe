// Package hiring turns a raw hiring-process block into ordered steps.
package hiring

import (
	"regexp"
	"strings"

	"github.com/crimson-sun/bulletin/internal/engine/markup"
)

var (
	stepMarker  = regexp.MustCompile(`^\s*(?:\d+\s*[.)](?:\s+|$)|[-–—•]|\*\s)\s*`)
	restatement = regexp.MustCompile(`(?i)^(?:hiring|process|flow|[\s:*_])+$`)
)

// Format returns the steps of block in order, one per non-empty line, with
// ordinals and bullet markers removed.
func Format(block string) []string {
	var steps []string
	for _, line := range strings.Split(block, "\n") {
		step := stripMarkers(strings.TrimSpace(line))
		if step == "" || restatement.MatchString(markup.StripEmphasis(step)) {
			continue
		}
		steps = append(steps, step)
	}
	return steps
}

// stripMarkers removes stacked markers such as "1. - ".
func stripMarkers(s string) string {
	for {
		loc := stepMarker.FindStringIndex(s)
		if loc == nil || loc[1] == 0 {
			return strings.TrimSpace(s)
		}
		s = s[loc[1]:]
	}
}
