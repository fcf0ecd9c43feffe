// Package markup strips chat-style emphasis, decorative emoji and bullet
// markers from announcement lines.
package markup

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	leadingUnderscore  = regexp.MustCompile(`(^|\s)_+`)
	trailingUnderscore = regexp.MustCompile(`_+(\s|$)`)
	bulletPrefix       = regexp.MustCompile(`^[\s•●○◦▪▫·*\-–—>]+`)
	spaceRun           = regexp.MustCompile(`[ \t]+`)
)

// StripEmphasis removes *bold*, ~strike~ and _italic_ markers. Underscores
// inside words (snake_case, e-mail addresses) are kept.
func StripEmphasis(s string) string {
	s = strings.NewReplacer("*", "", "~", "", "`", "").Replace(s)
	s = leadingUnderscore.ReplaceAllString(s, "$1")
	return trailingUnderscore.ReplaceAllString(s, "$1")
}

// StripDecoration removes emoji, pictographs and their joiners/selectors.
func StripDecoration(s string) string {
	return strings.Map(func(r rune) rune {
		if isDecoration(r) {
			return -1
		}
		return r
	}, s)
}

func isDecoration(r rune) bool {
	switch {
	case r == 0xFE0F || r == 0xFE0E || r == 0x200D || r == 0x20E3:
		return true
	case r >= 0x1F000:
		return true
	case r >= 0x2190 && unicode.Is(unicode.So, r):
		return true
	}
	return false
}

// Clean strips emphasis and decoration, collapses runs of spaces and trims.
func Clean(s string) string {
	s = StripDecoration(StripEmphasis(s))
	return strings.TrimSpace(spaceRun.ReplaceAllString(s, " "))
}

// StripBullet removes leading bullet glyphs, dashes and asterisks.
func StripBullet(s string) string {
	return strings.TrimSpace(bulletPrefix.ReplaceAllString(s, ""))
}

// IsBulletOnly reports whether s holds nothing but bullet markers.
func IsBulletOnly(s string) bool {
	return strings.TrimSpace(s) != "" && StripBullet(s) == ""
}
