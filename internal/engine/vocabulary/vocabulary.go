// Package vocabulary holds the tunable word lists behind the bot-announcement
// filter. It is data, loaded once at startup and compiled into matchers.
package vocabulary

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"
)

// Vocabulary is the serialisable form of the filter's configuration.
type Vocabulary struct {
	// MaxLength is the combined text length, in runes, below which a
	// phrase match hides a notice.
	MaxLength int `json:"max_length"`
	// BotAuthors are matched as case-insensitive substrings of the author.
	BotAuthors []string `json:"bot_authors"`
	// Phrases are RE2 patterns, matched case-insensitively.
	Phrases []string `json:"phrases"`
}

// Default returns the built-in vocabulary.
func Default() Vocabulary {
	return Vocabulary{
		MaxLength: 280,
		BotAuthors: []string{
			"placementbot",
			"placement bot",
			"placement-bot",
			"announcement bot",
			"notifier bot",
			"tpo bot",
			"cdc bot",
		},
		Phrases: []string{
			`\b\d+\s+students?\s+(?:have|has)\s+been\s+placed\s+(?:at|in)\b`,
			`congratulations\s+to\s+all\s+(?:the\s+)?selected`,
			`\bpositions?\s*:`,
			`\bsde\s+intern\s*:\s*\d+\s+offers?\b`,
		},
	}
}

// Load reads a JSON vocabulary from path. Fields left out of the file keep
// their Default values.
func Load(path string) (Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Vocabulary{}, fmt.Errorf("vocabulary: %w", err)
	}
	v := Default()
	if err := json.Unmarshal(data, &v); err != nil {
		return Vocabulary{}, fmt.Errorf("vocabulary: parse %s: %w", path, err)
	}
	return v, nil
}

// Compiled is a Vocabulary ready for matching.
type Compiled struct {
	MaxLength  int
	BotAuthors []string // lowercased
	Phrases    []*regexp.Regexp
}

// Compile validates v and compiles its phrase patterns.
func (v Vocabulary) Compile() (*Compiled, error) {
	if v.MaxLength < 0 {
		return nil, fmt.Errorf("vocabulary: max_length must be >= 0, got %d", v.MaxLength)
	}
	c := &Compiled{MaxLength: v.MaxLength}
	for _, a := range v.BotAuthors {
		if a = strings.ToLower(strings.TrimSpace(a)); a != "" {
			c.BotAuthors = append(c.BotAuthors, a)
		}
	}
	for i, p := range v.Phrases {
		re, err := regexp.Compile("(?i)" + p)
		if err != nil {
			return nil, fmt.Errorf("vocabulary: phrase %d: %w", i, err)
		}
		c.Phrases = append(c.Phrases, re)
	}
	return c, nil
}

// MustDefault compiles Default and panics on failure. The built-in patterns
// are covered by tests.
func MustDefault() *Compiled {
	c, err := Default().Compile()
	if err != nil {
		panic(err)
	}
	return c
}
