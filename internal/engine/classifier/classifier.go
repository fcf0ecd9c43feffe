package classifier

import (
	"strings"
	"unicode/utf8"

	"github.com/crimson-sun/bulletin/internal/engine/vocabulary"
)

// Input is the slice of a notice the bot filter looks at.
type Input struct {
	Message string
	Title   string
	Author  string
	Content string
}

// Classifier decides whether a notice is a short, generic bot announcement
// that should be kept out of the feed.
type Classifier struct {
	vocab *vocabulary.Compiled
}

// New creates a Classifier over a compiled vocabulary. A nil vocabulary uses
// the built-in one.
func New(vocab *vocabulary.Compiled) *Classifier {
	if vocab == nil {
		vocab = vocabulary.MustDefault()
	}
	return &Classifier{vocab: vocab}
}

// Hide reports whether in should be hidden. A bot author hides the notice
// outright; otherwise it is hidden only when the combined text is short and
// matches one of the announcement phrases.
func (c *Classifier) Hide(in Input) bool {
	return c.BotAuthor(in.Author) || c.shortAnnouncement(in)
}

// BotAuthor reports whether author matches the bot-name vocabulary.
func (c *Classifier) BotAuthor(author string) bool {
	a := strings.ToLower(author)
	if a == "" {
		return false
	}
	for _, bot := range c.vocab.BotAuthors {
		if strings.Contains(a, bot) {
			return true
		}
	}
	return false
}

func (c *Classifier) shortAnnouncement(in Input) bool {
	text := combined(in)
	if utf8.RuneCountInString(text) >= c.vocab.MaxLength {
		return false
	}
	for _, re := range c.vocab.Phrases {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// combined joins message, title and content, skipping a content fallback that
// merely repeats the message.
func combined(in Input) string {
	parts := []string{in.Message, in.Title}
	if in.Content != in.Message {
		parts = append(parts, in.Content)
	}
	var b strings.Builder
	for _, p := range parts {
		if p = strings.TrimSpace(p); p == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(p)
	}
	return b.String()
}
