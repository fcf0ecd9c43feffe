package classifier

import (
	"strings"
	"testing"

	"github.com/crimson-sun/bulletin/internal/engine/vocabulary"
)

func TestHide(t *testing.T) {
	c := New(nil)
	detailed := "1 student have been placed at Acme. " +
		strings.Repeat("The role involves backend development, on-site at the Pune office, with a joining date in July. ", 11)
	if n := len([]rune(detailed)); n < 1000 {
		t.Fatalf("detailed fixture too short: %d runes", n)
	}

	tests := []struct {
		name string
		in   Input
		want bool
	}{
		{"bot author", Input{Author: "PlacementBot", Message: strings.Repeat("long detailed text ", 200)}, true},
		{"bot author substring", Input{Author: "CDC Bot (official)"}, true},
		{"short placement line", Input{Message: "1 student have been placed at Acme."}, true},
		{"short plural", Input{Message: "12 students have been placed in Globex!"}, true},
		{"congratulations", Input{Title: "Congratulations to all the selected candidates"}, true},
		{"positions label", Input{Message: "Acme\nPositions: 4"}, true},
		{"sde intern offers", Input{Content: "SDE Intern: 3 offers"}, true},
		{"detailed variant", Input{Message: detailed}, false},
		{"short but no phrase", Input{Message: "Pre-placement talk at 4 PM in the auditorium."}, false},
		{"human author", Input{Author: "Abbott", Message: "Drive details inside"}, false},
		{"empty", Input{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Hide(tt.in); got != tt.want {
				t.Errorf("Hide(%+v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestHideLengthCountsRunes(t *testing.T) {
	v := vocabulary.Default()
	v.MaxLength = 45
	cv, err := v.Compile()
	if err != nil {
		t.Fatal(err)
	}
	c := New(cv)

	// 40 runes, 50 bytes.
	msg := "1 student has been placed at Ωμέγα Ωμέγα"
	if !c.Hide(Input{Message: msg}) {
		t.Fatalf("expected %q (%d runes) hidden", msg, len([]rune(msg)))
	}
	if c.Hide(Input{Message: msg, Title: "with a longer title"}) {
		t.Fatal("title should count toward the combined length")
	}
}

func TestCombinedSkipsRepeatedContent(t *testing.T) {
	got := combined(Input{Message: "a", Title: "b", Content: "a"})
	if got != "a b" {
		t.Fatalf("combined = %q, want %q", got, "a b")
	}
}
