package engine

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/crimson-sun/bulletin/internal/engine/classifier"
	"github.com/crimson-sun/bulletin/internal/engine/compactor"
	"github.com/crimson-sun/bulletin/internal/engine/testdata"
	"github.com/crimson-sun/bulletin/internal/engine/timestamp"
	"github.com/crimson-sun/bulletin/internal/model"
)

var ist = time.FixedZone("IST", 5*3600+1800)

func newTestEngine(t *testing.T, v compactor.Verbosity, opts ...Option) *Engine {
	t.Helper()
	return New(timestamp.New(ist), classifier.New(nil), compactor.New(v), opts...)
}

const e2eMessage = "**Company:** Acme\nEligibility:\nCourses: CSE, IT\nHiring Process:\n1. OA\n2. Interview\nJohn Doe (12345678)\nPosted by: Admin"

func TestProcessEndToEnd(t *testing.T) {
	eng := newTestEngine(t, compactor.Full)

	v, err := eng.Process(model.RawNotice{
		ID:               "n-1",
		Category:         "[Shortlisting]",
		FormattedMessage: e2eMessage,
		Author:           "Placement Cell",
	})
	if err != nil {
		t.Fatalf("Process() error: %v", err)
	}

	if v.Category != "shortlisting" {
		t.Errorf("Category = %q, want shortlisting", v.Category)
	}
	if v.Company != "Acme" {
		t.Errorf("Company = %q, want Acme", v.Company)
	}
	wantElig := []model.EligibilityCriterion{{Kind: model.CriterionCourses, Courses: []string{"CSE", "IT"}}}
	if !reflect.DeepEqual(v.Eligibility, wantElig) {
		t.Errorf("Eligibility = %+v, want %+v", v.Eligibility, wantElig)
	}
	if !reflect.DeepEqual(v.HiringSteps, []string{"OA", "Interview"}) {
		t.Errorf("HiringSteps = %q", v.HiringSteps)
	}
	wantRoster := []model.ShortlistEntry{{Name: "John Doe", EnrollmentNumber: "12345678"}}
	if !reflect.DeepEqual(v.Roster, wantRoster) {
		t.Errorf("Roster = %+v, want %+v", v.Roster, wantRoster)
	}
	if v.Hidden {
		t.Error("notice should be visible")
	}
	if v.Raw != e2eMessage {
		t.Error("Full verbosity should keep the raw message")
	}
}

func TestProcessStampsTimestamp(t *testing.T) {
	eng := newTestEngine(t, compactor.Standard)

	v, err := eng.Process(model.RawNotice{
		Category:  "update",
		Content:   "Results announced\n*On:* March 5, 2025 at 2:30 PM IST",
		CreatedAt: "2020-01-01T00:00:00.000Z",
	})
	if err != nil {
		t.Fatalf("Process() error: %v", err)
	}
	if v.Timestamp != "2025-03-05T09:00:00.000Z" {
		t.Errorf("Timestamp = %q, want extracted instant", v.Timestamp)
	}
}

func TestProcessKeepsStoredTimestamp(t *testing.T) {
	eng := newTestEngine(t, compactor.Standard)
	v, _ := eng.Process(model.RawNotice{Category: "update", FormattedMessage: "No date here", CreatedAt: "2024-06-01T08:00:00.000Z"})
	if v.Timestamp != "2024-06-01T08:00:00.000Z" {
		t.Errorf("Timestamp = %q", v.Timestamp)
	}
}

func TestProcessTitlePrecedence(t *testing.T) {
	eng := newTestEngine(t, compactor.Standard)

	v, _ := eng.Process(model.RawNotice{Category: "update", Title: "Stored title", FormattedMessage: "Parsed title\nbody"})
	if v.Title != "Stored title" {
		t.Errorf("Title = %q, want stored title", v.Title)
	}
	v, _ = eng.Process(model.RawNotice{Category: "update", FormattedMessage: "Parsed title\nbody"})
	if v.Title != "Parsed title" {
		t.Errorf("Title = %q, want parsed title", v.Title)
	}
}

func TestProcessMalformed(t *testing.T) {
	eng := newTestEngine(t, compactor.Standard)
	_, err := eng.Process(model.RawNotice{Title: "only a title"})
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
}

func TestProcessDerivedIDStable(t *testing.T) {
	eng := newTestEngine(t, compactor.Standard)
	n := model.RawNotice{Category: "update", FormattedMessage: "Same text"}

	a, _ := eng.Process(n)
	b, _ := eng.Process(n)
	if a.ID == "" || a.ID != b.ID {
		t.Fatalf("derived IDs differ: %q vs %q", a.ID, b.ID)
	}
	n.FormattedMessage = "Other text"
	c, _ := eng.Process(n)
	if c.ID == a.ID {
		t.Fatal("different content should derive a different ID")
	}
}

func TestProcessMinimalDropsBody(t *testing.T) {
	eng := newTestEngine(t, compactor.Minimal)
	v, _ := eng.Process(model.RawNotice{Category: "update", FormattedMessage: "Title\nA body line that becomes the summary."})
	if v.Body != "" || v.Raw != "" {
		t.Fatalf("Minimal kept body=%q raw=%q", v.Body, v.Raw)
	}
	if v.Summary != "A body line that becomes the summary." {
		t.Fatalf("Summary = %q", v.Summary)
	}
}

func TestProcessBatchPreservesOrder(t *testing.T) {
	eng := newTestEngine(t, compactor.Standard, WithWorkers(4))

	var ns []model.RawNotice
	for i := 0; i < 50; i++ {
		ns = append(ns, model.RawNotice{
			ID:               fmt.Sprintf("n-%02d", i),
			Category:         "job posting",
			FormattedMessage: fmt.Sprintf("Drive %d\n**Company:** Co%d", i, i),
		})
	}
	views, err := eng.ProcessBatch(ns)
	if err != nil {
		t.Fatalf("ProcessBatch() error: %v", err)
	}
	if len(views) != len(ns) {
		t.Fatalf("got %d views, want %d", len(views), len(ns))
	}
	for i, v := range views {
		if v.ID != ns[i].ID || v.Company != fmt.Sprintf("Co%d", i) {
			t.Fatalf("views[%d] = %s/%s, out of order", i, v.ID, v.Company)
		}
	}
}

func TestProcessBatchMalformed(t *testing.T) {
	eng := newTestEngine(t, compactor.Standard)
	_, err := eng.ProcessBatch([]model.RawNotice{
		{Category: "update", FormattedMessage: "ok"},
		{},
	})
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
}

func TestProcessBatchEmpty(t *testing.T) {
	eng := newTestEngine(t, compactor.Standard)
	views, err := eng.ProcessBatch(nil)
	if err != nil || len(views) != 0 {
		t.Fatalf("ProcessBatch(nil) = %v, %v", views, err)
	}
}

func TestProcessTotality(t *testing.T) {
	eng := newTestEngine(t, compactor.Full)
	inputs := []string{
		"🎉",
		strings.Repeat("**Company:** x\nEligibility:\nCGPA 10th 7\nHiring Process:\n1. a\n", 2000),
		strings.Repeat("John Doe (12345678) ", 5000),
	}
	for _, in := range inputs {
		if _, err := eng.Process(model.RawNotice{Category: "shortlisting", FormattedMessage: in}); err != nil {
			t.Fatalf("Process() error: %v", err)
		}
	}
}

func TestCorpus(t *testing.T) {
	entries, err := testdata.LoadCorpus()
	if err != nil {
		t.Fatalf("LoadCorpus() error: %v", err)
	}
	eng := newTestEngine(t, compactor.Full)

	for _, e := range entries {
		t.Run(e.Description, func(t *testing.T) {
			v, err := eng.Process(e.Notice)
			if err != nil {
				t.Fatalf("Process() error: %v", err)
			}
			if v.Category != e.ExpectedCategory {
				t.Errorf("Category = %q, want %q", v.Category, e.ExpectedCategory)
			}
			if v.Company != e.ExpectedCompany {
				t.Errorf("Company = %q, want %q", v.Company, e.ExpectedCompany)
			}
			if len(v.Roster) != e.ExpectedRosterSize {
				t.Errorf("Roster size = %d, want %d: %+v", len(v.Roster), e.ExpectedRosterSize, v.Roster)
			}
			if v.Hidden != e.ExpectedHidden {
				t.Errorf("Hidden = %v, want %v", v.Hidden, e.ExpectedHidden)
			}
			if len(e.ExpectedCourses) > 0 {
				var courses []string
				for _, c := range v.Eligibility {
					if c.Kind == model.CriterionCourses {
						courses = c.Courses
						break
					}
				}
				if !reflect.DeepEqual(courses, e.ExpectedCourses) {
					t.Errorf("Courses = %q, want %q", courses, e.ExpectedCourses)
				}
			}
		})
	}
}
