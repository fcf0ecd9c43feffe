package bulletin

import (
	"errors"
	"fmt"

	"github.com/crimson-sun/bulletin/internal/engine"
	"github.com/crimson-sun/bulletin/internal/engine/category"
	"github.com/crimson-sun/bulletin/internal/engine/classifier"
	"github.com/crimson-sun/bulletin/internal/engine/compactor"
	"github.com/crimson-sun/bulletin/internal/engine/roster"
	"github.com/crimson-sun/bulletin/internal/engine/timestamp"
	"github.com/crimson-sun/bulletin/internal/engine/vocabulary"
	"github.com/crimson-sun/bulletin/internal/model"
)

// ErrMalformed is returned for a notice with neither a message nor a category.
var ErrMalformed = errors.New("bulletin: malformed notice")

// Bulletin is a notice extraction engine. Safe for concurrent use.
type Bulletin struct {
	engine  *engine.Engine
	stamper *timestamp.Extractor
}

// New creates a Bulletin instance.
func New(opts ...Option) (*Bulletin, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	verbosity, err := compactor.ParseVerbosity(o.verbosity)
	if err != nil {
		return nil, fmt.Errorf("bulletin: %w", err)
	}

	vocab := vocabulary.Default()
	if o.vocabularyFile != "" {
		if vocab, err = vocabulary.Load(o.vocabularyFile); err != nil {
			return nil, fmt.Errorf("bulletin: %w", err)
		}
	}
	compiled, err := vocab.Compile()
	if err != nil {
		return nil, fmt.Errorf("bulletin: %w", err)
	}

	stamper := timestamp.New(o.location)
	eng := engine.New(stamper, classifier.New(compiled), compactor.New(verbosity),
		engine.WithWorkers(o.workers))
	return &Bulletin{engine: eng, stamper: stamper}, nil
}

// Parse extracts a view from a bare category and message.
func (b *Bulletin) Parse(category, message string) (View, error) {
	return b.Process(Notice{Category: category, Message: message})
}

// Process extracts the view of one stored notice.
func (b *Bulletin) Process(n Notice) (View, error) {
	v, err := b.engine.Process(toRaw(n))
	if err != nil {
		return View{}, wrap(err)
	}
	return viewFromModel(v), nil
}

// ProcessBatch processes notices concurrently and returns views in input
// order. One malformed notice fails the batch.
func (b *Bulletin) ProcessBatch(ns []Notice) ([]View, error) {
	raws := make([]model.RawNotice, len(ns))
	for i, n := range ns {
		raws[i] = toRaw(n)
	}
	vs, err := b.engine.ProcessBatch(raws)
	if err != nil {
		return nil, wrap(err)
	}
	views := make([]View, len(vs))
	for i, v := range vs {
		views[i] = viewFromModel(v)
	}
	return views, nil
}

// Timestamp finds the first embedded date/time in text and returns it as
// ISO-8601.
func (b *Bulletin) Timestamp(text string) (string, bool) {
	r, ok := b.stamper.Extract(text)
	return r.Value, ok
}

// NormalizeCategory maps a free-form category onto the canonical set.
// It is idempotent.
func NormalizeCategory(raw string) string {
	return category.NormalizeNotice(raw)
}

// ExtractRoster finds shortlisted students in text, first occurrence of
// each enrollment number kept.
func ExtractRoster(text string) []Student {
	return studentsFromModel(roster.Extract(text))
}

func wrap(err error) error {
	if errors.Is(err, engine.ErrMalformed) {
		return fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return fmt.Errorf("bulletin: %w", err)
}

func toRaw(n Notice) model.RawNotice {
	raw := model.RawNotice{
		ID:               n.ID,
		Category:         n.Category,
		FormattedMessage: n.Message,
		Content:          n.Content,
		Title:            n.Title,
		Author:           n.Author,
		CreatedAt:        n.SavedAt,
		TimeSent:         n.SentAt,
	}
	for _, s := range n.Roster {
		raw.Roster = append(raw.Roster, model.ShortlistEntry(s))
	}
	return raw
}

func viewFromModel(v model.NoticeView) View {
	out := View{
		ID:          v.ID,
		Category:    v.Category,
		Title:       v.Title,
		Author:      v.Author,
		Timestamp:   v.Timestamp,
		Company:     v.Company,
		Role:        v.Role,
		CTC:         v.CTC,
		Location:    v.Location,
		Deadline:    v.Deadline,
		Summary:     v.Summary,
		Body:        v.Body,
		HiringSteps: v.HiringSteps,
		Roster:      studentsFromModel(v.Roster),
		Hidden:      v.Hidden,
		Raw:         v.Raw,
	}
	for _, c := range v.Eligibility {
		out.Eligibility = append(out.Eligibility, Criterion{
			Kind:    string(c.Kind),
			Courses: c.Courses,
			Level:   c.Level,
			Value:   c.Value,
			Unit:    c.Unit,
			Text:    c.Text,
		})
	}
	return out
}

func studentsFromModel(es []model.ShortlistEntry) []Student {
	if len(es) == 0 {
		return nil
	}
	out := make([]Student, len(es))
	for i, e := range es {
		out[i] = Student(e)
	}
	return out
}
