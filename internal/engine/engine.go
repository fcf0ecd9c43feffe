package engine

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/google/uuid"

	"github.com/crimson-sun/bulletin/internal/engine/category"
	"github.com/crimson-sun/bulletin/internal/engine/classifier"
	"github.com/crimson-sun/bulletin/internal/engine/compactor"
	"github.com/crimson-sun/bulletin/internal/engine/eligibility"
	"github.com/crimson-sun/bulletin/internal/engine/hiring"
	"github.com/crimson-sun/bulletin/internal/engine/roster"
	"github.com/crimson-sun/bulletin/internal/engine/segmenter"
	"github.com/crimson-sun/bulletin/internal/engine/timestamp"
	"github.com/crimson-sun/bulletin/internal/model"
)

// ErrMalformed is returned for a notice with neither message nor category.
var ErrMalformed = errors.New("malformed notice: missing message and category")

// noticeNamespace scopes derived notice IDs.
var noticeNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("bulletin:notice"))

// Engine orchestrates the stamp → segment → format → filter → compact pipeline.
type Engine struct {
	stamper    *timestamp.Extractor
	classifier *classifier.Classifier
	compactor  *compactor.Compactor
	workers    int
}

// Option configures an Engine.
type Option func(*Engine)

// WithWorkers bounds the goroutines ProcessBatch uses. n <= 0 means
// GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(e *Engine) { e.workers = n }
}

// New creates an Engine with the provided components.
func New(ts *timestamp.Extractor, cls *classifier.Classifier, cmp *compactor.Compactor, opts ...Option) *Engine {
	e := &Engine{
		stamper:    ts,
		classifier: cls,
		compactor:  cmp,
	}
	for _, o := range opts {
		o(e)
	}
	if e.workers <= 0 {
		e.workers = runtime.GOMAXPROCS(0)
	}
	return e
}

// Process turns one raw notice into its view. The only error is
// ErrMalformed; every other input yields a best-effort view.
func (e *Engine) Process(n model.RawNotice) (model.NoticeView, error) {
	if n.Malformed() {
		return model.NoticeView{}, ErrMalformed
	}

	e.stamper.Stamp(&n)
	cat := category.NormalizeNotice(n.Category)
	msg := n.Message()

	// Segmenter output feeds the formatters, so these run in order.
	parsed := segmenter.Segment(msg, cat)
	criteria := eligibility.Format(parsed.EligibilityRaw)
	steps := hiring.Format(parsed.HiringRaw)

	title := n.Title
	if title == "" {
		title = parsed.Title
	}

	v := model.NoticeView{
		ID:          noticeID(n),
		Category:    cat,
		Title:       title,
		Author:      n.Author,
		Timestamp:   firstNonEmpty(n.TimeSent, n.CreatedAt),
		Company:     parsed.Company,
		Role:        parsed.Role,
		CTC:         parsed.CTC,
		Location:    parsed.Location,
		Deadline:    parsed.Deadline,
		Body:        parsed.Body,
		Eligibility: criteria,
		HiringSteps: steps,
		Roster:      roster.Resolve(n, cat, true),
		Hidden: e.classifier.Hide(classifier.Input{
			Message: n.FormattedMessage,
			Title:   n.Title,
			Author:  n.Author,
			Content: n.Content,
		}),
		Source: n.Source,
		Raw:    msg,
	}
	return e.compactor.Compact(v), nil
}

// ProcessBatch processes notices concurrently over a bounded set of workers.
// The result is in input order. If any notice is malformed the whole batch
// fails so callers can fall back to Process per notice.
func (e *Engine) ProcessBatch(ns []model.RawNotice) ([]model.NoticeView, error) {
	for i, n := range ns {
		if n.Malformed() {
			return nil, fmt.Errorf("notice %d: %w", i, ErrMalformed)
		}
	}

	views := make([]model.NoticeView, len(ns))
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < min(e.workers, len(ns)); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				// Malformed notices were rejected above.
				views[i], _ = e.Process(ns[i])
			}
		}()
	}
	for i := range ns {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	return views, nil
}

// noticeID returns the stored ID, or a UUIDv5 derived from the notice's
// content so recomputed views keep the same identity.
func noticeID(n model.RawNotice) string {
	if n.ID != "" {
		return n.ID
	}
	key := n.Category + "\x00" + n.Title + "\x00" + n.Message()
	return uuid.NewSHA1(noticeNamespace, []byte(key)).String()
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
