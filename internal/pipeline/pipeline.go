package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/crimson-sun/bulletin/internal/connector"
	"github.com/crimson-sun/bulletin/internal/engine/dedup"
	"github.com/crimson-sun/bulletin/internal/model"
	"github.com/crimson-sun/bulletin/internal/output"
)

// Processor turns raw notices into views. *engine.Engine satisfies it.
type Processor interface {
	Process(n model.RawNotice) (model.NoticeView, error)
	ProcessBatch(ns []model.RawNotice) ([]model.NoticeView, error)
}

// Pipeline connects a connector, processor and output.
type Pipeline struct {
	connector connector.Connector
	processor Processor
	output    output.Output

	dedup         *dedup.Deduplicator
	window        time.Duration
	maxBufferSize int

	skipped atomic.Int64
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithDedup buffers streamed views for window and collapses repeats with d.
func WithDedup(d *dedup.Deduplicator, window time.Duration) Option {
	return func(p *Pipeline) {
		p.dedup = d
		p.window = window
	}
}

// WithMaxBufferSize forces a buffer flush once n views are pending.
// 0 means unlimited.
func WithMaxBufferSize(n int) Option {
	return func(p *Pipeline) { p.maxBufferSize = n }
}

// New creates a Pipeline from the given components.
func New(conn connector.Connector, proc Processor, out output.Output, opts ...Option) *Pipeline {
	p := &Pipeline{
		connector: conn,
		processor: proc,
		output:    out,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Stream processes notices as the connector delivers them. It blocks until
// the context is cancelled or the connector closes its channel.
func (p *Pipeline) Stream(ctx context.Context, cfg connector.ConnectorConfig) error {
	ch, err := p.connector.Stream(ctx, cfg)
	if err != nil {
		return fmt.Errorf("pipeline stream: %w", err)
	}
	if p.dedup != nil {
		return p.streamWithDedup(ctx, ch)
	}
	return p.streamDirect(ctx, ch)
}

func (p *Pipeline) streamDirect(ctx context.Context, ch <-chan model.RawNotice) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case n, ok := <-ch:
			if !ok {
				return nil
			}
			view, ok := p.process(n)
			if !ok {
				continue
			}
			if err := p.output.Write(ctx, view); err != nil {
				return fmt.Errorf("pipeline output: %w", err)
			}
		}
	}
}

func (p *Pipeline) streamWithDedup(ctx context.Context, ch <-chan model.RawNotice) error {
	buf := newStreamBuffer(p.dedup, p.output, p.window, p.maxBufferSize)
	for {
		select {
		case <-ctx.Done():
			// Flush what is pending on a fresh context so it is not lost.
			if err := buf.flush(context.Background()); err != nil {
				return fmt.Errorf("pipeline flush: %w", err)
			}
			return ctx.Err()
		case <-buf.flushCh():
			if err := buf.flush(ctx); err != nil {
				return fmt.Errorf("pipeline flush: %w", err)
			}
		case n, ok := <-ch:
			if !ok {
				if err := buf.flush(ctx); err != nil {
					return fmt.Errorf("pipeline flush: %w", err)
				}
				return nil
			}
			view, ok := p.process(n)
			if !ok {
				continue
			}
			if buf.add(view) {
				if err := buf.flush(ctx); err != nil {
					return fmt.Errorf("pipeline flush: %w", err)
				}
			}
		}
	}
}

// Query runs the pipeline once over a batch of stored notices.
func (p *Pipeline) Query(ctx context.Context, cfg connector.ConnectorConfig, params connector.QueryParams) error {
	notices, err := p.connector.Query(ctx, cfg, params)
	if err != nil {
		return fmt.Errorf("pipeline query: %w", err)
	}

	views, err := p.processor.ProcessBatch(notices)
	if err != nil {
		slog.Warn("batch processing failed, falling back to per-notice", "error", err)
		views = views[:0]
		for _, n := range notices {
			if view, ok := p.process(n); ok {
				views = append(views, view)
			}
		}
	}

	if p.dedup != nil {
		views = p.dedup.DeduplicateBatch(views)
	}
	for _, view := range views {
		if err := p.output.Write(ctx, view); err != nil {
			return fmt.Errorf("pipeline output: %w", err)
		}
	}
	return nil
}

// process runs one notice, counting and logging a skip on failure.
func (p *Pipeline) process(n model.RawNotice) (model.NoticeView, bool) {
	view, err := p.processor.Process(n)
	if err != nil {
		p.skipped.Add(1)
		slog.Warn("skipping notice", "notice_id", n.ID, "source", n.Source, "error", err)
		return model.NoticeView{}, false
	}
	return view, true
}

// Skipped returns how many notices failed processing so far.
func (p *Pipeline) Skipped() int64 {
	return p.skipped.Load()
}

// Close shuts down the output.
func (p *Pipeline) Close() error {
	if n := p.skipped.Load(); n > 0 {
		slog.Info("pipeline skipped notices", "count", n)
	}
	return p.output.Close()
}
