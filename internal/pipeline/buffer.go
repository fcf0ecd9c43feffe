package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/crimson-sun/bulletin/internal/engine/dedup"
	"github.com/crimson-sun/bulletin/internal/model"
	"github.com/crimson-sun/bulletin/internal/output"
)

// streamBuffer holds streamed notice views for one dedup window so that
// repeated deliveries of a notice leave the buffer as a single view.
type streamBuffer struct {
	dedup   *dedup.Deduplicator
	out     output.Output
	window  time.Duration
	maxSize int // 0 means unlimited

	mu      sync.Mutex
	pending []model.NoticeView
	hidden  int // pending views the bot filter hid
	timer   *time.Timer
}

func newStreamBuffer(d *dedup.Deduplicator, out output.Output, window time.Duration, maxSize int) *streamBuffer {
	return &streamBuffer{dedup: d, out: out, window: window, maxSize: maxSize}
}

// add queues a view; the first view of a window arms the flush timer. The
// result reports whether maxSize is reached. Hidden views do not count
// toward maxSize, so a burst of bot announcements cannot force early flushes.
func (b *streamBuffer) add(view model.NoticeView) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.pending) == 0 {
		b.timer = time.NewTimer(b.window)
	}
	b.pending = append(b.pending, view)
	if view.Hidden {
		b.hidden++
	}
	return b.maxSize > 0 && len(b.pending)-b.hidden >= b.maxSize
}

// flushCh is nil while nothing is pending.
func (b *streamBuffer) flushCh() <-chan time.Time {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.timer == nil {
		return nil
	}
	return b.timer.C
}

// flush writes the deduplicated pending views. Visible notices go out
// first in arrival order, followed by hidden ones.
func (b *streamBuffer) flush(ctx context.Context) error {
	b.mu.Lock()
	views, hidden := b.pending, b.hidden
	b.pending, b.hidden = nil, 0
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	b.mu.Unlock()

	if len(views) == 0 {
		return nil
	}

	merged := b.dedup.DeduplicateBatch(views)
	slog.Debug("flushing notice buffer", "received", len(views), "hidden", hidden, "unique", len(merged))

	for _, pass := range []bool{false, true} {
		for _, v := range merged {
			if v.Hidden != pass {
				continue
			}
			if err := b.out.Write(ctx, v); err != nil {
				return err
			}
		}
	}
	return nil
}
