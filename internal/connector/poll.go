package connector

import (
	"context"
	"log/slog"
	"time"

	"github.com/crimson-sun/bulletin/internal/model"
)

// FetchFunc returns notices saved strictly after since, oldest first.
type FetchFunc func(ctx context.Context, since time.Time) ([]model.RawNotice, error)

// Poll calls fetch immediately and then every interval, sending new notices on
// the returned channel and advancing a saved-at high-water mark. Fetch errors
// are logged and retried on the next tick. The channel closes when ctx ends.
func Poll(ctx context.Context, provider string, interval time.Duration, since time.Time, fetch FetchFunc) <-chan model.RawNotice {
	ch := make(chan model.RawNotice, 64)
	go func() {
		defer close(ch)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		mark := since
		for {
			notices, err := fetch(ctx, mark)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				slog.Warn("poll failed", "provider", provider, "error", err)
			}
			for _, n := range notices {
				if ts := SavedAt(n); ts.After(mark) {
					mark = ts
				}
				select {
				case ch <- n:
				case <-ctx.Done():
					return
				}
			}

			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
	return ch
}

// TimeLayout is the saved-at layout stores use. It sorts lexically, so string
// range filters against it are valid.
const TimeLayout = "2006-01-02T15:04:05.000Z"

// FormatTime renders t in TimeLayout.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// SavedAt parses the notice's saved-at time. Unparseable values are zero.
func SavedAt(n model.RawNotice) time.Time {
	if n.CreatedAt == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, n.CreatedAt)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Window resolves open query bounds: a zero End becomes now and a zero Start
// becomes End minus def.
func Window(params QueryParams, def time.Duration) (start, end time.Time) {
	start, end = params.Start, params.End
	if end.IsZero() {
		end = time.Now()
	}
	if start.IsZero() {
		start = end.Add(-def)
	}
	return start, end
}
