package dedup

import (
	"strings"
	"time"

	"github.com/crimson-sun/bulletin/internal/model"
)

// Unique returns items with later duplicates removed, keeping first-occurrence
// order. Items whose key is empty are kept as-is.
func Unique[T any](items []T, key func(T) string) []T {
	if len(items) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(items))
	out := make([]T, 0, len(items))
	for _, it := range items {
		k := key(it)
		if k != "" {
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
		}
		out = append(out, it)
	}
	return out
}

// Config controls deduplication behavior.
type Config struct {
	Window time.Duration // grouping window (default 5m)
}

// Deduplicator collapses repeated deliveries of the same notice within a
// time window.
type Deduplicator struct {
	cfg Config
}

// New creates a Deduplicator with the given config.
func New(cfg Config) *Deduplicator {
	return &Deduplicator{cfg: cfg}
}

// group accumulates views with the same dedup key.
type group struct {
	view    model.NoticeView
	count   int
	firstTS time.Time
}

// DeduplicateBatch collapses views with the same key whose timestamps are
// within Window of the group's first delivery. Returns views in
// first-occurrence order and sets Count on merged views.
func (d *Deduplicator) DeduplicateBatch(views []model.NoticeView) []model.NoticeView {
	if len(views) == 0 {
		return nil
	}

	// Ordered map: preserve first-occurrence order.
	var order []*group
	groups := make(map[string]*group)

	for _, v := range views {
		key := Key(v)
		ts := parseTimestamp(v.Timestamp)

		g, exists := groups[key]
		if exists && within(ts, g.firstTS, d.cfg.Window) {
			g.count++
			continue
		}

		// New group: either new key or outside window.
		g = &group{view: v, count: 1, firstTS: ts}
		groups[key] = g
		order = append(order, g)
	}

	result := make([]model.NoticeView, 0, len(order))
	for _, g := range order {
		v := g.view
		if g.count > 1 {
			v.Count = g.count
		}
		result = append(result, v)
	}
	return result
}

// Key identifies a notice across deliveries: its ID when present, otherwise
// category, company and title folded to lower case.
func Key(v model.NoticeView) string {
	if v.ID != "" {
		return "id:" + v.ID
	}
	return strings.ToLower(v.Category + "|" + v.Company + "|" + v.Title)
}

// within treats an unknown timestamp on either side as the same instant.
func within(ts, first time.Time, window time.Duration) bool {
	if ts.IsZero() || first.IsZero() {
		return true
	}
	d := ts.Sub(first)
	if d < 0 {
		d = -d
	}
	return d <= window
}

func parseTimestamp(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
