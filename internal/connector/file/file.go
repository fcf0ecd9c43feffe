// Package file reads notices from a local JSON array or NDJSON file.
package file

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/crimson-sun/bulletin/internal/connector"
	"github.com/crimson-sun/bulletin/internal/model"
)

const defaultPollInterval = 5 * time.Second

func init() {
	connector.Register("file", func() connector.Connector {
		return &Connector{}
	})
}

// Connector treats cfg.Endpoint as a file path.
type Connector struct{}

// load reads every notice in path. A leading '[' selects JSON-array form;
// anything else is parsed as one notice per line.
func load(path string) ([]model.RawNotice, error) {
	if path == "" {
		return nil, errors.New("file connector: path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("file connector: %w", err)
	}

	var out []model.RawNotice
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &out); err != nil {
			return nil, fmt.Errorf("file connector: parse %s: %w", path, err)
		}
	} else {
		sc := bufio.NewScanner(bytes.NewReader(data))
		sc.Buffer(make([]byte, 0, 64*1024), 16<<20)
		for line := 1; sc.Scan(); line++ {
			b := bytes.TrimSpace(sc.Bytes())
			if len(b) == 0 {
				continue
			}
			var n model.RawNotice
			if err := json.Unmarshal(b, &n); err != nil {
				return nil, fmt.Errorf("file connector: %s:%d: %w", path, line, err)
			}
			out = append(out, n)
		}
		if err := sc.Err(); err != nil {
			return nil, fmt.Errorf("file connector: %w", err)
		}
	}
	for i := range out {
		out[i].Source = "file"
	}
	return out, nil
}

// Query returns notices in file order. Time bounds apply only to notices with
// a parseable saved-at; undated notices are always included.
func (c *Connector) Query(_ context.Context, cfg connector.ConnectorConfig, params connector.QueryParams) ([]model.RawNotice, error) {
	all, err := load(cfg.Endpoint)
	if err != nil {
		return nil, err
	}
	var out []model.RawNotice
	for _, n := range all {
		if params.Category != "" && n.Category != params.Category {
			continue
		}
		if ts := connector.SavedAt(n); !ts.IsZero() {
			if !params.Start.IsZero() && ts.Before(params.Start) {
				continue
			}
			if !params.End.IsZero() && !ts.Before(params.End) {
				continue
			}
		}
		out = append(out, n)
		if params.Limit > 0 && len(out) == params.Limit {
			break
		}
	}
	return out, nil
}

// Stream emits every notice once, then emits notices appended later whose
// saved-at is newer than any seen.
func (c *Connector) Stream(ctx context.Context, cfg connector.ConnectorConfig) (<-chan model.RawNotice, error) {
	if _, err := load(cfg.Endpoint); err != nil {
		return nil, err
	}
	interval := connector.PollInterval(cfg, defaultPollInterval)
	first := true

	return connector.Poll(ctx, "file", interval, time.Time{}, func(_ context.Context, since time.Time) ([]model.RawNotice, error) {
		all, err := load(cfg.Endpoint)
		if err != nil {
			return nil, err
		}
		if first {
			first = false
			return all, nil
		}
		var fresh []model.RawNotice
		for _, n := range all {
			if connector.SavedAt(n).After(since) {
				fresh = append(fresh, n)
			}
		}
		sort.SliceStable(fresh, func(i, j int) bool {
			return connector.SavedAt(fresh[i]).Before(connector.SavedAt(fresh[j]))
		})
		return fresh, nil
	}), nil
}
