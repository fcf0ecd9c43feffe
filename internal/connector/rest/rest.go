package rest

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/crimson-sun/bulletin/internal/connector"
	"github.com/crimson-sun/bulletin/internal/connector/httpclient"
	"github.com/crimson-sun/bulletin/internal/model"
)

const (
	defaultPollInterval = 30 * time.Second
	defaultLookback     = 24 * time.Hour
	maxWindowDuration   = 7 * 24 * time.Hour
	notices             = "/notices"
)

func init() {
	connector.Register("rest", func() connector.Connector {
		return &Connector{}
	})
}

// Connector reads notices from an HTTP API that answers GET /notices with an
// {ok, data, error} envelope.
type Connector struct{}

type envelope struct {
	OK    bool              `json:"ok"`
	Data  []model.RawNotice `json:"data"`
	Error string            `json:"error,omitempty"`
}

func newClient(cfg connector.ConnectorConfig) (*httpclient.Client, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("rest connector: endpoint is required")
	}
	var opts []httpclient.Option
	if h := cfg.Extra["api_key_header"]; h != "" {
		opts = append(opts, httpclient.WithAPIKeyHeader(h))
	}
	return httpclient.New(cfg.Endpoint, cfg.APIKey, opts...), nil
}

func fetch(ctx context.Context, client *httpclient.Client, from, to time.Time, category string, limit int) ([]model.RawNotice, error) {
	q := url.Values{}
	q.Set("from", from.UTC().Format(time.RFC3339Nano))
	if !to.IsZero() {
		q.Set("to", to.UTC().Format(time.RFC3339Nano))
	}
	if category != "" {
		q.Set("category", category)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	var env envelope
	if err := client.GetJSON(ctx, notices, q, &env); err != nil {
		return nil, fmt.Errorf("rest connector: %w", err)
	}
	if !env.OK {
		msg := env.Error
		if msg == "" {
			msg = "request not ok"
		}
		return nil, fmt.Errorf("rest connector: %s", msg)
	}
	for i := range env.Data {
		env.Data[i].Source = "rest"
	}
	return env.Data, nil
}

func (c *Connector) Query(ctx context.Context, cfg connector.ConnectorConfig, params connector.QueryParams) ([]model.RawNotice, error) {
	client, err := newClient(cfg)
	if err != nil {
		return nil, err
	}
	start, end := connector.Window(params, defaultLookback)

	// Split into bounded chunks so one request never spans an unbounded range.
	var results []model.RawNotice
	for chunkStart := start; chunkStart.Before(end); {
		chunkEnd := chunkStart.Add(maxWindowDuration)
		if chunkEnd.After(end) {
			chunkEnd = end
		}
		batch, err := fetch(ctx, client, chunkStart, chunkEnd, params.Category, params.Limit)
		if err != nil {
			return nil, err
		}
		results = append(results, batch...)
		chunkStart = chunkEnd
	}

	sort.SliceStable(results, func(i, j int) bool {
		return connector.SavedAt(results[i]).Before(connector.SavedAt(results[j]))
	})
	if params.Limit > 0 && len(results) > params.Limit {
		results = results[:params.Limit]
	}
	return results, nil
}

func (c *Connector) Stream(ctx context.Context, cfg connector.ConnectorConfig) (<-chan model.RawNotice, error) {
	client, err := newClient(cfg)
	if err != nil {
		return nil, err
	}
	interval := connector.PollInterval(cfg, defaultPollInterval)
	since := time.Now().Add(-time.Minute)

	return connector.Poll(ctx, "rest", interval, since, func(ctx context.Context, since time.Time) ([]model.RawNotice, error) {
		// from is inclusive server-side; drop the boundary notice already sent.
		batch, err := fetch(ctx, client, since, time.Time{}, "", 0)
		if err != nil {
			return nil, err
		}
		out := batch[:0]
		for _, n := range batch {
			if connector.SavedAt(n).After(since) {
				out = append(out, n)
			}
		}
		return out, nil
	}), nil
}
