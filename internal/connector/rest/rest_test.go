package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/crimson-sun/bulletin/internal/connector"
	"github.com/crimson-sun/bulletin/internal/model"
)

func writeEnvelope(w http.ResponseWriter, env envelope) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(env)
}

func TestQuery(t *testing.T) {
	var gotQuery, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/notices" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		gotQuery = r.URL.RawQuery
		gotAuth = r.Header.Get("Authorization")
		writeEnvelope(w, envelope{OK: true, Data: []model.RawNotice{
			{ID: "2", Category: "update", FormattedMessage: "later", CreatedAt: "2025-03-01T11:00:00Z"},
			{ID: "1", Category: "update", FormattedMessage: "earlier", CreatedAt: "2025-03-01T10:00:00Z"},
		}})
	}))
	defer srv.Close()

	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	cfg := connector.ConnectorConfig{APIKey: "tok", Endpoint: srv.URL}
	got, err := (&Connector{}).Query(context.Background(), cfg, connector.QueryParams{
		Start: start, End: start.Add(time.Hour * 12), Category: "update", Limit: 10,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0].ID != "1" || got[1].ID != "2" {
		t.Fatalf("expected notices sorted by saved-at, got %+v", got)
	}
	if got[0].Source != "rest" {
		t.Errorf("expected source 'rest', got %q", got[0].Source)
	}
	if gotAuth != "Bearer tok" {
		t.Errorf("unexpected auth: %q", gotAuth)
	}
	for _, want := range []string{"category=update", "limit=10", "from=2025-03-01T00%3A00%3A00Z"} {
		if !strings.Contains(gotQuery, want) {
			t.Errorf("query %q missing %q", gotQuery, want)
		}
	}
}

func TestQuery_ChunksLongRanges(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeEnvelope(w, envelope{OK: true})
	}))
	defer srv.Close()

	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	cfg := connector.ConnectorConfig{Endpoint: srv.URL}
	_, err := (&Connector{}).Query(context.Background(), cfg, connector.QueryParams{Start: start, End: start.Add(20 * 24 * time.Hour)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls.Load() != 3 {
		t.Fatalf("expected 3 chunked requests for 20 days, got %d", calls.Load())
	}
}

func TestQuery_Limit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, envelope{OK: true, Data: []model.RawNotice{{ID: "a"}, {ID: "b"}, {ID: "c"}}})
	}))
	defer srv.Close()

	got, err := (&Connector{}).Query(context.Background(), connector.ConnectorConfig{Endpoint: srv.URL}, connector.QueryParams{Limit: 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 notices, got %d", len(got))
	}
}

func TestQuery_EnvelopeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, envelope{OK: false, Error: "database unavailable"})
	}))
	defer srv.Close()

	_, err := (&Connector{}).Query(context.Background(), connector.ConnectorConfig{Endpoint: srv.URL}, connector.QueryParams{})
	if err == nil || !strings.Contains(err.Error(), "database unavailable") {
		t.Fatalf("expected envelope error, got %v", err)
	}
}

func TestQuery_MissingEndpoint(t *testing.T) {
	if _, err := (&Connector{}).Query(context.Background(), connector.ConnectorConfig{}, connector.QueryParams{}); err == nil {
		t.Fatal("expected error for missing endpoint")
	}
	if _, err := (&Connector{}).Stream(context.Background(), connector.ConnectorConfig{}); err == nil {
		t.Fatal("expected error for missing endpoint")
	}
}

func TestQuery_APIKeyHeader(t *testing.T) {
	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-API-Key")
		writeEnvelope(w, envelope{OK: true})
	}))
	defer srv.Close()

	cfg := connector.ConnectorConfig{APIKey: "k", Endpoint: srv.URL, Extra: map[string]string{"api_key_header": "X-API-Key"}}
	if _, err := (&Connector{}).Query(context.Background(), cfg, connector.QueryParams{}); err != nil {
		t.Fatal(err)
	}
	if gotKey != "k" {
		t.Fatalf("expected X-API-Key header, got %q", gotKey)
	}
}

func TestStream(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		now := time.Now().UTC()
		if n == 1 {
			writeEnvelope(w, envelope{OK: true, Data: []model.RawNotice{
				{ID: "s1", Category: "update", FormattedMessage: "first", CreatedAt: now.Format(time.RFC3339Nano)},
			}})
			return
		}
		writeEnvelope(w, envelope{OK: true})
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := connector.ConnectorConfig{Endpoint: srv.URL, Extra: map[string]string{connector.ExtraPollInterval: "10ms"}}
	ch, err := (&Connector{}).Stream(ctx, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	select {
	case n := <-ch:
		if n.ID != "s1" || n.Source != "rest" {
			t.Fatalf("unexpected notice: %+v", n)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for streamed notice")
	}

	cancel()
	for range ch {
	}
	if calls.Load() < 1 {
		t.Fatal("expected at least one poll")
	}
}
