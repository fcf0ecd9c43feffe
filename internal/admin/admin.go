// Package admin is the administrative read path: stored notices with their
// timestamps re-derived from the message text, placement updates filtered out.
package admin

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/crimson-sun/bulletin/internal/connector"
	"github.com/crimson-sun/bulletin/internal/engine/category"
	"github.com/crimson-sun/bulletin/internal/engine/timestamp"
	"github.com/crimson-sun/bulletin/internal/model"
)

// Envelope is the read path response.
type Envelope struct {
	OK    bool              `json:"ok"`
	Data  []model.RawNotice `json:"data"`
	Error string            `json:"error,omitempty"`
}

// ReadPath lists notices from one connector.
type ReadPath struct {
	conn    connector.Connector
	cfg     connector.ConnectorConfig
	stamper *timestamp.Extractor
}

// New returns a read path over conn.
func New(conn connector.Connector, cfg connector.ConnectorConfig, stamper *timestamp.Extractor) *ReadPath {
	return &ReadPath{conn: conn, cfg: cfg, stamper: stamper}
}

// List queries the connector and returns the stamped, filtered records.
// A connector failure yields OK=false. Malformed records are left out of Data
// and named in Error, the rest are still returned with OK=true.
func (r *ReadPath) List(ctx context.Context, params connector.QueryParams) Envelope {
	notices, err := r.conn.Query(ctx, r.cfg, params)
	if err != nil {
		return Envelope{OK: false, Data: []model.RawNotice{}, Error: err.Error()}
	}

	data := make([]model.RawNotice, 0, len(notices))
	var malformed []string
	for i, n := range notices {
		if n.Malformed() {
			malformed = append(malformed, describe(i, n))
			continue
		}
		if category.IsPlacementUpdate(n.Category) {
			continue
		}
		r.stamper.Stamp(&n)
		data = append(data, n)
	}

	env := Envelope{OK: true, Data: data}
	if len(malformed) > 0 {
		env.Error = "malformed notice: " + strings.Join(malformed, ", ")
		slog.Warn("admin read path skipped malformed notices",
			"provider", r.cfg.Provider, "count", len(malformed))
	}
	return env
}

func describe(i int, n model.RawNotice) string {
	if n.ID != "" {
		return fmt.Sprintf("#%d (id %s)", i, n.ID)
	}
	return fmt.Sprintf("#%d", i)
}
