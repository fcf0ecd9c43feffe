package connector

import (
	"context"
	"time"

	"github.com/crimson-sun/bulletin/internal/model"
)

// Connector defines the interface all notice source connectors must implement.
type Connector interface {
	// Stream polls the source and sends notices as they appear.
	Stream(ctx context.Context, cfg ConnectorConfig) (<-chan model.RawNotice, error)

	// Query fetches a batch of stored notices matching the given parameters.
	Query(ctx context.Context, cfg ConnectorConfig, params QueryParams) ([]model.RawNotice, error)
}

// ConnectorConfig holds provider-specific connection settings.
type ConnectorConfig struct {
	Provider string
	APIKey   string
	Endpoint string
	Extra    map[string]string
}

// QueryParams defines filters for notice queries. Start and End bound the
// saved-at time; zero values leave that side open.
type QueryParams struct {
	Start    time.Time
	End      time.Time
	Limit    int
	Category string
}

// Extra keys understood by the built-in connectors.
const (
	ExtraPollInterval = "poll_interval"
	ExtraDatabase     = "database"
	ExtraCollection   = "collection"
	ExtraTable        = "table"
)

// PollInterval reads the poll interval from cfg.Extra, falling back to def.
func PollInterval(cfg ConnectorConfig, def time.Duration) time.Duration {
	if s := cfg.Extra[ExtraPollInterval]; s != "" {
		if d, err := time.ParseDuration(s); err == nil && d > 0 {
			return d
		}
	}
	return def
}

// ExtraOr returns cfg.Extra[key] or def when unset.
func ExtraOr(cfg ConnectorConfig, key, def string) string {
	if v := cfg.Extra[key]; v != "" {
		return v
	}
	return def
}
