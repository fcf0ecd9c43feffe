package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/crimson-sun/bulletin/internal/connector"
	"github.com/crimson-sun/bulletin/internal/model"
)

const (
	defaultTable        = "notices"
	defaultPollInterval = 30 * time.Second
	defaultLookback     = 24 * time.Hour
)

func init() {
	connector.Register("postgres", func() connector.Connector {
		return &Connector{}
	})
}

// Connector reads notices from a Postgres table with a JSONB roster column.
type Connector struct{}

func open(ctx context.Context, cfg connector.ConnectorConfig) (*pgxpool.Pool, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("postgres connector: endpoint (DSN) is required")
	}
	pool, err := pgxpool.New(ctx, cfg.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("postgres connector: pgxpool.New: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres connector: ping: %w", err)
	}
	return pool, nil
}

const columns = `COALESCE(id, ''), COALESCE(category, ''), COALESCE(formatted_message, ''),
	COALESCE(content, ''), COALESCE(title, ''), COALESCE(author, ''), created_at,
	COALESCE(time_sent, ''), shortlisted_students`

// buildQuery selects notices saved in (after, before) order by created_at.
// inclusive makes the lower bound >=. A zero before leaves the range open.
func buildQuery(table string, after, before time.Time, inclusive bool, category string, limit int) (string, []any) {
	var b strings.Builder
	b.WriteString("SELECT " + columns + " FROM " + pgx.Identifier{table}.Sanitize())

	op := ">"
	if inclusive {
		op = ">="
	}
	args := []any{after}
	where := []string{"created_at " + op + " $1"}
	if !before.IsZero() {
		args = append(args, before)
		where = append(where, "created_at < $"+strconv.Itoa(len(args)))
	}
	if category != "" {
		args = append(args, category)
		where = append(where, "category = $"+strconv.Itoa(len(args)))
	}
	b.WriteString(" WHERE " + strings.Join(where, " AND "))
	b.WriteString(" ORDER BY created_at ASC")
	if limit > 0 {
		b.WriteString(" LIMIT " + strconv.Itoa(limit))
	}
	return b.String(), args
}

func query(ctx context.Context, pool *pgxpool.Pool, sql string, args []any) ([]model.RawNotice, error) {
	rows, err := pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres connector: query: %w", err)
	}
	defer rows.Close()

	var out []model.RawNotice
	for rows.Next() {
		var (
			n         model.RawNotice
			createdAt *time.Time
			roster    []byte
		)
		if err := rows.Scan(&n.ID, &n.Category, &n.FormattedMessage, &n.Content, &n.Title,
			&n.Author, &createdAt, &n.TimeSent, &roster); err != nil {
			return nil, fmt.Errorf("postgres connector: scan: %w", err)
		}
		if createdAt != nil {
			n.CreatedAt = connector.FormatTime(*createdAt)
		}
		if n.Roster, err = decodeRoster(roster); err != nil {
			return nil, fmt.Errorf("postgres connector: notice %s: %w", n.ID, err)
		}
		n.Source = "postgres"
		out = append(out, n)
	}
	return out, rows.Err()
}

func decodeRoster(raw []byte) ([]model.ShortlistEntry, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var entries []model.ShortlistEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("decode roster: %w", err)
	}
	return entries, nil
}

func (c *Connector) Query(ctx context.Context, cfg connector.ConnectorConfig, params connector.QueryParams) ([]model.RawNotice, error) {
	pool, err := open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer pool.Close()

	start, end := connector.Window(params, defaultLookback)
	table := connector.ExtraOr(cfg, connector.ExtraTable, defaultTable)
	sql, args := buildQuery(table, start, end, true, params.Category, params.Limit)
	return query(ctx, pool, sql, args)
}

func (c *Connector) Stream(ctx context.Context, cfg connector.ConnectorConfig) (<-chan model.RawNotice, error) {
	pool, err := open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	table := connector.ExtraOr(cfg, connector.ExtraTable, defaultTable)
	interval := connector.PollInterval(cfg, defaultPollInterval)

	ch := connector.Poll(ctx, "postgres", interval, time.Now().Add(-time.Minute), func(ctx context.Context, since time.Time) ([]model.RawNotice, error) {
		sql, args := buildQuery(table, since, time.Time{}, false, "", 0)
		return query(ctx, pool, sql, args)
	})
	go func() {
		<-ctx.Done()
		pool.Close()
	}()
	return ch, nil
}
