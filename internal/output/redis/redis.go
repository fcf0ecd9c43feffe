// Package redis pushes visible notice views onto a capped Redis list that
// feed readers consume newest-last.
package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/crimson-sun/bulletin/internal/engine/compactor"
	"github.com/crimson-sun/bulletin/internal/model"
	"github.com/crimson-sun/bulletin/internal/output"
)

const (
	DefaultKey       = "bulletin:feed"
	defaultMaxLength = 500
)

// feed is the subset of *redis.Client the output uses.
type feed interface {
	RPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	LTrim(ctx context.Context, key string, start, stop int64) *redis.StatusCmd
	Close() error
}

// Option configures a redis Output.
type Option func(*Output)

// WithKey sets the list key. Default: bulletin:feed.
func WithKey(key string) Option {
	return func(o *Output) {
		if key != "" {
			o.key = key
		}
	}
}

// WithMaxLength caps the list; older entries are trimmed. Default: 500.
func WithMaxLength(n int64) Option {
	return func(o *Output) {
		if n > 0 {
			o.maxLength = n
		}
	}
}

// WithVerbosity sets the field stripping applied before encoding. Default: Standard.
func WithVerbosity(v compactor.Verbosity) Option {
	return func(o *Output) { o.verbosity = v }
}

// Output appends view JSON to a Redis list.
type Output struct {
	client    feed
	key       string
	maxLength int64
	verbosity compactor.Verbosity
}

// New parses redisURL, verifies connectivity and returns the output.
func New(ctx context.Context, redisURL string, opts ...Option) (*Output, error) {
	ropts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis output: parse url: %w", err)
	}
	client := redis.NewClient(ropts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis output: ping: %w", err)
	}
	return newOutput(client, opts...), nil
}

func newOutput(client feed, opts ...Option) *Output {
	o := &Output{
		client:    client,
		key:       DefaultKey,
		maxLength: defaultMaxLength,
		verbosity: compactor.Standard,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Write appends the view and trims the list to the newest maxLength entries.
// Hidden views are skipped.
func (o *Output) Write(ctx context.Context, view model.NoticeView) error {
	if view.Hidden {
		return nil
	}
	data, err := json.Marshal(output.FormatView(view, o.verbosity))
	if err != nil {
		return fmt.Errorf("redis output: marshal: %w", err)
	}
	if err := o.client.RPush(ctx, o.key, data).Err(); err != nil {
		return fmt.Errorf("redis output: rpush %s: %w", o.key, err)
	}
	if err := o.client.LTrim(ctx, o.key, -o.maxLength, -1).Err(); err != nil {
		return fmt.Errorf("redis output: ltrim %s: %w", o.key, err)
	}
	return nil
}

func (o *Output) Close() error {
	return o.client.Close()
}
