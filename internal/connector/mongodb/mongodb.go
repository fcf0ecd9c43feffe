package mongodb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/crimson-sun/bulletin/internal/connector"
	"github.com/crimson-sun/bulletin/internal/model"
)

const (
	defaultDatabase     = "placements"
	defaultCollection   = "notices"
	defaultPollInterval = 30 * time.Second
	defaultLookback     = 24 * time.Hour
	connectTimeout      = 10 * time.Second
)

func init() {
	connector.Register("mongo", func() connector.Connector {
		return &Connector{}
	})
}

// Connector reads notices from a MongoDB collection keyed by createdAt.
type Connector struct{}

func open(ctx context.Context, cfg connector.ConnectorConfig) (*mongo.Client, *mongo.Collection, error) {
	if cfg.Endpoint == "" {
		return nil, nil, errors.New("mongo connector: endpoint (connection URI) is required")
	}
	cctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(cctx, options.Client().ApplyURI(cfg.Endpoint))
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connector: connect: %w", err)
	}
	if err := client.Ping(cctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("mongo connector: ping: %w", err)
	}
	db := connector.ExtraOr(cfg, connector.ExtraDatabase, defaultDatabase)
	coll := connector.ExtraOr(cfg, connector.ExtraCollection, defaultCollection)
	return client, client.Database(db).Collection(coll), nil
}

// buildFilter selects notices saved in [start, end), optionally of one
// category. A zero end leaves the range open above.
func buildFilter(start, end time.Time, category string) bson.M {
	rng := bson.M{"$gte": connector.FormatTime(start)}
	if !end.IsZero() {
		rng["$lt"] = connector.FormatTime(end)
	}
	filter := bson.M{"createdAt": rng}
	if category != "" {
		filter["category"] = category
	}
	return filter
}

func findOptions(limit int) *options.FindOptions {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return opts
}

func find(ctx context.Context, coll *mongo.Collection, filter bson.M, limit int) ([]model.RawNotice, error) {
	cur, err := coll.Find(ctx, filter, findOptions(limit))
	if err != nil {
		return nil, fmt.Errorf("mongo connector: find: %w", err)
	}
	var out []model.RawNotice
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("mongo connector: decode: %w", err)
	}
	for i := range out {
		out[i].Source = "mongo"
	}
	return out, nil
}

func (c *Connector) Query(ctx context.Context, cfg connector.ConnectorConfig, params connector.QueryParams) ([]model.RawNotice, error) {
	client, coll, err := open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer client.Disconnect(context.Background())

	start, end := connector.Window(params, defaultLookback)
	return find(ctx, coll, buildFilter(start, end, params.Category), params.Limit)
}

func (c *Connector) Stream(ctx context.Context, cfg connector.ConnectorConfig) (<-chan model.RawNotice, error) {
	client, coll, err := open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	interval := connector.PollInterval(cfg, defaultPollInterval)

	ch := connector.Poll(ctx, "mongo", interval, time.Now().Add(-time.Minute), func(ctx context.Context, since time.Time) ([]model.RawNotice, error) {
		filter := bson.M{"createdAt": bson.M{"$gt": connector.FormatTime(since)}}
		return find(ctx, coll, filter, 0)
	})

	go func() {
		<-ctx.Done()
		if err := client.Disconnect(context.Background()); err != nil {
			slog.Warn("mongo disconnect failed", "error", err)
		}
	}()
	return ch, nil
}
