package mongodb

import (
	"context"
	"os"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/crimson-sun/bulletin/internal/connector"
	"github.com/crimson-sun/bulletin/internal/model"
)

func TestBuildFilter(t *testing.T) {
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	f := buildFilter(start, end, "shortlisting")
	rng, ok := f["createdAt"].(bson.M)
	if !ok {
		t.Fatalf("createdAt filter missing: %v", f)
	}
	if rng["$gte"] != "2025-03-01T00:00:00.000Z" || rng["$lt"] != "2025-03-01T01:00:00.000Z" {
		t.Fatalf("unexpected range: %v", rng)
	}
	if f["category"] != "shortlisting" {
		t.Fatalf("category filter = %v", f["category"])
	}

	open := buildFilter(start, time.Time{}, "")
	if _, ok := open["category"]; ok {
		t.Fatal("empty category should not filter")
	}
	if _, ok := open["createdAt"].(bson.M)["$lt"]; ok {
		t.Fatal("zero end should leave range open")
	}
}

func TestFindOptions(t *testing.T) {
	if o := findOptions(25); o.Limit == nil || *o.Limit != 25 {
		t.Fatalf("limit not applied: %+v", o.Limit)
	}
	if o := findOptions(0); o.Limit != nil {
		t.Fatalf("zero limit should not be set, got %d", *o.Limit)
	}
}

func TestMissingEndpoint(t *testing.T) {
	c := &Connector{}
	if _, err := c.Query(context.Background(), connector.ConnectorConfig{}, connector.QueryParams{}); err == nil {
		t.Fatal("expected error for missing endpoint")
	}
}

// TestIntegration runs against a live MongoDB when BULLETIN_TEST_MONGO_URI is set.
func TestIntegration(t *testing.T) {
	uri := os.Getenv("BULLETIN_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("BULLETIN_TEST_MONGO_URI not set, skipping integration test")
	}
	ctx := context.Background()
	cfg := connector.ConnectorConfig{
		Endpoint: uri,
		Extra:    map[string]string{connector.ExtraDatabase: "bulletin_test", connector.ExtraCollection: "notices_" + time.Now().Format("150405")},
	}

	client, coll, err := open(ctx, cfg)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer client.Disconnect(ctx)
	defer coll.Drop(ctx)

	now := time.Now().UTC()
	docs := []any{
		model.RawNotice{ID: "m1", Category: "update", FormattedMessage: "one", CreatedAt: connector.FormatTime(now.Add(-2 * time.Minute))},
		model.RawNotice{ID: "m2", Category: "shortlisting", FormattedMessage: "two", CreatedAt: connector.FormatTime(now.Add(-time.Minute))},
	}
	if _, err := coll.InsertMany(ctx, docs); err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := (&Connector{}).Query(ctx, cfg, connector.QueryParams{Start: now.Add(-time.Hour), End: now})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(got) != 2 || got[0].ID != "m1" || got[1].ID != "m2" {
		t.Fatalf("unexpected notices: %+v", got)
	}

	got, err = (&Connector{}).Query(ctx, cfg, connector.QueryParams{Start: now.Add(-time.Hour), End: now, Category: "shortlisting"})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(got) != 1 || got[0].Source != "mongo" {
		t.Fatalf("category filter failed: %+v", got)
	}
}
