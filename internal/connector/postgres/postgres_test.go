package postgres

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/crimson-sun/bulletin/internal/connector"
)

func TestBuildQuery(t *testing.T) {
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	sql, args := buildQuery("notices", start, end, true, "update", 50)
	for _, want := range []string{
		`FROM "notices"`,
		"created_at >= $1",
		"created_at < $2",
		"category = $3",
		"ORDER BY created_at ASC",
		"LIMIT 50",
	} {
		if !strings.Contains(sql, want) {
			t.Errorf("SQL missing %q:\n%s", want, sql)
		}
	}
	if len(args) != 3 || args[2] != "update" {
		t.Fatalf("unexpected args: %v", args)
	}
}

func TestBuildQueryPoll(t *testing.T) {
	sql, args := buildQuery("feed", time.Unix(0, 0), time.Time{}, false, "", 0)
	if !strings.Contains(sql, "created_at > $1") {
		t.Errorf("poll query should use a strict bound:\n%s", sql)
	}
	if strings.Contains(sql, "LIMIT") || strings.Contains(sql, "$2") {
		t.Errorf("unexpected clauses:\n%s", sql)
	}
	if len(args) != 1 {
		t.Fatalf("expected 1 arg, got %d", len(args))
	}
}

func TestBuildQuerySanitizesTable(t *testing.T) {
	sql, _ := buildQuery(`notices"; DROP TABLE users; --`, time.Now(), time.Time{}, true, "", 0)
	if !strings.Contains(sql, `FROM "notices""; DROP TABLE users; --"`) {
		t.Fatalf("table identifier not quoted:\n%s", sql)
	}
}

func TestDecodeRoster(t *testing.T) {
	got, err := decodeRoster([]byte(`[{"name":"John Doe","enrollment_number":"12345678","venue":"CL101"}]`))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].EnrollmentNumber != "12345678" || got[0].Venue != "CL101" {
		t.Fatalf("unexpected roster: %+v", got)
	}
	for _, empty := range [][]byte{nil, []byte("null")} {
		if got, err := decodeRoster(empty); err != nil || got != nil {
			t.Fatalf("decodeRoster(%q) = %v, %v", empty, got, err)
		}
	}
	if _, err := decodeRoster([]byte(`{`)); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestMissingEndpoint(t *testing.T) {
	if _, err := (&Connector{}).Query(context.Background(), connector.ConnectorConfig{}, connector.QueryParams{}); err == nil {
		t.Fatal("expected error for missing DSN")
	}
}

// TestIntegration runs against a live Postgres when BULLETIN_TEST_POSTGRES_DSN is set.
func TestIntegration(t *testing.T) {
	dsn := os.Getenv("BULLETIN_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("BULLETIN_TEST_POSTGRES_DSN not set, skipping integration test")
	}
	ctx := context.Background()
	cfg := connector.ConnectorConfig{Endpoint: dsn, Extra: map[string]string{connector.ExtraTable: "bulletin_test_notices"}}

	pool, err := open(ctx, cfg)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer pool.Close()

	_, err = pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS bulletin_test_notices (
		id text PRIMARY KEY, category text, formatted_message text, content text,
		title text, author text, created_at timestamptz, time_sent text,
		shortlisted_students jsonb)`)
	if err != nil {
		t.Fatalf("create table: %v", err)
	}
	defer pool.Exec(ctx, `DROP TABLE bulletin_test_notices`)

	now := time.Now().UTC()
	_, err = pool.Exec(ctx, `INSERT INTO bulletin_test_notices (id, category, formatted_message, created_at, shortlisted_students)
		VALUES ('p1', 'shortlisting', 'one', $1, '[{"name":"A B","enrollment_number":"1234567"}]'),
		       ('p2', 'update', NULL, $2, NULL)`, now.Add(-2*time.Minute), now.Add(-time.Minute))
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := (&Connector{}).Query(ctx, cfg, connector.QueryParams{Start: now.Add(-time.Hour), End: now})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(got) != 2 || got[0].ID != "p1" || len(got[0].Roster) != 1 || got[1].Roster != nil {
		t.Fatalf("unexpected notices: %+v", got)
	}
}
