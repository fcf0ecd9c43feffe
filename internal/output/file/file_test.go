package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/crimson-sun/bulletin/internal/engine/compactor"
	"github.com/crimson-sun/bulletin/internal/model"
)

func testView(cat, company string) model.NoticeView {
	return model.NoticeView{
		ID:        "n-" + company,
		Category:  cat,
		Title:     company + " update",
		Company:   company,
		Timestamp: "2026-02-28T12:00:00.000Z",
		Summary:   company + " is hiring.",
		Body:      company + " is hiring.",
		Raw:       "raw announcement",
	}
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}

func TestWriteProducesValidNDJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.jsonl")
	out, err := New(path, compactor.Standard)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	for i := 0; i < 5; i++ {
		if err := out.Write(context.Background(), testView("job_posting", "Acme")); err != nil {
			t.Fatalf("Write error: %v", err)
		}
	}
	out.Close()

	lines := readLines(t, path)
	if len(lines) != 5 {
		t.Fatalf("got %d lines, want 5", len(lines))
	}
	for i, line := range lines {
		var v model.NoticeView
		if err := json.Unmarshal([]byte(line), &v); err != nil {
			t.Errorf("line %d: invalid JSON: %v", i, err)
		}
		if v.Company != "Acme" {
			t.Errorf("line %d: company = %q, want Acme", i, v.Company)
		}
	}
}

func TestRotationTriggersAtMaxSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.jsonl")

	// Each line is well over 100 bytes, so every write after the first rotates.
	out, err := New(path, compactor.Standard, WithMaxSize(200))
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	for i := 0; i < 5; i++ {
		if err := out.Write(context.Background(), testView("shortlisting", "Globex")); err != nil {
			t.Fatalf("Write error: %v", err)
		}
	}
	out.Close()

	if _, err := os.Stat(path + ".1"); os.IsNotExist(err) {
		t.Error("expected rotated file .1 to exist")
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("current file stat error: %v", err)
	}
	if info.Size() == 0 {
		t.Error("current file is empty after rotation")
	}
}

func TestRotationKeepsMaxBackups(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.jsonl")
	out, err := New(path, compactor.Standard, WithMaxSize(10), WithMaxBackups(2))
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	for i := 0; i < 6; i++ {
		if err := out.Write(context.Background(), testView("job_posting", fmt.Sprintf("Co%d", i))); err != nil {
			t.Fatalf("Write error: %v", err)
		}
	}
	out.Close()

	if _, err := os.Stat(path + ".2"); err != nil {
		t.Errorf("expected backup .2: %v", err)
	}
	if _, err := os.Stat(path + ".3"); !os.IsNotExist(err) {
		t.Error("backup .3 should not exist with max backups 2")
	}

	// Newest line is in the live file, the one before it in .1.
	if got := readLines(t, path); len(got) != 1 || !strings.Contains(got[0], "Co5") {
		t.Errorf("live file = %v", got)
	}
	if got := readLines(t, path+".1"); len(got) != 1 || !strings.Contains(got[0], "Co4") {
		t.Errorf(".1 = %v", got)
	}
}

func TestCloseFlushesData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.jsonl")
	out, err := New(path, compactor.Standard)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	out.Write(context.Background(), testView("internship", "Initech"))
	out.Close()

	data, _ := os.ReadFile(path)
	if len(data) == 0 {
		t.Error("file is empty, Close did not flush buffered data")
	}
}

func TestAppendsToExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.jsonl")
	if err := os.WriteFile(path, []byte("{\"id\":\"old\"}\n"), 0644); err != nil {
		t.Fatal(err)
	}
	out, err := New(path, compactor.Standard)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	out.Write(context.Background(), testView("job_posting", "Acme"))
	out.Close()

	if lines := readLines(t, path); len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
}

func TestVerbosityMinimalStripsFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.jsonl")
	out, err := New(path, compactor.Minimal)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	out.Write(context.Background(), testView("job_posting", "Acme"))
	out.Close()

	var m map[string]any
	json.Unmarshal([]byte(readLines(t, path)[0]), &m)

	if _, ok := m["raw"]; ok {
		t.Error("Minimal verbosity should strip 'raw' field")
	}
	if _, ok := m["body"]; ok {
		t.Error("Minimal verbosity should strip 'body' field")
	}
}

func TestConcurrentWritesSafe(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.jsonl")
	out, err := New(path, compactor.Standard)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out.Write(context.Background(), testView("job_posting", "Acme"))
		}()
	}
	wg.Wait()
	out.Close()

	if lines := readLines(t, path); len(lines) != 50 {
		t.Errorf("got %d lines, want 50", len(lines))
	}
}

func TestNewBadPath(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing", "out.jsonl"), compactor.Standard)
	if err == nil {
		t.Fatal("expected error for missing directory")
	}
}
