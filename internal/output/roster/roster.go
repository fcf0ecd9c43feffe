// Package roster exports the ShortlistEntry lists of each view as CSV rows,
// one row per student, fields written verbatim.
package roster

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/crimson-sun/bulletin/internal/model"
)

// Header is the first row of every export.
var Header = []string{"notice_id", "name", "enrollment_number", "email", "venue"}

// Output writes roster rows to a CSV stream.
type Output struct {
	mu     sync.Mutex
	w      *csv.Writer
	closer io.Closer
	header bool
}

// New creates (or truncates) the file at path.
func New(path string) (*Output, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("roster export: create %s: %w", path, err)
	}
	return NewWriter(f), nil
}

// NewWriter writes to w. If w is an io.Closer it is closed by Close.
func NewWriter(w io.Writer) *Output {
	o := &Output{w: csv.NewWriter(w)}
	if c, ok := w.(io.Closer); ok {
		o.closer = c
	}
	return o
}

// Write emits one row per roster entry. Views without a roster write nothing.
func (o *Output) Write(_ context.Context, view model.NoticeView) error {
	if len(view.Roster) == 0 {
		return nil
	}
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.header {
		if err := o.w.Write(Header); err != nil {
			return fmt.Errorf("roster export: %w", err)
		}
		o.header = true
	}
	for _, e := range view.Roster {
		row := []string{view.ID, e.Name, e.EnrollmentNumber, e.Email, e.Venue}
		if err := o.w.Write(row); err != nil {
			return fmt.Errorf("roster export: %w", err)
		}
	}
	o.w.Flush()
	return o.w.Error()
}

func (o *Output) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.w.Flush()
	err := o.w.Error()
	if o.closer != nil {
		if cerr := o.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
