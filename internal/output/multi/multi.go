package multi

import (
	"context"
	"errors"

	"github.com/crimson-sun/bulletin/internal/model"
	"github.com/crimson-sun/bulletin/internal/output"
)

// Multi fans out views to multiple output.Output implementations.
// Each Write call delivers the view to every wrapped output sequentially.
// If one output fails, the remaining outputs still receive the view.
type Multi struct {
	outputs []output.Output
}

// New creates a Multi that fans out to the given outputs.
func New(outputs ...output.Output) *Multi {
	return &Multi{outputs: outputs}
}

// Write delivers the view to every wrapped output. Errors are collected
// but do not prevent delivery to subsequent outputs.
func (m *Multi) Write(ctx context.Context, view model.NoticeView) error {
	var errs []error
	for _, o := range m.outputs {
		if err := o.Write(ctx, view); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close calls Close on every wrapped output, collecting errors.
func (m *Multi) Close() error {
	var errs []error
	for _, o := range m.outputs {
		if err := o.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Visible wraps an output so hidden views (bot posts and short placement
// announcements) never reach it.
func Visible(o output.Output) output.Output {
	return visible{o}
}

type visible struct {
	output.Output
}

func (v visible) Write(ctx context.Context, view model.NoticeView) error {
	if view.Hidden {
		return nil
	}
	return v.Output.Write(ctx, view)
}
