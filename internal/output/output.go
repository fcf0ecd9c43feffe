package output

import (
	"context"

	"github.com/crimson-sun/bulletin/internal/model"
)

// Output defines the interface for notice view destinations.
type Output interface {
	Write(ctx context.Context, view model.NoticeView) error
	Close() error
}
