package output

import (
	"github.com/crimson-sun/bulletin/internal/engine/compactor"
	"github.com/crimson-sun/bulletin/internal/model"
)

// FormatView returns a copy of the view with fields stripped according to verbosity.
// At Minimal: Raw and Body are emptied (omitted from JSON via omitempty).
// At Standard: Raw is emptied. At Full: all fields preserved.
func FormatView(v model.NoticeView, verbosity compactor.Verbosity) model.NoticeView {
	switch verbosity {
	case compactor.Minimal:
		v.Raw = ""
		v.Body = ""
	case compactor.Standard:
		v.Raw = ""
	}
	return v
}
