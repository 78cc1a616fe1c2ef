// Package sink implements the terminal presentation layer: turning a
// render.RasterBuffer and its projected labels into bytes on an output
// stream, and the registry that lets cmd/marigraph pick a sink by name.
package sink

import (
	"io"

	"github.com/superposition/marigraph/internal/render"
)

// Sink paints one frame. Present is called once per render tick; a sink
// that buffers or double-buffers internally does so behind this single
// call.
type Sink interface {
	Name() string
	Present(buf *render.RasterBuffer, labels []render.ProjectedLabel) error
	Close() error
}

// Factory constructs a Sink bound to a particular io.Writer-backed target.
// Sinks that don't need one (headless) ignore the argument.
type Factory func(opts Options) (Sink, error)

// Options carries the construction-time parameters a Factory may need.
// Not every sink uses every field: headless ignores all of them.
type Options struct {
	Width, Height int
	Writer        io.Writer // defaults to os.Stdout when nil
	NoColor       bool      // force-disable SGR color codes
}
