package sink

import "github.com/superposition/marigraph/internal/render"

const headlessSinkName = "headless"

func init() {
	mustRegister(headlessSinkName, newHeadlessSink)
}

// headlessSink discards every frame. Used for scripted runs and tests
// where a worker needs a Sink but nothing should reach a terminal.
type headlessSink struct{}

func newHeadlessSink(Options) (Sink, error) {
	return headlessSink{}, nil
}

func (headlessSink) Name() string { return headlessSinkName }

func (headlessSink) Present(*render.RasterBuffer, []render.ProjectedLabel) error {
	return nil
}

func (headlessSink) Close() error { return nil }
