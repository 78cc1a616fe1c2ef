package sink

import (
	"bufio"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/superposition/marigraph/internal/render"
)

const ansiSinkName = "ansi"

func init() {
	mustRegister(ansiSinkName, newANSISink)
}

var sgrCode = map[render.ColorTag]string{
	render.ColorBlack:   "30",
	render.ColorRed:     "31",
	render.ColorGreen:   "32",
	render.ColorYellow:  "33",
	render.ColorBlue:    "34",
	render.ColorMagenta: "35",
	render.ColorCyan:    "36",
	render.ColorWhite:   "37",
	render.ColorGray:    "90",
}

const (
	escClear    = "\x1b[2J"
	escHome     = "\x1b[H"
	escReset    = "\x1b[0m"
	escHideCurs = "\x1b[?25l"
	escShowCurs = "\x1b[?25h"
)

// ansiSink paints a RasterBuffer to a terminal using SGR color escapes,
// redrawing the whole frame from the home position each Present call.
type ansiSink struct {
	out   *bufio.Writer
	color bool
}

func newANSISink(opts Options) (Sink, error) {
	w := opts.Writer
	if w == nil {
		w = os.Stdout
	}

	color := !opts.NoColor
	if f, ok := w.(*os.File); ok && !opts.NoColor {
		color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}

	s := &ansiSink{out: bufio.NewWriter(w), color: color}
	fmt.Fprint(s.out, escHideCurs)
	return s, nil
}

func (s *ansiSink) Name() string { return ansiSinkName }

// Present redraws the full frame: clear, home cursor, one line per row,
// label annotations appended after the raster, then flush.
func (s *ansiSink) Present(buf *render.RasterBuffer, labels []render.ProjectedLabel) error {
	fmt.Fprint(s.out, escClear, escHome)

	for y := 0; y < buf.Height; y++ {
		var lastColor render.ColorTag
		haveColor := false
		for x := 0; x < buf.Width; x++ {
			cell := buf.Cells[y*buf.Width+x]
			ch := cell.Char
			if ch == 0 {
				ch = ' '
			}
			if s.color && (!haveColor || cell.Color != lastColor) {
				s.writeSGR(cell.Color)
				lastColor = cell.Color
				haveColor = true
			}
			s.out.WriteRune(ch)
		}
		if s.color {
			fmt.Fprint(s.out, escReset)
		}
		s.out.WriteByte('\n')
	}

	for _, label := range labels {
		fmt.Fprintf(s.out, "\x1b[%d;%dH%s", label.Y+1, label.X+1, label.Text)
	}
	fmt.Fprint(s.out, escReset)

	return s.out.Flush()
}

func (s *ansiSink) writeSGR(tag render.ColorTag) {
	code, ok := sgrCode[tag]
	if !ok {
		code = sgrCode[render.ColorWhite]
	}
	fmt.Fprintf(s.out, "\x1b[%sm", code)
}

func (s *ansiSink) Close() error {
	fmt.Fprint(s.out, escReset, escShowCurs)
	return s.out.Flush()
}
