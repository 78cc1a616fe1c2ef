package sink

import (
	"bytes"
	"strings"
	"testing"

	"github.com/superposition/marigraph/internal/render"
)

func TestOpenUnknownSink(t *testing.T) {
	if _, err := Open("does-not-exist", Options{}); err == nil {
		t.Fatalf("expected error for unknown sink")
	}
}

func TestOpenHeadlessPresentIsNoop(t *testing.T) {
	s, err := Open("headless", Options{})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	buf := render.NewRasterBuffer(4, 2)
	if err := s.Present(buf, nil); err != nil {
		t.Fatalf("present: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestOpenANSIWritesEscapeSequencesAndGlyphs(t *testing.T) {
	var out bytes.Buffer
	s, err := Open("ansi", Options{Width: 3, Height: 1, Writer: &out})
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	buf := render.NewRasterBuffer(3, 1)
	buf.Cells[1] = render.Cell{Char: '#', Color: render.ColorRed}
	if err := s.Present(buf, []render.ProjectedLabel{{X: 0, Y: 0, Text: "iv"}}); err != nil {
		t.Fatalf("present: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	written := out.String()
	if !strings.Contains(written, "#") {
		t.Fatalf("expected glyph in output, got: %q", written)
	}
	if !strings.Contains(written, "iv") {
		t.Fatalf("expected label text in output, got: %q", written)
	}
}

func TestNamesListsBuiltins(t *testing.T) {
	names := Names()
	found := map[string]bool{}
	for _, n := range names {
		found[n] = true
	}
	if !found["ansi"] || !found["headless"] {
		t.Fatalf("expected ansi and headless registered, got: %v", names)
	}
}
