package render

import (
	"math"
	"sort"
)

// ColorTag is one of the 9 color classes /§5.1 maps to ANSI SGR
// codes at the display layer.
type ColorTag string

const (
	ColorBlack   ColorTag = "black"
	ColorRed     ColorTag = "red"
	ColorGreen   ColorTag = "green"
	ColorYellow  ColorTag = "yellow"
	ColorBlue    ColorTag = "blue"
	ColorMagenta ColorTag = "magenta"
	ColorCyan    ColorTag = "cyan"
	ColorWhite   ColorTag = "white"
	ColorGray    ColorTag = "gray"
)

var noDepth = math.Inf(-1)

// Cell is one (glyph, color, depth) position in a RasterBuffer.
type Cell struct {
	Char  rune
	Color ColorTag
	Depth float64
}

// RasterBuffer is a W×H grid of Cells. Unpainted cells carry Depth = -Inf.
type RasterBuffer struct {
	Width, Height int
	Cells         []Cell
}

// NewRasterBuffer allocates a blank buffer of the given dimensions.
func NewRasterBuffer(width, height int) *RasterBuffer {
	cells := make([]Cell, width*height)
	for i := range cells {
		cells[i] = Cell{Char: ' ', Depth: noDepth}
	}
	return &RasterBuffer{Width: width, Height: height, Cells: cells}
}

func (b *RasterBuffer) at(x, y int) *Cell {
	return &b.Cells[y*b.Width+x]
}

// In reports whether (x,y) lies within the buffer.
func (b *RasterBuffer) In(x, y int) bool {
	return x >= 0 && x < b.Width && y >= 0 && y < b.Height
}

// ProjectedLabel is a Label placed at final pixel coordinates, ready for a
// display sink to paint.
type ProjectedLabel struct {
	X, Y int
	Text string
}

// zBand maps a normalized zValue (expected in [-1,1]) to the glyph/color
// table.
type zBand struct {
	upper float64
	glyph rune
	color ColorTag
}

var zBands = []zBand{
	{0.08, '·', ColorGray},
	{0.20, '∙', ColorBlue},
	{0.35, ':', ColorCyan},
	{0.50, '░', ColorGreen},
	{0.65, '▒', ColorYellow},
	{0.80, '▓', ColorMagenta},
	{0.95, '█', ColorRed},
	{1.01, '▀', ColorWhite},
}

func glyphForZ(zValue float64) (rune, ColorTag) {
	zp := (zValue + 1) / 2
	for _, band := range zBands {
		if zp < band.upper {
			return band.glyph, band.color
		}
	}
	return '▀', ColorWhite
}

// styleGlyph picks a glyph/color for a fixed-style (non-surface) segment:
// color is fixed by style, and the character variant (bold vs. light) also
// follows style, while the horizontal/vertical/diagonal bucket follows the
// segment's screen-space angle.
func styleGlyph(style Style, dx, dy float64) (rune, ColorTag) {
	bold := style == StyleWireframe
	angle := math.Atan2(math.Abs(dy), math.Abs(dx)) * 180 / math.Pi

	var glyph rune
	switch {
	case angle < 22.5:
		if bold {
			glyph = '━'
		} else {
			glyph = '─'
		}
	case angle > 67.5:
		if bold {
			glyph = '┃'
		} else {
			glyph = '│'
		}
	default:
		if (dx > 0) == (dy > 0) {
			glyph = '╲'
		} else {
			glyph = '╱'
		}
	}

	switch style {
	case StyleWireframe:
		return glyph, ColorWhite
	case StyleAxis:
		return glyph, ColorYellow
	default: // StyleGrid
		return glyph, ColorGray
	}
}

// Render projects scene through proj, scales it into a width×height buffer
// (per its scaling rule), depth-sorts segments back-to-front,
// and rasterizes them with Bresenham's algorithm. Labels are returned
// separately, already placed at their final pixel positions.
func Render(scene Scene, proj Projection, width, height int) (*RasterBuffer, []ProjectedLabel) {
	buf := NewRasterBuffer(width, height)

	type projectedSegment struct {
		Segment
		a, b  Point2
		depth float64
	}
	segs := make([]projectedSegment, len(scene.Segments))
	for i, s := range scene.Segments {
		segs[i] = projectedSegment{
			Segment: s,
			a:       Project3D(s.A, proj),
			b:       Project3D(s.B, proj),
		}
		segs[i].depth = (segs[i].a.Depth + segs[i].b.Depth) / 2
	}
	sort.SliceStable(segs, func(i, j int) bool { return segs[i].depth < segs[j].depth })

	marginX, marginY := 2.0, 1.0
	usableW := math.Max(1, float64(width)-2*marginX)
	usableH := math.Max(1, float64(height)-2*marginY)
	logicalW := math.Max(1e-9, 2*proj.CenterX)
	logicalH := math.Max(1e-9, 2*proj.CenterY)
	scale := math.Min(usableW/logicalW, usableH/logicalH)

	toPixel := func(p Point2) (int, int) {
		px := marginX + usableW/2 + (p.X-proj.CenterX)*scale
		py := marginY + usableH/2 + (p.Y-proj.CenterY)*scale
		return int(math.Round(px)), int(math.Round(py))
	}

	for _, s := range segs {
		x0, y0 := toPixel(s.a)
		x1, y1 := toPixel(s.b)
		var glyph rune
		var color ColorTag
		if s.Style == StyleSurface {
			glyph, color = glyphForZ(s.ZValue)
		} else {
			glyph, color = styleGlyph(s.Style, float64(x1-x0), float64(y1-y0))
		}
		drawLine(buf, x0, y0, x1, y1, s.depth, glyph, color)
	}

	labels := make([]ProjectedLabel, 0, len(scene.Labels))
	for _, l := range scene.Labels {
		p := Project3D(l.Pos, proj)
		x, y := toPixel(p)
		labels = append(labels, ProjectedLabel{X: x, Y: y, Text: l.Text})
	}
	return buf, labels
}

// drawLine steps Bresenham's algorithm from (x0,y0) to (x1,y1), writing
// (glyph,color,depth) at each pixel whose existing depth is <= depth, so
// later (closer) draws win ties, matching painter's order.
func drawLine(buf *RasterBuffer, x0, y0, x1, y1 int, depth float64, glyph rune, color ColorTag) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy

	for {
		if buf.In(x0, y0) {
			cell := buf.at(x0, y0)
			if depth >= cell.Depth {
				cell.Char = glyph
				cell.Color = color
				cell.Depth = depth
			}
		}
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
