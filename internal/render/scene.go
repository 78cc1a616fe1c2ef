package render

import (
	"fmt"
	"math"

	"github.com/superposition/marigraph/internal/surface"
)

// Style tags a Segment by the part of the scene it belongs to.
type Style string

const (
	StyleWireframe Style = "wireframe"
	StyleAxis      Style = "axis"
	StyleGrid      Style = "grid"
	StyleSurface   Style = "surface"
)

// Segment is a single 3D line in model space, tagged with the style it
// belongs to and, for surface segments, its normalized height and any
// lighting intensity computed for it.
type Segment struct {
	A, B     Point3
	Style    Style
	ZValue   float64 // normalized [-1,1], meaningful only for StyleSurface
	Lighting float64 // intensity multiplier in [0,1], 1 = unlit
}

// Label is a text annotation anchored to a model-space position.
type Label struct {
	Pos  Point3
	Text string
}

// Scene is the renderer-ready, unprojected representation of a Surface:
// cube wireframe, axes, bottom grid, and surface mesh.
type Scene struct {
	Segments []Segment
	Labels   []Label
}

var lightPos = Point3{X: 2, Y: -2, Z: 3}

const (
	ambientLight     = 0.15
	specularStrength = 0.4
	shininess        = 16.0
)

// BuildScene normalizes s's axes to [-1,1]^3 and constructs the cube
// wireframe, labeled axes, a bottom grid of divisions+1 lines per axis, and
// the surface mesh.
func BuildScene(s *surface.Surface, divisions int, lighting bool) Scene {
	if divisions < 1 {
		divisions = 10
	}
	scene := Scene{}
	scene.Segments = append(scene.Segments, cubeWireframe()...)

	axisSegs, axisLabels := axes(s.Meta.Labels)
	scene.Segments = append(scene.Segments, axisSegs...)
	scene.Labels = append(scene.Labels, axisLabels...)

	scene.Segments = append(scene.Segments, bottomGrid(divisions)...)
	scene.Segments = append(scene.Segments, surfaceMesh(s, lighting)...)

	return scene
}

func cubeWireframe() []Segment {
	corners := [8]Point3{
		{-1, -1, -1}, {1, -1, -1}, {1, 1, -1}, {-1, 1, -1},
		{-1, -1, 1}, {1, -1, 1}, {1, 1, 1}, {-1, 1, 1},
	}
	edges := [12][2]int{
		{0, 1}, {1, 2}, {2, 3}, {3, 0}, // bottom face
		{4, 5}, {5, 6}, {6, 7}, {7, 4}, // top face
		{0, 4}, {1, 5}, {2, 6}, {3, 7}, // verticals
	}
	out := make([]Segment, len(edges))
	for i, e := range edges {
		out[i] = Segment{A: corners[e[0]], B: corners[e[1]], Style: StyleWireframe}
	}
	return out
}

func axes(labels surface.Labels) ([]Segment, []Label) {
	origin := Point3{X: -1, Y: -1, Z: -1}
	xEnd := Point3{X: 1, Y: -1, Z: -1}
	yEnd := Point3{X: -1, Y: 1, Z: -1}
	zEnd := Point3{X: -1, Y: -1, Z: 1}

	segs := []Segment{
		{A: origin, B: xEnd, Style: StyleAxis},
		{A: origin, B: yEnd, Style: StyleAxis},
		{A: origin, B: zEnd, Style: StyleAxis},
	}
	const past = 1.1
	labelText := func(name, fallback string) string {
		if name != "" {
			return name
		}
		return fallback
	}
	labs := []Label{
		{Pos: Point3{X: past, Y: -1, Z: -1}, Text: labelText(labels.X, "x")},
		{Pos: Point3{X: -1, Y: past, Z: -1}, Text: labelText(labels.Y, "y")},
		{Pos: Point3{X: -1, Y: -1, Z: past}, Text: labelText(labels.Z, "z")},
	}
	return segs, labs
}

func bottomGrid(divisions int) []Segment {
	var out []Segment
	for i := 0; i <= divisions; i++ {
		v := -1 + 2*float64(i)/float64(divisions)
		out = append(out,
			Segment{A: Point3{X: -1, Y: v, Z: -1}, B: Point3{X: 1, Y: v, Z: -1}, Style: StyleGrid},
			Segment{A: Point3{X: v, Y: -1, Z: -1}, B: Point3{X: v, Y: 1, Z: -1}, Style: StyleGrid},
		)
	}
	return out
}

// normalizedPoint maps Surface grid index (xi,yi) to a point in [-1,1]^3
// using the surface's cached per-axis domains.
func normalizedPoint(s *surface.Surface, xi, yi int) Point3 {
	nx := normalize(s.X[xi], s.Meta.XDomain.Min, s.Meta.XDomain.Max)
	ny := normalize(s.Y[yi], s.Meta.YDomain.Min, s.Meta.YDomain.Max)
	nz := normalize(s.At(xi, yi), s.Meta.ZDomain.Min, s.Meta.ZDomain.Max)
	return Point3{X: nx, Y: ny, Z: nz}
}

func normalize(v, min, max float64) float64 {
	if max <= min {
		return 0
	}
	return -1 + 2*(v-min)/(max-min)
}

func surfaceMesh(s *surface.Surface, lighting bool) []Segment {
	var out []Segment
	for xi := 0; xi < s.NX; xi++ {
		for yi := 0; yi < s.NY; yi++ {
			p := normalizedPoint(s, xi, yi)
			if xi+1 < s.NX {
				q := normalizedPoint(s, xi+1, yi)
				out = append(out, meshSegment(s, p, q, xi, yi, xi+1, yi, lighting))
			}
			if yi+1 < s.NY {
				q := normalizedPoint(s, xi, yi+1)
				out = append(out, meshSegment(s, p, q, xi, yi, xi, yi+1, lighting))
			}
		}
	}
	return out
}

func meshSegment(s *surface.Surface, a, b Point3, ax, ay, bx, by int, lighting bool) Segment {
	seg := Segment{A: a, B: b, Style: StyleSurface, ZValue: (a.Z + b.Z) / 2, Lighting: 1}
	if lighting {
		seg.Lighting = meshLighting(s, ax, ay, bx, by)
	}
	return seg
}

// meshLighting estimates a Lambert+specular intensity at the midpoint of
// the mesh edge (ax,ay)-(bx,by) using a normal derived from the surface's
// local slope, against the fixed light.
func meshLighting(s *surface.Surface, ax, ay, bx, by int) float64 {
	xi, yi := ax, ay
	if bx != ax {
		xi = (ax + bx) / 2
	}
	if by != ay {
		yi = (ay + by) / 2
	}
	field := surface.ComputeSlope(s)
	dzdx, dzdy, _, _ := field.At(xi, yi)

	normal := vec3Normalize(vec3{X: -dzdx, Y: -dzdy, Z: 1})
	midpoint := normalizedPoint(s, xi, yi)
	toLight := vec3Normalize(vec3{X: lightPos.X - midpoint.X, Y: lightPos.Y - midpoint.Y, Z: lightPos.Z - midpoint.Z})
	toCamera := vec3Normalize(vec3{X: -midpoint.X, Y: -midpoint.Y, Z: 1 - midpoint.Z})

	diffuse := math.Max(0, vec3Dot(normal, toLight))
	half := vec3Normalize(vec3{X: toLight.X + toCamera.X, Y: toLight.Y + toCamera.Y, Z: toLight.Z + toCamera.Z})
	specular := specularStrength * math.Pow(math.Max(0, vec3Dot(normal, half)), shininess)

	intensity := ambientLight + (1-ambientLight)*diffuse + specular
	return math.Max(0, math.Min(1, intensity))
}

type vec3 struct{ X, Y, Z float64 }

func vec3Dot(a, b vec3) float64 { return a.X*b.X + a.Y*b.Y + a.Z*b.Z }

func vec3Normalize(v vec3) vec3 {
	l := math.Sqrt(vec3Dot(v, v))
	if l == 0 {
		return vec3{Z: 1}
	}
	return vec3{X: v.X / l, Y: v.Y / l, Z: v.Z / l}
}

// String implements fmt.Stringer for diagnostics.
func (s Scene) String() string {
	return fmt.Sprintf("scene{segments=%d labels=%d}", len(s.Segments), len(s.Labels))
}
