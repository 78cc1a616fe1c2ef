// Package surface implements the regular-grid volatility surface (C2):
// the Surface model itself, its slope field, interpolation, slicing, and
// resampling.
package surface

import (
	"fmt"
	"sort"
	"time"

	"github.com/superposition/marigraph/internal/vecgrid"
)

// Labels names the three axes of a Surface.
type Labels struct {
	X string `json:"x"`
	Y string `json:"y"`
	Z string `json:"z"`
}

// Meta carries the descriptive, cached-on-creation metadata of a Surface.
type Meta struct {
	Labels    Labels                     `json:"labels"`
	XDomain   vecgrid.Domain[float64]    `json:"x_domain"`
	YDomain   vecgrid.Domain[float64]    `json:"y_domain"`
	ZDomain   vecgrid.Domain[float64]    `json:"z_domain"`
	CreatedAt time.Time                  `json:"created_at"`
}

// Surface is a regular, rectilinear sampling of z = f(x,y). X and Y must be
// strictly increasing. Z is row-major: Z[xi*NY+yi] is the sample at
// (X[xi], Y[yi]).
type Surface struct {
	NX, NY int
	X, Y   vecgrid.Vec[float64]
	Z      vecgrid.Vec[float64]
	Meta   Meta
}

// New builds a Surface from axis and value buffers, computing all cached
// domains at creation time. It returns an error if the length relations in
//  are violated or an axis is not strictly increasing.
func New(x, y, z vecgrid.Vec[float64], labels Labels) (*Surface, error) {
	nx, ny := len(x), len(y)
	if nx < 1 || ny < 1 {
		return nil, fmt.Errorf("surface: nx=%d ny=%d must both be >= 1", nx, ny)
	}
	if len(z) != nx*ny {
		return nil, fmt.Errorf("surface: len(z)=%d want nx*ny=%d", len(z), nx*ny)
	}
	if !strictlyIncreasing(x) {
		return nil, fmt.Errorf("surface: x axis must be strictly increasing")
	}
	if !strictlyIncreasing(y) {
		return nil, fmt.Errorf("surface: y axis must be strictly increasing")
	}

	s := &Surface{
		NX: nx, NY: ny,
		X: x.Copy(), Y: y.Copy(), Z: z.Copy(),
	}
	s.Meta.Labels = labels
	s.Meta.CreatedAt = time.Now()
	s.recomputeDomains()
	return s, nil
}

func strictlyIncreasing(v vecgrid.Vec[float64]) bool {
	for i := 1; i < len(v); i++ {
		if v[i] <= v[i-1] {
			return false
		}
	}
	return true
}

func (s *Surface) recomputeDomains() {
	s.Meta.XDomain = vecgrid.DomainOf(s.X)
	s.Meta.YDomain = vecgrid.DomainOf(s.Y)
	s.Meta.ZDomain = vecgrid.DomainOf(s.Z)
}

// At returns Z at grid index (xi,yi).
func (s *Surface) At(xi, yi int) float64 {
	return s.Z[xi*s.NY+yi]
}

// Set writes Z at grid index (xi,yi) and recomputes the z domain. Per
//  domains are never left stale after an in-place mutation.
func (s *Surface) Set(xi, yi int, v float64) {
	s.Z[xi*s.NY+yi] = v
	s.Meta.ZDomain = vecgrid.DomainOf(s.Z)
}

// ApplyDelta writes values at the given flat indices (xi*NY+yi) in one
// batch and recomputes the z domain once, matching the SURFACE_DELTA wire
// contract.
func (s *Surface) ApplyDelta(flatIndices []uint32, values []float32) {
	for i, idx := range flatIndices {
		if int(idx) < len(s.Z) {
			s.Z[idx] = float64(values[i])
		}
	}
	s.Meta.ZDomain = vecgrid.DomainOf(s.Z)
}

// Clone returns a deep copy of s, independent of the original's buffers.
func (s *Surface) Clone() *Surface {
	out := &Surface{
		NX: s.NX, NY: s.NY,
		X: s.X.Copy(), Y: s.Y.Copy(), Z: s.Z.Copy(),
		Meta: s.Meta,
	}
	return out
}

// searchAxis returns the index i such that axis[i] <= v < axis[i+1], clamped
// to [0, len(axis)-2] so it always identifies a valid cell, and the
// fractional offset t in [0,1] within that cell. Queries outside the axis
// domain are clamped to the nearest boundary cell.
func searchAxis(axis vecgrid.Vec[float64], v float64) (idx int, t float64) {
	n := len(axis)
	if n < 2 {
		return 0, 0
	}
	if v <= axis[0] {
		return 0, 0
	}
	if v >= axis[n-1] {
		return n - 2, 1
	}
	// sort.Search finds the first index where axis[i] > v; the cell is i-1.
	i := sort.Search(n, func(i int) bool { return axis[i] > v })
	if i <= 0 {
		i = 1
	}
	if i >= n {
		i = n - 1
	}
	lo, hi := axis[i-1], axis[i]
	t = 0
	if hi > lo {
		t = (v - lo) / (hi - lo)
	}
	return i - 1, t
}

// nearestIndex returns the axis index closest to v, clamped to the axis.
func nearestIndex(axis vecgrid.Vec[float64], v float64) int {
	n := len(axis)
	if n == 0 {
		return 0
	}
	idx, t := searchAxis(axis, v)
	if t < 0.5 {
		return idx
	}
	if idx+1 >= n {
		return idx
	}
	return idx + 1
}
