package surface

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Method names an interpolation strategy.
type Method string

const (
	Bilinear Method = "bilinear"
	Bicubic  Method = "bicubic"
	Nearest  Method = "nearest"
)

// InterpolateFunc evaluates a Surface at (x,y).
type InterpolateFunc func(s *Surface, x, y float64) float64

var (
	// ErrMethodExists is returned by RegisterMethod for a name already taken.
	ErrMethodExists = errors.New("interpolation method already registered")
	// ErrMethodNotFound is returned when Interpolate is asked for an unknown method.
	ErrMethodNotFound = errors.New("interpolation method not found")
)

var methodRegistry = struct {
	mu sync.RWMutex
	m  map[Method]InterpolateFunc
}{
	m: make(map[Method]InterpolateFunc),
}

func init() {
	mustRegisterMethod(Bilinear, bilinearAt)
	mustRegisterMethod(Bicubic, bicubicAt)
	mustRegisterMethod(Nearest, nearestAt)
}

// RegisterMethod adds a named interpolation strategy. It is exported so
// callers can plug in additional methods without touching this package.
func RegisterMethod(name Method, fn InterpolateFunc) error {
	methodRegistry.mu.Lock()
	defer methodRegistry.mu.Unlock()
	if _, exists := methodRegistry.m[name]; exists {
		return fmt.Errorf("%w: %s", ErrMethodExists, name)
	}
	methodRegistry.m[name] = fn
	return nil
}

func mustRegisterMethod(name Method, fn InterpolateFunc) {
	if err := RegisterMethod(name, fn); err != nil {
		panic(err)
	}
}

// Methods returns the names of every registered interpolation strategy,
// sorted.
func Methods() []Method {
	methodRegistry.mu.RLock()
	defer methodRegistry.mu.RUnlock()
	out := make([]Method, 0, len(methodRegistry.m))
	for name := range methodRegistry.m {
		out = append(out, name)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Interpolate evaluates s at (x,y) using the named method. Queries outside
// the axis domains are clamped to the nearest boundary cell; Interpolate
// never errors on out-of-domain input, only on an unknown method name.
func Interpolate(s *Surface, x, y float64, method Method) (float64, error) {
	methodRegistry.mu.RLock()
	fn, ok := methodRegistry.m[method]
	methodRegistry.mu.RUnlock()
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrMethodNotFound, method)
	}
	return fn(s, x, y), nil
}

func bilinearAt(s *Surface, x, y float64) float64 {
	xi, tx := searchAxis(s.X, x)
	yi, ty := searchAxis(s.Y, y)

	x0, x1 := clampIdx(xi, s.NX), clampIdx(xi+1, s.NX)
	y0, y1 := clampIdx(yi, s.NY), clampIdx(yi+1, s.NY)

	z00, z10 := s.At(x0, y0), s.At(x1, y0)
	z01, z11 := s.At(x0, y1), s.At(x1, y1)

	top := z00 + (z10-z00)*tx
	bottom := z01 + (z11-z01)*tx
	return top + (bottom-top)*ty
}

func nearestAt(s *Surface, x, y float64) float64 {
	xi := nearestIndex(s.X, x)
	yi := nearestIndex(s.Y, y)
	return s.At(xi, yi)
}

func clampIdx(i, n int) int {
	if n <= 0 {
		return 0
	}
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// bicubicAt evaluates a Catmull-Rom spline over the 4x4 neighborhood of the
// cell containing (x,y), clamping sample indices to the grid when the query
// lies within one cell of the boundary.
func bicubicAt(s *Surface, x, y float64) float64 {
	xi, tx := searchAxis(s.X, x)
	yi, ty := searchAxis(s.Y, y)

	var cols [4]float64
	for dy := -1; dy <= 2; dy++ {
		yIdx := clampIdx(yi+dy, s.NY)
		var p [4]float64
		for dx := -1; dx <= 2; dx++ {
			xIdx := clampIdx(xi+dx, s.NX)
			p[dx+1] = s.At(xIdx, yIdx)
		}
		cols[dy+1] = catmullRom(p[0], p[1], p[2], p[3], tx)
	}
	return catmullRom(cols[0], cols[1], cols[2], cols[3], ty)
}

// catmullRom evaluates the Catmull-Rom cubic through control points
// p0..p3 at parameter t in [0,1], where t=0 is p1 and t=1 is p2.
func catmullRom(p0, p1, p2, p3, t float64) float64 {
	t2 := t * t
	t3 := t2 * t
	return 0.5 * ((2 * p1) +
		(-p0+p2)*t +
		(2*p0-5*p1+4*p2-p3)*t2 +
		(-p0+3*p1-3*p2+p3)*t3)
}

// SliceAtX returns {Y, Z} along varying y at fixed x=x0.
func SliceAtX(s *Surface, x0 float64, method Method) (y, z []float64, err error) {
	y = make([]float64, s.NY)
	z = make([]float64, s.NY)
	copy(y, s.Y)
	for i, yv := range s.Y {
		v, err := Interpolate(s, x0, yv, method)
		if err != nil {
			return nil, nil, err
		}
		z[i] = v
	}
	return y, z, nil
}

// SliceAtY returns {X, Z} along varying x at fixed y=y0.
func SliceAtY(s *Surface, y0 float64, method Method) (x, z []float64, err error) {
	x = make([]float64, s.NX)
	z = make([]float64, s.NX)
	copy(x, s.X)
	for i, xv := range s.X {
		v, err := Interpolate(s, xv, y0, method)
		if err != nil {
			return nil, nil, err
		}
		z[i] = v
	}
	return x, z, nil
}
