package surface

import "math"

// SlopeField is the per-cell gradient of a Surface's z values: dz_dx, dz_dy,
// their magnitude, and their angle, each of length NX*NY in the same
// row-major layout as Surface.Z.
type SlopeField struct {
	NX, NY         int
	DzDx, DzDy     []float64
	Magnitude      []float64
	Angle          []float64
}

// ComputeSlope derives a SlopeField from s using central differences at
// interior points and one-sided first-order differences at the boundaries,
// each divided by the local (possibly non-uniform) axis spacing.
func ComputeSlope(s *Surface) *SlopeField {
	n := s.NX * s.NY
	f := &SlopeField{
		NX: s.NX, NY: s.NY,
		DzDx:      make([]float64, n),
		DzDy:      make([]float64, n),
		Magnitude: make([]float64, n),
		Angle:     make([]float64, n),
	}

	for xi := 0; xi < s.NX; xi++ {
		for yi := 0; yi < s.NY; yi++ {
			i := xi*s.NY + yi
			f.DzDx[i] = dAlongX(s, xi, yi)
			f.DzDy[i] = dAlongY(s, xi, yi)
			f.Magnitude[i] = math.Hypot(f.DzDx[i], f.DzDy[i])
			f.Angle[i] = math.Atan2(f.DzDy[i], f.DzDx[i])
		}
	}
	return f
}

func dAlongX(s *Surface, xi, yi int) float64 {
	switch {
	case s.NX < 2:
		return 0
	case xi == 0:
		return (s.At(1, yi) - s.At(0, yi)) / (s.X[1] - s.X[0])
	case xi == s.NX-1:
		return (s.At(xi, yi) - s.At(xi-1, yi)) / (s.X[xi] - s.X[xi-1])
	default:
		return (s.At(xi+1, yi) - s.At(xi-1, yi)) / (s.X[xi+1] - s.X[xi-1])
	}
}

func dAlongY(s *Surface, xi, yi int) float64 {
	switch {
	case s.NY < 2:
		return 0
	case yi == 0:
		return (s.At(xi, 1) - s.At(xi, 0)) / (s.Y[1] - s.Y[0])
	case yi == s.NY-1:
		return (s.At(xi, yi) - s.At(xi, yi-1)) / (s.Y[yi] - s.Y[yi-1])
	default:
		return (s.At(xi, yi+1) - s.At(xi, yi-1)) / (s.Y[yi+1] - s.Y[yi-1])
	}
}

// At returns the cell values at (xi,yi).
func (f *SlopeField) At(xi, yi int) (dzDx, dzDy, magnitude, angle float64) {
	i := xi*f.NY + yi
	return f.DzDx[i], f.DzDy[i], f.Magnitude[i], f.Angle[i]
}
