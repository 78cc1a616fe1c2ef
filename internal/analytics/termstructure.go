package analytics

import (
	"math"

	"github.com/superposition/marigraph/internal/surface"
)

// Shape classifies the overall term structure of ATM implied vol.
type Shape string

const (
	ShapeContango     Shape = "contango"
	ShapeBackwardation Shape = "backwardation"
	ShapeFlat         Shape = "flat"
)

// TermStructure describes the behavior of at-the-money implied vol across
// the time axis of a Surface.
type TermStructure struct {
	Shape       Shape     `json:"shape"`
	Flatness    float64   `json:"flatness"`
	ATMVols     []float64 `json:"atm_vols"`
	Inflections []int     `json:"inflections"`
}

const flatTolerance = 0.001

// ComputeTermStructure walks the ATM (middle-strike) column of s across its
// time axis and classifies its shape.
func ComputeTermStructure(s *surface.Surface) TermStructure {
	atmY := s.NY / 2
	vols := make([]float64, s.NX)
	for xi := 0; xi < s.NX; xi++ {
		vols[xi] = s.At(xi, atmY)
	}

	// Inflection points are sign changes in the discrete second derivative
	// along the curve, not sign changes in the first derivative (which
	// would flag local extrema instead).
	var inflections []int
	var prevD2 float64
	havePrevD2 := false
	for xi := 1; xi+1 < len(vols); xi++ {
		d2 := vols[xi+1] - 2*vols[xi] + vols[xi-1]
		if havePrevD2 && ((prevD2 > 0 && d2 < 0) || (prevD2 < 0 && d2 > 0)) {
			inflections = append(inflections, xi)
		}
		if d2 != 0 {
			prevD2 = d2
			havePrevD2 = true
		}
	}

	shape := ShapeFlat
	flatness := 1.0
	if len(vols) >= 2 {
		ivNear := vols[0]
		ivFar := vols[len(vols)-1]
		denom := math.Max(ivNear, ivFar)
		if denom != 0 {
			flatness = 1 - math.Abs(ivNear-ivFar)/denom
		} else {
			flatness = 1
		}
		if math.Abs(ivNear-ivFar) > flatTolerance {
			if ivNear < ivFar {
				shape = ShapeContango
			} else {
				shape = ShapeBackwardation
			}
		}
	}

	return TermStructure{
		Shape:       shape,
		Flatness:    flatness,
		ATMVols:     vols,
		Inflections: inflections,
	}
}

// SkewDirection classifies a smile's skew at a fixed expiry index.
type SkewDirection string

const (
	SkewPut  SkewDirection = "put"  // downside (low strike) vol premium
	SkewCall SkewDirection = "call" // upside (high strike) vol premium
	SkewNone SkewDirection = "none"
)

// SmileAnalysis describes the shape of the strike-wise smile at a fixed
// time-to-expiry index.
type SmileAnalysis struct {
	TIndex          int           `json:"t_index"`
	SkewDirection   SkewDirection `json:"skew_direction"`
	ButterflySpread float64       `json:"butterfly_spread"`
	MinVol          float64       `json:"min_vol"`
	MaxVol          float64       `json:"max_vol"`
}

// ComputeSmile analyzes the strike-wise row of s at time index ti.
func ComputeSmile(s *surface.Surface, ti int) SmileAnalysis {
	if ti < 0 || ti >= s.NX || s.NY == 0 {
		return SmileAnalysis{TIndex: ti}
	}
	lowK := s.At(ti, 0)
	highK := s.At(ti, s.NY-1)
	atmK := s.At(ti, s.NY/2)

	minVol, maxVol := lowK, lowK
	for yi := 0; yi < s.NY; yi++ {
		v := s.At(ti, yi)
		if v < minVol {
			minVol = v
		}
		if v > maxVol {
			maxVol = v
		}
	}

	direction := SkewNone
	const skewTolerance = 0.01
	if lowK-highK > skewTolerance {
		direction = SkewPut
	} else if highK-lowK > skewTolerance {
		direction = SkewCall
	}

	butterflySpread := (lowK+highK)/2 - atmK

	return SmileAnalysis{
		TIndex:          ti,
		SkewDirection:   direction,
		ButterflySpread: butterflySpread,
		MinVol:          minVol,
		MaxVol:          maxVol,
	}
}
