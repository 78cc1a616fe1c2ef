package analytics

import (
	"math"

	"github.com/superposition/marigraph/internal/surface"
)

// Severity classifies how far an arbitrage violation exceeds its tolerance.
type Severity string

const (
	SeverityMinor    Severity = "minor"
	SeverityModerate Severity = "moderate"
	SeveritySevere   Severity = "severe"
)

// CalendarViolation reports a strike column where total variance decreases
// (beyond tolerance) from an earlier to a later expiry.
type CalendarViolation struct {
	KIndex     int      `json:"k_index"`
	T1         float64  `json:"t1"`
	T2         float64  `json:"t2"`
	W1         float64  `json:"w1"`
	W2         float64  `json:"w2"`
	Deficit    float64  `json:"deficit"`
	Severity   Severity `json:"severity"`
}

// ButterflyViolation reports a (T,K) point where the smile is locally
// non-convex (beyond tolerance).
type ButterflyViolation struct {
	TIndex         int      `json:"t_index"`
	KIndex         int      `json:"k_index"`
	Convexity      float64  `json:"convexity"`
	Deficit        float64  `json:"deficit"`
	Severity       Severity `json:"severity"`
}

// VerticalViolation reports a (T,K) point where the total-variance slope
// against log-moneyness exceeds the configured limit.
type VerticalViolation struct {
	TIndex         int      `json:"t_index"`
	KIndex         int      `json:"k_index"`
	Slope          float64  `json:"slope"`
	Deficit        float64  `json:"deficit"`
	Severity       Severity `json:"severity"`
}

// ArbitrageReport is the result of CheckAllArbitrage: per-category counts
// and the unsorted list of violations found in each category.
type ArbitrageReport struct {
	Calendar       []CalendarViolation  `json:"calendar"`
	Butterfly      []ButterflyViolation `json:"butterfly"`
	Vertical       []VerticalViolation  `json:"vertical,omitempty"`
	CalendarCount  int                  `json:"calendar_count"`
	ButterflyCount int                  `json:"butterfly_count"`
	VerticalCount  int                  `json:"vertical_count"`
}

const (
	defaultCalendarTolerance  = 0.001
	defaultButterflyTolerance = 0.001
	defaultVerticalLimit      = 2.0
)

func severityOf(deficit float64, minorBound, moderateBound float64) Severity {
	switch {
	case deficit < minorBound:
		return SeverityMinor
	case deficit < moderateBound:
		return SeverityModerate
	default:
		return SeveritySevere
	}
}

// CheckCalendar runs the calendar-arbitrage check on s, where s.X is
// time-to-expiry and s.Y is strike.
func CheckCalendar(s *surface.Surface, tolerance float64) []CalendarViolation {
	if tolerance <= 0 {
		tolerance = defaultCalendarTolerance
	}
	var out []CalendarViolation
	for ki := 0; ki < s.NY; ki++ {
		for ti := 0; ti+1 < s.NX; ti++ {
			t1, t2 := s.X[ti], s.X[ti+1]
			iv1, iv2 := s.At(ti, ki), s.At(ti+1, ki)
			w1 := iv1 * iv1 * t1
			w2 := iv2 * iv2 * t2
			deficit := (w1 - tolerance) - w2
			if deficit <= 0 {
				continue
			}
			out = append(out, CalendarViolation{
				KIndex: ki, T1: t1, T2: t2, W1: w1, W2: w2,
				Deficit:  deficit,
				Severity: severityOf(deficit, 0.005, 0.01),
			})
		}
	}
	return out
}

// CheckButterfly runs the butterfly-arbitrage check.
func CheckButterfly(s *surface.Surface, tolerance float64) []ButterflyViolation {
	if tolerance <= 0 {
		tolerance = defaultButterflyTolerance
	}
	var out []ButterflyViolation
	for ti := 0; ti < s.NX; ti++ {
		for ki := 1; ki+1 < s.NY; ki++ {
			left := s.At(ti, ki-1)
			mid := s.At(ti, ki)
			right := s.At(ti, ki+1)
			convexity := (left+right)/2 - mid
			deficit := -tolerance - convexity
			if deficit <= 0 {
				continue
			}
			out = append(out, ButterflyViolation{
				TIndex: ti, KIndex: ki,
				Convexity: convexity,
				Deficit:   deficit,
				Severity:  severityOf(deficit, 0.01, 0.02),
			})
		}
	}
	return out
}

// CheckVertical runs the vertical-skew check against a supplied forward
// price. limit defaults to 2.0 when <= 0.
func CheckVertical(s *surface.Surface, forward, limit float64) []VerticalViolation {
	if limit <= 0 {
		limit = defaultVerticalLimit
	}
	if forward <= 0 {
		return nil
	}
	var out []VerticalViolation
	for ti := 0; ti < s.NX; ti++ {
		t := s.X[ti]
		for ki := 0; ki+1 < s.NY; ki++ {
			k1 := math.Log(s.Y[ki] / forward)
			k2 := math.Log(s.Y[ki+1] / forward)
			if k2 == k1 {
				continue
			}
			iv1 := s.At(ti, ki)
			iv2 := s.At(ti, ki+1)
			w1 := iv1 * iv1 * t
			w2 := iv2 * iv2 * t
			slope := (w2 - w1) / (k2 - k1)
			deficit := math.Abs(slope) - limit
			if deficit <= 0 {
				continue
			}
			out = append(out, VerticalViolation{
				TIndex: ti, KIndex: ki,
				Slope:    slope,
				Deficit:  deficit,
				Severity: severityOf(deficit, 0.5, 1.0),
			})
		}
	}
	return out
}

// ArbitrageOptions configures CheckAllArbitrage and EnforceArbitrageFree.
type ArbitrageOptions struct {
	CalendarTolerance  float64
	ButterflyTolerance float64
	Forward            float64
	VerticalLimit      float64
}

// CheckAllArbitrage runs the calendar, butterfly, and (when a forward price
// is supplied) vertical checks and reports per-category counts.
func CheckAllArbitrage(s *surface.Surface, opts ArbitrageOptions) ArbitrageReport {
	calendar := CheckCalendar(s, opts.CalendarTolerance)
	butterfly := CheckButterfly(s, opts.ButterflyTolerance)
	var vertical []VerticalViolation
	if opts.Forward > 0 {
		vertical = CheckVertical(s, opts.Forward, opts.VerticalLimit)
	}
	return ArbitrageReport{
		Calendar: calendar, Butterfly: butterfly, Vertical: vertical,
		CalendarCount: len(calendar), ButterflyCount: len(butterfly), VerticalCount: len(vertical),
	}
}

// EnforceArbitrageFree iteratively nudges s toward a calendar- and
// butterfly-arbitrage-free state, mutating and returning s along with
// the number of iterations actually run.
func EnforceArbitrageFree(s *surface.Surface, maxIter int, tolerance float64) (*surface.Surface, int) {
	if maxIter <= 0 {
		maxIter = 50
	}
	iterations := 0
	for ; iterations < maxIter; iterations++ {
		calendar := CheckCalendar(s, tolerance)
		butterfly := CheckButterfly(s, tolerance)
		if len(calendar) == 0 && len(butterfly) == 0 {
			break
		}

		for _, v := range calendar {
			ti := indexOfX(s, v.T2)
			if ti < 0 {
				continue
			}
			nudge := math.Sqrt(math.Abs(v.Deficit)/v.T2) / 2
			current := s.At(ti, v.KIndex)
			s.Set(ti, v.KIndex, current+nudge)
		}
		for _, v := range butterfly {
			left := s.At(v.TIndex, v.KIndex-1)
			right := s.At(v.TIndex, v.KIndex+1)
			s.Set(v.TIndex, v.KIndex, (left+right)/2)
		}
	}
	return s, iterations
}

func indexOfX(s *surface.Surface, t float64) int {
	for i, v := range s.X {
		if v == t {
			return i
		}
	}
	return -1
}
