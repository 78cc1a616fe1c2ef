package analytics

import (
	"math"

	"github.com/superposition/marigraph/internal/surface"
)

// Zone identifies a grid cell flagged by ComputeRiskMetrics.
type Zone struct {
	XIndex         int     `json:"x_index"`
	YIndex         int     `json:"y_index"`
	Value          float64 `json:"value"`
}

// RiskMetrics summarizes the risk profile of a Surface.
type RiskMetrics struct {
	MaxSlope               float64 `json:"max_slope"`
	AvgSlope               float64 `json:"avg_slope"`
	SlopeVariance          float64 `json:"slope_variance"`
	UpwardBias             float64 `json:"upward_bias"`
	TermStructureSteepness float64 `json:"term_structure_steepness"`
	SmileSteepness         float64 `json:"smile_steepness"`
	RiskScore              float64 `json:"risk_score"`
	HighRiskZones          []Zone  `json:"high_risk_zones"`
	FlatZones              []Zone  `json:"flat_zones"`
}

const maxZones = 10

// ComputeRiskMetrics derives RiskMetrics from s's slope field, using the
// weighted formula:
//
//	riskScore = 0.4*min(1,maxSlope/2) + 0.3*min(1,sqrt(slopeVariance)/0.5) + 0.3*min(1,|steepness|/0.5)
//
// clamped to [0,1]. highRiskZones and flatZones are each capped at 10 cells.
func ComputeRiskMetrics(s *surface.Surface) RiskMetrics {
	field := surface.ComputeSlope(s)

	var maxSlope, sumMag, sumSq, upCount, sumAbsDzDy float64
	n := len(field.Magnitude)
	for _, m := range field.Magnitude {
		if m > maxSlope {
			maxSlope = m
		}
		sumMag += m
	}
	mean := 0.0
	if n > 0 {
		mean = sumMag / float64(n)
	}
	for _, m := range field.Magnitude {
		d := m - mean
		sumSq += d * d
	}
	slopeVariance := 0.0
	if n > 0 {
		slopeVariance = sumSq / float64(n)
	}
	for _, dy := range field.DzDy {
		if dy > 0 {
			upCount++
		}
		sumAbsDzDy += math.Abs(dy)
	}
	upwardBias := 0.0
	smileSteepness := 0.0
	if n > 0 {
		upwardBias = upCount / float64(n)
		smileSteepness = sumAbsDzDy / float64(n)
	}

	steepness := termStructureSteepness(s)

	riskScore := 0.4*math.Min(1, maxSlope/2) +
		0.3*math.Min(1, math.Sqrt(slopeVariance)/0.5) +
		0.3*math.Min(1, math.Abs(steepness)/0.5)
	riskScore = math.Max(0, math.Min(1, riskScore))

	return RiskMetrics{
		MaxSlope:               maxSlope,
		AvgSlope:               mean,
		SlopeVariance:          slopeVariance,
		UpwardBias:             upwardBias,
		TermStructureSteepness: steepness,
		SmileSteepness:         smileSteepness,
		RiskScore:              riskScore,
		HighRiskZones:          topZones(s, field, true),
		FlatZones:              topZones(s, field, false),
	}
}

// termStructureSteepness returns the average rate of change of at-the-money
// (nearest to the midpoint strike) implied vol across the time axis.
func termStructureSteepness(s *surface.Surface) float64 {
	if s.NX < 2 {
		return 0
	}
	atmY := s.NY / 2
	var sumSlope float64
	for xi := 0; xi+1 < s.NX; xi++ {
		dx := s.X[xi+1] - s.X[xi]
		if dx == 0 {
			continue
		}
		sumSlope += (s.At(xi+1, atmY) - s.At(xi, atmY)) / dx
	}
	return sumSlope / float64(s.NX-1)
}

// topZones returns up to maxZones grid cells: cells with magnitude at least
// 0.7*maxSlope (sorted desc) when high is true, or at most 0.1*maxSlope
// when false. A surface with few qualifying cells returns fewer than
// maxZones.
func topZones(s *surface.Surface, field *surface.SlopeField, high bool) []Zone {
	type cell struct {
		xi, yi int
		mag    float64
	}

	var maxSlope float64
	for _, m := range field.Magnitude {
		if m > maxSlope {
			maxSlope = m
		}
	}

	cells := make([]cell, 0, s.NX*s.NY)
	for xi := 0; xi < s.NX; xi++ {
		for yi := 0; yi < s.NY; yi++ {
			_, _, mag, _ := field.At(xi, yi)
			if high && mag >= 0.7*maxSlope {
				cells = append(cells, cell{xi, yi, mag})
			} else if !high && mag <= 0.1*maxSlope {
				cells = append(cells, cell{xi, yi, mag})
			}
		}
	}

	less := func(i, j int) bool {
		if high {
			return cells[i].mag > cells[j].mag
		}
		return cells[i].mag < cells[j].mag
	}
	for i := 1; i < len(cells); i++ {
		for j := i; j > 0 && less(j, j-1); j-- {
			cells[j], cells[j-1] = cells[j-1], cells[j]
		}
	}

	limit := maxZones
	if len(cells) < limit {
		limit = len(cells)
	}
	out := make([]Zone, limit)
	for i := 0; i < limit; i++ {
		out[i] = Zone{XIndex: cells[i].xi, YIndex: cells[i].yi, Value: cells[i].mag}
	}
	return out
}
