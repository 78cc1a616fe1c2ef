package analytics

import (
	"sort"

	"github.com/superposition/marigraph/internal/surface"
)

// Opportunity is a lenient arbitrage signal: a potential mispricing worth a
// trader's attention, distinct from the hard EnforceArbitrageFree
// violations in that it carries an estimated profit and a confidence score
// rather than a binary pass/fail.
type Opportunity struct {
	Kind       string  `json:"kind"`
	TIndex     int     `json:"t_index"`
	KIndex     int     `json:"k_index"`
	Profit     float64 `json:"profit"`
	Confidence float64 `json:"confidence"`
}

const (
	calendarOpportunityRatio    = 1.1
	butterflyOpportunityDeficit = 0.01
)

// FindOpportunities scans s directly for calendar and butterfly mispricings
// using the lenient thresholds, distinct from CheckCalendar/CheckButterfly's
// strict total-variance tolerances: a calendar opportunity is flagged when
// IV_near > 1.1*IV_far at a fixed strike, and a butterfly opportunity when
// the smile's local convexity is negative by more than 0.01. Results are
// sorted by descending profit.
func FindOpportunities(s *surface.Surface) []Opportunity {
	var out []Opportunity

	for ki := 0; ki < s.NY; ki++ {
		for ti := 0; ti+1 < s.NX; ti++ {
			ivNear := s.At(ti, ki)
			ivFar := s.At(ti+1, ki)
			threshold := calendarOpportunityRatio * ivFar
			if ivNear <= threshold {
				continue
			}
			deficit := ivNear - threshold
			out = append(out, Opportunity{
				Kind: "calendar", TIndex: ti, KIndex: ki,
				Profit:     deficit,
				Confidence: confidenceOf(severityOf(deficit, 0.05, 0.1)),
			})
		}
	}

	for ti := 0; ti < s.NX; ti++ {
		for ki := 1; ki+1 < s.NY; ki++ {
			left := s.At(ti, ki-1)
			mid := s.At(ti, ki)
			right := s.At(ti, ki+1)
			convexity := (left+right)/2 - mid
			if convexity >= -butterflyOpportunityDeficit {
				continue
			}
			deficit := -butterflyOpportunityDeficit - convexity
			out = append(out, Opportunity{
				Kind: "butterfly", TIndex: ti, KIndex: ki,
				Profit:     deficit,
				Confidence: confidenceOf(severityOf(deficit, 0.02, 0.05)),
			})
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Profit > out[j].Profit })
	return out
}

func confidenceOf(sev Severity) float64 {
	switch sev {
	case SeveritySevere:
		return 0.9
	case SeverityModerate:
		return 0.6
	default:
		return 0.3
	}
}
