package stats

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/ncruces/go-strftime"

	"github.com/superposition/marigraph/internal/analytics"
)

// RiskPoint is one timestamped RiskMetrics sample, the unit a
// RiskReport's sparkline and summary line are built from.
type RiskPoint struct {
	Timestamp time.Time
	Metrics   analytics.RiskMetrics
}

// RiskReport is the rendered-ready summary of a run's risk history: an
// aggregate (min/max/avg score) plus the plotted series it was computed
// from.
type RiskReport struct {
	RunID       string
	GeneratedAt time.Time
	Points      []RiskPoint
	MinScore    float64
	MaxScore    float64
	AvgScore    float64
}

// BuildRiskReport summarizes a run's RiskMetrics history: min/max/average
// risk score across the series, mirroring BuildBenchmarkEvaluationStats's
// aggregate-then-report shape.
func BuildRiskReport(runID string, points []RiskPoint) RiskReport {
	report := RiskReport{RunID: runID, GeneratedAt: time.Now().UTC(), Points: points}
	if len(points) == 0 {
		return report
	}

	report.MinScore = points[0].Metrics.RiskScore
	report.MaxScore = points[0].Metrics.RiskScore
	var sum float64
	for _, p := range points {
		score := p.Metrics.RiskScore
		sum += score
		if score < report.MinScore {
			report.MinScore = score
		}
		if score > report.MaxScore {
			report.MaxScore = score
		}
	}
	report.AvgScore = sum / float64(len(points))
	return report
}

// RenderRiskReport formats r as a plain-text report for a terminal: a
// header line, a risk-score sparkline, and min/max/avg stats.
func RenderRiskReport(r RiskReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "risk history for run %s (generated %s)\n", r.RunID, formatTimestamp(r.GeneratedAt))
	if len(r.Points) == 0 {
		b.WriteString("  no samples recorded\n")
		return b.String()
	}

	scores := make([]float64, len(r.Points))
	for i, p := range r.Points {
		scores[i] = p.Metrics.RiskScore
	}
	fmt.Fprintf(&b, "  risk score  %s\n", Sparkline(scores))
	fmt.Fprintf(&b, "  min=%.3f max=%.3f avg=%.3f samples=%s\n",
		r.MinScore, r.MaxScore, r.AvgScore, humanize.Comma(int64(len(r.Points))))
	return b.String()
}

// RenderTermStructure formats a term-structure classification as a single
// descriptive line plus its ATM-vol sparkline.
func RenderTermStructure(ts analytics.TermStructure) string {
	return fmt.Sprintf("term structure: %s (flatness=%.4f)  %s", ts.Shape, ts.Flatness, Sparkline(ts.ATMVols))
}

// RenderSmile formats a smile analysis as a single descriptive line.
func RenderSmile(s analytics.SmileAnalysis) string {
	return fmt.Sprintf("smile[t=%d]: skew=%s butterfly_spread=%.4f range=[%.4f,%.4f]",
		s.TIndex, s.SkewDirection, s.ButterflySpread, s.MinVol, s.MaxVol)
}

// RenderArbitrageReport formats an ArbitrageReport as a single summary line
// of per-category counts, using humanize.Comma for the violation counts.
func RenderArbitrageReport(r analytics.ArbitrageReport) string {
	return fmt.Sprintf("arbitrage: calendar=%s butterfly=%s vertical=%s",
		humanize.Comma(int64(r.CalendarCount)),
		humanize.Comma(int64(r.ButterflyCount)),
		humanize.Comma(int64(r.VerticalCount)))
}

func formatTimestamp(t time.Time) string {
	return strftime.Format("%Y-%m-%d %H:%M:%S UTC", t)
}

var sparkGlyphs = []rune("▁▂▃▄▅▆▇█")

// Sparkline renders values as a single line of block-height glyphs scaled
// to the series' own min/max, the same normalize-then-bucket approach the
// render package's zBands table uses for glyph selection.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	min, max := values[0], values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	span := max - min
	out := make([]rune, len(values))
	for i, v := range values {
		if span < 1e-12 {
			out[i] = sparkGlyphs[0]
			continue
		}
		frac := (v - min) / span
		idx := int(math.Round(frac * float64(len(sparkGlyphs)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkGlyphs) {
			idx = len(sparkGlyphs) - 1
		}
		out[i] = sparkGlyphs[idx]
	}
	return string(out)
}
