package stats

import (
	"strings"
	"testing"
	"time"

	"github.com/superposition/marigraph/internal/analytics"
)

func TestBuildRiskReportComputesMinMaxAvg(t *testing.T) {
	points := []RiskPoint{
		{Timestamp: time.Unix(0, 0), Metrics: analytics.RiskMetrics{RiskScore: 0.2}},
		{Timestamp: time.Unix(1, 0), Metrics: analytics.RiskMetrics{RiskScore: 0.8}},
		{Timestamp: time.Unix(2, 0), Metrics: analytics.RiskMetrics{RiskScore: 0.5}},
	}

	report := BuildRiskReport("run-1", points)
	if report.MinScore != 0.2 || report.MaxScore != 0.8 {
		t.Fatalf("min=%v max=%v", report.MinScore, report.MaxScore)
	}
	if got, want := report.AvgScore, 0.5; got < want-1e-9 || got > want+1e-9 {
		t.Fatalf("avg=%v want %v", got, want)
	}
}

func TestBuildRiskReportEmptySeries(t *testing.T) {
	report := BuildRiskReport("run-1", nil)
	if report.MinScore != 0 || report.MaxScore != 0 {
		t.Fatalf("expected zero-value stats for empty series, got %+v", report)
	}
}

func TestRenderRiskReportIncludesSparklineAndStats(t *testing.T) {
	report := BuildRiskReport("run-1", []RiskPoint{
		{Metrics: analytics.RiskMetrics{RiskScore: 0.1}},
		{Metrics: analytics.RiskMetrics{RiskScore: 0.9}},
	})
	rendered := RenderRiskReport(report)
	if !strings.Contains(rendered, "run-1") {
		t.Fatalf("expected run id in output: %q", rendered)
	}
	if !strings.Contains(rendered, "▁█") {
		t.Fatalf("expected risk-score sparkline in output: %q", rendered)
	}
	if !strings.Contains(rendered, "min=0.100") {
		t.Fatalf("expected min stat in output: %q", rendered)
	}
}

func TestRenderRiskReportEmptySeries(t *testing.T) {
	rendered := RenderRiskReport(BuildRiskReport("run-1", nil))
	if !strings.Contains(rendered, "no samples recorded") {
		t.Fatalf("expected no-samples line, got %q", rendered)
	}
}

func TestSparklineFlatSeriesUsesLowestGlyph(t *testing.T) {
	line := Sparkline([]float64{1, 1, 1})
	for _, r := range line {
		if r != sparkGlyphs[0] {
			t.Fatalf("flat series should use lowest glyph, got %q", line)
		}
	}
}

func TestSparklineMonotonicIncreasing(t *testing.T) {
	line := Sparkline([]float64{0, 0.5, 1})
	runes := []rune(line)
	if runes[0] != sparkGlyphs[0] || runes[2] != sparkGlyphs[len(sparkGlyphs)-1] {
		t.Fatalf("expected endpoints at glyph extremes, got %q", line)
	}
}

func TestRenderArbitrageReportFormatsCounts(t *testing.T) {
	rendered := RenderArbitrageReport(analytics.ArbitrageReport{CalendarCount: 1000, ButterflyCount: 2, VerticalCount: 0})
	if !strings.Contains(rendered, "1,000") {
		t.Fatalf("expected humanized count, got %q", rendered)
	}
}

func TestRenderTermStructureIncludesShape(t *testing.T) {
	rendered := RenderTermStructure(analytics.TermStructure{Shape: analytics.ShapeContango, ATMVols: []float64{0.1, 0.2}})
	if !strings.Contains(rendered, "contango") {
		t.Fatalf("expected shape in output, got %q", rendered)
	}
}
