package analytics

import (
	"math"
	"testing"

	"github.com/superposition/marigraph/internal/surface"
	"github.com/superposition/marigraph/internal/vecgrid"
)

func flatSmileSurface(nx, ny int, iv float64) *surface.Surface {
	x := vecgrid.Linspace(0.1, 2.0, nx)
	y := vecgrid.Linspace(80.0, 120.0, ny)
	z := vecgrid.New[float64](nx * ny)
	for i := range z {
		z[i] = iv
	}
	s, err := surface.New(x, y, z, surface.Labels{X: "t", Y: "k", Z: "iv"})
	if err != nil {
		panic(err)
	}
	return s
}

func TestSVIClampEnforcesBounds(t *testing.T) {
	p := SVIParams{A: 0, B: -1, Rho: 2, M: 0, Sigma: -1}.Clamp()
	if p.B != 0.001 || p.Sigma != 0.001 || p.Rho != 0.99 {
		t.Fatalf("clamp=%+v", p)
	}
}

func TestTotalVarianceAtMinimum(t *testing.T) {
	p := SVIParams{A: 0.04, B: 0.1, Rho: 0, M: 0, Sigma: 0.2}
	w := TotalVariance(p.M, p)
	want := p.A + p.B*p.Sigma
	if math.Abs(w-want) > 1e-9 {
		t.Fatalf("w(m)=%v want=%v", w, want)
	}
}

func TestImpliedVolZeroAtZeroExpiry(t *testing.T) {
	p := SVIParams{A: 0.04, B: 0.1, Rho: 0, M: 0, Sigma: 0.2}
	if v := ImpliedVol(0, 0, p); v != 0 {
		t.Fatalf("ImpliedVol at t=0 = %v want 0", v)
	}
}

func TestDerivativesFiniteDifference(t *testing.T) {
	p := SVIParams{A: 0.04, B: 0.2, Rho: -0.3, M: 0.05, Sigma: 0.15}
	const h = 1e-6
	k := 0.1
	numeric := (TotalVariance(k+h, p) - TotalVariance(k-h, p)) / (2 * h)
	closed := FirstDerivative(k, p)
	if math.Abs(numeric-closed) > 1e-5 {
		t.Fatalf("dW/dk numeric=%v closed=%v", numeric, closed)
	}

	numeric2 := (FirstDerivative(k+h, p) - FirstDerivative(k-h, p)) / (2 * h)
	closed2 := SecondDerivative(k, p)
	if math.Abs(numeric2-closed2) > 1e-4 {
		t.Fatalf("d2W/dk2 numeric=%v closed=%v", numeric2, closed2)
	}
}

func syntheticSamples(p SVIParams, t float64, n int) []SVISample {
	samples := make([]SVISample, n)
	for i := 0; i < n; i++ {
		k := -0.5 + float64(i)*(1.0/float64(n-1))
		w := TotalVariance(k, p)
		iv := math.Sqrt(math.Max(w, 0) / t)
		samples[i] = SVISample{K: k, IV: iv, Weight: 1}
	}
	return samples
}

func TestGradientDescentTunerRecoversParams(t *testing.T) {
	truth := SVIParams{A: 0.04, B: 0.15, Rho: -0.2, M: 0.02, Sigma: 0.2}
	tExpiry := 1.0
	samples := syntheticSamples(truth, tExpiry, 20)

	result, err := CalibrateSVI("gradient-descent", samples, tExpiry, CalibrateOptions{MaxIter: 2000})
	if err != nil {
		t.Fatal(err)
	}
	if result.RMSE > 1e-3 {
		t.Fatalf("gradient-descent RMSE=%v too high", result.RMSE)
	}
}

func TestLevenbergMarquardtTunerRecoversParams(t *testing.T) {
	truth := SVIParams{A: 0.04, B: 0.15, Rho: -0.2, M: 0.02, Sigma: 0.2}
	tExpiry := 1.0
	samples := syntheticSamples(truth, tExpiry, 20)

	result, err := CalibrateSVI("levenberg-marquardt", samples, tExpiry, CalibrateOptions{MaxIter: 100})
	if err != nil {
		t.Fatal(err)
	}
	if result.RMSE > 1e-4 {
		t.Fatalf("levenberg-marquardt RMSE=%v too high", result.RMSE)
	}
}

func TestCalibrateSVIUnknownTuner(t *testing.T) {
	_, err := CalibrateSVI("nonexistent", []SVISample{{K: 0, IV: 0.2, Weight: 1}}, 1, CalibrateOptions{})
	if err == nil {
		t.Fatalf("expected error for unknown tuner")
	}
}

func TestCalibrateSVIRequiresSamples(t *testing.T) {
	for _, name := range Tuners() {
		if _, err := CalibrateSVI(name, nil, 1, CalibrateOptions{}); err == nil {
			t.Fatalf("%s: expected error for empty sample set", name)
		}
	}
}

func TestCheckCalendarFlagsDecreasingVariance(t *testing.T) {
	x := vecgrid.Vec[float64]{0.5, 1.0}
	y := vecgrid.Vec[float64]{100}
	// w(t1)=0.5*0.3^2=0.045, w(t2)=1.0*0.1^2=0.01: variance decreases.
	z := vecgrid.Vec[float64]{0.3, 0.1}
	s, err := surface.New(x, y, z, surface.Labels{})
	if err != nil {
		t.Fatal(err)
	}
	violations := CheckCalendar(s, 0.001)
	if len(violations) != 1 {
		t.Fatalf("violations=%d want 1", len(violations))
	}
	if violations[0].Severity != SeveritySevere {
		t.Fatalf("severity=%v want severe", violations[0].Severity)
	}
}

func TestCheckCalendarFlatSurfaceClean(t *testing.T) {
	s := flatSmileSurface(5, 5, 0.2)
	if got := CheckCalendar(s, 0.001); len(got) != 0 {
		t.Fatalf("calendar violations on flat surface=%d want 0", len(got))
	}
}

func TestCheckButterflyFlagsConcaveSmile(t *testing.T) {
	x := vecgrid.Vec[float64]{1.0}
	y := vecgrid.Vec[float64]{90, 100, 110}
	// concave: mid vol spikes above both wings
	z := vecgrid.Vec[float64]{0.2, 0.4, 0.2}
	s, err := surface.New(x, y, z, surface.Labels{})
	if err != nil {
		t.Fatal(err)
	}
	violations := CheckButterfly(s, 0.001)
	if len(violations) != 1 {
		t.Fatalf("violations=%d want 1", len(violations))
	}
}

func TestCheckButterflyFlatSurfaceClean(t *testing.T) {
	s := flatSmileSurface(3, 5, 0.25)
	if got := CheckButterfly(s, 0.001); len(got) != 0 {
		t.Fatalf("butterfly violations on flat surface=%d want 0", len(got))
	}
}

func TestCheckVerticalNoForwardReturnsNil(t *testing.T) {
	s := flatSmileSurface(3, 3, 0.2)
	if got := CheckVertical(s, 0, 0); got != nil {
		t.Fatalf("expected nil with no forward price, got %v", got)
	}
}

func TestCheckAllArbitrageCounts(t *testing.T) {
	x := vecgrid.Vec[float64]{0.5, 1.0}
	y := vecgrid.Vec[float64]{100}
	z := vecgrid.Vec[float64]{0.3, 0.1}
	s, err := surface.New(x, y, z, surface.Labels{})
	if err != nil {
		t.Fatal(err)
	}
	report := CheckAllArbitrage(s, ArbitrageOptions{})
	if report.CalendarCount != 1 {
		t.Fatalf("calendar count=%d want 1", report.CalendarCount)
	}
}

func TestEnforceArbitrageFreeConverges(t *testing.T) {
	x := vecgrid.Vec[float64]{0.5, 1.0}
	y := vecgrid.Vec[float64]{90, 100, 110}
	z := vecgrid.Vec[float64]{
		0.3, 0.4, 0.3,
		0.1, 0.15, 0.1,
	}
	s, err := surface.New(x, y, z, surface.Labels{})
	if err != nil {
		t.Fatal(err)
	}
	_, iterations := EnforceArbitrageFree(s, 200, 0.001)
	if iterations == 0 {
		t.Fatalf("expected at least one iteration")
	}
	if got := CheckCalendar(s, 0.001); len(got) != 0 {
		t.Fatalf("calendar violations remain after enforcement: %v", got)
	}
}

func TestComputeRiskMetricsFlatSurfaceIsZeroRisk(t *testing.T) {
	s := flatSmileSurface(5, 5, 0.2)
	metrics := ComputeRiskMetrics(s)
	if metrics.MaxSlope != 0 || metrics.RiskScore != 0 {
		t.Fatalf("flat surface metrics=%+v want all zero", metrics)
	}
	if metrics.AvgSlope != 0 || metrics.UpwardBias != 0 || metrics.SmileSteepness != 0 {
		t.Fatalf("flat surface metrics=%+v want avg/bias/smile all zero", metrics)
	}
	if len(metrics.FlatZones) == 0 {
		t.Fatalf("expected flat zones on a flat surface")
	}
}

func TestComputeRiskMetricsZonesRespectThresholds(t *testing.T) {
	x := vecgrid.Linspace(0.0, 1.0, 4)
	y := vecgrid.Linspace(0.0, 1.0, 4)
	z := vecgrid.Vec[float64]{
		0, 0, 0, 0,
		0, 0, 0, 0,
		0, 0, 0, 0,
		0, 0, 0, 10,
	}
	s, err := surface.New(x, y, z, surface.Labels{})
	if err != nil {
		t.Fatal(err)
	}
	metrics := ComputeRiskMetrics(s)
	for _, z := range metrics.HighRiskZones {
		if z.Value < 0.7*metrics.MaxSlope {
			t.Fatalf("high risk zone below 0.7*maxSlope threshold: %+v", z)
		}
	}
	for _, z := range metrics.FlatZones {
		if z.Value > 0.1*metrics.MaxSlope {
			t.Fatalf("flat zone above 0.1*maxSlope threshold: %+v", z)
		}
	}
}

func TestComputeRiskMetricsScoreClamped(t *testing.T) {
	x := vecgrid.Linspace(0.0, 1.0, 3)
	y := vecgrid.Vec[float64]{0, 1}
	z := vecgrid.Vec[float64]{0, 0, 100, 100, -100, -100}
	s, err := surface.New(x, y, z, surface.Labels{})
	if err != nil {
		t.Fatal(err)
	}
	metrics := ComputeRiskMetrics(s)
	if metrics.RiskScore < 0 || metrics.RiskScore > 1 {
		t.Fatalf("risk score out of bounds: %v", metrics.RiskScore)
	}
}

func TestComputeTermStructureFlatIsFlat(t *testing.T) {
	s := flatSmileSurface(5, 5, 0.2)
	ts := ComputeTermStructure(s)
	if ts.Shape != ShapeFlat {
		t.Fatalf("shape=%v want flat", ts.Shape)
	}
}

func TestComputeTermStructureContango(t *testing.T) {
	x := vecgrid.Linspace(0.1, 2.0, 5)
	y := vecgrid.Vec[float64]{100}
	z := vecgrid.New[float64](5)
	for i, xv := range x {
		z[i] = 0.1 + 0.05*xv
	}
	s, err := surface.New(x, y, z, surface.Labels{})
	if err != nil {
		t.Fatal(err)
	}
	ts := ComputeTermStructure(s)
	if ts.Shape != ShapeContango {
		t.Fatalf("shape=%v want contango", ts.Shape)
	}
}

func TestComputeTermStructureFlatnessNormalized(t *testing.T) {
	x := vecgrid.Linspace(0.1, 2.0, 5)
	y := vecgrid.Vec[float64]{100}
	z := vecgrid.Vec[float64]{0.2, 0.2, 0.2, 0.2, 0.1}
	s, err := surface.New(x, y, z, surface.Labels{})
	if err != nil {
		t.Fatal(err)
	}
	ts := ComputeTermStructure(s)
	want := 1 - math.Abs(0.2-0.1)/0.2
	if math.Abs(ts.Flatness-want) > 1e-9 {
		t.Fatalf("flatness=%v want %v", ts.Flatness, want)
	}
}

func TestComputeTermStructureInflectionsUseSecondDerivative(t *testing.T) {
	x := vecgrid.Linspace(0.1, 2.0, 5)
	y := vecgrid.Vec[float64]{100}
	// Monotonically increasing first derivative (convex throughout, no sign
	// change in the second derivative) must report zero inflections even
	// though the first derivative itself is never flat.
	z := vecgrid.Vec[float64]{0, 1, 3, 6, 10}
	s, err := surface.New(x, y, z, surface.Labels{})
	if err != nil {
		t.Fatal(err)
	}
	ts := ComputeTermStructure(s)
	if len(ts.Inflections) != 0 {
		t.Fatalf("inflections=%v want none for a convex curve", ts.Inflections)
	}
}

func TestComputeSmileSkewDirection(t *testing.T) {
	x := vecgrid.Vec[float64]{1.0}
	y := vecgrid.Vec[float64]{90, 100, 110}
	z := vecgrid.Vec[float64]{0.4, 0.2, 0.1} // downside premium
	s, err := surface.New(x, y, z, surface.Labels{})
	if err != nil {
		t.Fatal(err)
	}
	smile := ComputeSmile(s, 0)
	if smile.SkewDirection != SkewPut {
		t.Fatalf("skew=%v want put", smile.SkewDirection)
	}
}

func TestFindOpportunitiesSortedByProfitDescending(t *testing.T) {
	x := vecgrid.Vec[float64]{0.25, 0.5, 1.0}
	y := vecgrid.Vec[float64]{90, 100, 110}
	z := vecgrid.Vec[float64]{
		0.35, 0.45, 0.35,
		0.2, 0.2, 0.2,
		0.15, 0.15, 0.15,
	}
	s, err := surface.New(x, y, z, surface.Labels{})
	if err != nil {
		t.Fatal(err)
	}
	opps := FindOpportunities(s)
	for i := 1; i < len(opps); i++ {
		if opps[i].Profit > opps[i-1].Profit {
			t.Fatalf("opportunities not sorted descending: %v", opps)
		}
	}
}
