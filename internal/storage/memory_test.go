package storage

import (
	"context"
	"testing"

	"github.com/superposition/marigraph/internal/analytics"
	"github.com/superposition/marigraph/internal/surface"
	"github.com/superposition/marigraph/internal/template"
)

func newTestSurface(t *testing.T) *surface.Surface {
	t.Helper()
	s, err := surface.New([]float64{0, 0.5, 1}, []float64{0.1, 0.2}, []float64{1, 2, 3, 4, 5, 6}, surface.Labels{X: "x", Y: "y", Z: "z"})
	if err != nil {
		t.Fatalf("new surface: %v", err)
	}
	return s
}

func TestMemoryStoreSurfaceSnapshotRollingWindow(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	for i := 0; i < maxSnapshotsPerRun+5; i++ {
		snap := SurfaceSnapshot{RunID: "run-1", Surface: newTestSurface(t)}
		if err := store.SaveSurfaceSnapshot(ctx, snap); err != nil {
			t.Fatalf("save snapshot %d: %v", i, err)
		}
	}

	snaps, err := store.ListSurfaceSnapshots(ctx, "run-1")
	if err != nil {
		t.Fatalf("list snapshots: %v", err)
	}
	if len(snaps) != maxSnapshotsPerRun {
		t.Fatalf("snapshot count=%d want=%d (rolling window)", len(snaps), maxSnapshotsPerRun)
	}
}

func TestMemoryStoreRiskMetricsRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	rec := RiskMetricsRecord{RunID: "run-1", Metrics: analytics.RiskMetrics{RiskScore: 0.42}}
	if err := store.SaveRiskMetrics(ctx, rec); err != nil {
		t.Fatalf("save: %v", err)
	}
	list, err := store.ListRiskMetrics(ctx, "run-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].Metrics.RiskScore != 0.42 {
		t.Fatalf("unexpected list: %+v", list)
	}
}

func TestMemoryStoreArbitrageReportRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	rec := ArbitrageReportRecord{RunID: "run-1", Report: analytics.ArbitrageReport{CalendarCount: 2}}
	if err := store.SaveArbitrageReport(ctx, rec); err != nil {
		t.Fatalf("save: %v", err)
	}
	list, err := store.ListArbitrageReports(ctx, "run-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].Report.CalendarCount != 2 {
		t.Fatalf("unexpected list: %+v", list)
	}
}

func TestMemoryStoreWiringTemplateRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	rec := WiringTemplateRecord{RunID: "run-1", Template: template.Template{Name: "demo"}}
	if err := store.SaveWiringTemplate(ctx, rec); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, ok, err := store.GetWiringTemplate(ctx, "run-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !ok || got.Template.Name != "demo" {
		t.Fatalf("unexpected record: ok=%t %+v", ok, got)
	}

	if _, ok, err := store.GetWiringTemplate(ctx, "missing"); err != nil || ok {
		t.Fatalf("expected no record for missing run, ok=%t err=%v", ok, err)
	}
}

func TestMemoryStoreListRunsAggregatesAcrossKinds(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	_ = store.SaveSurfaceSnapshot(ctx, SurfaceSnapshot{RunID: "run-a", Surface: newTestSurface(t)})
	_ = store.SaveRiskMetrics(ctx, RiskMetricsRecord{RunID: "run-b"})
	_ = store.SaveWiringTemplate(ctx, WiringTemplateRecord{RunID: "run-a"})

	runs, err := store.ListRuns(ctx)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 2 || runs[0] != "run-a" || runs[1] != "run-b" {
		t.Fatalf("unexpected runs: %v", runs)
	}
}
