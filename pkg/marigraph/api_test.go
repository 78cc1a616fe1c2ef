package marigraph

import (
	"context"
	"testing"

	"github.com/superposition/marigraph/internal/analytics"
	"github.com/superposition/marigraph/internal/storage"
	"github.com/superposition/marigraph/internal/template"
)

func TestRecordAndLoadHistory(t *testing.T) {
	ctx := context.Background()
	c, err := New(ctx, Options{StoreKind: "memory"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })

	tmpl := template.Template{Name: "demo", Columns: []template.Column{{ID: "a", Type: "surface3d"}}}
	if err := c.store.SaveWiringTemplate(ctx, storage.WiringTemplateRecord{RunID: "run-1", Template: tmpl}); err != nil {
		t.Fatalf("save template: %v", err)
	}
	if err := c.RecordRisk(ctx, "run-1", analytics.RiskMetrics{RiskScore: 0.4}); err != nil {
		t.Fatalf("record risk: %v", err)
	}
	if err := c.RecordArbitrageReport(ctx, "run-1", analytics.ArbitrageReport{CalendarCount: 1}); err != nil {
		t.Fatalf("record arbitrage: %v", err)
	}

	h, err := c.LoadHistory(ctx, "run-1")
	if err != nil {
		t.Fatalf("load history: %v", err)
	}
	if h.Template == nil || h.Template.Name != "demo" {
		t.Fatalf("unexpected template: %+v", h.Template)
	}
	if len(h.Risk) != 1 || h.Risk[0].Metrics.RiskScore != 0.4 {
		t.Fatalf("unexpected risk: %+v", h.Risk)
	}
	if len(h.Arbitrage) != 1 || h.Arbitrage[0].Report.CalendarCount != 1 {
		t.Fatalf("unexpected arbitrage: %+v", h.Arbitrage)
	}

	runs, err := c.ListRuns(ctx)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 1 || runs[0] != "run-1" {
		t.Fatalf("unexpected runs: %v", runs)
	}
}
