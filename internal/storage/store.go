// Package storage persists Marigraph session history: per-run surface
// snapshots, risk-metric series, arbitrage reports, and the wiring template
// a run was launched with, so a headless run can be replayed or diffed
// later via `marigraph history`. Store is backed by either an in-memory
// map (MemoryStore) or SQLite (SQLiteStore).
package storage

import "context"

// maxSnapshotsPerRun bounds the rolling window of surface snapshots kept
// per run; older snapshots are evicted on insert once the window is full.
const maxSnapshotsPerRun = 64

// Store defines persistence operations for one Marigraph session's history.
type Store interface {
	Init(ctx context.Context) error

	SaveSurfaceSnapshot(ctx context.Context, snap SurfaceSnapshot) error
	ListSurfaceSnapshots(ctx context.Context, runID string) ([]SurfaceSnapshot, error)

	SaveRiskMetrics(ctx context.Context, rec RiskMetricsRecord) error
	ListRiskMetrics(ctx context.Context, runID string) ([]RiskMetricsRecord, error)

	SaveArbitrageReport(ctx context.Context, rec ArbitrageReportRecord) error
	ListArbitrageReports(ctx context.Context, runID string) ([]ArbitrageReportRecord, error)

	SaveWiringTemplate(ctx context.Context, rec WiringTemplateRecord) error
	GetWiringTemplate(ctx context.Context, runID string) (WiringTemplateRecord, bool, error)

	ListRuns(ctx context.Context) ([]string, error)
}
