package storage

import (
	"time"

	"github.com/superposition/marigraph/internal/analytics"
	"github.com/superposition/marigraph/internal/surface"
	"github.com/superposition/marigraph/internal/template"
)

// VersionedRecord carries the schema/codec version pair every persisted
// record embeds, so a future schema change can be detected at decode time
// rather than silently misread.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// SurfaceSnapshot is one point in a session's rolling window of observed
// surfaces (its Surface, persisted verbatim since vecgrid.Vec
// marshals as a plain JSON array).
type SurfaceSnapshot struct {
	VersionedRecord
	RunID     string          `json:"run_id"`
	Timestamp time.Time       `json:"timestamp"`
	Surface   *surface.Surface `json:"surface"`
}

// RiskMetricsRecord is one timestamped sample in a session's risk-metrics
// time series.
type RiskMetricsRecord struct {
	VersionedRecord
	RunID     string               `json:"run_id"`
	Timestamp time.Time            `json:"timestamp"`
	Metrics   analytics.RiskMetrics `json:"metrics"`
}

// ArbitrageReportRecord is one timestamped arbitrage check result.
type ArbitrageReportRecord struct {
	VersionedRecord
	RunID     string                   `json:"run_id"`
	Timestamp time.Time                `json:"timestamp"`
	Report    analytics.ArbitrageReport `json:"report"`
}

// WiringTemplateRecord persists the template a session was launched with,
// so `marigraph history` can show which columns and wiring rules were
// active during a replayed run.
type WiringTemplateRecord struct {
	VersionedRecord
	RunID     string             `json:"run_id"`
	Timestamp time.Time          `json:"timestamp"`
	Template  template.Template `json:"template"`
}
