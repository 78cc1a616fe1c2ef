package storage

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is the default, in-process Store backend, matching the
// teacher's memory-first default (NewStore("", path) also selects memory).
type MemoryStore struct {
	mu sync.RWMutex

	initialized bool
	snapshots   map[string][]SurfaceSnapshot
	risk        map[string][]RiskMetricsRecord
	arbitrage   map[string][]ArbitrageReportRecord
	templates   map[string]WiringTemplateRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.snapshots = make(map[string][]SurfaceSnapshot)
	s.risk = make(map[string][]RiskMetricsRecord)
	s.arbitrage = make(map[string][]ArbitrageReportRecord)
	s.templates = make(map[string]WiringTemplateRecord)
	return nil
}

func (s *MemoryStore) SaveSurfaceSnapshot(_ context.Context, snap SurfaceSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := append(s.snapshots[snap.RunID], snap)
	if len(list) > maxSnapshotsPerRun {
		list = list[len(list)-maxSnapshotsPerRun:]
	}
	s.snapshots[snap.RunID] = list
	return nil
}

func (s *MemoryStore) ListSurfaceSnapshots(_ context.Context, runID string) ([]SurfaceSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := s.snapshots[runID]
	out := make([]SurfaceSnapshot, len(list))
	copy(out, list)
	return out, nil
}

func (s *MemoryStore) SaveRiskMetrics(_ context.Context, rec RiskMetricsRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.risk[rec.RunID] = append(s.risk[rec.RunID], rec)
	return nil
}

func (s *MemoryStore) ListRiskMetrics(_ context.Context, runID string) ([]RiskMetricsRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := s.risk[runID]
	out := make([]RiskMetricsRecord, len(list))
	copy(out, list)
	return out, nil
}

func (s *MemoryStore) SaveArbitrageReport(_ context.Context, rec ArbitrageReportRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.arbitrage[rec.RunID] = append(s.arbitrage[rec.RunID], rec)
	return nil
}

func (s *MemoryStore) ListArbitrageReports(_ context.Context, runID string) ([]ArbitrageReportRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := s.arbitrage[runID]
	out := make([]ArbitrageReportRecord, len(list))
	copy(out, list)
	return out, nil
}

func (s *MemoryStore) SaveWiringTemplate(_ context.Context, rec WiringTemplateRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.templates[rec.RunID] = rec
	return nil
}

func (s *MemoryStore) GetWiringTemplate(_ context.Context, runID string) (WiringTemplateRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.templates[runID]
	return rec, ok, nil
}

func (s *MemoryStore) ListRuns(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	for id := range s.snapshots {
		seen[id] = struct{}{}
	}
	for id := range s.risk {
		seen[id] = struct{}{}
	}
	for id := range s.arbitrage {
		seen[id] = struct{}{}
	}
	for id := range s.templates {
		seen[id] = struct{}{}
	}
	runs := make([]string, 0, len(seen))
	for id := range seen {
		runs = append(runs, id)
	}
	sort.Strings(runs)
	return runs, nil
}
