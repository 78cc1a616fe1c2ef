//go:build sqlite

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"sync"

	_ "modernc.org/sqlite"
)

// SQLiteStore is the persistent backend, over modernc.org/sqlite's pure-Go
// driver.
type SQLiteStore struct {
	path string

	mu sync.RWMutex
	db *sql.DB
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

func newSQLiteStore(path string) (Store, error) {
	return NewSQLiteStore(path), nil
}

func (s *SQLiteStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("storage: sqlite path is required")
	}
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}
	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return err
	}

	s.db = db
	return nil
}

func (s *SQLiteStore) SaveSurfaceSnapshot(ctx context.Context, snap SurfaceSnapshot) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}
	payload, err := EncodeSurfaceSnapshot(snap)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO surface_snapshots (run_id, timestamp, payload) VALUES (?, ?, ?)
	`, snap.RunID, snap.Timestamp.UnixNano(), payload)
	if err != nil {
		return err
	}
	return s.trimSnapshots(ctx, snap.RunID)
}

func (s *SQLiteStore) trimSnapshots(ctx context.Context, runID string) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `
		DELETE FROM surface_snapshots
		WHERE run_id = ? AND id NOT IN (
			SELECT id FROM surface_snapshots WHERE run_id = ? ORDER BY id DESC LIMIT ?
		)
	`, runID, runID, maxSnapshotsPerRun)
	return err
}

func (s *SQLiteStore) ListSurfaceSnapshots(ctx context.Context, runID string) ([]SurfaceSnapshot, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, `SELECT payload FROM surface_snapshots WHERE run_id = ? ORDER BY id ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SurfaceSnapshot
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		snap, err := DecodeSurfaceSnapshot(payload)
		if err != nil {
			return nil, fmt.Errorf("storage: decode snapshot for run %s: %w", runID, err)
		}
		out = append(out, snap)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) SaveRiskMetrics(ctx context.Context, rec RiskMetricsRecord) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}
	payload, err := EncodeRiskMetricsRecord(rec)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO risk_metrics (run_id, timestamp, payload) VALUES (?, ?, ?)
	`, rec.RunID, rec.Timestamp.UnixNano(), payload)
	return err
}

func (s *SQLiteStore) ListRiskMetrics(ctx context.Context, runID string) ([]RiskMetricsRecord, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, `SELECT payload FROM risk_metrics WHERE run_id = ? ORDER BY id ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RiskMetricsRecord
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		rec, err := DecodeRiskMetricsRecord(payload)
		if err != nil {
			return nil, fmt.Errorf("storage: decode risk metrics for run %s: %w", runID, err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) SaveArbitrageReport(ctx context.Context, rec ArbitrageReportRecord) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}
	payload, err := EncodeArbitrageReportRecord(rec)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO arbitrage_reports (run_id, timestamp, payload) VALUES (?, ?, ?)
	`, rec.RunID, rec.Timestamp.UnixNano(), payload)
	return err
}

func (s *SQLiteStore) ListArbitrageReports(ctx context.Context, runID string) ([]ArbitrageReportRecord, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, `SELECT payload FROM arbitrage_reports WHERE run_id = ? ORDER BY id ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ArbitrageReportRecord
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		rec, err := DecodeArbitrageReportRecord(payload)
		if err != nil {
			return nil, fmt.Errorf("storage: decode arbitrage report for run %s: %w", runID, err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) SaveWiringTemplate(ctx context.Context, rec WiringTemplateRecord) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}
	payload, err := EncodeWiringTemplateRecord(rec)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO wiring_templates (run_id, payload) VALUES (?, ?)
		ON CONFLICT(run_id) DO UPDATE SET payload = excluded.payload
	`, rec.RunID, payload)
	return err
}

func (s *SQLiteStore) GetWiringTemplate(ctx context.Context, runID string) (WiringTemplateRecord, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return WiringTemplateRecord{}, false, err
	}
	var payload []byte
	err = db.QueryRowContext(ctx, `SELECT payload FROM wiring_templates WHERE run_id = ?`, runID).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return WiringTemplateRecord{}, false, nil
		}
		return WiringTemplateRecord{}, false, err
	}
	rec, err := DecodeWiringTemplateRecord(payload)
	if err != nil {
		return WiringTemplateRecord{}, false, fmt.Errorf("storage: decode wiring template for run %s: %w", runID, err)
	}
	return rec, true, nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context) ([]string, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	for _, table := range []string{"surface_snapshots", "risk_metrics", "arbitrage_reports", "wiring_templates"} {
		rows, err := db.QueryContext(ctx, fmt.Sprintf(`SELECT DISTINCT run_id FROM %s`, table))
		if err != nil {
			return nil, err
		}
		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return nil, err
			}
			seen[id] = struct{}{}
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()
	}
	runs := make([]string, 0, len(seen))
	for id := range seen {
		runs = append(runs, id)
	}
	sort.Strings(runs)
	return runs, nil
}

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLiteStore) getDB() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, errors.New("storage: store is not initialized")
	}
	return s.db, nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS surface_snapshots (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			timestamp INTEGER NOT NULL,
			payload BLOB NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_surface_snapshots_run ON surface_snapshots(run_id);

		CREATE TABLE IF NOT EXISTS risk_metrics (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			timestamp INTEGER NOT NULL,
			payload BLOB NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_risk_metrics_run ON risk_metrics(run_id);

		CREATE TABLE IF NOT EXISTS arbitrage_reports (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			timestamp INTEGER NOT NULL,
			payload BLOB NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_arbitrage_reports_run ON arbitrage_reports(run_id);

		CREATE TABLE IF NOT EXISTS wiring_templates (
			run_id TEXT PRIMARY KEY,
			payload BLOB NOT NULL
		);
	`)
	return err
}
