// Package marigraph is the public facade over a Marigraph session:
// loading a wiring template, spawning its workers under a Supervisor,
// and recording session history.
package marigraph

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/superposition/marigraph/internal/analytics"
	"github.com/superposition/marigraph/internal/ipc"
	"github.com/superposition/marigraph/internal/router"
	"github.com/superposition/marigraph/internal/storage"
	"github.com/superposition/marigraph/internal/surface"
	"github.com/superposition/marigraph/internal/template"
)

const defaultDBPath = "marigraph.db"

// Options configures a Client.
type Options struct {
	StoreKind string
	DBPath    string
}

// Client owns a Store and, once a session is running, its Supervisor.
type Client struct {
	store storage.Store
	sup   *router.Supervisor
	runID string
}

// New opens a Client's store. storeKind defaults to storage.DefaultStoreKind().
func New(ctx context.Context, opts Options) (*Client, error) {
	storeKind := opts.StoreKind
	if storeKind == "" {
		storeKind = storage.DefaultStoreKind()
	}
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}

	store, err := storage.NewStore(storeKind, dbPath)
	if err != nil {
		return nil, err
	}
	if err := store.Init(ctx); err != nil {
		return nil, err
	}
	return &Client{store: store}, nil
}

// Close releases the Client's store (and, if sqlite, its database handle).
func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

// RunRequest configures a session launch.
type RunRequest struct {
	Template       *template.Template
	WorkerCommand  string        // re-exec'd binary; the CLI passes os.Executable()
	WorkerBaseArgs []string      // e.g. ["worker"], prepended to each spawned worker's args
	ReadyTimeout   time.Duration // 0 uses router.DefaultReadyTimeout
	Hooks          router.Hooks
}

// RunSummary reports the outcome of launching a session.
type RunSummary struct {
	RunID    string
	Statuses []router.WorkerStatus
}

// RunSession spawns req.Template's workers, waits for all of them to
// become ready, and then persists req.Template under a fresh run id. The
// session's Supervisor stays live until Shutdown is called.
func (c *Client) RunSession(ctx context.Context, req RunRequest) (RunSummary, error) {
	runID := uuid.NewString()

	specs := req.Template.WorkerSpecs(req.WorkerCommand, req.WorkerBaseArgs...)
	wiring := req.Template.WiringRules()

	sup := router.NewWithHooks(req.Hooks)
	if err := sup.Start(ctx, specs, wiring, req.ReadyTimeout); err != nil {
		return RunSummary{}, err
	}
	c.sup = sup
	c.runID = runID

	if err := c.store.SaveWiringTemplate(ctx, storage.WiringTemplateRecord{RunID: runID, Template: *req.Template}); err != nil {
		return RunSummary{}, err
	}

	return RunSummary{RunID: runID, Statuses: sup.Statuses()}, nil
}

// Shutdown gracefully stops the running session's workers, if any.
func (c *Client) Shutdown(grace time.Duration) {
	if c.sup != nil {
		c.sup.Shutdown(grace)
	}
}

// RecordSnapshot persists a Surface sample for the active (or a given)
// run, for later inspection via History.
func (c *Client) RecordSnapshot(ctx context.Context, runID string, s *surface.Surface) error {
	return c.store.SaveSurfaceSnapshot(ctx, storage.SurfaceSnapshot{RunID: runID, Surface: s})
}

// RecordRisk persists a RiskMetrics sample for runID.
func (c *Client) RecordRisk(ctx context.Context, runID string, metrics analytics.RiskMetrics) error {
	return c.store.SaveRiskMetrics(ctx, storage.RiskMetricsRecord{RunID: runID, Metrics: metrics})
}

// RecordArbitrageReport persists an ArbitrageReport sample for runID.
func (c *Client) RecordArbitrageReport(ctx context.Context, runID string, report analytics.ArbitrageReport) error {
	return c.store.SaveArbitrageReport(ctx, storage.ArbitrageReportRecord{RunID: runID, Report: report})
}

// History is the full persisted record of one run, assembled from the
// store's four kinds of records.
type History struct {
	RunID     string
	Template  *template.Template
	Snapshots []storage.SurfaceSnapshot
	Risk      []storage.RiskMetricsRecord
	Arbitrage []storage.ArbitrageReportRecord
}

// LoadHistory assembles a History for runID from the store.
func (c *Client) LoadHistory(ctx context.Context, runID string) (History, error) {
	h := History{RunID: runID}

	if rec, ok, err := c.store.GetWiringTemplate(ctx, runID); err != nil {
		return History{}, err
	} else if ok {
		t := rec.Template
		h.Template = &t
	}

	snaps, err := c.store.ListSurfaceSnapshots(ctx, runID)
	if err != nil {
		return History{}, err
	}
	h.Snapshots = snaps

	risk, err := c.store.ListRiskMetrics(ctx, runID)
	if err != nil {
		return History{}, err
	}
	h.Risk = risk

	arb, err := c.store.ListArbitrageReports(ctx, runID)
	if err != nil {
		return History{}, err
	}
	h.Arbitrage = arb

	return h, nil
}

// ListRuns returns every run id known to the store, sorted.
func (c *Client) ListRuns(ctx context.Context) ([]string, error) {
	return c.store.ListRuns(ctx)
}

// Send forwards a frame to a named worker of the active session.
func (c *Client) Send(workerID string, msgType ipc.MessageType, payload []byte) error {
	return c.sup.Send(workerID, msgType, 0, payload)
}

// Broadcast forwards a frame to every worker of the active session.
func (c *Client) Broadcast(msgType ipc.MessageType, payload []byte) {
	c.sup.Broadcast(msgType, 0, payload)
}

// RunID returns the active session's run id, or "" if none is running.
func (c *Client) RunID() string { return c.runID }
