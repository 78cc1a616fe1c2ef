package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/superposition/marigraph/internal/ipc"
	"github.com/superposition/marigraph/internal/render"
	"github.com/superposition/marigraph/internal/router"
	"github.com/superposition/marigraph/internal/sink"
	"github.com/superposition/marigraph/internal/storage"
	"github.com/superposition/marigraph/internal/template"
	"github.com/superposition/marigraph/internal/stats"
	"github.com/superposition/marigraph/internal/surface"
	"github.com/superposition/marigraph/pkg/marigraph"
)

const defaultDBPath = "marigraph.db"

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "run":
		return runRun(ctx, args[1:])
	case "worker":
		return runWorker(ctx, args[1:])
	case "history":
		return runHistory(ctx, args[1:])
	case "version":
		fmt.Println("marigraph dev")
		return nil
	case "help", "-h", "--help":
		fmt.Println(usage())
		return nil
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func usage() string {
	return "usage: marigraph <run|worker|history|version|help> [flags]"
}

func usageError(msg string) error {
	return fmt.Errorf("%s\n%s", msg, usage())
}

// runRun loads a wiring template, spawns its workers (by re-exec'ing this
// same binary into "marigraph worker"), waits for readiness, and blocks
// until interrupted, at which point it shuts the session down gracefully.
func runRun(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	templatePath := fs.String("template", "", "path to a wiring template JSON file (required)")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", defaultDBPath, "sqlite database path")
	readyTimeoutMS := fs.Int("ready-timeout-ms", int(router.DefaultReadyTimeout/time.Millisecond), "worker readiness deadline in milliseconds")
	sinkName := fs.String("sink", "ansi", "default rendering sink for surface3d workers: ansi|headless")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *templatePath == "" {
		return errors.New("marigraph run: -template is required")
	}

	tmpl, err := template.Load(*templatePath)
	if err != nil {
		return fmt.Errorf("marigraph run: loading template: %w", err)
	}

	client, err := marigraph.New(ctx, marigraph.Options{StoreKind: *storeKind, DBPath: *dbPath})
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	self, err := os.Executable()
	if err != nil {
		self = os.Args[0]
	}

	summary, err := client.RunSession(ctx, marigraph.RunRequest{
		Template:       tmpl,
		WorkerCommand:  self,
		WorkerBaseArgs: []string{"worker", "-sink", *sinkName},
		ReadyTimeout:   time.Duration(*readyTimeoutMS) * time.Millisecond,
		Hooks: router.Hooks{
			OnWorkerReady: func(id string) { fmt.Fprintf(os.Stderr, "worker %s ready\n", id) },
			OnWorkerExit:  func(id string, err error) { fmt.Fprintf(os.Stderr, "worker %s exited: %v\n", id, err) },
			OnWorkerError: func(id string, payload []byte) { fmt.Fprintf(os.Stderr, "worker %s error: %s\n", id, payload) },
		},
	})
	if err != nil {
		return err
	}
	fmt.Printf("run %s started, workers=%v\n", summary.RunID, summary.Statuses)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	select {
	case <-stop:
	case <-ctx.Done():
	}

	client.Shutdown(5 * time.Second)
	fmt.Println("shutdown complete")
	return nil
}

// runWorker is the worker-side entrypoint, re-exec'd by runRun once per
// template column. It implements the minimal worker contract via
// router.WorkerLoop and, for kind=="surface3d", renders inbound SET_DATA
// surfaces to a named sink.
func runWorker(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("worker", flag.ContinueOnError)
	column := fs.String("column", "", "this worker's column id")
	kind := fs.String("kind", "", "this worker's column type")
	sinkName := fs.String("sink", "ansi", "rendering sink: ansi|headless")
	width := fs.Int("width", 100, "raster width in columns")
	height := fs.Int("height", 40, "raster height in rows")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if id := os.Getenv("WORKER_ID"); id != "" {
		*column = id
	}
	if raw := os.Getenv("WORKER_OPTIONS"); raw != "" {
		var opts map[string]string
		if json.Unmarshal([]byte(raw), &opts) == nil {
			if v, ok := opts["sink"]; ok {
				*sinkName = v
			}
		}
	}

	w := &surfaceColumnWorker{
		kind: *kind,
		proj: render.DefaultProjection(1, 1),
	}

	if *kind == "surface3d" {
		out, err := sink.Open(*sinkName, sink.Options{Width: *width, Height: *height})
		if err != nil {
			return err
		}
		defer func() { _ = out.Close() }()
		w.sink = out
		w.width, w.height = *width, *height
	}

	loop := &router.WorkerLoop{ID: *column, In: os.Stdin, Out: os.Stdout, Handler: w.handle}
	return loop.Run()
}

// surfaceColumnWorker holds the per-worker render state for a surface3d
// column: the current surface (set via SET_DATA) and the live projection
// (rotated/zoomed via FOCUS events wired from a control column).
type surfaceColumnWorker struct {
	kind   string
	sink   sink.Sink
	width  int
	height int

	proj    render.Projection
	current *surface.Surface
}

func (w *surfaceColumnWorker) handle(frame ipc.Frame) []ipc.Frame {
	switch frame.Header.Type {
	case ipc.MsgSetData, ipc.MsgSurfaceFull:
		s, err := ipc.DecodeSurfaceFull(frame.Payload)
		if err != nil {
			return nil
		}
		w.current = s
		w.render()
	case ipc.MsgFocus:
		var delta struct{ Azimuth, Elevation float64 }
		if json.Unmarshal(frame.Payload, &delta) == nil {
			w.proj = render.RotateProjection(w.proj, delta.Azimuth, delta.Elevation)
			w.render()
		}
	}
	return nil
}

func (w *surfaceColumnWorker) render() {
	if w.current == nil || w.sink == nil {
		return
	}
	scene := render.BuildScene(w.current, 10, true)
	buf, labels := render.Render(scene, w.proj, w.width, w.height)
	_ = w.sink.Present(buf, labels)
}

// runHistory inspects a previously persisted session's risk/arbitrage
// history, rendering a plain-text report via internal/stats.
func runHistory(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", defaultDBPath, "sqlite database path")
	runID := fs.String("run-id", "", "run id to inspect (omit to list all runs)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := marigraph.New(ctx, marigraph.Options{StoreKind: *storeKind, DBPath: *dbPath})
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	if *runID == "" {
		runs, err := client.ListRuns(ctx)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Println("no runs found")
			return nil
		}
		for _, id := range runs {
			fmt.Println(id)
		}
		return nil
	}

	h, err := client.LoadHistory(ctx, *runID)
	if err != nil {
		return err
	}

	points := make([]stats.RiskPoint, len(h.Risk))
	for i, rec := range h.Risk {
		points[i] = stats.RiskPoint{Timestamp: rec.Timestamp, Metrics: rec.Metrics}
	}
	fmt.Print(stats.RenderRiskReport(stats.BuildRiskReport(h.RunID, points)))
	for _, rec := range h.Arbitrage {
		fmt.Println(stats.RenderArbitrageReport(rec.Report))
	}
	fmt.Printf("surface snapshots recorded: %d\n", len(h.Snapshots))
	return nil
}
