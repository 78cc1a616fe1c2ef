package router

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/superposition/marigraph/internal/ipc"
)

// DefaultReadyTimeout is the global startup readiness deadline.
const DefaultReadyTimeout = 10 * time.Second

// Hooks lets a caller observe worker lifecycle transitions without
// polling Statuses.
type Hooks struct {
	OnWorkerReady func(workerID string)
	OnWorkerExit  func(workerID string, err error)
	OnWorkerError func(workerID string, payload []byte)
}

// Supervisor spawns and supervises the worker subprocesses of a Marigraph
// session, dispatching inbound frames per a declarative wiring table and
// carrying outbound frames back to worker stdin. It tracks each worker's
// reader-loop goroutine in a readerLoopGroup so Shutdown can wait for all
// of them to drain.
type Supervisor struct {
	sup   *readerLoopGroup
	hooks Hooks

	mu       sync.Mutex
	workers  map[string]*workerProcess
	wiring   []WiringRule
	handlers map[string]map[ipc.MessageType]FrameHandler
	workDir  string
}

// New returns a Supervisor with no lifecycle hooks installed.
func New() *Supervisor {
	return NewWithHooks(Hooks{})
}

// NewWithHooks is like New but installs hooks for worker lifecycle events.
func NewWithHooks(hooks Hooks) *Supervisor {
	return &Supervisor{
		sup:      newReaderLoopGroup(),
		hooks:    hooks,
		workers:  make(map[string]*workerProcess),
		handlers: make(map[string]map[ipc.MessageType]FrameHandler),
	}
}

// OnFrame registers a handler for (workerID, msgType) frames that are
// neither READY, ERROR, nor a wired event — the "per-worker/per-type
// handler" fallback.
func (s *Supervisor) OnFrame(workerID string, msgType ipc.MessageType, handler FrameHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.handlers[workerID] == nil {
		s.handlers[workerID] = make(map[ipc.MessageType]FrameHandler)
	}
	s.handlers[workerID][msgType] = handler
}

// Start spawns every worker, installs the wiring table, and waits up to
// readyTimeout (DefaultReadyTimeout if <= 0) for all of them to emit
// READY. On timeout it returns an error naming the workers that never
// became ready; workers are left running for the caller to decide whether
// to shut down.
func (s *Supervisor) Start(ctx context.Context, specs []WorkerSpec, wiring []WiringRule, readyTimeout time.Duration) error {
	if readyTimeout <= 0 {
		readyTimeout = DefaultReadyTimeout
	}

	workDir, err := os.MkdirTemp("", "marigraph-router-*")
	if err != nil {
		return fmt.Errorf("router: creating working directory: %w", err)
	}

	s.mu.Lock()
	s.workDir = workDir
	s.wiring = wiring
	s.mu.Unlock()

	for _, spec := range specs {
		wp, err := spawnWorker(spec, workDir)
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.workers[spec.ID] = wp
		s.mu.Unlock()

		id := spec.ID
		s.sup.start(id, func(ctx context.Context) error {
			err := wp.readLoop(func(f ipc.Frame) { s.dispatch(id, f) })
			if s.hooks.OnWorkerExit != nil {
				s.hooks.OnWorkerExit(id, err)
			}
			return err
		})
	}

	return s.awaitReady(ctx, specs, readyTimeout)
}

func (s *Supervisor) awaitReady(ctx context.Context, specs []WorkerSpec, timeout time.Duration) error {
	readyIDs := make(chan string, len(specs))
	for _, spec := range specs {
		id := spec.ID
		s.mu.Lock()
		wp := s.workers[id]
		s.mu.Unlock()
		go func() {
			<-wp.readyCh
			readyIDs <- id
		}()
	}

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	pending := make(map[string]struct{}, len(specs))
	for _, spec := range specs {
		pending[spec.ID] = struct{}{}
	}

	for len(pending) > 0 {
		select {
		case id := <-readyIDs:
			delete(pending, id)
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			names := make([]string, 0, len(pending))
			for id := range pending {
				names = append(names, id)
			}
			sort.Strings(names)
			return fmt.Errorf("router: workers not ready within %s: %v", timeout, names)
		}
	}
	return nil
}

// dispatch implements its dispatch rules for one inbound frame
// from worker wid.
func (s *Supervisor) dispatch(wid string, frame ipc.Frame) {
	switch {
	case frame.Header.Type == ipc.MsgReady:
		s.mu.Lock()
		wp := s.workers[wid]
		s.mu.Unlock()
		if wp != nil {
			wp.markReady()
		}
		if s.hooks.OnWorkerReady != nil {
			s.hooks.OnWorkerReady(wid)
		}
	case frame.Header.Type == ipc.MsgError:
		// Logged by the caller's own observability stack; the router's
		// contract only requires that it not treat this as fatal.
		if s.hooks.OnWorkerError != nil {
			s.hooks.OnWorkerError(wid, frame.Payload)
		}
	case frame.Header.Type.IsEvent():
		s.dispatchEvent(wid, frame)
	default:
		s.mu.Lock()
		handler := s.handlers[wid][frame.Header.Type]
		s.mu.Unlock()
		if handler != nil {
			handler(wid, frame)
		}
	}
}

func (s *Supervisor) dispatchEvent(wid string, frame ipc.Frame) {
	eventName := frame.Header.Type.Name()

	s.mu.Lock()
	var matches []WiringRule
	for _, rule := range s.wiring {
		if rule.Source == wid && rule.EventName == eventName {
			matches = append(matches, rule)
		}
	}
	workers := s.workers
	s.mu.Unlock()

	seen := make(map[string]struct{})
	for _, rule := range matches {
		msgType := rule.MessageType
		payload := frame.Payload
		if rule.ActionName != "" {
			action, err := LookupAction(rule.ActionName)
			if err != nil {
				continue
			}
			t, out, err := action(frame.Payload)
			if err != nil {
				continue
			}
			msgType, payload = t, out
		} else if msgType == 0 {
			msgType = ipc.MsgSetData
		}
		targets := s.resolveTargets(rule.Target, wid, workers)
		for _, target := range targets {
			if _, dup := seen[target+"/"+eventName]; dup {
				continue
			}
			seen[target+"/"+eventName] = struct{}{}
			_ = s.Send(target, msgType, 0, payload)
		}
	}
}

func (s *Supervisor) resolveTargets(target, source string, workers map[string]*workerProcess) []string {
	if target != broadcastTarget {
		return []string{target}
	}
	out := make([]string, 0, len(workers))
	for id := range workers {
		if id == source {
			continue
		}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Send encodes a frame and writes it to the named worker's stdin.
func (s *Supervisor) Send(workerID string, msgType ipc.MessageType, flags uint8, payload []byte) error {
	s.mu.Lock()
	wp, ok := s.workers[workerID]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("router: unknown worker %q", workerID)
	}
	return wp.send(msgType, flags, payload)
}

// Broadcast sends a frame to every supervised worker.
func (s *Supervisor) Broadcast(msgType ipc.MessageType, flags uint8, payload []byte) {
	s.mu.Lock()
	ids := make([]string, 0, len(s.workers))
	for id := range s.workers {
		ids = append(ids, id)
	}
	s.mu.Unlock()
	for _, id := range ids {
		_ = s.Send(id, msgType, flags, payload)
	}
}

type shutdownReason struct {
	Reason string `json:"reason"`
}

// Shutdown broadcasts SHUTDOWN, waits up to grace for every worker to
// exit, force-kills any stragglers, and removes the working directory.
func (s *Supervisor) Shutdown(grace time.Duration) {
	payload, _ := json.Marshal(shutdownReason{Reason: "shutdown"})
	s.Broadcast(ipc.MsgShutdown, 0, payload)

	s.mu.Lock()
	workers := make([]*workerProcess, 0, len(s.workers))
	for _, wp := range s.workers {
		workers = append(workers, wp)
	}
	workDir := s.workDir
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		for _, wp := range workers {
			_ = wp.wait()
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(grace):
		for _, wp := range workers {
			wp.kill()
		}
	}

	s.sup.stopAll()
	if workDir != "" {
		_ = os.RemoveAll(workDir)
	}
}

// Statuses reports per-worker readiness, taken from whether each worker
// has sent its READY signal.
func (s *Supervisor) Statuses() []WorkerStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.workers))
	for id := range s.workers {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]WorkerStatus, 0, len(ids))
	for _, id := range ids {
		wp := s.workers[id]
		ready := false
		select {
		case <-wp.readyCh:
			ready = true
		default:
		}
		out = append(out, WorkerStatus{ID: id, Ready: ready})
	}
	return out
}
