// Package router implements the worker-process supervisor and wiring-rule
// dispatcher (C6): spawning one OS subprocess per declared worker, reading
// its framed stdout, and routing events between workers per a declarative
// wiring table.
package router

import "github.com/superposition/marigraph/internal/ipc"

// WorkerSpec describes one worker to spawn: its stable id, a free-form kind
// used by the worker binary to select behavior, the command to exec, and
// an options map passed through the environment.
type WorkerSpec struct {
	ID      string
	Kind    string
	Command string
	Args    []string
	Options map[string]string
}

// WiringRule declares that an event named EventName from worker Source
// should be forwarded to Target — a worker id, or "*" to broadcast to every
// worker but the source. ActionName, when set, resolves through the action
// registry (actions.go) to pick the outbound MessageType and transform the
// payload; when empty, MessageType is used directly (default SET_DATA).
type WiringRule struct {
	Source      string
	EventName   string
	Target      string
	ActionName  string
	MessageType ipc.MessageType
}

const broadcastTarget = "*"

// FrameHandler processes one inbound frame from a given worker. Used for
// the "other types: deliver to a per-worker/per-type handler" fallback.
type FrameHandler func(workerID string, frame ipc.Frame)

// WorkerStatus reports the liveness of one supervised worker.
type WorkerStatus struct {
	ID    string
	Ready bool
	Error string
}
