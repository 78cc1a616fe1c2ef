package router

import (
	"bytes"
	"testing"

	"github.com/superposition/marigraph/internal/ipc"
)

func TestWorkerLoopEmitsReadyThenRespondsToPing(t *testing.T) {
	var out bytes.Buffer
	ping := ipc.Encode(ipc.MsgPing, 0, 99, []byte("payload"))
	shutdown := ipc.Encode(ipc.MsgShutdown, 0, 0, nil)

	loop := &WorkerLoop{ID: "w1", In: bytes.NewReader(append(ping, shutdown...)), Out: &out}
	if err := loop.Run(); err != nil {
		t.Fatal(err)
	}

	reader := ipc.NewFrameReader()
	reader.Append(out.Bytes())
	frames := reader.ReadAll()
	if len(frames) != 2 {
		t.Fatalf("frames=%d want 2 (READY, PONG)", len(frames))
	}
	if frames[0].Header.Type != ipc.MsgReady {
		t.Fatalf("first frame type=%v want READY", frames[0].Header.Type)
	}
	if frames[1].Header.Type != ipc.MsgPong || frames[1].Header.Seq != 99 || string(frames[1].Payload) != "payload" {
		t.Fatalf("pong frame=%+v", frames[1])
	}
}

func TestWorkerLoopIgnoresUnknownTypes(t *testing.T) {
	var out bytes.Buffer
	unknown := ipc.Encode(ipc.MessageType(0xFE), 0, 1, []byte("x"))
	shutdown := ipc.Encode(ipc.MsgShutdown, 0, 0, nil)

	loop := &WorkerLoop{ID: "w1", In: bytes.NewReader(append(unknown, shutdown...)), Out: &out}
	if err := loop.Run(); err != nil {
		t.Fatal(err)
	}
	reader := ipc.NewFrameReader()
	reader.Append(out.Bytes())
	frames := reader.ReadAll()
	if len(frames) != 1 || frames[0].Header.Type != ipc.MsgReady {
		t.Fatalf("expected only READY to be emitted for an unknown message type, got %+v", frames)
	}
}

func TestWorkerLoopInvokesHandlerForRecognizedDataTypes(t *testing.T) {
	var out bytes.Buffer
	var seenPayload []byte
	handler := func(frame ipc.Frame) []ipc.Frame {
		seenPayload = frame.Payload
		return []ipc.Frame{{Header: ipc.FrameHeader{Type: ipc.MsgSelected}, Payload: []byte(`{"id":"w1"}`)}}
	}

	data := ipc.Encode(ipc.MsgSetData, 0, 1, []byte("hello"))
	shutdown := ipc.Encode(ipc.MsgShutdown, 0, 0, nil)
	loop := &WorkerLoop{ID: "w1", In: bytes.NewReader(append(data, shutdown...)), Out: &out, Handler: handler}
	if err := loop.Run(); err != nil {
		t.Fatal(err)
	}
	if string(seenPayload) != "hello" {
		t.Fatalf("handler saw payload=%q want %q", seenPayload, "hello")
	}

	reader := ipc.NewFrameReader()
	reader.Append(out.Bytes())
	frames := reader.ReadAll()
	if len(frames) != 2 || frames[1].Header.Type != ipc.MsgSelected {
		t.Fatalf("expected READY then SELECTED reply, got %+v", frames)
	}
}

func TestResolveTargetsBroadcastExcludesSource(t *testing.T) {
	s := &Supervisor{workers: map[string]*workerProcess{
		"a": nil, "b": nil, "c": nil,
	}}
	targets := s.resolveTargets(broadcastTarget, "b", s.workers)
	want := []string{"a", "c"}
	if len(targets) != len(want) {
		t.Fatalf("targets=%v want %v", targets, want)
	}
	for i := range want {
		if targets[i] != want[i] {
			t.Fatalf("targets=%v want %v", targets, want)
		}
	}
}

func TestResolveTargetsDirect(t *testing.T) {
	s := &Supervisor{workers: map[string]*workerProcess{"a": nil, "b": nil}}
	targets := s.resolveTargets("a", "b", s.workers)
	if len(targets) != 1 || targets[0] != "a" {
		t.Fatalf("targets=%v want [a]", targets)
	}
}

func TestDispatchFiresReadyAndErrorHooks(t *testing.T) {
	var readyID string
	var errID string
	var errPayload []byte

	s := &Supervisor{
		workers: map[string]*workerProcess{"w1": {readyCh: make(chan struct{})}},
		hooks: Hooks{
			OnWorkerReady: func(id string) { readyID = id },
			OnWorkerError: func(id string, payload []byte) { errID, errPayload = id, payload },
		},
	}

	s.dispatch("w1", ipc.Frame{Header: ipc.FrameHeader{Type: ipc.MsgReady}})
	if readyID != "w1" {
		t.Fatalf("OnWorkerReady id=%q want w1", readyID)
	}

	s.dispatch("w1", ipc.Frame{Header: ipc.FrameHeader{Type: ipc.MsgError}, Payload: []byte("boom")})
	if errID != "w1" || string(errPayload) != "boom" {
		t.Fatalf("OnWorkerError id=%q payload=%q", errID, errPayload)
	}
}
