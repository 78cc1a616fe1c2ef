package router

import (
	"fmt"
	"io"
	"sync"

	"github.com/superposition/marigraph/internal/ipc"
)

// Handler processes one inbound frame on the worker side and may return
// frames to emit in response (e.g. an event payload). Returning nil is a
// valid no-op, required for every unrecognized message type.
type Handler func(frame ipc.Frame) []ipc.Frame

// WorkerLoop implements the minimum worker contract: it
// emits READY once, reads framed messages from in until SHUTDOWN or EOF,
// answers PING with PONG (echoing payload and seq), and otherwise invokes
// handler — never panicking on an unrecognized type.
type WorkerLoop struct {
	ID      string
	In      io.Reader
	Out     io.Writer
	Handler Handler

	writeMu sync.Mutex
	seq     uint16
}

// Run blocks until SHUTDOWN is received or In is closed, returning nil in
// either case (the worker contract requires exiting promptly with code 0
// on SHUTDOWN, which Run's caller should translate to os.Exit(0)).
func (w *WorkerLoop) Run() error {
	if err := w.emit(ipc.MsgReady, 0, nil); err != nil {
		return fmt.Errorf("router: worker %s emitting READY: %w", w.ID, err)
	}

	reader := ipc.NewFrameReader()
	buf := make([]byte, 4096)
	for {
		n, err := w.In.Read(buf)
		if n > 0 {
			reader.Append(buf[:n])
			for _, frame := range reader.ReadAll() {
				if shutdown := w.handle(frame); shutdown {
					return nil
				}
			}
		}
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
	}
}

// handle dispatches one frame per the worker contract, returning true if
// the worker should now exit.
func (w *WorkerLoop) handle(frame ipc.Frame) bool {
	switch frame.Header.Type {
	case ipc.MsgShutdown:
		return true
	case ipc.MsgPing:
		_ = w.emitWithSeq(ipc.MsgPong, 0, frame.Header.Seq, frame.Payload)
	default:
		if w.Handler == nil {
			return false
		}
		for _, reply := range w.Handler(frame) {
			_ = w.emit(reply.Header.Type, reply.Header.Flags, reply.Payload)
		}
	}
	return false
}

// emit sends a frame from the worker to its stdout, assigning the next
// sequence number.
func (w *WorkerLoop) emit(msgType ipc.MessageType, flags uint8, payload []byte) error {
	w.writeMu.Lock()
	w.seq++
	seq := w.seq
	w.writeMu.Unlock()
	return w.emitWithSeq(msgType, flags, seq, payload)
}

// emitWithSeq sends a frame carrying an explicit sequence number, used to
// echo a PING's seq back in its PONG.
func (w *WorkerLoop) emitWithSeq(msgType ipc.MessageType, flags uint8, seq uint16, payload []byte) error {
	w.writeMu.Lock()
	defer w.writeMu.Unlock()
	_, err := w.Out.Write(ipc.Encode(msgType, flags, seq, payload))
	return err
}

// EmitEvent emits a worker event (SELECTED, CLICKED, …) whose payload is
// JSON including the worker's own id,.point 5.
func (w *WorkerLoop) EmitEvent(msgType ipc.MessageType, jsonPayload []byte) error {
	return w.emit(msgType, 0, jsonPayload)
}
