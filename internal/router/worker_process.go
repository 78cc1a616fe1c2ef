package router

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"

	"github.com/superposition/marigraph/internal/ipc"
)

// workerProcess owns one spawned worker subprocess: its pipes, the
// streaming frame decoder reading its stdout, and the readiness signal the
// supervisor waits on during startup.
type workerProcess struct {
	spec WorkerSpec
	cmd  *exec.Cmd
	in   io.WriteCloser
	out  io.ReadCloser

	reader *ipc.FrameReader

	readyOnce sync.Once
	readyCh   chan struct{}

	writeMu sync.Mutex
	seq     uint16
}

func spawnWorker(spec WorkerSpec, workDir string) (*workerProcess, error) {
	cmd := exec.Command(spec.Command, spec.Args...)
	cmd.Env = append(os.Environ(), workerEnv(spec, workDir)...)
	cmd.Stderr = os.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("router: stdin pipe for %s: %w", spec.ID, err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("router: stdout pipe for %s: %w", spec.ID, err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("router: starting worker %s: %w", spec.ID, err)
	}

	return &workerProcess{
		spec:    spec,
		cmd:     cmd,
		in:      stdin,
		out:     stdout,
		reader:  ipc.NewFrameReader(),
		readyCh: make(chan struct{}),
	}, nil
}

// workerEnv builds the environment passed to a spawned worker: WORKER_ID,
// WORKER_OPTIONS (the column's options map, JSON-encoded), and INSTANCE_DIR.
// Unmarshalable options silently yield "{}" rather than failing the spawn,
// so a broken options blob degrades to no options instead of blocking
// startup.
func workerEnv(spec WorkerSpec, workDir string) []string {
	opts, err := json.Marshal(spec.Options)
	if err != nil {
		opts = []byte("{}")
	}
	return []string{
		"WORKER_ID=" + spec.ID,
		"WORKER_OPTIONS=" + string(opts),
		"INSTANCE_DIR=" + workDir,
	}
}

// send encodes and writes one frame to the worker's stdin, flushing by
// virtue of an unbuffered pipe write.
func (w *workerProcess) send(msgType ipc.MessageType, flags uint8, payload []byte) error {
	w.writeMu.Lock()
	defer w.writeMu.Unlock()
	w.seq++
	_, err := w.in.Write(ipc.Encode(msgType, flags, w.seq, payload))
	return err
}

func (w *workerProcess) markReady() {
	w.readyOnce.Do(func() { close(w.readyCh) })
}

// readLoop feeds bytes from the worker's stdout into its FrameReader and
// invokes dispatch for each completed frame, until stdout closes.
func (w *workerProcess) readLoop(dispatch func(ipc.Frame)) error {
	buf := make([]byte, 4096)
	for {
		n, err := w.out.Read(buf)
		if n > 0 {
			w.reader.Append(buf[:n])
			for _, frame := range w.reader.ReadAll() {
				dispatch(frame)
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

func (w *workerProcess) kill() {
	if w.cmd.Process != nil {
		_ = w.cmd.Process.Kill()
	}
}

func (w *workerProcess) wait() error {
	return w.cmd.Wait()
}
