package router

import (
	"context"
	"sync"
)

// readerLoopGroup tracks the goroutine running each worker's stdout reader
// loop so Shutdown can wait for all of them to finish before removing the
// session's working directory.
//
// This is a trimmed-down sibling of the teacher's generic, multi-strategy
// task supervisor: the router only ever needs one-for-one bookkeeping of a
// reader loop that runs exactly once per worker and is never restarted (a
// dead worker's exit is surfaced to the caller via Hooks.OnWorkerExit, not
// retried here), so there is no backoff, no restart policy, and no
// one-for-all sibling coordination to carry.
type readerLoopGroup struct {
	mu    sync.Mutex
	tasks map[string]*readerLoopTask
}

type readerLoopTask struct {
	cancel context.CancelFunc
	done   chan struct{}
}

func newReaderLoopGroup() *readerLoopGroup {
	return &readerLoopGroup{tasks: make(map[string]*readerLoopTask)}
}

// start runs fn in its own goroutine under a cancellable context, tracked
// under name so stopAll can wait for it.
func (g *readerLoopGroup) start(name string, fn func(ctx context.Context) error) {
	ctx, cancel := context.WithCancel(context.Background())
	task := &readerLoopTask{cancel: cancel, done: make(chan struct{})}

	g.mu.Lock()
	g.tasks[name] = task
	g.mu.Unlock()

	go func() {
		_ = fn(ctx)
		close(task.done)
	}()
}

// stopAll cancels every tracked task's context and blocks until each has
// returned.
func (g *readerLoopGroup) stopAll() {
	g.mu.Lock()
	tasks := make([]*readerLoopTask, 0, len(g.tasks))
	for _, task := range g.tasks {
		tasks = append(tasks, task)
	}
	g.tasks = make(map[string]*readerLoopTask)
	g.mu.Unlock()

	for _, task := range tasks {
		task.cancel()
	}
	for _, task := range tasks {
		<-task.done
	}
}
