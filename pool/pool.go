// Package pool implements the bounded, dynamically replenished worker pool
// used by processors that split their work into independent chunks.
//
// A handler is spawned per chunk and never reused. The pool polls the live
// handler set on a fixed interval; every terminated handler is removed and,
// while chunks remain queued, immediately replaced, so at most K handlers are
// live whenever work remains. Chunk completion order is not guaranteed.
package pool

import (
	"time"

	"go.uber.org/zap"

	"github.com/Fabian-RY/rsat-code/logger"
)

// Handler processes one chunk. Chunk-level failures are recorded by the
// handler itself through its shared result accumulator; the pool only
// observes termination.
type Handler func(chunk interface{})

// ProgressFunc receives (chunksCompleted, chunksTotal) after every detected
// handler termination.
type ProgressFunc func(completed, total int)

// Pool drains a queue of independent chunks with at most Limit concurrent
// handlers.
type Pool struct {
	limit      int
	checkDelay time.Duration
	log        *zap.SugaredLogger
	onProgress ProgressFunc
}

// New creates a pool with the given concurrency limit and liveness poll
// interval. A limit below 1 is treated as 1.
func New(limit int, checkDelay time.Duration, log *zap.SugaredLogger) *Pool {
	if limit < 1 {
		limit = 1
	}
	if log == nil {
		log = logger.Logger
	}
	return &Pool{
		limit:      limit,
		checkDelay: checkDelay,
		log:        log,
	}
}

// OnProgress registers a progress callback. Must be called before Run.
func (p *Pool) OnProgress(fn ProgressFunc) {
	p.onProgress = fn
}

// handle tracks one spawned chunk handler. The done channel is closed when
// the handler terminates, normally or by panic.
type handle struct {
	done chan struct{}
}

func (h *handle) terminated() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

// Run processes every chunk exactly once and returns when the chunk queue is
// empty and all in-flight handlers have finished.
func (p *Pool) Run(chunks []interface{}, handler Handler) {
	total := len(chunks)
	if total == 0 {
		return
	}
	warnOnMemoryPressure(p.log, p.limit)

	queue := make([]interface{}, len(chunks))
	copy(queue, chunks)

	var live []*handle
	completed := 0

	spawn := func() {
		chunk := queue[0]
		queue = queue[1:]
		h := &handle{done: make(chan struct{})}
		live = append(live, h)
		go p.runHandler(h, handler, chunk)
	}

	for len(queue) > 0 && len(live) < p.limit {
		spawn()
	}
	p.log.Debugw("Worker pool started", "chunks", total, "limit", p.limit)

	for len(queue) > 0 || len(live) > 0 {
		time.Sleep(p.checkDelay)

		remaining := live[:0]
		for _, h := range live {
			if !h.terminated() {
				remaining = append(remaining, h)
				continue
			}
			completed++
			if p.onProgress != nil {
				p.onProgress(completed, total)
			}
		}
		live = remaining

		for len(queue) > 0 && len(live) < p.limit {
			spawn()
			p.log.Debugw("Spawned replacement chunk handler",
				"live", len(live), "queued", len(queue))
		}
	}

	p.log.Debugw("Worker pool drained", "chunks", total)
}

// runHandler executes one chunk and always closes the handle, even when the
// handler panics. A panicked chunk counts as consumed.
func (p *Pool) runHandler(h *handle, handler Handler, chunk interface{}) {
	defer close(h.done)
	defer func() {
		if r := recover(); r != nil {
			p.log.Errorw("Chunk handler crashed", "panic", r)
		}
	}()
	handler(chunk)
}
