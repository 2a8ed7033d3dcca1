package jobs

import (
	"fmt"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Pool is a fixed work-stealing worker pool plus one primary worker that
// runs on the goroutine calling Execute, matching §4.B's "N worker
// goroutines ... plus a primary worker that runs on the submitter."
type Pool struct {
	workers []*worker

	mu     sync.Mutex
	panics []any
}

// NumWorkers caps the pool at min(configured, GOMAXPROCS-1, 32), matching
// the original's N = min(configured, hardware_parallelism-1, 32). The last
// entry in the returned pool's worker list is always the primary.
func NumWorkers(configured int) int {
	n := configured
	if gm := runtime.GOMAXPROCS(0) - 1; gm < n || n <= 0 {
		n = gm
	}
	if n > 32 {
		n = 32
	}
	if n < 1 {
		n = 1
	}
	return n
}

// NewPool creates a pool with numWorkers background workers plus one
// primary worker (numWorkers+1 total entries in workers, so stealing
// round-robin naturally includes the primary as a victim/thief too).
func NewPool(numWorkers int) *Pool {
	if numWorkers < 1 {
		numWorkers = 1
	}
	p := &Pool{}
	p.workers = make([]*worker, numWorkers+1)
	for i := range p.workers {
		p.workers[i] = newWorker(i, p)
	}
	return p
}

func (p *Pool) primary() *worker { return p.workers[len(p.workers)-1] }

func (p *Pool) reportPanic(r any) {
	p.mu.Lock()
	p.panics = append(p.panics, r)
	p.mu.Unlock()
}

// Execute is the pipeline's phase-boundary primitive: submit body under
// params to the primary, wake every background worker to help drain the
// resulting job(s), await completion, then reset every worker's scratch
// state. Phase boundaries are a global happens-before (§5): every write
// performed by a job in this Execute call is visible to the next Execute
// call on any worker.
func (p *Pool) Execute(params ParallelParams, body Body) error {
	h := p.submit(p.primary(), params, body)

	var group errgroup.Group
	for _, w := range p.workers[:len(p.workers)-1] {
		w := w
		group.Go(func() error {
			w.runLoop(func() bool { return h.Done() })
			return nil
		})
	}

	// The primary drives the pipeline from the caller's own goroutine.
	p.primary().runLoop(func() bool { return h.Done() })
	_ = group.Wait() // workers' runLoop never returns an error itself

	for _, w := range p.workers {
		w.reset()
	}

	p.mu.Lock()
	panics := p.panics
	p.panics = nil
	p.mu.Unlock()
	if len(panics) > 0 {
		return fmt.Errorf("jobs: %d worker panic(s), first: %v", len(panics), panics[0])
	}
	return nil
}

// submit implements §4.B's submission rules: Single enqueues one job;
// Foreach/ForeachBatched split ItemCount into ceil(ItemCount/BatchSize)
// range jobs owned by a container whose Handle awaits them all.
func (p *Pool) submit(w *worker, params ParallelParams, body Body) Handle {
	if params.Type == Single {
		j := &job{kind: Single, start: 0, end: 1, body: body}
		w.enqueue(j)
		return Handle{j: j}
	}

	batches := calculateBatches(params.ItemCount, params.BatchSize)
	container := &containerJob{children: make([]*job, 0, batches)}
	for b := 0; b < batches; b++ {
		start := b * params.BatchSize
		end := start + params.BatchSize
		if end > params.ItemCount {
			end = params.ItemCount
		}
		var cj *job
		if params.Type == ForeachBatched {
			cj = &job{kind: ForeachBatched, start: start, end: end, body: body}
		} else {
			// Foreach calls body once per index; wrap so the container
			// still only tracks one job per batch.
			s, e := start, end
			cj = &job{kind: Foreach, start: s, end: e, body: func(ctx *Context, _, _ int) {
				for i := s; i < e; i++ {
					body(ctx, i, i+1)
				}
			}}
		}
		w.enqueue(cj)
		container.children = append(container.children, cj)
	}
	return Handle{container: container}
}
