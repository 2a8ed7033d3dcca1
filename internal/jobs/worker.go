package jobs

import (
	"sync"
	"time"

	"github.com/EvolveGameTools/AlchemyCompiler-sub002/internal/alloc"
)

// pollAttemptsBeforeSleep is the number of empty poll rounds a non-primary
// worker tolerates before backing off; the primary never sleeps (§4.B).
const pollAttemptsBeforeSleep = 10

const sleepBackoff = time.Millisecond

// worker owns one FIFO job queue, a temp scratch arena (reset via marker
// around every job body), and a per-worker ledger of children scheduled
// during the job currently running on it.
type worker struct {
	id    int
	pool  *Pool

	mu    sync.Mutex
	queue []*job

	temp *alloc.Arena

	// ledger is an append-only list of every job this worker has ever
	// scheduled; awaiting a job scans ledger[threshold:] to find children
	// spawned during that job's own body, per §9's "per-worker append-only
	// vector indexed by worker-local slot count captured on entry."
	ledger []*job
}

func newWorker(id int, pool *Pool) *worker {
	return &worker{id: id, pool: pool, temp: alloc.NewArena()}
}

// isPrimary matches the original's convention: the last worker in the list
// is the one driving Execute from the submitter's own call stack.
func (w *worker) isPrimary() bool { return w.id == len(w.pool.workers)-1 }

func (w *worker) enqueue(j *job) {
	j.owner = w
	j.setState(StateScheduled)
	w.mu.Lock()
	w.queue = append(w.queue, j)
	w.ledger = append(w.ledger, j)
	w.mu.Unlock()
}

// tryGetJob pops the oldest job from this worker's own queue.
func (w *worker) tryGetJob() *job {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.queue) == 0 {
		return nil
	}
	j := w.queue[0]
	w.queue = w.queue[1:]
	return j
}

// tryStealJob attempts a non-blocking pop from victim's queue. Using
// TryLock rather than Lock avoids head-of-line blocking a busy victim,
// matching the original's try_lock-based TryStealJob.
func (w *worker) tryStealJob(victim *worker) *job {
	if !victim.mu.TryLock() {
		return nil
	}
	defer victim.mu.Unlock()
	if len(victim.queue) == 0 {
		return nil
	}
	j := victim.queue[0]
	victim.queue = victim.queue[1:]
	return j
}

// stealAny tries every other worker in round-robin order starting at this
// worker's right neighbor, wrapping back to 0, matching §4.B exactly.
func (w *worker) stealAny() *job {
	n := len(w.pool.workers)
	for i := 1; i < n; i++ {
		victim := w.pool.workers[(w.id+i)%n]
		if victim == w {
			continue
		}
		if j := w.tryStealJob(victim); j != nil {
			return j
		}
	}
	return nil
}

// runLoop drives jobs until stop reports true, matching the original's
// JobLoop: poll own queue, then steal, then back off; never sleeps on the
// primary.
func (w *worker) runLoop(stop func() bool) {
	attempts := 0
	for !stop() {
		j := w.tryGetJob()
		if j == nil {
			j = w.stealAny()
		}
		if j == nil {
			attempts++
			if !w.isPrimary() && attempts >= pollAttemptsBeforeSleep {
				time.Sleep(sleepBackoff)
				attempts = 0
			}
			continue
		}
		attempts = 0
		w.runJob(j)
	}
}

// runJob executes one job body with marker/rollback around it (§4.A) and
// ledger-range tracking so Await can detect jobs spawned by j's own body
// (§4.B "await... nesting").
func (w *worker) runJob(j *job) {
	threshold := len(w.ledger)
	marker := w.temp.Mark()

	j.setState(StateRunning)
	func() {
		defer func() {
			if r := recover(); r != nil {
				w.pool.reportPanic(r)
			}
		}()
		ctx := &Context{worker: w, job: j}
		j.body(ctx, j.start, j.end)
		// A job is not done until everything it spawned during its own
		// body has also completed; drain those before marking Completed.
		w.drainLedgerRange(ctx, threshold)
	}()

	w.temp.Release(marker)
	j.setState(StateCompleted)
}

// drainLedgerRange runs the local loop until every job in
// ledger[threshold:] (i.e. everything scheduled during the current job's
// body) has reached StateCompleted, recursing into the scheduler's normal
// run loop so the worker keeps doing useful work while waiting.
func (w *worker) drainLedgerRange(ctx *Context, threshold int) {
	for {
		allDone := true
		for _, child := range w.ledger[threshold:] {
			if child.State() != StateCompleted {
				allDone = false
				break
			}
		}
		if allDone {
			return
		}
		w.runLoop(func() bool {
			for _, child := range w.ledger[threshold:] {
				if child.State() != StateCompleted {
					return false
				}
			}
			return true
		})
	}
}

// reset clears scratch state between Execute calls; asserts nothing is
// still in flight, matching the original Worker::Reset contract.
func (w *worker) reset() {
	w.mu.Lock()
	w.queue = nil
	w.ledger = nil
	w.mu.Unlock()
	w.temp.Reset()
}

// Context is the handle a running job body uses to schedule children,
// await handles, and allocate scratch memory — the Go equivalent of the
// original's IJob helper methods that call back into its owning Worker.
type Context struct {
	worker *worker
	job    *job
}

// WorkerID returns the index of the worker currently executing this job.
func (c *Context) WorkerID() int { return c.worker.id }

// WorkerCount returns the total number of workers in the pool, including
// the primary.
func (c *Context) WorkerCount() int { return len(c.worker.pool.workers) }

// TempAllocate carves n scratch bytes from this worker's temp arena; freed
// automatically when the current job body returns.
func (c *Context) TempAllocate(n int) []byte { return c.worker.temp.Alloc(n) }

// Schedule enqueues a single job on the calling worker's own queue and
// returns its Handle, matching the original's IJob::Schedule.
func (c *Context) Schedule(body Body) Handle {
	j := &job{kind: Single, start: 0, end: 1, body: body}
	c.worker.enqueue(j)
	return Handle{j: j}
}

// ScheduleParallel enqueues a nested batched parallel-for on the calling
// worker's own queue, for jobs that themselves fan out (code-gen's dynamic
// reachable-method discovery, §4.L).
func (c *Context) ScheduleParallel(params ParallelParams, body Body) Handle {
	return c.worker.pool.submit(c.worker, params, body)
}

// Await blocks (by running other jobs, including stealing) until h is
// done, matching the original's IJob::Await re-entering the run loop
// rather than a true blocking wait.
func (c *Context) Await(h Handle) {
	c.worker.runLoop(func() bool { return h.Done() })
}

// AwaitAll awaits every handle in hs.
func (c *Context) AwaitAll(hs ...Handle) {
	c.worker.runLoop(func() bool {
		for _, h := range hs {
			if !h.Done() {
				return false
			}
		}
		return true
	})
}
