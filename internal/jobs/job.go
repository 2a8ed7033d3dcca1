// Package jobs implements the work-stealing scheduler every analysis phase
// runs on: a fixed pool of workers plus a primary worker that drives the
// pipeline, batched parallel-for submission, cooperative stealing, and job
// nesting (a running job may schedule and await children).
//
// Grounded on original_source/Src/JobSystem/{Job.cpp,Job.h,JobSystem.h,
// Worker.h} for the algorithm, and on the teacher's
// internal/indexing/pipeline_processor.go channel-worker-loop shape and
// internal/indexing/concurrent_operations.go start/stop-goroutine pattern
// for the Go idiom (explicit per-worker queues instead of channels, because
// stealing from a specific victim's queue cannot be expressed cheaply over
// channels).
package jobs

import "sync/atomic"

// Type tags a Job's submission shape, mirroring the original's JobType.
type Type uint8

const (
	Single Type = iota
	Foreach
	ForeachBatched
)

// ParallelParams configures a batched parallel-for submission.
type ParallelParams struct {
	Type      Type
	ItemCount int
	BatchSize int
}

// SingleParams returns the params for a one-shot job.
func SingleParams() ParallelParams { return ParallelParams{Type: Single, ItemCount: 1, BatchSize: 1} }

// ForeachParams splits itemCount into ceil(itemCount/batchSize) range jobs,
// each of which receives the job body once per item ([]start,start+1)).
func ForeachParams(itemCount, batchSize int) ParallelParams {
	return ParallelParams{Type: Foreach, ItemCount: itemCount, BatchSize: batchSize}
}

// ForeachBatchedParams splits itemCount the same way but the body is called
// once per batch with the whole [start,end) range, so the job itself
// iterates internally.
func ForeachBatchedParams(itemCount, batchSize int) ParallelParams {
	return ParallelParams{Type: ForeachBatched, ItemCount: itemCount, BatchSize: batchSize}
}

// State is a Job's lifecycle stage; transitions only move forward.
type State int32

const (
	StateInvalid State = iota
	StateScheduled
	StateRunning
	StateCompleted
)

// Body is user job code. For Foreach it is called once per index with
// start==end-1; for ForeachBatched it is called once per batch with the
// full [start,end) range; for Single it is called once with [0,1).
type Body func(ctx *Context, start, end int)

// job is one scheduled unit of work.
type job struct {
	kind     Type
	start, end int
	body     Body
	state    atomic.Int32 // State

	// owner is the worker this job is queued on / currently executing on.
	owner *worker
}

func (j *job) State() State { return State(j.state.Load()) }
func (j *job) setState(s State) { j.state.Store(int32(s)) }

// Handle is an opaque awaitable returned by Schedule/Execute. Its zero value
// is not a valid handle; only values returned by this package are usable.
type Handle struct {
	j         *job
	container *containerJob // non-nil for a batched parallel-for submission
}

// Done reports whether the job (and, for a container, every child) has
// reached StateCompleted.
func (h Handle) Done() bool {
	if h.container != nil {
		return h.container.done()
	}
	return h.j.State() == StateCompleted
}

// containerJob owns the child range-jobs produced by a batched
// parallel-for submission; awaiting the container awaits all children.
type containerJob struct {
	children []*job
}

func (c *containerJob) done() bool {
	for _, child := range c.children {
		if child.State() != StateCompleted {
			return false
		}
	}
	return true
}

func calculateBatches(itemCount, batchSize int) int {
	if batchSize <= 0 {
		batchSize = 1
	}
	return (itemCount + batchSize - 1) / batchSize
}
