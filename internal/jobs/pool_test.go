package jobs

import (
	"sync/atomic"
	"testing"
)

func TestSingleJobRuns(t *testing.T) {
	pool := NewPool(4)
	var ran atomic.Bool
	err := pool.Execute(SingleParams(), func(ctx *Context, start, end int) {
		ran.Store(true)
	})
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if !ran.Load() {
		t.Fatal("expected job body to run")
	}
}

func TestForeachVisitsEveryIndex(t *testing.T) {
	pool := NewPool(4)
	const n = 257
	var seen [n]atomic.Bool

	err := pool.Execute(ForeachParams(n, 8), func(ctx *Context, start, end int) {
		seen[start].Store(true)
	})
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	for i := 0; i < n; i++ {
		if !seen[i].Load() {
			t.Fatalf("index %d was never visited", i)
		}
	}
}

func TestForeachBatchedCoversWholeRange(t *testing.T) {
	pool := NewPool(4)
	const n = 100
	var covered [n]atomic.Bool

	err := pool.Execute(ForeachBatchedParams(n, 13), func(ctx *Context, start, end int) {
		for i := start; i < end; i++ {
			covered[i].Store(true)
		}
	})
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	for i := 0; i < n; i++ {
		if !covered[i].Load() {
			t.Fatalf("index %d was never covered", i)
		}
	}
}

func TestNestedScheduleAwaitedBeforeParentCompletes(t *testing.T) {
	pool := NewPool(4)
	var childRan atomic.Bool

	err := pool.Execute(SingleParams(), func(ctx *Context, start, end int) {
		h := ctx.Schedule(func(ctx *Context, start, end int) {
			childRan.Store(true)
		})
		ctx.Await(h)
		if !childRan.Load() {
			t.Error("child should have run before Await returned")
		}
	})
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if !childRan.Load() {
		t.Fatal("expected nested child job to run")
	}
}

func TestPanicInJobIsReportedNotSwallowed(t *testing.T) {
	pool := NewPool(2)
	err := pool.Execute(SingleParams(), func(ctx *Context, start, end int) {
		panic("boom")
	})
	if err == nil {
		t.Fatal("expected Execute to report the panic as an error")
	}
}

func TestSequentialExecutesAreIndependent(t *testing.T) {
	pool := NewPool(4)
	var total atomic.Int64

	for i := 0; i < 5; i++ {
		err := pool.Execute(ForeachParams(20, 4), func(ctx *Context, start, end int) {
			total.Add(1)
		})
		if err != nil {
			t.Fatalf("Execute returned error: %v", err)
		}
	}
	if got := total.Load(); got != 100 {
		t.Fatalf("expected 100 total job invocations across 5 Executes, got %d", got)
	}
}
