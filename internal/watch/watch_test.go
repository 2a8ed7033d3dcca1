package watch

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestWatcher_DebouncesBurstIntoOneCallback(t *testing.T) {
	dir := t.TempDir()

	var calls atomic.Int32
	w, err := New([]string{dir}, 30*time.Millisecond, func() { calls.Add(1) })
	require.NoError(t, err)
	w.Start()
	defer w.Stop()

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "a.ax"), []byte("x"), 0644))
		time.Sleep(5 * time.Millisecond)
	}

	assert.Eventually(t, func() bool { return calls.Load() >= 1 }, time.Second, 10*time.Millisecond)
	assert.LessOrEqual(t, calls.Load(), int32(2))
}

func TestWatcher_StopEndsRunLoop(t *testing.T) {
	dir := t.TempDir()
	w, err := New([]string{dir}, DefaultDebounce, func() {})
	require.NoError(t, err)
	w.Start()
	w.Stop() // must return without leaking the run goroutine (verified by TestMain's goleak)
}
