package jobs

import (
	"testing"

	"go.uber.org/goleak"
)

// TestMain ensures the work-stealing pool never leaks a background worker
// goroutine past Execute's return, since Execute is called once per
// compiler phase and goroutines leaking across phases would eventually
// exhaust the pool's own worker budget.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
