// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"runtime"
	"testing"
	"time"
)

// AssertNoGoroutineLeaks records the goroutine count and, at cleanup, waits
// briefly for it to drop back before failing the test. Do not combine it
// with t.Parallel.
func AssertNoGoroutineLeaks(t testing.TB) {
	t.Helper()

	before := runtime.NumGoroutine()

	t.Cleanup(func() {
		deadline := time.Now().Add(2 * time.Second)
		for {
			now := runtime.NumGoroutine()
			if now <= before {
				return
			}
			if time.Now().After(deadline) {
				t.Errorf("goroutines = %d after test, want at most %d", now, before)
				return
			}
			time.Sleep(10 * time.Millisecond)
		}
	})
}
