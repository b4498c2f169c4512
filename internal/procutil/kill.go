// Package procutil terminates a child process with a grace period: it signals
// the process to exit cleanly, waits, and only escalates to a forceful kill
// if the deadline passes.
//
// Grounded on the teacher's engine/pids/pidfile.go killProcessWithGracePeriod,
// generalized from a PID-file-driven, multi-process teardown (the teacher
// used it to reap orphaned step processes recorded in a PID file) to a single
// *os.Process handed directly to the caller, which is what Runner needs when
// tearing down a tap or target that lost its counterpart.
package procutil

import (
	"os"
	"runtime"
	"syscall"
	"time"

	"github.com/harness/elx/internal/safego"
)

// DefaultGracePeriod is how long KillWithGrace waits for a clean exit before
// escalating to SIGKILL.
const DefaultGracePeriod = 5 * time.Second

// KillWithGrace signals process to exit cleanly (SIGTERM, or os.Interrupt on
// Windows) and waits up to grace for it to do so, sending SIGKILL if it
// hasn't. It returns nil once the process is confirmed gone.
func KillWithGrace(process *os.Process, grace time.Duration) error {
	signal := os.Interrupt
	if runtime.GOOS != "windows" {
		signal = syscall.SIGTERM
	}
	if err := process.Signal(signal); err != nil {
		return err
	}

	done := make(chan error, 1)
	safego.SafeGo("procutil-wait", func() {
		_, waitErr := process.Wait()
		done <- waitErr
	})

	select {
	case waitErr := <-done:
		return waitErr
	case <-time.After(grace):
		return process.Kill()
	}
}
