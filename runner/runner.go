// Package runner implements the pipeline orchestrator of spec.md §4.7: it
// loads persisted state, spawns a tap and a target, wires the tap's stdout
// to both the target's stdin and a record counter, wires the target's
// stdout to the state store, multiplexes both stderr streams to a logger,
// and resolves the termination state machine described there.
//
// Grounded on original_source/elx/runner.py's Runner.run shape (load state,
// spawn tap, spawn target, drain, save state) and on the teacher's own use
// of golang.org/x/sync/errgroup for supervised goroutine fan-out, generalized
// from the teacher's narrower use to the canonical "N workers, first error
// wins" pattern this orchestration needs.
package runner

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	elxerrors "github.com/harness/elx/internal/errors"
	"github.com/harness/elx/internal/lineio"
	"github.com/harness/elx/internal/logger"
	"github.com/harness/elx/internal/procutil"
	"github.com/harness/elx/internal/redact"
	"github.com/harness/elx/internal/safego"
	"github.com/harness/elx/recordcounter"
	"github.com/harness/elx/state"
	"github.com/harness/elx/tap"
	"github.com/harness/elx/target"
)

// Runner is the orchestrator of spec.md §4.7.
type Runner struct {
	Tap     *tap.Tap
	Target  *target.Target
	Store   *state.Store
	Secrets []string
	Log     *logrus.Entry

	counter *recordcounter.RecordCounter
	values  map[string]string
}

// New constructs a Runner. secrets are masked out of both children's stderr
// before logging (internal/redact); log defaults to the package logger.
func New(t *tap.Tap, tg *target.Target, store *state.Store, secrets []string, log *logrus.Entry) *Runner {
	if log == nil {
		log = logger.L
	}
	return &Runner{
		Tap:     t,
		Target:  tg,
		Store:   store,
		Secrets: secrets,
		Log:     log,
		counter: recordcounter.New(),
		values:  interpolationValues(t.Executable(), tg.Executable()),
	}
}

// interpolationValues builds the template map Tap/Target configs can
// reference (spec.md §4.7 "Interpolation values").
func interpolationValues(tapExecutable, targetExecutable string) map[string]string {
	now := time.Now().UTC()
	return map[string]string{
		"NOW":               now.Format(time.RFC3339),
		"YESTERDAY":         now.AddDate(0, 0, -1).Format(time.RFC3339),
		"LAST_WEEK":         now.AddDate(0, 0, -7).Format(time.RFC3339),
		"TAP_EXECUTABLE":    tapExecutable,
		"TARGET_EXECUTABLE": targetExecutable,
		"TAP_NAME":          safeName(tapExecutable),
		"TARGET_NAME":       safeName(targetExecutable),
	}
}

func safeName(s string) string {
	return strings.ReplaceAll(s, "-", "_")
}

// StateFileName is "{tap.executable}-{target.executable}.json" (spec.md
// §4.7), stable across runs of the same tap/target pair.
func (r *Runner) StateFileName() string {
	return fmt.Sprintf("%s-%s.json", r.Tap.Executable(), r.Target.Executable())
}

// RecordCounts returns the per-stream tally observed on the tap's stdout.
// Only meaningful once Run has returned.
func (r *Runner) RecordCounts() map[string]int {
	return r.counter.Counts()
}

// Run performs one end-to-end extract-load (spec.md §4.7). It blocks until
// both children have exited and every capture task has drained.
func (r *Runner) Run(ctx context.Context, streams []string) error {
	name := r.StateFileName()

	loaded, err := r.Store.Load(ctx, name)
	if err != nil {
		return err
	}

	tapProc, err := r.Tap.Process(ctx, r.values, loaded, streams)
	if err != nil {
		return err
	}
	defer tapProc.Close()

	targetStdinR, targetStdinW := io.Pipe()
	targetProc, err := r.Target.Process(ctx, r.values, targetStdinR)
	if err != nil {
		return err
	}
	defer targetProc.Close()

	tapStdoutR, tapStdoutW := io.Pipe()
	tapStderrR, tapStderrW := io.Pipe()
	targetStdoutR, targetStdoutW := io.Pipe()
	targetStderrR, targetStderrW := io.Pipe()

	tapProc.Cmd.Stdout = tapStdoutW
	tapProc.Cmd.Stderr = tapStderrW
	targetProc.Cmd.Stdout = targetStdoutW
	targetProc.Cmd.Stderr = targetStderrW

	if err := tapProc.Cmd.Start(); err != nil {
		return err
	}
	if err := targetProc.Cmd.Start(); err != nil {
		_ = killIfRunning(tapProc.Cmd)
		<-waitAsync(tapProc.Cmd)
		return err
	}

	eg, _ := errgroup.WithContext(ctx)

	// tap stdout -> target stdin (with backpressure from the unbuffered
	// pipe) and the record counter.
	eg.Go(func() error {
		return safego.Run("tap-stdout", func() error {
			forwardErr := lineio.ForEach(tapStdoutR, func(line []byte) error {
				r.counter.WriteLine(line)
				buf := make([]byte, 0, len(line)+1)
				buf = append(buf, line...)
				buf = append(buf, '\n')
				if _, werr := targetStdinW.Write(buf); werr != nil {
					return &elxerrors.IoError{Op: "forward tap record to target", Err: werr}
				}
				return nil
			})
			targetStdinW.CloseWithError(forwardErr) //nolint:errcheck
			return forwardErr
		})
	})

	eg.Go(func() error {
		return safego.Run("tap-stderr", func() error {
			return lineio.ForEach(tapStderrR, func(line []byte) error {
				r.logStderr("tap", line)
				return nil
			})
		})
	})

	eg.Go(func() error {
		return safego.Run("target-stdout", func() error {
			return lineio.ForEach(targetStdoutR, func(line []byte) error {
				var parsed map[string]interface{}
				if jsonErr := json.Unmarshal(line, &parsed); jsonErr != nil {
					return &elxerrors.DecodeError{Executable: r.Target.Executable(), Err: jsonErr}
				}
				return r.Store.Save(ctx, name, parsed)
			})
		})
	})

	eg.Go(func() error {
		return safego.Run("target-stderr", func() error {
			return lineio.ForEach(targetStderrR, func(line []byte) error {
				r.logStderr("target", line)
				return nil
			})
		})
	})

	tapWaitCh := waitThenClose(tapProc.Cmd, tapStdoutW, tapStderrW)
	targetWaitCh := waitThenClose(targetProc.Cmd, targetStdoutW, targetStderrW)
	captureCh := make(chan error, 1)
	go func() { captureCh <- eg.Wait() }()

	var tapErr, targetErr error
	var tapDone, targetDone bool

	select {
	case tapErr = <-tapWaitCh:
		tapDone = true
	case targetErr = <-targetWaitCh:
		targetDone = true
	case capErr := <-captureCh:
		// CAPTURE_FAILED: abandon both children and surface the first
		// capture-task error (or, if it was nil — a benign close during
		// teardown — the aggregated kill error, if any).
		var kill *multierror.Error
		kill = multierror.Append(kill, killIfRunning(tapProc.Cmd))
		kill = multierror.Append(kill, killIfRunning(targetProc.Cmd))
		<-tapWaitCh
		<-targetWaitCh
		if capErr != nil {
			return capErr
		}
		return kill.ErrorOrNil()
	}

	switch {
	case targetDone && !tapDone:
		// TARGET_EXITED_FIRST: no consumer remains for the tap; kill it and
		// force its exit code to success since it did not itself fail.
		_ = killIfRunning(tapProc.Cmd)
		<-tapWaitCh
		tapErr = nil
	case tapDone && !targetDone:
		// TAP_EXITED_FIRST: close the target's stdin so it can drain and
		// exit on its own.
		targetStdinW.Close() //nolint:errcheck
		targetErr = <-targetWaitCh
	}

	<-captureCh

	return classifyExit(tapErr, targetErr)
}

func (r *Runner) logStderr(source string, line []byte) {
	masked := redact.MaskString(string(line), r.Secrets)
	r.Log.WithField("source", source).Infoln(masked)
}

// waitThenClose waits on cmd and closes the pipe writers feeding its capture
// tasks once it exits, whatever the outcome, so ForEach loops reading from
// the paired ends observe EOF.
func waitThenClose(cmd *exec.Cmd, writers ...*io.PipeWriter) <-chan error {
	ch := make(chan error, 1)
	go func() {
		err := cmd.Wait()
		for _, w := range writers {
			w.CloseWithError(err) //nolint:errcheck
		}
		ch <- err
	}()
	return ch
}

func waitAsync(cmd *exec.Cmd) <-chan error {
	ch := make(chan error, 1)
	go func() { ch <- cmd.Wait() }()
	return ch
}

// killIfRunning terminates cmd's process with a grace period if it hasn't
// already exited (internal/procutil).
func killIfRunning(cmd *exec.Cmd) error {
	if cmd.Process == nil || cmd.ProcessState != nil {
		return nil
	}
	return procutil.KillWithGrace(cmd.Process, procutil.DefaultGracePeriod)
}

// classifyExit turns the tap/target Wait errors into the exit-code-derived
// outcome of spec.md §4.7 step 6.
func classifyExit(tapErr, targetErr error) error {
	if tapErr == nil && targetErr == nil {
		return nil
	}
	return &elxerrors.PipelineError{TapFailed: tapErr != nil, TargetFailed: targetErr != nil}
}
