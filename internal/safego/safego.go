package safego

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/sirupsen/logrus"
)

// Run executes fn and converts a panic into an error instead of crashing the
// process. Intended for use as an errgroup.Group.Go argument, so a capture
// task panicking looks the same to the supervisor as one returning an error.
func Run(name string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logrus.WithField("task", name).WithField("panic", r).
				WithField("stack", string(debug.Stack())).
				Errorln("task panic recovered")
			err = fmt.Errorf("%s: panic: %v", name, r)
		}
	}()
	return fn()
}

func SafeGo(name string, fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				logrus.WithField("goroutine", name).WithField("panic", r).
					WithField("stack", string(debug.Stack())).
					Errorln("Goroutine panic recovered")
			}
		}()
		fn()
	}()
}

func SafeGoWithContext(name string, ctx context.Context, fn func(context.Context)) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				logrus.WithField("goroutine", name).WithField("panic", r).
					WithField("stack", string(debug.Stack())).
					Errorln("Goroutine panic recovered")
			}
		}()
		fn(ctx)
	}()
}

func SafeGoWithWaitGroup(name string, wg *sync.WaitGroup, fn func()) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer func() {
			if r := recover(); r != nil {
				logrus.WithField("goroutine", name).WithField("panic", r).
					WithField("stack", string(debug.Stack())).
					Errorln("Goroutine panic recovered")
			}
		}()
		fn()
	}()
}
