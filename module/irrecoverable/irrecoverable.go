// Package irrecoverable carries errors that a worker cannot handle, such as losing track of the
// account sequence, out of the worker's goroutine to whoever started it.
package irrecoverable

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"go.uber.org/atomic"
)

// SignalerContext is a context.Context that workers also use to throw irrecoverable errors.
// It can only be created through WithSignaler.
type SignalerContext interface {
	context.Context
	Throw(err error)
	sealed()
}

type signaler struct {
	errChan chan error
	thrown  *atomic.Bool
}

// Throw delivers err to the error channel and terminates the calling goroutine. Only the first
// error is delivered, later ones are printed to stderr.
func (s *signaler) Throw(err error) {
	defer runtime.Goexit()
	if !s.thrown.CompareAndSwap(false, true) {
		fmt.Fprintf(os.Stderr, "unhandled irrecoverable error after the first: %v\n", err)
		return
	}
	s.errChan <- err
	close(s.errChan)
}

type signalerCtx struct {
	context.Context
	*signaler
}

func (signalerCtx) sealed() {}

// WithSignaler derives a SignalerContext from parent. The returned channel receives the first
// error thrown through the context.
func WithSignaler(parent context.Context) (SignalerContext, <-chan error) {
	errChan := make(chan error, 1)
	s := &signaler{
		errChan: errChan,
		thrown:  atomic.NewBool(false),
	}
	return signalerCtx{Context: parent, signaler: s}, errChan
}
