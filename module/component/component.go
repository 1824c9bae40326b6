// Package component runs the long-lived workers of the relay, such as the round loop and the
// metrics server, under one lifecycle. A component is ready once every worker reported ready. It
// shuts down when the context passed to Start is cancelled, and fails as a whole as soon as any
// worker throws an irrecoverable error.
package component

import (
	"context"
	"sync"

	"go.uber.org/atomic"

	"github.com/noislabs/drand-relay/module"
	"github.com/noislabs/drand-relay/module/irrecoverable"
	"github.com/noislabs/drand-relay/module/util"
)

// Component can be started once and reports its startup and shutdown through Ready and Done.
// After Start, Done must eventually close, after a graceful shutdown as well as after an
// irrecoverable error.
type Component interface {
	module.Startable
	module.ReadyDoneAware
}

// ReadyFunc reports that a worker completed its startup. Only the first call has an effect.
type ReadyFunc func()

// ComponentWorker is a long-running routine of a component. It must return once ctx is
// cancelled and reports irrecoverable errors through ctx.Throw.
type ComponentWorker func(ctx irrecoverable.SignalerContext, ready ReadyFunc)

// ComponentManagerBuilder collects the workers of a component.
type ComponentManagerBuilder interface {
	// AddWorker registers a worker. Workers run concurrently once the component is started.
	AddWorker(ComponentWorker) ComponentManagerBuilder

	// Build returns a ComponentManager running the registered workers.
	Build() *ComponentManager
}

type builder struct {
	workers []ComponentWorker
}

func NewComponentManagerBuilder() ComponentManagerBuilder {
	return &builder{}
}

// AddWorker is not safe for concurrent use.
func (b *builder) AddWorker(worker ComponentWorker) ComponentManagerBuilder {
	b.workers = append(b.workers, worker)
	return b
}

func (b *builder) Build() *ComponentManager {
	return &ComponentManager{
		started:  atomic.NewBool(false),
		workers:  b.workers,
		ready:    make(chan struct{}),
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

var _ Component = (*ComponentManager)(nil)

// ComponentManager implements Component on top of a set of workers. Types embed it and register
// their routines through a ComponentManagerBuilder.
type ComponentManager struct {
	started *atomic.Bool
	workers []ComponentWorker

	ready    chan struct{}
	shutdown chan struct{}
	done     chan struct{}
}

// Start launches all workers. Errors thrown by a worker cancel the remaining workers and are
// forwarded to parent. Start panics if called more than once.
func (c *ComponentManager) Start(parent irrecoverable.SignalerContext) {
	if !c.started.CompareAndSwap(false, true) {
		panic(module.ErrMultipleStartup)
	}

	ctx, cancel := context.WithCancel(parent)
	workerCtx, errChan := irrecoverable.WithSignaler(ctx)

	var starting, running sync.WaitGroup
	starting.Add(len(c.workers))
	running.Add(len(c.workers))
	for _, worker := range c.workers {
		go c.run(workerCtx, worker, &starting, &running)
	}

	stopped := make(chan struct{})
	go func() {
		starting.Wait()
		close(c.ready)
	}()
	go func() {
		running.Wait()
		close(stopped)
	}()
	go func() {
		<-ctx.Done()
		close(c.shutdown)
	}()

	go c.supervise(parent, cancel, errChan, stopped)
}

func (c *ComponentManager) run(ctx irrecoverable.SignalerContext, worker ComponentWorker, starting, running *sync.WaitGroup) {
	defer running.Done()
	var once sync.Once
	worker(ctx, func() {
		once.Do(starting.Done)
	})
}

// supervise waits for all workers to return or one of them to throw. Done is closed only after
// a thrown error was handed to parent and every worker returned.
func (c *ComponentManager) supervise(parent irrecoverable.SignalerContext, cancel context.CancelFunc, errChan <-chan error, stopped <-chan struct{}) {
	defer func() {
		<-stopped
		close(c.done)
	}()

	err := util.WaitError(errChan, stopped)
	cancel()
	if err != nil {
		parent.Throw(err)
	}
}

// Ready returns a channel closed once every worker called its ReadyFunc. It never closes if a
// worker returns without doing so.
func (c *ComponentManager) Ready() <-chan struct{} {
	return c.ready
}

// Done returns a channel closed once every worker returned.
func (c *ComponentManager) Done() <-chan struct{} {
	return c.done
}

// ShutdownSignal returns a channel closed when shutdown began, because the context was cancelled
// or a worker threw an error.
func (c *ComponentManager) ShutdownSignal() <-chan struct{} {
	return c.shutdown
}
