package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/noislabs/drand-relay/module/component"
	"github.com/noislabs/drand-relay/module/irrecoverable"
)

// shutdownTimeout bounds the graceful shutdown after a signal.
const shutdownTimeout = 30 * time.Second

// relayNode runs the relay components and propagates their irrecoverable errors.
type relayNode struct {
	*component.ComponentManager
	log zerolog.Logger
}

func newRelayNode(log zerolog.Logger, components ...component.Component) *relayNode {
	builder := component.NewComponentManagerBuilder()
	for _, c := range components {
		c := c
		builder.AddWorker(func(ctx irrecoverable.SignalerContext, ready component.ReadyFunc) {
			c.Start(ctx)
			select {
			case <-c.Ready():
				ready()
			case <-ctx.Done():
			}
			<-c.Done()
		})
	}
	return &relayNode{
		ComponentManager: builder.Build(),
		log:              log,
	}
}

// Run starts all components and blocks until ctx is cancelled, SIGINT or SIGTERM is received,
// or a component fails. Only irrecoverable errors are returned.
func (n *relayNode) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	signalerCtx, errChan := irrecoverable.WithSignaler(ctx)
	n.Start(signalerCtx)

	go func() {
		select {
		case <-n.Ready():
			n.log.Info().Msg("relay startup complete")
		case <-ctx.Done():
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("unhandled irrecoverable error: %w", err)
	case <-ctx.Done():
	}

	n.log.Info().Msg("relay shutting down")
	cancel()

	select {
	case err := <-errChan:
		return fmt.Errorf("unhandled irrecoverable error during shutdown: %w", err)
	case <-n.Done():
	case <-time.After(shutdownTimeout):
		return fmt.Errorf("relay did not shut down within %s", shutdownTimeout)
	}

	n.log.Info().Msg("relay shutdown complete")
	return nil
}
