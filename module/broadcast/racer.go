// Package broadcast submits one signed transaction to several nodes at once.
//
// The same signed bytes settle at most once on chain, no matter how many nodes relay them,
// so racing them trades extra network writes for tolerance against slow or broken nodes.
package broadcast

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
	"go.uber.org/atomic"

	"github.com/noislabs/drand-relay/model/chain"
	"github.com/noislabs/drand-relay/module"
)

// Endpoint is one node the transaction is broadcast to.
type Endpoint struct {
	ID          string
	Broadcaster module.Broadcaster
}

// Config configures the racer.
type Config struct {
	// Timeout bounds every single broadcast, including waiting for inclusion.
	Timeout time.Duration
	// BreakerMaxFailures is the number of consecutive failures that open an endpoint's circuit.
	BreakerMaxFailures uint32
	// BreakerRestoreTimeout is how long an open circuit rejects calls before probing the endpoint again.
	BreakerRestoreTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		Timeout:               20 * time.Second,
		BreakerMaxFailures:    5,
		BreakerRestoreTimeout: time.Minute,
	}
}

type endpoint struct {
	Endpoint
	breaker   *gobreaker.CircuitBreaker
	successes *atomic.Uint64
	errors    *atomic.Uint64
}

// outcome is the result of one endpoint's broadcast.
type outcome struct {
	endpoint string
	result   *chain.SubmissionResult
	err      error
}

// Racer broadcasts a transaction to all endpoints concurrently and returns the first success.
type Racer struct {
	log       zerolog.Logger
	cfg       Config
	metrics   module.RelayMetrics
	endpoints []*endpoint

	races    *atomic.Uint64
	failures *atomic.Uint64
}

// New creates a racer over the given endpoints. The first endpoint is the primary one;
// at least one endpoint is required and endpoint IDs must be unique.
func New(log zerolog.Logger, endpoints []Endpoint, cfg Config, metrics module.RelayMetrics) (*Racer, error) {
	if len(endpoints) == 0 {
		return nil, fmt.Errorf("at least one broadcast endpoint is required")
	}
	if cfg.Timeout <= 0 {
		return nil, fmt.Errorf("broadcast timeout must be positive, got %s", cfg.Timeout)
	}

	log = log.With().Str("component", "broadcast_racer").Logger()
	seen := make(map[string]struct{}, len(endpoints))
	racer := &Racer{
		log:      log,
		cfg:      cfg,
		metrics:  metrics,
		races:    atomic.NewUint64(0),
		failures: atomic.NewUint64(0),
	}
	for _, e := range endpoints {
		if e.Broadcaster == nil {
			return nil, fmt.Errorf("endpoint %q has no broadcaster", e.ID)
		}
		if _, ok := seen[e.ID]; ok {
			return nil, fmt.Errorf("duplicate broadcast endpoint %q", e.ID)
		}
		seen[e.ID] = struct{}{}

		id := e.ID
		breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    id,
			Timeout: cfg.BreakerRestoreTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return cfg.BreakerMaxFailures > 0 && counts.ConsecutiveFailures >= cfg.BreakerMaxFailures
			},
			OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
				log.Warn().
					Str("endpoint", name).
					Str("from", from.String()).
					Str("to", to.String()).
					Msg("endpoint circuit breaker changed state")
			},
		})
		racer.endpoints = append(racer.endpoints, &endpoint{
			Endpoint:  e,
			breaker:   breaker,
			successes: atomic.NewUint64(0),
			errors:    atomic.NewUint64(0),
		})
	}
	return racer, nil
}

// Broadcast submits tx to all endpoints and returns the result of the first endpoint that got it
// included with a successful execution. Endpoints that lose the race are not cancelled; their
// outcomes are logged when they complete.
// Expected errors during normal operations:
//   - AllBroadcastsFailedError if no endpoint succeeded, carrying one EndpointError per endpoint
//   - context errors if ctx is cancelled before any endpoint succeeded
func (r *Racer) Broadcast(ctx context.Context, tx []byte) (*chain.SubmissionResult, error) {
	r.races.Inc()

	// buffered, so that endpoints finishing after the race was decided never block
	results := make(chan outcome, len(r.endpoints))
	for _, e := range r.endpoints {
		go r.submit(ctx, e, tx, results)
	}

	var errs *multierror.Error
	for range r.endpoints {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case o := <-results:
			if o.err == nil {
				return o.result, nil
			}
			errs = multierror.Append(errs, o.err)
		}
	}

	r.failures.Inc()
	return nil, NewAllBroadcastsFailedError(errs)
}

func (r *Racer) submit(ctx context.Context, e *endpoint, tx []byte, results chan<- outcome) {
	log := r.log.With().Str("endpoint", e.ID).Logger()
	start := time.Now()

	callCtx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	// Only failing to reach the node counts against its circuit. A node that answers with
	// a failed execution result is healthy.
	res, err := e.breaker.Execute(func() (interface{}, error) {
		return e.Broadcaster.BroadcastTx(callCtx, tx)
	})
	duration := time.Since(start)

	var result *chain.SubmissionResult
	if err == nil {
		result = res.(*chain.SubmissionResult)
		if result == nil {
			err = errors.New("endpoint returned no result")
		} else {
			err = result.Err()
		}
	}

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			log.Debug().Err(err).Msg("endpoint circuit open, skipping broadcast")
		} else {
			log.Warn().Err(err).Dur("duration", duration).Msg("broadcast failed")
		}
		e.errors.Inc()
		r.metrics.BroadcastAttempt(e.ID, false, duration)
		results <- outcome{endpoint: e.ID, err: NewEndpointError(e.ID, err)}
		return
	}

	result.Endpoint = e.ID
	e.successes.Inc()
	r.metrics.BroadcastAttempt(e.ID, true, duration)
	log.Info().
		Str("tx_hash", result.TxHash).
		Int64("height", result.Height).
		Dur("duration", duration).
		Msg("broadcast succeeded")
	results <- outcome{endpoint: e.ID, result: result}
}

// Stats is a snapshot of the racer's counters.
type Stats struct {
	// Races is the number of transactions broadcast.
	Races uint64 `json:"races"`
	// Failures is the number of races in which every endpoint failed.
	Failures uint64 `json:"failures"`
	// Successes counts per endpoint the successful broadcasts, whether or not they won the race.
	Successes map[string]uint64 `json:"successes"`
	// Errors counts per endpoint the failed broadcasts, including calls rejected by an open circuit.
	Errors map[string]uint64 `json:"errors"`
}

func (r *Racer) Stats() Stats {
	stats := Stats{
		Races:     r.races.Load(),
		Failures:  r.failures.Load(),
		Successes: make(map[string]uint64, len(r.endpoints)),
		Errors:    make(map[string]uint64, len(r.endpoints)),
	}
	for _, e := range r.endpoints {
		stats.Successes[e.ID] = e.successes.Load()
		stats.Errors[e.ID] = e.errors.Load()
	}
	return stats
}
