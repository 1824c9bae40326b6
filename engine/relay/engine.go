// Package relay implements the engine that takes beacon rounds from a beacon source and submits
// the rounds eligible for this bot's shard into the drand contract.
//
// Rounds are processed strictly sequentially by a single worker:
//
//	beacon -> shard gate -> build add_round -> sequence.Next -> sign -> race broadcast -> report
//
// A failed submission leaves the local account sequence in an unknown state, so it is re-read
// from the chain before the next round. Not being able to re-read it is irrecoverable.
package relay

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gammazero/workerpool"
	"github.com/rs/zerolog"
	"go.uber.org/atomic"

	"github.com/noislabs/drand-relay/model/beacon"
	"github.com/noislabs/drand-relay/model/chain"
	"github.com/noislabs/drand-relay/module"
	"github.com/noislabs/drand-relay/module/broadcast"
	"github.com/noislabs/drand-relay/module/component"
	"github.com/noislabs/drand-relay/module/irrecoverable"
	"github.com/noislabs/drand-relay/module/roundclock"
	"github.com/noislabs/drand-relay/module/sequence"
	"github.com/noislabs/drand-relay/module/shard"
)

// ErrBeaconClosed is thrown when the beacon source stops delivering rounds while the engine runs.
var ErrBeaconClosed = errors.New("beacon source closed unexpectedly")

// Racer submits a signed transaction through every broadcast endpoint and returns the first
// delivered result.
type Racer interface {
	Broadcast(ctx context.Context, tx []byte) (*chain.SubmissionResult, error)
	Stats() broadcast.Stats
}

// Engine relays beacon rounds into the drand contract.
type Engine struct {
	*component.ComponentManager

	log       zerolog.Logger
	cfg       Config
	fee       chain.Fee
	beacons   module.BeaconSource
	query     module.ChainQuery
	signer    module.TxSigner
	sequences *sequence.Cache
	racer     Racer
	clock     *roundclock.Clock
	shard     *shard.Assigner
	metrics   module.RelayMetrics

	balances       *workerpool.WorkerPool
	balancePending *atomic.Bool

	// lastRound is the highest round taken from the beacon source; older rounds are dropped.
	lastRound *atomic.Uint64
	submitted *atomic.Uint64
	skipped   *atomic.Uint64
	failed    *atomic.Uint64
}

var _ component.Component = (*Engine)(nil)

func New(
	log zerolog.Logger,
	cfg Config,
	beacons module.BeaconSource,
	query module.ChainQuery,
	signer module.TxSigner,
	sequences *sequence.Cache,
	racer Racer,
	clock *roundclock.Clock,
	metrics module.RelayMetrics,
) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid relay configuration: %w", err)
	}

	e := &Engine{
		log:            log.With().Str("engine", "relay").Str("address", signer.Address()).Logger(),
		cfg:            cfg,
		fee:            chain.CalculateFee(cfg.GasLimit, cfg.GasPrice),
		beacons:        beacons,
		query:          query,
		signer:         signer,
		sequences:      sequences,
		racer:          racer,
		clock:          clock,
		shard:          shard.NewAssigner(signer.Address()),
		metrics:        metrics,
		balances:       workerpool.New(1),
		balancePending: atomic.NewBool(false),
		lastRound:      atomic.NewUint64(0),
		submitted:      atomic.NewUint64(0),
		skipped:        atomic.NewUint64(0),
		failed:         atomic.NewUint64(0),
	}

	e.ComponentManager = component.NewComponentManagerBuilder().
		AddWorker(e.processRounds).
		Build()

	return e, nil
}

// processRounds is the single worker handling beacon rounds, one at a time.
func (e *Engine) processRounds(ctx irrecoverable.SignalerContext, ready component.ReadyFunc) {
	// balance checks are only scheduled from this worker
	defer e.balances.Stop()
	// cancelled before Stop, so that a pending balance check returns at once, also on Throw
	workCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	e.log.Info().
		Str("shard", string(e.shard.Group())).
		Str("fee", e.fee.Amount[0].String()).
		Uint64("gas_limit", e.fee.GasLimit).
		Msg("starting relay")

	rounds := e.beacons.Watch(workCtx)
	ready()

	if e.cfg.Moniker != "" {
		if err := e.register(workCtx); err != nil {
			ctx.Throw(err)
			return
		}
	}

	for {
		select {
		case <-ctx.Done():
			return
		case round, ok := <-rounds:
			if !ok {
				if ctx.Err() != nil {
					return
				}
				ctx.Throw(ErrBeaconClosed)
				return
			}
			if err := e.processRound(workCtx, round); err != nil {
				ctx.Throw(err)
				return
			}
		}
	}
}

// processRound submits round if it is new and eligible for this bot's shard.
// Submission failures are handled here; only irrecoverable errors are returned.
func (e *Engine) processRound(ctx context.Context, round *beacon.Round) error {
	log := e.log.With().Uint64("round", round.Round).Logger()
	e.metrics.RoundReceived(round.Round)

	if last := e.lastRound.Load(); round.Round <= last {
		log.Debug().Uint64("last_round", last).Msg("dropping round at or below the last handled round")
		return nil
	}
	e.lastRound.Store(round.Round)

	if !e.shard.IsMyRound(round.Round) {
		log.Debug().
			Str("eligible", string(shard.EligibleGroup(round.Round))).
			Msg("skipping round of the other shard")
		e.skipped.Inc()
		e.metrics.RoundSkipped(round.Round)
		return nil
	}

	payload, err := addRoundPayload(round, e.cfg.Chained)
	if err != nil {
		return fmt.Errorf("could not encode add_round message for round %d: %w", round.Round, err)
	}

	log.Info().Msg("submitting beacon round")
	broadcastTime := time.Now()
	result, err := e.submit(ctx, payload, addRoundMemo(round.Round))
	if err != nil {
		e.failed.Inc()
		e.metrics.RoundFailed(round.Round)
		if ctx.Err() != nil {
			log.Warn().Err(err).Msg("round submission aborted by shutdown")
			return nil
		}
		log.Error().Err(err).Msg("could not submit round")
		return e.recoverSequence(ctx)
	}

	e.submitted.Inc()
	e.metrics.RoundSubmitted(round.Round, result.GasUsed)
	log.Info().
		Int64("gas_used", result.GasUsed).
		Int64("gas_wanted", result.GasWanted).
		Str("tx_hash", result.TxHash).
		Int64("height", result.Height).
		Str("endpoint", result.Endpoint).
		Msg("round submitted")

	e.report(ctx, log, round.Round, broadcastTime, result)
	e.scheduleBalanceCheck(ctx)
	return nil
}

// submit signs msg with the next account sequence and races it to all endpoints.
func (e *Engine) submit(ctx context.Context, msg []byte, memo string) (*chain.SubmissionResult, error) {
	signData, err := e.sequences.Next()
	if err != nil {
		return nil, fmt.Errorf("could not get sign data: %w", err)
	}

	msgs := []chain.ExecuteContract{{
		Sender:   e.signer.Address(),
		Contract: e.cfg.Contract,
		Msg:      msg,
	}}
	tx, err := e.signer.Sign(ctx, msgs, e.fee, memo, signData)
	if err != nil {
		return nil, fmt.Errorf("could not sign transaction with %s: %w", signData, err)
	}

	result, err := e.racer.Broadcast(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("could not broadcast transaction with %s: %w", signData, err)
	}
	return result, nil
}

// recoverSequence re-reads the account sequence after a failed submission. Failing to do so is
// irrecoverable, since every following transaction would be signed with a wrong sequence.
func (e *Engine) recoverSequence(ctx context.Context) error {
	signData, err := e.sequences.Resync(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("could not recover account sequence: %w", err)
	}
	e.log.Info().Uint64("sequence", signData.Sequence).Msg("account sequence resynced")
	return nil
}

// report logs the time between the beacon publishing the round and the chain committing it.
// Errors are logged only.
func (e *Engine) report(ctx context.Context, log zerolog.Logger, round uint64, broadcastTime time.Time, result *chain.SubmissionResult) {
	publishTime := e.clock.TimeOfRound(round)

	commit, err := e.query.BlockTime(ctx, result.Height)
	if err != nil {
		log.Warn().Err(err).Int64("height", result.Height).Msg("could not get commit time")
		return
	}
	commitTime := roundclock.Seconds(commit)
	diff := commitTime - publishTime

	log.Info().
		Str("broadcast_time", formatSeconds(roundclock.Seconds(broadcastTime))).
		Str("publish_time", formatSeconds(publishTime)).
		Str("commit_time", formatSeconds(commitTime)).
		Str("diff", formatSeconds(diff)).
		Msg("round committed")
	e.metrics.SubmissionLatency(diff)
}

func formatSeconds(s float64) string {
	return strconv.FormatFloat(s, 'f', 3, 64)
}

// Status is a snapshot of the engine's progress.
type Status struct {
	Address   string `json:"address"`
	Shard     string `json:"shard"`
	LastRound uint64 `json:"last_round"`
	Submitted uint64 `json:"submitted"`
	Skipped   uint64 `json:"skipped"`
	Failed    uint64 `json:"failed"`
	Sequence  uint64 `json:"sequence"`
	ChainID   string `json:"chain_id,omitempty"`

	Broadcast broadcast.Stats `json:"broadcast"`
}

// Status returns a snapshot of the engine's progress. It is safe for concurrent use.
func (e *Engine) Status() any {
	status := Status{
		Address:   e.shard.Identity(),
		Shard:     string(e.shard.Group()),
		LastRound: e.lastRound.Load(),
		Submitted: e.submitted.Load(),
		Skipped:   e.skipped.Load(),
		Failed:    e.failed.Load(),
		Broadcast: e.racer.Stats(),
	}
	if signData, ok := e.sequences.Current(); ok {
		status.Sequence = signData.Sequence
		status.ChainID = signData.ChainID
	}
	return status
}
