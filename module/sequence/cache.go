// Package sequence tracks the account number and sequence of the submitting account.
//
// The chain only accepts a transaction whose sequence equals the account's current sequence,
// so the cache hands out consecutive values without asking the chain each time. After any
// failed submission the on-chain sequence is ambiguous (the transaction may still have been
// included), and the cache must be resynced before the next transaction is signed.
//
// The cache allows a single borrowed sequence in flight: callers must submit transactions
// one after another. Submitting in parallel needs reservations that are rolled back on failure,
// which this cache does not implement.
package sequence

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/noislabs/drand-relay/model/chain"
	"github.com/noislabs/drand-relay/module"
)

// Cache owns the sign data of one account. All methods are safe for concurrent use.
type Cache struct {
	log     zerolog.Logger
	query   module.ChainQuery
	address string
	metrics module.RelayMetrics

	mu          sync.Mutex
	initialized bool
	current     chain.SignData
}

func NewCache(log zerolog.Logger, query module.ChainQuery, address string, metrics module.RelayMetrics) *Cache {
	return &Cache{
		log:     log.With().Str("component", "sequence_cache").Str("address", address).Logger(),
		query:   query,
		address: address,
		metrics: metrics,
	}
}

// Initialize reads the chain id and the account state from the chain.
// Expected errors during normal operations:
//   - UpstreamUnavailableError if the chain could not be queried
func (c *Cache) Initialize(ctx context.Context) (chain.SignData, error) {
	signData, err := c.fetch(ctx)
	if err != nil {
		return chain.SignData{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = signData
	c.initialized = true

	c.log.Info().
		Str("chain_id", signData.ChainID).
		Uint64("account_number", signData.AccountNumber).
		Uint64("sequence", signData.Sequence).
		Msg("sign data initialized")
	return signData, nil
}

// Next returns the sign data for the next transaction and advances the local sequence.
// It never touches the network.
// Expected errors during normal operations:
//   - ErrNotInitialized if neither Initialize nor Resync succeeded before
func (c *Cache) Next() (chain.SignData, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.initialized {
		return chain.SignData{}, ErrNotInitialized
	}
	next := c.current
	c.current.Sequence++
	return next, nil
}

// Resync discards the local state and replaces it with the state read from the chain,
// regardless of how many sequences were handed out since.
// Expected errors during normal operations:
//   - UpstreamUnavailableError if the chain could not be queried; the local state is unchanged
func (c *Cache) Resync(ctx context.Context) (chain.SignData, error) {
	signData, err := c.fetch(ctx)
	if err != nil {
		return chain.SignData{}, err
	}

	c.mu.Lock()
	previous := c.current
	c.current = signData
	c.initialized = true
	c.mu.Unlock()

	c.metrics.SequenceResynced()
	c.log.Info().
		Uint64("local_sequence", previous.Sequence).
		Uint64("chain_sequence", signData.Sequence).
		Msg("sign data resynced")
	return signData, nil
}

// Current returns a copy of the current state without advancing it.
func (c *Cache) Current() (chain.SignData, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current, c.initialized
}

// fetch queries chain id and account state concurrently.
func (c *Cache) fetch(ctx context.Context) (chain.SignData, error) {
	var (
		chainID string
		account chain.Account
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		chainID, err = c.query.ChainID(gCtx)
		return err
	})
	g.Go(func() error {
		var err error
		account, err = c.query.Account(gCtx, c.address)
		return err
	})
	if err := g.Wait(); err != nil {
		return chain.SignData{}, NewUpstreamUnavailableError(c.address, err)
	}

	return chain.SignData{
		ChainID:       chainID,
		AccountNumber: account.AccountNumber,
		Sequence:      account.Sequence,
	}, nil
}
