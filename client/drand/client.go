// Package drand reads beacon rounds from the drand HTTP API.
//
// Several HTTP endpoints serving the same chain are tried in order, so that one unavailable
// endpoint does not stall the relay. Beacon signatures are not verified: the contract
// verifies every round it receives.
package drand

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"

	"github.com/noislabs/drand-relay/model/beacon"
	"github.com/noislabs/drand-relay/module"
	"github.com/noislabs/drand-relay/module/roundclock"
)

// DefaultURLs are public HTTP endpoints of the drand League of Entropy.
var DefaultURLs = []string{
	"https://api.drand.sh",
	"https://api2.drand.sh",
	"https://api3.drand.sh",
	"https://drand.cloudflare.com",
}

// Config configures the beacon client.
type Config struct {
	// URLs are base URLs of drand HTTP endpoints, tried in order.
	URLs []string
	// ChainHash selects the beacon chain on the endpoints.
	ChainHash string
	// RequestTimeout bounds a single HTTP request.
	RequestTimeout time.Duration
	// RetryDelay is the initial delay between attempts to fetch a round that is not available yet.
	RetryDelay time.Duration
	// CacheSize is the number of rounds kept in memory.
	CacheSize int
}

func DefaultConfig() Config {
	return Config{
		URLs:           DefaultURLs,
		RequestTimeout: 5 * time.Second,
		RetryDelay:     250 * time.Millisecond,
		CacheSize:      128,
	}
}

// Client fetches rounds of one beacon chain.
type Client struct {
	log   zerolog.Logger
	cfg   Config
	clock *roundclock.Clock
	hc    *http.Client
	cache *lru.Cache[uint64, *beacon.Round]
}

var _ module.BeaconSource = (*Client)(nil)

func NewClient(log zerolog.Logger, cfg Config, clock *roundclock.Clock) (*Client, error) {
	if len(cfg.URLs) == 0 {
		return nil, fmt.Errorf("at least one drand url is required")
	}
	if cfg.ChainHash == "" {
		return nil, fmt.Errorf("drand chain hash is required")
	}
	if cfg.RetryDelay <= 0 {
		return nil, fmt.Errorf("retry delay must be positive, got %s", cfg.RetryDelay)
	}
	cache, err := lru.New[uint64, *beacon.Round](cfg.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("could not create round cache: %w", err)
	}

	urls := make([]string, 0, len(cfg.URLs))
	for _, u := range cfg.URLs {
		urls = append(urls, strings.TrimRight(u, "/"))
	}
	cfg.URLs = urls

	return &Client{
		log:   log.With().Str("component", "drand_client").Str("chain_hash", cfg.ChainHash).Logger(),
		cfg:   cfg,
		clock: clock,
		hc: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		cache: cache,
	}, nil
}

type roundResponse struct {
	Round             uint64 `json:"round"`
	Randomness        string `json:"randomness"`
	Signature         string `json:"signature"`
	PreviousSignature string `json:"previous_signature"`
}

// Get returns the given round, or the latest round if round is 0. Endpoints are tried in order
// until one returns the round.
func (c *Client) Get(ctx context.Context, round uint64) (*beacon.Round, error) {
	if round > 0 {
		if cached, ok := c.cache.Get(round); ok {
			return cached, nil
		}
	}

	var errs []string
	for _, base := range c.cfg.URLs {
		r, err := c.fetch(ctx, base, round)
		if err == nil {
			c.cache.Add(r.Round, r)
			return r, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.log.Debug().Err(err).Str("url", base).Uint64("round", round).Msg("could not fetch round")
		errs = append(errs, err.Error())
	}
	return nil, fmt.Errorf("could not fetch round %d from any endpoint: %s", round, strings.Join(errs, "; "))
}

func (c *Client) fetch(ctx context.Context, base string, round uint64) (*beacon.Round, error) {
	path := "latest"
	if round > 0 {
		path = strconv.FormatUint(round, 10)
	}
	url := fmt.Sprintf("%s/%s/public/%s", base, c.cfg.ChainHash, path)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: status %d", url, resp.StatusCode)
	}

	var body roundResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("could not decode round: %w", err)
	}
	if round > 0 && body.Round != round {
		return nil, fmt.Errorf("requested round %d, got %d", round, body.Round)
	}
	return parseRound(body)
}

func parseRound(body roundResponse) (*beacon.Round, error) {
	if body.Round == 0 {
		return nil, fmt.Errorf("invalid round 0")
	}
	randomness, err := hex.DecodeString(body.Randomness)
	if err != nil {
		return nil, fmt.Errorf("invalid randomness of round %d: %w", body.Round, err)
	}
	signature, err := hex.DecodeString(body.Signature)
	if err != nil {
		return nil, fmt.Errorf("invalid signature of round %d: %w", body.Round, err)
	}
	if len(signature) == 0 {
		return nil, fmt.Errorf("round %d has no signature", body.Round)
	}
	var previous []byte
	if body.PreviousSignature != "" {
		previous, err = hex.DecodeString(body.PreviousSignature)
		if err != nil {
			return nil, fmt.Errorf("invalid previous signature of round %d: %w", body.Round, err)
		}
	}
	return &beacon.Round{
		Round:             body.Round,
		Randomness:        randomness,
		Signature:         signature,
		PreviousSignature: previous,
	}, nil
}

// Watch emits every round as it is published, starting with the next round. When the consumer
// falls behind, stale rounds are skipped in favour of the current one. The channel is closed
// once ctx is cancelled.
func (c *Client) Watch(ctx context.Context) <-chan *beacon.Round {
	rounds := make(chan *beacon.Round)
	go func() {
		defer close(rounds)

		var last uint64
		for {
			target := c.nextTarget(last, time.Now())
			if !c.waitFor(ctx, target) {
				return
			}

			r, err := c.fetchPublished(ctx, target)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				c.log.Warn().Err(err).Uint64("round", target).Msg("could not fetch published round, skipping")
				last = target
				continue
			}

			select {
			case <-ctx.Done():
				return
			case rounds <- r:
				last = r.Round
			}
		}
	}()
	return rounds
}

// nextTarget returns the round to emit after last.
func (c *Client) nextTarget(last uint64, now time.Time) uint64 {
	current := c.clock.CurrentRound(now)
	if last == 0 {
		return current + 1
	}
	if last+1 < current {
		c.log.Warn().Uint64("last", last).Uint64("current", current).Msg("fell behind the beacon, skipping rounds")
		return current
	}
	return last + 1
}

// waitFor blocks until round is due. It returns false if ctx was cancelled.
func (c *Client) waitFor(ctx context.Context, round uint64) bool {
	due := roundclock.FromSeconds(c.clock.TimeOfRound(round))
	wait := time.Until(due)
	if wait <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// fetchPublished fetches a round that is due, retrying while the endpoints have not caught up.
// Retries stop once the following round is due.
func (c *Client) fetchPublished(ctx context.Context, round uint64) (*beacon.Round, error) {
	deadline := roundclock.FromSeconds(c.clock.TimeOfRound(round + 1))
	ctx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()

	backoff := retry.NewExponential(c.cfg.RetryDelay)
	backoff = retry.WithCappedDuration(c.clock.Period()/2, backoff)
	backoff = retry.WithJitterPercent(10, backoff)

	var r *beacon.Round
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		var err error
		r, err = c.Get(ctx, round)
		if err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	return r, err
}
