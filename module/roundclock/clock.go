// Package roundclock maps drand round numbers onto wall clock time.
//
// All values are fractional unix seconds. Conversion from time.Time happens at the
// boundary only, through Seconds.
package roundclock

import (
	"fmt"
	"math"
	"time"
)

// Clock computes the canonical publish time of rounds of one beacon chain.
// Round 1 is published at genesis, every following round one period later.
type Clock struct {
	genesis  int64
	period   time.Duration
	maxRound uint64
	now      func() time.Time
}

// New returns a clock for the beacon chain with the given genesis (unix seconds) and round period.
// Both values are chain specific and must be provided explicitly.
func New(genesis int64, period time.Duration) (*Clock, error) {
	if genesis <= 0 {
		return nil, fmt.Errorf("invalid beacon genesis %d: must be positive unix seconds", genesis)
	}
	if period <= 0 {
		return nil, fmt.Errorf("invalid beacon period %s: must be positive", period)
	}
	return &Clock{
		genesis:  genesis,
		period:   period,
		maxRound: uint64(math.MaxInt64/int64(period)) + 1,
		now:      time.Now,
	}, nil
}

// Genesis returns the unix time of round 1.
func (c *Clock) Genesis() int64 {
	return c.genesis
}

// Period returns the round length.
func (c *Clock) Period() time.Duration {
	return c.period
}

// MaxRound returns the last round whose offset from genesis fits into a time.Duration.
// Publish times are exact up to this round; later rounds are clamped to it.
func (c *Clock) MaxRound() uint64 {
	return c.maxRound
}

// TimeOfRound returns the publish time of round in unix seconds.
func (c *Clock) TimeOfRound(round uint64) float64 {
	return float64(c.genesis) + c.offset(round).Seconds()
}

// offset is computed in integer nanoseconds and converted to seconds once.
func (c *Clock) offset(round uint64) time.Duration {
	if round <= 1 {
		return 0
	}
	if round > c.maxRound {
		round = c.maxRound
	}
	return time.Duration(round-1) * c.period
}

// PublishedSince returns the seconds elapsed since round was published. The value is
// negative for rounds in the future.
func (c *Clock) PublishedSince(round uint64) float64 {
	return c.PublishedSinceAt(round, c.now())
}

// PublishedSinceAt is PublishedSince evaluated at t.
func (c *Clock) PublishedSinceAt(round uint64, t time.Time) float64 {
	return Seconds(t) - c.TimeOfRound(round)
}

// CurrentRound returns the latest round published at or before t, or 0 before genesis.
func (c *Clock) CurrentRound(t time.Time) uint64 {
	elapsed := Seconds(t) - float64(c.genesis)
	if elapsed < 0 {
		return 0
	}
	return uint64(math.Floor(elapsed/c.period.Seconds())) + 1
}

// NextRoundTime returns the round following CurrentRound(t) together with its publish time.
func (c *Clock) NextRoundTime(t time.Time) (uint64, time.Time) {
	next := c.CurrentRound(t) + 1
	return next, FromSeconds(c.TimeOfRound(next))
}

// Seconds converts t into fractional unix seconds.
func Seconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}

// FromSeconds converts fractional unix seconds into a time.Time.
func FromSeconds(s float64) time.Time {
	whole, frac := math.Modf(s)
	return time.Unix(int64(whole), int64(frac*float64(time.Second)))
}
