package module

import (
	"context"

	"github.com/noislabs/drand-relay/model/beacon"
)

// BeaconSource delivers the rounds of one beacon chain as they are published.
type BeaconSource interface {
	// Watch returns a channel of rounds in non-decreasing round order. Rounds may be skipped
	// (e.g. after a network outage) and may repeat across reconnects.
	// The channel is closed when ctx is cancelled. A channel closed for any other reason
	// means the source has terminated for good.
	Watch(ctx context.Context) <-chan *beacon.Round
}
