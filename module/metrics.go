package module

import "time"

// RelayMetrics tracks the progress of the beacon relay.
type RelayMetrics interface {
	// RoundReceived is called for every beacon round taken from the stream.
	RoundReceived(round uint64)

	// RoundSkipped is called when a round is not handled by this instance's shard.
	RoundSkipped(round uint64)

	// RoundSubmitted is called when a round was included on chain.
	RoundSubmitted(round uint64, gasUsed int64)

	// RoundFailed is called when submitting a round failed.
	RoundFailed(round uint64)

	// BroadcastAttempt is called once per endpoint per transaction.
	BroadcastAttempt(endpoint string, success bool, duration time.Duration)

	// SubmissionLatency reports seconds between the round's publish time and its commit time.
	SubmissionLatency(seconds float64)

	// SequenceResynced is called whenever the local sequence was re-read from the chain.
	SequenceResynced()

	// AccountBalance reports the last observed balance in whole units.
	AccountBalance(balance float64)
}
