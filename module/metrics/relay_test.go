package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRelayCollector(t *testing.T) {
	registry := prometheus.NewRegistry()
	collector := NewRelayCollector(registry)

	collector.RoundReceived(100)
	collector.RoundReceived(101)
	collector.RoundSkipped(101)
	collector.RoundSubmitted(100, 431_522)
	collector.RoundFailed(102)
	collector.BroadcastAttempt("primary", true, 2*time.Second)
	collector.BroadcastAttempt("secondary", false, time.Second)
	collector.BroadcastAttempt("secondary", false, time.Second)
	collector.SubmissionLatency(3.2)
	collector.SequenceResynced()
	collector.AccountBalance(12.5)

	assert.Equal(t, 101.0, testutil.ToFloat64(collector.latestRound))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.roundsSkipped))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.roundsSubmitted))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.roundsFailed))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.broadcasts.WithLabelValues("primary", ResultSuccess)))
	assert.Equal(t, 2.0, testutil.ToFloat64(collector.broadcasts.WithLabelValues("secondary", ResultFailure)))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.resyncs))
	assert.Equal(t, 12.5, testutil.ToFloat64(collector.accountBalance))

	// only successful broadcasts are timed
	assert.Equal(t, 1, testutil.CollectAndCount(collector.broadcastDuration))

	count, err := testutil.GatherAndCount(registry, "drand_relay_rounds_commit_latency_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestRelayCollector_DuplicateRegistration(t *testing.T) {
	registry := prometheus.NewRegistry()
	NewRelayCollector(registry)
	assert.Panics(t, func() {
		NewRelayCollector(registry)
	})
}
