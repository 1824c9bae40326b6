package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/noislabs/drand-relay/module"
)

// RelayCollector implements metric collection for the beacon relay.
type RelayCollector struct {
	latestRound       prometheus.Gauge
	roundsSkipped     prometheus.Counter
	roundsSubmitted   prometheus.Counter
	roundsFailed      prometheus.Counter
	gasUsed           prometheus.Histogram
	broadcasts        *prometheus.CounterVec
	broadcastDuration *prometheus.HistogramVec
	latency           prometheus.Histogram
	resyncs           prometheus.Counter
	accountBalance    prometheus.Gauge
}

var _ module.RelayMetrics = (*RelayCollector)(nil)

func NewRelayCollector(registerer prometheus.Registerer) *RelayCollector {
	latestRound := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespaceRelay,
		Subsystem: subsystemRounds,
		Name:      "latest_received",
		Help:      "the latest beacon round received from the beacon source",
	})
	roundsSkipped := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespaceRelay,
		Subsystem: subsystemRounds,
		Name:      "skipped_total",
		Help:      "number of rounds not submitted because they belong to the other shard",
	})
	roundsSubmitted := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespaceRelay,
		Subsystem: subsystemRounds,
		Name:      "submitted_total",
		Help:      "number of rounds included on chain",
	})
	roundsFailed := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespaceRelay,
		Subsystem: subsystemRounds,
		Name:      "failed_total",
		Help:      "number of rounds whose submission failed",
	})
	gasUsed := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespaceRelay,
		Subsystem: subsystemRounds,
		Name:      "gas_used",
		Help:      "gas used by round submissions",
		Buckets:   prometheus.ExponentialBuckets(50_000, 1.5, 10),
	})
	broadcasts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespaceRelay,
		Subsystem: subsystemBroadcast,
		Name:      "attempts_total",
		Help:      "number of broadcast attempts per endpoint and result",
	}, []string{LabelEndpoint, LabelResult})
	broadcastDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespaceRelay,
		Subsystem: subsystemBroadcast,
		Name:      "duration_seconds",
		Help:      "time from broadcast until the endpoint reported the delivered result",
		Buckets:   []float64{0.5, 1, 2, 3, 5, 8, 13, 20, 30},
	}, []string{LabelEndpoint})
	latency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespaceRelay,
		Subsystem: subsystemRounds,
		Name:      "commit_latency_seconds",
		Help:      "seconds between the beacon publish time of a round and the commit time of its submission",
		Buckets:   []float64{1, 2, 3, 4, 5, 6, 8, 10, 15, 20, 30, 60},
	})
	resyncs := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespaceRelay,
		Subsystem: subsystemAccount,
		Name:      "sequence_resyncs_total",
		Help:      "number of times the account sequence was re-read from the chain",
	})
	accountBalance := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespaceRelay,
		Subsystem: subsystemAccount,
		Name:      "balance",
		Help:      "the last observed balance of the relay account, in whole units of the fee denom",
	})
	registerer.MustRegister(
		latestRound,
		roundsSkipped,
		roundsSubmitted,
		roundsFailed,
		gasUsed,
		broadcasts,
		broadcastDuration,
		latency,
		resyncs,
		accountBalance,
	)

	return &RelayCollector{
		latestRound:       latestRound,
		roundsSkipped:     roundsSkipped,
		roundsSubmitted:   roundsSubmitted,
		roundsFailed:      roundsFailed,
		gasUsed:           gasUsed,
		broadcasts:        broadcasts,
		broadcastDuration: broadcastDuration,
		latency:           latency,
		resyncs:           resyncs,
		accountBalance:    accountBalance,
	}
}

func (r *RelayCollector) RoundReceived(round uint64) {
	r.latestRound.Set(float64(round))
}

func (r *RelayCollector) RoundSkipped(uint64) {
	r.roundsSkipped.Inc()
}

func (r *RelayCollector) RoundSubmitted(_ uint64, gasUsed int64) {
	r.roundsSubmitted.Inc()
	r.gasUsed.Observe(float64(gasUsed))
}

func (r *RelayCollector) RoundFailed(uint64) {
	r.roundsFailed.Inc()
}

func (r *RelayCollector) BroadcastAttempt(endpoint string, success bool, duration time.Duration) {
	result := ResultFailure
	if success {
		result = ResultSuccess
		r.broadcastDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
	}
	r.broadcasts.WithLabelValues(endpoint, result).Inc()
}

func (r *RelayCollector) SubmissionLatency(seconds float64) {
	r.latency.Observe(seconds)
}

func (r *RelayCollector) SequenceResynced() {
	r.resyncs.Inc()
}

func (r *RelayCollector) AccountBalance(balance float64) {
	r.accountBalance.Set(balance)
}
