package metrics

import (
	"time"

	"github.com/noislabs/drand-relay/module"
)

type NoopCollector struct{}

var _ module.RelayMetrics = (*NoopCollector)(nil)

func NewNoopCollector() *NoopCollector {
	nc := &NoopCollector{}
	return nc
}

func (nc *NoopCollector) RoundReceived(round uint64)                                      {}
func (nc *NoopCollector) RoundSkipped(round uint64)                                       {}
func (nc *NoopCollector) RoundSubmitted(round uint64, gasUsed int64)                      {}
func (nc *NoopCollector) RoundFailed(round uint64)                                        {}
func (nc *NoopCollector) BroadcastAttempt(endpoint string, success bool, d time.Duration) {}
func (nc *NoopCollector) SubmissionLatency(seconds float64)                               {}
func (nc *NoopCollector) SequenceResynced()                                               {}
func (nc *NoopCollector) AccountBalance(balance float64)                                  {}
