package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/noislabs/drand-relay/model/beacon"
	"github.com/noislabs/drand-relay/model/chain"
	"github.com/noislabs/drand-relay/module/broadcast"
	"github.com/noislabs/drand-relay/module/irrecoverable"
	"github.com/noislabs/drand-relay/module/metrics"
	mockmodule "github.com/noislabs/drand-relay/module/mock"
	"github.com/noislabs/drand-relay/module/roundclock"
	"github.com/noislabs/drand-relay/module/sequence"
	"github.com/noislabs/drand-relay/module/shard"
	"github.com/noislabs/drand-relay/utils/unittest"
)

const (
	// address is in shard A, so even rounds are eligible
	address  = "nois1zh77twxfu2nnmp0ar7a3lvklxw9axzrclvsn5e"
	contract = "nois14xef285hz5cx5q9hh32p9nztu3cct4g44sxjgx"
)

type EngineSuite struct {
	suite.Suite

	rounds    chan *beacon.Round
	beacons   *mockmodule.BeaconSource
	query     *mockmodule.ChainQuery
	signer    *mockmodule.TxSigner
	primary   *mockmodule.Broadcaster
	secondary *mockmodule.Broadcaster
	sequences *sequence.Cache
	metrics   *mockmodule.RelayMetrics
	clock     *roundclock.Clock
	cfg       Config

	engine  *Engine
	cancel  context.CancelFunc
	errChan <-chan error
}

func TestEngine(t *testing.T) {
	suite.Run(t, new(EngineSuite))
}

func (s *EngineSuite) SetupTest() {
	s.Require().Equal(shard.A, shard.Group(address))

	s.rounds = make(chan *beacon.Round)
	s.beacons = mockmodule.NewBeaconSource(s.T())
	s.beacons.On("Watch", mock.Anything).Return((<-chan *beacon.Round)(s.rounds)).Once()

	s.query = mockmodule.NewChainQuery(s.T())
	s.query.On("Balance", mock.Anything, address, "unois").
		Return(chain.Coin{Denom: "unois", Amount: "12500000"}, nil).Maybe()

	s.signer = mockmodule.NewTxSigner(s.T())
	s.signer.On("Address").Return(address).Maybe()

	s.primary = mockmodule.NewBroadcaster(s.T())
	s.secondary = mockmodule.NewBroadcaster(s.T())

	var err error
	s.clock, err = roundclock.New(unittest.FastnetGenesis, unittest.FastnetPeriod)
	s.Require().NoError(err)

	price, err := chain.ParseGasPrice("0.025unois")
	s.Require().NoError(err)
	s.cfg = Config{
		Contract:          contract,
		GasLimit:          DefaultGasLimit,
		GasPrice:          price,
		Denom:             "unois",
		BalanceCheckDelay: time.Millisecond,
	}

	s.metrics = mockmodule.NewRelayMetrics(s.T())
	s.sequences = sequence.NewCache(unittest.Logger(), s.query, address, s.metrics)
	s.expectChainState(5)
	_, err = s.sequences.Initialize(context.Background())
	s.Require().NoError(err)
}

func (s *EngineSuite) TearDownTest() {
	if s.engine == nil {
		return
	}
	s.cancel()
	unittest.RequireComponentsDoneBefore(s.T(), time.Second, s.engine)
}

// start builds the engine from the suite's configuration and starts it. Metrics expectations
// registered by the test take precedence over the catch-all ones registered here.
func (s *EngineSuite) start() {
	s.metrics.On("RoundReceived", mock.Anything).Maybe()
	s.metrics.On("RoundSkipped", mock.Anything).Maybe()
	s.metrics.On("RoundSubmitted", mock.Anything, mock.Anything).Maybe()
	s.metrics.On("RoundFailed", mock.Anything).Maybe()
	s.metrics.On("SubmissionLatency", mock.Anything).Maybe()
	s.metrics.On("SequenceResynced").Maybe()
	s.metrics.On("AccountBalance", mock.Anything).Maybe()

	racer, err := broadcast.New(unittest.Logger(), []broadcast.Endpoint{
		{ID: "primary", Broadcaster: s.primary},
		{ID: "secondary", Broadcaster: s.secondary},
	}, broadcast.Config{
		Timeout:               time.Second,
		BreakerMaxFailures:    5,
		BreakerRestoreTimeout: time.Minute,
	}, metrics.NewNoopCollector())
	s.Require().NoError(err)

	s.engine, err = New(unittest.Logger(), s.cfg, s.beacons, s.query, s.signer, s.sequences, racer, s.clock, s.metrics)
	s.Require().NoError(err)

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	var signalerCtx irrecoverable.SignalerContext
	signalerCtx, s.errChan = irrecoverable.WithSignaler(ctx)
	s.engine.Start(signalerCtx)
	unittest.RequireComponentsReadyBefore(s.T(), time.Second, s.engine)
}

func (s *EngineSuite) expectChainState(sequence uint64) {
	s.query.On("ChainID", mock.Anything).Return("nois-testnet-005", nil).Once()
	s.query.On("Account", mock.Anything, address).Return(unittest.AccountFixture(address, sequence), nil).Once()
}

// expectSign expects round to be signed with the given sequence and returns the signed tx.
func (s *EngineSuite) expectSign(round uint64, sequence uint64) []byte {
	tx := []byte(fmt.Sprintf("tx-%d-%d", round, sequence))
	s.signer.On("Sign",
		mock.Anything,
		mock.MatchedBy(func(msgs []chain.ExecuteContract) bool {
			return len(msgs) == 1 && addRoundOf(msgs[0]) == round
		}),
		mock.Anything,
		addRoundMemo(round),
		unittest.SignDataFixture(sequence),
	).Return(tx, nil).Once()
	return tx
}

// expectDelivered makes the primary deliver tx and the secondary fail.
func (s *EngineSuite) expectDelivered(tx []byte, height int64) {
	s.primary.On("BroadcastTx", mock.Anything, tx).Return(
		func(context.Context, []byte) (*chain.SubmissionResult, error) {
			return unittest.SubmissionResultFixture(height, ""), nil
		}).Once()
	// the losing endpoint may still be running when the test ends
	s.secondary.On("BroadcastTx", mock.Anything, tx).Return(nil, errors.New("connection reset")).Once().Maybe()
	s.query.On("BlockTime", mock.Anything, height).Return(time.Unix(unittest.FastnetGenesis+300, 0), nil).Maybe()
}

func (s *EngineSuite) expectFailed(tx []byte) {
	s.primary.On("BroadcastTx", mock.Anything, tx).Return(nil, errors.New("connection refused")).Once()
	s.secondary.On("BroadcastTx", mock.Anything, tx).Return(
		func(context.Context, []byte) (*chain.SubmissionResult, error) {
			return &chain.SubmissionResult{TxHash: "AB", Code: 32, RawLog: "account sequence mismatch"}, nil
		}).Once()
}

func (s *EngineSuite) send(round uint64) {
	select {
	case s.rounds <- unittest.RoundFixture(round, unittest.WithoutPreviousSignature()):
	case <-time.After(time.Second):
		s.T().Fatalf("engine did not take round %d", round)
	}
}

func (s *EngineSuite) status() Status {
	return s.engine.Status().(Status)
}

// waitProcessed waits until the engine finished the given number of eligible rounds.
func (s *EngineSuite) waitProcessed(submitted, failed uint64) {
	s.Require().Eventually(func() bool {
		st := s.status()
		return st.Submitted == submitted && st.Failed == failed
	}, 2*time.Second, 5*time.Millisecond)
}

func addRoundOf(msg chain.ExecuteContract) uint64 {
	var m addRoundMsg
	if err := json.Unmarshal(msg.Msg, &m); err != nil {
		return 0
	}
	return m.AddRound.Round
}

// TestSubmitsConsecutiveSequences checks that eligible rounds consume consecutive sequences
// from the cache while rounds of the other shard consume none.
func (s *EngineSuite) TestSubmitsConsecutiveSequences() {
	s.expectDelivered(s.expectSign(100, 5), 1000)
	s.expectDelivered(s.expectSign(102, 6), 1001)
	s.start()

	s.send(100)
	s.send(101)
	s.send(102)
	s.waitProcessed(2, 0)

	st := s.status()
	s.Assert().EqualValues(102, st.LastRound)
	s.Assert().EqualValues(1, st.Skipped)
	s.Assert().EqualValues(7, st.Sequence)
	s.Assert().Equal("A", st.Shard)
	s.Assert().Equal(address, st.Address)
	s.Assert().EqualValues(2, st.Broadcast.Races)
	s.Assert().EqualValues(2, st.Broadcast.Successes["primary"])
}

// TestResyncAfterTotalFailure checks that after all endpoints failed the next round is signed
// with the sequence re-read from the chain.
func (s *EngineSuite) TestResyncAfterTotalFailure() {
	s.expectFailed(s.expectSign(100, 5))
	s.expectChainState(9)
	s.expectDelivered(s.expectSign(102, 9), 1000)
	s.metrics.On("RoundFailed", uint64(100)).Once()
	s.metrics.On("SequenceResynced").Once()
	s.start()

	s.send(100)
	s.waitProcessed(0, 1)
	s.send(102)
	s.waitProcessed(1, 1)

	s.Assert().EqualValues(10, s.status().Sequence)
	s.metrics.AssertNumberOfCalls(s.T(), "SequenceResynced", 1)
	s.metrics.AssertNumberOfCalls(s.T(), "RoundFailed", 1)

	stats := s.status().Broadcast
	s.Assert().EqualValues(2, stats.Races)
	s.Assert().EqualValues(1, stats.Failures)
}

// TestReportsCommitLatency checks that the latency is reported in seconds between the publish
// time of the round and the commit time of its block.
func (s *EngineSuite) TestReportsCommitLatency() {
	// round 100 on fastnet is published at genesis+297, the block commits at genesis+300
	s.expectDelivered(s.expectSign(100, 5), 1000)
	reported := make(chan struct{})
	s.metrics.On("RoundSubmitted", uint64(100), int64(431_522)).Once()
	s.metrics.On("SubmissionLatency", 3.0).Run(func(mock.Arguments) { close(reported) }).Once()
	s.start()

	s.send(100)
	unittest.RequireCloseBefore(s.T(), reported, 2*time.Second, "latency not reported")
	s.metrics.AssertNotCalled(s.T(), "SequenceResynced")
}

// TestThrowStopsPendingBalanceCheck checks that the engine shuts down right away on an
// irrecoverable error, even while a balance check is waiting for its delay.
func (s *EngineSuite) TestThrowStopsPendingBalanceCheck() {
	s.cfg.BalanceCheckDelay = time.Hour
	s.expectDelivered(s.expectSign(100, 5), 1000)
	s.start()

	s.send(100)
	s.waitProcessed(1, 0)
	close(s.rounds)

	select {
	case err := <-s.errChan:
		s.Assert().ErrorIs(err, ErrBeaconClosed)
	case <-time.After(time.Second):
		s.T().Fatal("expected irrecoverable error")
	}
	unittest.RequireComponentsDoneBefore(s.T(), time.Second, s.engine)
	s.metrics.AssertNotCalled(s.T(), "AccountBalance", mock.Anything)
}

// TestResyncFailureIsIrrecoverable checks that the engine stops with an irrecoverable error if
// the sequence cannot be re-read after a failed submission.
func (s *EngineSuite) TestResyncFailureIsIrrecoverable() {
	s.expectFailed(s.expectSign(100, 5))
	s.query.On("ChainID", mock.Anything).Return("", errors.New("connection refused")).Maybe()
	s.query.On("Account", mock.Anything, address).Return(chain.Account{}, errors.New("connection refused")).Maybe()
	s.start()

	s.send(100)
	select {
	case err := <-s.errChan:
		s.Require().Error(err)
		s.Assert().True(sequence.IsUpstreamUnavailableError(err))
	case <-time.After(2 * time.Second):
		s.T().Fatal("expected irrecoverable error")
	}
}

func (s *EngineSuite) TestSigningFailureResyncs() {
	s.signer.On("Sign", mock.Anything, mock.Anything, mock.Anything, addRoundMemo(100), unittest.SignDataFixture(5)).
		Return(nil, errors.New("key unavailable")).Once()
	s.expectChainState(5)
	s.expectDelivered(s.expectSign(102, 5), 1000)
	s.start()

	s.send(100)
	s.send(102)
	s.waitProcessed(1, 1)
}

// TestReportingFailureKeepsSequence checks that failing to read the commit time neither
// consumes nor resyncs the sequence.
func (s *EngineSuite) TestReportingFailureKeepsSequence() {
	tx := s.expectSign(100, 5)
	s.primary.On("BroadcastTx", mock.Anything, tx).Return(
		func(context.Context, []byte) (*chain.SubmissionResult, error) {
			return unittest.SubmissionResultFixture(1000, ""), nil
		}).Once()
	// the losing endpoint may still be running when the test ends
	s.secondary.On("BroadcastTx", mock.Anything, tx).Return(nil, errors.New("connection reset")).Once().Maybe()
	s.query.On("BlockTime", mock.Anything, int64(1000)).Return(time.Time{}, errors.New("block not found")).Once()
	s.expectDelivered(s.expectSign(102, 6), 1001)
	s.start()

	s.send(100)
	s.send(102)
	s.waitProcessed(2, 0)
}

// TestDropsOldRounds checks that repeated and older rounds are not submitted again.
func (s *EngineSuite) TestDropsOldRounds() {
	s.expectDelivered(s.expectSign(104, 5), 1000)
	s.expectDelivered(s.expectSign(106, 6), 1001)
	s.start()

	s.send(104)
	s.send(104)
	s.send(102)
	s.send(106)
	s.waitProcessed(2, 0)
	s.Assert().EqualValues(0, s.status().Skipped)
}

func (s *EngineSuite) TestRegistersBot() {
	s.cfg.Moniker = "relay-1"
	registration := []byte("register")
	s.signer.On("Sign",
		mock.Anything,
		mock.MatchedBy(func(msgs []chain.ExecuteContract) bool {
			return len(msgs) == 1 && string(msgs[0].Msg) == `{"register_bot":{"moniker":"relay-1"}}`
		}),
		mock.Anything,
		registerMemo,
		unittest.SignDataFixture(5),
	).Return(registration, nil).Once()
	s.primary.On("BroadcastTx", mock.Anything, registration).Return(
		func(context.Context, []byte) (*chain.SubmissionResult, error) {
			return unittest.SubmissionResultFixture(999, ""), nil
		}).Once()
	s.secondary.On("BroadcastTx", mock.Anything, registration).Return(nil, errors.New("connection reset")).Once().Maybe()
	s.expectDelivered(s.expectSign(100, 6), 1000)
	s.start()

	s.send(100)
	s.waitProcessed(1, 0)
}

func (s *EngineSuite) TestBeaconClosedIsIrrecoverable() {
	s.start()

	close(s.rounds)
	select {
	case err := <-s.errChan:
		s.Assert().ErrorIs(err, ErrBeaconClosed)
	case <-time.After(time.Second):
		s.T().Fatal("expected irrecoverable error")
	}
}

func (s *EngineSuite) TestMessageAndFee() {
	tx := []byte("tx")
	s.signer.On("Sign", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			msgs := args.Get(1).([]chain.ExecuteContract)
			fee := args.Get(2).(chain.Fee)

			if s.Assert().Len(msgs, 1) {
				s.Assert().Equal(address, msgs[0].Sender)
				s.Assert().Equal(contract, msgs[0].Contract)
				s.Assert().Empty(msgs[0].Funds)
			}
			s.Assert().EqualValues(700_000, fee.GasLimit)
			s.Assert().Equal([]chain.Coin{{Denom: "unois", Amount: "17500"}}, fee.Amount)
		}).
		Return(tx, nil).Once()
	s.expectDelivered(tx, 1000)
	s.start()

	s.send(100)
	s.waitProcessed(1, 0)
}

func TestConfig_Validate(t *testing.T) {
	price, err := chain.ParseGasPrice("0.025unois")
	require.NoError(t, err)
	valid := Config{Contract: contract, GasLimit: DefaultGasLimit, GasPrice: price, Denom: "unois"}
	require.NoError(t, valid.Validate())

	for name, mutate := range map[string]func(*Config){
		"contract":  func(c *Config) { c.Contract = "" },
		"gas limit": func(c *Config) { c.GasLimit = 0 },
		"gas price": func(c *Config) { c.GasPrice = chain.GasPrice{} },
		"denom":     func(c *Config) { c.Denom = "" },
		"delay":     func(c *Config) { c.BalanceCheckDelay = -time.Second },
	} {
		cfg := valid
		mutate(&cfg)
		require.Error(t, cfg.Validate(), name)
	}
}
