package sequence

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"pgregory.net/rapid"

	"github.com/noislabs/drand-relay/model/chain"
	"github.com/noislabs/drand-relay/module/metrics"
	mockmodule "github.com/noislabs/drand-relay/module/mock"
	"github.com/noislabs/drand-relay/utils/unittest"
)

const address = "nois1ffy2rz96sjxzm2ezwkmvyeupktp7elt6w3xckt"

type CacheSuite struct {
	suite.Suite

	query *mockmodule.ChainQuery
	cache *Cache
}

func TestCache(t *testing.T) {
	suite.Run(t, new(CacheSuite))
}

func (s *CacheSuite) SetupTest() {
	s.query = mockmodule.NewChainQuery(s.T())
	s.cache = NewCache(unittest.Logger(), s.query, address, metrics.NewNoopCollector())
}

func (s *CacheSuite) expectChainState(sequence uint64) {
	s.query.On("ChainID", mock.Anything).Return("nois-testnet-005", nil).Once()
	s.query.On("Account", mock.Anything, address).Return(unittest.AccountFixture(address, sequence), nil).Once()
}

// TestNextBeforeInitialize checks that no sign data is handed out before the chain was queried.
func (s *CacheSuite) TestNextBeforeInitialize() {
	_, err := s.cache.Next()
	s.Require().ErrorIs(err, ErrNotInitialized)
}

func (s *CacheSuite) TestInitialize() {
	s.expectChainState(5)

	signData, err := s.cache.Initialize(context.Background())
	s.Require().NoError(err)
	s.Assert().Equal(unittest.SignDataFixture(5), signData)

	current, ok := s.cache.Current()
	s.Require().True(ok)
	s.Assert().Equal(signData, current)
}

func (s *CacheSuite) TestInitialize_UpstreamUnavailable() {
	s.query.On("ChainID", mock.Anything).Return("", errors.New("connection refused")).Maybe()
	s.query.On("Account", mock.Anything, address).Return(chain.Account{}, errors.New("connection refused")).Maybe()

	_, err := s.cache.Initialize(context.Background())
	s.Require().Error(err)
	s.Assert().True(IsUpstreamUnavailableError(err))

	_, err = s.cache.Next()
	s.Require().ErrorIs(err, ErrNotInitialized)
}

// TestNext_Increasing checks that k calls to Next yield k consecutive sequences starting at
// the initialized value, without querying the chain again.
func (s *CacheSuite) TestNext_Increasing() {
	s.expectChainState(5)
	_, err := s.cache.Initialize(context.Background())
	s.Require().NoError(err)

	const k = 50
	for i := uint64(0); i < k; i++ {
		signData, err := s.cache.Next()
		s.Require().NoError(err)
		s.Assert().Equal(5+i, signData.Sequence)
		s.Assert().Equal(uint64(42), signData.AccountNumber)
		s.Assert().Equal("nois-testnet-005", signData.ChainID)
	}

	s.query.AssertNumberOfCalls(s.T(), "Account", 1)
}

// TestResync_Overrides checks that the next value after a resync is the freshly queried
// sequence, regardless of how many values were handed out locally.
func (s *CacheSuite) TestResync_Overrides() {
	s.expectChainState(5)
	_, err := s.cache.Initialize(context.Background())
	s.Require().NoError(err)

	for i := 0; i < 3; i++ {
		_, err := s.cache.Next()
		s.Require().NoError(err)
	}

	// one of the transactions did not make it; the chain reports 6
	s.expectChainState(6)
	signData, err := s.cache.Resync(context.Background())
	s.Require().NoError(err)
	s.Assert().Equal(uint64(6), signData.Sequence)

	next, err := s.cache.Next()
	s.Require().NoError(err)
	s.Assert().Equal(uint64(6), next.Sequence)
}

// TestResync_Failure checks that a failed resync keeps the local state and reports the
// upstream as unavailable.
func (s *CacheSuite) TestResync_Failure() {
	s.expectChainState(5)
	_, err := s.cache.Initialize(context.Background())
	s.Require().NoError(err)

	s.query.On("ChainID", mock.Anything).Return("nois-testnet-005", nil).Maybe()
	s.query.On("Account", mock.Anything, address).Return(chain.Account{}, errors.New("timeout")).Once()

	_, err = s.cache.Resync(context.Background())
	s.Require().Error(err)
	s.Assert().True(IsUpstreamUnavailableError(err))

	current, ok := s.cache.Current()
	s.Require().True(ok)
	s.Assert().Equal(uint64(5), current.Sequence)
}

// TestNext_Properties checks for any initial sequence and number of calls that Next hands out
// strictly increasing, consecutive values, and that the value after a resync is the one read
// from the chain.
func TestNext_Properties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		initial := rapid.Uint64Range(0, 1<<48).Draw(t, "initial_sequence")
		k := rapid.IntRange(1, 200).Draw(t, "k")
		onChain := rapid.Uint64Range(initial, initial+uint64(k)).Draw(t, "chain_sequence")

		query := &mockmodule.ChainQuery{}
		query.On("ChainID", mock.Anything).Return("nois-testnet-005", nil)
		query.On("Account", mock.Anything, address).Return(unittest.AccountFixture(address, initial), nil).Once()
		cache := NewCache(unittest.Logger(), query, address, metrics.NewNoopCollector())

		_, err := cache.Initialize(context.Background())
		require.NoError(t, err)

		var prev uint64
		for i := 0; i < k; i++ {
			signData, err := cache.Next()
			require.NoError(t, err)
			require.Equal(t, initial+uint64(i), signData.Sequence)
			if i > 0 {
				require.Greater(t, signData.Sequence, prev)
			}
			prev = signData.Sequence
		}
		query.AssertNumberOfCalls(t, "Account", 1)

		query.On("Account", mock.Anything, address).Return(unittest.AccountFixture(address, onChain), nil).Once()
		_, err = cache.Resync(context.Background())
		require.NoError(t, err)

		next, err := cache.Next()
		require.NoError(t, err)
		require.Equal(t, onChain, next.Sequence)
	})
}

func TestUpstreamUnavailableError(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewUpstreamUnavailableError(address, cause)

	require.True(t, IsUpstreamUnavailableError(err))
	require.ErrorIs(t, err, cause)
	require.False(t, IsUpstreamUnavailableError(cause))
	require.Contains(t, err.Error(), address)
}
