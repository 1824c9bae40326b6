package relay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noislabs/drand-relay/model/beacon"
)

func testRound() *beacon.Round {
	return &beacon.Round{
		Round:             100,
		Signature:         []byte{0xab, 0xcd},
		PreviousSignature: []byte{0x01, 0x02},
	}
}

func TestAddRoundPayload(t *testing.T) {
	t.Run("unchained", func(t *testing.T) {
		payload, err := addRoundPayload(testRound(), false)
		require.NoError(t, err)
		assert.Equal(t, `{"add_round":{"round":100,"signature":"abcd"}}`, string(payload))
	})

	t.Run("chained", func(t *testing.T) {
		payload, err := addRoundPayload(testRound(), true)
		require.NoError(t, err)
		assert.Equal(t, `{"add_round":{"round":100,"signature":"abcd","previous_signature":"0102"}}`, string(payload))
	})

	t.Run("chained without previous signature", func(t *testing.T) {
		round := testRound()
		round.PreviousSignature = nil
		payload, err := addRoundPayload(round, true)
		require.NoError(t, err)
		assert.Equal(t, `{"add_round":{"round":100,"signature":"abcd"}}`, string(payload))
	})
}

func TestRegisterBotPayload(t *testing.T) {
	payload, err := registerBotPayload(`bot "one"`)
	require.NoError(t, err)
	assert.Equal(t, `{"register_bot":{"moniker":"bot \"one\""}}`, string(payload))
}

func TestAddRoundMemo(t *testing.T) {
	assert.Equal(t, "Insert randomness round: 2219943", addRoundMemo(2219943))
}
