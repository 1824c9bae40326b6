package relay

import (
	"encoding/json"
	"fmt"

	"github.com/noislabs/drand-relay/model/beacon"
)

// addRoundMsg is the contract call inserting one beacon round.
type addRoundMsg struct {
	AddRound addRound `json:"add_round"`
}

type addRound struct {
	Round             uint64 `json:"round"`
	Signature         string `json:"signature"`
	PreviousSignature string `json:"previous_signature,omitempty"`
}

// registerBotMsg is the contract call registering the bot under a moniker.
type registerBotMsg struct {
	RegisterBot registerBot `json:"register_bot"`
}

type registerBot struct {
	Moniker string `json:"moniker"`
}

// addRoundPayload encodes the add_round call for round. The previous signature is only sent for
// chained beacons, the contract rejects it otherwise.
func addRoundPayload(round *beacon.Round, chained bool) ([]byte, error) {
	msg := addRoundMsg{
		AddRound: addRound{
			Round:     round.Round,
			Signature: round.SignatureHex(),
		},
	}
	if chained {
		msg.AddRound.PreviousSignature = round.PreviousSignatureHex()
	}
	return json.Marshal(msg)
}

func registerBotPayload(moniker string) ([]byte, error) {
	return json.Marshal(registerBotMsg{RegisterBot: registerBot{Moniker: moniker}})
}

func addRoundMemo(round uint64) string {
	return fmt.Sprintf("Insert randomness round: %d", round)
}
