package unittest

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/noislabs/drand-relay/model/beacon"
	"github.com/noislabs/drand-relay/model/chain"
)

const (
	// FastnetChainHash is the chain hash of the 3s unchained drand network.
	FastnetChainHash = "dbd506d6ef76e5f386f41c651dcb808c5bcbd75471cc4eafa3f4df7ad4e4c493"
	FastnetGenesis   = 1677685200
	FastnetPeriod    = 3 * time.Second

	// MainnetChainHash is the chain hash of the 30s chained drand network.
	MainnetChainHash = "8990e7a9aaed2ffed73dbd7092123d6f289930540d7651336225dc172e51b2ce"
	MainnetGenesis   = 1595431050
	MainnetPeriod    = 30 * time.Second
)

func RandomBytes(n int) []byte {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return b
}

// RoundFixture returns a round with random signatures.
func RoundFixture(round uint64, opts ...func(*beacon.Round)) *beacon.Round {
	r := &beacon.Round{
		Round:             round,
		Randomness:        RandomBytes(32),
		Signature:         RandomBytes(96),
		PreviousSignature: RandomBytes(96),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// WithoutPreviousSignature makes a round look like one of an unchained beacon.
func WithoutPreviousSignature() func(*beacon.Round) {
	return func(r *beacon.Round) {
		r.PreviousSignature = nil
	}
}

// FastnetChainInfo returns the beacon chain info of the fastnet network.
func FastnetChainInfo() beacon.ChainInfo {
	return beacon.ChainInfo{
		Hash:    FastnetChainHash,
		Genesis: FastnetGenesis,
		Period:  FastnetPeriod,
	}
}

// MainnetChainInfo returns the beacon chain info of the chained mainnet network.
func MainnetChainInfo() beacon.ChainInfo {
	return beacon.ChainInfo{
		Hash:    MainnetChainHash,
		Genesis: MainnetGenesis,
		Period:  MainnetPeriod,
		Chained: true,
	}
}

func SignDataFixture(sequence uint64) chain.SignData {
	return chain.SignData{
		ChainID:       "nois-testnet-005",
		AccountNumber: 42,
		Sequence:      sequence,
	}
}

func AccountFixture(address string, sequence uint64) chain.Account {
	return chain.Account{
		Address:       address,
		AccountNumber: 42,
		Sequence:      sequence,
	}
}

func SubmissionResultFixture(height int64, endpoint string) *chain.SubmissionResult {
	return &chain.SubmissionResult{
		TxHash:    TxHashFixture(),
		Height:    height,
		GasUsed:   431_522,
		GasWanted: 700_000,
		Endpoint:  endpoint,
	}
}

func TxHashFixture() string {
	return fmt.Sprintf("%X", RandomBytes(32))
}

// RoundJSON renders a round the way the drand HTTP API does.
func RoundJSON(r *beacon.Round) string {
	prev := ""
	if len(r.PreviousSignature) > 0 {
		prev = fmt.Sprintf(`,"previous_signature":"%s"`, hex.EncodeToString(r.PreviousSignature))
	}
	return fmt.Sprintf(`{"round":%d,"randomness":"%s","signature":"%s"%s}`,
		r.Round, hex.EncodeToString(r.Randomness), hex.EncodeToString(r.Signature), prev)
}
