package beacon

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestChainInfo_Validate(t *testing.T) {
	valid := ChainInfo{
		Hash:    "dbd506d6ef76e5f386f41c651dcb808c5bcbd75471cc4eafa3f4df7ad4e4c493",
		Genesis: 1677685200,
		Period:  3 * time.Second,
	}
	assert.NoError(t, valid.Validate())

	missingHash := valid
	missingHash.Hash = ""
	assert.Error(t, missingHash.Validate())

	notHex := valid
	notHex.Hash = "xyz"
	assert.Error(t, notHex.Validate())

	noGenesis := valid
	noGenesis.Genesis = 0
	assert.Error(t, noGenesis.Validate())

	shortPeriod := valid
	shortPeriod.Period = 500 * time.Millisecond
	assert.Error(t, shortPeriod.Validate())
}

func TestRound_Hex(t *testing.T) {
	r := &Round{Round: 7, Signature: []byte{0xde, 0xad}, PreviousSignature: nil}
	assert.Equal(t, "dead", r.SignatureHex())
	assert.Equal(t, "", r.PreviousSignatureHex())
	assert.Equal(t, "round 7", r.String())
}
