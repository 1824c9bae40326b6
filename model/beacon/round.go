package beacon

import (
	"encoding/hex"
	"fmt"
)

// Round is a single output of a drand beacon chain. Rounds are numbered from 1 and are
// immutable once published.
type Round struct {
	Round             uint64
	Randomness        []byte
	Signature         []byte
	PreviousSignature []byte // empty for unchained beacon chains
}

// SignatureHex returns the hex encoding of the round signature as expected by the contract.
func (r *Round) SignatureHex() string {
	return hex.EncodeToString(r.Signature)
}

// PreviousSignatureHex returns the hex encoding of the previous signature, or the empty
// string if the round has none.
func (r *Round) PreviousSignatureHex() string {
	return hex.EncodeToString(r.PreviousSignature)
}

func (r *Round) String() string {
	return fmt.Sprintf("round %d", r.Round)
}
