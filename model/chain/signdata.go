package chain

import "fmt"

// Account is the authoritative account state as reported by the chain.
type Account struct {
	Address       string
	AccountNumber uint64
	Sequence      uint64
}

// SignData is everything a signer needs besides the key to produce a valid transaction
// for the submitting account.
type SignData struct {
	ChainID       string
	AccountNumber uint64
	Sequence      uint64
}

func (s SignData) String() string {
	return fmt.Sprintf("chain=%s account=%d sequence=%d", s.ChainID, s.AccountNumber, s.Sequence)
}
