package beacon

import (
	"encoding/hex"
	"fmt"
	"time"
)

// ChainInfo binds the relay to one specific drand chain. Genesis and Period differ between
// chains (mainnet: 1595431050/30s, fastnet: 1677685200/3s), so they are always configured
// explicitly.
type ChainInfo struct {
	Hash    string        // hex encoded chain hash
	Genesis int64         // unix seconds of round 1
	Period  time.Duration // round length
	// Chained is true for beacon chains whose rounds are linked through the previous signature.
	// The contract expects previous_signature only for such chains.
	Chained bool
}

// Validate checks that the chain info is complete.
func (c ChainInfo) Validate() error {
	if c.Hash == "" {
		return fmt.Errorf("chain hash must be set")
	}
	if _, err := hex.DecodeString(c.Hash); err != nil {
		return fmt.Errorf("chain hash %q is not hex: %w", c.Hash, err)
	}
	if c.Genesis <= 0 {
		return fmt.Errorf("genesis time must be positive, got %d", c.Genesis)
	}
	if c.Period < time.Second {
		return fmt.Errorf("round period must be at least one second, got %s", c.Period)
	}
	return nil
}
