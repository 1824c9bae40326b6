package relay

import (
	"fmt"
	"time"

	"github.com/noislabs/drand-relay/model/chain"
)

const (
	DefaultGasLimit          = 700_000
	DefaultBalanceCheckDelay = 5 * time.Second
)

// Config is the configuration of the relay engine.
type Config struct {
	Contract string         // address of the drand contract
	GasLimit uint64         // gas limit of every transaction
	GasPrice chain.GasPrice // fee is ceil(GasLimit * GasPrice)
	Denom    string         // denom whose balance is checked after submissions
	Chained  bool           // whether the contract expects previous signatures
	Moniker  string         // register the bot under this moniker at startup, skipped when empty

	// BalanceCheckDelay is the time between a successful submission and the balance check.
	BalanceCheckDelay time.Duration
}

func (c Config) Validate() error {
	if c.Contract == "" {
		return fmt.Errorf("contract address must be set")
	}
	if c.GasLimit == 0 {
		return fmt.Errorf("gas limit must be positive")
	}
	if c.GasPrice.Amount == nil || c.GasPrice.Denom == "" {
		return fmt.Errorf("gas price must be set")
	}
	if c.GasPrice.Amount.Sign() < 0 {
		return fmt.Errorf("gas price must not be negative")
	}
	if c.Denom == "" {
		return fmt.Errorf("denom must be set")
	}
	if c.BalanceCheckDelay < 0 {
		return fmt.Errorf("balance check delay must not be negative")
	}
	return nil
}
