package module

import (
	"context"
	"time"

	"github.com/noislabs/drand-relay/model/chain"
)

// ChainQuery is the authoritative, read-only view of the target chain.
type ChainQuery interface {
	// ChainID returns the chain id the node reports.
	ChainID(ctx context.Context) (string, error)

	// Account returns the account number and current sequence of the given address.
	Account(ctx context.Context, address string) (chain.Account, error)

	// BlockTime returns the header time of the block at the given height.
	BlockTime(ctx context.Context, height int64) (time.Time, error)

	// Balance returns the balance of address in the given denom.
	Balance(ctx context.Context, address string, denom string) (chain.Coin, error)
}

// Broadcaster submits signed transactions to one network entry point.
type Broadcaster interface {
	// BroadcastTx submits the signed transaction bytes and waits until it is included in a block.
	// Transactions rejected by the node or failing during execution are reported through the
	// result code. Errors are reserved for failing to reach the node or to observe the result.
	BroadcastTx(ctx context.Context, tx []byte) (*chain.SubmissionResult, error)
}

// TxSigner signs transactions on behalf of a single account.
type TxSigner interface {
	// Address returns the bech32 address of the signing account.
	Address() string

	// Sign produces the encoded, signed transaction. signData must carry the account's
	// current sequence, otherwise the chain rejects the transaction.
	Sign(ctx context.Context, msgs []chain.ExecuteContract, fee chain.Fee, memo string, signData chain.SignData) ([]byte, error)
}
