package comet

import (
	"context"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/noislabs/drand-relay/model/chain"
	"github.com/noislabs/drand-relay/module"
)

var _ module.Broadcaster = (*Client)(nil)

type broadcastResult struct {
	Code      uint32 `json:"code"`
	Log       string `json:"log"`
	Codespace string `json:"codespace"`
	Hash      string `json:"hash"`
}

type txResult struct {
	Hash     string `json:"hash"`
	Height   int64  `json:"height,string"`
	TxResult struct {
		Code      uint32 `json:"code"`
		Log       string `json:"log"`
		GasWanted int64  `json:"gas_wanted,string"`
		GasUsed   int64  `json:"gas_used,string"`
		Codespace string `json:"codespace"`
	} `json:"tx_result"`
}

// BroadcastTx submits tx to the node's mempool and waits until it is included in a block.
// A transaction the mempool rejects is returned with the rejection code and a zero height.
// Expected errors during normal operations:
//   - context errors if ctx expires before the transaction was seen in a block
//   - transport errors if the node could not be reached
func (c *Client) BroadcastTx(ctx context.Context, tx []byte) (*chain.SubmissionResult, error) {
	var sync broadcastResult
	params := map[string]interface{}{"tx": base64.StdEncoding.EncodeToString(tx)}
	// broadcasts are not retried: the node may have accepted the first attempt
	if err := c.call(ctx, "broadcast_tx_sync", params, &sync); err != nil {
		return nil, fmt.Errorf("could not broadcast transaction: %w", err)
	}

	if sync.Code != 0 {
		c.log.Debug().
			Str("tx_hash", sync.Hash).
			Uint32("code", sync.Code).
			Str("log", sync.Log).
			Msg("transaction rejected by mempool")
		return &chain.SubmissionResult{
			TxHash: sync.Hash,
			Code:   sync.Code,
			RawLog: sync.Log,
		}, nil
	}

	return c.waitForTx(ctx, sync.Hash)
}

// waitForTx polls the node until the transaction with the given hash is found in a block.
func (c *Client) waitForTx(ctx context.Context, hash string) (*chain.SubmissionResult, error) {
	hashBytes, err := hex.DecodeString(hash)
	if err != nil {
		return nil, fmt.Errorf("node returned invalid transaction hash %q: %w", hash, err)
	}
	params := map[string]interface{}{
		"hash":  base64.StdEncoding.EncodeToString(hashBytes),
		"prove": false,
	}

	ticker := time.NewTicker(c.cfg.PollInterval)
	defer ticker.Stop()

	var lastErr error
	for {
		var res txResult
		err := c.call(ctx, "tx", params, &res)
		if err == nil {
			return &chain.SubmissionResult{
				TxHash:    strings.ToUpper(hash),
				Height:    res.Height,
				Code:      res.TxResult.Code,
				GasUsed:   res.TxResult.GasUsed,
				GasWanted: res.TxResult.GasWanted,
				RawLog:    res.TxResult.Log,
			}, nil
		}
		if !isTxNotFound(err) {
			// transient; the transaction is in the mempool already, so keep looking
			c.log.Debug().Err(err).Str("tx_hash", hash).Msg("could not look up transaction")
			lastErr = err
		}

		select {
		case <-ctx.Done():
			if lastErr != nil {
				return nil, fmt.Errorf("transaction %s not found in a block before %w (last error: %s)", hash, ctx.Err(), lastErr.Error())
			}
			return nil, fmt.Errorf("transaction %s not found in a block: %w", hash, ctx.Err())
		case <-ticker.C:
		}
	}
}
