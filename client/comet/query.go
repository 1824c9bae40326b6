package comet

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/noislabs/drand-relay/model/chain"
	"github.com/noislabs/drand-relay/model/encoding"
	"github.com/noislabs/drand-relay/module"
)

const (
	accountQueryPath = "/cosmos.auth.v1beta1.Query/Account"
	balanceQueryPath = "/cosmos.bank.v1beta1.Query/Balance"
)

var _ module.ChainQuery = (*Client)(nil)

type statusResult struct {
	NodeInfo struct {
		Network string `json:"network"`
		Moniker string `json:"moniker"`
		Version string `json:"version"`
	} `json:"node_info"`
	SyncInfo struct {
		LatestBlockHeight int64     `json:"latest_block_height,string"`
		LatestBlockTime   time.Time `json:"latest_block_time"`
		CatchingUp        bool      `json:"catching_up"`
	} `json:"sync_info"`
}

type blockResult struct {
	Block struct {
		Header struct {
			ChainID string    `json:"chain_id"`
			Height  int64     `json:"height,string"`
			Time    time.Time `json:"time"`
		} `json:"header"`
	} `json:"block"`
}

type abciQueryResult struct {
	Response struct {
		Code      uint32 `json:"code"`
		Log       string `json:"log"`
		Value     []byte `json:"value"`
		Height    int64  `json:"height,string"`
		Codespace string `json:"codespace"`
	} `json:"response"`
}

// Status is the part of the node status the relay cares about.
type Status struct {
	ChainID           string
	Moniker           string
	LatestBlockHeight int64
	LatestBlockTime   time.Time
	CatchingUp        bool
}

// Status returns the node's view of the chain.
func (c *Client) Status(ctx context.Context) (Status, error) {
	var res statusResult
	if err := c.query(ctx, "status", nil, &res); err != nil {
		return Status{}, fmt.Errorf("could not get node status: %w", err)
	}
	return Status{
		ChainID:           res.NodeInfo.Network,
		Moniker:           res.NodeInfo.Moniker,
		LatestBlockHeight: res.SyncInfo.LatestBlockHeight,
		LatestBlockTime:   res.SyncInfo.LatestBlockTime,
		CatchingUp:        res.SyncInfo.CatchingUp,
	}, nil
}

// ChainID returns the chain id reported by the node.
func (c *Client) ChainID(ctx context.Context) (string, error) {
	status, err := c.Status(ctx)
	if err != nil {
		return "", err
	}
	if status.ChainID == "" {
		return "", fmt.Errorf("node reported an empty chain id")
	}
	return status.ChainID, nil
}

// BlockTime returns the header time of the block at height.
func (c *Client) BlockTime(ctx context.Context, height int64) (time.Time, error) {
	var res blockResult
	params := map[string]interface{}{"height": strconv.FormatInt(height, 10)}
	if err := c.query(ctx, "block", params, &res); err != nil {
		return time.Time{}, fmt.Errorf("could not get block %d: %w", height, err)
	}
	if res.Block.Header.Time.IsZero() {
		return time.Time{}, fmt.Errorf("block %d has no header time", height)
	}
	return res.Block.Header.Time, nil
}

// Account returns account number and sequence of address.
// Expected errors during normal operations:
//   - AccountNotFoundError if the account does not exist on chain yet
func (c *Client) Account(ctx context.Context, address string) (chain.Account, error) {
	// QueryAccountRequest{address}
	req := encoding.NewMessage().String(1, address)
	value, err := c.abciQuery(ctx, accountQueryPath, req.Encode())
	if err != nil {
		var abciErr ABCIError
		if errors.As(err, &abciErr) && abciErr.Code == codeKeyNotFound {
			return chain.Account{}, AccountNotFoundError{Address: address}
		}
		return chain.Account{}, fmt.Errorf("could not query account %s: %w", address, err)
	}

	// QueryAccountResponse{account: Any}
	fields, err := encoding.Decode(value)
	if err != nil {
		return chain.Account{}, fmt.Errorf("could not decode account response: %w", err)
	}
	typeURL, accountValue, err := fields.Any(1)
	if err != nil {
		return chain.Account{}, fmt.Errorf("could not decode account response: %w", err)
	}
	account, err := decodeBaseAccount(typeURL, accountValue)
	if err != nil {
		return chain.Account{}, fmt.Errorf("could not decode account %s: %w", address, err)
	}
	if account.Address != "" && account.Address != address {
		return chain.Account{}, fmt.Errorf("node returned account %s for %s", account.Address, address)
	}
	account.Address = address
	return account, nil
}

// baseAccountDepth is the nesting level of the BaseAccount within the known account types.
// Every wrapping type holds its inner account as field 1.
var baseAccountDepth = map[string]int{
	"/cosmos.auth.v1beta1.BaseAccount":                 0,
	"/cosmos.auth.v1beta1.ModuleAccount":               1,
	"/cosmos.vesting.v1beta1.BaseVestingAccount":       1,
	"/cosmos.vesting.v1beta1.ContinuousVestingAccount": 2,
	"/cosmos.vesting.v1beta1.DelayedVestingAccount":    2,
	"/cosmos.vesting.v1beta1.PeriodicVestingAccount":   2,
	"/cosmos.vesting.v1beta1.PermanentLockedAccount":   2,
}

func decodeBaseAccount(typeURL string, value []byte) (chain.Account, error) {
	depth, ok := baseAccountDepth[typeURL]
	if !ok {
		return chain.Account{}, fmt.Errorf("unsupported account type %s", typeURL)
	}
	fields, err := encoding.Decode(value)
	if err != nil {
		return chain.Account{}, err
	}
	for i := 0; i < depth; i++ {
		fields, err = fields.Embedded(1)
		if err != nil {
			return chain.Account{}, err
		}
	}

	// BaseAccount{address, pub_key, account_number, sequence}
	return chain.Account{
		Address:       fields.String(1),
		AccountNumber: fields.Uint64(3),
		Sequence:      fields.Uint64(4),
	}, nil
}

// Balance returns the balance of address in denom.
func (c *Client) Balance(ctx context.Context, address string, denom string) (chain.Coin, error) {
	// QueryBalanceRequest{address, denom}
	req := encoding.NewMessage().String(1, address).String(2, denom)
	value, err := c.abciQuery(ctx, balanceQueryPath, req.Encode())
	if err != nil {
		return chain.Coin{}, fmt.Errorf("could not query balance of %s: %w", address, err)
	}

	// QueryBalanceResponse{balance: Coin{denom, amount}}
	fields, err := encoding.Decode(value)
	if err != nil {
		return chain.Coin{}, fmt.Errorf("could not decode balance response: %w", err)
	}
	coin, err := fields.Embedded(1)
	if err != nil {
		return chain.Coin{}, fmt.Errorf("could not decode balance response: %w", err)
	}
	amount := coin.String(2)
	if amount == "" {
		amount = "0"
	}
	return chain.Coin{Denom: denom, Amount: amount}, nil
}

func (c *Client) abciQuery(ctx context.Context, path string, data []byte) ([]byte, error) {
	params := map[string]interface{}{
		"path":  path,
		"data":  strings.ToUpper(hex.EncodeToString(data)),
		"prove": false,
	}
	var res abciQueryResult
	if err := c.query(ctx, "abci_query", params, &res); err != nil {
		return nil, err
	}
	if res.Response.Code != 0 {
		return nil, ABCIError{
			Path:      path,
			Code:      res.Response.Code,
			Codespace: res.Response.Codespace,
			Log:       res.Response.Log,
		}
	}
	return res.Response.Value, nil
}
