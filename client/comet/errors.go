package comet

import (
	"errors"
	"fmt"
	"strings"
)

// RPCError is an error returned by the node's JSON-RPC server.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    string `json:"data"`
}

func (e RPCError) Error() string {
	if e.Data == "" {
		return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("rpc error %d: %s: %s", e.Code, e.Message, e.Data)
}

// IsRPCError returns whether err is an RPCError
func IsRPCError(err error) bool {
	var e RPCError
	return errors.As(err, &e)
}

// isTxNotFound returns true if err is the node's answer to a lookup of an unknown transaction.
func isTxNotFound(err error) bool {
	var e RPCError
	return errors.As(err, &e) && strings.Contains(e.Data, "not found")
}

// ABCIError is a failed ABCI query.
type ABCIError struct {
	Path      string
	Code      uint32
	Codespace string
	Log       string
}

func (e ABCIError) Error() string {
	return fmt.Sprintf("abci query %s failed with code %d (%s): %s", e.Path, e.Code, e.Codespace, e.Log)
}

// codeKeyNotFound is the Cosmos SDK error code for missing state, which the auth module
// returns for accounts that never received funds.
const codeKeyNotFound = 22

// AccountNotFoundError indicates that the chain does not know the account yet.
type AccountNotFoundError struct {
	Address string
}

func (e AccountNotFoundError) Error() string {
	return fmt.Sprintf("account %s does not exist on chain; send funds to it first", e.Address)
}

// IsAccountNotFoundError returns whether err is an AccountNotFoundError
func IsAccountNotFoundError(err error) bool {
	var e AccountNotFoundError
	return errors.As(err, &e)
}
