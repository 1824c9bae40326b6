package chain

import "fmt"

// SubmissionResult is the outcome of a broadcast transaction. Height is zero for transactions
// the node rejected before they could be included in a block.
type SubmissionResult struct {
	TxHash    string
	Height    int64
	Code      uint32
	GasUsed   int64
	GasWanted int64
	RawLog    string

	// Endpoint identifies the broadcast endpoint that delivered this result.
	Endpoint string
}

// Succeeded returns true if the transaction executed without error.
func (r *SubmissionResult) Succeeded() bool {
	return r.Code == 0
}

// Err returns an error describing the failed execution, or nil if the transaction succeeded.
func (r *SubmissionResult) Err() error {
	if r.Succeeded() {
		return nil
	}
	return fmt.Errorf("transaction %s failed with code %d: %s", r.TxHash, r.Code, r.RawLog)
}
