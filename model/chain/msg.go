package chain

// ExecuteContractTypeURL is the Any type URL of a CosmWasm execute message.
const ExecuteContractTypeURL = "/cosmwasm.wasm.v1.MsgExecuteContract"

// ExecuteContract is a CosmWasm MsgExecuteContract. Msg holds the JSON encoded contract call.
type ExecuteContract struct {
	Sender   string
	Contract string
	Msg      []byte
	Funds    []Coin
}
