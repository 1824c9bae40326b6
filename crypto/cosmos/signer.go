package cosmos

import (
	"context"
	"crypto/sha256"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2/ecdsa"

	"github.com/noislabs/drand-relay/model/chain"
	"github.com/noislabs/drand-relay/model/encoding"
	"github.com/noislabs/drand-relay/module"
)

const (
	secp256k1PubKeyTypeURL = "/cosmos.crypto.secp256k1.PubKey"

	// signModeDirect is SIGN_MODE_DIRECT of cosmos.tx.signing.v1beta1.SignMode.
	signModeDirect = 1
)

// Signer signs transactions with the wallet key using SIGN_MODE_DIRECT.
type Signer struct {
	wallet *Wallet
}

var _ module.TxSigner = (*Signer)(nil)

func NewSigner(wallet *Wallet) *Signer {
	return &Signer{wallet: wallet}
}

func (s *Signer) Address() string {
	return s.wallet.Address()
}

// Sign returns the encoded TxRaw of msgs. Every message must be sent by the wallet's account.
func (s *Signer) Sign(_ context.Context, msgs []chain.ExecuteContract, fee chain.Fee, memo string, signData chain.SignData) ([]byte, error) {
	if len(msgs) == 0 {
		return nil, fmt.Errorf("transaction has no messages")
	}
	if signData.ChainID == "" {
		return nil, fmt.Errorf("chain id is required for signing")
	}
	for _, msg := range msgs {
		if msg.Sender != s.wallet.Address() {
			return nil, fmt.Errorf("message sender %s does not match signer %s", msg.Sender, s.wallet.Address())
		}
	}

	bodyBytes := encodeTxBody(msgs, memo)
	authInfoBytes := s.encodeAuthInfo(fee, signData.Sequence)

	// SignDoc{body_bytes, auth_info_bytes, chain_id, account_number}
	signDoc := encoding.NewMessage().
		Bytes(1, bodyBytes).
		Bytes(2, authInfoBytes).
		String(3, signData.ChainID).
		Uint64(4, signData.AccountNumber)

	signature, err := s.sign(signDoc.Encode())
	if err != nil {
		return nil, err
	}

	// TxRaw{body_bytes, auth_info_bytes, signatures}
	txRaw := encoding.NewMessage().
		Bytes(1, bodyBytes).
		Bytes(2, authInfoBytes).
		Bytes(3, signature)
	return txRaw.Encode(), nil
}

// sign returns the 64 byte r||s signature over the sha256 digest of msg, with a low S value
// as the Cosmos SDK requires.
func (s *Signer) sign(msg []byte) ([]byte, error) {
	digest := sha256.Sum256(msg)
	compact, err := ecdsa.SignCompact(s.wallet.priv, digest[:], true)
	if err != nil {
		return nil, fmt.Errorf("could not sign transaction: %w", err)
	}
	// drop the recovery byte
	return compact[1:], nil
}

func encodeTxBody(msgs []chain.ExecuteContract, memo string) []byte {
	// TxBody{messages, memo, timeout_height}
	body := encoding.NewMessage()
	for _, msg := range msgs {
		body.Any(1, chain.ExecuteContractTypeURL, encodeExecuteContract(msg))
	}
	body.String(2, memo)
	return body.Encode()
}

func encodeExecuteContract(msg chain.ExecuteContract) *encoding.Message {
	// MsgExecuteContract{sender, contract, msg, funds}
	m := encoding.NewMessage().
		String(1, msg.Sender).
		String(2, msg.Contract).
		Bytes(3, msg.Msg)
	for _, coin := range msg.Funds {
		m.Embedded(5, encodeCoin(coin))
	}
	return m
}

func encodeCoin(coin chain.Coin) *encoding.Message {
	return encoding.NewMessage().String(1, coin.Denom).String(2, coin.Amount)
}

func (s *Signer) encodeAuthInfo(fee chain.Fee, sequence uint64) []byte {
	pubKey := encoding.NewMessage().Bytes(1, s.wallet.PubKey())
	single := encoding.NewMessage().Uint64(1, signModeDirect)
	modeInfo := encoding.NewMessage().Embedded(1, single)

	// SignerInfo{public_key, mode_info, sequence}
	signerInfo := encoding.NewMessage().
		Any(1, secp256k1PubKeyTypeURL, pubKey).
		Embedded(2, modeInfo).
		Uint64(3, sequence)

	// Fee{amount, gas_limit}
	feeMsg := encoding.NewMessage()
	for _, coin := range fee.Amount {
		feeMsg.Embedded(1, encodeCoin(coin))
	}
	feeMsg.Uint64(2, fee.GasLimit)

	// AuthInfo{signer_infos, fee}
	return encoding.NewMessage().
		Embedded(1, signerInfo).
		Embedded(2, feeMsg).
		Encode()
}
