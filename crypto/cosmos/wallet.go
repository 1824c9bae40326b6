// Package cosmos holds the relay account: an HD derived secp256k1 key, its bech32 address,
// and SIGN_MODE_DIRECT transaction signing.
package cosmos

import (
	"crypto/sha256"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/tyler-smith/go-bip32"
	"github.com/tyler-smith/go-bip39"
	"golang.org/x/crypto/ripemd160" //nolint:staticcheck // Cosmos addresses are defined over ripemd160
)

// coinType is the SLIP-44 coin type of the Cosmos Hub, used by Cosmos SDK chains by default.
const coinType = 118

// Wallet is the key pair of the relay account, derived from a mnemonic along m/44'/118'/0'/0/0.
type Wallet struct {
	mnemonic string
	priv     *btcec.PrivateKey
	pub      []byte // compressed
	address  string
}

// GenerateMnemonic returns a fresh 12 word mnemonic.
func GenerateMnemonic() (string, error) {
	entropy, err := bip39.NewEntropy(128)
	if err != nil {
		return "", fmt.Errorf("could not generate entropy: %w", err)
	}
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", fmt.Errorf("could not generate mnemonic: %w", err)
	}
	return mnemonic, nil
}

// NewWallet derives the account key from mnemonic. prefix is the bech32 prefix of the chain's
// account addresses, e.g. "nois".
func NewWallet(mnemonic string, prefix string) (*Wallet, error) {
	mnemonic = strings.Join(strings.Fields(mnemonic), " ")
	if !bip39.IsMnemonicValid(mnemonic) {
		return nil, fmt.Errorf("invalid mnemonic")
	}
	if prefix == "" {
		return nil, fmt.Errorf("address prefix is required")
	}

	seed := bip39.NewSeed(mnemonic, "")
	key, err := bip32.NewMasterKey(seed)
	if err != nil {
		return nil, fmt.Errorf("could not derive master key: %w", err)
	}
	path := []uint32{
		bip32.FirstHardenedChild + 44,
		bip32.FirstHardenedChild + coinType,
		bip32.FirstHardenedChild + 0,
		0,
		0,
	}
	for _, index := range path {
		key, err = key.NewChildKey(index)
		if err != nil {
			return nil, fmt.Errorf("could not derive child key %d: %w", index, err)
		}
	}

	priv, pub := btcec.PrivKeyFromBytes(key.Key)
	compressed := pub.SerializeCompressed()
	address, err := Address(prefix, compressed)
	if err != nil {
		return nil, err
	}

	return &Wallet{
		mnemonic: mnemonic,
		priv:     priv,
		pub:      compressed,
		address:  address,
	}, nil
}

// Address returns the bech32 account address of a compressed secp256k1 public key.
func Address(prefix string, compressedPubKey []byte) (string, error) {
	sha := sha256.Sum256(compressedPubKey)
	hasher := ripemd160.New()
	hasher.Write(sha[:])
	converted, err := bech32.ConvertBits(hasher.Sum(nil), 8, 5, true)
	if err != nil {
		return "", fmt.Errorf("could not convert address bits: %w", err)
	}
	address, err := bech32.Encode(prefix, converted)
	if err != nil {
		return "", fmt.Errorf("could not encode address: %w", err)
	}
	return address, nil
}

// Address returns the bech32 address of the account.
func (w *Wallet) Address() string {
	return w.address
}

// PubKey returns the compressed public key.
func (w *Wallet) PubKey() []byte {
	return w.pub
}

// Mnemonic returns the mnemonic the wallet was derived from.
func (w *Wallet) Mnemonic() string {
	return w.mnemonic
}
