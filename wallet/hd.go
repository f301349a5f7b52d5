package wallet

import (
	"encoding/binary"
	"fmt"

	bip32 "github.com/bsv-blockchain/go-sdk/compat/bip32"
	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	chaincfg "github.com/bsv-blockchain/go-sdk/transaction/chaincfg"
)

const (
	// BIP44 path constants.
	PurposeBIP44 = 44
	CoinTypeBCH  = 145
	TradeAccount = 0

	// TradeChain holds one key per trade, next to the external (0) and
	// internal (1) chains.
	TradeChain = 2

	// BIP32 hardened offset.
	Hardened = 0x80000000
)

// TradeKeyIndex maps an offer id to its child index on the trade chain:
// the first four bytes, big-endian, with the hardened bit cleared.
func TradeKeyIndex(offerID []byte) (uint32, error) {
	if len(offerID) < 4 {
		return 0, fmt.Errorf("%w: %d bytes", ErrInvalidOfferID, len(offerID))
	}
	return binary.BigEndian.Uint32(offerID) &^ Hardened, nil
}

// TradeKey derives the key the wallet uses for the trade with offerID.
//
//	Path: m/44'/145'/0'/2/index
//
// The same offer id always yields the same key, so a refund can be signed
// from the published offer alone.
func (w *Wallet) TradeKey(offerID []byte) (*ec.PrivateKey, error) {
	if w.secret == nil {
		return nil, ErrClosed
	}
	index, err := TradeKeyIndex(offerID)
	if err != nil {
		return nil, err
	}

	net := &chaincfg.TestNet
	if w.params.Name == MainNet.Name {
		net = &chaincfg.MainNet
	}
	master, err := bip32.NewMaster(w.secret, net)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDerivationFailed, err)
	}

	key := master
	for _, step := range []struct {
		name  string
		child uint32
	}{
		{"purpose", PurposeBIP44 + Hardened},
		{"coin type", CoinTypeBCH + Hardened},
		{"account", TradeAccount + Hardened},
		{"chain", TradeChain},
		{"index", index},
	} {
		if key, err = key.Child(step.child); err != nil {
			return nil, fmt.Errorf("%w: %s derivation: %w", ErrDerivationFailed, step.name, err)
		}
	}

	priv, err := key.ECPrivKey()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to extract EC private key: %w", ErrDerivationFailed, err)
	}
	return priv, nil
}
