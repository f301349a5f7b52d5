// Package address maps between human-readable addresses and the locking
// scripts that pay to them.
package address

import (
	"bytes"
	"fmt"

	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"

	"github.com/bitfsorg/libtrade-go/hashing"
	"github.com/bitfsorg/libtrade-go/script"
)

// Type is the kind of hash an address commits to.
type Type byte

const (
	// PubKeyHash addresses pay to the hash160 of a public key.
	PubKeyHash Type = 0

	// ScriptHash addresses pay to the hash160 of a redeem script.
	ScriptHash Type = 1
)

func (t Type) String() string {
	switch t {
	case PubKeyHash:
		return "pubkeyhash"
	case ScriptHash:
		return "scripthash"
	}
	return fmt.Sprintf("unknown(%d)", byte(t))
}

// Well-known cashaddr prefixes.
const (
	MainnetPrefix      = "bitcoincash"
	TestnetPrefix      = "bchtest"
	RegtestPrefix      = "bchreg"
	SimpleLedgerPrefix = "simpleledger"
)

// Address is a typed hash under a network prefix.
type Address struct {
	Prefix string
	Type   Type
	Hash   []byte
}

// FromPubKeyHash returns the pay-to-key-hash address of hash.
func FromPubKeyHash(hash []byte, prefix string) (Address, error) {
	if len(hash) != script.PubKeyHashLen {
		return Address{}, fmt.Errorf("%w: key hash length %d", ErrInvalidAddress, len(hash))
	}
	return Address{Prefix: prefix, Type: PubKeyHash, Hash: bytes.Clone(hash)}, nil
}

// FromPubKey returns the pay-to-key-hash address of the compressed pub.
func FromPubKey(pub *ec.PublicKey, prefix string) Address {
	return Address{Prefix: prefix, Type: PubKeyHash, Hash: hashing.Hash160(pub.Compressed())}
}

// CashAddr returns the prefixed cashaddr encoding, or the empty string if
// the address cannot be encoded.
func (a Address) CashAddr() string {
	s, err := EncodeCashAddr(a.Prefix, a.Type, a.Hash)
	if err != nil {
		return ""
	}
	return s
}

func (a Address) String() string {
	return a.CashAddr()
}

// IsSimpleLedger reports whether the address uses the token-aware prefix.
func (a Address) IsSimpleLedger() bool {
	return a.Prefix == SimpleLedgerPrefix
}

// Equal reports whether two addresses have the same prefix, type and hash.
func (a Address) Equal(b Address) bool {
	return a.Prefix == b.Prefix && a.Type == b.Type && bytes.Equal(a.Hash, b.Hash)
}

// LockingScript returns the script that pays to a.
func (a Address) LockingScript() (script.Script, error) {
	return LockingScriptFor(a)
}

// LockingScriptFor dispatches on the address type. Only pay-to-key-hash is
// supported.
func LockingScriptFor(a Address) (script.Script, error) {
	switch a.Type {
	case PubKeyHash:
		if len(a.Hash) != script.PubKeyHashLen {
			return nil, fmt.Errorf("%w: key hash length %d", ErrInvalidAddress, len(a.Hash))
		}
		return script.PayToKeyHashLock(a.Hash)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedAddressType, a.Type)
}

// FromLockingScript recovers the address a pay-to-key-hash script pays to.
func FromLockingScript(s script.Script, prefix string) (Address, error) {
	hash, ok := script.ExtractKeyHash(s)
	if !ok {
		return Address{}, fmt.Errorf("%w: script %s", ErrUnsupportedAddressType, s)
	}
	return FromPubKeyHash(hash, prefix)
}

// Decode parses a cashaddr, with or without its prefix, or a legacy base58
// address. Prefixless cashaddrs and testnet legacy addresses take
// defaultPrefix.
func Decode(s, defaultPrefix string) (Address, error) {
	a, cashErr := DecodeCashAddr(s, defaultPrefix)
	if cashErr == nil {
		return a, nil
	}
	a, legacyErr := DecodeLegacy(s, defaultPrefix)
	if legacyErr == nil {
		return a, nil
	}
	return Address{}, fmt.Errorf("%w: %q is neither cashaddr (%v) nor legacy (%v)",
		ErrInvalidAddress, s, cashErr, legacyErr)
}

// DecodeFor is Decode that also requires the network prefix to match.
func DecodeFor(s, prefix string) (Address, error) {
	a, err := Decode(s, prefix)
	if err != nil {
		return Address{}, err
	}
	if a.Prefix != prefix && a.Prefix != SimpleLedgerPrefix {
		return Address{}, fmt.Errorf("%w: %s, want %s", ErrPrefixMismatch, a.Prefix, prefix)
	}
	return a, nil
}
