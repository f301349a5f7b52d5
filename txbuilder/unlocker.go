package txbuilder

import (
	"bytes"
	"fmt"

	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"

	"github.com/bitfsorg/libtrade-go/hashing"
	"github.com/bitfsorg/libtrade-go/script"
	"github.com/bitfsorg/libtrade-go/sighash"
	"github.com/bitfsorg/libtrade-go/tx"
)

// P2PKHUnlockLen is the largest pay-to-key-hash unlocking script: a push of
// a 71-byte low-S DER signature plus its flag byte, and a push of a
// compressed public key.
const P2PKHUnlockLen = 1 + 72 + 1 + 33

// Unlocker produces the unlocking script for one input of an otherwise
// complete transaction.
type Unlocker interface {
	// Unlock returns the unlocking script for input idx of t, which spends
	// prev.
	Unlock(t *tx.Transaction, idx int, prev tx.Output) (script.Script, error)

	// EstimateLength returns an upper bound on the unlocking script size.
	EstimateLength() int
}

// P2PKHUnlocker signs pay-to-key-hash outputs owned by Key.
type P2PKHUnlocker struct {
	Key   *ec.PrivateKey
	Flags sighash.Flag
}

// NewP2PKHUnlocker returns an unlocker signing with SIGHASH_ALL|FORKID.
func NewP2PKHUnlocker(key *ec.PrivateKey) *P2PKHUnlocker {
	return &P2PKHUnlocker{Key: key, Flags: sighash.AllForkID}
}

// Unlock implements Unlocker.
func (u *P2PKHUnlocker) Unlock(t *tx.Transaction, idx int, prev tx.Output) (script.Script, error) {
	if u.Key == nil {
		return nil, sighash.ErrNilKey
	}
	pub := u.Key.PubKey().Compressed()

	want, ok := script.ExtractKeyHash(prev.LockScript)
	if !ok {
		return nil, fmt.Errorf("%w: input %d is not pay-to-key-hash", ErrKeyMismatch, idx)
	}
	if !bytes.Equal(want, hashing.Hash160(pub)) {
		return nil, fmt.Errorf("%w: input %d", ErrKeyMismatch, idx)
	}

	flags := u.Flags
	if flags == 0 {
		flags = sighash.AllForkID
	}
	sig, err := sighash.SignInput(u.Key, t, idx, prev.LockScript, prev.Value, flags)
	if err != nil {
		return nil, err
	}
	return script.PayToKeyHashUnlock(sig, pub)
}

// EstimateLength implements Unlocker.
func (u *P2PKHUnlocker) EstimateLength() int {
	return P2PKHUnlockLen
}
