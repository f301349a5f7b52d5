package trade

import (
	"bytes"
	"fmt"

	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"

	"github.com/bitfsorg/libtrade-go/hashing"
	"github.com/bitfsorg/libtrade-go/script"
	"github.com/bitfsorg/libtrade-go/sighash"
	"github.com/bitfsorg/libtrade-go/tx"
	"github.com/bitfsorg/libtrade-go/txbuilder"
)

// claimUnlocker spends a contract through its hash-lock branch:
// <sig> <pubkey> <secret> OP_1.
type claimUnlocker struct {
	key    *ec.PrivateKey
	secret []byte
}

func (u *claimUnlocker) Unlock(t *tx.Transaction, idx int, prev tx.Output) (script.Script, error) {
	sig, err := sighash.SignInput(u.key, t, idx, prev.LockScript, prev.Value, sighash.AllForkID)
	if err != nil {
		return nil, err
	}
	return script.NewBuilder().
		AddData(sig).
		AddData(u.key.PubKey().Compressed()).
		AddData(u.secret).
		AddOp(script.Op1).
		Script()
}

func (u *claimUnlocker) EstimateLength() int {
	op, err := script.PushOp(u.secret)
	if err != nil {
		return txbuilder.P2PKHUnlockLen + 1
	}
	return txbuilder.P2PKHUnlockLen + op.EncodeSize() + 1
}

// ClaimParams holds what the seller needs to take the contract coins.
type ClaimParams struct {
	Key      *ec.PrivateKey
	Contract tx.UTXO
	Secret   []byte
	PayTo    script.Script
	Dust     uint64 // 0 means tx.DustThreshold
}

// BuildClaim returns a signed transaction spending the contract to PayTo by
// revealing the secret. The fee comes out of the contract value.
func BuildClaim(p *ClaimParams) (*tx.Transaction, error) {
	if p == nil || p.Key == nil {
		return nil, fmt.Errorf("%w: nil params or key", ErrInvalidParams)
	}
	want, err := ExtractSecretHash(p.Contract.Output.LockScript)
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(hashing.Sha256(p.Secret), want) {
		return nil, fmt.Errorf("%w: secret does not match contract hash", ErrInvalidParams)
	}

	b := txbuilder.New()
	if p.Dust != 0 {
		b.SetDustThreshold(p.Dust)
	}
	b.AddInputWithUnlocker(p.Contract.OutPoint, p.Contract.Value(), p.Contract.Output.LockScript,
		&claimUnlocker{key: p.Key, secret: p.Secret})
	if err := payOut(b, p.Contract.Value(), p.PayTo); err != nil {
		return nil, err
	}

	t, err := b.Sign(nil)
	if err != nil {
		return nil, fmt.Errorf("trade: sign claim: %w", err)
	}
	log.Infof("Built claim %s of %s", t.TxID(), p.Contract.OutPoint)
	return t, nil
}

// payOut adds a single output paying value less the fee to lock.
func payOut(b *txbuilder.UnsignedBuild, value uint64, lock script.Script) error {
	idx := b.AddOutput(tx.Output{LockScript: lock})
	fee := b.Fee()
	if value <= fee {
		return fmt.Errorf("%w: contract value %d does not cover fee %d",
			txbuilder.ErrInsufficientFunds, value, fee)
	}
	return b.ReplaceOutput(idx, tx.Output{Value: value - fee, LockScript: lock})
}
