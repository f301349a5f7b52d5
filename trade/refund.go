package trade

import (
	"fmt"

	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"

	"github.com/bitfsorg/libtrade-go/script"
	"github.com/bitfsorg/libtrade-go/sighash"
	"github.com/bitfsorg/libtrade-go/tx"
	"github.com/bitfsorg/libtrade-go/txbuilder"
)

// RefundSequence keeps the refund input non-final so its locktime applies.
const RefundSequence uint32 = 0xfffffffe

// refundUnlockLen is OP_0, two pushed signatures and the branch selector.
const refundUnlockLen = 1 + 2*(1+72+1) + 1

// refundUnlocker spends a contract through its 2-of-2 branch:
// OP_0 <buyer_sig> <seller_sig> OP_0. The first OP_0 is the multisig dummy
// and the last selects the else branch.
type refundUnlocker struct {
	buyer     *ec.PrivateKey
	sellerSig []byte
}

func (u *refundUnlocker) Unlock(t *tx.Transaction, idx int, prev tx.Output) (script.Script, error) {
	sig, err := sighash.SignInput(u.buyer, t, idx, prev.LockScript, prev.Value, sighash.AllForkID)
	if err != nil {
		return nil, err
	}
	return script.NewBuilder().
		AddOp(script.Op0).
		AddData(sig).
		AddData(u.sellerSig).
		AddOp(script.Op0).
		Script()
}

func (u *refundUnlocker) EstimateLength() int { return refundUnlockLen }

// RefundOffer is the unsigned refund transaction and the seller's half of
// its signature, handed to the buyer before the contract is funded.
type RefundOffer struct {
	Tx        *tx.Transaction
	SellerSig []byte
}

// NewRefund returns the build of the refund of contract to lock, spendable
// from block height timeout. Both parties derive the same transaction from
// the same inputs.
func NewRefund(contract tx.UTXO, lock script.Script, timeout uint32) (*txbuilder.UnsignedBuild, error) {
	if timeout == 0 {
		return nil, fmt.Errorf("%w: timeout must be > 0 for refund path", ErrInvalidParams)
	}
	b := txbuilder.New()
	b.SetLockTime(timeout)
	idx := b.AddInputWithUnlocker(contract.OutPoint, contract.Value(), contract.Output.LockScript,
		&refundUnlocker{})
	if err := b.SetSequence(idx, RefundSequence); err != nil {
		return nil, err
	}
	if err := payOut(b, contract.Value(), lock); err != nil {
		return nil, err
	}
	return b, nil
}

// SignRefund builds the refund of contract and signs it with the seller's
// key.
func SignRefund(contract tx.UTXO, lock script.Script, timeout uint32, seller *ec.PrivateKey) (*RefundOffer, error) {
	if seller == nil {
		return nil, fmt.Errorf("%w: nil seller key", ErrInvalidParams)
	}
	b, err := NewRefund(contract, lock, timeout)
	if err != nil {
		return nil, err
	}
	sig, err := b.PartialSign(0, seller, sighash.AllForkID)
	if err != nil {
		return nil, fmt.Errorf("trade: sign refund: %w", err)
	}
	unsigned, err := b.Unsigned()
	if err != nil {
		return nil, err
	}
	return &RefundOffer{Tx: unsigned, SellerSig: sig}, nil
}

// VerifyRefundOffer checks that o spends contract with locktime timeout, that
// the contract commits to the same timeout, and that o carries a valid
// signature from sellerPubKey.
func VerifyRefundOffer(o *RefundOffer, contract tx.UTXO, timeout uint32, sellerPubKey []byte) error {
	if o == nil || o.Tx == nil {
		return fmt.Errorf("%w: nil refund", ErrInvalidTx)
	}
	if o.Tx.NumInputs() != 1 {
		return fmt.Errorf("%w: refund has %d inputs", ErrInvalidTx, o.Tx.NumInputs())
	}
	in, err := o.Tx.Input(0)
	if err != nil {
		return err
	}
	if in.PrevOut != contract.OutPoint {
		return fmt.Errorf("%w: input references %s, expected %s",
			ErrFundingMismatch, in.PrevOut, contract.OutPoint)
	}
	if in.Sequence == tx.DefaultSequence || o.Tx.LockTime() != timeout {
		return fmt.Errorf("%w: refund locktime %d, sequence %#x",
			ErrInvalidTx, o.Tx.LockTime(), in.Sequence)
	}
	if committed, err := ExtractTimeout(contract.Output.LockScript); err != nil || committed != timeout {
		return fmt.Errorf("%w: contract does not commit to refund locktime %d", ErrFundingMismatch, timeout)
	}
	ok, err := sighash.Verify(o.SellerSig, sellerPubKey, o.Tx, 0,
		contract.Output.LockScript, contract.Value())
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidTx, err)
	}
	if !ok {
		return fmt.Errorf("%w: seller signature does not verify", ErrInvalidTx)
	}
	return nil
}

// CompleteRefund adds the buyer's signature to o and returns the refund
// ready to broadcast once the chain reaches its locktime.
func CompleteRefund(o *RefundOffer, contract tx.UTXO, buyer *ec.PrivateKey) (*tx.Transaction, error) {
	if o == nil || o.Tx == nil || buyer == nil {
		return nil, fmt.Errorf("%w: nil refund or key", ErrInvalidParams)
	}
	if o.Tx.NumInputs() != 1 {
		return nil, fmt.Errorf("%w: refund has %d inputs", ErrInvalidTx, o.Tx.NumInputs())
	}
	if in, _ := o.Tx.Input(0); in.PrevOut != contract.OutPoint {
		return nil, fmt.Errorf("%w: input references %s, expected %s",
			ErrFundingMismatch, in.PrevOut, contract.OutPoint)
	}

	b, err := txbuilder.FromTransaction(o.Tx, []tx.Output{contract.Output})
	if err != nil {
		return nil, err
	}
	if err := b.SetUnlocker(0, &refundUnlocker{buyer: buyer, sellerSig: o.SellerSig}); err != nil {
		return nil, err
	}
	t, err := b.Sign(nil)
	if err != nil {
		return nil, fmt.Errorf("trade: complete refund: %w", err)
	}
	log.Infof("Completed refund %s, valid from height %d", t.TxID(), t.LockTime())
	return t, nil
}
