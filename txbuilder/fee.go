package txbuilder

import (
	"fmt"

	"github.com/bitfsorg/libtrade-go/script"
	"github.com/bitfsorg/libtrade-go/tx"
)

// FeeMargin is added to the size-based fee, in satoshis, to absorb estimate
// error.
const FeeMargin uint64 = 5

// Fee returns the fee the build will pay at one satoshi per byte.
func (b *UnsignedBuild) Fee() uint64 {
	return b.EstimateSize() + b.feeMargin
}

// Change returns what is left of balance after sending send and paying the
// fee for the build's current shape. ok is false when the remainder is
// below threshold and should not get its own output.
func (b *UnsignedBuild) Change(balance, send, threshold uint64) (change uint64, ok bool, err error) {
	need := send + b.Fee()
	if need < send || balance < need {
		return 0, false, fmt.Errorf("%w: have %d, need %d", ErrInsufficientFunds, balance, need)
	}
	change = balance - need
	return change, change >= threshold, nil
}

// AddChange pays whatever the inputs hold beyond the outputs and the fee
// back to lock. A change output is sized into the fee first and dropped
// again if the remainder is below threshold. It returns the change value,
// zero when no output was added.
func (b *UnsignedBuild) AddChange(lock script.Script, threshold uint64) (uint64, error) {
	balance, send := b.InputValue(), b.OutputValue()
	idx := b.AddOutput(tx.Output{LockScript: lock})

	change, ok, err := b.Change(balance, send, threshold)
	if err != nil || !ok {
		if rmErr := b.RemoveOutput(idx); rmErr != nil {
			return 0, rmErr
		}
		// Without the change output the fee is smaller; the outputs may
		// still be affordable.
		if _, _, err := b.Change(balance, send, 0); err != nil {
			return 0, err
		}
		log.Debugf("Dropping change of %d below threshold %d", change, threshold)
		return 0, nil
	}
	if err := b.ReplaceOutput(idx, tx.Output{Value: change, LockScript: lock}); err != nil {
		return 0, err
	}
	return change, nil
}
