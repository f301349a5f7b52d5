package trade

import (
	"fmt"

	"github.com/bitfsorg/libtrade-go/interpreter"
	"github.com/bitfsorg/libtrade-go/tx"
)

// VerifyCounterpartyTx runs every input of t, which spends spent, through
// the interpreter. A transaction received from the other side of a trade is
// not accepted until this succeeds.
func VerifyCounterpartyTx(t *tx.Transaction, spent []tx.Output) error {
	if t == nil {
		return fmt.Errorf("%w: nil transaction", ErrInvalidTx)
	}
	if err := interpreter.Validate(t, spent); err != nil {
		log.Warnf("Rejected counterparty transaction %s: %v", t.TxID(), err)
		return fmt.Errorf("%w: %w", ErrInvalidTx, err)
	}
	return nil
}
