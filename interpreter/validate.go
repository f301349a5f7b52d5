package interpreter

import (
	"fmt"

	"github.com/bitfsorg/libtrade-go/tx"
)

// ValidateInput runs input i of t against prev, the output it spends, with
// the standard rule set.
func ValidateInput(t *tx.Transaction, i int, prev tx.Output) error {
	return ValidateInputFlags(t, i, prev, StandardFlags)
}

// ValidateInputFlags is ValidateInput with an explicit rule set.
func ValidateInputFlags(t *tx.Transaction, i int, prev tx.Output, flags Flags) error {
	in, err := t.Input(i)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedScript, err)
	}
	ctx := &Context{Tx: t, InputIndex: i, PrevOutput: prev}
	e, err := NewEngine(in.UnlockScript, prev.LockScript, ctx, flags)
	if err != nil {
		return err
	}
	return e.Execute()
}

// Validate checks every input of t in order. spent[i] is the output spent
// by input i.
func Validate(t *tx.Transaction, spent []tx.Output) error {
	if len(spent) != t.NumInputs() {
		return fmt.Errorf("%w: %d spent outputs for %d inputs",
			ErrMalformedScript, len(spent), t.NumInputs())
	}
	for i, prev := range spent {
		if err := ValidateInput(t, i, prev); err != nil {
			log.Debugf("Input %d of %s failed validation: %v", i, t.TxID(), err)
			return fmt.Errorf("input %d: %w", i, err)
		}
	}
	return nil
}
