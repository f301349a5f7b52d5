// Package txbuilder assembles transactions before they are signed. An
// UnsignedBuild keeps, next to every input, the output it spends so the
// signature engine can bind each signature to that output's value and
// locking script.
package txbuilder

import (
	"fmt"

	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"

	"github.com/bitfsorg/libtrade-go/codec"
	"github.com/bitfsorg/libtrade-go/interpreter"
	"github.com/bitfsorg/libtrade-go/script"
	"github.com/bitfsorg/libtrade-go/sighash"
	"github.com/bitfsorg/libtrade-go/tx"
)

type buildInput struct {
	prevOut  tx.OutPoint
	sequence uint32
	prev     tx.Output
	unlocker Unlocker
}

// UnsignedBuild is a transaction in progress. It is not safe for concurrent
// use. Indices passed to the output methods are the caller's to keep valid
// across removals.
type UnsignedBuild struct {
	version       int32
	lockTime      uint32
	inputs        []buildInput
	outputs       []tx.Output
	feeMargin     uint64
	dustThreshold uint64
	consumed      bool
}

// New returns an empty build.
func New() *UnsignedBuild {
	return &UnsignedBuild{
		version:       tx.DefaultVersion,
		feeMargin:     FeeMargin,
		dustThreshold: tx.DustThreshold,
	}
}

// SetVersion sets the transaction version.
func (b *UnsignedBuild) SetVersion(v int32) { b.version = v }

// SetLockTime sets the transaction locktime.
func (b *UnsignedBuild) SetLockTime(lt uint32) { b.lockTime = lt }

// SetFeeMargin sets the flat amount added on top of the size-based fee.
func (b *UnsignedBuild) SetFeeMargin(m uint64) { b.feeMargin = m }

// SetDustThreshold sets the smallest output value Sign accepts.
func (b *UnsignedBuild) SetDustThreshold(v uint64) { b.dustThreshold = v }

// AddOutput appends out and returns its index.
func (b *UnsignedBuild) AddOutput(out tx.Output) int {
	b.outputs = append(b.outputs, out.Clone())
	return len(b.outputs) - 1
}

// RemoveOutput deletes output i. Later outputs shift down by one.
func (b *UnsignedBuild) RemoveOutput(i int) error {
	if i < 0 || i >= len(b.outputs) {
		return fmt.Errorf("%w: output %d of %d", ErrIndexOutOfRange, i, len(b.outputs))
	}
	b.outputs = append(b.outputs[:i], b.outputs[i+1:]...)
	return nil
}

// ReplaceOutput overwrites output i.
func (b *UnsignedBuild) ReplaceOutput(i int, out tx.Output) error {
	if i < 0 || i >= len(b.outputs) {
		return fmt.Errorf("%w: output %d of %d", ErrIndexOutOfRange, i, len(b.outputs))
	}
	b.outputs[i] = out.Clone()
	return nil
}

// Output returns a copy of output i.
func (b *UnsignedBuild) Output(i int) (tx.Output, error) {
	if i < 0 || i >= len(b.outputs) {
		return tx.Output{}, fmt.Errorf("%w: output %d of %d", ErrIndexOutOfRange, i, len(b.outputs))
	}
	return b.outputs[i].Clone(), nil
}

// NumOutputs returns the number of outputs.
func (b *UnsignedBuild) NumOutputs() int { return len(b.outputs) }

// NumInputs returns the number of inputs.
func (b *UnsignedBuild) NumInputs() int { return len(b.inputs) }

// AddInput appends an input spending prevOut, which holds prevValue locked
// by prevScript, and returns its index. It is signed with the key given to
// Sign.
func (b *UnsignedBuild) AddInput(prevOut tx.OutPoint, prevValue uint64, prevScript script.Script) int {
	return b.AddInputWithUnlocker(prevOut, prevValue, prevScript, nil)
}

// AddInputWithUnlocker is AddInput with a dedicated unlocker for the input.
func (b *UnsignedBuild) AddInputWithUnlocker(prevOut tx.OutPoint, prevValue uint64, prevScript script.Script, u Unlocker) int {
	b.inputs = append(b.inputs, buildInput{
		prevOut:  prevOut,
		sequence: tx.DefaultSequence,
		prev:     tx.Output{Value: prevValue, LockScript: prevScript.Clone()},
		unlocker: u,
	})
	return len(b.inputs) - 1
}

// SetSequence sets the sequence number of input i.
func (b *UnsignedBuild) SetSequence(i int, seq uint32) error {
	if i < 0 || i >= len(b.inputs) {
		return fmt.Errorf("%w: input %d of %d", ErrIndexOutOfRange, i, len(b.inputs))
	}
	b.inputs[i].sequence = seq
	return nil
}

// SetUnlocker replaces the unlocker of input i.
func (b *UnsignedBuild) SetUnlocker(i int, u Unlocker) error {
	if i < 0 || i >= len(b.inputs) {
		return fmt.Errorf("%w: input %d of %d", ErrIndexOutOfRange, i, len(b.inputs))
	}
	b.inputs[i].unlocker = u
	return nil
}

// Spent returns the outputs spent by the inputs, in input order.
func (b *UnsignedBuild) Spent() []tx.Output {
	out := make([]tx.Output, len(b.inputs))
	for i, in := range b.inputs {
		out[i] = in.prev.Clone()
	}
	return out
}

// InputValue returns the sum of the spent output values.
func (b *UnsignedBuild) InputValue() uint64 {
	var total uint64
	for _, in := range b.inputs {
		total += in.prev.Value
	}
	return total
}

// OutputValue returns the sum of the output values.
func (b *UnsignedBuild) OutputValue() uint64 {
	var total uint64
	for _, out := range b.outputs {
		total += out.Value
	}
	return total
}

// EstimateSize returns an upper bound on the signed transaction size in
// bytes, assuming every unlocking script reaches its unlocker's estimate.
func (b *UnsignedBuild) EstimateSize() uint64 {
	size := 4 + codec.VarIntSize(uint64(len(b.inputs))) +
		codec.VarIntSize(uint64(len(b.outputs))) + 4
	for _, in := range b.inputs {
		n := P2PKHUnlockLen
		if in.unlocker != nil {
			n = in.unlocker.EstimateLength()
		}
		size += tx.OutPointSize + codec.VarIntSize(uint64(n)) + n + 4
	}
	for _, out := range b.outputs {
		size += out.SerializeSize()
	}
	return uint64(size)
}

// checkFunds fails when the outputs spend more than the inputs hold. An
// output total that overflows is treated the same way.
func (b *UnsignedBuild) checkFunds() error {
	var out uint64
	for _, o := range b.outputs {
		if out+o.Value < out {
			return fmt.Errorf("%w: output total overflows", ErrInsufficientFunds)
		}
		out += o.Value
	}
	if in := b.InputValue(); out > in {
		return fmt.Errorf("%w: outputs %d exceed inputs %d", ErrInsufficientFunds, out, in)
	}
	return nil
}

// Unsigned returns the transaction with every unlocking script empty.
func (b *UnsignedBuild) Unsigned() (*tx.Transaction, error) {
	ins := make([]tx.Input, len(b.inputs))
	for i, in := range b.inputs {
		ins[i] = tx.Input{PrevOut: in.prevOut, Sequence: in.sequence}
	}
	return tx.New(b.version, ins, b.outputs, b.lockTime)
}

// PartialSign returns key's signature, with the flag byte appended, over
// input idx. The build is not consumed; it is used to collect a
// counterparty signature for a multi-signature input.
func (b *UnsignedBuild) PartialSign(idx int, key *ec.PrivateKey, flags sighash.Flag) ([]byte, error) {
	if idx < 0 || idx >= len(b.inputs) {
		return nil, fmt.Errorf("%w: input %d of %d", ErrIndexOutOfRange, idx, len(b.inputs))
	}
	if err := b.checkFunds(); err != nil {
		return nil, err
	}
	unsigned, err := b.Unsigned()
	if err != nil {
		return nil, err
	}
	prev := b.inputs[idx].prev
	return sighash.SignInput(key, unsigned, idx, prev.LockScript, prev.Value, flags)
}

// Sign produces the finalized transaction. It fails with
// ErrInsufficientFunds when the outputs exceed the inputs. Inputs without their own
// unlocker are signed as pay-to-key-hash with key. Every input is then run
// through the interpreter before the transaction is returned. On success the
// build is consumed.
func (b *UnsignedBuild) Sign(key *ec.PrivateKey) (*tx.Transaction, error) {
	if b.consumed {
		return nil, ErrBuildConsumed
	}
	if err := tx.CheckDust(b.outputs, b.dustThreshold); err != nil {
		return nil, err
	}
	if err := b.checkFunds(); err != nil {
		return nil, err
	}
	unsigned, err := b.Unsigned()
	if err != nil {
		return nil, err
	}

	// Fork-id preimages never cover other inputs' unlocking scripts, so
	// every input is signed against the same unsigned transaction.
	scripts := make([]script.Script, len(b.inputs))
	for i, in := range b.inputs {
		u := in.unlocker
		if u == nil {
			if key == nil {
				return nil, fmt.Errorf("%w: %d", ErrNoUnlocker, i)
			}
			u = NewP2PKHUnlocker(key)
		}
		if scripts[i], err = u.Unlock(unsigned, i, in.prev); err != nil {
			return nil, fmt.Errorf("txbuilder: unlock input %d: %w", i, err)
		}
	}

	signed, err := unsigned.WithUnlockScripts(scripts)
	if err != nil {
		return nil, err
	}
	if err := interpreter.Validate(signed, b.Spent()); err != nil {
		return nil, fmt.Errorf("txbuilder: signed transaction does not validate: %w", err)
	}

	b.consumed = true
	log.Debugf("Signed transaction %s: %d inputs, %d outputs, %d bytes",
		signed.TxID(), signed.NumInputs(), signed.NumOutputs(), signed.SerializeSize())
	return signed, nil
}

// FromTransaction rebuilds the unsigned form of t, which spends spent. Any
// unlocking scripts in t are dropped; the result is signed afresh.
func FromTransaction(t *tx.Transaction, spent []tx.Output) (*UnsignedBuild, error) {
	if len(spent) != t.NumInputs() {
		return nil, fmt.Errorf("%w: %d spent outputs for %d inputs",
			ErrIndexOutOfRange, len(spent), t.NumInputs())
	}
	b := New()
	b.version = t.Version()
	b.lockTime = t.LockTime()
	for i, in := range t.Inputs() {
		idx := b.AddInput(in.PrevOut, spent[i].Value, spent[i].LockScript)
		b.inputs[idx].sequence = in.Sequence
	}
	for _, out := range t.Outputs() {
		b.AddOutput(out)
	}
	return b, nil
}

// AddUTXO appends an input spending u, signed with the key given to Sign.
func (b *UnsignedBuild) AddUTXO(u tx.UTXO) int {
	return b.AddInput(u.OutPoint, u.Output.Value, u.Output.LockScript)
}
