// Package tx holds the finalized transaction model: outpoints, inputs,
// outputs and the immutable Transaction with its wire encoding and id.
package tx

import (
	"encoding/hex"
	"fmt"

	"github.com/bsv-blockchain/go-sdk/chainhash"

	"github.com/bitfsorg/libtrade-go/codec"
	"github.com/bitfsorg/libtrade-go/hashing"
	"github.com/bitfsorg/libtrade-go/script"
)

// DefaultVersion is the version used for new transactions.
const DefaultVersion int32 = 2

// Transaction is an immutable transaction. All accessors return copies, so
// a value handed to a caller can never change under another holder.
type Transaction struct {
	version  int32
	inputs   []Input
	outputs  []Output
	lockTime uint32
}

// New copies the given parts into a Transaction. At least one input and
// one output are required.
func New(version int32, inputs []Input, outputs []Output, lockTime uint32) (*Transaction, error) {
	if len(inputs) == 0 {
		return nil, ErrNoInputs
	}
	if len(outputs) == 0 {
		return nil, ErrNoOutputs
	}
	t := &Transaction{
		version:  version,
		inputs:   make([]Input, len(inputs)),
		outputs:  make([]Output, len(outputs)),
		lockTime: lockTime,
	}
	for i, in := range inputs {
		t.inputs[i] = in.clone()
	}
	for i, out := range outputs {
		t.outputs[i] = out.Clone()
	}
	return t, nil
}

// Version returns the transaction version.
func (t *Transaction) Version() int32 { return t.version }

// LockTime returns the transaction locktime.
func (t *Transaction) LockTime() uint32 { return t.lockTime }

// NumInputs returns the number of inputs.
func (t *Transaction) NumInputs() int { return len(t.inputs) }

// NumOutputs returns the number of outputs.
func (t *Transaction) NumOutputs() int { return len(t.outputs) }

// Input returns a copy of input i.
func (t *Transaction) Input(i int) (Input, error) {
	if i < 0 || i >= len(t.inputs) {
		return Input{}, fmt.Errorf("%w: input %d of %d", ErrIndexOutOfRange, i, len(t.inputs))
	}
	return t.inputs[i].clone(), nil
}

// Output returns a copy of output i.
func (t *Transaction) Output(i int) (Output, error) {
	if i < 0 || i >= len(t.outputs) {
		return Output{}, fmt.Errorf("%w: output %d of %d", ErrIndexOutOfRange, i, len(t.outputs))
	}
	return t.outputs[i].Clone(), nil
}

// Inputs returns a copy of all inputs.
func (t *Transaction) Inputs() []Input {
	ins := make([]Input, len(t.inputs))
	for i, in := range t.inputs {
		ins[i] = in.clone()
	}
	return ins
}

// Outputs returns a copy of all outputs.
func (t *Transaction) Outputs() []Output {
	outs := make([]Output, len(t.outputs))
	for i, out := range t.outputs {
		outs[i] = out.Clone()
	}
	return outs
}

// TotalOutput returns the sum of output values.
func (t *Transaction) TotalOutput() uint64 {
	var sum uint64
	for _, out := range t.outputs {
		sum += out.Value
	}
	return sum
}

// SerializeSize returns the length of Bytes.
func (t *Transaction) SerializeSize() int {
	n := 4 + codec.VarIntSize(uint64(len(t.inputs))) + codec.VarIntSize(uint64(len(t.outputs))) + 4
	for _, in := range t.inputs {
		n += in.SerializeSize()
	}
	for _, out := range t.outputs {
		n += out.SerializeSize()
	}
	return n
}

// Bytes returns the canonical wire encoding.
func (t *Transaction) Bytes() []byte {
	w := codec.NewWriter(t.SerializeSize())
	w.WriteI32(t.version)
	w.WriteVarInt(uint64(len(t.inputs)))
	for _, in := range t.inputs {
		w.WriteHash(in.PrevOut.Hash)
		w.WriteU32(in.PrevOut.Index)
		w.WriteVarBytes(in.UnlockScript.Bytes())
		w.WriteU32(in.Sequence)
	}
	w.WriteVarInt(uint64(len(t.outputs)))
	for _, out := range t.outputs {
		out.write(w)
	}
	w.WriteU32(t.lockTime)
	return w.Bytes()
}

// Hex returns the hex encoding of Bytes.
func (t *Transaction) Hex() string {
	return hex.EncodeToString(t.Bytes())
}

// TxID returns the double hash of the wire encoding, in internal byte
// order. It is recomputed on every call.
func (t *Transaction) TxID() chainhash.Hash {
	return hashing.DoubleHash(t.Bytes())
}

// OutPoint returns the outpoint referring to output i of t.
func (t *Transaction) OutPoint(i uint32) OutPoint {
	return OutPoint{Hash: t.TxID(), Index: i}
}

// WithUnlockScripts returns a copy of t whose input unlock scripts are
// replaced by scripts, one per input.
func (t *Transaction) WithUnlockScripts(scripts []script.Script) (*Transaction, error) {
	if len(scripts) != len(t.inputs) {
		return nil, fmt.Errorf("%w: %d unlock scripts for %d inputs",
			ErrIndexOutOfRange, len(scripts), len(t.inputs))
	}
	ins := t.Inputs()
	for i := range ins {
		ins[i].UnlockScript = scripts[i]
	}
	return New(t.version, ins, t.outputs, t.lockTime)
}

// Deserialize decodes a transaction and rejects trailing bytes.
func Deserialize(b []byte) (*Transaction, error) {
	r := codec.NewReader(b)
	version, err := r.ReadI32()
	if err != nil {
		return nil, err
	}

	nIn, err := r.ReadVarInt()
	if err != nil {
		return nil, err
	}
	if nIn == 0 {
		return nil, fmt.Errorf("%w: %w", codec.ErrMalformedEncoding, ErrNoInputs)
	}
	// Each input takes at least 41 bytes.
	if nIn > uint64(r.Remaining()/41) {
		return nil, fmt.Errorf("%w: %d inputs declared", codec.ErrMalformedEncoding, nIn)
	}
	inputs := make([]Input, 0, nIn)
	for i := uint64(0); i < nIn; i++ {
		in, err := decodeInput(r)
		if err != nil {
			return nil, fmt.Errorf("input %d: %w", i, err)
		}
		inputs = append(inputs, in)
	}

	nOut, err := r.ReadVarInt()
	if err != nil {
		return nil, err
	}
	if nOut == 0 {
		return nil, fmt.Errorf("%w: %w", codec.ErrMalformedEncoding, ErrNoOutputs)
	}
	// Each output takes at least 9 bytes.
	if nOut > uint64(r.Remaining()/9) {
		return nil, fmt.Errorf("%w: %d outputs declared", codec.ErrMalformedEncoding, nOut)
	}
	outputs := make([]Output, 0, nOut)
	for i := uint64(0); i < nOut; i++ {
		out, err := DecodeOutput(r)
		if err != nil {
			return nil, fmt.Errorf("output %d: %w", i, err)
		}
		outputs = append(outputs, out)
	}

	lockTime, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	if err := r.ExpectEOF(); err != nil {
		return nil, err
	}

	return &Transaction{version: version, inputs: inputs, outputs: outputs, lockTime: lockTime}, nil
}

// NewFromHex decodes a hex-encoded transaction.
func NewFromHex(s string) (*Transaction, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", codec.ErrMalformedEncoding, err)
	}
	return Deserialize(b)
}

func decodeInput(r *codec.Reader) (Input, error) {
	hash, err := r.ReadHash()
	if err != nil {
		return Input{}, err
	}
	index, err := r.ReadU32()
	if err != nil {
		return Input{}, err
	}
	unlock, err := r.ReadVarBytes()
	if err != nil {
		return Input{}, err
	}
	seq, err := r.ReadU32()
	if err != nil {
		return Input{}, err
	}
	return Input{
		PrevOut:      OutPoint{Hash: hash, Index: index},
		UnlockScript: script.Parse(unlock),
		Sequence:     seq,
	}, nil
}
