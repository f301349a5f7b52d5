package tx

import (
	"github.com/bitfsorg/libtrade-go/codec"
	"github.com/bitfsorg/libtrade-go/script"
)

// DefaultSequence marks an input as final.
const DefaultSequence uint32 = 0xffffffff

// Input spends one prior output. UnlockScript is empty until signed.
type Input struct {
	PrevOut      OutPoint
	UnlockScript script.Script
	Sequence     uint32
}

// NewInput returns an unsigned input spending prev with the final sequence.
func NewInput(prev OutPoint) Input {
	return Input{PrevOut: prev, Sequence: DefaultSequence}
}

// SerializeSize returns the number of bytes the input occupies on the wire.
func (in Input) SerializeSize() int {
	n := in.UnlockScript.Size()
	return OutPointSize + codec.VarIntSize(uint64(n)) + n + 4
}

func (in Input) clone() Input {
	in.UnlockScript = in.UnlockScript.Clone()
	return in
}

// Output pays Value to whoever satisfies LockScript.
type Output struct {
	Value      uint64
	LockScript script.Script
}

// SerializeSize returns the number of bytes the output occupies on the wire.
func (out Output) SerializeSize() int {
	n := out.LockScript.Size()
	return 8 + codec.VarIntSize(uint64(n)) + n
}

// Bytes returns the wire encoding of the output. It is also the layout
// hashed into signature preimages.
func (out Output) Bytes() []byte {
	w := codec.NewWriter(out.SerializeSize())
	out.write(w)
	return w.Bytes()
}

func (out Output) write(w *codec.Writer) {
	w.WriteU64(out.Value)
	w.WriteVarBytes(out.LockScript.Bytes())
}

// Clone returns a deep copy of out.
func (out Output) Clone() Output {
	out.LockScript = out.LockScript.Clone()
	return out
}

// DecodeOutput reads an output in wire format from r.
func DecodeOutput(r *codec.Reader) (Output, error) {
	value, err := r.ReadU64()
	if err != nil {
		return Output{}, err
	}
	lock, err := r.ReadVarBytes()
	if err != nil {
		return Output{}, err
	}
	return Output{Value: value, LockScript: script.Parse(lock)}, nil
}
