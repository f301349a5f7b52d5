package tx

import "errors"

var (
	// ErrNoInputs indicates a transaction without inputs.
	ErrNoInputs = errors.New("tx: transaction has no inputs")

	// ErrNoOutputs indicates a transaction without outputs.
	ErrNoOutputs = errors.New("tx: transaction has no outputs")

	// ErrDustOutput indicates an output value below the dust threshold.
	ErrDustOutput = errors.New("tx: output below dust threshold")

	// ErrIndexOutOfRange indicates an input or output index past the end.
	ErrIndexOutOfRange = errors.New("tx: index out of range")
)
