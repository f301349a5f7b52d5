package txbuilder

import (
	"errors"

	"github.com/bitfsorg/libtrade-go/tx"
)

var (
	// ErrInsufficientFunds indicates the send amount plus fee exceeds the
	// available balance.
	ErrInsufficientFunds = errors.New("txbuilder: insufficient funds")

	// ErrBuildConsumed indicates Sign was called on a build that has already
	// produced a transaction.
	ErrBuildConsumed = errors.New("txbuilder: build already signed")

	// ErrKeyMismatch indicates the signing key does not own the spent output.
	ErrKeyMismatch = errors.New("txbuilder: key does not match locking script")

	// ErrNoUnlocker indicates an input has neither an unlocker nor a default
	// key to sign with.
	ErrNoUnlocker = errors.New("txbuilder: no unlocker for input")

	// ErrIndexOutOfRange indicates an input or output index past the end.
	ErrIndexOutOfRange = tx.ErrIndexOutOfRange

	// ErrDustOutput indicates an output value below the dust threshold.
	ErrDustOutput = tx.ErrDustOutput
)
