package script

import "errors"

var (
	// ErrPushTooLarge indicates a data push exceeds MaxPushSize.
	ErrPushTooLarge = errors.New("script: push exceeds maximum element size")

	// ErrPushNonMinimalData indicates data or a number was not pushed or
	// encoded in its smallest form.
	ErrPushNonMinimalData = errors.New("script: non-minimal data push")

	// ErrNumberOverflow indicates a numeric operand is wider than allowed.
	ErrNumberOverflow = errors.New("script: numeric operand overflow")

	// ErrInvalidTemplate indicates template parameters are malformed.
	ErrInvalidTemplate = errors.New("script: invalid template parameters")
)
