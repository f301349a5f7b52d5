// Package sighash computes fork-id signature preimages and produces and
// checks the signatures that commit to them.
package sighash

import "fmt"

// Flag selects which parts of a transaction a signature commits to. It is
// appended to the DER signature as a single byte.
type Flag uint32

const (
	All          Flag = 0x01
	None         Flag = 0x02
	Single       Flag = 0x03
	ForkID       Flag = 0x40
	AnyOneCanPay Flag = 0x80

	// AllForkID is the default flag for wallet signatures.
	AllForkID = All | ForkID

	baseMask = 0x1f
)

// ForkValue is the chain's fork identifier, shifted into the upper bits of
// the committed hash type.
const ForkValue uint32 = 0

// Base returns the ALL/NONE/SINGLE part of f.
func (f Flag) Base() Flag { return f & baseMask }

// HasAnyOneCanPay reports whether only the signed input is committed to.
func (f Flag) HasAnyOneCanPay() bool { return f&AnyOneCanPay != 0 }

// HasForkID reports whether the fork-id bit is set.
func (f Flag) HasForkID() bool { return f&ForkID != 0 }

// Byte returns the flag byte appended to signatures.
func (f Flag) Byte() byte { return byte(f) }

// Check returns ErrInvalidHashType unless f is a defined base type with the
// fork-id bit and no bits other than ANYONECANPAY.
func (f Flag) Check() error {
	base := f &^ (AnyOneCanPay | ForkID)
	if base < All || base > Single {
		return fmt.Errorf("%w: 0x%02x", ErrInvalidHashType, uint32(f))
	}
	if !f.HasForkID() {
		return fmt.Errorf("%w: 0x%02x lacks fork id", ErrInvalidHashType, uint32(f))
	}
	return nil
}

func (f Flag) String() string {
	var s string
	switch f.Base() {
	case All:
		s = "ALL"
	case None:
		s = "NONE"
	case Single:
		s = "SINGLE"
	default:
		s = fmt.Sprintf("0x%02x", uint32(f.Base()))
	}
	if f.HasForkID() {
		s += "|FORKID"
	}
	if f.HasAnyOneCanPay() {
		s += "|ANYONECANPAY"
	}
	return s
}
