package script

import (
	"fmt"
	"math"
)

const (
	// DefaultNumLen is the widest operand accepted by arithmetic opcodes.
	DefaultNumLen = 4

	// LockTimeNumLen is the operand width for the locktime opcodes, which
	// need to reach 2^39-1.
	LockTimeNumLen = 5
)

// Num is a script number: signed magnitude, little endian, with the sign in
// the high bit of the last byte. Results of arithmetic may exceed the
// operand width; they are checked again when consumed.
type Num int64

// MakeNum decodes a stack element as a number. With requireMinimal set the
// element must be minimally encoded. Elements longer than maxLen fail with
// ErrNumberOverflow.
func MakeNum(v []byte, requireMinimal bool, maxLen int) (Num, error) {
	if len(v) > maxLen {
		return 0, fmt.Errorf("%w: %d bytes exceeds %d", ErrNumberOverflow, len(v), maxLen)
	}
	if requireMinimal {
		if err := CheckMinimalNum(v); err != nil {
			return 0, err
		}
	}
	if len(v) == 0 {
		return 0, nil
	}

	var result int64
	for i, b := range v {
		result |= int64(b) << uint8(8*i)
	}
	if v[len(v)-1]&0x80 != 0 {
		result &= ^(int64(0x80) << uint8(8*(len(v)-1)))
		return Num(-result), nil
	}
	return Num(result), nil
}

// CheckMinimalNum reports ErrPushNonMinimalData when v has redundant
// trailing zero bytes.
func CheckMinimalNum(v []byte) error {
	if len(v) == 0 {
		return nil
	}
	// The last byte may only be 0x00 or 0x80 if the byte before it needs
	// its high bit for magnitude.
	if v[len(v)-1]&0x7f == 0 {
		if len(v) == 1 || v[len(v)-2]&0x80 == 0 {
			return fmt.Errorf("%w: number %x", ErrPushNonMinimalData, v)
		}
	}
	return nil
}

// Bytes returns the minimal encoding of n. Zero is the empty slice.
func (n Num) Bytes() []byte {
	if n == 0 {
		return nil
	}

	negative := n < 0
	m := uint64(n)
	if negative {
		m = uint64(-n)
	}

	result := make([]byte, 0, 9)
	for m > 0 {
		result = append(result, byte(m&0xff))
		m >>= 8
	}

	if result[len(result)-1]&0x80 != 0 {
		extra := byte(0x00)
		if negative {
			extra = 0x80
		}
		result = append(result, extra)
	} else if negative {
		result[len(result)-1] |= 0x80
	}
	return result
}

// Int32 clamps n into the int32 range.
func (n Num) Int32() int32 {
	switch {
	case n > math.MaxInt32:
		return math.MaxInt32
	case n < math.MinInt32:
		return math.MinInt32
	}
	return int32(n)
}

// AsBool interprets a stack element as a boolean. Any non-zero byte makes
// it true, except a lone sign bit in the last byte (negative zero).
func AsBool(v []byte) bool {
	for i, b := range v {
		if b != 0 {
			if i == len(v)-1 && b == 0x80 {
				return false
			}
			return true
		}
	}
	return false
}

// FromBool returns the canonical stack element for a boolean.
func FromBool(b bool) []byte {
	if b {
		return []byte{1}
	}
	return nil
}
