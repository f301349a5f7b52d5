// Package codec implements the deterministic wire encoding shared by scripts,
// transactions and P2P messages: fixed-width little-endian integers, canonical
// compact-size integers and length-prefixed byte strings.
package codec

import (
	"encoding/binary"
	"fmt"
)

// Compact-size prefixes.
const (
	prefixU16 = 0xfd
	prefixU32 = 0xfe
	prefixU64 = 0xff
)

// VarIntSize returns the number of bytes VarInt(n) occupies.
func VarIntSize(n uint64) int {
	switch {
	case n < prefixU16:
		return 1
	case n <= 0xffff:
		return 3
	case n <= 0xffffffff:
		return 5
	default:
		return 9
	}
}

// VarInt returns the canonical compact-size encoding of n.
func VarInt(n uint64) []byte {
	return PutVarInt(make([]byte, 0, VarIntSize(n)), n)
}

// PutVarInt appends the canonical compact-size encoding of n to buf.
func PutVarInt(buf []byte, n uint64) []byte {
	switch {
	case n < prefixU16:
		return append(buf, byte(n))
	case n <= 0xffff:
		buf = append(buf, prefixU16)
		return binary.LittleEndian.AppendUint16(buf, uint16(n))
	case n <= 0xffffffff:
		buf = append(buf, prefixU32)
		return binary.LittleEndian.AppendUint32(buf, uint32(n))
	default:
		buf = append(buf, prefixU64)
		return binary.LittleEndian.AppendUint64(buf, n)
	}
}

// DecodeVarInt decodes a compact-size integer from the start of b and
// returns the value and the number of bytes consumed.
//
// A wider prefix carrying a value that fits a narrower form is rejected, so
// every value has exactly one accepted encoding.
func DecodeVarInt(b []byte) (uint64, int, error) {
	if len(b) < 1 {
		return 0, 0, fmt.Errorf("%w: varint: empty input", ErrMalformedEncoding)
	}
	switch tag := b[0]; tag {
	case prefixU16:
		if len(b) < 3 {
			return 0, 0, fmt.Errorf("%w: varint: truncated u16", ErrMalformedEncoding)
		}
		n := uint64(binary.LittleEndian.Uint16(b[1:3]))
		if n < prefixU16 {
			return 0, 0, fmt.Errorf("%w: varint: non-canonical u16 %d", ErrMalformedEncoding, n)
		}
		return n, 3, nil
	case prefixU32:
		if len(b) < 5 {
			return 0, 0, fmt.Errorf("%w: varint: truncated u32", ErrMalformedEncoding)
		}
		n := uint64(binary.LittleEndian.Uint32(b[1:5]))
		if n <= 0xffff {
			return 0, 0, fmt.Errorf("%w: varint: non-canonical u32 %d", ErrMalformedEncoding, n)
		}
		return n, 5, nil
	case prefixU64:
		if len(b) < 9 {
			return 0, 0, fmt.Errorf("%w: varint: truncated u64", ErrMalformedEncoding)
		}
		n := binary.LittleEndian.Uint64(b[1:9])
		if n <= 0xffffffff {
			return 0, 0, fmt.Errorf("%w: varint: non-canonical u64 %d", ErrMalformedEncoding, n)
		}
		return n, 9, nil
	default:
		return uint64(tag), 1, nil
	}
}

// VarBytes returns b prefixed with its compact-size length.
func VarBytes(b []byte) []byte {
	out := make([]byte, 0, VarIntSize(uint64(len(b)))+len(b))
	out = PutVarInt(out, uint64(len(b)))
	return append(out, b...)
}

// VarBytesSize returns the encoded size of a length-prefixed byte string of
// length n.
func VarBytesSize(n int) int {
	return VarIntSize(uint64(n)) + n
}

// DecodeVarBytes decodes a length-prefixed byte string from the start of b.
// The returned slice aliases b.
func DecodeVarBytes(b []byte) ([]byte, int, error) {
	n, off, err := DecodeVarInt(b)
	if err != nil {
		return nil, 0, err
	}
	if n > uint64(len(b)-off) {
		return nil, 0, fmt.Errorf("%w: var bytes: declared %d, have %d",
			ErrMalformedEncoding, n, len(b)-off)
	}
	end := off + int(n)
	return b[off:end], end, nil
}
