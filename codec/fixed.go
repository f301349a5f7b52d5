package codec

import (
	"encoding/binary"
	"fmt"
)

// AppendU8 appends v to buf.
func AppendU8(buf []byte, v uint8) []byte { return append(buf, v) }

// AppendU16 appends v to buf in little-endian order.
func AppendU16(buf []byte, v uint16) []byte { return binary.LittleEndian.AppendUint16(buf, v) }

// AppendU32 appends v to buf in little-endian order.
func AppendU32(buf []byte, v uint32) []byte { return binary.LittleEndian.AppendUint32(buf, v) }

// AppendU64 appends v to buf in little-endian order.
func AppendU64(buf []byte, v uint64) []byte { return binary.LittleEndian.AppendUint64(buf, v) }

// AppendI32 appends v to buf as its two's complement little-endian form.
func AppendI32(buf []byte, v int32) []byte { return AppendU32(buf, uint32(v)) }

// AppendI64 appends v to buf as its two's complement little-endian form.
func AppendI64(buf []byte, v int64) []byte { return AppendU64(buf, uint64(v)) }

// DecodeU8 reads a uint8 from the start of b.
func DecodeU8(b []byte) (uint8, error) {
	if len(b) < 1 {
		return 0, fmt.Errorf("%w: truncated u8", ErrMalformedEncoding)
	}
	return b[0], nil
}

// DecodeU16 reads a little-endian uint16 from the start of b.
func DecodeU16(b []byte) (uint16, error) {
	if len(b) < 2 {
		return 0, fmt.Errorf("%w: truncated u16", ErrMalformedEncoding)
	}
	return binary.LittleEndian.Uint16(b), nil
}

// DecodeU32 reads a little-endian uint32 from the start of b.
func DecodeU32(b []byte) (uint32, error) {
	if len(b) < 4 {
		return 0, fmt.Errorf("%w: truncated u32", ErrMalformedEncoding)
	}
	return binary.LittleEndian.Uint32(b), nil
}

// DecodeU64 reads a little-endian uint64 from the start of b.
func DecodeU64(b []byte) (uint64, error) {
	if len(b) < 8 {
		return 0, fmt.Errorf("%w: truncated u64", ErrMalformedEncoding)
	}
	return binary.LittleEndian.Uint64(b), nil
}

// DecodeI32 reads a little-endian int32 from the start of b.
func DecodeI32(b []byte) (int32, error) {
	v, err := DecodeU32(b)
	return int32(v), err
}

// DecodeI64 reads a little-endian int64 from the start of b.
func DecodeI64(b []byte) (int64, error) {
	v, err := DecodeU64(b)
	return int64(v), err
}
