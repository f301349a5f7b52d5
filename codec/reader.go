package codec

import (
	"fmt"

	"github.com/bsv-blockchain/go-sdk/chainhash"
)

// Reader is a forward-only cursor over an immutable byte slice. Each Read
// method either consumes exactly the bytes of one value or fails without
// advancing.
type Reader struct {
	b   []byte
	off int
}

// NewReader returns a Reader positioned at the start of b.
func NewReader(b []byte) *Reader {
	return &Reader{b: b}
}

// Offset returns the number of bytes consumed so far.
func (r *Reader) Offset() int { return r.off }

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int { return len(r.b) - r.off }

// ExpectEOF fails when unread bytes remain.
func (r *Reader) ExpectEOF() error {
	if r.Remaining() != 0 {
		return fmt.Errorf("%w: %d trailing bytes", ErrMalformedEncoding, r.Remaining())
	}
	return nil
}

// ReadU8 reads one byte.
func (r *Reader) ReadU8() (uint8, error) {
	v, err := DecodeU8(r.b[r.off:])
	if err != nil {
		return 0, err
	}
	r.off++
	return v, nil
}

// ReadU16 reads a little-endian uint16.
func (r *Reader) ReadU16() (uint16, error) {
	v, err := DecodeU16(r.b[r.off:])
	if err != nil {
		return 0, err
	}
	r.off += 2
	return v, nil
}

// ReadU32 reads a little-endian uint32.
func (r *Reader) ReadU32() (uint32, error) {
	v, err := DecodeU32(r.b[r.off:])
	if err != nil {
		return 0, err
	}
	r.off += 4
	return v, nil
}

// ReadU64 reads a little-endian uint64.
func (r *Reader) ReadU64() (uint64, error) {
	v, err := DecodeU64(r.b[r.off:])
	if err != nil {
		return 0, err
	}
	r.off += 8
	return v, nil
}

// ReadI32 reads a little-endian int32.
func (r *Reader) ReadI32() (int32, error) {
	v, err := r.ReadU32()
	return int32(v), err
}

// ReadI64 reads a little-endian int64.
func (r *Reader) ReadI64() (int64, error) {
	v, err := r.ReadU64()
	return int64(v), err
}

// ReadVarInt reads a canonical compact-size integer.
func (r *Reader) ReadVarInt() (uint64, error) {
	v, n, err := DecodeVarInt(r.b[r.off:])
	if err != nil {
		return 0, err
	}
	r.off += n
	return v, nil
}

// ReadBytes reads exactly n bytes. The result is a copy.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n < 0 || n > r.Remaining() {
		return nil, fmt.Errorf("%w: want %d bytes, have %d", ErrMalformedEncoding, n, r.Remaining())
	}
	out := make([]byte, n)
	copy(out, r.b[r.off:r.off+n])
	r.off += n
	return out, nil
}

// ReadVarBytes reads a length-prefixed byte string. The result is a copy.
func (r *Reader) ReadVarBytes() ([]byte, error) {
	v, n, err := DecodeVarBytes(r.b[r.off:])
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(v))
	copy(out, v)
	r.off += n
	return out, nil
}

// ReadHash reads a 32-byte digest in internal byte order.
func (r *Reader) ReadHash() (chainhash.Hash, error) {
	var h chainhash.Hash
	if r.Remaining() < chainhash.HashSize {
		return h, fmt.Errorf("%w: truncated hash", ErrMalformedEncoding)
	}
	copy(h[:], r.b[r.off:r.off+chainhash.HashSize])
	r.off += chainhash.HashSize
	return h, nil
}
