package codec

import "github.com/bsv-blockchain/go-sdk/chainhash"

// Writer accumulates an encoding. Writes never fail.
type Writer struct {
	buf []byte
}

// NewWriter returns a Writer with capacity for sizeHint bytes.
func NewWriter(sizeHint int) *Writer {
	return &Writer{buf: make([]byte, 0, sizeHint)}
}

// Bytes returns the accumulated bytes.
func (w *Writer) Bytes() []byte { return w.buf }

// Len returns the number of bytes written.
func (w *Writer) Len() int { return len(w.buf) }

func (w *Writer) WriteU8(v uint8)   { w.buf = AppendU8(w.buf, v) }
func (w *Writer) WriteU16(v uint16) { w.buf = AppendU16(w.buf, v) }
func (w *Writer) WriteU32(v uint32) { w.buf = AppendU32(w.buf, v) }
func (w *Writer) WriteU64(v uint64) { w.buf = AppendU64(w.buf, v) }
func (w *Writer) WriteI32(v int32)  { w.buf = AppendI32(w.buf, v) }
func (w *Writer) WriteI64(v int64)  { w.buf = AppendI64(w.buf, v) }

// WriteVarInt writes n as a canonical compact-size integer.
func (w *Writer) WriteVarInt(n uint64) { w.buf = PutVarInt(w.buf, n) }

// WriteBytes writes b verbatim.
func (w *Writer) WriteBytes(b []byte) { w.buf = append(w.buf, b...) }

// WriteVarBytes writes b prefixed with its compact-size length.
func (w *Writer) WriteVarBytes(b []byte) {
	w.buf = PutVarInt(w.buf, uint64(len(b)))
	w.buf = append(w.buf, b...)
}

// WriteHash writes a 32-byte digest in internal byte order.
func (w *Writer) WriteHash(h chainhash.Hash) { w.buf = append(w.buf, h[:]...) }
