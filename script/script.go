// Package script models scripts as sequences of typed operations over a
// closed opcode set, with the standard templates the wallet builds.
package script

import (
	"encoding/hex"
	"strings"
)

// Script is an ordered sequence of ops.
type Script []Op

// Parse decodes raw script bytes. It never fails; undecodable bytes become
// invalid ops so malformed scripts can still be inspected and re-encoded.
func Parse(b []byte) Script {
	var s Script
	for len(b) > 0 {
		op, n := decodeOp(b)
		s = append(s, op)
		b = b[n:]
	}
	return s
}

// ParseHex decodes a hex string and parses the result.
func ParseHex(h string) (Script, error) {
	b, err := hex.DecodeString(h)
	if err != nil {
		return nil, err
	}
	return Parse(b), nil
}

// Bytes returns the wire encoding of the script.
func (s Script) Bytes() []byte {
	buf := make([]byte, 0, s.Size())
	for _, op := range s {
		buf = op.AppendEncode(buf)
	}
	return buf
}

// Size returns the encoded length in bytes.
func (s Script) Size() int {
	n := 0
	for _, op := range s {
		n += op.EncodeSize()
	}
	return n
}

// Hex returns the hex encoding of Bytes.
func (s Script) Hex() string {
	return hex.EncodeToString(s.Bytes())
}

// String returns the one-line assembly form.
func (s Script) String() string {
	parts := make([]string, len(s))
	for i, op := range s {
		parts[i] = op.String()
	}
	return strings.Join(parts, " ")
}

// IsPushOnly reports whether every op only pushes data.
func (s Script) IsPushOnly() bool {
	for _, op := range s {
		if !op.IsPush() {
			return false
		}
	}
	return true
}

// HasInvalid reports whether any op failed to decode.
func (s Script) HasInvalid() bool {
	for _, op := range s {
		if op.IsInvalid() {
			return true
		}
	}
	return false
}

// Equal reports whether two scripts encode identically.
func (s Script) Equal(other Script) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if !s[i].Equal(other[i]) {
			return false
		}
	}
	return true
}

// Clone returns a copy of s that shares no memory with it.
func (s Script) Clone() Script {
	if s == nil {
		return nil
	}
	c := make(Script, len(s))
	for i, op := range s {
		c[i] = Op{kind: op.kind, code: op.code, data: clone(op.data)}
	}
	return c
}
