package script

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
)

// MaxPushSize is the largest data element a push may carry.
const MaxPushSize = 520

// Kind tags the variant an Op holds.
type Kind uint8

const (
	// KindPush is a literal data push (OP_0, direct pushes, PUSHDATA1/2/4).
	KindPush Kind = iota
	// KindCode is any other defined opcode, including OP_1NEGATE and OP_1..OP_16.
	KindCode
	// KindInvalid marks bytes that do not decode to a defined op.
	KindInvalid
)

// Op is one operation of a script. The zero value is OP_0.
type Op struct {
	kind Kind
	code Opcode
	data []byte
}

// PushOp returns the canonical push of data: OP_0 for empty data, OP_1..OP_16
// and OP_1NEGATE for single-byte small numbers, otherwise the smallest of the
// direct and PUSHDATA forms.
func PushOp(data []byte) (Op, error) {
	if len(data) > MaxPushSize {
		return Op{}, fmt.Errorf("%w: %d bytes", ErrPushTooLarge, len(data))
	}
	if len(data) == 0 {
		return Op{kind: KindPush, code: Op0}, nil
	}
	if len(data) == 1 {
		switch {
		case data[0] >= 1 && data[0] <= 16:
			return CodeOp(SmallIntOpcode(int(data[0]))), nil
		case data[0] == 0x81:
			return CodeOp(Op1NEGATE), nil
		}
	}
	return Op{kind: KindPush, code: minimalPushCode(len(data)), data: clone(data)}, nil
}

// CodeOp returns an op for a non-data opcode. Passing a data push code or an
// undefined byte yields an invalid op.
func CodeOp(code Opcode) Op {
	switch {
	case code == Op0:
		return Op{kind: KindPush, code: Op0}
	case code <= OpPUSHDATA4 || !code.IsDefined():
		return Op{kind: KindInvalid, data: []byte{byte(code)}}
	}
	return Op{kind: KindCode, code: code}
}

func minimalPushCode(n int) Opcode {
	switch {
	case n <= int(OpDATA75):
		return Opcode(n)
	case n <= 0xff:
		return OpPUSHDATA1
	case n <= 0xffff:
		return OpPUSHDATA2
	}
	return OpPUSHDATA4
}

// Kind returns the variant tag.
func (o Op) Kind() Kind { return o.kind }

// Code returns the opcode byte. For invalid ops it is the first raw byte.
func (o Op) Code() Opcode {
	if o.kind == KindInvalid && len(o.data) > 0 {
		return Opcode(o.data[0])
	}
	return o.code
}

// Data returns a copy of the pushed bytes, or the raw bytes of an invalid op.
func (o Op) Data() []byte { return clone(o.data) }

// IsPush reports whether the op only pushes a value: data pushes, OP_1NEGATE
// and OP_1..OP_16.
func (o Op) IsPush() bool {
	return o.kind == KindPush || (o.kind == KindCode && o.code.IsPushCode())
}

// IsInvalid reports whether the op is the invalid sentinel.
func (o Op) IsInvalid() bool { return o.kind == KindInvalid }

// PushedValue returns the stack element the op pushes. ok is false for
// non-push ops.
func (o Op) PushedValue() (v []byte, ok bool) {
	switch {
	case o.kind == KindPush:
		return clone(o.data), true
	case o.kind != KindCode:
		return nil, false
	case o.code == Op1NEGATE:
		return []byte{0x81}, true
	case o.code >= Op1 && o.code <= Op16:
		return []byte{byte(o.code.SmallInt())}, true
	}
	return nil, false
}

// IsMinimalPush reports whether a push op used the smallest encoding for its
// data. Non-push ops are trivially minimal.
func (o Op) IsMinimalPush() bool {
	if o.kind != KindPush {
		return true
	}
	n := len(o.data)
	switch {
	case n == 0:
		return o.code == Op0
	case n == 1 && o.data[0] >= 1 && o.data[0] <= 16:
		return false
	case n == 1 && o.data[0] == 0x81:
		return false
	}
	return o.code == minimalPushCode(n)
}

// Equal reports whether two ops encode identically.
func (o Op) Equal(other Op) bool {
	return o.kind == other.kind && o.code == other.code && string(o.data) == string(other.data)
}

// EncodeSize returns the number of bytes Encode produces.
func (o Op) EncodeSize() int {
	switch o.kind {
	case KindInvalid:
		return len(o.data)
	case KindCode:
		return 1
	}
	switch o.code {
	case OpPUSHDATA1:
		return 2 + len(o.data)
	case OpPUSHDATA2:
		return 3 + len(o.data)
	case OpPUSHDATA4:
		return 5 + len(o.data)
	}
	return 1 + len(o.data)
}

// AppendEncode appends the wire encoding of o to buf.
func (o Op) AppendEncode(buf []byte) []byte {
	switch o.kind {
	case KindInvalid:
		return append(buf, o.data...)
	case KindCode:
		return append(buf, byte(o.code))
	}
	buf = append(buf, byte(o.code))
	switch o.code {
	case OpPUSHDATA1:
		buf = append(buf, byte(len(o.data)))
	case OpPUSHDATA2:
		buf = binary.LittleEndian.AppendUint16(buf, uint16(len(o.data)))
	case OpPUSHDATA4:
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(o.data)))
	}
	return append(buf, o.data...)
}

// Encode returns the wire encoding of o.
func (o Op) Encode() []byte {
	return o.AppendEncode(make([]byte, 0, o.EncodeSize()))
}

// String returns the assembly form of the op.
func (o Op) String() string {
	switch o.kind {
	case KindInvalid:
		return "[invalid " + hex.EncodeToString(o.data) + "]"
	case KindPush:
		if o.code == Op0 {
			return "0"
		}
		return hex.EncodeToString(o.data)
	}
	switch {
	case o.code == Op1NEGATE:
		return "-1"
	case o.code >= Op1 && o.code <= Op16:
		return fmt.Sprintf("%d", o.code.SmallInt())
	}
	return o.code.String()
}

// decodeOp reads one op from the front of b and returns it with the number
// of bytes consumed. It never fails: bytes that do not form a defined op
// come back as KindInvalid. A truncated push swallows the rest of b.
func decodeOp(b []byte) (Op, int) {
	code := Opcode(b[0])
	switch {
	case code == Op0:
		return Op{kind: KindPush, code: Op0}, 1
	case code <= OpDATA75:
		return pushFrom(b, code, 1, int(code))
	case code == OpPUSHDATA1:
		if len(b) < 2 {
			return invalidOp(b), len(b)
		}
		return pushFrom(b, code, 2, int(b[1]))
	case code == OpPUSHDATA2:
		if len(b) < 3 {
			return invalidOp(b), len(b)
		}
		return pushFrom(b, code, 3, int(binary.LittleEndian.Uint16(b[1:3])))
	case code == OpPUSHDATA4:
		if len(b) < 5 {
			return invalidOp(b), len(b)
		}
		n := binary.LittleEndian.Uint32(b[1:5])
		if uint64(n) > uint64(len(b)-5) {
			return invalidOp(b), len(b)
		}
		return pushFrom(b, code, 5, int(n))
	case !code.IsDefined():
		return invalidOp(b[:1]), 1
	}
	return Op{kind: KindCode, code: code}, 1
}

func pushFrom(b []byte, code Opcode, hdr, n int) (Op, int) {
	if len(b)-hdr < n {
		return invalidOp(b), len(b)
	}
	return Op{kind: KindPush, code: code, data: clone(b[hdr : hdr+n])}, hdr + n
}

func invalidOp(raw []byte) Op {
	return Op{kind: KindInvalid, data: clone(raw)}
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	c := make([]byte, len(b))
	copy(c, b)
	return c
}
