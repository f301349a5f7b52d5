package script

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

func TestParseRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		hex  string
		asm  string
	}{
		{"p2pkh", "76a914751e76e8199196d454941c45d1b3a323f1433bd688ac",
			"OP_DUP OP_HASH160 751e76e8199196d454941c45d1b3a323f1433bd6 OP_EQUALVERIFY OP_CHECKSIG"},
		{"small ints", "00514f60", "0 1 -1 16"},
		{"non-minimal direct push", "0101", "01"},
		{"non-minimal pushdata1", "4c0201ff", "01ff"},
		{"pushdata2", "4d0200abcd", "abcd"},
		{"pushdata4", "4e01000000ee", "ee"},
		{"empty", "", ""},
		{"undefined byte", "51ff51", "1 [invalid ff] 1"},
		{"truncated direct push", "5103aabb", "1 [invalid 03aabb]"},
		{"truncated pushdata1 length", "4c", "[invalid 4c]"},
		{"truncated pushdata4", "4e05000000aa", "[invalid 4e05000000aa]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := mustHex(t, tt.hex)
			s := Parse(raw)
			assert.Equal(t, raw, append([]byte{}, s.Bytes()...))
			assert.Equal(t, len(raw), s.Size())
			assert.Equal(t, tt.asm, s.String())
		})
	}
}

func TestParseInvalidOps(t *testing.T) {
	s := Parse(mustHex(t, "51ff"))
	require.Len(t, s, 2)
	assert.False(t, s[0].IsInvalid())
	assert.True(t, s[1].IsInvalid())
	assert.Equal(t, KindInvalid, s[1].Kind())
	assert.Equal(t, Opcode(0xff), s[1].Code())
	assert.True(t, s.HasInvalid())
	assert.False(t, s.IsPushOnly())
}

func TestPushOpCanonical(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		code Opcode
		kind Kind
	}{
		{"empty", nil, Op0, KindPush},
		{"small int", []byte{7}, Op7, KindCode},
		{"sixteen", []byte{16}, Op16, KindCode},
		{"negative one", []byte{0x81}, Op1NEGATE, KindCode},
		{"zero byte", []byte{0}, OpDATA1, KindPush},
		{"seventeen", []byte{17}, OpDATA1, KindPush},
		{"75 bytes", bytes.Repeat([]byte{1}, 75), OpDATA75, KindPush},
		{"76 bytes", bytes.Repeat([]byte{1}, 76), OpPUSHDATA1, KindPush},
		{"256 bytes", bytes.Repeat([]byte{1}, 256), OpPUSHDATA2, KindPush},
		{"520 bytes", bytes.Repeat([]byte{1}, MaxPushSize), OpPUSHDATA2, KindPush},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op, err := PushOp(tt.data)
			require.NoError(t, err)
			assert.Equal(t, tt.code, op.Code())
			assert.Equal(t, tt.kind, op.Kind())
			assert.True(t, op.IsPush())
			assert.True(t, op.IsMinimalPush())

			v, ok := op.PushedValue()
			require.True(t, ok)
			assert.Equal(t, len(tt.data), len(v))
			assert.True(t, bytes.Equal(tt.data, v))

			decoded := Parse(op.Encode())
			require.Len(t, decoded, 1)
			assert.True(t, op.Equal(decoded[0]))
		})
	}
}

func TestPushOpTooLarge(t *testing.T) {
	_, err := PushOp(make([]byte, MaxPushSize+1))
	assert.ErrorIs(t, err, ErrPushTooLarge)

	_, err = NewBuilder().AddOp(OpDUP).AddData(make([]byte, MaxPushSize+1)).AddOp(OpDROP).Script()
	assert.ErrorIs(t, err, ErrPushTooLarge)
}

func TestIsMinimalPush(t *testing.T) {
	tests := []struct {
		hex     string
		minimal bool
	}{
		{"00", true},
		{"0100", true},
		{"0101", false},
		{"0110", false},
		{"0181", false},
		{"0111", true},
		{"4c00", false},
		{"4c0111", false},
		{"4d0100aa", false},
	}

	for _, tt := range tests {
		t.Run(tt.hex, func(t *testing.T) {
			s := Parse(mustHex(t, tt.hex))
			require.Len(t, s, 1)
			assert.Equal(t, tt.minimal, s[0].IsMinimalPush())
		})
	}
}

func TestCodeOpRejectsPushAndUndefined(t *testing.T) {
	assert.True(t, CodeOp(OpDATA20).IsInvalid())
	assert.True(t, CodeOp(OpPUSHDATA1).IsInvalid())
	assert.True(t, CodeOp(Opcode(0xbc)).IsInvalid())
	assert.False(t, CodeOp(OpCHECKDATASIG).IsInvalid())
	assert.Equal(t, KindPush, CodeOp(Op0).Kind())

	_, err := NewBuilder().AddOp(OpDATA1).Script()
	assert.ErrorIs(t, err, ErrInvalidTemplate)
}

func TestOpcodeProperties(t *testing.T) {
	assert.Equal(t, "OP_CHECKSIG", OpCHECKSIG.String())
	assert.Equal(t, "OP_DATA_20", OpDATA20.String())
	assert.Equal(t, "OP_16", Op16.String())
	assert.Equal(t, "OP_UNKNOWN188", Opcode(0xbc).String())

	for _, op := range []Opcode{OpINVERT, Op2MUL, Op2DIV, OpMUL, OpLSHIFT, OpRSHIFT} {
		assert.True(t, op.IsDisabled(), op.String())
	}
	for _, op := range []Opcode{OpCAT, OpSPLIT, OpAND, OpDIV, OpMOD, OpNUM2BIN} {
		assert.False(t, op.IsDisabled(), op.String())
	}

	assert.True(t, Op1NEGATE.IsPushCode())
	assert.False(t, OpRESERVED.IsPushCode())
	assert.False(t, OpNOP.IsPushCode())
	assert.Equal(t, 16, Op16.SmallInt())
	assert.Equal(t, Op5, SmallIntOpcode(5))
	assert.Equal(t, Op0, SmallIntOpcode(0))
}

func TestPayToKeyHash(t *testing.T) {
	hash := mustHex(t, "751e76e8199196d454941c45d1b3a323f1433bd6")

	lock, err := PayToKeyHashLock(hash)
	require.NoError(t, err)
	assert.Equal(t, "76a914751e76e8199196d454941c45d1b3a323f1433bd688ac", lock.Hex())
	assert.Equal(t, 25, lock.Size())

	got, ok := ExtractKeyHash(lock)
	require.True(t, ok)
	assert.Equal(t, hash, got)
	assert.True(t, IsPayToKeyHash(Parse(lock.Bytes())))

	_, err = PayToKeyHashLock(hash[:19])
	assert.ErrorIs(t, err, ErrInvalidTemplate)

	sig := bytes.Repeat([]byte{0x30}, 72)
	pub := bytes.Repeat([]byte{0x02}, 33)
	unlock, err := PayToKeyHashUnlock(sig, pub)
	require.NoError(t, err)
	assert.True(t, unlock.IsPushOnly())
	assert.Equal(t, 1+72+1+33, unlock.Size())
}

func TestExtractKeyHashRejectsOtherScripts(t *testing.T) {
	tests := []string{
		"",
		"76a914751e76e8199196d454941c45d1b3a323f1433bd688",
		"76a913751e76e8199196d454941c45d1b3a323f1433b88ac",
		"76a9144c14751e76e8199196d454941c45d1b3a323f1433bd688ac",
		"6a0401020304",
	}
	for _, h := range tests {
		_, ok := ExtractKeyHash(Parse(mustHex(t, h)))
		assert.False(t, ok, h)
	}
}

func TestReturnData(t *testing.T) {
	s, err := ReturnData([]byte("trade"), []byte{0xde, 0xad})
	require.NoError(t, err)
	assert.Equal(t, "6a05747261646502dead", s.Hex())
	assert.True(t, IsReturnData(s))
	assert.False(t, IsPayToKeyHash(s))

	payload, ok := ReturnDataPayload(s)
	require.True(t, ok)
	assert.Equal(t, [][]byte{[]byte("trade"), {0xde, 0xad}}, payload)

	assert.True(t, IsReturnData(Parse(mustHex(t, "006a0101"))))
	assert.False(t, IsReturnData(Parse(mustHex(t, "6a76"))))
	assert.False(t, IsReturnData(Parse(mustHex(t, "51"))))
}

func TestMultiSig(t *testing.T) {
	k1 := bytes.Repeat([]byte{0x02}, 33)
	k2 := bytes.Repeat([]byte{0x03}, 33)

	lock, err := MultiSigLock(2, [][]byte{k1, k2})
	require.NoError(t, err)
	require.Len(t, lock, 5)
	assert.Equal(t, Op2, lock[0].Code())
	assert.Equal(t, Op2, lock[3].Code())
	assert.Equal(t, OpCHECKMULTISIG, lock[4].Code())

	_, err = MultiSigLock(3, [][]byte{k1, k2})
	assert.ErrorIs(t, err, ErrInvalidTemplate)
	_, err = MultiSigLock(1, nil)
	assert.ErrorIs(t, err, ErrInvalidTemplate)

	unlock, err := MultiSigUnlock([][]byte{{0x30, 0x01}, {0x30, 0x02}})
	require.NoError(t, err)
	assert.Equal(t, "00023001023002", unlock.Hex())
	assert.True(t, unlock.IsPushOnly())
}

func TestBuilderAddInt64(t *testing.T) {
	s, err := NewBuilder().
		AddInt64(0).
		AddInt64(-1).
		AddInt64(16).
		AddInt64(17).
		AddInt64(-2).
		AddInt64(500000).
		Script()
	require.NoError(t, err)
	assert.Equal(t, "0 -1 16 11 82 20a107", s.String())
	for _, op := range s {
		assert.True(t, op.IsMinimalPush())
	}
}

func TestScriptCloneIndependent(t *testing.T) {
	orig := Parse(mustHex(t, "03aabbcc"))
	c := orig.Clone()
	require.True(t, orig.Equal(c))

	d := c[0].Data()
	d[0] = 0
	assert.True(t, orig.Equal(c))
}
