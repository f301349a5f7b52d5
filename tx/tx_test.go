package tx

import (
	"bytes"
	"testing"

	"github.com/bsv-blockchain/go-sdk/chainhash"
	sdkscript "github.com/bsv-blockchain/go-sdk/script"
	"github.com/bsv-blockchain/go-sdk/transaction"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitfsorg/libtrade-go/codec"
	"github.com/bitfsorg/libtrade-go/script"
)

func testLock(t *testing.T, fill byte) script.Script {
	t.Helper()
	s, err := script.PayToKeyHashLock(bytes.Repeat([]byte{fill}, 20))
	require.NoError(t, err)
	return s
}

func testTx(t *testing.T) *Transaction {
	t.Helper()
	unlock, err := script.PayToKeyHashUnlock(bytes.Repeat([]byte{0x30}, 71), bytes.Repeat([]byte{0x02}, 33))
	require.NoError(t, err)

	inputs := []Input{
		{
			PrevOut:      OutPoint{Hash: chainhash.Hash{0x01, 0x02}, Index: 1},
			UnlockScript: unlock,
			Sequence:     DefaultSequence,
		},
		{
			PrevOut:  OutPoint{Hash: chainhash.Hash{0xaa}, Index: 7},
			Sequence: 0xfffffffe,
		},
	}
	outputs := []Output{
		{Value: 50000, LockScript: testLock(t, 0x11)},
		{Value: 49769, LockScript: testLock(t, 0x22)},
	}
	tx, err := New(DefaultVersion, inputs, outputs, 600000)
	require.NoError(t, err)
	return tx
}

func TestNewRequiresInputsAndOutputs(t *testing.T) {
	out := []Output{{Value: 1000, LockScript: testLock(t, 1)}}
	in := []Input{NewInput(OutPoint{})}

	_, err := New(DefaultVersion, nil, out, 0)
	assert.ErrorIs(t, err, ErrNoInputs)

	_, err = New(DefaultVersion, in, nil, 0)
	assert.ErrorIs(t, err, ErrNoOutputs)
}

func TestTransactionRoundTrip(t *testing.T) {
	tx := testTx(t)
	raw := tx.Bytes()
	assert.Equal(t, len(raw), tx.SerializeSize())

	decoded, err := Deserialize(raw)
	require.NoError(t, err)
	assert.Equal(t, raw, decoded.Bytes())
	assert.Equal(t, tx.TxID(), decoded.TxID())
	assert.Equal(t, int32(2), decoded.Version())
	assert.Equal(t, uint32(600000), decoded.LockTime())
	assert.Equal(t, 2, decoded.NumInputs())
	assert.Equal(t, 2, decoded.NumOutputs())
	assert.Equal(t, uint64(99769), decoded.TotalOutput())

	in, err := decoded.Input(1)
	require.NoError(t, err)
	assert.Equal(t, uint32(7), in.PrevOut.Index)
	assert.Equal(t, uint32(0xfffffffe), in.Sequence)
	assert.Empty(t, in.UnlockScript)

	fromHex, err := NewFromHex(tx.Hex())
	require.NoError(t, err)
	assert.Equal(t, raw, fromHex.Bytes())
}

func TestTransactionMatchesSDK(t *testing.T) {
	tx := testTx(t)

	sdkTx, err := transaction.NewTransactionFromBytes(tx.Bytes())
	require.NoError(t, err)
	assert.Equal(t, tx.Bytes(), sdkTx.Bytes())

	id := tx.TxID()
	assert.Equal(t, sdkTx.TxID().CloneBytes(), id.CloneBytes())
	assert.Equal(t, sdkTx.TxID().String(), id.String())
}

func TestDeserializeSDKTransaction(t *testing.T) {
	prev := chainhash.Hash{0x42}
	lock := testLock(t, 0x33)

	sdkTx := transaction.NewTransaction()
	sdkTx.Version = 1
	sdkTx.LockTime = 17
	sdkTx.AddInput(&transaction.TransactionInput{
		SourceTXID:       &prev,
		SourceTxOutIndex: 3,
		SequenceNumber:   0xffffffff,
		UnlockingScript:  sdkscript.NewFromBytes([]byte{0x51}),
	})
	sdkTx.AddOutput(&transaction.TransactionOutput{
		Satoshis:      1234,
		LockingScript: sdkscript.NewFromBytes(lock.Bytes()),
	})

	tx, err := Deserialize(sdkTx.Bytes())
	require.NoError(t, err)
	assert.Equal(t, sdkTx.Bytes(), tx.Bytes())
	assert.Equal(t, sdkTx.TxID().CloneBytes(), func() []byte { h := tx.TxID(); return h[:] }())

	in, err := tx.Input(0)
	require.NoError(t, err)
	assert.Equal(t, prev, in.PrevOut.Hash)
	assert.Equal(t, uint32(3), in.PrevOut.Index)

	out, err := tx.Output(0)
	require.NoError(t, err)
	assert.Equal(t, uint64(1234), out.Value)
	assert.True(t, lock.Equal(out.LockScript))
}

func TestDeserializeRejectsMalformed(t *testing.T) {
	raw := testTx(t).Bytes()

	tests := []struct {
		name string
		b    []byte
	}{
		{"empty", nil},
		{"truncated", raw[:len(raw)-1]},
		{"trailing byte", append(append([]byte{}, raw...), 0x00)},
		{"zero inputs", []byte{2, 0, 0, 0, 0, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}},
		{"huge input count", []byte{2, 0, 0, 0, 0xfe, 0xff, 0xff, 0xff, 0xff}},
		{"non-canonical count", append([]byte{2, 0, 0, 0, 0xfd, 0x02, 0x00}, raw[5:]...)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Deserialize(tt.b)
			assert.ErrorIs(t, err, codec.ErrMalformedEncoding)
		})
	}
}

func TestTransactionAccessorsCopy(t *testing.T) {
	tx := testTx(t)
	before := tx.Bytes()

	ins := tx.Inputs()
	ins[0].Sequence = 0
	ins[0].UnlockScript = nil
	outs := tx.Outputs()
	outs[0].Value = 1
	out, err := tx.Output(1)
	require.NoError(t, err)
	out.LockScript[0] = script.CodeOp(script.OpRETURN)

	assert.Equal(t, before, tx.Bytes())

	_, err = tx.Input(2)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	_, err = tx.Output(-1)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestTxIDTracksContent(t *testing.T) {
	tx := testTx(t)
	outs := tx.Outputs()
	outs[0].Value++

	changed, err := New(tx.Version(), tx.Inputs(), outs, tx.LockTime())
	require.NoError(t, err)
	assert.NotEqual(t, tx.TxID(), changed.TxID())
	assert.Equal(t, tx.TxID(), tx.TxID())
}

func TestWithUnlockScripts(t *testing.T) {
	tx := testTx(t)
	unlock := script.Script{script.CodeOp(script.Op1)}

	signed, err := tx.WithUnlockScripts([]script.Script{nil, unlock})
	require.NoError(t, err)
	in, err := signed.Input(1)
	require.NoError(t, err)
	assert.True(t, unlock.Equal(in.UnlockScript))

	_, err = tx.WithUnlockScripts([]script.Script{nil})
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestSerializeSizes(t *testing.T) {
	out := Output{Value: 1, LockScript: testLock(t, 1)}
	assert.Equal(t, 34, out.SerializeSize())
	assert.Len(t, out.Bytes(), 34)

	in := NewInput(OutPoint{})
	assert.Equal(t, 41, in.SerializeSize())
}

func TestDust(t *testing.T) {
	lock := testLock(t, 1)
	assert.True(t, IsDust(Output{Value: DustThreshold - 1, LockScript: lock}, DustThreshold))
	assert.False(t, IsDust(Output{Value: DustThreshold, LockScript: lock}, DustThreshold))

	data, err := script.ReturnData([]byte("offer"))
	require.NoError(t, err)
	assert.False(t, IsDust(Output{Value: 0, LockScript: data}, DustThreshold))

	err = CheckDust([]Output{
		{Value: DustThreshold, LockScript: lock},
		{Value: DustThreshold - 1, LockScript: lock},
	}, DustThreshold)
	assert.ErrorIs(t, err, ErrDustOutput)
	assert.NoError(t, CheckDust([]Output{{Value: DustThreshold, LockScript: lock}}, DustThreshold))
}

func TestOutPointString(t *testing.T) {
	op := NewOutPoint(chainhash.Hash{0x01}, 2)
	assert.Equal(t, "0000000000000000000000000000000000000000000000000000000000000001:2", op.String())
}

func TestUTXOs(t *testing.T) {
	tr := testTx(t)
	all := tr.UTXOs(nil)
	require.Len(t, all, tr.NumOutputs())
	for i, u := range all {
		assert.Equal(t, tr.OutPoint(uint32(i)), u.OutPoint)
		out, err := tr.Output(i)
		require.NoError(t, err)
		assert.Equal(t, out.Value, u.Value())
	}
	assert.Equal(t, tr.TotalOutput(), SumUTXOs(all))

	none := tr.UTXOs(func(Output) bool { return false })
	assert.Empty(t, none)
}
