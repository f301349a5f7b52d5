package sighash

import (
	"bytes"
	"testing"

	"github.com/bsv-blockchain/go-sdk/chainhash"
	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	bsvhash "github.com/bsv-blockchain/go-sdk/primitives/hash"
	sdkscript "github.com/bsv-blockchain/go-sdk/script"
	"github.com/bsv-blockchain/go-sdk/transaction"
	sdksighash "github.com/bsv-blockchain/go-sdk/transaction/sighash"
	"github.com/bsv-blockchain/go-sdk/transaction/template/p2pkh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitfsorg/libtrade-go/script"
	"github.com/bitfsorg/libtrade-go/tx"
)

func generateTestKeyPair(t *testing.T) (*ec.PrivateKey, *ec.PublicKey) {
	t.Helper()
	privKey, err := ec.NewPrivateKey()
	require.NoError(t, err)
	return privKey, privKey.PubKey()
}

func p2pkhLock(t *testing.T, pub *ec.PublicKey) script.Script {
	t.Helper()
	s, err := script.PayToKeyHashLock(bsvhash.Hash160(pub.Compressed()))
	require.NoError(t, err)
	return s
}

type fixture struct {
	tx       *tx.Transaction
	prevLock []script.Script
	prevVal  []uint64
}

func newFixture(t *testing.T, nIn, nOut int) fixture {
	t.Helper()
	f := fixture{}
	var ins []tx.Input
	for i := 0; i < nIn; i++ {
		_, pub := generateTestKeyPair(t)
		ins = append(ins, tx.Input{
			PrevOut:  tx.OutPoint{Hash: chainhash.Hash{byte(i + 1), 0xee}, Index: uint32(i)},
			Sequence: tx.DefaultSequence - uint32(i),
		})
		f.prevLock = append(f.prevLock, p2pkhLock(t, pub))
		f.prevVal = append(f.prevVal, 100000+uint64(i))
	}
	var outs []tx.Output
	for i := 0; i < nOut; i++ {
		_, pub := generateTestKeyPair(t)
		outs = append(outs, tx.Output{Value: 1000 * uint64(i+1), LockScript: p2pkhLock(t, pub)})
	}
	var err error
	f.tx, err = tx.New(tx.DefaultVersion, ins, outs, 12)
	require.NoError(t, err)
	return f
}

func (f fixture) sdkTx(t *testing.T) *transaction.Transaction {
	t.Helper()
	sdkTx, err := transaction.NewTransactionFromBytes(f.tx.Bytes())
	require.NoError(t, err)
	for i := range sdkTx.Inputs {
		sdkTx.Inputs[i].SetSourceTxOutput(&transaction.TransactionOutput{
			Satoshis:      f.prevVal[i],
			LockingScript: sdkscript.NewFromBytes(f.prevLock[i].Bytes()),
		})
	}
	return sdkTx
}

func TestHashMatchesSDK(t *testing.T) {
	f := newFixture(t, 2, 3)
	sdkTx := f.sdkTx(t)

	flags := []Flag{
		AllForkID,
		None | ForkID,
		Single | ForkID,
		AllForkID | AnyOneCanPay,
		None | ForkID | AnyOneCanPay,
		Single | ForkID | AnyOneCanPay,
	}

	for _, flag := range flags {
		t.Run(flag.String(), func(t *testing.T) {
			for idx := 0; idx < 2; idx++ {
				got, err := Hash(f.tx, idx, f.prevLock[idx], f.prevVal[idx], flag)
				require.NoError(t, err)

				want, err := sdkTx.CalcInputSignatureHash(uint32(idx), sdksighash.Flag(flag))
				require.NoError(t, err)
				assert.Equal(t, want, got[:], "input %d", idx)
			}
		})
	}
}

func TestPreimageLayout(t *testing.T) {
	f := newFixture(t, 1, 1)
	pre, err := Preimage(f.tx, 0, f.prevLock[0], f.prevVal[0], AllForkID)
	require.NoError(t, err)

	// version, two hashes, outpoint, 25-byte script with its length,
	// value, sequence, outputs hash, locktime, flags.
	assert.Len(t, pre, 4+32+32+36+1+25+8+4+32+4+4)
	assert.Equal(t, []byte{2, 0, 0, 0}, pre[:4])
	assert.Equal(t, []byte{0x41, 0, 0, 0}, pre[len(pre)-4:])
	assert.Equal(t, []byte{12, 0, 0, 0}, pre[len(pre)-8:len(pre)-4])
}

func TestPreimageZeroedHashes(t *testing.T) {
	f := newFixture(t, 2, 1)
	zero := make([]byte, 32)

	pre, err := Preimage(f.tx, 0, f.prevLock[0], f.prevVal[0], AllForkID|AnyOneCanPay)
	require.NoError(t, err)
	assert.Equal(t, zero, pre[4:36], "hashPrevouts")
	assert.Equal(t, zero, pre[36:68], "hashSequence")

	pre, err = Preimage(f.tx, 0, f.prevLock[0], f.prevVal[0], None|ForkID)
	require.NoError(t, err)
	assert.NotEqual(t, zero, pre[4:36])
	assert.Equal(t, zero, pre[36:68])
	assert.Equal(t, zero, pre[len(pre)-40:len(pre)-8], "hashOutputs")

	// SINGLE with no matching output commits to a zero outputs hash.
	pre, err = Preimage(f.tx, 1, f.prevLock[1], f.prevVal[1], Single|ForkID)
	require.NoError(t, err)
	assert.Equal(t, zero, pre[len(pre)-40:len(pre)-8])
}

func TestPreimageInputIndex(t *testing.T) {
	f := newFixture(t, 1, 1)
	_, err := Preimage(f.tx, 1, f.prevLock[0], f.prevVal[0], AllForkID)
	assert.ErrorIs(t, err, ErrInputIndex)
	_, err = Preimage(f.tx, -1, f.prevLock[0], f.prevVal[0], AllForkID)
	assert.ErrorIs(t, err, ErrInputIndex)
}

func TestHashBindsOutputs(t *testing.T) {
	f := newFixture(t, 1, 2)
	base, err := Hash(f.tx, 0, f.prevLock[0], f.prevVal[0], AllForkID)
	require.NoError(t, err)

	outs := f.tx.Outputs()
	outs[1].Value++
	changedValue, err := tx.New(f.tx.Version(), f.tx.Inputs(), outs, f.tx.LockTime())
	require.NoError(t, err)
	h, err := Hash(changedValue, 0, f.prevLock[0], f.prevVal[0], AllForkID)
	require.NoError(t, err)
	assert.NotEqual(t, base, h)

	outs = f.tx.Outputs()
	outs[0].LockScript = f.prevLock[0]
	changedScript, err := tx.New(f.tx.Version(), f.tx.Inputs(), outs, f.tx.LockTime())
	require.NoError(t, err)
	h, err = Hash(changedScript, 0, f.prevLock[0], f.prevVal[0], AllForkID)
	require.NoError(t, err)
	assert.NotEqual(t, base, h)

	// The spent value is committed too.
	h, err = Hash(f.tx, 0, f.prevLock[0], f.prevVal[0]+1, AllForkID)
	require.NoError(t, err)
	assert.NotEqual(t, base, h)
}

func TestAnyOneCanPayIgnoresOtherInputs(t *testing.T) {
	f := newFixture(t, 2, 1)
	flag := AllForkID | AnyOneCanPay
	base, err := Hash(f.tx, 0, f.prevLock[0], f.prevVal[0], flag)
	require.NoError(t, err)

	ins := f.tx.Inputs()
	ins[1].PrevOut.Index = 99
	ins[1].Sequence = 0
	other, err := tx.New(f.tx.Version(), ins, f.tx.Outputs(), f.tx.LockTime())
	require.NoError(t, err)

	h, err := Hash(other, 0, f.prevLock[0], f.prevVal[0], flag)
	require.NoError(t, err)
	assert.Equal(t, base, h)
}

func TestUnlockScriptMatchesSDKTemplate(t *testing.T) {
	priv, pub := generateTestKeyPair(t)
	f := newFixture(t, 1, 2)
	f.prevLock[0] = p2pkhLock(t, pub)

	sig, err := SignInput(priv, f.tx, 0, f.prevLock[0], f.prevVal[0], AllForkID)
	require.NoError(t, err)
	unlock, err := script.PayToKeyHashUnlock(sig, pub.Compressed())
	require.NoError(t, err)

	sdkTx := f.sdkTx(t)
	unlocker, err := p2pkh.Unlock(priv, nil)
	require.NoError(t, err)
	sdkTx.Inputs[0].UnlockingScriptTemplate = unlocker
	require.NoError(t, sdkTx.Sign())

	assert.Equal(t, []byte(*sdkTx.Inputs[0].UnlockingScript), unlock.Bytes())

	der := sig[:len(sig)-1]
	viaHelper, err := UnlockScript(der, AllForkID, pub.Compressed())
	require.NoError(t, err)
	assert.True(t, unlock.Equal(viaHelper))
}

func TestSignDeterministicLowS(t *testing.T) {
	priv, _ := generateTestKeyPair(t)
	pre := []byte("preimage")

	a, err := Sign(priv, pre)
	require.NoError(t, err)
	b, err := Sign(priv, pre)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.NoError(t, CheckDEREncoding(a))

	_, err = Sign(nil, pre)
	assert.ErrorIs(t, err, ErrNilKey)
}

func TestVerify(t *testing.T) {
	priv, pub := generateTestKeyPair(t)
	_, otherPub := generateTestKeyPair(t)
	f := newFixture(t, 2, 2)
	f.prevLock[1] = p2pkhLock(t, pub)

	sig, err := SignInput(priv, f.tx, 1, f.prevLock[1], f.prevVal[1], AllForkID)
	require.NoError(t, err)

	ok, err := Verify(sig, pub.Compressed(), f.tx, 1, f.prevLock[1], f.prevVal[1])
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Verify(sig, pub.Uncompressed(), f.tx, 1, f.prevLock[1], f.prevVal[1])
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Verify(sig, otherPub.Compressed(), f.tx, 1, f.prevLock[1], f.prevVal[1])
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = Verify(sig, pub.Compressed(), f.tx, 0, f.prevLock[1], f.prevVal[1])
	require.NoError(t, err)
	assert.False(t, ok, "signature replayed on another input")

	ok, err = Verify(sig, pub.Compressed(), f.tx, 1, f.prevLock[1], f.prevVal[1]-1)
	require.NoError(t, err)
	assert.False(t, ok, "signature replayed with another value")

	ok, err = Verify(nil, pub.Compressed(), f.tx, 1, f.prevLock[1], f.prevVal[1])
	require.NoError(t, err)
	assert.False(t, ok)

	noFork := append(append([]byte{}, sig[:len(sig)-1]...), byte(All))
	_, err = Verify(noFork, pub.Compressed(), f.tx, 1, f.prevLock[1], f.prevVal[1])
	assert.ErrorIs(t, err, ErrInvalidHashType)

	_, err = Verify(sig, pub.Compressed()[:32], f.tx, 1, f.prevLock[1], f.prevVal[1])
	assert.ErrorIs(t, err, ErrPubKeyEncoding)
}

func TestSignInputRejectsBadFlags(t *testing.T) {
	priv, _ := generateTestKeyPair(t)
	f := newFixture(t, 1, 1)
	_, err := SignInput(priv, f.tx, 0, f.prevLock[0], f.prevVal[0], All)
	assert.ErrorIs(t, err, ErrInvalidHashType)
}

func TestFlagCheck(t *testing.T) {
	tests := []struct {
		flag Flag
		ok   bool
	}{
		{AllForkID, true},
		{None | ForkID, true},
		{Single | ForkID | AnyOneCanPay, true},
		{All, false},
		{ForkID, false},
		{0x04 | ForkID, false},
		{AllForkID | 0x20, false},
	}
	for _, tt := range tests {
		err := tt.flag.Check()
		if tt.ok {
			assert.NoError(t, err, tt.flag.String())
		} else {
			assert.ErrorIs(t, err, ErrInvalidHashType, tt.flag.String())
		}
	}
	assert.Equal(t, "ALL|FORKID", AllForkID.String())
	assert.Equal(t, "SINGLE|FORKID|ANYONECANPAY", (Single | ForkID | AnyOneCanPay).String())
}

func TestCheckDEREncoding(t *testing.T) {
	highS := append([]byte{0x30, 37, 0x02, 0x01, 0x01, 0x02, 0x20, 0x7f}, bytes.Repeat([]byte{0xff}, 31)...)
	lowS := append([]byte{0x30, 37, 0x02, 0x01, 0x01, 0x02, 0x20, 0x7f}, bytes.Repeat([]byte{0x00}, 31)...)

	tests := []struct {
		name string
		sig  []byte
		ok   bool
	}{
		{"minimal", []byte{0x30, 0x06, 0x02, 0x01, 0x01, 0x02, 0x01, 0x01}, true},
		{"low S", lowS, true},
		{"high S", highS, false},
		{"too short", []byte{0x30, 0x05, 0x02, 0x01, 0x01, 0x02, 0x00}, false},
		{"wrong type", []byte{0x31, 0x06, 0x02, 0x01, 0x01, 0x02, 0x01, 0x01}, false},
		{"bad length", []byte{0x30, 0x07, 0x02, 0x01, 0x01, 0x02, 0x01, 0x01}, false},
		{"negative R", []byte{0x30, 0x06, 0x02, 0x01, 0x81, 0x02, 0x01, 0x01}, false},
		{"padded R", []byte{0x30, 0x07, 0x02, 0x02, 0x00, 0x01, 0x02, 0x01, 0x01}, false},
		{"negative S", []byte{0x30, 0x06, 0x02, 0x01, 0x01, 0x02, 0x01, 0x81}, false},
		{"zero-length S", []byte{0x30, 0x06, 0x02, 0x02, 0x01, 0x01, 0x02, 0x00}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckDEREncoding(tt.sig)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrSignatureEncoding)
			}
		})
	}
}

func TestCheckPubKeyEncoding(t *testing.T) {
	_, pub := generateTestKeyPair(t)
	assert.NoError(t, CheckPubKeyEncoding(pub.Compressed()))
	assert.NoError(t, CheckPubKeyEncoding(pub.Uncompressed()))

	bad := pub.Compressed()
	bad[0] = 0x04
	assert.ErrorIs(t, CheckPubKeyEncoding(bad), ErrPubKeyEncoding)
	assert.ErrorIs(t, CheckPubKeyEncoding(nil), ErrPubKeyEncoding)
}
