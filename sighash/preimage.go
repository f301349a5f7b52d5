package sighash

import (
	"fmt"

	"github.com/bsv-blockchain/go-sdk/chainhash"

	"github.com/bitfsorg/libtrade-go/codec"
	"github.com/bitfsorg/libtrade-go/hashing"
	"github.com/bitfsorg/libtrade-go/script"
	"github.com/bitfsorg/libtrade-go/tx"
)

// Preimage returns the bytes a signature for input idx commits to:
//
//	version | hashPrevouts | hashSequence | outpoint | scriptCode |
//	value | sequence | hashOutputs | locktime | flags
//
// scriptCode is the locking script of the output being spent (from the last
// executed OP_CODESEPARATOR on, when called from the interpreter) and value
// is that output's amount. The flags field carries ForkValue in its upper
// 24 bits.
func Preimage(t *tx.Transaction, idx int, scriptCode script.Script, value uint64, flags Flag) ([]byte, error) {
	ins := t.Inputs()
	if idx < 0 || idx >= len(ins) {
		return nil, fmt.Errorf("%w: %d of %d", ErrInputIndex, idx, len(ins))
	}
	outs := t.Outputs()
	in := ins[idx]

	var hashPrevouts, hashSequence, hashOutputs chainhash.Hash

	if !flags.HasAnyOneCanPay() {
		w := codec.NewWriter(len(ins) * tx.OutPointSize)
		for _, other := range ins {
			w.WriteHash(other.PrevOut.Hash)
			w.WriteU32(other.PrevOut.Index)
		}
		hashPrevouts = hashing.DoubleHash(w.Bytes())
	}

	base := flags.Base()
	if !flags.HasAnyOneCanPay() && base != Single && base != None {
		w := codec.NewWriter(len(ins) * 4)
		for _, other := range ins {
			w.WriteU32(other.Sequence)
		}
		hashSequence = hashing.DoubleHash(w.Bytes())
	}

	switch {
	case base != Single && base != None:
		w := codec.NewWriter(0)
		for _, out := range outs {
			w.WriteBytes(out.Bytes())
		}
		hashOutputs = hashing.DoubleHash(w.Bytes())
	case base == Single && idx < len(outs):
		hashOutputs = hashing.DoubleHash(outs[idx].Bytes())
	}

	code := scriptCode.Bytes()
	w := codec.NewWriter(4 + 32 + 32 + tx.OutPointSize + codec.VarBytesSize(len(code)) + 8 + 4 + 32 + 4 + 4)
	w.WriteI32(t.Version())
	w.WriteHash(hashPrevouts)
	w.WriteHash(hashSequence)
	w.WriteHash(in.PrevOut.Hash)
	w.WriteU32(in.PrevOut.Index)
	w.WriteVarBytes(code)
	w.WriteU64(value)
	w.WriteU32(in.Sequence)
	w.WriteHash(hashOutputs)
	w.WriteU32(t.LockTime())
	w.WriteU32(uint32(flags) | ForkValue<<8)
	return w.Bytes(), nil
}

// Hash returns the double hash of the preimage for input idx.
func Hash(t *tx.Transaction, idx int, scriptCode script.Script, value uint64, flags Flag) (chainhash.Hash, error) {
	pre, err := Preimage(t, idx, scriptCode, value, flags)
	if err != nil {
		return chainhash.Hash{}, err
	}
	return hashing.DoubleHash(pre), nil
}
