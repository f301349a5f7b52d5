package script

import "fmt"

const (
	// PubKeyHashLen is the size of a HASH160 key fingerprint.
	PubKeyHashLen = 20

	// MaxMultiSigKeys bounds the key count of a bare multisig lock.
	MaxMultiSigKeys = 20
)

// PayToKeyHashLock returns
//
//	OP_DUP OP_HASH160 <hash160> OP_EQUALVERIFY OP_CHECKSIG
func PayToKeyHashLock(hash160 []byte) (Script, error) {
	if len(hash160) != PubKeyHashLen {
		return nil, fmt.Errorf("%w: key hash must be %d bytes, got %d",
			ErrInvalidTemplate, PubKeyHashLen, len(hash160))
	}
	return NewBuilder().
		AddOp(OpDUP).
		AddOp(OpHASH160).
		AddData(hash160).
		AddOp(OpEQUALVERIFY).
		AddOp(OpCHECKSIG).
		Script()
}

// PayToKeyHashUnlock returns <sig> <pubkey>. sig already carries its
// sighash byte.
func PayToKeyHashUnlock(sig, pubKey []byte) (Script, error) {
	return NewBuilder().AddData(sig).AddData(pubKey).Script()
}

// ReturnData returns an unspendable OP_RETURN script carrying one push per
// payload element.
func ReturnData(payload ...[]byte) (Script, error) {
	b := NewBuilder().AddOp(OpRETURN)
	for _, p := range payload {
		b.AddData(p)
	}
	return b.Script()
}

// MultiSigLock returns OP_m <pubkey>... OP_n OP_CHECKMULTISIG.
func MultiSigLock(m int, pubKeys [][]byte) (Script, error) {
	n := len(pubKeys)
	if n == 0 || n > MaxMultiSigKeys {
		return nil, fmt.Errorf("%w: %d keys", ErrInvalidTemplate, n)
	}
	if m < 1 || m > n {
		return nil, fmt.Errorf("%w: %d-of-%d", ErrInvalidTemplate, m, n)
	}
	b := NewBuilder().AddInt64(int64(m))
	for _, pk := range pubKeys {
		b.AddData(pk)
	}
	return b.AddInt64(int64(n)).AddOp(OpCHECKMULTISIG).Script()
}

// MultiSigUnlock returns OP_0 <sig>... . The leading OP_0 is the dummy
// element CHECKMULTISIG pops.
func MultiSigUnlock(sigs [][]byte) (Script, error) {
	b := NewBuilder().AddOp(Op0)
	for _, sig := range sigs {
		b.AddData(sig)
	}
	return b.Script()
}

// ExtractKeyHash returns the key hash of a pay-to-key-hash lock.
func ExtractKeyHash(s Script) ([]byte, bool) {
	if len(s) != 5 ||
		s[0].kind != KindCode || s[0].code != OpDUP ||
		s[1].kind != KindCode || s[1].code != OpHASH160 ||
		s[2].kind != KindPush || len(s[2].data) != PubKeyHashLen ||
		s[3].kind != KindCode || s[3].code != OpEQUALVERIFY ||
		s[4].kind != KindCode || s[4].code != OpCHECKSIG {
		return nil, false
	}
	return clone(s[2].data), true
}

// IsPayToKeyHash reports whether s is a standard pay-to-key-hash lock.
func IsPayToKeyHash(s Script) bool {
	_, ok := ExtractKeyHash(s)
	return ok
}

// IsReturnData reports whether s starts with OP_RETURN (optionally preceded
// by OP_0, the form some wallets emit) and is otherwise push-only.
func IsReturnData(s Script) bool {
	if len(s) > 0 && s[0].kind == KindPush && s[0].code == Op0 {
		s = s[1:]
	}
	if len(s) == 0 || s[0].kind != KindCode || s[0].code != OpRETURN {
		return false
	}
	return s[1:].IsPushOnly()
}

// ReturnDataPayload returns the pushes following OP_RETURN.
func ReturnDataPayload(s Script) ([][]byte, bool) {
	if !IsReturnData(s) {
		return nil, false
	}
	if s[0].code == Op0 {
		s = s[1:]
	}
	out := make([][]byte, 0, len(s)-1)
	for _, op := range s[1:] {
		v, _ := op.PushedValue()
		out = append(out, v)
	}
	return out, true
}
