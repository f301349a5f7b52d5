package sighash

import (
	"fmt"

	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"

	"github.com/bitfsorg/libtrade-go/hashing"
	"github.com/bitfsorg/libtrade-go/script"
	"github.com/bitfsorg/libtrade-go/tx"
)

// Sign returns the DER encoding of a deterministic (RFC 6979), low-S
// signature over the double hash of preimage. The key is used only for the
// duration of the call.
func Sign(key *ec.PrivateKey, preimage []byte) ([]byte, error) {
	if key == nil {
		return nil, ErrNilKey
	}
	digest := hashing.DoubleHash(preimage)
	sig, err := key.Sign(digest[:])
	if err != nil {
		return nil, fmt.Errorf("sighash: sign: %w", err)
	}
	return sig.Serialize(), nil
}

// SignInput signs input idx of t and returns the signature with the flag
// byte appended, ready to be pushed by an unlocking script.
func SignInput(key *ec.PrivateKey, t *tx.Transaction, idx int, scriptCode script.Script, value uint64, flags Flag) ([]byte, error) {
	if err := flags.Check(); err != nil {
		return nil, err
	}
	pre, err := Preimage(t, idx, scriptCode, value, flags)
	if err != nil {
		return nil, err
	}
	der, err := Sign(key, pre)
	if err != nil {
		return nil, err
	}
	return append(der, flags.Byte()), nil
}

// UnlockScript assembles <der||flag> <pubkey>.
func UnlockScript(der []byte, flags Flag, pubKey []byte) (script.Script, error) {
	sig := make([]byte, 0, len(der)+1)
	sig = append(sig, der...)
	sig = append(sig, flags.Byte())
	return script.PayToKeyHashUnlock(sig, pubKey)
}

// Verify checks sig (DER with its flag byte) and pubKey against input idx
// of t spending an output of value locked by scriptCode. The preimage is
// always recomputed from t. Encoding violations are errors; a well-formed
// signature that does not match returns false.
func Verify(sig, pubKey []byte, t *tx.Transaction, idx int, scriptCode script.Script, value uint64) (bool, error) {
	if len(sig) == 0 {
		return false, nil
	}
	if err := CheckSignatureEncoding(sig); err != nil {
		return false, err
	}
	if err := CheckPubKeyEncoding(pubKey); err != nil {
		return false, err
	}

	flags := Flag(sig[len(sig)-1])
	digest, err := Hash(t, idx, scriptCode, value, flags)
	if err != nil {
		return false, err
	}
	return VerifyDigest(sig[:len(sig)-1], pubKey, digest[:])
}

// VerifyDigest checks a bare DER signature against a 32-byte digest.
func VerifyDigest(der, pubKey, digest []byte) (bool, error) {
	parsed, err := ec.ParseDERSignature(der)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrSignatureEncoding, err)
	}
	pub, err := ec.ParsePubKey(pubKey)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrPubKeyEncoding, err)
	}
	return parsed.Verify(digest, pub), nil
}
