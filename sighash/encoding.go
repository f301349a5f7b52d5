package sighash

import (
	"bytes"
	"fmt"
)

// halfOrder is the secp256k1 group order divided by two. Signatures with a
// larger S have a malleable twin and are rejected.
var halfOrder = []byte{
	0x7f, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
	0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
	0x5d, 0x57, 0x6e, 0x73, 0x57, 0xa4, 0x50, 0x1d,
	0xdf, 0xe9, 0x2f, 0x46, 0x68, 0x1b, 0x20, 0xa0,
}

// CheckSignatureEncoding validates a signature with its trailing flag byte:
// strict DER, low S, and a defined fork-id hash type. The empty signature is
// accepted; it always verifies false.
func CheckSignatureEncoding(sig []byte) error {
	if len(sig) == 0 {
		return nil
	}
	if err := Flag(sig[len(sig)-1]).Check(); err != nil {
		return err
	}
	return CheckDEREncoding(sig[:len(sig)-1])
}

// CheckDEREncoding validates a bare DER signature.
func CheckDEREncoding(sig []byte) error {
	if len(sig) < 8 {
		return fmt.Errorf("%w: too short: %d < 8", ErrSignatureEncoding, len(sig))
	}
	if len(sig) > 72 {
		return fmt.Errorf("%w: too long: %d > 72", ErrSignatureEncoding, len(sig))
	}
	if sig[0] != 0x30 {
		return fmt.Errorf("%w: wrong type 0x%x", ErrSignatureEncoding, sig[0])
	}
	if int(sig[1]) != len(sig)-2 {
		return fmt.Errorf("%w: bad length %d != %d", ErrSignatureEncoding, sig[1], len(sig)-2)
	}

	rLen := int(sig[3])
	if rLen+5 > len(sig) {
		return fmt.Errorf("%w: S out of bounds", ErrSignatureEncoding)
	}
	sLen := int(sig[rLen+5])
	if rLen+sLen+6 != len(sig) {
		return fmt.Errorf("%w: invalid R length", ErrSignatureEncoding)
	}

	if sig[2] != 0x02 {
		return fmt.Errorf("%w: missing R integer marker", ErrSignatureEncoding)
	}
	if rLen == 0 {
		return fmt.Errorf("%w: R length is zero", ErrSignatureEncoding)
	}
	if sig[4]&0x80 != 0 {
		return fmt.Errorf("%w: R is negative", ErrSignatureEncoding)
	}
	if rLen > 1 && sig[4] == 0x00 && sig[5]&0x80 == 0 {
		return fmt.Errorf("%w: R has excess padding", ErrSignatureEncoding)
	}

	if sig[rLen+4] != 0x02 {
		return fmt.Errorf("%w: missing S integer marker", ErrSignatureEncoding)
	}
	if sLen == 0 {
		return fmt.Errorf("%w: S length is zero", ErrSignatureEncoding)
	}
	if sig[rLen+6]&0x80 != 0 {
		return fmt.Errorf("%w: S is negative", ErrSignatureEncoding)
	}
	if sLen > 1 && sig[rLen+6] == 0x00 && sig[rLen+7]&0x80 == 0 {
		return fmt.Errorf("%w: S has excess padding", ErrSignatureEncoding)
	}

	if !isLowS(sig[rLen+6 : rLen+6+sLen]) {
		return fmt.Errorf("%w: S is not low", ErrSignatureEncoding)
	}
	return nil
}

// isLowS compares a big-endian, minimally padded S against halfOrder.
func isLowS(s []byte) bool {
	s = bytes.TrimLeft(s, "\x00")
	if len(s) != len(halfOrder) {
		return len(s) < len(halfOrder)
	}
	return bytes.Compare(s, halfOrder) <= 0
}

// CheckPubKeyEncoding accepts 33-byte compressed and 65-byte uncompressed
// keys only.
func CheckPubKeyEncoding(pubKey []byte) error {
	switch {
	case len(pubKey) == 33 && (pubKey[0] == 0x02 || pubKey[0] == 0x03):
		return nil
	case len(pubKey) == 65 && pubKey[0] == 0x04:
		return nil
	}
	return fmt.Errorf("%w: %d bytes", ErrPubKeyEncoding, len(pubKey))
}
