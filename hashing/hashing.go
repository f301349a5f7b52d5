// Package hashing provides the composite digests used throughout the wallet:
// the double SHA-256 used for transaction ids and signature hashes, and the
// SHA-256 then RIPEMD-160 fingerprint used in pay-to-key-hash scripts.
package hashing

import (
	"crypto/sha1" //nolint:gosec // OP_SHA1 is part of the script language

	"github.com/bsv-blockchain/go-sdk/chainhash"
	bsvhash "github.com/bsv-blockchain/go-sdk/primitives/hash"
)

// Hash160Size is the length of a Hash160 digest.
const Hash160Size = 20

// DoubleHash returns SHA256(SHA256(b)).
func DoubleHash(b []byte) chainhash.Hash {
	var h chainhash.Hash
	copy(h[:], bsvhash.Sha256d(b))
	return h
}

// DoubleHashBytes returns SHA256(SHA256(b)) as a slice.
func DoubleHashBytes(b []byte) []byte {
	return bsvhash.Sha256d(b)
}

// Hash160 returns RIPEMD160(SHA256(b)).
func Hash160(b []byte) []byte {
	return bsvhash.Hash160(b)
}

// Sha256 returns SHA256(b).
func Sha256(b []byte) []byte {
	return bsvhash.Sha256(b)
}

// Ripemd160 returns RIPEMD160(b).
func Ripemd160(b []byte) []byte {
	return bsvhash.Ripemd160(b)
}

// Sha1 returns SHA1(b).
func Sha1(b []byte) []byte {
	sum := sha1.Sum(b) //nolint:gosec
	return sum[:]
}

// Checksum returns the first four bytes of DoubleHash(b), as used by P2P
// message headers and base58check.
func Checksum(b []byte) [4]byte {
	var c [4]byte
	copy(c[:], bsvhash.Sha256d(b)[:4])
	return c
}
