package sighash

import "errors"

var (
	// ErrInputIndex indicates the input index is outside the transaction.
	ErrInputIndex = errors.New("sighash: input index out of range")

	// ErrInvalidHashType indicates an undefined or non-fork sighash type.
	ErrInvalidHashType = errors.New("sighash: invalid hash type")

	// ErrSignatureEncoding indicates a signature that is not strict low-S DER.
	ErrSignatureEncoding = errors.New("sighash: invalid signature encoding")

	// ErrPubKeyEncoding indicates a public key that is not strictly encoded.
	ErrPubKeyEncoding = errors.New("sighash: invalid public key encoding")

	// ErrNilKey indicates a nil signing key.
	ErrNilKey = errors.New("sighash: nil signing key")
)
