// Package trade builds and checks hash-locked swap contracts. The seller
// claims the locked coins by revealing a secret; the buyer can take them
// back after a timeout with a refund the seller signed in advance.
package trade

import (
	"bytes"
	"crypto/rand"
	"fmt"

	"github.com/bitfsorg/libtrade-go/hashing"
	"github.com/bitfsorg/libtrade-go/interpreter"
	"github.com/bitfsorg/libtrade-go/script"
	"github.com/bitfsorg/libtrade-go/tx"
)

const (
	// DefaultTimeout is the default refund delay in blocks (~12 hours).
	DefaultTimeout = 72

	// MinTimeout is the shortest refund delay in blocks (~1 hour).
	MinTimeout = 6

	// MaxTimeout is the longest refund delay in blocks (~2 days).
	MaxTimeout = 288

	// CompressedPubKeyLen is the length of a compressed public key.
	CompressedPubKeyLen = 33

	// SecretLen is the length of a generated secret.
	SecretLen = 32

	// SecretHashLen is the length of SHA256(secret).
	SecretHashLen = 32

	// OfferIDLen is the length of an offer ID.
	OfferIDLen = 16
)

// ContractParams describes one swap contract.
type ContractParams struct {
	BuyerPubKey   []byte // compressed, 33 bytes
	SellerPubKey  []byte // compressed, 33 bytes
	SellerKeyHash []byte // hash160 of the key the seller claims with
	SecretHash    []byte // SHA256(secret)
	Timeout       uint32 // refund locktime, a block height
	OfferID       []byte // optional; binds the contract to one offer
}

// Validate checks field sizes.
func (p *ContractParams) Validate() error {
	switch {
	case len(p.BuyerPubKey) != CompressedPubKeyLen:
		return fmt.Errorf("%w: buyer pubkey must be %d bytes, got %d",
			ErrInvalidParams, CompressedPubKeyLen, len(p.BuyerPubKey))
	case len(p.SellerPubKey) != CompressedPubKeyLen:
		return fmt.Errorf("%w: seller pubkey must be %d bytes, got %d",
			ErrInvalidParams, CompressedPubKeyLen, len(p.SellerPubKey))
	case len(p.SellerKeyHash) != script.PubKeyHashLen:
		return fmt.Errorf("%w: seller key hash must be %d bytes, got %d",
			ErrInvalidParams, script.PubKeyHashLen, len(p.SellerKeyHash))
	case len(p.SecretHash) != SecretHashLen:
		return fmt.Errorf("%w: secret hash must be %d bytes, got %d",
			ErrInvalidParams, SecretHashLen, len(p.SecretHash))
	case p.Timeout == 0 || p.Timeout >= interpreter.LockTimeThreshold:
		return fmt.Errorf("%w: timeout %d is not a block height", ErrInvalidParams, p.Timeout)
	case len(p.OfferID) != 0 && len(p.OfferID) != OfferIDLen:
		return fmt.Errorf("%w: offer ID must be %d bytes, got %d",
			ErrInvalidParams, OfferIDLen, len(p.OfferID))
	}
	return nil
}

// RefundHeight returns the refund locktime for a contract created at tip
// with a delay of blocks.
func RefundHeight(tip, blocks uint32) (uint32, error) {
	if blocks < MinTimeout || blocks > MaxTimeout {
		return 0, fmt.Errorf("%w: timeout %d outside [%d, %d] blocks",
			ErrInvalidParams, blocks, MinTimeout, MaxTimeout)
	}
	return tip + blocks, nil
}

// BuildContract returns the contract locking script:
//
//	[<offer_id> OP_DROP]
//	OP_IF
//	  OP_SHA256 <secret_hash> OP_EQUALVERIFY
//	  OP_DUP OP_HASH160 <seller_key_hash> OP_EQUALVERIFY OP_CHECKSIG
//	OP_ELSE
//	  <timeout> OP_CHECKLOCKTIMEVERIFY OP_DROP
//	  OP_2 <buyer_pubkey> <seller_pubkey> OP_2 OP_CHECKMULTISIG
//	OP_ENDIF
//
// The refund branch only verifies in a transaction whose locktime has
// reached timeout.
func BuildContract(p *ContractParams) (script.Script, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: nil params", ErrInvalidParams)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	b := script.NewBuilder()
	if len(p.OfferID) == OfferIDLen {
		b.AddData(p.OfferID).AddOp(script.OpDROP)
	}
	b.AddOp(script.OpIF).
		AddOp(script.OpSHA256).AddData(p.SecretHash).AddOp(script.OpEQUALVERIFY).
		AddOp(script.OpDUP).AddOp(script.OpHASH160).AddData(p.SellerKeyHash).
		AddOp(script.OpEQUALVERIFY).AddOp(script.OpCHECKSIG).
		AddOp(script.OpELSE).
		AddInt64(int64(p.Timeout)).AddOp(script.OpCHECKLOCKTIMEVERIFY).AddOp(script.OpDROP).
		AddOp(script.Op2).AddData(p.BuyerPubKey).AddData(p.SellerPubKey).
		AddOp(script.Op2).AddOp(script.OpCHECKMULTISIG).
		AddOp(script.OpENDIF)

	s, err := b.Script()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrContractBuild, err)
	}
	return s, nil
}

// offerIDOffset returns 2 when s starts with <offer_id> OP_DROP.
func offerIDOffset(s script.Script) int {
	if len(s) >= 2 && s[1].Code() == script.OpDROP {
		if data, ok := s[0].PushedValue(); ok && len(data) == OfferIDLen {
			return 2
		}
	}
	return 0
}

// ExtractSecretHash returns the secret hash embedded in a contract.
func ExtractSecretHash(s script.Script) ([]byte, error) {
	off := offerIDOffset(s)
	if len(s) < off+3 {
		return nil, fmt.Errorf("%w: %d ops", ErrNotContract, len(s))
	}
	if s[off].Code() != script.OpIF || s[off+1].Code() != script.OpSHA256 {
		return nil, fmt.Errorf("%w: expected OP_IF OP_SHA256 at %d", ErrNotContract, off)
	}
	hash, ok := s[off+2].PushedValue()
	if !ok || len(hash) != SecretHashLen {
		return nil, fmt.Errorf("%w: secret hash must be %d bytes", ErrNotContract, SecretHashLen)
	}
	return hash, nil
}

// Positions of the refund timeout and its OP_CHECKLOCKTIMEVERIFY, counted
// from the OP_IF.
const (
	timeoutPos = 10
	cltvPos    = 11
)

// ExtractTimeout returns the refund locktime committed in a contract.
func ExtractTimeout(s script.Script) (uint32, error) {
	off := offerIDOffset(s)
	if len(s) <= off+cltvPos+1 {
		return 0, fmt.Errorf("%w: %d ops", ErrNotContract, len(s))
	}
	if s[off+timeoutPos-1].Code() != script.OpELSE ||
		s[off+cltvPos].Code() != script.OpCHECKLOCKTIMEVERIFY ||
		s[off+cltvPos+1].Code() != script.OpDROP {
		return 0, fmt.Errorf("%w: no refund locktime", ErrNotContract)
	}
	v, ok := s[off+timeoutPos].PushedValue()
	if !ok {
		return 0, fmt.Errorf("%w: refund locktime is not a push", ErrNotContract)
	}
	n, err := script.MakeNum(v, true, script.LockTimeNumLen)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrNotContract, err)
	}
	if n <= 0 || n >= interpreter.LockTimeThreshold {
		return 0, fmt.Errorf("%w: refund locktime %d is not a block height", ErrNotContract, n)
	}
	return uint32(n), nil
}

// ExtractOfferID returns the offer ID of a contract, or nil when the
// contract has none.
func ExtractOfferID(s script.Script) []byte {
	if offerIDOffset(s) == 0 {
		return nil
	}
	id, _ := s[0].PushedValue()
	return id
}

// NewSecret returns a random secret and its hash.
func NewSecret() (secret, hash []byte, err error) {
	secret = make([]byte, SecretLen)
	if _, err := rand.Read(secret); err != nil {
		return nil, nil, fmt.Errorf("trade: generate secret: %w", err)
	}
	return secret, hashing.Sha256(secret), nil
}

// ExtractSecret finds the secret revealed by a claim of the contract
// hashed to secretHash. A claim unlocking script is
// <sig> <pubkey> <secret> OP_1.
func ExtractSecret(t *tx.Transaction, secretHash []byte) ([]byte, error) {
	for i, in := range t.Inputs() {
		u := in.UnlockScript
		if len(u) < 4 {
			continue
		}
		if sel, ok := u[len(u)-1].PushedValue(); !ok || !bytes.Equal(sel, []byte{1}) {
			continue
		}
		secret, ok := u[len(u)-2].PushedValue()
		if !ok || len(secret) == 0 {
			continue
		}
		if !bytes.Equal(hashing.Sha256(secret), secretHash) {
			continue
		}
		log.Debugf("Found secret in input %d of %s", i, t.TxID())
		return secret, nil
	}
	return nil, ErrSecretNotFound
}
