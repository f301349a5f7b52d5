package trade

import (
	"bytes"
	"crypto/rand"
	"fmt"

	"github.com/bitfsorg/libtrade-go/codec"
	"github.com/bitfsorg/libtrade-go/hashing"
	"github.com/bitfsorg/libtrade-go/script"
)

// ProtocolTag is the first push of an offer data output.
var ProtocolTag = []byte("trade")

// OfferVersion is the current offer record layout.
const OfferVersion uint8 = 1

const offerBodyLen = 1 + OfferIDLen + 8 + 4 + SecretHashLen +
	2*CompressedPubKeyLen + script.PubKeyHashLen

// Offer is the public record of a contract: enough for the counterparty to
// rebuild the contract script and check the funding.
type Offer struct {
	ID            []byte
	Amount        uint64
	Timeout       uint32
	SecretHash    []byte
	BuyerPubKey   []byte
	SellerPubKey  []byte
	SellerKeyHash []byte
}

// NewOfferID returns a random offer ID.
func NewOfferID() ([]byte, error) {
	id := make([]byte, OfferIDLen)
	if _, err := rand.Read(id); err != nil {
		return nil, fmt.Errorf("trade: generate offer ID: %w", err)
	}
	return id, nil
}

// NewOffer describes the contract built from p, locking amount.
func NewOffer(p *ContractParams, amount uint64) (*Offer, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if len(p.OfferID) != OfferIDLen {
		return nil, fmt.Errorf("%w: offer needs a %d-byte ID", ErrInvalidParams, OfferIDLen)
	}
	return &Offer{
		ID:            bytes.Clone(p.OfferID),
		Amount:        amount,
		Timeout:       p.Timeout,
		SecretHash:    bytes.Clone(p.SecretHash),
		BuyerPubKey:   bytes.Clone(p.BuyerPubKey),
		SellerPubKey:  bytes.Clone(p.SellerPubKey),
		SellerKeyHash: bytes.Clone(p.SellerKeyHash),
	}, nil
}

// Params returns the contract parameters the offer describes.
func (o *Offer) Params() *ContractParams {
	return &ContractParams{
		BuyerPubKey:   o.BuyerPubKey,
		SellerPubKey:  o.SellerPubKey,
		SellerKeyHash: o.SellerKeyHash,
		SecretHash:    o.SecretHash,
		Timeout:       o.Timeout,
		OfferID:       o.ID,
	}
}

// Encode returns the offer body.
func (o *Offer) Encode() ([]byte, error) {
	if err := o.Params().Validate(); err != nil {
		return nil, err
	}
	if len(o.ID) != OfferIDLen {
		return nil, fmt.Errorf("%w: offer needs a %d-byte ID", ErrInvalidOffer, OfferIDLen)
	}
	w := codec.NewWriter(offerBodyLen)
	w.WriteU8(OfferVersion)
	w.WriteBytes(o.ID)
	w.WriteU64(o.Amount)
	w.WriteU32(o.Timeout)
	w.WriteBytes(o.SecretHash)
	w.WriteBytes(o.BuyerPubKey)
	w.WriteBytes(o.SellerPubKey)
	w.WriteBytes(o.SellerKeyHash)
	return w.Bytes(), nil
}

// LockingScript returns the data output carrying the offer.
func (o *Offer) LockingScript() (script.Script, error) {
	body, err := o.Encode()
	if err != nil {
		return nil, err
	}
	return script.ReturnData(ProtocolTag, body)
}

// DecodeOffer parses an offer body.
func DecodeOffer(b []byte) (*Offer, error) {
	r := codec.NewReader(b)
	ver, err := r.ReadU8()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidOffer, err)
	}
	if ver != OfferVersion {
		return nil, fmt.Errorf("%w: unknown version %d", ErrInvalidOffer, ver)
	}

	o := &Offer{}
	if o.ID, err = r.ReadBytes(OfferIDLen); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidOffer, err)
	}
	if o.Amount, err = r.ReadU64(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidOffer, err)
	}
	if o.Timeout, err = r.ReadU32(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidOffer, err)
	}
	fields := []struct {
		dst *[]byte
		n   int
	}{
		{&o.SecretHash, SecretHashLen},
		{&o.BuyerPubKey, CompressedPubKeyLen},
		{&o.SellerPubKey, CompressedPubKeyLen},
		{&o.SellerKeyHash, script.PubKeyHashLen},
	}
	for _, f := range fields {
		if *f.dst, err = r.ReadBytes(f.n); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidOffer, err)
		}
	}
	if err := r.ExpectEOF(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidOffer, err)
	}
	if err := o.Params().Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidOffer, err)
	}
	return o, nil
}

// FindOffer returns the offer carried by the first offer data output among
// lockScripts.
func FindOffer(lockScripts ...script.Script) (*Offer, error) {
	for _, s := range lockScripts {
		payload, ok := script.ReturnDataPayload(s)
		if !ok || len(payload) != 2 || !bytes.Equal(payload[0], ProtocolTag) {
			continue
		}
		return DecodeOffer(payload[1])
	}
	return nil, errNoOfferOutput
}

var errNoOfferOutput = fmt.Errorf("%w: no offer output", ErrInvalidOffer)

// Matches reports whether contract is the script o describes.
func (o *Offer) Matches(contract script.Script) bool {
	want, err := BuildContract(o.Params())
	return err == nil && want.Equal(contract)
}

// SellerKeyHashFor returns the key hash the seller claims with.
func SellerKeyHashFor(pubKey []byte) []byte { return hashing.Hash160(pubKey) }
