package trade

import (
	"bytes"
	"errors"

	"github.com/bitfsorg/libtrade-go/script"
	"github.com/bitfsorg/libtrade-go/tx"
)

// Listing is an offer found on chain together with the output that funds
// it.
type Listing struct {
	Offer    *Offer
	Funding  *tx.Transaction
	Contract tx.UTXO
}

// ForSeller reports whether the offer names pubKey as the seller.
func (l *Listing) ForSeller(pubKey []byte) bool {
	return bytes.Equal(l.Offer.SellerPubKey, pubKey)
}

// ListOffers returns the offers published by txs whose contract output is
// funded as announced and whose refund height is above tip. Each offer ID
// is listed once, from the first transaction that carries it.
func ListOffers(txs []*tx.Transaction, tip uint32) []Listing {
	var listings []Listing
	seen := make(map[string]bool)
	for _, t := range txs {
		if t == nil {
			continue
		}
		locks := make([]script.Script, 0, t.NumOutputs())
		for _, out := range t.Outputs() {
			locks = append(locks, out.LockScript)
		}
		offer, err := FindOffer(locks...)
		if err != nil {
			if !errors.Is(err, errNoOfferOutput) {
				log.Debugf("Skipping offer in %s: %v", t.TxID(), err)
			}
			continue
		}
		if seen[string(offer.ID)] {
			continue
		}
		if offer.Timeout <= tip {
			log.Debugf("Offer %x in %s expired at %d", offer.ID, t.TxID(), offer.Timeout)
			continue
		}
		contract, err := BuildContract(offer.Params())
		if err != nil {
			continue
		}
		utxo, err := VerifyFunding(t, contract, offer.Amount)
		if err != nil {
			log.Debugf("Offer %x in %s is not funded: %v", offer.ID, t.TxID(), err)
			continue
		}
		seen[string(offer.ID)] = true
		listings = append(listings, Listing{Offer: offer, Funding: t, Contract: utxo})
	}
	return listings
}
