package tx

import (
	"fmt"

	"github.com/bsv-blockchain/go-sdk/chainhash"
)

// OutPointSize is the serialized size of an OutPoint.
const OutPointSize = chainhash.HashSize + 4

// OutPoint identifies one output of a prior transaction.
type OutPoint struct {
	Hash  chainhash.Hash
	Index uint32
}

// NewOutPoint returns the outpoint for output index of txid. txid is in
// internal byte order, as returned by Transaction.TxID.
func NewOutPoint(txid chainhash.Hash, index uint32) OutPoint {
	return OutPoint{Hash: txid, Index: index}
}

// String returns txid:index with the txid in display order.
func (o OutPoint) String() string {
	return fmt.Sprintf("%s:%d", o.Hash, o.Index)
}
