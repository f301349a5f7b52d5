package main

import (
	"context"

	"github.com/bitfsorg/libtrade-go/address"
	"github.com/bitfsorg/libtrade-go/store"
	"github.com/bitfsorg/libtrade-go/tx"
	"github.com/bitfsorg/libtrade-go/wallet"
)

// cachedSource reads coins from the node and mirrors them into the local
// store. When the node cannot be reached the last mirrored set is used.
type cachedSource struct {
	node  wallet.UTXOSource
	cache *store.Store
}

func (s *cachedSource) UTXOs(ctx context.Context, a address.Address) ([]tx.UTXO, error) {
	utxos, err := s.node.UTXOs(ctx, a)
	if err != nil {
		log.Warnf("Node unavailable, using cached coins: %v", err)
		return s.cache.UTXOs(ctx, a)
	}
	if err := s.cache.ReplaceUTXOs(utxos); err != nil {
		log.Warnf("Caching coins: %v", err)
	}
	return utxos, nil
}
