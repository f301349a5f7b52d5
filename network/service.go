package network

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/bsv-blockchain/go-sdk/chainhash"

	"github.com/bitfsorg/libtrade-go/address"
	"github.com/bitfsorg/libtrade-go/script"
	"github.com/bitfsorg/libtrade-go/tx"
)

// BlockchainService is the node surface the wallet depends on.
type BlockchainService interface {
	// ListUnspent returns all unspent transaction outputs for the given address.
	ListUnspent(ctx context.Context, address string) ([]*UTXO, error)

	// GetUTXO returns a specific unspent transaction output by txid and output index.
	GetUTXO(ctx context.Context, txid string, vout uint32) (*UTXO, error)

	// BroadcastTx submits a raw transaction hex to the network and returns the txid.
	BroadcastTx(ctx context.Context, rawTxHex string) (string, error)

	// GetRawTx returns the raw transaction bytes for the given txid.
	GetRawTx(ctx context.Context, txid string) ([]byte, error)

	// GetBestBlockHeight returns the height of the current chain tip.
	GetBestBlockHeight(ctx context.Context) (uint64, error)

	// GetRawMempool returns the IDs of the transactions in the node's mempool.
	GetRawMempool(ctx context.Context) ([]string, error)

	// GetBlockHash returns the hash of the main-chain block at height.
	GetBlockHash(ctx context.Context, height uint64) (string, error)

	// GetRawBlock returns the serialized block with the given hash.
	GetRawBlock(ctx context.Context, hash string) ([]byte, error)

	// ImportAddress imports a watch-only address into the node's wallet so that
	// ListUnspent can find its UTXOs. Safe to call multiple times.
	ImportAddress(ctx context.Context, address string) error
}

// UTXO represents an unspent transaction output as reported by a node.
type UTXO struct {
	TxID          string `json:"txid"`
	Vout          uint32 `json:"vout"`
	Amount        uint64 `json:"amount"`
	ScriptPubKey  string `json:"script_pubkey"`
	Address       string `json:"address"`
	Confirmations int64  `json:"confirmations"`
}

// ToUTXO converts u into the transaction model. TxID is in display order.
func (u *UTXO) ToUTXO() (tx.UTXO, error) {
	h, err := chainhash.NewHashFromHex(u.TxID)
	if err != nil {
		return tx.UTXO{}, fmt.Errorf("%w: txid %q: %w", ErrInvalidResponse, u.TxID, err)
	}
	raw, err := hex.DecodeString(u.ScriptPubKey)
	if err != nil {
		return tx.UTXO{}, fmt.Errorf("%w: script of %s:%d: %w", ErrInvalidResponse, u.TxID, u.Vout, err)
	}
	return tx.UTXO{
		OutPoint: tx.NewOutPoint(*h, u.Vout),
		Output:   tx.Output{Value: u.Amount, LockScript: script.Parse(raw)},
	}, nil
}

// Chain adapts a BlockchainService to the wallet's typed view of the
// network.
type Chain struct {
	svc BlockchainService
}

// NewChain wraps svc.
func NewChain(svc BlockchainService) *Chain { return &Chain{svc: svc} }

// UTXOs returns the outputs a node reports for a. Outputs whose script does
// not pay to a are skipped.
func (c *Chain) UTXOs(ctx context.Context, a address.Address) ([]tx.UTXO, error) {
	lock, err := a.LockingScript()
	if err != nil {
		return nil, err
	}
	listed, err := c.svc.ListUnspent(ctx, a.CashAddr())
	if err != nil {
		return nil, err
	}
	utxos := make([]tx.UTXO, 0, len(listed))
	for _, l := range listed {
		u, err := l.ToUTXO()
		if err != nil {
			return nil, err
		}
		if !u.Output.LockScript.Equal(lock) {
			log.Warnf("Skipping %s: script does not pay to %s", u.OutPoint, a)
			continue
		}
		utxos = append(utxos, u)
	}
	return utxos, nil
}

// Broadcast submits t and returns its ID. A node reporting a different ID
// is an error.
func (c *Chain) Broadcast(ctx context.Context, t *tx.Transaction) (chainhash.Hash, error) {
	want := t.TxID()
	got, err := c.svc.BroadcastTx(ctx, t.Hex())
	if err != nil {
		return chainhash.Hash{}, err
	}
	if got != want.String() {
		return chainhash.Hash{}, fmt.Errorf("%w: node returned txid %s, expected %s",
			ErrInvalidResponse, got, want)
	}
	log.Infof("Broadcast %s over RPC", want)
	return want, nil
}

// Tx fetches and decodes the transaction with the given ID.
func (c *Chain) Tx(ctx context.Context, txid chainhash.Hash) (*tx.Transaction, error) {
	raw, err := c.svc.GetRawTx(ctx, txid.String())
	if err != nil {
		return nil, err
	}
	t, err := tx.Deserialize(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}
	if t.TxID() != txid {
		return nil, fmt.Errorf("%w: got transaction %s for %s", ErrInvalidResponse, t.TxID(), txid)
	}
	return t, nil
}

// TipHeight returns the height of the current chain tip.
func (c *Chain) TipHeight(ctx context.Context) (uint32, error) {
	h, err := c.svc.GetBestBlockHeight(ctx)
	if err != nil {
		return 0, err
	}
	if h > uint64(^uint32(0)) {
		return 0, fmt.Errorf("%w: block height %d", ErrInvalidResponse, h)
	}
	return uint32(h), nil
}

// MempoolTxs returns the transactions in the node's mempool. Entries that
// leave the mempool while they are fetched are skipped.
func (c *Chain) MempoolTxs(ctx context.Context) ([]*tx.Transaction, error) {
	ids, err := c.svc.GetRawMempool(ctx)
	if err != nil {
		return nil, err
	}
	txs := make([]*tx.Transaction, 0, len(ids))
	for _, id := range ids {
		h, err := chainhash.NewHashFromHex(id)
		if err != nil {
			return nil, fmt.Errorf("%w: mempool txid %q: %w", ErrInvalidResponse, id, err)
		}
		t, err := c.Tx(ctx, *h)
		if errors.Is(err, ErrTxNotFound) {
			log.Debugf("Mempool transaction %s is gone", id)
			continue
		}
		if err != nil {
			return nil, err
		}
		txs = append(txs, t)
	}
	return txs, nil
}

// BlockTxs returns the transactions of the main-chain block at height.
func (c *Chain) BlockTxs(ctx context.Context, height uint32) ([]*tx.Transaction, error) {
	hash, err := c.svc.GetBlockHash(ctx, uint64(height))
	if err != nil {
		return nil, err
	}
	raw, err := c.svc.GetRawBlock(ctx, hash)
	if err != nil {
		return nil, err
	}
	txs, err := decodeBlockTxs(raw)
	if err != nil {
		return nil, fmt.Errorf("block %d (%s): %w", height, hash, err)
	}
	return txs, nil
}

// RecentTxs returns the mempool followed by the transactions of the last
// depth blocks, newest first.
func (c *Chain) RecentTxs(ctx context.Context, depth uint32) ([]*tx.Transaction, error) {
	txs, err := c.MempoolTxs(ctx)
	if err != nil {
		return nil, err
	}
	tip, err := c.TipHeight(ctx)
	if err != nil {
		return nil, err
	}
	for i := uint32(0); i < depth && i <= tip; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		block, err := c.BlockTxs(ctx, tip-i)
		if err != nil {
			return nil, err
		}
		txs = append(txs, block...)
	}
	return txs, nil
}

// Watch asks the node to track a.
func (c *Chain) Watch(ctx context.Context, a address.Address) error {
	return c.svc.ImportAddress(ctx, a.CashAddr())
}
