// Package store persists the wallet's spendable outputs and the
// transactions it has sent in a bbolt database.
package store

import (
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bsv-blockchain/go-sdk/chainhash"
	"go.etcd.io/bbolt"

	"github.com/bitfsorg/libtrade-go/address"
	"github.com/bitfsorg/libtrade-go/codec"
	"github.com/bitfsorg/libtrade-go/script"
	"github.com/bitfsorg/libtrade-go/tx"
)

var (
	bucketUTXOs = []byte("utxos")
	bucketSent  = []byte("sent")
)

// Store wraps a bbolt database holding the UTXO set and the sent journal.
type Store struct {
	db *bbolt.DB
}

// Open opens or creates the database at path. The parent directory is
// created if it does not exist.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("store: create directory: %w", err)
	}
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("store: open bolt db: %w", err)
	}

	err = db.Update(func(btx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketUTXOs, bucketSent} {
			if _, err := btx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("store: create bucket %q: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	log.Debugf("Opened store at %s", path)
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// outPointKey encodes an outpoint as hash || big-endian index so outputs of
// one transaction sort together.
func outPointKey(op tx.OutPoint) []byte {
	k := make([]byte, tx.OutPointSize)
	copy(k, op.Hash[:])
	binary.BigEndian.PutUint32(k[chainhash.HashSize:], op.Index)
	return k
}

func decodeOutPointKey(k []byte) (tx.OutPoint, error) {
	if len(k) != tx.OutPointSize {
		return tx.OutPoint{}, fmt.Errorf("%w: outpoint key of %d bytes", ErrCorrupt, len(k))
	}
	var op tx.OutPoint
	copy(op.Hash[:], k)
	op.Index = binary.BigEndian.Uint32(k[chainhash.HashSize:])
	return op, nil
}

func decodeUTXO(k, v []byte) (tx.UTXO, error) {
	op, err := decodeOutPointKey(k)
	if err != nil {
		return tx.UTXO{}, err
	}
	r := codec.NewReader(v)
	out, err := tx.DecodeOutput(r)
	if err == nil {
		err = r.ExpectEOF()
	}
	if err != nil {
		return tx.UTXO{}, fmt.Errorf("%w: output %s: %w", ErrCorrupt, op, err)
	}
	return tx.UTXO{OutPoint: op, Output: out}, nil
}

// PutUTXO stores u, replacing any output already stored at its outpoint.
func (s *Store) PutUTXO(u tx.UTXO) error {
	return s.db.Update(func(btx *bbolt.Tx) error {
		if err := btx.Bucket(bucketUTXOs).Put(outPointKey(u.OutPoint), u.Output.Bytes()); err != nil {
			return fmt.Errorf("store: put utxo: %w", err)
		}
		return nil
	})
}

// DeleteUTXO removes the output at op. Returns ErrNotFound if it is not
// stored.
func (s *Store) DeleteUTXO(op tx.OutPoint) error {
	return s.db.Update(func(btx *bbolt.Tx) error {
		b := btx.Bucket(bucketUTXOs)
		k := outPointKey(op)
		if b.Get(k) == nil {
			return fmt.Errorf("%w: utxo %s", ErrNotFound, op)
		}
		return b.Delete(k)
	})
}

// ListUTXOs returns every stored output in outpoint order.
func (s *Store) ListUTXOs() ([]tx.UTXO, error) {
	var utxos []tx.UTXO
	err := s.db.View(func(btx *bbolt.Tx) error {
		return btx.Bucket(bucketUTXOs).ForEach(func(k, v []byte) error {
			u, err := decodeUTXO(k, v)
			if err != nil {
				return err
			}
			utxos = append(utxos, u)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("store: list utxos: %w", err)
	}
	return utxos, nil
}

// UTXOs returns the stored outputs locked to a. It lets the store stand in
// for a node when the wallet runs offline.
func (s *Store) UTXOs(_ context.Context, a address.Address) ([]tx.UTXO, error) {
	lock, err := a.LockingScript()
	if err != nil {
		return nil, err
	}
	all, err := s.ListUTXOs()
	if err != nil {
		return nil, err
	}
	var out []tx.UTXO
	for _, u := range all {
		if u.Output.LockScript.Equal(lock) {
			out = append(out, u)
		}
	}
	return out, nil
}

// Balance returns the total value of the stored outputs.
func (s *Store) Balance() (uint64, error) {
	utxos, err := s.ListUTXOs()
	if err != nil {
		return 0, err
	}
	return tx.SumUTXOs(utxos), nil
}

// RecordSent journals t, removes the outputs it spends from the UTXO set,
// and adds its outputs locked by own. All of it happens in one database
// transaction.
func (s *Store) RecordSent(t *tx.Transaction, own script.Script) error {
	if t == nil {
		return fmt.Errorf("%w: transaction", ErrNilParam)
	}
	txid := t.TxID()
	created := t.UTXOs(func(out tx.Output) bool {
		return len(own) > 0 && out.LockScript.Equal(own)
	})

	err := s.db.Update(func(btx *bbolt.Tx) error {
		if err := btx.Bucket(bucketSent).Put(txid[:], t.Bytes()); err != nil {
			return fmt.Errorf("store: put sent tx: %w", err)
		}
		utxos := btx.Bucket(bucketUTXOs)
		for _, in := range t.Inputs() {
			if err := utxos.Delete(outPointKey(in.PrevOut)); err != nil {
				return fmt.Errorf("store: spend %s: %w", in.PrevOut, err)
			}
		}
		for _, u := range created {
			if err := utxos.Put(outPointKey(u.OutPoint), u.Output.Bytes()); err != nil {
				return fmt.Errorf("store: put change: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	log.Debugf("Recorded sent transaction %s: %d spent, %d kept",
		txid, t.NumInputs(), len(created))
	return nil
}

// SentTx returns the sent transaction with the given ID.
func (s *Store) SentTx(txid chainhash.Hash) (*tx.Transaction, error) {
	var raw []byte
	err := s.db.View(func(btx *bbolt.Tx) error {
		v := btx.Bucket(bucketSent).Get(txid[:])
		if v == nil {
			return fmt.Errorf("%w: transaction %s", ErrNotFound, txid)
		}
		raw = append([]byte(nil), v...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	t, err := tx.Deserialize(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: transaction %s: %w", ErrCorrupt, txid, err)
	}
	return t, nil
}

// SentTxIDs returns the IDs of every journaled transaction.
func (s *Store) SentTxIDs() ([]chainhash.Hash, error) {
	var ids []chainhash.Hash
	err := s.db.View(func(btx *bbolt.Tx) error {
		return btx.Bucket(bucketSent).ForEach(func(k, _ []byte) error {
			var h chainhash.Hash
			if len(k) != chainhash.HashSize {
				return fmt.Errorf("%w: txid key of %d bytes", ErrCorrupt, len(k))
			}
			copy(h[:], k)
			ids = append(ids, h)
			return nil
		})
	})
	return ids, err
}

// ReplaceUTXOs swaps the stored UTXO set for utxos, typically after a fresh
// listing from a node.
func (s *Store) ReplaceUTXOs(utxos []tx.UTXO) error {
	return s.db.Update(func(btx *bbolt.Tx) error {
		if err := btx.DeleteBucket(bucketUTXOs); err != nil {
			return fmt.Errorf("store: clear utxos: %w", err)
		}
		b, err := btx.CreateBucket(bucketUTXOs)
		if err != nil {
			return fmt.Errorf("store: create bucket %q: %w", bucketUTXOs, err)
		}
		for _, u := range utxos {
			if err := b.Put(outPointKey(u.OutPoint), u.Output.Bytes()); err != nil {
				return fmt.Errorf("store: put utxo: %w", err)
			}
		}
		return nil
	})
}
