// Package wallet holds the single-key trade wallet: its key file, backup
// mnemonic, network parameters and the balance and send flow.
package wallet

import (
	"context"
	"fmt"

	"github.com/bsv-blockchain/go-sdk/chainhash"
	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"

	"github.com/bitfsorg/libtrade-go/address"
	"github.com/bitfsorg/libtrade-go/script"
	"github.com/bitfsorg/libtrade-go/tx"
	"github.com/bitfsorg/libtrade-go/txbuilder"
)

// UTXOSource lists the coins an address can spend.
type UTXOSource interface {
	UTXOs(ctx context.Context, a address.Address) ([]tx.UTXO, error)
}

// Broadcaster relays a signed transaction to the network.
type Broadcaster interface {
	Broadcast(ctx context.Context, t *tx.Transaction) (chainhash.Hash, error)
}

// Journal records transactions the wallet has sent.
type Journal interface {
	RecordSent(t *tx.Transaction, own script.Script) error
}

// Wallet spends the coins of one key. It is not safe for concurrent use.
type Wallet struct {
	secret    []byte
	key       *ec.PrivateKey
	params    *NetworkParams
	addr      address.Address
	lock      script.Script
	utxos     UTXOSource
	bcast     Broadcaster
	journal   Journal
	feeMargin uint64
}

// New returns a wallet for secret on params. The secret is copied.
func New(secret []byte, params *NetworkParams, utxos UTXOSource, bcast Broadcaster) (*Wallet, error) {
	if err := checkSecret(secret); err != nil {
		return nil, err
	}
	if params == nil {
		return nil, fmt.Errorf("%w: no network", ErrInvalidNetwork)
	}

	w := &Wallet{
		secret:    append([]byte(nil), secret...),
		params:    params,
		utxos:     utxos,
		bcast:     bcast,
		feeMargin: txbuilder.FeeMargin,
	}
	w.key, _ = ec.PrivateKeyFromBytes(w.secret)
	w.addr = address.FromPubKey(w.key.PubKey(), params.CashAddrPrefix)

	var err error
	if w.lock, err = w.addr.LockingScript(); err != nil {
		return nil, err
	}
	log.Debugf("Opened wallet %s on %s", w.addr.CashAddr(), params.Name)
	return w, nil
}

// SetJournal makes the wallet record every transaction it sends in j.
func (w *Wallet) SetJournal(j Journal) { w.journal = j }

// SetFeeMargin sets the flat amount added to the size-based fee.
func (w *Wallet) SetFeeMargin(m uint64) { w.feeMargin = m }

// Key returns the wallet's private key.
func (w *Wallet) Key() *ec.PrivateKey { return w.key }

// Secret returns a copy of the raw wallet secret.
func (w *Wallet) Secret() []byte { return append([]byte(nil), w.secret...) }

// Address returns the wallet's receiving address.
func (w *Wallet) Address() address.Address { return w.addr }

// LockingScript returns the script paying to the wallet.
func (w *Wallet) LockingScript() script.Script { return w.lock.Clone() }

// Params returns the network parameters.
func (w *Wallet) Params() *NetworkParams { return w.params }

// DustAmount returns the smallest output the wallet will create.
func (w *Wallet) DustAmount() uint64 { return w.params.Dust }

func (w *Wallet) unspent(ctx context.Context) ([]tx.UTXO, error) {
	if w.secret == nil {
		return nil, ErrClosed
	}
	utxos, err := w.utxos.UTXOs(ctx, w.addr)
	if err != nil {
		return nil, fmt.Errorf("wallet: list coins: %w", err)
	}
	return utxos, nil
}

// Balance returns the sum of the wallet's coins.
func (w *Wallet) Balance(ctx context.Context) (uint64, error) {
	utxos, err := w.unspent(ctx)
	if err != nil {
		return 0, err
	}
	return tx.SumUTXOs(utxos), nil
}

// Coins returns the wallet's spendable coins.
func (w *Wallet) Coins(ctx context.Context) ([]tx.UTXO, error) {
	return w.unspent(ctx)
}

// InitTransaction starts a build that spends every coin of the wallet and
// returns it with the total value of those coins.
func (w *Wallet) InitTransaction(ctx context.Context) (*txbuilder.UnsignedBuild, uint64, error) {
	utxos, err := w.unspent(ctx)
	if err != nil {
		return nil, 0, err
	}
	b := txbuilder.New()
	b.SetFeeMargin(w.feeMargin)
	b.SetDustThreshold(w.DustAmount())
	for _, u := range utxos {
		b.AddUTXO(u)
	}
	return b, tx.SumUTXOs(utxos), nil
}

// Send pays amount to to and broadcasts the result. With all set, the
// whole balance less the fee is sent and amount is ignored. Change below
// the dust amount goes to the fee.
func (w *Wallet) Send(ctx context.Context, to address.Address, amount uint64, all bool) (*tx.Transaction, error) {
	if to.IsSimpleLedger() {
		log.Warnf("Sending plain BCH to token address %s", to.CashAddr())
	}
	toLock, err := to.LockingScript()
	if err != nil {
		return nil, err
	}

	b, balance, err := w.InitTransaction(ctx)
	if err != nil {
		return nil, err
	}

	if all {
		idx := b.AddOutput(tx.Output{LockScript: toLock})
		fee := b.Fee()
		if balance < fee+w.DustAmount() {
			return nil, fmt.Errorf("%w: balance %d, fee %d", txbuilder.ErrInsufficientFunds, balance, fee)
		}
		amount = balance - fee
		if err := b.ReplaceOutput(idx, tx.Output{Value: amount, LockScript: toLock}); err != nil {
			return nil, err
		}
	} else {
		if amount < w.DustAmount() {
			return nil, fmt.Errorf("%w: %d < %d", ErrDustAmount, amount, w.DustAmount())
		}
		b.AddOutput(tx.Output{Value: amount, LockScript: toLock})
		if _, err := b.AddChange(w.lock, w.DustAmount()); err != nil {
			return nil, err
		}
	}

	t, err := b.Sign(w.key)
	if err != nil {
		return nil, err
	}
	if _, err := w.SendTx(ctx, t); err != nil {
		return nil, err
	}
	log.Infof("Sent %d sat to %s in %s", amount, to.CashAddr(), t.TxID())
	return t, nil
}

// SendTx broadcasts t and records it in the journal, if any.
func (w *Wallet) SendTx(ctx context.Context, t *tx.Transaction) (chainhash.Hash, error) {
	txid, err := w.bcast.Broadcast(ctx, t)
	if err != nil {
		return chainhash.Hash{}, fmt.Errorf("wallet: broadcast %s: %w", t.TxID(), err)
	}
	if w.journal != nil {
		if err := w.journal.RecordSent(t, w.lock); err != nil {
			log.Warnf("Recording sent transaction %s: %v", txid, err)
		}
	}
	return txid, nil
}

// Close zeroes the wallet secret. The wallet is unusable afterwards.
func (w *Wallet) Close() {
	clear(w.secret)
	w.secret = nil
	w.key = nil
}
