package trade

import (
	"bytes"
	"fmt"

	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"

	"github.com/bitfsorg/libtrade-go/script"
	"github.com/bitfsorg/libtrade-go/tx"
	"github.com/bitfsorg/libtrade-go/txbuilder"
)

// FundingParams holds what is needed to lock coins into a contract.
type FundingParams struct {
	Key        *ec.PrivateKey // owns every UTXO
	UTXOs      []tx.UTXO
	Contract   script.Script
	Amount     uint64
	ChangeLock script.Script
	Offer      *Offer // optional; published as a data output
	Dust       uint64 // 0 means tx.DustThreshold
}

// BuildFunding returns a signed transaction with the contract at output 0,
// the offer record (if any) next, and change last when it is not dust.
func BuildFunding(p *FundingParams) (*tx.Transaction, error) {
	if p == nil || p.Key == nil {
		return nil, fmt.Errorf("%w: nil params or key", ErrInvalidParams)
	}
	if len(p.UTXOs) == 0 {
		return nil, fmt.Errorf("%w: no UTXOs provided", ErrInvalidParams)
	}
	if _, err := ExtractSecretHash(p.Contract); err != nil {
		return nil, err
	}
	dust := p.Dust
	if dust == 0 {
		dust = tx.DustThreshold
	}
	if p.Amount < dust {
		return nil, fmt.Errorf("%w: amount %d below dust %d", ErrInvalidParams, p.Amount, dust)
	}

	b := txbuilder.New()
	b.SetDustThreshold(dust)
	for _, u := range p.UTXOs {
		b.AddUTXO(u)
	}
	b.AddOutput(tx.Output{Value: p.Amount, LockScript: p.Contract})
	if p.Offer != nil {
		data, err := p.Offer.LockingScript()
		if err != nil {
			return nil, err
		}
		b.AddOutput(tx.Output{LockScript: data})
	}
	if _, err := b.AddChange(p.ChangeLock, dust); err != nil {
		return nil, err
	}

	t, err := b.Sign(p.Key)
	if err != nil {
		return nil, fmt.Errorf("trade: sign funding: %w", err)
	}
	log.Infof("Built funding %s locking %d satoshis", t.TxID(), p.Amount)
	return t, nil
}

// VerifyFunding returns the contract output of t. It fails when no output
// is locked by contract or the first one holds less than minAmount.
func VerifyFunding(t *tx.Transaction, contract script.Script, minAmount uint64) (tx.UTXO, error) {
	if t == nil {
		return tx.UTXO{}, fmt.Errorf("%w: nil transaction", ErrInvalidTx)
	}
	if len(contract) == 0 {
		return tx.UTXO{}, fmt.Errorf("%w: empty contract", ErrInvalidParams)
	}
	want := contract.Bytes()
	for i, out := range t.Outputs() {
		if !bytes.Equal(out.LockScript.Bytes(), want) {
			continue
		}
		if out.Value < minAmount {
			return tx.UTXO{}, fmt.Errorf("%w: output has %d satoshis, need %d",
				ErrInsufficientPayment, out.Value, minAmount)
		}
		return tx.UTXO{OutPoint: t.OutPoint(uint32(i)), Output: out}, nil
	}
	return tx.UTXO{}, ErrNoMatchingOutput
}
