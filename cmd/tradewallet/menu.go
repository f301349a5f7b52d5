package main

import (
	"bufio"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/bsv-blockchain/go-sdk/chainhash"

	"github.com/bitfsorg/libtrade-go/address"
	"github.com/bitfsorg/libtrade-go/network"
	"github.com/bitfsorg/libtrade-go/script"
	"github.com/bitfsorg/libtrade-go/trade"
	"github.com/bitfsorg/libtrade-go/tx"
	"github.com/bitfsorg/libtrade-go/wallet"
)

const satsPerCoin = 100_000_000

// offerScanDepth bounds the block scan for offers. An offer older than the
// longest refund delay can no longer be open.
const offerScanDepth = trade.MaxTimeout

// chainView is what the menu needs from the node.
type chainView interface {
	Tx(ctx context.Context, txid chainhash.Hash) (*tx.Transaction, error)
	TipHeight(ctx context.Context) (uint32, error)
	RecentTxs(ctx context.Context, depth uint32) ([]*tx.Transaction, error)
}

type app struct {
	in     *bufio.Reader
	out    io.Writer
	wallet *wallet.Wallet
	chain  chainView
}

var _ chainView = (*network.Chain)(nil)

func (a *app) ask(prompt string) (string, error) {
	fmt.Fprint(a.out, prompt)
	return readLine(a.in)
}

func (a *app) menu(ctx context.Context) error {
	fmt.Fprintf(a.out, "Your wallet address is: %s\n", a.wallet.Address().CashAddr())
	fmt.Fprintln(a.out, "Select an option from below:")
	fmt.Fprintln(a.out, "1: Show wallet balance")
	fmt.Fprintln(a.out, "2: Send BCH from this wallet to an address")
	fmt.Fprintln(a.out, "3: Create a new trade offer")
	fmt.Fprintln(a.out, "4: List all available trade offers")
	fmt.Fprintln(a.out, "5: Check a counterparty transaction")
	fmt.Fprintln(a.out, "6: Show the backup mnemonic")
	fmt.Fprintln(a.out, "Anything else: Exit")

	choice, err := a.ask("Your choice: ")
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	switch choice {
	case "1":
		return a.showBalance(ctx)
	case "2":
		return a.send(ctx)
	case "3":
		return a.createTrade(ctx)
	case "4":
		return a.listOffers(ctx)
	case "5":
		return a.checkCounterpartyTx(ctx)
	case "6":
		return a.showMnemonic()
	}
	fmt.Fprintln(a.out, "Bye, have a great time!")
	return nil
}

func (a *app) printBalance(balance uint64) {
	fmt.Fprintf(a.out, "Your wallet's balance is: %d sats or %.8f BCH.\n",
		balance, float64(balance)/satsPerCoin)
}

func (a *app) showBalance(ctx context.Context) error {
	balance, err := a.wallet.Balance(ctx)
	if err != nil {
		return err
	}
	a.printBalance(balance)
	return nil
}

func (a *app) send(ctx context.Context) error {
	if err := a.showBalance(ctx); err != nil {
		return err
	}

	addrStr, err := a.ask("Enter the address to send to: ")
	if err != nil {
		return err
	}
	to, err := address.DecodeFor(addrStr, a.wallet.Params().CashAddrPrefix)
	if err != nil {
		fmt.Fprintf(a.out, "Please enter a valid address: %v\n", err)
		return nil
	}
	if to.IsSimpleLedger() {
		fmt.Fprintln(a.out, "Note: You entered a Simple Ledger Protocol (SLP) address, but this "+
			"wallet only contains ordinary non-token BCH. The program will proceed anyways.")
	}

	amountStr, err := a.ask("Enter the amount in satoshis to send, or \"all\" (without quotes) " +
		"to send the entire balance: ")
	if err != nil {
		return err
	}
	all := amountStr == "all"
	var amount uint64
	if !all {
		if amount, err = strconv.ParseUint(amountStr, 10, 64); err != nil {
			fmt.Fprintf(a.out, "Please enter a valid amount: %v\n", err)
			return nil
		}
	}

	t, err := a.wallet.Send(ctx, to, amount, all)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Sent transaction %s\n", t.TxID())
	return nil
}

func (a *app) createTrade(ctx context.Context) error {
	sellerHex, err := a.ask("Enter the seller's compressed public key (hex): ")
	if err != nil {
		return err
	}
	sellerPub, err := hex.DecodeString(sellerHex)
	if err != nil || len(sellerPub) != trade.CompressedPubKeyLen {
		fmt.Fprintln(a.out, "Please enter a 33-byte compressed public key in hex.")
		return nil
	}

	amountStr, err := a.ask("Enter the amount in satoshis to lock: ")
	if err != nil {
		return err
	}
	amount, err := strconv.ParseUint(amountStr, 10, 64)
	if err != nil {
		fmt.Fprintf(a.out, "Please enter a valid amount: %v\n", err)
		return nil
	}

	blocksStr, err := a.ask(fmt.Sprintf("Enter the refund delay in blocks (%d-%d, ENTER for %d): ",
		trade.MinTimeout, trade.MaxTimeout, trade.DefaultTimeout))
	if err != nil {
		return err
	}
	blocks := uint64(trade.DefaultTimeout)
	if blocksStr != "" {
		if blocks, err = strconv.ParseUint(blocksStr, 10, 32); err != nil {
			fmt.Fprintf(a.out, "Please enter a valid number of blocks: %v\n", err)
			return nil
		}
	}

	tip, err := a.chain.TipHeight(ctx)
	if err != nil {
		return err
	}
	timeout, err := trade.RefundHeight(tip, uint32(blocks))
	if err != nil {
		return err
	}

	offerID, err := trade.NewOfferID()
	if err != nil {
		return err
	}
	buyerKey, err := a.wallet.TradeKey(offerID)
	if err != nil {
		return err
	}
	secret, secretHash, err := trade.NewSecret()
	if err != nil {
		return err
	}

	params := &trade.ContractParams{
		BuyerPubKey:   buyerKey.PubKey().Compressed(),
		SellerPubKey:  sellerPub,
		SellerKeyHash: trade.SellerKeyHashFor(sellerPub),
		SecretHash:    secretHash,
		Timeout:       timeout,
		OfferID:       offerID,
	}
	contract, err := trade.BuildContract(params)
	if err != nil {
		return err
	}
	offer, err := trade.NewOffer(params, amount)
	if err != nil {
		return err
	}

	coins, err := a.wallet.Coins(ctx)
	if err != nil {
		return err
	}
	funding, err := trade.BuildFunding(&trade.FundingParams{
		Key:        a.wallet.Key(),
		UTXOs:      coins,
		Contract:   contract,
		Amount:     amount,
		ChangeLock: a.wallet.LockingScript(),
		Offer:      offer,
		Dust:       a.wallet.DustAmount(),
	})
	if err != nil {
		return err
	}
	txid, err := a.wallet.SendTx(ctx, funding)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Offer %x funded in %s.\n", offerID, txid)
	fmt.Fprintf(a.out, "Contract script: %s\n", contract.Hex())
	fmt.Fprintf(a.out, "Refund possible from block %d.\n", timeout)
	fmt.Fprintf(a.out, "Secret (reveal to the seller only on delivery): %x\n", secret)
	return nil
}

// spentOutputs fetches the outputs t spends from the node.
func (a *app) spentOutputs(ctx context.Context, t *tx.Transaction) ([]tx.Output, error) {
	spent := make([]tx.Output, 0, t.NumInputs())
	for _, in := range t.Inputs() {
		prev, err := a.chain.Tx(ctx, in.PrevOut.Hash)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", in.PrevOut, err)
		}
		out, err := prev.Output(int(in.PrevOut.Index))
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", in.PrevOut, err)
		}
		spent = append(spent, out)
	}
	return spent, nil
}

func (a *app) listOffers(ctx context.Context) error {
	me := a.wallet.Key().PubKey().Compressed()
	fmt.Fprintf(a.out, "Your public key for trades: %x\n", me)

	tip, err := a.chain.TipHeight(ctx)
	if err != nil {
		return err
	}
	txs, err := a.chain.RecentTxs(ctx, offerScanDepth)
	if err != nil {
		return err
	}
	listings := trade.ListOffers(txs, tip)
	if len(listings) == 0 {
		fmt.Fprintln(a.out, "No open trade offers found.")
		return nil
	}
	for i, l := range listings {
		mark := ""
		if l.ForSeller(me) {
			mark = " (for you)"
		}
		fmt.Fprintf(a.out, "%d: offer %x locks %d sats in %s, refundable from block %d%s\n",
			i+1, l.Offer.ID, l.Offer.Amount, l.Contract.OutPoint, l.Offer.Timeout, mark)
	}

	choice, err := a.ask("Enter the number of an offer to accept, or ENTER to go back: ")
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	if choice == "" {
		return nil
	}
	n, err := strconv.Atoi(choice)
	if err != nil || n < 1 || n > len(listings) {
		fmt.Fprintf(a.out, "Please enter a number between 1 and %d.\n", len(listings))
		return nil
	}
	return a.acceptOffer(ctx, listings[n-1])
}

// acceptOffer checks the funding of an offer made to this wallet and, once
// the buyer has revealed the secret, claims the contract.
func (a *app) acceptOffer(ctx context.Context, l trade.Listing) error {
	if !l.ForSeller(a.wallet.Key().PubKey().Compressed()) {
		fmt.Fprintf(a.out, "Offer %x names another seller; only that seller can claim it.\n", l.Offer.ID)
		return nil
	}
	spent, err := a.spentOutputs(ctx, l.Funding)
	if err != nil {
		return err
	}
	if err := trade.VerifyCounterpartyTx(l.Funding, spent); err != nil {
		fmt.Fprintf(a.out, "Funding %s does NOT validate: %v\n", l.Funding.TxID(), err)
		return nil
	}
	fmt.Fprintf(a.out, "Offer %x accepted. Deliver to the buyer, then claim with the secret "+
		"before block %d.\n", l.Offer.ID, l.Offer.Timeout)

	secretHex, err := a.ask("Enter the secret (hex) to claim now, or ENTER to claim later: ")
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	if secretHex == "" {
		return nil
	}
	secret, err := hex.DecodeString(secretHex)
	if err != nil {
		fmt.Fprintln(a.out, "Please enter the secret in hex.")
		return nil
	}
	claim, err := trade.BuildClaim(&trade.ClaimParams{
		Key:      a.wallet.Key(),
		Contract: l.Contract,
		Secret:   secret,
		PayTo:    a.wallet.LockingScript(),
		Dust:     a.wallet.DustAmount(),
	})
	if errors.Is(err, trade.ErrInvalidParams) {
		fmt.Fprintf(a.out, "The secret does not open offer %x.\n", l.Offer.ID)
		return nil
	}
	if err != nil {
		return err
	}
	txid, err := a.wallet.SendTx(ctx, claim)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Claimed offer %x in %s.\n", l.Offer.ID, txid)
	return nil
}

func (a *app) checkCounterpartyTx(ctx context.Context) error {
	txHex, err := a.ask("Enter the transaction hex: ")
	if err != nil {
		return err
	}
	t, err := tx.NewFromHex(txHex)
	if err != nil {
		fmt.Fprintf(a.out, "Not a valid transaction: %v\n", err)
		return nil
	}

	spent, err := a.spentOutputs(ctx, t)
	if err != nil {
		return err
	}
	if err := trade.VerifyCounterpartyTx(t, spent); err != nil {
		fmt.Fprintf(a.out, "Transaction %s does NOT validate: %v\n", t.TxID(), err)
		return nil
	}
	fmt.Fprintf(a.out, "Transaction %s validates.\n", t.TxID())

	locks := make([]script.Script, 0, t.NumOutputs())
	for _, out := range t.Outputs() {
		locks = append(locks, out.LockScript)
	}
	offer, err := trade.FindOffer(locks...)
	if err != nil {
		fmt.Fprintf(a.out, "No trade offer found: %v\n", err)
		return nil
	}
	contract, err := trade.BuildContract(offer.Params())
	if err != nil {
		fmt.Fprintf(a.out, "Offer %x is malformed: %v\n", offer.ID, err)
		return nil
	}
	if _, err := trade.VerifyFunding(t, contract, offer.Amount); err != nil {
		fmt.Fprintf(a.out, "Offer %x is NOT funded as announced: %v\n", offer.ID, err)
		return nil
	}
	fmt.Fprintf(a.out, "Offer %x locks %d sats, refundable from block %d.\n",
		offer.ID, offer.Amount, offer.Timeout)
	return nil
}

func (a *app) showMnemonic() error {
	mnemonic, err := wallet.BackupMnemonic(a.wallet.Secret())
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Write these words down and keep them private:")
	fmt.Fprintln(a.out, mnemonic)
	return nil
}
