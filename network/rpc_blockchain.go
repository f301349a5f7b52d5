package network

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

var _ BlockchainService = (*RPCClient)(nil)

const satsPerCoin = 100_000_000

// parseAmount converts a coin amount as printed by the node, such as
// 0.00100000, to satoshis without going through a float.
func parseAmount(n json.Number) (uint64, error) {
	s := n.String()
	if strings.ContainsAny(s, "eE-+") {
		return 0, fmt.Errorf("%w: amount %q", ErrInvalidResponse, s)
	}
	whole, frac, _ := strings.Cut(s, ".")
	if len(frac) > 8 {
		return 0, fmt.Errorf("%w: amount %q has more than 8 decimals", ErrInvalidResponse, s)
	}
	frac += strings.Repeat("0", 8-len(frac))

	w, err := strconv.ParseUint(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: amount %q", ErrInvalidResponse, s)
	}
	f, err := strconv.ParseUint(frac, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: amount %q", ErrInvalidResponse, s)
	}
	if w > (^uint64(0)-f)/satsPerCoin {
		return 0, fmt.Errorf("%w: amount %q overflows", ErrInvalidResponse, s)
	}
	return w*satsPerCoin + f, nil
}

type unspentEntry struct {
	TxID          string      `json:"txid"`
	Vout          uint32      `json:"vout"`
	Address       string      `json:"address"`
	ScriptPubKey  string      `json:"scriptPubKey"`
	Amount        json.Number `json:"amount"`
	Confirmations int64       `json:"confirmations"`
}

// ListUnspent calls listunspent 0 9999999 [address], so unconfirmed coins
// are included.
func (c *RPCClient) ListUnspent(ctx context.Context, address string) ([]*UTXO, error) {
	var entries []unspentEntry
	if err := c.Call(ctx, "listunspent", []any{0, 9999999, []string{address}}, &entries); err != nil {
		return nil, err
	}

	utxos := make([]*UTXO, 0, len(entries))
	for _, e := range entries {
		amount, err := parseAmount(e.Amount)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", e.TxID, e.Vout, err)
		}
		utxos = append(utxos, &UTXO{
			TxID:          e.TxID,
			Vout:          e.Vout,
			Amount:        amount,
			ScriptPubKey:  e.ScriptPubKey,
			Address:       e.Address,
			Confirmations: e.Confirmations,
		})
	}
	return utxos, nil
}

type txOutEntry struct {
	Value         json.Number `json:"value"`
	Confirmations int64       `json:"confirmations"`
	ScriptPubKey  struct {
		Hex       string   `json:"hex"`
		Addresses []string `json:"addresses"`
	} `json:"scriptPubKey"`
}

// GetUTXO calls gettxout. The node answers null for a spent or unknown
// output, reported as ErrTxNotFound.
func (c *RPCClient) GetUTXO(ctx context.Context, txid string, vout uint32) (*UTXO, error) {
	var entry *txOutEntry
	if err := c.Call(ctx, "gettxout", []any{txid, vout}, &entry); err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, fmt.Errorf("%w: %s:%d is spent or unknown", ErrTxNotFound, txid, vout)
	}
	amount, err := parseAmount(entry.Value)
	if err != nil {
		return nil, err
	}

	u := &UTXO{
		TxID:          txid,
		Vout:          vout,
		Amount:        amount,
		ScriptPubKey:  entry.ScriptPubKey.Hex,
		Confirmations: entry.Confirmations,
	}
	if len(entry.ScriptPubKey.Addresses) > 0 {
		u.Address = entry.ScriptPubKey.Addresses[0]
	}
	return u, nil
}

// BroadcastTx calls sendrawtransaction. Verification failures and
// transactions already mined wrap ErrBroadcastRejected.
func (c *RPCClient) BroadcastTx(ctx context.Context, rawTxHex string) (string, error) {
	var txid string
	err := c.Call(ctx, "sendrawtransaction", []any{rawTxHex}, &txid)
	switch rpcCode(err) {
	case 0:
		if err != nil {
			return "", err
		}
		return txid, nil
	case RPCErrVerify, RPCErrVerifyRejected, RPCErrAlreadyInChain, RPCErrMisc:
		return "", fmt.Errorf("%w: %w", ErrBroadcastRejected, err)
	default:
		return "", err
	}
}

// GetRawTx calls getrawtransaction in non-verbose mode and decodes the hex.
func (c *RPCClient) GetRawTx(ctx context.Context, txid string) ([]byte, error) {
	var rawHex string
	if err := c.Call(ctx, "getrawtransaction", []any{txid, false}, &rawHex); err != nil {
		if rpcCode(err) == RPCErrInvalidAddrOrKey {
			return nil, fmt.Errorf("%w: %s: %w", ErrTxNotFound, txid, err)
		}
		return nil, err
	}
	raw, err := hex.DecodeString(rawHex)
	if err != nil {
		return nil, fmt.Errorf("%w: transaction %s: %w", ErrInvalidResponse, txid, err)
	}
	return raw, nil
}

// GetBestBlockHeight calls getblockcount.
func (c *RPCClient) GetBestBlockHeight(ctx context.Context) (uint64, error) {
	var height uint64
	if err := c.Call(ctx, "getblockcount", nil, &height); err != nil {
		return 0, err
	}
	return height, nil
}

// GetRawMempool calls getrawmempool.
func (c *RPCClient) GetRawMempool(ctx context.Context) ([]string, error) {
	var ids []string
	if err := c.Call(ctx, "getrawmempool", []any{false}, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// GetBlockHash calls getblockhash. A height above the tip is
// ErrBlockNotFound.
func (c *RPCClient) GetBlockHash(ctx context.Context, height uint64) (string, error) {
	var hash string
	if err := c.Call(ctx, "getblockhash", []any{height}, &hash); err != nil {
		if rpcCode(err) == RPCErrInvalidParameter {
			return "", fmt.Errorf("%w: height %d: %w", ErrBlockNotFound, height, err)
		}
		return "", err
	}
	return hash, nil
}

// GetRawBlock calls getblock with verbosity 0.
func (c *RPCClient) GetRawBlock(ctx context.Context, hash string) ([]byte, error) {
	var rawHex string
	if err := c.Call(ctx, "getblock", []any{hash, 0}, &rawHex); err != nil {
		if rpcCode(err) == RPCErrInvalidAddrOrKey {
			return nil, fmt.Errorf("%w: %s: %w", ErrBlockNotFound, hash, err)
		}
		return nil, err
	}
	raw, err := hex.DecodeString(rawHex)
	if err != nil {
		return nil, fmt.Errorf("%w: block %s: %w", ErrInvalidResponse, hash, err)
	}
	return raw, nil
}

// ImportAddress calls importaddress with a rescan so the node's wallet
// reports coins of address. The node refusing an address it already
// holds is not an error.
func (c *RPCClient) ImportAddress(ctx context.Context, address string) error {
	err := c.Call(ctx, "importaddress", []any{address, "", true}, nil)
	if rpcCode(err) == RPCErrWallet && strings.Contains(err.Error(), "already") {
		log.Debugf("Node already watches %s", address)
		return nil
	}
	return err
}
