package network

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const regtestAddr = "bchreg:qpm2qsznhks23z7629mms6s4cwef74vcwvhanqgjxu"

type methodFunc func(params []any) (any, *RPCError)

// methodServer routes requests by method name.
func methodServer(t *testing.T, methods map[string]methodFunc) *RPCClient {
	t.Helper()
	srv := nodeServer(t, func(req request) response {
		fn, ok := methods[req.Method]
		if !ok {
			t.Errorf("unexpected RPC method %s", req.Method)
			return response{ID: req.ID, Error: &RPCError{Code: -32601, Message: "Method not found"}}
		}
		result, rerr := fn(req.Params)
		if rerr != nil {
			return response{ID: req.ID, Error: rerr}
		}
		raw, err := json.Marshal(result)
		require.NoError(t, err)
		return response{ID: req.ID, Result: raw}
	})
	return NewRPCClient(RPCConfig{URL: srv.URL})
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want uint64
		ok   bool
	}{
		{"0", 0, true},
		{"0.00000546", 546, true},
		{"0.001", 100000, true},
		{"1.5", 150000000, true},
		{"21000000.00000000", 2100000000000000, true},
		{"0.1", 10000000, true},
		{"0.000000001", 0, false},
		{"-1", 0, false},
		{"1e-8", 0, false},
		{"", 0, false},
		{"1.", 100000000, true},
		{"184467440737.09551616", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseAmount(json.Number(tt.in))
			if !tt.ok {
				assert.ErrorIs(t, err, ErrInvalidResponse)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestListUnspent(t *testing.T) {
	client := methodServer(t, map[string]methodFunc{
		"listunspent": func(params []any) (any, *RPCError) {
			require.Len(t, params, 3)
			assert.Equal(t, float64(0), params[0])
			assert.Equal(t, float64(9999999), params[1])
			assert.Equal(t, []any{regtestAddr}, params[2])

			return []map[string]any{
				{
					"txid":          "abc123def456",
					"vout":          0,
					"amount":        json.Number("0.00100000"),
					"scriptPubKey":  "76a914deadbeef88ac",
					"address":       regtestAddr,
					"confirmations": 6,
				},
				{
					"txid":          "fff000aaa111",
					"vout":          1,
					"amount":        json.Number("0.29"),
					"scriptPubKey":  "76a914cafebabe88ac",
					"address":       regtestAddr,
					"confirmations": 0,
				},
			}, nil
		},
	})

	utxos, err := client.ListUnspent(context.Background(), regtestAddr)
	require.NoError(t, err)
	require.Len(t, utxos, 2)

	assert.Equal(t, &UTXO{
		TxID:          "abc123def456",
		Amount:        100000,
		ScriptPubKey:  "76a914deadbeef88ac",
		Address:       regtestAddr,
		Confirmations: 6,
	}, utxos[0])
	// 0.29 is not exact as a float64.
	assert.Equal(t, uint64(29000000), utxos[1].Amount)
	assert.Equal(t, uint32(1), utxos[1].Vout)
}

func TestListUnspentBadAmount(t *testing.T) {
	client := methodServer(t, map[string]methodFunc{
		"listunspent": func([]any) (any, *RPCError) {
			return []map[string]any{{"txid": "aa", "amount": json.Number("0.123456789")}}, nil
		},
	})
	_, err := client.ListUnspent(context.Background(), regtestAddr)
	assert.ErrorIs(t, err, ErrInvalidResponse)
}

func TestGetUTXO(t *testing.T) {
	client := methodServer(t, map[string]methodFunc{
		"gettxout": func(params []any) (any, *RPCError) {
			require.Len(t, params, 2)
			assert.Equal(t, "txid_utxo", params[0])
			assert.Equal(t, float64(2), params[1])
			return map[string]any{
				"value":         json.Number("0.005"),
				"confirmations": 3,
				"scriptPubKey": map[string]any{
					"hex":       "76a914aabbccdd88ac",
					"addresses": []string{regtestAddr},
				},
			}, nil
		},
	})

	u, err := client.GetUTXO(context.Background(), "txid_utxo", 2)
	require.NoError(t, err)
	assert.Equal(t, &UTXO{
		TxID:          "txid_utxo",
		Vout:          2,
		Amount:        500000,
		ScriptPubKey:  "76a914aabbccdd88ac",
		Address:       regtestAddr,
		Confirmations: 3,
	}, u)
}

func TestGetUTXOSpent(t *testing.T) {
	client := methodServer(t, map[string]methodFunc{
		"gettxout": func([]any) (any, *RPCError) { return nil, nil },
	})
	u, err := client.GetUTXO(context.Background(), "spent", 0)
	assert.Nil(t, u)
	assert.ErrorIs(t, err, ErrTxNotFound)
}

func TestBroadcastTx(t *testing.T) {
	const txid = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	client := methodServer(t, map[string]methodFunc{
		"sendrawtransaction": func(params []any) (any, *RPCError) {
			assert.Equal(t, []any{"0200000001abcdef"}, params)
			return txid, nil
		},
	})
	got, err := client.BroadcastTx(context.Background(), "0200000001abcdef")
	require.NoError(t, err)
	assert.Equal(t, txid, got)
}

func TestBroadcastTxRejected(t *testing.T) {
	tests := []struct {
		name     string
		code     int
		message  string
		rejected bool
	}{
		{"script failure", RPCErrVerifyRejected, "mandatory-script-verify-flag-failed (Signature must use SIGHASH_FORKID)", true},
		{"missing inputs", RPCErrVerify, "Missing inputs", true},
		{"already mined", RPCErrAlreadyInChain, "Transaction already in block chain", true},
		{"warming up", RPCErrInWarmup, "Loading block index...", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := methodServer(t, map[string]methodFunc{
				"sendrawtransaction": func([]any) (any, *RPCError) {
					return nil, &RPCError{Code: tt.code, Message: tt.message}
				},
			})
			txid, err := client.BroadcastTx(context.Background(), "00")
			assert.Empty(t, txid)
			require.Error(t, err)
			assert.Equal(t, tt.rejected, errors.Is(err, ErrBroadcastRejected))
			assert.Equal(t, tt.code, rpcCode(err))
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestGetRawTx(t *testing.T) {
	const rawHex = "0200000001abcdef"
	client := methodServer(t, map[string]methodFunc{
		"getrawtransaction": func(params []any) (any, *RPCError) {
			assert.Equal(t, []any{"txid123", false}, params)
			return rawHex, nil
		},
	})

	raw, err := client.GetRawTx(context.Background(), "txid123")
	require.NoError(t, err)
	want, _ := hex.DecodeString(rawHex)
	assert.Equal(t, want, raw)
}

func TestGetRawTxErrors(t *testing.T) {
	client := methodServer(t, map[string]methodFunc{
		"getrawtransaction": func(params []any) (any, *RPCError) {
			switch params[0] {
			case "missing":
				return nil, &RPCError{Code: RPCErrInvalidAddrOrKey, Message: "No such mempool or blockchain transaction"}
			case "garbled":
				return "zz", nil
			}
			return nil, &RPCError{Code: RPCErrMisc, Message: "boom"}
		},
	})
	ctx := context.Background()

	_, err := client.GetRawTx(ctx, "missing")
	assert.ErrorIs(t, err, ErrTxNotFound)

	_, err = client.GetRawTx(ctx, "garbled")
	assert.ErrorIs(t, err, ErrInvalidResponse)

	_, err = client.GetRawTx(ctx, "other")
	assert.NotErrorIs(t, err, ErrTxNotFound)
	assert.Equal(t, RPCErrMisc, rpcCode(err))
}

func TestGetBestBlockHeight(t *testing.T) {
	client := methodServer(t, map[string]methodFunc{
		"getblockcount": func([]any) (any, *RPCError) { return 850000, nil },
	})
	height, err := client.GetBestBlockHeight(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(850000), height)
}

func TestImportAddress(t *testing.T) {
	var calls int
	client := methodServer(t, map[string]methodFunc{
		"importaddress": func(params []any) (any, *RPCError) {
			calls++
			assert.Equal(t, []any{regtestAddr, "", true}, params)
			switch calls {
			case 1:
				return nil, nil
			case 2:
				return nil, &RPCError{Code: RPCErrWallet,
					Message: "The wallet already contains the private key for this address or script"}
			}
			return nil, &RPCError{Code: RPCErrWallet, Message: "Rescan is disabled when blocks are pruned"}
		},
	})
	ctx := context.Background()

	require.NoError(t, client.ImportAddress(ctx, regtestAddr))
	require.NoError(t, client.ImportAddress(ctx, regtestAddr))
	assert.Error(t, client.ImportAddress(ctx, regtestAddr))
	assert.Equal(t, 3, calls)
}

func TestGetRawMempool(t *testing.T) {
	client := methodServer(t, map[string]methodFunc{
		"getrawmempool": func(params []any) (any, *RPCError) {
			assert.Equal(t, []any{false}, params)
			return []string{"aa", "bb"}, nil
		},
	})
	ids, err := client.GetRawMempool(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"aa", "bb"}, ids)
}

func TestGetBlockHash(t *testing.T) {
	client := methodServer(t, map[string]methodFunc{
		"getblockhash": func(params []any) (any, *RPCError) {
			if params[0] == float64(7) {
				return "00000000abcd", nil
			}
			return nil, &RPCError{Code: RPCErrInvalidParameter, Message: "Block height out of range"}
		},
	})
	ctx := context.Background()

	hash, err := client.GetBlockHash(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "00000000abcd", hash)

	_, err = client.GetBlockHash(ctx, 9)
	assert.ErrorIs(t, err, ErrBlockNotFound)
}

func TestGetRawBlock(t *testing.T) {
	client := methodServer(t, map[string]methodFunc{
		"getblock": func(params []any) (any, *RPCError) {
			require.Len(t, params, 2)
			assert.Equal(t, float64(0), params[1])
			switch params[0] {
			case "good":
				return "0100", nil
			case "garbled":
				return "zz", nil
			}
			return nil, &RPCError{Code: RPCErrInvalidAddrOrKey, Message: "Block not found"}
		},
	})
	ctx := context.Background()

	raw, err := client.GetRawBlock(ctx, "good")
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 0}, raw)

	_, err = client.GetRawBlock(ctx, "garbled")
	assert.ErrorIs(t, err, ErrInvalidResponse)

	_, err = client.GetRawBlock(ctx, "missing")
	assert.ErrorIs(t, err, ErrBlockNotFound)
}
