package network

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// nodeServer answers every request with reply(req), echoing the request id.
func nodeServer(t *testing.T, reply func(req request) response) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		resp := reply(req)
		if resp.Error != nil {
			w.WriteHeader(http.StatusInternalServerError)
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRPCClientCall(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "trader", user)
		assert.Equal(t, "s3cret", pass)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "1.0", req.JSONRPC)
		assert.Equal(t, "getblockcount", req.Method)
		assert.NotNil(t, req.Params)

		_ = json.NewEncoder(w).Encode(response{ID: req.ID, Result: json.RawMessage(`100`)})
	}))
	defer srv.Close()

	client := NewRPCClient(RPCConfig{URL: srv.URL, User: "trader", Password: "s3cret"})
	var height int
	require.NoError(t, client.Call(context.Background(), "getblockcount", nil, &height))
	assert.Equal(t, 100, height)
}

func TestRPCClientNoAuth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _, ok := r.BasicAuth()
		assert.False(t, ok)
		var req request
		_ = json.NewDecoder(r.Body).Decode(&req)
		_ = json.NewEncoder(w).Encode(response{ID: req.ID, Result: json.RawMessage(`1`)})
	}))
	defer srv.Close()

	var n int
	require.NoError(t, NewRPCClient(RPCConfig{URL: srv.URL}).Call(context.Background(), "getblockcount", nil, &n))
}

func TestRPCClientNodeError(t *testing.T) {
	srv := nodeServer(t, func(req request) response {
		return response{ID: req.ID, Error: &RPCError{Code: RPCErrInvalidAddrOrKey,
			Message: "No such mempool or blockchain transaction"}}
	})

	err := NewRPCClient(RPCConfig{URL: srv.URL}).Call(context.Background(), "getrawtransaction", []any{"00"}, nil)
	require.Error(t, err)

	var rerr *RPCError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, RPCErrInvalidAddrOrKey, rerr.Code)
	assert.Equal(t, RPCErrInvalidAddrOrKey, rpcCode(err))
	assert.Contains(t, err.Error(), "No such mempool")
}

func TestRPCClientHTTPErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		err    error
	}{
		{"unauthorized", http.StatusUnauthorized, "", ErrAuthFailed},
		{"forbidden", http.StatusForbidden, "", ErrAuthFailed},
		{"warming up", http.StatusServiceUnavailable, "", ErrConnectionFailed},
		{"html error page", http.StatusBadGateway, "<html>bad gateway</html>", ErrConnectionFailed},
		{"garbage with 200", http.StatusOK, "not json", ErrInvalidResponse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			var n int
			err := NewRPCClient(RPCConfig{URL: srv.URL}).Call(context.Background(), "getblockcount", nil, &n)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestRPCClientIDMismatch(t *testing.T) {
	srv := nodeServer(t, func(req request) response {
		return response{ID: req.ID + 7, Result: json.RawMessage(`1`)}
	})
	var n int
	err := NewRPCClient(RPCConfig{URL: srv.URL}).Call(context.Background(), "getblockcount", nil, &n)
	assert.ErrorIs(t, err, ErrInvalidResponse)
}

func TestRPCClientResultTypeMismatch(t *testing.T) {
	srv := nodeServer(t, func(req request) response {
		return response{ID: req.ID, Result: json.RawMessage(`"tall"`)}
	})
	var n int
	err := NewRPCClient(RPCConfig{URL: srv.URL}).Call(context.Background(), "getblockcount", nil, &n)
	assert.ErrorIs(t, err, ErrInvalidResponse)
}

func TestRPCClientConnectionError(t *testing.T) {
	client := NewRPCClient(RPCConfig{URL: "http://127.0.0.1:1"})
	var n int
	err := client.Call(context.Background(), "getblockcount", nil, &n)
	assert.ErrorIs(t, err, ErrConnectionFailed)
}

func TestRPCClientContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var n int
	err := NewRPCClient(RPCConfig{URL: srv.URL}).Call(ctx, "getblockcount", nil, &n)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRPCClientSequentialIDs(t *testing.T) {
	var ids []int64
	srv := nodeServer(t, func(req request) response {
		ids = append(ids, req.ID)
		return response{ID: req.ID, Result: json.RawMessage(`0`)}
	})

	client := NewRPCClient(RPCConfig{URL: srv.URL})
	for range 3 {
		var n int
		require.NoError(t, client.Call(context.Background(), "getblockcount", nil, &n))
	}
	assert.Equal(t, []int64{1, 2, 3}, ids)
}

func TestRPCClientDiscardResult(t *testing.T) {
	srv := nodeServer(t, func(req request) response {
		return response{ID: req.ID, Result: json.RawMessage(`"ignored"`)}
	})
	err := NewRPCClient(RPCConfig{URL: srv.URL}).Call(context.Background(), "importaddress", []any{"a"}, nil)
	assert.NoError(t, err)
}
