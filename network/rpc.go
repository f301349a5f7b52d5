package network

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"
)

// Error codes returned by Bitcoin Cash Node and bchd.
const (
	RPCErrMisc             = -1
	RPCErrWallet           = -4
	RPCErrInvalidAddrOrKey = -5
	RPCErrInvalidParameter = -8
	RPCErrVerify           = -25
	RPCErrVerifyRejected   = -26
	RPCErrAlreadyInChain   = -27
	RPCErrInWarmup         = -28
)

const rpcTimeout = 30 * time.Second

// RPCClient talks JSON-RPC 1.0 over HTTP to a node, the protocol spoken by
// bitcoind-derived BCH nodes. A zero User sends no credentials.
type RPCClient struct {
	url    string
	user   string
	pass   string
	client *http.Client
	nextID atomic.Int64
}

type request struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int64  `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type response struct {
	ID     int64           `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  *RPCError       `json:"error"`
}

// RPCError is an error object returned by the node.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("network: rpc error %d: %s", e.Code, e.Message)
}

// rpcCode returns the node error code carried by err, or 0.
func rpcCode(err error) int {
	var rerr *RPCError
	if errors.As(err, &rerr) {
		return rerr.Code
	}
	return 0
}

// NewRPCClient returns a client for cfg.
func NewRPCClient(cfg RPCConfig) *RPCClient {
	return &RPCClient{
		url:  cfg.URL,
		user: cfg.User,
		pass: cfg.Password,
		client: &http.Client{
			Timeout: rpcTimeout,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// Call invokes method with params and decodes the result into result,
// which may be nil to discard it.
//
// Transport failures wrap ErrConnectionFailed, a 401 or 403 is
// ErrAuthFailed and an undecodable body is ErrInvalidResponse. Errors
// reported by the node are returned as *RPCError.
func (c *RPCClient) Call(ctx context.Context, method string, params []any, result any) error {
	if params == nil {
		params = []any{}
	}
	id := c.nextID.Add(1)
	body, err := json.Marshal(request{JSONRPC: "1.0", ID: id, Method: method, Params: params})
	if err != nil {
		return fmt.Errorf("network: encode %s: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.user != "" {
		req.SetBasicAuth(c.user, c.pass)
	}

	log.Tracef("RPC %s #%d", method, id)
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: HTTP %d from %s", ErrAuthFailed, resp.StatusCode, c.url)
	case resp.StatusCode == http.StatusServiceUnavailable:
		return fmt.Errorf("%w: node is starting up", ErrConnectionFailed)
	}

	// Nodes answer RPC errors with HTTP 500 or 404 and a JSON body, so the
	// body is decoded before the status is judged.
	var rpcResp response
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxRPCResponse)).Decode(&rpcResp); err != nil {
		if resp.StatusCode/100 != 2 {
			return fmt.Errorf("%w: HTTP %d", ErrConnectionFailed, resp.StatusCode)
		}
		return fmt.Errorf("%w: decode %s: %w", ErrInvalidResponse, method, err)
	}
	if rpcResp.Error != nil {
		return rpcResp.Error
	}
	if rpcResp.ID != id {
		return fmt.Errorf("%w: %s answered id %d, sent %d", ErrInvalidResponse, method, rpcResp.ID, id)
	}
	if result == nil || len(rpcResp.Result) == 0 {
		return nil
	}
	if err := json.Unmarshal(rpcResp.Result, result); err != nil {
		return fmt.Errorf("%w: %s result: %w", ErrInvalidResponse, method, err)
	}
	return nil
}

// maxRPCResponse bounds a response body. A raw transaction of the largest
// standard size in hex fits well inside.
const maxRPCResponse = 32 << 20
