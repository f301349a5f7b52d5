package network

import "errors"

var (
	// ErrConnectionFailed indicates the client could not connect to the node.
	ErrConnectionFailed = errors.New("network: connection failed")

	// ErrInvalidConfig indicates the RPC configuration cannot be used.
	ErrInvalidConfig = errors.New("network: invalid RPC configuration")

	// ErrAuthFailed indicates authentication (e.g., RPC credentials) was rejected.
	ErrAuthFailed = errors.New("network: authentication failed")

	// ErrTxNotFound indicates the requested transaction does not exist.
	ErrTxNotFound = errors.New("network: transaction not found")

	// ErrBlockNotFound indicates the requested block does not exist.
	ErrBlockNotFound = errors.New("network: block not found")

	// ErrBroadcastRejected indicates the node rejected the broadcast transaction.
	ErrBroadcastRejected = errors.New("network: broadcast rejected")

	// ErrInvalidResponse indicates the node returned a malformed or unexpected response.
	ErrInvalidResponse = errors.New("network: invalid response")

	// ErrNoPeers indicates no peer address was available or reachable.
	ErrNoPeers = errors.New("network: no reachable peers")

	// ErrHandshake indicates the version handshake with a peer failed.
	ErrHandshake = errors.New("network: handshake failed")

	// ErrBadMessage indicates a peer sent a malformed message.
	ErrBadMessage = errors.New("network: bad message")

	// ErrSeedLookup indicates a DNS seed query failed.
	ErrSeedLookup = errors.New("network: seed lookup failed")
)
