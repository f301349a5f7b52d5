package network

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net"
	"time"

	"github.com/bsv-blockchain/go-sdk/chainhash"
	"github.com/bsv-blockchain/go-wire"

	"github.com/bitfsorg/libtrade-go/tx"
)

const (
	// DefaultUserAgent is announced in the version message.
	DefaultUserAgent = "/tradewallet:0.1.0/"

	defaultPeerTimeout = 30 * time.Second
)

// PeerConfig describes how to talk to peers of one network.
type PeerConfig struct {
	Magic       Magic
	UserAgent   string
	StartHeight int32
	Timeout     time.Duration

	// Dial opens the connection. nil means a net.Dialer.
	Dial func(ctx context.Context, network, addr string) (net.Conn, error)
}

func (c *PeerConfig) timeout() time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return defaultPeerTimeout
}

// Peer is a connection that has completed the version handshake.
type Peer struct {
	conn   net.Conn
	cfg    PeerConfig
	remote *wire.MsgVersion
}

// Connect dials addr and performs the handshake.
func Connect(ctx context.Context, addr string, cfg PeerConfig) (*Peer, error) {
	dial := cfg.Dial
	if dial == nil {
		d := &net.Dialer{Timeout: cfg.timeout()}
		dial = d.DialContext
	}
	conn, err := dial(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrConnectionFailed, addr, err)
	}
	p, err := NewPeer(ctx, conn, cfg)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	return p, nil
}

// NewPeer performs the handshake over an open connection.
func NewPeer(ctx context.Context, conn net.Conn, cfg PeerConfig) (*Peer, error) {
	p := &Peer{conn: conn, cfg: cfg}
	if err := p.handshake(ctx); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Peer) setDeadline(ctx context.Context) {
	deadline := time.Now().Add(p.cfg.timeout())
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = p.conn.SetDeadline(deadline)
}

func (p *Peer) send(msg wire.Message) error {
	return writeMessage(p.conn, p.cfg.Magic, msg)
}

func (p *Peer) handshake(ctx context.Context) error {
	p.setDeadline(ctx)

	ua := p.cfg.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	local := newVersion(rand.Uint64(), ua, p.cfg.StartHeight, p.conn.RemoteAddr())
	if err := p.send(local); err != nil {
		return fmt.Errorf("%w: send version: %w", ErrHandshake, err)
	}

	var gotVerAck bool
	for p.remote == nil || !gotVerAck {
		msg, err := readMessage(p.conn, p.cfg.Magic)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrHandshake, err)
		}
		switch m := msg.(type) {
		case *wire.MsgVersion:
			if m.ProtocolVersion < MinProtocolVersion {
				return fmt.Errorf("%w: protocol version %d", ErrHandshake, m.ProtocolVersion)
			}
			if m.Nonce == local.Nonce {
				return fmt.Errorf("%w: connected to self", ErrHandshake)
			}
			p.remote = m
			if err := p.send(wire.NewMsgVerAck()); err != nil {
				return fmt.Errorf("%w: send verack: %w", ErrHandshake, err)
			}
		case *wire.MsgVerAck:
			gotVerAck = true
		case *wire.MsgPing:
			if err := p.send(wire.NewMsgPong(m.Nonce)); err != nil {
				return fmt.Errorf("%w: send pong: %w", ErrHandshake, err)
			}
		default:
			log.Tracef("Ignoring %s during handshake", msg.Command())
		}
	}
	log.Debugf("Connected to %s (%s, version %d, height %d)",
		p.conn.RemoteAddr(), p.remote.UserAgent, p.remote.ProtocolVersion, p.remote.LastBlock)
	return nil
}

// UserAgent returns the user agent the peer announced.
func (p *Peer) UserAgent() string { return p.remote.UserAgent }

// StartHeight returns the chain height the peer announced.
func (p *Peer) StartHeight() int32 { return p.remote.LastBlock }

// SendTx relays t to the peer.
func (p *Peer) SendTx(ctx context.Context, t *tx.Transaction) error {
	msg := &wire.MsgTx{}
	if err := msg.Deserialize(bytes.NewReader(t.Bytes())); err != nil {
		return fmt.Errorf("network: encode tx %s: %w", t.TxID(), err)
	}
	p.setDeadline(ctx)
	if err := p.send(msg); err != nil {
		return fmt.Errorf("network: send tx %s: %w", t.TxID(), err)
	}
	return nil
}

// Close closes the connection.
func (p *Peer) Close() error { return p.conn.Close() }

// PeerBroadcaster relays transactions straight to P2P peers.
type PeerBroadcaster struct {
	Addrs []string
	Cfg   PeerConfig
}

// Broadcast tries each address in order until one peer completes the
// handshake and accepts the transaction.
func (b *PeerBroadcaster) Broadcast(ctx context.Context, t *tx.Transaction) (chainhash.Hash, error) {
	if len(b.Addrs) == 0 {
		return chainhash.Hash{}, ErrNoPeers
	}
	var errs []error
	for _, addr := range b.Addrs {
		if err := ctx.Err(); err != nil {
			return chainhash.Hash{}, err
		}
		p, err := Connect(ctx, addr, b.Cfg)
		if err != nil {
			log.Debugf("Peer %s: %v", addr, err)
			errs = append(errs, err)
			continue
		}
		err = p.SendTx(ctx, t)
		_ = p.Close()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		log.Infof("Broadcast %s to peer %s", t.TxID(), addr)
		return t.TxID(), nil
	}
	return chainhash.Hash{}, fmt.Errorf("%w: %w", ErrNoPeers, errors.Join(errs...))
}
