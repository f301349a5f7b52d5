package network

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"

	"github.com/bsv-blockchain/go-wire"

	"github.com/bitfsorg/libtrade-go/tx"
)

const (
	// ProtocolVersion is the P2P protocol version announced to peers.
	ProtocolVersion int32 = 70015

	// MinProtocolVersion is the oldest peer version accepted.
	MinProtocolVersion int32 = 70001
)

// Magic identifies the network on the wire, in the byte order it is sent.
type Magic [4]byte

// Net returns the magic as the go-wire network identifier.
func (m Magic) Net() wire.BitcoinNet {
	return wire.BitcoinNet(binary.LittleEndian.Uint32(m[:]))
}

func (m Magic) String() string { return fmt.Sprintf("%x", m[:]) }

// writeMessage frames msg for the network identified by magic.
func writeMessage(w io.Writer, magic Magic, msg wire.Message) error {
	return wire.WriteMessage(w, msg, uint32(ProtocolVersion), magic.Net())
}

// readMessage reads one message for magic from r. Framing and decoding
// failures reported by go-wire come back wrapped in ErrBadMessage.
func readMessage(r io.Reader, magic Magic) (wire.Message, error) {
	msg, _, err := wire.ReadMessage(r, uint32(ProtocolVersion), magic.Net())
	if err != nil {
		var merr *wire.MessageError
		if errors.As(err, &merr) {
			return nil, fmt.Errorf("%w: %w", ErrBadMessage, err)
		}
		return nil, err
	}
	return msg, nil
}

func netAddress(addr net.Addr) *wire.NetAddress {
	if tcp, ok := addr.(*net.TCPAddr); ok {
		return wire.NewNetAddressIPPort(tcp.IP, uint16(tcp.Port), 0)
	}
	return wire.NewNetAddressIPPort(net.IPv4zero, 0, 0)
}

// newVersion builds the version message announced to remote. Relay is
// disabled since the wallet never asks for inventory.
func newVersion(nonce uint64, userAgent string, startHeight int32, remote net.Addr) *wire.MsgVersion {
	v := wire.NewMsgVersion(netAddress(nil), netAddress(remote), nonce, startHeight)
	v.ProtocolVersion = ProtocolVersion
	v.UserAgent = userAgent
	v.DisableRelayTx = true
	return v
}

// decodeBlockTxs parses a serialized block and returns its transactions in
// the module's transaction model.
func decodeBlockTxs(raw []byte) ([]*tx.Transaction, error) {
	var block wire.MsgBlock
	r := bytes.NewReader(raw)
	if err := block.Deserialize(r); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}
	if r.Len() != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes after block", ErrInvalidResponse, r.Len())
	}
	txs := make([]*tx.Transaction, 0, len(block.Transactions))
	for i, m := range block.Transactions {
		var buf bytes.Buffer
		if err := m.Serialize(&buf); err != nil {
			return nil, fmt.Errorf("%w: transaction %d: %w", ErrInvalidResponse, i, err)
		}
		t, err := tx.Deserialize(buf.Bytes())
		if err != nil {
			return nil, fmt.Errorf("%w: transaction %d: %w", ErrInvalidResponse, i, err)
		}
		txs = append(txs, t)
	}
	return txs, nil
}
