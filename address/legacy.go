package address

import (
	"bytes"
	"fmt"

	base58 "github.com/bsv-blockchain/go-sdk/compat/base58"
	sdkscript "github.com/bsv-blockchain/go-sdk/script"

	"github.com/bitfsorg/libtrade-go/hashing"
)

// Base58check version bytes for pay-to-key-hash addresses.
const (
	legacyMainnetVersion = 0x00
	legacyTestnetVersion = 0x6f
)

const legacyLen = 1 + hashing.Hash160Size + 4

// DecodeLegacy parses a base58check pay-to-key-hash address. Mainnet
// addresses get MainnetPrefix; testnet ones get testPrefix, or
// TestnetPrefix when testPrefix is empty or the mainnet prefix.
func DecodeLegacy(s, testPrefix string) (Address, error) {
	decoded, err := base58.Decode(s)
	if err != nil {
		return Address{}, fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}
	if len(decoded) != legacyLen {
		return Address{}, fmt.Errorf("%w: legacy payload is %d bytes", ErrInvalidAddress, len(decoded))
	}
	body, sum := decoded[:legacyLen-4], decoded[legacyLen-4:]
	if check := hashing.DoubleHash(body); !bytes.Equal(check[:4], sum) {
		return Address{}, fmt.Errorf("%w: bad base58 checksum", ErrInvalidAddress)
	}

	var prefix string
	switch body[0] {
	case legacyMainnetVersion:
		prefix = MainnetPrefix
	case legacyTestnetVersion:
		prefix = testPrefix
		if prefix == "" || prefix == MainnetPrefix {
			prefix = TestnetPrefix
		}
	default:
		return Address{}, fmt.Errorf("%w: unsupported version byte 0x%02x", ErrInvalidAddress, body[0])
	}
	return FromPubKeyHash(body[1:], prefix)
}

// Legacy returns the base58check encoding of a pay-to-key-hash address.
func (a Address) Legacy() (string, error) {
	if a.Type != PubKeyHash {
		return "", fmt.Errorf("%w: %s has no legacy form", ErrUnsupportedAddressType, a.Type)
	}
	addr, err := sdkscript.NewAddressFromPublicKeyHash(a.Hash, a.Prefix == MainnetPrefix)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}
	return addr.AddressString, nil
}
