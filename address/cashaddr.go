package address

import (
	"fmt"
	"strings"
)

const cashCharset = "qpzry9x8gf2tvdw0s3jn54khce6mua7l"

// checksumLen is the number of 5-bit groups in a cashaddr checksum.
const checksumLen = 8

var cashCharsetRev = func() [128]int8 {
	var rev [128]int8
	for i := range rev {
		rev[i] = -1
	}
	for i, c := range cashCharset {
		rev[c] = int8(i)
	}
	return rev
}()

func polymod(values []byte) uint64 {
	c := uint64(1)
	for _, d := range values {
		c0 := byte(c >> 35)
		c = ((c & 0x07ffffffff) << 5) ^ uint64(d)
		if c0&0x01 != 0 {
			c ^= 0x98f2bc8e61
		}
		if c0&0x02 != 0 {
			c ^= 0x79b76d99e2
		}
		if c0&0x04 != 0 {
			c ^= 0xf33e5fb3c4
		}
		if c0&0x08 != 0 {
			c ^= 0xae2eabe2a8
		}
		if c0&0x10 != 0 {
			c ^= 0x1e4f43e470
		}
	}
	return c ^ 1
}

// expandPrefix returns the low five bits of every prefix character followed
// by a zero separator.
func expandPrefix(prefix string) []byte {
	out := make([]byte, len(prefix)+1)
	for i := 0; i < len(prefix); i++ {
		out[i] = prefix[i] & 0x1f
	}
	return out
}

func createChecksum(prefix string, payload []byte) []byte {
	values := append(expandPrefix(prefix), payload...)
	values = append(values, make([]byte, checksumLen)...)
	mod := polymod(values)
	out := make([]byte, checksumLen)
	for i := range out {
		out[i] = byte(mod>>(5*(7-i))) & 0x1f
	}
	return out
}

func verifyChecksum(prefix string, payload []byte) bool {
	return polymod(append(expandPrefix(prefix), payload...)) == 0
}

// convertBits regroups data from fromBits-wide to toBits-wide values.
func convertBits(data []byte, fromBits, toBits uint, pad bool) ([]byte, error) {
	var acc uint32
	var bits uint
	maxv := uint32(1)<<toBits - 1
	out := make([]byte, 0, len(data)*int(fromBits)/int(toBits)+1)
	for _, v := range data {
		if uint32(v)>>fromBits != 0 {
			return nil, fmt.Errorf("%w: value %d exceeds %d bits", ErrInvalidAddress, v, fromBits)
		}
		acc = acc<<fromBits | uint32(v)
		bits += fromBits
		for bits >= toBits {
			bits -= toBits
			out = append(out, byte(acc>>bits&maxv))
		}
	}
	if pad {
		if bits > 0 {
			out = append(out, byte(acc<<(toBits-bits)&maxv))
		}
	} else if bits >= fromBits || acc<<(toBits-bits)&maxv != 0 {
		return nil, fmt.Errorf("%w: non-zero padding", ErrInvalidAddress)
	}
	return out, nil
}

// hashSizeBits maps hash lengths to the size field of the version byte.
var hashSizeBits = map[int]byte{20: 0, 24: 1, 28: 2, 32: 3, 40: 4, 48: 5, 56: 6, 64: 7}

// EncodeCashAddr encodes a typed hash under prefix.
func EncodeCashAddr(prefix string, typ Type, hash []byte) (string, error) {
	size, ok := hashSizeBits[len(hash)]
	if !ok {
		return "", fmt.Errorf("%w: hash length %d", ErrInvalidAddress, len(hash))
	}
	if typ > 0x0f {
		return "", fmt.Errorf("%w: type %d", ErrUnsupportedAddressType, typ)
	}
	prefix = strings.ToLower(prefix)

	raw := make([]byte, 0, len(hash)+1)
	raw = append(raw, byte(typ)<<3|size)
	raw = append(raw, hash...)
	payload, err := convertBits(raw, 8, 5, true)
	if err != nil {
		return "", err
	}
	payload = append(payload, createChecksum(prefix, payload)...)

	var sb strings.Builder
	sb.Grow(len(prefix) + 1 + len(payload))
	sb.WriteString(prefix)
	sb.WriteByte(':')
	for _, v := range payload {
		sb.WriteByte(cashCharset[v])
	}
	return sb.String(), nil
}

// DecodeCashAddr decodes a cashaddr. A string without a prefix is read
// under defaultPrefix. Mixed case is rejected.
func DecodeCashAddr(s, defaultPrefix string) (Address, error) {
	if strings.ToLower(s) != s && strings.ToUpper(s) != s {
		return Address{}, fmt.Errorf("%w: mixed case", ErrInvalidAddress)
	}
	s = strings.ToLower(s)

	prefix, body := strings.ToLower(defaultPrefix), s
	if i := strings.LastIndexByte(s, ':'); i >= 0 {
		prefix, body = s[:i], s[i+1:]
	}
	if prefix == "" {
		return Address{}, fmt.Errorf("%w: missing prefix", ErrInvalidAddress)
	}
	if len(body) <= checksumLen {
		return Address{}, fmt.Errorf("%w: too short", ErrInvalidAddress)
	}

	payload := make([]byte, len(body))
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c >= 128 || cashCharsetRev[c] < 0 {
			return Address{}, fmt.Errorf("%w: invalid character %q", ErrInvalidAddress, c)
		}
		payload[i] = byte(cashCharsetRev[c])
	}
	if !verifyChecksum(prefix, payload) {
		return Address{}, ErrChecksum
	}

	raw, err := convertBits(payload[:len(payload)-checksumLen], 5, 8, false)
	if err != nil {
		return Address{}, err
	}
	if len(raw) == 0 {
		return Address{}, fmt.Errorf("%w: empty payload", ErrInvalidAddress)
	}
	version, hash := raw[0], raw[1:]
	if version&0x80 != 0 {
		return Address{}, fmt.Errorf("%w: reserved version bit", ErrInvalidAddress)
	}
	if size, ok := hashSizeBits[len(hash)]; !ok || size != version&0x07 {
		return Address{}, fmt.Errorf("%w: hash length %d does not match version %#x",
			ErrInvalidAddress, len(hash), version)
	}
	return Address{Prefix: prefix, Type: Type(version >> 3), Hash: hash}, nil
}
