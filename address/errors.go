package address

import "errors"

var (
	// ErrUnsupportedAddressType indicates an address type this wallet cannot
	// pay to.
	ErrUnsupportedAddressType = errors.New("address: unsupported address type")

	// ErrInvalidAddress indicates a string that is not a well-formed
	// address.
	ErrInvalidAddress = errors.New("address: invalid address")

	// ErrChecksum indicates an address whose checksum does not match.
	ErrChecksum = errors.New("address: checksum mismatch")

	// ErrPrefixMismatch indicates a cashaddr for a different network.
	ErrPrefixMismatch = errors.New("address: prefix mismatch")
)
