package wallet

import "errors"

var (
	// ErrInvalidMnemonic indicates the mnemonic fails BIP39 validation.
	ErrInvalidMnemonic = errors.New("wallet: invalid BIP39 mnemonic")

	// ErrInvalidKey indicates a secret that is not a valid secp256k1
	// private key.
	ErrInvalidKey = errors.New("wallet: invalid private key")

	// ErrInvalidKeyFile indicates a key file of the wrong size.
	ErrInvalidKeyFile = errors.New("wallet: invalid key file")

	// ErrDecryptionFailed indicates wrong password or corrupted key data.
	ErrDecryptionFailed = errors.New("wallet: key decryption failed (wrong password or corrupted data)")

	// ErrChecksumMismatch indicates key checksum verification failed after decryption.
	ErrChecksumMismatch = errors.New("wallet: key checksum mismatch")

	// ErrInvalidNetwork indicates unknown network name with no custom config.
	ErrInvalidNetwork = errors.New("wallet: invalid network name")

	// ErrDerivationFailed indicates BIP32 key derivation failed.
	ErrDerivationFailed = errors.New("wallet: key derivation failed")

	// ErrInvalidOfferID indicates an offer id too short to select a trade key.
	ErrInvalidOfferID = errors.New("wallet: invalid offer id")

	// ErrDustAmount indicates a send amount below the network dust amount.
	ErrDustAmount = errors.New("wallet: amount below dust")

	// ErrClosed indicates use of a wallet after Close.
	ErrClosed = errors.New("wallet: closed")
)
