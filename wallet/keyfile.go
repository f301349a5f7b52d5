package wallet

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io/fs"
	"math/big"
	"os"
	"path/filepath"

	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
)

const (
	// KeyFileName is the default name of the raw key file.
	KeyFileName = "trade.dat"

	// SecretLen is the size of the wallet secret.
	SecretLen = 32
)

// checkSecret reports whether secret is a usable secp256k1 scalar.
func checkSecret(secret []byte) error {
	if len(secret) != SecretLen {
		return fmt.Errorf("%w: %d bytes", ErrInvalidKey, len(secret))
	}
	d := new(big.Int).SetBytes(secret)
	if d.Sign() == 0 || d.Cmp(ec.S256().Params().N) >= 0 {
		return fmt.Errorf("%w: out of range", ErrInvalidKey)
	}
	return nil
}

// NewSecret returns a fresh random wallet secret.
func NewSecret() ([]byte, error) {
	secret := make([]byte, SecretLen)
	for {
		if _, err := rand.Read(secret); err != nil {
			return nil, fmt.Errorf("wallet: failed to generate key: %w", err)
		}
		if checkSecret(secret) == nil {
			return secret, nil
		}
	}
}

// LoadKey reads a raw 32-byte key file.
func LoadKey(path string) ([]byte, error) {
	secret, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(secret) != SecretLen {
		clear(secret)
		return nil, fmt.Errorf("%w: %s holds %d bytes, want %d",
			ErrInvalidKeyFile, path, len(secret), SecretLen)
	}
	if err := checkSecret(secret); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidKeyFile, path, err)
	}
	return secret, nil
}

// SaveKey writes secret to path, readable by the owner only. An existing
// file is never overwritten.
func SaveKey(path string, secret []byte) error {
	if err := checkSecret(secret); err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("wallet: create key dir: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return fmt.Errorf("wallet: create key file: %w", err)
	}
	if _, err := f.Write(secret); err != nil {
		_ = f.Close()
		return fmt.Errorf("wallet: write key file: %w", err)
	}
	return f.Close()
}

// LoadOrCreateKey loads the key file at path, creating it with a fresh
// secret when it does not exist. created reports which happened.
func LoadOrCreateKey(path string) (secret []byte, created bool, err error) {
	secret, err = LoadKey(path)
	if err == nil {
		return secret, false, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, false, err
	}

	if secret, err = NewSecret(); err != nil {
		return nil, false, err
	}
	if err := SaveKey(path, secret); err != nil {
		clear(secret)
		return nil, false, err
	}
	log.Infof("Created new key file %s", path)
	return secret, true, nil
}
