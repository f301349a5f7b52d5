// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

package config

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
)

// validLogLevels lists the accepted log level strings.
var validLogLevels = map[string]bool{
	"trace":    true,
	"debug":    true,
	"info":     true,
	"warn":     true,
	"error":    true,
	"critical": true,
	"off":      true,
}

// ValidateConfig checks that all configuration values are within acceptable
// ranges and returns the first error encountered, or nil if valid.
func ValidateConfig(cfg Config) error {
	if cfg.DataDir == "" {
		return ErrEmptyDataDir
	}

	if cfg.Network != "mainnet" && cfg.Network != "testnet" && cfg.Network != "regtest" {
		return ErrInvalidNetwork
	}

	if !validLogLevels[strings.ToLower(cfg.LogLevel)] {
		return ErrInvalidLogLevel
	}

	for _, peer := range cfg.Peers {
		if err := validatePeer(peer); err != nil {
			return fmt.Errorf("%w: %q: %w", ErrInvalidPeerAddr, peer, err)
		}
	}

	if cfg.RPCURL != "" {
		u, err := url.Parse(cfg.RPCURL)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidRPCURL, err)
		}
		if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%w: %q", ErrInvalidRPCURL, cfg.RPCURL)
		}
	}

	return nil
}

// validatePeer accepts host, host:port, or a bare IPv6 address.
func validatePeer(addr string) error {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		if net.ParseIP(addr) != nil {
			return nil
		}
		if strings.Contains(addr, ":") {
			return err
		}
		host = addr
	} else if _, err := strconv.ParseUint(port, 10, 16); err != nil {
		return fmt.Errorf("port %q", port)
	}
	if host == "" || strings.ContainsAny(host, " \t/") {
		return fmt.Errorf("host %q", host)
	}
	return nil
}
