// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"strings"
	"testing"

	flags "github.com/jessevdk/go-flags"
)

// ---------------------------------------------------------------------------
// DefaultConfig tests
// ---------------------------------------------------------------------------

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name string
		got  interface{}
		want interface{}
	}{
		{"Network", cfg.Network, "mainnet"},
		{"LogLevel", cfg.LogLevel, "info"},
		{"LogFile", cfg.LogFile, ""},
		{"KeyFile", cfg.KeyFile, ""},
		{"FeeMargin", cfg.FeeMargin, uint64(5)},
		{"UseDNSSeeds", cfg.UseDNSSeeds, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.got != tc.want {
				t.Errorf("got %v, want %v", tc.got, tc.want)
			}
		})
	}

	if !strings.HasSuffix(cfg.DataDir, ".tradewallet") {
		t.Errorf("DataDir = %q, want suffix .tradewallet", cfg.DataDir)
	}
}

// ---------------------------------------------------------------------------
// Load tests
// ---------------------------------------------------------------------------

func TestLoadDefaultsUnderDataDir(t *testing.T) {
	dir := t.TempDir()

	cfg, remaining, err := Load([]string{"--datadir", dir, "extra"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DataDir != dir {
		t.Errorf("DataDir = %q, want %q", cfg.DataDir, dir)
	}
	if want := filepath.Join(dir, "trade.dat"); cfg.KeyFile != want {
		t.Errorf("KeyFile = %q, want %q", cfg.KeyFile, want)
	}
	if want := filepath.Join(dir, "logs", "tradewallet.log"); cfg.LogFile != want {
		t.Errorf("LogFile = %q, want %q", cfg.LogFile, want)
	}
	if !reflect.DeepEqual(remaining, []string{"extra"}) {
		t.Errorf("remaining = %v, want [extra]", remaining)
	}
}

func TestLoadConfigFileThenArgs(t *testing.T) {
	dir := t.TempDir()
	content := `network = testnet
loglevel = debug
rpcurl = http://127.0.0.1:18332
peer = 10.0.0.1
peer = 10.0.0.2:18333
dnsseeds = true
feemargin = 20
rpccookie = $TRADEWALLET_TEST_NODE/.cookie
`
	if err := os.WriteFile(ConfigPath(dir), []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("TRADEWALLET_TEST_NODE", "/srv/bchn")
	cfg, _, err := Load([]string{"-b", dir, "--network", "regtest"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Network != "regtest" {
		t.Errorf("Network = %q, want command line value %q", cfg.Network, "regtest")
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "debug")
	}
	if cfg.RPCURL != "http://127.0.0.1:18332" {
		t.Errorf("RPCURL = %q", cfg.RPCURL)
	}
	if !reflect.DeepEqual(cfg.Peers, []string{"10.0.0.1", "10.0.0.2:18333"}) {
		t.Errorf("Peers = %v", cfg.Peers)
	}
	if !cfg.UseDNSSeeds {
		t.Error("UseDNSSeeds should be set from the config file")
	}
	if cfg.FeeMargin != 20 {
		t.Errorf("FeeMargin = %d, want 20", cfg.FeeMargin)
	}
	if want := filepath.Clean("/srv/bchn/.cookie"); cfg.RPCCookie != want {
		t.Errorf("RPCCookie = %q, want %q", cfg.RPCCookie, want)
	}
}

func TestLoadExplicitConfigFileMissing(t *testing.T) {
	dir := t.TempDir()
	_, _, err := Load([]string{"-b", dir, "-C", filepath.Join(dir, "nope.conf")})
	if !errors.Is(err, ErrConfigNotFound) {
		t.Errorf("Load with missing -C: got %v, want ErrConfigNotFound", err)
	}
}

func TestLoadInvalid(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		args    []string
		wantErr error
	}{
		{"bad_network", []string{"-b", dir, "--network", "devnet"}, ErrInvalidNetwork},
		{"bad_loglevel", []string{"-b", dir, "-d", "verbose"}, ErrInvalidLogLevel},
		{"bad_peer", []string{"-b", dir, "--peer", "10.0.0.1:notaport"}, ErrInvalidPeerAddr},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := Load(tc.args)
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("Load: got %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestLoadHelpAndUnknownFlag(t *testing.T) {
	_, _, err := Load([]string{"-h"})
	var flagErr *flags.Error
	if !errors.As(err, &flagErr) || flagErr.Type != flags.ErrHelp {
		t.Errorf("Load -h: got %v, want flags.ErrHelp", err)
	}

	if _, _, err := Load([]string{"--no-such-flag"}); err == nil {
		t.Error("Load with unknown flag: expected error")
	}
}

// ---------------------------------------------------------------------------
// SaveConfig / LoadConfig round-trip tests
// ---------------------------------------------------------------------------

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "tradewallet.conf")

	original := Config{
		DataDir:     "/tmp/test-tradewallet",
		Network:     "testnet",
		KeyFile:     "/tmp/test-tradewallet/key.dat",
		LogLevel:    "debug",
		LogFile:     "/tmp/tradewallet.log",
		RPCURL:      "http://localhost:18332",
		RPCUser:     "alice",
		RPCPass:     "secret",
		Peers:       []string{"10.0.0.1:18333"},
		UseDNSSeeds: true,
		FeeMargin:   9,
	}

	if err := SaveConfig(path, original); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if !reflect.DeepEqual(loaded, original) {
		t.Errorf("round trip mismatch:\n got  %+v\n want %+v", loaded, original)
	}
}

// ---------------------------------------------------------------------------
// LoadConfig error tests
// ---------------------------------------------------------------------------

func TestLoadConfigNotFound(t *testing.T) {
	_, err := LoadConfig("/nonexistent/path/tradewallet.conf")
	if !errors.Is(err, ErrConfigNotFound) {
		t.Errorf("LoadConfig nonexistent: got %v, want ErrConfigNotFound", err)
	}
}

func TestLoadConfigInvalidLine(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tradewallet.conf")

	if err := os.WriteFile(path, []byte("this-is-not-key-value\n"), 0600); err != nil {
		t.Fatal(err)
	}

	_, err := LoadConfig(path)
	if !errors.Is(err, ErrInvalidConfigLine) {
		t.Errorf("LoadConfig bad line: got %v, want ErrInvalidConfigLine", err)
	}
}

func TestLoadConfigCommentsAndUnknownKeys(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tradewallet.conf")

	content := `; A comment
network = testnet

futurekey = futurevalue
loglevel = warn
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Network != "testnet" {
		t.Errorf("Network = %q, want %q", cfg.Network, "testnet")
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "warn")
	}
	// Unset fields keep their defaults.
	if cfg.FeeMargin != 5 {
		t.Errorf("FeeMargin = %d, want default 5", cfg.FeeMargin)
	}
}

func TestLoadConfig_PermissionDenied(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission test not reliable on Windows")
	}
	if os.Getuid() == 0 {
		t.Skip("cannot test permission denial as root")
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "tradewallet.conf")

	if err := os.WriteFile(path, []byte("network=testnet\n"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := os.Chmod(path, 0000); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chmod(path, 0600) })

	_, err := LoadConfig(path)
	if err == nil {
		t.Fatal("LoadConfig on unreadable file: expected error, got nil")
	}
	if errors.Is(err, ErrConfigNotFound) {
		t.Error("LoadConfig on unreadable file should not return ErrConfigNotFound")
	}
}

// ---------------------------------------------------------------------------
// ValidateConfig tests
// ---------------------------------------------------------------------------

func TestValidateConfigDefaults(t *testing.T) {
	if err := ValidateConfig(DefaultConfig()); err != nil {
		t.Errorf("ValidateConfig(DefaultConfig()) = %v, want nil", err)
	}
}

func TestValidateConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr error
	}{
		{
			name:    "empty_datadir",
			modify:  func(c *Config) { c.DataDir = "" },
			wantErr: ErrEmptyDataDir,
		},
		{
			name:    "bad_network",
			modify:  func(c *Config) { c.Network = "devnet" },
			wantErr: ErrInvalidNetwork,
		},
		{
			name:    "empty_network",
			modify:  func(c *Config) { c.Network = "" },
			wantErr: ErrInvalidNetwork,
		},
		{
			name:    "bad_loglevel",
			modify:  func(c *Config) { c.LogLevel = "verbose" },
			wantErr: ErrInvalidLogLevel,
		},
		{
			name:    "empty_peer",
			modify:  func(c *Config) { c.Peers = []string{""} },
			wantErr: ErrInvalidPeerAddr,
		},
		{
			name:    "peer_port_range",
			modify:  func(c *Config) { c.Peers = []string{"10.0.0.1:70000"} },
			wantErr: ErrInvalidPeerAddr,
		},
		{
			name:    "peer_no_host",
			modify:  func(c *Config) { c.Peers = []string{":8333"} },
			wantErr: ErrInvalidPeerAddr,
		},
		{
			name:    "rpc_scheme",
			modify:  func(c *Config) { c.RPCURL = "ftp://localhost:8332" },
			wantErr: ErrInvalidRPCURL,
		},
		{
			name:    "rpc_no_host",
			modify:  func(c *Config) { c.RPCURL = "localhost:8332" },
			wantErr: ErrInvalidRPCURL,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.modify(&cfg)
			err := ValidateConfig(cfg)
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("ValidateConfig: got %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestValidateConfigValidPeers(t *testing.T) {
	peers := []string{
		"127.0.0.1",
		"127.0.0.1:8333",
		"node.example",
		"node.example:18444",
		"[::1]:8333",
		"::1",
	}
	for _, peer := range peers {
		t.Run(peer, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Peers = []string{peer}
			if err := ValidateConfig(cfg); err != nil {
				t.Errorf("ValidateConfig with peer %q: %v", peer, err)
			}
		})
	}
}

func TestValidateConfig_LogLevelCaseInsensitive(t *testing.T) {
	for _, level := range []string{"INFO", "Debug", "WARN", "Error", "trace", "off"} {
		t.Run(level, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.LogLevel = level
			if err := ValidateConfig(cfg); err != nil {
				t.Errorf("ValidateConfig with LogLevel %q: %v", level, err)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Path helpers
// ---------------------------------------------------------------------------

func TestConfigPath(t *testing.T) {
	got := ConfigPath("/home/user/.tradewallet/")
	want := filepath.Join("/home/user/.tradewallet", "tradewallet.conf")
	if got != want {
		t.Errorf("ConfigPath = %q, want %q", got, want)
	}
}

func TestCleanAndExpandPath(t *testing.T) {
	t.Setenv("TRADEWALLET_TEST_DIR", "/srv/trade")
	if got := cleanAndExpandPath("$TRADEWALLET_TEST_DIR/./data/"); got != "/srv/trade/data" {
		t.Errorf("cleanAndExpandPath = %q, want %q", got, "/srv/trade/data")
	}
	if got := cleanAndExpandPath(""); got != "" {
		t.Errorf("cleanAndExpandPath(\"\") = %q, want empty", got)
	}
	home, err := os.UserHomeDir()
	if err == nil {
		if got := cleanAndExpandPath("~/x"); got != filepath.Join(home, "x") {
			t.Errorf("cleanAndExpandPath(~/x) = %q", got)
		}
	}
}
