// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

// Package config loads the trade wallet configuration from the command line
// and an optional ini file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	flags "github.com/jessevdk/go-flags"

	"github.com/bitfsorg/libtrade-go/txbuilder"
)

const (
	defaultDataDirname    = ".tradewallet"
	defaultConfigFilename = "tradewallet.conf"
	defaultKeyFilename    = "trade.dat"
	defaultLogDirname     = "logs"
	defaultLogFilename    = "tradewallet.log"
)

// Config holds the wallet settings. Command line options take precedence
// over the config file.
type Config struct {
	ConfigFile  string   `short:"C" long:"configfile" description:"Path to configuration file" no-ini:"true"`
	DataDir     string   `short:"b" long:"datadir" description:"Directory to store data"`
	Network     string   `long:"network" description:"Network to use: mainnet, testnet or regtest"`
	KeyFile     string   `long:"keyfile" description:"Raw 32-byte key file (default: <datadir>/trade.dat)"`
	LogLevel    string   `short:"d" long:"loglevel" description:"Logging level: trace, debug, info, warn, error, critical or off"`
	LogFile     string   `long:"logfile" description:"Log file (default: <datadir>/logs/tradewallet.log)"`
	RPCURL      string   `long:"rpcurl" description:"Node JSON-RPC URL"`
	RPCUser     string   `long:"rpcuser" description:"Node JSON-RPC user"`
	RPCPass     string   `long:"rpcpass" default-mask:"-" description:"Node JSON-RPC password"`
	RPCCookie   string   `long:"rpccookie" description:"Node .cookie file used when no RPC user is set"`
	Peers       []string `long:"peer" description:"Broadcast through this P2P peer; may be repeated"`
	UseDNSSeeds bool     `long:"dnsseeds" description:"Broadcast through peers found via the network's DNS seeds"`
	FeeMargin   uint64   `long:"feemargin" description:"Satoshis added to the size-based fee"`
}

// DefaultDataDir returns ~/.tradewallet, or a relative .tradewallet when
// the home directory is unknown.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return defaultDataDirname
	}
	return filepath.Join(home, defaultDataDirname)
}

// ConfigPath returns the config file path inside dataDir.
func ConfigPath(dataDir string) string {
	return filepath.Join(dataDir, defaultConfigFilename)
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{
		DataDir:   DefaultDataDir(),
		Network:   "mainnet",
		LogLevel:  "info",
		FeeMargin: txbuilder.FeeMargin,
	}
}

// cleanAndExpandPath expands environment variables and a leading ~ in
// path and cleans the result.
func cleanAndExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			path = home + path[1:]
		}
	}
	return filepath.Clean(os.ExpandEnv(path))
}

// Load builds the configuration from defaults, then the config file, then
// args. The config file is ConfigFile if given, which must then exist, or
// ConfigPath(DataDir), which may be absent. It returns the arguments left
// after option parsing. A help request is returned as a *flags.Error of
// type flags.ErrHelp.
func Load(args []string) (Config, []string, error) {
	cfg := DefaultConfig()

	// Pre-parse to find the data directory and config file.
	preCfg := cfg
	preParser := flags.NewParser(&preCfg, flags.HelpFlag|flags.PassDoubleDash)
	if _, err := preParser.ParseArgs(args); err != nil {
		return Config{}, nil, err
	}

	path := cleanAndExpandPath(preCfg.ConfigFile)
	explicit := path != ""
	if !explicit {
		path = ConfigPath(cleanAndExpandPath(preCfg.DataDir))
	}
	if err := parseFile(&cfg, path); err != nil {
		if explicit || !errors.Is(err, ErrConfigNotFound) {
			return Config{}, nil, err
		}
	}

	parser := flags.NewParser(&cfg, flags.HelpFlag|flags.PassDoubleDash)
	remaining, err := parser.ParseArgs(args)
	if err != nil {
		return Config{}, nil, err
	}

	cfg.DataDir = cleanAndExpandPath(cfg.DataDir)
	cfg.KeyFile = cleanAndExpandPath(cfg.KeyFile)
	cfg.LogFile = cleanAndExpandPath(cfg.LogFile)
	cfg.RPCCookie = cleanAndExpandPath(cfg.RPCCookie)
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	if cfg.KeyFile == "" && cfg.DataDir != "" {
		cfg.KeyFile = filepath.Join(cfg.DataDir, defaultKeyFilename)
	}
	if cfg.LogFile == "" && cfg.DataDir != "" {
		cfg.LogFile = filepath.Join(cfg.DataDir, defaultLogDirname, defaultLogFilename)
	}

	if err := ValidateConfig(cfg); err != nil {
		return Config{}, nil, err
	}
	return cfg, remaining, nil
}

// LoadConfig reads the ini file at path over the defaults. Unknown keys
// are ignored.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if err := parseFile(&cfg, path); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func parseFile(cfg *Config, path string) error {
	parser := flags.NewParser(cfg, flags.IgnoreUnknown)
	err := flags.NewIniParser(parser).ParseFile(path)
	if err == nil {
		return nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrConfigNotFound, path)
	}
	var iniErr *flags.IniError
	if errors.As(err, &iniErr) {
		return fmt.Errorf("%w: %s:%d: %s", ErrInvalidConfigLine, path, iniErr.LineNumber, iniErr.Message)
	}
	return fmt.Errorf("config: read %s: %w", path, err)
}

// SaveConfig writes cfg to path in ini form, creating parent directories
// as needed.
func SaveConfig(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("config: create directory: %w", err)
	}
	parser := flags.NewParser(&cfg, flags.None)
	if err := flags.NewIniParser(parser).WriteFile(path, flags.IniIncludeDefaults); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}
