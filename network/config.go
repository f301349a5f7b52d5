package network

import (
	"bytes"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
)

// RPCConfig says how to reach a node's JSON-RPC interface. When User is
// empty and CookieFile is set, credentials come from the node's cookie.
type RPCConfig struct {
	URL        string `json:"url"`
	User       string `json:"user"`
	Password   string `json:"password"`
	CookieFile string `json:"cookie_file"`
	Network    string `json:"network"`
}

// Environment variables consulted by ResolveConfig.
const (
	EnvRPCURL    = "TRADEWALLET_RPC_URL"
	EnvRPCUser   = "TRADEWALLET_RPC_USER"
	EnvRPCPass   = "TRADEWALLET_RPC_PASS"
	EnvRPCCookie = "TRADEWALLET_RPC_COOKIE"
)

// Local test nodes are assumed to listen on the default RPC port with
// rpcuser=trade and rpcpassword=trade. Mainnet has no preset so a wallet
// holding real coins never talks to a node it was not pointed at.
const presetCredential = "trade"

var presetRPCPorts = map[string]int{
	"testnet": 18332,
	"regtest": 18443,
}

// PresetRPCConfig returns the local node preset for network.
func PresetRPCConfig(network string) (RPCConfig, bool) {
	port, ok := presetRPCPorts[network]
	if !ok {
		return RPCConfig{}, false
	}
	return RPCConfig{
		URL:      "http://" + net.JoinHostPort("localhost", strconv.Itoa(port)),
		User:     presetCredential,
		Password: presetCredential,
		Network:  network,
	}, true
}

// EnvFromOS collects the RPC environment variables that are set.
func EnvFromOS() map[string]string {
	env := make(map[string]string)
	for _, k := range []string{EnvRPCURL, EnvRPCUser, EnvRPCPass, EnvRPCCookie} {
		if v := os.Getenv(k); v != "" {
			env[k] = v
		}
	}
	return env
}

// ResolveConfig layers flags over env over the network preset, then reads
// the cookie file when no user was given. The result must name an http or
// https URL with a host.
func ResolveConfig(flags *RPCConfig, env map[string]string, network string) (*RPCConfig, error) {
	cfg, _ := PresetRPCConfig(network)
	cfg.Network = network

	override := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	override(&cfg.URL, env[EnvRPCURL])
	override(&cfg.User, env[EnvRPCUser])
	override(&cfg.Password, env[EnvRPCPass])
	override(&cfg.CookieFile, env[EnvRPCCookie])
	if flags != nil {
		override(&cfg.URL, flags.URL)
		override(&cfg.User, flags.User)
		override(&cfg.Password, flags.Password)
		override(&cfg.CookieFile, flags.CookieFile)
		// An explicit cookie replaces preset credentials.
		if flags.CookieFile != "" && flags.User == "" {
			cfg.User, cfg.Password = "", ""
		}
	}

	if cfg.URL == "" {
		return nil, fmt.Errorf("%w: %s has no default node; set --rpcurl or %s",
			ErrInvalidConfig, network, EnvRPCURL)
	}
	u, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: RPC URL %q", ErrInvalidConfig, cfg.URL)
	}

	if cfg.User == "" && cfg.CookieFile != "" {
		cfg.User, cfg.Password, err = ReadCookie(cfg.CookieFile)
		if err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}

// ReadCookie reads the user:password pair a node writes to its .cookie
// file on startup.
func ReadCookie(path string) (user, pass string, err error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("%w: %w", ErrAuthFailed, err)
	}
	line, _, _ := bytes.Cut(b, []byte("\n"))
	user, pass, ok := strings.Cut(strings.TrimSpace(string(line)), ":")
	if !ok || user == "" {
		return "", "", fmt.Errorf("%w: malformed cookie file %s", ErrAuthFailed, path)
	}
	return user, pass, nil
}
