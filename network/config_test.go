package network

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCookie(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".cookie")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestPresetRPCConfig(t *testing.T) {
	tests := []struct {
		network string
		url     string
		ok      bool
	}{
		{"regtest", "http://localhost:18443", true},
		{"testnet", "http://localhost:18332", true},
		{"mainnet", "", false},
		{"unknown", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.network, func(t *testing.T) {
			cfg, ok := PresetRPCConfig(tt.network)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.url, cfg.URL)
			if ok {
				assert.Equal(t, "trade", cfg.User)
				assert.Equal(t, tt.network, cfg.Network)
			}
		})
	}
}

func TestResolveConfigLayers(t *testing.T) {
	env := map[string]string{
		EnvRPCURL:  "http://env-node:18443",
		EnvRPCUser: "envuser",
	}

	t.Run("preset only", func(t *testing.T) {
		cfg, err := ResolveConfig(nil, nil, "regtest")
		require.NoError(t, err)
		assert.Equal(t, &RPCConfig{URL: "http://localhost:18443", User: "trade",
			Password: "trade", Network: "regtest"}, cfg)
	})

	t.Run("env over preset", func(t *testing.T) {
		cfg, err := ResolveConfig(nil, env, "regtest")
		require.NoError(t, err)
		assert.Equal(t, "http://env-node:18443", cfg.URL)
		assert.Equal(t, "envuser", cfg.User)
		assert.Equal(t, "trade", cfg.Password)
	})

	t.Run("flags over env", func(t *testing.T) {
		flags := &RPCConfig{URL: "https://custom:9999", Password: "secret"}
		cfg, err := ResolveConfig(flags, env, "regtest")
		require.NoError(t, err)
		assert.Equal(t, "https://custom:9999", cfg.URL)
		assert.Equal(t, "envuser", cfg.User)
		assert.Equal(t, "secret", cfg.Password)
	})
}

func TestResolveConfigMainnet(t *testing.T) {
	_, err := ResolveConfig(nil, nil, "mainnet")
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), "mainnet")

	cfg, err := ResolveConfig(&RPCConfig{URL: "http://node:8332", User: "u", Password: "p"}, nil, "mainnet")
	require.NoError(t, err)
	assert.Equal(t, "mainnet", cfg.Network)
}

func TestResolveConfigBadURL(t *testing.T) {
	for _, u := range []string{"node:8332", "ftp://node:8332", "http://", "http://[::1"} {
		t.Run(u, func(t *testing.T) {
			_, err := ResolveConfig(&RPCConfig{URL: u}, nil, "regtest")
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestResolveConfigCookie(t *testing.T) {
	path := writeCookie(t, "__cookie__:4b1d2f\n")

	t.Run("flag replaces preset credentials", func(t *testing.T) {
		cfg, err := ResolveConfig(&RPCConfig{CookieFile: path}, nil, "regtest")
		require.NoError(t, err)
		assert.Equal(t, "__cookie__", cfg.User)
		assert.Equal(t, "4b1d2f", cfg.Password)
	})

	t.Run("env cookie with explicit url", func(t *testing.T) {
		env := map[string]string{EnvRPCCookie: path}
		cfg, err := ResolveConfig(&RPCConfig{URL: "http://node:8332"}, env, "mainnet")
		require.NoError(t, err)
		assert.Equal(t, "__cookie__", cfg.User)
	})

	t.Run("explicit user wins", func(t *testing.T) {
		cfg, err := ResolveConfig(&RPCConfig{User: "me", Password: "pw", CookieFile: path}, nil, "regtest")
		require.NoError(t, err)
		assert.Equal(t, "me", cfg.User)
		assert.Equal(t, "pw", cfg.Password)
	})

	t.Run("missing cookie", func(t *testing.T) {
		_, err := ResolveConfig(&RPCConfig{CookieFile: filepath.Join(t.TempDir(), "none")}, nil, "regtest")
		assert.ErrorIs(t, err, ErrAuthFailed)
	})
}

func TestReadCookie(t *testing.T) {
	user, pass, err := ReadCookie(writeCookie(t, "__cookie__:a:b"))
	require.NoError(t, err)
	assert.Equal(t, "__cookie__", user)
	assert.Equal(t, "a:b", pass)

	for _, bad := range []string{"", "nocolon", ":pass"} {
		_, _, err := ReadCookie(writeCookie(t, bad))
		assert.ErrorIs(t, err, ErrAuthFailed, "cookie %q", bad)
	}
}

func TestEnvFromOS(t *testing.T) {
	t.Setenv(EnvRPCURL, "http://from-env:18443")
	t.Setenv(EnvRPCUser, "")
	env := EnvFromOS()
	assert.Equal(t, "http://from-env:18443", env[EnvRPCURL])
	_, ok := env[EnvRPCUser]
	assert.False(t, ok)
}
