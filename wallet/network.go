package wallet

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/bitfsorg/libtrade-go/address"
	"github.com/bitfsorg/libtrade-go/network"
	"github.com/bitfsorg/libtrade-go/tx"
)

// NetworkParams defines the parameters of one Bitcoin Cash network.
type NetworkParams struct {
	Name           string        `json:"name"`
	CashAddrPrefix string        `json:"cashaddr_prefix"`
	AddressVersion byte          `json:"address_version"`
	P2SHVersion    byte          `json:"p2sh_version"`
	Magic          network.Magic `json:"magic"`
	DefaultPort    uint16        `json:"default_port"`
	RPCPort        uint16        `json:"rpc_port"`
	DNSSeeds       []string      `json:"seeds"`
	GenesisHash    string        `json:"genesis_hash"`
	Dust           uint64        `json:"dust"`
}

// Predefined networks.
var (
	MainNet = NetworkParams{
		Name:           "mainnet",
		CashAddrPrefix: address.MainnetPrefix,
		AddressVersion: 0x00,
		P2SHVersion:    0x05,
		Magic:          network.Magic{0xe3, 0xe1, 0xf3, 0xe8},
		DefaultPort:    8333,
		RPCPort:        8332,
		DNSSeeds: []string{
			"seed.bchd.cash",
			"seed.flowee.cash",
			"btccash-seeder.bitcoinunlimited.info",
			"seed-bch.bitcoinforks.org",
		},
		GenesisHash: "000000000019d6689c085ae165831e934ff763ae46a2a6c172b3f1b60a8ce26f",
		Dust:        tx.DustThreshold,
	}

	TestNet = NetworkParams{
		Name:           "testnet",
		CashAddrPrefix: address.TestnetPrefix,
		AddressVersion: 0x6f,
		P2SHVersion:    0xc4,
		Magic:          network.Magic{0xf4, 0xe5, 0xf3, 0xf4},
		DefaultPort:    18333,
		RPCPort:        18332,
		DNSSeeds: []string{
			"testnet-seed.bchd.cash",
			"testnet-seed-bch.bitcoinforks.org",
		},
		GenesisHash: "000000000933ea01ad0ee984209779baaec3ced90fa3f408719526f8d77f4943",
		Dust:        tx.DustThreshold,
	}

	RegTest = NetworkParams{
		Name:           "regtest",
		CashAddrPrefix: address.RegtestPrefix,
		AddressVersion: 0x6f,
		P2SHVersion:    0xc4,
		Magic:          network.Magic{0xda, 0xb5, 0xbf, 0xfa},
		DefaultPort:    18444,
		RPCPort:        18443,
		DNSSeeds:       nil,
		GenesisHash:    "0f9188f13cb7b2c71f2a335e3a4fc328bf5beb436012afca590b1a11466e2206",
		Dust:           tx.DustThreshold,
	}
)

// predefined maps network names to their params.
var predefined = map[string]*NetworkParams{
	"mainnet": &MainNet,
	"testnet": &TestNet,
	"regtest": &RegTest,
}

// GetNetwork returns a predefined network by name.
// If the name is not predefined, it returns ErrInvalidNetwork.
func GetNetwork(name string) (*NetworkParams, error) {
	if p, ok := predefined[name]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrInvalidNetwork, name)
}

// LoadCustomNetwork loads NetworkParams from a JSON file. A missing dust
// amount defaults to tx.DustThreshold.
func LoadCustomNetwork(path string) (*NetworkParams, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("wallet: failed to read network config: %w", err)
	}

	var params NetworkParams
	if err := json.Unmarshal(data, &params); err != nil {
		return nil, fmt.Errorf("wallet: failed to parse network config: %w", err)
	}

	if params.Name == "" {
		return nil, fmt.Errorf("%w: network config must have a name", ErrInvalidNetwork)
	}
	if params.CashAddrPrefix == "" {
		return nil, fmt.Errorf("%w: network %q has no cashaddr prefix", ErrInvalidNetwork, params.Name)
	}
	if params.Dust == 0 {
		params.Dust = tx.DustThreshold
	}

	return &params, nil
}

// PeerConfig returns the P2P settings for the network.
func (p *NetworkParams) PeerConfig(startHeight int32, timeout time.Duration) network.PeerConfig {
	return network.PeerConfig{
		Magic:       p.Magic,
		StartHeight: startHeight,
		Timeout:     timeout,
	}
}
