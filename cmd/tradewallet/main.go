// Command tradewallet is an interactive Bitcoin Cash wallet that can lock
// coins into hash-locked trade contracts.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	flags "github.com/jessevdk/go-flags"

	"github.com/bitfsorg/libtrade-go/config"
	"github.com/bitfsorg/libtrade-go/logging"
	"github.com/bitfsorg/libtrade-go/network"
	"github.com/bitfsorg/libtrade-go/store"
	"github.com/bitfsorg/libtrade-go/wallet"
)

const peerTimeout = 30 * time.Second

var log = logging.Main()

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	cfg, _, err := config.Load(args)
	if err != nil {
		var flagErr *flags.Error
		if errors.As(err, &flagErr) && flagErr.Type == flags.ErrHelp {
			fmt.Fprintln(stdout, err)
			return nil
		}
		return err
	}

	logging.SetConsole(os.Stderr)
	if err := logging.InitLogRotator(cfg.LogFile); err != nil {
		return err
	}
	defer logging.Close()
	if err := logging.SetLogLevels(cfg.LogLevel); err != nil {
		return err
	}

	params, err := wallet.GetNetwork(cfg.Network)
	if err != nil {
		return err
	}

	in := bufio.NewReader(stdin)
	secret, err := ensureKey(cfg.KeyFile, in, stdout)
	if err != nil {
		return err
	}

	st, err := store.Open(filepath.Join(cfg.DataDir, params.Name, "wallet.db"))
	if err != nil {
		clear(secret)
		return err
	}
	defer st.Close()

	rpcCfg, err := network.ResolveConfig(&network.RPCConfig{
		URL:        cfg.RPCURL,
		User:       cfg.RPCUser,
		Password:   cfg.RPCPass,
		CookieFile: cfg.RPCCookie,
	}, network.EnvFromOS(), params.Name)
	if err != nil {
		clear(secret)
		return err
	}
	chain := network.NewChain(network.NewRPCClient(*rpcCfg))

	ctx := context.Background()
	bcast := broadcaster(ctx, cfg, params, chain)

	w, err := wallet.New(secret, params, &cachedSource{node: chain, cache: st}, bcast)
	clear(secret)
	if err != nil {
		return err
	}
	defer w.Close()
	w.SetJournal(st)
	w.SetFeeMargin(cfg.FeeMargin)

	if err := chain.Watch(ctx, w.Address()); err != nil {
		log.Warnf("Node cannot watch %s: %v", w.Address().CashAddr(), err)
	}

	a := &app{in: in, out: stdout, wallet: w, chain: chain}
	return a.menu(ctx)
}

// ensureKey loads the key file, offering to create it when it is missing.
func ensureKey(path string, in *bufio.Reader, out io.Writer) ([]byte, error) {
	secret, err := wallet.LoadKey(path)
	if err == nil {
		return secret, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	fmt.Fprintf(out, "There's currently no wallet created. Press ENTER to create one at %s "+
		"or enter the path to the wallet file: ", path)
	answer, err := readLine(in)
	if err != nil {
		return nil, err
	}
	if answer != "" {
		path = answer
	}
	secret, created, err := wallet.LoadOrCreateKey(path)
	if err != nil {
		return nil, err
	}
	if created {
		fmt.Fprintf(out, "Created a new wallet at %s. Back it up with option 5.\n", path)
	}
	return secret, nil
}

// broadcaster relays through P2P peers when any are configured or found
// via DNS seeds, and through the node's RPC otherwise.
func broadcaster(ctx context.Context, cfg config.Config, params *wallet.NetworkParams, chain *network.Chain) wallet.Broadcaster {
	var addrs []string
	for _, p := range cfg.Peers {
		addrs = append(addrs, network.WithDefaultPort(p, params.DefaultPort))
	}
	if cfg.UseDNSSeeds && len(params.DNSSeeds) > 0 {
		seeded, err := network.NewSeedResolver("").ResolveAll(ctx, params.DNSSeeds, params.DefaultPort)
		if err != nil {
			log.Warnf("DNS seeds: %v", err)
		}
		addrs = append(addrs, seeded...)
	}
	if len(addrs) == 0 {
		return chain
	}

	var height int32
	if tip, err := chain.TipHeight(ctx); err == nil {
		height = int32(tip)
	}
	log.Infof("Broadcasting through %d peers", len(addrs))
	return &network.PeerBroadcaster{
		Addrs: addrs,
		Cfg:   params.PeerConfig(height, peerTimeout),
	}
}

func readLine(in *bufio.Reader) (string, error) {
	line, err := in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
