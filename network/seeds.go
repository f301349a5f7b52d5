package network

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/miekg/dns"
)

const (
	// defaultUpstream is used when no resolver is configured and
	// /etc/resolv.conf cannot be read.
	defaultUpstream = "8.8.8.8:53"

	// seedTimeout bounds one DNS exchange.
	seedTimeout = 5 * time.Second
)

// SeedResolver turns DNS seed names into peer addresses.
type SeedResolver struct {
	// Upstream is the resolver address (e.g., "8.8.8.8:53").
	Upstream string
	Timeout  time.Duration
}

// NewSeedResolver returns a resolver querying upstream. An empty upstream
// means the first nameserver of /etc/resolv.conf, or 8.8.8.8:53.
func NewSeedResolver(upstream string) *SeedResolver {
	if upstream == "" {
		upstream = defaultUpstream
		if conf, err := dns.ClientConfigFromFile("/etc/resolv.conf"); err == nil && len(conf.Servers) > 0 {
			upstream = net.JoinHostPort(conf.Servers[0], conf.Port)
		}
	}
	return &SeedResolver{Upstream: upstream, Timeout: seedTimeout}
}

func (r *SeedResolver) query(ctx context.Context, name string, qtype uint16) ([]net.IP, error) {
	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(name), qtype)
	msg.RecursionDesired = true

	client := &dns.Client{Timeout: r.Timeout}
	resp, _, err := client.ExchangeContext(ctx, msg, r.Upstream)
	if err != nil {
		return nil, fmt.Errorf("%w: query %s %s: %w",
			ErrSeedLookup, name, dns.TypeToString[qtype], err)
	}
	if resp.Rcode != dns.RcodeSuccess && resp.Rcode != dns.RcodeNameError {
		return nil, fmt.Errorf("%w: query %s %s: rcode %s",
			ErrSeedLookup, name, dns.TypeToString[qtype], dns.RcodeToString[resp.Rcode])
	}

	var ips []net.IP
	for _, rr := range resp.Answer {
		switch rec := rr.(type) {
		case *dns.A:
			ips = append(ips, rec.A)
		case *dns.AAAA:
			ips = append(ips, rec.AAAA)
		}
	}
	return ips, nil
}

// Resolve returns host:port for every A and AAAA record of seed.
func (r *SeedResolver) Resolve(ctx context.Context, seed string, port uint16) ([]string, error) {
	var addrs []string
	for _, qtype := range []uint16{dns.TypeA, dns.TypeAAAA} {
		ips, err := r.query(ctx, seed, qtype)
		if err != nil {
			return nil, err
		}
		for _, ip := range ips {
			addrs = append(addrs, net.JoinHostPort(ip.String(), strconv.Itoa(int(port))))
		}
	}
	if len(addrs) == 0 {
		return nil, fmt.Errorf("%w: no address records for %s", ErrSeedLookup, seed)
	}
	log.Debugf("Seed %s returned %d addresses", seed, len(addrs))
	return addrs, nil
}

// ResolveAll resolves every seed and concatenates the results. A failing
// seed is skipped; it is an error only when no seed yields an address.
func (r *SeedResolver) ResolveAll(ctx context.Context, seeds []string, port uint16) ([]string, error) {
	var addrs []string
	for _, seed := range seeds {
		got, err := r.Resolve(ctx, seed, port)
		if err != nil {
			log.Warnf("Seed %s: %v", seed, err)
			continue
		}
		addrs = append(addrs, got...)
	}
	if len(addrs) == 0 {
		return nil, ErrNoPeers
	}
	return addrs, nil
}

// WithDefaultPort appends port to addr when it has none.
func WithDefaultPort(addr string, port uint16) string {
	if _, _, err := net.SplitHostPort(addr); err == nil {
		return addr
	}
	return net.JoinHostPort(addr, strconv.Itoa(int(port)))
}
