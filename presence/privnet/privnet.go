// Package privnet decides whether a host name points into a private,
// loopback or link-local network.
package privnet

import (
	"context"
	"net"

	"golang.org/x/xerrors"
)

var defaultPrivateCIDRs = []string{
	// Loopback
	"127.0.0.0/8",
	"::1/128",
	// RFC1918
	"10.0.0.0/8",
	"172.16.0.0/12",
	"192.168.0.0/16",
	// Carrier-grade NAT
	"100.64.0.0/10",
	// Link-local
	"169.254.0.0/16",
	"fe80::/10",
	// Misc
	"0.0.0.0/8",
	"255.255.255.255/32",
	"fc00::/7",
}

// Resolver looks up the addresses of a host.
type Resolver interface {
	LookupIPAddr(ctx context.Context, host string) ([]net.IPAddr, error)
}

// Detector checks host names against a list of private CIDR blocks.
type Detector struct {
	blocks   []*net.IPNet
	resolver Resolver
}

// NewDetector returns a Detector for the default private ranges that resolves
// names with net.DefaultResolver.
func NewDetector() (*Detector, error) {
	return NewDetectorFromCIDRs(net.DefaultResolver, defaultPrivateCIDRs...)
}

// NewDetectorFromCIDRs returns a Detector for the given CIDR blocks.
func NewDetectorFromCIDRs(resolver Resolver, cidrs ...string) (*Detector, error) {
	blocks := make([]*net.IPNet, len(cidrs))
	for i, cidr := range cidrs {
		_, block, err := net.ParseCIDR(cidr)
		if err != nil {
			return nil, xerrors.Errorf("privnet: invalid CIDR %q: %w", cidr, err)
		}
		blocks[i] = block
	}
	return &Detector{blocks: blocks, resolver: resolver}, nil
}

// IsPrivate reports whether host, an IP literal or a name with an optional
// port, resolves to at least one private address.
func (d *Detector) IsPrivate(ctx context.Context, host string) (bool, error) {
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	if ip := net.ParseIP(host); ip != nil {
		return d.contains(ip), nil
	}

	addrs, err := d.resolver.LookupIPAddr(ctx, host)
	if err != nil {
		return false, xerrors.Errorf("privnet: resolve %q: %w", host, err)
	}
	for _, addr := range addrs {
		if d.contains(addr.IP) {
			return true, nil
		}
	}
	return false, nil
}

func (d *Detector) contains(ip net.IP) bool {
	for _, blk := range d.blocks {
		if blk.Contains(ip) {
			return true
		}
	}
	return false
}
