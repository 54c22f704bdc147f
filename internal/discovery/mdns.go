// Package discovery advertises a capclip daemon's TCP endpoint over mDNS and
// finds daemons advertised by other hosts.
package discovery

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/grandcat/zeroconf"
)

const (
	// ServiceType is the mDNS service type for capclip daemons.
	ServiceType = "_capclip._tcp"
	// Domain is the mDNS domain.
	Domain = "local."
	// DefaultTimeout is how long Browse callers usually listen.
	DefaultTimeout = 3 * time.Second
)

// Endpoint is a discovered daemon.
type Endpoint struct {
	Instance string
	Host     string
	Port     int
	AddrV4   net.IP
	Version  string
}

// Addr returns host:port, preferring the IPv4 address when one was resolved.
func (e Endpoint) Addr() string {
	if e.AddrV4 != nil {
		return net.JoinHostPort(e.AddrV4.String(), fmt.Sprint(e.Port))
	}
	return net.JoinHostPort(strings.TrimSuffix(e.Host, "."), fmt.Sprint(e.Port))
}

// Service wraps a zeroconf registration.
type Service struct {
	server *zeroconf.Server
}

// Register announces instance on port until Shutdown is called.
func Register(instance string, port int, version string) (*Service, error) {
	server, err := zeroconf.Register(
		instance,
		ServiceType,
		Domain,
		port,
		[]string{"version=" + version},
		nil, // all interfaces
	)
	if err != nil {
		return nil, fmt.Errorf("mDNS register: %w", err)
	}
	return &Service{server: server}, nil
}

// Shutdown withdraws the announcement.
func (s *Service) Shutdown() {
	if s.server != nil {
		s.server.Shutdown()
	}
}

// Browse collects endpoints until ctx is done.
func Browse(ctx context.Context) ([]Endpoint, error) {
	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("mDNS resolver: %w", err)
	}

	entries := make(chan *zeroconf.ServiceEntry)
	if err := resolver.Browse(ctx, ServiceType, Domain, entries); err != nil {
		return nil, fmt.Errorf("mDNS browse: %w", err)
	}

	var out []Endpoint
	seen := make(map[string]bool)
	for {
		select {
		case <-ctx.Done():
			return out, nil
		case entry, ok := <-entries:
			if !ok {
				return out, nil
			}
			ep := fromEntry(entry)
			if seen[ep.Instance] {
				continue
			}
			seen[ep.Instance] = true
			slog.Debug("daemon found", "instance", ep.Instance, "addr", ep.Addr())
			out = append(out, ep)
		}
	}
}

func fromEntry(entry *zeroconf.ServiceEntry) Endpoint {
	ep := Endpoint{
		Instance: entry.Instance,
		Host:     entry.HostName,
		Port:     entry.Port,
	}
	if len(entry.AddrIPv4) > 0 {
		ep.AddrV4 = entry.AddrIPv4[0]
	}
	for _, txt := range entry.Text {
		if v, ok := strings.CutPrefix(txt, "version="); ok {
			ep.Version = v
		}
	}
	return ep
}
