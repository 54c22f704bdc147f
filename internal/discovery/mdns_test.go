package discovery

import (
	"net"
	"testing"

	"github.com/grandcat/zeroconf"
	"github.com/stretchr/testify/require"
)

func TestEndpointAddr(t *testing.T) {
	t.Parallel()

	require.Equal(t, "192.168.1.5:8753", Endpoint{Host: "box.local.", Port: 8753, AddrV4: net.IPv4(192, 168, 1, 5)}.Addr())
	require.Equal(t, "box.local:8753", Endpoint{Host: "box.local.", Port: 8753}.Addr())
}

func TestFromEntry(t *testing.T) {
	t.Parallel()

	entry := zeroconf.NewServiceEntry("desk", ServiceType, Domain)
	entry.HostName = "desk.local."
	entry.Port = 8753
	entry.Text = []string{"version=1.2.3", "other=x"}
	entry.AddrIPv4 = []net.IP{net.IPv4(10, 0, 0, 2)}

	ep := fromEntry(entry)
	require.Equal(t, "desk", ep.Instance)
	require.Equal(t, "1.2.3", ep.Version)
	require.Equal(t, "10.0.0.2:8753", ep.Addr())
}

func TestShutdownNil(t *testing.T) {
	t.Parallel()
	(&Service{}).Shutdown()
}
