package stream

import (
	"context"
	"net"

	"github.com/robotalks/plipbox.go/pkg/remote"
	"github.com/robotalks/plipbox.go/pkg/remote/comm"
)

// Connector implements remote.Connector on a TCP address.
// The address itself identifies the only device.
type Connector struct {
	Addr string
}

// NewConnector creates a Connector.
func NewConnector(addr string) *Connector {
	return &Connector{Addr: addr}
}

// Discover implements Connector.
func (c *Connector) Discover(ctx context.Context) ([]remote.DeviceInfo, error) {
	return []remote.DeviceInfo{{Ref: remote.DeviceRef{Type: remote.DeviceType, ID: c.Addr}}}, nil
}

// Connect implements Connector.
func (c *Connector) Connect(ctx context.Context, ref remote.DeviceRef) (remote.DeviceConn, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", c.Addr)
	if err != nil {
		return nil, err
	}
	return comm.NewDeviceConn(New(conn)), nil
}
