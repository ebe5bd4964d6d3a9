package websocket

import (
	"context"
	"net/url"

	"golang.org/x/net/websocket"

	"github.com/robotalks/plipbox.go/pkg/remote"
	"github.com/robotalks/plipbox.go/pkg/remote/comm"
)

// Connector implements remote.Connector on a websocket URL.
// The URL itself identifies the only device.
type Connector struct {
	URL string
}

// NewConnector creates a Connector.
func NewConnector(wsURL string) *Connector {
	return &Connector{URL: wsURL}
}

// Discover implements Connector.
func (c *Connector) Discover(ctx context.Context) ([]remote.DeviceInfo, error) {
	u, err := url.Parse(c.URL)
	if err != nil {
		return nil, err
	}
	return []remote.DeviceInfo{{Ref: remote.DeviceRef{Type: remote.DeviceType, ID: u.Host}}}, nil
}

// Connect implements Connector.
func (c *Connector) Connect(ctx context.Context, ref remote.DeviceRef) (remote.DeviceConn, error) {
	conf, err := websocket.NewConfig(c.URL, originOf(c.URL))
	if err != nil {
		return nil, err
	}
	conn, err := websocket.DialConfig(conf)
	if err != nil {
		return nil, err
	}
	return comm.NewDeviceConn(New(conn)), nil
}

func originOf(wsURL string) string {
	u, err := url.Parse(wsURL)
	if err != nil {
		return "http://localhost/"
	}
	scheme := "http"
	if u.Scheme == "wss" {
		scheme = "https"
	}
	return scheme + "://" + u.Host + "/"
}
