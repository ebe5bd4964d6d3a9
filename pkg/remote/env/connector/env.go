// Package connector sets up the remote console of a client process.
package connector

import (
	"context"
	"flag"
	"fmt"
	"net/url"
	"os"

	"github.com/golang/glog"

	"github.com/robotalks/plipbox.go/pkg/remote"
	"github.com/robotalks/plipbox.go/pkg/remote/comm/mqtt"
	"github.com/robotalks/plipbox.go/pkg/remote/comm/stream"
	"github.com/robotalks/plipbox.go/pkg/remote/comm/websocket"
)

// Config provides common options to setup Connectors.
type Config struct {
	Ref remote.DeviceRef

	// RegistryURL specifies where devices are found, one of
	// mqtt://host:port/topic-prefix, tcp://host:port, ws://host:port/console
	RegistryURL string
}

var defaultConfig = Config{
	Ref:         remote.DeviceRef{Type: remote.DeviceType},
	RegistryURL: "mqtt://localhost:1883/",
}

func init() {
	if val := os.Getenv("PLIPBOX_ID"); val != "" {
		defaultConfig.Ref.ID = val
	}
	if val := os.Getenv("PLIPBOX_REGISTRY_URL"); val != "" {
		defaultConfig.RegistryURL = val
	}
}

// SetupFlags sets up command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Ref.ID, "device-id", defaultConfig.Ref.ID, "Device ID to connect.")
	flag.StringVar(&defaultConfig.RegistryURL, "registry", defaultConfig.RegistryURL, "Device registry URL.")
}

// Default gets the default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// NewConnector creates a Connector using current config.
func (c *Config) NewConnector() (remote.Connector, error) {
	parsedURL, err := url.Parse(c.RegistryURL)
	if err != nil {
		return nil, fmt.Errorf("invalid registry URL: %w", err)
	}
	switch parsedURL.Scheme {
	case "mqtt", "mqtts":
		return mqtt.NewConnector(c.RegistryURL)
	case "tcp":
		return stream.NewConnector(parsedURL.Host), nil
	case "ws", "wss":
		return websocket.NewConnector(c.RegistryURL), nil
	default:
		return nil, fmt.Errorf("unknown registry URL scheme: %q", parsedURL.Scheme)
	}
}

// MustNewConnector creates a Connector and fails on error.
func (c *Config) MustNewConnector() remote.Connector {
	conn, err := c.NewConnector()
	if err != nil {
		glog.Exit(err)
	}
	return conn
}

// Connect directly connects to the configured device.
func (c *Config) Connect(ctx context.Context) (remote.DeviceConn, error) {
	if !c.Ref.IsValid() {
		return nil, fmt.Errorf("device id must be specified")
	}
	connector, err := c.NewConnector()
	if err != nil {
		return nil, err
	}
	return connector.Connect(ctx, c.Ref)
}
