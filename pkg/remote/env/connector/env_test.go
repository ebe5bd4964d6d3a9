package connector

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/plipbox.go/pkg/remote/comm/mqtt"
	"github.com/robotalks/plipbox.go/pkg/remote/comm/stream"
	"github.com/robotalks/plipbox.go/pkg/remote/comm/websocket"
)

func TestNewConnector(t *testing.T) {
	conf := NewConfig()

	conf.RegistryURL = "mqtt://localhost:1883/plipbox/"
	conn, err := conf.NewConnector()
	require.NoError(t, err)
	require.IsType(t, &mqtt.Connector{}, conn)

	conf.RegistryURL = "tcp://127.0.0.1:7777"
	conn, err = conf.NewConnector()
	require.NoError(t, err)
	require.Equal(t, &stream.Connector{Addr: "127.0.0.1:7777"}, conn)

	conf.RegistryURL = "ws://127.0.0.1:8080/console"
	conn, err = conf.NewConnector()
	require.NoError(t, err)
	require.IsType(t, &websocket.Connector{}, conn)

	conf.RegistryURL = "http://127.0.0.1"
	_, err = conf.NewConnector()
	require.Error(t, err)
}

func TestConnectNeedsID(t *testing.T) {
	conf := NewConfig()
	conf.Ref.ID = ""
	_, err := conf.Connect(context.Background())
	require.Error(t, err)
}
