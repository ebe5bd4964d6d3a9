package websocket

import (
	"context"
	"net/http"

	"github.com/golang/glog"
	"golang.org/x/net/websocket"

	"github.com/robotalks/plipbox.go/pkg/remote/comm"
)

// Handler serves the remote console on websocket connections.
// ctx must come from a running Loop, connections are closed when it's done.
// Connected clients receive events through mux when it's not nil.
func Handler(ctx context.Context, mux *comm.RegistrarMux) http.Handler {
	return websocket.Handler(func(conn *websocket.Conn) {
		glog.Infof("console client %s connected", conn.Request().RemoteAddr)
		err := mux.Serve(ctx, comm.NewRegistrar(New(conn)))
		glog.Infof("console client %s disconnected: %v", conn.Request().RemoteAddr, err)
	})
}
