package stream

import (
	"context"
	"net"
	"sync"

	"github.com/golang/glog"

	fx "github.com/robotalks/plipbox.go/pkg/framework"
	"github.com/robotalks/plipbox.go/pkg/remote/comm"
)

// Server serves the remote console on accepted stream connections.
// It is added to a Loop as a Runnable. Connected clients receive events
// through Registrar when set.
type Server struct {
	Listener  net.Listener
	Registrar *comm.RegistrarMux
}

// Listen creates a Server listening on a TCP address.
func Listen(addr string) (*Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Server{Listener: ln}, nil
}

// Name implements Named.
func (s *Server) Name() string {
	return "stream:" + s.Listener.Addr().String()
}

// Run implements Runnable.
func (s *Server) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	defer wg.Wait()
	return fx.RunWithContextCloser(ctx, s.Listener, func() error {
		for {
			conn, err := s.Listener.Accept()
			if err != nil {
				return err
			}
			glog.Infof("console client %s connected", conn.RemoteAddr())
			wg.Add(1)
			go func(conn net.Conn) {
				defer wg.Done()
				err := s.Registrar.Serve(ctx, comm.NewRegistrar(New(conn)))
				glog.Infof("console client %s disconnected: %v", conn.RemoteAddr(), err)
			}(conn)
		}
	})
}
