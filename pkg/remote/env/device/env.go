// Package device sets up the remote console of a device process.
package device

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/golang/glog"

	fx "github.com/robotalks/plipbox.go/pkg/framework"
	"github.com/robotalks/plipbox.go/pkg/remote"
	"github.com/robotalks/plipbox.go/pkg/remote/comm"
	"github.com/robotalks/plipbox.go/pkg/remote/comm/mqtt"
	"github.com/robotalks/plipbox.go/pkg/remote/comm/stream"
	"github.com/robotalks/plipbox.go/pkg/remote/comm/websocket"
	"github.com/robotalks/plipbox.go/pkg/remote/env"
	"github.com/robotalks/plipbox.go/pkg/remote/msgs"
)

// Config provides common options to expose the console of a device.
type Config struct {
	Info remote.DeviceInfo

	// MQTTBrokerURL specifies the MQTT broker to register with.
	// e.g. mqtt://host:port/topic-prefix
	MQTTBrokerURL string
	// TCPAddr is the address serving the console on raw streams.
	TCPAddr string
	// HTTPAddr is the address serving the websocket console at
	// /console and everything added to Env.Mux.
	HTTPAddr string
}

var defaultConfig = Config{
	Info: remote.DeviceInfo{
		Ref:  remote.DeviceRef{Type: remote.DeviceType},
		Meta: remote.DeviceMeta{Description: "plipbox PLIP to ethernet bridge"},
	},
}

func init() {
	defaultConfig.Info.Ref.ID = env.MachineID()
	if val := os.Getenv("PLIPBOX_ID"); val != "" {
		defaultConfig.Info.Ref.ID = val
	}
	if val := os.Getenv("PLIPBOX_MQTT_URL"); val != "" {
		defaultConfig.MQTTBrokerURL = val
	}
	if val := os.Getenv("PLIPBOX_TCP_ADDR"); val != "" {
		defaultConfig.TCPAddr = val
	}
	if val := os.Getenv("PLIPBOX_HTTP_ADDR"); val != "" {
		defaultConfig.HTTPAddr = val
	}
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Info.Ref.ID, "id", defaultConfig.Info.Ref.ID, "Device ID")
	flag.StringVar(&defaultConfig.MQTTBrokerURL, "mqtt", defaultConfig.MQTTBrokerURL, "MQTT broker URL")
	flag.StringVar(&defaultConfig.TCPAddr, "tcp", defaultConfig.TCPAddr, "TCP console address")
	flag.StringVar(&defaultConfig.HTTPAddr, "http", defaultConfig.HTTPAddr, "HTTP address for websocket console and metrics")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// Env is the remote console environment of a device.
type Env struct {
	Config    *Config
	Registrar *comm.RegistrarMux
	Mux       *http.ServeMux

	runners []fx.Runnable
}

// NewEnv creates Env from config. Without any address configured the
// Env is empty and the device is only reachable on its local console.
func (c *Config) NewEnv() (*Env, error) {
	if !c.Info.Ref.IsValid() {
		return nil, fmt.Errorf("device type and id must be specified")
	}
	e := &Env{
		Config:    c,
		Registrar: &comm.RegistrarMux{},
		Mux:       http.NewServeMux(),
	}
	if c.MQTTBrokerURL != "" {
		reg, err := mqtt.NewRegistrar(c.MQTTBrokerURL, c.Info)
		if err != nil {
			return nil, fmt.Errorf("create MQTT registrar error: %w", err)
		}
		e.Registrar.Add(reg)
	}
	if c.TCPAddr != "" {
		srv, err := stream.Listen(c.TCPAddr)
		if err != nil {
			return nil, fmt.Errorf("listen %s error: %w", c.TCPAddr, err)
		}
		srv.Registrar = e.Registrar
		e.runners = append(e.runners, srv)
	}
	if c.HTTPAddr != "" {
		e.runners = append(e.runners, fx.NamedRun("http:"+c.HTTPAddr, fx.RunnableFunc(e.serveHTTP)))
	}
	return e, nil
}

// MustNewEnv creates Env and fails on error.
func (c *Config) MustNewEnv() *Env {
	e, err := c.NewEnv()
	if err != nil {
		glog.Exit(err)
	}
	return e
}

// SendEvent sends an event through all registrars.
func (e *Env) SendEvent(ctx context.Context, name, text string) {
	if err := e.Registrar.SendEvent(ctx, &msgs.Event{Name: name, Text: text}); err != nil {
		glog.Warningf("send event %s: %v", name, err)
	}
}

// AddToLoop implements LoopAdder.
func (e *Env) AddToLoop(loop *fx.Loop) {
	loop.Add(e.Registrar)
	loop.AddRunnable(e.runners...)
}

func (e *Env) serveHTTP(ctx context.Context) error {
	e.Mux.Handle("/console", websocket.Handler(ctx, e.Registrar))
	srv := &http.Server{Addr: e.Config.HTTPAddr, Handler: e.Mux}
	glog.Infof("serving http on %s", srv.Addr)
	err := fx.RunWithContextCloser(ctx, srv, srv.ListenAndServe)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
