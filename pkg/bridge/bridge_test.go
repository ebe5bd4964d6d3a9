package bridge

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/plipbox.go/pkg/devlog"
	fx "github.com/robotalks/plipbox.go/pkg/framework"
	"github.com/robotalks/plipbox.go/pkg/param"
	"github.com/robotalks/plipbox.go/pkg/stats"
)

type testEnv struct {
	params  param.Params
	stats   *stats.Stats
	log     *devlog.Log
	ether   *Ether
	bridge  *Bridge
	carrier bool
}

func newTestEnv() *testEnv {
	env := &testEnv{
		params:  param.Defaults(),
		stats:   stats.New(),
		log:     devlog.New(),
		carrier: true,
	}
	env.ether = NewEther(&env.params, env.stats, env.log)
	env.ether.Carrier = CarrierFunc(func() bool { return env.carrier })
	env.bridge = New(&env.params, env.stats, env.log, env.ether)
	return env
}

func TestEtherLifecycle(t *testing.T) {
	env := newTestEnv()
	e := env.ether
	require.Equal(t, LinkOff, e.State())

	env.params.FullDuplex = 1
	e.Init()
	require.Equal(t, LinkUp, e.State())
	require.Equal(t, EtherConfig{MAC: param.DefaultMAC, FullDuplex: true, FlowCtl: true}, e.Config())
	require.Equal(t, uint64(1), env.stats.Get(stats.EtherInit))
	require.Equal(t, uint64(1), env.stats.Get(stats.LinkUp))

	env.params.FlowCtl = 0
	e.Configure()
	require.Equal(t, LinkUp, e.State())
	require.False(t, e.Config().FlowCtl)
	require.Equal(t, uint64(1), env.stats.Get(stats.LinkDown))
	require.Equal(t, uint64(2), env.stats.Get(stats.LinkUp))

	e.Shutdown()
	require.Equal(t, LinkOff, e.State())
	require.Equal(t, uint64(2), env.stats.Get(stats.LinkDown))

	e.Configure()
	require.Equal(t, LinkOff, e.State())
	require.Equal(t, uint64(2), env.stats.Get(stats.EtherConfigure))
}

func TestEtherNoCarrier(t *testing.T) {
	env := newTestEnv()
	env.carrier = false
	env.ether.Init()
	require.Equal(t, LinkDown, env.ether.State())
	require.Equal(t, uint64(0), env.stats.Get(stats.LinkUp))
}

func TestBridgeFollowsLink(t *testing.T) {
	env := newTestEnv()
	b := env.bridge
	require.Equal(t, Offline, b.State())

	b.Init()
	require.Equal(t, Offline, b.State())
	env.ether.Init()
	require.Equal(t, Online, b.State())

	env.ether.Shutdown()
	require.Equal(t, Offline, b.State())

	env.params.LoopBack = 1
	env.params.FilterEth = 1
	b.Init()
	require.Equal(t, Online, b.State())
	require.Equal(t, Mode{LoopBack: true, FilterEth: true}, b.Mode())
	require.Equal(t, uint64(2), env.stats.Get(stats.BridgeInit))
}

func TestEtherPoll(t *testing.T) {
	env := newTestEnv()
	env.carrier = false
	env.ether.PollInterval = time.Millisecond
	env.ether.Init()
	env.bridge.Init()
	require.Equal(t, Offline, env.bridge.State())

	upCh := make(chan bool, 4)
	env.ether.OnLinkChange = func(up bool) {
		env.bridge.LinkChanged(up)
		upCh <- up
	}
	loop := fx.NewLoop()
	loop.Interval = time.Millisecond
	// carrier is read on the loop goroutine, plug it from there
	loop.AddController(fx.PrLvHigh, fx.ControlFunc(func(cc fx.ControlContext) error {
		env.carrier = true
		return nil
	}))
	loop.Add(env.ether)
	ctx, cancel := context.WithCancel(context.Background())
	doneCh := make(chan struct{})
	go func() {
		loop.Run(ctx)
		close(doneCh)
	}()

	select {
	case up := <-upCh:
		require.True(t, up)
	case <-time.After(time.Second):
		t.Fatal("link not up")
	}
	cancel()
	<-doneCh
	require.Equal(t, LinkUp, env.ether.State())
	require.Equal(t, Online, env.bridge.State())
}
