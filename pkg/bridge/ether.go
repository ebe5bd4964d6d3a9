// Package bridge emulates the ethernet side and the plipbox bridge state of
// a device.
package bridge

import (
	"time"

	"github.com/golang/glog"

	fx "github.com/robotalks/plipbox.go/pkg/framework"
	"github.com/robotalks/plipbox.go/pkg/param"
	"github.com/robotalks/plipbox.go/pkg/stats"
)

// LinkState is the state of the ethernet link.
type LinkState int

// Link states.
const (
	LinkOff LinkState = iota
	LinkDown
	LinkUp
)

// String implements fmt.Stringer.
func (s LinkState) String() string {
	switch s {
	case LinkDown:
		return "link-down"
	case LinkUp:
		return "link-up"
	default:
		return "off"
	}
}

// Carrier reports whether a cable is plugged.
type Carrier interface {
	Carrier() bool
}

// CarrierFunc is the func form of Carrier.
type CarrierFunc func() bool

// Carrier implements Carrier.
func (f CarrierFunc) Carrier() bool { return f() }

// EtherConfig is the configuration applied to the ethernet chip.
type EtherConfig struct {
	MAC        param.MAC
	FullDuplex bool
	FlowCtl    bool
}

// Logger receives device log records.
type Logger interface {
	Addf(format string, args ...interface{})
}

// DefaultPollInterval is the interval the carrier is checked.
const DefaultPollInterval = 500 * time.Millisecond

// Ether is the emulated ethernet link.
// It must only be used on the loop goroutine.
type Ether struct {
	Params       *param.Params
	Stats        *stats.Stats
	Log          Logger
	Carrier      Carrier
	PollInterval time.Duration
	// OnLinkChange is called on link up and down transitions.
	OnLinkChange func(up bool)

	state    LinkState
	config   EtherConfig
	lastPoll time.Time
}

// NewEther creates an Ether with a permanently plugged cable.
func NewEther(p *param.Params, s *stats.Stats, log Logger) *Ether {
	return &Ether{
		Params:       p,
		Stats:        s,
		Log:          log,
		Carrier:      CarrierFunc(func() bool { return true }),
		PollInterval: DefaultPollInterval,
	}
}

// State returns the link state.
func (e *Ether) State() LinkState {
	return e.state
}

// Config returns the applied configuration.
func (e *Ether) Config() EtherConfig {
	return e.config
}

// Init implements console.Ether.
func (e *Ether) Init() {
	e.Stats.Inc(stats.EtherInit)
	e.applyConfig()
	e.logf("eth init %s", e.config.MAC)
	if e.state == LinkUp {
		e.setState(LinkDown)
	} else {
		e.state = LinkDown
	}
	e.checkCarrier()
}

// Configure implements console.Ether.
func (e *Ether) Configure() {
	e.Stats.Inc(stats.EtherConfigure)
	e.applyConfig()
	e.logf("eth configure fd=%v fc=%v", e.config.FullDuplex, e.config.FlowCtl)
	if e.state == LinkUp {
		e.setState(LinkDown)
		e.checkCarrier()
	}
}

// Shutdown implements console.Ether.
func (e *Ether) Shutdown() {
	e.Stats.Inc(stats.EtherShutdown)
	e.logf("eth shutdown")
	if e.state == LinkUp {
		e.setState(LinkDown)
	}
	e.state = LinkOff
}

// AddToLoop implements LoopAdder.
func (e *Ether) AddToLoop(l *fx.Loop) {
	l.AddController(fx.PrLvLow, fx.ControlFunc(e.poll))
}

func (e *Ether) poll(cc fx.ControlContext) error {
	if e.state == LinkOff || cc.Time().Sub(e.lastPoll) < e.PollInterval {
		return nil
	}
	e.lastPoll = cc.Time()
	e.checkCarrier()
	return nil
}

func (e *Ether) applyConfig() {
	e.config = EtherConfig{
		MAC:        e.Params.MACAddr,
		FullDuplex: e.Params.FullDuplex != 0,
		FlowCtl:    e.Params.FlowCtl != 0,
	}
}

func (e *Ether) checkCarrier() {
	up := e.Carrier.Carrier()
	switch {
	case up && e.state == LinkDown:
		e.setState(LinkUp)
	case !up && e.state == LinkUp:
		e.setState(LinkDown)
	}
}

func (e *Ether) setState(state LinkState) {
	e.state = state
	up := state == LinkUp
	if up {
		e.Stats.Inc(stats.LinkUp)
	} else {
		e.Stats.Inc(stats.LinkDown)
	}
	e.logf("eth %s", state)
	if e.OnLinkChange != nil {
		e.OnLinkChange(up)
	}
}

func (e *Ether) logf(format string, args ...interface{}) {
	glog.V(1).Infof(format, args...)
	if e.Log != nil {
		e.Log.Addf(format, args...)
	}
}
