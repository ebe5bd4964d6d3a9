package bridge

import (
	"github.com/golang/glog"

	"github.com/robotalks/plipbox.go/pkg/param"
	"github.com/robotalks/plipbox.go/pkg/stats"
)

// State is the state of the plipbox bridge.
type State int

// Bridge states.
const (
	Offline State = iota
	Online
)

// String implements fmt.Stringer.
func (s State) String() string {
	if s == Online {
		return "online"
	}
	return "offline"
}

// Mode is the forwarding configuration read from parameters.
type Mode struct {
	LoopBack   bool
	FilterPLIP bool
	FilterEth  bool
}

// Bridge is the emulated PLIP to ethernet bridge.
// It must only be used on the loop goroutine.
type Bridge struct {
	Params *param.Params
	Stats  *stats.Stats
	Log    Logger
	Ether  *Ether

	state State
	mode  Mode
}

// New creates a Bridge forwarding over ether.
func New(p *param.Params, s *stats.Stats, log Logger, ether *Ether) *Bridge {
	b := &Bridge{Params: p, Stats: s, Log: log, Ether: ether}
	ether.OnLinkChange = b.LinkChanged
	return b
}

// State returns the bridge state.
func (b *Bridge) State() State {
	return b.state
}

// Mode returns the applied mode.
func (b *Bridge) Mode() Mode {
	return b.mode
}

// Init implements console.Bridge.
func (b *Bridge) Init() {
	b.Stats.Inc(stats.BridgeInit)
	b.mode = Mode{
		LoopBack:   b.Params.LoopBack != 0,
		FilterPLIP: b.Params.FilterPLIP != 0,
		FilterEth:  b.Params.FilterEth != 0,
	}
	b.logf("plipbox init loopback=%v fp=%v fe=%v", b.mode.LoopBack, b.mode.FilterPLIP, b.mode.FilterEth)
	b.setState(b.linkReady())
}

// LinkChanged follows the ethernet link.
func (b *Bridge) LinkChanged(up bool) {
	b.setState(up || b.mode.LoopBack)
}

func (b *Bridge) linkReady() bool {
	return b.mode.LoopBack || (b.Ether != nil && b.Ether.State() == LinkUp)
}

func (b *Bridge) setState(online bool) {
	state := Offline
	if online {
		state = Online
	}
	if state != b.state {
		b.state = state
		b.logf("plipbox %s", state)
	}
}

func (b *Bridge) logf(format string, args ...interface{}) {
	glog.V(1).Infof(format, args...)
	if b.Log != nil {
		b.Log.Addf(format, args...)
	}
}
