// Package plipbox assembles an emulated plipbox device.
package plipbox

import (
	"fmt"
	"io"
	"strings"

	"github.com/golang/glog"

	"github.com/robotalks/plipbox.go/pkg/bridge"
	"github.com/robotalks/plipbox.go/pkg/console"
	"github.com/robotalks/plipbox.go/pkg/devlog"
	fx "github.com/robotalks/plipbox.go/pkg/framework"
	"github.com/robotalks/plipbox.go/pkg/param"
	"github.com/robotalks/plipbox.go/pkg/stats"
)

// Version and BuildDate are set with -ldflags at build time.
var (
	Version   = "0.6"
	BuildDate = "unknown"
)

// VersionString is printed by the v command.
func VersionString() string {
	return fmt.Sprintf("plipbox %s %s", Version, BuildDate)
}

// Box is an emulated device. All state is owned by the loop it is added to.
type Box struct {
	Params param.Params
	Store  param.Store
	Stats  *stats.Stats
	Log    *devlog.Log
	Ether  *bridge.Ether
	Bridge *bridge.Bridge
	Device *console.Device
	Owner  *console.Owner
	// OnEvent is called on the loop goroutine on boot and link changes.
	OnEvent func(name, text string)

	boots int
	loop  fx.LoopControl
}

type bootMsg struct{}

func (m *bootMsg) NewMessage() fx.Message { return &bootMsg{} }

// New creates a Box persisting parameters in store.
func New(store param.Store, log *devlog.Log) (*Box, error) {
	if err := console.Commands.Validate(); err != nil {
		return nil, fmt.Errorf("invalid command table: %w", err)
	}
	b := &Box{
		Params: param.Defaults(),
		Store:  store,
		Stats:  stats.New(),
		Log:    log,
	}
	b.Ether = bridge.NewEther(&b.Params, b.Stats, b.Log)
	b.Bridge = bridge.New(&b.Params, b.Stats, b.Log, b.Ether)
	linkChanged := b.Ether.OnLinkChange
	b.Ether.OnLinkChange = func(up bool) {
		linkChanged(up)
		if up {
			b.emit("link", "up")
		} else {
			b.emit("link", "down")
		}
	}
	b.Device = &console.Device{
		Version: VersionString(),
		Params:  &b.Params,
		Store:   b.Store,
		Stats:   b.Stats,
		Log:     b.Log,
		Ether:   b.Ether,
		Bridge:  b.Bridge,
		Out:     io.Discard,
	}
	b.Owner = console.NewOwner(b.Device)
	b.Owner.Recorder = b
	b.Owner.OnReset = b.requestBoot
	return b, nil
}

// AddToLoop implements LoopAdder. The Box boots on the first iteration.
func (b *Box) AddToLoop(l *fx.Loop) {
	b.loop = l
	l.AddController(fx.PrLvHigh, b)
	l.Add(b.Owner, b.Ether)
	b.requestBoot()
}

// Control implements Controller.
func (b *Box) Control(cc fx.ControlContext) error {
	cc.Messages().ProcessMessages(fx.ProcessMessageFunc(func(mctx fx.MessageProcessingContext) {
		if _, ok := mctx.CurrentMessage().(*bootMsg); ok {
			mctx.MessageTaken()
			b.Boot()
		}
	}))
	return nil
}

// Boots returns how many times the Box booted.
func (b *Box) Boots() int {
	return b.boots
}

// Boot loads parameters and re-initializes ethernet and bridge.
// Parameters fall back to defaults when they can't be loaded.
func (b *Box) Boot() {
	b.boots++
	glog.Infof("boot #%d: %s", b.boots, b.Device.Version)
	b.Log.Addf("boot #%d", b.boots)
	if b.Ether.State() != bridge.LinkOff {
		b.Ether.Shutdown()
	}
	b.Params.Reset()
	if err := b.Store.Load(&b.Params); err != nil {
		glog.Warningf("%v, using defaults", err)
		b.Log.Addf("param load: %v", err)
	}
	b.Ether.Init()
	b.Bridge.Init()
	b.emit("boot", fmt.Sprintf("#%d %s", b.boots, b.Bridge.State()))
}

// Record implements console.Recorder.
func (b *Box) Record(argv []string, status console.Status) {
	switch status.Kind {
	case console.KindParseError:
		b.Stats.Inc(stats.CmdParseError)
	case console.KindError:
		b.Stats.Inc(stats.CmdFailed)
	default:
		b.Stats.Inc(stats.CmdOK)
	}
	if b.Params.LogAll != 0 {
		b.Log.Addf("cmd %s: %s", strings.Join(argv, " "), status)
	}
}

func (b *Box) emit(name, text string) {
	if b.OnEvent != nil {
		b.OnEvent(name, text)
	}
}

func (b *Box) requestBoot() {
	if b.loop == nil {
		return
	}
	b.loop.PostMessage(&bootMsg{})
	b.loop.TriggerNext()
}
