package console

import (
	"io"

	"github.com/robotalks/plipbox.go/pkg/param"
)

// Dumper prints and clears the state of a subsystem.
type Dumper interface {
	Dump(io.Writer) error
	Reset()
}

// Ether is the link layer state machine.
type Ether interface {
	Configure()
	Init()
	Shutdown()
}

// Bridge is the bridging state machine.
type Bridge interface {
	Init()
}

// Device is everything a command handler works on.
type Device struct {
	Version string
	Params  *param.Params
	Store   param.Store
	Stats   Dumper
	Log     Dumper
	Ether   Ether
	Bridge  Bridge
	Out     io.Writer
}
