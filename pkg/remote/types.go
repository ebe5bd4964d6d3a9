// Package remote exposes the device console to remote clients.
package remote

import (
	"context"

	"github.com/robotalks/plipbox.go/pkg/remote/msgs"
)

// DeviceType is the type of every plipbox device.
const DeviceType = "plipbox"

// Registrar registers a device to a registry and serves
// the remote console through it.
type Registrar interface {
	// SendEvent sends an event to connected clients.
	SendEvent(context.Context, *msgs.Event) error
}

// DeviceRef is a reference to a device.
type DeviceRef struct {
	// Type is the device type.
	Type string
	// ID is unique ID of the device.
	ID string
}

// Name retrieves the name from ref.
func (r DeviceRef) Name() string {
	return r.Type + "/" + r.ID
}

// IsValid indicates DeviceRef is valid.
func (r DeviceRef) IsValid() bool {
	return r.Type != "" && r.ID != ""
}

// DeviceMeta provides metadata of a device.
type DeviceMeta struct {
	Description string            `json:"description,omitempty"`
	Version     string            `json:"version,omitempty"`
	Labels      map[string]string `json:"labels,omitempty"`
}

// DeviceInfo provides information of a device.
type DeviceInfo struct {
	Ref  DeviceRef
	Meta DeviceMeta
}

// Connector is used by clients to connect to a device.
type Connector interface {
	// Discover enumerates registered devices.
	Discover(context.Context) ([]DeviceInfo, error)
	// Connect connects to the specified device.
	Connect(context.Context, DeviceRef) (DeviceConn, error)
}

// DeviceConn is the connection to a device.
type DeviceConn interface {
	// DoCommand sends a console line.
	DoCommand(argv []string) CommandFuture
}

// Result represents result of a command.
type Result struct {
	Reply *msgs.Reply
	Err   error
}

// CommandFuture is the future of sent command.
type CommandFuture interface {
	ResultChan() <-chan Result
}
