// Package env provides the shared environment of remote console processes.
package env

import (
	"github.com/denisbrodbeck/machineid"
)

// AppID protects the raw machine ID.
const AppID = "plipbox"

// MachineID retrieves the unique ID identifying the machine.
// The ID is hashed with AppID, and falls back to "local" when
// the machine has no ID.
func MachineID() string {
	id, err := machineid.ProtectedID(AppID)
	if err != nil {
		return "local"
	}
	if len(id) > 12 {
		id = id[:12]
	}
	return id
}
