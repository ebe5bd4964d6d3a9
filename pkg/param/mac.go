package param

import (
	"errors"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// MAC is an ethernet hardware address.
type MAC [6]byte

// ErrInvalidMAC indicates the text is not six hex byte pairs.
var ErrInvalidMAC = errors.New("invalid MAC address")

// ParseMAC parses six hex byte pairs separated by ':' or '-'.
// The separator must be the same throughout.
func ParseMAC(s string) (MAC, error) {
	var mac MAC
	if len(s) != 17 {
		return mac, ErrInvalidMAC
	}
	sep := s[2]
	if sep != ':' && sep != '-' {
		return mac, ErrInvalidMAC
	}
	for i := range mac {
		pos := i * 3
		if i > 0 && s[pos-1] != sep {
			return mac, ErrInvalidMAC
		}
		v, err := strconv.ParseUint(s[pos:pos+2], 16, 8)
		if err != nil {
			return mac, ErrInvalidMAC
		}
		mac[i] = byte(v)
	}
	return mac, nil
}

// String formats the address as colon separated lowercase hex.
func (m MAC) String() string {
	return fmt.Sprintf("%02x:%02x:%02x:%02x:%02x:%02x", m[0], m[1], m[2], m[3], m[4], m[5])
}

// MarshalYAML implements yaml.Marshaler.
func (m MAC) MarshalYAML() (interface{}, error) {
	return m.String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (m *MAC) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	mac, err := ParseMAC(s)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*m = mac
	return nil
}
