// Package param holds the runtime parameters of a plipbox device.
package param

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Key addresses a parameter by the two characters of its command name.
type Key struct {
	Group byte
	Type  byte
}

// KeyOf derives the Key from a two-character command name.
func KeyOf(name string) (Key, bool) {
	if len(name) != 2 {
		return Key{}, false
	}
	return Key{Group: name[0], Type: name[1]}, true
}

// String returns the command name of the key.
func (k Key) String() string {
	return string([]byte{k.Group, k.Type})
}

// Params is the parameter registry of a device.
// It is not safe for concurrent use, the owner of the console serializes access.
type Params struct {
	MACAddr MAC `yaml:"mac_addr"`

	FullDuplex byte `yaml:"full_duplex"`
	FlowCtl    byte `yaml:"flow_ctl"`
	FilterPLIP byte `yaml:"filter_plip"`
	FilterEth  byte `yaml:"filter_eth"`
	LoopBack   byte `yaml:"loop_back"`

	DumpDirs  byte `yaml:"dump_dirs"`
	DumpEth   byte `yaml:"dump_eth"`
	DumpIP    byte `yaml:"dump_ip"`
	DumpARP   byte `yaml:"dump_arp"`
	DumpProto byte `yaml:"dump_proto"`
	DumpPLIP  byte `yaml:"dump_plip"`

	LogAll byte `yaml:"log_all"`

	TestPLen  uint16 `yaml:"test_plen"`
	TestPType uint16 `yaml:"test_ptype"`
}

// Dump direction bits stored in DumpDirs.
const (
	DirPLIPRx byte = 1 << iota
	DirEthRx
	DirPLIPTx
	DirEthTx
)

// DefaultMAC is the factory MAC address.
var DefaultMAC = MAC{0x1a, 0x11, 0xaf, 0xa0, 0x47, 0x11}

// Defaults returns the factory parameters.
func Defaults() Params {
	return Params{
		MACAddr:   DefaultMAC,
		FlowCtl:   1,
		TestPLen:  1514,
		TestPType: 0xfffd,
	}
}

// Reset restores factory parameters.
func (p *Params) Reset() {
	*p = Defaults()
}

type flagSlot struct {
	key   Key
	desc  string
	field func(*Params) *byte
}

type wordSlot struct {
	key   Key
	desc  string
	field func(*Params) *uint16
}

var flagSlots = []flagSlot{
	{Key{'f', 'd'}, "full duplex", func(p *Params) *byte { return &p.FullDuplex }},
	{Key{'f', 'c'}, "flow control", func(p *Params) *byte { return &p.FlowCtl }},
	{Key{'f', 'p'}, "filter PLIP", func(p *Params) *byte { return &p.FilterPLIP }},
	{Key{'f', 'e'}, "filter ETH", func(p *Params) *byte { return &p.FilterEth }},
	{Key{'f', 'l'}, "loop back", func(p *Params) *byte { return &p.LoopBack }},
	{Key{'d', 'd'}, "dump dirs", func(p *Params) *byte { return &p.DumpDirs }},
	{Key{'d', 'e'}, "dump ETH", func(p *Params) *byte { return &p.DumpEth }},
	{Key{'d', 'i'}, "dump IP", func(p *Params) *byte { return &p.DumpIP }},
	{Key{'d', 'a'}, "dump ARP", func(p *Params) *byte { return &p.DumpARP }},
	{Key{'d', 'p'}, "dump proto", func(p *Params) *byte { return &p.DumpProto }},
	{Key{'d', 'l'}, "dump PLIP", func(p *Params) *byte { return &p.DumpPLIP }},
	{Key{'l', 'a'}, "log all", func(p *Params) *byte { return &p.LogAll }},
}

var wordSlots = []wordSlot{
	{Key{'t', 'l'}, "test packet len", func(p *Params) *uint16 { return &p.TestPLen }},
	{Key{'t', 't'}, "test packet type", func(p *Params) *uint16 { return &p.TestPType }},
}

// Flag returns the storage slot of a flag parameter, nil if the key is unknown.
func (p *Params) Flag(k Key) *byte {
	for _, s := range flagSlots {
		if s.key == k {
			return s.field(p)
		}
	}
	return nil
}

// Word returns the storage slot of a word parameter, nil if the key is unknown.
func (p *Params) Word(k Key) *uint16 {
	for _, s := range wordSlots {
		if s.key == k {
			return s.field(p)
		}
	}
	return nil
}

// FlagKeys lists the keys of all flag parameters.
func FlagKeys() []Key {
	keys := make([]Key, len(flagSlots))
	for n, s := range flagSlots {
		keys[n] = s.key
	}
	return keys
}

// WordKeys lists the keys of all word parameters.
func WordKeys() []Key {
	keys := make([]Key, len(wordSlots))
	for n, s := range wordSlots {
		keys[n] = s.key
	}
	return keys
}

// Dump prints all parameters, one per line.
func (p *Params) Dump(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "m:  %-17s %s\r\n", "mac address", p.MACAddr); err != nil {
		return err
	}
	for _, s := range flagSlots {
		if _, err := fmt.Fprintf(w, "%s: %-17s %02x\r\n", s.key, s.desc, *s.field(p)); err != nil {
			return err
		}
	}
	for _, s := range wordSlots {
		if _, err := fmt.Fprintf(w, "%s: %-17s %04x\r\n", s.key, s.desc, *s.field(p)); err != nil {
			return err
		}
	}
	return nil
}

// BinarySize is the length of the canonical binary encoding.
var BinarySize = len(DefaultMAC) + len(flagSlots) + 2*len(wordSlots)

// MarshalBinary encodes the parameters in slot order,
// words are big-endian.
func (p *Params) MarshalBinary() ([]byte, error) {
	b := make([]byte, BinarySize)
	n := copy(b, p.MACAddr[:])
	for _, s := range flagSlots {
		b[n] = *s.field(p)
		n++
	}
	for _, s := range wordSlots {
		binary.BigEndian.PutUint16(b[n:], *s.field(p))
		n += 2
	}
	return b, nil
}

// UnmarshalBinary decodes the encoding produced by MarshalBinary.
func (p *Params) UnmarshalBinary(b []byte) error {
	if len(b) != BinarySize {
		return fmt.Errorf("invalid parameter block size %d", len(b))
	}
	var v Params
	n := copy(v.MACAddr[:], b)
	for _, s := range flagSlots {
		*s.field(&v) = b[n]
		n++
	}
	for _, s := range wordSlots {
		*s.field(&v) = binary.BigEndian.Uint16(b[n:])
		n += 2
	}
	*p = v
	return nil
}
