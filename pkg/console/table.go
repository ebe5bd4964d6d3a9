// Package console implements the command console of a plipbox device.
//
// A console line is tokenized into argv, argv[0] is looked up in a command
// Table and the matched handler runs against a Device, producing a Status.
package console

import (
	"fmt"

	"github.com/robotalks/plipbox.go/pkg/param"
)

// HandlerFunc executes a command. argv[0] is the matched command name.
type HandlerFunc func(d *Device, argv []string) Status

// Command is an entry of the command table.
type Command struct {
	Name    string
	Args    string
	Help    string
	Handler HandlerFunc

	// Group starts a new paragraph in the help text.
	Group bool
}

// Table is an ordered list of commands.
type Table []Command

// Lookup finds the first command with exactly the given name.
func (t Table) Lookup(name string) *Command {
	for n := range t {
		if t[n].Name == name {
			return &t[n]
		}
	}
	return nil
}

// Dispatch runs the command named by argv[0].
func (t Table) Dispatch(d *Device, argv []string) Status {
	if len(argv) == 0 {
		return StatusParseError
	}
	cmd := t.Lookup(argv[0])
	if cmd == nil {
		return StatusParseError
	}
	return cmd.Handler(d, argv)
}

// Validate checks names are non-empty and unique and handlers are set.
func (t Table) Validate() error {
	names := make(map[string]bool, len(t))
	for _, cmd := range t {
		if cmd.Name == "" {
			return fmt.Errorf("command without name")
		}
		if names[cmd.Name] {
			return fmt.Errorf("duplicated command %q", cmd.Name)
		}
		if cmd.Handler == nil {
			return fmt.Errorf("command %q has no handler", cmd.Name)
		}
		names[cmd.Name] = true
	}
	return nil
}

// Names lists the command names in table order.
func (t Table) Names() []string {
	names := make([]string, len(t))
	for n, cmd := range t {
		names[n] = cmd.Name
	}
	return names
}

// Usage formats the command with its arguments.
func (c *Command) Usage() string {
	if c.Args == "" {
		return c.Name
	}
	return c.Name + " " + c.Args
}

// Commands is the command table of the device.
var Commands Table

func init() {
	Commands = Table{
		{Name: "q", Help: "quit command mode", Handler: cmdQuit},
		{Name: "r", Help: "soft reset device", Handler: cmdDeviceReset},
		{Name: "v", Help: "print plipbox version", Handler: cmdVersion},

		{Name: "p", Help: "print parameters", Handler: cmdParamDump, Group: true},
		{Name: "ps", Help: "save parameters to EEPROM", Handler: cmdParamSave},
		{Name: "pl", Help: "load parameters from EEPROM", Handler: cmdParamLoad},
		{Name: "pr", Help: "reset parameters to defaults", Handler: cmdParamReset},

		{Name: "sd", Help: "dump statistics", Handler: cmdStatsDump, Group: true},
		{Name: "sr", Help: "reset statistics", Handler: cmdStatsReset},

		{Name: "ec", Help: "re-configure ethernet", Handler: cmdEtherConfigure, Group: true},
		{Name: "ei", Help: "re-init ethernet", Handler: cmdEtherInit},
		{Name: "es", Help: "ethernet shutdown", Handler: cmdEtherShutdown},
		{Name: "pi", Help: "re-init plipbox", Handler: cmdPlipboxInit},

		{Name: "m", Args: "<mac>", Help: "set MAC address", Handler: cmdParamMACAddr, Group: true},
		flagCommand("fd", "[on]", "enable full duplex mode"),
		flagCommand("fl", "[on]", "enable loop back"),
		flagCommand("fc", "[on]", "enable flow control for ETH packets"),
		flagCommand("fp", "[on]", "enable filtering of PLIP packets"),
		flagCommand("fe", "[on]", "enable filtering of ETH packets"),

		grouped(flagCommand("dd", "<val>", "select diagnosis directions. add values:\r\n"+
			"         [1=plip(rx),2=eth(rx),4=plip(tx),8=eth(tx)]")),
		flagCommand("de", "[on]", "toggle dump ethernet packets"),
		flagCommand("di", "[on]", "toggle dump IP contents"),
		flagCommand("da", "[on]", "toggle dump ARP contents"),
		flagCommand("dp", "[on]", "toggle dump TCP/UDP contents"),
		flagCommand("dl", "[on]", "toggle dump PLIP info"),
		// no parameter behind dy, it always answers PARSE_ERROR
		flagCommand("dy", "", ""),

		grouped(flagCommand("la", "[on]", "log all PLIP commands")),
		{Name: "ld", Help: "log dump", Handler: cmdLogDump},
		{Name: "lr", Help: "log reset", Handler: cmdLogReset},

		grouped(wordCommand("tl", "<len>", "length of test packets")),
		wordCommand("tt", "<type>", "eth type of test packets"),

		{Name: "?", Help: "print help", Handler: cmdHelp, Group: true},
	}
}

func flagCommand(name, args, help string) Command {
	key, _ := param.KeyOf(name)
	return Command{Name: name, Args: args, Help: help, Handler: paramToggle(key)}
}

func wordCommand(name, args, help string) Command {
	key, _ := param.KeyOf(name)
	return Command{Name: name, Args: args, Help: help, Handler: paramWord(key)}
}

func grouped(cmd Command) Command {
	cmd.Group = true
	return cmd
}
