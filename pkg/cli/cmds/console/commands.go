// Package console exposes the device console commands in the shell.
package console

import (
	"strings"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/plipbox.go/pkg/cli/sh"
	"github.com/robotalks/plipbox.go/pkg/console"
)

// Cmds builds a shell command per console command, forwarding the line
// to the connected device. A QUIT answer closes the connection.
func Cmds(table console.Table) []*ishell.Cmd {
	cmds := make([]*ishell.Cmd, 0, len(table))
	for _, cmd := range table {
		name := cmd.Name
		cmds = append(cmds, &ishell.Cmd{
			Name:     name,
			Help:     strings.Join(strings.Fields(cmd.Help), " "),
			LongHelp: cmd.Usage(),
			Func: sh.MustBeConnected(func(c *ishell.Context) {
				status, err := sh.DoCommand(c, append([]string{name}, c.Args...))
				if err == nil && status.Kind == console.KindQuit {
					sh.ShellFrom(c).Disconnect()
				}
			}),
		})
	}
	return cmds
}

func init() {
	sh.AddCmds(Cmds(console.Commands)...)
}
