package main

import (
	"github.com/robotalks/plipbox.go/pkg/cli/sh"
	env "github.com/robotalks/plipbox.go/pkg/remote/env/connector"

	_ "github.com/robotalks/plipbox.go/pkg/cli/cmds/console"
)

//go-build: CGO_ENABLED=0

func init() {
	env.SetupFlags()
}

func main() {
	sh.Main()
}
