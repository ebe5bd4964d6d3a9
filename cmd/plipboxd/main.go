package main

//go-build: CGO_ENABLED=0

import (
	"context"
	"flag"
	"os"

	"github.com/golang/glog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/robotalks/plipbox.go/pkg/console"
	fx "github.com/robotalks/plipbox.go/pkg/framework"
	"github.com/robotalks/plipbox.go/pkg/plipbox"
	env "github.com/robotalks/plipbox.go/pkg/remote/env/device"
	"github.com/robotalks/plipbox.go/pkg/stats"
)

var localConsole = true

func init() {
	env.Default().Info.Meta.Version = plipbox.Version
	env.SetupFlags()
	plipbox.SetupFlags()
	flag.BoolVar(&localConsole, "console", localConsole, "Serve console on stdin/stdout.")
}

func main() {
	flag.Parse()

	env := env.NewConfig().MustNewEnv()
	box, err := plipbox.NewConfig().NewBox()
	if err != nil {
		glog.Exit(err)
	}
	box.OnEvent = func(name, text string) {
		env.SendEvent(context.Background(), name, text)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(stats.NewCollector(box.Stats))
	env.Mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	loop := fx.NewLoop().Add(box, env)
	if localConsole {
		session := console.NewSession(box.Owner, os.Stdout)
		loop.AddRunnable(fx.NamedRun("console", fx.RunnableFunc(func(ctx context.Context) error {
			return session.Serve(ctx, os.Stdin)
		})))
	}

	runner := fx.NewRunner()
	runner.HandleSignals()
	runner.Go(loop)
	if err := runner.Wait(); err != nil {
		glog.Exit(err)
	}
}
