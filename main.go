package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jessevdk/go-flags"

	"github.com/oblq/gauge/internal/control"
	"github.com/oblq/gauge/internal/window"
	"github.com/oblq/gauge/modules/serial"
)

// can be interpolated with -ldflags at build time with an absolute path.
var Path = "./"

type options struct {
	Config    string `short:"c" long:"config" description:"dir containing gauge.yaml (default: build-time Path)"`
	Headless  bool   `long:"headless" description:"run without a window, keys are not available"`
	Frames    uint64 `long:"frames" description:"stop after N frames in headless mode (0 = run forever)"`
	TickGap   int    `long:"tick-gap" description:"frames between discrete-command scans, overrides the config"`
	ListPorts bool   `long:"list-ports" description:"list the serial ports and exit"`
}

func main() {
	var opts options
	if _, err := flags.Parse(&opts); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			return
		}
		os.Exit(2)
	}

	if opts.ListPorts {
		ports, err := serial.List()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		for _, p := range ports {
			fmt.Println(p)
		}
		return
	}

	if opts.Config == "" {
		opts.Config = Path
	}

	// the single termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, err := New(opts.Config, opts.TickGap)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	runOpts := g.RunOptions(opts.Frames)
	if opts.Headless {
		err = control.RunHeadless(ctx, g.controller, runOpts)
	} else {
		err = window.Run(ctx, g.controller, runOpts)
	}

	fmt.Println("exiting")
	g.ShutDown()

	if err != nil && err != context.Canceled {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
