package main

import (
	"context"
	"fmt"
	"os"
	"reflect"
	"sync"
	"time"

	"github.com/oblq/gauge/internal/config"
	"github.com/oblq/gauge/internal/control"
	"github.com/oblq/gauge/internal/record"
	"github.com/oblq/gauge/internal/source"
)

type Gauge struct {
	configDir  string
	configStat os.FileInfo

	// the applied config, tick_gap follows the file unless set by flag
	configMutex sync.Mutex
	config      *config.Config
	tickGapFlag bool

	// the source owns the device link and releases it
	source     *source.Source
	recorder   *record.Recorder
	controller *control.Controller
	watcher    *config.Watcher

	statusEvery uint64

	shutDown sync.Once
}

// New loads the config in configDir, opens the device and prepares the controller.
// tickGap, when > 0, overrides the configured tick gap.
func New(configDir string, tickGap int) (g *Gauge, err error) {
	g = &Gauge{configDir: configDir}

	if g.config, g.configStat, err = config.Load(configDir); err != nil {
		return nil, err
	}
	if tickGap > 0 {
		g.config.TickGap = tickGap
		g.tickGapFlag = true
	}

	transport, err := openTransport(g.config.Source)
	if err != nil {
		return nil, err
	}
	fmt.Printf("%s transport open: %v\n", g.config.Source.Transport, transport)

	g.source = source.New(transport, g.config.Source.QueueSize)
	g.controller = control.New(g.source, control.OptionsFrom(g.config))

	if g.config.Record.Path != "" {
		g.recorder, err = record.Open(context.Background(), g.config.Record.Path, g.config.Record.Buffer)
		if err != nil {
			g.ShutDown()
			return nil, fmt.Errorf("unable to open record file: %v", err)
		}
		g.controller.SetRecorder(g.recorder)
		fmt.Println("recording samples to", g.config.Record.Path)
	}

	g.statusEvery = uint64(g.config.CheckInterval * g.config.TPS)

	interval := time.Second * time.Duration(g.config.CheckInterval)
	g.watcher = config.Watch(configDir, g.configStat, interval, g.onConfigChange)

	return g, nil
}

// onConfigChange runs on the watcher goroutine.
// Only tick_gap is applied live, it reaches the controller on the next frame.
func (g *Gauge) onConfigChange(cfg *config.Config) {
	g.configMutex.Lock()
	defer g.configMutex.Unlock()

	live := *cfg
	live.TickGap = g.config.TickGap
	if !reflect.DeepEqual(&live, g.config) {
		fmt.Println("config changes other than tick_gap need a restart")
	}

	if cfg.TickGap == g.config.TickGap {
		return
	}
	if g.tickGapFlag {
		fmt.Printf("tick_gap %d ignored, set to %d by --tick-gap\n", cfg.TickGap, g.config.TickGap)
		return
	}

	g.controller.SetTickGap(cfg.TickGap)
	g.config.TickGap = cfg.TickGap
	fmt.Println("tick gap set to", cfg.TickGap)
}

// onFrame runs on the frame goroutine after every frame.
func (g *Gauge) onFrame(ctl *control.Controller) {
	if g.statusEvery > 0 && ctl.Frame()%g.statusEvery == 0 {
		fmt.Println(ctl.Status())
	}
}

func (g *Gauge) RunOptions(frames uint64) control.RunOptions {
	keys := append([]string{g.config.Keys.Command}, g.config.Keys.Presets...)
	return control.RunOptions{
		Title:   "gauge",
		TPS:     g.config.TPS,
		Frames:  frames,
		Keys:    keys,
		OnFrame: g.onFrame,
	}
}

// ShutDown stops watching the config and releases the device.
// It is safe to call more than once, the device is released the first time.
func (g *Gauge) ShutDown() {
	g.shutDown.Do(func() {
		if g.watcher != nil {
			g.watcher.Stop()
		}

		if g.source != nil {
			if err := g.source.Close(); err != nil {
				fmt.Println("error closing the device:", err.Error())
			} else {
				fmt.Println("device released")
			}
			st := g.source.Stats()
			fmt.Printf("lines %d, dropped %d, malformed %d, read errors %d\n",
				st.Lines, st.Dropped, st.Malformed, st.ReadErrs)
		}

		if g.recorder != nil {
			if err := g.recorder.Close(); err != nil {
				fmt.Println("error closing the record file:", err.Error())
			}
			if d := g.recorder.Dropped(); d > 0 {
				fmt.Println("record entries dropped:", d)
			}
		}
	})
}
