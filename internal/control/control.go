package control

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/oblq/gauge/internal/config"
	"github.com/oblq/gauge/internal/gauge"
	"github.com/oblq/gauge/internal/record"
	"github.com/oblq/gauge/internal/source"
	"github.com/oblq/gauge/internal/tick"
	"github.com/oblq/gauge/internal/tween"
)

// Keys reports key-down edges, true only on the frame the key went down.
type Keys interface {
	JustPressed(key string) bool
}

// NoKeys is the input of a headless run.
type NoKeys struct{}

func (NoKeys) JustPressed(string) bool { return false }

// LineSource is polled once per frame.
type LineSource interface {
	TryReadLine() (float64, error)
}

// Recorder receives every accepted sample.
type Recorder interface {
	Record(e record.Entry)
}

type Options struct {
	TickGap        int
	CommandKey     string
	PresetKeys     []string
	PresetDuration float64
	SensorStep     float64
	CommandStep    float64
}

// OptionsFrom picks the controller options out of cfg.
func OptionsFrom(cfg *config.Config) Options {
	return Options{
		TickGap:        cfg.TickGap,
		CommandKey:     cfg.Keys.Command,
		PresetKeys:     cfg.Keys.Presets,
		PresetDuration: cfg.PresetDuration,
		SensorStep:     cfg.SensorStep,
		CommandStep:    cfg.CommandStep,
	}
}

type Stats struct {
	Samples   uint64
	NoData    uint64
	Malformed uint64
	Commands  uint64
	Presets   uint64
}

// Controller runs the per-frame work. Update must be called from one
// goroutine only; SetTickGap may be called from any.
type Controller struct {
	pendingGap int64

	source   LineSource
	recorder Recorder
	opts     Options

	model *gauge.Model
	tween *tween.Interpolator
	ticks *tick.Scheduler

	frame uint64
	stats Stats

	sensorText  string
	commandText string
}

func New(src LineSource, opts Options) *Controller {
	model := gauge.NewModel()
	c := &Controller{
		source: src,
		opts:   opts,
		model:  model,
		tween:  tween.New(model),
		ticks:  tick.New(opts.TickGap),
	}
	c.refresh()
	return c
}

// SetRecorder enables sample recording, nil disables it.
func (c *Controller) SetRecorder(r Recorder) {
	c.recorder = r
}

// SetTickGap schedules a new tick gap, applied on the next frame.
func (c *Controller) SetTickGap(gap int) {
	atomic.StoreInt64(&c.pendingGap, int64(gap))
}

// Update runs one frame, dt is the frame duration in seconds.
func (c *Controller) Update(keys Keys, dt float64) {
	c.frame++

	if gap := atomic.SwapInt64(&c.pendingGap, 0); gap > 0 {
		c.ticks.SetGap(int(gap))
	}

	c.ingest()

	// not gated by the tick scheduler
	if keys.JustPressed(c.opts.CommandKey) {
		c.model.UpdateCommandGauge(c.opts.CommandStep)
		c.stats.Commands++
	}

	// preset edges landing on non-gated frames are lost
	if c.ticks.Tick() {
		c.checkPresets(keys)
	}

	c.tween.Advance(dt)

	c.refresh()
}

func (c *Controller) ingest() {
	v, err := c.source.TryReadLine()
	if err != nil {
		if errors.Is(err, source.ErrNoData) {
			c.stats.NoData++
		} else {
			c.stats.Malformed++
		}
		return
	}

	c.model.UpdateSensorGauge(v)
	c.stats.Samples++

	if c.recorder != nil {
		c.recorder.Record(record.Entry{
			Frame: c.frame,
			Raw:   v,
			Level: c.model.Level(gauge.Sensor),
		})
	}
}

func (c *Controller) checkPresets(keys Keys) {
	for i, key := range c.opts.PresetKeys {
		if i >= len(tween.Presets) || !keys.JustPressed(key) {
			continue
		}
		if i == 0 {
			c.model.Bump(gauge.Sensor, c.opts.SensorStep)
		}
		c.tween.SetTarget(gauge.Sensor, tween.Presets[i], c.opts.PresetDuration)
		c.stats.Presets++
	}
}

func (c *Controller) refresh() {
	c.sensorText = gauge.Format(c.model.Level(gauge.Sensor))
	c.commandText = gauge.Format(c.model.Level(gauge.Command))
}

// SensorText is the sensor gauge percentage as displayed.
func (c *Controller) SensorText() string { return c.sensorText }

// CommandText is the command gauge percentage as displayed.
func (c *Controller) CommandText() string { return c.commandText }

func (c *Controller) Level(id gauge.ID) float64 { return c.model.Level(id) }

func (c *Controller) Phase(id gauge.ID) tween.Phase { return c.tween.Phase(id) }

func (c *Controller) Frame() uint64 { return c.frame }

func (c *Controller) TickGap() int { return c.ticks.Gap() }

func (c *Controller) Stats() Stats { return c.stats }

// Status is the one-line state summary printed by the runners.
func (c *Controller) Status() string {
	return fmt.Sprintf("	| %s %4s%% | %s %4s%% | samples %d malformed %d |",
		gauge.Sensor, c.sensorText, gauge.Command, c.commandText,
		c.stats.Samples, c.stats.Malformed)
}
