package tween

import (
	"github.com/oblq/gauge/internal/gauge"
)

// Presets are the target levels selectable by the preset commands.
var Presets = [5]float64{0.2, 0.4, 0.6, 0.8, 1.0}

// PresetDuration is the animation time of a preset, in seconds.
const PresetDuration = 1.0

// Levels is where the interpolator reads and writes fill levels.
type Levels interface {
	Level(id gauge.ID) float64
	SetLevel(id gauge.ID, level float64)
}

// Ease maps the elapsed fraction [0,1] to the progress fraction [0,1].
type Ease func(t float64) float64

// OutQuad decelerates toward the target.
func OutQuad(t float64) float64 {
	return 1 - (1-t)*(1-t)
}

func Linear(t float64) float64 {
	return t
}

// Phase is the state of a gauge in the interpolator.
type Phase int

const (
	Idle Phase = iota
	Animating
)

func (p Phase) String() string {
	if p == Animating {
		return "animating"
	}
	return "idle"
}

// Job is an animation moving a gauge from From to Target in Duration seconds.
type Job struct {
	From     float64
	Target   float64
	Elapsed  float64
	Duration float64
}

// Interpolator drives gauges toward their targets, one job per gauge.
// A new target for a gauge replaces the running job.
type Interpolator struct {
	levels Levels
	ease   Ease
	jobs   map[gauge.ID]*Job
}

// New returns an Interpolator easing with OutQuad.
func New(levels Levels) *Interpolator {
	return NewWithEase(levels, OutQuad)
}

func NewWithEase(levels Levels, ease Ease) *Interpolator {
	if ease == nil {
		ease = OutQuad
	}
	return &Interpolator{
		levels: levels,
		ease:   ease,
		jobs:   make(map[gauge.ID]*Job),
	}
}

// SetTarget starts animating id from its current level to target.
// Any job already running for id is dropped.
func (ip *Interpolator) SetTarget(id gauge.ID, target, duration float64) {
	if duration <= 0 {
		delete(ip.jobs, id)
		ip.levels.SetLevel(id, target)
		return
	}

	ip.jobs[id] = &Job{
		From:     ip.levels.Level(id),
		Target:   target,
		Duration: duration,
	}
}

// Advance moves every running job forward by dt seconds.
func (ip *Interpolator) Advance(dt float64) {
	for id, job := range ip.jobs {
		job.Elapsed += dt
		if job.Elapsed >= job.Duration {
			ip.levels.SetLevel(id, job.Target)
			delete(ip.jobs, id)
			continue
		}

		p := ip.ease(job.Elapsed / job.Duration)
		ip.levels.SetLevel(id, job.From+(job.Target-job.From)*p)
	}
}

// Phase returns the state of id.
func (ip *Interpolator) Phase(id gauge.ID) Phase {
	if _, ok := ip.jobs[id]; ok {
		return Animating
	}
	return Idle
}

// Job returns a copy of the running job for id.
func (ip *Interpolator) Job(id gauge.ID) (Job, bool) {
	job, ok := ip.jobs[id]
	if !ok {
		return Job{}, false
	}
	return *job, true
}
