package control

import (
	"context"
	"fmt"
	"time"
)

// RunOptions are shared by the window and the headless runner.
type RunOptions struct {
	Title string

	// TPS is the number of frames per second.
	TPS int

	// Frames stops a headless run after N frames, 0 runs until ctx is done.
	Frames uint64

	// Keys are the key names resolved by the window backend.
	Keys []string

	// OnFrame runs after every frame, on the frame goroutine.
	OnFrame func(ctl *Controller)
}

// Defaults fills the zero fields.
func (o *RunOptions) Defaults() {
	if o.TPS <= 0 {
		o.TPS = 60
	}
	if o.Title == "" {
		o.Title = "gauge"
	}
}

// FrameDuration is the time step of one frame, in seconds.
func (o RunOptions) FrameDuration() float64 {
	return 1 / float64(o.TPS)
}

// RunHeadless runs the controller on a ticker, without a window and without keys.
func RunHeadless(ctx context.Context, ctl *Controller, opts RunOptions) error {
	opts.Defaults()

	d := time.Second / time.Duration(opts.TPS)
	if d <= 0 {
		return fmt.Errorf("invalid tps: %d", opts.TPS)
	}
	t := time.NewTicker(d)
	defer t.Stop()

	dt := opts.FrameDuration()

	var frames uint64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			ctl.Update(NoKeys{}, dt)
			if opts.OnFrame != nil {
				opts.OnFrame(ctl)
			}
			frames++
			if opts.Frames > 0 && frames >= opts.Frames {
				return nil
			}
		}
	}
}
