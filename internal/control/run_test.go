package control

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRunHeadless_frames(t *testing.T) {
	c := newController("0.5")

	calls := 0
	err := RunHeadless(context.Background(), c, RunOptions{
		TPS:     1000,
		Frames:  10,
		OnFrame: func(*Controller) { calls++ },
	})
	require.NoError(t, err)
	require.Equal(t, 10, calls)
	require.Equal(t, uint64(10), c.Frame())
	require.Equal(t, "75", c.SensorText())
}

func TestRunHeadless_cancel(t *testing.T) {
	c := newController()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := RunHeadless(ctx, c, RunOptions{TPS: 1000})
	require.Equal(t, context.DeadlineExceeded, err)
}

func TestRunOptions_frameDuration(t *testing.T) {
	opts := RunOptions{}
	opts.Defaults()
	require.InDelta(t, 1.0/60, opts.FrameDuration(), 1e-12)
	require.InDelta(t, 0.04, RunOptions{TPS: 25}.FrameDuration(), 1e-12)
}
