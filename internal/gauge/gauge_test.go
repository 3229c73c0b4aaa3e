package gauge

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTransform(t *testing.T) {
	tests := []struct {
		name   string
		sample float64
		want   float64
	}{
		{name: "zero", sample: 0, want: 1.6},
		{name: "half", sample: 0.5, want: 0.75},
		{name: "one", sample: 1, want: -0.1},
		{name: "negative sample", sample: -1, want: 3.3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.InDelta(t, tt.want, Transform(tt.sample), 1e-12)
			require.InDelta(t, 1.6-1.70*tt.sample, Transform(tt.sample), 1e-12)
		})
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		level float64
		want  string
	}{
		{level: 0.5, want: "50"},
		{level: 1.0, want: "100"},
		{level: -0.1, want: "-10"},
		{level: 0, want: "0"},
		{level: 0.754, want: "75"},
		{level: 0.756, want: "76"},
		{level: 12.5, want: "1250"},
		{level: Transform(0.5), want: "75"},
		{level: Transform(1), want: "-10"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			require.Equal(t, tt.want, Format(tt.level))
		})
	}
}

func TestModel(t *testing.T) {
	m := NewModel()

	m.UpdateSensorGauge(0.5)
	require.InDelta(t, 0.75, m.Level(Sensor), 1e-12)
	require.Equal(t, 0.0, m.Level(Command))

	// no clamping on either gauge
	m.UpdateSensorGauge(1)
	require.Less(t, m.Level(Sensor), 0.0)

	for i := 0; i < 120; i++ {
		m.UpdateCommandGauge(0.01)
	}
	require.Greater(t, m.Level(Command), 1.0)

	m.SetLevel(Sensor, 0.3)
	m.Bump(Sensor, 0.01)
	require.InDelta(t, 0.31, m.Level(Sensor), 1e-12)
}
