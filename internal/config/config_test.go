package config

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, data string) os.FileInfo {
	t.Helper()
	path := filepath.Join(dir, FileName)
	require.NoError(t, ioutil.WriteFile(path, []byte(data), 0644))
	stat, err := os.Stat(path)
	require.NoError(t, err)
	return stat
}

func TestParse_defaults(t *testing.T) {
	cfg, err := Parse([]byte(""))
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
	require.Equal(t, 9600, cfg.Source.BaudRate)
	require.Equal(t, time.Millisecond, cfg.Source.ReadTimeout)
}

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(`
tick_gap: 12
tps: 30
source:
  transport: usb
  port: /dev/ttyACM0
  baud_rate: 115200
  read_timeout: 20ms
  queue_size: 8
  usb:
    vid: 0x1b4f
    pid: 0x9206
    endpoint: 2
keys:
  command: KeyB
  presets: [F1, F2, F3, F4, F5]
preset_duration: 0.5
record:
  path: samples.db
`))
	require.NoError(t, err)

	require.Equal(t, 12, cfg.TickGap)
	require.Equal(t, 30, cfg.TPS)
	require.Equal(t, TransportUSB, cfg.Source.Transport)
	require.Equal(t, "/dev/ttyACM0", cfg.Source.Port)
	require.Equal(t, 115200, cfg.Source.BaudRate)
	require.Equal(t, 20*time.Millisecond, cfg.Source.ReadTimeout)
	require.Equal(t, 8, cfg.Source.QueueSize)
	require.Equal(t, uint16(0x1b4f), cfg.Source.USB.VID)
	require.Equal(t, uint16(0x9206), cfg.Source.USB.PID)
	require.Equal(t, 2, cfg.Source.USB.Endpoint)
	require.Equal(t, "KeyB", cfg.Keys.Command)
	require.Equal(t, []string{"F1", "F2", "F3", "F4", "F5"}, cfg.Keys.Presets)
	require.Equal(t, 0.5, cfg.PresetDuration)
	require.Equal(t, "samples.db", cfg.Record.Path)

	// untouched fields keep their default
	require.Equal(t, DefaultStep, cfg.SensorStep)
	require.Equal(t, DefaultCheckInterval, cfg.CheckInterval)
}

func TestParse_invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "transport", data: "source: {transport: bluetooth}"},
		{name: "cli without cmd", data: "source: {transport: cli}"},
		{name: "presets", data: "keys: {presets: [Digit1]}"},
		{name: "tick gap", data: "tick_gap: 0"},
		{name: "tps", data: "tps: -1"},
		{name: "yaml", data: "tick_gap: [1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			require.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	_, _, err := Load(dir)
	require.Error(t, err)

	writeConfig(t, dir, "tick_gap: 3\n")
	cfg, stat, err := Load(dir)
	require.NoError(t, err)
	require.Equal(t, 3, cfg.TickGap)
	require.NotNil(t, stat)
}

func TestWatcher_check(t *testing.T) {
	dir := t.TempDir()
	stat := writeConfig(t, dir, "tick_gap: 3\n")

	w := &Watcher{dir: dir, stat: stat}
	require.Nil(t, w.check())

	writeConfig(t, dir, "tick_gap: 10\n")
	cfg := w.check()
	require.NotNil(t, cfg)
	require.Equal(t, 10, cfg.TickGap)
	require.Nil(t, w.check())

	// broken files are skipped, the last good config stays in use
	writeConfig(t, dir, "tick_gap: [\n")
	require.Nil(t, w.check())
}

func TestWatch(t *testing.T) {
	dir := t.TempDir()
	stat := writeConfig(t, dir, "tick_gap: 3\n")

	changed := make(chan *Config, 1)
	w := Watch(dir, stat, 5*time.Millisecond, func(cfg *Config) {
		select {
		case changed <- cfg:
		default:
		}
	})
	defer w.Stop()

	writeConfig(t, dir, "tick_gap: 42\n")

	select {
	case cfg := <-changed:
		require.Equal(t, 42, cfg.TickGap)
	case <-time.After(time.Second):
		t.Fatal("config change not detected")
	}
}
