package config

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"time"

	"github.com/oblq/gauge/internal/source"
	"github.com/oblq/gauge/internal/tween"
	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up in the config dir.
const FileName = "gauge.yaml"

// Transport kinds.
const (
	TransportSerial = "serial"
	TransportUSB    = "usb"
	TransportCli    = "cli"
)

const (
	DefaultTickGap       = 5
	DefaultTPS           = 60
	DefaultStep          = 0.01
	DefaultCheckInterval = 2

	DefaultPort        = "/dev/ttyUSB0"
	DefaultBaudRate    = 9600
	DefaultReadTimeout = time.Millisecond
)

type Source struct {
	// Transport is one of: serial, usb, cli.
	Transport string `yaml:"transport"`

	// Port is the serial device identifier, eg.: `/dev/ttyUSB0` or `COM3`.
	Port string `yaml:"port"`

	// BaudRate is the serial transfer rate, the sensor talks 9600 8N1.
	BaudRate int `yaml:"baud_rate"`

	// ReadTimeout bounds a single serial read, eg.: `1ms`.
	ReadTimeout time.Duration `yaml:"read_timeout"`

	USB USB `yaml:"usb"`

	// Cmd is the command streaming samples for the cli transport.
	Cmd string `yaml:"cmd"`

	// QueueSize bounds the lines waiting for the control loop.
	QueueSize int `yaml:"queue_size"`
}

// USB selects the sensor on the bus for the usb transport.
type USB struct {
	VID      uint16 `yaml:"vid"`
	PID      uint16 `yaml:"pid"`
	Endpoint int    `yaml:"endpoint"`
}

type Keys struct {
	// Command bumps the command gauge, checked on every frame.
	Command string `yaml:"command"`

	// Presets select, in order, the preset levels 0.2, 0.4, 0.6, 0.8, 1.0.
	// They are checked only on the frames gated by tick_gap.
	Presets []string `yaml:"presets"`
}

type Record struct {
	// Path is the sqlite file storing accepted samples, empty to disable.
	Path string `yaml:"path"`

	// Buffer bounds the samples waiting to be written.
	Buffer int `yaml:"buffer"`
}

type Config struct {
	// TickGap is the number of frames between discrete-command scans.
	// It is the only option applied without a restart.
	TickGap int `yaml:"tick_gap"`

	// TPS is the number of frames per second.
	TPS int `yaml:"tps"`

	// CheckInterval is the time between config checks and status lines, in seconds.
	CheckInterval int `yaml:"check_interval"`

	Source Source `yaml:"source"`

	Keys Keys `yaml:"keys"`

	// PresetDuration is the preset animation time, in seconds.
	PresetDuration float64 `yaml:"preset_duration"`

	// SensorStep is the instant bump applied by the 0.2 preset command.
	SensorStep float64 `yaml:"sensor_step"`

	// CommandStep is added to the command gauge by the command key.
	CommandStep float64 `yaml:"command_step"`

	Record Record `yaml:"record"`
}

// Default returns the config used for missing fields.
func Default() *Config {
	return &Config{
		TickGap:       DefaultTickGap,
		TPS:           DefaultTPS,
		CheckInterval: DefaultCheckInterval,
		Source: Source{
			Transport:   TransportSerial,
			Port:        DefaultPort,
			BaudRate:    DefaultBaudRate,
			ReadTimeout: DefaultReadTimeout,
			USB: USB{
				VID:      0x2341,
				PID:      0x0043,
				Endpoint: 1,
			},
			QueueSize: source.DefaultQueueSize,
		},
		Keys: Keys{
			Command: "Space",
			Presets: []string{"Digit1", "Digit2", "Digit3", "Digit4", "Digit5"},
		},
		PresetDuration: tween.PresetDuration,
		SensorStep:     DefaultStep,
		CommandStep:    DefaultStep,
	}
}

// Parse decodes data over the defaults.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load reads FileName from dir.
func Load(dir string) (*Config, os.FileInfo, error) {
	path := filepath.Join(dir, FileName)

	stat, err := os.Stat(path)
	if err != nil {
		return nil, nil, err
	}

	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %v", path, err)
	}

	return cfg, stat, nil
}

func (c *Config) validate() error {
	switch c.Source.Transport {
	case TransportSerial, TransportUSB, TransportCli:
	default:
		return fmt.Errorf("unknown transport `%s`, must be one of: serial, usb, cli", c.Source.Transport)
	}
	if c.Source.Transport == TransportCli && c.Source.Cmd == "" {
		return fmt.Errorf("transport cli needs a `cmd`")
	}
	if len(c.Keys.Presets) != len(tween.Presets) {
		return fmt.Errorf("keys.presets must list %d keys, got %d", len(tween.Presets), len(c.Keys.Presets))
	}
	if c.TickGap < 1 {
		return fmt.Errorf("tick_gap must be >= 1, got %d", c.TickGap)
	}
	if c.TPS < 1 {
		return fmt.Errorf("tps must be >= 1, got %d", c.TPS)
	}
	if c.CheckInterval < 1 {
		return fmt.Errorf("check_interval must be >= 1, got %d", c.CheckInterval)
	}
	return nil
}

// Watcher reloads the config when its file changes on disk.
type Watcher struct {
	dir    string
	stat   os.FileInfo
	ticker *time.Ticker
	stop   chan struct{}
}

// Watch checks the file in dir every interval and calls onChange with
// the new config. Invalid files are reported and skipped.
func Watch(dir string, stat os.FileInfo, interval time.Duration, onChange func(*Config)) *Watcher {
	w := &Watcher{
		dir:    dir,
		stat:   stat,
		ticker: time.NewTicker(interval),
		stop:   make(chan struct{}),
	}

	go func() {
		for {
			select {
			case <-w.stop:
				return
			case <-w.ticker.C:
				if cfg := w.check(); cfg != nil {
					onChange(cfg)
				}
			}
		}
	}()

	return w
}

// check is periodically called from the ticker to check the config file.
func (w *Watcher) check() *Config {
	path := filepath.Join(w.dir, FileName)

	configStat, err := os.Stat(path)
	if err != nil {
		fmt.Println("unable to stat config file:", err.Error())
		return nil
	}
	if w.stat != nil &&
		configStat.Size() == w.stat.Size() && configStat.ModTime() == w.stat.ModTime() {
		return nil
	}
	w.stat = configStat

	cfg, _, err := Load(w.dir)
	if err != nil {
		fmt.Println(err.Error())
		return nil
	}

	fmt.Println("config updated")
	return cfg
}

func (w *Watcher) Stop() {
	w.ticker.Stop()
	close(w.stop)
}
