package serial

import (
	"fmt"
	"time"

	"go.bug.st/serial"
)

const (
	DefaultBaudRate    = 9600
	DefaultReadTimeout = time.Millisecond
)

// Config is the point-to-point link to the sensor.
type Config struct {
	Port     string
	BaudRate int

	// ReadTimeout bounds a single read, a read that times out returns no data.
	ReadTimeout time.Duration
}

// Port is an open serial connection.
type Port struct {
	serial.Port
	name string
}

// Open opens the configured port in 8N1 mode with a bounded read.
func Open(cfg Config) (*Port, error) {
	if cfg.Port == "" {
		return nil, fmt.Errorf("serial port not set")
	}
	if cfg.BaudRate <= 0 {
		cfg.BaudRate = DefaultBaudRate
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = DefaultReadTimeout
	}

	mode := &serial.Mode{
		BaudRate: cfg.BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	p, err := serial.Open(cfg.Port, mode)
	if err != nil {
		return nil, fmt.Errorf("could not open %s: %v", cfg.Port, err)
	}

	if err = p.SetReadTimeout(cfg.ReadTimeout); err != nil {
		_ = p.Close()
		return nil, fmt.Errorf("unable to set read timeout on %s: %v", cfg.Port, err)
	}

	// stale bytes from before we attached are not samples of this session
	if err = p.ResetInputBuffer(); err != nil {
		_ = p.Close()
		return nil, fmt.Errorf("unable to reset input buffer on %s: %v", cfg.Port, err)
	}

	return &Port{Port: p, name: cfg.Port}, nil
}

func (p *Port) String() string {
	return p.name
}

// List returns the serial ports found on the system.
func List() ([]string, error) {
	return serial.GetPortsList()
}
