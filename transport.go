package main

import (
	"fmt"

	"github.com/oblq/gauge/internal/config"
	"github.com/oblq/gauge/internal/source"
	"github.com/oblq/gauge/modules/cli"
	"github.com/oblq/gauge/modules/serial"
	"github.com/oblq/gauge/modules/usb"
)

// openTransport opens the device link selected by cfg.Transport.
func openTransport(cfg config.Source) (source.Transport, error) {
	switch cfg.Transport {
	case config.TransportSerial:
		p, err := serial.Open(serial.Config{
			Port:        cfg.Port,
			BaudRate:    cfg.BaudRate,
			ReadTimeout: cfg.ReadTimeout,
		})
		if err != nil {
			return nil, err
		}
		return p, nil

	case config.TransportUSB:
		d, err := usb.Open(usb.Config{
			VID:      cfg.USB.VID,
			PID:      cfg.USB.PID,
			Endpoint: cfg.USB.Endpoint,
		})
		if err != nil {
			return nil, err
		}
		return d, nil

	case config.TransportCli:
		c, err := cli.Open(cfg.Cmd)
		if err != nil {
			return nil, err
		}
		return c, nil
	}

	return nil, fmt.Errorf("no such transport: %s", cfg.Transport)
}
