package usb

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/google/gousb"
)

// list all devices:
//  go get -v github.com/google/gousb/lsusb
// lsusb
// Bus 001 Device 004: ID 2341:0043 Arduino SA Uno R3 (CDC ACM)

const (
	// Arduino Uno vendor ID
	DefaultVID = 0x2341

	// Arduino Uno product ID
	DefaultPID = 0x0043

	// bulk IN endpoint carrying the line protocol
	DefaultEndpoint = 1
)

// Config selects the sensor on the bus.
type Config struct {
	VID      uint16
	PID      uint16
	Endpoint int
}

// Device is a sensor read straight from its bulk IN endpoint.
type Device struct {
	ctx      *gousb.Context
	dev      *gousb.Device
	intf     *gousb.Interface
	intfDone func()

	in endpoint

	// cancels the transfer in flight, before anything is released
	readCtx    context.Context
	cancelRead context.CancelFunc

	// held for the duration of a transfer
	readMutex sync.Mutex
	closed    bool
}

// endpoint is the part of *gousb.InEndpoint the device reads through.
type endpoint interface {
	ReadContext(ctx context.Context, buf []byte) (int, error)
	String() string
}

// Open claims the default interface of the configured device.
func Open(cfg Config) (d *Device, err error) {
	if cfg.VID == 0 {
		cfg.VID = DefaultVID
	}
	if cfg.PID == 0 {
		cfg.PID = DefaultPID
	}
	if cfg.Endpoint == 0 {
		cfg.Endpoint = DefaultEndpoint
	}

	d = &Device{}
	d.readCtx, d.cancelRead = context.WithCancel(context.Background())

	// Initialize a new Context.
	d.ctx = gousb.NewContext()

	// Open any device with a given VID/PID using a convenience function.
	d.dev, err = d.ctx.OpenDeviceWithVIDPID(gousb.ID(cfg.VID), gousb.ID(cfg.PID))
	if err != nil || d.dev == nil {
		d.Close()
		return nil, fmt.Errorf("could not open device %04x:%04x: %v", cfg.VID, cfg.PID, err)
	}

	if err = d.dev.SetAutoDetach(true); err != nil {
		d.Close()
		return nil, fmt.Errorf("unable to set autodetach on device: %v", err)
	}

	// Claim the default interface using a convenience function.
	// The default interface is always #0 alt #0 in the currently active
	// config.
	d.intf, d.intfDone, err = d.dev.DefaultInterface()
	if err != nil {
		d.Close()
		return nil, fmt.Errorf("%s.DefaultInterface(): %v", d.dev, err)
	}

	d.in, err = d.intf.InEndpoint(cfg.Endpoint)
	if err != nil {
		d.Close()
		return nil, fmt.Errorf("%s.InEndpoint(%d): %v", d.intf, cfg.Endpoint, err)
	}

	return d, nil
}

// Read reads one bulk transfer. It might return fewer bytes than a full line.
// It blocks until data arrives or Close cancels it.
func (d *Device) Read(p []byte) (int, error) {
	d.readMutex.Lock()
	defer d.readMutex.Unlock()
	if d.closed {
		return 0, os.ErrClosed
	}
	return d.in.ReadContext(d.readCtx, p)
}

// Close cancels a pending Read, then releases interface, device and context,
// in this order.
func (d *Device) Close() error {
	var err error
	if d.cancelRead != nil {
		d.cancelRead()
	}

	// wait for the cancelled transfer to come back
	d.readMutex.Lock()
	d.closed = true
	d.readMutex.Unlock()

	if d.intfDone != nil {
		d.intfDone()
		d.intfDone = nil
	}
	if d.dev != nil {
		err = d.dev.Close()
		d.dev = nil
	}
	if d.ctx != nil {
		if cerr := d.ctx.Close(); err == nil {
			err = cerr
		}
		d.ctx = nil
	}
	return err
}

func (d *Device) String() string {
	if d.in == nil {
		return "usb"
	}
	return d.in.String()
}
