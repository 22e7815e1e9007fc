// Package hiddev attaches controllers over USB. Frames here are fixed-size
// HID reports on interrupt endpoints, no UART envelope and no baud dance.
package hiddev

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/gousb"
)

// VendorNintendo and the product IDs of the supported pads.
const (
	VendorNintendo = 0x057E

	ProductJoyConLeft  = 0x2006
	ProductJoyConRight = 0x2007
	ProductProCon      = 0x2009
	ProductChargeGrip  = 0x200E
)

var supportedProducts = []gousb.ID{
	ProductJoyConLeft, ProductJoyConRight, ProductProCon, ProductChargeGrip,
}

// Device is one claimed USB controller implementing joycon.Transport.
type Device struct {
	logger *slog.Logger

	dev   *gousb.Device
	iface *gousb.Interface
	cfg   *gousb.Config
	epIn  *gousb.InEndpoint
	epOut *gousb.OutEndpoint

	mu     sync.Mutex
	closed bool
}

// OpenAll claims every supported controller currently enumerated on ctx.
func OpenAll(ctx *gousb.Context, logger *slog.Logger) ([]*Device, error) {
	devs, err := ctx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		if desc.Vendor != VendorNintendo {
			return false
		}
		for _, p := range supportedProducts {
			if desc.Product == p {
				return true
			}
		}
		return false
	})
	if err != nil && len(devs) == 0 {
		return nil, fmt.Errorf("hiddev: enumerate: %w", err)
	}

	var out []*Device
	for _, dev := range devs {
		d, err := claim(dev, logger)
		if err != nil {
			logger.Warn("claim failed, skipping device", "error", err)
			dev.Close()
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

// claim detaches the kernel driver and grabs the interrupt endpoint pair.
func claim(dev *gousb.Device, logger *slog.Logger) (*Device, error) {
	if err := dev.SetAutoDetach(true); err != nil {
		return nil, fmt.Errorf("hiddev: auto detach: %w", err)
	}
	cfg, err := dev.Config(1)
	if err != nil {
		return nil, fmt.Errorf("hiddev: open config: %w", err)
	}
	iface, err := cfg.Interface(0, 0)
	if err != nil {
		cfg.Close()
		return nil, fmt.Errorf("hiddev: claim interface: %w", err)
	}

	var epIn *gousb.InEndpoint
	var epOut *gousb.OutEndpoint
	for _, e := range iface.Setting.Endpoints {
		if e.TransferType != gousb.TransferTypeInterrupt {
			continue
		}
		switch e.Direction {
		case gousb.EndpointDirectionIn:
			if epIn == nil {
				epIn, err = iface.InEndpoint(e.Number)
			}
		case gousb.EndpointDirectionOut:
			if epOut == nil {
				epOut, err = iface.OutEndpoint(e.Number)
			}
		}
		if err != nil {
			iface.Close()
			cfg.Close()
			return nil, fmt.Errorf("hiddev: endpoint %d: %w", e.Number, err)
		}
	}
	if epIn == nil || epOut == nil {
		iface.Close()
		cfg.Close()
		return nil, errors.New("hiddev: interrupt endpoint pair not found")
	}

	return &Device{
		logger: logger.With("product", dev.Desc.Product.String()),
		dev:    dev,
		iface:  iface,
		cfg:    cfg,
		epIn:   epIn,
		epOut:  epOut,
	}, nil
}

// Product returns the USB product ID, which pre-selects the expected kind
// before the device-info subcommand confirms it.
func (d *Device) Product() gousb.ID {
	return d.dev.Desc.Product
}

func (d *Device) Write(buf []byte) error {
	_, err := d.epOut.Write(buf)
	return err
}

// SetBaud is meaningless on USB.
func (d *Device) SetBaud(rate int) error { return nil }

func (d *Device) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	d.mu.Unlock()

	d.iface.Close()
	d.cfg.Close()
	return d.dev.Close()
}

// ReadLoop pumps interrupt transfers into recv until the device is closed
// or unplugs. Run it on its own goroutine.
func (d *Device) ReadLoop(recv func([]byte)) {
	buf := make([]byte, d.epIn.Desc.MaxPacketSize)
	for {
		n, err := d.epIn.Read(buf)
		if err != nil {
			d.mu.Lock()
			closed := d.closed
			d.mu.Unlock()
			if !closed {
				d.logger.Debug("usb read failed", "error", err)
			}
			return
		}
		if n > 0 {
			recv(buf[:n])
		}
	}
}
