// Package serdev attaches controllers over a raw serial device, the wiring
// used by rail connectors. It owns the tty configuration and the read loop;
// framing and protocol live in the joycon package.
package serdev

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	"golang.org/x/sys/unix"
)

const readBufSize = 256

// baudBits maps the rates the protocol negotiates onto termios constants.
// Anything else is a caller bug.
var baudBits = map[int]uint32{
	1000000: unix.B1000000,
	3000000: unix.B3000000,
}

// Port is one open serial device implementing joycon.Transport. Reads run
// on a dedicated goroutine started by ReadLoop.
type Port struct {
	logger *slog.Logger
	f      *os.File

	mu     sync.Mutex
	closed bool
}

// Open configures path as a raw 8N1 tty at the detection rate.
func Open(path string, logger *slog.Logger) (*Port, error) {
	f, err := os.OpenFile(path, os.O_RDWR|unix.O_NOCTTY, 0)
	if err != nil {
		return nil, fmt.Errorf("serdev: open %s: %w", path, err)
	}
	p := &Port{logger: logger, f: f}
	if err := p.SetBaud(1000000); err != nil {
		f.Close()
		return nil, err
	}
	return p, nil
}

// SetBaud reconfigures the line rate, keeping the raw 8N1 setup.
func (p *Port) SetBaud(rate int) error {
	bits, ok := baudBits[rate]
	if !ok {
		return fmt.Errorf("serdev: unsupported baud rate %d", rate)
	}

	fd := int(p.f.Fd())
	t, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		return fmt.Errorf("serdev: get termios: %w", err)
	}

	// Raw mode: no line discipline, no flow control, 8 data bits.
	t.Iflag &^= unix.IGNBRK | unix.BRKINT | unix.PARMRK | unix.ISTRIP |
		unix.INLCR | unix.IGNCR | unix.ICRNL | unix.IXON
	t.Oflag &^= unix.OPOST
	t.Lflag &^= unix.ECHO | unix.ECHONL | unix.ICANON | unix.ISIG | unix.IEXTEN
	t.Cflag &^= unix.CSIZE | unix.PARENB | unix.CSTOPB | unix.CBAUD
	t.Cflag |= unix.CS8 | unix.CREAD | unix.CLOCAL | bits
	t.Ispeed = bits
	t.Ospeed = bits

	// Block until at least one byte is available, no inter-byte timer.
	t.Cc[unix.VMIN] = 1
	t.Cc[unix.VTIME] = 0

	if err := unix.IoctlSetTermios(fd, unix.TCSETS, t); err != nil {
		return fmt.Errorf("serdev: set termios: %w", err)
	}
	if err := unix.IoctlSetInt(fd, unix.TCFLSH, unix.TCIOFLUSH); err != nil {
		p.logger.Debug("tty flush failed", "error", err)
	}
	return nil
}

func (p *Port) Write(buf []byte) error {
	_, err := p.f.Write(buf)
	return err
}

func (p *Port) Close() error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	return p.f.Close()
}

// ReadLoop pumps received bytes into recv until the port is closed. Run it
// on its own goroutine; recv is the controller's Receive method.
func (p *Port) ReadLoop(recv func([]byte)) {
	buf := make([]byte, readBufSize)
	for {
		n, err := p.f.Read(buf)
		if err != nil {
			p.mu.Lock()
			closed := p.closed
			p.mu.Unlock()
			if !closed {
				p.logger.Debug("serial read failed", "error", err)
			}
			return
		}
		if n > 0 {
			recv(buf[:n])
		}
	}
}
