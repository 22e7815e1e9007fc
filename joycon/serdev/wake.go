package serdev

import (
	"fmt"
	"log/slog"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// wakePollTimeout bounds one edge wait so the watcher notices Close.
const wakePollTimeout = time.Second

// WakePin watches a controller-detect GPIO line and turns its edges into
// wake notifications for the state machine. Without one the state machine
// polls, which works but keeps the rail awake.
type WakePin struct {
	logger *slog.Logger
	pin    gpio.PinIn
	ch     chan struct{}
	done   chan struct{}
}

// OpenWakePin claims the named GPIO line as a pulled-up edge-triggered
// input. The host drivers are initialized on first use.
func OpenWakePin(name string, logger *slog.Logger) (*WakePin, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("serdev: gpio host init: %w", err)
	}
	pin := gpioreg.ByName(name)
	if pin == nil {
		return nil, fmt.Errorf("serdev: no gpio line named %q", name)
	}
	if err := pin.In(gpio.PullUp, gpio.BothEdges); err != nil {
		return nil, fmt.Errorf("serdev: configure %s: %w", name, err)
	}
	w := &WakePin{
		logger: logger,
		pin:    pin,
		ch:     make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	go w.watch()
	return w, nil
}

// C delivers one token per observed edge. Plug it into the controller
// config's Wake channel.
func (w *WakePin) C() <-chan struct{} { return w.ch }

func (w *WakePin) watch() {
	for {
		select {
		case <-w.done:
			return
		default:
		}
		if !w.pin.WaitForEdge(wakePollTimeout) {
			continue
		}
		w.logger.Debug("wake edge", "pin", w.pin.Name(), "level", w.pin.Read())
		select {
		case w.ch <- struct{}{}:
		default:
		}
	}
}

func (w *WakePin) Close() error {
	close(w.done)
	return w.pin.Halt()
}
