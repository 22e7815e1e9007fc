// Package hub owns the live controller set: it assigns IDs, feeds the
// pairing registry, and fans merged input out to event-stream subscribers.
// The API handlers talk to the hub, never to a controller's transport.
package hub

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/Alia5/joycore/apitypes"
	"github.com/Alia5/joycore/joycon"
	"github.com/Alia5/joycore/joycon/imu"
	"github.com/Alia5/joycore/joycon/pair"
	"github.com/Alia5/joycore/joycon/rumble"
)

// eventBufSize is the per-subscriber channel depth. A slow subscriber loses
// events rather than stalling the input path.
const eventBufSize = 64

// ErrNoController is returned for operations targeting an unknown
// controller ID.
var ErrNoController = errors.New("no such controller")

type Hub struct {
	logger *slog.Logger
	reg    *pair.Registry

	mu   sync.Mutex
	next int
	byID map[int]*joycon.Controller
	ids  map[*joycon.Controller]int
	subs map[chan apitypes.Event]struct{}
}

func New(logger *slog.Logger) *Hub {
	h := &Hub{
		logger: logger,
		byID:   make(map[int]*joycon.Controller),
		ids:    make(map[*joycon.Controller]int),
		subs:   make(map[chan apitypes.Event]struct{}),
	}
	h.reg = pair.NewRegistry(logger, h.newOutput)
	return h
}

// Registry exposes the pairing registry, mainly for tests.
func (h *Hub) Registry() *pair.Registry { return h.reg }

// Hooks builds the controller hook set: pairing first, then hub bookkeeping
// and event publication.
func (h *Hub) Hooks() joycon.Hooks {
	rh := h.reg.Hooks()
	return joycon.Hooks{
		OnStreaming: func(c *joycon.Controller) {
			id := h.add(c)
			rh.OnStreaming(c)
			h.publish(apitypes.Event{
				Type:       "streaming",
				Controller: id,
				Kind:       c.Kind().String(),
			})
		},
		OnDetach: func(c *joycon.Controller) {
			rh.OnDetach(c)
			id := h.remove(c)
			h.publish(apitypes.Event{Type: "detach", Controller: id})
		},
		OnInput:   rh.OnInput,
		OnIMU:     rh.OnIMU,
		OnBattery: rh.OnBattery,
		OnGesture: rh.OnGesture,
	}
}

func (h *Hub) add(c *joycon.Controller) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	if id, ok := h.ids[c]; ok {
		return id
	}
	h.next++
	h.byID[h.next] = c
	h.ids[c] = h.next
	return h.next
}

func (h *Hub) remove(c *joycon.Controller) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.ids[c]
	delete(h.byID, id)
	delete(h.ids, c)
	return id
}

func (h *Hub) idOf(half pair.Half) int {
	c, ok := half.(*joycon.Controller)
	if !ok {
		return 0
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.ids[c]
}

// Controllers lists every streaming controller.
func (h *Hub) Controllers() []apitypes.Controller {
	h.mu.Lock()
	ordered := make([]int, 0, len(h.byID))
	for id := range h.byID {
		ordered = append(ordered, id)
	}
	h.mu.Unlock()
	sort.Ints(ordered)

	out := make([]apitypes.Controller, 0, len(ordered))
	for _, id := range ordered {
		h.mu.Lock()
		c := h.byID[id]
		h.mu.Unlock()
		if c == nil {
			continue
		}
		snap := c.Snapshot()
		mac := c.MAC()
		out = append(out, apitypes.Controller{
			ID:    id,
			Kind:  c.Kind().String(),
			State: c.State().String(),
			MAC: fmt.Sprintf("%02X:%02X:%02X:%02X:%02X:%02X",
				mac[0], mac[1], mac[2], mac[3], mac[4], mac[5]),
			Battery:  snap.Battery.String(),
			Charging: snap.Charging,
		})
	}
	return out
}

// Units lists the formed logical gamepads.
func (h *Hub) Units() []apitypes.Unit {
	units := h.reg.Units()
	out := make([]apitypes.Unit, 0, len(units))
	for _, u := range units {
		info := apitypes.Unit{
			Mode:   u.Mode.String(),
			Player: u.Player,
		}
		l, r := u.Halves()
		for _, half := range []pair.Half{l, r} {
			if half == nil {
				continue
			}
			if id := h.idOf(half); id != 0 {
				info.Controllers = append(info.Controllers, id)
			}
		}
		out = append(out, info)
	}
	return out
}

func (h *Hub) controller(id int) (*joycon.Controller, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c, ok := h.byID[id]
	return c, ok
}

// Rumble applies one vibration state to both actuators of a controller.
func (h *Hub) Rumble(id int, req apitypes.RumbleRequest) error {
	c, ok := h.controller(id)
	if !ok {
		return fmt.Errorf("controller %d: %w", id, ErrNoController)
	}
	ch := rumble.Channel{
		LowFreqHz:  req.LowFreq,
		HighFreqHz: req.HighFreq,
		Amp:        req.Amp,
	}
	return c.SetRumble(rumble.State{Left: ch, Right: ch})
}

// SetLights applies a player indicator pattern to a controller.
func (h *Hub) SetLights(id int, pattern byte) error {
	c, ok := h.controller(id)
	if !ok {
		return fmt.Errorf("controller %d: %w", id, ErrNoController)
	}
	return c.SetPlayerLights(pattern)
}

// SetHomeLight applies a home button light intensity to a controller.
func (h *Hub) SetHomeLight(id int, intensity byte) error {
	c, ok := h.controller(id)
	if !ok {
		return fmt.Errorf("controller %d: %w", id, ErrNoController)
	}
	return c.SetHomeLight(intensity)
}

// Subscribe registers an event stream consumer. The returned cancel func
// must be called when the consumer goes away.
func (h *Hub) Subscribe() (<-chan apitypes.Event, func()) {
	ch := make(chan apitypes.Event, eventBufSize)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	cancel := func() {
		h.mu.Lock()
		delete(h.subs, ch)
		h.mu.Unlock()
	}
	return ch, cancel
}

// publish fans an event out without ever blocking the caller. Full
// subscriber buffers drop the event.
func (h *Hub) publish(ev apitypes.Event) {
	h.mu.Lock()
	for ch := range h.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	h.mu.Unlock()
}

// newOutput is the pairing registry's output factory: each formed unit
// publishes its merged input into the hub's event stream.
func (h *Hub) newOutput(mode pair.Mode, player int) (pair.Output, error) {
	h.logger.Info("unit output created", "mode", mode.String(), "player", player)
	return &streamOutput{hub: h, mode: mode.String(), player: player}, nil
}

// streamOutput adapts a logical pad to the event stream. Motion samples are
// deliberately not serialized here; at full rate they would swamp a JSON
// line stream.
type streamOutput struct {
	hub    *Hub
	mode   string
	player int
}

func (o *streamOutput) ButtonEvent(b pair.Button, pressed bool) {
	o.hub.publish(apitypes.Event{
		Type: "button", Player: o.player, Mode: o.mode,
		Button: b.String(), Pressed: pressed,
	})
}

func (o *streamOutput) StickEvent(a pair.Axis, value int32) {
	o.hub.publish(apitypes.Event{
		Type: "stick", Player: o.player, Mode: o.mode,
		Axis: axisName(a), Value: value,
	})
}

func (o *streamOutput) BatteryEvent(level joycon.BatteryLevel, charging bool) {
	o.hub.publish(apitypes.Event{
		Type: "battery", Player: o.player, Mode: o.mode,
		Battery: level.String(), Charging: charging,
	})
}

func (o *streamOutput) IMUEvent(samples []imu.Sample) {}

func (o *streamOutput) Close() error {
	o.hub.publish(apitypes.Event{Type: "unit-closed", Player: o.player, Mode: o.mode})
	return nil
}

func axisName(a pair.Axis) string {
	switch a {
	case pair.AxisLX:
		return "lx"
	case pair.AxisLY:
		return "ly"
	case pair.AxisRX:
		return "rx"
	case pair.AxisRY:
		return "ry"
	}
	return "unknown"
}
