package pair

import (
	"log/slog"
	"sync"

	"github.com/Alia5/joycore/joycon"
	"github.com/Alia5/joycore/joycon/imu"
)

// maxPlayers is how many indicator slots the hardware LEDs can show.
const maxPlayers = 4

type memberStatus int

const (
	statusIdle memberStatus = iota
	statusSeeking
	statusPaired
)

type member struct {
	id     int
	h      Half
	status memberStatus
	unit   *Unit
}

// Registry tracks streaming controllers and forms units out of them. One
// mutex guards all matching state; it is only ever held for short
// check-and-mutate sections, never across an output factory call or any
// controller I/O.
type Registry struct {
	logger  *slog.Logger
	factory OutputFactory

	mu      sync.Mutex
	nextID  int
	members map[Half]*member
	players [maxPlayers]bool
}

func NewRegistry(logger *slog.Logger, factory OutputFactory) *Registry {
	return &Registry{
		logger:  logger,
		factory: factory,
		members: make(map[Half]*member),
	}
}

// Hooks returns the controller hook set that routes into this registry.
// Install it in the controller config before Start.
func (r *Registry) Hooks() joycon.Hooks {
	return joycon.Hooks{
		OnStreaming: func(c *joycon.Controller) { r.Streaming(c) },
		OnDetach:    func(c *joycon.Controller) { r.Detach(c) },
		OnInput:     func(c *joycon.Controller) { r.Input(c) },
		OnIMU: func(c *joycon.Controller, samples []imu.Sample) {
			r.IMU(c, samples)
		},
		OnBattery: func(c *joycon.Controller, level joycon.BatteryLevel, charging bool) {
			r.Battery(c)
		},
		OnGesture: func(c *joycon.Controller, g joycon.Gesture) {
			r.Gesture(c, g)
		},
	}
}

// Units returns a snapshot of the currently formed units.
func (r *Registry) Units() []*Unit {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := make(map[*Unit]bool)
	var units []*Unit
	for _, m := range r.members {
		if m.unit != nil && !seen[m.unit] {
			seen[m.unit] = true
			units = append(units, m.unit)
		}
	}
	return units
}

// Streaming registers a controller that reached the streaming state. Full
// pads need no partner and no gesture, they become a unit at once.
func (r *Registry) Streaming(h Half) {
	kind := h.Kind()

	r.mu.Lock()
	if _, ok := r.members[h]; ok {
		r.mu.Unlock()
		return
	}
	r.nextID++
	m := &member{id: r.nextID, h: h}
	r.members[h] = m
	r.mu.Unlock()

	r.logger.Info("controller streaming", "kind", kind.String(), "id", m.id)

	if kind == joycon.KindProCon || kind == joycon.KindClone {
		r.mu.Lock()
		m.status = statusPaired
		r.mu.Unlock()
		r.formUnit(ModePro, m, nil)
	}
}

// Gesture reacts to a combination gesture on an unpaired half. Gestures on
// paired or unknown members are ignored.
func (r *Registry) Gesture(h Half, g joycon.Gesture) {
	kind := h.Kind()

	r.mu.Lock()
	m := r.members[h]
	if m == nil || m.status == statusPaired {
		r.mu.Unlock()
		return
	}
	switch g {
	case joycon.GestureSolo:
		m.status = statusPaired // reserve before the factory runs
		r.mu.Unlock()
		mode := ModeLeftSolo
		if kind == joycon.KindJoyConRight {
			mode = ModeRightSolo
		}
		r.formUnit(mode, m, nil)
	case joycon.GestureSearch:
		m.status = statusSeeking
		partner := r.findPartnerLocked(m, kind)
		if partner == nil {
			r.mu.Unlock()
			r.logger.Debug("seeking partner", "id", m.id, "kind", kind.String())
			return
		}
		m.status = statusPaired
		partner.status = statusPaired
		r.mu.Unlock()
		left, right := m, partner
		if kind == joycon.KindJoyConRight {
			left, right = partner, m
		}
		r.formUnit(ModeCombined, left, right)
	default:
		r.mu.Unlock()
	}
}

// findPartnerLocked picks the longest-waiting seeker of the opposite side.
// Caller holds r.mu.
func (r *Registry) findPartnerLocked(m *member, kind joycon.Kind) *member {
	var best *member
	for _, o := range r.members {
		if o == m || o.status != statusSeeking {
			continue
		}
		if (kind == joycon.KindJoyConLeft) == (o.h.Kind() == joycon.KindJoyConLeft) {
			continue
		}
		if best == nil || o.id < best.id {
			best = o
		}
	}
	return best
}

// formUnit builds the output sink and commits the unit. The members are
// already reserved (statusPaired) by the caller; on factory failure they
// roll back to idle.
func (r *Registry) formUnit(mode Mode, left, right *member) {
	player := r.claimPlayer()

	out, err := r.factory(mode, player)
	if err != nil {
		r.logger.Error("output setup failed", "mode", mode.String(), "error", err)
		r.mu.Lock()
		for _, m := range []*member{left, right} {
			if m != nil {
				m.status = statusIdle
			}
		}
		r.releasePlayerLocked(player)
		r.mu.Unlock()
		return
	}

	var lh, rh Half
	if left != nil {
		lh = left.h
	}
	if right != nil {
		rh = right.h
	}
	u := newUnit(mode, player, lh, rh, out)

	r.mu.Lock()
	for _, m := range []*member{left, right} {
		if m != nil {
			m.unit = u
		}
	}
	r.mu.Unlock()

	r.logger.Info("unit formed", "mode", mode.String(), "player", player)

	// Show the assigned slot on the halves themselves. Best effort, the
	// unit works whether or not the LEDs took.
	var pattern byte
	if player >= 1 && player <= maxPlayers {
		pattern = 1 << uint(player-1)
	}
	for _, h := range []Half{lh, rh} {
		if h == nil {
			continue
		}
		if err := h.SetPlayerLights(pattern); err != nil {
			r.logger.Debug("player lights", "error", err)
		}
	}
}

// Detach removes a controller. Its unit, if any, is torn down and a
// surviving partner goes back to searching.
func (r *Registry) Detach(h Half) {
	r.mu.Lock()
	m := r.members[h]
	if m == nil {
		r.mu.Unlock()
		return
	}
	delete(r.members, h)
	u := m.unit
	var survivor *member
	if u != nil {
		r.releasePlayerLocked(u.Player)
		for _, o := range r.members {
			if o.unit == u {
				o.unit = nil
				o.status = statusSeeking
				survivor = o
			}
		}
	}
	r.mu.Unlock()

	r.logger.Info("controller detached", "id", m.id)
	if u != nil {
		if err := u.close(); err != nil {
			r.logger.Debug("output close", "error", err)
		}
	}
	if survivor != nil {
		// The widowed half may pair again right away if a matching
		// seeker is already waiting.
		r.Gesture(survivor.h, joycon.GestureSearch)
	}
}

// Input forwards an input report to the owning unit, if any.
func (r *Registry) Input(h Half) {
	if u := r.unitFor(h); u != nil {
		u.publish()
	}
}

// IMU forwards motion samples to the owning unit, if any.
func (r *Registry) IMU(h Half, samples []imu.Sample) {
	if u := r.unitFor(h); u != nil {
		u.publishIMU(samples)
	}
}

// Battery refreshes the merged battery indication of the owning unit.
func (r *Registry) Battery(h Half) {
	if u := r.unitFor(h); u != nil {
		u.publishBattery()
	}
}

func (r *Registry) unitFor(h Half) *Unit {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m := r.members[h]; m != nil {
		return m.unit
	}
	return nil
}

func (r *Registry) claimPlayer() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.players {
		if !r.players[i] {
			r.players[i] = true
			return i + 1
		}
	}
	return 0
}

// releasePlayerLocked frees an indicator slot. Caller holds r.mu.
func (r *Registry) releasePlayerLocked(player int) {
	if player >= 1 && player <= maxPlayers {
		r.players[player-1] = false
	}
}
