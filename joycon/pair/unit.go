package pair

import (
	"sync"

	"github.com/Alia5/joycore/joycon"
	"github.com/Alia5/joycore/joycon/imu"
)

// Half is the slice of a controller the pairing layer needs. Production code
// hands in *joycon.Controller via Registry.Hooks.
type Half interface {
	Kind() joycon.Kind
	Snapshot() joycon.Snapshot
	SetPlayerLights(pattern byte) error
}

// Unit is one logical gamepad built from one or two controllers. It owns the
// diffing of merged state into discrete events: a button event fires only on
// a transition and a stick event only when the merged value changes.
type Unit struct {
	Mode   Mode
	Player int

	left  Half
	right Half
	out   Output

	leftMap  buttonMap
	rightMap buttonMap

	mu          sync.Mutex
	prevButtons uint32
	prevAxes    [axisCount]int32
}

func newUnit(mode Mode, player int, left, right Half, out Output) *Unit {
	u := &Unit{
		Mode:   mode,
		Player: player,
		left:   left,
		right:  right,
		out:    out,
	}
	u.leftMap, u.rightMap = mapsFor(mode)
	return u
}

// Halves returns the members, nil where the slot is empty.
func (u *Unit) Halves() (left, right Half) {
	return u.left, u.right
}

// publish recomputes the merged logical state from both halves and emits
// the delta. Called from a controller's receive path on every input report.
func (u *Unit) publish() {
	logical, axes := u.merge()

	u.mu.Lock()
	changed := logical ^ u.prevButtons
	u.prevButtons = logical
	var axisChanged [axisCount]bool
	for i := range axes {
		if axes[i] != u.prevAxes[i] {
			axisChanged[i] = true
			u.prevAxes[i] = axes[i]
		}
	}
	u.mu.Unlock()

	for b := Button(0); b < buttonCount; b++ {
		if changed&(1<<uint(b)) != 0 {
			u.out.ButtonEvent(b, logical&(1<<uint(b)) != 0)
		}
	}
	for a := Axis(0); a < axisCount; a++ {
		if axisChanged[a] {
			u.out.StickEvent(a, axes[a])
		}
	}
}

func (u *Unit) merge() (logical uint32, axes [axisCount]int32) {
	if u.left != nil {
		s := u.left.Snapshot()
		logical |= u.leftMap.translate(s.Buttons)
		switch u.Mode {
		case ModeLeftSolo:
			// Held sideways the stick rotates a quarter turn clockwise.
			axes[AxisLX] = s.Stick[0][1]
			axes[AxisLY] = -s.Stick[0][0]
		case ModePro:
			axes[AxisLX] = s.Stick[0][0]
			axes[AxisLY] = s.Stick[0][1]
			axes[AxisRX] = s.Stick[1][0]
			axes[AxisRY] = s.Stick[1][1]
		default:
			axes[AxisLX] = s.Stick[0][0]
			axes[AxisLY] = s.Stick[0][1]
		}
	}
	if u.right != nil {
		s := u.right.Snapshot()
		logical |= u.rightMap.translate(s.Buttons)
		if u.Mode == ModeRightSolo {
			// Quarter turn counterclockwise, and the lone stick drives
			// the primary axes.
			axes[AxisLX] = -s.Stick[1][1]
			axes[AxisLY] = s.Stick[1][0]
		} else {
			axes[AxisRX] = s.Stick[1][0]
			axes[AxisRY] = s.Stick[1][1]
		}
	}
	return logical, axes
}

// publishIMU forwards motion samples straight through. With two halves the
// streams are not fused, the sink sees both as they arrive.
func (u *Unit) publishIMU(samples []imu.Sample) {
	u.out.IMUEvent(samples)
}

// publishBattery reports the weaker half so the indicator errs low.
func (u *Unit) publishBattery() {
	var level joycon.BatteryLevel = joycon.BatteryFull
	var charging bool
	seen := false
	for _, h := range []Half{u.left, u.right} {
		if h == nil {
			continue
		}
		s := h.Snapshot()
		if !seen || s.Battery < level {
			level = s.Battery
		}
		charging = charging || s.Charging
		seen = true
	}
	if seen {
		u.out.BatteryEvent(level, charging)
	}
}

func (u *Unit) close() error {
	return u.out.Close()
}
