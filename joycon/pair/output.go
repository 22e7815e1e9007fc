// Package pair matches half-controllers into logical gamepads and merges
// their input into one event stream. The registry is injected state, not a
// package global: everything that pairs goes through one Registry instance,
// which makes the matching rules testable in isolation.
package pair

import (
	"github.com/Alia5/joycore/joycon"
	"github.com/Alia5/joycore/joycon/imu"
)

// Button is a logical gamepad button. Physical bit positions map onto these
// differently per mode; the tables in maps.go own that translation.
type Button int

const (
	BtnA Button = iota
	BtnB
	BtnX
	BtnY
	BtnL
	BtnR
	BtnZL
	BtnZR
	BtnMinus
	BtnPlus
	BtnHome
	BtnCapture
	BtnThumbL
	BtnThumbR
	BtnDpadUp
	BtnDpadDown
	BtnDpadLeft
	BtnDpadRight

	buttonCount
)

var buttonNames = [...]string{
	"a", "b", "x", "y", "l", "r", "zl", "zr",
	"minus", "plus", "home", "capture", "thumbl", "thumbr",
	"dpad-up", "dpad-down", "dpad-left", "dpad-right",
}

func (b Button) String() string {
	if int(b) < len(buttonNames) {
		return buttonNames[b]
	}
	return "unknown"
}

// Axis is a logical analog axis. Solo pads only drive the left pair.
type Axis int

const (
	AxisLX Axis = iota
	AxisLY
	AxisRX
	AxisRY

	axisCount
)

// Mode is how a unit presents itself downstream.
type Mode int

const (
	ModeCombined Mode = iota // left half + right half as one pad
	ModeLeftSolo             // left half alone, horizontal
	ModeRightSolo            // right half alone, horizontal
	ModePro                  // full pad, no combination needed
)

func (m Mode) String() string {
	switch m {
	case ModeCombined:
		return "combined"
	case ModeLeftSolo:
		return "left-solo"
	case ModeRightSolo:
		return "right-solo"
	case ModePro:
		return "pro"
	}
	return "unknown"
}

// Output is the event sink for one logical pad. The unit calls it from
// controller receive goroutines; implementations must not block.
type Output interface {
	ButtonEvent(b Button, pressed bool)
	StickEvent(a Axis, value int32)
	BatteryEvent(level joycon.BatteryLevel, charging bool)
	IMUEvent(samples []imu.Sample)
	Close() error
}

// OutputFactory builds the sink for a newly formed unit. player is the
// 1-based indicator slot the registry assigned.
type OutputFactory func(mode Mode, player int) (Output, error)
