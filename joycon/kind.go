package joycon

import "github.com/Alia5/joycore/joycon/calib"

// Kind is the tagged controller variant. Per-kind behavior lives in one
// table instead of switch statements scattered over every call site.
type Kind int

const (
	KindUnknown Kind = iota
	KindJoyConLeft
	KindJoyConRight
	KindProCon
	KindClone
)

func (k Kind) String() string {
	switch k {
	case KindJoyConLeft:
		return "joycon-left"
	case KindJoyConRight:
		return "joycon-right"
	case KindProCon:
		return "procon"
	case KindClone:
		return "clone"
	}
	return "unknown"
}

// behavior is the per-kind capability and defaults table.
type behavior struct {
	// negotiateBaud: genuine devices switch to the fast rate after the
	// MAC read; clones stay at the detection rate.
	negotiateBaud bool
	// fetchCalibration: read stick/IMU calibration from flash. Clones
	// answer SPI reads unreliably and always run on defaults.
	fetchCalibration bool
	// hasRumble / hasIMU / hasLights gate the enable subcommands and the
	// LED and battery surfaces.
	hasRumble bool
	hasIMU    bool
	hasLights bool

	// hasLeftStick / hasRightStick select which calibration blobs exist.
	hasLeftStick  bool
	hasRightStick bool

	// side is the half this kind represents; meaningless for full pads.
	side calib.Side
}

var kindTable = map[Kind]behavior{
	KindJoyConLeft: {
		negotiateBaud: true, fetchCalibration: true,
		hasRumble: true, hasIMU: true, hasLights: true,
		hasLeftStick: true, side: calib.SideLeft,
	},
	KindJoyConRight: {
		negotiateBaud: true, fetchCalibration: true,
		hasRumble: true, hasIMU: true, hasLights: true,
		hasRightStick: true, side: calib.SideRight,
	},
	KindProCon: {
		negotiateBaud: true, fetchCalibration: true,
		hasRumble: true, hasIMU: true, hasLights: true,
		hasLeftStick: true, hasRightStick: true,
	},
	KindClone: {
		// Reduced path: detection-rate UART, default calibration, no
		// rumble/IMU/lights. Clones rarely implement those subcommands.
		hasLeftStick: true, hasRightStick: true,
	},
}

func kindFromDeviceType(t byte) Kind {
	switch t {
	case DeviceTypeJoyConLeft:
		return KindJoyConLeft
	case DeviceTypeJoyConRight:
		return KindJoyConRight
	case DeviceTypeProCon:
		return KindProCon
	}
	return KindUnknown
}

// IsLeft reports whether this kind carries the left half's controls.
func (k Kind) IsLeft() bool { return k == KindJoyConLeft }

// IsRight reports whether this kind carries the right half's controls.
func (k Kind) IsRight() bool { return k == KindJoyConRight }

// defaultStickAxis picks the per-variant fallback range.
func defaultStickAxis(v Variant) calib.AxisCal {
	if v == VariantUART {
		return calib.DefaultsUART
	}
	return calib.DefaultsHID
}
