// Package calib decodes controller flash calibration blobs and converts raw
// ADC samples into the normalized ranges consumers expect.
package calib

import (
	"errors"
	"fmt"
)

// ErrCalibrationUnavailable reports a flash read that failed or produced
// invalid data. Callers fall back to the per-variant defaults and keep going.
var ErrCalibrationUnavailable = errors.New("calib: calibration unavailable")

// StickBlobLen is the size of one stick's factory calibration blob: three
// 12-bit fields per axis, two axes, nibble packed.
const StickBlobLen = 9

// MappedMax is the magnitude of a fully deflected mapped stick axis.
const MappedMax = 32767

// RawMax is the largest raw ADC value a stick axis can produce.
const RawMax = 4095

// AxisCal is the calibrated range of one analog stick axis. The physical
// center is rarely equidistant from the endpoints, so Min and Max are kept
// separately instead of a single half-range.
type AxisCal struct {
	Min    uint16
	Center uint16
	Max    uint16
}

// Valid reports whether the triple can be used for mapping. An all-zero
// triple is what an unprogrammed flash page decodes to.
func (a AxisCal) Valid() bool {
	return a.Min < a.Center && a.Center < a.Max
}

// StickCal is the calibrated range of one analog stick.
type StickCal struct {
	X AxisCal
	Y AxisCal
}

func (s StickCal) Valid() bool {
	return s.X.Valid() && s.Y.Valid()
}

// extract12 pulls the n-th 12-bit little-endian field out of a nibble-packed
// blob.
func extract12(data []byte, n int) uint16 {
	off := n * 3 / 2
	if n%2 == 0 {
		return uint16(data[off]) | uint16(data[off+1]&0x0F)<<8
	}
	return uint16(data[off])>>4 | uint16(data[off+1])<<4
}

// DecodeStick unpacks a 9-byte stick calibration blob. The left and right
// stick store the same six fields in a different order by hardware design:
// the left stick leads with the max-above-center deltas, the right stick
// with the center values.
func DecodeStick(data []byte, side Side) (StickCal, error) {
	if len(data) < StickBlobLen {
		return StickCal{}, fmt.Errorf("%w: stick blob is %d bytes, want %d", ErrCalibrationUnavailable, len(data), StickBlobLen)
	}

	var xMaxAbove, yMaxAbove, xCenter, yCenter, xMinBelow, yMinBelow uint16
	switch side {
	case SideLeft:
		xMaxAbove = extract12(data, 0)
		yMaxAbove = extract12(data, 1)
		xCenter = extract12(data, 2)
		yCenter = extract12(data, 3)
		xMinBelow = extract12(data, 4)
		yMinBelow = extract12(data, 5)
	case SideRight:
		xCenter = extract12(data, 0)
		yCenter = extract12(data, 1)
		xMinBelow = extract12(data, 2)
		yMinBelow = extract12(data, 3)
		xMaxAbove = extract12(data, 4)
		yMaxAbove = extract12(data, 5)
	default:
		return StickCal{}, fmt.Errorf("%w: unknown stick side %d", ErrCalibrationUnavailable, side)
	}

	cal := StickCal{
		X: AxisCal{Min: xCenter - xMinBelow, Center: xCenter, Max: xCenter + xMaxAbove},
		Y: AxisCal{Min: yCenter - yMinBelow, Center: yCenter, Max: yCenter + yMaxAbove},
	}
	if !cal.Valid() {
		return StickCal{}, fmt.Errorf("%w: decoded triple fails min<center<max check", ErrCalibrationUnavailable)
	}
	return cal, nil
}

// Map converts a raw ADC sample into [-32767, 32767] using the two-segment
// linear mapping: values above center scale against (max-center), values
// below against (center-min).
func Map(cal AxisCal, raw uint16) int32 {
	if !cal.Valid() {
		return 0
	}
	var v int32
	if raw > cal.Center {
		v = int32(raw-cal.Center) * MappedMax / int32(cal.Max-cal.Center)
	} else {
		v = -(int32(cal.Center-raw) * MappedMax / int32(cal.Center-cal.Min))
	}
	if v > MappedMax {
		return MappedMax
	}
	if v < -MappedMax {
		return -MappedMax
	}
	return v
}

// Side selects a physical half-controller.
type Side int

const (
	SideLeft Side = iota
	SideRight
)

func (s Side) String() string {
	switch s {
	case SideLeft:
		return "left"
	case SideRight:
		return "right"
	}
	return "unknown"
}
