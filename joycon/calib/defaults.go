package calib

// Substitute calibration used when the flash read fails or decodes to an
// unusable triple. The two transport variants of the hardware ship slightly
// different factory curves, so each keeps its own defaults; pick the set
// matching the attached transport, do not mix them.

// DefaultsHID is the fallback stick range for USB/Bluetooth controllers.
var DefaultsHID = AxisCal{Min: 500, Center: 2000, Max: 3500}

// DefaultsUART is the fallback stick range for rail-attached controllers.
var DefaultsUART = AxisCal{Min: 600, Center: 2000, Max: 3400}

// DefaultStick builds a full-stick fallback from a per-variant axis default.
func DefaultStick(axis AxisCal) StickCal {
	return StickCal{X: axis, Y: axis}
}

// IMU defaults. The accelerometer runs at +-8g, about 4096 digits per g, so
// a full-scale default of 16384. The gyroscope default folds in the 1.15
// datasheet sensitivity correction and the internal 1000x rescale that keeps
// precision through the integer math; the usable range across units is
// roughly 13371..14247.
const (
	DefaultAccelOffset int16 = 0
	DefaultAccelScale  int16 = 16384

	DefaultGyroOffset int16 = 0
	DefaultGyroScale  int16 = 13371
)

// DefaultIMU returns the substitute IMU calibration.
func DefaultIMU() IMUCal {
	var c IMUCal
	for i := 0; i < 3; i++ {
		c.AccelOffset[i] = DefaultAccelOffset
		c.AccelScale[i] = DefaultAccelScale
		c.GyroOffset[i] = DefaultGyroOffset
		c.GyroScale[i] = DefaultGyroScale
	}
	c.precompute()
	return c
}
