package calib

import (
	"encoding/binary"
	"fmt"
)

// IMUBlobLen is the size of the factory IMU calibration blob: three int16
// offsets and three int16 scales for the accelerometer, then the same for
// the gyroscope, little-endian.
const IMUBlobLen = 24

// IMUCal holds per-axis offset and scale for both sensors. The divisors are
// precomputed once at decode time so the per-sample path is two multiplies
// and a divide.
type IMUCal struct {
	AccelOffset [3]int16
	AccelScale  [3]int16
	GyroOffset  [3]int16
	GyroScale   [3]int16

	accelDiv [3]int32
	gyroDiv  [3]int32
}

func (c *IMUCal) precompute() {
	for i := 0; i < 3; i++ {
		c.accelDiv[i] = int32(c.AccelScale[i]) - int32(c.AccelOffset[i])
		c.gyroDiv[i] = int32(c.GyroScale[i]) - int32(c.GyroOffset[i])
		if c.accelDiv[i] == 0 {
			c.accelDiv[i] = 1
		}
		if c.gyroDiv[i] == 0 {
			c.gyroDiv[i] = 1
		}
	}
}

// DecodeIMU unpacks the 24-byte IMU calibration blob. An all-0xFF blob is an
// unprogrammed user page and an all-zero blob an erased one; both are
// rejected so the caller falls back to DefaultIMU.
func DecodeIMU(data []byte) (IMUCal, error) {
	if len(data) < IMUBlobLen {
		return IMUCal{}, fmt.Errorf("%w: imu blob is %d bytes, want %d", ErrCalibrationUnavailable, len(data), IMUBlobLen)
	}
	var c IMUCal
	allZero, allFF := true, true
	for _, b := range data[:IMUBlobLen] {
		if b != 0x00 {
			allZero = false
		}
		if b != 0xFF {
			allFF = false
		}
	}
	if allZero || allFF {
		return IMUCal{}, fmt.Errorf("%w: blank imu calibration page", ErrCalibrationUnavailable)
	}
	for i := 0; i < 3; i++ {
		c.AccelOffset[i] = int16(binary.LittleEndian.Uint16(data[i*2:]))
		c.AccelScale[i] = int16(binary.LittleEndian.Uint16(data[6+i*2:]))
		c.GyroOffset[i] = int16(binary.LittleEndian.Uint16(data[12+i*2:]))
		c.GyroScale[i] = int16(binary.LittleEndian.Uint16(data[18+i*2:]))
	}
	c.precompute()
	return c, nil
}

// ScaleAccel converts a raw accelerometer sample on the given axis.
func (c *IMUCal) ScaleAccel(axis int, raw int16) int32 {
	return int32(raw) * int32(c.AccelScale[axis]) / c.accelDiv[axis]
}

// ScaleGyro converts a raw gyroscope sample on the given axis.
func (c *IMUCal) ScaleGyro(axis int, raw int16) int32 {
	return (int32(raw) - int32(c.GyroOffset[axis])) * int32(c.GyroScale[axis]) / c.gyroDiv[axis]
}
