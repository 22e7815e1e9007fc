package calib_test

import (
	"testing"

	"github.com/Alia5/joycore/joycon/calib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pack12 builds a nibble-packed blob from six 12-bit fields.
func pack12(fields [6]uint16) []byte {
	out := make([]byte, 9)
	for n, v := range fields {
		off := n * 3 / 2
		if n%2 == 0 {
			out[off] |= byte(v)
			out[off+1] |= byte(v>>8) & 0x0F
		} else {
			out[off] |= byte(v&0x0F) << 4
			out[off+1] = byte(v >> 4)
		}
	}
	return out
}

func TestDecodeStickLeft(t *testing.T) {
	// maxAboveX, maxAboveY, centerX, centerY, minBelowX, minBelowY
	blob := pack12([6]uint16{1500, 1400, 2100, 1900, 1600, 1300})
	cal, err := calib.DecodeStick(blob, calib.SideLeft)
	require.NoError(t, err)

	assert.Equal(t, calib.AxisCal{Min: 500, Center: 2100, Max: 3600}, cal.X)
	assert.Equal(t, calib.AxisCal{Min: 600, Center: 1900, Max: 3300}, cal.Y)
}

func TestDecodeStickRightFieldOrderSwapped(t *testing.T) {
	// centerX, centerY, minBelowX, minBelowY, maxAboveX, maxAboveY
	blob := pack12([6]uint16{2100, 1900, 1600, 1300, 1500, 1400})
	cal, err := calib.DecodeStick(blob, calib.SideRight)
	require.NoError(t, err)

	assert.Equal(t, calib.AxisCal{Min: 500, Center: 2100, Max: 3600}, cal.X)
	assert.Equal(t, calib.AxisCal{Min: 600, Center: 1900, Max: 3300}, cal.Y)
}

func TestDecodeStickRejectsBlankBlob(t *testing.T) {
	_, err := calib.DecodeStick(make([]byte, calib.StickBlobLen), calib.SideLeft)
	assert.ErrorIs(t, err, calib.ErrCalibrationUnavailable)
}

func TestMapEndpointsAndCenter(t *testing.T) {
	cases := []calib.AxisCal{
		{Min: 500, Center: 2000, Max: 3500},
		{Min: 600, Center: 2000, Max: 3400},
		{Min: 100, Center: 3000, Max: 4000}, // heavily off-center
		{Min: 0, Center: 1, Max: 4095},
	}
	for _, cal := range cases {
		assert.Equal(t, int32(0), calib.Map(cal, cal.Center))
		assert.Equal(t, int32(calib.MappedMax), calib.Map(cal, cal.Max))
		assert.Equal(t, int32(-calib.MappedMax), calib.Map(cal, cal.Min))
	}
}

func TestMapBoundedOverFullRawRange(t *testing.T) {
	cal := calib.AxisCal{Min: 700, Center: 2050, Max: 3300}
	prev := int32(-calib.MappedMax - 1)
	for raw := 0; raw <= calib.RawMax; raw++ {
		v := calib.Map(cal, uint16(raw))
		assert.GreaterOrEqual(t, v, int32(-calib.MappedMax))
		assert.LessOrEqual(t, v, int32(calib.MappedMax))
		assert.GreaterOrEqual(t, v, prev, "mapping must be monotonic at raw=%d", raw)
		prev = v
	}
}

func TestDecodeIMURoundsThroughScaling(t *testing.T) {
	blob := make([]byte, calib.IMUBlobLen)
	// accel offsets 100,-50,0; scales 16384 each
	le := func(off int, v int16) {
		blob[off] = byte(v)
		blob[off+1] = byte(uint16(v) >> 8)
	}
	le(0, 100)
	le(2, -50)
	le(4, 0)
	for i := 0; i < 3; i++ {
		le(6+i*2, 16384)
	}
	// gyro offsets 10,20,30; scales 13371
	le(12, 10)
	le(14, 20)
	le(16, 30)
	for i := 0; i < 3; i++ {
		le(18+i*2, 13371)
	}

	cal, err := calib.DecodeIMU(blob)
	require.NoError(t, err)

	// divisor = scale - offset, precomputed
	assert.Equal(t, int32(1000)*16384/(16384-100), cal.ScaleAccel(0, 1000))
	assert.Equal(t, int32(1000-10)*13371/(13371-10), cal.ScaleGyro(0, 1000))
	// gyro at rest reads its offset: output must be exactly zero
	assert.Equal(t, int32(0), cal.ScaleGyro(1, 20))
}

func TestDecodeIMURejectsBlankPages(t *testing.T) {
	_, err := calib.DecodeIMU(make([]byte, calib.IMUBlobLen))
	assert.ErrorIs(t, err, calib.ErrCalibrationUnavailable)

	ff := make([]byte, calib.IMUBlobLen)
	for i := range ff {
		ff[i] = 0xFF
	}
	_, err = calib.DecodeIMU(ff)
	assert.ErrorIs(t, err, calib.ErrCalibrationUnavailable)
}

func TestDefaultIMU(t *testing.T) {
	cal := calib.DefaultIMU()
	assert.Equal(t, int32(16384), cal.ScaleAccel(2, 16384))
	assert.Equal(t, int32(13371), cal.ScaleGyro(2, 13371))
}
