package joycon

import (
	"encoding/binary"
	"time"

	"github.com/Alia5/joycore/joycon/calib"
	"github.com/Alia5/joycore/joycon/frame"
	"github.com/Alia5/joycore/joycon/imu"
)

// Standard input report layout (after the report ID byte).
const (
	repOffTimer     = 0
	repOffBattery   = 1
	repOffButtons   = 2 // 3 bytes: right, shared, left
	repOffStickL    = 5 // 3 bytes, two packed 12-bit axes
	repOffStickR    = 8
	repOffVibrator  = 11
	repOffSubcmdAck = 12
	repOffSubcmdID  = 13
	repOffSubcmdDat = 14
	repOffIMU       = 12 // 3 frames x 12 bytes in 0x30/0x31
	repIMUFrameLen  = 12
	repIMUFrames    = 3
	repMinLen       = 12
)

// dispatchReport routes one HID-format input report: subcommand replies go
// to the pending waiter, everything else feeds the steady-state decoder.
func (c *Controller) dispatchReport(id byte, payload []byte) {
	switch id {
	case frame.ReportIDSubcmdReply:
		if len(payload) < repOffSubcmdDat {
			return
		}
		c.decodeStandard(payload)
		c.noteInput()
		// Ack bit 7 set means the subcommand was accepted; the echoed ID
		// keys the waiter.
		if payload[repOffSubcmdAck]&0x80 != 0 {
			c.deliverReply(payload[repOffSubcmdID], payload[repOffSubcmdDat:])
		}
	case frame.ReportIDFull, frame.ReportIDMCU:
		if len(payload) < repMinLen {
			return
		}
		c.decodeStandard(payload)
		c.decodeIMU(payload)
		c.noteInput()
	case frame.ReportIDButtonShort:
		c.decodeShort(payload)
		c.noteInput()
	case frame.ReportIDUSBReply:
		if len(payload) < 1 {
			return
		}
		c.deliverReply(payload[0], payload[1:])
	}
}

// decodeStandard updates the snapshot from a standard report and emits
// change events.
func (c *Controller) decodeStandard(p []byte) {
	buttons := uint32(p[repOffButtons])<<16 | uint32(p[repOffButtons+1])<<8 | uint32(p[repOffButtons+2])

	rawLX := uint16(p[repOffStickL]) | uint16(p[repOffStickL+1]&0x0F)<<8
	rawLY := uint16(p[repOffStickL+1])>>4 | uint16(p[repOffStickL+2])<<4
	rawRX := uint16(p[repOffStickR]) | uint16(p[repOffStickR+1]&0x0F)<<8
	rawRY := uint16(p[repOffStickR+1])>>4 | uint16(p[repOffStickR+2])<<4

	level := BatteryLevel(p[repOffBattery] >> 5)
	if level > BatteryFull {
		level = BatteryFull
	}
	charging := p[repOffBattery]&0x10 != 0

	c.lk.Lock()
	prev := c.snapshot
	c.snapshot.Buttons = buttons
	c.snapshot.RawStick = [2][2]uint16{{rawLX, rawLY}, {rawRX, rawRY}}
	c.snapshot.Stick = [2][2]int32{
		{calib.Map(c.calLeft.X, rawLX), calib.Map(c.calLeft.Y, rawLY)},
		{calib.Map(c.calRight.X, rawRX), calib.Map(c.calRight.Y, rawRY)},
	}
	c.snapshot.Battery = level
	c.snapshot.Charging = charging
	c.lk.Unlock()

	if c.hooks.OnInput != nil {
		c.hooks.OnInput(c)
	}
	if c.hooks.OnBattery != nil && (prev.Battery != level || prev.Charging != charging) {
		c.hooks.OnBattery(c, level, charging)
	}
	c.detectGestures(prev.Buttons, buttons)
}

// decodeShort handles the compact 0x3F report used before full mode is
// negotiated: 16-bit button field plus a hat byte, no analog data.
func (c *Controller) decodeShort(p []byte) {
	if len(p) < 3 {
		return
	}
	short := binary.LittleEndian.Uint16(p[0:2])
	buttons := expandShortButtons(short, p[2])

	c.lk.Lock()
	prev := c.snapshot.Buttons
	c.snapshot.Buttons = buttons
	c.lk.Unlock()

	if c.hooks.OnInput != nil {
		c.hooks.OnInput(c)
	}
	c.detectGestures(prev, buttons)
}

// expandShortButtons maps the compact report's button field onto the
// standard bit layout so downstream consumers only know one layout.
func expandShortButtons(short uint16, hat byte) uint32 {
	var out uint32
	pairs := []struct {
		bit  uint16
		mask uint32
	}{
		{0x0001, MaskDpadDown}, {0x0002, MaskDpadRight}, {0x0004, MaskDpadLeft}, {0x0008, MaskDpadUp},
		{0x0010, MaskLeftSL}, {0x0020, MaskLeftSR}, {0x0040, MaskMinus}, {0x0080, MaskPlus},
		{0x0100, MaskLStick}, {0x0200, MaskRStick}, {0x0400, MaskHome}, {0x0800, MaskCapture},
		{0x1000, MaskL}, {0x2000, MaskZL}, {0x4000, MaskR}, {0x8000, MaskZR},
	}
	for _, p := range pairs {
		if short&p.bit != 0 {
			out |= p.mask
		}
	}
	// Hat directions fold into the dpad bits.
	switch hat {
	case 0x00:
		out |= MaskDpadUp
	case 0x01:
		out |= MaskDpadUp | MaskDpadRight
	case 0x02:
		out |= MaskDpadRight
	case 0x03:
		out |= MaskDpadDown | MaskDpadRight
	case 0x04:
		out |= MaskDpadDown
	case 0x05:
		out |= MaskDpadDown | MaskDpadLeft
	case 0x06:
		out |= MaskDpadLeft
	case 0x07:
		out |= MaskDpadUp | MaskDpadLeft
	}
	return out
}

// decodeIMU unpacks the batched 6-axis samples and stamps them.
func (c *Controller) decodeIMU(p []byte) {
	if !kindTable[c.Kind()].hasIMU || c.hooks.OnIMU == nil {
		return
	}
	avail := (len(p) - repOffIMU) / repIMUFrameLen
	if avail > repIMUFrames {
		avail = repIMUFrames
	}
	if avail <= 0 {
		return
	}

	// A frame of all zeroes means the IMU had nothing new for that slot.
	var raws [][6]int16
	for i := 0; i < avail; i++ {
		off := repOffIMU + i*repIMUFrameLen
		var s [6]int16
		zero := true
		for a := 0; a < 6; a++ {
			v := int16(binary.LittleEndian.Uint16(p[off+a*2:]))
			s[a] = v
			if v != 0 {
				zero = false
			}
		}
		if !zero {
			raws = append(raws, s)
		}
	}
	if len(raws) == 0 {
		return
	}

	stamps, dropped := c.imuTracker.OnReport(time.Now(), len(raws))
	if dropped > imu.DroppedWarnThreshold {
		c.logger.Warn("imu reports dropped", "estimated", dropped)
	}

	samples := make([]imu.Sample, len(raws))
	c.lk.Lock()
	cal := c.imuCal
	c.lk.Unlock()
	for i, raw := range raws {
		samples[i] = imu.Sample{
			Timestamp: stamps[i],
			Accel: [3]int32{
				cal.ScaleAccel(0, raw[0]), cal.ScaleAccel(1, raw[1]), cal.ScaleAccel(2, raw[2]),
			},
			Gyro: [3]int32{
				cal.ScaleGyro(0, raw[3]), cal.ScaleGyro(1, raw[4]), cal.ScaleGyro(2, raw[5]),
			},
		}
	}
	c.hooks.OnIMU(c, samples)
}

// detectGestures fires pairing hooks on fresh activations of the trigger
// combinations. A gesture observed while already paired is the registry's
// problem to ignore, not an error here.
func (c *Controller) detectGestures(prev, cur uint32) {
	if c.hooks.OnGesture == nil {
		return
	}
	var search, solo uint32
	switch c.Kind() {
	case KindJoyConLeft:
		search = MaskL | MaskZL
		solo = MaskLeftSL | MaskLeftSR
	case KindJoyConRight:
		search = MaskR | MaskZR
		solo = MaskRightSL | MaskRightSR
	default:
		return
	}
	if cur&search == search && prev&search != search {
		c.hooks.OnGesture(c, GestureSearch)
	}
	if cur&solo == solo && prev&solo != solo {
		c.hooks.OnGesture(c, GestureSolo)
	}
}
