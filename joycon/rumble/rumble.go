// Package rumble encodes (frequency, amplitude) requests into the 8-byte
// waveform register block the controller's haptic driver expects. The
// hardware quantizes both dimensions to fixed tables; the encoder picks the
// nearest table entry at or below the request and packs the pre-encoded bit
// patterns with fixed shifts. None of this is computed physics.
package rumble

import (
	"encoding/hex"
	"time"
)

const (
	// MinFreqHz and MaxFreqHz bound the quantizable frequency range.
	MinFreqHz = 41
	MaxFreqHz = 1252

	// ResendInterval is how often a non-stop rumble state must be
	// rewritten. The hardware treats rumble as a transient write, not a
	// sticky register; stop resending and the motor coasts to a halt.
	ResendInterval = 50 * time.Millisecond

	// Per-motor drive coefficients in per-mille. The two motors sit in
	// different enclosures and the right one runs measurably hotter for
	// the same drive level, so its amplitude is derated.
	ampScaleLeft  = 1000
	ampScaleRight = 816
)

// StopPattern is the neutral per-side block: centered frequencies, zero
// amplitude. Writing it once is the explicit "stop" signal after which the
// periodic resend may cease.
var StopPattern = [4]byte{0x00, 0x01, 0x40, 0x40}

// Channel is one motor's desired state. Frequencies are in Hz, Amp is a
// 16-bit linear amplitude where 0xFFFF asks for 100%.
type Channel struct {
	LowFreqHz  uint16
	HighFreqHz uint16
	Amp        uint16
}

// State is the full pad request, one channel per side.
type State struct {
	Left  Channel
	Right Channel
}

// IsStop reports whether the state asks for silence on both motors.
func (s State) IsStop() bool {
	return s.Left.Amp == 0 && s.Right.Amp == 0
}

// quantizeFreq returns the table entry nearest at or below deciHz. Requests
// below the table floor clamp to the first entry. deciHz is wider than the
// Hz request so scaling by 10 cannot wrap.
func quantizeFreq(deciHz uint32) freqEntry {
	ent := freqTable[0]
	for _, e := range freqTable {
		if uint32(e.DeciHz) > deciHz {
			break
		}
		ent = e
	}
	return ent
}

// quantizeAmp returns the table entry nearest at or below scaled (0.1%).
func quantizeAmp(scaled uint16) ampEntry {
	ent := ampTable[0]
	for _, e := range ampTable {
		if e.Scaled > scaled {
			break
		}
		ent = e
	}
	return ent
}

// encodeSide packs one motor's 4-byte block.
func encodeSide(ch Channel, ampScale uint32) [4]byte {
	if ch.Amp == 0 {
		return StopPattern
	}
	// 16-bit linear amplitude to table units (0.1%), derated per side.
	scaled := uint16(uint32(ch.Amp) * 1003 * ampScale / 1000 / 0xFFFF)
	amp := quantizeAmp(scaled)
	high := quantizeFreq(uint32(ch.HighFreqHz) * 10)
	low := quantizeFreq(uint32(ch.LowFreqHz) * 10)

	var b [4]byte
	b[0] = byte(high.HF & 0xFF)
	b[1] = byte(high.HF>>8) | amp.HA
	b[2] = low.LF | byte(amp.LA>>8)
	b[3] = byte(amp.LA & 0xFF)
	return b
}

// Encode produces the 8-byte block carried in every rumble-bearing output
// report: left motor in bytes 0..3, right motor in bytes 4..7.
func Encode(s State) [8]byte {
	var out [8]byte
	l := encodeSide(s.Left, ampScaleLeft)
	r := encodeSide(s.Right, ampScaleRight)
	copy(out[0:4], l[:])
	copy(out[4:8], r[:])
	return out
}

// EncodeStop returns the all-stop block.
func EncodeStop() [8]byte {
	return Encode(State{})
}

// String renders an encoded block for trace logs.
func String(b [8]byte) string {
	return hex.EncodeToString(b[:])
}
