package frame_test

import (
	"testing"

	"github.com/Alia5/joycore/joycon/frame"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUARTRoundTrip(t *testing.T) {
	cases := []struct {
		name    string
		cmd     byte
		header  [5]byte
		payload []byte
	}{
		{name: "empty payload", cmd: 0xA1, header: [5]byte{0x02, 0, 0, 0, 0}},
		{name: "subcommand carrier", cmd: 0x91, header: [5]byte{0x01, 0x30, 0, 0, 0}, payload: []byte{0x01, 0x05, 0x40, 0x40}},
		{name: "max payload", cmd: 0x92, header: [5]byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF}, payload: make([]byte, frame.MaxPayload)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := &frame.UARTFrame{Command: tc.cmd, Header: tc.header, Payload: tc.payload}
			buf, err := in.Encode()
			require.NoError(t, err)
			assert.Len(t, buf, frame.HeaderLen+len(tc.payload))

			out, err := frame.DecodeUART(buf)
			require.NoError(t, err)
			assert.Equal(t, tc.cmd, out.Command)
			assert.Equal(t, tc.header, out.Header)
			assert.Equal(t, len(tc.payload), len(out.Payload))
			if len(tc.payload) > 0 {
				assert.Equal(t, tc.payload, out.Payload)
			}

			// Re-encoding the decoded frame must reproduce the CRC byte.
			buf2, err := out.Encode()
			require.NoError(t, err)
			assert.Equal(t, buf, buf2)
		})
	}
}

func TestUARTEncodeRejectsOversizedPayload(t *testing.T) {
	f := &frame.UARTFrame{Command: 0x91, Payload: make([]byte, frame.MaxPayload+1)}
	_, err := f.Encode()
	assert.ErrorIs(t, err, frame.ErrFraming)
}

func TestDecodeUARTErrors(t *testing.T) {
	good, err := (&frame.UARTFrame{Command: 0x91, Payload: []byte{1, 2, 3}}).Encode()
	require.NoError(t, err)

	t.Run("bad magic", func(t *testing.T) {
		bad := append([]byte(nil), good...)
		bad[0] = 0x20
		_, err := frame.DecodeUART(bad)
		assert.ErrorIs(t, err, frame.ErrFraming)
	})
	t.Run("truncated payload", func(t *testing.T) {
		_, err := frame.DecodeUART(good[:len(good)-1])
		assert.ErrorIs(t, err, frame.ErrFraming)
	})
	t.Run("crc mismatch", func(t *testing.T) {
		bad := append([]byte(nil), good...)
		bad[11] ^= 0xFF
		_, err := frame.DecodeUART(bad)
		assert.ErrorIs(t, err, frame.ErrFraming)
	})
	t.Run("size overflow", func(t *testing.T) {
		bad := append([]byte(nil), good...)
		bad[3] = frame.MaxPayload + 1
		_, err := frame.DecodeUART(bad)
		assert.ErrorIs(t, err, frame.ErrFraming)
	})
}

func TestParserSplitAtEveryBoundary(t *testing.T) {
	want := &frame.UARTFrame{Command: 0x91, Header: [5]byte{0x01, 0x10, 0x20, 0x30, 0x40}, Payload: []byte{0xAA, 0xBB, 0xCC, 0xDD}}
	buf, err := want.Encode()
	require.NoError(t, err)

	for split := 0; split <= len(buf); split++ {
		var p frame.Parser
		frames, err := p.Feed(buf[:split])
		require.NoError(t, err)
		rest, err := p.Feed(buf[split:])
		require.NoError(t, err)
		frames = append(frames, rest...)

		require.Len(t, frames, 1, "split at %d", split)
		assert.Equal(t, want, frames[0], "split at %d", split)
	}
}

func TestParserSkipsLeadingZeroNoise(t *testing.T) {
	want := &frame.UARTFrame{Command: 0xA2, Payload: []byte{0x7E}}
	buf, err := want.Encode()
	require.NoError(t, err)

	var p frame.Parser
	frames, err := p.Feed(append(make([]byte, 17), buf...))
	require.NoError(t, err)
	require.Len(t, frames, 1)
	assert.Equal(t, want, frames[0])
	assert.Zero(t, p.Pending())
}

func TestParserResyncAfterGarbage(t *testing.T) {
	want := &frame.UARTFrame{Command: 0xA1}
	buf, err := want.Encode()
	require.NoError(t, err)

	var p frame.Parser
	frames, err := p.Feed(append([]byte{0x55, 0xAA, 0x19, 0x02}, buf...))
	assert.ErrorIs(t, err, frame.ErrFraming)
	require.Len(t, frames, 1)
	assert.Equal(t, want, frames[0])
}

func TestParserBackToBackFrames(t *testing.T) {
	a, err := (&frame.UARTFrame{Command: 0xA1}).Encode()
	require.NoError(t, err)
	b, err := (&frame.UARTFrame{Command: 0x92, Payload: []byte{1, 2}}).Encode()
	require.NoError(t, err)

	var p frame.Parser
	frames, err := p.Feed(append(append([]byte(nil), a...), b...))
	require.NoError(t, err)
	require.Len(t, frames, 2)
	assert.Equal(t, byte(0xA1), frames[0].Command)
	assert.Equal(t, byte(0x92), frames[1].Command)
}

func TestHIDRoundTrip(t *testing.T) {
	in := &frame.HIDReport{ID: frame.ReportIDRumbleSubcmd, Payload: []byte{0x04, 0x00, 0x01, 0x40, 0x40}}
	buf, err := in.EncodeHID(frame.HIDReportLenBT)
	require.NoError(t, err)
	require.Len(t, buf, frame.HIDReportLenBT)

	out, err := frame.DecodeHID(buf)
	require.NoError(t, err)
	assert.Equal(t, in.ID, out.ID)
	assert.Equal(t, in.Payload, out.Payload[:len(in.Payload)])
}

func TestCRC8KnownVector(t *testing.T) {
	// Hand-walked 0x8D MSB-first over a single byte.
	assert.Equal(t, byte(0x00), frame.CRC8([]byte{0x00}))
	assert.NotEqual(t, frame.CRC8([]byte{0x01}), frame.CRC8([]byte{0x02}))
	// Appending the CRC of a message yields a zero remainder.
	msg := []byte{0x00, 0x91, 0x01, 0x02, 0x03, 0x04, 0x05}
	assert.Equal(t, byte(0x00), frame.CRC8(append(append([]byte(nil), msg...), frame.CRC8(msg))))
}
