// Package frame implements the byte-level envelopes the controller speaks:
// the CRC8-protected UART packet format used by rail-attached Joy-Cons and
// the report-ID keyed HID format used over USB and Bluetooth.
package frame

import (
	"bytes"
	"errors"
	"fmt"
)

// ErrFraming reports malformed wire data. It is always recovered locally by
// discarding bytes and resynchronizing; callers log it and move on.
var ErrFraming = errors.New("frame: malformed wire data")

// UART envelope layout:
//
//	offset 0..2   magic 0x19 0x01 0x03
//	offset 3      payload size
//	offset 4      reserved/pad (covered by CRC)
//	offset 5      command
//	offset 6..10  header data
//	offset 11     CRC8(poly 0x8D) over offsets 4..10
//	offset 12..   payload (size bytes)
const (
	HeaderLen  = 12
	MaxPayload = 116
	MaxFrame   = HeaderLen + MaxPayload

	HeaderDataLen = 5

	crcStart = 4
	crcEnd   = 11
)

var magic = [3]byte{0x19, 0x01, 0x03}

// UARTFrame is one decoded UART envelope.
type UARTFrame struct {
	Command byte
	Header  [HeaderDataLen]byte
	Payload []byte
}

// Encode serializes the frame, computing size and CRC.
func (f *UARTFrame) Encode() ([]byte, error) {
	if len(f.Payload) > MaxPayload {
		return nil, fmt.Errorf("%w: payload %d exceeds %d", ErrFraming, len(f.Payload), MaxPayload)
	}
	buf := make([]byte, HeaderLen+len(f.Payload))
	copy(buf[0:3], magic[:])
	buf[3] = byte(len(f.Payload))
	buf[4] = 0x00
	buf[5] = f.Command
	copy(buf[6:11], f.Header[:])
	buf[11] = CRC8(buf[crcStart:crcEnd])
	copy(buf[HeaderLen:], f.Payload)
	return buf, nil
}

// DecodeUART decodes a single complete envelope from buf. The buffer must
// hold exactly one frame; stream input goes through Parser instead.
func DecodeUART(buf []byte) (*UARTFrame, error) {
	if len(buf) < HeaderLen {
		return nil, fmt.Errorf("%w: short buffer (%d bytes)", ErrFraming, len(buf))
	}
	if !bytes.Equal(buf[0:3], magic[:]) {
		return nil, fmt.Errorf("%w: bad magic % x", ErrFraming, buf[0:3])
	}
	size := int(buf[3])
	if size > MaxPayload {
		return nil, fmt.Errorf("%w: declared size %d exceeds %d", ErrFraming, size, MaxPayload)
	}
	if len(buf) < HeaderLen+size {
		return nil, fmt.Errorf("%w: declared size %d does not fit %d received bytes", ErrFraming, size, len(buf))
	}
	if crc := CRC8(buf[crcStart:crcEnd]); crc != buf[11] {
		return nil, fmt.Errorf("%w: crc mismatch got %#02x want %#02x", ErrFraming, buf[11], crc)
	}
	f := &UARTFrame{Command: buf[5]}
	copy(f.Header[:], buf[6:11])
	f.Payload = make([]byte, size)
	copy(f.Payload, buf[HeaderLen:HeaderLen+size])
	return f, nil
}

// Parser reassembles UART envelopes from a byte stream. Transport read
// callbacks can split a frame at any boundary; Feed buffers until a whole
// envelope is available. Leading zero bytes (line noise after baud changes)
// are discarded silently; anything else that is not a frame start causes a
// one-byte resync.
type Parser struct {
	buf bytes.Buffer
}

// Feed appends data and returns every complete frame now available. A
// non-nil error reports that bytes were discarded during resync; frames
// decoded after the resync point are still returned.
func (p *Parser) Feed(data []byte) ([]*UARTFrame, error) {
	p.buf.Write(data)

	var frames []*UARTFrame
	var ferr error
	for {
		pending := p.buf.Bytes()

		// Strip inter-frame zero noise.
		skip := 0
		for skip < len(pending) && pending[skip] == 0x00 {
			skip++
		}
		if skip > 0 {
			p.buf.Next(skip)
			pending = p.buf.Bytes()
		}
		if len(pending) == 0 {
			return frames, ferr
		}

		n := len(pending)
		if n < 3 {
			if bytes.Equal(pending, magic[:n]) {
				return frames, ferr // partial magic, wait for more
			}
			ferr = p.resync()
			continue
		}
		if !bytes.Equal(pending[0:3], magic[:]) {
			ferr = p.resync()
			continue
		}
		if n < 4 {
			return frames, ferr
		}
		size := int(pending[3])
		if size > MaxPayload {
			ferr = p.resync()
			continue
		}
		if n < HeaderLen+size {
			return frames, ferr // wait for the rest
		}
		f, err := DecodeUART(pending[:HeaderLen+size])
		if err != nil {
			ferr = p.resync()
			continue
		}
		p.buf.Next(HeaderLen + size)
		frames = append(frames, f)
	}
}

// resync drops one byte so the scan can hunt for the next magic sequence.
func (p *Parser) resync() error {
	p.buf.Next(1)
	return fmt.Errorf("%w: resynchronized", ErrFraming)
}

// Pending returns the number of buffered, not yet decodable bytes.
func (p *Parser) Pending() int {
	return p.buf.Len()
}

// Reset discards any partially accumulated frame.
func (p *Parser) Reset() {
	p.buf.Reset()
}
