package joycon

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/Alia5/joycore/joycon/frame"
	"github.com/Alia5/joycore/joycon/rumble"
)

// Synchronous request/reply correlation on top of the frame codec. One
// exchange in flight per controller, enforced by the operation mutex; the
// receive goroutine routes matching frames to the pending slot.

// exchange performs one send-and-wait with the retry policy: a timeout is
// retried exactly once before surfacing ErrCommandTimeout.
func (c *Controller) exchange(key byte, send func() error) ([]byte, error) {
	for attempt := 0; attempt < 2; attempt++ {
		p := &pendingExchange{key: key, reply: make(chan []byte, 1)}
		c.lk.Lock()
		c.pending = p
		c.lk.Unlock()

		err := send()
		if err != nil {
			c.clearPending()
			return nil, err
		}

		select {
		case data := <-p.reply:
			c.clearPending()
			return data, nil
		case <-time.After(SubcmdTimeout):
			c.clearPending()
		case <-c.done:
			c.clearPending()
			return nil, ErrDetached
		}
	}
	return nil, fmt.Errorf("%w: key %#02x", ErrCommandTimeout, key)
}

func (c *Controller) clearPending() {
	c.lk.Lock()
	c.pending = nil
	c.lk.Unlock()
}

// waitForInputReport gates a subcommand send on the next periodic input
// report while streaming; sending right after a report improves delivery.
// The wait is bounded so a dead controller cannot hang the caller.
func (c *Controller) waitForInputReport() {
	if c.State() != StateStreaming {
		return
	}
	// Drain a stale token first so we wait for a fresh report.
	select {
	case <-c.inputAck:
	default:
	}
	select {
	case <-c.inputAck:
	case <-time.After(inputWaitTimeout):
	case <-c.done:
	}
}

// buildSubcmdReport assembles the HID-format output report every subcommand
// rides in: sequence number, the 8-byte rumble block (the controller's wire
// format piggy-backs rumble on everything), then the subcommand ID and data.
func (c *Controller) buildSubcmdReport(subcmd byte, data []byte) []byte {
	c.lk.Lock()
	rstate := c.lastRumble
	c.lk.Unlock()

	payload := make([]byte, 0, 10+len(data))
	payload = append(payload, c.nextSeq())
	payload = append(payload, rstate[:]...)
	payload = append(payload, subcmd)
	payload = append(payload, data...)
	return payload
}

// encodeOutput wraps an HID-format report for the active transport.
func (c *Controller) encodeOutput(reportID byte, payload []byte) ([]byte, error) {
	if c.variant == VariantHID {
		r := &frame.HIDReport{ID: reportID, Payload: payload}
		return r.EncodeHID(frame.HIDReportLenUSB)
	}
	f := &frame.UARTFrame{
		Command: UARTCmdHIDOutput,
		Header:  [frame.HeaderDataLen]byte{reportID},
		Payload: append([]byte{reportID}, payload...),
	}
	return f.Encode()
}

// Subcommand sends one synchronous subcommand and returns the reply data
// (everything after the ack and echoed ID). Blocks the caller; never call
// from the receive path.
func (c *Controller) Subcommand(subcmd byte, data []byte) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.subcommandLocked(subcmd, data)
}

func (c *Controller) subcommandLocked(subcmd byte, data []byte) ([]byte, error) {
	buf, err := c.encodeOutput(frame.ReportIDRumbleSubcmd, c.buildSubcmdReport(subcmd, data))
	if err != nil {
		return nil, err
	}
	reply, err := c.exchange(subcmd, func() error {
		c.waitForInputReport()
		return c.write(buf)
	})
	if err != nil {
		return nil, err
	}
	return reply, nil
}

// uartCommand sends a raw UART control command (wake, MAC read, baud, init
// steps) and waits for the echo-keyed reply.
func (c *Controller) uartCommand(cmd byte, header [frame.HeaderDataLen]byte, payload []byte) ([]byte, error) {
	f := &frame.UARTFrame{Command: cmd, Header: header, Payload: payload}
	buf, err := f.Encode()
	if err != nil {
		return nil, err
	}
	return c.exchange(cmd, func() error { return c.write(buf) })
}

// usbCommand sends one 0x80 pre-handshake command and waits for the echoed
// 0x81 reply.
func (c *Controller) usbCommand(cmd byte) ([]byte, error) {
	buf, err := c.encodeOutput(frame.ReportIDUSBCmd, []byte{cmd})
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.exchange(cmd, func() error { return c.write(buf) })
}

// SPIRead fetches length bytes of controller flash starting at addr, one
// bounded transfer. The reply echoes address and length ahead of the data.
func (c *Controller) SPIRead(addr uint32, length byte) ([]byte, error) {
	if length > SPIReadMaxLen {
		return nil, fmt.Errorf("joycon: spi read of %d exceeds max %d", length, SPIReadMaxLen)
	}
	req := make([]byte, 5)
	binary.LittleEndian.PutUint32(req[0:4], addr)
	req[4] = length

	c.mu.Lock()
	defer c.mu.Unlock()
	reply, err := c.subcommandLocked(SubcmdSPIFlashRead, req)
	if err != nil {
		return nil, err
	}
	if len(reply) < spiReplyDataOffset+int(length) {
		return nil, fmt.Errorf("joycon: short spi reply: %d bytes", len(reply))
	}
	if got := binary.LittleEndian.Uint32(reply[0:4]); got != addr {
		return nil, fmt.Errorf("joycon: spi reply for %#x, requested %#x", got, addr)
	}
	if reply[4] != length {
		return nil, fmt.Errorf("joycon: spi reply echoes length %d, requested %d", reply[4], length)
	}
	return reply[spiReplyDataOffset : spiReplyDataOffset+int(length)], nil
}

// SetRumble encodes and queues a rumble state. The last state is piggy-backed
// on future subcommands and periodically resent until it is a stop.
func (c *Controller) SetRumble(s rumble.State) error {
	if !kindTable[c.Kind()].hasRumble {
		return nil
	}
	enc := rumble.Encode(s)
	c.lk.Lock()
	c.lastRumble = enc
	c.rumbleSet = !s.IsStop()
	c.lk.Unlock()
	return c.queueRumbleFrame(enc)
}

func (c *Controller) queueRumbleFrame(enc [8]byte) error {
	payload := append([]byte{c.nextSeq()}, enc[:]...)
	buf, err := c.encodeOutput(frame.ReportIDRumbleOnly, payload)
	if err != nil {
		return err
	}
	// Rumble is a critical write: a full ring surfaces to the caller.
	return c.rumbleQ.push(buf)
}

// resendRumbleLocked re-queues the last non-stop state; the hardware treats
// rumble as transient and coasts if the write stops coming.
func (c *Controller) resendRumble() {
	c.lk.Lock()
	enc := c.lastRumble
	active := c.rumbleSet
	c.lk.Unlock()
	if !active {
		return
	}
	if err := c.queueRumbleFrame(enc); err != nil {
		c.logger.Debug("rumble resend dropped", "error", err)
	}
}

// SetPlayerLights queues a player indicator update (bits 0..3 solid,
// 4..7 flashing). Dropped silently when the LED ring is full; the next
// refresh supersedes it anyway.
func (c *Controller) SetPlayerLights(pattern byte) error {
	return c.queueLEDSubcmd(SubcmdSetPlayerLights, []byte{pattern})
}

// SetHomeLight queues a home-button light intensity (0..15).
func (c *Controller) SetHomeLight(intensity byte) error {
	if intensity > 0x0F {
		intensity = 0x0F
	}
	// Minicycle header: one cycle, full-to-target fade.
	return c.queueLEDSubcmd(SubcmdSetHomeLight, []byte{0x01, intensity << 4, intensity << 4, 0x00})
}

func (c *Controller) queueLEDSubcmd(subcmd byte, data []byte) error {
	if !kindTable[c.Kind()].hasLights {
		return nil
	}
	buf, err := c.encodeOutput(frame.ReportIDRumbleSubcmd, c.buildSubcmdReport(subcmd, data))
	if err != nil {
		return err
	}
	if err := c.ledQ.push(buf); err != nil {
		// The next periodic refresh supersedes a dropped LED write.
		c.logger.Debug("led write dropped", "subcmd", subcmd)
		return nil
	}
	return nil
}

// requestInputReport asks for the next input report; UART controllers only
// report when polled.
func (c *Controller) requestInputReport() error {
	buf, err := c.encodeOutput(frame.ReportIDUSBCmd, []byte{SubcmdState})
	if err != nil {
		return err
	}
	return c.write(buf)
}
