package frame

import "fmt"

// HID report IDs. Framing over HID is implicit: byte 0 selects the report
// type and the transfer length is fixed by the transport, so there is no
// checksum or size field to validate.
const (
	// Controller -> host
	ReportIDButtonShort = 0x3F // compact button/stick report
	ReportIDSubcmdReply = 0x21 // subcommand acknowledgement + data
	ReportIDFull        = 0x30 // standard report with IMU samples
	ReportIDMCU         = 0x31 // standard report + MCU (NFC/IR) data
	ReportIDUSBReply    = 0x81 // echo of a USB pre-handshake command

	// Host -> controller
	ReportIDRumbleSubcmd = 0x01 // rumble state + subcommand
	ReportIDRumbleOnly   = 0x10 // rumble state, no subcommand
	ReportIDUSBCmd       = 0x80 // USB-only pre-handshake commands

	// Fixed transfer sizes.
	HIDReportLenBT  = 49
	HIDReportLenUSB = 64
)

// HIDReport is one report-ID keyed HID transfer.
type HIDReport struct {
	ID      byte
	Payload []byte
}

// EncodeHID serializes a report padded to size bytes.
func (r *HIDReport) EncodeHID(size int) ([]byte, error) {
	if len(r.Payload)+1 > size {
		return nil, fmt.Errorf("%w: payload %d exceeds report size %d", ErrFraming, len(r.Payload), size)
	}
	buf := make([]byte, size)
	buf[0] = r.ID
	copy(buf[1:], r.Payload)
	return buf, nil
}

// DecodeHID splits a raw HID transfer into report ID and payload.
func DecodeHID(buf []byte) (*HIDReport, error) {
	if len(buf) < 1 {
		return nil, fmt.Errorf("%w: empty hid report", ErrFraming)
	}
	r := &HIDReport{ID: buf[0], Payload: make([]byte, len(buf)-1)}
	copy(r.Payload, buf[1:])
	return r, nil
}
