package joycon

// Transport is the physical link under a controller. Implementations push
// received bytes into Controller.Receive from their own read loop; the
// controller never reads the transport directly.
type Transport interface {
	// Write sends one encoded frame. Called with the controller's output
	// mutex held, so writes never interleave on the wire.
	Write(p []byte) error

	// SetBaud switches the link rate. HID transports return nil without
	// doing anything.
	SetBaud(rate int) error

	Close() error
}

// Variant selects the framing a controller speaks.
type Variant int

const (
	// VariantUART: CRC8 envelopes over a serial rail.
	VariantUART Variant = iota
	// VariantHID: report-ID keyed fixed-size reports over USB/Bluetooth.
	VariantHID
)

func (v Variant) String() string {
	if v == VariantUART {
		return "uart"
	}
	return "hid"
}
