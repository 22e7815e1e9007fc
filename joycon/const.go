// Package joycon implements the controller-protocol engine: subcommand
// exchanges, the bring-up state machine, calibration fetch and steady-state
// input streaming for Joy-Con halves and Pro Controllers over UART or HID
// transports.
package joycon

import "time"

// Subcommand IDs. These are the controller's externally specified wire
// protocol, not ours to choose.
const (
	SubcmdState           = 0x00
	SubcmdDeviceInfo      = 0x02
	SubcmdSetReportMode   = 0x03
	SubcmdButtonTime      = 0x04
	SubcmdSetShipment     = 0x08
	SubcmdSPIFlashRead    = 0x10
	SubcmdSetPlayerLights = 0x30
	SubcmdSetHomeLight    = 0x38
	SubcmdEnableIMU       = 0x40
	SubcmdIMUSensitivity  = 0x41
	SubcmdEnableVibration = 0x48
)

// SPI flash layout: calibration storage addresses.
const (
	FlashIMUFactoryCal   uint32 = 0x6020
	FlashStickFactoryL   uint32 = 0x603D
	FlashStickFactoryR   uint32 = 0x6046
	FlashUserCalMagic    uint32 = 0x8010
	FlashStickUserL      uint32 = 0x8012
	FlashStickUserR      uint32 = 0x801D
	FlashIMUUserCal      uint32 = 0x8028

	// SPIReadMaxLen bounds one SPI_FLASH_READ transfer.
	SPIReadMaxLen = 35

	// spiReplyDataOffset is where flash data starts inside the reply
	// payload: 4 bytes of echoed address plus 1 byte of echoed length.
	spiReplyDataOffset = 5
)

// UART command bytes carried in the envelope's command field.
const (
	UARTCmdWake      = 0xA1 // detection ping; replied with the same command
	UARTCmdGetMAC    = 0xA2 // payload: 6-byte MAC, or clone marker
	UARTCmdSetBaud   = 0xA3 // header data: little-endian baud rate
	UARTCmdInit      = 0xA4 // header data[0]: init step 1..3
	UARTCmdHIDOutput = 0x91 // payload: HID-format output report
	UARTCmdHIDInput  = 0x92 // payload: HID-format input report
)

// USB pre-handshake command bytes, carried in 0x80 output reports and echoed
// back in 0x81 input reports. The sequence runs before any subcommand works
// over USB.
const (
	USBCmdStatus    = 0x01 // reply carries device type and MAC
	USBCmdHandshake = 0x02
	USBCmdBaud      = 0x03 // switch the link to the full rate
	USBCmdNoTimeout = 0x04 // keep HID mode active; the controller does not reply
)

// CloneMACMarker is what third-party clones return instead of a MAC's first
// byte. Clones take the reduced bring-up path: no baud negotiation, no
// calibration fetch, no rumble, no lights.
const CloneMACMarker = 0xFE

// UART baud rates. Detection always happens at the low rate; the fast rate
// is negotiated during bring-up for genuine devices.
const (
	BaudLow  = 1000000
	BaudFast = 3000000
)

// Device-type bytes in the device-info reply.
const (
	DeviceTypeJoyConLeft  = 0x01
	DeviceTypeJoyConRight = 0x02
	DeviceTypeProCon      = 0x03
)

// Input report modes for SubcmdSetReportMode.
const (
	ReportModeFull   = 0x30
	ReportModeSimple = 0x3F
)

// Timing constants for the exchange and state machine layers.
const (
	// SubcmdTimeout bounds one synchronous exchange attempt. One retry
	// means a dead controller surfaces failure in about twice this.
	SubcmdTimeout = 250 * time.Millisecond

	// inputWaitTimeout bounds the wait for the next periodic input
	// report before a subcommand send while streaming.
	inputWaitTimeout = 65 * time.Millisecond

	// DetectInterval is the handshake poll period while searching for an
	// attached controller, and DetectRetries the IRQ retry budget before
	// re-arming the wake interrupt.
	DetectInterval = 100 * time.Millisecond
	DetectRetries  = 30

	// PollInterval is the steady-state input report request period.
	// High-rate variants halve it.
	PollInterval     = 15 * time.Millisecond
	PollIntervalFast = 8 * time.Millisecond

	// SilenceTimeout is how long the controller may stay quiet while
	// streaming before it is considered detached.
	SilenceTimeout = 500 * time.Millisecond
)

// Output queue bounds. LED refreshes are droppable; rumble slots are sized
// for the deepest realistic burst.
const (
	RumbleQueueCap = 8
	LEDQueueCap    = 20
)

// Battery levels decoded from the standard input report.
type BatteryLevel int

const (
	BatteryEmpty BatteryLevel = iota
	BatteryCritical
	BatteryLow
	BatteryMedium
	BatteryFull
)

func (b BatteryLevel) String() string {
	switch b {
	case BatteryEmpty:
		return "empty"
	case BatteryCritical:
		return "critical"
	case BatteryLow:
		return "low"
	case BatteryMedium:
		return "medium"
	case BatteryFull:
		return "full"
	}
	return "unknown"
}

// Physical button masks in the standard input report, laid out as
// right<<16 | shared<<8 | left.
const (
	MaskY            uint32 = 0x010000
	MaskX            uint32 = 0x020000
	MaskB            uint32 = 0x040000
	MaskA            uint32 = 0x080000
	MaskRightSR      uint32 = 0x100000
	MaskRightSL      uint32 = 0x200000
	MaskR            uint32 = 0x400000
	MaskZR           uint32 = 0x800000
	MaskMinus        uint32 = 0x000100
	MaskPlus         uint32 = 0x000200
	MaskRStick       uint32 = 0x000400
	MaskLStick       uint32 = 0x000800
	MaskHome         uint32 = 0x001000
	MaskCapture      uint32 = 0x002000
	MaskChargingGrip uint32 = 0x008000
	MaskDpadDown     uint32 = 0x000001
	MaskDpadUp       uint32 = 0x000002
	MaskDpadRight    uint32 = 0x000004
	MaskDpadLeft     uint32 = 0x000008
	MaskLeftSR       uint32 = 0x000010
	MaskLeftSL       uint32 = 0x000020
	MaskL            uint32 = 0x000040
	MaskZL           uint32 = 0x000080
)
