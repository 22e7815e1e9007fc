package joycon

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/Alia5/joycore/joycon/calib"
	"github.com/Alia5/joycore/joycon/frame"
	"github.com/Alia5/joycore/joycon/rumble"
)

// Bring-up state machine. The full UART sequence:
//
//	Init -> low baud, detection (wake IRQ or poll) -> handshake
//	     -> MAC read (clone marker => reduced path)
//	     -> baud change -> init steps 1..3 -> post-handshake
//	     -> device info -> calibration -> enable rumble/IMU
//	     -> report mode -> Streaming
//
// Any step failing after its retry reverts to low-baud detection. That is a
// restart, not a fatal error: while the transport stays attached the machine
// never gives up.

func (c *Controller) runStateMachine() {
	defer c.wg.Done()
	for {
		select {
		case <-c.done:
			return
		default:
		}

		if err := c.detect(); err != nil {
			if errors.Is(err, ErrDetached) {
				return
			}
			select {
			case <-time.After(DetectInterval):
			case <-c.done:
				return
			}
			continue
		}

		if err := c.bringUp(); err != nil {
			if errors.Is(err, ErrDetached) {
				return
			}
			c.logger.Info("bring-up failed, restarting detection", "error", err)
			c.reset()
			continue
		}

		c.setState(StateStreaming)
		c.logger.Info("controller streaming", "kind", c.Kind().String())
		if c.hooks.OnStreaming != nil {
			c.hooks.OnStreaming(c)
		}

		c.streamLoop()

		select {
		case <-c.done:
			return
		default:
		}
		c.logger.Info("controller silent, tearing down", "kind", c.Kind().String())
		if c.hooks.OnDetach != nil {
			c.hooks.OnDetach(c)
		}
		c.reset()
	}
}

// reset reverts to the safe rate and clears per-connection state so the next
// detection round starts clean.
func (c *Controller) reset() {
	_ = c.tr.SetBaud(BaudLow)
	c.rumbleQ.flush()
	c.ledQ.flush()
	c.imuTracker.Reset()
	c.lk.Lock()
	c.parser.Reset()
	c.pending = nil
	c.calibrated = false
	c.kind = KindUnknown
	c.snapshot = Snapshot{}
	c.lastInput = time.Time{}
	c.lastRumble = rumble.EncodeStop()
	c.rumbleSet = false
	c.lk.Unlock()
	c.setState(StateInit)
}

// detect waits for a controller to appear on the link. With a wake pin the
// machine sleeps on GPIO edges and burns a bounded retry budget per edge;
// without one it polls the handshake forever at DetectInterval.
func (c *Controller) detect() error {
	c.setState(StateInit)
	if err := c.tr.SetBaud(BaudLow); err != nil {
		return fmt.Errorf("%w: set detect baud: %v", ErrHandshakeFailed, err)
	}

	if c.variant == VariantHID {
		// HID transports enumerate only when a device is present.
		c.setState(StateUSBHandshake)
		return nil
	}

	for {
		if c.wake != nil {
			select {
			case <-c.wake:
			case <-c.done:
				return ErrDetached
			}
		}
		retries := DetectRetries
		if c.wake == nil {
			retries = 1
		}
		for i := 0; i < retries; i++ {
			if c.tryHandshake() == nil {
				return nil
			}
			select {
			case <-time.After(DetectInterval):
			case <-c.done:
				return ErrDetached
			}
		}
		// Budget exhausted: re-arm the wake interrupt (or just poll on).
	}
}

// tryHandshake sends one detection ping.
func (c *Controller) tryHandshake() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setState(StateHandshake)
	_, err := c.uartCommand(UARTCmdWake, [frame.HeaderDataLen]byte{0x02}, nil)
	if err != nil {
		c.setState(StateInit)
	}
	return err
}

// bringUp walks the post-detection sequence to steady state.
func (c *Controller) bringUp() error {
	if c.variant == VariantHID {
		return c.bringUpHID()
	}
	return c.bringUpUART()
}

func (c *Controller) bringUpUART() error {
	c.mu.Lock()
	mac, err := c.uartCommand(UARTCmdGetMAC, [frame.HeaderDataLen]byte{}, nil)
	c.mu.Unlock()
	if err != nil {
		return fmt.Errorf("%w: mac read: %v", ErrHandshakeFailed, err)
	}
	// Reply data is 5 header bytes then the payload.
	payload := mac[frame.HeaderDataLen:]
	if len(payload) >= 1 && payload[0] == CloneMACMarker {
		return c.bringUpClone()
	}
	if len(payload) < 6 {
		return fmt.Errorf("%w: short mac reply (%d bytes)", ErrHandshakeFailed, len(payload))
	}
	c.lk.Lock()
	copy(c.mac[:], payload[:6])
	c.lk.Unlock()

	// Genuine device: negotiate the fast rate, then the three-step init.
	var baudHdr [frame.HeaderDataLen]byte
	binary.LittleEndian.PutUint32(baudHdr[:4], BaudFast)
	c.mu.Lock()
	_, err = c.uartCommand(UARTCmdSetBaud, baudHdr, nil)
	c.mu.Unlock()
	if err != nil {
		return fmt.Errorf("%w: baud change: %v", ErrHandshakeFailed, err)
	}
	if err := c.tr.SetBaud(BaudFast); err != nil {
		return fmt.Errorf("%w: transport baud switch: %v", ErrHandshakeFailed, err)
	}

	for step := byte(1); step <= 3; step++ {
		c.mu.Lock()
		_, err = c.uartCommand(UARTCmdInit, [frame.HeaderDataLen]byte{step}, nil)
		c.mu.Unlock()
		if err != nil {
			return fmt.Errorf("%w: init step %d: %v", ErrHandshakeFailed, step, err)
		}
	}
	return c.bringUpCommon()
}

// bringUpClone is the reduced path for third-party devices: detection rate,
// default calibration, no rumble, no lights, no battery surface.
func (c *Controller) bringUpClone() error {
	c.logger.Info("clone controller detected, reduced bring-up")
	c.lk.Lock()
	c.kind = KindClone
	c.lk.Unlock()
	c.applyDefaultCalibration()
	// Best effort: many clones ignore the report-mode subcommand and
	// stream the compact report regardless.
	_, _ = c.Subcommand(SubcmdSetReportMode, []byte{ReportModeFull})
	return nil
}

// bringUpHID runs the USB pre-handshake: status (device type + MAC),
// handshake, full-rate switch, handshake again at the new rate, then timeout
// suppression so the controller stays in HID mode. Subcommands are ignored
// over USB until this sequence completes. Each step shares the exchange
// retry policy; a failure restarts detection like the UART steps.
func (c *Controller) bringUpHID() error {
	status, err := c.usbCommand(USBCmdStatus)
	if err != nil {
		return fmt.Errorf("%w: usb status: %v", ErrHandshakeFailed, err)
	}
	// Reply data: a pad byte, the device type, then the 6-byte MAC.
	if len(status) >= 8 {
		c.lk.Lock()
		copy(c.mac[:], status[2:8])
		c.lk.Unlock()
	}
	if _, err := c.usbCommand(USBCmdHandshake); err != nil {
		return fmt.Errorf("%w: usb handshake: %v", ErrHandshakeFailed, err)
	}
	if _, err := c.usbCommand(USBCmdBaud); err != nil {
		return fmt.Errorf("%w: usb rate switch: %v", ErrHandshakeFailed, err)
	}
	if _, err := c.usbCommand(USBCmdHandshake); err != nil {
		return fmt.Errorf("%w: usb handshake at full rate: %v", ErrHandshakeFailed, err)
	}

	// The timeout suppression gets no reply; fire and forget.
	buf, err := c.encodeOutput(frame.ReportIDUSBCmd, []byte{USBCmdNoTimeout})
	if err != nil {
		return err
	}
	if err := c.write(buf); err != nil {
		return fmt.Errorf("%w: usb timeout suppression: %v", ErrHandshakeFailed, err)
	}
	return c.bringUpCommon()
}

// bringUpCommon: everything after transport negotiation is subcommand-based
// and shared between variants.
func (c *Controller) bringUpCommon() error {
	info, err := c.Subcommand(SubcmdDeviceInfo, nil)
	if err != nil {
		return fmt.Errorf("%w: device info: %v", ErrHandshakeFailed, err)
	}
	if len(info) < 3 {
		return fmt.Errorf("%w: short device info (%d bytes)", ErrHandshakeFailed, len(info))
	}
	kind := kindFromDeviceType(info[2])
	if kind == KindUnknown {
		return fmt.Errorf("%w: unknown device type %#02x", ErrHandshakeFailed, info[2])
	}
	c.lk.Lock()
	c.kind = kind
	c.lk.Unlock()

	c.setState(StateCalibration)
	c.fetchCalibration()
	c.setState(StatePostCalibration)

	b := kindTable[kind]
	if b.hasIMU {
		if _, err := c.Subcommand(SubcmdEnableIMU, []byte{0x01}); err != nil {
			return fmt.Errorf("%w: enable imu: %v", ErrHandshakeFailed, err)
		}
	}
	if b.hasRumble {
		if _, err := c.Subcommand(SubcmdEnableVibration, []byte{0x01}); err != nil {
			return fmt.Errorf("%w: enable vibration: %v", ErrHandshakeFailed, err)
		}
	}
	if _, err := c.Subcommand(SubcmdSetReportMode, []byte{ReportModeFull}); err != nil {
		return fmt.Errorf("%w: report mode: %v", ErrHandshakeFailed, err)
	}
	return nil
}

// fetchCalibration reads stick and IMU calibration from flash, preferring
// user pages over factory ones. Failure is never fatal; the controller runs
// on the per-variant defaults with reduced accuracy.
func (c *Controller) fetchCalibration() {
	b := kindTable[c.Kind()]
	if !b.fetchCalibration {
		c.applyDefaultCalibration()
		return
	}

	def := calib.DefaultStick(defaultStickAxis(c.variant))
	left, right := def, def

	if b.hasLeftStick {
		if cal, err := c.readStickCal(FlashStickUserL, FlashStickFactoryL, calib.SideLeft); err == nil {
			left = cal
		} else {
			c.logger.Info("left stick calibration unavailable, using defaults", "error", err)
		}
	}
	if b.hasRightStick {
		if cal, err := c.readStickCal(FlashStickUserR, FlashStickFactoryR, calib.SideRight); err == nil {
			right = cal
		} else {
			c.logger.Info("right stick calibration unavailable, using defaults", "error", err)
		}
	}

	imuCal := calib.DefaultIMU()
	if b.hasIMU {
		if raw, err := c.SPIRead(FlashIMUFactoryCal, calib.IMUBlobLen); err == nil {
			if cal, err := calib.DecodeIMU(raw); err == nil {
				imuCal = cal
			}
		} else {
			c.logger.Info("imu calibration unavailable, using defaults", "error", err)
		}
	}

	c.lk.Lock()
	c.calLeft = left
	c.calRight = right
	c.imuCal = imuCal
	c.calibrated = true
	c.lk.Unlock()
}

// readStickCal checks the user-calibration magic and falls back to the
// factory blob.
func (c *Controller) readStickCal(userAddr, factoryAddr uint32, side calib.Side) (calib.StickCal, error) {
	magic, err := c.SPIRead(userAddr-2, 2)
	if err == nil && magic[0] == 0xB2 && magic[1] == 0xA1 {
		if raw, err := c.SPIRead(userAddr, calib.StickBlobLen); err == nil {
			if cal, err := calib.DecodeStick(raw, side); err == nil {
				return cal, nil
			}
		}
	}
	raw, err := c.SPIRead(factoryAddr, calib.StickBlobLen)
	if err != nil {
		return calib.StickCal{}, err
	}
	return calib.DecodeStick(raw, side)
}

func (c *Controller) applyDefaultCalibration() {
	def := calib.DefaultStick(defaultStickAxis(c.variant))
	c.lk.Lock()
	c.calLeft = def
	c.calRight = def
	c.imuCal = calib.DefaultIMU()
	c.calibrated = true
	c.lk.Unlock()
}

// streamLoop owns the steady state: periodic input-report requests, rumble
// resends and the silence watchdog. Returns when the controller goes quiet
// or the controller is closed.
func (c *Controller) streamLoop() {
	c.lk.Lock()
	c.lastInput = time.Now()
	c.lk.Unlock()

	poll := time.NewTicker(c.pollInterval)
	defer poll.Stop()
	resend := time.NewTicker(rumble.ResendInterval)
	defer resend.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-poll.C:
			if c.variant == VariantUART {
				if err := c.requestInputReport(); err != nil {
					c.logger.Debug("input request failed", "error", err)
				}
			}
			if c.sinceInput() > SilenceTimeout {
				return
			}
		case <-resend.C:
			c.resendRumble()
		}
	}
}

// Calibrated reports whether calibration has been populated; always true by
// the time the state machine reaches streaming.
func (c *Controller) Calibrated() bool {
	c.lk.Lock()
	defer c.lk.Unlock()
	return c.calibrated
}

// StickCalibration exposes the active calibration for diagnostics.
func (c *Controller) StickCalibration() (left, right calib.StickCal) {
	c.lk.Lock()
	defer c.lk.Unlock()
	return c.calLeft, c.calRight
}
