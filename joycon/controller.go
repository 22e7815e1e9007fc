package joycon

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Alia5/joycore/internal/log"
	"github.com/Alia5/joycore/joycon/calib"
	"github.com/Alia5/joycore/joycon/frame"
	"github.com/Alia5/joycore/joycon/imu"
	"github.com/Alia5/joycore/joycon/rumble"
)

// State is the bring-up phase of one controller.
type State int

const (
	StateInit State = iota
	StateUSBHandshake
	StateHandshake
	StateCalibration
	StatePostCalibration
	StateSearching
	StateStreaming
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateUSBHandshake:
		return "usb-handshake"
	case StateHandshake:
		return "handshake"
	case StateCalibration:
		return "calibration"
	case StatePostCalibration:
		return "post-calibration"
	case StateSearching:
		return "searching"
	case StateStreaming:
		return "streaming"
	}
	return "unknown"
}

// Gesture is a pairing trigger observed in the button stream.
type Gesture int

const (
	// GestureSearch: shoulder and trigger pressed together on one half;
	// the half wants to combine with an opposite half.
	GestureSearch Gesture = iota
	// GestureSolo: both rail buttons (SL+SR) pressed together; the half
	// wants to be a standalone horizontal pad.
	GestureSolo
)

// Snapshot is the latest decoded input state, safe to copy out under the
// controller's short lock.
type Snapshot struct {
	Buttons  uint32
	RawStick [2][2]uint16 // [left,right][x,y]
	Stick    [2][2]int32  // calibrated, [-32767,32767]
	Battery  BatteryLevel
	Charging bool
}

// Hooks are upcalls into the owning layer (pairing registry, event stream).
// All fire from controller-owned goroutines; none may call back into a
// synchronous exchange.
type Hooks struct {
	OnStreaming func(c *Controller)
	OnDetach    func(c *Controller)
	OnInput     func(c *Controller)
	OnIMU       func(c *Controller, samples []imu.Sample)
	OnBattery   func(c *Controller, level BatteryLevel, charging bool)
	OnGesture   func(c *Controller, g Gesture)
}

// Config carries construction-time knobs for a Controller.
type Config struct {
	Logger *slog.Logger
	Raw    log.RawLogger

	Variant Variant

	// PollInterval overrides the steady-state input request period.
	PollInterval time.Duration

	// Wake delivers GPIO edge notifications from a detect pin. When nil
	// the state machine falls back to periodic handshake polling.
	Wake <-chan struct{}

	Hooks Hooks
}

// pendingExchange is the slot the receive path checks to decide whether an
// inbound frame belongs to a synchronous waiter or to the steady-state
// decoder. At most one exchange is in flight per controller.
type pendingExchange struct {
	key   byte // expected subcommand or UART command byte
	reply chan []byte
}

// Controller drives one physical half-controller or full pad.
type Controller struct {
	logger  *slog.Logger
	raw     log.RawLogger
	tr      Transport
	variant Variant
	hooks   Hooks

	pollInterval time.Duration
	wake         <-chan struct{}

	// mu is the coarse operation lock: held across an entire multi-step
	// operation such as a calibration fetch, which also enforces one
	// synchronous exchange in flight.
	mu sync.Mutex

	// outMu serializes every wire write: sync sends, the writer
	// goroutine and the input-report poller all take it.
	outMu sync.Mutex

	// lk guards the short critical sections: sequence counter, pending
	// slot, reassembly parser, decoded snapshot, state.
	lk sync.Mutex

	state    State
	kind     Kind
	mac      [6]byte
	seq      uint8
	parser   frame.Parser
	pending  *pendingExchange
	inputAck chan struct{}

	snapshot   Snapshot
	calLeft    calib.StickCal
	calRight   calib.StickCal
	imuCal     calib.IMUCal
	calibrated bool

	imuTracker *imu.Tracker
	lastInput  time.Time

	rumbleQ    *outQueue
	ledQ       *outQueue
	lastRumble [8]byte
	rumbleSet  bool

	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// New creates a controller bound to an attached transport. Call Start to
// launch the state machine.
func New(tr Transport, cfg Config) *Controller {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	raw := cfg.Raw
	if raw == nil {
		raw = log.NewRaw(nil)
	}
	poll := cfg.PollInterval
	if poll == 0 {
		poll = PollInterval
	}
	return &Controller{
		logger:       logger.With("transport", cfg.Variant.String()),
		raw:          raw,
		tr:           tr,
		variant:      cfg.Variant,
		hooks:        cfg.Hooks,
		pollInterval: poll,
		wake:         cfg.Wake,
		inputAck:     make(chan struct{}, 1),
		imuTracker:   imu.NewTracker(),
		rumbleQ:      newOutQueue(RumbleQueueCap),
		ledQ:         newOutQueue(LEDQueueCap),
		done:         make(chan struct{}),
		lastRumble:   rumble.EncodeStop(),
	}
}

// Start launches the writer and detection goroutines.
func (c *Controller) Start() {
	c.wg.Add(2)
	go c.writerLoop()
	go c.runStateMachine()
}

// Close tears the controller down and closes its transport. Calibration,
// pairing and queue state die with it.
func (c *Controller) Close() error {
	c.stopOnce.Do(func() { close(c.done) })
	c.wg.Wait()
	return c.tr.Close()
}

// State returns the current bring-up phase.
func (c *Controller) State() State {
	c.lk.Lock()
	defer c.lk.Unlock()
	return c.state
}

func (c *Controller) setState(s State) {
	c.lk.Lock()
	old := c.state
	c.state = s
	c.lk.Unlock()
	if old != s {
		c.logger.Debug("state change", "from", old.String(), "to", s.String())
	}
}

// Kind returns the detected controller kind.
func (c *Controller) Kind() Kind {
	c.lk.Lock()
	defer c.lk.Unlock()
	return c.kind
}

// MAC returns the controller's hardware address (zero for clones).
func (c *Controller) MAC() [6]byte {
	c.lk.Lock()
	defer c.lk.Unlock()
	return c.mac
}

// Snapshot copies out the latest decoded input state.
func (c *Controller) Snapshot() Snapshot {
	c.lk.Lock()
	defer c.lk.Unlock()
	return c.snapshot
}

// nextSeq returns the next 4-bit packet sequence number.
func (c *Controller) nextSeq() uint8 {
	c.lk.Lock()
	defer c.lk.Unlock()
	s := c.seq
	c.seq = (c.seq + 1) & 0x0F
	return s
}

// write sends one encoded frame under the output mutex.
func (c *Controller) write(buf []byte) error {
	c.raw.Log(false, buf)
	c.outMu.Lock()
	defer c.outMu.Unlock()
	return c.tr.Write(buf)
}

// writerLoop drains the bounded output queues. Rumble frames take priority
// over LED refreshes.
func (c *Controller) writerLoop() {
	defer c.wg.Done()
	for {
		select {
		case <-c.done:
			return
		case <-c.rumbleQ.kick:
		case <-c.ledQ.kick:
		}
		for {
			buf := c.rumbleQ.pop()
			if buf == nil {
				buf = c.ledQ.pop()
			}
			if buf == nil {
				break
			}
			if err := c.write(buf); err != nil {
				c.logger.Debug("queued write failed", "error", err)
			}
		}
	}
}

// Receive is the transport read callback. It only frames and dispatches;
// all blocking work happens on other goroutines, so a synchronous waiter
// can never deadlock against its own reply.
func (c *Controller) Receive(data []byte) {
	c.raw.Log(true, data)
	switch c.variant {
	case VariantUART:
		c.lk.Lock()
		frames, err := c.parser.Feed(data)
		c.lk.Unlock()
		if err != nil {
			// Recovered locally; worth a trace line, nothing more.
			c.logger.Log(context.Background(), log.LevelTrace, "frame resync", "error", err)
		}
		for _, f := range frames {
			c.dispatchUART(f)
		}
	case VariantHID:
		r, err := frame.DecodeHID(data)
		if err != nil {
			c.logger.Log(context.Background(), log.LevelTrace, "bad hid report", "error", err)
			return
		}
		c.dispatchReport(r.ID, r.Payload)
	}
}

// dispatchUART routes one UART envelope: HID-wrapped input reports go to the
// report decoder, everything else is a control reply for a pending waiter.
func (c *Controller) dispatchUART(f *frame.UARTFrame) {
	if f.Command == UARTCmdHIDInput {
		if len(f.Payload) < 1 {
			return
		}
		c.dispatchReport(f.Payload[0], f.Payload[1:])
		return
	}
	c.deliverReply(f.Command, append(f.Header[:], f.Payload...))
}

// deliverReply hands data to the synchronous waiter expecting key, if any.
func (c *Controller) deliverReply(key byte, data []byte) bool {
	c.lk.Lock()
	p := c.pending
	c.lk.Unlock()
	if p == nil || p.key != key {
		return false
	}
	select {
	case p.reply <- data:
		return true
	default:
		return false
	}
}

// noteInput marks steady-stream liveness and wakes a sender gating on the
// next periodic report.
func (c *Controller) noteInput() {
	c.lk.Lock()
	c.lastInput = time.Now()
	c.lk.Unlock()
	select {
	case c.inputAck <- struct{}{}:
	default:
	}
}

func (c *Controller) sinceInput() time.Duration {
	c.lk.Lock()
	defer c.lk.Unlock()
	if c.lastInput.IsZero() {
		return 0
	}
	return time.Since(c.lastInput)
}
