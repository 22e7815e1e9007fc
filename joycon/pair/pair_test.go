package pair_test

import (
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/joycore/joycon"
	"github.com/Alia5/joycore/joycon/imu"
	"github.com/Alia5/joycore/joycon/pair"
)

type fakeHalf struct {
	kind joycon.Kind

	mu     sync.Mutex
	snap   joycon.Snapshot
	lights []byte
}

func (f *fakeHalf) Kind() joycon.Kind { return f.kind }

func (f *fakeHalf) Snapshot() joycon.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snap
}

func (f *fakeHalf) SetPlayerLights(pattern byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lights = append(f.lights, pattern)
	return nil
}

func (f *fakeHalf) set(snap joycon.Snapshot) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snap = snap
}

type event struct {
	btn     pair.Button
	pressed bool
	axis    pair.Axis
	value   int32
	isAxis  bool
}

type fakeOutput struct {
	mode   pair.Mode
	player int

	mu     sync.Mutex
	events []event
	closed bool
}

func (f *fakeOutput) ButtonEvent(b pair.Button, pressed bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event{btn: b, pressed: pressed})
}

func (f *fakeOutput) StickEvent(a pair.Axis, value int32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event{axis: a, value: value, isAxis: true})
}

func (f *fakeOutput) BatteryEvent(level joycon.BatteryLevel, charging bool) {}

func (f *fakeOutput) IMUEvent(samples []imu.Sample) {}

func (f *fakeOutput) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeOutput) buttonEvents() []event {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []event
	for _, e := range f.events {
		if !e.isAxis {
			out = append(out, e)
		}
	}
	return out
}

type outputLog struct {
	mu      sync.Mutex
	created []*fakeOutput
}

func (l *outputLog) factory(mode pair.Mode, player int) (pair.Output, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	o := &fakeOutput{mode: mode, player: player}
	l.created = append(l.created, o)
	return o, nil
}

func (l *outputLog) all() []*fakeOutput {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]*fakeOutput(nil), l.created...)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCombineLeftAndRight(t *testing.T) {
	outs := &outputLog{}
	reg := pair.NewRegistry(testLogger(), outs.factory)

	left := &fakeHalf{kind: joycon.KindJoyConLeft}
	right := &fakeHalf{kind: joycon.KindJoyConRight}
	reg.Streaming(left)
	reg.Streaming(right)
	require.Empty(t, reg.Units(), "no unit before any gesture")

	reg.Gesture(left, joycon.GestureSearch)
	require.Empty(t, reg.Units(), "one seeker is not enough")

	reg.Gesture(right, joycon.GestureSearch)
	units := reg.Units()
	require.Len(t, units, 1)
	assert.Equal(t, pair.ModeCombined, units[0].Mode)
	assert.Equal(t, 1, units[0].Player)

	l, r := units[0].Halves()
	assert.Same(t, left, l)
	assert.Same(t, right, r)

	// Both halves got the player-1 indicator.
	assert.Equal(t, []byte{0x01}, left.lights)
	assert.Equal(t, []byte{0x01}, right.lights)
}

func TestSoloGesture(t *testing.T) {
	outs := &outputLog{}
	reg := pair.NewRegistry(testLogger(), outs.factory)

	right := &fakeHalf{kind: joycon.KindJoyConRight}
	reg.Streaming(right)
	reg.Gesture(right, joycon.GestureSolo)

	units := reg.Units()
	require.Len(t, units, 1)
	assert.Equal(t, pair.ModeRightSolo, units[0].Mode)
}

func TestProFormsUnitWithoutGesture(t *testing.T) {
	outs := &outputLog{}
	reg := pair.NewRegistry(testLogger(), outs.factory)

	pro := &fakeHalf{kind: joycon.KindProCon}
	reg.Streaming(pro)

	units := reg.Units()
	require.Len(t, units, 1)
	assert.Equal(t, pair.ModePro, units[0].Mode)
}

func TestGestureOnPairedHalfIgnored(t *testing.T) {
	outs := &outputLog{}
	reg := pair.NewRegistry(testLogger(), outs.factory)

	left := &fakeHalf{kind: joycon.KindJoyConLeft}
	right := &fakeHalf{kind: joycon.KindJoyConRight}
	reg.Streaming(left)
	reg.Streaming(right)
	reg.Gesture(left, joycon.GestureSearch)
	reg.Gesture(right, joycon.GestureSearch)
	require.Len(t, reg.Units(), 1)

	reg.Gesture(left, joycon.GestureSolo)
	reg.Gesture(left, joycon.GestureSearch)
	assert.Len(t, reg.Units(), 1, "paired half must not form another unit")
	assert.Len(t, outs.all(), 1)
}

func TestDetachRevertsPartnerToSearching(t *testing.T) {
	outs := &outputLog{}
	reg := pair.NewRegistry(testLogger(), outs.factory)

	left := &fakeHalf{kind: joycon.KindJoyConLeft}
	right := &fakeHalf{kind: joycon.KindJoyConRight}
	reg.Streaming(left)
	reg.Streaming(right)
	reg.Gesture(left, joycon.GestureSearch)
	reg.Gesture(right, joycon.GestureSearch)
	require.Len(t, reg.Units(), 1)
	first := outs.all()[0]

	reg.Detach(left)
	assert.Empty(t, reg.Units())
	assert.True(t, first.closed, "output torn down with the unit")

	// The widowed right half is searching again and pairs with the next
	// left seeker without a fresh gesture of its own.
	left2 := &fakeHalf{kind: joycon.KindJoyConLeft}
	reg.Streaming(left2)
	reg.Gesture(left2, joycon.GestureSearch)
	units := reg.Units()
	require.Len(t, units, 1)
	l, r := units[0].Halves()
	assert.Same(t, left2, l)
	assert.Same(t, right, r)
	assert.Equal(t, 1, units[0].Player, "freed indicator slot is reused")
}

func TestTwoLeftsNeverPair(t *testing.T) {
	outs := &outputLog{}
	reg := pair.NewRegistry(testLogger(), outs.factory)

	a := &fakeHalf{kind: joycon.KindJoyConLeft}
	b := &fakeHalf{kind: joycon.KindJoyConLeft}
	reg.Streaming(a)
	reg.Streaming(b)
	reg.Gesture(a, joycon.GestureSearch)
	reg.Gesture(b, joycon.GestureSearch)
	assert.Empty(t, reg.Units())
}

func TestConcurrentSeekersPairExclusively(t *testing.T) {
	outs := &outputLog{}
	reg := pair.NewRegistry(testLogger(), outs.factory)

	const n = 8
	lefts := make([]*fakeHalf, n)
	rights := make([]*fakeHalf, n)
	for i := 0; i < n; i++ {
		lefts[i] = &fakeHalf{kind: joycon.KindJoyConLeft}
		rights[i] = &fakeHalf{kind: joycon.KindJoyConRight}
		reg.Streaming(lefts[i])
		reg.Streaming(rights[i])
	}

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(2)
		go func(h pair.Half) {
			defer wg.Done()
			reg.Gesture(h, joycon.GestureSearch)
		}(lefts[i])
		go func(h pair.Half) {
			defer wg.Done()
			reg.Gesture(h, joycon.GestureSearch)
		}(rights[i])
	}
	wg.Wait()

	units := reg.Units()
	require.Len(t, units, n)
	seen := make(map[pair.Half]bool)
	for _, u := range units {
		l, r := u.Halves()
		require.NotNil(t, l)
		require.NotNil(t, r)
		assert.False(t, seen[l], "half in two units")
		assert.False(t, seen[r], "half in two units")
		seen[l] = true
		seen[r] = true
		assert.Equal(t, joycon.KindJoyConLeft, l.Kind())
		assert.Equal(t, joycon.KindJoyConRight, r.Kind())
	}
}

func TestCombinedButtonTranslation(t *testing.T) {
	outs := &outputLog{}
	reg := pair.NewRegistry(testLogger(), outs.factory)

	left := &fakeHalf{kind: joycon.KindJoyConLeft}
	right := &fakeHalf{kind: joycon.KindJoyConRight}
	reg.Streaming(left)
	reg.Streaming(right)
	reg.Gesture(left, joycon.GestureSearch)
	reg.Gesture(right, joycon.GestureSearch)
	out := outs.all()[0]

	left.set(joycon.Snapshot{Buttons: joycon.MaskDpadUp | joycon.MaskZL})
	reg.Input(left)
	right.set(joycon.Snapshot{Buttons: joycon.MaskA})
	reg.Input(right)

	events := out.buttonEvents()
	require.Len(t, events, 3)
	assert.Equal(t, pair.BtnZL, events[0].btn)
	assert.Equal(t, pair.BtnDpadUp, events[1].btn)
	assert.Equal(t, pair.BtnA, events[2].btn)
	for _, e := range events {
		assert.True(t, e.pressed)
	}

	// Release fires exactly one transition per button.
	left.set(joycon.Snapshot{})
	reg.Input(left)
	events = out.buttonEvents()
	require.Len(t, events, 5)
	assert.False(t, events[3].pressed)
	assert.False(t, events[4].pressed)
}

func TestLeftSoloRotation(t *testing.T) {
	outs := &outputLog{}
	reg := pair.NewRegistry(testLogger(), outs.factory)

	left := &fakeHalf{kind: joycon.KindJoyConLeft}
	reg.Streaming(left)
	reg.Gesture(left, joycon.GestureSolo)
	out := outs.all()[0]

	// Sideways: the directional cluster is the face diamond, the rail
	// buttons are the shoulders, and the stick turns a quarter clockwise.
	snap := joycon.Snapshot{Buttons: joycon.MaskDpadDown | joycon.MaskLeftSL}
	snap.Stick[0][0] = 1000
	snap.Stick[0][1] = -2000
	left.set(snap)
	reg.Input(left)

	var btns []pair.Button
	var axes [4]int32
	for _, e := range out.events {
		if e.isAxis {
			axes[e.axis] = e.value
		} else {
			btns = append(btns, e.btn)
		}
	}
	assert.Equal(t, []pair.Button{pair.BtnA, pair.BtnL}, btns)
	assert.Equal(t, int32(-2000), axes[pair.AxisLX])
	assert.Equal(t, int32(-1000), axes[pair.AxisLY])
}

func TestRightSoloMapsStickToPrimaryAxes(t *testing.T) {
	outs := &outputLog{}
	reg := pair.NewRegistry(testLogger(), outs.factory)

	right := &fakeHalf{kind: joycon.KindJoyConRight}
	reg.Streaming(right)
	reg.Gesture(right, joycon.GestureSolo)
	out := outs.all()[0]

	snap := joycon.Snapshot{Buttons: joycon.MaskB | joycon.MaskRStick}
	snap.Stick[1][0] = 500
	snap.Stick[1][1] = 700
	right.set(snap)
	reg.Input(right)

	var btns []pair.Button
	var axes [4]int32
	for _, e := range out.events {
		if e.isAxis {
			axes[e.axis] = e.value
		} else {
			btns = append(btns, e.btn)
		}
	}
	assert.Equal(t, []pair.Button{pair.BtnA, pair.BtnThumbL}, btns)
	assert.Equal(t, int32(-700), axes[pair.AxisLX])
	assert.Equal(t, int32(500), axes[pair.AxisLY])
	assert.Zero(t, axes[pair.AxisRX])
	assert.Zero(t, axes[pair.AxisRY])
}
