// Package imu reconstructs per-sample timestamps for batched inertial data.
//
// Input reports carry several IMU sub-samples each, but the report interval
// itself is not stable: Bluetooth renegotiates sniff intervals, USB polling
// drifts, and reports get dropped outright. Consumers need evenly spaced,
// strictly increasing timestamps for correct playback speed, so the tracker
// keeps a sliding average of the inter-report delta and spends exactly one
// average delta of virtual time per report, regardless of how late the
// report actually arrived.
package imu

import "time"

const (
	// DefaultReportDelta seeds the average before any reports arrive.
	DefaultReportDelta = 15 * time.Millisecond

	// deltaAvgWindow is how many report deltas the sliding average spans.
	deltaAvgWindow = 300

	// droppedFactor is the measured/average ratio beyond which the excess
	// is attributed to dropped reports rather than jitter.
	droppedFactorNum = 3
	droppedFactorDen = 2

	// DroppedWarnThreshold is the estimated drop count past which a
	// diagnostic is worth emitting. The stream itself is never interrupted.
	DroppedWarnThreshold = 3
)

// Sample is one 6-axis reading with its reconstructed timestamp.
type Sample struct {
	Timestamp time.Duration // virtual stream time, microsecond resolution
	Accel     [3]int32
	Gyro      [3]int32
}

// Tracker owns the timing state for one controller's IMU stream. Not safe
// for concurrent use; the owning controller calls it from its receive path
// only.
type Tracker struct {
	lastReport time.Time
	avgDelta   time.Duration
	deltaCount int
	virtual    time.Duration
	started    bool
}

// NewTracker returns a tracker seeded with the default report interval.
func NewTracker() *Tracker {
	return &Tracker{avgDelta: DefaultReportDelta}
}

// OnReport accounts one received report carrying n sub-samples at wall-clock
// time now. It returns the virtual timestamp of each sub-sample, spread
// evenly across one average delta, and the number of reports estimated to
// have been dropped since the previous one.
func (t *Tracker) OnReport(now time.Time, n int) (stamps []time.Duration, dropped int) {
	if n <= 0 {
		return nil, 0
	}
	if !t.started {
		t.started = true
		t.lastReport = now
	} else {
		measured := now.Sub(t.lastReport)
		t.lastReport = now

		if measured > t.avgDelta*droppedFactorNum/droppedFactorDen {
			// Excess time belongs to reports that never arrived. Do not
			// feed it into the average and do not advance virtual time
			// for it; one report still costs one average delta.
			dropped = int((measured+t.avgDelta/2)/t.avgDelta) - 1
			if dropped < 1 {
				dropped = 1
			}
		} else if measured > 0 {
			// Sliding average over the last deltaAvgWindow samples.
			if t.deltaCount < deltaAvgWindow {
				t.deltaCount++
			}
			c := time.Duration(t.deltaCount)
			t.avgDelta += (measured - t.avgDelta) / c
		}
	}

	step := t.avgDelta / time.Duration(n)
	stamps = make([]time.Duration, n)
	for i := 0; i < n; i++ {
		t.virtual += step
		stamps[i] = t.virtual
	}
	// Swallow rounding so a full report always advances exactly avgDelta.
	t.virtual += t.avgDelta - step*time.Duration(n)
	return stamps, dropped
}

// AvgDelta exposes the current average inter-report interval.
func (t *Tracker) AvgDelta() time.Duration {
	return t.avgDelta
}

// Reset clears timing state on disconnect so a reconnect starts from the
// seed interval again.
func (t *Tracker) Reset() {
	*t = Tracker{avgDelta: DefaultReportDelta}
}
