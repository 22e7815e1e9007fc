package imu_test

import (
	"testing"
	"time"

	"github.com/Alia5/joycore/joycon/imu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimestampsSpreadAcrossSubSamples(t *testing.T) {
	tr := imu.NewTracker()
	now := time.Unix(1000, 0)

	stamps, dropped := tr.OnReport(now, 3)
	require.Len(t, stamps, 3)
	assert.Zero(t, dropped)
	assert.Equal(t, 5*time.Millisecond, stamps[0])
	assert.Equal(t, 10*time.Millisecond, stamps[1])
	assert.Equal(t, 15*time.Millisecond, stamps[2])
}

func TestVirtualTimeMonotonicOverSteadyStream(t *testing.T) {
	tr := imu.NewTracker()
	now := time.Unix(1000, 0)

	var last time.Duration
	for i := 0; i < 100; i++ {
		stamps, _ := tr.OnReport(now, 3)
		for _, s := range stamps {
			assert.Greater(t, s, last)
			last = s
		}
		now = now.Add(15 * time.Millisecond)
	}
	// Steady 15ms reporting keeps the average pinned at 15ms.
	assert.Equal(t, 15*time.Millisecond, tr.AvgDelta())
}

func TestDroppedReportAdvancesOneDeltaOnly(t *testing.T) {
	tr := imu.NewTracker()
	now := time.Unix(1000, 0)

	// Establish a steady 15ms average first.
	for i := 0; i < 50; i++ {
		tr.OnReport(now, 3)
		now = now.Add(15 * time.Millisecond)
	}
	stamps, _ := tr.OnReport(now, 3)
	lastBefore := stamps[2]

	// One report lost: the next one lands 30ms later.
	now = now.Add(30 * time.Millisecond)
	stamps, dropped := tr.OnReport(now, 3)
	assert.Equal(t, 1, dropped)
	// Virtual time advanced by exactly one average delta, not two.
	assert.Equal(t, lastBefore+15*time.Millisecond, stamps[2])
	for i := 1; i < len(stamps); i++ {
		assert.Greater(t, stamps[i], stamps[i-1])
	}
	// The 30ms outlier must not pollute the average.
	assert.Equal(t, 15*time.Millisecond, tr.AvgDelta())
}

func TestManyDroppedReportsEstimate(t *testing.T) {
	tr := imu.NewTracker()
	now := time.Unix(1000, 0)
	for i := 0; i < 50; i++ {
		tr.OnReport(now, 1)
		now = now.Add(15 * time.Millisecond)
	}
	now = now.Add(75 * time.Millisecond) // four reports missing
	_, dropped := tr.OnReport(now, 1)
	assert.Equal(t, 4, dropped)
	assert.Greater(t, dropped, imu.DroppedWarnThreshold)
}

func TestAverageAdaptsToSlowerLink(t *testing.T) {
	tr := imu.NewTracker()
	now := time.Unix(1000, 0)
	for i := 0; i < 400; i++ {
		tr.OnReport(now, 3)
		now = now.Add(16 * time.Millisecond)
	}
	got := tr.AvgDelta()
	assert.InDelta(t, float64(16*time.Millisecond), float64(got), float64(500*time.Microsecond))
}

func TestReset(t *testing.T) {
	tr := imu.NewTracker()
	now := time.Unix(1000, 0)
	for i := 0; i < 10; i++ {
		tr.OnReport(now, 3)
		now = now.Add(20 * time.Millisecond)
	}
	tr.Reset()
	assert.Equal(t, imu.DefaultReportDelta, tr.AvgDelta())
	stamps, _ := tr.OnReport(now, 1)
	assert.Equal(t, imu.DefaultReportDelta, stamps[0])
}

func TestEmptyReport(t *testing.T) {
	tr := imu.NewTracker()
	stamps, dropped := tr.OnReport(time.Now(), 0)
	assert.Nil(t, stamps)
	assert.Zero(t, dropped)
}
