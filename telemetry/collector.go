package telemetry

import "github.com/wrenfield/menagerie/activity"

// Collector accumulates per-tick events within a window and produces
// WindowStats on Flush, mirroring the window/flush rhythm used throughout
// the corpus's own stats collectors.
type Collector struct {
	windowDurationTicks int32
	dt                  float32

	windowStartTick int32
	creatureCount   int

	transitionsStarted    int
	transitionsCompleted  int
	activitiesInterrupted int

	ikSolvesAttempted int
	ikSolvesClamped   int
	ikDegenerate      int

	ikResiduals []float64
	blendTimes  []float64
}

// NewCollector creates a stats collector whose window lasts
// windowDurationSec simulation seconds, given dt seconds per tick.
func NewCollector(windowDurationSec float64, dt float32) *Collector {
	ticksPerWindow := int32(windowDurationSec / float64(dt))
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}
	return &Collector{
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
	}
}

// RecordEvent folds one activity-state-machine event into the current
// window's transition counters.
func (c *Collector) RecordEvent(ev activity.Event) {
	switch ev.Kind {
	case activity.EventTransitionStarted:
		c.transitionsStarted++
	case activity.EventTransitionCompleted:
		c.transitionsCompleted++
	case activity.EventActivityInterrupted:
		c.activitiesInterrupted++
	}
}

// RecordIKSolve records the outcome of one IK solve: residual is the
// distance between the solved end effector and the requested target after
// clamping, clamped reports whether the target was out of reach, and
// degenerate reports whether the solver returned a degenerate error.
func (c *Collector) RecordIKSolve(residual float64, clamped, degenerate bool) {
	c.ikSolvesAttempted++
	if clamped {
		c.ikSolvesClamped++
	}
	if degenerate {
		c.ikDegenerate++
		return
	}
	c.ikResiduals = append(c.ikResiduals, residual)
}

// RecordBlendTime records the wall-clock duration a blend-in or blend-out
// phase actually took, sampled at TransitionCompleted.
func (c *Collector) RecordBlendTime(seconds float64) {
	c.blendTimes = append(c.blendTimes, seconds)
}

// ShouldFlush returns true once enough ticks have passed to close the
// current window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Flush produces a WindowStats for the elapsed window and resets the
// collector's counters for the next one.
func (c *Collector) Flush(currentTick int32, creatureCount int) WindowStats {
	ikMean, ikStd, ikP50, ikP90 := distributionStats(c.ikResiduals)
	blendMean, blendStd, blendP50, blendP90 := distributionStats(c.blendTimes)

	stats := WindowStats{
		WindowStartTick:       c.windowStartTick,
		WindowEndTick:         currentTick,
		SimTimeSec:            float64(currentTick) * float64(c.dt),
		CreatureCount:         creatureCount,
		TransitionsStarted:    c.transitionsStarted,
		TransitionsCompleted:  c.transitionsCompleted,
		ActivitiesInterrupted: c.activitiesInterrupted,
		IKSolvesAttempted:     c.ikSolvesAttempted,
		IKSolvesClamped:       c.ikSolvesClamped,
		IKDegenerate:          c.ikDegenerate,
		IKResidualMean:        ikMean,
		IKResidualStd:         ikStd,
		IKResidualP50:         ikP50,
		IKResidualP90:         ikP90,
		BlendTimeMean:         blendMean,
		BlendTimeStd:          blendStd,
		BlendTimeP50:          blendP50,
		BlendTimeP90:          blendP90,
	}

	c.windowStartTick = currentTick
	c.transitionsStarted = 0
	c.transitionsCompleted = 0
	c.activitiesInterrupted = 0
	c.ikSolvesAttempted = 0
	c.ikSolvesClamped = 0
	c.ikDegenerate = 0
	c.ikResiduals = c.ikResiduals[:0]
	c.blendTimes = c.blendTimes[:0]

	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int32 {
	return c.windowDurationTicks
}
