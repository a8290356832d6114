package telemetry

import (
	"testing"

	"github.com/wrenfield/menagerie/activity"
)

func TestCollector_FlushesTransitionCounts(t *testing.T) {
	c := NewCollector(1.0, 1.0/60.0)

	c.RecordEvent(activity.Event{Kind: activity.EventTransitionStarted})
	c.RecordEvent(activity.Event{Kind: activity.EventTransitionCompleted})
	c.RecordEvent(activity.Event{Kind: activity.EventActivityInterrupted})

	stats := c.Flush(60, 3)
	if stats.TransitionsStarted != 1 || stats.TransitionsCompleted != 1 || stats.ActivitiesInterrupted != 1 {
		t.Fatalf("unexpected counts: %+v", stats)
	}
	if stats.CreatureCount != 3 {
		t.Errorf("expected creature count 3, got %d", stats.CreatureCount)
	}
}

func TestCollector_FlushResetsCounters(t *testing.T) {
	c := NewCollector(1.0, 1.0/60.0)
	c.RecordEvent(activity.Event{Kind: activity.EventTransitionStarted})
	c.Flush(60, 1)

	second := c.Flush(120, 1)
	if second.TransitionsStarted != 0 {
		t.Errorf("expected counters reset after flush, got %d", second.TransitionsStarted)
	}
}

func TestCollector_IKSolveDistinguishesClampedAndDegenerate(t *testing.T) {
	c := NewCollector(1.0, 1.0/60.0)
	c.RecordIKSolve(0.01, false, false)
	c.RecordIKSolve(0.5, true, false)
	c.RecordIKSolve(0, false, true)

	stats := c.Flush(60, 1)
	if stats.IKSolvesAttempted != 3 {
		t.Errorf("expected 3 attempted solves, got %d", stats.IKSolvesAttempted)
	}
	if stats.IKSolvesClamped != 1 {
		t.Errorf("expected 1 clamped solve, got %d", stats.IKSolvesClamped)
	}
	if stats.IKDegenerate != 1 {
		t.Errorf("expected 1 degenerate solve, got %d", stats.IKDegenerate)
	}
	// Only the two non-degenerate solves should feed the residual distribution.
	if stats.IKResidualMean <= 0 {
		t.Error("expected a positive residual mean from the two valid samples")
	}
}

func TestCollector_ShouldFlushRespectsWindowLength(t *testing.T) {
	c := NewCollector(1.0, 1.0/60.0)
	if c.ShouldFlush(10) {
		t.Error("expected no flush before a full window of ticks has elapsed")
	}
	if !c.ShouldFlush(c.WindowDurationTicks()) {
		t.Error("expected a flush once a full window has elapsed")
	}
}
