package activity

import (
	"testing"

	"github.com/wrenfield/menagerie/config"
)

func init() {
	config.MustInit("")
}

func TestEvaluate_FallsBackToIdleBelowThreshold(t *testing.T) {
	tr := Triggers{Hunger: 0.01, FoodNearby: true}
	got := Evaluate(tr, config.Cfg())
	if got != Idle {
		t.Fatalf("expected Idle for sub-threshold drives, got %v", got)
	}
}

func TestEvaluate_RequiresTargetGatesRequiresTarget(t *testing.T) {
	cfg := config.Cfg()
	tuning := cfg.ActivityTuningFor(Mating.String())
	tuning.RequiresTarget = true
	cfg.SetActivityTuning(Mating.String(), tuning)

	tr := Triggers{Reproductive: 0.9, MatePresent: true, TargetWorldPos: nil}
	if got := Evaluate(tr, cfg); got == Mating {
		t.Fatal("Mating should be excluded without a target position")
	}
}

func TestEvaluate_EnvironmentPreconditionGatesEligibility(t *testing.T) {
	tr := Triggers{Hunger: 0.9, FoodNearby: false}
	got := Evaluate(tr, config.Cfg())
	if got == Eating {
		t.Fatal("Eating must require FoodNearby regardless of hunger score")
	}
}

func TestEvaluate_HigherPriorityWinsOverHigherScore(t *testing.T) {
	cfg := config.Cfg()
	low := cfg.ActivityTuningFor(Grooming.String())
	low.Priority = 1
	cfg.SetActivityTuning(Grooming.String(), low)

	high := cfg.ActivityTuningFor(ThreatDisplay.String())
	high.Priority = 10
	cfg.SetActivityTuning(ThreatDisplay.String(), high)

	tr := Triggers{GroomingNeed: 0.95, ThreatLevel: 0.5, ThreatPresent: true}
	got := Evaluate(tr, cfg)
	if got != ThreatDisplay {
		t.Fatalf("expected ThreatDisplay by priority, got %v", got)
	}
}

func TestEvaluate_DeterministicTieBreakOnEqualPriorityAndScore(t *testing.T) {
	cfg := config.Cfg()
	for _, typ := range []Type{Drinking, Sleeping} {
		tuning := cfg.ActivityTuningFor(typ.String())
		tuning.Priority = 3
		tuning.RequiresTarget = false
		cfg.SetActivityTuning(typ.String(), tuning)
	}
	tr := Triggers{Thirst: 0.5, Fatigue: 0.5}
	for i := 0; i < 5; i++ {
		got := Evaluate(tr, cfg)
		if got != Drinking {
			t.Fatalf("expected stable tie-break to Drinking (earlier enum order), got %v", got)
		}
	}
}
