package anim

import (
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/wrenfield/menagerie/activity"
	"github.com/wrenfield/menagerie/config"
)

func TestDriver_EmitCopiesBlendWeight(t *testing.T) {
	skel := quadSkeleton(t)
	d := NewDriver(skel, config.Cfg())
	ov := d.Emit(activity.Eating, 0.5, 0.016, activity.Triggers{}, "", 0)
	if ov.BlendWeight != 0.5 {
		t.Fatalf("expected blend weight 0.5, got %f", ov.BlendWeight)
	}
}

func TestDriver_LocomotionAdvancesGaitPhase(t *testing.T) {
	skel := quadSkeleton(t)
	d := NewDriver(skel, config.Cfg())
	d.Emit(activity.Locomotion, 1, 0.5, activity.Triggers{}, "walk", 1.0)
	phaseAfterFirst := d.gaitPhase
	d.Emit(activity.Locomotion, 1, 0.5, activity.Triggers{}, "walk", 1.0)
	if d.gaitPhase == phaseAfterFirst {
		t.Fatal("expected gait phase to advance across ticks")
	}
}

func TestDriver_SleepingLowersSecondaryMotionGain(t *testing.T) {
	skel := quadSkeleton(t)
	d := NewDriver(skel, config.Cfg())
	ov := d.Emit(activity.Sleeping, 1, 0.016, activity.Triggers{}, "", 0)
	if ov.SecondaryMotionGain >= 1 {
		t.Fatalf("expected dampened secondary motion while sleeping, got %f", ov.SecondaryMotionGain)
	}
}

func TestDriver_ThreatDisplayArchesSpine(t *testing.T) {
	skel := quadSkeleton(t)
	d := NewDriver(skel, config.Cfg())
	ov := d.Emit(activity.ThreatDisplay, 1, 0.016, activity.Triggers{}, "", 0)
	if ov.SpineCurveBias <= 0 {
		t.Fatalf("expected a positive spine curve bias during threat display, got %f", ov.SpineCurveBias)
	}
}

type stubTerrain struct {
	y float32
}

func (s stubTerrain) HeightAt(worldX, worldZ float32) (float32, rl.Vector3, bool) {
	return s.y, rl.Vector3{Y: 1}, true
}

func TestDriver_SetTerrainSamplerAffectsFootHeight(t *testing.T) {
	skel := quadSkeleton(t)
	d := NewDriver(skel, config.Cfg())
	d.SetTerrainSampler(stubTerrain{y: -5})
	ov := d.Emit(activity.Locomotion, 1, 0.016, activity.Triggers{}, "walk", 0.5)
	if len(ov.LimbTargets) == 0 {
		t.Fatal("expected limb targets for a walking gait")
	}
	for _, lt := range ov.LimbTargets {
		if lt.WorldTarget.Y > -4 {
			t.Fatalf("expected foot target to follow registered terrain height, got Y=%f", lt.WorldTarget.Y)
		}
	}
}
