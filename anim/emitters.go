package anim

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/wrenfield/menagerie/activity"
	"github.com/wrenfield/menagerie/config"
	"github.com/wrenfield/menagerie/rig"
)

// Driver turns the current activity into a PoseOverlay every tick (spec.md
// §4.5, the Animation Driver). One Driver instance is owned per creature.
type Driver struct {
	skel *rig.Skeleton
	cfg  *config.Config

	gaitPhase float64 // accumulated locomotion cycle phase [0,1)
	terrain   *FootTerrain
}

// NewDriver creates a driver bound to a creature's skeleton.
func NewDriver(skel *rig.Skeleton, cfg *config.Config) *Driver {
	return &Driver{skel: skel, cfg: cfg, terrain: NewFootTerrain(nil)}
}

// SetTerrainSampler registers the ground-height collaborator this
// creature's locomotion foot placement consults (spec.md §6
// TerrainSampler). Passing nil reverts to bind-pose-only placement.
func (d *Driver) SetTerrainSampler(sampler TerrainSampler) {
	d.terrain.SetSampler(sampler)
}

// defaultGaitFor picks the base locomotion gait for a rig category. Speed-
// dependent gait switching (walk/trot/gallop) is left to the behavior
// collaborator, which passes a gait name to Emit; this default is used only
// when that name is empty.
func defaultGaitFor(cat rig.Category) string {
	switch cat {
	case rig.Avian:
		return "flap"
	case rig.Fish, rig.Serpentine:
		return "swim-undulation"
	default:
		return "walk"
	}
}

// Emit computes the activity overlay for this tick (spec.md §4.5). dt
// advances the internal gait phase when the active type is Locomotion or
// Idle.
// speed is the creature's current world-space speed in body-units/sec,
// used to size stride length and undulation amplitude (spec.md §4.5).
func (d *Driver) Emit(t activity.Type, blendWeight float64, dt float64, tr activity.Triggers, gaitName string, speed float64) Overlay {
	var ov Overlay
	switch t {
	case activity.Locomotion, activity.Idle:
		if gaitName == "" {
			gaitName = defaultGaitFor(d.skel.Category)
		}
		if gait, ok := d.cfg.Gaits[gaitName]; ok && gait.CycleTime > 0 {
			d.gaitPhase += dt / gait.CycleTime
			d.gaitPhase -= math.Floor(d.gaitPhase)
		}
		ov = Locomotion(d.skel, gaitName, d.gaitPhase, speed, d.cfg, d.terrain)
	case activity.Eating:
		ov = emitEating(tr)
	case activity.Drinking:
		ov = emitDrinking(tr)
	case activity.Sleeping:
		ov = emitSleeping()
	case activity.Grooming:
		ov = emitGrooming(d.skel)
	case activity.ThreatDisplay:
		ov = emitThreatDisplay()
	case activity.Mating:
		ov = emitMating(tr)
	case activity.Excretion:
		ov = emitExcretion()
	case activity.Vocalizing:
		ov = emitVocalizing()
	case activity.Alert:
		ov = emitAlert()
	case activity.Resting:
		ov = emitResting()
	default:
		ov = NeutralOverlay()
	}
	ov.BlendWeight = float32(blendWeight)
	return ov
}

func emitEating(tr activity.Triggers) Overlay {
	ov := NeutralOverlay()
	if tr.TargetWorldPos != nil {
		target := *tr.TargetWorldPos
		ov.HeadTarget = &target
	}
	ov.MouthOpen = 0.6
	ov.SecondaryMotionGain = 0.7
	return ov
}

func emitDrinking(tr activity.Triggers) Overlay {
	ov := NeutralOverlay()
	if tr.TargetWorldPos != nil {
		target := *tr.TargetWorldPos
		ov.HeadTarget = &target
	}
	ov.BodyOffset = rl.Vector3{Y: -0.05}
	ov.SecondaryMotionGain = 0.5
	return ov
}

func emitSleeping() Overlay {
	ov := NeutralOverlay()
	ov.BodyOffset = rl.Vector3{Y: -0.3}
	ov.SpineCurveBias = 0.4
	ov.EarPerk = 0
	ov.SecondaryMotionGain = 0.1
	return ov
}

func emitGrooming(skel *rig.Skeleton) Overlay {
	ov := NeutralOverlay()
	if len(skel.Limbs) > 0 {
		bind := skel.WorldBind(skel.Limbs[0].EndEffectorIdx)
		target := rl.Vector3Add(bind.Translation, rl.Vector3{Y: 0.1})
		ov.LimbTargets = []LimbTarget{{LimbIdx: 0, WorldTarget: target, Active: true}}
	}
	ov.SecondaryMotionGain = 0.6
	return ov
}

func emitThreatDisplay() Overlay {
	ov := NeutralOverlay()
	ov.BodyOffset = rl.Vector3{Y: 0.1}
	ov.EarPerk = 1
	ov.MouthOpen = 0.3
	ov.SpineCurveBias = 0.6
	ov.SecondaryMotionGain = 1.4
	return ov
}

func emitMating(tr activity.Triggers) Overlay {
	ov := NeutralOverlay()
	if tr.TargetWorldPos != nil {
		target := *tr.TargetWorldPos
		ov.HeadTarget = &target
	}
	ov.TailWagAmplitude = 0.5
	ov.TailWagRate = 2.0
	return ov
}

func emitExcretion() Overlay {
	ov := NeutralOverlay()
	ov.BodyOffset = rl.Vector3{Y: -0.15}
	ov.SpineCurveBias = -0.2
	return ov
}

func emitVocalizing() Overlay {
	ov := NeutralOverlay()
	ov.MouthOpen = 1
	ov.EarPerk = 0.5
	return ov
}

func emitAlert() Overlay {
	ov := NeutralOverlay()
	ov.EarPerk = 1
	ov.BodyOffset = rl.Vector3{Y: 0.05}
	ov.SecondaryMotionGain = 0.3
	return ov
}

func emitResting() Overlay {
	ov := NeutralOverlay()
	ov.BodyOffset = rl.Vector3{Y: -0.1}
	ov.SecondaryMotionGain = 0.5
	return ov
}
