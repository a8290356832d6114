package anim

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/wrenfield/menagerie/config"
	"github.com/wrenfield/menagerie/rig"
)

// TerrainSampler is the ground-height collaborator the locomotion foot
// placement consults (spec.md §6): heightAt(worldX, worldZ) -> (y, normal).
// A sampler that cannot answer synchronously (e.g. terrain streamed from a
// separate thread) reports ok=false and the caller falls back to the last
// known-good sample (spec.md §7 StaleTerrain).
type TerrainSampler interface {
	HeightAt(worldX, worldZ float32) (height float32, normal rl.Vector3, ok bool)
}

// noTerrain is the default TerrainSampler: it never answers, so foot
// placement always falls back to bind-pose height.
type noTerrain struct{}

func (noTerrain) HeightAt(worldX, worldZ float32) (float32, rl.Vector3, bool) {
	return 0, rl.Vector3{Y: 1}, false
}

// FootTerrain wraps a TerrainSampler with a per-limb last-known-good cache,
// implementing the StaleTerrain fallback policy: when the sampler can't
// answer this tick, the previous successful sample for that limb is reused
// rather than snapping the foot back to bind-pose height.
type FootTerrain struct {
	sampler TerrainSampler
	lastY   []float32
	hasLast []bool
}

// NewFootTerrain wraps sampler (nil becomes a no-op sampler that always
// falls back to bind pose) for use across a creature's limb set.
func NewFootTerrain(sampler TerrainSampler) *FootTerrain {
	if sampler == nil {
		sampler = noTerrain{}
	}
	return &FootTerrain{sampler: sampler}
}

// SetSampler swaps the underlying collaborator without discarding the
// per-limb cache (nil reverts to the no-op sampler).
func (f *FootTerrain) SetSampler(sampler TerrainSampler) {
	if sampler == nil {
		sampler = noTerrain{}
	}
	f.sampler = sampler
}

// HeightFor returns the ground height to use for limbIdx's foot target at
// (worldX, worldZ). When the sampler can't answer this tick it falls back
// to that limb's last known-good sample, or to bindY if there is none.
func (f *FootTerrain) HeightFor(limbIdx int, worldX, worldZ, bindY float32) float32 {
	if limbIdx >= len(f.lastY) {
		grown := make([]float32, limbIdx+1)
		copy(grown, f.lastY)
		f.lastY = grown
		growHas := make([]bool, limbIdx+1)
		copy(growHas, f.hasLast)
		f.hasLast = growHas
	}
	if y, _, ok := f.sampler.HeightAt(worldX, worldZ); ok {
		f.lastY[limbIdx] = y
		f.hasLast[limbIdx] = true
		return y
	}
	if f.hasLast[limbIdx] {
		return f.lastY[limbIdx]
	}
	return bindY
}

// footPhase computes the normalized [0,1) stance/swing phase for a limb
// given the gait's global cycle phase and that limb's configured offset.
func footPhase(cyclePhase, offset float64) float64 {
	p := cyclePhase + offset
	p -= math.Floor(p)
	return p
}

// footTrajectory returns the local-space foot lift for a single limb at
// phase p under a gait with the given duty cycle and step height. During
// the stance fraction ([0, dutyCycle)) the foot stays grounded; during
// swing it arcs up following a half-sine and forward along the stride.
func footTrajectory(p, dutyCycle, stepHeight, strideLength float64) (lift, strideOffset float64) {
	if p < dutyCycle {
		// stance: foot planted, sweeping backward relative to the body as
		// the body moves forward over it.
		stanceFrac := p / dutyCycle
		return 0, strideLength * (0.5 - stanceFrac)
	}
	swingFrac := (p - dutyCycle) / (1 - dutyCycle)
	lift = stepHeight * math.Sin(swingFrac*math.Pi)
	strideOffset = strideLength * (swingFrac - 0.5)
	return lift, strideOffset
}

// Locomotion computes the base walk-cycle overlay for gaitName at
// cyclePhase in [0,1), grounded on the gait-template phase-offset tables
// used by legged-robot motion planners (config.GaitSpec). speed is the
// creature's current world-space speed in body-units/sec: stride length
// and undulation amplitude are both sized by it (spec.md §4.5 "sized by
// body length and speed") rather than fixed per gait. terrain may be nil,
// in which case foot targets use bind-pose height only.
func Locomotion(skel *rig.Skeleton, gaitName string, cyclePhase, speed float64, cfg *config.Config, terrain *FootTerrain) Overlay {
	ov := NeutralOverlay()
	gait, ok := cfg.Gaits[gaitName]
	if !ok {
		return ov
	}

	if gait.Undulation {
		amplitude := gait.UndulationAmplitude * (0.5 + speed)
		ov.SpineCurveBias = float32(amplitude * math.Sin(2*math.Pi*cyclePhase))
		return ov
	}

	strideLength := speed * gait.CycleTime

	ov.LimbTargets = make([]LimbTarget, 0, len(skel.Limbs))
	for i, limb := range skel.Limbs {
		offset, ok := gait.PhaseOffset[limb.Kind.String()]
		if !ok {
			continue
		}
		p := footPhase(cyclePhase, offset)
		lift, strideOffset := footTrajectory(p, gait.DutyCycle, gait.StepHeight, strideLength)

		bind := skel.WorldBind(limb.EndEffectorIdx)
		targetX := bind.Translation.X + float32(strideOffset)
		targetZ := bind.Translation.Z
		targetY := bind.Translation.Y
		if terrain != nil {
			targetY = terrain.HeightFor(i, targetX, targetZ, bind.Translation.Y)
		}
		target := rl.Vector3{
			X: targetX,
			Y: targetY + float32(lift),
			Z: targetZ,
		}
		ov.LimbTargets = append(ov.LimbTargets, LimbTarget{
			LimbIdx:     i,
			WorldTarget: target,
			PoleHint:    rl.Vector3{X: 0, Y: -1, Z: 0},
			Active:      true,
		})
	}
	return ov
}
