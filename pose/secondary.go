package pose

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/wrenfield/menagerie/config"
	"github.com/wrenfield/menagerie/rig"
)

// spring is a single damped-spring degree of freedom (spec.md §4.8):
// value is the current angular offset from rest, in radians, and velocity
// its rate of change.
type spring struct {
	value    float32
	velocity float32
}

// SecondaryMotion simulates passive, non-IK-driven bone wobble (ears,
// wings, tentacles, antennae, tail) as damped springs driven by root
// acceleration (spec.md §4.8). One instance is owned per creature and
// persists across ticks.
type SecondaryMotion struct {
	boneIdxs   []int
	springs    []spring
	lastRootVel rl.Vector3
	haveLastVel bool
}

// NewSecondaryMotion creates a spring per passive bone named in the
// skeleton's feature chains and tail chain.
func NewSecondaryMotion(skel *rig.Skeleton) *SecondaryMotion {
	sm := &SecondaryMotion{}
	add := func(idx int) {
		sm.boneIdxs = append(sm.boneIdxs, idx)
		sm.springs = append(sm.springs, spring{})
	}
	for _, idx := range skel.Features.WingRoots {
		add(idx)
	}
	for _, idx := range skel.Features.EarRoots {
		add(idx)
	}
	for _, chain := range skel.Features.TentacleChains {
		for _, idx := range chain {
			add(idx)
		}
	}
	for _, chain := range skel.Features.AntennaeChains {
		for _, idx := range chain {
			add(idx)
		}
	}
	for _, idx := range skel.TailChain {
		add(idx)
	}
	return sm
}

// Advance integrates every spring forward by dt seconds given the root's
// current velocity (its change since the previous call, divided by dt, is
// the acceleration that forces the springs) and the configured
// stiffness/damping/impulse gains. rootWorldPos is not read. Large dt values are
// subdivided into steps no larger than cfg.IK.MaxStableDT to keep the
// semi-implicit Euler integration stable (spec.md §4.8 edge case).
func (s *SecondaryMotion) Advance(dt float64, rootWorldPos rl.Vector3, rootVelocity rl.Vector3, gain float64, cfg *config.Config) {
	if len(s.springs) == 0 {
		return
	}

	maxStable := cfg.IK.MaxStableDT
	if maxStable <= 0 {
		maxStable = dt
	}
	steps := int(math.Ceil(dt / maxStable))
	if steps < 1 {
		steps = 1
	}
	subDT := dt / float64(steps)

	var accel rl.Vector3
	if s.haveLastVel && dt > 0 {
		accel = rl.Vector3Scale(rl.Vector3Subtract(rootVelocity, s.lastRootVel), float32(1/dt))
	}
	s.lastRootVel = rootVelocity
	s.haveLastVel = true

	forcing := float32(cfg.Secondary.RootImpulseGain*gain) * rl.Vector3Length(accel)
	stiffness := float32(cfg.Secondary.DefaultStiffness)
	damping := float32(cfg.Secondary.DefaultDamping)

	for step := 0; step < steps; step++ {
		for i := range s.springs {
			sp := &s.springs[i]
			accelTerm := -stiffness*sp.value - damping*sp.velocity + forcing
			sp.velocity += accelTerm * float32(subDT)
			sp.value += sp.velocity * float32(subDT)
		}
	}
}

// Apply layers each spring's angular offset onto its bone's local rotation
// about the bone's lateral axis, scaled by gain (e.g. dampened during
// Sleeping, amplified during ThreatDisplay per the animation driver).
func (s *SecondaryMotion) Apply(p *SkeletonPose, skel *rig.Skeleton, gain float64) {
	for i, idx := range s.boneIdxs {
		if idx < 0 || idx >= len(p.Local) {
			continue
		}
		angle := s.springs[i].value * float32(gain)
		delta := rl.QuaternionFromAxisAngle(rl.Vector3{X: 1}, angle)
		local := p.Local[idx]
		local.Rotation = rl.QuaternionNormalize(rl.QuaternionMultiply(local.Rotation, delta))
		p.Local[idx] = local
	}
}
