// Package anim implements the Animation Driver (C5): turning the active
// activity, its blend weight, and the locomotion gait table into a
// PoseOverlay the Pose Compositor (pose package) layers on top of the base
// skeleton (spec.md §4.5).
package anim

import rl "github.com/gen2brain/raylib-go/raylib"

// LimbTarget is a desired end-effector position for one limb chain, fed to
// the IK solvers by the Pose Compositor (spec.md §3 PoseOverlay.limbTargets).
type LimbTarget struct {
	LimbIdx     int
	WorldTarget rl.Vector3
	PoleHint    rl.Vector3
	Active      bool
}

// Overlay is the per-tick animation output of the driver (spec.md §3
// PoseOverlay), consumed by the Pose Compositor.
type Overlay struct {
	BodyOffset     rl.Vector3
	BodyRotation   rl.Quaternion
	HeadTarget     *rl.Vector3
	LimbTargets    []LimbTarget
	SpineCurveBias float32
	TailWagAmplitude float32
	TailWagRate      float32
	EarPerk          float32
	MouthOpen        float32

	// SecondaryMotionGain scales the passive-spring response computed by
	// the secondary-motion system (spec.md §4.8), e.g. dampened during
	// Sleeping and amplified during ThreatDisplay.
	SecondaryMotionGain float32

	// BlendWeight is copied from the activity state machine so downstream
	// composition doesn't need a second lookup (spec.md §4.7 step 3).
	BlendWeight float32
}

// NeutralOverlay returns the overlay applied when no activity is active:
// zero offsets, full secondary motion, full weight withheld to the base
// locomotion pose.
func NeutralOverlay() Overlay {
	return Overlay{
		BodyRotation:        rl.QuaternionIdentity(),
		SecondaryMotionGain: 1,
		BlendWeight:         0,
	}
}
