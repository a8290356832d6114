// Package components defines the ECS components wiring the animation
// core's rig, activity, animation, and secondary-motion state into the
// mlange-42/ark world used by the systems package.
package components

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/wrenfield/menagerie/activity"
	"github.com/wrenfield/menagerie/anim"
	"github.com/wrenfield/menagerie/pose"
	"github.com/wrenfield/menagerie/rig"
)

// Skeleton is the immutable rig built once at spawn (C1/C2). Metamorphosis
// replaces the whole component rather than mutating it.
type Skeleton struct {
	Rig *rig.Skeleton
}

// Triggers is the per-tick drive/environment input written by the
// behavior collaborator and read by the Trigger Evaluator (C3).
type Triggers struct {
	Value activity.Triggers
}

// ActivityState owns the per-creature state machine (C4). It is a pointer
// component because the machine carries its own seeded RNG and must
// persist identically across ticks.
type ActivityState struct {
	Machine *activity.StateMachine
}

// Driver owns the per-creature animation driver (C5), which tracks gait
// phase across ticks.
type Driver struct {
	D *anim.Driver
}

// Secondary owns the per-creature passive-spring simulator (C8).
type Secondary struct {
	Motion *pose.SecondaryMotion
}

// Pose is the resolved output pose for the current tick (C7), read by the
// external rendering/skinning collaborator.
type Pose struct {
	Value pose.SkeletonPose
}

// MotionState is the external-collaborator-owned root motion: written by
// movement/physics, read here to drive the gait cycle and root
// acceleration feeding secondary motion.
type MotionState struct {
	WorldPosition rl.Vector3
	WorldVelocity rl.Vector3
	GaitName      string
}

// CreatureID holds a creature's numeric id. The core does not attach this
// component at spawn: the id that seeds the activity state machine's RNG
// is passed to activity.NewStateMachine directly.
type CreatureID struct {
	ID int64
}
