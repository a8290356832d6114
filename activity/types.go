// Package activity implements the Trigger Evaluator (C3) and Activity
// State Machine (C4): folding per-tick drives and environment into a
// priority-ranked desired activity, then arbitrating transitions between
// activities with blend-in/blend-out timing (spec.md §4.3, §4.4).
package activity

import rl "github.com/gen2brain/raylib-go/raylib"

// Type is the closed enum of activities a creature can perform
// (spec.md §3 ActivityType). Order is the stable tie-break order used by
// the evaluator (spec.md §4.3 step 3).
type Type uint8

const (
	Idle Type = iota
	Locomotion
	Eating
	Drinking
	Sleeping
	Grooming
	ThreatDisplay
	Mating
	Excretion
	Vocalizing
	Resting
	Alert
	typeCount
)

var typeNames = [...]string{
	"Idle", "Locomotion", "Eating", "Drinking", "Sleeping", "Grooming",
	"ThreatDisplay", "Mating", "Excretion", "Vocalizing", "Resting", "Alert",
}

// String returns the display/config-table name for the activity type.
func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "Unknown"
}

// AllTypes returns every registered activity type in stable order.
func AllTypes() []Type {
	out := make([]Type, typeCount)
	for i := range out {
		out[i] = Type(i)
	}
	return out
}

// Phase is the current substate within the activity state machine
// (spec.md §4.4).
type Phase uint8

const (
	PhaseIdle Phase = iota
	PhaseBlendIn
	PhaseHold
	PhaseBlendOut
)

func (p Phase) String() string {
	switch p {
	case PhaseBlendIn:
		return "BlendIn"
	case PhaseHold:
		return "Hold"
	case PhaseBlendOut:
		return "BlendOut"
	default:
		return "Idle"
	}
}

// Triggers is the per-creature, per-tick input updated by the behavior
// collaborator (spec.md §3 ActivityTriggers). Scalars are normalized to
// [0,1]; booleans describe momentary environment conditions.
type Triggers struct {
	Hunger         float64
	Thirst         float64
	Fatigue        float64
	Stress         float64
	Social         float64
	Reproductive   float64
	GroomingNeed   float64
	ExcretionNeed  float64
	VocalizeUrge   float64
	ThreatLevel    float64

	FoodNearby        bool
	MatePresent       bool
	ThreatPresent     bool
	TerritoryIntrusion bool

	TargetWorldPos *rl.Vector3
}
