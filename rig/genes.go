// Package rig implements the Procedural Rig Generator: classifying a
// creature's morphology genes into a rig category (C1, spec.md §4.1) and
// building a deterministic bone hierarchy and bind pose from it (C2,
// spec.md §4.2).
package rig

import "fmt"

// MorphologyGenes is the immutable per-creature input to rig generation
// (spec.md §3). All scalar fields are normalized reals; habitat hints are
// booleans.
type MorphologyGenes struct {
	BodyLength    float64
	BodyHeight    float64
	AspectRatio   float64
	SpineSegments int
	LegPairs      int
	HasWings      bool
	FinCount      int
	TentacleCount int
	TailLength    float64
	TailSegments  int
	HeadSize      float64
	NeckLength    float64
	SpinalCurve   float64
	UprightPosture bool
	CanWalk       bool

	Aquatic   bool
	Flying    bool
	Burrowing bool
	Arboreal  bool
}

// ErrInvalidMorphology is returned when a gene value falls outside its
// allowed range or violates an inter-field constraint (spec.md §7).
type ErrInvalidMorphology struct {
	Reason string
}

func (e *ErrInvalidMorphology) Error() string {
	return fmt.Sprintf("invalid morphology: %s", e.Reason)
}

// ErrRigTooLarge is returned when a rig would exceed config.RigConfig.MaxBones
// (spec.md §7). The caller is expected to regenerate at a lower LOD.
type ErrRigTooLarge struct {
	BoneCount int
	MaxBones  int
}

func (e *ErrRigTooLarge) Error() string {
	return fmt.Sprintf("rig too large: %d bones exceeds max %d", e.BoneCount, e.MaxBones)
}

// Validate checks gene ranges and inter-field constraints. A creature
// cannot spawn on an invalid gene set (spec.md §7: fail spawn, no partial
// rig created).
func (g MorphologyGenes) Validate() error {
	switch {
	case g.BodyLength <= 0 || g.BodyHeight <= 0:
		return &ErrInvalidMorphology{Reason: "body length and height must be positive"}
	case g.SpineSegments < 1:
		return &ErrInvalidMorphology{Reason: "spine segments must be at least 1"}
	case g.LegPairs < 0 || g.LegPairs > 4:
		return &ErrInvalidMorphology{Reason: "leg pairs must be in [0,4]"}
	case g.TentacleCount < 0:
		return &ErrInvalidMorphology{Reason: "tentacle count cannot be negative"}
	case g.TailSegments < 0:
		return &ErrInvalidMorphology{Reason: "tail segments cannot be negative"}
	case g.FinCount < 0:
		return &ErrInvalidMorphology{Reason: "fin count cannot be negative"}
	case g.NeckLength < 0:
		return &ErrInvalidMorphology{Reason: "neck length cannot be negative"}
	case g.HasWings && g.LegPairs > 2:
		return &ErrInvalidMorphology{Reason: "winged creatures cannot carry more than two leg pairs"}
	}
	return nil
}
