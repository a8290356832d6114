package rig

import rl "github.com/gen2brain/raylib-go/raylib"

// Transform is a rotation + translation + uniform scale, the
// representation spec.md §3 specifies for both bind transforms and
// SkeletonPose entries.
type Transform struct {
	Rotation    rl.Quaternion
	Translation rl.Vector3
	Scale       float32
}

// IdentityTransform returns the neutral transform.
func IdentityTransform() Transform {
	return Transform{Rotation: rl.QuaternionIdentity(), Translation: rl.Vector3{}, Scale: 1}
}

// JointLimits bounds rotation on each rotational axis for a bone (spec.md
// §3 BoneSpec.jointLimits).
type JointLimits struct {
	MinAngle rl.Vector3 // radians, per axis
	MaxAngle rl.Vector3
}

// Clamp restricts a per-axis Euler delta to the joint's allowed cone.
func (j JointLimits) Clamp(axis rl.Vector3) rl.Vector3 {
	clamp1 := func(v, lo, hi float32) float32 {
		if v < lo {
			return lo
		}
		if v > hi {
			return hi
		}
		return v
	}
	return rl.Vector3{
		X: clamp1(axis.X, j.MinAngle.X, j.MaxAngle.X),
		Y: clamp1(axis.Y, j.MinAngle.Y, j.MaxAngle.Y),
		Z: clamp1(axis.Z, j.MinAngle.Z, j.MaxAngle.Z),
	}
}

// BoneSpec is a single bone in the hierarchy (spec.md §3).
type BoneSpec struct {
	Name              string
	Kind              string
	ParentIdx         int // -1 for root
	LocalBind         Transform
	InverseBind       Transform
	Limits            JointLimits
	Mass              float32
}

// LimbSpec describes one limb chain within the rig (spec.md §3).
type LimbSpec struct {
	RootBoneIdx    int
	SegmentIdxs    []int
	EndEffectorIdx int
	Kind           LimbKind
}

// FeatureBones groups secondary-motion-only bone chains (spec.md §3).
type FeatureBones struct {
	WingRoots       []int
	EarRoots        []int
	TentacleChains  [][]int
	AntennaeChains  [][]int
}

// Skeleton is the derived, immutable rig definition for a creature
// (spec.md §3 RigDefinition). It is created once at spawn and never
// mutated afterward; metamorphosis creates a new Skeleton.
type Skeleton struct {
	Category     Category
	Bones        []BoneSpec // root first; parent index always precedes child
	SpineChain   []int      // pelvis-to-head order: pelvis first, head last
	Limbs        []LimbSpec
	TailChain    []int
	Features     FeatureBones
	BodyScale    float32 // reference scale used for IK epsilon and LOD metrics
	lodCache     map[int]*Skeleton
}

// ForLOD returns the skeleton simplified for the given LOD level (0 = full
// detail). Level 0 returns the skeleton itself.
func (s *Skeleton) ForLOD(level int) *Skeleton {
	if level <= 0 {
		return s
	}
	if s.lodCache != nil {
		if lod, ok := s.lodCache[level]; ok {
			return lod
		}
	}
	return s
}

// BoneCount returns the number of bones in the skeleton.
func (s *Skeleton) BoneCount() int {
	return len(s.Bones)
}

// WorldBind computes the world-space bind transform for a bone by walking
// its parent chain, following the accumulation pattern used by bone
// hierarchies throughout the corpus (parent-chain matrix multiply).
func (s *Skeleton) WorldBind(boneIdx int) Transform {
	if boneIdx < 0 || boneIdx >= len(s.Bones) {
		return IdentityTransform()
	}
	b := s.Bones[boneIdx]
	local := b.LocalBind
	if b.ParentIdx < 0 {
		return local
	}
	parentWorld := s.WorldBind(b.ParentIdx)
	return ComposeTransforms(parentWorld, local)
}

// ComposeTransforms applies child local transform under parent world
// transform: result = parent * local.
func ComposeTransforms(parent, local Transform) Transform {
	rotatedTranslation := rl.Vector3RotateByQuaternion(local.Translation, parent.Rotation)
	scaled := rl.Vector3Scale(rotatedTranslation, parent.Scale)
	translation := rl.Vector3Add(parent.Translation, scaled)
	rotation := rl.QuaternionNormalize(rl.QuaternionMultiply(parent.Rotation, local.Rotation))
	return Transform{
		Rotation:    rotation,
		Translation: translation,
		Scale:       parent.Scale * local.Scale,
	}
}
