package ik

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// TwoBoneResult is the solved orientation pair for a two-segment limb
// (spec.md §4.6 two-bone analytic solver): the rotation to apply at the
// root joint and at the mid joint, plus the resulting end-effector
// position (which may fall short of target if the target was out of
// reach — see Clamped).
type TwoBoneResult struct {
	RootRotation rl.Quaternion
	MidRotation  rl.Quaternion
	EndPosition  rl.Vector3
	Clamped      bool // true if target was beyond reach and the chain was fully extended toward it
}

const ikLengthEpsilon = 1e-6

// SolveTwoBone solves a root-mid-end chain analytically using the law of
// cosines (spec.md §4.6). rootPos and the two bone lengths define the
// chain's reach; bindRootToMid and bindMidToEnd are the bind-pose
// direction vectors (root->mid, mid->end) used as the reference frame the
// returned rotations are deltas from. target is the desired end-effector
// world position; pole biases the bend direction (e.g. knee/elbow facing)
// when the triangle is otherwise ambiguous.
//
// Reach beyond len1+len2 is clamped: the chain straightens fully toward
// the target direction and Clamped is set. A target at (or inside) zero
// distance from rootPos, or bone lengths too small to form a triangle,
// returns a DegenerateError.
func SolveTwoBone(rootPos, bindRootToMid, bindMidToEnd rl.Vector3, len1, len2 float64, target, pole rl.Vector3) (TwoBoneResult, error) {
	if len1 < ikLengthEpsilon || len2 < ikLengthEpsilon {
		return TwoBoneResult{}, degenerate("bone length near zero")
	}

	toTarget := rl.Vector3Subtract(target, rootPos)
	dist := float64(rl.Vector3Length(toTarget))
	if dist < ikLengthEpsilon {
		return TwoBoneResult{}, degenerate("target coincident with root")
	}

	clamped := false
	maxReach := len1 + len2
	if dist > maxReach {
		dist = maxReach
		clamped = true
	}
	minReach := math.Abs(len1 - len2)
	if dist < minReach+ikLengthEpsilon {
		dist = minReach + ikLengthEpsilon
	}

	// Law of cosines: angle at mid joint (between the two bones) and the
	// angle at root between the root->target axis and root->mid bone.
	cosMid := (len1*len1 + len2*len2 - dist*dist) / (2 * len1 * len2)
	cosMid = clampUnit(cosMid)
	midAngle := math.Acos(cosMid)

	cosRoot := (len1*len1 + dist*dist - len2*len2) / (2 * len1 * dist)
	cosRoot = clampUnit(cosRoot)
	rootAngle := math.Acos(cosRoot)

	dir := rl.Vector3Normalize(toTarget)
	bendAxis := poleBendAxis(dir, pole)
	if isNaNVec(bendAxis) {
		return TwoBoneResult{}, degenerate("pole vector collinear with target direction")
	}

	rootDelta := rl.QuaternionFromAxisAngle(bendAxis, float32(rootAngle))
	desiredRootToMidDir := rl.Vector3RotateByQuaternion(dir, rootDelta)
	rootRotation := rotationBetween(rl.Vector3Normalize(bindRootToMid), desiredRootToMidDir)

	// Interior angle between the two segments is (pi - midAngle) measured
	// from the straight extension of bone 1.
	midDelta := rl.QuaternionFromAxisAngle(bendAxis, float32(-(math.Pi - midAngle)))
	desiredMidToEndDir := rl.Vector3RotateByQuaternion(desiredRootToMidDir, midDelta)
	midRotation := rotationBetween(rl.Vector3Normalize(bindMidToEnd), desiredMidToEndDir)

	midPos := rl.Vector3Add(rootPos, rl.Vector3Scale(desiredRootToMidDir, float32(len1)))
	endPos := rl.Vector3Add(midPos, rl.Vector3Scale(desiredMidToEndDir, float32(len2)))

	return TwoBoneResult{
		RootRotation: rootRotation,
		MidRotation:  midRotation,
		EndPosition:  endPos,
		Clamped:      clamped,
	}, nil
}

// poleBendAxis returns the normal of the plane containing the target
// direction and the pole hint, i.e. the axis the elbow/knee bends around.
func poleBendAxis(dir, pole rl.Vector3) rl.Vector3 {
	axis := rl.Vector3CrossProduct(dir, pole)
	if rl.Vector3Length(axis) < ikLengthEpsilon {
		// Pole collinear with target: fall back to an arbitrary axis
		// orthogonal to dir so the solve degrades gracefully instead of
		// failing outright.
		fallback := rl.Vector3{X: 0, Y: 1, Z: 0}
		axis = rl.Vector3CrossProduct(dir, fallback)
		if rl.Vector3Length(axis) < ikLengthEpsilon {
			fallback = rl.Vector3{X: 1, Y: 0, Z: 0}
			axis = rl.Vector3CrossProduct(dir, fallback)
		}
	}
	return rl.Vector3Normalize(axis)
}

// rotationBetween returns the shortest-arc quaternion rotating from to.
func rotationBetween(from, to rl.Vector3) rl.Quaternion {
	dot := float64(rl.Vector3DotProduct(from, to))
	if dot > 0.999999 {
		return rl.QuaternionIdentity()
	}
	if dot < -0.999999 {
		ortho := rl.Vector3CrossProduct(from, rl.Vector3{X: 1, Y: 0, Z: 0})
		if rl.Vector3Length(ortho) < ikLengthEpsilon {
			ortho = rl.Vector3CrossProduct(from, rl.Vector3{X: 0, Y: 1, Z: 0})
		}
		return rl.QuaternionFromAxisAngle(rl.Vector3Normalize(ortho), math.Pi)
	}
	axis := rl.Vector3Normalize(rl.Vector3CrossProduct(from, to))
	angle := math.Acos(clampUnit(dot))
	return rl.QuaternionFromAxisAngle(axis, float32(angle))
}

func clampUnit(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}

func isNaNVec(v rl.Vector3) bool {
	return math.IsNaN(float64(v.X)) || math.IsNaN(float64(v.Y)) || math.IsNaN(float64(v.Z))
}
