package pose

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/wrenfield/menagerie/anim"
	"github.com/wrenfield/menagerie/config"
	"github.com/wrenfield/menagerie/ik"
	"github.com/wrenfield/menagerie/rig"
)

// Compose resolves the final pose for one tick (spec.md §4.7):
//
//  1. start from the skeleton's bind local transforms.
//  2. apply the overlay's body offset/rotation to the root bone, scaled by
//     its blend weight.
//  3. bend the spine chain by SpineCurveBias and the tail chain by the
//     tail-wag oscillator, both scaled by blend weight.
//  4. solve IK for every active limb target and blend the solved joint
//     rotations in by the overlay's blend weight; if the overlay carries a
//     head target, also solve the head/neck end of the spine chain.
//  5. clamp every bone's local rotation to its configured joint limits.
//  6. add the secondary-motion spring offsets for passive bones.
//  7. propagate local transforms into world space along the parent chain.
func Compose(skel *rig.Skeleton, overlay anim.Overlay, secondary *SecondaryMotion, cfg *config.Config) (SkeletonPose, []error) {
	p := fromBind(skel)
	var warnings []error

	weight := float64(overlay.BlendWeight)

	applyBodyOffset(&p, skel, overlay, weight)
	applySpineCurve(&p, skel, overlay, weight)
	applyTailWag(&p, skel, overlay, weight)

	for _, lt := range overlay.LimbTargets {
		if !lt.Active || lt.LimbIdx < 0 || lt.LimbIdx >= len(skel.Limbs) {
			continue
		}
		if err := applyLimbIK(&p, skel, skel.Limbs[lt.LimbIdx], lt, weight); err != nil {
			warnings = append(warnings, err)
		}
	}

	if overlay.HeadTarget != nil {
		if err := applyHeadIK(&p, skel, *overlay.HeadTarget, weight); err != nil {
			warnings = append(warnings, err)
		}
	}

	clampJointLimits(&p, skel)

	if secondary != nil {
		secondary.Apply(&p, skel, float64(overlay.SecondaryMotionGain))
	}

	p.propagate(skel)
	return p, warnings
}

func applyBodyOffset(p *SkeletonPose, skel *rig.Skeleton, ov anim.Overlay, weight float64) {
	if len(skel.Bones) == 0 {
		return
	}
	root := p.Local[0]
	offset := rl.Vector3Scale(ov.BodyOffset, float32(weight))
	root.Translation = rl.Vector3Add(root.Translation, offset)
	if ov.BodyRotation != (rl.Quaternion{}) {
		delta := rl.QuaternionSlerp(rl.QuaternionIdentity(), ov.BodyRotation, weight)
		root.Rotation = rl.QuaternionNormalize(rl.QuaternionMultiply(root.Rotation, delta))
	}
	p.Local[0] = root
}

// applySpineCurve bends each spine bone by an equal fraction of the
// overlay's curve bias, producing a smooth arc rather than a kink at one
// joint.
func applySpineCurve(p *SkeletonPose, skel *rig.Skeleton, ov anim.Overlay, weight float64) {
	if ov.SpineCurveBias == 0 || len(skel.SpineChain) == 0 {
		return
	}
	perBone := float64(ov.SpineCurveBias) * weight / float64(len(skel.SpineChain))
	axis := rl.Vector3{X: 1, Y: 0, Z: 0}
	delta := rl.QuaternionFromAxisAngle(axis, float32(perBone))
	for _, idx := range skel.SpineChain {
		local := p.Local[idx]
		local.Rotation = rl.QuaternionNormalize(rl.QuaternionMultiply(local.Rotation, delta))
		p.Local[idx] = local
	}
}

// applyTailWag drives a per-bone oscillation along the tail chain with a
// linearly increasing amplitude/phase lag from base to tip, the standard
// whip-wave approach for procedural tail motion.
func applyTailWag(p *SkeletonPose, skel *rig.Skeleton, ov anim.Overlay, weight float64) {
	if ov.TailWagAmplitude == 0 || len(skel.TailChain) == 0 {
		return
	}
	n := len(skel.TailChain)
	for i, idx := range skel.TailChain {
		frac := float64(i+1) / float64(n)
		angle := float64(ov.TailWagAmplitude) * weight * frac * math.Sin(float64(ov.TailWagRate)*frac)
		delta := rl.QuaternionFromAxisAngle(rl.Vector3{Y: 1}, float32(angle))
		local := p.Local[idx]
		local.Rotation = rl.QuaternionNormalize(rl.QuaternionMultiply(local.Rotation, delta))
		p.Local[idx] = local
	}
}

// applyLimbIK solves the first two bones of a limb chain analytically and
// blends the result in by weight; longer chains (tentacles) are handled by
// the FABRIK solver via applyChainIK instead.
func applyLimbIK(p *SkeletonPose, skel *rig.Skeleton, limb rig.LimbSpec, target anim.LimbTarget, weight float64) error {
	if len(limb.SegmentIdxs) < 3 {
		return nil
	}
	if len(limb.SegmentIdxs) > 3 {
		return applyChainIK(p, skel, limb, target, weight)
	}

	rootIdx, midIdx, endIdx := limb.SegmentIdxs[0], limb.SegmentIdxs[1], limb.SegmentIdxs[2]
	rootWorld := skel.WorldBind(rootIdx)
	midWorld := skel.WorldBind(midIdx)
	endWorld := skel.WorldBind(endIdx)

	len1 := float64(rl.Vector3Distance(rootWorld.Translation, midWorld.Translation))
	len2 := float64(rl.Vector3Distance(midWorld.Translation, endWorld.Translation))
	bindRootToMid := rl.Vector3Subtract(midWorld.Translation, rootWorld.Translation)
	bindMidToEnd := rl.Vector3Subtract(endWorld.Translation, midWorld.Translation)

	res, err := ik.SolveTwoBone(rootWorld.Translation, bindRootToMid, bindMidToEnd, len1, len2, target.WorldTarget, target.PoleHint)
	if err != nil {
		return err
	}

	blendLocalRotation(p, rootIdx, res.RootRotation, weight)
	blendLocalRotation(p, midIdx, res.MidRotation, weight)
	return nil
}

// applyChainIK solves a longer limb chain (4+ joints, e.g. tentacles and
// wings) with FABRIK and converts each resulting segment direction into a
// local rotation delta relative to its bind direction. limb.SegmentIdxs
// already ends in the end effector bone.
func applyChainIK(p *SkeletonPose, skel *rig.Skeleton, limb rig.LimbSpec, target anim.LimbTarget, weight float64) error {
	joints := make([]rl.Vector3, len(limb.SegmentIdxs))
	for i, idx := range limb.SegmentIdxs {
		joints[i] = skel.WorldBind(idx).Translation
	}

	res, err := ik.SolveFABRIK(joints, target.WorldTarget, 10, 1e-3)
	if err != nil {
		return err
	}

	for i := 0; i < len(limb.SegmentIdxs)-1; i++ {
		bindDir := rl.Vector3Normalize(rl.Vector3Subtract(joints[i+1], joints[i]))
		solvedDir := rl.Vector3Normalize(rl.Vector3Subtract(res.Positions[i+1], res.Positions[i]))
		delta := rotationBetween(bindDir, solvedDir)
		blendLocalRotation(p, limb.SegmentIdxs[i], delta, weight)
	}
	return nil
}

// headChainLength is how many trailing bones of the spine chain (the
// neck-into-head segment) head IK is allowed to reach through.
const headChainLength = 4

// applyHeadIK points the head at target by solving the head-ward segment
// of the spine chain with FABRIK, the same joint-solve-then-rotation-delta
// approach applyChainIK uses for limbs. skel.SpineChain is built pelvis
// first and head last, so the head-ward segment is its trailing slice.
func applyHeadIK(p *SkeletonPose, skel *rig.Skeleton, target rl.Vector3, weight float64) error {
	n := len(skel.SpineChain)
	if n < 2 {
		return nil
	}
	chainLen := headChainLength
	if chainLen > n {
		chainLen = n
	}
	chainIdxs := skel.SpineChain[n-chainLen:]

	joints := make([]rl.Vector3, len(chainIdxs))
	for i, idx := range chainIdxs {
		joints[i] = skel.WorldBind(idx).Translation
	}

	res, err := ik.SolveFABRIK(joints, target, 10, 1e-3)
	if err != nil {
		return err
	}

	for i := 0; i < len(chainIdxs)-1; i++ {
		bindDir := rl.Vector3Normalize(rl.Vector3Subtract(joints[i+1], joints[i]))
		solvedDir := rl.Vector3Normalize(rl.Vector3Subtract(res.Positions[i+1], res.Positions[i]))
		delta := rotationBetween(bindDir, solvedDir)
		blendLocalRotation(p, chainIdxs[i], delta, weight)
	}
	return nil
}

func blendLocalRotation(p *SkeletonPose, idx int, target rl.Quaternion, weight float64) {
	local := p.Local[idx]
	blended := rl.QuaternionSlerp(local.Rotation, rl.QuaternionMultiply(local.Rotation, target), weight)
	local.Rotation = rl.QuaternionNormalize(blended)
	p.Local[idx] = local
}

func rotationBetween(from, to rl.Vector3) rl.Quaternion {
	dot := float64(rl.Vector3DotProduct(from, to))
	if dot > 0.999999 {
		return rl.QuaternionIdentity()
	}
	if dot < -0.999999 {
		ortho := rl.Vector3CrossProduct(from, rl.Vector3{X: 1})
		if rl.Vector3Length(ortho) < 1e-6 {
			ortho = rl.Vector3CrossProduct(from, rl.Vector3{Y: 1})
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

// clampJointLimits restricts every bone's local rotation to its configured
// cone, expressed as an axis-angle clamp around the bind axis.
func clampJointLimits(p *SkeletonPose, skel *rig.Skeleton) {
	for i, b := range skel.Bones {
		if b.Limits == (rig.JointLimits{}) {
			continue
		}
		local := p.Local[i]
		axis, angle := rl.QuaternionToAxisAngle(local.Rotation)
		euler := rl.Vector3Scale(rl.Vector3Normalize(axis), angle)
		clamped := b.Limits.Clamp(euler)
		mag := rl.Vector3Length(clamped)
		if mag < 1e-6 {
			local.Rotation = rl.QuaternionIdentity()
		} else {
			local.Rotation = rl.QuaternionFromAxisAngle(rl.Vector3Scale(clamped, 1/mag), mag)
		}
		p.Local[i] = local
	}
}
