package rig

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/wrenfield/menagerie/config"
)

// jointLimitsFor returns the static per-bone-kind joint limit table entry
// (spec.md §4.2: "joint limits are assigned per bone kind from a static
// table").
func jointLimitsFor(kind string) JointLimits {
	const wide = float32(math.Pi * 0.8)
	const narrow = float32(math.Pi * 0.45)
	switch kind {
	case "spine", "neck", "tail":
		return JointLimits{MinAngle: rl.Vector3{X: -narrow, Y: -narrow, Z: -narrow}, MaxAngle: rl.Vector3{X: narrow, Y: narrow, Z: narrow}}
	case "hip", "shoulder":
		return JointLimits{MinAngle: rl.Vector3{X: -wide, Y: -narrow, Z: -narrow}, MaxAngle: rl.Vector3{X: wide, Y: narrow, Z: narrow}}
	case "knee", "elbow":
		return JointLimits{MinAngle: rl.Vector3{X: 0, Y: 0, Z: 0}, MaxAngle: rl.Vector3{X: wide, Y: 0, Z: 0}}
	case "ankle", "wrist":
		return JointLimits{MinAngle: rl.Vector3{X: -narrow, Y: -narrow, Z: -narrow}, MaxAngle: rl.Vector3{X: narrow, Y: narrow, Z: narrow}}
	case "tentacle":
		return JointLimits{MinAngle: rl.Vector3{X: -wide, Y: -wide, Z: -wide}, MaxAngle: rl.Vector3{X: wide, Y: wide, Z: wide}}
	default:
		return JointLimits{MinAngle: rl.Vector3{X: -narrow, Y: -narrow, Z: -narrow}, MaxAngle: rl.Vector3{X: narrow, Y: narrow, Z: narrow}}
	}
}

// builder accumulates bones for one skeleton build.
type builder struct {
	bones    []BoneSpec
	skeleton Skeleton
}

func (b *builder) add(name, kind string, parent int, localBind Transform, mass float32) int {
	idx := len(b.bones)
	b.bones = append(b.bones, BoneSpec{
		Name:      name,
		Kind:      kind,
		ParentIdx: parent,
		LocalBind: localBind,
		Limits:    jointLimitsFor(kind),
		Mass:      mass,
	})
	return idx
}

func offsetTransform(dx, dy, dz float32) Transform {
	return Transform{Rotation: rl.QuaternionIdentity(), Translation: rl.Vector3{X: dx, Y: dy, Z: dz}, Scale: 1}
}

// Build derives a Skeleton in hierarchy order with pre-computed inverse
// bind transforms (spec.md §4.2 C2). Identical genes produce a
// byte-identical bind pose.
func Build(genes MorphologyGenes, category Category, rc RigConfig) (*Skeleton, error) {
	b := &builder{}
	segLen := float32(genes.BodyLength) / float32(maxInt(rc.LOD1SpineCap, 1))

	pelvis := b.add("pelvis", "root", -1, IdentityTransform(), 4.0)

	spineSegments := maxInt(genes.SpineSegments, 1)
	spineChain := []int{pelvis}
	cur := pelvis
	segHeight := float32(genes.BodyHeight) / float32(spineSegments+1)
	for i := 0; i < spineSegments; i++ {
		cur = b.add("spine", "spine", cur, offsetTransform(0, segHeight, 0), 1.0)
		spineChain = append(spineChain, cur)
	}

	neckCount := 1
	if rc.LongNecked {
		neckCount = 3
	}
	for i := 0; i < neckCount; i++ {
		cur = b.add("neck", "neck", cur, offsetTransform(0, segHeight*0.6, 0), 0.4)
		spineChain = append(spineChain, cur)
	}
	head := b.add("head", "head", cur, offsetTransform(0, float32(genes.HeadSize), 0), 1.2)
	spineChain = append(spineChain, head)

	var tailChain []int
	if rc.TailSegments > 0 {
		tcur := pelvis
		tailSegHeight := float32(genes.TailLength) / float32(rc.TailSegments)
		for i := 0; i < rc.TailSegments; i++ {
			tcur = b.add("tail", "tail", tcur, offsetTransform(0, -tailSegHeight, 0), 0.3)
			tailChain = append(tailChain, tcur)
		}
	}

	var limbs []LimbSpec
	var feature FeatureBones

	addLegPair := func(kind LimbKind, forward float32, side float32) {
		for _, sign := range []float32{-1, 1} {
			root := b.add("hip", "hip", pelvis, offsetTransform(sign*side, 0, forward), 1.0)
			mid := b.add("knee", "knee", root, offsetTransform(0, -segLen, 0), 0.6)
			end := b.add("ankle", "ankle", mid, offsetTransform(0, -segLen, 0), 0.3)
			limbs = append(limbs, LimbSpec{RootBoneIdx: root, SegmentIdxs: []int{root, mid, end}, EndEffectorIdx: end, Kind: kind})
		}
	}

	addWingPair := func() {
		for _, sign := range []float32{-1, 1} {
			root := b.add("shoulder", "shoulder", spineChain[len(spineChain)/2], offsetTransform(sign*segLen, segLen*0.2, 0), 0.8)
			elbow := b.add("elbow", "elbow", root, offsetTransform(sign*segLen, 0, 0), 0.4)
			wrist := b.add("wrist", "wrist", elbow, offsetTransform(sign*segLen, 0, 0), 0.2)
			tip := b.add("wingtip", "wingtip", wrist, offsetTransform(sign*segLen, 0, 0), 0.1)
			limbs = append(limbs, LimbSpec{RootBoneIdx: root, SegmentIdxs: []int{root, elbow, wrist, tip}, EndEffectorIdx: tip, Kind: Wing})
			feature.WingRoots = append(feature.WingRoots, root)
		}
	}

	addArmPair := func() {
		for _, sign := range []float32{-1, 1} {
			root := b.add("shoulder", "shoulder", spineChain[len(spineChain)/2], offsetTransform(sign*segLen*0.6, 0, 0), 0.6)
			elbow := b.add("elbow", "elbow", root, offsetTransform(0, -segLen*0.8, 0), 0.3)
			wrist := b.add("wrist", "wrist", elbow, offsetTransform(0, -segLen*0.8, 0), 0.15)
			limbs = append(limbs, LimbSpec{RootBoneIdx: root, SegmentIdxs: []int{root, elbow, wrist}, EndEffectorIdx: wrist, Kind: Arm})
		}
	}

	addFinPair := func(count int) {
		for i := 0; i < count; i++ {
			sign := float32(-1)
			if i%2 == 1 {
				sign = 1
			}
			root := b.add("fin", "fin", pelvis, offsetTransform(sign*segLen, 0, float32(i)*segLen*0.2), 0.3)
			tip := b.add("fintip", "fintip", root, offsetTransform(sign*segLen, 0, 0), 0.1)
			limbs = append(limbs, LimbSpec{RootBoneIdx: root, SegmentIdxs: []int{root, tip}, EndEffectorIdx: tip, Kind: Fin})
		}
	}

	addTentacles := func(count int) {
		segCount := clampInt(config.Cfg().Rig.TentacleSegmentMax, 2, config.Cfg().Rig.TentacleSegmentMax)
		for i := 0; i < count; i++ {
			angle := 2 * math.Pi * float64(i) / float64(count)
			sign := float32(math.Cos(angle))
			fwd := float32(math.Sin(angle))
			root := b.add("tentacle_root", "tentacle", pelvis, offsetTransform(sign*segLen*0.4, 0, fwd*segLen*0.4), 0.4)
			chain := []int{root}
			cur := root
			for s := 1; s < segCount; s++ {
				cur = b.add("tentacle_seg", "tentacle", cur, offsetTransform(0, -segLen*0.5, 0), 0.15)
				chain = append(chain, cur)
			}
			limbs = append(limbs, LimbSpec{RootBoneIdx: root, SegmentIdxs: chain, EndEffectorIdx: cur, Kind: Tentacle})
			feature.TentacleChains = append(feature.TentacleChains, chain)
		}
	}

	switch category {
	case Biped:
		addLegPair(BackLeg, 0, segLen*0.5)
		addArmPair()
		feature.EarRoots = append(feature.EarRoots, addEars(b, head, segLen)...)
	case Quadruped:
		addLegPair(FrontLeg, segLen, segLen*0.5)
		addLegPair(BackLeg, -segLen, segLen*0.5)
		feature.EarRoots = append(feature.EarRoots, addEars(b, head, segLen)...)
	case Hexapod:
		addLegPair(FrontLeg, segLen, segLen*0.5)
		addLegPair(FrontLeg, 0, segLen*0.6)
		addLegPair(BackLeg, -segLen, segLen*0.5)
		feature.AntennaeChains = append(feature.AntennaeChains, addAntennae(b, head, segLen)...)
	case Serpentine:
		// no limbs; locomotion is pure spine undulation.
	case Fish:
		addFinPair(genes.FinCount)
	case Avian:
		addWingPair()
		addLegPair(BackLeg, 0, segLen*0.4)
		feature.EarRoots = append(feature.EarRoots, addEars(b, head, segLen)...)
	case Cephalopod:
		count := genes.TentacleCount
		if count < 4 {
			count = 4
		}
		addTentacles(count)
	default: // Custom
		if genes.LegPairs > 0 {
			addLegPair(BackLeg, 0, segLen*0.5)
		}
		if genes.HasWings {
			addWingPair()
		}
	}

	if len(b.bones) > config.Cfg().Rig.MaxBones {
		return nil, &ErrRigTooLarge{BoneCount: len(b.bones), MaxBones: config.Cfg().Rig.MaxBones}
	}

	for i := range b.bones {
		world := (&Skeleton{Bones: b.bones}).WorldBind(i)
		b.bones[i].InverseBind = invertTransform(world)
	}

	skel := &Skeleton{
		Category:   category,
		Bones:      b.bones,
		SpineChain: spineChain,
		Limbs:      limbs,
		TailChain:  tailChain,
		Features:   feature,
		BodyScale:  float32(genes.BodyLength),
	}
	skel.lodCache = buildLODs(skel)
	return skel, nil
}

func addEars(b *builder, head int, segLen float32) []int {
	var roots []int
	for _, sign := range []float32{-1, 1} {
		ear := b.add("ear", "ear", head, offsetTransform(sign*segLen*0.3, segLen*0.3, 0), 0.05)
		roots = append(roots, ear)
	}
	return roots
}

func addAntennae(b *builder, head int, segLen float32) [][]int {
	var chains [][]int
	for _, sign := range []float32{-1, 1} {
		base := b.add("antenna_base", "antenna", head, offsetTransform(sign*segLen*0.2, segLen*0.2, segLen*0.2), 0.03)
		tip := b.add("antenna_tip", "antenna", base, offsetTransform(sign*segLen*0.2, segLen*0.2, 0), 0.02)
		chains = append(chains, []int{base, tip})
	}
	return chains
}

func invertTransform(t Transform) Transform {
	invRot := rl.QuaternionInvert(t.Rotation)
	invScale := float32(1)
	if t.Scale != 0 {
		invScale = 1 / t.Scale
	}
	negTranslation := rl.Vector3Negate(t.Translation)
	rotated := rl.Vector3RotateByQuaternion(negTranslation, invRot)
	translated := rl.Vector3Scale(rotated, invScale)
	return Transform{Rotation: invRot, Translation: translated, Scale: invScale}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// GenerateSkeletonLOD builds a rig directly at a reduced level of detail,
// used when the caller regenerates after an ErrRigTooLarge at full detail
// (spec.md §4.2).
func GenerateSkeletonLOD(genes MorphologyGenes, category Category, rc RigConfig, lod int) (*Skeleton, error) {
	reduced := rc
	switch lod {
	case 1:
		reduced.TailSegments = clampInt(rc.TailSegments/2, 0, rc.TailSegments)
	case 2:
		reduced.TailSegments = clampInt(rc.TailSegments/4, 0, rc.TailSegments)
	}
	reducedGenes := genes
	reducedGenes.SpineSegments = clampInt(genes.SpineSegments, 1, pickSpineCap(rc, lod))
	reducedGenes.TailSegments = reduced.TailSegments
	return Build(reducedGenes, category, reduced)
}

func pickSpineCap(rc RigConfig, lod int) int {
	switch lod {
	case 1:
		return rc.LOD1SpineCap
	case 2:
		return rc.LOD2SpineCap
	default:
		return 1 << 30
	}
}

// buildLODs precomputes progressively simplified skeletons for this rig:
// LOD1 keeps half of the tail segments and LOD2 a quarter, and both drop
// the ear and antenna bones. Limb segments are not fused; limb chains and
// the spine keep every bone.
func buildLODs(full *Skeleton) map[int]*Skeleton {
	cache := make(map[int]*Skeleton, 2)
	cache[1] = simplify(full, full.BodyScale, 2, true)
	cache[2] = simplify(full, full.BodyScale, 4, true)
	return cache
}

// simplify produces a copy of the skeleton with tail segments reduced by
// tailDivisor and feature bones (ears/antennae) dropped. Limb chains and
// spine are preserved since IK correctness for LOD1/2 still matters for
// the non-rendered gameplay-facing pose.
func simplify(full *Skeleton, bodyScale float32, tailDivisor int, dropFeatures bool) *Skeleton {
	keep := make([]bool, len(full.Bones))
	for i := range keep {
		keep[i] = true
	}
	if dropFeatures {
		for _, idx := range full.Features.EarRoots {
			keep[idx] = false
		}
		for _, chain := range full.Features.AntennaeChains {
			for _, idx := range chain {
				keep[idx] = false
			}
		}
	}
	newTailLen := len(full.TailChain) / tailDivisor
	for i, idx := range full.TailChain {
		if i >= newTailLen {
			keep[idx] = false
		}
	}

	remap := make(map[int]int, len(full.Bones))
	var bones []BoneSpec
	for i, bs := range full.Bones {
		if !keep[i] {
			continue
		}
		newParent := -1
		if bs.ParentIdx >= 0 {
			// walk up until a kept ancestor is found
			p := bs.ParentIdx
			for p >= 0 && !keep[p] {
				p = full.Bones[p].ParentIdx
			}
			if p >= 0 {
				newParent = remap[p]
			}
		}
		remap[i] = len(bones)
		nb := bs
		nb.ParentIdx = newParent
		bones = append(bones, nb)
	}

	remapChain := func(chain []int) []int {
		var out []int
		for _, idx := range chain {
			if keep[idx] {
				out = append(out, remap[idx])
			}
		}
		return out
	}
	remapLimb := func(l LimbSpec) (LimbSpec, bool) {
		segs := remapChain(l.SegmentIdxs)
		if len(segs) < 2 {
			return LimbSpec{}, false
		}
		return LimbSpec{RootBoneIdx: segs[0], SegmentIdxs: segs, EndEffectorIdx: segs[len(segs)-1], Kind: l.Kind}, true
	}

	var limbs []LimbSpec
	for _, l := range full.Limbs {
		if nl, ok := remapLimb(l); ok {
			limbs = append(limbs, nl)
		}
	}

	return &Skeleton{
		Category:   full.Category,
		Bones:      bones,
		SpineChain: remapChain(full.SpineChain),
		Limbs:      limbs,
		TailChain:  remapChain(full.TailChain),
		Features:   FeatureBones{}, // feature lists cleared; wing and tentacle bones remain as limb bones
		BodyScale:  bodyScale,
	}
}
