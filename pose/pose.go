// Package pose implements the Pose Compositor (C7) and Secondary Motion
// (C8): merging the bind skeleton, the animation overlay, and IK solves
// into a final per-bone world pose, then layering passive spring motion
// on top (spec.md §4.7, §4.8).
package pose

import "github.com/wrenfield/menagerie/rig"

// SkeletonPose is the fully resolved per-bone pose for one tick (spec.md
// §3 SkeletonPose): Local mirrors the bind array's ordering and holds the
// composed local transform, World holds the parent-chain-propagated
// world-space transform the external renderer collaborator consumes.
type SkeletonPose struct {
	Local []rig.Transform
	World []rig.Transform
}

// fromBind returns a pose initialized to the skeleton's bind transforms.
func fromBind(skel *rig.Skeleton) SkeletonPose {
	n := skel.BoneCount()
	p := SkeletonPose{
		Local: make([]rig.Transform, n),
		World: make([]rig.Transform, n),
	}
	for i, b := range skel.Bones {
		p.Local[i] = b.LocalBind
	}
	return p
}

// propagate recomputes World from Local by walking the bone hierarchy in
// index order, relying on the invariant (enforced at build time) that a
// bone's parent index always precedes it in the array.
func (p *SkeletonPose) propagate(skel *rig.Skeleton) {
	for i, b := range skel.Bones {
		if b.ParentIdx < 0 {
			p.World[i] = p.Local[i]
			continue
		}
		p.World[i] = rig.ComposeTransforms(p.World[b.ParentIdx], p.Local[i])
	}
}
