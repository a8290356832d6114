package pose

import (
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/wrenfield/menagerie/anim"
	"github.com/wrenfield/menagerie/config"
	"github.com/wrenfield/menagerie/rig"
)

func init() {
	config.MustInit("")
}

func quadSkeleton(t *testing.T) *rig.Skeleton {
	t.Helper()
	genes := rig.MorphologyGenes{
		BodyLength: 1.2, BodyHeight: 0.6, SpineSegments: 5, LegPairs: 2,
		TailLength: 0.4, TailSegments: 6, HeadSize: 0.15,
	}
	cat, rc, err := rig.Classify(genes)
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	skel, err := rig.Build(genes, cat, rc)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return skel
}

func TestCompose_ZeroWeightOverlayReproducesBindPose(t *testing.T) {
	skel := quadSkeleton(t)
	overlay := anim.NeutralOverlay()
	p, warnings := Compose(skel, overlay, nil, config.Cfg())
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	for i, b := range skel.Bones {
		if p.Local[i].Translation != b.LocalBind.Translation {
			t.Fatalf("bone %d translation drifted at zero blend weight", i)
		}
	}
}

func TestCompose_PropagatesWorldTransformsFromRoot(t *testing.T) {
	skel := quadSkeleton(t)
	overlay := anim.NeutralOverlay()
	overlay.BlendWeight = 1
	overlay.BodyOffset = rl.Vector3{Y: 0.5}
	p, _ := Compose(skel, overlay, nil, config.Cfg())
	if p.World[0].Translation.Y != p.Local[0].Translation.Y {
		t.Fatal("root world transform should equal root local transform")
	}
	// a pure translation offset on the root (no rotation change anywhere)
	// should shift every descendant's world position by the same amount.
	lastIdx := len(skel.Bones) - 1
	bindWorld := skel.WorldBind(lastIdx)
	gotY := p.World[lastIdx].Translation.Y
	wantY := bindWorld.Translation.Y + overlay.BodyOffset.Y
	if diff := gotY - wantY; diff > 1e-3 || diff < -1e-3 {
		t.Fatalf("descendant world transform should shift with root offset: got %f want %f", gotY, wantY)
	}
}

func TestCompose_LimbIKMovesEndEffectorTowardTarget(t *testing.T) {
	skel := quadSkeleton(t)
	if len(skel.Limbs) == 0 {
		t.Skip("no limbs on this rig")
	}
	limb := skel.Limbs[0]
	bindEnd := skel.WorldBind(limb.EndEffectorIdx).Translation
	target := rl.Vector3Add(bindEnd, rl.Vector3{X: 0.05, Y: 0.1})

	overlay := anim.NeutralOverlay()
	overlay.BlendWeight = 1
	overlay.LimbTargets = []anim.LimbTarget{{LimbIdx: 0, WorldTarget: target, PoleHint: rl.Vector3{Z: 1}, Active: true}}

	p, warnings := Compose(skel, overlay, nil, config.Cfg())
	if len(warnings) != 0 {
		t.Fatalf("unexpected IK warnings: %v", warnings)
	}
	endIdx := limb.EndEffectorIdx
	distBefore := rl.Vector3Distance(bindEnd, target)
	distAfter := rl.Vector3Distance(p.World[endIdx].Translation, target)
	if distAfter >= distBefore {
		t.Fatalf("IK should move end effector closer to target: before=%f after=%f", distBefore, distAfter)
	}
}

func TestCompose_DegenerateIKReturnsWarningNotPanic(t *testing.T) {
	skel := quadSkeleton(t)
	if len(skel.Limbs) == 0 {
		t.Skip("no limbs on this rig")
	}
	limb := skel.Limbs[0]
	rootPos := skel.WorldBind(limb.SegmentIdxs[0]).Translation

	overlay := anim.NeutralOverlay()
	overlay.BlendWeight = 1
	overlay.LimbTargets = []anim.LimbTarget{{LimbIdx: 0, WorldTarget: rootPos, Active: true}}

	_, warnings := Compose(skel, overlay, nil, config.Cfg())
	if len(warnings) == 0 {
		t.Fatal("expected a degenerate-IK warning for a target coincident with the root joint")
	}
}

func TestCompose_HeadTargetMovesHeadTowardTarget(t *testing.T) {
	skel := quadSkeleton(t)
	if len(skel.SpineChain) < 2 {
		t.Skip("rig has no head/neck chain to solve")
	}
	headIdx := skel.SpineChain[len(skel.SpineChain)-1]
	bindHead := skel.WorldBind(headIdx).Translation
	target := rl.Vector3Add(bindHead, rl.Vector3{X: 0.05, Y: -0.1})

	overlay := anim.NeutralOverlay()
	overlay.BlendWeight = 1
	overlay.HeadTarget = &target

	p, warnings := Compose(skel, overlay, nil, config.Cfg())
	if len(warnings) != 0 {
		t.Fatalf("unexpected head IK warnings: %v", warnings)
	}
	distBefore := rl.Vector3Distance(bindHead, target)
	distAfter := rl.Vector3Distance(p.World[headIdx].Translation, target)
	if distAfter >= distBefore {
		t.Fatalf("head IK should move head closer to target: before=%f after=%f", distBefore, distAfter)
	}
}

func TestCompose_NilHeadTargetLeavesSpineUnaffected(t *testing.T) {
	skel := quadSkeleton(t)
	overlay := anim.NeutralOverlay()
	overlay.BlendWeight = 1
	p, warnings := Compose(skel, overlay, nil, config.Cfg())
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings with no head target: %v", warnings)
	}
	for _, idx := range skel.SpineChain {
		if p.Local[idx].Rotation != rl.QuaternionIdentity() {
			t.Fatalf("bone %d rotated with no head target set", idx)
		}
	}
}
