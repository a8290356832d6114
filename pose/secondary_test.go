package pose

import (
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/wrenfield/menagerie/config"
	"github.com/wrenfield/menagerie/rig"
)

func avianSkeleton(t *testing.T) *rig.Skeleton {
	t.Helper()
	genes := rig.MorphologyGenes{
		BodyLength: 0.4, BodyHeight: 0.2, SpineSegments: 4, LegPairs: 1, HasWings: true,
		TailLength: 0.1, TailSegments: 3, HeadSize: 0.08, Flying: true,
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

func TestSecondaryMotion_SettlesToRestWithoutForcing(t *testing.T) {
	skel := avianSkeleton(t)
	sm := NewSecondaryMotion(skel)
	if len(sm.springs) == 0 {
		t.Skip("rig has no passive feature bones")
	}
	sm.springs[0].value = 0.5
	for i := 0; i < 500; i++ {
		sm.Advance(1.0/60.0, rl.Vector3{}, rl.Vector3{}, 1.0, config.Cfg())
	}
	if sm.springs[0].value > 0.01 || sm.springs[0].value < -0.01 {
		t.Fatalf("spring should decay to near zero without forcing, got %f", sm.springs[0].value)
	}
}

func TestSecondaryMotion_LargeDTIsSubdividedWithoutExploding(t *testing.T) {
	skel := avianSkeleton(t)
	sm := NewSecondaryMotion(skel)
	if len(sm.springs) == 0 {
		t.Skip("rig has no passive feature bones")
	}
	sm.Advance(5.0, rl.Vector3{}, rl.Vector3{X: 3}, 1.0, config.Cfg())
	for _, sp := range sm.springs {
		if sp.value > 1e3 || sp.value < -1e3 {
			t.Fatalf("spring integration exploded under a large dt: %f", sp.value)
		}
	}
}

func TestSecondaryMotion_ApplyScalesWithGain(t *testing.T) {
	skel := avianSkeleton(t)
	sm := NewSecondaryMotion(skel)
	if len(sm.springs) == 0 {
		t.Skip("rig has no passive feature bones")
	}
	sm.springs[0].value = 0.3
	p := fromBind(skel)
	sm.Apply(&p, skel, 0)
	idx := sm.boneIdxs[0]
	if p.Local[idx].Rotation != skel.Bones[idx].LocalBind.Rotation {
		t.Fatal("zero gain should leave bone rotation unchanged")
	}
}
