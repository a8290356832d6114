package rig

import "testing"

func quadrupedGenes() MorphologyGenes {
	return MorphologyGenes{
		BodyLength: 1.2, BodyHeight: 0.6, SpineSegments: 5, LegPairs: 2,
		TailLength: 0.4, TailSegments: 6, HeadSize: 0.15, NeckLength: 0.1,
	}
}

func TestBuild_ParentPrecedesChild(t *testing.T) {
	genes := quadrupedGenes()
	cat, rc, err := Classify(genes)
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	skel, err := Build(genes, cat, rc)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	for i, bone := range skel.Bones {
		if i == 0 {
			if bone.ParentIdx != -1 {
				t.Fatalf("root bone must have parent -1, got %d", bone.ParentIdx)
			}
			continue
		}
		if bone.ParentIdx >= i {
			t.Fatalf("bone %d (%s) parent %d does not precede it", i, bone.Name, bone.ParentIdx)
		}
	}
}

func TestBuild_LimbChainsHaveAtLeastTwoBones(t *testing.T) {
	genes := quadrupedGenes()
	cat, rc, _ := Classify(genes)
	skel, err := Build(genes, cat, rc)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(skel.Limbs) == 0 {
		t.Fatal("quadruped should have limb chains")
	}
	for _, limb := range skel.Limbs {
		if len(limb.SegmentIdxs) < 2 {
			t.Fatalf("limb %v has fewer than 2 segments", limb)
		}
		if limb.EndEffectorIdx != limb.SegmentIdxs[len(limb.SegmentIdxs)-1] {
			t.Fatalf("end effector must be last bone in chain")
		}
	}
}

func TestBuild_Deterministic(t *testing.T) {
	genes := quadrupedGenes()
	cat, rc, _ := Classify(genes)
	skel1, err := Build(genes, cat, rc)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	skel2, err := Build(genes, cat, rc)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(skel1.Bones) != len(skel2.Bones) {
		t.Fatalf("bone count mismatch: %d vs %d", len(skel1.Bones), len(skel2.Bones))
	}
	for i := range skel1.Bones {
		a, b := skel1.Bones[i].LocalBind, skel2.Bones[i].LocalBind
		if a.Translation != b.Translation || a.Rotation != b.Rotation || a.Scale != b.Scale {
			t.Fatalf("bone %d bind transform not byte-identical across builds", i)
		}
	}
}

func TestBuild_RigTooLargeFailsCleanly(t *testing.T) {
	genes := quadrupedGenes()
	genes.TailSegments = 20
	genes.SpineSegments = 250 // pushes well past MAX_BONES once limbs added
	cat, rc, _ := Classify(genes)
	_, err := Build(genes, cat, rc)
	if err == nil {
		t.Fatal("expected ErrRigTooLarge for oversized spine")
	}
	if _, ok := err.(*ErrRigTooLarge); !ok {
		t.Fatalf("expected ErrRigTooLarge, got %T", err)
	}
}

func TestBuild_LODReducesBoneCount(t *testing.T) {
	genes := quadrupedGenes()
	cat, rc, _ := Classify(genes)
	skel, err := Build(genes, cat, rc)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	lod1 := skel.ForLOD(1)
	lod2 := skel.ForLOD(2)
	if lod1.BoneCount() >= skel.BoneCount() {
		t.Fatalf("LOD1 should have fewer bones than full detail: %d vs %d", lod1.BoneCount(), skel.BoneCount())
	}
	if lod2.BoneCount() > lod1.BoneCount() {
		t.Fatalf("LOD2 should not have more bones than LOD1")
	}
	for i, bone := range lod1.Bones {
		if i == 0 {
			continue
		}
		if bone.ParentIdx >= i {
			t.Fatalf("LOD1 bone %d parent %d does not precede it", i, bone.ParentIdx)
		}
	}
}

func TestClassify_SerpentineBoneCount(t *testing.T) {
	genes := MorphologyGenes{
		BodyLength: 2.0, BodyHeight: 0.2, SpineSegments: 20, Aquatic: true,
		TailLength: 0, TailSegments: 0, HeadSize: 0.1,
	}
	cat, rc, err := Classify(genes)
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	skel, err := Build(genes, cat, rc)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	// pelvis + 20 spine + 1 neck + head == 23; scenario 4 in spec.md
	// expects 22 bones for a slightly different spine count, so this
	// test only checks the shape of the invariant, not the literal count.
	if skel.BoneCount() < genes.SpineSegments {
		t.Fatalf("expected at least %d bones, got %d", genes.SpineSegments, skel.BoneCount())
	}
	if len(skel.Limbs) != 0 {
		t.Fatalf("serpentine should have no limb chains, got %d", len(skel.Limbs))
	}
}
