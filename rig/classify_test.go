package rig

import (
	"testing"

	"github.com/wrenfield/menagerie/config"
)

func init() {
	config.MustInit("")
}

func TestClassify_Quadruped(t *testing.T) {
	genes := MorphologyGenes{
		BodyLength: 1.2, BodyHeight: 0.6, SpineSegments: 5, LegPairs: 2,
		TailLength: 0.4, TailSegments: 6, HeadSize: 0.15,
	}
	cat, _, err := Classify(genes)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cat != Quadruped {
		t.Fatalf("expected Quadruped, got %v", cat)
	}
}

func TestClassify_SerpentineSwimmer(t *testing.T) {
	genes := MorphologyGenes{
		BodyLength: 2.0, BodyHeight: 0.2, SpineSegments: 20, Aquatic: true, CanWalk: false,
	}
	cat, _, err := Classify(genes)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cat != Serpentine {
		t.Fatalf("expected Serpentine, got %v", cat)
	}
}

func TestClassify_CascadeOrderSerpentineBeforeFish(t *testing.T) {
	// aquatic + not-walking + >=8 spine segments matches rule 1 before
	// the fin-count rule even though FinCount also qualifies for Fish.
	genes := MorphologyGenes{
		BodyLength: 1.0, BodyHeight: 0.3, SpineSegments: 9, Aquatic: true, FinCount: 3, CanWalk: false,
	}
	cat, _, err := Classify(genes)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cat != Serpentine {
		t.Fatalf("expected Serpentine (rule 1 wins), got %v", cat)
	}
}

func TestClassify_InvalidMorphology(t *testing.T) {
	genes := MorphologyGenes{BodyLength: -1, BodyHeight: 1, SpineSegments: 3}
	_, _, err := Classify(genes)
	if err == nil {
		t.Fatal("expected error for negative body length")
	}
}

func TestClassify_Deterministic(t *testing.T) {
	genes := MorphologyGenes{
		BodyLength: 1.5, BodyHeight: 0.7, SpineSegments: 6, LegPairs: 1,
		UprightPosture: true, HeadSize: 0.2, NeckLength: 0.1,
	}
	cat1, rc1, _ := Classify(genes)
	cat2, rc2, _ := Classify(genes)
	if cat1 != cat2 || rc1 != rc2 {
		t.Fatal("classification must be deterministic for identical genes")
	}
}
