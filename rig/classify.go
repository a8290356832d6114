package rig

import "github.com/wrenfield/menagerie/config"

// RigConfig extends a Category with per-limb segment counts, tail segment
// count, head style, and LOD caps (spec.md §4.1).
type RigConfig struct {
	Category        Category
	LegSegments     int
	WingSegments    int
	ArmSegments     int
	TailSegments    int // clamped <= config.RigConfig.MaxTailSegments
	HeadStyle       string
	LOD1SpineCap    int
	LOD2SpineCap    int
	LongNecked      bool // cervical bones split from spine chain
}

// Classify maps morphology genes to a rig category and configuration.
// It is a pure, deterministic function: a fixed-order cascade of
// predicates, first match wins (spec.md §4.1).
func Classify(genes MorphologyGenes) (Category, RigConfig, error) {
	if err := genes.Validate(); err != nil {
		return Custom, RigConfig{}, err
	}

	cfg := config.Cfg()
	category := classifyCategory(genes)
	rc := RigConfig{
		Category:     category,
		LegSegments:  cfg.Rig.LegSegmentCount,
		WingSegments: cfg.Rig.WingSegmentCount,
		ArmSegments:  cfg.Rig.ArmSegmentCount,
		TailSegments: clampInt(genes.TailSegments, 0, cfg.Rig.MaxTailSegments),
		LOD1SpineCap: cfg.Rig.LOD1SpineCap,
		LOD2SpineCap: cfg.Rig.LOD2SpineCap,
		LongNecked:   genes.NeckLength > cfg.Rig.NeckLengthThreshold,
	}

	switch category {
	case Biped:
		rc.HeadStyle = "upright"
	case Quadruped, Hexapod:
		rc.HeadStyle = "forward"
	case Serpentine, Fish:
		rc.HeadStyle = "inline"
		rc.TailSegments = clampInt(genes.TailSegments, 0, cfg.Rig.MaxTailSegments)
	case Avian:
		rc.HeadStyle = "forward"
	case Cephalopod:
		rc.HeadStyle = "radial"
	default:
		rc.HeadStyle = "generic"
	}

	return category, rc, nil
}

// classifyCategory runs the fixed-order predicate cascade from spec.md
// §4.1's representative rule table; first match wins.
func classifyCategory(g MorphologyGenes) Category {
	switch {
	case g.Aquatic && !g.CanWalk && g.SpineSegments >= 8:
		return Serpentine
	case g.Aquatic && g.FinCount >= 2:
		return Fish
	case g.TentacleCount >= 4:
		return Cephalopod
	case g.HasWings && g.LegPairs == 1:
		return Avian
	case g.LegPairs == 1 && g.UprightPosture:
		return Biped
	case g.LegPairs == 2:
		return Quadruped
	case g.LegPairs == 3:
		return Hexapod
	case g.SpineSegments >= 12 && g.LegPairs == 0:
		return Serpentine
	default:
		return Custom
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
