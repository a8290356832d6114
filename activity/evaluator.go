package activity

import (
	"sort"

	"github.com/wrenfield/menagerie/config"
)

// candidateScore pairs an activity type with its raw drive score, used only
// during evaluation to keep the sort stable and explicit.
type candidateScore struct {
	typ   Type
	score float64
}

// score computes the raw drive score for a candidate activity from the
// current triggers (spec.md §4.3 step 1). Each rule mirrors one row of the
// ActivityConfig table: a drive scalar gated by the environment flag(s) the
// activity requires.
func score(t Type, tr Triggers) (float64, bool) {
	switch t {
	case Eating:
		return tr.Hunger, tr.FoodNearby
	case Drinking:
		return tr.Thirst, true
	case Sleeping:
		return tr.Fatigue, true
	case Grooming:
		return tr.GroomingNeed, true
	case ThreatDisplay:
		return tr.ThreatLevel, tr.ThreatPresent || tr.TerritoryIntrusion
	case Mating:
		return tr.Reproductive, tr.MatePresent
	case Excretion:
		return tr.ExcretionNeed, true
	case Vocalizing:
		return tr.VocalizeUrge, true
	case Alert:
		return tr.Stress, tr.ThreatPresent
	case Resting:
		return tr.Fatigue * 0.5, true
	case Locomotion:
		return tr.Social*0.25 + tr.Hunger*0.1, true
	case Idle:
		return 0, true
	default:
		return 0, false
	}
}

// Evaluate folds the current triggers into a desired activity (spec.md
// §4.3). It scores every eligible activity against its configured
// activation threshold, discards activities whose environment precondition
// isn't met or whose requiresTarget tuning demands a target that isn't
// present, ranks survivors by (priority desc, score desc, Type enum order
// asc) for a fully deterministic tie-break, and falls back to Idle when
// nothing clears the bar.
func Evaluate(tr Triggers, cfg *config.Config) Type {
	threshold := cfg.Evaluator.ActivationThreshold

	var candidates []candidateScore
	for _, t := range AllTypes() {
		if t == Idle {
			continue
		}
		s, eligible := score(t, tr)
		if !eligible || s < threshold {
			continue
		}
		tuning := cfg.ActivityTuningFor(t.String())
		if tuning.RequiresTarget && tr.TargetWorldPos == nil {
			continue
		}
		candidates = append(candidates, candidateScore{typ: t, score: s})
	}

	if len(candidates) == 0 {
		return Idle
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		pi := cfg.ActivityTuningFor(candidates[i].typ.String()).Priority
		pj := cfg.ActivityTuningFor(candidates[j].typ.String()).Priority
		if pi != pj {
			return pi > pj
		}
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].typ < candidates[j].typ
	})

	return candidates[0].typ
}
