// Package telemetry aggregates per-tick animation-core metrics into
// windowed statistics, exports perf counters, and writes CSV traces for
// offline replay analysis.
package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for one stats window (spec.md
// §8 telemetry, stats_window_sec in config).
type WindowStats struct {
	WindowStartTick int32   `csv:"-"`
	WindowEndTick   int32   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	CreatureCount int `csv:"creature_count"`

	// Activity transitions observed during the window.
	TransitionsStarted    int `csv:"transitions_started"`
	TransitionsCompleted  int `csv:"transitions_completed"`
	ActivitiesInterrupted int `csv:"activities_interrupted"`

	// IK solve outcomes.
	IKSolvesAttempted int `csv:"ik_solves_attempted"`
	IKSolvesClamped   int `csv:"ik_solves_clamped"`
	IKDegenerate      int `csv:"ik_degenerate"`

	// IK residual distance (distance between solved end effector and
	// requested target, post-clamp) sampled across every solve this window.
	IKResidualMean float64 `csv:"ik_residual_mean"`
	IKResidualStd  float64 `csv:"ik_residual_std"`
	IKResidualP50  float64 `csv:"ik_residual_p50"`
	IKResidualP90  float64 `csv:"ik_residual_p90"`

	// Blend-in/blend-out durations actually taken, sampled at
	// TransitionCompleted events.
	BlendTimeMean float64 `csv:"blend_time_mean"`
	BlendTimeStd  float64 `csv:"blend_time_std"`
	BlendTimeP50  float64 `csv:"blend_time_p50"`
	BlendTimeP90  float64 `csv:"blend_time_p90"`
}

// quantile returns the p-th quantile (p in [0,1]) of values using gonum's
// empirical quantile: the smallest sample that at least a fraction p of
// the samples do not exceed, with no interpolation between samples.
// values need not be pre-sorted; a sorted
// copy is taken internally since stat.Quantile requires sorted input.
func quantile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return stat.Quantile(p, stat.Empirical, sorted, nil)
}

// distributionStats computes mean, standard deviation, median, and p90
// from an unsorted sample of values using gonum/stat.
func distributionStats(values []float64) (mean, std, p50, p90 float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0
	}
	mean, variance := stat.MeanVariance(values, nil)
	std = 0
	if variance > 0 {
		std = stat.StdDev(values, nil)
	}
	p50 = quantile(values, 0.5)
	p90 = quantile(values, 0.9)
	return mean, std, p50, p90
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("creature_count", s.CreatureCount),
		slog.Int("transitions_started", s.TransitionsStarted),
		slog.Int("transitions_completed", s.TransitionsCompleted),
		slog.Int("activities_interrupted", s.ActivitiesInterrupted),
		slog.Int("ik_solves_attempted", s.IKSolvesAttempted),
		slog.Int("ik_solves_clamped", s.IKSolvesClamped),
		slog.Int("ik_degenerate", s.IKDegenerate),
		slog.Float64("ik_residual_mean", s.IKResidualMean),
		slog.Float64("ik_residual_p90", s.IKResidualP90),
		slog.Float64("blend_time_mean", s.BlendTimeMean),
		slog.Float64("blend_time_p90", s.BlendTimeP90),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("telemetry", "stats", s)
}
