package telemetry

import "testing"

func TestDistributionStats_MeanAndMedian(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5}
	mean, _, p50, _ := distributionStats(values)

	if mean != 3 {
		t.Errorf("expected mean 3, got %v", mean)
	}
	if p50 != 3 {
		t.Errorf("expected median 3, got %v", p50)
	}
}

func TestDistributionStats_EmptyIsZero(t *testing.T) {
	mean, std, p50, p90 := distributionStats(nil)
	if mean != 0 || std != 0 || p50 != 0 || p90 != 0 {
		t.Errorf("expected all zeros for empty input, got mean=%v std=%v p50=%v p90=%v", mean, std, p50, p90)
	}
}

func TestQuantile_P90HigherThanP50ForSkewedData(t *testing.T) {
	values := []float64{1, 1, 1, 1, 1, 1, 1, 1, 100, 100}
	p50 := quantile(values, 0.5)
	p90 := quantile(values, 0.9)
	if p90 <= p50 {
		t.Errorf("expected p90 (%v) > p50 (%v) for skewed data", p90, p50)
	}
}
