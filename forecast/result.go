package forecast

import (
	"fmt"
	"sort"
	"time"
)

// ConfidenceLevel grades how much a forecast (or an inferred capacity
// profile) should be trusted.
type ConfidenceLevel string

const (
	ConfidenceHigh   ConfidenceLevel = "HIGH"
	ConfidenceMedium ConfidenceLevel = "MEDIUM"
	ConfidenceLow    ConfidenceLevel = "LOW"
)

// Minimum per-stage observation count before a fitted rate or duration is
// considered stable. Below it, rates lean on shrinkage and durations on the
// constant fallback, and the forecast confidence says so.
const DefaultMinSampleSize = 5

// ForecastResult is the outcome of one simulation call. SimulatedDays holds
// the per-iteration fill-day counts, in iteration order, for iterations that
// reached HIRED; dropped iterations contribute no entry. Percentiles are
// nearest-rank over the sorted samples, converted to calendar dates by adding
// to StartDate. Immutable once returned.
type ForecastResult struct {
	SimulatedDays []int

	P10Days int
	P50Days int
	P90Days int
	P10Date time.Time
	P50Date time.Time
	P90Date time.Time

	Confidence        ConfidenceLevel
	ConfidenceReasons []string

	Successes  int
	Iterations int
	Seed       SimulationKey
	StartDate  time.Time
}

// Empty reports whether no iteration reached HIRED.
func (r *ForecastResult) Empty() bool {
	return r.Successes == 0
}

// nearestRankPercentile returns the p-th percentile of sorted using the
// nearest-rank method: the smallest value with at least p% of the mass at or
// below it. sorted must be ascending and non-empty.
func nearestRankPercentile(sorted []int, p float64) int {
	n := len(sorted)
	rank := int(p/100.0*float64(n) + 0.999999)
	if rank < 1 {
		rank = 1
	}
	if rank > n {
		rank = n
	}
	return sorted[rank-1]
}

// newForecastResult assembles percentiles, dates, and a confidence grade from
// the raw per-iteration samples.
func newForecastResult(days []int, iterations int, startDate time.Time, seed SimulationKey, params SimulationParameters) *ForecastResult {
	r := &ForecastResult{
		SimulatedDays: days,
		Successes:     len(days),
		Iterations:    iterations,
		Seed:          seed,
		StartDate:     startDate,
	}

	if len(days) > 0 {
		sorted := append([]int(nil), days...)
		sort.Ints(sorted)
		r.P10Days = nearestRankPercentile(sorted, 10)
		r.P50Days = nearestRankPercentile(sorted, 50)
		r.P90Days = nearestRankPercentile(sorted, 90)
		r.P10Date = startDate.AddDate(0, 0, r.P10Days)
		r.P50Date = startDate.AddDate(0, 0, r.P50Days)
		r.P90Date = startDate.AddDate(0, 0, r.P90Days)
	}

	r.Confidence, r.ConfidenceReasons = gradeConfidence(r, params)
	return r
}

// gradeConfidence derives HIGH/MEDIUM/LOW from the sample's success count and
// dispersion, plus how thin the per-stage sample sizes behind the fitted
// parameters are. Each degradation carries an explicit reason.
func gradeConfidence(r *ForecastResult, params SimulationParameters) (ConfidenceLevel, []string) {
	var reasons []string

	if r.Successes == 0 {
		reasons = append(reasons, "no simulated iteration reached HIRED; conversion rates may be near zero")
		return ConfidenceLow, reasons
	}

	penalties := 0

	if r.Iterations > 0 {
		successRate := float64(r.Successes) / float64(r.Iterations)
		if successRate < 0.10 {
			penalties++
			reasons = append(reasons, fmt.Sprintf("only %d of %d iterations produced a hire (%.0f%%); percentiles rest on few samples",
				r.Successes, r.Iterations, successRate*100))
		}
	}

	if minStage, minN := minStageSampleSize(params); minN < DefaultMinSampleSize {
		penalties++
		reasons = append(reasons, fmt.Sprintf("stage %s is backed by only %d observations; its rate leans on shrinkage and its duration on the constant fallback",
			minStage, minN))
	}

	// Relative spread of the middle 80% of outcomes.
	if r.P50Days > 0 && float64(r.P90Days-r.P10Days) > 1.5*float64(r.P50Days) {
		penalties++
		reasons = append(reasons, fmt.Sprintf("wide outcome spread: p10=%d, p90=%d days around p50=%d",
			r.P10Days, r.P90Days, r.P50Days))
	}

	switch {
	case penalties == 0:
		return ConfidenceHigh, reasons
	case penalties == 1:
		return ConfidenceMedium, reasons
	default:
		return ConfidenceLow, reasons
	}
}

// minStageSampleSize finds the smallest recorded observation count across all
// canonical stage rate/duration keys. Returns math-max-ish defaults when no
// sample sizes were recorded at all (unknown counts do not penalize).
func minStageSampleSize(params SimulationParameters) (Stage, int) {
	if len(params.SampleSizes) == 0 {
		return "", DefaultMinSampleSize
	}
	minStage := Stage("")
	minN := -1
	for _, stage := range CanonicalStages() {
		for _, key := range []string{stage.RateKey(), stage.DurationKey()} {
			n, ok := params.SampleSizes[key]
			if !ok {
				continue
			}
			if minN < 0 || n < minN {
				minStage, minN = stage, n
			}
		}
	}
	if minN < 0 {
		return "", DefaultMinSampleSize
	}
	return minStage, minN
}
