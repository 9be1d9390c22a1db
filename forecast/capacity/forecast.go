package capacity

import (
	"time"

	"github.com/fillcast/fillcast/forecast"
)

// CapacityAwareResult is the top-level capacity-aware forecast: the
// unconstrained pipeline forecast, the capacity-adjusted one, and the delta
// between them. The delta (P50DeltaDays plus the bottleneck list) is the
// user-facing signal.
type CapacityAwareResult struct {
	PipelineOnly  *forecast.ForecastResult
	CapacityAware *forecast.ForecastResult

	P50DeltaDays int
	Bottlenecks  []Bottleneck
	Reasons      []string
	Confidence   forecast.ConfidenceLevel
	Constrained  bool
}

// RunCapacityAwareForecast runs the pipeline simulation twice: once
// unconstrained, and once with the per-stage queueing penalty injected into a
// cloned parameter set (extending each sampled stage duration by the stage's
// delay). Both runs use the same seed, so the delta isolates the capacity
// effect from sampling noise.
//
// A nil or unavailable profile set degrades gracefully: both results are the
// unconstrained forecast and Constrained is false.
func RunCapacityAwareForecast(
	candidates []forecast.PipelineCandidate,
	demand GlobalDemand,
	params forecast.SimulationParameters,
	profiles *Profiles,
	startDate time.Time,
	seed forecast.SimulationKey,
	iterations int,
) (*CapacityAwareResult, error) {
	base, err := forecast.RunPipelineSimulation(candidates, params, startDate, seed, iterations)
	if err != nil {
		return nil, err
	}

	penalty := ApplyCapacityPenaltyV11(demand, profiles)
	result := &CapacityAwareResult{
		PipelineOnly: base,
		Bottlenecks:  penalty.Bottlenecks,
		Reasons:      penalty.Recommendations,
		Confidence:   penalty.Confidence,
		Constrained:  penalty.Constrained,
	}
	if !penalty.Constrained {
		result.CapacityAware = base
		return result, nil
	}

	adjusted := params.Clone()
	adjusted.DurationPenaltyDays = penalty.StageDelayDays
	constrained, err := forecast.RunPipelineSimulation(candidates, adjusted, startDate, seed, iterations)
	if err != nil {
		return nil, err
	}
	result.CapacityAware = constrained
	if !base.Empty() && !constrained.Empty() {
		result.P50DeltaDays = constrained.P50Days - base.P50Days
	}
	return result, nil
}
