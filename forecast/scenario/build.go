package scenario

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/fillcast/fillcast/forecast"
)

// BuildOptions tunes the shrinkage and small-sample policy applied while
// turning fitted stage parameters into SimulationParameters.
type BuildOptions struct {
	// PriorWeight is the virtual sample size of the prior (shrinkage m).
	// Zero selects DefaultPriorWeight.
	PriorWeight int

	// MinSampleSize is the observation count below which a fitted duration
	// distribution is replaced by the constant fallback. Zero selects
	// forecast.DefaultMinSampleSize.
	MinSampleSize int

	// FallbackDays is the constant dwell time substituted for unstable
	// duration fits. Zero selects DefaultFallbackDays.
	FallbackDays int
}

const (
	// DefaultPriorWeight trusts the prior as much as 20 observations, so a
	// stage needs a comparable sample before its observed rate dominates.
	DefaultPriorWeight = 20

	// DefaultFallbackDays is the global default stage dwell substituted when
	// a duration fit is backed by too few observations.
	DefaultFallbackDays = 7
)

// defaultPriors are benchmark conversion rates used when a scenario supplies
// no prior for a stage.
var defaultPriors = map[forecast.Stage]float64{
	forecast.StageScreen:   0.5,
	forecast.StageHMScreen: 0.5,
	forecast.StageOnsite:   0.4,
	forecast.StageOffer:    0.8,
}

// BuildParameters produces SimulationParameters from the scenario's fitted
// stage parameters: every observed conversion rate is shrunk toward its prior
// weighted by its observation count, and any duration fit backed by fewer
// than MinSampleSize observations is replaced by the constant fallback rather
// than trusted. Every canonical stage must be present in the scenario.
func BuildParameters(spec *Spec, opts BuildOptions) (forecast.SimulationParameters, error) {
	if opts.PriorWeight == 0 {
		opts.PriorWeight = DefaultPriorWeight
	}
	if opts.MinSampleSize == 0 {
		opts.MinSampleSize = forecast.DefaultMinSampleSize
	}
	if opts.FallbackDays == 0 {
		opts.FallbackDays = DefaultFallbackDays
	}

	params := forecast.SimulationParameters{
		ConversionRates: make(map[forecast.Stage]float64),
		Durations:       make(map[forecast.Stage]forecast.DurationDistribution),
		SampleSizes:     make(map[string]int),
	}

	for _, stage := range forecast.CanonicalStages() {
		stageSpec, ok := spec.Stages[string(stage)]
		if !ok {
			return params, fmt.Errorf("%w: scenario has no fitted parameters for stage %s", forecast.ErrInvalidParameter, stage)
		}

		prior, ok := spec.Priors[string(stage)]
		if !ok {
			prior = defaultPriors[stage]
		}
		rate, err := forecast.ShrinkRate(stageSpec.ConversionRate, prior, stageSpec.RateN, opts.PriorWeight)
		if err != nil {
			return params, fmt.Errorf("stage %s: %w", stage, err)
		}
		params.ConversionRates[stage] = rate

		dist, err := stageSpec.Duration.toDistribution()
		if err != nil {
			return params, err
		}
		if stageSpec.DurationN < opts.MinSampleSize {
			logrus.Warnf("stage %s duration fit has n=%d (< %d); substituting constant %d-day fallback",
				stage, stageSpec.DurationN, opts.MinSampleSize, opts.FallbackDays)
			dist = forecast.ConstantDuration(opts.FallbackDays)
		}
		params.Durations[stage] = dist

		params.SampleSizes[stage.RateKey()] = stageSpec.RateN
		params.SampleSizes[stage.DurationKey()] = stageSpec.DurationN
	}

	return params, nil
}
