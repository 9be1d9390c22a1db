package forecast

import (
	"fmt"
	"math"
)

// PipelineCandidate is one active candidate whose stage position seeds the
// simulation.
type PipelineCandidate struct {
	CandidateID  string
	CurrentStage Stage
}

// SimulationParameters carries the fitted inputs for one simulation call:
// per-stage conversion rates, per-stage duration distributions, and the
// sample counts backing each fit (keyed "<stage>_rate" / "<stage>_duration").
// DurationPenaltyDays is normally empty; the capacity layer injects per-stage
// queueing delay there before re-running the simulator.
//
// Parameters are owned by the caller and treated as immutable by every
// simulation call. Use Clone before mutating a derived copy.
type SimulationParameters struct {
	ConversionRates     map[Stage]float64
	Durations           map[Stage]DurationDistribution
	SampleSizes         map[string]int
	DurationPenaltyDays map[Stage]float64
}

// Clone returns a deep copy safe to mutate independently.
func (p SimulationParameters) Clone() SimulationParameters {
	out := SimulationParameters{
		ConversionRates:     make(map[Stage]float64, len(p.ConversionRates)),
		Durations:           make(map[Stage]DurationDistribution, len(p.Durations)),
		SampleSizes:         make(map[string]int, len(p.SampleSizes)),
		DurationPenaltyDays: make(map[Stage]float64, len(p.DurationPenaltyDays)),
	}
	for k, v := range p.ConversionRates {
		out.ConversionRates[k] = v
	}
	for k, v := range p.Durations {
		d := v
		if len(v.Buckets) > 0 {
			d.Buckets = append([]DurationBucket(nil), v.Buckets...)
		}
		out.Durations[k] = d
	}
	for k, v := range p.SampleSizes {
		out.SampleSizes[k] = v
	}
	for k, v := range p.DurationPenaltyDays {
		out.DurationPenaltyDays[k] = v
	}
	return out
}

// SampleSize returns the recorded observation count behind a fitted rate or
// duration, 0 when unknown.
func (p SimulationParameters) SampleSize(key string) int {
	return p.SampleSizes[key]
}

// Validate checks that every canonical stage has a rate in [0,1] and a valid
// duration distribution, and that penalties are non-negative.
func (p SimulationParameters) Validate() error {
	for _, stage := range CanonicalStages() {
		rate, ok := p.ConversionRates[stage]
		if !ok {
			return fmt.Errorf("%w: missing conversion rate for stage %s", ErrInvalidParameter, stage)
		}
		if rate < 0 || rate > 1 {
			return fmt.Errorf("%w: conversion rate %v for stage %s outside [0,1]", ErrInvalidParameter, rate, stage)
		}
		dist, ok := p.Durations[stage]
		if !ok {
			return fmt.Errorf("%w: missing duration distribution for stage %s", ErrInvalidParameter, stage)
		}
		if err := dist.Validate(); err != nil {
			return fmt.Errorf("stage %s: %w", stage, err)
		}
	}
	for stage, penalty := range p.DurationPenaltyDays {
		if penalty < 0 {
			return fmt.Errorf("%w: negative duration penalty %v for stage %s", ErrInvalidParameter, penalty, stage)
		}
	}
	return nil
}

// Adjustments captures what-if slider settings layered over fitted
// parameters: levers add to a stage's conversion rate (clamped to [0,1]) and
// knobs scale a stage's sampled duration. Adjustments participate in seed and
// cache-key derivation so that every distinct slider position reproduces its
// own deterministic sample sequence.
type Adjustments struct {
	RateDeltas     map[Stage]float64
	DurationScales map[Stage]float64
}

// Empty reports whether no adjustment is set.
func (a Adjustments) Empty() bool {
	return len(a.RateDeltas) == 0 && len(a.DurationScales) == 0
}

// Apply returns a clone of p with rate deltas added (clamped to [0,1]) and
// median-preserving duration scaling applied. Constant and empirical
// durations scale their day counts directly; lognormal shifts mu by
// ln(scale), which scales every quantile uniformly.
func (a Adjustments) Apply(p SimulationParameters) SimulationParameters {
	if a.Empty() {
		return p
	}
	out := p.Clone()
	for stage, delta := range a.RateDeltas {
		rate, ok := out.ConversionRates[stage]
		if !ok {
			continue
		}
		rate += delta
		if rate < 0 {
			rate = 0
		}
		if rate > 1 {
			rate = 1
		}
		out.ConversionRates[stage] = rate
	}
	for stage, scale := range a.DurationScales {
		if scale <= 0 {
			continue
		}
		dist, ok := out.Durations[stage]
		if !ok {
			continue
		}
		out.Durations[stage] = scaleDuration(dist, scale)
	}
	return out
}

func scaleDuration(d DurationDistribution, scale float64) DurationDistribution {
	switch d.Type {
	case DistConstant:
		days := int(float64(d.Days)*scale + 0.5)
		if days < 1 {
			days = 1
		}
		return ConstantDuration(days)
	case DistLognormal:
		return LognormalDuration(d.Mu+math.Log(scale), d.Sigma)
	case DistEmpirical:
		buckets := make([]DurationBucket, 0, len(d.Buckets))
		for _, b := range d.Buckets {
			days := int(float64(b.Days)*scale + 0.5)
			if days < 1 {
				days = 1
			}
			buckets = append(buckets, DurationBucket{Days: days, Weight: b.Weight})
		}
		return EmpiricalDuration(buckets)
	default:
		return d
	}
}
