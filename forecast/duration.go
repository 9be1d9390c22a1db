package forecast

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
)

// DistributionType tags the variant of a DurationDistribution.
type DistributionType string

const (
	DistConstant  DistributionType = "constant"
	DistLognormal DistributionType = "lognormal"
	DistEmpirical DistributionType = "empirical"
)

// DurationBucket is one cell of an empirical dwell-time distribution.
type DurationBucket struct {
	Days   int
	Weight float64
}

// DurationDistribution models how long a candidate dwells in a stage before
// advancing. It is a tagged variant: exactly one of the parameter sets below
// is meaningful, selected by Type.
//
// Lognormal mu/sigma are fitted upstream from historical dwell times and are
// already in log-space. The distribution never inspects the sample size
// backing its fit: when that count falls below the caller's minN threshold,
// the caller substitutes a constant fallback before the distribution reaches
// the simulator (see scenario.BuildParameters).
type DurationDistribution struct {
	Type    DistributionType
	Days    int              // constant: fixed dwell, >= 1
	Mu      float64          // lognormal: mean of ln(days)
	Sigma   float64          // lognormal: std dev of ln(days), >= 0
	Buckets []DurationBucket // empirical: discrete dwell-time cells
}

// ConstantDuration returns a fixed dwell-time distribution.
func ConstantDuration(days int) DurationDistribution {
	return DurationDistribution{Type: DistConstant, Days: days}
}

// LognormalDuration returns a lognormal dwell-time distribution with
// log-space parameters mu and sigma.
func LognormalDuration(mu, sigma float64) DurationDistribution {
	return DurationDistribution{Type: DistLognormal, Mu: mu, Sigma: sigma}
}

// EmpiricalDuration returns a discrete dwell-time distribution sampled
// proportionally to bucket weight. Buckets are sorted by day count;
// non-positive weights are dropped.
func EmpiricalDuration(buckets []DurationBucket) DurationDistribution {
	kept := make([]DurationBucket, 0, len(buckets))
	for _, b := range buckets {
		if b.Weight > 0 {
			kept = append(kept, b)
		}
	}
	sort.Slice(kept, func(i, j int) bool { return kept[i].Days < kept[j].Days })
	return DurationDistribution{Type: DistEmpirical, Buckets: kept}
}

// Validate checks the variant's invariants: constant days >= 1, lognormal
// sigma >= 0 and finite parameters, empirical with at least one
// positive-weight bucket of days >= 1.
func (d DurationDistribution) Validate() error {
	switch d.Type {
	case DistConstant:
		if d.Days < 1 {
			return fmt.Errorf("%w: constant duration days=%d, want >= 1", ErrInvalidParameter, d.Days)
		}
	case DistLognormal:
		if math.IsNaN(d.Mu) || math.IsInf(d.Mu, 0) || math.IsNaN(d.Sigma) || math.IsInf(d.Sigma, 0) {
			return fmt.Errorf("%w: lognormal parameters must be finite (mu=%v, sigma=%v)", ErrInvalidParameter, d.Mu, d.Sigma)
		}
		if d.Sigma < 0 {
			return fmt.Errorf("%w: lognormal sigma=%v, want >= 0", ErrInvalidParameter, d.Sigma)
		}
	case DistEmpirical:
		total := 0.0
		for _, b := range d.Buckets {
			if b.Days < 1 {
				return fmt.Errorf("%w: empirical bucket days=%d, want >= 1", ErrInvalidParameter, b.Days)
			}
			if b.Weight > 0 {
				total += b.Weight
			}
		}
		if total <= 0 {
			return fmt.Errorf("%w: empirical distribution has no positive-weight bucket", ErrInvalidParameter)
		}
	default:
		return fmt.Errorf("%w: unknown distribution type %q", ErrInvalidParameter, d.Type)
	}
	return nil
}

// Sample draws a dwell time in whole days using the supplied seeded RNG.
// Always returns >= 1.
func (d DurationDistribution) Sample(rng *rand.Rand) int {
	switch d.Type {
	case DistConstant:
		if d.Days < 1 {
			return 1
		}
		return d.Days

	case DistLognormal:
		// exp(mu + sigma*Z), rounded to whole days, floored at 1.
		z := rng.NormFloat64()
		val := math.Exp(d.Mu + d.Sigma*z)
		if math.IsInf(val, 0) || math.IsNaN(val) {
			return 1
		}
		days := int(math.Round(val))
		if days < 1 {
			return 1
		}
		return days

	case DistEmpirical:
		return d.sampleEmpirical(rng)

	default:
		return 1
	}
}

// sampleEmpirical draws a bucket proportionally to weight via inverse CDF.
func (d DurationDistribution) sampleEmpirical(rng *rand.Rand) int {
	total := 0.0
	for _, b := range d.Buckets {
		if b.Weight > 0 {
			total += b.Weight
		}
	}
	if total <= 0 {
		return 1
	}
	u := rng.Float64() * total
	cumulative := 0.0
	for _, b := range d.Buckets {
		if b.Weight <= 0 {
			continue
		}
		cumulative += b.Weight
		if u < cumulative {
			if b.Days < 1 {
				return 1
			}
			return b.Days
		}
	}
	// u landed on the upper boundary; return the last positive bucket.
	for i := len(d.Buckets) - 1; i >= 0; i-- {
		if d.Buckets[i].Weight > 0 {
			return d.Buckets[i].Days
		}
	}
	return 1
}

// MedianDays returns the distribution's median dwell time in whole days,
// floored at 1. For lognormal the median is exp(mu); for empirical it is the
// smallest bucket at or past half the total weight.
func (d DurationDistribution) MedianDays() int {
	switch d.Type {
	case DistConstant:
		if d.Days < 1 {
			return 1
		}
		return d.Days

	case DistLognormal:
		days := int(math.Round(math.Exp(d.Mu)))
		if days < 1 {
			return 1
		}
		return days

	case DistEmpirical:
		total := 0.0
		for _, b := range d.Buckets {
			if b.Weight > 0 {
				total += b.Weight
			}
		}
		if total <= 0 {
			return 1
		}
		cumulative := 0.0
		for _, b := range d.Buckets {
			if b.Weight <= 0 {
				continue
			}
			cumulative += b.Weight
			if cumulative >= total/2 {
				if b.Days < 1 {
					return 1
				}
				return b.Days
			}
		}
		return 1

	default:
		return 1
	}
}
