package forecast

import "fmt"

// ShrinkRate blends an observed conversion rate toward a prior belief,
// weighted by sample size (Bayesian shrinkage):
//
//	shrunk = (n·observed + m·prior) / (n + m)
//
// priorWeight m is a virtual sample size: how many observations the prior is
// worth. As n → 0 the result collapses to the prior; as n grows the observed
// rate dominates. Every conversion-rate input to the simulator passes through
// this function upstream.
//
// n = priorWeight = 0 is undefined (division by zero) and returns
// ErrInvalidParameter rather than NaN, as do rates outside [0,1] and
// negative counts.
func ShrinkRate(observed, prior float64, n, priorWeight int) (float64, error) {
	if n < 0 || priorWeight < 0 {
		return 0, fmt.Errorf("%w: negative sample size (n=%d, priorWeight=%d)", ErrInvalidParameter, n, priorWeight)
	}
	if n == 0 && priorWeight == 0 {
		return 0, fmt.Errorf("%w: shrinkage undefined for n=0 and priorWeight=0", ErrInvalidParameter)
	}
	if observed < 0 || observed > 1 {
		return 0, fmt.Errorf("%w: observed rate %v outside [0,1]", ErrInvalidParameter, observed)
	}
	if prior < 0 || prior > 1 {
		return 0, fmt.Errorf("%w: prior rate %v outside [0,1]", ErrInvalidParameter, prior)
	}

	fn := float64(n)
	fm := float64(priorWeight)
	return (fn*observed + fm*prior) / (fn + fm), nil
}
