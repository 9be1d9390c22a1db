package forecast

import "errors"

// Error taxonomy. Pure numeric functions fail fast with ErrInvalidParameter
// because they indicate a caller programming error. Data-availability gaps
// (no events, no capacity signal, empty pipeline) are recovered locally by
// returning explicit "unavailable" sentinel results instead of an error, so
// callers can always render a degraded-but-honest forecast.
var (
	// ErrInvalidParameter indicates a malformed numeric input, such as a
	// shrinkage call with n = priorWeight = 0, a rate outside [0,1], or a
	// non-positive iteration count.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrInsufficientData indicates that a computation has no identifying
	// data to work from (e.g. capacity inference with no attributable
	// events). It signals "unavailable", not a crash.
	ErrInsufficientData = errors.New("insufficient data")
)
