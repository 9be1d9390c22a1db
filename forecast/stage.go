package forecast

import "fmt"

// Stage is a canonical pipeline stage name, used as the key for conversion
// rates and duration distributions.
type Stage string

const (
	StageScreen   Stage = "SCREEN"
	StageHMScreen Stage = "HM_SCREEN"
	StageOnsite   Stage = "ONSITE"
	StageOffer    Stage = "OFFER"

	// StageHired is the terminal stage. A candidate reaching it closes the
	// requisition; it carries no conversion rate or duration of its own.
	StageHired Stage = "HIRED"
)

// canonicalOrder lists the active stages a candidate walks through, in order.
// StageHired is deliberately absent: it is the state after the last advance.
var canonicalOrder = []Stage{StageScreen, StageHMScreen, StageOnsite, StageOffer}

var stageIndex = func() map[Stage]int {
	m := make(map[Stage]int, len(canonicalOrder))
	for i, s := range canonicalOrder {
		m[s] = i
	}
	return m
}()

// CanonicalStages returns the ordered active (non-terminal) stages.
// The returned slice must not be mutated.
func CanonicalStages() []Stage {
	return canonicalOrder
}

// Next returns the stage after s in canonical order. The last active stage
// advances to StageHired. ok is false for StageHired itself and for any
// non-canonical stage name.
func (s Stage) Next() (next Stage, ok bool) {
	i, found := stageIndex[s]
	if !found {
		return "", false
	}
	if i == len(canonicalOrder)-1 {
		return StageHired, true
	}
	return canonicalOrder[i+1], true
}

// Terminal reports whether s is the terminal HIRED stage.
func (s Stage) Terminal() bool {
	return s == StageHired
}

// ParseStage validates a stage name against the canonical set (terminal
// included).
func ParseStage(name string) (Stage, error) {
	s := Stage(name)
	if s == StageHired {
		return s, nil
	}
	if _, ok := stageIndex[s]; !ok {
		return "", fmt.Errorf("%w: unknown stage %q", ErrInvalidParameter, name)
	}
	return s, nil
}

// RateKey and DurationKey build the sample-size map keys for a stage, e.g.
// "SCREEN_rate" and "SCREEN_duration".
func (s Stage) RateKey() string     { return string(s) + "_rate" }
func (s Stage) DurationKey() string { return string(s) + "_duration" }
