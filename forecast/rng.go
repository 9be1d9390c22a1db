package forecast

import (
	"fmt"
	"hash/fnv"
	"math/rand"
	"sort"
	"strconv"
)

// === SimulationKey ===

// SimulationKey uniquely identifies a reproducible simulation run.
// Two simulations with the same SimulationKey and identical parameters MUST
// produce bit-for-bit identical SimulatedDays.
type SimulationKey int64

// NewSimulationKey creates a SimulationKey from a raw seed value.
func NewSimulationKey(seed int64) SimulationKey {
	return SimulationKey(seed)
}

// DeriveSimulationKey derives a SimulationKey from everything that affects
// simulation output: the requisition, the pipeline composition, the what-if
// adjustments, and the caller's seed string. Candidate order and map
// iteration order do not affect the result; the composite is canonicalized
// (sorted) before hashing.
func DeriveSimulationKey(reqID string, candidates []PipelineCandidate, adjustments Adjustments, seed string) SimulationKey {
	composite := reqID + "|" + PipelineHash(candidates) + "|" + adjustmentsHash(adjustments) + "|" + seed
	return SimulationKey(fnv1a64(composite))
}

// IterationRNG returns the deterministically-seeded RNG for iteration i.
//
// Derivation: masterKey XOR fnv1a64("iter_<i>"). Giving every iteration its
// own derived stream is what makes partition-then-merge execution safe: a
// worker that owns iterations [a,b) consumes exactly the streams a serial run
// would, so the merged SimulatedDays is bit-identical regardless of how the
// range is split across goroutines.
func (k SimulationKey) IterationRNG(i int) *rand.Rand {
	derived := int64(k) ^ fnv1a64("iter_"+strconv.Itoa(i))
	return rand.New(rand.NewSource(derived))
}

// === Canonical input hashing ===

// PipelineHash canonicalizes a candidate set into a stable digest string:
// sorted "id:stage" pairs. Used for both seed derivation and cache keys.
func PipelineHash(candidates []PipelineCandidate) string {
	pairs := make([]string, 0, len(candidates))
	for _, c := range candidates {
		pairs = append(pairs, c.CandidateID+":"+string(c.CurrentStage))
	}
	sort.Strings(pairs)
	h := fnv.New64a()
	for _, p := range pairs {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return fmt.Sprintf("%016x", h.Sum64())
}

func adjustmentsHash(a Adjustments) string {
	if a.Empty() {
		return "none"
	}
	parts := make([]string, 0, len(a.RateDeltas)+len(a.DurationScales))
	for stage, delta := range a.RateDeltas {
		parts = append(parts, "lever:"+string(stage)+"="+strconv.FormatFloat(delta, 'g', -1, 64))
	}
	for stage, scale := range a.DurationScales {
		parts = append(parts, "knob:"+string(stage)+"="+strconv.FormatFloat(scale, 'g', -1, 64))
	}
	sort.Strings(parts)
	h := fnv.New64a()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return fmt.Sprintf("%016x", h.Sum64())
}

// fnv1a64 computes a 64-bit FNV-1a hash of the input string.
func fnv1a64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}
