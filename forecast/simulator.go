package forecast

import (
	"fmt"
	"math"
	"math/rand"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultIterations is the iteration count used when a caller leaves it
// unset. Thousands keep percentile noise small while staying inside an
// interactive latency budget; the iteration count is the only dial on that
// budget.
const DefaultIterations = 2000

// SingleCandidateContext seeds a single-candidate forecast: one candidate's
// walk from their current stage, with the requisition id, seed string, and
// any what-if adjustments folded into the derived SimulationKey.
type SingleCandidateContext struct {
	RequisitionID string
	Candidate     PipelineCandidate
	StartDate     time.Time
	Seed          string
	Iterations    int
	Adjustments   Adjustments
}

// RunSimulation forecasts the fill date from a single candidate's walk.
// The iteration sample is that candidate's hired day count; iterations where
// the candidate drops contribute no sample. Iterations defaults to
// DefaultIterations when zero.
func RunSimulation(ctx SingleCandidateContext, params SimulationParameters) (*ForecastResult, error) {
	iterations := ctx.Iterations
	if iterations == 0 {
		iterations = DefaultIterations
	}
	candidates := []PipelineCandidate{ctx.Candidate}
	key := DeriveSimulationKey(ctx.RequisitionID, candidates, ctx.Adjustments, ctx.Seed)
	return RunPipelineSimulation(candidates, ctx.Adjustments.Apply(params), ctx.StartDate, key, iterations)
}

// RunPipelineSimulation simulates all active candidates independently within
// each iteration and takes the earliest hire: the requisition closes the
// moment any one candidate reaches HIRED. Iterations where every candidate
// drops contribute no sample point.
//
// The run is deterministic in (candidates, params, startDate, seed,
// iterations): every iteration draws from its own seed-derived RNG stream, so
// the iteration range can be partitioned across goroutines and merged without
// perturbing any stream. Candidates are ordered by id before simulation so
// that caller-side slice order does not matter either.
//
// An all-dropped run is not an error: the result carries zero samples and
// ConfidenceLow, and callers must be able to render it.
func RunPipelineSimulation(candidates []PipelineCandidate, params SimulationParameters, startDate time.Time, seed SimulationKey, iterations int) (*ForecastResult, error) {
	if iterations <= 0 {
		return nil, fmt.Errorf("%w: iterations=%d, want > 0", ErrInvalidParameter, iterations)
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	ordered := append([]PipelineCandidate(nil), candidates...)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].CandidateID < ordered[j].CandidateID })
	for _, c := range ordered {
		if _, err := ParseStage(string(c.CurrentStage)); err != nil {
			return nil, fmt.Errorf("candidate %s: %w", c.CandidateID, err)
		}
	}

	if len(ordered) == 0 {
		// Requisition with no active pipeline: a valid, honest, empty result.
		logrus.Debug("pipeline simulation invoked with no candidates; returning empty result")
		return newForecastResult(nil, iterations, startDate, seed, params), nil
	}

	// One slot per iteration; noSample marks iterations where every
	// candidate dropped. Workers own disjoint iteration ranges, so the
	// merged sequence is identical to a serial run.
	const noSample = -1
	outcomes := make([]int, iterations)

	workers := runtime.GOMAXPROCS(0)
	if workers > iterations {
		workers = iterations
	}
	chunk := (iterations + workers - 1) / workers

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		lo := w * chunk
		hi := lo + chunk
		if hi > iterations {
			hi = iterations
		}
		if lo >= hi {
			break
		}
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			for i := lo; i < hi; i++ {
				outcomes[i] = simulateIteration(ordered, params, seed, i, noSample)
			}
		}(lo, hi)
	}
	wg.Wait()

	days := make([]int, 0, iterations)
	for _, d := range outcomes {
		if d != noSample {
			days = append(days, d)
		}
	}
	if len(days) == 0 {
		logrus.Warnf("all %d iterations dropped before HIRED (seed=%d); forecast is empty with LOW confidence", iterations, seed)
	}
	return newForecastResult(days, iterations, startDate, seed, params), nil
}

// simulateIteration walks every candidate through the remaining stages using
// iteration i's derived RNG stream and returns the minimum hired day count,
// or noSample when nobody reaches HIRED.
func simulateIteration(candidates []PipelineCandidate, params SimulationParameters, seed SimulationKey, i, noSample int) int {
	rng := seed.IterationRNG(i)
	best := noSample
	for _, c := range candidates {
		days, hired := walkCandidate(c.CurrentStage, params, rng)
		if !hired {
			continue
		}
		if best == noSample || days < best {
			best = days
		}
	}
	return best
}

// walkCandidate advances one candidate from start toward HIRED: per stage, a
// Bernoulli conversion trial, then a duration sample (plus any injected
// queueing penalty) on success. A failed trial drops the candidate for this
// iteration.
func walkCandidate(start Stage, params SimulationParameters, rng *rand.Rand) (days int, hired bool) {
	stage := start
	for !stage.Terminal() {
		if rng.Float64() >= params.ConversionRates[stage] {
			return 0, false
		}
		d := params.Durations[stage].Sample(rng)
		if penalty := params.DurationPenaltyDays[stage]; penalty > 0 {
			d += int(math.Round(penalty))
		}
		days += d
		next, ok := stage.Next()
		if !ok {
			break
		}
		stage = next
	}
	return days, true
}
