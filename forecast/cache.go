package forecast

import (
	"fmt"
	"time"

	"github.com/maypok86/otter/v2"
	"github.com/sirupsen/logrus"
)

// DefaultCacheCapacity bounds the number of memoized forecast results. A
// what-if UI replays a small working set of slider positions, so a few
// hundred entries cover it.
const DefaultCacheCapacity = 256

// ResultCache memoizes simulation results keyed by every input that affects
// simulation output: requisition id, pipeline composition, seed, iteration
// count, and knob/lever adjustments. Entries are immutable ForecastResults;
// reads and writes are safe under concurrent simulations. Eviction is
// capacity-bounded and handled by otter.
type ResultCache struct {
	cache *otter.Cache[string, *ForecastResult]
}

// NewResultCache creates a bounded cache. capacity <= 0 selects
// DefaultCacheCapacity.
func NewResultCache(capacity int) *ResultCache {
	if capacity <= 0 {
		capacity = DefaultCacheCapacity
	}
	return &ResultCache{
		cache: otter.Must(&otter.Options[string, *ForecastResult]{
			MaximumSize: capacity,
		}),
	}
}

// RunSimulation is the memoized counterpart of the package-level
// RunSimulation.
func (c *ResultCache) RunSimulation(ctx SingleCandidateContext, params SimulationParameters) (*ForecastResult, error) {
	iterations := ctx.Iterations
	if iterations == 0 {
		iterations = DefaultIterations
	}
	candidates := []PipelineCandidate{ctx.Candidate}
	seed := DeriveSimulationKey(ctx.RequisitionID, candidates, ctx.Adjustments, ctx.Seed)
	key := cacheKey(ctx.RequisitionID, candidates, ctx.StartDate, seed, iterations, ctx.Adjustments)

	if r, ok := c.cache.GetIfPresent(key); ok {
		logrus.Debugf("forecast cache hit: %s", key)
		return r, nil
	}
	r, err := RunSimulation(ctx, params)
	if err != nil {
		return nil, err
	}
	c.cache.Set(key, r)
	return r, nil
}

// RunPipelineSimulation is the memoized counterpart of the package-level
// RunPipelineSimulation. reqID scopes the cache entry to its requisition.
func (c *ResultCache) RunPipelineSimulation(reqID string, candidates []PipelineCandidate, params SimulationParameters, startDate time.Time, seed SimulationKey, iterations int) (*ForecastResult, error) {
	key := cacheKey(reqID, candidates, startDate, seed, iterations, Adjustments{})

	if r, ok := c.cache.GetIfPresent(key); ok {
		logrus.Debugf("forecast cache hit: %s", key)
		return r, nil
	}
	r, err := RunPipelineSimulation(candidates, params, startDate, seed, iterations)
	if err != nil {
		return nil, err
	}
	c.cache.Set(key, r)
	return r, nil
}

// Len returns the approximate number of cached results.
func (c *ResultCache) Len() int {
	return c.cache.EstimatedSize()
}

func cacheKey(reqID string, candidates []PipelineCandidate, startDate time.Time, seed SimulationKey, iterations int, adjustments Adjustments) string {
	return fmt.Sprintf("%s|%s|%s|%d|%d|%s",
		reqID,
		PipelineHash(candidates),
		startDate.Format("2006-01-02"),
		int64(seed),
		iterations,
		adjustmentsHash(adjustments))
}
