package forecast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultCache_MemoizesIdenticalInputs(t *testing.T) {
	cache := NewResultCache(16)
	candidates := []PipelineCandidate{{CandidateID: "c1", CurrentStage: StageScreen}}
	params := testParams(nil, nil)
	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	seed := NewSimulationKey(42)

	first, err := cache.RunPipelineSimulation("REQ-1", candidates, params, start, seed, 500)
	require.NoError(t, err)
	second, err := cache.RunPipelineSimulation("REQ-1", candidates, params, start, seed, 500)
	require.NoError(t, err)

	assert.Same(t, first, second, "identical inputs should return the cached result")
	assert.Equal(t, 1, cache.Len())
}

func TestResultCache_DistinctInputsDistinctEntries(t *testing.T) {
	cache := NewResultCache(16)
	candidates := []PipelineCandidate{{CandidateID: "c1", CurrentStage: StageScreen}}
	params := testParams(nil, nil)
	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	_, err := cache.RunPipelineSimulation("REQ-1", candidates, params, start, NewSimulationKey(1), 500)
	require.NoError(t, err)
	_, err = cache.RunPipelineSimulation("REQ-1", candidates, params, start, NewSimulationKey(2), 500)
	require.NoError(t, err)
	_, err = cache.RunPipelineSimulation("REQ-2", candidates, params, start, NewSimulationKey(1), 500)
	require.NoError(t, err)

	assert.Equal(t, 3, cache.Len())
}

func TestResultCache_AdjustmentsScopeSingleCandidateEntries(t *testing.T) {
	cache := NewResultCache(16)
	params := testParams(nil, nil)
	base := SingleCandidateContext{
		RequisitionID: "REQ-1",
		Candidate:     PipelineCandidate{CandidateID: "c1", CurrentStage: StageScreen},
		StartDate:     time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		Seed:          "t1",
		Iterations:    500,
	}
	lever := base
	lever.Adjustments = Adjustments{RateDeltas: map[Stage]float64{StageScreen: 0.1}}

	plain, err := cache.RunSimulation(base, params)
	require.NoError(t, err)
	adjusted, err := cache.RunSimulation(lever, params)
	require.NoError(t, err)

	assert.NotSame(t, plain, adjusted, "a lever change must not hit the unadjusted entry")
	assert.Equal(t, 2, cache.Len())
}

func TestResultCache_ErrorsAreNotCached(t *testing.T) {
	cache := NewResultCache(16)
	candidates := []PipelineCandidate{{CandidateID: "c1", CurrentStage: StageScreen}}

	_, err := cache.RunPipelineSimulation("REQ-1", candidates, testParams(nil, nil), time.Now(), NewSimulationKey(1), -1)
	require.Error(t, err)
	assert.Equal(t, 0, cache.Len())
}
