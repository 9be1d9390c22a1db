package capacity

import (
	"fmt"
	"sort"

	"github.com/fillcast/fillcast/forecast"
)

// MaxStageDelayDays caps the queueing delay attributed to a single stage.
// Past this point the pipeline is starved, not merely queued, and a larger
// number would only distort the forecast dates.
const MaxStageDelayDays = 90

// Bottleneck is one stage whose demand exceeds its owner's capacity, with the
// owning party and the expected added delay.
type Bottleneck struct {
	Stage             forecast.Stage
	Owner             OwnerRole
	DemandPerWeek     int
	ThroughputPerWeek float64
	DelayDays         float64
}

// PenaltyResult converts demand-vs-capacity imbalance into added queueing
// delay per stage. Derived, never persisted; recomputed on every parameter
// change.
type PenaltyResult struct {
	StageDelayDays      map[forecast.Stage]float64
	TotalQueueDelayDays float64
	Bottlenecks         []Bottleneck // ranked by delay, worst first
	Confidence          forecast.ConfidenceLevel
	Recommendations     []string
	Constrained         bool
}

// ApplyCapacityPenaltyV11 compares, per canonical stage, each owner's global
// demand against their inferred weekly throughput and converts the excess
// into expected queueing delay. The binding owner for a stage is whichever
// side yields the larger delay.
//
// The delay policy is a backlog-to-throughput ratio, not a queueing-network
// solver: excess candidates divided by weekly throughput gives the backlog in
// weeks, times seven for days, capped at MaxStageDelayDays. An owner with
// demand but no observed throughput at a stage is treated as fully starved
// (cap applies).
//
// Unavailable profiles never error: the result is an explicit
// "not capacity-constrained" sentinel so the caller can still render an
// honest unconstrained forecast.
func ApplyCapacityPenaltyV11(demand GlobalDemand, profiles *Profiles) *PenaltyResult {
	result := &PenaltyResult{
		StageDelayDays: make(map[forecast.Stage]float64),
	}
	if !profiles.Available() {
		result.Confidence = forecast.ConfidenceLow
		result.Recommendations = append(result.Recommendations,
			"Capacity signal unavailable: no recruiter or hiring manager profile could be inferred; forecast is not capacity-adjusted.")
		return result
	}

	for _, stage := range forecast.CanonicalStages() {
		recruiter := sideDelay(demand.RecruiterDemand[stage], profiles.Recruiter, stage)
		hm := sideDelay(demand.HMDemand[stage], profiles.HiringManager, stage)

		binding := recruiter
		owner := RoleRecruiter
		if hm.delayDays > recruiter.delayDays {
			binding = hm
			owner = RoleHiringManager
		}
		if binding.delayDays <= 0 {
			continue
		}

		result.StageDelayDays[stage] = binding.delayDays
		result.TotalQueueDelayDays += binding.delayDays
		result.Bottlenecks = append(result.Bottlenecks, Bottleneck{
			Stage:             stage,
			Owner:             owner,
			DemandPerWeek:     binding.demand,
			ThroughputPerWeek: binding.throughput,
			DelayDays:         binding.delayDays,
		})
	}

	sort.SliceStable(result.Bottlenecks, func(i, j int) bool {
		return result.Bottlenecks[i].DelayDays > result.Bottlenecks[j].DelayDays
	})
	result.Constrained = result.TotalQueueDelayDays > 0
	result.Confidence = penaltyConfidence(profiles)
	result.Recommendations = recommendations(result)
	return result
}

// ApplyCapacityPenalty is the legacy pre-v1.1 variant: the same computation,
// but demand comes from the selected requisition's own pipeline only instead
// of the owners' global load. Retained for backward comparison — it
// understates queueing on busy owners.
func ApplyCapacityPenalty(pipeline map[forecast.Stage]int, profiles *Profiles) *PenaltyResult {
	demand := GlobalDemand{
		RecruiterDemand: pipeline,
		HMDemand:        pipeline,
	}
	return ApplyCapacityPenaltyV11(demand, profiles)
}

type sideLoad struct {
	demand     int
	throughput float64
	delayDays  float64
}

func sideDelay(demand int, profile *Profile, stage forecast.Stage) sideLoad {
	load := sideLoad{demand: demand}
	if profile == nil || demand <= 0 {
		return load
	}
	load.throughput = profile.Throughput(stage)
	excess := float64(demand) - load.throughput
	if excess <= 0 {
		return load
	}
	if load.throughput <= 0 {
		load.delayDays = MaxStageDelayDays
		return load
	}
	load.delayDays = excess / load.throughput * 7
	if load.delayDays > MaxStageDelayDays {
		load.delayDays = MaxStageDelayDays
	}
	return load
}

// penaltyConfidence is the weaker of the available owners' profile grades.
func penaltyConfidence(profiles *Profiles) forecast.ConfidenceLevel {
	rank := map[forecast.ConfidenceLevel]int{
		forecast.ConfidenceLow:    0,
		forecast.ConfidenceMedium: 1,
		forecast.ConfidenceHigh:   2,
	}
	worst := forecast.ConfidenceHigh
	for _, p := range []*Profile{profiles.Recruiter, profiles.HiringManager} {
		if p == nil {
			continue
		}
		if rank[p.Confidence] < rank[worst] {
			worst = p.Confidence
		}
	}
	return worst
}

func ownerLabel(role OwnerRole) string {
	if role == RoleHiringManager {
		return "hiring manager"
	}
	return "recruiter"
}

func recommendations(result *PenaltyResult) []string {
	if !result.Constrained {
		return []string{"No capacity constraint detected for the current pipeline load."}
	}
	recs := make([]string, 0, len(result.Bottlenecks)+1)
	for _, b := range result.Bottlenecks {
		recs = append(recs, fmt.Sprintf(
			"%s is bottlenecked by the %s: %d candidates waiting against ~%.1f/week of capacity, adding ~%.0f days of queueing delay. Consider rebalancing their requisition load or delegating %s reviews.",
			b.Stage, ownerLabel(b.Owner), b.DemandPerWeek, b.ThroughputPerWeek, b.DelayDays, b.Stage))
	}
	recs = append(recs, fmt.Sprintf(
		"Total expected queueing delay across stages is ~%.0f days.", result.TotalQueueDelayDays))
	return recs
}
