package capacity

import (
	"math"
	"strings"
	"testing"

	"github.com/fillcast/fillcast/forecast"
)

func recruiterProfile(throughput map[forecast.Stage]float64, confidence forecast.ConfidenceLevel) *Profiles {
	return &Profiles{
		Recruiter: &Profile{
			OwnerID:          "rec-1",
			Role:             RoleRecruiter,
			WeeklyThroughput: throughput,
			EventCount:       36,
			Confidence:       confidence,
		},
	}
}

// The worked example: recruiter throughput 3/week at SCREEN against a global
// demand of 9 waiting candidates. Excess 6 over throughput 3 is a two-week
// backlog: 14 days of queueing delay, owned by the recruiter.
func TestApplyCapacityPenaltyV11_WorkedExample(t *testing.T) {
	profiles := recruiterProfile(map[forecast.Stage]float64{forecast.StageScreen: 3}, forecast.ConfidenceHigh)
	demand := GlobalDemand{
		RecruiterDemand: map[forecast.Stage]int{forecast.StageScreen: 9},
		HMDemand:        map[forecast.Stage]int{},
	}

	result := ApplyCapacityPenaltyV11(demand, profiles)

	if !result.Constrained {
		t.Fatal("expected a capacity-constrained result")
	}
	if math.Abs(result.StageDelayDays[forecast.StageScreen]-14) > 0.001 {
		t.Errorf("SCREEN delay = %v days, want 14", result.StageDelayDays[forecast.StageScreen])
	}
	if math.Abs(result.TotalQueueDelayDays-14) > 0.001 {
		t.Errorf("total delay = %v days, want 14", result.TotalQueueDelayDays)
	}
	if len(result.Bottlenecks) != 1 {
		t.Fatalf("bottlenecks = %d, want 1", len(result.Bottlenecks))
	}
	b := result.Bottlenecks[0]
	if b.Stage != forecast.StageScreen || b.Owner != RoleRecruiter {
		t.Errorf("bottleneck = %s/%s, want SCREEN/recruiter", b.Stage, b.Owner)
	}
	if len(result.Recommendations) == 0 || !strings.Contains(result.Recommendations[0], "SCREEN") {
		t.Errorf("recommendations should name the bottleneck stage: %v", result.Recommendations)
	}
}

func TestApplyCapacityPenaltyV11_DemandWithinCapacity(t *testing.T) {
	profiles := recruiterProfile(map[forecast.Stage]float64{forecast.StageScreen: 10}, forecast.ConfidenceHigh)
	demand := GlobalDemand{
		RecruiterDemand: map[forecast.Stage]int{forecast.StageScreen: 4},
	}

	result := ApplyCapacityPenaltyV11(demand, profiles)
	if result.Constrained {
		t.Error("demand below capacity should not be constrained")
	}
	if result.TotalQueueDelayDays != 0 {
		t.Errorf("total delay = %v, want 0", result.TotalQueueDelayDays)
	}
	if len(result.Recommendations) == 0 {
		t.Error("unconstrained result should still carry an explicit message")
	}
}

func TestApplyCapacityPenaltyV11_BindingOwnerIsWorseSide(t *testing.T) {
	profiles := &Profiles{
		Recruiter: &Profile{
			OwnerID: "rec-1", Role: RoleRecruiter,
			WeeklyThroughput: map[forecast.Stage]float64{forecast.StageOnsite: 6},
			Confidence:       forecast.ConfidenceHigh,
		},
		HiringManager: &Profile{
			OwnerID: "hm-1", Role: RoleHiringManager,
			WeeklyThroughput: map[forecast.Stage]float64{forecast.StageOnsite: 2},
			Confidence:       forecast.ConfidenceHigh,
		},
	}
	demand := GlobalDemand{
		RecruiterDemand: map[forecast.Stage]int{forecast.StageOnsite: 8},
		HMDemand:        map[forecast.Stage]int{forecast.StageOnsite: 8},
	}

	result := ApplyCapacityPenaltyV11(demand, profiles)
	if len(result.Bottlenecks) != 1 {
		t.Fatalf("bottlenecks = %d, want 1", len(result.Bottlenecks))
	}
	// HM side: excess 6 over 2/week = 21 days. Recruiter side: excess 2 over
	// 6/week = ~2.3 days. The HM binds.
	if result.Bottlenecks[0].Owner != RoleHiringManager {
		t.Errorf("binding owner = %s, want hm", result.Bottlenecks[0].Owner)
	}
	if math.Abs(result.StageDelayDays[forecast.StageOnsite]-21) > 0.001 {
		t.Errorf("ONSITE delay = %v, want 21", result.StageDelayDays[forecast.StageOnsite])
	}
}

func TestApplyCapacityPenaltyV11_StarvedStageIsCapped(t *testing.T) {
	// Demand at a stage the owner never worked: no throughput signal at all.
	profiles := recruiterProfile(map[forecast.Stage]float64{forecast.StageScreen: 3}, forecast.ConfidenceHigh)
	demand := GlobalDemand{
		RecruiterDemand: map[forecast.Stage]int{forecast.StageOffer: 4},
	}

	result := ApplyCapacityPenaltyV11(demand, profiles)
	if got := result.StageDelayDays[forecast.StageOffer]; got != MaxStageDelayDays {
		t.Errorf("starved OFFER delay = %v, want capped at %d", got, MaxStageDelayDays)
	}
}

func TestApplyCapacityPenaltyV11_UnavailableProfilesAreSentinel(t *testing.T) {
	for _, profiles := range []*Profiles{nil, {}} {
		result := ApplyCapacityPenaltyV11(GlobalDemand{}, profiles)
		if result.Constrained {
			t.Error("unavailable profiles must yield an unconstrained sentinel")
		}
		if result.Confidence != forecast.ConfidenceLow {
			t.Errorf("confidence = %s, want LOW", result.Confidence)
		}
	}
}

func TestApplyCapacityPenaltyV11_ConfidenceIsWorstProfile(t *testing.T) {
	profiles := &Profiles{
		Recruiter: &Profile{
			Role: RoleRecruiter, Confidence: forecast.ConfidenceHigh,
			WeeklyThroughput: map[forecast.Stage]float64{forecast.StageScreen: 3},
		},
		HiringManager: &Profile{
			Role: RoleHiringManager, Confidence: forecast.ConfidenceLow,
			WeeklyThroughput: map[forecast.Stage]float64{},
		},
	}
	result := ApplyCapacityPenaltyV11(GlobalDemand{}, profiles)
	if result.Confidence != forecast.ConfidenceLow {
		t.Errorf("confidence = %s, want the weaker profile's LOW", result.Confidence)
	}
}

func TestApplyCapacityPenalty_LegacySingleRequisition(t *testing.T) {
	profiles := recruiterProfile(map[forecast.Stage]float64{forecast.StageScreen: 3}, forecast.ConfidenceHigh)
	pipeline := map[forecast.Stage]int{forecast.StageScreen: 9}

	legacy := ApplyCapacityPenalty(pipeline, profiles)
	if !legacy.Constrained {
		t.Fatal("legacy variant should also detect the overload")
	}
	if math.Abs(legacy.StageDelayDays[forecast.StageScreen]-14) > 0.001 {
		t.Errorf("legacy SCREEN delay = %v, want 14", legacy.StageDelayDays[forecast.StageScreen])
	}
}
