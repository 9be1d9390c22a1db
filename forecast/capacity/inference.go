package capacity

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/fillcast/fillcast/forecast"
)

// Profile is one owner's estimated per-stage weekly throughput: how many
// candidates they historically move through each stage per week, with a
// confidence grade driven by the volume of events observed.
type Profile struct {
	OwnerID          string
	Role             OwnerRole
	WeeklyThroughput map[forecast.Stage]float64
	EventCount       int
	Confidence       forecast.ConfidenceLevel
	Window           Window
}

// Throughput returns the owner's weekly throughput at a stage, 0 when the
// stage never appeared in the lookback.
func (p *Profile) Throughput(stage forecast.Stage) float64 {
	if p == nil {
		return 0
	}
	return p.WeeklyThroughput[stage]
}

// Profiles pairs the recruiter's and hiring manager's capacity estimates.
// Either side may be nil when that owner had no attributable events.
type Profiles struct {
	Recruiter     *Profile
	HiringManager *Profile
}

// Available reports whether at least one owner has a usable profile.
func (p *Profiles) Available() bool {
	return p != nil && (p.Recruiter != nil || p.HiringManager != nil)
}

// Event volume thresholds for grading a profile's confidence.
const (
	highConfidenceEvents   = 30
	mediumConfidenceEvents = 10
)

// InferProfiles estimates per-owner per-stage weekly throughput from the
// historical events inside the lookback window. An event is attributable to
// an owner when the owner performed it, or when it happened on a requisition
// the owner owns in their role.
//
// Returns forecast.ErrInsufficientData when no owner id is supplied or the
// dataset carries no events at all — the capacity signal is unavailable, and
// guessing would be worse than saying so.
func InferProfiles(owners Owners, window Window, data Dataset) (*Profiles, error) {
	if owners.RecruiterID == "" && owners.HiringManagerID == "" {
		return nil, fmt.Errorf("%w: no recruiter or hiring manager id supplied", forecast.ErrInsufficientData)
	}
	if len(data.Events) == 0 {
		return nil, fmt.Errorf("%w: no historical events to infer capacity from", forecast.ErrInsufficientData)
	}
	if window.Weeks() <= 0 {
		return nil, fmt.Errorf("%w: lookback window has non-positive length", forecast.ErrInvalidParameter)
	}

	profiles := &Profiles{
		Recruiter:     inferOwnerProfile(owners.RecruiterID, RoleRecruiter, window, data),
		HiringManager: inferOwnerProfile(owners.HiringManagerID, RoleHiringManager, window, data),
	}
	if !profiles.Available() {
		return nil, fmt.Errorf("%w: no events attributable to the supplied owners within the lookback window", forecast.ErrInsufficientData)
	}
	return profiles, nil
}

func inferOwnerProfile(ownerID string, role OwnerRole, window Window, data Dataset) *Profile {
	if ownerID == "" {
		return nil
	}
	owned := requisitionsOwnedBy(data, ownerID, role)

	counts := make(map[forecast.Stage]int)
	total := 0
	for _, ev := range data.Events {
		if !window.Contains(ev.OccurredAt) {
			continue
		}
		if ev.ActorID != ownerID && !owned[ev.RequisitionID] {
			continue
		}
		if _, err := forecast.ParseStage(string(ev.Stage)); err != nil {
			continue
		}
		counts[ev.Stage]++
		total++
	}
	if total == 0 {
		logrus.Debugf("capacity inference: no attributable events for %s %s in lookback", role, ownerID)
		return nil
	}

	weeks := window.Weeks()
	throughput := make(map[forecast.Stage]float64, len(counts))
	for stage, n := range counts {
		throughput[stage] = float64(n) / weeks
	}

	confidence := forecast.ConfidenceLow
	switch {
	case total >= highConfidenceEvents:
		confidence = forecast.ConfidenceHigh
	case total >= mediumConfidenceEvents:
		confidence = forecast.ConfidenceMedium
	}

	return &Profile{
		OwnerID:          ownerID,
		Role:             role,
		WeeklyThroughput: throughput,
		EventCount:       total,
		Confidence:       confidence,
		Window:           window,
	}
}
