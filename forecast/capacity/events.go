// Package capacity infers recruiter and hiring-manager throughput from
// historical pipeline events and converts demand-vs-capacity imbalance into
// expected queueing delay per stage.
//
// The package consumes the data-import layer's raw shapes (events,
// candidates, requisitions, users) in memory; nothing here blocks on I/O.
package capacity

import (
	"time"

	"github.com/fillcast/fillcast/forecast"
)

// OwnerRole identifies which party a capacity figure or bottleneck belongs to.
type OwnerRole string

const (
	RoleRecruiter     OwnerRole = "recruiter"
	RoleHiringManager OwnerRole = "hm"
)

// Event is one historical pipeline action: a candidate moved through a stage
// on a requisition, performed by an actor. Produced by the data-import layer.
type Event struct {
	ID            string
	CandidateID   string
	RequisitionID string
	ActorID       string
	Stage         forecast.Stage
	OccurredAt    time.Time
}

// Candidate is a pipeline occupant of a requisition. Active candidates count
// toward demand; inactive ones (withdrawn, rejected, hired) do not.
type Candidate struct {
	ID            string
	RequisitionID string
	Stage         forecast.Stage
	Active        bool
}

// Requisition ties a pipeline to its owning recruiter and hiring manager.
type Requisition struct {
	ID              string
	RecruiterID     string
	HiringManagerID string
	Open            bool
}

// User is a person referenced by events and requisitions.
type User struct {
	ID   string
	Name string
	Role string
}

// Dataset bundles the raw historical inputs capacity inference works from.
type Dataset struct {
	Events       []Event
	Candidates   []Candidate
	Requisitions []Requisition
	Users        []User
}

// Owners names the recruiter and hiring manager whose capacity constrains the
// forecast. Either id may be empty.
type Owners struct {
	RecruiterID     string
	HiringManagerID string
}

// Window is a half-open historical interval [Start, End) used for capacity
// lookback.
type Window struct {
	Start time.Time
	End   time.Time
}

// DefaultLookbackWeeks is the historical window length for capacity
// inference, ending at the forecast's start date.
const DefaultLookbackWeeks = 12

// LookbackWindow returns the weeks-long window ending at end.
func LookbackWindow(end time.Time, weeks int) Window {
	if weeks <= 0 {
		weeks = DefaultLookbackWeeks
	}
	return Window{Start: end.AddDate(0, 0, -7*weeks), End: end}
}

// Weeks returns the window length in (fractional) weeks.
func (w Window) Weeks() float64 {
	return w.End.Sub(w.Start).Hours() / (24 * 7)
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// requisitionsOwnedBy collects the ids of open requisitions owned by ownerID
// in the given role.
func requisitionsOwnedBy(data Dataset, ownerID string, role OwnerRole) map[string]bool {
	owned := make(map[string]bool)
	if ownerID == "" {
		return owned
	}
	for _, req := range data.Requisitions {
		if !req.Open {
			continue
		}
		switch role {
		case RoleRecruiter:
			if req.RecruiterID == ownerID {
				owned[req.ID] = true
			}
		case RoleHiringManager:
			if req.HiringManagerID == ownerID {
				owned[req.ID] = true
			}
		}
	}
	return owned
}
