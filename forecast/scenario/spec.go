// Package scenario loads forecast scenarios from YAML and turns fitted
// historical rates and durations into forecast.SimulationParameters, applying
// the shrinkage and small-sample fallback policy on the way.
package scenario

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/fillcast/fillcast/forecast"
	"github.com/fillcast/fillcast/forecast/capacity"
)

// Spec is the top-level scenario file: one requisition's pipeline, the fitted
// per-stage parameters produced by the external fitting step, and the raw
// historical data capacity inference works from.
type Spec struct {
	RequisitionID string    `yaml:"requisition_id"`
	StartDate     time.Time `yaml:"start_date"`
	Seed          string    `yaml:"seed"`
	Iterations    int       `yaml:"iterations"`

	Owners OwnersSpec `yaml:"owners"`

	// Priors are global benchmark conversion rates the observed rates are
	// shrunk toward. Stages absent here use built-in defaults.
	Priors map[string]float64 `yaml:"priors"`

	Stages     map[string]StageSpec `yaml:"stages"`
	Candidates []CandidateSpec      `yaml:"candidates"`

	Events       []EventSpec       `yaml:"events"`
	Requisitions []RequisitionSpec `yaml:"requisitions"`
	Users        []UserSpec        `yaml:"users"`
}

// OwnersSpec names the requisition's recruiter and hiring manager.
type OwnersSpec struct {
	Recruiter     string `yaml:"recruiter"`
	HiringManager string `yaml:"hiring_manager"`
}

// StageSpec carries one stage's fitted parameters and the observation counts
// behind them.
type StageSpec struct {
	ConversionRate float64      `yaml:"conversion_rate"`
	RateN          int          `yaml:"rate_n"`
	Duration       DurationSpec `yaml:"duration"`
	DurationN      int          `yaml:"duration_n"`
}

// DurationSpec is the YAML form of a forecast.DurationDistribution.
type DurationSpec struct {
	Type    string       `yaml:"type"`
	Days    int          `yaml:"days,omitempty"`
	Mu      float64      `yaml:"mu,omitempty"`
	Sigma   float64      `yaml:"sigma,omitempty"`
	Buckets []BucketSpec `yaml:"buckets,omitempty"`
}

// BucketSpec is one empirical dwell-time cell.
type BucketSpec struct {
	Days   int     `yaml:"days"`
	Weight float64 `yaml:"weight"`
}

// CandidateSpec is one pipeline occupant.
type CandidateSpec struct {
	ID            string `yaml:"id"`
	RequisitionID string `yaml:"requisition,omitempty"`
	Stage         string `yaml:"stage"`
	Active        *bool  `yaml:"active,omitempty"` // default true
}

// EventSpec is one historical pipeline action.
type EventSpec struct {
	ID            string    `yaml:"id"`
	CandidateID   string    `yaml:"candidate"`
	RequisitionID string    `yaml:"requisition"`
	ActorID       string    `yaml:"actor"`
	Stage         string    `yaml:"stage"`
	OccurredAt    time.Time `yaml:"occurred_at"`
}

// RequisitionSpec ties a requisition to its owners.
type RequisitionSpec struct {
	ID            string `yaml:"id"`
	Recruiter     string `yaml:"recruiter"`
	HiringManager string `yaml:"hiring_manager"`
	Open          bool   `yaml:"open"`
}

// UserSpec is a referenced person.
type UserSpec struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
	Role string `yaml:"role"`
}

// Load reads and validates a scenario file.
func Load(path string) (*Spec, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario %s: %w", path, err)
	}
	return Parse(raw)
}

// Parse decodes and validates scenario YAML.
func Parse(raw []byte) (*Spec, error) {
	var spec Spec
	if err := yaml.Unmarshal(raw, &spec); err != nil {
		return nil, fmt.Errorf("parsing scenario: %w", err)
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return &spec, nil
}

// Validate checks the scenario's structural invariants: a known stage for
// every reference, rates in [0,1], well-formed duration variants, and a
// non-zero start date.
func (s *Spec) Validate() error {
	if s.RequisitionID == "" {
		return fmt.Errorf("%w: scenario missing requisition_id", forecast.ErrInvalidParameter)
	}
	if s.StartDate.IsZero() {
		return fmt.Errorf("%w: scenario missing start_date", forecast.ErrInvalidParameter)
	}
	if s.Iterations < 0 {
		return fmt.Errorf("%w: iterations=%d, want >= 0", forecast.ErrInvalidParameter, s.Iterations)
	}

	for name, stage := range s.Stages {
		if _, err := forecast.ParseStage(name); err != nil {
			return fmt.Errorf("stages: %w", err)
		}
		if stage.ConversionRate < 0 || stage.ConversionRate > 1 {
			return fmt.Errorf("%w: stage %s conversion_rate %v outside [0,1]", forecast.ErrInvalidParameter, name, stage.ConversionRate)
		}
		if stage.RateN < 0 || stage.DurationN < 0 {
			return fmt.Errorf("%w: stage %s has negative sample count", forecast.ErrInvalidParameter, name)
		}
		if _, err := stage.Duration.toDistribution(); err != nil {
			return fmt.Errorf("stage %s duration: %w", name, err)
		}
	}
	for name, rate := range s.Priors {
		if _, err := forecast.ParseStage(name); err != nil {
			return fmt.Errorf("priors: %w", err)
		}
		if rate < 0 || rate > 1 {
			return fmt.Errorf("%w: prior %s=%v outside [0,1]", forecast.ErrInvalidParameter, name, rate)
		}
	}
	for _, c := range s.Candidates {
		if c.ID == "" {
			return fmt.Errorf("%w: candidate missing id", forecast.ErrInvalidParameter)
		}
		if _, err := forecast.ParseStage(c.Stage); err != nil {
			return fmt.Errorf("candidate %s: %w", c.ID, err)
		}
	}
	for _, ev := range s.Events {
		if _, err := forecast.ParseStage(ev.Stage); err != nil {
			return fmt.Errorf("event %s: %w", ev.ID, err)
		}
	}
	return nil
}

func (d DurationSpec) toDistribution() (forecast.DurationDistribution, error) {
	var dist forecast.DurationDistribution
	switch forecast.DistributionType(d.Type) {
	case forecast.DistConstant:
		dist = forecast.ConstantDuration(d.Days)
	case forecast.DistLognormal:
		dist = forecast.LognormalDuration(d.Mu, d.Sigma)
	case forecast.DistEmpirical:
		buckets := make([]forecast.DurationBucket, 0, len(d.Buckets))
		for _, b := range d.Buckets {
			buckets = append(buckets, forecast.DurationBucket{Days: b.Days, Weight: b.Weight})
		}
		dist = forecast.EmpiricalDuration(buckets)
	default:
		return dist, fmt.Errorf("%w: unknown duration type %q", forecast.ErrInvalidParameter, d.Type)
	}
	return dist, dist.Validate()
}

// PipelineCandidates converts the scenario's candidate list to the
// simulator's input shape.
func (s *Spec) PipelineCandidates() []forecast.PipelineCandidate {
	out := make([]forecast.PipelineCandidate, 0, len(s.Candidates))
	for _, c := range s.Candidates {
		out = append(out, forecast.PipelineCandidate{
			CandidateID:  c.ID,
			CurrentStage: forecast.Stage(c.Stage),
		})
	}
	return out
}

// Dataset converts the scenario's historical records to the capacity
// package's input shape. Candidates without an explicit requisition default
// to the scenario's own.
func (s *Spec) Dataset() capacity.Dataset {
	data := capacity.Dataset{}
	for _, ev := range s.Events {
		data.Events = append(data.Events, capacity.Event{
			ID:            ev.ID,
			CandidateID:   ev.CandidateID,
			RequisitionID: ev.RequisitionID,
			ActorID:       ev.ActorID,
			Stage:         forecast.Stage(ev.Stage),
			OccurredAt:    ev.OccurredAt,
		})
	}
	for _, c := range s.Candidates {
		reqID := c.RequisitionID
		if reqID == "" {
			reqID = s.RequisitionID
		}
		active := true
		if c.Active != nil {
			active = *c.Active
		}
		data.Candidates = append(data.Candidates, capacity.Candidate{
			ID:            c.ID,
			RequisitionID: reqID,
			Stage:         forecast.Stage(c.Stage),
			Active:        active,
		})
	}
	for _, r := range s.Requisitions {
		data.Requisitions = append(data.Requisitions, capacity.Requisition{
			ID:              r.ID,
			RecruiterID:     r.Recruiter,
			HiringManagerID: r.HiringManager,
			Open:            r.Open,
		})
	}
	for _, u := range s.Users {
		data.Users = append(data.Users, capacity.User{ID: u.ID, Name: u.Name, Role: u.Role})
	}
	return data
}

// CapacityOwners returns the scenario's owner ids in the capacity package's
// shape.
func (s *Spec) CapacityOwners() capacity.Owners {
	return capacity.Owners{
		RecruiterID:     s.Owners.Recruiter,
		HiringManagerID: s.Owners.HiringManager,
	}
}
