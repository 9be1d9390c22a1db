package capacity

import "github.com/fillcast/fillcast/forecast"

// GlobalDemand is the per-stage candidate load competing for an owner's
// attention, aggregated across every open requisition that owner holds — not
// only the requisition being forecast. This is the realistic queueing load.
type GlobalDemand struct {
	RecruiterDemand map[forecast.Stage]int
	HMDemand        map[forecast.Stage]int
}

// MaxAt returns the greater of recruiter and HM demand at a stage.
func (d GlobalDemand) MaxAt(stage forecast.Stage) int {
	r := d.RecruiterDemand[stage]
	h := d.HMDemand[stage]
	if h > r {
		return h
	}
	return r
}

// ComputeGlobalDemand counts active candidates per canonical stage across all
// open requisitions owned by the selected recruiter and/or hiring manager.
func ComputeGlobalDemand(owners Owners, data Dataset) GlobalDemand {
	recruiterReqs := requisitionsOwnedBy(data, owners.RecruiterID, RoleRecruiter)
	hmReqs := requisitionsOwnedBy(data, owners.HiringManagerID, RoleHiringManager)

	demand := GlobalDemand{
		RecruiterDemand: make(map[forecast.Stage]int),
		HMDemand:        make(map[forecast.Stage]int),
	}
	for _, c := range data.Candidates {
		if !c.Active || c.Stage.Terminal() {
			continue
		}
		if _, err := forecast.ParseStage(string(c.Stage)); err != nil {
			continue
		}
		if recruiterReqs[c.RequisitionID] {
			demand.RecruiterDemand[c.Stage]++
		}
		if hmReqs[c.RequisitionID] {
			demand.HMDemand[c.Stage]++
		}
	}
	return demand
}

// RequisitionDemand counts the selected requisition's own active candidates
// per stage, for the legacy single-requisition penalty variant.
func RequisitionDemand(reqID string, data Dataset) map[forecast.Stage]int {
	counts := make(map[forecast.Stage]int)
	for _, c := range data.Candidates {
		if c.RequisitionID != reqID || !c.Active || c.Stage.Terminal() {
			continue
		}
		if _, err := forecast.ParseStage(string(c.Stage)); err != nil {
			continue
		}
		counts[c.Stage]++
	}
	return counts
}
