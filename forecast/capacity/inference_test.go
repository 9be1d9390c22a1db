package capacity

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/fillcast/fillcast/forecast"
)

var windowEnd = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

// screenEvents builds n SCREEN events by actorID, spread across the lookback.
func screenEvents(actorID string, n int) []Event {
	events := make([]Event, 0, n)
	for i := 0; i < n; i++ {
		events = append(events, Event{
			ID:            "e" + string(rune('a'+i%26)),
			ActorID:       actorID,
			RequisitionID: "REQ-1",
			Stage:         forecast.StageScreen,
			OccurredAt:    windowEnd.AddDate(0, 0, -(i%80 + 1)),
		})
	}
	return events
}

func TestInferProfiles_WeeklyThroughput(t *testing.T) {
	window := LookbackWindow(windowEnd, 12)
	data := Dataset{Events: screenEvents("rec-1", 36)}

	profiles, err := InferProfiles(Owners{RecruiterID: "rec-1"}, window, data)
	if err != nil {
		t.Fatal(err)
	}
	if profiles.Recruiter == nil {
		t.Fatal("expected a recruiter profile")
	}
	got := profiles.Recruiter.Throughput(forecast.StageScreen)
	if math.Abs(got-3.0) > 0.001 {
		t.Errorf("SCREEN throughput = %v candidates/week, want 36/12 = 3.0", got)
	}
	if profiles.Recruiter.Confidence != forecast.ConfidenceHigh {
		t.Errorf("confidence = %s, want HIGH for 36 events", profiles.Recruiter.Confidence)
	}
	if profiles.HiringManager != nil {
		t.Error("no HM id supplied; HM profile should be nil")
	}
}

func TestInferProfiles_ConfidenceGrading(t *testing.T) {
	tests := []struct {
		events int
		want   forecast.ConfidenceLevel
	}{
		{36, forecast.ConfidenceHigh},
		{12, forecast.ConfidenceMedium},
		{4, forecast.ConfidenceLow},
	}
	for _, tt := range tests {
		window := LookbackWindow(windowEnd, 12)
		data := Dataset{Events: screenEvents("rec-1", tt.events)}
		profiles, err := InferProfiles(Owners{RecruiterID: "rec-1"}, window, data)
		if err != nil {
			t.Fatal(err)
		}
		if got := profiles.Recruiter.Confidence; got != tt.want {
			t.Errorf("%d events: confidence = %s, want %s", tt.events, got, tt.want)
		}
	}
}

func TestInferProfiles_AttributionByOwnedRequisition(t *testing.T) {
	// Events performed by a coordinator still count against the hiring
	// manager whose requisition they happened on.
	window := LookbackWindow(windowEnd, 12)
	data := Dataset{
		Events: []Event{
			{ID: "e1", ActorID: "coord-1", RequisitionID: "REQ-9", Stage: forecast.StageOnsite, OccurredAt: windowEnd.AddDate(0, 0, -3)},
		},
		Requisitions: []Requisition{
			{ID: "REQ-9", HiringManagerID: "hm-1", Open: true},
		},
	}

	profiles, err := InferProfiles(Owners{HiringManagerID: "hm-1"}, window, data)
	if err != nil {
		t.Fatal(err)
	}
	if profiles.HiringManager == nil {
		t.Fatal("expected an HM profile from owned-requisition attribution")
	}
	if profiles.HiringManager.EventCount != 1 {
		t.Errorf("EventCount = %d, want 1", profiles.HiringManager.EventCount)
	}
}

func TestInferProfiles_WindowExcludesOldEvents(t *testing.T) {
	window := LookbackWindow(windowEnd, 12)
	data := Dataset{Events: []Event{
		{ID: "old", ActorID: "rec-1", Stage: forecast.StageScreen, OccurredAt: windowEnd.AddDate(0, 0, -100)},
		{ID: "new", ActorID: "rec-1", Stage: forecast.StageScreen, OccurredAt: windowEnd.AddDate(0, 0, -5)},
	}}

	profiles, err := InferProfiles(Owners{RecruiterID: "rec-1"}, window, data)
	if err != nil {
		t.Fatal(err)
	}
	if profiles.Recruiter.EventCount != 1 {
		t.Errorf("EventCount = %d, want 1 (the 100-day-old event is outside the lookback)", profiles.Recruiter.EventCount)
	}
}

func TestInferProfiles_InsufficientData(t *testing.T) {
	window := LookbackWindow(windowEnd, 12)

	_, err := InferProfiles(Owners{}, window, Dataset{Events: screenEvents("rec-1", 5)})
	if !errors.Is(err, forecast.ErrInsufficientData) {
		t.Errorf("no owners: err=%v, want ErrInsufficientData", err)
	}

	_, err = InferProfiles(Owners{RecruiterID: "rec-1"}, window, Dataset{})
	if !errors.Is(err, forecast.ErrInsufficientData) {
		t.Errorf("no events: err=%v, want ErrInsufficientData", err)
	}

	_, err = InferProfiles(Owners{RecruiterID: "rec-1"}, window, Dataset{Events: screenEvents("someone-else", 5)})
	if !errors.Is(err, forecast.ErrInsufficientData) {
		t.Errorf("no attributable events: err=%v, want ErrInsufficientData", err)
	}
}

func TestLookbackWindow_Defaults(t *testing.T) {
	w := LookbackWindow(windowEnd, 0)
	if got := w.Weeks(); math.Abs(got-DefaultLookbackWeeks) > 0.001 {
		t.Errorf("Weeks() = %v, want %d", got, DefaultLookbackWeeks)
	}
	if !w.End.Equal(windowEnd) {
		t.Errorf("window should end at the forecast start date")
	}
}
