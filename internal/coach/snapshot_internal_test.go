package coach

import (
	"testing"
	"time"

	"github.com/burinious/burinious-weight-coach/internal/ptr"
	"github.com/google/go-cmp/cmp"
)

func TestExportNormalize_RoundTrip(t *testing.T) {
	settings := DefaultSettings()
	settings.StartDate = date(2026, 3, 1)
	settings.GoalKg = 12

	state := ProgramState{
		Settings: settings,
		Logs: map[time.Time]LogEntry{
			date(2026, 3, 1): {Calories: ptr.Ref(1750), Protein: ptr.Ref(135)},
			date(2026, 3, 2): {Steps: ptr.Ref(10500)},
		},
		Weights: []WeightEntry{
			{Date: date(2026, 3, 1), Kg: 95},
			{Date: date(2026, 3, 8), Kg: 94.2},
		},
		Plan:           GeneratePlan(date(2026, 3, 1), 90),
		ProgramStarted: true,
	}

	restored := Normalize(Export(state))

	if diff := cmp.Diff(state.Settings, restored.Settings); diff != "" {
		t.Errorf("settings mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(state.Logs, restored.Logs); diff != "" {
		t.Errorf("logs mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(state.Weights, restored.Weights); diff != "" {
		t.Errorf("weights mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(state.Plan, restored.Plan); diff != "" {
		t.Errorf("plan mismatch (-want +got):\n%s", diff)
	}
	if !restored.ProgramStarted {
		t.Error("expected started flag to survive the round trip")
	}
}

func TestNormalize_RepairsDamage(t *testing.T) {
	t.Run("empty snapshot yields defaults", func(t *testing.T) {
		state := Normalize(Snapshot{})
		if diff := cmp.Diff(DefaultSettings(), state.Settings); diff != "" {
			t.Errorf("settings mismatch (-want +got):\n%s", diff)
		}
		if state.ProgramStarted {
			t.Error("expected program not started")
		}
		if len(state.Plan) != 0 {
			t.Errorf("expected no plan, got %d entries", len(state.Plan))
		}
	})

	t.Run("out of range settings fall back field by field", func(t *testing.T) {
		state := Normalize(Snapshot{
			Settings: SnapshotSettings{
				ProgramDays:        5,    // below minimum
				DailyCalorieTarget: 2200, // valid
				ProteinTarget:      9999, // above maximum
				StepTarget:         12000,
				WaterTarget:        2500,
				GoalKg:             -3, // invalid
			},
		})
		defaults := DefaultSettings()
		if state.Settings.ProgramDays != defaults.ProgramDays {
			t.Errorf("expected default program days, got %d", state.Settings.ProgramDays)
		}
		if state.Settings.DailyCalorieTarget != 2200 {
			t.Errorf("expected valid calorie target kept, got %d", state.Settings.DailyCalorieTarget)
		}
		if state.Settings.ProteinTarget != defaults.ProteinTarget {
			t.Errorf("expected default protein target, got %d", state.Settings.ProteinTarget)
		}
		if state.Settings.GoalKg != defaults.GoalKg {
			t.Errorf("expected default goal, got %v", state.Settings.GoalKg)
		}
	})

	t.Run("unparseable dates are dropped", func(t *testing.T) {
		state := Normalize(Snapshot{
			Logs: map[string]SnapshotLog{
				"2026-03-01":  {Calories: ptr.Ref(1800)},
				"not-a-date":  {Calories: ptr.Ref(1700)},
				"03/02/2026":  {Calories: ptr.Ref(1600)},
			},
			Weights: []SnapshotWeight{
				{Date: "2026-03-01", Kg: 95},
				{Date: "yesterday", Kg: 94},
			},
		})
		if len(state.Logs) != 1 {
			t.Errorf("expected 1 surviving log, got %d", len(state.Logs))
		}
		if len(state.Weights) != 1 {
			t.Errorf("expected 1 surviving weight, got %d", len(state.Weights))
		}
	})

	t.Run("out of range weights are dropped", func(t *testing.T) {
		state := Normalize(Snapshot{
			Weights: []SnapshotWeight{
				{Date: "2026-03-01", Kg: 95},
				{Date: "2026-03-02", Kg: 5},
				{Date: "2026-03-03", Kg: 700},
			},
		})
		if len(state.Weights) != 1 {
			t.Errorf("expected 1 surviving weight, got %d", len(state.Weights))
		}
	})

	t.Run("duplicate weight dates keep the last value", func(t *testing.T) {
		state := Normalize(Snapshot{
			Weights: []SnapshotWeight{
				{Date: "2026-03-01", Kg: 95},
				{Date: "2026-03-01", Kg: 94.5},
			},
		})
		if len(state.Weights) != 1 {
			t.Fatalf("expected 1 weight after dedupe, got %d", len(state.Weights))
		}
		if state.Weights[0].Kg != 94.5 {
			t.Errorf("expected last value 94.5, got %v", state.Weights[0].Kg)
		}
	})

	t.Run("started program with missing plan is reseeded", func(t *testing.T) {
		state := Normalize(Snapshot{
			Settings: SnapshotSettings{StartDate: "2026-03-01", ProgramDays: 30},
			Started:  ptr.Ref(true),
		})
		if len(state.Plan) != 30 {
			t.Fatalf("expected reseeded 30-day plan, got %d entries", len(state.Plan))
		}
		if !state.Plan[0].Date.Equal(date(2026, 3, 1)) {
			t.Errorf("expected plan to start on the stored start date, got %s", state.Plan[0].Date)
		}
	})

	t.Run("explicit not-started clears a leftover plan", func(t *testing.T) {
		state := Normalize(Snapshot{
			Started: ptr.Ref(false),
			Plan: []SnapshotPlanEntry{
				{Date: "2026-03-01", Focus: "Upper Strength", Workout: "Push-ups"},
			},
		})
		if state.ProgramStarted {
			t.Error("expected an explicit false flag to keep the program not started")
		}
		if len(state.Plan) != 0 {
			t.Errorf("expected the leftover plan to be cleared, got %d entries", len(state.Plan))
		}
	})

	t.Run("plan presence implies started and recovers start date", func(t *testing.T) {
		state := Normalize(Snapshot{
			Plan: []SnapshotPlanEntry{
				{Date: "2026-03-02", Focus: "Cardio 30-45m", Workout: "Brisk walk"},
				{Date: "2026-03-01", Focus: "Upper Strength", Workout: "Push-ups"},
			},
		})
		if !state.ProgramStarted {
			t.Error("expected plan presence to imply a started program")
		}
		if !state.Settings.StartDate.Equal(date(2026, 3, 1)) {
			t.Errorf("expected start date recovered from earliest plan entry, got %s",
				state.Settings.StartDate)
		}
	})

	t.Run("empty log entries are dropped", func(t *testing.T) {
		state := Normalize(Snapshot{
			Logs: map[string]SnapshotLog{
				"2026-03-01": {},
			},
		})
		if len(state.Logs) != 0 {
			t.Errorf("expected empty entry dropped, got %d logs", len(state.Logs))
		}
	})
}
