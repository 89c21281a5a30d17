package coach_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/burinious/burinious-weight-coach/internal/coach"
	"github.com/burinious/burinious-weight-coach/internal/ptr"
	"github.com/burinious/burinious-weight-coach/internal/sqlite"
	"github.com/google/go-cmp/cmp"
)

func newTestService(t *testing.T) (*coach.Service, context.Context) {
	t.Helper()
	ctx := t.Context()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	db, err := sqlite.NewDatabase(ctx, ":memory:", logger)
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Failed to close test database: %v", err)
		}
	})

	return coach.NewService(db, logger), ctx
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestService_SettingsDefaults(t *testing.T) {
	svc, ctx := newTestService(t)

	settings, started, err := svc.Settings(ctx)
	if err != nil {
		t.Fatalf("Failed to get settings: %v", err)
	}
	if started {
		t.Error("expected program not started on a fresh database")
	}
	if diff := cmp.Diff(coach.DefaultSettings(), settings); diff != "" {
		t.Errorf("settings mismatch (-want +got):\n%s", diff)
	}
}

func TestService_SaveSettings(t *testing.T) {
	svc, ctx := newTestService(t)

	updated, err := svc.SaveSettings(ctx, coach.SettingsPatch{
		DailyCalorieTarget: ptr.Ref(2000),
		GoalKg:             ptr.Ref(10.0),
	})
	if err != nil {
		t.Fatalf("Failed to save settings: %v", err)
	}
	if updated.DailyCalorieTarget != 2000 || updated.GoalKg != 10 {
		t.Errorf("expected patched values, got %+v", updated)
	}
	// Untouched fields keep their defaults.
	if updated.ProteinTarget != coach.DefaultSettings().ProteinTarget {
		t.Errorf("expected default protein target, got %d", updated.ProteinTarget)
	}

	// Out-of-range values are rejected without touching the store.
	if _, err = svc.SaveSettings(ctx, coach.SettingsPatch{ProgramDays: ptr.Ref(3)}); err == nil {
		t.Fatal("expected validation error for 3-day program")
	}
	settings, _, err := svc.Settings(ctx)
	if err != nil {
		t.Fatalf("Failed to get settings: %v", err)
	}
	if settings.ProgramDays != coach.DefaultSettings().ProgramDays {
		t.Errorf("expected program days unchanged after rejected save, got %d", settings.ProgramDays)
	}
}

func TestService_StartProgram(t *testing.T) {
	svc, ctx := newTestService(t)

	start := date(2026, 3, 2)
	if err := svc.StartProgram(ctx, &start); err != nil {
		t.Fatalf("Failed to start program: %v", err)
	}

	state, err := svc.State(ctx)
	if err != nil {
		t.Fatalf("Failed to load state: %v", err)
	}
	if !state.ProgramStarted {
		t.Error("expected program started")
	}
	if !state.Settings.StartDate.Equal(start) {
		t.Errorf("expected start date %s, got %s", start, state.Settings.StartDate)
	}
	if len(state.Plan) != state.Settings.ProgramDays {
		t.Errorf("expected %d plan entries, got %d", state.Settings.ProgramDays, len(state.Plan))
	}
	if !state.Plan[0].Date.Equal(start) {
		t.Errorf("expected plan to begin on start date, got %s", state.Plan[0].Date)
	}

	// Restarting without an explicit date reuses the stored start date.
	if err = svc.StartProgram(ctx, nil); err != nil {
		t.Fatalf("Failed to restart program: %v", err)
	}
	restarted, err := svc.State(ctx)
	if err != nil {
		t.Fatalf("Failed to load state: %v", err)
	}
	if !restarted.Settings.StartDate.Equal(start) {
		t.Errorf("expected start date preserved on restart, got %s", restarted.Settings.StartDate)
	}
	if len(restarted.Plan) != len(state.Plan) {
		t.Errorf("expected plan length unchanged on restart, got %d", len(restarted.Plan))
	}
}

func TestService_SaveSettingsRegeneratesPlanWhenStarted(t *testing.T) {
	svc, ctx := newTestService(t)

	start := date(2026, 3, 2)
	if err := svc.StartProgram(ctx, &start); err != nil {
		t.Fatalf("Failed to start program: %v", err)
	}

	if _, err := svc.SaveSettings(ctx, coach.SettingsPatch{ProgramDays: ptr.Ref(30)}); err != nil {
		t.Fatalf("Failed to save settings: %v", err)
	}

	state, err := svc.State(ctx)
	if err != nil {
		t.Fatalf("Failed to load state: %v", err)
	}
	if len(state.Plan) != 30 {
		t.Errorf("expected plan regenerated to 30 days, got %d", len(state.Plan))
	}
	if !state.Plan[0].Date.Equal(start) {
		t.Errorf("expected regenerated plan to keep the start date, got %s", state.Plan[0].Date)
	}
}

func TestService_LogDayMerges(t *testing.T) {
	svc, ctx := newTestService(t)
	day := date(2026, 3, 5)

	// Morning: calories and protein.
	err := svc.LogDay(ctx, day, coach.LogEntry{
		Calories: ptr.Ref(1700),
		Protein:  ptr.Ref(120),
	})
	if err != nil {
		t.Fatalf("Failed to log morning entry: %v", err)
	}

	// Evening: steps, plus a calorie correction.
	err = svc.LogDay(ctx, day, coach.LogEntry{
		Calories: ptr.Ref(1850),
		Steps:    ptr.Ref(11000),
	})
	if err != nil {
		t.Fatalf("Failed to log evening entry: %v", err)
	}

	state, err := svc.State(ctx)
	if err != nil {
		t.Fatalf("Failed to load state: %v", err)
	}
	entry, ok := state.Logs[day]
	if !ok {
		t.Fatal("expected a log entry for the day")
	}

	want := coach.LogEntry{
		Calories: ptr.Ref(1850), // corrected
		Protein:  ptr.Ref(120),  // preserved from the morning
		Steps:    ptr.Ref(11000),
	}
	if diff := cmp.Diff(want, entry); diff != "" {
		t.Errorf("log entry mismatch (-want +got):\n%s", diff)
	}
}

func TestService_LogDayValidation(t *testing.T) {
	svc, ctx := newTestService(t)
	day := date(2026, 3, 5)

	if err := svc.LogDay(ctx, day, coach.LogEntry{}); err == nil {
		t.Error("expected error for empty log entry")
	}
	if err := svc.LogDay(ctx, day, coach.LogEntry{Calories: ptr.Ref(-100)}); err == nil {
		t.Error("expected error for negative calories")
	}
	if err := svc.LogDay(ctx, day, coach.LogEntry{Steps: ptr.Ref(2000000)}); err == nil {
		t.Error("expected error for absurd step count")
	}
}

func TestService_SubmitDayIsAllOrNothing(t *testing.T) {
	svc, ctx := newTestService(t)
	day := date(2026, 3, 5)

	// One invalid value rejects the whole submission.
	err := svc.SubmitDay(ctx, day, coach.LogEntry{Calories: ptr.Ref(1600)}, ptr.Ref(1000.0))
	if err == nil {
		t.Fatal("expected error for out-of-range weight")
	}
	if !errors.Is(err, coach.ErrValidation) {
		t.Errorf("expected a validation error, got %v", err)
	}

	state, err := svc.State(ctx)
	if err != nil {
		t.Fatalf("Failed to load state: %v", err)
	}
	if len(state.Logs) != 0 || len(state.Weights) != 0 {
		t.Errorf("expected no stored state after a rejected submission, got %d logs and %d weigh-ins",
			len(state.Logs), len(state.Weights))
	}

	if err = svc.SubmitDay(ctx, day, coach.LogEntry{Calories: ptr.Ref(1600)}, ptr.Ref(94.0)); err != nil {
		t.Fatalf("Failed to submit valid day: %v", err)
	}
	if state, err = svc.State(ctx); err != nil {
		t.Fatalf("Failed to load state: %v", err)
	}
	if len(state.Logs) != 1 || len(state.Weights) != 1 {
		t.Errorf("expected the valid submission stored, got %d logs and %d weigh-ins",
			len(state.Logs), len(state.Weights))
	}
}

func TestService_AddWeightReplaces(t *testing.T) {
	svc, ctx := newTestService(t)
	day := date(2026, 3, 5)

	if err := svc.AddWeight(ctx, day, 95.0); err != nil {
		t.Fatalf("Failed to add weight: %v", err)
	}
	// Second weigh-in on the same date is a correction.
	if err := svc.AddWeight(ctx, day, 94.6); err != nil {
		t.Fatalf("Failed to correct weight: %v", err)
	}

	state, err := svc.State(ctx)
	if err != nil {
		t.Fatalf("Failed to load state: %v", err)
	}
	if len(state.Weights) != 1 {
		t.Fatalf("expected 1 weigh-in, got %d", len(state.Weights))
	}
	if state.Weights[0].Kg != 94.6 {
		t.Errorf("expected corrected value 94.6, got %v", state.Weights[0].Kg)
	}

	if err = svc.AddWeight(ctx, day, 10); err == nil {
		t.Error("expected error for weight below range")
	}
}

func TestService_UpdatePlanNotes(t *testing.T) {
	svc, ctx := newTestService(t)

	start := date(2026, 3, 2)
	if err := svc.StartProgram(ctx, &start); err != nil {
		t.Fatalf("Failed to start program: %v", err)
	}

	if err := svc.UpdatePlanNotes(ctx, start, "Felt strong, **new PR** on push-ups."); err != nil {
		t.Fatalf("Failed to update notes: %v", err)
	}

	state, err := svc.State(ctx)
	if err != nil {
		t.Fatalf("Failed to load state: %v", err)
	}
	if state.Plan[0].Notes != "Felt strong, **new PR** on push-ups." {
		t.Errorf("expected saved notes, got %q", state.Plan[0].Notes)
	}

	// Notes on a date outside the plan are rejected.
	err = svc.UpdatePlanNotes(ctx, date(2030, 1, 1), "nope")
	if err == nil {
		t.Error("expected error for a date outside the plan")
	}
}

func TestService_ResetAll(t *testing.T) {
	svc, ctx := newTestService(t)

	start := date(2026, 3, 2)
	if err := svc.StartProgram(ctx, &start); err != nil {
		t.Fatalf("Failed to start program: %v", err)
	}
	if err := svc.LogDay(ctx, start, coach.LogEntry{Calories: ptr.Ref(1800)}); err != nil {
		t.Fatalf("Failed to log day: %v", err)
	}
	if err := svc.AddWeight(ctx, start, 95); err != nil {
		t.Fatalf("Failed to add weight: %v", err)
	}

	if err := svc.ResetAll(ctx); err != nil {
		t.Fatalf("Failed to reset: %v", err)
	}

	state, err := svc.State(ctx)
	if err != nil {
		t.Fatalf("Failed to load state: %v", err)
	}
	if state.ProgramStarted {
		t.Error("expected program not started after reset")
	}
	if len(state.Logs) != 0 || len(state.Weights) != 0 || len(state.Plan) != 0 {
		t.Errorf("expected empty collections after reset, got %d logs, %d weights, %d plan entries",
			len(state.Logs), len(state.Weights), len(state.Plan))
	}
	if diff := cmp.Diff(coach.DefaultSettings(), state.Settings); diff != "" {
		t.Errorf("settings mismatch after reset (-want +got):\n%s", diff)
	}
}

func TestService_ExportImportRoundTrip(t *testing.T) {
	svc, ctx := newTestService(t)

	start := date(2026, 3, 2)
	if err := svc.StartProgram(ctx, &start); err != nil {
		t.Fatalf("Failed to start program: %v", err)
	}
	if err := svc.LogDay(ctx, start, coach.LogEntry{Calories: ptr.Ref(1800), Protein: ptr.Ref(130)}); err != nil {
		t.Fatalf("Failed to log day: %v", err)
	}
	if err := svc.AddWeight(ctx, start, 95); err != nil {
		t.Fatalf("Failed to add weight: %v", err)
	}

	snapshot, err := svc.ExportSnapshot(ctx)
	if err != nil {
		t.Fatalf("Failed to export: %v", err)
	}
	original, err := svc.State(ctx)
	if err != nil {
		t.Fatalf("Failed to load state: %v", err)
	}

	// Wipe and restore from the snapshot.
	if err = svc.ResetAll(ctx); err != nil {
		t.Fatalf("Failed to reset: %v", err)
	}
	if err = svc.ImportSnapshot(ctx, snapshot); err != nil {
		t.Fatalf("Failed to import: %v", err)
	}

	restored, err := svc.State(ctx)
	if err != nil {
		t.Fatalf("Failed to load state: %v", err)
	}
	if diff := cmp.Diff(original, restored); diff != "" {
		t.Errorf("state mismatch after import (-want +got):\n%s", diff)
	}
}

func TestService_ImportReseedsMissingPlan(t *testing.T) {
	svc, ctx := newTestService(t)

	start := date(2026, 3, 2)
	if err := svc.StartProgram(ctx, &start); err != nil {
		t.Fatalf("Failed to start program: %v", err)
	}

	// Simulate a lost plan by importing a snapshot without one.
	snapshot, err := svc.ExportSnapshot(ctx)
	if err != nil {
		t.Fatalf("Failed to export: %v", err)
	}
	snapshot.Plan = nil
	if err = svc.ImportSnapshot(ctx, snapshot); err != nil {
		t.Fatalf("Failed to import: %v", err)
	}

	state, err := svc.State(ctx)
	if err != nil {
		t.Fatalf("Failed to load state: %v", err)
	}
	if len(state.Plan) != state.Settings.ProgramDays {
		t.Errorf("expected plan reseeded to %d days, got %d",
			state.Settings.ProgramDays, len(state.Plan))
	}
	if !state.Plan[0].Date.Equal(start) {
		t.Errorf("expected reseeded plan to keep the start date, got %s", state.Plan[0].Date)
	}
}
