package coach

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/burinious/burinious-weight-coach/internal/sqlite"
)

// Service handles the business logic for the weight-loss program.
type Service struct {
	repo   *repository
	logger *slog.Logger
	// now is swappable so tests can pin the current date.
	now func() time.Time
}

// NewService creates a new coaching service.
func NewService(db *sqlite.Database, logger *slog.Logger) *Service {
	factory := newRepositoryFactory(db, logger)
	return &Service{
		repo:   factory.newRepository(),
		logger: logger,
		now:    time.Now,
	}
}

// today returns the current date normalized to midnight UTC.
func (s *Service) today() time.Time {
	return normalizeDate(s.now())
}

// Settings retrieves the program settings and whether the program has started.
func (s *Service) Settings(ctx context.Context) (Settings, bool, error) {
	settings, started, err := s.repo.settings.Get(ctx)
	if err != nil {
		return Settings{}, false, fmt.Errorf("get settings: %w", err)
	}
	return settings, started, nil
}

// SaveSettings applies the patch to the stored settings. When the program has
// already started the plan is regenerated from the existing start date so its
// length tracks the new program duration. Targets apply from now on, past
// logs are never rewritten.
func (s *Service) SaveSettings(ctx context.Context, patch SettingsPatch) (Settings, error) {
	settings, started, err := s.repo.settings.Get(ctx)
	if err != nil {
		return Settings{}, fmt.Errorf("get settings: %w", err)
	}

	updated := patch.apply(settings)
	if err = updated.Validate(); err != nil {
		return Settings{}, fmt.Errorf("validate settings: %w", err)
	}

	if err = s.repo.settings.Set(ctx, updated, started); err != nil {
		return Settings{}, fmt.Errorf("save settings: %w", err)
	}

	if started && !updated.StartDate.IsZero() {
		plan := GeneratePlan(updated.StartDate, updated.ProgramDays)
		if err = s.repo.plan.Replace(ctx, plan); err != nil {
			return Settings{}, fmt.Errorf("regenerate plan: %w", err)
		}
	}

	return updated, nil
}

// StartProgram starts (or restarts) the program and generates a fresh plan.
// The start date resolves from the argument first, then the stored settings,
// then today. Restarting is idempotent apart from regenerating the plan.
func (s *Service) StartProgram(ctx context.Context, start *time.Time) error {
	settings, _, err := s.repo.settings.Get(ctx)
	if err != nil {
		return fmt.Errorf("get settings: %w", err)
	}

	startDate := s.today()
	switch {
	case start != nil && !start.IsZero():
		startDate = normalizeDate(*start)
	case !settings.StartDate.IsZero():
		startDate = settings.StartDate
	}

	settings.StartDate = startDate
	if err = settings.Validate(); err != nil {
		return fmt.Errorf("validate settings: %w", err)
	}

	plan := GeneratePlan(startDate, settings.ProgramDays)
	if err = s.repo.plan.Replace(ctx, plan); err != nil {
		return fmt.Errorf("replace plan: %w", err)
	}
	if err = s.repo.settings.Set(ctx, settings, true); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}

	s.logger.LogAttrs(ctx, slog.LevelInfo, "program started",
		slog.String("start_date", formatDate(startDate)),
		slog.Int("program_days", settings.ProgramDays))
	return nil
}

// LogDay merges the patch into the log entry for date. A zero date means
// today. Metrics present in the patch overwrite stored values, absent metrics
// survive, so logging calories at noon and steps at night accumulates.
func (s *Service) LogDay(ctx context.Context, date time.Time, patch LogEntry) error {
	if patch.IsEmpty() {
		return validationErrorf("log entry needs at least one metric")
	}
	if err := patch.validate(); err != nil {
		return fmt.Errorf("validate log entry: %w", err)
	}

	if date.IsZero() {
		date = s.today()
	}
	if err := s.repo.logs.Upsert(ctx, normalizeDate(date), patch); err != nil {
		return fmt.Errorf("upsert daily log %s: %w", formatDate(date), err)
	}
	return nil
}

// AddWeight records a weigh-in for date, replacing any earlier weigh-in on
// the same date. A zero date means today.
func (s *Service) AddWeight(ctx context.Context, date time.Time, kg float64) error {
	if kg < MinWeightKg || kg > MaxWeightKg {
		return validationErrorf("weight %.1f kg outside %v-%v kg", kg, MinWeightKg, MaxWeightKg)
	}
	if date.IsZero() {
		date = s.today()
	}
	entry := WeightEntry{Date: normalizeDate(date), Kg: kg}
	if err := s.repo.weights.Set(ctx, entry); err != nil {
		return fmt.Errorf("save weight %s: %w", formatDate(entry.Date), err)
	}
	return nil
}

// SubmitDay records a day's metrics and optional weigh-in. Every value is
// validated before either write, so a rejected submission leaves stored
// state untouched.
func (s *Service) SubmitDay(ctx context.Context, date time.Time, patch LogEntry, weightKg *float64) error {
	if patch.IsEmpty() && weightKg == nil {
		return validationErrorf("submission needs at least one value")
	}
	if err := patch.validate(); err != nil {
		return fmt.Errorf("validate log entry: %w", err)
	}
	if weightKg != nil && (*weightKg < MinWeightKg || *weightKg > MaxWeightKg) {
		return validationErrorf("weight %.1f kg outside %v-%v kg", *weightKg, MinWeightKg, MaxWeightKg)
	}

	if !patch.IsEmpty() {
		if err := s.LogDay(ctx, date, patch); err != nil {
			return err
		}
	}
	if weightKg != nil {
		if err := s.AddWeight(ctx, date, *weightKg); err != nil {
			return err
		}
	}
	return nil
}

// UpdatePlanNotes replaces the free-form notes on one plan day. Notes render
// as Markdown so this is the only user-authored rich text in the store.
func (s *Service) UpdatePlanNotes(ctx context.Context, date time.Time, notes string) error {
	if err := s.repo.plan.UpdateNotes(ctx, normalizeDate(date), notes); err != nil {
		return fmt.Errorf("update plan notes %s: %w", formatDate(date), err)
	}
	return nil
}

// State loads the full program state.
func (s *Service) State(ctx context.Context) (ProgramState, error) {
	settings, started, err := s.repo.settings.Get(ctx)
	if err != nil {
		return ProgramState{}, fmt.Errorf("get settings: %w", err)
	}
	logs, err := s.repo.logs.List(ctx)
	if err != nil {
		return ProgramState{}, fmt.Errorf("list logs: %w", err)
	}
	weights, err := s.repo.weights.List(ctx)
	if err != nil {
		return ProgramState{}, fmt.Errorf("list weights: %w", err)
	}
	plan, err := s.repo.plan.List(ctx)
	if err != nil {
		return ProgramState{}, fmt.Errorf("list plan: %w", err)
	}
	return ProgramState{
		Settings:       settings,
		Logs:           logs,
		Weights:        weights,
		Plan:           plan,
		ProgramStarted: started,
	}, nil
}

// Summary loads the state and derives the dashboard summary for today.
func (s *Service) Summary(ctx context.Context) (Summary, ProgramState, error) {
	state, err := s.State(ctx)
	if err != nil {
		return Summary{}, ProgramState{}, fmt.Errorf("load state: %w", err)
	}
	return Summarize(s.today(), state), state, nil
}

// ResetAll wipes the program back to defaults. Logs, weigh-ins, the plan, and
// the settings row all go.
func (s *Service) ResetAll(ctx context.Context) error {
	if err := s.repo.logs.DeleteAll(ctx); err != nil {
		return fmt.Errorf("reset logs: %w", err)
	}
	if err := s.repo.weights.DeleteAll(ctx); err != nil {
		return fmt.Errorf("reset weights: %w", err)
	}
	if err := s.repo.plan.DeleteAll(ctx); err != nil {
		return fmt.Errorf("reset plan: %w", err)
	}
	if err := s.repo.settings.Set(ctx, DefaultSettings(), false); err != nil {
		return fmt.Errorf("reset settings: %w", err)
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "program reset")
	return nil
}

// ExportSnapshot serialises the whole state into its portable form.
func (s *Service) ExportSnapshot(ctx context.Context) (Snapshot, error) {
	state, err := s.State(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load state: %w", err)
	}
	return Export(state), nil
}

// ImportSnapshot normalizes the snapshot and replaces the stored state with
// it. Damaged entries are repaired or dropped rather than rejected.
func (s *Service) ImportSnapshot(ctx context.Context, snapshot Snapshot) error {
	state := Normalize(snapshot)

	if err := s.repo.logs.Replace(ctx, state.Logs); err != nil {
		return fmt.Errorf("import logs: %w", err)
	}
	if err := s.repo.weights.Replace(ctx, state.Weights); err != nil {
		return fmt.Errorf("import weights: %w", err)
	}
	if err := s.repo.plan.Replace(ctx, state.Plan); err != nil {
		return fmt.Errorf("import plan: %w", err)
	}
	if err := s.repo.settings.Set(ctx, state.Settings, state.ProgramStarted); err != nil {
		return fmt.Errorf("import settings: %w", err)
	}

	s.logger.LogAttrs(ctx, slog.LevelInfo, "snapshot imported",
		slog.Int("logs", len(state.Logs)),
		slog.Int("weights", len(state.Weights)),
		slog.Int("plan_days", len(state.Plan)))
	return nil
}

// Heal repairs stored state on startup using the same rules as snapshot
// import. A started program with a missing plan gets reseeded and a missing
// start date is recovered from the plan.
func (s *Service) Heal(ctx context.Context) error {
	state, err := s.State(ctx)
	if err != nil {
		return fmt.Errorf("load state: %w", err)
	}

	healed := Normalize(Export(state))
	if healed.Settings == state.Settings &&
		healed.ProgramStarted == state.ProgramStarted &&
		len(healed.Plan) == len(state.Plan) {
		return nil
	}

	if err = s.repo.plan.Replace(ctx, healed.Plan); err != nil {
		return fmt.Errorf("heal plan: %w", err)
	}
	if err = s.repo.settings.Set(ctx, healed.Settings, healed.ProgramStarted); err != nil {
		return fmt.Errorf("heal settings: %w", err)
	}

	s.logger.LogAttrs(ctx, slog.LevelInfo, "repaired stored program state",
		slog.Int("plan_days", len(healed.Plan)),
		slog.Bool("started", healed.ProgramStarted))
	return nil
}
