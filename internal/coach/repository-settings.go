package coach

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/burinious/burinious-weight-coach/internal/errors"
	"github.com/burinious/burinious-weight-coach/internal/sqlite"
)

// sqliteSettingsRepository stores the single program settings row.
type sqliteSettingsRepository struct {
	baseRepository
}

func newSQLiteSettingsRepository(db *sqlite.Database, logger *slog.Logger) *sqliteSettingsRepository {
	return &sqliteSettingsRepository{
		baseRepository: newBaseRepository(db, logger),
	}
}

// Get retrieves the program settings and the started flag. A missing row
// yields the defaults with the program not started.
func (r *sqliteSettingsRepository) Get(ctx context.Context) (Settings, bool, error) {
	var (
		settings     Settings
		startDateStr string
		started      bool
	)
	err := r.db.ReadOnly.QueryRowContext(ctx, `
		SELECT start_date, program_days, daily_calorie_target, protein_target,
		       step_target, water_target, goal_kg, program_started
		FROM program_settings
		WHERE id = 1`).Scan(
		&startDateStr,
		&settings.ProgramDays,
		&settings.DailyCalorieTarget,
		&settings.ProteinTarget,
		&settings.StepTarget,
		&settings.WaterTarget,
		&settings.GoalKg,
		&started,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return DefaultSettings(), false, nil
	}
	if err != nil {
		return Settings{}, false, fmt.Errorf("query program settings: %w", err)
	}

	if startDateStr != "" {
		settings.StartDate, err = parseDate(startDateStr)
		if err != nil {
			// An unreadable start date degrades to unset rather than
			// making the whole program unreachable.
			r.logger.LogAttrs(ctx, slog.LevelWarn, "discarding unparseable start date",
				slog.String("start_date", startDateStr))
			settings.StartDate = time.Time{}
		}
	}

	return settings, started, nil
}

// Set upserts the program settings row.
func (r *sqliteSettingsRepository) Set(ctx context.Context, settings Settings, started bool) error {
	startDateStr := ""
	if !settings.StartDate.IsZero() {
		startDateStr = formatDate(settings.StartDate)
	}

	_, err := r.db.ReadWrite.ExecContext(ctx, `
		INSERT INTO program_settings (
			id, start_date, program_days, daily_calorie_target, protein_target,
			step_target, water_target, goal_kg, program_started
		) VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			start_date = excluded.start_date,
			program_days = excluded.program_days,
			daily_calorie_target = excluded.daily_calorie_target,
			protein_target = excluded.protein_target,
			step_target = excluded.step_target,
			water_target = excluded.water_target,
			goal_kg = excluded.goal_kg,
			program_started = excluded.program_started`,
		startDateStr,
		settings.ProgramDays,
		settings.DailyCalorieTarget,
		settings.ProteinTarget,
		settings.StepTarget,
		settings.WaterTarget,
		settings.GoalKg,
		started,
	)
	if err != nil {
		return fmt.Errorf("save program settings: %w", err)
	}
	return nil
}
