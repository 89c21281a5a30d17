package coach

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/burinious/burinious-weight-coach/internal/sqlite"
)

// sqliteLogRepository stores daily log entries keyed by date.
type sqliteLogRepository struct {
	baseRepository
}

func newSQLiteLogRepository(db *sqlite.Database, logger *slog.Logger) *sqliteLogRepository {
	return &sqliteLogRepository{
		baseRepository: newBaseRepository(db, logger),
	}
}

// List retrieves all daily logs keyed by normalized date. Rows with
// unreadable dates are skipped so one bad row cannot take down the store.
func (r *sqliteLogRepository) List(ctx context.Context) (map[time.Time]LogEntry, error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT log_date, calories, protein, water, steps, workout_mins
		FROM daily_logs`)
	if err != nil {
		return nil, fmt.Errorf("query daily logs: %w", err)
	}
	defer rows.Close()

	logs := make(map[time.Time]LogEntry)
	for rows.Next() {
		var (
			dateStr string
			entry   LogEntry
		)
		if err = rows.Scan(&dateStr, &entry.Calories, &entry.Protein, &entry.Water,
			&entry.Steps, &entry.WorkoutMins); err != nil {
			return nil, fmt.Errorf("scan daily log row: %w", err)
		}
		date, err := parseDate(dateStr)
		if err != nil {
			r.logger.LogAttrs(ctx, slog.LevelWarn, "skipping daily log with unreadable date",
				slog.String("log_date", dateStr))
			continue
		}
		logs[date] = entry
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate daily log rows: %w", err)
	}
	return logs, nil
}

// Upsert merges the patch into the entry stored for date. Metrics present in
// the patch overwrite the stored ones, absent metrics are preserved.
func (r *sqliteLogRepository) Upsert(ctx context.Context, date time.Time, patch LogEntry) error {
	_, err := r.db.ReadWrite.ExecContext(ctx, `
		INSERT INTO daily_logs (log_date, calories, protein, water, steps, workout_mins)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (log_date) DO UPDATE SET
			calories = COALESCE(excluded.calories, daily_logs.calories),
			protein = COALESCE(excluded.protein, daily_logs.protein),
			water = COALESCE(excluded.water, daily_logs.water),
			steps = COALESCE(excluded.steps, daily_logs.steps),
			workout_mins = COALESCE(excluded.workout_mins, daily_logs.workout_mins)`,
		formatDate(date),
		patch.Calories,
		patch.Protein,
		patch.Water,
		patch.Steps,
		patch.WorkoutMins,
	)
	if err != nil {
		return fmt.Errorf("upsert daily log: %w", err)
	}
	return nil
}

// Replace overwrites the whole log collection inside one transaction.
func (r *sqliteLogRepository) Replace(ctx context.Context, logs map[time.Time]LogEntry) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM daily_logs`); err != nil {
			return fmt.Errorf("clear daily logs: %w", err)
		}
		for date, entry := range logs {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO daily_logs (log_date, calories, protein, water, steps, workout_mins)
				VALUES (?, ?, ?, ?, ?, ?)`,
				formatDate(date),
				entry.Calories, entry.Protein, entry.Water, entry.Steps, entry.WorkoutMins,
			)
			if err != nil {
				return fmt.Errorf("insert daily log %s: %w", formatDate(date), err)
			}
		}
		return nil
	})
}

// DeleteAll removes every daily log.
func (r *sqliteLogRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ReadWrite.ExecContext(ctx, `DELETE FROM daily_logs`); err != nil {
		return fmt.Errorf("delete daily logs: %w", err)
	}
	return nil
}
