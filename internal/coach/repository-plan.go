package coach

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/burinious/burinious-weight-coach/internal/sqlite"
)

// sqlitePlanRepository stores the generated program plan.
type sqlitePlanRepository struct {
	baseRepository
}

func newSQLitePlanRepository(db *sqlite.Database, logger *slog.Logger) *sqlitePlanRepository {
	return &sqlitePlanRepository{
		baseRepository: newBaseRepository(db, logger),
	}
}

// List retrieves the plan ordered by date.
func (r *sqlitePlanRepository) List(ctx context.Context) ([]PlanEntry, error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT entry_date, focus, workout, notes
		FROM plan_entries
		ORDER BY entry_date`)
	if err != nil {
		return nil, fmt.Errorf("query plan entries: %w", err)
	}
	defer rows.Close()

	var plan []PlanEntry
	for rows.Next() {
		var (
			dateStr string
			entry   PlanEntry
		)
		if err = rows.Scan(&dateStr, &entry.Focus, &entry.Workout, &entry.Notes); err != nil {
			return nil, fmt.Errorf("scan plan entry row: %w", err)
		}
		date, err := parseDate(dateStr)
		if err != nil {
			r.logger.LogAttrs(ctx, slog.LevelWarn, "skipping plan entry with unreadable date",
				slog.String("entry_date", dateStr))
			continue
		}
		entry.Date = date
		plan = append(plan, entry)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate plan entry rows: %w", err)
	}
	return plan, nil
}

// UpdateNotes replaces the free-form notes for one plan day.
func (r *sqlitePlanRepository) UpdateNotes(ctx context.Context, date time.Time, notes string) error {
	result, err := r.db.ReadWrite.ExecContext(ctx, `
		UPDATE plan_entries
		SET notes = ?
		WHERE entry_date = ?`, notes, formatDate(date))
	if err != nil {
		return fmt.Errorf("update plan notes: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// Replace swaps in a freshly generated plan inside one transaction. Starting
// or restarting a program must never leave a half-written plan behind.
func (r *sqlitePlanRepository) Replace(ctx context.Context, plan []PlanEntry) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM plan_entries`); err != nil {
			return fmt.Errorf("clear plan entries: %w", err)
		}
		for i, entry := range plan {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO plan_entries (entry_date, day_index, focus, workout, notes)
				VALUES (?, ?, ?, ?, ?)`,
				formatDate(entry.Date), i, entry.Focus, entry.Workout, entry.Notes,
			)
			if err != nil {
				return fmt.Errorf("insert plan entry %s: %w", formatDate(entry.Date), err)
			}
		}
		return nil
	})
}

// DeleteAll removes the whole plan.
func (r *sqlitePlanRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ReadWrite.ExecContext(ctx, `DELETE FROM plan_entries`); err != nil {
		return fmt.Errorf("delete plan entries: %w", err)
	}
	return nil
}
