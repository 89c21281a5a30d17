package coach

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/burinious/burinious-weight-coach/internal/sqlite"
)

// sqliteWeightRepository stores weigh-ins keyed by date.
type sqliteWeightRepository struct {
	baseRepository
}

func newSQLiteWeightRepository(db *sqlite.Database, logger *slog.Logger) *sqliteWeightRepository {
	return &sqliteWeightRepository{
		baseRepository: newBaseRepository(db, logger),
	}
}

// List retrieves all weigh-ins ordered by date.
func (r *sqliteWeightRepository) List(ctx context.Context) ([]WeightEntry, error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT entry_date, kg
		FROM weight_entries
		ORDER BY entry_date`)
	if err != nil {
		return nil, fmt.Errorf("query weight entries: %w", err)
	}
	defer rows.Close()

	var weights []WeightEntry
	for rows.Next() {
		var (
			dateStr string
			kg      float64
		)
		if err = rows.Scan(&dateStr, &kg); err != nil {
			return nil, fmt.Errorf("scan weight entry row: %w", err)
		}
		date, err := parseDate(dateStr)
		if err != nil {
			r.logger.LogAttrs(ctx, slog.LevelWarn, "skipping weight entry with unreadable date",
				slog.String("entry_date", dateStr))
			continue
		}
		weights = append(weights, WeightEntry{Date: date, Kg: kg})
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate weight entry rows: %w", err)
	}
	return weights, nil
}

// Set records a weigh-in, replacing any earlier value for the same date. A
// second weigh-in on one day is a correction, not an addition.
func (r *sqliteWeightRepository) Set(ctx context.Context, entry WeightEntry) error {
	_, err := r.db.ReadWrite.ExecContext(ctx, `
		INSERT INTO weight_entries (entry_date, kg)
		VALUES (?, ?)
		ON CONFLICT (entry_date) DO UPDATE SET
			kg = excluded.kg`,
		formatDate(entry.Date), entry.Kg,
	)
	if err != nil {
		return fmt.Errorf("save weight entry: %w", err)
	}
	return nil
}

// Replace overwrites the whole weigh-in collection inside one transaction.
func (r *sqliteWeightRepository) Replace(ctx context.Context, weights []WeightEntry) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM weight_entries`); err != nil {
			return fmt.Errorf("clear weight entries: %w", err)
		}
		for _, entry := range weights {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO weight_entries (entry_date, kg)
				VALUES (?, ?)
				ON CONFLICT (entry_date) DO UPDATE SET
					kg = excluded.kg`,
				formatDate(entry.Date), entry.Kg,
			)
			if err != nil {
				return fmt.Errorf("insert weight entry %s: %w", formatDate(entry.Date), err)
			}
		}
		return nil
	})
}

// DeleteAll removes every weigh-in.
func (r *sqliteWeightRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ReadWrite.ExecContext(ctx, `DELETE FROM weight_entries`); err != nil {
		return fmt.Errorf("delete weight entries: %w", err)
	}
	return nil
}
