package coach

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/burinious/burinious-weight-coach/internal/errors"
	"github.com/burinious/burinious-weight-coach/internal/sqlite"
)

// baseRepository carries the database handles and logger shared by all
// entity repositories.
type baseRepository struct {
	db     *sqlite.Database
	logger *slog.Logger
}

func newBaseRepository(db *sqlite.Database, logger *slog.Logger) baseRepository {
	return baseRepository{
		db:     db,
		logger: logger,
	}
}

// withTx runs fn inside a read-write transaction and commits on success. The
// rollback in the deferred path is a no-op after a successful commit.
func (r baseRepository) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.ReadWrite.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func(tx *sql.Tx) {
		err = tx.Rollback()
		if err != nil && !errors.Is(err, sql.ErrTxDone) {
			r.logger.LogAttrs(ctx, slog.LevelError, "rollback transaction", slog.Any("error", err))
		}
	}(tx)

	if err = fn(tx); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// repository bundles the entity repositories behind one handle.
type repository struct {
	settings *sqliteSettingsRepository
	logs     *sqliteLogRepository
	weights  *sqliteWeightRepository
	plan     *sqlitePlanRepository
}

// repositoryFactory constructs the repository bundle.
type repositoryFactory struct {
	db     *sqlite.Database
	logger *slog.Logger
}

func newRepositoryFactory(db *sqlite.Database, logger *slog.Logger) repositoryFactory {
	return repositoryFactory{
		db:     db,
		logger: logger,
	}
}

func (f repositoryFactory) newRepository() *repository {
	return &repository{
		settings: newSQLiteSettingsRepository(f.db, f.logger),
		logs:     newSQLiteLogRepository(f.db, f.logger),
		weights:  newSQLiteWeightRepository(f.db, f.logger),
		plan:     newSQLitePlanRepository(f.db, f.logger),
	}
}
