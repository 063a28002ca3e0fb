package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/cinex/internal/domain"
)

var errNoUnitOfWork = errors.New("hall lock requested outside of a unit of work")

type txKey struct{}

// querier is the subset of pgx shared by the pool and an open transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

// PostgresUnitOfWork runs a function inside a single pgx transaction. Repositories pick
// the transaction up from the context, so every statement issued through that
// context commits or rolls back together.
type PostgresUnitOfWork struct {
	db          *pgxpool.Pool
	lockTimeout time.Duration
}

func NewPostgresUnitOfWork(db *pgxpool.Pool, lockTimeout time.Duration) *PostgresUnitOfWork {
	return &PostgresUnitOfWork{
		db:          db,
		lockTimeout: lockTimeout,
	}
}

func (u *PostgresUnitOfWork) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return runInTx(ctx, u.db, u.lockTimeout, fn)
}

func runInTx(ctx context.Context, db *pgxpool.Pool, lockTimeout time.Duration, fn func(ctx context.Context) error) error {
	if txFromContext(ctx) != nil {
		return fn(ctx)
	}

	tx, err := db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return classifyError(fmt.Errorf("begin transaction: %w", err))
	}

	if lockTimeout > 0 {
		_, err = tx.Exec(ctx, `SELECT set_config('lock_timeout', $1, true)`,
			fmt.Sprintf("%dms", lockTimeout.Milliseconds()))
		if err != nil {
			return errors.Join(classifyError(err), rollback(ctx, tx))
		}
	}

	err = fn(context.WithValue(ctx, txKey{}, tx))
	if err != nil {
		rollbackErr := rollback(ctx, tx)
		if rollbackErr != nil {
			return errors.Join(err, rollbackErr)
		}

		return err
	}

	err = tx.Commit(ctx)
	if err != nil {
		return classifyError(fmt.Errorf("commit: %w", err))
	}

	return nil
}

// rollback must still run when the caller's deadline has already passed.
func rollback(ctx context.Context, tx pgx.Tx) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
	defer cancel()

	err := tx.Rollback(ctx)
	if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return fmt.Errorf("rollback: %w", err)
	}

	return nil
}

func txFromContext(ctx context.Context) pgx.Tx {
	tx, _ := ctx.Value(txKey{}).(pgx.Tx)
	return tx
}

func conn(ctx context.Context, db *pgxpool.Pool) querier {
	if tx := txFromContext(ctx); tx != nil {
		return tx
	}

	return db
}

// classifyError maps driver failures onto domain errors. Anything it does not
// recognise is returned unchanged.
func classifyError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %w", domain.ErrTransient, err)
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case pgerrcode.LockNotAvailable,
		pgerrcode.SerializationFailure,
		pgerrcode.DeadlockDetected,
		pgerrcode.QueryCanceled,
		pgerrcode.AdminShutdown,
		pgerrcode.TooManyConnections:
		return fmt.Errorf("%w: %w", domain.ErrTransient, err)
	case pgerrcode.UniqueViolation:
		if pgErr.ConstraintName == "booking_seats_show_seat_key" {
			return fmt.Errorf("%w: %w", domain.ErrSeatConflict, err)
		}
	case pgerrcode.CheckViolation:
		if pgErr.ConstraintName == "shows_available_seats_check" {
			return fmt.Errorf("%w: %w", domain.ErrUnderflow, err)
		}
	case pgerrcode.InvalidTextRepresentation:
		return domain.ErrInvalidID
	case pgerrcode.ForeignKeyViolation:
		return fmt.Errorf("%w: %w", domain.ErrRecordNotFound, err)
	}

	return err
}
