package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/cinex/internal/domain"
)

type PostgresHallRepository struct {
	db *pgxpool.Pool
}

func NewPostgresHallRepository(db *pgxpool.Pool) *PostgresHallRepository {
	return &PostgresHallRepository{
		db: db,
	}
}

func (p *PostgresHallRepository) CreateHall(ctx context.Context, hall *domain.Hall) error {
	err := hall.Grid.Validate()
	if err != nil {
		return err
	}

	if hall.ID == uuid.Nil {
		hall.ID = uuid.New()
	}

	grid, err := json.Marshal(hall.Grid)
	if err != nil {
		return fmt.Errorf("encode grid: %w", err)
	}

	query := `
		INSERT INTO halls (id, name, seat_rows, seat_cols, grid)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`

	err = conn(ctx, p.db).QueryRow(
		ctx,
		query,
		hall.ID,
		hall.Name,
		hall.Grid.Rows(),
		hall.Grid.Cols(),
		grid).Scan(&hall.CreatedAt)
	if err != nil {
		return classifyError(err)
	}

	return nil
}

func (p *PostgresHallRepository) GetHall(ctx context.Context, hallID uuid.UUID) (*domain.Hall, error) {
	query := `
		SELECT id, name, grid, created_at
		FROM halls
		WHERE id = $1
	`

	var (
		hall domain.Hall
		raw  []byte
	)

	err := conn(ctx, p.db).QueryRow(ctx, query, hallID).Scan(&hall.ID, &hall.Name, &raw, &hall.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, classifyError(err)
	}

	hall.Grid, err = decodeGrid(raw)
	if err != nil {
		return nil, err
	}

	return &hall, nil
}

func (p *PostgresHallRepository) GetGrid(ctx context.Context, hallID uuid.UUID) (domain.SeatGrid, error) {
	var raw []byte

	err := conn(ctx, p.db).QueryRow(ctx, `SELECT grid FROM halls WHERE id = $1`, hallID).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, classifyError(err)
	}

	return decodeGrid(raw)
}

// LockHall takes the row lock on the hall for the rest of the surrounding
// transaction. Waiting is bounded by the transaction's lock_timeout.
func (p *PostgresHallRepository) LockHall(ctx context.Context, hallID uuid.UUID) error {
	tx := txFromContext(ctx)
	if tx == nil {
		return errNoUnitOfWork
	}

	var id uuid.UUID

	err := tx.QueryRow(ctx, `SELECT id FROM halls WHERE id = $1 FOR UPDATE`, hallID).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrRecordNotFound
		}

		return classifyError(fmt.Errorf("lock hall: %w", err))
	}

	return nil
}

func (p *PostgresHallRepository) SetCells(
	ctx context.Context,
	hallID uuid.UUID,
	seats []domain.Seat,
	state domain.SeatState) error {

	return runInTx(ctx, p.db, 0, func(ctx context.Context) error {
		tx := txFromContext(ctx)

		var raw []byte

		err := tx.QueryRow(ctx, `SELECT grid FROM halls WHERE id = $1 FOR UPDATE`, hallID).Scan(&raw)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrRecordNotFound
			}

			return classifyError(err)
		}

		grid, err := decodeGrid(raw)
		if err != nil {
			return err
		}

		err = grid.CheckBounds(seats)
		if err != nil {
			return err
		}

		for _, s := range seats {
			grid[s.Row][s.Col] = state
		}

		encoded, err := json.Marshal(grid)
		if err != nil {
			return fmt.Errorf("encode grid: %w", err)
		}

		_, err = tx.Exec(ctx, `UPDATE halls SET grid = $2, updated_at = NOW() WHERE id = $1`, hallID, encoded)
		if err != nil {
			return classifyError(err)
		}

		return nil
	})
}

func decodeGrid(raw []byte) (domain.SeatGrid, error) {
	var grid domain.SeatGrid

	err := json.Unmarshal(raw, &grid)
	if err != nil {
		return nil, fmt.Errorf("decode grid: %w", err)
	}

	return grid, nil
}
