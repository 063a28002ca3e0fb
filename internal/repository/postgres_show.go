package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/cinex/internal/domain"
)

type PostgresShowRepository struct {
	db *pgxpool.Pool
}

func NewPostgresShowRepository(db *pgxpool.Pool) *PostgresShowRepository {
	return &PostgresShowRepository{
		db: db,
	}
}

// CreateShow initialises the counter from the free cells of the hall grid, which for
// a fresh hall is its total seat count.
func (p *PostgresShowRepository) CreateShow(ctx context.Context, show *domain.Show) error {
	if show.ID == uuid.Nil {
		show.ID = uuid.New()
	}

	return runInTx(ctx, p.db, 0, func(ctx context.Context) error {
		tx := txFromContext(ctx)

		var raw []byte

		err := tx.QueryRow(ctx, `SELECT grid FROM halls WHERE id = $1 FOR SHARE`, show.HallID).Scan(&raw)
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

		show.AvailableSeats = grid.CountFree()

		query := `
			INSERT INTO shows (id, hall_id, movie_id, showtime, available_seats, ticket_price)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING created_at
		`

		err = tx.QueryRow(
			ctx,
			query,
			show.ID,
			show.HallID,
			show.MovieID,
			show.Showtime,
			show.AvailableSeats,
			show.TicketPrice).Scan(&show.CreatedAt)
		if err != nil {
			return classifyError(err)
		}

		return nil
	})
}

func (p *PostgresShowRepository) GetShow(ctx context.Context, showID uuid.UUID) (*domain.Show, error) {
	query := `
		SELECT id, hall_id, movie_id, showtime, available_seats, ticket_price, created_at
		FROM shows
		WHERE id = $1
	`

	var show domain.Show

	err := conn(ctx, p.db).QueryRow(ctx, query, showID).Scan(
		&show.ID,
		&show.HallID,
		&show.MovieID,
		&show.Showtime,
		&show.AvailableSeats,
		&show.TicketPrice,
		&show.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, classifyError(err)
	}

	return &show, nil
}

// DecrementAvailable lowers the counter of every show screened in the hall of showID,
// since they all share its grid. The check constraint on available_seats turns an
// underflow on any of them into ErrUnderflow and leaves all counters untouched.
func (p *PostgresShowRepository) DecrementAvailable(ctx context.Context, showID uuid.UUID, n int) (int, error) {
	if n < 0 {
		return 0, fmt.Errorf("cannot decrement available seats by %d", n)
	}

	query := `
		UPDATE shows
		SET available_seats = available_seats - $2
		WHERE hall_id = (SELECT hall_id FROM shows WHERE id = $1)
		RETURNING id, available_seats
	`

	rows, err := conn(ctx, p.db).Query(ctx, query, showID, n)
	if err != nil {
		return 0, classifyError(err)
	}
	defer rows.Close()

	var (
		found     bool
		available int
	)

	for rows.Next() {
		var (
			id    uuid.UUID
			count int
		)

		err = rows.Scan(&id, &count)
		if err != nil {
			return 0, classifyError(err)
		}

		if id == showID {
			found = true
			available = count
		}
	}

	if err = rows.Err(); err != nil {
		return 0, classifyError(err)
	}

	if !found {
		return 0, domain.ErrRecordNotFound
	}

	return available, nil
}

func (p *PostgresShowRepository) GetShowtimesForMovie(ctx context.Context, movieID uuid.UUID) ([]domain.ShowtimeSnapshot, error) {
	query := `
		SELECT
			s.id,
			s.hall_id,
			s.movie_id,
			s.showtime,
			s.available_seats,
			s.ticket_price,
			s.created_at,
			h.name,
			h.grid
		FROM shows s
		JOIN halls h ON s.hall_id = h.id
		WHERE s.movie_id = $1
		ORDER BY s.showtime, s.id
	`

	rows, err := conn(ctx, p.db).Query(ctx, query, movieID)
	if err != nil {
		return nil, classifyError(err)
	}
	defer rows.Close()

	snapshots := make([]domain.ShowtimeSnapshot, 0)

	for rows.Next() {
		var (
			snapshot domain.ShowtimeSnapshot
			raw      []byte
		)

		err = rows.Scan(
			&snapshot.Show.ID,
			&snapshot.Show.HallID,
			&snapshot.Show.MovieID,
			&snapshot.Show.Showtime,
			&snapshot.Show.AvailableSeats,
			&snapshot.Show.TicketPrice,
			&snapshot.Show.CreatedAt,
			&snapshot.HallName,
			&raw,
		)
		if err != nil {
			return nil, classifyError(err)
		}

		snapshot.Grid, err = decodeGrid(raw)
		if err != nil {
			return nil, err
		}

		snapshots = append(snapshots, snapshot)
	}

	if err = rows.Err(); err != nil {
		return nil, classifyError(err)
	}

	return snapshots, nil
}
