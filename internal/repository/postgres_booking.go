package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/cinex/internal/domain"
)

type PostgresBookingRepository struct {
	db *pgxpool.Pool
}

func NewPostgresBookingRepository(db *pgxpool.Pool) *PostgresBookingRepository {
	return &PostgresBookingRepository{
		db: db,
	}
}

// RecordBooking appends the booking and its seats. The unique (show, row, col)
// constraint on booking_seats rejects overlapping bookings with ErrSeatConflict.
func (p *PostgresBookingRepository) RecordBooking(ctx context.Context, booking *domain.Booking) (uuid.UUID, error) {
	if booking.ID == uuid.Nil {
		booking.ID = uuid.New()
	}

	err := runInTx(ctx, p.db, 0, func(ctx context.Context) error {
		tx := txFromContext(ctx)

		query := `
			INSERT INTO bookings (id, show_id, requester_id, total_price, created_at)
			VALUES ($1, $2, $3, $4, COALESCE($5, NOW()))
			RETURNING created_at
		`

		var createdAt any
		if !booking.CreatedAt.IsZero() {
			createdAt = booking.CreatedAt
		}

		err := tx.QueryRow(
			ctx,
			query,
			booking.ID,
			booking.ShowID,
			booking.RequesterID,
			booking.TotalPrice,
			createdAt).Scan(&booking.CreatedAt)
		if err != nil {
			return classifyError(err)
		}

		rows := make([][]any, 0, len(booking.Seats))
		for i, seat := range booking.Seats {
			rows = append(rows, []any{
				booking.ID,
				booking.ShowID,
				seat.Row,
				seat.Col,
				i,
			})
		}

		_, err = tx.CopyFrom(
			ctx,
			pgx.Identifier{"booking_seats"},
			[]string{"booking_id", "show_id", "seat_row", "seat_col", "position"},
			pgx.CopyFromRows(rows),
		)
		if err != nil {
			return classifyError(err)
		}

		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}

	return booking.ID, nil
}

func (p *PostgresBookingRepository) GetBooking(ctx context.Context, bookingID uuid.UUID) (*domain.Booking, error) {
	query := `
		SELECT b.id, b.show_id, b.requester_id, b.total_price, b.created_at, bs.seat_row, bs.seat_col
		FROM bookings b
		JOIN booking_seats bs ON bs.booking_id = b.id
		WHERE b.id = $1
		ORDER BY bs.position
	`

	bookings, err := p.queryBookings(ctx, query, bookingID)
	if err != nil {
		return nil, err
	}

	if len(bookings) == 0 {
		return nil, domain.ErrRecordNotFound
	}

	return &bookings[0], nil
}

func (p *PostgresBookingRepository) ListBookingsByShow(ctx context.Context, showID uuid.UUID) ([]domain.Booking, error) {
	query := `
		SELECT b.id, b.show_id, b.requester_id, b.total_price, b.created_at, bs.seat_row, bs.seat_col
		FROM bookings b
		JOIN booking_seats bs ON bs.booking_id = b.id
		WHERE b.show_id = $1
		ORDER BY b.created_at, b.id, bs.position
	`

	return p.queryBookings(ctx, query, showID)
}

// queryBookings folds one row per seat back into bookings, keeping row order.
func (p *PostgresBookingRepository) queryBookings(ctx context.Context, query string, args ...any) ([]domain.Booking, error) {
	rows, err := conn(ctx, p.db).Query(ctx, query, args...)
	if err != nil {
		return nil, classifyError(err)
	}
	defer rows.Close()

	bookings := make([]domain.Booking, 0)
	index := make(map[uuid.UUID]int)

	for rows.Next() {
		var (
			booking domain.Booking
			seat    domain.Seat
		)

		err = rows.Scan(
			&booking.ID,
			&booking.ShowID,
			&booking.RequesterID,
			&booking.TotalPrice,
			&booking.CreatedAt,
			&seat.Row,
			&seat.Col,
		)
		if err != nil {
			return nil, classifyError(err)
		}

		i, ok := index[booking.ID]
		if !ok {
			i = len(bookings)
			index[booking.ID] = i
			bookings = append(bookings, booking)
		}

		bookings[i].Seats = append(bookings[i].Seats, seat)
	}

	if err = rows.Err(); err != nil {
		return nil, classifyError(err)
	}

	return bookings, nil
}
