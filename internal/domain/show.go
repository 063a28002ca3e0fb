package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Show struct {
	ID             uuid.UUID
	HallID         uuid.UUID
	MovieID        uuid.UUID
	Showtime       time.Time
	AvailableSeats int
	TicketPrice    decimal.Decimal
	CreatedAt      time.Time
}

// ShowtimeSnapshot is a show together with the hall it is screened in and a
// committed snapshot of that hall's grid.
type ShowtimeSnapshot struct {
	Show     Show
	HallName string
	Grid     SeatGrid
}

type ShowRegistry interface {
	CreateShow(ctx context.Context, show *Show) error
	GetShow(ctx context.Context, showID uuid.UUID) (*Show, error)
	// DecrementAvailable lowers by n the counter of showID and of every other show in
	// the same hall, and returns the new value for showID. It fails with ErrUnderflow
	// instead of taking any of them below zero.
	DecrementAvailable(ctx context.Context, showID uuid.UUID, n int) (int, error)
	GetShowtimesForMovie(ctx context.Context, movieID uuid.UUID) ([]ShowtimeSnapshot, error)
}
