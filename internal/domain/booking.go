package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Booking is an immutable ledger entry for seats reserved in a show.
type Booking struct {
	ID          uuid.UUID
	ShowID      uuid.UUID
	Seats       []Seat
	RequesterID string
	TotalPrice  decimal.Decimal
	CreatedAt   time.Time
}

type BookingLedger interface {
	RecordBooking(ctx context.Context, booking *Booking) (uuid.UUID, error)
	GetBooking(ctx context.Context, bookingID uuid.UUID) (*Booking, error)
	ListBookingsByShow(ctx context.Context, showID uuid.UUID) ([]Booking, error)
}

// UnitOfWork runs fn atomically: every store call made with the context passed to fn
// commits together or not at all.
type UnitOfWork interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// ParseID parses an identifier received from a client.
func ParseID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, ErrInvalidID
	}

	return id, nil
}
