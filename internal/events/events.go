// Package events carries the BookingConfirmed notification from the API to the
// ticket mailer. Events are published after commit; delivery is at least once.
package events

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/metinatakli/cinex/internal/booking"
	"github.com/metinatakli/cinex/internal/domain"
	"github.com/shopspring/decimal"
)

const (
	BookingConfirmedType = "booking_confirmed"
	// BookingConfirmedTopic is the Kafka topic and the AMQP queue name.
	BookingConfirmedTopic = "booking.confirmed"
)

type BookingConfirmed struct {
	Type           string          `json:"type"`
	BookingID      uuid.UUID       `json:"bookingId"`
	ShowID         uuid.UUID       `json:"showId"`
	HallID         uuid.UUID       `json:"hallId"`
	MovieID        uuid.UUID       `json:"movieId"`
	Showtime       time.Time       `json:"showtime"`
	Seats          []domain.Seat   `json:"seats"`
	RequesterID    string          `json:"requesterId"`
	Email          string          `json:"email,omitempty"`
	TotalPrice     decimal.Decimal `json:"totalPrice"`
	AvailableSeats int             `json:"availableSeats"`
	ConfirmedAt    time.Time       `json:"confirmedAt"`
}

func NewBookingConfirmed(res *booking.Result) BookingConfirmed {
	return BookingConfirmed{
		Type:           BookingConfirmedType,
		BookingID:      res.Booking.ID,
		ShowID:         res.Show.ID,
		HallID:         res.Show.HallID,
		MovieID:        res.Show.MovieID,
		Showtime:       res.Show.Showtime,
		Seats:          res.Booking.Seats,
		RequesterID:    res.Booking.RequesterID,
		Email:          res.Email,
		TotalPrice:     res.Booking.TotalPrice,
		AvailableSeats: res.AvailableSeats,
		ConfirmedAt:    res.Booking.CreatedAt,
	}
}

type Publisher interface {
	PublishBookingConfirmed(ctx context.Context, event BookingConfirmed) error
	Close() error
}

// ErrPermanent marks a handler failure that redelivery cannot fix. Consumers
// dead-letter or drop such events instead of retrying them.
var ErrPermanent = errors.New("event cannot be processed")

// Handler processes one delivered event. Errors not wrapping ErrPermanent are retried.
type Handler func(ctx context.Context, event BookingConfirmed) error

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) PublishBookingConfirmed(context.Context, BookingConfirmed) error {
	return nil
}

func (NopPublisher) Close() error {
	return nil
}
