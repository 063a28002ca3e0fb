package events

import (
	"context"
	"errors"
	"fmt"

	"github.com/metinatakli/cinex/internal/mailer"
)

// SendTicket returns a Handler that emails the ticket for an event. Events without
// a recipient are skipped. A ticket the mailer reports as undeliverable fails with
// ErrPermanent.
func SendTicket(m mailer.Mailer) Handler {
	return func(ctx context.Context, event BookingConfirmed) error {
		if event.Email == "" {
			return nil
		}

		err := m.SendTicket(event.Email, NewTicket(event))
		if err != nil {
			if errors.Is(err, mailer.ErrUndeliverable) {
				return fmt.Errorf("%w: ticket for booking %s: %w", ErrPermanent, event.BookingID, err)
			}

			return fmt.Errorf("send ticket for booking %s: %w", event.BookingID, err)
		}

		return nil
	}
}

func NewTicket(event BookingConfirmed) mailer.Ticket {
	seats := make([]mailer.TicketSeat, len(event.Seats))
	for i, s := range event.Seats {
		seats[i] = mailer.TicketSeat{Row: s.Row, Col: s.Col}
	}

	return mailer.Ticket{
		BookingID:  event.BookingID.String(),
		ShowID:     event.ShowID.String(),
		Showtime:   event.Showtime,
		Seats:      seats,
		TotalPrice: event.TotalPrice.StringFixed(2),
	}
}

// MailPublisher delivers the ticket in process instead of going through a broker.
type MailPublisher struct {
	handle Handler
}

func NewMailPublisher(m mailer.Mailer) *MailPublisher {
	return &MailPublisher{handle: SendTicket(m)}
}

func (p *MailPublisher) PublishBookingConfirmed(ctx context.Context, event BookingConfirmed) error {
	return p.handle(ctx, event)
}

func (p *MailPublisher) Close() error {
	return nil
}
