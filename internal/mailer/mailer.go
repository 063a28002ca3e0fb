// Package mailer delivers booking confirmation tickets by email.
package mailer

import (
	"errors"
	"time"
)

// ErrUndeliverable marks a ticket that retrying cannot deliver: it does not render,
// or the SMTP server rejected it with a permanent (5xx) reply.
var ErrUndeliverable = errors.New("ticket cannot be delivered")

type TicketSeat struct {
	Row int
	Col int
}

// Ticket is the data rendered into booking_confirmed.tmpl.
type Ticket struct {
	BookingID string
	ShowID    string
	Showtime  time.Time
	Seats     []TicketSeat
	// TotalPrice is already formatted with two decimal places.
	TotalPrice string
}

type Mailer interface {
	SendTicket(recipient string, ticket Ticket) error
}
