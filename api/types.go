// Package api holds the wire types of the HTTP API together with the OpenAPI
// document that describes them.
package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type SeatState string

const (
	Free   SeatState = "free"
	Booked SeatState = "booked"
)

type ErrorResponse struct {
	Message   string    `json:"message"`
	RequestId string    `json:"requestId"`
	Timestamp time.Time `json:"timestamp"`
}

type ValidationError struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}

type ValidationErrorResponse struct {
	Message          string            `json:"message"`
	RequestId        string            `json:"requestId"`
	Timestamp        time.Time         `json:"timestamp"`
	ValidationErrors []ValidationError `json:"validationErrors"`
}

type SystemInfo struct {
	Version     string `json:"version"`
	Environment string `json:"environment"`
}

type HealthcheckResponse struct {
	Status     string     `json:"status"`
	SystemInfo SystemInfo `json:"systemInfo"`
}

type Seat struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

type CreateBookingRequest struct {
	Seats []Seat  `json:"seats" validate:"required,min=1,max=20"`
	Email *string `json:"email,omitempty" validate:"omitempty,email"`
}

type BookingResponse struct {
	Id             uuid.UUID       `json:"id"`
	ShowId         uuid.UUID       `json:"showId"`
	Seats          []Seat          `json:"seats"`
	TotalPrice     decimal.Decimal `json:"totalPrice"`
	AvailableSeats *int            `json:"availableSeats,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
}

type BookingListResponse struct {
	ShowId   uuid.UUID         `json:"showId"`
	Bookings []BookingAuditRow `json:"bookings"`
}

type BookingAuditRow struct {
	Id          uuid.UUID       `json:"id"`
	RequesterId string          `json:"requesterId"`
	Seats       []Seat          `json:"seats"`
	TotalPrice  decimal.Decimal `json:"totalPrice"`
	CreatedAt   time.Time       `json:"createdAt"`
}

type SeatMapResponse struct {
	ShowId         uuid.UUID     `json:"showId"`
	HallId         uuid.UUID     `json:"hallId"`
	HallName       string        `json:"hallName"`
	MovieId        uuid.UUID     `json:"movieId"`
	Showtime       time.Time     `json:"showtime"`
	AvailableSeats int           `json:"availableSeats"`
	Rows           int           `json:"rows"`
	Cols           int           `json:"cols"`
	Grid           [][]SeatState `json:"grid"`
}

type Showtime struct {
	ShowId         uuid.UUID       `json:"showId"`
	HallId         uuid.UUID       `json:"hallId"`
	HallName       string          `json:"hallName"`
	Showtime       time.Time       `json:"showtime"`
	TicketPrice    decimal.Decimal `json:"ticketPrice"`
	AvailableSeats int             `json:"availableSeats"`
	Grid           [][]SeatState   `json:"grid"`
}

type ShowtimesResponse struct {
	MovieId   uuid.UUID  `json:"movieId"`
	Showtimes []Showtime `json:"showtimes"`
}

type CreateHallRequest struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
	Rows int    `json:"rows" validate:"required,min=1,max=100"`
	Cols int    `json:"cols" validate:"required,min=1,max=100"`
}

type HallResponse struct {
	Id         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Rows       int       `json:"rows"`
	Cols       int       `json:"cols"`
	TotalSeats int       `json:"totalSeats"`
	CreatedAt  time.Time `json:"createdAt"`
}

type CreateShowRequest struct {
	HallId      string          `json:"hallId" validate:"required,uuid"`
	MovieId     string          `json:"movieId" validate:"required,uuid"`
	Showtime    time.Time       `json:"showtime" validate:"required"`
	TicketPrice decimal.Decimal `json:"ticketPrice" validate:"price"`
}

type ShowResponse struct {
	Id             uuid.UUID       `json:"id"`
	HallId         uuid.UUID       `json:"hallId"`
	MovieId        uuid.UUID       `json:"movieId"`
	Showtime       time.Time       `json:"showtime"`
	TicketPrice    decimal.Decimal `json:"ticketPrice"`
	AvailableSeats int             `json:"availableSeats"`
	CreatedAt      time.Time       `json:"createdAt"`
}
