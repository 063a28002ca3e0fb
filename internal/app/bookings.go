package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/metinatakli/cinex/api"
	"github.com/metinatakli/cinex/internal/booking"
	"github.com/metinatakli/cinex/internal/domain"
	"github.com/metinatakli/cinex/internal/events"
)

func (app *Application) CreateBooking(w http.ResponseWriter, r *http.Request, showID string) {
	logger := app.contextGetLogger(r)

	_, err := domain.ParseID(showID)
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("invalid show ID"))
		return
	}

	var input api.CreateBookingRequest

	err = app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	req := booking.Request{
		ShowID:      showID,
		Seats:       toDomainSeats(input.Seats),
		RequesterID: app.requesterID(r),
	}
	if input.Email != nil {
		req.Email = *input.Email
	}

	res, err := app.coordinator.Reserve(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidID):
			app.badRequestResponse(w, r, fmt.Errorf("invalid show ID"))
		case errors.Is(err, domain.ErrOutOfBounds),
			errors.Is(err, domain.ErrNoSeats),
			errors.Is(err, domain.ErrDuplicateSeat):
			app.badRequestResponse(w, r, err)
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		case errors.Is(err, domain.ErrSeatConflict):
			logger.Warn("booking rejected: seats already booked", "show_id", showID)
			app.editConflictResponseWithErr(w, r, errors.New(ErrSeatsUnavailable))
		case errors.Is(err, domain.ErrTransient):
			app.retryableErrorResponse(w, r, err)
		default:
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	resp := toApiBooking(&res.Booking)
	resp.AvailableSeats = &res.AvailableSeats

	headers := make(http.Header)
	headers.Set("Location", fmt.Sprintf("/bookings/%s", res.Booking.ID))

	err = app.writeJSON(w, http.StatusCreated, resp, headers)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) GetBooking(w http.ResponseWriter, r *http.Request, bookingID string) {
	id, err := domain.ParseID(bookingID)
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("invalid booking ID"))
		return
	}

	b, err := app.ledger.GetBooking(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			app.notFoundResponse(w, r)
			return
		}

		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, toApiBooking(b), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) ListShowBookings(w http.ResponseWriter, r *http.Request, showID string) {
	id, err := domain.ParseID(showID)
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("invalid show ID"))
		return
	}

	_, err = app.shows.GetShow(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			app.notFoundResponse(w, r)
			return
		}

		app.serverErrorResponse(w, r, err)
		return
	}

	bookings, err := app.ledger.ListBookingsByShow(r.Context(), id)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := api.BookingListResponse{
		ShowId:   id,
		Bookings: make([]api.BookingAuditRow, len(bookings)),
	}

	for i, b := range bookings {
		resp.Bookings[i] = api.BookingAuditRow{
			Id:          b.ID,
			RequesterId: b.RequesterID,
			Seats:       toApiSeats(b.Seats),
			TotalPrice:  b.TotalPrice,
			CreatedAt:   b.CreatedAt,
		}
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// publishBookingConfirmed hands a committed booking to the event publisher
// without holding up the response.
func (app *Application) publishBookingConfirmed(ctx context.Context, res *booking.Result) {
	event := events.NewBookingConfirmed(res)

	app.background(func() {
		err := app.publisher.PublishBookingConfirmed(ctx, event)
		if err != nil {
			app.logger.Error("failed to publish booking confirmed event",
				"booking_id", event.BookingID,
				"show_id", event.ShowID,
				"error", err)
		}
	})
}

func toApiBooking(b *domain.Booking) api.BookingResponse {
	return api.BookingResponse{
		Id:         b.ID,
		ShowId:     b.ShowID,
		Seats:      toApiSeats(b.Seats),
		TotalPrice: b.TotalPrice,
		CreatedAt:  b.CreatedAt,
	}
}

func toApiSeats(seats []domain.Seat) []api.Seat {
	out := make([]api.Seat, len(seats))
	for i, s := range seats {
		out[i] = api.Seat{Row: s.Row, Col: s.Col}
	}

	return out
}

func toDomainSeats(seats []api.Seat) []domain.Seat {
	out := make([]domain.Seat, len(seats))
	for i, s := range seats {
		out[i] = domain.Seat{Row: s.Row, Col: s.Col}
	}

	return out
}

func toApiGrid(grid domain.SeatGrid) [][]api.SeatState {
	out := make([][]api.SeatState, len(grid))
	for i, row := range grid {
		out[i] = make([]api.SeatState, len(row))
		for j, state := range row {
			out[i][j] = api.SeatState(state)
		}
	}

	return out
}
