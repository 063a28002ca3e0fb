package app

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/metinatakli/cinex/api"
	"github.com/metinatakli/cinex/internal/domain"
)

func (app *Application) GetShowtimesForMovie(w http.ResponseWriter, r *http.Request, movieID string) {
	id, err := domain.ParseID(movieID)
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("invalid movie ID"))
		return
	}

	snapshots, err := app.shows.GetShowtimesForMovie(r.Context(), id)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := api.ShowtimesResponse{
		MovieId:   id,
		Showtimes: make([]api.Showtime, len(snapshots)),
	}

	for i, s := range snapshots {
		resp.Showtimes[i] = api.Showtime{
			ShowId:         s.Show.ID,
			HallId:         s.Show.HallID,
			HallName:       s.HallName,
			Showtime:       s.Show.Showtime.UTC(),
			TicketPrice:    s.Show.TicketPrice,
			AvailableSeats: s.Show.AvailableSeats,
			Grid:           toApiGrid(s.Grid),
		}
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) CreateShow(w http.ResponseWriter, r *http.Request) {
	logger := app.contextGetLogger(r)

	var input api.CreateShowRequest

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	show := &domain.Show{
		ID:          uuid.New(),
		HallID:      uuid.MustParse(input.HallId),
		MovieID:     uuid.MustParse(input.MovieId),
		Showtime:    input.Showtime.UTC(),
		TicketPrice: input.TicketPrice,
	}

	err = app.shows.CreateShow(r.Context(), show)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			logger.Warn("show creation failed: hall does not exist", "hall_id", input.HallId)
			app.notFoundResponse(w, r)
			return
		}

		app.serverErrorResponse(w, r, err)
		return
	}

	logger.Info("show created", "show_id", show.ID, "hall_id", show.HallID, "available_seats", show.AvailableSeats)

	resp := api.ShowResponse{
		Id:             show.ID,
		HallId:         show.HallID,
		MovieId:        show.MovieID,
		Showtime:       show.Showtime,
		TicketPrice:    show.TicketPrice,
		AvailableSeats: show.AvailableSeats,
		CreatedAt:      show.CreatedAt,
	}

	err = app.writeJSON(w, http.StatusCreated, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
