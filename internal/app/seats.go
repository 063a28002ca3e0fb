package app

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/metinatakli/cinex/api"
	"github.com/metinatakli/cinex/internal/domain"
)

func (app *Application) GetSeatMap(w http.ResponseWriter, r *http.Request, showID string) {
	seatMap, err := app.coordinator.SeatMap(r.Context(), showID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidID):
			app.badRequestResponse(w, r, fmt.Errorf("invalid show ID"))
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	resp := api.SeatMapResponse{
		ShowId:         seatMap.Show.ID,
		HallId:         seatMap.Show.HallID,
		HallName:       seatMap.HallName,
		MovieId:        seatMap.Show.MovieID,
		Showtime:       seatMap.Show.Showtime.UTC(),
		AvailableSeats: seatMap.Show.AvailableSeats,
		Rows:           seatMap.Grid.Rows(),
		Cols:           seatMap.Grid.Cols(),
		Grid:           toApiGrid(seatMap.Grid),
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
