package app

import (
	"net/http"

	"github.com/metinatakli/cinex/api"
	"github.com/metinatakli/cinex/internal/domain"
)

func (app *Application) CreateHall(w http.ResponseWriter, r *http.Request) {
	var input api.CreateHallRequest

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

	hall, err := domain.NewHall(input.Name, input.Rows, input.Cols)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.grids.CreateHall(r.Context(), hall)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	app.contextGetLogger(r).Info("hall created", "hall_id", hall.ID, "seats", hall.Grid.TotalSeats())

	resp := api.HallResponse{
		Id:         hall.ID,
		Name:       hall.Name,
		Rows:       hall.Grid.Rows(),
		Cols:       hall.Grid.Cols(),
		TotalSeats: hall.Grid.TotalSeats(),
		CreatedAt:  hall.CreatedAt,
	}

	err = app.writeJSON(w, http.StatusCreated, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
