package app

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/riandyrn/otelchi"
)

func (app *Application) Routes() http.Handler {
	r := chi.NewRouter()

	r.NotFound(app.notFoundResponse)
	r.MethodNotAllowed(app.methodNotAllowedResponse)

	r.Use(otelchi.Middleware(serviceName, otelchi.WithChiRoutes(r)))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(app.requestLogger)
	r.Use(app.recoverPanic)
	r.Use(app.sessionManager.LoadAndSave)
	r.Use(app.ensureGuestUserSession)
	r.Use(app.authenticate)

	r.Get("/healthcheck", app.GetHealth)
	r.Get("/openapi.json", app.GetOpenAPI)

	r.Get("/movies/{movieId}/showtimes", func(w http.ResponseWriter, r *http.Request) {
		app.GetShowtimesForMovie(w, r, chi.URLParam(r, "movieId"))
	})

	r.Route("/shows/{showId}", func(r chi.Router) {
		r.Get("/seats", func(w http.ResponseWriter, r *http.Request) {
			app.GetSeatMap(w, r, chi.URLParam(r, "showId"))
		})

		r.Post("/bookings", func(w http.ResponseWriter, r *http.Request) {
			app.CreateBooking(w, r, chi.URLParam(r, "showId"))
		})

		r.With(app.requireAdmin).Get("/bookings", func(w http.ResponseWriter, r *http.Request) {
			app.ListShowBookings(w, r, chi.URLParam(r, "showId"))
		})
	})

	r.Get("/bookings/{bookingId}", func(w http.ResponseWriter, r *http.Request) {
		app.GetBooking(w, r, chi.URLParam(r, "bookingId"))
	})

	r.Group(func(r chi.Router) {
		r.Use(app.requireAdmin)

		r.Post("/halls", app.CreateHall)
		r.Post("/shows", app.CreateShow)
	})

	return r
}
