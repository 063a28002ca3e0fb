package app

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/google/uuid"
	"github.com/metinatakli/cinex/api"
	"github.com/metinatakli/cinex/internal/domain"
	"github.com/metinatakli/cinex/internal/events"
	"github.com/metinatakli/cinex/internal/validator"
	"github.com/shopspring/decimal"
)

const testJWTSecret = "test-secret"

var testTicketPrice = decimal.RequireFromString("12.50")

// newTestApplication wires the application against a fresh in-memory store.
// Options run before the coordinator is built, so they may swap stores.
func newTestApplication(t *testing.T, opts ...func(*Config, *Stores)) *Application {
	t.Helper()

	cfg := Config{
		Env:       "test",
		JWTSecret: testJWTSecret,
		Booking: BookingConfig{
			LockTimeout: time.Second,
		},
	}
	stores := NewMemoryStores()

	for _, opt := range opts {
		opt(&cfg, &stores)
	}

	app, err := NewApp(
		cfg,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		validator.NewValidator(),
		scs.New(),
		stores,
		nil,
		events.NopPublisher{},
	)
	if err != nil {
		t.Fatal(err)
	}

	return app
}

// seedShow creates a rows x cols hall with one show in it.
func seedShow(t *testing.T, app *Application, rows, cols int) *domain.Show {
	t.Helper()

	hall, err := domain.NewHall("Hall 2", rows, cols)
	if err != nil {
		t.Fatal(err)
	}

	err = app.grids.CreateHall(t.Context(), hall)
	if err != nil {
		t.Fatal(err)
	}

	show := &domain.Show{
		HallID:      hall.ID,
		MovieID:     uuid.New(),
		Showtime:    time.Date(2026, 11, 1, 20, 0, 0, 0, time.UTC),
		TicketPrice: testTicketPrice,
	}

	err = app.shows.CreateShow(t.Context(), show)
	if err != nil {
		t.Fatal(err)
	}

	return show
}

func setupTestSession(t *testing.T, app *Application, r *http.Request, userId string) *http.Request {
	ctx, err := app.sessionManager.Load(r.Context(), "session")
	if err != nil {
		t.Errorf("Failed to load session: %v", err)
	}

	if userId != "" {
		app.sessionManager.Put(ctx, SessionKeyUserId.String(), userId)
	}

	return r.WithContext(ctx)
}

func adminToken(t *testing.T) string {
	t.Helper()

	token, err := SignAccessToken(testJWTSecret, "admin-1", RoleAdmin, time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	return "Bearer " + token
}

func executeRequest(t *testing.T, method, url string, body any) (*httptest.ResponseRecorder, *http.Request) {
	var reader io.Reader = http.NoBody

	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		jsonData, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(jsonData)
	}

	r := httptest.NewRequest(method, url, reader)
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	return w, r
}

func checkErrorResponse(t *testing.T, w *httptest.ResponseRecorder, tt struct {
	wantStatus     int
	wantErrMessage string
}) {
	if tt.wantStatus >= 200 && tt.wantStatus < 300 {
		return
	}

	switch tt.wantStatus {
	case http.StatusUnprocessableEntity:
		var validationResp api.ValidationErrorResponse
		if err := json.NewDecoder(w.Body).Decode(&validationResp); err != nil {
			t.Fatalf("Failed to decode validation error response: %v", err)
		}

		errorSet := make(map[string]bool)
		for _, vErr := range validationResp.ValidationErrors {
			errorSet[vErr.Issue] = true
		}

		if !errorSet[tt.wantErrMessage] {
			t.Errorf("Expected validation error message '%s' not found in response", tt.wantErrMessage)
		}

	default:
		var errorResp api.ErrorResponse
		if err := json.NewDecoder(w.Body).Decode(&errorResp); err != nil {
			t.Fatalf("Failed to decode error response: %v", err)
		}

		if tt.wantErrMessage != "" && errorResp.Message != tt.wantErrMessage {
			t.Errorf("Error message = %v, want %v", errorResp.Message, tt.wantErrMessage)
		}
	}
}

func ptr[T any](v T) *T {
	return &v
}
