package integration_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/metinatakli/cinex/internal/app"
	"github.com/metinatakli/cinex/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var keysToIgnore = map[string]struct{}{
	"timestamp": {},
	"requestId": {},
	"createdAt": {},
	"id":        {},
}

func prepareRequest(method, path string, body io.Reader, headers map[string]string) (*http.Request, error) {
	req := httptest.NewRequest(method, path, body)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req, nil
}

func compareResponse(t *testing.T, body io.Reader, expectedResponse string) {
	var actual map[string]any
	require.NoError(t, json.NewDecoder(body).Decode(&actual))

	cleanMap(actual)

	var expected map[string]any
	require.NoError(t, json.Unmarshal([]byte(expectedResponse), &expected))

	// ignore indetermistic fields while comparing
	opts := cmpopts.IgnoreMapEntries(func(k string, _ any) bool {
		_, ok := keysToIgnore[k]
		return ok
	})

	if diff := cmp.Diff(expected, actual, opts); diff != "" {
		t.Errorf("response mismatch (-want +got):\n%s", diff)
	}
}

func cleanMap(m map[string]any) {
	for k := range m {
		if _, ok := keysToIgnore[k]; ok {
			delete(m, k)
			continue
		}
		if nested, ok := m[k].(map[string]any); ok {
			cleanMap(nested)
		}
	}
}

func resetState(t testing.TB, testApp *TestApp) {
	ctx := context.Background()

	_, err := testApp.DB.Exec(ctx, `TRUNCATE booking_seats, bookings, shows, halls CASCADE`)
	require.NoError(t, err)

	require.NoError(t, testApp.Redis.FlushDB(ctx).Err())
	testApp.Mailer.Reset()
}

// setupHallTwo stores the 6x5 "Hall 2" with one show of TestMovieId in it.
func setupHallTwo(t testing.TB, testApp *TestApp) {
	resetState(t, testApp)

	ctx := context.Background()

	grid, err := domain.NewSeatGrid(TestHallRows, TestHallCols)
	require.NoError(t, err)

	hall := &domain.Hall{ID: TestHallId, Name: TestHallName, Grid: grid}
	require.NoError(t, testApp.Stores.Grids.CreateHall(ctx, hall))

	show := &domain.Show{
		ID:          TestShowId,
		HallID:      TestHallId,
		MovieID:     TestMovieId,
		Showtime:    time.Date(2026, 11, 1, 20, 0, 0, 0, time.UTC),
		TicketPrice: decimal.RequireFromString(TestTicketCost),
	}
	require.NoError(t, testApp.Stores.Shows.CreateShow(ctx, show))
	require.Equal(t, TestHallRows*TestHallCols, show.AvailableSeats)
}

func bookSeats(t testing.TB, testApp *TestApp, body string) int {
	req, err := prepareRequest(http.MethodPost, "/shows/"+TestShowId.String()+"/bookings", strings.NewReader(body), nil)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	testApp.App.Routes().ServeHTTP(rec, req)

	return rec.Code
}

func adminHeaders(t testing.TB) map[string]string {
	token, err := app.SignAccessToken(TestJWTSecret, "admin", app.RoleAdmin, time.Hour)
	require.NoError(t, err)

	return map[string]string{"Authorization": "Bearer " + token}
}

func assertCounterMatchesGrid(t testing.TB, testApp *TestApp) {
	ctx := context.Background()

	show, err := testApp.Stores.Shows.GetShow(ctx, TestShowId)
	require.NoError(t, err)

	grid, err := testApp.Stores.Grids.GetGrid(ctx, TestHallId)
	require.NoError(t, err)

	require.Equal(t, grid.CountFree(), show.AvailableSeats)
}

func newRecorder() *httptest.ResponseRecorder {
	return httptest.NewRecorder()
}

func decodeJSON(r io.Reader, dst any) error {
	return json.NewDecoder(r).Decode(dst)
}
