package app

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecoverPanic(t *testing.T) {
	app := newTestApplication(t)

	handler := app.recoverPanic(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	w, r := executeRequest(t, http.MethodGet, "/", nil)
	handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "close", w.Header().Get("Connection"))
}

func TestRequestLogger(t *testing.T) {
	app := newTestApplication(t)

	var scoped bool
	handler := app.requestLogger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		scoped = app.contextGetLogger(r) != app.logger
	}))

	w, r := executeRequest(t, http.MethodGet, "/", nil)
	handler.ServeHTTP(w, r)

	assert.True(t, scoped)
}

func TestLoadConfigFlagsOverrideEnvironment(t *testing.T) {
	t.Setenv("PORT", "4000")
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg, displayVersion, err := LoadConfig([]string{"-port", "5000", "-lock-timeout", "2s"})
	assert.NoError(t, err)
	assert.False(t, displayVersion)

	assert.Equal(t, 5000, cfg.Port)
	assert.Equal(t, StorageDriverMemory, cfg.StorageDriver)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Events.KafkaBrokers)
	assert.Equal(t, "2s", cfg.Booking.LockTimeout.String())
	assert.Equal(t, "30s", cfg.Booking.SeatMapTTL.String())
	assert.Equal(t, EventsDriverNone, cfg.Events.Driver)
}
