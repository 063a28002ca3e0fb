package integration_test

import (
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/cinex/internal/app"
	"github.com/metinatakli/cinex/internal/events"
	"github.com/metinatakli/cinex/internal/mailer"
	"github.com/metinatakli/cinex/internal/repository"
	appvalidator "github.com/metinatakli/cinex/internal/validator"
	"github.com/redis/go-redis/v9"
)

type TestApp struct {
	App    *app.Application
	DB     *pgxpool.Pool
	Redis  *redis.Client
	Stores app.Stores
	Mailer *mailer.MockMailer
}

func newTestApp(cfg app.Config) (*TestApp, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	validator := appvalidator.NewValidator()
	mailer := mailer.NewMockMailer()

	db, err := app.NewDatabasePool(cfg)
	if err != nil {
		return nil, err
	}

	redisClient, err := app.NewRedisClient(cfg)
	if err != nil {
		db.Close()
		return nil, err
	}

	sessionManager := app.NewSessionManager(redisClient)
	stores := app.NewPostgresStores(db, cfg.Booking.LockTimeout)
	cache := repository.NewRedisSeatMapCache(redisClient, cfg.Booking.SeatMapTTL)

	application, err := app.NewApp(
		cfg,
		logger,
		validator,
		sessionManager,
		stores,
		cache,
		events.NewMailPublisher(mailer),
	)
	if err != nil {
		redisClient.Close()
		db.Close()
		return nil, err
	}

	return &TestApp{
		App:    application,
		DB:     db,
		Redis:  redisClient,
		Stores: stores,
		Mailer: mailer,
	}, nil
}
