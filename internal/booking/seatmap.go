package booking

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/metinatakli/cinex/internal/domain"
)

// SeatMapCache holds committed hall snapshots for the seat-availability read path. It
// is never consulted inside a reservation.
type SeatMapCache interface {
	Get(ctx context.Context, hallID uuid.UUID) (*domain.Hall, bool, error)
	// Generation identifies the hall entry. Invalidate moves it forward.
	Generation(ctx context.Context, hallID uuid.UUID) (int64, error)
	// Set stores hall only if the generation is still gen.
	Set(ctx context.Context, hall *domain.Hall, gen int64) error
	Invalidate(ctx context.Context, hallID uuid.UUID) error
}

// SeatMap is a committed snapshot of the seats of a show.
type SeatMap struct {
	Show     domain.Show
	HallName string
	Grid     domain.SeatGrid
}

// WithSeatMapCache serves SeatMap from cache and drops the hall entry after every
// committed reservation.
func WithSeatMapCache(cache SeatMapCache) Option {
	return func(c *Coordinator) {
		c.cache = cache
		c.afterCommit = append(c.afterCommit, c.invalidateSeatMap)
	}
}

func (c *Coordinator) SeatMap(ctx context.Context, showID string) (*SeatMap, error) {
	id, err := domain.ParseID(showID)
	if err != nil {
		return nil, err
	}

	show, err := c.shows.GetShow(ctx, id)
	if err != nil {
		return nil, err
	}

	hall, err := c.hall(ctx, show.HallID)
	if err != nil {
		return nil, err
	}

	// The counter comes from the same snapshot as the grid.
	snapshot := *show
	snapshot.AvailableSeats = hall.Grid.CountFree()

	return &SeatMap{
		Show:     snapshot,
		HallName: hall.Name,
		Grid:     hall.Grid,
	}, nil
}

func (c *Coordinator) hall(ctx context.Context, hallID uuid.UUID) (*domain.Hall, error) {
	if c.cache == nil {
		return c.grids.GetHall(ctx, hallID)
	}

	logger := c.logger.With("hall_id", hallID)

	hall, ok, err := c.cache.Get(ctx, hallID)
	if err != nil {
		logger.Warn("seat map cache read failed", "error", err)
	}

	if ok {
		return hall, nil
	}

	gen, genErr := c.cache.Generation(ctx, hallID)
	if genErr != nil {
		logger.Warn("seat map cache generation read failed", "error", genErr)
	}

	hall, err = c.grids.GetHall(ctx, hallID)
	if err != nil {
		return nil, err
	}

	if genErr == nil {
		err = c.cache.Set(ctx, hall, gen)
		if err != nil {
			logger.Warn("seat map cache write failed", "error", err)
		}
	}

	return hall, nil
}

func (c *Coordinator) invalidateSeatMap(ctx context.Context, res *Result) {
	err := c.cache.Invalidate(ctx, res.Show.HallID)
	if err != nil {
		c.logger.Error("failed to invalidate seat map",
			slog.String("hall_id", res.Show.HallID.String()),
			slog.Any("error", err))
	}
}
