package booking_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/metinatakli/cinex/internal/booking"
	"github.com/metinatakli/cinex/internal/domain"
	"github.com/metinatakli/cinex/internal/repository"
)

type fakeSeatMapCache struct {
	mu          sync.Mutex
	halls       map[uuid.UUID]*domain.Hall
	generations map[uuid.UUID]int64
	gets        int
	staleSets   int
	invalidated []uuid.UUID
	failReads   bool
}

func newFakeSeatMapCache() *fakeSeatMapCache {
	return &fakeSeatMapCache{
		halls:       make(map[uuid.UUID]*domain.Hall),
		generations: make(map[uuid.UUID]int64),
	}
}

func (f *fakeSeatMapCache) Get(ctx context.Context, hallID uuid.UUID) (*domain.Hall, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.gets++
	if f.failReads {
		return nil, false, errors.New("cache unavailable")
	}

	hall, ok := f.halls[hallID]
	return hall, ok, nil
}

func (f *fakeSeatMapCache) Generation(ctx context.Context, hallID uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.generations[hallID], nil
}

func (f *fakeSeatMapCache) Set(ctx context.Context, hall *domain.Hall, gen int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.generations[hall.ID] != gen {
		f.staleSets++
		return nil
	}

	f.halls[hall.ID] = hall
	return nil
}

func (f *fakeSeatMapCache) Invalidate(ctx context.Context, hallID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.generations[hallID]++
	delete(f.halls, hallID)
	f.invalidated = append(f.invalidated, hallID)
	return nil
}

func (s *CoordinatorTestSuite) TestSeatMap() {
	s.Run("read twice without booking is identical", func() {
		first, err := s.coordinator.SeatMap(context.Background(), s.show.ID.String())
		s.Require().NoError(err)

		second, err := s.coordinator.SeatMap(context.Background(), s.show.ID.String())
		s.Require().NoError(err)

		s.Equal(first, second)
		s.Equal("Hall 2", first.HallName)
		s.Equal(30, first.Show.AvailableSeats)
	})

	s.Run("malformed id", func() {
		_, err := s.coordinator.SeatMap(context.Background(), "not-a-uuid")
		s.ErrorIs(err, domain.ErrInvalidID)
	})

	s.Run("unknown show", func() {
		_, err := s.coordinator.SeatMap(context.Background(), uuid.NewString())
		s.ErrorIs(err, domain.ErrRecordNotFound)
	})
}

func (s *CoordinatorTestSuite) TestSeatMapCache() {
	s.Run("is filled on miss and dropped after commit", func() {
		s.SetupTest()

		cache := newFakeSeatMapCache()
		s.coordinator = s.newCoordinator(s.store, booking.WithSeatMapCache(cache))

		_, err := s.coordinator.SeatMap(context.Background(), s.show.ID.String())
		s.Require().NoError(err)
		s.Contains(cache.halls, s.hall.ID)

		_, err = s.reserve(domain.Seat{Row: 4, Col: 4})
		s.Require().NoError(err)

		s.Equal([]uuid.UUID{s.hall.ID}, cache.invalidated)
		s.NotContains(cache.halls, s.hall.ID)

		seatMap, err := s.coordinator.SeatMap(context.Background(), s.show.ID.String())
		s.Require().NoError(err)
		s.Equal(domain.SeatBooked, seatMap.Grid[4][4])
		s.Equal(29, seatMap.Show.AvailableSeats)
	})

	s.Run("falls back to the store when the cache fails", func() {
		s.SetupTest()

		cache := newFakeSeatMapCache()
		cache.failReads = true
		s.coordinator = s.newCoordinator(s.store, booking.WithSeatMapCache(cache))

		seatMap, err := s.coordinator.SeatMap(context.Background(), s.show.ID.String())
		s.Require().NoError(err)
		s.Equal(30, seatMap.Grid.CountFree())
	})

	s.Run("is not invalidated by a conflict", func() {
		s.SetupTest()

		cache := newFakeSeatMapCache()
		s.coordinator = s.newCoordinator(s.store, booking.WithSeatMapCache(cache))

		_, err := s.reserve(domain.Seat{Row: 0, Col: 0})
		s.Require().NoError(err)

		_, err = s.reserve(domain.Seat{Row: 0, Col: 0})
		s.ErrorIs(err, domain.ErrSeatConflict)

		s.Len(cache.invalidated, 1)
	})

	s.Run("a snapshot loaded before a commit is not cached after it", func() {
		s.SetupTest()

		cache := newFakeSeatMapCache()
		grids := &commitDuringLoad{MemoryStore: s.store}
		s.coordinator = booking.NewCoordinator(s.store, grids, s.store, s.store,
			booking.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
			booking.WithSeatMapCache(cache))

		grids.during = func() {
			_, err := s.reserve(domain.Seat{Row: 2, Col: 3})
			s.Require().NoError(err)
		}

		stale, err := s.coordinator.SeatMap(context.Background(), s.show.ID.String())
		s.Require().NoError(err)
		s.Equal(domain.SeatFree, stale.Grid[2][3])
		s.Equal(stale.Grid.CountFree(), stale.Show.AvailableSeats)

		s.Equal(1, cache.staleSets)
		s.NotContains(cache.halls, s.hall.ID)

		fresh, err := s.coordinator.SeatMap(context.Background(), s.show.ID.String())
		s.Require().NoError(err)
		s.Equal(domain.SeatBooked, fresh.Grid[2][3])
		s.Equal(29, fresh.Show.AvailableSeats)
		s.Contains(cache.halls, s.hall.ID)
	})
}

// commitDuringLoad runs during once, after the hall has been read and before it is
// returned to the caller.
type commitDuringLoad struct {
	*repository.MemoryStore
	once   sync.Once
	during func()
}

func (c *commitDuringLoad) GetHall(ctx context.Context, hallID uuid.UUID) (*domain.Hall, error) {
	hall, err := c.MemoryStore.GetHall(ctx, hallID)
	if err != nil {
		return nil, err
	}

	c.once.Do(c.during)

	return hall, nil
}
