package repository

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/metinatakli/cinex/internal/domain"
)

type memoryTxKey struct{}

// memoryTx stages the writes of one unit of work. Nothing it holds is visible to
// other readers until commit.
type memoryTx struct {
	cells    map[uuid.UUID]map[domain.Seat]domain.SeatState
	deltas   map[uuid.UUID]int
	bookings []domain.Booking
	locked   []uuid.UUID
}

func newMemoryTx() *memoryTx {
	return &memoryTx{
		cells:  make(map[uuid.UUID]map[domain.Seat]domain.SeatState),
		deltas: make(map[uuid.UUID]int),
	}
}

func (tx *memoryTx) holds(hallID uuid.UUID) bool {
	return slices.Contains(tx.locked, hallID)
}

// MemoryStore keeps halls, shows and bookings in process memory. Each hall has a one
// slot lock channel serialising reservations against it.
type MemoryStore struct {
	mu       sync.RWMutex
	halls    map[uuid.UUID]*domain.Hall
	shows    map[uuid.UUID]*domain.Show
	bookings map[uuid.UUID]*domain.Booking
	byShow   map[uuid.UUID][]uuid.UUID
	taken    map[uuid.UUID]map[domain.Seat]uuid.UUID

	locksMu sync.Mutex
	locks   map[uuid.UUID]chan struct{}

	now func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		halls:    make(map[uuid.UUID]*domain.Hall),
		shows:    make(map[uuid.UUID]*domain.Show),
		bookings: make(map[uuid.UUID]*domain.Booking),
		byShow:   make(map[uuid.UUID][]uuid.UUID),
		taken:    make(map[uuid.UUID]map[domain.Seat]uuid.UUID),
		locks:    make(map[uuid.UUID]chan struct{}),
		now:      time.Now,
	}
}

func memoryTxFromContext(ctx context.Context) *memoryTx {
	tx, _ := ctx.Value(memoryTxKey{}).(*memoryTx)
	return tx
}

// RunInTx applies the staged writes of fn if it returns nil and the context is still
// live, and discards them otherwise. Hall locks are held until then.
func (s *MemoryStore) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if memoryTxFromContext(ctx) != nil {
		return fn(ctx)
	}

	tx := newMemoryTx()
	defer s.release(tx)

	err := fn(context.WithValue(ctx, memoryTxKey{}, tx))
	if err != nil {
		return err
	}

	if ctx.Err() != nil {
		return fmt.Errorf("%w: commit: %w", domain.ErrTransient, ctx.Err())
	}

	return s.commit(tx)
}

func (s *MemoryStore) hallLock(hallID uuid.UUID) chan struct{} {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()

	lock, ok := s.locks[hallID]
	if !ok {
		lock = make(chan struct{}, 1)
		s.locks[hallID] = lock
	}

	return lock
}

func (s *MemoryStore) release(tx *memoryTx) {
	for _, hallID := range tx.locked {
		<-s.hallLock(hallID)
	}
	tx.locked = nil
}

func (s *MemoryStore) commit(tx *memoryTx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for showID, delta := range tx.deltas {
		show, ok := s.shows[showID]
		if !ok {
			return domain.ErrRecordNotFound
		}

		if show.AvailableSeats+delta < 0 {
			return fmt.Errorf("%w: %d available, %d requested", domain.ErrUnderflow, show.AvailableSeats, -delta)
		}
	}

	for hallID := range tx.cells {
		if _, ok := s.halls[hallID]; !ok {
			return domain.ErrRecordNotFound
		}
	}

	staged := make(map[uuid.UUID]map[domain.Seat]struct{})
	for _, b := range tx.bookings {
		if staged[b.ShowID] == nil {
			staged[b.ShowID] = make(map[domain.Seat]struct{})
		}

		for _, seat := range b.Seats {
			if _, ok := s.taken[b.ShowID][seat]; ok {
				return fmt.Errorf("%w: seat %s", domain.ErrSeatConflict, seat)
			}

			if _, ok := staged[b.ShowID][seat]; ok {
				return fmt.Errorf("%w: seat %s", domain.ErrSeatConflict, seat)
			}
			staged[b.ShowID][seat] = struct{}{}
		}
	}

	for hallID, cells := range tx.cells {
		hall := s.halls[hallID]
		grid := hall.Grid.Clone()
		for seat, state := range cells {
			grid[seat.Row][seat.Col] = state
		}
		hall.Grid = grid
	}

	for showID, delta := range tx.deltas {
		s.shows[showID].AvailableSeats += delta
	}

	for _, b := range tx.bookings {
		booking := b
		s.bookings[booking.ID] = &booking
		s.byShow[booking.ShowID] = append(s.byShow[booking.ShowID], booking.ID)

		if s.taken[booking.ShowID] == nil {
			s.taken[booking.ShowID] = make(map[domain.Seat]uuid.UUID)
		}

		for _, seat := range booking.Seats {
			s.taken[booking.ShowID][seat] = booking.ID
		}
	}

	return nil
}

func (s *MemoryStore) CreateHall(ctx context.Context, hall *domain.Hall) error {
	err := hall.Grid.Validate()
	if err != nil {
		return err
	}

	if hall.ID == uuid.Nil {
		hall.ID = uuid.New()
	}

	if hall.CreatedAt.IsZero() {
		hall.CreatedAt = s.now().UTC()
	}

	stored := *hall
	stored.Grid = hall.Grid.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.halls[hall.ID] = &stored

	return nil
}

func (s *MemoryStore) GetHall(ctx context.Context, hallID uuid.UUID) (*domain.Hall, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	hall, ok := s.halls[hallID]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}

	clone := *hall
	clone.Grid = hall.Grid.Clone()

	return &clone, nil
}

// GetGrid returns the committed grid, overlaid with the writes staged by the
// surrounding unit of work.
func (s *MemoryStore) GetGrid(ctx context.Context, hallID uuid.UUID) (domain.SeatGrid, error) {
	s.mu.RLock()
	hall, ok := s.halls[hallID]
	var grid domain.SeatGrid
	if ok {
		grid = hall.Grid.Clone()
	}
	s.mu.RUnlock()

	if !ok {
		return nil, domain.ErrRecordNotFound
	}

	if tx := memoryTxFromContext(ctx); tx != nil {
		for seat, state := range tx.cells[hallID] {
			grid[seat.Row][seat.Col] = state
		}
	}

	return grid, nil
}

func (s *MemoryStore) hallExists(hallID uuid.UUID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.halls[hallID]
	return ok
}

func (s *MemoryStore) LockHall(ctx context.Context, hallID uuid.UUID) error {
	tx := memoryTxFromContext(ctx)
	if tx == nil {
		return errNoUnitOfWork
	}

	if tx.holds(hallID) {
		return nil
	}

	if !s.hallExists(hallID) {
		return domain.ErrRecordNotFound
	}

	select {
	case s.hallLock(hallID) <- struct{}{}:
		tx.locked = append(tx.locked, hallID)
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: waiting for hall lock: %w", domain.ErrTransient, ctx.Err())
	}
}

func (s *MemoryStore) SetCells(ctx context.Context, hallID uuid.UUID, seats []domain.Seat, state domain.SeatState) error {
	tx := memoryTxFromContext(ctx)
	if tx == nil {
		return s.RunInTx(ctx, func(ctx context.Context) error {
			err := s.LockHall(ctx, hallID)
			if err != nil {
				return err
			}

			return s.SetCells(ctx, hallID, seats, state)
		})
	}

	grid, err := s.GetGrid(ctx, hallID)
	if err != nil {
		return err
	}

	err = grid.CheckBounds(seats)
	if err != nil {
		return err
	}

	if tx.cells[hallID] == nil {
		tx.cells[hallID] = make(map[domain.Seat]domain.SeatState)
	}

	for _, seat := range seats {
		tx.cells[hallID][seat] = state
	}

	return nil
}

func (s *MemoryStore) CreateShow(ctx context.Context, show *domain.Show) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	hall, ok := s.halls[show.HallID]
	if !ok {
		return domain.ErrRecordNotFound
	}

	if show.ID == uuid.Nil {
		show.ID = uuid.New()
	}

	if show.CreatedAt.IsZero() {
		show.CreatedAt = s.now().UTC()
	}

	show.AvailableSeats = hall.Grid.CountFree()

	stored := *show
	s.shows[show.ID] = &stored

	return nil
}

func (s *MemoryStore) GetShow(ctx context.Context, showID uuid.UUID) (*domain.Show, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	show, ok := s.shows[showID]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}

	clone := *show

	return &clone, nil
}

// DecrementAvailable lowers the counter of every show screened in the hall of showID,
// since they all share its grid.
func (s *MemoryStore) DecrementAvailable(ctx context.Context, showID uuid.UUID, n int) (int, error) {
	if n < 0 {
		return 0, fmt.Errorf("cannot decrement available seats by %d", n)
	}

	tx := memoryTxFromContext(ctx)
	if tx == nil {
		var available int

		err := s.RunInTx(ctx, func(ctx context.Context) error {
			var err error
			available, err = s.DecrementAvailable(ctx, showID, n)
			return err
		})

		return available, err
	}

	s.mu.RLock()
	show, ok := s.shows[showID]
	var (
		siblings []domain.Show
		base     int
	)
	if ok {
		base = show.AvailableSeats
		for _, other := range s.shows {
			if other.HallID == show.HallID {
				siblings = append(siblings, *other)
			}
		}
	}
	s.mu.RUnlock()

	if !ok {
		return 0, domain.ErrRecordNotFound
	}

	for _, sibling := range siblings {
		current := sibling.AvailableSeats + tx.deltas[sibling.ID]
		if n > current {
			return 0, fmt.Errorf("%w: %d available, %d requested", domain.ErrUnderflow, current, n)
		}
	}

	for _, sibling := range siblings {
		tx.deltas[sibling.ID] -= n
	}

	return base + tx.deltas[showID], nil
}

func (s *MemoryStore) GetShowtimesForMovie(ctx context.Context, movieID uuid.UUID) ([]domain.ShowtimeSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshots := make([]domain.ShowtimeSnapshot, 0)

	for _, show := range s.shows {
		if show.MovieID != movieID {
			continue
		}

		hall := s.halls[show.HallID]

		snapshots = append(snapshots, domain.ShowtimeSnapshot{
			Show:     *show,
			HallName: hall.Name,
			Grid:     hall.Grid.Clone(),
		})
	}

	slices.SortFunc(snapshots, func(a, b domain.ShowtimeSnapshot) int {
		if c := a.Show.Showtime.Compare(b.Show.Showtime); c != 0 {
			return c
		}

		return slices.Compare(a.Show.ID[:], b.Show.ID[:])
	})

	return snapshots, nil
}

func (s *MemoryStore) RecordBooking(ctx context.Context, booking *domain.Booking) (uuid.UUID, error) {
	tx := memoryTxFromContext(ctx)
	if tx == nil {
		var id uuid.UUID

		err := s.RunInTx(ctx, func(ctx context.Context) error {
			var err error
			id, err = s.RecordBooking(ctx, booking)
			return err
		})

		return id, err
	}

	s.mu.RLock()
	_, ok := s.shows[booking.ShowID]
	var conflict *domain.Seat
	for _, seat := range booking.Seats {
		if _, taken := s.taken[booking.ShowID][seat]; taken {
			conflict = &seat
			break
		}
	}
	s.mu.RUnlock()

	if !ok {
		return uuid.Nil, domain.ErrRecordNotFound
	}

	if conflict != nil {
		return uuid.Nil, fmt.Errorf("%w: seat %s", domain.ErrSeatConflict, *conflict)
	}

	if booking.ID == uuid.Nil {
		booking.ID = uuid.New()
	}

	if booking.CreatedAt.IsZero() {
		booking.CreatedAt = s.now().UTC()
	}

	staged := *booking
	staged.Seats = append([]domain.Seat(nil), booking.Seats...)
	tx.bookings = append(tx.bookings, staged)

	return booking.ID, nil
}

func (s *MemoryStore) GetBooking(ctx context.Context, bookingID uuid.UUID) (*domain.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	booking, ok := s.bookings[bookingID]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}

	clone := *booking
	clone.Seats = append([]domain.Seat(nil), booking.Seats...)

	return &clone, nil
}

func (s *MemoryStore) ListBookingsByShow(ctx context.Context, showID uuid.UUID) ([]domain.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bookings := make([]domain.Booking, 0, len(s.byShow[showID]))
	for _, id := range s.byShow[showID] {
		booking := *s.bookings[id]
		booking.Seats = append([]domain.Seat(nil), booking.Seats...)
		bookings = append(bookings, booking)
	}

	return bookings, nil
}
