// Package booking implements the all-or-nothing seat reservation protocol on top of
// the seat grid store, the show registry and the booking ledger.
package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/metinatakli/cinex/internal/domain"
	"github.com/shopspring/decimal"
)

const DefaultLockTimeout = 5 * time.Second

// Request is a single reservation attempt.
type Request struct {
	ShowID      string
	Seats       []domain.Seat
	RequesterID string
	// Email receives the ticket once the booking has committed. Optional.
	Email string
}

// Result describes a committed reservation.
type Result struct {
	Booking        domain.Booking
	Show           domain.Show
	AvailableSeats int
	Grid           domain.SeatGrid
	Email          string
}

// AfterCommitFunc runs once a reservation has been committed. It never runs inside the
// unit of work and cannot change the outcome of the reservation.
type AfterCommitFunc func(ctx context.Context, res *Result)

type Coordinator struct {
	uow         domain.UnitOfWork
	grids       domain.SeatGridStore
	shows       domain.ShowRegistry
	ledger      domain.BookingLedger
	logger      *slog.Logger
	lockTimeout time.Duration
	afterCommit []AfterCommitFunc
	cache       SeatMapCache
	metrics     *metrics
	now         func() time.Time
}

type Option func(*Coordinator)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) {
		c.logger = logger
	}
}

// WithLockTimeout bounds how long a reservation may wait for and hold the hall lock.
func WithLockTimeout(d time.Duration) Option {
	return func(c *Coordinator) {
		if d > 0 {
			c.lockTimeout = d
		}
	}
}

func WithAfterCommit(fns ...AfterCommitFunc) Option {
	return func(c *Coordinator) {
		c.afterCommit = append(c.afterCommit, fns...)
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) {
		c.now = now
	}
}

func NewCoordinator(
	uow domain.UnitOfWork,
	grids domain.SeatGridStore,
	shows domain.ShowRegistry,
	ledger domain.BookingLedger,
	opts ...Option) *Coordinator {

	c := &Coordinator{
		uow:         uow,
		grids:       grids,
		shows:       shows,
		ledger:      ledger,
		logger:      slog.Default(),
		lockTimeout: DefaultLockTimeout,
		metrics:     newMetrics(),
		now:         time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Reserve books every seat in req.Seats for the show or none of them.
func (c *Coordinator) Reserve(ctx context.Context, req Request) (_ *Result, err error) {
	start := time.Now()
	defer func() {
		c.metrics.observe(ctx, outcome(err), len(req.Seats), time.Since(start))
	}()

	logger := c.logger.With("show_id", req.ShowID, "requester_id", req.RequesterID)

	showID, err := domain.ParseID(req.ShowID)
	if err != nil {
		return nil, err
	}

	err = validateSeats(req.Seats)
	if err != nil {
		return nil, err
	}

	show, err := c.shows.GetShow(ctx, showID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return nil, err
		}

		return nil, c.failed(ctx, logger, fmt.Errorf("%w: resolve show: %w", domain.ErrTransient, err))
	}

	var res *Result

	txCtx, cancel := context.WithTimeout(ctx, c.lockTimeout)
	defer cancel()

	err = c.uow.RunInTx(txCtx, func(ctx context.Context) error {
		var err error
		res, err = c.reserveInTx(ctx, show, req)
		return err
	})
	if err != nil {
		return nil, c.classify(ctx, logger, err)
	}

	c.metrics.committed(ctx, len(req.Seats))

	logger.Info("booking committed",
		"booking_id", res.Booking.ID,
		"seats", len(res.Booking.Seats),
		"available_seats", res.AvailableSeats)

	for _, fn := range c.afterCommit {
		fn(context.WithoutCancel(ctx), res)
	}

	return res, nil
}

func (c *Coordinator) reserveInTx(ctx context.Context, show *domain.Show, req Request) (*Result, error) {
	err := c.grids.LockHall(ctx, show.HallID)
	if err != nil {
		return nil, err
	}

	grid, err := c.grids.GetGrid(ctx, show.HallID)
	if err != nil {
		return nil, err
	}

	err = grid.CheckBounds(req.Seats)
	if err != nil {
		return nil, err
	}

	for _, s := range req.Seats {
		if grid.State(s) != domain.SeatFree {
			return nil, fmt.Errorf("%w: seat %s", domain.ErrSeatConflict, s)
		}
	}

	err = c.grids.SetCells(ctx, show.HallID, req.Seats, domain.SeatBooked)
	if err != nil {
		return nil, err
	}

	booking := domain.Booking{
		ShowID:      show.ID,
		Seats:       append([]domain.Seat(nil), req.Seats...),
		RequesterID: req.RequesterID,
		TotalPrice:  show.TicketPrice.Mul(decimal.NewFromInt(int64(len(req.Seats)))),
		CreatedAt:   c.now().UTC(),
	}

	bookingID, err := c.ledger.RecordBooking(ctx, &booking)
	if err != nil {
		return nil, err
	}
	booking.ID = bookingID

	available, err := c.shows.DecrementAvailable(ctx, show.ID, len(req.Seats))
	if err != nil {
		return nil, err
	}

	for _, s := range req.Seats {
		grid[s.Row][s.Col] = domain.SeatBooked
	}

	updated := *show
	updated.AvailableSeats = available

	return &Result{
		Booking:        booking,
		Show:           updated,
		AvailableSeats: available,
		Grid:           grid,
		Email:          req.Email,
	}, nil
}

// classify maps a failed unit of work onto the error taxonomy callers switch on.
func (c *Coordinator) classify(ctx context.Context, logger *slog.Logger, err error) error {
	switch {
	case errors.Is(err, domain.ErrSeatConflict):
		c.metrics.conflict(ctx)
		logger.Warn("seat conflict", "error", err)
		return err
	case errors.Is(err, domain.ErrOutOfBounds),
		errors.Is(err, domain.ErrRecordNotFound),
		errors.Is(err, domain.ErrInvalidID):
		return err
	case errors.Is(err, domain.ErrUnderflow):
		c.metrics.fail(ctx, "underflow")
		logger.Error("available seat counter drifted from hall grid", "error", err)
		return err
	case errors.Is(err, domain.ErrTransient):
		return c.failed(ctx, logger, err)
	default:
		return c.failed(ctx, logger, fmt.Errorf("%w: %w", domain.ErrTransient, err))
	}
}

func (c *Coordinator) failed(ctx context.Context, logger *slog.Logger, err error) error {
	c.metrics.fail(ctx, "transient")
	logger.Error("reservation rolled back", "error", err)
	return err
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "committed"
	case errors.Is(err, domain.ErrSeatConflict):
		return "conflict"
	case errors.Is(err, domain.ErrTransient), errors.Is(err, domain.ErrUnderflow):
		return "failed"
	default:
		return "rejected"
	}
}

func validateSeats(seats []domain.Seat) error {
	if len(seats) == 0 {
		return domain.ErrNoSeats
	}

	seen := make(map[domain.Seat]struct{}, len(seats))
	for _, s := range seats {
		if s.Row < 0 || s.Col < 0 {
			return fmt.Errorf("%w: seat %s", domain.ErrOutOfBounds, s)
		}

		if _, ok := seen[s]; ok {
			return fmt.Errorf("%w: seat %s", domain.ErrDuplicateSeat, s)
		}
		seen[s] = struct{}{}
	}

	return nil
}
