package domain

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type SeatState string

const (
	SeatFree   SeatState = "free"
	SeatBooked SeatState = "booked"
)

// Seat is a (row, column) coordinate inside a hall's seat grid.
type Seat struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (s Seat) String() string {
	return fmt.Sprintf("(%d,%d)", s.Row, s.Col)
}

// SeatGrid holds the per-seat state of a hall, row by row. Its shape is fixed when
// the hall is created.
type SeatGrid [][]SeatState

func NewSeatGrid(rows, cols int) (SeatGrid, error) {
	if rows < 1 || cols < 1 {
		return nil, ErrInvalidGrid
	}

	grid := make(SeatGrid, rows)
	for i := range grid {
		grid[i] = make([]SeatState, cols)
		for j := range grid[i] {
			grid[i][j] = SeatFree
		}
	}

	return grid, nil
}

func (g SeatGrid) Rows() int {
	return len(g)
}

func (g SeatGrid) Cols() int {
	if len(g) == 0 {
		return 0
	}

	return len(g[0])
}

func (g SeatGrid) TotalSeats() int {
	return g.Rows() * g.Cols()
}

func (g SeatGrid) InBounds(s Seat) bool {
	return s.Row >= 0 && s.Row < g.Rows() && s.Col >= 0 && s.Col < g.Cols()
}

// State returns the state of s. The caller must check bounds first.
func (g SeatGrid) State(s Seat) SeatState {
	return g[s.Row][s.Col]
}

func (g SeatGrid) CountFree() int {
	free := 0

	for _, row := range g {
		for _, state := range row {
			if state == SeatFree {
				free++
			}
		}
	}

	return free
}

func (g SeatGrid) CountBooked() int {
	return g.TotalSeats() - g.CountFree()
}

func (g SeatGrid) Clone() SeatGrid {
	if g == nil {
		return nil
	}

	clone := make(SeatGrid, len(g))
	for i, row := range g {
		clone[i] = append([]SeatState(nil), row...)
	}

	return clone
}

// Validate reports whether the grid is rectangular, non-empty and only holds known states.
func (g SeatGrid) Validate() error {
	if g.Rows() == 0 || g.Cols() == 0 {
		return ErrInvalidGrid
	}

	for _, row := range g {
		if len(row) != g.Cols() {
			return ErrInvalidGrid
		}

		for _, state := range row {
			if state != SeatFree && state != SeatBooked {
				return ErrInvalidGrid
			}
		}
	}

	return nil
}

// CheckBounds returns ErrOutOfBounds wrapped with the first coordinate that falls
// outside the grid.
func (g SeatGrid) CheckBounds(seats []Seat) error {
	for _, s := range seats {
		if !g.InBounds(s) {
			return fmt.Errorf("%w: seat %s outside %dx%d grid", ErrOutOfBounds, s, g.Rows(), g.Cols())
		}
	}

	return nil
}

// SeatGridStore persists the seat grid owned by each hall.
type SeatGridStore interface {
	CreateHall(ctx context.Context, hall *Hall) error
	GetHall(ctx context.Context, hallID uuid.UUID) (*Hall, error)
	GetGrid(ctx context.Context, hallID uuid.UUID) (SeatGrid, error)
	// LockHall takes the exclusive lock on the hall inside the current unit of work.
	LockHall(ctx context.Context, hallID uuid.UUID) error
	// SetCells changes only the given cells to state.
	SetCells(ctx context.Context, hallID uuid.UUID, seats []Seat, state SeatState) error
}
