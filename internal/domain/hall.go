package domain

import (
	"time"

	"github.com/google/uuid"
)

type Hall struct {
	ID        uuid.UUID
	Name      string
	Grid      SeatGrid
	CreatedAt time.Time
}

func NewHall(name string, rows, cols int) (*Hall, error) {
	grid, err := NewSeatGrid(rows, cols)
	if err != nil {
		return nil, err
	}

	return &Hall{
		ID:   uuid.New(),
		Name: name,
		Grid: grid,
	}, nil
}
