package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/metinatakli/cinex/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockSeatGridStore struct {
	mock.Mock
}

func (m *MockSeatGridStore) CreateHall(ctx context.Context, hall *domain.Hall) error {
	args := m.Called(ctx, hall)
	return args.Error(0)
}

func (m *MockSeatGridStore) GetHall(ctx context.Context, hallID uuid.UUID) (*domain.Hall, error) {
	args := m.Called(ctx, hallID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.Hall), args.Error(1)
}

func (m *MockSeatGridStore) GetGrid(ctx context.Context, hallID uuid.UUID) (domain.SeatGrid, error) {
	args := m.Called(ctx, hallID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(domain.SeatGrid), args.Error(1)
}

func (m *MockSeatGridStore) LockHall(ctx context.Context, hallID uuid.UUID) error {
	args := m.Called(ctx, hallID)
	return args.Error(0)
}

func (m *MockSeatGridStore) SetCells(ctx context.Context, hallID uuid.UUID, seats []domain.Seat, state domain.SeatState) error {
	args := m.Called(ctx, hallID, seats, state)
	return args.Error(0)
}
