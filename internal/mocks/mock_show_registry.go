package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/metinatakli/cinex/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockShowRegistry struct {
	mock.Mock
}

func (m *MockShowRegistry) CreateShow(ctx context.Context, show *domain.Show) error {
	args := m.Called(ctx, show)
	return args.Error(0)
}

func (m *MockShowRegistry) GetShow(ctx context.Context, showID uuid.UUID) (*domain.Show, error) {
	args := m.Called(ctx, showID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.Show), args.Error(1)
}

func (m *MockShowRegistry) DecrementAvailable(ctx context.Context, showID uuid.UUID, n int) (int, error) {
	args := m.Called(ctx, showID, n)
	return args.Int(0), args.Error(1)
}

func (m *MockShowRegistry) GetShowtimesForMovie(ctx context.Context, movieID uuid.UUID) ([]domain.ShowtimeSnapshot, error) {
	args := m.Called(ctx, movieID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.ShowtimeSnapshot), args.Error(1)
}
