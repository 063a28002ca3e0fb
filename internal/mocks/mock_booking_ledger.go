package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/metinatakli/cinex/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockBookingLedger struct {
	mock.Mock
}

func (m *MockBookingLedger) RecordBooking(ctx context.Context, booking *domain.Booking) (uuid.UUID, error) {
	args := m.Called(ctx, booking)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockBookingLedger) GetBooking(ctx context.Context, bookingID uuid.UUID) (*domain.Booking, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingLedger) ListBookingsByShow(ctx context.Context, showID uuid.UUID) ([]domain.Booking, error) {
	args := m.Called(ctx, showID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.Booking), args.Error(1)
}
