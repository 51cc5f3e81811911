package database

import (
	"context"

	"nailsxlauren/internal/domain"
	apperrors "nailsxlauren/pkg/errors"
)

// ErrUnavailable is returned by OfflineBookings for every operation.
var ErrUnavailable = apperrors.New(apperrors.ErrCodeUnavailable, "database unavailable")

// OfflineBookings stands in for BookingRepository when the database could not
// be opened at startup. Intake still notifies the operator; every store call fails.
type OfflineBookings struct{}

func (OfflineBookings) Create(context.Context, *domain.Booking) error {
	return ErrUnavailable
}

func (OfflineBookings) List(context.Context, string, int, int) ([]domain.Booking, int64, error) {
	return nil, 0, ErrUnavailable
}

func (OfflineBookings) Delete(context.Context, string) error {
	return ErrUnavailable
}

func (OfflineBookings) UpdateSchedule(context.Context, string, *string, *string) (*domain.Booking, error) {
	return nil, ErrUnavailable
}
