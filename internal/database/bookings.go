package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"nailsxlauren/internal/domain"
	"nailsxlauren/internal/metrics"
	apperrors "nailsxlauren/pkg/errors"

	"gorm.io/gorm"
)

// searchColumns are matched case-insensitively by List.
var searchColumns = []string{
	"full_name",
	"phone_number",
	"email",
	"message",
	"preferred_date",
	"preferred_time",
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// BookingRepository persists bookings through GORM.
type BookingRepository struct {
	db *gorm.DB
}

// NewBookingRepository creates a booking repository
func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// Create inserts a booking.
func (r *BookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	start := time.Now()
	err := r.db.WithContext(ctx).Create(b).Error
	metrics.RecordDBQuery("booking_create", time.Since(start), err)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrCodeInternalError, "failed to save booking", err)
	}
	return nil
}

// List returns one page of bookings matching search, newest first, and the total match count.
func (r *BookingRepository) List(ctx context.Context, search string, offset, limit int) ([]domain.Booking, int64, error) {
	start := time.Now()
	var (
		count    int64
		bookings []domain.Booking
	)

	err := r.filtered(ctx, search).Count(&count).Error
	if err == nil && count > 0 {
		err = r.filtered(ctx, search).
			Order("created_on DESC").
			Order("id DESC").
			Offset(offset).
			Limit(limit).
			Find(&bookings).Error
	}
	metrics.RecordDBQuery("booking_list", time.Since(start), err)
	if err != nil {
		return nil, 0, apperrors.Wrap(apperrors.ErrCodeInternalError, "failed to list bookings", err)
	}
	if bookings == nil {
		bookings = []domain.Booking{}
	}
	return bookings, count, nil
}

func (r *BookingRepository) filtered(ctx context.Context, search string) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&domain.Booking{})
	term := strings.TrimSpace(search)
	if term == "" {
		return q
	}

	pattern := "%" + likeEscaper.Replace(term) + "%"
	clauses := make([]string, len(searchColumns))
	args := make([]any, len(searchColumns))
	for i, col := range searchColumns {
		clauses[i] = fmt.Sprintf(`LOWER(COALESCE(%s, '')) LIKE LOWER(?) ESCAPE '\'`, col)
		args[i] = pattern
	}
	return q.Where(strings.Join(clauses, " OR "), args...)
}

// Get loads one booking.
func (r *BookingRepository) Get(ctx context.Context, id string) (*domain.Booking, error) {
	start := time.Now()
	var b domain.Booking
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&b).Error
	metrics.RecordDBQuery("booking_get", time.Since(start), err)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.ErrCodeNotFound, "booking not found")
		}
		return nil, apperrors.Wrap(apperrors.ErrCodeInternalError, "failed to load booking", err)
	}
	return &b, nil
}

// Delete removes exactly one booking. A missing row is reported as NOT_FOUND.
func (r *BookingRepository) Delete(ctx context.Context, id string) error {
	start := time.Now()
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Booking{})
	metrics.RecordDBQuery("booking_delete", time.Since(start), res.Error)
	if res.Error != nil {
		return apperrors.Wrap(apperrors.ErrCodeInternalError, "failed to delete booking", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.New(apperrors.ErrCodeNotFound, "booking not found")
	}
	return nil
}

// UpdateSchedule sets the preferred date and time. Nil clears a field.
func (r *BookingRepository) UpdateSchedule(ctx context.Context, id string, date, clock *string) (*domain.Booking, error) {
	start := time.Now()
	res := r.db.WithContext(ctx).
		Model(&domain.Booking{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"preferred_date": date,
			"preferred_time": clock,
		})
	metrics.RecordDBQuery("booking_update", time.Since(start), res.Error)
	if res.Error != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternalError, "failed to update booking", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperrors.New(apperrors.ErrCodeNotFound, "booking not found")
	}
	return r.Get(ctx, id)
}
