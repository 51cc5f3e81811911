package services

import (
	"bytes"
	"context"
	"strconv"
	"strings"
	"time"

	"nailsxlauren/internal/domain"
	"nailsxlauren/internal/export"
	"nailsxlauren/internal/metrics"
	apperrors "nailsxlauren/pkg/errors"

	"github.com/rs/zerolog"
)

// Paging defaults for the admin list
const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 200
)

// Client-facing admin messages
const (
	MsgDBError          = "DB error"
	MsgMissingID        = "Missing booking id"
	MsgBookingNotFound  = "Booking not found"
	MsgBookingDeleted   = "Booking deleted successfully"
	MsgBookingUpdated   = "Booking updated successfully"
	MsgDeleteFailed     = "Failed to delete booking"
	MsgUpdateFailed     = "Failed to update booking"
	MsgUnsupportedFmt   = "Unsupported export format"
	MsgUnsupportedRange = "Unsupported export range"
	MsgExportFailed     = "Failed to export bookings"
)

// ListPayload selects one page of bookings
type ListPayload struct {
	Search string
	Page   int
	Limit  int
}

// ListResult is one page of bookings plus paging totals
type ListResult struct {
	Data       []domain.Booking `json:"data"`
	Count      int64            `json:"count"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
	TotalPages int              `json:"totalPages"`
}

// DeleteResult confirms a delete
type DeleteResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ReschedulePayload changes the preferred date and time of a booking.
// Nil or blank values clear the field.
type ReschedulePayload struct {
	ID            string  `json:"id"`
	PreferredDate *string `json:"preferred_date"`
	PreferredTime *string `json:"preferred_time"`
}

// RescheduleResult returns the updated booking
type RescheduleResult struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    *domain.Booking `json:"data"`
}

// ExportPayload selects the page to export plus its format and range
type ExportPayload struct {
	ListPayload
	Format string
	Range  string
}

// ExportFile is a rendered download
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
	Rows        int
}

// BookingAdminService backs the admin dashboard
type BookingAdminService struct {
	store BookingStore
	log   zerolog.Logger
	now   func() time.Time
}

// NewBookingAdminService creates a new admin booking service
func NewBookingAdminService(store BookingStore, log zerolog.Logger) *BookingAdminService {
	return &BookingAdminService{store: store, log: log, now: time.Now}
}

// ParseListParams reads search, page and limit from raw query values.
// Missing or unparseable numbers fall back to the defaults.
func ParseListParams(search, page, limit string) *ListPayload {
	p := &ListPayload{Search: search, Page: DefaultPage, Limit: DefaultLimit}
	if n, err := strconv.Atoi(strings.TrimSpace(page)); err == nil {
		p.Page = n
	}
	if n, err := strconv.Atoi(strings.TrimSpace(limit)); err == nil {
		p.Limit = n
	}
	return p
}

// NormalizePaging floors page at 1 and clamps limit to [1, MaxLimit].
func NormalizePaging(page, limit int) (int, int) {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = 1
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return page, limit
}

// TotalPages is ceil(count/limit), or 0 when nothing matched.
func TotalPages(count int64, limit int) int {
	if count <= 0 || limit <= 0 {
		return 0
	}
	return int((count + int64(limit) - 1) / int64(limit))
}

// List returns a page of bookings, newest first, filtered by search
func (s *BookingAdminService) List(ctx context.Context, p *ListPayload) (*ListResult, error) {
	if p == nil {
		p = &ListPayload{Page: DefaultPage, Limit: DefaultLimit}
	}
	page, limit := NormalizePaging(p.Page, p.Limit)
	search := strings.TrimSpace(p.Search)
	offset := (page - 1) * limit

	s.log.Debug().Str("search", search).Int("page", page).Int("limit", limit).Msg("booking list request")

	rows, count, err := s.store.List(ctx, search, offset, limit)
	if err != nil {
		s.log.Error().Err(err).Msg("booking list failed")
		metrics.RecordStoreFailure("list")
		return nil, Internal(MsgDBError, err)
	}
	if rows == nil {
		rows = []domain.Booking{}
	}

	return &ListResult{
		Data:       rows,
		Count:      count,
		Page:       page,
		Limit:      limit,
		TotalPages: TotalPages(count, limit),
	}, nil
}

// Delete removes one booking. A missing row is a server error, not a 404.
func (s *BookingAdminService) Delete(ctx context.Context, id string) (*DeleteResult, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, BadRequest(MsgMissingID)
	}

	if err := s.store.Delete(ctx, id); err != nil {
		s.log.Error().Err(err).Str("id", id).Msg("booking delete failed")
		metrics.RecordStoreFailure("delete")
		return nil, Internal(MsgDeleteFailed, err)
	}

	s.log.Info().Str("id", id).Msg("booking deleted")
	return &DeleteResult{Success: true, Message: MsgBookingDeleted}, nil
}

// Reschedule updates the preferred date and time of a booking
func (s *BookingAdminService) Reschedule(ctx context.Context, p *ReschedulePayload) (*RescheduleResult, error) {
	if p == nil || strings.TrimSpace(p.ID) == "" {
		return nil, BadRequest(MsgMissingID)
	}
	id := strings.TrimSpace(p.ID)

	b, err := s.store.UpdateSchedule(ctx, id, blankToNil(p.PreferredDate), blankToNil(p.PreferredTime))
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, NotFound(MsgBookingNotFound)
		}
		s.log.Error().Err(err).Str("id", id).Msg("booking update failed")
		metrics.RecordStoreFailure("update")
		return nil, Internal(MsgUpdateFailed, err)
	}

	s.log.Info().Str("id", id).Msg("booking rescheduled")
	return &RescheduleResult{Success: true, Message: MsgBookingUpdated, Data: b}, nil
}

// Export renders the same page List would return, narrowed to a created-on range.
func (s *BookingAdminService) Export(ctx context.Context, p *ExportPayload) (*ExportFile, error) {
	if p == nil {
		p = &ExportPayload{ListPayload: ListPayload{Page: DefaultPage, Limit: DefaultLimit}}
	}
	format, err := export.ParseFormat(p.Format)
	if err != nil {
		return nil, BadRequest(MsgUnsupportedFmt)
	}
	window, err := export.ParseRange(p.Range)
	if err != nil {
		return nil, BadRequest(MsgUnsupportedRange)
	}

	page, err := s.List(ctx, &p.ListPayload)
	if err != nil {
		return nil, err
	}
	rows := export.Filter(page.Data, window, s.now().UTC())

	var buf bytes.Buffer
	if err := export.Write(&buf, format, rows); err != nil {
		s.log.Error().Err(err).Str("format", string(format)).Msg("booking export failed")
		return nil, Internal(MsgExportFailed, err)
	}

	s.log.Info().Str("format", string(format)).Str("range", string(window)).Int("rows", len(rows)).Msg("bookings exported")
	return &ExportFile{
		Filename:    export.Filename(format, page.Page),
		ContentType: format.ContentType(),
		Body:        buf.Bytes(),
		Rows:        len(rows),
	}, nil
}

func blankToNil(s *string) *string {
	if s == nil {
		return nil
	}
	return domain.StringPtr(strings.TrimSpace(*s))
}
