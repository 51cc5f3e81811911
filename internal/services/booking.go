package services

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"nailsxlauren/internal/catalog"
	"nailsxlauren/internal/domain"
	"nailsxlauren/internal/metrics"

	"github.com/rs/zerolog"
)

// Client-facing intake messages
const (
	MsgMissingFields   = "Missing required fields"
	MsgNotifyFailed    = "Failed to send booking request. Please try again or contact us directly."
	MsgBookingReceived = "Booking request received! We'll contact you shortly to confirm."
)

const (
	maxNameLength    = 200
	maxMessageLength = 5000
)

// BookingStore is the persistence the booking services need.
type BookingStore interface {
	Create(ctx context.Context, b *domain.Booking) error
	List(ctx context.Context, search string, offset, limit int) ([]domain.Booking, int64, error)
	Delete(ctx context.Context, id string) error
	UpdateSchedule(ctx context.Context, id string, date, clock *string) (*domain.Booking, error)
}

// SubmitPayload is the public booking form
type SubmitPayload struct {
	FullName         string   `json:"fullName"`
	PhoneNumber      string   `json:"phoneNumber"`
	Email            string   `json:"email"`
	SelectedServices []string `json:"selectedServices"`
	PreferredDate    string   `json:"preferredDate"`
	PreferredTime    string   `json:"preferredTime"`
	Message          string   `json:"message"`
}

// SubmitResult is returned to the customer after intake
type SubmitResult struct {
	Message        string `json:"message"`
	BookingID      string `json:"bookingId"`
	EstimatedPrice string `json:"estimatedPrice,omitempty"`
}

// BookingService accepts booking requests from the public site
type BookingService struct {
	store         BookingStore
	mailer        Mailer
	catalog       *catalog.Catalog
	operatorEmail string
	log           zerolog.Logger
	now           func() time.Time
}

// NewBookingService creates a new booking intake service
func NewBookingService(store BookingStore, mailer Mailer, cat *catalog.Catalog, operatorEmail string, log zerolog.Logger) *BookingService {
	return &BookingService{
		store:         store,
		mailer:        mailer,
		catalog:       cat,
		operatorEmail: operatorEmail,
		log:           log,
		now:           time.Now,
	}
}

// Submit validates a booking, notifies the operator and stores the booking.
// The notification must succeed; the insert is best effort.
func (s *BookingService) Submit(ctx context.Context, p *SubmitPayload) (*SubmitResult, error) {
	in := normalizeSubmit(p)
	s.log.Info().Str("name", in.FullName).Int("services", len(in.SelectedServices)).Msg("booking submit request")

	if err := validateSubmit(in); err != nil {
		s.log.Info().Err(err).Msg("booking rejected")
		metrics.RecordBookingSubmission("rejected")
		return nil, err
	}

	est := s.catalog.Quote(in.SelectedServices)
	if len(est.Unknown) > 0 {
		s.log.Warn().Strs("unknown", est.Unknown).Msg("ignoring unknown services in booking")
	}

	now := s.now().UTC()
	booking := &domain.Booking{
		Reference:        domain.NewReference(now),
		FullName:         in.FullName,
		PhoneNumber:      in.PhoneNumber,
		Email:            domain.StringPtr(in.Email),
		Message:          domain.StringPtr(in.Message),
		PreferredDate:    domain.StringPtr(in.PreferredDate),
		PreferredTime:    domain.StringPtr(in.PreferredTime),
		SelectedServices: strings.Join(in.SelectedServices, ","),
		CreatedOn:        now,
	}
	if !est.Empty() {
		booking.InitPrice = floatPtr(est.Min)
		booking.PriceRangeMin = floatPtr(est.Min)
		booking.PriceRangeMax = floatPtr(est.Max)
	}

	if err := s.notify(ctx, booking, in, est); err != nil {
		s.log.Error().Err(err).Str("reference", booking.Reference).Msg("booking notification failed")
		metrics.RecordBookingSubmission("failed")
		return nil, Internal(MsgNotifyFailed, err)
	}

	if err := s.store.Create(ctx, booking); err != nil {
		s.log.Warn().Err(err).Str("reference", booking.Reference).Msg("booking notification sent but insert failed")
		metrics.RecordStoreFailure("create")
	} else {
		s.log.Info().Str("id", booking.ID).Str("reference", booking.Reference).Msg("booking stored")
	}

	metrics.RecordBookingSubmission("accepted")
	return &SubmitResult{
		Message:        MsgBookingReceived,
		BookingID:      booking.Reference,
		EstimatedPrice: est.String(),
	}, nil
}

func (s *BookingService) notify(ctx context.Context, b *domain.Booking, in *SubmitPayload, est catalog.Estimate) error {
	subject, htmlBody, textBody, err := buildBookingEmail(b, in.SelectedServices, est, s.catalog)
	if err != nil {
		return err
	}
	err = s.mailer.Send(ctx, EmailMessage{
		To:       s.operatorEmail,
		ReplyTo:  in.Email,
		Subject:  subject,
		HTMLBody: htmlBody,
		TextBody: textBody,
	})
	metrics.RecordNotification(err)
	return err
}

// normalizeSubmit trims every field and drops blank service ids.
func normalizeSubmit(p *SubmitPayload) *SubmitPayload {
	if p == nil {
		return &SubmitPayload{}
	}
	out := &SubmitPayload{
		FullName:      strings.TrimSpace(p.FullName),
		PhoneNumber:   strings.TrimSpace(p.PhoneNumber),
		Email:         strings.TrimSpace(p.Email),
		PreferredDate: strings.TrimSpace(p.PreferredDate),
		PreferredTime: strings.TrimSpace(p.PreferredTime),
		Message:       strings.TrimSpace(p.Message),
	}
	for _, id := range p.SelectedServices {
		if id = strings.TrimSpace(id); id != "" {
			out.SelectedServices = append(out.SelectedServices, id)
		}
	}
	return out
}

func validateSubmit(p *SubmitPayload) error {
	if p.FullName == "" || p.PhoneNumber == "" {
		return BadRequest(MsgMissingFields)
	}
	if utf8.RuneCountInString(p.FullName) > maxNameLength {
		return BadRequest("Name must not exceed 200 characters")
	}
	if utf8.RuneCountInString(p.Message) > maxMessageLength {
		return BadRequest("Message must not exceed 5000 characters")
	}
	return nil
}

func floatPtr(v float64) *float64 {
	return &v
}
