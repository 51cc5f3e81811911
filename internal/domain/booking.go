package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Booking represents a booking request submitted through the website
type Booking struct {
	ID               string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Reference        string    `gorm:"index;not null" json:"reference"`
	FullName         string    `gorm:"not null" json:"full_name"`
	PhoneNumber      string    `gorm:"not null" json:"phone_number"`
	Email            *string   `json:"email"`
	Message          *string   `gorm:"type:text" json:"message"`
	PreferredDate    *string   `json:"preferred_date"`
	PreferredTime    *string   `json:"preferred_time"`
	SelectedServices string    `json:"selected_services"` // comma-joined catalog ids
	InitPrice        *float64  `json:"init_price"`
	PriceRangeMin    *float64  `json:"price_range_min"`
	PriceRangeMax    *float64  `json:"price_range_max"`
	CreatedOn        time.Time `gorm:"index;not null" json:"created_on"`
}

// TableName specifies the table name for Booking
func (Booking) TableName() string {
	return "bookings"
}

// BeforeCreate assigns the identifier and creation time when unset.
// UUIDv7 keeps ids ordered by creation, which the list order relies on for ties.
func (b *Booking) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("generate booking id: %w", err)
		}
		b.ID = id.String()
	}
	if b.CreatedOn.IsZero() {
		b.CreatedOn = time.Now().UTC()
	}
	return nil
}

// NewReference builds the human-readable booking reference.
func NewReference(t time.Time) string {
	return fmt.Sprintf("BK-%d", t.UnixMilli())
}

// StringPtr returns nil for an empty string.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Deref returns the pointed-to string or "".
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
