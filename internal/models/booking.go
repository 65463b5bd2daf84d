package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BookingStatus string

const (
	BookingPending  BookingStatus = "pending"
	BookingAccepted BookingStatus = "accepted"
	BookingRejected BookingStatus = "rejected"
	BookingWaitlist BookingStatus = "waitlist"
)

// bookingTransitions is the full status graph. accepted and rejected are
// terminal: a finally decided reservation cannot be reopened.
var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingPending:  {BookingAccepted, BookingRejected, BookingWaitlist},
	BookingWaitlist: {BookingAccepted, BookingRejected},
}

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingAccepted, BookingRejected, BookingWaitlist:
		return true
	}
	return false
}

// CanTransitionTo reports whether the status graph has an edge from s to
// target. Self-transitions are not edges.
func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	for _, next := range bookingTransitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// Booking is a student's reservation request against a listing. Status and
// payment verification are independent axes: who decides them, and when,
// differ, so every combination of the two is a legal state.
type Booking struct {
	ID                uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	ListingID         uuid.UUID      `gorm:"type:uuid;not null;index" json:"listing_id"`
	Listing           *Listing       `gorm:"foreignKey:ListingID" json:"listing,omitempty"`
	UserID            uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	User              *User          `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Quantity          int            `gorm:"not null" json:"quantity"`
	Amount            int            `gorm:"not null" json:"amount"`
	Status            BookingStatus  `gorm:"type:varchar(20);not null" json:"status"`
	PaymentID         *string        `json:"payment_id,omitempty"`
	PaymentScreenshot *string        `json:"payment_screenshot,omitempty"`
	PaymentVerified   bool           `gorm:"not null" json:"payment_verified"`
	PaymentVerifiedAt *time.Time     `json:"payment_verified_at,omitempty"`
	VerificationNotes *string        `json:"verification_notes,omitempty"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"-"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`
}

func (booking *Booking) BeforeCreate(tx *gorm.DB) (err error) {
	if booking.ID == uuid.Nil {
		booking.ID = uuid.New()
	}
	return
}

// HasPaymentEvidence reports whether the student has submitted anything an
// admin could verify.
func (booking *Booking) HasPaymentEvidence() bool {
	return (booking.PaymentID != nil && *booking.PaymentID != "") ||
		(booking.PaymentScreenshot != nil && *booking.PaymentScreenshot != "")
}
