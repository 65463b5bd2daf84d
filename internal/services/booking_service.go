package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nileshpandey4/campusdesk/internal/models"
	"github.com/nileshpandey4/campusdesk/internal/storage"
)

// BookingService owns the booking lifecycle: creation, the status state
// machine, payment evidence and its verification, and the role-scoped query
// surface. Every state-changing write is a guarded single-statement UPDATE so
// two racing callers resolve to exactly one winner.
type BookingService struct {
	DB    *gorm.DB
	Blobs storage.BlobStore
}

type CreateBookingInput struct {
	ListingID      uuid.UUID
	Quantity       int
	PaymentID      *string
	Screenshot     []byte
	ScreenshotName string
}

// Create opens a reservation request in the pending state. Amount is a
// snapshot of listing price x quantity; later price edits on the listing
// never touch existing bookings.
func (s *BookingService) Create(actor Actor, in CreateBookingInput) (*models.Booking, error) {
	if !actor.IsStudent() {
		return nil, ErrForbidden
	}
	if in.Quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	var listing models.Listing
	if err := s.DB.First(&listing, "id = ?", in.ListingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	booking := models.Booking{
		ID:        uuid.New(),
		ListingID: listing.ID,
		UserID:    actor.ID,
		Quantity:  in.Quantity,
		Amount:    listing.Price * in.Quantity,
		Status:    models.BookingPending,
	}

	if in.PaymentID != nil && *in.PaymentID != "" {
		booking.PaymentID = in.PaymentID
	}
	if len(in.Screenshot) > 0 {
		url, err := s.Blobs.Save(in.Screenshot, in.ScreenshotName)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
		}
		booking.PaymentScreenshot = &url
	}

	if err := s.DB.Create(&booking).Error; err != nil {
		return nil, err
	}

	booking.Listing = &listing
	return &booking, nil
}

// Transition moves a booking through the status graph. Authority: the
// provider owning the listing, or an admin. The write is a compare-and-swap
// on the status read above it; when two callers race, the loser re-reads and
// reports the transition it can no longer make.
func (s *BookingService) Transition(actor Actor, bookingID uuid.UUID, target models.BookingStatus) (*models.Booking, error) {
	if !target.Valid() {
		return nil, ErrInvalidTransition
	}

	var booking models.Booking
	if err := s.DB.First(&booking, "id = ?", bookingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}

	var listing models.Listing
	if err := s.DB.First(&listing, "id = ?", booking.ListingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, err
	}

	if !actor.canDecide(&listing) {
		return nil, ErrForbidden
	}
	if !booking.Status.CanTransitionTo(target) {
		return nil, ErrInvalidTransition
	}

	res := s.DB.Model(&models.Booking{}).
		Where("id = ? AND status = ?", booking.ID, booking.Status).
		Update("status", target)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		// Another writer moved the booking between our read and write.
		if err := s.DB.First(&booking, "id = ?", bookingID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrBookingNotFound
			}
			return nil, err
		}
		return nil, ErrInvalidTransition
	}

	booking.Status = target
	booking.Listing = &listing
	return &booking, nil
}

type PaymentEvidenceInput struct {
	PaymentID      *string
	Screenshot     []byte
	ScreenshotName string
}

// AttachEvidence stores the student's payment proof. Resubmission overwrites
// the supplied fields any number of times until an admin verifies the
// payment; after that the evidence is frozen. The blob upload happens before
// the guarded write so no database lock is held while waiting on it.
func (s *BookingService) AttachEvidence(actor Actor, bookingID uuid.UUID, in PaymentEvidenceInput) (*models.Booking, error) {
	var booking models.Booking
	if err := s.DB.First(&booking, "id = ?", bookingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}

	if booking.UserID != actor.ID {
		return nil, ErrForbidden
	}
	if booking.PaymentVerified {
		return nil, ErrAlreadyVerified
	}

	hasPaymentID := in.PaymentID != nil && *in.PaymentID != ""
	if !hasPaymentID && len(in.Screenshot) == 0 {
		return nil, ErrMissingEvidence
	}

	updates := map[string]interface{}{}
	if hasPaymentID {
		updates["payment_id"] = *in.PaymentID
	}
	if len(in.Screenshot) > 0 {
		url, err := s.Blobs.Save(in.Screenshot, in.ScreenshotName)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
		}
		updates["payment_screenshot"] = url
	}

	res := s.DB.Model(&models.Booking{}).
		Where("id = ? AND payment_verified = ?", booking.ID, false).
		Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		// Verified (or deleted) between our read and write.
		if err := s.DB.First(&booking, "id = ?", bookingID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrBookingNotFound
			}
			return nil, err
		}
		return nil, ErrAlreadyVerified
	}

	if hasPaymentID {
		booking.PaymentID = in.PaymentID
	}
	if url, ok := updates["payment_screenshot"].(string); ok {
		booking.PaymentScreenshot = &url
	}
	return &booking, nil
}

// SetPaymentVerified records the platform's trust judgment on submitted
// evidence. Admin only: providers may view evidence but not certify it.
// verified=false doubles as the explicit un-verify that unfreezes evidence.
// The call is idempotent apart from the timestamp refresh on true, and never
// touches the booking status axis.
func (s *BookingService) SetPaymentVerified(actor Actor, bookingID uuid.UUID, verified bool, notes *string) (*models.Booking, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}

	var booking models.Booking
	if err := s.DB.First(&booking, "id = ?", bookingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}

	updates := map[string]interface{}{
		"payment_verified": verified,
	}
	var verifiedAt *time.Time
	if verified {
		now := time.Now().UTC()
		verifiedAt = &now
	}
	updates["payment_verified_at"] = verifiedAt
	if notes != nil {
		updates["verification_notes"] = *notes
	}

	query := s.DB.Model(&models.Booking{})
	if verified {
		if !booking.HasPaymentEvidence() {
			return nil, ErrNoEvidence
		}
		// Guard against the evidence being cleared between read and write.
		query = query.Where("id = ? AND (payment_id IS NOT NULL OR payment_screenshot IS NOT NULL)", booking.ID)
	} else {
		query = query.Where("id = ?", booking.ID)
	}

	res := query.Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		if err := s.DB.First(&booking, "id = ?", bookingID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrBookingNotFound
			}
			return nil, err
		}
		return nil, ErrNoEvidence
	}

	booking.PaymentVerified = verified
	booking.PaymentVerifiedAt = verifiedAt
	if notes != nil {
		booking.VerificationNotes = notes
	}
	return &booking, nil
}

type BookingFilters struct {
	Status          string
	ListingID       *uuid.UUID
	PaymentVerified *bool
	Page            int
	Limit           int
}

type BookingPage struct {
	Bookings []models.Booking `json:"bookings"`
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	Limit    int              `json:"limit"`
}

// List returns bookings visible to the actor, newest first. Students see
// their own requests, providers see requests against their listings, admins
// see everything with all filters honored.
func (s *BookingService) List(actor Actor, f BookingFilters) (*BookingPage, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 10
	}

	query := s.DB.Model(&models.Booking{})

	switch {
	case actor.IsAdmin():
		if f.ListingID != nil {
			query = query.Where("listing_id = ?", *f.ListingID)
		}
	case actor.IsProvider():
		owned := s.DB.Model(&models.Listing{}).Select("id").Where("owner_id = ?", actor.ID)
		query = query.Where("listing_id IN (?)", owned)
		if f.ListingID != nil {
			query = query.Where("listing_id = ?", *f.ListingID)
		}
	default:
		// Students may not widen scope beyond their own bookings.
		if f.ListingID != nil {
			return nil, ErrForbidden
		}
		query = query.Where("user_id = ?", actor.ID)
	}

	if f.Status != "" {
		query = query.Where("status = ?", f.Status)
	}
	if f.PaymentVerified != nil {
		query = query.Where("payment_verified = ?", *f.PaymentVerified)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var bookings []models.Booking
	offset := (f.Page - 1) * f.Limit
	err := query.Preload("Listing").Preload("User").
		Order("created_at DESC").Offset(offset).Limit(f.Limit).
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}

	return &BookingPage{Bookings: bookings, Total: total, Page: f.Page, Limit: f.Limit}, nil
}

// Get fetches one booking with the same visibility rules as List.
func (s *BookingService) Get(actor Actor, bookingID uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	err := s.DB.Preload("Listing").Preload("User").First(&booking, "id = ?", bookingID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}

	switch {
	case actor.IsAdmin():
	case booking.UserID == actor.ID:
	case actor.IsProvider() && booking.Listing != nil && booking.Listing.OwnerID == actor.ID:
	default:
		return nil, ErrForbidden
	}
	return &booking, nil
}

// Delete is the administrative override outside the state machine. Soft
// delete; the record survives for audit.
func (s *BookingService) Delete(actor Actor, bookingID uuid.UUID) error {
	if !actor.IsAdmin() {
		return ErrForbidden
	}
	res := s.DB.Delete(&models.Booking{}, "id = ?", bookingID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrBookingNotFound
	}
	return nil
}
