package services

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/phpdave11/gofpdf"
	"gorm.io/gorm"

	"github.com/nileshpandey4/campusdesk/internal/models"
)

// ReceiptService renders a payment receipt PDF for a booking whose payment
// an admin has verified.
type ReceiptService struct {
	DB *gorm.DB
}

// Generate returns the PDF bytes and a suggested filename. Only the booking's
// student or an admin may download it, and only once the payment is verified.
func (s *ReceiptService) Generate(actor Actor, bookingID uuid.UUID) ([]byte, string, error) {
	var booking models.Booking
	err := s.DB.Preload("Listing").Preload("User").First(&booking, "id = ?", bookingID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrBookingNotFound
		}
		return nil, "", err
	}

	if !actor.IsAdmin() && booking.UserID != actor.ID {
		return nil, "", ErrForbidden
	}
	if !booking.PaymentVerified {
		return nil, "", ErrNotVerified
	}

	data, err := renderReceipt(&booking)
	if err != nil {
		return nil, "", err
	}
	filename := fmt.Sprintf("receipt-%s.pdf", booking.ID.String())
	return data, filename, nil
}

func renderReceipt(booking *models.Booking) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Payment Receipt", false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "PAYMENT RECEIPT")
	pdf.Ln(12)

	studentName := "-"
	if booking.User != nil {
		studentName = booking.User.Name
	}
	listingTitle := "-"
	listingType := "-"
	if booking.Listing != nil {
		listingTitle = booking.Listing.Title
		listingType = string(booking.Listing.Type)
	}
	txnRef := "-"
	if booking.PaymentID != nil && *booking.PaymentID != "" {
		txnRef = *booking.PaymentID
	}
	verifiedAt := "-"
	if booking.PaymentVerifiedAt != nil {
		verifiedAt = booking.PaymentVerifiedAt.Format("02 Jan 2006 15:04 MST")
	}

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("Booking        : %s", booking.ID.String()),
		fmt.Sprintf("Student        : %s", studentName),
		fmt.Sprintf("Service        : %s (%s)", listingTitle, listingType),
		fmt.Sprintf("Months         : %d", booking.Quantity),
		fmt.Sprintf("Amount Paid    : Rs. %d", booking.Amount),
		fmt.Sprintf("Transaction    : %s", txnRef),
		fmt.Sprintf("Verified At    : %s", verifiedAt),
		fmt.Sprintf("Booking Status : %s", booking.Status),
	}
	for _, line := range lines {
		pdf.Cell(0, 7, line)
		pdf.Ln(7)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.Cell(0, 6, "Payment verified by the CampusDesk team. Keep this receipt for your records.")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
