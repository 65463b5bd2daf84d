package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/nileshpandey4/campusdesk/internal/helpers"
	"github.com/nileshpandey4/campusdesk/internal/services"
)

// AttachPaymentEvidence stores the student's manual payment proof against
// their booking. Multipart form: payment_id and/or payment_screenshot, at
// least one required. Resubmission overwrites until the admin verifies.
func AttachPaymentEvidence(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	svc, ok := bookingServiceFromContext(c)
	if !ok {
		return
	}
	bookingID, ok := bookingIDParam(c)
	if !ok {
		return
	}

	input := services.PaymentEvidenceInput{}
	if paymentID := c.PostForm("payment_id"); paymentID != "" {
		input.PaymentID = &paymentID
	}
	if screenshotFile, err := c.FormFile("payment_screenshot"); err == nil {
		data, err := helpers.ReadFormFile(screenshotFile)
		if err != nil {
			helpers.RespondWithError(c, http.StatusBadRequest, "Could not read uploaded screenshot.")
			return
		}
		input.Screenshot = data
		input.ScreenshotName = screenshotFile.Filename
	}

	booking, err := svc.AttachEvidence(actor, bookingID, input)
	if err != nil {
		RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Payment evidence submitted.",
		"booking": booking,
	})
}

type VerifyPaymentRequest struct {
	PaymentVerified *bool   `json:"payment_verified" binding:"required"`
	Notes           *string `json:"notes"`
}

// VerifyPayment records the admin's trust judgment on submitted evidence.
// Independent of booking status: an accepted booking may stay unverified and
// a rejected one may be verified (refund handled outside this system).
func VerifyPayment(c *gin.Context) {
	var req VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "payment_verified must be true or false.")
		return
	}

	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	svc, ok := bookingServiceFromContext(c)
	if !ok {
		return
	}
	bookingID, ok := bookingIDParam(c)
	if !ok {
		return
	}

	booking, err := svc.SetPaymentVerified(actor, bookingID, *req.PaymentVerified, req.Notes)
	if err != nil {
		RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Payment verification updated.",
		"booking": booking,
	})
}

// GetReceipt renders the payment receipt PDF for a verified booking.
func GetReceipt(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	bookingID, ok := bookingIDParam(c)
	if !ok {
		return
	}

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	svc := services.ReceiptService{DB: db.(*gorm.DB)}

	data, filename, err := svc.Generate(actor, bookingID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/pdf", data)
}
