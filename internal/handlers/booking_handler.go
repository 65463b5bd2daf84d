package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nileshpandey4/campusdesk/internal/helpers"
	"github.com/nileshpandey4/campusdesk/internal/middleware"
	"github.com/nileshpandey4/campusdesk/internal/models"
	"github.com/nileshpandey4/campusdesk/internal/services"
)

// actorFromContext pulls the authenticated caller the JWT middleware put on
// the gin context.
func actorFromContext(c *gin.Context) (services.Actor, bool) {
	userID, exists := c.Get("user_id")
	if !exists {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User ID not found in token.")
		return services.Actor{}, false
	}
	userUUID, ok := userID.(uuid.UUID)
	if !ok {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Invalid user ID type.")
		return services.Actor{}, false
	}
	return services.Actor{ID: userUUID, Role: c.GetString("role")}, true
}

func bookingServiceFromContext(c *gin.Context) (*services.BookingService, bool) {
	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return nil, false
	}
	return &services.BookingService{
		DB:    db.(*gorm.DB),
		Blobs: middleware.GetBlobStore(c),
	}, true
}

func bookingIDParam(c *gin.Context) (uuid.UUID, bool) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid booking ID.")
		return uuid.Nil, false
	}
	return bookingID, true
}

// CreateBooking opens a reservation request. Multipart form: listing_id,
// quantity (months), optional payment_id and payment_screenshot.
func CreateBooking(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	svc, ok := bookingServiceFromContext(c)
	if !ok {
		return
	}

	listingID, err := uuid.Parse(c.PostForm("listing_id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid listing ID.")
		return
	}
	quantity, err := helpers.StringToInt(c.PostForm("quantity"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Quantity must be a number of months.")
		return
	}

	input := services.CreateBookingInput{
		ListingID: listingID,
		Quantity:  quantity,
	}
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

	booking, err := svc.Create(actor, input)
	if err != nil {
		RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Booking request submitted.",
		"booking": booking,
	})
}

// ListBookings serves role-scoped dashboards: students see their own
// requests, providers see requests against their listings, admins see all.
func ListBookings(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	svc, ok := bookingServiceFromContext(c)
	if !ok {
		return
	}

	pageNum, err := helpers.StringToInt(c.DefaultQuery("page", "1"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid page number.")
		return
	}
	limitNum, err := helpers.StringToInt(c.DefaultQuery("limit", "10"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid limit.")
		return
	}

	filters := services.BookingFilters{
		Page:  pageNum,
		Limit: limitNum,
	}

	if status := c.Query("status"); status != "" {
		if !models.BookingStatus(status).Valid() {
			helpers.RespondWithError(c, http.StatusBadRequest, "Invalid status filter.")
			return
		}
		filters.Status = status
	}
	if listingIDStr := c.Query("listing_id"); listingIDStr != "" {
		listingID, err := uuid.Parse(listingIDStr)
		if err != nil {
			helpers.RespondWithError(c, http.StatusBadRequest, "Invalid listing ID filter.")
			return
		}
		filters.ListingID = &listingID
	}
	if verifiedStr := c.Query("payment_verified"); verifiedStr != "" {
		verified, err := helpers.StringToBool(verifiedStr)
		if err != nil {
			helpers.RespondWithError(c, http.StatusBadRequest, "Invalid payment_verified filter.")
			return
		}
		filters.PaymentVerified = &verified
	}

	page, err := svc.List(actor, filters)
	if err != nil {
		RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"bookings":    page.Bookings,
		"total":       page.Total,
		"page":        page.Page,
		"limit":       page.Limit,
		"total_pages": (page.Total + int64(page.Limit) - 1) / int64(page.Limit),
	})
}

// ListAllBookings is the admin alias used by the platform-wide dashboard.
// The admin role gate on the route makes it unscoped.
func ListAllBookings(c *gin.Context) {
	ListBookings(c)
}

func GetBooking(c *gin.Context) {
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

	booking, err := svc.Get(actor, bookingID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, booking)
}

type StatusUpdateRequest struct {
	Status models.BookingStatus `json:"status" binding:"required,oneof=accepted rejected waitlist"`
}

// UpdateBookingStatus moves a booking through the status graph. Accepted and
// rejected are terminal; there is no reopening transition.
func UpdateBookingStatus(c *gin.Context) {
	var req StatusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Status must be one of: accepted, rejected, waitlist.")
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

	booking, err := svc.Transition(actor, bookingID, req.Status)
	if err != nil {
		RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Booking status updated.",
		"booking": booking,
	})
}

// DeleteBooking is the admin-only override outside the state machine.
func DeleteBooking(c *gin.Context) {
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

	if err := svc.Delete(actor, bookingID); err != nil {
		RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Booking deleted successfully.",
	})
}
