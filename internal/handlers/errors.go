package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nileshpandey4/campusdesk/internal/helpers"
	"github.com/nileshpandey4/campusdesk/internal/services"
)

// RespondServiceError maps booking-core failures to HTTP statuses. Every one
// of them is a business-rule rejection the caller can act on, except
// ErrUpstream which signals a transient infrastructure fault.
func RespondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrBookingNotFound),
		errors.Is(err, services.ErrListingNotFound):
		helpers.RespondWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrForbidden):
		helpers.RespondWithError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, services.ErrInvalidTransition),
		errors.Is(err, services.ErrAlreadyVerified):
		helpers.RespondWithError(c, http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrInvalidQuantity),
		errors.Is(err, services.ErrMissingEvidence):
		helpers.RespondWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrNoEvidence),
		errors.Is(err, services.ErrNotVerified):
		helpers.RespondWithError(c, http.StatusPreconditionFailed, err.Error())
	case errors.Is(err, services.ErrUpstream):
		helpers.RespondWithError(c, http.StatusBadGateway, err.Error())
	default:
		helpers.RespondWithError(c, http.StatusInternalServerError, "Something went wrong. Please try again.")
	}
}
