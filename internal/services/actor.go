package services

import (
	"github.com/google/uuid"

	"github.com/nileshpandey4/campusdesk/internal/models"
)

// Actor is the authenticated caller. Role is a plain tag; each operation
// states its own authority predicate over (actor, booking) instead of
// hanging behavior off a role hierarchy.
type Actor struct {
	ID   uuid.UUID
	Role string
}

func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}

func (a Actor) IsProvider() bool {
	return a.Role == models.RoleProvider
}

func (a Actor) IsStudent() bool {
	return a.Role == models.RoleStudent
}

// canDecide reports whether the actor may move a booking through the status
// graph: the provider owning the listing, or an admin.
func (a Actor) canDecide(listing *models.Listing) bool {
	if a.IsAdmin() {
		return true
	}
	return a.IsProvider() && listing != nil && listing.OwnerID == a.ID
}
