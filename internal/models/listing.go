package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ListingType string

const (
	ListingCoaching ListingType = "coaching"
	ListingHostel   ListingType = "hostel"
	ListingLibrary  ListingType = "library"
	ListingTiffin   ListingType = "tiffin"
)

func (t ListingType) Valid() bool {
	switch t {
	case ListingCoaching, ListingHostel, ListingLibrary, ListingTiffin:
		return true
	}
	return false
}

// Listing is a bookable service offering owned by a provider. Price is in
// rupees per month of service.
type Listing struct {
	ID          uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	Title       string         `gorm:"not null" json:"title"`
	Description string         `gorm:"not null" json:"description"`
	Type        ListingType    `gorm:"type:varchar(20);not null" json:"type"`
	Price       int            `gorm:"not null" json:"price"`
	City        string         `gorm:"not null" json:"city"`
	Address     string         `json:"address"`
	ImagePath   string         `json:"image_path,omitempty"`
	OwnerID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"owner_id"`
	Owner       *User          `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Bookings    []Booking      `gorm:"foreignKey:ListingID" json:"-"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"-"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (listing *Listing) BeforeCreate(tx *gorm.DB) (err error) {
	if listing.ID == uuid.Nil {
		listing.ID = uuid.New()
	}
	return
}
