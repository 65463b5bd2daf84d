package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID          uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	Name        string         `gorm:"not null" json:"name"`
	Email       string         `gorm:"unique;not null" json:"email"`
	Password    string         `gorm:"not null" json:"-"`
	PhoneNumber string         `gorm:"not null" json:"phone_number"`
	RoleID      uuid.UUID      `json:"-"`
	Role        Role           `json:"-"`
	Listings    []Listing      `gorm:"foreignKey:OwnerID" json:"listings,omitempty"`
	Bookings    []Booking      `gorm:"foreignKey:UserID" json:"bookings,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"-"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (user *User) BeforeCreate(tx *gorm.DB) (err error) {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	return
}
