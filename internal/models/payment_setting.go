package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PaymentSetting holds the platform's manual-payment instructions shown to
// students. One row per deployment.
type PaymentSetting struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	UPIID      string    `gorm:"column:upi_id;not null" json:"payment_upi_id"`
	PayeeName  string    `gorm:"not null" json:"payee_name"`
	QRCodePath string    `json:"payment_qr_code,omitempty"`
	CreatedAt  time.Time `json:"-"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (setting *PaymentSetting) BeforeCreate(tx *gorm.DB) (err error) {
	if setting.ID == uuid.Nil {
		setting.ID = uuid.New()
	}
	return
}
