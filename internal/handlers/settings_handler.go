package handlers

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"
	"gorm.io/gorm"

	"github.com/nileshpandey4/campusdesk/internal/helpers"
	"github.com/nileshpandey4/campusdesk/internal/middleware"
	"github.com/nileshpandey4/campusdesk/internal/models"
)

// GetPaymentSettings returns the platform's manual-payment instructions
// (UPI ID, payee name, uploaded QR image) shown on the booking payment page.
func GetPaymentSettings(c *gin.Context) {
	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var setting models.PaymentSetting
	if err := gormDB.First(&setting).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			helpers.RespondWithError(c, http.StatusNotFound, "Payment settings are not configured yet.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving payment settings.")
		return
	}

	c.JSON(http.StatusOK, setting)
}

// UpdatePaymentSettings replaces the platform payment instructions.
// Multipart form: upi_id, payee_name, optional qr_code image.
func UpdatePaymentSettings(c *gin.Context) {
	upiID := c.PostForm("upi_id")
	payeeName := c.PostForm("payee_name")
	if upiID == "" || payeeName == "" {
		helpers.RespondWithError(c, http.StatusBadRequest, "upi_id and payee_name are required.")
		return
	}

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var setting models.PaymentSetting
	if err := gormDB.First(&setting).Error; err != nil {
		if err != gorm.ErrRecordNotFound {
			helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving payment settings.")
			return
		}
	}

	setting.UPIID = upiID
	setting.PayeeName = payeeName

	qrFile, err := c.FormFile("qr_code")
	if err == nil {
		data, err := helpers.ReadFormFile(qrFile)
		if err != nil {
			helpers.RespondWithError(c, http.StatusBadRequest, "Could not read uploaded QR image.")
			return
		}
		qrPath, err := middleware.GetBlobStore(c).Save(data, qrFile.Filename)
		if err != nil {
			helpers.RespondWithError(c, http.StatusBadRequest, err.Error())
			return
		}
		setting.QRCodePath = qrPath
	}

	if err := gormDB.Save(&setting).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to update payment settings.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Payment settings updated.",
		"settings": setting,
	})
}

// GetPaymentQR renders a upi://pay QR PNG from the configured UPI ID.
// Optional amount query pre-fills the transfer amount.
func GetPaymentQR(c *gin.Context) {
	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var setting models.PaymentSetting
	if err := gormDB.First(&setting).Error; err != nil {
		helpers.RespondWithError(c, http.StatusNotFound, "Payment settings are not configured yet.")
		return
	}

	upiURI := fmt.Sprintf("upi://pay?pa=%s&pn=%s&cu=INR",
		url.QueryEscape(setting.UPIID), url.QueryEscape(setting.PayeeName))
	if amountStr := c.Query("amount"); amountStr != "" {
		amount, err := helpers.StringToInt(amountStr)
		if err != nil || amount <= 0 {
			helpers.RespondWithError(c, http.StatusBadRequest, "Amount must be a positive number.")
			return
		}
		upiURI += fmt.Sprintf("&am=%d", amount)
	}

	qrImage, err := qrcode.Encode(upiURI, qrcode.Medium, 256)
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to generate QR code.")
		return
	}

	c.Data(http.StatusOK, "image/png", qrImage)
}
