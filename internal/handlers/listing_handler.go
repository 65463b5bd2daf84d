package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nileshpandey4/campusdesk/internal/helpers"
	"github.com/nileshpandey4/campusdesk/internal/middleware"
	"github.com/nileshpandey4/campusdesk/internal/models"
	"github.com/nileshpandey4/campusdesk/internal/storage"
)

func CreateListing(c *gin.Context) {
	title := c.PostForm("title")
	description := c.PostForm("description")
	listingType := models.ListingType(c.PostForm("type"))
	city := c.PostForm("city")
	address := c.PostForm("address")

	if title == "" || description == "" || city == "" {
		helpers.RespondWithError(c, http.StatusBadRequest, "Missing required fields.")
		return
	}
	if !listingType.Valid() {
		helpers.RespondWithError(c, http.StatusBadRequest, "Type must be one of: coaching, hostel, library, tiffin.")
		return
	}

	price, err := helpers.StringToInt(c.PostForm("price"))
	if err != nil || price <= 0 {
		helpers.RespondWithError(c, http.StatusBadRequest, "Price must be a positive number.")
		return
	}

	userID, exists := c.Get("user_id")
	if !exists {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User ID not found in token.")
		return
	}
	userUUID, ok := userID.(uuid.UUID)
	if !ok {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Invalid user ID type.")
		return
	}

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	listing := models.Listing{
		ID:          uuid.New(),
		Title:       title,
		Description: description,
		Type:        listingType,
		Price:       price,
		City:        city,
		Address:     address,
		OwnerID:     userUUID,
	}

	imageFile, err := c.FormFile("image")
	if err == nil {
		data, err := helpers.ReadFormFile(imageFile)
		if err != nil {
			helpers.RespondWithError(c, http.StatusBadRequest, "Could not read uploaded image.")
			return
		}
		imagePath, err := middleware.GetBlobStore(c).Save(data, imageFile.Filename)
		if err != nil {
			helpers.RespondWithError(c, http.StatusBadRequest, err.Error())
			return
		}
		listing.ImagePath = imagePath
	}

	if err := gormDB.Create(&listing).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to create listing.")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":    "Listing created successfully.",
		"listing_id": listing.ID,
	})
}

func GetListing(c *gin.Context) {
	listingID := c.Param("id")

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var listing models.Listing
	if err := gormDB.Preload("Owner").Where("id = ?", listingID).First(&listing).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			helpers.RespondWithError(c, http.StatusNotFound, "Listing not found.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving listing.")
		return
	}

	c.JSON(http.StatusOK, listing)
}

func ListListings(c *gin.Context) {
	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	page := c.DefaultQuery("page", "1")
	limit := c.DefaultQuery("limit", "10")

	listingType := c.Query("type")
	city := c.Query("city")

	pageNum, err := helpers.StringToInt(page)
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid page number.")
		return
	}

	limitNum, err := helpers.StringToInt(limit)
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid limit.")
		return
	}

	query := gormDB.Model(&models.Listing{})
	if listingType != "" {
		query = query.Where("type = ?", listingType)
	}
	if city != "" {
		query = query.Where("city = ?", city)
	}

	var totalCount int64
	query.Count(&totalCount)

	var listings []models.Listing
	offset := (pageNum - 1) * limitNum
	err = query.Preload("Owner").Offset(offset).Limit(limitNum).Order("created_at DESC").Find(&listings).Error
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving listings.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"listings":    listings,
		"total":       totalCount,
		"page":        pageNum,
		"limit":       limitNum,
		"total_pages": (totalCount + int64(limitNum) - 1) / int64(limitNum),
	})
}

func UpdateListing(c *gin.Context) {
	listingID := c.Param("id")
	userID, exists := c.Get("user_id")
	if !exists {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User ID not found in token.")
		return
	}

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var listing models.Listing
	if err := gormDB.Where("id = ? AND owner_id = ?", listingID, userID).First(&listing).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			helpers.RespondWithError(c, http.StatusForbidden, "Listing not found or you don't have permission to update.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error finding listing.")
		return
	}

	if title := c.PostForm("title"); title != "" {
		listing.Title = title
	}
	if description := c.PostForm("description"); description != "" {
		listing.Description = description
	}
	if typeStr := c.PostForm("type"); typeStr != "" {
		listingType := models.ListingType(typeStr)
		if !listingType.Valid() {
			helpers.RespondWithError(c, http.StatusBadRequest, "Type must be one of: coaching, hostel, library, tiffin.")
			return
		}
		listing.Type = listingType
	}
	if priceStr := c.PostForm("price"); priceStr != "" {
		price, err := helpers.StringToInt(priceStr)
		if err != nil || price <= 0 {
			helpers.RespondWithError(c, http.StatusBadRequest, "Price must be a positive number.")
			return
		}
		// Existing bookings keep their snapshot amount; only future
		// bookings see the new price.
		listing.Price = price
	}
	if city := c.PostForm("city"); city != "" {
		listing.City = city
	}
	if address := c.PostForm("address"); address != "" {
		listing.Address = address
	}

	imageFile, err := c.FormFile("image")
	if err == nil {
		data, err := helpers.ReadFormFile(imageFile)
		if err != nil {
			helpers.RespondWithError(c, http.StatusBadRequest, "Could not read uploaded image.")
			return
		}
		imagePath, err := middleware.GetBlobStore(c).Save(data, imageFile.Filename)
		if err != nil {
			helpers.RespondWithError(c, http.StatusBadRequest, err.Error())
			return
		}
		if listing.ImagePath != "" {
			if err := storage.DeleteFile(listing.ImagePath); err != nil {
				log.Printf("Error deleting old listing image: %v", err)
			}
		}
		listing.ImagePath = imagePath
	}

	if err := gormDB.Save(&listing).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to update listing.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Listing updated successfully.",
		"listing": listing,
	})
}

func DeleteListing(c *gin.Context) {
	listingID := c.Param("id")
	userID, exists := c.Get("user_id")
	if !exists {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User ID not found in token.")
		return
	}

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	result := gormDB.Where("id = ? AND owner_id = ?", listingID, userID).Delete(&models.Listing{})
	if result.Error != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to delete listing.")
		return
	}

	if result.RowsAffected == 0 {
		helpers.RespondWithError(c, http.StatusForbidden, "Listing not found or you don't have permission to delete.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Listing deleted successfully.",
	})
}
