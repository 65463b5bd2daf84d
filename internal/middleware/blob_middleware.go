package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/nileshpandey4/campusdesk/internal/storage"
)

func BlobStoreMiddleware(store storage.BlobStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("blob_store", store)
		c.Next()
	}
}

func GetBlobStore(c *gin.Context) storage.BlobStore {
	store, exists := c.Get("blob_store")
	if !exists {
		return nil
	}
	return store.(storage.BlobStore)
}
