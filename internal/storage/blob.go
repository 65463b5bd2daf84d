package storage

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// BlobStore accepts raw file bytes and returns a durable URL for them.
// Payment screenshots and listing images go through it; callers never hold a
// database lock while an upload is in flight.
type BlobStore interface {
	Save(data []byte, originalName string) (string, error)
}

type DiskStore struct {
	BaseDir          string
	MaxSizeBytes     int64
	AllowedMimeTypes []string
}

func NewDiskStore(baseDir string) *DiskStore {
	return &DiskStore{
		BaseDir:      baseDir,
		MaxSizeBytes: 5 * 1024 * 1024, // 5MB
		AllowedMimeTypes: []string{
			"image/jpeg",
			"image/png",
			"image/gif",
			"image/webp",
		},
	}
}

func (s *DiskStore) Save(data []byte, originalName string) (string, error) {
	if int64(len(data)) > s.MaxSizeBytes {
		return "", fmt.Errorf("file size exceeds maximum limit of %d MB", s.MaxSizeBytes/(1024*1024))
	}
	if len(data) == 0 {
		return "", fmt.Errorf("empty file")
	}

	mimeType := http.DetectContentType(data)
	mimeTypeAllowed := false
	for _, allowedType := range s.AllowedMimeTypes {
		if mimeType == allowedType {
			mimeTypeAllowed = true
			break
		}
	}
	if !mimeTypeAllowed {
		return "", fmt.Errorf("invalid file type. Allowed types: %v", s.AllowedMimeTypes)
	}

	if err := os.MkdirAll(s.BaseDir, os.ModePerm); err != nil {
		return "", err
	}

	ext := filepath.Ext(originalName)
	filename := fmt.Sprintf("%s%s", uuid.New().String(), ext)
	fullFilepath := filepath.Join(s.BaseDir, filename)

	if err := os.WriteFile(fullFilepath, data, 0o644); err != nil {
		return "", err
	}

	return fullFilepath, nil
}

func DeleteFile(filePath string) error {
	return os.Remove(filePath)
}
