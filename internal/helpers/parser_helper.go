package helpers

import (
	"fmt"
	"io"
	"mime/multipart"
	"strconv"
)

// MaxUploadBytes caps multipart uploads before they are buffered in memory.
// The blob store enforces its own limit again on the bytes it receives.
const MaxUploadBytes = 5 * 1024 * 1024 // 5MB

func StringToInt(s string) (int, error) {
	return strconv.Atoi(s)
}

func StringToBool(s string) (bool, error) {
	return strconv.ParseBool(s)
}

// ReadFormFile drains an uploaded multipart file into memory so its bytes can
// be handed to the blob store. Oversized parts are rejected before any
// buffering happens.
func ReadFormFile(fileHeader *multipart.FileHeader) ([]byte, error) {
	if fileHeader.Size > MaxUploadBytes {
		return nil, fmt.Errorf("file size exceeds maximum limit of %d MB", MaxUploadBytes/(1024*1024))
	}

	src, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()
	return io.ReadAll(src)
}
