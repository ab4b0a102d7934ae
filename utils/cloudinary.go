package utils

import (
	"fmt"

	"github.com/cloudinary/cloudinary-go/v2"
)

// Cloudinary builds a client from a cloudinary:// URL.
func Cloudinary(cloudinaryURL string) (*cloudinary.Cloudinary, error) {
	if cloudinaryURL == "" {
		return nil, fmt.Errorf("cloudinary credentials not set in configuration")
	}
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("utils.Cloudinary: failed to initialize Cloudinary: %w", err)
	}
	cld.Config.URL.Secure = true
	return cld, nil
}
