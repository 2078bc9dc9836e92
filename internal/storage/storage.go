package storage

import (
	"context"
	"errors"
	"net/http"
	"path"

	"github.com/google/uuid"
)

// Directories images are grouped under.
const (
	RecipeImagesDir    = "recipe_images"
	ProfilePicturesDir = "profile_pictures"
)

var ErrUnsupportedType = errors.New("unsupported image type")

// ImageStore keeps uploaded images and addresses them by relative path.
type ImageStore interface {
	// Save stores data under dir and returns its relative path.
	Save(ctx context.Context, dir string, data []byte) (string, error)
	// Delete removes the image at path. Missing images are not an error.
	Delete(ctx context.Context, path string) error
}

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
}

// DetectImage sniffs data and returns its content type and file extension.
// Only jpeg, png and gif are accepted.
func DetectImage(data []byte) (contentType, ext string, err error) {
	contentType = http.DetectContentType(data)
	ext, ok := imageExtensions[contentType]
	if !ok {
		return "", "", ErrUnsupportedType
	}
	return contentType, ext, nil
}

// objectName builds a fresh relative path for an image.
func objectName(dir, ext string) string {
	return path.Join(dir, uuid.New().String()+ext)
}
