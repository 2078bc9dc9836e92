package services

import (
	"context"
	"fmt"

	"github.com/franciscosanchezn/gin-cookbook-api/internal/storage"
	"github.com/franciscosanchezn/gin-cookbook-api/internal/validation"
	"github.com/sirupsen/logrus"
)

// DefaultMaxImageBytes is the upload limit when none is configured.
const DefaultMaxImageBytes int64 = 2048 * 1024

// ImageUpload is an uploaded image read into memory. Size is the size the
// client declared, which may exceed len(Data) when the reader was truncated.
type ImageUpload struct {
	Filename string
	Size     int64
	Data     []byte
}

// imageKeeper validates uploads and moves them in and out of the image store.
type imageKeeper struct {
	store    storage.ImageStore
	maxBytes int64
	log      logrus.FieldLogger
}

func newImageKeeper(store storage.ImageStore, maxBytes int64, log logrus.FieldLogger) imageKeeper {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxImageBytes
	}
	return imageKeeper{store: store, maxBytes: maxBytes, log: log}
}

// validate records problems with upload under field.
func (k imageKeeper) validate(field string, upload *ImageUpload, errs validation.Errors) {
	if upload == nil {
		return
	}
	if upload.Size > k.maxBytes || int64(len(upload.Data)) > k.maxBytes {
		errs.Add(field, fmt.Sprintf("The %s may not be greater than %d kilobytes.", field, k.maxBytes/1024))
		return
	}
	if _, _, err := storage.DetectImage(upload.Data); err != nil {
		errs.Add(field, fmt.Sprintf("The %s must be a file of type: jpeg, png, jpg, gif.", field))
	}
}

func (k imageKeeper) save(ctx context.Context, dir string, upload *ImageUpload) (*string, error) {
	path, err := k.store.Save(ctx, dir, upload.Data)
	if err != nil {
		return nil, fmt.Errorf("store image: %w", err)
	}
	return &path, nil
}

// release deletes a stored image. Failures are only logged.
func (k imageKeeper) release(ctx context.Context, path *string) {
	if path == nil || *path == "" {
		return
	}
	if err := k.store.Delete(ctx, *path); err != nil {
		k.log.WithError(err).WithField("image", *path).Warn("Failed to release image")
	}
}

// copyString detaches p from the model it points into; gorm writes updated
// column values back through the model's pointers.
func copyString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
