package imagehost

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned when no API key was provided for the host.
var ErrNotConfigured = errors.New("image host not configured")

// RejectedError is returned when the host answered but refused the upload.
// Message is the host's own explanation and may be empty.
type RejectedError struct {
	Message string
}

func (e *RejectedError) Error() string {
	if e.Message == "" {
		return "image host rejected upload"
	}
	return "image host rejected upload: " + e.Message
}

type Image struct {
	Filename string
	Data     []byte
}

// Host stores an image and returns its public URL.
type Host interface {
	Upload(ctx context.Context, img Image) (string, error)
}
