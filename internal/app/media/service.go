// Package media validates and forwards image uploads to the image host.
package media

import (
	"context"
	"errors"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/costa-brava-bikers/clubhouse-api/internal/platform/logger"
	"github.com/costa-brava-bikers/clubhouse-api/internal/ports/out/imagehost"
)

// MaxImageBytes is the host's free-tier upload limit.
const MaxImageBytes = 32 * 1024 * 1024

const (
	MsgNotConfigured = "Image upload not configured. Please add IMGBB_API_KEY to .env.local"
	MsgInvalidImage  = "Please select a valid image file"
	MsgTooLarge      = "Image size must be less than 32MB"
	MsgUploadFailed  = "Upload failed"
	MsgNetworkError  = "Network error during upload"
)

// UploadResult mirrors what clients render: either a URL or a user-facing error.
type UploadResult struct {
	Success bool   `json:"success"`
	URL     string `json:"url,omitempty"`
	Error   string `json:"error,omitempty"`
}

type Service struct {
	host imagehost.Host
	log  logger.Logger
}

// NewService returns an upload service. A nil host means uploads are not configured.
func NewService(host imagehost.Host, log logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{host: host, log: log.With("component", "media")}
}

// Upload checks configuration, content type and size, in that order, before
// sending the image to the host.
func (s *Service) Upload(ctx context.Context, filename string, data []byte) UploadResult {
	if s.host == nil {
		s.log.Error("IMGBB_API_KEY not configured")
		return UploadResult{Error: MsgNotConfigured}
	}
	if !IsImage(data) {
		return UploadResult{Error: MsgInvalidImage}
	}
	if len(data) > MaxImageBytes {
		return UploadResult{Error: MsgTooLarge}
	}

	url, err := s.host.Upload(ctx, imagehost.Image{Filename: filename, Data: data})
	if err != nil {
		var rej *imagehost.RejectedError
		switch {
		case errors.Is(err, imagehost.ErrNotConfigured):
			return UploadResult{Error: MsgNotConfigured}
		case errors.As(err, &rej):
			if rej.Message != "" {
				return UploadResult{Error: rej.Message}
			}
			return UploadResult{Error: MsgUploadFailed}
		default:
			s.log.Error("Image upload error", "err", err, "filename", filename)
			return UploadResult{Error: MsgNetworkError}
		}
	}
	if url == "" {
		return UploadResult{Error: MsgUploadFailed}
	}
	return UploadResult{Success: true, URL: url}
}

// IsImage sniffs the payload; the client-declared type is not trusted.
func IsImage(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	return strings.HasPrefix(mimetype.Detect(data).String(), "image/")
}
