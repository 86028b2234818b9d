package textgen

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned when no API key was provided for the text service.
var ErrNotConfigured = errors.New("text generation not configured")

// Generator produces free text for a prompt.
// An empty string with a nil error means the service returned no text.
type Generator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}
