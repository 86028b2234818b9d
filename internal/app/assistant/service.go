// Package assistant produces the road captain's generated text: trip
// briefings and short chat replies. It never fails; every problem collapses
// into a fixed fallback line.
package assistant

import (
	"context"
	"fmt"
	"strings"

	"github.com/costa-brava-bikers/clubhouse-api/internal/platform/logger"
	"github.com/costa-brava-bikers/clubhouse-api/internal/ports/out/textgen"
)

const (
	BriefingEmptyFallback = "Ride details unavailable right now, but keep the rubber side down!"
	BriefingErrorFallback = "Could not load AI analysis. Just ride safe!"
	ChatEmptyFallback     = "Ride safe out there!"
	ChatErrorFallback     = "Radio silence from the AI tower."

	// ChatContextSize is how many trailing messages are sent as chat context.
	ChatContextSize = 5
)

type Service struct {
	gen textgen.Generator
	log logger.Logger
}

// NewService returns an assistant. A nil generator behaves like an
// unconfigured one: every call returns the error fallback.
func NewService(gen textgen.Generator, log logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{gen: gen, log: log.With("component", "assistant")}
}

// RouteBriefing returns a short hype paragraph for a planned ride.
func (s *Service) RouteBriefing(ctx context.Context, title, start, end string, distanceKm float64) string {
	prompt := fmt.Sprintf(`I am a road captain for a motorcycle club. We are planning a trip called %q from %q to %q which is roughly %skm.

Give me a short, hype-filled paragraph describing why this is a great ride for motorcyclists.
Mention potential road conditions (twisties, scenic views, highway) based on general geography of these types of locations.
Keep it under 100 words. Use biker terminology but keep it friendly.`, title, start, end, formatKm(distanceKm))

	text, err := s.generate(ctx, prompt)
	if err != nil {
		s.log.Error("Gemini API Error", "err", err, "op", "briefing")
		return BriefingErrorFallback
	}
	if text == "" {
		return BriefingEmptyFallback
	}
	return text
}

// ChatReply answers the latest chat messages. Only the last ChatContextSize
// messages are sent.
func (s *Service) ChatReply(ctx context.Context, messages []string) string {
	if len(messages) > ChatContextSize {
		messages = messages[len(messages)-ChatContextSize:]
	}
	prompt := fmt.Sprintf(`You are a helpful AI assistant for a motorcycle club group chat.
Here is the recent conversation context:
%s

A user just asked for advice or info. Provide a very short (1-2 sentences) helpful response regarding motorcycle safety, maintenance, or route planning relevant to the chat.`, strings.Join(messages, "\n"))

	text, err := s.generate(ctx, prompt)
	if err != nil {
		s.log.Warn("chat reply failed", "err", err)
		return ChatErrorFallback
	}
	if text == "" {
		return ChatEmptyFallback
	}
	return text
}

func (s *Service) generate(ctx context.Context, prompt string) (string, error) {
	if s.gen == nil {
		return "", textgen.ErrNotConfigured
	}
	text, err := s.gen.GenerateText(ctx, prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// formatKm prints whole distances without a decimal point.
func formatKm(km float64) string {
	if km == float64(int64(km)) {
		return fmt.Sprintf("%d", int64(km))
	}
	return fmt.Sprintf("%g", km)
}
