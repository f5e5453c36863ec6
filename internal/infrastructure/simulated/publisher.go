package simulated

import (
	"context"
	"fmt"

	"RunRaiser/internal/domain"
	"RunRaiser/internal/ports"
)

// DefaultPreviewLength is how many characters of the post a confirmation echoes.
const DefaultPreviewLength = 120

// Publisher pretends to publish and returns the line that would be logged.
type Publisher struct {
	previewLength int
}

var _ ports.Publisher = (*Publisher)(nil)

// NewPublisher builds a publisher; a non-positive length uses DefaultPreviewLength.
func NewPublisher(previewLength int) *Publisher {
	if previewLength <= 0 {
		previewLength = DefaultPreviewLength
	}
	return &Publisher{previewLength: previewLength}
}

// Publish never fails.
func (p *Publisher) Publish(_ context.Context, post domain.PostCandidate) (string, error) {
	return fmt.Sprintf("[SIMULATED PUBLISH] Platform=%s | Text='%s...'", post.Platform, Preview(post.Text, p.previewLength)), nil
}

// Preview returns at most n characters (runes) of text.
func Preview(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n])
}
