package pipeline

import (
	"context"
	"time"

	"suitcraft-ai/internal/outfit"
	"suitcraft-ai/internal/stylist"
)

// TextGenerator is a text model backend (DashScope, Gemini).
type TextGenerator interface {
	Generate(ctx context.Context, system, user string) (string, error)
}

// RecommendationClient issues exactly one model call per prompt and
// classifies any failure as an upstream error.
type RecommendationClient struct {
	gen     TextGenerator
	service string
	timeout time.Duration
}

func NewRecommendationClient(gen TextGenerator, service string, timeout time.Duration) *RecommendationClient {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	if service == "" {
		service = "text-generation"
	}
	return &RecommendationClient{gen: gen, service: service, timeout: timeout}
}

func (c *RecommendationClient) Recommend(ctx context.Context, p stylist.Prompt) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	text, err := c.gen.Generate(ctx, p.System, p.User)
	if err != nil {
		return "", &outfit.UpstreamError{Service: c.service, Err: err}
	}
	return text, nil
}
