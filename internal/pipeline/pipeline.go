// Package pipeline wires preference normalization, the recommendation retry
// loop and preview rendering into one request flow.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"suitcraft-ai/internal/outfit"
	"suitcraft-ai/internal/preference"
)

// ImageRenderer produces preview image URLs for an accepted outfit.
type ImageRenderer interface {
	Render(ctx context.Context, o outfit.Outfit, p preference.Preferences) ([]string, string)
}

// Recorder counts pipeline events.
type Recorder interface {
	Inc(ctx context.Context, name string, labels map[string]string, n int64)
}

type Options struct {
	Normalizer *preference.Normalizer
	Controller *RetryController
	Renderer   ImageRenderer
	Metrics    Recorder
	Logger     *slog.Logger
}

type Pipeline struct {
	normalizer *preference.Normalizer
	controller *RetryController
	renderer   ImageRenderer
	metrics    Recorder
	logger     *slog.Logger
}

func New(opts Options) *Pipeline {
	normalizer := opts.Normalizer
	if normalizer == nil {
		normalizer = preference.NewNormalizer()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Pipeline{
		normalizer: normalizer,
		controller: opts.Controller,
		renderer:   opts.Renderer,
		metrics:    opts.Metrics,
		logger:     logger,
	}
}

// Recommend always returns a fully shaped Result; failures are reported in
// its Error field.
func (p *Pipeline) Recommend(ctx context.Context, raw preference.Raw) (res Result) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("recommendation panicked", "panic", r)
			res = AssembleError(fmt.Errorf("internal error: %v", r), res.Attempts)
		}
		p.record(ctx, res, time.Since(start))
	}()

	prefs, err := p.normalizer.Normalize(raw)
	if err != nil {
		p.logger.Info("preferences rejected", "err", err)
		return AssembleError(err, 0)
	}

	if p.controller == nil {
		return AssembleError(fmt.Errorf("recommendation controller is not configured"), 0)
	}

	rec, attempts, err := p.controller.Run(ctx, prefs)
	if err != nil {
		return AssembleError(err, attempts)
	}

	o := rec.Settle()
	images, warning := []string{}, ""
	if p.renderer != nil {
		images, warning = p.renderer.Render(ctx, o, prefs)
	}

	return Assemble(o, images, warning, attempts)
}

func (p *Pipeline) record(ctx context.Context, res Result, dur time.Duration) {
	outcome := "accepted"
	if res.Failed() {
		outcome = "failed"
	}
	p.logger.Info("recommendation finished",
		"outcome", outcome,
		"error_kind", res.ErrorKind,
		"attempts", res.Attempts,
		"images", len(res.Images),
		"dur_ms", dur.Milliseconds(),
	)

	if p.metrics == nil {
		return
	}
	labels := map[string]string{"outcome": outcome}
	if res.ErrorKind != "" {
		labels["error_kind"] = res.ErrorKind
	}
	p.metrics.Inc(ctx, "recommendations_total", labels, 1)
	p.metrics.Inc(ctx, "recommendation_attempts_total", nil, int64(res.Attempts))
	p.metrics.Inc(ctx, "preview_images_total", nil, int64(len(res.Images)))
}

// TransitionRecorder counts retry controller transitions by state and,
// for rejected candidates, by violation kind.
func TransitionRecorder(ctx context.Context, rec Recorder) func(Transition) {
	return func(t Transition) {
		if rec == nil {
			return
		}
		labels := map[string]string{"state": string(t.State)}
		if v, ok := outfit.AsValidation(t.Err); ok {
			labels["kind"] = string(v.Kind)
		}
		rec.Inc(ctx, "retry_transitions_total", labels, 1)
	}
}
