// Package app assembles the recommendation pipeline from configuration for
// the web and bot binaries.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"suitcraft-ai/internal/config"
	"suitcraft-ai/internal/dashscope"
	"suitcraft-ai/internal/gemini"
	"suitcraft-ai/internal/httpclient"
	"suitcraft-ai/internal/lookbook"
	"suitcraft-ai/internal/metrics"
	"suitcraft-ai/internal/outfit"
	"suitcraft-ai/internal/pipeline"
	"suitcraft-ai/internal/preference"
)

const imagePollInterval = 2 * time.Second

func NewLogger(cfg config.Config, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stdout
	}
	level := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if cfg.Debug {
		level = slog.LevelDebug
	}

	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

type Deps struct {
	HTTPClient *http.Client
	Metrics    *metrics.Registry
	Logger     *slog.Logger
}

// NewTextGenerator picks the configured text backend.
func NewTextGenerator(ctx context.Context, cfg config.Config, deps Deps) (pipeline.TextGenerator, string, error) {
	switch cfg.TextProvider {
	case config.ProviderGemini:
		gem, err := gemini.New(ctx, gemini.Options{
			APIKey:     cfg.GeminiAPIKey,
			Model:      cfg.GeminiTextModel,
			HTTPClient: deps.HTTPClient,
			Logger:     deps.Logger,
		})
		if err != nil {
			return nil, "", err
		}
		return gem, config.ProviderGemini, nil
	case config.ProviderDashScope:
		return dashscope.New(dashscope.Options{
			APIKey:     cfg.DashScopeAPIKey,
			BaseURL:    cfg.DashScopeBaseURL,
			TextModel:  cfg.DashScopeTextModel,
			HTTPClient: deps.HTTPClient,
			Logger:     deps.Logger,
		}), config.ProviderDashScope, nil
	}
	return nil, "", fmt.Errorf("unsupported text provider %q", cfg.TextProvider)
}

// NewImageRunner runs IMAGE_COMMAND when set and otherwise renders through
// the DashScope image API in process.
func NewImageRunner(cfg config.Config, deps Deps) (lookbook.Runner, error) {
	if cfg.ImageCommand != "" {
		return lookbook.NewExecRunner(cfg.ImageCommand)
	}
	client := dashscope.New(dashscope.Options{
		APIKey:     cfg.DashScopeAPIKey,
		BaseURL:    cfg.DashScopeBaseURL,
		HTTPClient: deps.HTTPClient,
		Logger:     deps.Logger,
	})
	return lookbook.DashScopeRunner{Client: client, Interval: imagePollInterval}, nil
}

// NewPipeline wires normalization, the retry controller and preview
// rendering with the configured backends.
func NewPipeline(ctx context.Context, cfg config.Config, deps Deps) (*pipeline.Pipeline, error) {
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if deps.HTTPClient == nil {
		deps.HTTPClient = httpclient.New(httpclient.Options{
			PreferIPv4: cfg.PreferIPv4,
			Timeout:    cfg.HTTPTimeout(),
		})
	}

	gen, service, err := NewTextGenerator(ctx, cfg, deps)
	if err != nil {
		return nil, fmt.Errorf("text backend: %w", err)
	}
	runner, err := NewImageRunner(cfg, deps)
	if err != nil {
		return nil, fmt.Errorf("image backend: %w", err)
	}

	var recorder pipeline.Recorder
	if deps.Metrics != nil {
		recorder = deps.Metrics
	}

	var sampler pipeline.AcceptanceSampler = pipeline.AlwaysAccept{}
	if cfg.DiversityRejectRate > 0 {
		sampler = pipeline.NewProbabilisticSampler(nil, cfg.DiversityRejectRate)
	}

	controller := pipeline.NewRetryController(pipeline.RetryOptions{
		Client:       pipeline.NewRecommendationClient(gen, service, cfg.TextTimeout()),
		Validator:    outfit.NewValidator(outfit.ValidatorOptions{SafeColors: outfit.DefaultSafeColors}),
		MaxAttempts:  cfg.MaxAttempts,
		SafeColors:   outfit.DefaultSafeColors,
		Sampler:      sampler,
		Logger:       deps.Logger,
		OnTransition: pipeline.TransitionRecorder(context.Background(), recorder),
	})

	renderer := lookbook.NewRenderer(
		lookbook.NewComposer(lookbook.ComposerOptions{Views: cfg.ImageViews}),
		lookbook.NewOrchestrator(lookbook.OrchestratorOptions{
			Runner:      runner,
			Concurrency: cfg.ImageConcurrency,
			Timeout:     cfg.ImageTimeout(),
			MinViews:    cfg.ImageMinViews,
			Logger:      deps.Logger,
			Interval:    cfg.ImageRateInterval(),
		}),
	)

	return pipeline.New(pipeline.Options{
		Normalizer: preference.NewNormalizer(),
		Controller: controller,
		Renderer:   renderer,
		Metrics:    recorder,
		Logger:     deps.Logger,
	}), nil
}
