// Command imagegen renders one prompt through the DashScope image API and
// prints the resulting URLs. The recommendation services can call it as
// their IMAGE_COMMAND.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"suitcraft-ai/internal/dashscope"
	"suitcraft-ai/internal/httpclient"
	"suitcraft-ai/internal/lookbook"
)

type options struct {
	BaseURL        string
	Model          string
	Size           string
	Steps          int
	Guidance       float64
	NegativePrompt string
	PollInterval   time.Duration
	Timeout        time.Duration
}

func main() {
	_ = godotenv.Load()

	cmd := newRootCmd(os.Stdout, os.Stderr, os.Getenv)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer, getenv func(string) string) *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:           "imagegen [flags] <prompt>",
		Short:         "Render a prompt with the DashScope image API",
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt := strings.TrimSpace(strings.Join(args, " "))
			if prompt == "" {
				return errors.New("prompt is empty")
			}
			apiKey := strings.TrimSpace(getenv("DASHSCOPE_API_KEY"))
			if apiKey == "" {
				return errors.New("DASHSCOPE_API_KEY is required")
			}
			if opts.BaseURL == "" {
				opts.BaseURL = strings.TrimSpace(getenv("DASHSCOPE_BASE_URL"))
			}

			logger := slog.New(slog.NewJSONHandler(stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return run(ctx, stdout, logger, apiKey, prompt, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.BaseURL, "base-url", "", "DashScope base URL (default $DASHSCOPE_BASE_URL or the public endpoint)")
	f.StringVar(&opts.Model, "model", dashscope.DefaultImageModel, "image model")
	f.StringVar(&opts.Size, "size", dashscope.DefaultImageSize, "image size as WIDTH*HEIGHT")
	f.IntVar(&opts.Steps, "steps", dashscope.DefaultSteps, "sampling steps")
	f.Float64Var(&opts.Guidance, "guidance", dashscope.DefaultGuidance, "guidance scale")
	f.StringVar(&opts.NegativePrompt, "negative-prompt", dashscope.DefaultNegativePrompt, "things the image must avoid")
	f.DurationVar(&opts.PollInterval, "poll-interval", 2*time.Second, "task status poll interval")
	f.DurationVar(&opts.Timeout, "timeout", 110*time.Second, "overall deadline for the render")

	return cmd
}

func run(ctx context.Context, stdout io.Writer, logger *slog.Logger, apiKey, prompt string, opts options) error {
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	client := dashscope.New(dashscope.Options{
		APIKey:     apiKey,
		BaseURL:    opts.BaseURL,
		HTTPClient: httpclient.New(httpclient.Options{Timeout: opts.Timeout}),
		Logger:     logger,
	})

	start := time.Now()
	urls, err := client.GenerateImage(ctx, dashscope.ImageRequest{
		Prompt:         prompt,
		NegativePrompt: opts.NegativePrompt,
		Model:          opts.Model,
		Size:           opts.Size,
		Steps:          opts.Steps,
		Guidance:       opts.Guidance,
	}, opts.PollInterval)
	if err != nil {
		logger.Error("image generation failed", "err", err, "dur_ms", time.Since(start).Milliseconds())
		return err
	}

	logger.Info("image generated", "count", len(urls), "dur_ms", time.Since(start).Milliseconds())
	_, err = io.WriteString(stdout, lookbook.FormatURLs(urls))
	return err
}
