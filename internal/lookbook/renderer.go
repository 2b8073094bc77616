package lookbook

import (
	"context"
	"fmt"
	"strings"
	"time"

	"suitcraft-ai/internal/dashscope"
	"suitcraft-ai/internal/outfit"
	"suitcraft-ai/internal/preference"
)

// Renderer composes view prompts for an outfit and resolves them into
// preview image URLs.
type Renderer struct {
	composer     *Composer
	orchestrator *Orchestrator
}

func NewRenderer(c *Composer, o *Orchestrator) *Renderer {
	if c == nil {
		c = NewComposer(ComposerOptions{})
	}
	if o == nil {
		o = NewOrchestrator(OrchestratorOptions{})
	}
	return &Renderer{composer: c, orchestrator: o}
}

func (r *Renderer) Render(ctx context.Context, o outfit.Outfit, p preference.Preferences) ([]string, string) {
	batch := r.orchestrator.Generate(ctx, r.composer.Compose(o, p))
	return batch.Images()
}

type imageGenerator interface {
	GenerateImage(ctx context.Context, req dashscope.ImageRequest, interval time.Duration) ([]string, error)
}

// DashScopeRunner renders in process through the DashScope synthesis API and
// prints results in the same numbered form as the external generator.
type DashScopeRunner struct {
	Client   imageGenerator
	Template dashscope.ImageRequest
	Interval time.Duration
}

func (r DashScopeRunner) Run(ctx context.Context, prompt string) ([]byte, error) {
	req := r.Template
	req.Prompt = prompt
	if req.NegativePrompt == "" {
		req.NegativePrompt = dashscope.DefaultNegativePrompt
	}

	urls, err := r.Client.GenerateImage(ctx, req, r.Interval)
	if err != nil {
		return nil, err
	}
	return []byte(FormatURLs(urls)), nil
}

// FormatURLs renders the generator's stdout contract.
func FormatURLs(urls []string) string {
	var b strings.Builder
	b.WriteString("Generated image URLs:\n")
	for i, u := range urls {
		fmt.Fprintf(&b, "%d. %s\n", i+1, u)
	}
	return b.String()
}
