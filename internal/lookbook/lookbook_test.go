package lookbook

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"suitcraft-ai/internal/outfit"
	"suitcraft-ai/internal/preference"
)

func sampleOutfit() outfit.Outfit {
	return outfit.Outfit{
		Suit:        outfit.Suit{Style: "double-breasted", Color: "forest green", Fabric: "wool flannel", Pattern: "solid", Fit: "tailored", Pieces: outfit.StringList{"jacket", "trousers"}},
		Shirt:       outfit.Shirt{Color: "white", Fabric: "poplin", Collar: "spread", Cuffs: "french", Fit: "slim"},
		Neckwear:    outfit.Neckwear{Type: "bow tie", Color: "burgundy", Pattern: "paisley", Material: "silk"},
		Shoes:       outfit.Shoes{Type: "oxford", Color: "dark brown", Material: "calf leather", Style: "cap toe"},
		Accessories: outfit.StringList{"gold cufflinks", "dress watch"},
		Layering:    &outfit.Layering{PocketSquare: "ivory linen"},
	}
}

func TestComposeSharesIdentity(t *testing.T) {
	prefs := preference.Preferences{Occasion: "wedding", OccasionLabel: "Wedding", SkinTone: "olive", BodyType: "broad"}
	reqs := NewComposer(ComposerOptions{}).Compose(sampleOutfit(), prefs)
	require.Len(t, reqs, 3)

	identity := Identity(prefs)
	wearing := DescribeOutfit(sampleOutfit())
	assert.Contains(t, identity, "olive-skinned")
	assert.Contains(t, identity, "broad-shouldered")

	for i, view := range DefaultViews {
		req := reqs[i]
		assert.Equal(t, view, req.View)
		assert.Contains(t, req.Prompt, identity)
		assert.Contains(t, req.Prompt, wearing)
		assert.Contains(t, req.Prompt, "same face, same build")
		assert.Contains(t, req.Prompt, viewDirections[view])
		assert.Contains(t, req.Prompt, "Avoid: "+NegativeGuidance+".")
		assert.Equal(t, NegativeGuidance, req.Negative)
		assert.Equal(t, occasionBackgrounds["wedding"], req.Background)
	}
	assert.NotEqual(t, reqs[0].Prompt, reqs[1].Prompt)
}

func TestDescribeOutfitUsesFilledFields(t *testing.T) {
	d := DescribeOutfit(sampleOutfit())
	for _, want := range []string{"forest green solid wool flannel double-breasted suit", "tailored fit", "spread collar", "french cuffs", "burgundy paisley silk bow tie", "cap toe oxford shoes", "ivory linen pocket square", "gold cufflinks"} {
		assert.Contains(t, d, want)
	}

	bare := DescribeOutfit(outfit.Outfit{Suit: outfit.Suit{Color: "tan"}})
	assert.Equal(t, "a tan suit, a shirt", bare)
}

func TestComposeViewsAndFallbacks(t *testing.T) {
	c := NewComposer(ComposerOptions{Views: []string{"Side", "front", "side", "top"}})
	assert.Equal(t, []string{ViewSide, ViewFront}, c.Views())

	prefs := preference.Preferences{Occasion: preference.OccasionCustom, OccasionLabel: "Yacht party", CustomOccasion: true}
	reqs := c.Compose(sampleOutfit(), prefs)
	require.Len(t, reqs, 2)
	assert.Equal(t, genericBackground, reqs[0].Background)
	assert.Contains(t, reqs[0].Prompt, "medium-skinned")
	assert.Contains(t, reqs[0].Prompt, "average build")
}

func TestExtractURL(t *testing.T) {
	url, ok := ExtractURL([]byte("Generated image URLs:\n1. https://cdn.example/a.png\n2. https://cdn.example/b.png\n"))
	require.True(t, ok)
	assert.Equal(t, "https://cdn.example/a.png", url)

	_, ok = ExtractURL([]byte("error: quota exceeded"))
	assert.False(t, ok)

	_, ok = ExtractURL([]byte("see https://cdn.example/a.png"))
	assert.False(t, ok)
}

type fakeRunner struct {
	mu      sync.Mutex
	calls   []string
	running atomic.Int32
	peak    atomic.Int32
	respond func(ctx context.Context, prompt string) ([]byte, error)
}

func (f *fakeRunner) Run(ctx context.Context, prompt string) ([]byte, error) {
	f.mu.Lock()
	f.calls = append(f.calls, prompt)
	f.mu.Unlock()

	n := f.running.Add(1)
	defer f.running.Add(-1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}
	return f.respond(ctx, prompt)
}

func requests(views ...string) []ImageRequest {
	out := make([]ImageRequest, 0, len(views))
	for _, v := range views {
		out = append(out, ImageRequest{View: v, Prompt: "prompt " + v})
	}
	return out
}

func TestGenerateIsolatesFailures(t *testing.T) {
	runner := &fakeRunner{respond: func(_ context.Context, prompt string) ([]byte, error) {
		if strings.HasSuffix(prompt, "side") {
			return []byte("boom"), errors.New("exit status 1")
		}
		view := strings.TrimPrefix(prompt, "prompt ")
		return []byte(fmt.Sprintf("Generated image URLs:\n1. https://img.example/%s.png\n", view)), nil
	}}

	o := NewOrchestrator(OrchestratorOptions{Runner: runner, Concurrency: 3})
	batch := o.Generate(context.Background(), requests(ViewFront, ViewSide, ViewBack))

	require.Len(t, batch.Results, 3)
	assert.Equal(t, []string{"https://img.example/front.png", "https://img.example/back.png"}, batch.URLs())

	var failure *ImageResolutionFailure
	require.True(t, errors.As(batch.Results[1].Err, &failure))
	assert.Equal(t, ViewSide, failure.View)

	images, warning := batch.Images()
	assert.Len(t, images, 2)
	assert.Equal(t, "2 of 3 preview views rendered", warning)
}

func TestGenerateTimeoutIsLocal(t *testing.T) {
	runner := &fakeRunner{respond: func(ctx context.Context, prompt string) ([]byte, error) {
		if strings.HasSuffix(prompt, "side") {
			<-ctx.Done()
			return nil, ctx.Err()
		}
		return []byte("1. https://img.example/" + strings.TrimPrefix(prompt, "prompt ") + ".png"), nil
	}}

	o := NewOrchestrator(OrchestratorOptions{Runner: runner, Timeout: 50 * time.Millisecond})
	batch := o.Generate(context.Background(), requests(ViewFront, ViewSide, ViewBack))

	images, _ := batch.Images()
	assert.Equal(t, []string{"https://img.example/front.png", "https://img.example/back.png"}, images)

	var failure *ImageResolutionFailure
	require.True(t, errors.As(batch.Results[1].Err, &failure))
	assert.Equal(t, "timed out", failure.Reason)
}

func TestGenerateMinViews(t *testing.T) {
	runner := &fakeRunner{respond: func(_ context.Context, prompt string) ([]byte, error) {
		if strings.HasSuffix(prompt, "front") {
			return []byte("1. https://img.example/front.png"), nil
		}
		return []byte("no url here"), nil
	}}

	o := NewOrchestrator(OrchestratorOptions{Runner: runner, MinViews: 2})
	batch := o.Generate(context.Background(), requests(ViewFront, ViewSide, ViewBack))

	assert.Len(t, batch.URLs(), 1)
	images, warning := batch.Images()
	assert.NotNil(t, images)
	assert.Empty(t, images)
	assert.Contains(t, warning, "2 required")
}

func TestGenerateRespectsConcurrency(t *testing.T) {
	runner := &fakeRunner{respond: func(_ context.Context, prompt string) ([]byte, error) {
		time.Sleep(20 * time.Millisecond)
		return []byte("1. https://img.example/x.png"), nil
	}}

	o := NewOrchestrator(OrchestratorOptions{Runner: runner, Concurrency: 1})
	batch := o.Generate(context.Background(), requests(ViewFront, ViewSide, ViewBack))

	assert.Len(t, batch.URLs(), 3)
	assert.Equal(t, int32(1), runner.peak.Load())
}

func TestGenerateWithoutRunner(t *testing.T) {
	batch := NewOrchestrator(OrchestratorOptions{}).Generate(context.Background(), requests(ViewFront))
	images, warning := batch.Images()
	assert.Empty(t, images)
	assert.NotEmpty(t, warning)
}

func TestEmptyBatch(t *testing.T) {
	images, warning := Batch{}.Images()
	assert.NotNil(t, images)
	assert.Empty(t, images)
	assert.Empty(t, warning)
}

// TestHelperProcess stands in for the image generator binary.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("LOOKBOOK_HELPER_PROCESS") != "1" {
		return
	}
	prompt := os.Args[len(os.Args)-1]
	if strings.Contains(prompt, "fail") {
		fmt.Fprintln(os.Stderr, "Error generating images: upstream refused")
		os.Exit(1)
	}
	fmt.Println("Generated image URLs:")
	fmt.Println("1. https://img.example/helper.png")
	os.Exit(0)
}

func TestExecRunner(t *testing.T) {
	t.Setenv("LOOKBOOK_HELPER_PROCESS", "1")
	runner := ExecRunner{Command: os.Args[0], Args: []string{"-test.run=TestHelperProcess", "--"}}

	out, err := runner.Run(context.Background(), "front view")
	require.NoError(t, err)
	url, ok := ExtractURL(out)
	require.True(t, ok)
	assert.Equal(t, "https://img.example/helper.png", url)

	_, err = runner.Run(context.Background(), "please fail")
	require.Error(t, err)
	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Contains(t, exitErr.Stderr, "upstream refused")
}

func TestNewExecRunner(t *testing.T) {
	r, err := NewExecRunner("python  src/gen.py --fast")
	require.NoError(t, err)
	assert.Equal(t, "python", r.Command)
	assert.Equal(t, []string{"src/gen.py", "--fast"}, r.Args)

	_, err = NewExecRunner("   ")
	require.Error(t, err)
}
