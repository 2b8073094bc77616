package lookbook

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"regexp"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

var numberedURL = regexp.MustCompile(`(?m)^\s*\d+\.\s+(https?://\S+)`)

// Runner executes the image generator for one prompt and returns its stdout.
type Runner interface {
	Run(ctx context.Context, prompt string) ([]byte, error)
}

// ExecRunner runs an external command with the prompt as its last argument.
type ExecRunner struct {
	Command string
	Args    []string
}

// NewExecRunner splits a command line such as "python gen.py" into an ExecRunner.
func NewExecRunner(commandLine string) (ExecRunner, error) {
	fields := strings.Fields(commandLine)
	if len(fields) == 0 {
		return ExecRunner{}, errors.New("image command is empty")
	}
	return ExecRunner{Command: fields[0], Args: fields[1:]}, nil
}

type ExitError struct {
	Err    error
	Stderr string
}

func (e *ExitError) Error() string {
	if e.Stderr == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%v: %s", e.Err, e.Stderr)
}

func (e *ExitError) Unwrap() error { return e.Err }

func (r ExecRunner) Run(ctx context.Context, prompt string) ([]byte, error) {
	args := append(append([]string(nil), r.Args...), prompt)
	cmd := exec.CommandContext(ctx, r.Command, args...)
	cmd.WaitDelay = 2 * time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return stdout.Bytes(), &ExitError{Err: err, Stderr: lastLine(stderr.String())}
	}
	return stdout.Bytes(), nil
}

// ExtractURL returns the first "<n>. <url>" line in generator output.
func ExtractURL(out []byte) (string, bool) {
	m := numberedURL.FindSubmatch(out)
	if m == nil {
		return "", false
	}
	return string(m[1]), true
}

// ImageResolutionFailure describes why one view produced no image.
type ImageResolutionFailure struct {
	View   string
	Reason string
	Err    error
}

func (f *ImageResolutionFailure) Error() string {
	if f.Err == nil {
		return fmt.Sprintf("view %s: %s", f.View, f.Reason)
	}
	return fmt.Sprintf("view %s: %s: %v", f.View, f.Reason, f.Err)
}

func (f *ImageResolutionFailure) Unwrap() error { return f.Err }

type ImageResult struct {
	View string
	URL  string
	Err  error
}

func (r ImageResult) Resolved() bool { return r.URL != "" }

// Batch holds per-view results in request order.
type Batch struct {
	Results  []ImageResult
	MinViews int
}

// URLs returns resolved image URLs in view order, skipping failed views.
func (b Batch) URLs() []string {
	out := make([]string, 0, len(b.Results))
	for _, r := range b.Results {
		if r.Resolved() {
			out = append(out, r.URL)
		}
	}
	return out
}

// Images applies the minimum-view rule: below it no images are returned.
// The warning is empty when every view resolved.
func (b Batch) Images() ([]string, string) {
	urls := b.URLs()
	need := b.MinViews
	if need < 1 {
		need = 1
	}
	switch {
	case len(b.Results) == 0:
		return []string{}, ""
	case len(urls) < need:
		return []string{}, fmt.Sprintf("preview images unavailable: %d of %d views rendered, %d required", len(urls), len(b.Results), need)
	case len(urls) < len(b.Results):
		return urls, fmt.Sprintf("%d of %d preview views rendered", len(urls), len(b.Results))
	}
	return urls, ""
}

type OrchestratorOptions struct {
	Runner      Runner
	Concurrency int
	Timeout     time.Duration
	MinViews    int
	Logger      *slog.Logger

	// Interval spaces out generator launches; zero disables the limiter.
	Interval time.Duration
}

type Orchestrator struct {
	runner      Runner
	concurrency int
	interval    time.Duration
	timeout     time.Duration
	minViews    int
	logger      *slog.Logger
}

func NewOrchestrator(opts OrchestratorOptions) *Orchestrator {
	concurrency := opts.Concurrency
	if concurrency < 1 {
		concurrency = 3
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	minViews := opts.MinViews
	if minViews < 1 {
		minViews = 1
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Orchestrator{
		runner:      opts.Runner,
		concurrency: concurrency,
		interval:    opts.Interval,
		timeout:     timeout,
		minViews:    minViews,
		logger:      logger,
	}
}

// Generate renders every request. A failing view never cancels its siblings.
func (o *Orchestrator) Generate(ctx context.Context, reqs []ImageRequest) Batch {
	results := make([]ImageResult, len(reqs))

	var limiter *rate.Limiter
	if o.interval > 0 {
		limiter = rate.NewLimiter(rate.Every(o.interval), 1)
	}

	var eg errgroup.Group
	eg.SetLimit(o.concurrency)
	for i, req := range reqs {
		eg.Go(func() error {
			results[i] = o.resolve(ctx, limiter, req)
			return nil
		})
	}
	_ = eg.Wait()

	return Batch{Results: results, MinViews: o.minViews}
}

func (o *Orchestrator) resolve(ctx context.Context, limiter *rate.Limiter, req ImageRequest) ImageResult {
	res := ImageResult{View: req.View}
	logger := o.logger.With("view", req.View)

	fail := func(reason string, err error) ImageResult {
		res.Err = &ImageResolutionFailure{View: req.View, Reason: reason, Err: err}
		logger.Warn("image view failed", "reason", reason, "err", err)
		return res
	}

	if o.runner == nil {
		return fail("no image runner configured", nil)
	}
	if limiter != nil {
		if err := limiter.Wait(ctx); err != nil {
			return fail("rate limiter", err)
		}
	}

	viewCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	start := time.Now()
	out, err := o.runner.Run(viewCtx, req.Prompt)
	if err != nil {
		if errors.Is(viewCtx.Err(), context.DeadlineExceeded) {
			return fail("timed out", err)
		}
		return fail("generator exited with error", err)
	}

	url, ok := ExtractURL(out)
	if !ok {
		return fail("no image URL in generator output", nil)
	}

	res.URL = url
	logger.Info("image view resolved", "dur_ms", time.Since(start).Milliseconds())
	return res
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	return strings.TrimSpace(s)
}
