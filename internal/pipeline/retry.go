package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"suitcraft-ai/internal/outfit"
	"suitcraft-ai/internal/preference"
	"suitcraft-ai/internal/stylist"
)

type State string

const (
	StateGenerating State = "generating"
	StateValidating State = "validating"
	StateAccepted   State = "accepted"
	StateRetrying   State = "retrying"
	StateExhausted  State = "exhausted"
)

const (
	DefaultMaxAttempts = 3
	maxAttemptsCap     = 5
)

// ErrSampledOut marks a valid candidate turned down by the acceptance sampler.
var ErrSampledOut = errors.New("candidate declined by acceptance sampler")

type Transition struct {
	Attempt int
	State   State
	Err     error
}

// ExhaustedError is returned when no candidate was accepted.
type ExhaustedError struct {
	Attempts int
	Reason   error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("recommendation failed after %d attempt(s): %v", e.Attempts, e.Reason)
}

func (e *ExhaustedError) Unwrap() error { return e.Reason }

type RetryOptions struct {
	Client      *RecommendationClient
	Validator   *outfit.Validator
	MaxAttempts int
	SafeColors  []string
	Sampler     AcceptanceSampler
	Logger      *slog.Logger

	OnTransition func(Transition)
}

// RetryController runs generate, parse and validate sequentially until a
// candidate is accepted or the attempt budget is spent.
type RetryController struct {
	client       *RecommendationClient
	validator    *outfit.Validator
	maxAttempts  int
	safeColors   []string
	sampler      AcceptanceSampler
	logger       *slog.Logger
	onTransition func(Transition)
}

func NewRetryController(opts RetryOptions) *RetryController {
	attempts := opts.MaxAttempts
	switch {
	case attempts < 1:
		attempts = DefaultMaxAttempts
	case attempts > maxAttemptsCap:
		attempts = maxAttemptsCap
	}

	validator := opts.Validator
	if validator == nil {
		validator = outfit.NewValidator(outfit.ValidatorOptions{SafeColors: opts.SafeColors})
	}

	sampler := opts.Sampler
	if sampler == nil {
		sampler = AlwaysAccept{}
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &RetryController{
		client:       opts.Client,
		validator:    validator,
		maxAttempts:  attempts,
		safeColors:   opts.SafeColors,
		sampler:      sampler,
		logger:       logger,
		onTransition: opts.OnTransition,
	}
}

func (rc *RetryController) MaxAttempts() int { return rc.maxAttempts }

// Run returns the accepted candidate and the number of attempts used.
func (rc *RetryController) Run(ctx context.Context, prefs preference.Preferences) (*outfit.Recommendation, int, error) {
	if rc.client == nil {
		return nil, 0, &ExhaustedError{Reason: &outfit.UpstreamError{Service: "text-generation", Err: errors.New("no client configured")}}
	}

	base := stylist.Build(prefs, rc.safeColors)
	prompt := base

	for attempt := 0; attempt < rc.maxAttempts; attempt++ {
		last := attempt == rc.maxAttempts-1
		used := attempt + 1

		rc.emit(attempt, StateGenerating, nil)
		raw, err := rc.client.Recommend(ctx, prompt)
		if err != nil {
			return nil, used, rc.exhaust(attempt, err)
		}

		rec, err := outfit.Parse(raw)
		if err != nil {
			return nil, used, rc.exhaust(attempt, err)
		}

		rc.emit(attempt, StateValidating, nil)
		if err := rc.validator.Validate(rec, prefs); err != nil {
			verr, ok := outfit.AsValidation(err)
			if !ok || last {
				return nil, used, rc.exhaust(attempt, err)
			}
			rc.emit(attempt, StateRetrying, verr)
			prompt = stylist.Retry(base, verr, prefs)
			continue
		}

		if !last && !rc.sampler.Accept(attempt, rec) {
			rc.emit(attempt, StateRetrying, ErrSampledOut)
			prompt = stylist.Diversify(base)
			continue
		}

		rc.emit(attempt, StateAccepted, nil)
		return rec, used, nil
	}

	// Unreachable while maxAttempts >= 1.
	return nil, rc.maxAttempts, &ExhaustedError{Attempts: rc.maxAttempts, Reason: errors.New("no attempts made")}
}

func (rc *RetryController) exhaust(attempt int, err error) error {
	rc.emit(attempt, StateExhausted, err)
	return &ExhaustedError{Attempts: attempt + 1, Reason: err}
}

func (rc *RetryController) emit(attempt int, state State, err error) {
	switch {
	case err != nil && state == StateExhausted:
		rc.logger.Warn("recommendation exhausted", "attempt", attempt+1, "err", err)
	case err != nil:
		rc.logger.Info("recommendation retry", "attempt", attempt+1, "reason", err)
	default:
		rc.logger.Debug("recommendation state", "attempt", attempt+1, "state", string(state))
	}
	if rc.onTransition != nil {
		rc.onTransition(Transition{Attempt: attempt, State: state, Err: err})
	}
}
