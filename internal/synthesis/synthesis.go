// Package synthesis defines the answer-synthesis collaborator used by FAQ generation
// and bounds every call with rate limiting, per-attempt timeouts, and retries.
package synthesis

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/time/rate"

	"github.com/JaimeStill/lacuna/pkg/retry"
)

var (
	// ErrGenerationFailed indicates the collaborator errored or returned no usable answer.
	ErrGenerationFailed = errors.New("generation failed")
	// ErrNotConfigured indicates no synthesis provider is configured.
	ErrNotConfigured = errors.New("synthesis not configured")
)

// Request carries the question and supporting evidence for one cluster.
type Request struct {
	Question string   `json:"question"`
	Topic    string   `json:"topic"`
	Context  []string `json:"context,omitempty"`
}

// Answer is a synthesized answer with the collaborator's confidence in [0,1].
type Answer struct {
	Text       string  `json:"answer"`
	Confidence float64 `json:"confidence"`
}

// Synthesizer produces an answer for a question.
type Synthesizer interface {
	Synthesize(ctx context.Context, req Request) (Answer, error)
}

// Limits bounds calls to a Synthesizer.
type Limits struct {
	RatePerSecond float64
	Burst         int
	Policy        retry.Policy
}

// Bounded wraps a Synthesizer so every call waits on a shared rate limiter and
// each attempt runs under the retry policy. Errors other than retry.ErrTimeout
// and context cancellation are reported as ErrGenerationFailed.
type Bounded struct {
	inner   Synthesizer
	limiter *rate.Limiter
	policy  retry.Policy
}

// NewBounded wraps inner with limits. A non-positive rate disables limiting.
func NewBounded(inner Synthesizer, limits Limits) *Bounded {
	limit := rate.Inf
	if limits.RatePerSecond > 0 {
		limit = rate.Limit(limits.RatePerSecond)
	}
	burst := limits.Burst
	if burst <= 0 {
		burst = 1
	}

	return &Bounded{
		inner:   inner,
		limiter: rate.NewLimiter(limit, burst),
		policy:  limits.Policy,
	}
}

func (b *Bounded) Synthesize(ctx context.Context, req Request) (Answer, error) {
	answer, err := retry.Do(ctx, b.policy, func(actx context.Context) (Answer, error) {
		if err := b.limiter.Wait(ctx); err != nil {
			return Answer{}, err
		}
		return b.inner.Synthesize(actx, req)
	})

	switch {
	case err == nil:
	case errors.Is(err, retry.ErrTimeout), ctx.Err() != nil:
		return Answer{}, err
	case errors.Is(err, ErrGenerationFailed):
		return Answer{}, err
	default:
		return Answer{}, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}

	answer.Text = strings.TrimSpace(answer.Text)
	if answer.Text == "" {
		return Answer{}, fmt.Errorf("%w: empty answer", ErrGenerationFailed)
	}
	answer.Confidence = clamp(answer.Confidence)

	return answer, nil
}

// Disabled is a Synthesizer that always fails with ErrNotConfigured.
type Disabled struct{}

func (Disabled) Synthesize(context.Context, Request) (Answer, error) {
	return Answer{}, fmt.Errorf("%w: %w", ErrGenerationFailed, ErrNotConfigured)
}

func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
