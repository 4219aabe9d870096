package synthesis

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/JaimeStill/lacuna/pkg/formatting"
)

const systemPrompt = `You write answers for a product FAQ from resolved support tickets and related search queries.
Answer only from the supplied context. If the context does not support an answer, return an empty answer.
Respond with a single JSON object: {"answer": string, "confidence": number between 0 and 1}.`

// OpenAIOptions configures an OpenAI-compatible chat completions endpoint.
type OpenAIOptions struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
}

// OpenAI synthesizes answers through an OpenAI-compatible chat completions API.
type OpenAI struct {
	client    openai.Client
	model     string
	temp      float64
	maxTokens int
	logger    *slog.Logger
}

// NewOpenAI creates an OpenAI synthesizer. Client-side retries are disabled;
// callers bound attempts with Bounded.
func NewOpenAI(opts OpenAIOptions, logger *slog.Logger) (*OpenAI, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("%w: api key required", ErrNotConfigured)
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(opts.APIKey),
		option.WithMaxRetries(0),
	}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}

	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 800
	}

	return &OpenAI{
		client:    openai.NewClient(reqOpts...),
		model:     opts.Model,
		temp:      opts.Temperature,
		maxTokens: maxTokens,
		logger:    logger.With("system", "synthesis"),
	}, nil
}

func (o *OpenAI) Synthesize(ctx context.Context, req Request) (Answer, error) {
	params := openai.ChatCompletionNewParams{
		Model: o.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt(req)),
		},
		MaxCompletionTokens: openai.Int(int64(o.maxTokens)),
		Temperature:         openai.Float(o.temp),
	}

	start := time.Now()
	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return Answer{}, fmt.Errorf("chat completion: %w", err)
	}

	o.logger.DebugContext(ctx, "synthesis completed",
		"topic", req.Topic,
		"duration_ms", time.Since(start).Milliseconds(),
		"completion_tokens", resp.Usage.CompletionTokens)

	if len(resp.Choices) == 0 {
		return Answer{}, fmt.Errorf("%w: no choices in response", ErrGenerationFailed)
	}

	answer, err := formatting.Parse[Answer](resp.Choices[0].Message.Content)
	if err != nil {
		return Answer{}, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}

	return answer, nil
}

func userPrompt(req Request) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Topic: %s\n", req.Topic)
	fmt.Fprintf(&b, "Question: %s\n", req.Question)

	if len(req.Context) > 0 {
		b.WriteString("\nContext:\n")
		for _, c := range req.Context {
			fmt.Fprintf(&b, "- %s\n", c)
		}
	}

	return b.String()
}
