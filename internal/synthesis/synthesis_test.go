package synthesis_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/JaimeStill/lacuna/internal/synthesis"
	"github.com/JaimeStill/lacuna/pkg/retry"
)

type mockSynthesizer struct {
	synthesizeFn func(ctx context.Context, req synthesis.Request) (synthesis.Answer, error)
}

func (m *mockSynthesizer) Synthesize(ctx context.Context, req synthesis.Request) (synthesis.Answer, error) {
	return m.synthesizeFn(ctx, req)
}

var limits = synthesis.Limits{
	Policy: retry.Policy{
		Timeout:         20 * time.Millisecond,
		MaxRetries:      1,
		InitialInterval: time.Millisecond,
		MaxInterval:     time.Millisecond,
	},
}

func TestBoundedSuccess(t *testing.T) {
	b := synthesis.NewBounded(&mockSynthesizer{
		synthesizeFn: func(context.Context, synthesis.Request) (synthesis.Answer, error) {
			return synthesis.Answer{Text: "  Use the reset link.  ", Confidence: 1.4}, nil
		},
	}, limits)

	got, err := b.Synthesize(context.Background(), synthesis.Request{Question: "reset?"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Text != "Use the reset link." {
		t.Errorf("text = %q", got.Text)
	}
	if got.Confidence != 1 {
		t.Errorf("confidence = %v, want clamped to 1", got.Confidence)
	}
}

func TestBoundedFailures(t *testing.T) {
	tests := []struct {
		name    string
		fn      func(ctx context.Context, req synthesis.Request) (synthesis.Answer, error)
		wantErr error
	}{
		{
			name: "empty answer",
			fn: func(context.Context, synthesis.Request) (synthesis.Answer, error) {
				return synthesis.Answer{Text: "   ", Confidence: 0.9}, nil
			},
			wantErr: synthesis.ErrGenerationFailed,
		},
		{
			name: "collaborator error",
			fn: func(context.Context, synthesis.Request) (synthesis.Answer, error) {
				return synthesis.Answer{}, errors.New("model overloaded")
			},
			wantErr: synthesis.ErrGenerationFailed,
		},
		{
			name: "timeout",
			fn: func(ctx context.Context, _ synthesis.Request) (synthesis.Answer, error) {
				<-ctx.Done()
				return synthesis.Answer{}, ctx.Err()
			},
			wantErr: retry.ErrTimeout,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := synthesis.NewBounded(&mockSynthesizer{synthesizeFn: tt.fn}, limits)
			_, err := b.Synthesize(context.Background(), synthesis.Request{Question: "q"})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestBoundedRetriesTimeouts(t *testing.T) {
	var calls atomic.Int32

	b := synthesis.NewBounded(&mockSynthesizer{
		synthesizeFn: func(ctx context.Context, _ synthesis.Request) (synthesis.Answer, error) {
			if calls.Add(1) == 1 {
				<-ctx.Done()
				return synthesis.Answer{}, ctx.Err()
			}
			return synthesis.Answer{Text: "ok", Confidence: 0.5}, nil
		},
	}, limits)

	if _, err := b.Synthesize(context.Background(), synthesis.Request{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("calls = %d, want 2", calls.Load())
	}
}

func TestDisabled(t *testing.T) {
	_, err := synthesis.Disabled{}.Synthesize(context.Background(), synthesis.Request{})
	if !errors.Is(err, synthesis.ErrGenerationFailed) || !errors.Is(err, synthesis.ErrNotConfigured) {
		t.Errorf("err = %v, want ErrGenerationFailed and ErrNotConfigured", err)
	}
}

func TestNewOpenAIRequiresKey(t *testing.T) {
	_, err := synthesis.NewOpenAI(synthesis.OpenAIOptions{Model: "gpt-4o-mini"}, slog.Default())
	if !errors.Is(err, synthesis.ErrNotConfigured) {
		t.Errorf("err = %v, want ErrNotConfigured", err)
	}
}

func TestOpenAISynthesize(t *testing.T) {
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("path = %s", r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotBody)

		content := "```json\n{\"answer\": \"Check the spam folder.\", \"confidence\": 0.82}\n```"
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 0,
			"model":   "test-model",
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": content},
			}},
			"usage": map[string]any{"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15},
		})
	}))
	defer srv.Close()

	o, err := synthesis.NewOpenAI(synthesis.OpenAIOptions{
		BaseURL: srv.URL + "/v1/",
		APIKey:  "test",
		Model:   "test-model",
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("NewOpenAI() error = %v", err)
	}

	got, err := o.Synthesize(context.Background(), synthesis.Request{
		Question: "Password reset email never arrives",
		Topic:    "auth",
		Context:  []string{"Check the spam folder."},
	})
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	if got.Text != "Check the spam folder." || got.Confidence != 0.82 {
		t.Errorf("answer = %+v", got)
	}
	if gotBody["model"] != "test-model" {
		t.Errorf("model = %v", gotBody["model"])
	}
}
