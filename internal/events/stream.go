package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// StreamPublisher appends events to a Redis stream for out-of-process consumers.
type StreamPublisher struct {
	client  *redis.Client
	stream  string
	maxLen  int64
	timeout time.Duration
	logger  *slog.Logger
}

// NewStreamPublisher creates a publisher writing to stream. A positive maxLen
// caps the stream approximately.
func NewStreamPublisher(
	client *redis.Client,
	stream string,
	maxLen int64,
	timeout time.Duration,
	logger *slog.Logger,
) *StreamPublisher {
	return &StreamPublisher{
		client:  client,
		stream:  stream,
		maxLen:  maxLen,
		timeout: timeout,
		logger:  logger.With("system", "events"),
	}
}

// Append writes e to the stream. Failures are logged and otherwise ignored.
func (p *StreamPublisher) Append(ctx context.Context, e Event) {
	ctx = context.WithoutCancel(ctx)
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	args := &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]any{
			"entity":   string(e.Entity),
			"id":       e.ID,
			"version":  e.Version,
			"action":   string(e.Action),
			"at":       e.At.Format(time.RFC3339Nano),
			"sequence": e.Sequence,
		},
	}
	if p.maxLen > 0 {
		args.MaxLen = p.maxLen
		args.Approx = true
	}

	if err := p.client.XAdd(ctx, args).Err(); err != nil {
		p.logger.WarnContext(ctx, "event stream append failed", "entity", e.Entity, "id", e.ID, "error", err)
		return
	}

	p.logger.DebugContext(ctx, "event appended", "entity", e.Entity, "id", e.ID, "version", e.Version)
}

// Close releases the Redis client.
func (p *StreamPublisher) Close() error {
	return p.client.Close()
}

// Ping checks connectivity to the Redis server.
func (p *StreamPublisher) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}
