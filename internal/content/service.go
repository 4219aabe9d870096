package content

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

const (
	defaultLimit = 50
	maxLimit     = 100
)

type service struct {
	analyzer Analyzer
	gaps     GapFinder
	logger   *slog.Logger
}

// New creates the content System. A nil analyzer behaves as Disabled.
func New(analyzer Analyzer, gaps GapFinder, logger *slog.Logger) System {
	if analyzer == nil {
		analyzer = Disabled
	}
	return &service{
		analyzer: analyzer,
		gaps:     gaps,
		logger:   logger.With("system", "content"),
	}
}

func (s *service) Handler(maxBodySize int64) *Handler {
	return NewHandler(s, s.logger, maxBodySize)
}

func (s *service) List(ctx context.Context, q ListQuery) ([]Item, error) {
	if q.Limit <= 0 {
		q.Limit = defaultLimit
	}
	q.Limit = min(q.Limit, maxLimit)
	return s.analyzer.List(ctx, q)
}

func (s *service) Coverage(ctx context.Context, expectedTopics []string) (*Coverage, error) {
	topics := make([]string, 0, len(expectedTopics))
	for _, t := range expectedTopics {
		if t = strings.TrimSpace(t); t != "" {
			topics = append(topics, t)
		}
	}
	return s.analyzer.Coverage(ctx, topics)
}

func (s *service) Suggest(ctx context.Context, req SuggestionRequest) (*Suggestion, error) {
	if req.GapID != nil {
		if s.gaps == nil {
			return nil, fmt.Errorf("%w: gap lookup unavailable", ErrInvalidInput)
		}
		g, err := s.gaps.Find(ctx, *req.GapID)
		if err != nil {
			return nil, err
		}
		req.GapTitle = g.Title
		req.GapDescription = g.Description
	}

	req.GapTitle = strings.TrimSpace(req.GapTitle)
	req.GapDescription = strings.TrimSpace(req.GapDescription)
	if req.GapTitle == "" {
		return nil, fmt.Errorf("%w: gap_title or gap_id required", ErrInvalidInput)
	}

	suggestion, err := s.analyzer.Suggest(ctx, req)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "content suggested", "gap_title", req.GapTitle, "title", suggestion.Title)
	return suggestion, nil
}
