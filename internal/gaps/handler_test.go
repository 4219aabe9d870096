package gaps_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/JaimeStill/lacuna/internal/gaps"
	"github.com/JaimeStill/lacuna/internal/review"
	"github.com/JaimeStill/lacuna/internal/signals"
	"github.com/JaimeStill/lacuna/pkg/pagination"
)

type mockSystem struct {
	listFn         func(ctx context.Context, page pagination.PageRequest, filters gaps.Filters) (*pagination.PageResult[gaps.Gap], error)
	findFn         func(ctx context.Context, id uuid.UUID) (*gaps.Gap, error)
	createFn       func(ctx context.Context, cmd gaps.CreateCommand) (*gaps.Gap, error)
	analyzeFn      func(ctx context.Context, batch signals.Batch) (*gaps.DetectResult, error)
	updateStatusFn func(ctx context.Context, id uuid.UUID, status gaps.Status) (*gaps.Gap, error)
}

func (m *mockSystem) Handler(int64) *gaps.Handler { return nil }

func (m *mockSystem) List(ctx context.Context, page pagination.PageRequest, filters gaps.Filters) (*pagination.PageResult[gaps.Gap], error) {
	return m.listFn(ctx, page, filters)
}

func (m *mockSystem) Find(ctx context.Context, id uuid.UUID) (*gaps.Gap, error) {
	return m.findFn(ctx, id)
}

func (m *mockSystem) Create(ctx context.Context, cmd gaps.CreateCommand) (*gaps.Gap, error) {
	return m.createFn(ctx, cmd)
}

func (m *mockSystem) Analyze(ctx context.Context, batch signals.Batch) (*gaps.DetectResult, error) {
	return m.analyzeFn(ctx, batch)
}

func (m *mockSystem) Detect(context.Context, []signals.Signal) (*gaps.DetectResult, error) {
	return nil, nil
}

func (m *mockSystem) UpdateStatus(ctx context.Context, id uuid.UUID, status gaps.Status) (*gaps.Gap, error) {
	return m.updateStatusFn(ctx, id, status)
}

func (m *mockSystem) ResolveTopic(context.Context, string) ([]gaps.Gap, error) {
	return nil, nil
}

func (m *mockSystem) Stats(context.Context) (*gaps.Stats, error) {
	s := gaps.NewStats()
	return &s, nil
}

func newTestHandler(sys gaps.System) *gaps.Handler {
	return gaps.NewHandler(sys, discardLogger, pagination.Config{DefaultPageSize: 20, MaxPageSize: 100}, 1<<16)
}

func setupMux(h *gaps.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	group := h.Routes()
	for _, route := range group.Routes {
		mux.HandleFunc(route.Method+" "+group.Prefix+route.Pattern, route.Handler)
	}
	return mux
}

func TestHandlerList(t *testing.T) {
	t.Run("passes filters", func(t *testing.T) {
		var got gaps.Filters
		sys := &mockSystem{
			listFn: func(_ context.Context, page pagination.PageRequest, filters gaps.Filters) (*pagination.PageResult[gaps.Gap], error) {
				got = filters
				result := pagination.NewPageResult([]gaps.Gap{{Topic: "sso"}}, 1, page.Page, page.PageSize)
				return &result, nil
			},
		}

		rec := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/gaps?priority=critical&min_impact=0.6", nil)
		setupMux(newTestHandler(sys)).ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
		}
		if got.Priority == nil || *got.Priority != gaps.PriorityCritical || *got.MinImpact != 0.6 {
			t.Errorf("filters = %+v", got)
		}

		var body pagination.PageResult[gaps.Gap]
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
			t.Fatal(err)
		}
		if body.Total != 1 || body.Data[0].Topic != "sso" {
			t.Errorf("body = %+v", body)
		}
	})

	t.Run("invalid filter", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/gaps?status=closed", nil)
		setupMux(newTestHandler(&mockSystem{})).ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})
}

func TestHandlerFind(t *testing.T) {
	id := uuid.New()
	sys := &mockSystem{
		findFn: func(_ context.Context, got uuid.UUID) (*gaps.Gap, error) {
			if got != id {
				return nil, gaps.ErrNotFound
			}
			return &gaps.Gap{ID: id, Topic: "sso"}, nil
		},
	}
	mux := setupMux(newTestHandler(sys))

	tests := []struct {
		name       string
		path       string
		wantStatus int
	}{
		{"found", "/gaps/" + id.String(), http.StatusOK},
		{"missing", "/gaps/" + uuid.NewString(), http.StatusNotFound},
		{"malformed id", "/gaps/not-a-uuid", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest("GET", tt.path, nil))
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestHandlerCreate(t *testing.T) {
	sys := &mockSystem{
		createFn: func(_ context.Context, cmd gaps.CreateCommand) (*gaps.Gap, error) {
			if cmd.Topic == "sso" {
				return nil, gaps.ErrDuplicate
			}
			if cmd.Title == "" {
				return nil, gaps.ErrInvalidInput
			}
			return &gaps.Gap{ID: uuid.New(), Title: cmd.Title, Topic: cmd.Topic, ImpactScore: cmd.ImpactScore}, nil
		},
	}
	mux := setupMux(newTestHandler(sys))

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"created", `{"title":"Export limits","topic":"exports","impact_score":0.6,"priority":"high"}`, http.StatusCreated},
		{"duplicate topic", `{"title":"SSO","topic":"sso"}`, http.StatusConflict},
		{"invalid input", `{"topic":"exports"}`, http.StatusBadRequest},
		{"malformed", `{"title":`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest("POST", "/gaps", strings.NewReader(tt.body)))

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantStatus != http.StatusCreated {
				return
			}

			var g gaps.Gap
			if err := json.NewDecoder(rec.Body).Decode(&g); err != nil {
				t.Fatal(err)
			}
			if g.Topic != "exports" || g.ImpactScore != 0.6 {
				t.Errorf("gap = %+v", g)
			}
		})
	}
}

func TestHandlerAnalyze(t *testing.T) {
	sys := &mockSystem{
		analyzeFn: func(_ context.Context, batch signals.Batch) (*gaps.DetectResult, error) {
			if batch.Empty() {
				return nil, &signals.ValidationError{Problems: []string{"batch is empty"}}
			}
			return &gaps.DetectResult{
				Gaps:            []gaps.Gap{{Topic: "password-reset"}},
				SignalsAnalyzed: len(batch.SearchQueries) + len(batch.SupportTickets),
				Clusters:        1,
			}, nil
		},
	}
	mux := setupMux(newTestHandler(sys))

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"valid", `{"search_queries":[{"query":"reset password","count":3}],"support_tickets":[{"subject":"locked out","category":"password reset"}]}`, http.StatusOK},
		{"empty", `{}`, http.StatusBadRequest},
		{"malformed", `{"search_queries":`, http.StatusBadRequest},
		{"too large", `{"search_queries":[{"query":"` + strings.Repeat("x", 1<<17) + `"}]}`, http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest("POST", "/gaps/analyze", strings.NewReader(tt.body))
			mux.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				return
			}

			var result gaps.DetectResult
			if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
				t.Fatal(err)
			}
			if result.SignalsAnalyzed != 2 {
				t.Errorf("signals analyzed = %d, want 2", result.SignalsAnalyzed)
			}
		})
	}
}

func TestHandlerUpdateStatus(t *testing.T) {
	id := uuid.New()
	sys := &mockSystem{
		updateStatusFn: func(_ context.Context, _ uuid.UUID, status gaps.Status) (*gaps.Gap, error) {
			if status == gaps.StatusResolved {
				return nil, review.ErrInvalidTransition
			}
			return &gaps.Gap{ID: id, Status: status, Version: 2}, nil
		},
	}
	mux := setupMux(newTestHandler(sys))

	tests := []struct {
		name       string
		query      string
		wantStatus int
	}{
		{"valid", "?status=in_progress", http.StatusOK},
		{"invalid transition", "?status=resolved", http.StatusConflict},
		{"unknown status", "?status=closed", http.StatusBadRequest},
		{"missing status", "", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest("PUT", "/gaps/"+id.String()+"/status"+tt.query, nil)
			mux.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}
