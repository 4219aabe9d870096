package api

import (
	"fmt"
	"net/http"

	"github.com/JaimeStill/lacuna/internal/config"
	"github.com/JaimeStill/lacuna/internal/content"
	"github.com/JaimeStill/lacuna/internal/faqs"
	"github.com/JaimeStill/lacuna/internal/gaps"
	"github.com/JaimeStill/lacuna/internal/reports"
	"github.com/JaimeStill/lacuna/pkg/openapi"
	"github.com/JaimeStill/lacuna/pkg/routes"
)

func groups(domain *Domain, maxBodySize int64) []routes.Group {
	return []routes.Group{
		domain.Gaps.Handler(maxBodySize).Routes(),
		domain.FAQs.Handler(maxBodySize).Routes(),
		domain.Reports.Handler(maxBodySize).Routes(),
		domain.Content.Handler(maxBodySize).Routes(),
	}
}

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
	runtime *Runtime,
) error {
	gs := groups(domain, runtime.MaxBodySize)
	routes.Register(mux, gs...)

	spec, err := buildSpec(cfg, gs)
	if err != nil {
		return err
	}
	mux.HandleFunc("GET /openapi.json", openapi.ServeSpec(spec))

	return nil
}

// buildSpec documents every route group into a serialized OpenAPI 3.1 document.
func buildSpec(cfg *config.Config, gs []routes.Group) ([]byte, error) {
	spec := openapi.NewSpec(cfg.API.OpenAPI.Title, cfg.Version)
	spec.SetDescription(cfg.API.OpenAPI.Description)
	spec.AddServer(cfg.API.BasePath)

	spec.Components.AddSchemas(gaps.Schemas)
	spec.Components.AddSchemas(faqs.Schemas)
	spec.Components.AddSchemas(reports.Schemas)
	spec.Components.AddSchemas(content.Schemas)

	routes.Document(spec, gs...)

	data, err := openapi.MarshalJSON(spec)
	if err != nil {
		return nil, fmt.Errorf("marshal openapi spec: %w", err)
	}
	return data, nil
}
