package openapi

import "net/http"

// Spec represents an OpenAPI 3.1 specification document.
type Spec struct {
	OpenAPI    string               `json:"openapi"`
	Info       *Info                `json:"info"`
	Servers    []*Server            `json:"servers,omitempty"`
	Paths      map[string]*PathItem `json:"paths"`
	Components *Components          `json:"components,omitempty"`
}

// NewSpec creates a Spec with the given title, version, and default components.
func NewSpec(title, version string) *Spec {
	return &Spec{
		OpenAPI: "3.1.0",
		Info: &Info{
			Title:   title,
			Version: version,
		},
		Components: NewComponents(),
		Paths:      make(map[string]*PathItem),
	}
}

// AddServer appends a server URL to the spec.
func (s *Spec) AddServer(url string) {
	s.Servers = append(s.Servers, &Server{URL: url})
}

// SetDescription sets the API description in the info object.
func (s *Spec) SetDescription(desc string) {
	s.Info.Description = desc
}

// AddOperation attaches op to the path under the given HTTP method.
// Methods without a PathItem slot are ignored.
func (s *Spec) AddOperation(path, method string, op *Operation) {
	item, ok := s.Paths[path]
	if !ok {
		item = &PathItem{}
		s.Paths[path] = item
	}

	switch method {
	case http.MethodGet:
		item.Get = op
	case http.MethodPost:
		item.Post = op
	case http.MethodPut:
		item.Put = op
	case http.MethodDelete:
		item.Delete = op
	}
}
