package content

import "github.com/JaimeStill/lacuna/pkg/openapi"

var stringList = &openapi.Schema{Type: "array", Items: &openapi.Schema{Type: "string"}}

// Schemas are the component schemas referenced by content operations.
var Schemas = map[string]*openapi.Schema{
	"ContentItem": {
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"id":                 {Type: "string"},
			"title":              {Type: "string"},
			"content_type":       {Type: "string"},
			"category":           {Type: "string"},
			"view_count":         {Type: "integer"},
			"freshness_score":    {Type: "number"},
			"completeness_score": {Type: "number"},
			"last_updated":       {Type: "string", Format: "date-time"},
		},
	},
	"ContentCoverage": {
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"total_topics":        {Type: "integer"},
			"covered_topics":      {Type: "integer"},
			"coverage_percentage": {Type: "number"},
			"well_covered":        stringList,
			"partially_covered":   stringList,
			"not_covered":         stringList,
			"recommendations":     stringList,
		},
	},
	"SuggestionRequest": {
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"gap_id":          {Type: "string", Format: "uuid", Description: "Take title and description from this gap"},
			"gap_title":       {Type: "string"},
			"gap_description": {Type: "string"},
		},
	},
	"ContentSuggestion": {
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"title":            {Type: "string"},
			"summary":          {Type: "string"},
			"outline":          stringList,
			"priority":         {Type: "string"},
			"target_audience":  {Type: "string"},
			"estimated_effort": {Type: "string"},
			"seo_keywords":     stringList,
		},
	},
}

var unavailable = openapi.ResponseRef("ServiceUnavailable")

var listOp = &openapi.Operation{
	Summary: "List knowledge-base content",
	Parameters: []*openapi.Parameter{
		openapi.QueryParam("content_type", "string", "Filter by content type", false),
		openapi.QueryParam("category", "string", "Filter by category", false),
		openapi.QueryParam("limit", "integer", "Maximum results (default 50, max 100)", false),
	},
	Responses: map[int]*openapi.Response{
		200: {Description: "Content items"},
		400: openapi.ResponseRef("BadRequest"),
		503: unavailable,
	},
}

var coverageOp = &openapi.Operation{
	Summary: "Report content coverage against expected topics",
	Parameters: []*openapi.Parameter{
		openapi.QueryParam("expected_topics", "string", "Expected topic, repeatable", false),
	},
	Responses: map[int]*openapi.Response{
		200: openapi.ResponseJSON("Coverage report", "ContentCoverage"),
		503: unavailable,
	},
}

var suggestOp = &openapi.Operation{
	Summary:     "Suggest content for a gap",
	RequestBody: openapi.RequestBodyJSON("SuggestionRequest", true),
	Responses: map[int]*openapi.Response{
		200: openapi.ResponseJSON("Content suggestion", "ContentSuggestion"),
		400: openapi.ResponseRef("BadRequest"),
		404: openapi.ResponseRef("NotFound"),
		503: unavailable,
	},
}
