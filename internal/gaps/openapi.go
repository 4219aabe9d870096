package gaps

import "github.com/JaimeStill/lacuna/pkg/openapi"

var zero, one = 0.0, 1.0

// Schemas are the component schemas referenced by gap operations.
var Schemas = map[string]*openapi.Schema{
	"Gap": {
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"id":             {Type: "string", Format: "uuid"},
			"title":          {Type: "string"},
			"description":    {Type: "string"},
			"topic":          {Type: "string"},
			"priority":       {Type: "string", Enum: []any{"critical", "high", "medium", "low"}},
			"impact_score":   {Type: "number"},
			"status":         {Type: "string", Enum: []any{"open", "in_progress", "resolved"}},
			"signal_count":   {Type: "integer"},
			"search_count":   {Type: "integer"},
			"ticket_count":   {Type: "integer"},
			"last_signal_at": {Type: "string", Format: "date-time"},
			"version":        {Type: "integer"},
			"created_at":     {Type: "string", Format: "date-time"},
			"updated_at":     {Type: "string", Format: "date-time"},
			"resolved_at":    {Type: "string", Format: "date-time"},
		},
	},
	"CreateGap": {
		Type:     "object",
		Required: []string{"title", "topic"},
		Properties: map[string]*openapi.Schema{
			"title":        {Type: "string"},
			"description":  {Type: "string"},
			"topic":        {Type: "string"},
			"impact_score": {Type: "number", Minimum: &zero, Maximum: &one},
			"priority": {
				Type:        "string",
				Enum:        []any{"critical", "high", "medium", "low"},
				Description: "Must match the tier of impact_score when set",
			},
		},
	},
	"SignalBatch": {
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"search_queries": {
				Type: "array",
				Items: &openapi.Schema{
					Type:     "object",
					Required: []string{"query"},
					Properties: map[string]*openapi.Schema{
						"query":     {Type: "string"},
						"count":     {Type: "integer"},
						"topic":     {Type: "string"},
						"timestamp": {Type: "string", Format: "date-time"},
					},
				},
			},
			"support_tickets": {
				Type: "array",
				Items: &openapi.Schema{
					Type: "object",
					Properties: map[string]*openapi.Schema{
						"id":          {Type: "string"},
						"subject":     {Type: "string"},
						"description": {Type: "string"},
						"category":    {Type: "string"},
						"resolution":  {Type: "string"},
						"created_at":  {Type: "string", Format: "date-time"},
					},
				},
			},
		},
	},
	"DetectResult": {
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"gaps":             {Type: "array", Items: openapi.SchemaRef("Gap")},
			"failures":         {Type: "array", Items: openapi.SchemaRef("ClusterFailure")},
			"signals_analyzed": {Type: "integer"},
			"clusters":         {Type: "integer"},
		},
	},
	"ClusterFailure": {
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"cluster_id": {Type: "string"},
			"topic":      {Type: "string"},
			"kind":       {Type: "string", Enum: []any{"generation", "timeout", "storage", "canceled"}},
			"reason":     {Type: "string"},
		},
	},
}

var listOp = &openapi.Operation{
	Summary: "List gaps",
	Parameters: []*openapi.Parameter{
		openapi.QueryParam("page", "integer", "Page number", false),
		openapi.QueryParam("page_size", "integer", "Results per page", false),
		openapi.QueryParam("search", "string", "Search title, description, and topic", false),
		openapi.QueryParam("sort", "string", "Sort fields, default -impact_score", false),
		openapi.QueryParam("status", "string", "Filter by status", false),
		openapi.QueryParam("priority", "string", "Filter by priority", false),
		openapi.QueryParam("topic", "string", "Filter by topic", false),
		openapi.QueryParam("min_impact", "number", "Minimum impact score", false),
	},
	Responses: map[int]*openapi.Response{
		200: {Description: "Page of gaps"},
		400: openapi.ResponseRef("BadRequest"),
	},
}

var findOp = &openapi.Operation{
	Summary:    "Find a gap",
	Parameters: []*openapi.Parameter{openapi.PathParam("id", "Gap ID")},
	Responses: map[int]*openapi.Response{
		200: openapi.ResponseJSON("Gap", "Gap"),
		404: openapi.ResponseRef("NotFound"),
	},
}

var createOp = &openapi.Operation{
	Summary:     "Record a manually reported gap",
	RequestBody: openapi.RequestBodyJSON("CreateGap", true),
	Responses: map[int]*openapi.Response{
		201: openapi.ResponseJSON("Created gap", "Gap"),
		400: openapi.ResponseRef("BadRequest"),
		409: openapi.ResponseRef("Conflict"),
	},
}

var analyzeOp = &openapi.Operation{
	Summary:     "Detect gaps from search queries and support tickets",
	RequestBody: openapi.RequestBodyJSON("SignalBatch", true),
	Responses: map[int]*openapi.Response{
		200: openapi.ResponseJSON("Detection result", "DetectResult"),
		400: openapi.ResponseRef("BadRequest"),
	},
}

var statusOp = &openapi.Operation{
	Summary: "Transition a gap's status",
	Parameters: []*openapi.Parameter{
		openapi.PathParam("id", "Gap ID"),
		openapi.QueryParam("status", "string", "Target status", true),
	},
	Responses: map[int]*openapi.Response{
		200: openapi.ResponseJSON("Updated gap", "Gap"),
		400: openapi.ResponseRef("BadRequest"),
		404: openapi.ResponseRef("NotFound"),
		409: openapi.ResponseRef("Conflict"),
	},
}
