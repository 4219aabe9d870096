package faqs

import "github.com/JaimeStill/lacuna/pkg/openapi"

// Schemas are the component schemas referenced by FAQ operations.
var Schemas = map[string]*openapi.Schema{
	"FAQ": {
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"id":                {Type: "string", Format: "uuid"},
			"question":          {Type: "string"},
			"answer":            {Type: "string"},
			"category":          {Type: "string"},
			"topic":             {Type: "string"},
			"status":            {Type: "string", Enum: []any{"draft", "pending_review", "approved", "published"}},
			"origin":            {Type: "string", Enum: []any{"generated", "curated"}},
			"confidence_score":  {Type: "number"},
			"helpful_count":     {Type: "integer"},
			"not_helpful_count": {Type: "integer"},
			"helpfulness_ratio": {Type: "number", Description: "Null until feedback exists"},
			"source_tickets":    {Type: "array", Items: &openapi.Schema{Type: "string"}},
			"related_queries":   {Type: "array", Items: &openapi.Schema{Type: "string"}},
			"version":           {Type: "integer"},
			"created_at":        {Type: "string", Format: "date-time"},
			"updated_at":        {Type: "string", Format: "date-time"},
			"published_at":      {Type: "string", Format: "date-time"},
		},
	},
	"CreateFAQ": {
		Type:     "object",
		Required: []string{"question", "answer"},
		Properties: map[string]*openapi.Schema{
			"question": {Type: "string"},
			"answer":   {Type: "string"},
			"category": {Type: "string"},
		},
	},
	"EditFAQ": {
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"question": {Type: "string"},
			"answer":   {Type: "string"},
			"category": {Type: "string"},
		},
	},
	"GenerateResult": {
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"faqs":     {Type: "array", Items: openapi.SchemaRef("FAQ")},
			"failures": {Type: "array", Items: openapi.SchemaRef("ClusterFailure")},
			"skipped": {
				Type: "array",
				Items: &openapi.Schema{
					Type: "object",
					Properties: map[string]*openapi.Schema{
						"cluster_id": {Type: "string"},
						"topic":      {Type: "string"},
						"faq_id":     {Type: "string", Format: "uuid"},
					},
				},
			},
			"signals_analyzed": {Type: "integer"},
			"clusters":         {Type: "integer"},
		},
	},
}

var idParam = openapi.PathParam("id", "FAQ ID")

var listOp = &openapi.Operation{
	Summary: "List FAQs",
	Parameters: []*openapi.Parameter{
		openapi.QueryParam("page", "integer", "Page number", false),
		openapi.QueryParam("page_size", "integer", "Results per page", false),
		openapi.QueryParam("search", "string", "Search question, answer, and category", false),
		openapi.QueryParam("sort", "string", "Sort fields, default -created_at", false),
		openapi.QueryParam("status", "string", "Filter by status", false),
		openapi.QueryParam("category", "string", "Filter by category", false),
		openapi.QueryParam("topic", "string", "Filter by topic", false),
	},
	Responses: map[int]*openapi.Response{
		200: {Description: "Page of FAQs"},
		400: openapi.ResponseRef("BadRequest"),
	},
}

var findOp = &openapi.Operation{
	Summary:    "Find an FAQ",
	Parameters: []*openapi.Parameter{idParam},
	Responses: map[int]*openapi.Response{
		200: openapi.ResponseJSON("FAQ", "FAQ"),
		404: openapi.ResponseRef("NotFound"),
	},
}

var createOp = &openapi.Operation{
	Summary:     "Create a curated FAQ draft",
	RequestBody: openapi.RequestBodyJSON("CreateFAQ", true),
	Responses: map[int]*openapi.Response{
		201: openapi.ResponseJSON("Created FAQ", "FAQ"),
		400: openapi.ResponseRef("BadRequest"),
	},
}

var editOp = &openapi.Operation{
	Summary:     "Edit a draft or pending FAQ",
	Parameters:  []*openapi.Parameter{idParam},
	RequestBody: openapi.RequestBodyJSON("EditFAQ", true),
	Responses: map[int]*openapi.Response{
		200: openapi.ResponseJSON("Updated FAQ", "FAQ"),
		400: openapi.ResponseRef("BadRequest"),
		404: openapi.ResponseRef("NotFound"),
		409: openapi.ResponseRef("Conflict"),
	},
}

var generateOp = &openapi.Operation{
	Summary:     "Draft FAQs from support tickets",
	RequestBody: openapi.RequestBodyJSON("SignalBatch", true),
	Responses: map[int]*openapi.Response{
		200: openapi.ResponseJSON("Generation result", "GenerateResult"),
		400: openapi.ResponseRef("BadRequest"),
	},
}

var submitOp = &openapi.Operation{
	Summary:    "Submit a draft for review",
	Parameters: []*openapi.Parameter{idParam},
	Responses: map[int]*openapi.Response{
		200: openapi.ResponseJSON("Submitted FAQ", "FAQ"),
		404: openapi.ResponseRef("NotFound"),
		409: openapi.ResponseRef("Conflict"),
	},
}

var approveOp = &openapi.Operation{
	Summary:    "Approve a pending FAQ",
	Parameters: []*openapi.Parameter{idParam},
	Responses: map[int]*openapi.Response{
		200: openapi.ResponseJSON("Approved FAQ", "FAQ"),
		404: openapi.ResponseRef("NotFound"),
		409: openapi.ResponseRef("Conflict"),
	},
}

var publishOp = &openapi.Operation{
	Summary: "Publish an FAQ and resolve the gaps on its topic",
	Parameters: []*openapi.Parameter{
		idParam,
		openapi.QueryParam("override", "boolean", "Publish a draft regardless of confidence", false),
	},
	Responses: map[int]*openapi.Response{
		200: openapi.ResponseJSON("Published FAQ", "FAQ"),
		404: openapi.ResponseRef("NotFound"),
		409: openapi.ResponseRef("Conflict"),
		422: openapi.ResponseRef("NotReady"),
	},
}

var feedbackOp = &openapi.Operation{
	Summary: "Record reader feedback",
	Parameters: []*openapi.Parameter{
		idParam,
		openapi.QueryParam("helpful", "boolean", "Whether the FAQ helped", true),
	},
	Responses: map[int]*openapi.Response{
		200: openapi.ResponseJSON("FAQ with updated counters", "FAQ"),
		400: openapi.ResponseRef("BadRequest"),
		404: openapi.ResponseRef("NotFound"),
	},
}
