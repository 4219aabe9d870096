package reports

import "github.com/JaimeStill/lacuna/pkg/openapi"

// Schemas are the component schemas referenced by report operations.
var Schemas = map[string]*openapi.Schema{
	"Report": {
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"id":                 {Type: "string", Format: "uuid"},
			"kind":               {Type: "string", Enum: []any{"snapshot", "analysis_run"}},
			"generated_at":       {Type: "string", Format: "date-time"},
			"gap_count":          {Type: "integer"},
			"faq_count":          {Type: "integer"},
			"gaps_by_priority":   {Type: "object", Description: "Gap counts keyed by priority"},
			"gaps_by_status":     {Type: "object", Description: "Gap counts keyed by status"},
			"faqs_by_status":     {Type: "object", Description: "FAQ counts keyed by status"},
			"average_impact":     {Type: "number"},
			"average_confidence": {Type: "number"},
			"helpful_total":      {Type: "integer"},
			"not_helpful_total":  {Type: "integer"},
			"coverage":           {Type: "number", Description: "Resolved gaps over all gaps"},
			"top_gaps":           {Type: "array", Items: openapi.SchemaRef("GapHighlight"), Description: "Highest-impact unresolved gaps"},
			"run":                openapi.SchemaRef("AnalysisRun"),
			"archive_key":        {Type: "string"},
		},
	},
	"GapHighlight": {
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"id":           {Type: "string", Format: "uuid"},
			"title":        {Type: "string"},
			"topic":        {Type: "string"},
			"priority":     {Type: "string", Enum: []any{"critical", "high", "medium", "low"}},
			"status":       {Type: "string", Enum: []any{"open", "in_progress", "resolved"}},
			"impact_score": {Type: "number"},
		},
	},
	"AnalysisRun": {
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"signals_analyzed": {Type: "integer"},
			"gaps_upserted":    {Type: "integer"},
			"faqs_generated":   {Type: "integer"},
			"faqs_skipped":     {Type: "integer"},
			"failures":         {Type: "array", Items: openapi.SchemaRef("ClusterFailure")},
			"duration_ms":      {Type: "integer"},
		},
	},
	"RunResult": {
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"detection":  openapi.SchemaRef("DetectResult"),
			"generation": openapi.SchemaRef("GenerateResult"),
			"report":     openapi.SchemaRef("Report"),
		},
	},
}

var listOp = &openapi.Operation{
	Summary: "List analysis reports",
	Parameters: []*openapi.Parameter{
		openapi.QueryParam("page", "integer", "Page number", false),
		openapi.QueryParam("page_size", "integer", "Results per page", false),
		openapi.QueryParam("sort", "string", "Sort fields, default -generated_at", false),
		openapi.QueryParam("kind", "string", "Filter by report kind", false),
	},
	Responses: map[int]*openapi.Response{
		200: {Description: "Page of reports"},
		400: openapi.ResponseRef("BadRequest"),
	},
}

var findOp = &openapi.Operation{
	Summary:    "Find a report",
	Parameters: []*openapi.Parameter{openapi.PathParam("id", "Report ID")},
	Responses: map[int]*openapi.Response{
		200: openapi.ResponseJSON("Report", "Report"),
		404: openapi.ResponseRef("NotFound"),
	},
}

var archiveOp = &openapi.Operation{
	Summary:    "Download a report's archived JSON copy",
	Parameters: []*openapi.Parameter{openapi.PathParam("id", "Report ID")},
	Responses: map[int]*openapi.Response{
		200: openapi.ResponseJSON("Archived report", "Report"),
		404: openapi.ResponseRef("NotFound"),
	},
}

var snapshotOp = &openapi.Operation{
	Summary: "Take a snapshot report now",
	Responses: map[int]*openapi.Response{
		201: openapi.ResponseJSON("Snapshot", "Report"),
	},
}

var runOp = &openapi.Operation{
	Summary:     "Run detection and generation, then record the run",
	RequestBody: openapi.RequestBodyJSON("SignalBatch", true),
	Responses: map[int]*openapi.Response{
		200: openapi.ResponseJSON("Run result", "RunResult"),
		400: openapi.ResponseRef("BadRequest"),
	},
}
