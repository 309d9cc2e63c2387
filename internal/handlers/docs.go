package handlers

import (
	"encoding/json"
	"net/http"

	"renewables-analytics/internal/models"
)

const apiTitle = "Renewables Analytics API"

type schema = map[string]interface{}

func queryParam(name, description string, s schema) schema {
	return schema{
		"name":        name,
		"in":          "query",
		"description": description,
		"required":    false,
		"schema":      s,
	}
}

var analysisParams = []schema{
	queryParam("year_from", "First year included", schema{"type": "integer", "minimum": models.MinYear, "maximum": models.MaxYear}),
	queryParam("year_to", "Last year included", schema{"type": "integer", "minimum": models.MinYear, "maximum": models.MaxYear}),
	queryParam("value_col", "Numeric column analysed (default: renewable_pct)", schema{"type": "string", "enum": models.NumericColumns}),
	queryParam("country", "Case-insensitive substring of the region code", schema{"type": "string"}),
	queryParam("indicator", "Indicator correlated against (correlation only)", schema{"type": "string", "enum": models.Indicators, "default": models.IndicatorGDP}),
	queryParam("chart", "Attach the companion chart figure", schema{"type": "boolean", "default": true}),
}

var filterParams = []schema{
	queryParam("regions", "Comma separated region codes", schema{"type": "string"}),
	queryParam("year_from", "First year included", schema{"type": "integer"}),
	queryParam("year_to", "Last year included", schema{"type": "integer"}),
	queryParam("energy_type", "Case-insensitive substring of the energy source", schema{"type": "string"}),
}

var reportPathParam = schema{
	"name":     "report",
	"in":       "path",
	"required": true,
	"schema":   schema{"type": "string", "enum": models.Reports},
}

func jsonResponse(description string, body schema) schema {
	return schema{
		"description": description,
		"content": schema{
			"application/json": schema{"schema": body},
		},
	}
}

var errorResponses = schema{
	"400": jsonResponse("Invalid query parameter", schema{"$ref": "#/components/schemas/ErrorResponse"}),
	"500": jsonResponse("Dataset could not be loaded", schema{"$ref": "#/components/schemas/ErrorResponse"}),
}

func getOperation(summary string, params []schema, ok schema) schema {
	responses := schema{"200": ok}
	for code, resp := range errorResponses {
		responses[code] = resp
	}
	return schema{"get": schema{
		"summary":    summary,
		"parameters": params,
		"responses":  responses,
	}}
}

func reportResponse(name string) schema {
	return jsonResponse("Report, or an analysis error", schema{
		"oneOf": []schema{
			{"$ref": "#/components/schemas/" + name},
			{"$ref": "#/components/schemas/AnalysisError"},
		},
	})
}

// OpenAPISpec returns the OpenAPI 3.0 document for the API
func OpenAPISpec(w http.ResponseWriter, r *http.Request) {
	number := schema{"type": "number", "nullable": true}
	trend := schema{
		"type":       "object",
		"nullable":   true,
		"properties": schema{
			"slope":     schema{"type": "number"},
			"intercept": schema{"type": "number"},
			"r_squared": number,
		},
	}

	spec := schema{
		"openapi": "3.0.0",
		"info": schema{
			"title":       apiTitle,
			"description": "Descriptive statistics over a regional renewable energy dataset",
			"version":     "1.0.0",
		},
		"servers": []map[string]string{
			{"url": "http://localhost:8080", "description": "Local development server"},
		},
		"paths": schema{
			"/api/analysis/global-trends":   getOperation("Global renewable trends", analysisParams, reportResponse("GlobalTrendsReport")),
			"/api/analysis/energy-sources":  getOperation("Energy sources comparison", analysisParams, reportResponse("EnergySourcesReport")),
			"/api/analysis/regions-ranking": getOperation("Regions ranking", analysisParams, reportResponse("RegionsRankingReport")),
			"/api/analysis/correlation":     getOperation("Correlation with an economic indicator", analysisParams, reportResponse("CorrelationReport")),
			"/api/analysis/overview":        getOperation("All reports over one dataset load", analysisParams, jsonResponse("Overview", schema{"type": "object"})),
			"/api/analysis/{report}/chart.png": schema{"get": schema{
				"summary":    "PNG preview of the report chart",
				"parameters": append([]schema{reportPathParam}, analysisParams...),
				"responses": schema{
					"200": schema{"description": "PNG image", "content": schema{"image/png": schema{}}},
					"404": schema{"description": "Unknown report or nothing to draw"},
				},
			}},
			"/api/analysis/{report}/export.xlsx": schema{"get": schema{
				"summary":    "Excel workbook of the report tables",
				"parameters": append([]schema{reportPathParam}, analysisParams...),
				"responses": schema{
					"200": schema{"description": "Workbook", "content": schema{"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": schema{}}},
					"404": schema{"description": "Unknown report"},
				},
			}},
			"/api/filtered/yearly-trends":  getOperation("Yearly energy averages per region", filterParams, jsonResponse("Region to yearly averages", schema{"type": "object"})),
			"/api/filtered/energy-sources": getOperation("Energy mix per region", filterParams, jsonResponse("Region to source totals", schema{"type": "object"})),
			"/api/filtered/timeseries":     getOperation("Yearly totals of one energy type per region", filterParams, jsonResponse("Region to yearly totals", schema{"type": "object"})),
			"/api/regions": getOperation("Available region codes", nil, jsonResponse("Regions", schema{
				"type": "object",
				"properties": schema{
					"regions": schema{"type": "array", "items": schema{"type": "string"}},
					"total":   schema{"type": "integer"},
				},
			})),
			"/health": schema{"get": schema{
				"summary": "Liveness and dataset store check",
				"responses": schema{
					"200": schema{"description": "Healthy"},
					"503": schema{"description": "Dataset store unreachable"},
				},
			}},
		},
		"components": schema{
			"schemas": schema{
				"ErrorResponse": schema{
					"type": "object",
					"properties": schema{
						"error":   schema{"type": "string"},
						"message": schema{"type": "string"},
						"code":    schema{"type": "integer"},
					},
				},
				"AnalysisError": schema{
					"type": "object",
					"properties": schema{
						"error":             schema{"type": "string"},
						"available_columns": schema{"type": "array", "items": schema{"type": "string"}},
					},
				},
				"GlobalTrendsReport": schema{
					"type": "object",
					"properties": schema{
						"overall_growth_rate":    number,
						"trend_direction":        schema{"type": "string", "enum": []string{"increasing", "decreasing", "stable"}},
						"trend":                  trend,
						"yearly_averages":        schema{"type": "array", "items": schema{"type": "object"}},
						"year_over_year_changes": schema{"type": "array", "items": schema{"type": "object"}},
						"top_regions":            schema{"type": "array", "items": schema{"type": "object"}},
						"period":                 schema{"type": "object"},
						"metric_used":            schema{"type": "string"},
					},
				},
				"EnergySourcesReport": schema{
					"type": "object",
					"properties": schema{
						"sources":                 schema{"type": "array", "items": schema{"type": "object"}},
						"timeseries_by_source":    schema{"type": "object"},
						"source_column":           schema{"type": "string"},
						"value_column":            schema{"type": "string"},
						"renewable_pct_available": schema{"type": "boolean"},
					},
				},
				"RegionsRankingReport": schema{
					"type": "object",
					"properties": schema{
						"leading_by_value": schema{"type": "array", "items": schema{"type": "object"}},
						"fastest_growing":  schema{"type": "array", "items": schema{"type": "object"}},
						"lagging":          schema{"type": "array", "items": schema{"type": "object"}},
						"total_regions":    schema{"type": "integer"},
						"metric_used":      schema{"type": "string"},
					},
				},
				"CorrelationReport": schema{
					"type": "object",
					"properties": schema{
						"overall_correlation":   number,
						"correlation_strength":  schema{"type": "string", "enum": []string{"strong", "moderate", "weak", "none"}},
						"regional_correlations": schema{"type": "array", "items": schema{"type": "object"}},
						"yearly_averages":       schema{"type": "array", "items": schema{"type": "object"}},
						"renewable_trend":       trend,
						"indicator_trend":       trend,
						"indicator_type":        schema{"type": "string"},
						"value_column":          schema{"type": "string"},
						"data_points":           schema{"type": "integer"},
					},
				},
			},
		},
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(spec)
}
