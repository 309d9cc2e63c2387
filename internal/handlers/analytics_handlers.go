package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"renewables-analytics/internal/charts"
	"renewables-analytics/internal/export"
	"renewables-analytics/internal/models"
	"renewables-analytics/internal/services"
	"renewables-analytics/pkg/logging"
	"renewables-analytics/pkg/metrics"
)

// AnalyticsHandler handles analysis API endpoints
type AnalyticsHandler struct {
	service *services.AnalyticsService
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(
	service *services.AnalyticsService,
	logger *logging.StructuredLogger,
	metricsCollector *metrics.Collector,
) *AnalyticsHandler {
	return &AnalyticsHandler{
		service: service,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// RegionsResponse lists the available region codes
type RegionsResponse struct {
	Regions []string `json:"regions"`
	Total   int      `json:"total"`
}

// parseYear reads an optional integer year query parameter
func parseYear(r *http.Request, name string) (*int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, nil
	}
	year, err := strconv.Atoi(raw)
	if err != nil {
		return nil, &models.ValidationError{Field: name, Value: raw, Message: "expected an integer year"}
	}
	return &year, nil
}

// parseAnalysisRequest builds a request for report from the query string
func parseAnalysisRequest(r *http.Request, report string) (models.AnalysisRequest, error) {
	q := r.URL.Query()
	req := models.AnalysisRequest{
		Report:      report,
		ValueColumn: strings.TrimSpace(q.Get("value_col")),
		Country:     strings.TrimSpace(q.Get("country")),
		Indicator:   strings.TrimSpace(q.Get("indicator")),
	}

	var err error
	if req.YearFrom, err = parseYear(r, "year_from"); err != nil {
		return req, err
	}
	if req.YearTo, err = parseYear(r, "year_to"); err != nil {
		return req, err
	}
	return req, nil
}

// parseFilterRequest builds a filtered view request from the query string
func parseFilterRequest(r *http.Request) (models.FilterRequest, error) {
	q := r.URL.Query()
	f := models.FilterRequest{EnergyType: strings.TrimSpace(q.Get("energy_type"))}

	for _, region := range strings.Split(q.Get("regions"), ",") {
		if region = strings.TrimSpace(region); region != "" {
			f.Regions = append(f.Regions, region)
		}
	}

	var err error
	if f.YearFrom, err = parseYear(r, "year_from"); err != nil {
		return f, err
	}
	if f.YearTo, err = parseYear(r, "year_to"); err != nil {
		return f, err
	}
	return f, nil
}

// wantChart reports whether the companion figure should be attached
func wantChart(r *http.Request) bool {
	raw := r.URL.Query().Get("chart")
	if raw == "" {
		return true
	}
	on, err := strconv.ParseBool(raw)
	return err != nil || on
}

// observe records the latency of endpoint when the returned func is called
func (h *AnalyticsHandler) observe(endpoint string) func() {
	startTime := time.Now()
	return func() {
		h.metrics.APIRequestDuration.WithLabelValues(endpoint).Observe(time.Since(startTime).Seconds())
	}
}

// GetReport handles GET /api/analysis/{report}
func (h *AnalyticsHandler) GetReport(report string) http.HandlerFunc {
	endpoint := "/api/analysis/" + report

	return func(w http.ResponseWriter, r *http.Request) {
		defer h.observe(endpoint)()
		ctx := r.Context()

		req, err := parseAnalysisRequest(r, report)
		if err != nil {
			h.handleError(w, r, endpoint, err)
			return
		}

		result, err := h.service.Report(ctx, req)
		if err != nil {
			h.handleError(w, r, endpoint, err)
			return
		}

		if !wantChart(r) {
			h.metrics.RecordAPIRequest(endpoint, r.Method, "200")
			h.sendJSON(w, r, result, http.StatusOK)
			return
		}

		body, err := withChart(result)
		if err != nil {
			h.handleError(w, r, endpoint, err)
			return
		}

		h.metrics.RecordAPIRequest(endpoint, r.Method, "200")
		h.sendJSON(w, r, body, http.StatusOK)
	}
}

// withChart merges the report's companion figure into its JSON object
func withChart(report interface{}) (map[string]json.RawMessage, error) {
	fig, field, err := charts.ForReport(report)
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(report)
	if err != nil {
		return nil, fmt.Errorf("failed to encode report: %w", err)
	}
	body := make(map[string]json.RawMessage)
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, fmt.Errorf("failed to decode report: %w", err)
	}

	if body[field], err = json.Marshal(fig); err != nil {
		return nil, fmt.Errorf("failed to encode chart: %w", err)
	}
	return body, nil
}

// GetOverview handles GET /api/analysis/overview
func (h *AnalyticsHandler) GetOverview(w http.ResponseWriter, r *http.Request) {
	const endpoint = "/api/analysis/overview"
	defer h.observe(endpoint)()

	req, err := parseAnalysisRequest(r, models.ReportGlobalTrends)
	if err != nil {
		h.handleError(w, r, endpoint, err)
		return
	}

	overview, err := h.service.Overview(r.Context(), req)
	if err != nil {
		h.handleError(w, r, endpoint, err)
		return
	}

	h.metrics.RecordAPIRequest(endpoint, r.Method, "200")
	h.sendJSON(w, r, overview, http.StatusOK)
}

// GetChart handles GET /api/analysis/{report}/chart.png
func (h *AnalyticsHandler) GetChart(w http.ResponseWriter, r *http.Request) {
	const endpoint = "/api/analysis/{report}/chart.png"
	defer h.observe(endpoint)()

	report, ok := h.reportVar(w, r, endpoint)
	if !ok {
		return
	}

	req, err := parseAnalysisRequest(r, report)
	if err != nil {
		h.handleError(w, r, endpoint, err)
		return
	}

	result, err := h.service.Report(r.Context(), req)
	if err != nil {
		h.handleError(w, r, endpoint, err)
		return
	}

	fig, _, err := charts.ForReport(result)
	if err != nil {
		h.handleError(w, r, endpoint, err)
		return
	}

	var buf bytes.Buffer
	if err := charts.RenderPNG(&buf, fig, charts.DefaultWidth, charts.DefaultHeight); err != nil {
		if errors.Is(err, charts.ErrNoData) {
			h.metrics.RecordAPIError("no_data", endpoint)
			h.sendError(w, r, "report has no data to chart", http.StatusNotFound)
			return
		}
		h.handleError(w, r, endpoint, err)
		return
	}

	h.metrics.RecordAPIRequest(endpoint, r.Method, "200")
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// GetExport handles GET /api/analysis/{report}/export.xlsx
func (h *AnalyticsHandler) GetExport(w http.ResponseWriter, r *http.Request) {
	const endpoint = "/api/analysis/{report}/export.xlsx"
	defer h.observe(endpoint)()

	report, ok := h.reportVar(w, r, endpoint)
	if !ok {
		return
	}

	req, err := parseAnalysisRequest(r, report)
	if err != nil {
		h.handleError(w, r, endpoint, err)
		return
	}

	result, err := h.service.Report(r.Context(), req)
	if err != nil {
		h.handleError(w, r, endpoint, err)
		return
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, result); err != nil {
		h.handleError(w, r, endpoint, err)
		return
	}

	h.metrics.RecordAPIRequest(endpoint, r.Method, "200")
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report+".xlsx"))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// reportVar reads and checks the {report} path variable
func (h *AnalyticsHandler) reportVar(w http.ResponseWriter, r *http.Request, endpoint string) (string, bool) {
	report := mux.Vars(r)["report"]
	if !models.IsReport(report) {
		h.metrics.RecordAPIError("not_found", endpoint)
		h.sendError(w, r, (&models.NotFoundError{Resource: "report", ID: report}).Error(), http.StatusNotFound)
		return "", false
	}
	return report, true
}

// GetFiltered handles GET /api/filtered/{view}
func (h *AnalyticsHandler) GetFiltered(view string) http.HandlerFunc {
	endpoint := "/api/filtered/" + view

	return func(w http.ResponseWriter, r *http.Request) {
		defer h.observe(endpoint)()
		ctx := r.Context()

		f, err := parseFilterRequest(r)
		if err != nil {
			h.handleError(w, r, endpoint, err)
			return
		}

		var result interface{}
		switch view {
		case services.ViewYearlyTrends:
			result, err = h.service.YearlyTrendsByRegions(ctx, f)
		case services.ViewEnergySources:
			result, err = h.service.EnergySourcesByRegions(ctx, f)
		case services.ViewTimeseries:
			result, err = h.service.TimeSeriesByEnergyType(ctx, f)
		default:
			err = &models.NotFoundError{Resource: "view", ID: view}
		}
		if err != nil {
			h.handleError(w, r, endpoint, err)
			return
		}

		h.metrics.RecordAPIRequest(endpoint, r.Method, "200")
		h.sendJSON(w, r, result, http.StatusOK)
	}
}

// GetRegions handles GET /api/regions
func (h *AnalyticsHandler) GetRegions(w http.ResponseWriter, r *http.Request) {
	const endpoint = "/api/regions"
	defer h.observe(endpoint)()

	regions, err := h.service.Regions(r.Context())
	if err != nil {
		h.handleError(w, r, endpoint, err)
		return
	}
	if regions == nil {
		regions = []string{}
	}

	h.metrics.RecordAPIRequest(endpoint, r.Method, "200")
	h.sendJSON(w, r, RegionsResponse{Regions: regions, Total: len(regions)}, http.StatusOK)
}

// HealthCheck handles GET /health
func (h *AnalyticsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	status := map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	code := http.StatusOK

	if err := h.service.HealthCheck(ctx); err != nil {
		h.logger.Warn(ctx, "[HEALTH_CHECK_FAILED] Dataset store unreachable", logging.Fields{
			"error": err.Error(),
		})
		status["status"] = "unhealthy"
		code = http.StatusServiceUnavailable
	}

	h.logger.Debug(ctx, "[HEALTH_CHECK] Health check requested", logging.Fields{"status": status["status"]})
	h.sendJSON(w, r, status, code)
}

// handleError maps service errors onto responses. Analysis errors are report
// outcomes and are returned with status 200.
func (h *AnalyticsHandler) handleError(w http.ResponseWriter, r *http.Request, endpoint string, err error) {
	var (
		aErr  *models.AnalysisError
		vErr  *models.ValidationError
		nfErr *models.NotFoundError
	)

	switch {
	case errors.As(err, &aErr):
		h.metrics.RecordAPIRequest(endpoint, r.Method, "200")
		h.sendJSON(w, r, aErr, http.StatusOK)
	case errors.As(err, &vErr):
		h.metrics.RecordAPIError("validation_error", endpoint)
		h.sendError(w, r, vErr.Error(), http.StatusBadRequest)
	case errors.As(err, &nfErr):
		h.metrics.RecordAPIError("not_found", endpoint)
		h.sendError(w, r, nfErr.Error(), http.StatusNotFound)
	default:
		h.logger.Error(r.Context(), "[API_REQUEST_ERROR] Request failed", logging.Fields{
			"endpoint": endpoint,
			"query":    r.URL.RawQuery,
		}, err)
		h.metrics.RecordAPIError("internal_error", endpoint)
		h.sendError(w, r, "failed to compute analysis", http.StatusInternalServerError)
	}
}

// sendJSON sends a JSON response. The body is encoded before the status is
// written so an encoding failure is answered with a 500.
func (h *AnalyticsHandler) sendJSON(w http.ResponseWriter, r *http.Request, data interface{}, statusCode int) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(data); err != nil {
		h.logger.Error(r.Context(), "[API_ENCODE_ERROR] Response could not be encoded", logging.Fields{
			"path":   r.URL.Path,
			"status": statusCode,
		}, err)
		h.metrics.RecordAPIError("encode_error", r.URL.Path)

		buf.Reset()
		json.NewEncoder(&buf).Encode(ErrorResponse{
			Error:   http.StatusText(http.StatusInternalServerError),
			Message: "failed to encode response",
			Code:    http.StatusInternalServerError,
		})
		statusCode = http.StatusInternalServerError
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	w.Write(buf.Bytes())
}

// sendError sends an error response
func (h *AnalyticsHandler) sendError(w http.ResponseWriter, r *http.Request, message string, statusCode int) {
	h.metrics.RecordAPIRequest(r.URL.Path, r.Method, strconv.Itoa(statusCode))

	response := ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	}

	h.sendJSON(w, r, response, statusCode)
}

// RegisterRoutes registers all analysis API routes
func (h *AnalyticsHandler) RegisterRoutes(router *mux.Router) {
	for _, report := range models.Reports {
		router.HandleFunc("/api/analysis/"+report, h.GetReport(report)).Methods("GET")
	}
	router.HandleFunc("/api/analysis/overview", h.GetOverview).Methods("GET")
	router.HandleFunc("/api/analysis/{report}/chart.png", h.GetChart).Methods("GET")
	router.HandleFunc("/api/analysis/{report}/export.xlsx", h.GetExport).Methods("GET")

	for _, view := range []string{services.ViewYearlyTrends, services.ViewEnergySources, services.ViewTimeseries} {
		router.HandleFunc("/api/filtered/"+view, h.GetFiltered(view)).Methods("GET")
	}

	router.HandleFunc("/api/regions", h.GetRegions).Methods("GET")
	router.HandleFunc("/api/docs", SwaggerUI).Methods("GET")
	router.HandleFunc("/api/docs/openapi.json", OpenAPISpec).Methods("GET")
	router.HandleFunc("/health", h.HealthCheck).Methods("GET")
}
