package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"renewables-analytics/internal/models"
	"renewables-analytics/internal/repository"
	"renewables-analytics/internal/services"
	"renewables-analytics/pkg/logging"
	"renewables-analytics/pkg/metrics"
)

func f64(v float64) *float64 { return &v }
func str(v string) *string   { return &v }

func testRecords() []models.Record {
	return []models.Record{
		{Region: "A", Year: 2015, RenewablePct: f64(10), GDP: f64(100)},
		{Region: "A", Year: 2016, RenewablePct: f64(12), GDP: f64(110)},
		{Region: "A", Year: 2017, RenewablePct: f64(14), GDP: f64(120)},
		{Region: "B", Year: 2015, RenewablePct: f64(20), GDP: f64(300)},
		{Region: "B", Year: 2016, RenewablePct: f64(18), GDP: f64(280)},
		{Region: "B", Year: 2017, RenewablePct: f64(16), GDP: f64(260)},
		{Region: "AT", Year: 2020, Source: str("Solar"), EnergyBalance: f64(20)},
		{Region: "AT", Year: 2020, Source: str("Total"), EnergyBalance: f64(500)},
		{Region: "DE", Year: 2020, Source: str("Wind"), EnergyBalance: f64(60)},
	}
}

// brokenRepository fails every call
type brokenRepository struct{}

func (brokenRepository) LoadDataset(context.Context, repository.DatasetFilter) (*models.Dataset, error) {
	return nil, errors.New("connection refused")
}

func (brokenRepository) ListRegions(context.Context) ([]string, error) {
	return nil, errors.New("connection refused")
}

func (brokenRepository) HealthCheck(context.Context) error {
	return errors.New("connection refused")
}

func newTestRouter(t *testing.T, repo repository.DatasetRepository) *mux.Router {
	t.Helper()

	collector := metrics.NewCollectorWithRegistry("test", prometheus.NewRegistry())
	logger := logging.NewNopLogger()
	svc := services.NewAnalyticsService(repo, nil, logger, collector, services.Options{MaxFilterRegions: 3})

	router := mux.NewRouter()
	router.Use(RequestIDMiddleware)
	NewAnalyticsHandler(svc, logger, collector).RegisterRoutes(router)
	return router
}

func serve(router http.Handler, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestGetReport(t *testing.T) {
	router := newTestRouter(t, repository.NewMemoryRepository(testRecords()))

	tests := []struct {
		name      string
		target    string
		wantField string
		wantChart string
	}{
		{"global trends", "/api/analysis/global-trends?year_from=2015&year_to=2017", "trend_direction", "yearly_averages_plot"},
		{"regions ranking", "/api/analysis/regions-ranking", "fastest_growing", "ranking_plot"},
		{"correlation", "/api/analysis/correlation?indicator=gdp", "overall_correlation", "yearly_averages_plot"},
		{"energy sources", "/api/analysis/energy-sources?value_col=energy_balance", "sources", "timeseries_plot"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(router, tt.target)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))

			body := decode(t, rec)
			assert.Contains(t, body, tt.wantField)
			assert.Contains(t, body, tt.wantChart)
		})
	}
}

func TestGetReport_WithoutChart(t *testing.T) {
	router := newTestRouter(t, repository.NewMemoryRepository(testRecords()))

	body := decode(t, serve(router, "/api/analysis/global-trends?chart=false"))
	assert.Contains(t, body, "yearly_averages")
	assert.NotContains(t, body, "yearly_averages_plot")
}

func TestGetReport_AnalysisErrorIsOK(t *testing.T) {
	router := newTestRouter(t, repository.NewMemoryRepository(testRecords()))

	rec := serve(router, "/api/analysis/global-trends?value_col=population")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, `Column "population" not found in dataset`, body["error"])
	assert.Contains(t, body, "available_columns")
}

func TestGetReport_BadParameters(t *testing.T) {
	router := newTestRouter(t, repository.NewMemoryRepository(testRecords()))

	for _, target := range []string{
		"/api/analysis/global-trends?year_from=abc",
		"/api/analysis/global-trends?year_from=2020&year_to=2010",
		"/api/analysis/regions-ranking?year_to=1800",
		"/api/analysis/correlation?value_col=wind_speed",
	} {
		rec := serve(router, target)
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)

		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, http.StatusBadRequest, resp.Code)
	}
}

func TestGetReport_LoadFailure(t *testing.T) {
	router := newTestRouter(t, brokenRepository{})

	rec := serve(router, "/api/analysis/global-trends")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, http.StatusServiceUnavailable, serve(router, "/health").Code)
}

func TestGetOverview(t *testing.T) {
	router := newTestRouter(t, repository.NewMemoryRepository(testRecords()))

	rec := serve(router, "/api/analysis/overview")
	require.Equal(t, http.StatusOK, rec.Code)

	var overview models.Overview
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &overview))
	assert.NotNil(t, overview.GlobalTrends)
	assert.NotNil(t, overview.RegionsRanking)
}

func TestGetChart(t *testing.T) {
	router := newTestRouter(t, repository.NewMemoryRepository(testRecords()))

	rec := serve(router, "/api/analysis/global-trends/chart.png")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")))

	assert.Equal(t, http.StatusNotFound, serve(router, "/api/analysis/forecast/chart.png").Code)
}

func TestGetExport(t *testing.T) {
	router := newTestRouter(t, repository.NewMemoryRepository(testRecords()))

	rec := serve(router, "/api/analysis/regions-ranking/export.xlsx")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "regions-ranking.xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	assert.NotEmpty(t, f.GetSheetList())
}

func TestGetFiltered(t *testing.T) {
	router := newTestRouter(t, repository.NewMemoryRepository(testRecords()))

	rec := serve(router, "/api/filtered/energy-sources?regions=AT,DE")
	require.Equal(t, http.StatusOK, rec.Code)

	var mix models.EnergySourcesByRegions
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &mix))
	assert.Equal(t, []models.SourceValue{{Source: "Solar", Value: 20}}, mix["AT"].Sources)

	rec = serve(router, "/api/filtered/timeseries?regions=AT")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(router, "/api/filtered/yearly-trends?regions=A,B,C,D")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(router, "/api/filtered/timeseries?energy_type=nuclear")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, decode(t, rec)["error"], "nuclear")
}

func TestGetRegions(t *testing.T) {
	router := newTestRouter(t, repository.NewMemoryRepository(testRecords()))

	rec := serve(router, "/api/regions")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp RegionsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{"A", "AT", "B", "DE"}, resp.Regions)
	assert.Equal(t, 4, resp.Total)
}

func TestSendJSON_EncodeFailure(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewStructuredLogger("test", "0.0.0", logging.InfoLevel)
	logger.SetOutput(&buf)
	collector := metrics.NewCollectorWithRegistry("test", prometheus.NewRegistry())
	svc := services.NewAnalyticsService(repository.NewMemoryRepository(testRecords()), nil, logger, collector, services.Options{})
	h := NewAnalyticsHandler(svc, logger, collector)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/analysis/global-trends", nil)
	h.sendJSON(rec, req, map[string]float64{"overall_growth_rate": math.NaN()}, http.StatusOK)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, http.StatusInternalServerError, resp.Code)
	assert.Equal(t, "failed to encode response", resp.Message)

	assert.Contains(t, buf.String(), "[API_ENCODE_ERROR]")
	assert.Contains(t, buf.String(), "/api/analysis/global-trends")
}

func TestRequestIDMiddleware_ReusesIncomingID(t *testing.T) {
	var seen string
	handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = logging.RequestIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "req-42", seen)
	assert.Equal(t, "req-42", rec.Header().Get(RequestIDHeader))
}

func TestAccessLogMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewStructuredLogger("test", "0.0.0", logging.InfoLevel)
	logger.SetOutput(&buf)

	handler := RequestIDMiddleware(AccessLogMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Contains(t, buf.String(), "[API_REQUEST]")
	assert.Contains(t, buf.String(), "418")
}

func TestOpenAPISpec(t *testing.T) {
	router := newTestRouter(t, repository.NewMemoryRepository(testRecords()))

	body := decode(t, serve(router, "/api/docs/openapi.json"))
	paths, ok := body["paths"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, paths, "/api/analysis/correlation")
	assert.Contains(t, paths, "/api/filtered/timeseries")

	rec := serve(router, "/api/docs")
	assert.Contains(t, rec.Body.String(), "/api/docs/openapi.json")
}
