package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apierrors "companylens/internal/errors"
	"companylens/internal/services"
	"companylens/internal/shared/testutil"
	api "companylens/pkg/contracts/api/v1"
	"companylens/pkg/contracts/domain"
)

// MockDashboardService is a mock implementation of DashboardServiceInterface
type MockDashboardService struct {
	mock.Mock
}

func (m *MockDashboardService) CompanyDashboard(ctx context.Context, ticker string, opts services.QueryOptions) (*domain.Dashboard, error) {
	args := m.Called(ticker, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Dashboard), args.Error(1)
}

func (m *MockDashboardService) Similarity(ctx context.Context, dataset string, opts services.QueryOptions) (*api.SimilarityResponse, error) {
	args := m.Called(dataset, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*api.SimilarityResponse), args.Error(1)
}

func (m *MockDashboardService) Benchmark(ctx context.Context, ticker string) (*api.BenchmarkResponse, error) {
	args := m.Called(ticker)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*api.BenchmarkResponse), args.Error(1)
}

func (m *MockDashboardService) Datasets(ctx context.Context) ([]domain.DatasetSummary, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DatasetSummary), args.Error(1)
}

func (m *MockDashboardService) Definition(ctx context.Context, metric string) (domain.MetricDefinition, bool, error) {
	args := m.Called(metric)
	return args.Get(0).(domain.MetricDefinition), args.Bool(1), args.Error(2)
}

func newTestDashboardHandler(t *testing.T, svc DashboardServiceInterface) http.Handler {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	h := NewDashboardHandler(svc, nil, logger, apierrors.NewErrorHandler(logger, false))
	return h.Routes()
}

func serve(t *testing.T, handler http.Handler, target string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return rec, body
}

func TestDashboardHandler_GetDashboard(t *testing.T) {
	threshold := 0.25
	signAware := true

	tests := []struct {
		name         string
		target       string
		setupMock    func(*MockDashboardService)
		wantStatus   int
		wantType     string
		checkBody    func(t *testing.T, body map[string]interface{})
		expectNoCall bool
	}{
		{
			name:   "defaults",
			target: "/companies/cba/dashboard",
			setupMock: func(m *MockDashboardService) {
				m.On("CompanyDashboard", "cba", services.QueryOptions{}).Return(&domain.Dashboard{
					Ticker:    "CBA",
					Sector:    "Banks",
					Threshold: 0.1,
					Sections: []domain.DashboardSection{{
						Dataset: "financial_data",
						Title:   "Financial Data",
						Found:   true,
						Rows: []domain.MetricRow{{
							Metric:           "Revenue",
							Value:            "100",
							RawValue:         100,
							SimilarCompanies: []string{"NAB", "BHP"},
							IndustryAverage:  "118.33",
							Benchmark:        domain.Available(118.33),
							Definition:       "Total income from sales.",
						}},
					}},
					GeneratedAt: time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC),
				}, nil)
			},
			wantStatus: http.StatusOK,
			checkBody: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "CBA", body["ticker"])
				assert.Equal(t, "Banks", body["sector"])
				sections := body["sections"].([]interface{})
				require.Len(t, sections, 1)
				row := sections[0].(map[string]interface{})["rows"].([]interface{})[0].(map[string]interface{})
				assert.Equal(t, "100", row["value"])
				assert.Equal(t, []interface{}{"NAB", "BHP"}, row["similar_companies"])
				assert.Equal(t, 118.33, row["benchmark"])
			},
		},
		{
			name:   "query overrides",
			target: "/companies/CBA/dashboard?threshold=0.25&sign_aware=true",
			setupMock: func(m *MockDashboardService) {
				m.On("CompanyDashboard", "CBA", services.QueryOptions{Threshold: &threshold, SignAware: &signAware}).
					Return(&domain.Dashboard{Ticker: "CBA", Threshold: 0.25, SignAware: true}, nil)
			},
			wantStatus: http.StatusOK,
			checkBody: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, 0.25, body["threshold"])
				assert.Equal(t, true, body["sign_aware"])
			},
		},
		{
			name:         "invalid ticker",
			target:       "/companies/x/dashboard",
			setupMock:    func(m *MockDashboardService) {},
			wantStatus:   http.StatusBadRequest,
			wantType:     apierrors.TypeValidation,
			expectNoCall: true,
		},
		{
			name:         "threshold out of range",
			target:       "/companies/CBA/dashboard?threshold=-0.1",
			setupMock:    func(m *MockDashboardService) {},
			wantStatus:   http.StatusBadRequest,
			wantType:     apierrors.TypeValidation,
			expectNoCall: true,
		},
		{
			name:         "threshold not a number",
			target:       "/companies/CBA/dashboard?threshold=wide",
			setupMock:    func(m *MockDashboardService) {},
			wantStatus:   http.StatusBadRequest,
			wantType:     apierrors.TypeValidation,
			expectNoCall: true,
		},
		{
			name:   "unknown ticker",
			target: "/companies/ZZZ/dashboard",
			setupMock: func(m *MockDashboardService) {
				m.On("CompanyDashboard", "ZZZ", services.QueryOptions{}).
					Return(nil, fmt.Errorf("%w: ZZZ", services.ErrTickerNotFound))
			},
			wantStatus: http.StatusNotFound,
			wantType:   apierrors.TypeDataNotFound,
		},
		{
			name:   "data file missing",
			target: "/companies/CBA/dashboard",
			setupMock: func(m *MockDashboardService) {
				m.On("CompanyDashboard", "CBA", services.QueryOptions{}).
					Return(nil, fmt.Errorf("load dataset cash_flow: %w", fs.ErrNotExist))
			},
			wantStatus: http.StatusServiceUnavailable,
			wantType:   apierrors.TypeDataUnavailable,
		},
		{
			name:   "unexpected failure",
			target: "/companies/CBA/dashboard",
			setupMock: func(m *MockDashboardService) {
				m.On("CompanyDashboard", "CBA", services.QueryOptions{}).Return(nil, errors.New("parse failure"))
			},
			wantStatus: http.StatusInternalServerError,
			wantType:   apierrors.TypeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockDashboardService)
			tt.setupMock(mockService)

			rec, body := serve(t, newTestDashboardHandler(t, mockService), tt.target)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantType != "" {
				assert.Equal(t, tt.wantType, body["type"])
				assert.Contains(t, rec.Header().Get("Content-Type"), "json")
			}
			if tt.checkBody != nil {
				tt.checkBody(t, body)
			}
			if tt.expectNoCall {
				mockService.AssertNotCalled(t, "CompanyDashboard", mock.Anything, mock.Anything)
			}
			mockService.AssertExpectations(t)
		})
	}
}

func TestDashboardHandler_ValidationErrorsListFields(t *testing.T) {
	mockService := new(MockDashboardService)
	_, body := serve(t, newTestDashboardHandler(t, mockService), "/companies/x/dashboard?threshold=20")

	errs, ok := body["errors"].([]interface{})
	require.True(t, ok)
	fields := make([]string, 0, len(errs))
	for _, e := range errs {
		fields = append(fields, e.(map[string]interface{})["field"].(string))
	}
	assert.ElementsMatch(t, []string{"ticker", "threshold"}, fields)
}

func TestDashboardHandler_GetSimilarity(t *testing.T) {
	mockService := new(MockDashboardService)
	mockService.On("Similarity", "financial_data", services.QueryOptions{}).Return(&api.SimilarityResponse{
		Dataset:   "financial_data",
		Threshold: 0.1,
		Companies: 2,
		Index: domain.SimilarityIndex{
			"CBA": {"Revenue": {"NAB"}},
			"NAB": {"Revenue": {"CBA"}},
		},
	}, nil)
	mockService.On("Similarity", "income", services.QueryOptions{}).
		Return(nil, fmt.Errorf("%w: income", services.ErrDatasetNotFound))

	handler := newTestDashboardHandler(t, mockService)

	rec, body := serve(t, handler, "/datasets/financial_data/similarity")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(2), body["companies"])
	index := body["index"].(map[string]interface{})
	assert.Equal(t, map[string]interface{}{"Revenue": []interface{}{"NAB"}}, index["CBA"])

	rec, body = serve(t, handler, "/datasets/income/similarity")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, apierrors.TypeDataNotFound, body["type"])

	rec, _ = serve(t, handler, "/datasets/bad.name/similarity")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	mockService.AssertExpectations(t)
}

func TestDashboardHandler_GetBenchmark(t *testing.T) {
	mockService := new(MockDashboardService)
	mockService.On("Benchmark", "CBA").Return(&api.BenchmarkResponse{
		Ticker: "CBA",
		Sector: "Banks",
		Benchmarks: domain.BenchmarkResult{
			"Revenue":        domain.Available(118.33),
			"Debt to Equity": domain.Unavailable(),
		},
	}, nil)

	rec, body := serve(t, newTestDashboardHandler(t, mockService), "/companies/CBA/benchmark")
	assert.Equal(t, http.StatusOK, rec.Code)

	benchmarks := body["benchmarks"].(map[string]interface{})
	assert.Equal(t, 118.33, benchmarks["Revenue"])
	assert.Equal(t, domain.UnavailableMarker, benchmarks["Debt to Equity"])
	mockService.AssertExpectations(t)
}

func TestDashboardHandler_GetDatasets(t *testing.T) {
	mockService := new(MockDashboardService)
	mockService.On("Datasets").Return([]domain.DatasetSummary{
		{Name: "financial_data", Title: "Financial Data", File: "financial_data.csv", Companies: 5, Metrics: []string{"Revenue"}},
	}, nil).Once()
	mockService.On("Datasets").Return(nil, fmt.Errorf("load dataset financial_data: %w", fs.ErrNotExist)).Once()

	handler := newTestDashboardHandler(t, mockService)

	rec, body := serve(t, handler, "/datasets")
	assert.Equal(t, http.StatusOK, rec.Code)
	datasets := body["datasets"].([]interface{})
	require.Len(t, datasets, 1)
	assert.Equal(t, "financial_data", datasets[0].(map[string]interface{})["name"])

	rec, _ = serve(t, handler, "/datasets")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	mockService.AssertExpectations(t)
}

func TestDashboardHandler_GetDefinition(t *testing.T) {
	mockService := new(MockDashboardService)
	mockService.On("Definition", "Net Margin").Return(domain.MetricDefinition{
		ID: "net_margin", Name: "Net Margin", Definition: "Net income divided by revenue.",
	}, true, nil)
	mockService.On("Definition", "EBITDA").Return(domain.MetricDefinition{
		Name: "EBITDA", Definition: "No definition available",
	}, false, nil)

	handler := newTestDashboardHandler(t, mockService)

	rec, body := serve(t, handler, "/definitions/Net%20Margin")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["found"])
	assert.Equal(t, "Net Margin", body["metric"])
	assert.Equal(t, "Net income divided by revenue.", body["definition"].(map[string]interface{})["definition"])

	rec, body = serve(t, handler, "/definitions/EBITDA")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, body["found"])
	mockService.AssertExpectations(t)
}
