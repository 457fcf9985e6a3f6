package errors

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"companylens/internal/infrastructure"
	"companylens/internal/shared/testutil"
	"companylens/pkg/contracts/domain"
)

func decodeProblem(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestNewErrorHandler(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)

	handler := NewErrorHandler(logger, true)
	assert.True(t, handler.includeStack)
	assert.NotNil(t, handler.logger)

	assert.NotNil(t, NewErrorHandler(nil, false).logger)
}

func TestErrorHandler_HandleError(t *testing.T) {
	type thresholdParams struct {
		Threshold float64 `validate:"lte=10"`
	}
	fieldErr := validator.New().Struct(thresholdParams{Threshold: 11})
	require.Error(t, fieldErr)

	datasetNotFound := fmt.Errorf("dataset %w", domain.ErrNotFound)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
		wantErrors bool
	}{
		{
			name:       "deadline exceeded",
			err:        fmt.Errorf("load: %w", context.DeadlineExceeded),
			wantStatus: http.StatusGatewayTimeout,
			wantType:   TypeTimeout,
		},
		{
			name:       "api error",
			err:        ErrRateLimitExceeded,
			wantStatus: http.StatusTooManyRequests,
			wantType:   TypeRateLimit,
		},
		{
			name:       "validation api error",
			err:        ErrValidation("threshold", "threshold must be a number"),
			wantStatus: http.StatusBadRequest,
			wantType:   TypeValidation,
			wantErrors: true,
		},
		{
			name:       "validator field errors",
			err:        fieldErr,
			wantStatus: http.StatusBadRequest,
			wantType:   TypeValidation,
			wantErrors: true,
		},
		{
			name:       "wrapped not found",
			err:        fmt.Errorf("%w: income", datasetNotFound),
			wantStatus: http.StatusNotFound,
			wantType:   TypeDataNotFound,
		},
		{
			name:       "domain validation error",
			err:        &domain.ValidationError{Field: "threshold", Message: "threshold must be non-negative"},
			wantStatus: http.StatusBadRequest,
			wantType:   TypeInvalidInput,
			wantErrors: true,
		},
		{
			name:       "missing data file",
			err:        fmt.Errorf("open cash_flow.csv: %w", fs.ErrNotExist),
			wantStatus: http.StatusServiceUnavailable,
			wantType:   TypeDataUnavailable,
		},
		{
			name:       "message text is not inspected",
			err:        fmt.Errorf("company not found in cache"),
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, _ := testutil.NewTestLogger(t)
			handler := NewErrorHandler(logger, false)

			r := httptest.NewRequest(http.MethodGet, "/api/companies/CBA/dashboard", nil)
			r = r.WithContext(infrastructure.WithTraceID(r.Context(), "trace-123"))
			w := httptest.NewRecorder()

			handler.HandleError(w, r, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			body := decodeProblem(t, w)
			assert.Equal(t, tt.wantType, body["type"])
			assert.Equal(t, float64(tt.wantStatus), body["status"])
			assert.Equal(t, "/api/companies/CBA/dashboard", body["instance"])
			assert.Equal(t, "trace-123", body["trace_id"])
			assert.NotContains(t, body, "stack")
			if tt.wantErrors {
				assert.NotEmpty(t, body["errors"])
			}
		})
	}
}

func TestErrorHandler_HandleErrorNil(t *testing.T) {
	handler := NewErrorHandler(nil, false)
	w := httptest.NewRecorder()

	handler.HandleError(w, httptest.NewRequest(http.MethodGet, "/", nil), nil)

	assert.Equal(t, 0, w.Body.Len())
}

func TestErrorHandler_LogLevels(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	handler := NewErrorHandler(logger, false)
	r := httptest.NewRequest(http.MethodGet, "/api/datasets", nil)

	handler.HandleError(httptest.NewRecorder(), r, fmt.Errorf("ticker %w", domain.ErrNotFound))
	handler.HandleError(httptest.NewRecorder(), r, fmt.Errorf("boom"))

	testutil.AssertLogContains(t, logs, slog.LevelWarn, "request failed")
	testutil.AssertLogContains(t, logs, slog.LevelError, "request failed")
	testutil.AssertLogAttr(t, logs, "component", "error_handler")
}

func TestErrorHandler_IncludeStack(t *testing.T) {
	handler := NewErrorHandler(nil, true)
	r := httptest.NewRequest(http.MethodGet, "/api/datasets", nil)

	w := httptest.NewRecorder()
	handler.HandleError(w, r, fmt.Errorf("boom"))
	assert.Contains(t, decodeProblem(t, w), "stack")

	w = httptest.NewRecorder()
	handler.HandleError(w, r, ErrNotFound)
	assert.NotContains(t, decodeProblem(t, w), "stack", "client errors carry no stack")
}

func TestErrorHandler_HandlePanic(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	handler := NewErrorHandler(logger, true)

	r := httptest.NewRequest(http.MethodGet, "/api/datasets", nil)
	r = r.WithContext(context.WithValue(r.Context(), middleware.RequestIDKey, "req-1"))
	w := httptest.NewRecorder()

	handler.HandlePanic(w, r, "nil map")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decodeProblem(t, w)
	assert.Equal(t, TypeInternal, body["type"])
	assert.Equal(t, "req-1", body["trace_id"])
	assert.Equal(t, "nil map", body["panic"])
	testutil.AssertLogContains(t, logs, slog.LevelError, "panic recovered")
}

func TestErrorHandler_NotFoundAndMethodNotAllowed(t *testing.T) {
	handler := NewErrorHandler(nil, false)

	w := httptest.NewRecorder()
	handler.NotFound(w, httptest.NewRequest(http.MethodGet, "/api/unknown", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, TypeNotFound, decodeProblem(t, w)["type"])

	w = httptest.NewRecorder()
	handler.MethodNotAllowed(w, httptest.NewRequest(http.MethodDelete, "/api/datasets", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	body := decodeProblem(t, w)
	assert.Equal(t, TypeMethodNotAllowed, body["type"])
	assert.Contains(t, body["detail"], "DELETE")
}

func TestFromFieldErrors(t *testing.T) {
	type params struct {
		Ticker    string  `validate:"required"`
		Threshold float64 `validate:"gte=0"`
		Mode      string  `validate:"oneof=pairwise sorted"`
	}

	err := validator.New().Struct(params{Threshold: -1, Mode: "fast"})
	var fieldErrs validator.ValidationErrors
	require.ErrorAs(t, err, &fieldErrs)

	got := FromFieldErrors(fieldErrs)
	assert.Equal(t, []ValidationError{
		{Field: "Ticker", Message: "Ticker is required"},
		{Field: "Threshold", Message: "Threshold must be greater than or equal to 0"},
		{Field: "Mode", Message: "Mode must be one of: pairwise sorted"},
	}, got)
}

func TestErrorHandler_JSON(t *testing.T) {
	handler := NewErrorHandler(nil, false)
	w := httptest.NewRecorder()

	handler.JSON(w, httptest.NewRequest(http.MethodGet, "/", nil), http.StatusAccepted, map[string]string{"status": "ok"})

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}
