package errors

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIError_Error(t *testing.T) {
	err := error(New(http.StatusBadRequest, "INVALID_REQUEST", "Invalid request format"))
	assert.Equal(t, "Invalid request format", err.Error())

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
}

func TestAPIError_Render(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/datasets", nil)
	w := httptest.NewRecorder()

	render.Render(w, r, ErrServiceUnavailable)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "SERVICE_UNAVAILABLE", body["error_code"])
	assert.Equal(t, "Service temporarily unavailable", body["message"])
}

func TestErrorConstructors(t *testing.T) {
	tests := []struct {
		name       string
		err        *APIError
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{
			name:       "invalid request with cause",
			err:        InvalidRequestWithError(errors.New("bad float")),
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_REQUEST",
			wantMsg:    "Invalid request format",
		},
		{
			name:       "single field validation",
			err:        ErrValidation("threshold", "threshold must be a number"),
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_FAILED",
			wantMsg:    "Request validation failed",
		},
		{
			name:       "not found",
			err:        NotFoundError("dataset income"),
			wantStatus: http.StatusNotFound,
			wantCode:   "NOT_FOUND",
			wantMsg:    "dataset income not found",
		},
		{
			name:       "with details",
			err:        NewWithDetails(http.StatusConflict, "CONFLICT", "conflict", map[string]string{"a": "b"}),
			wantStatus: http.StatusConflict,
			wantCode:   "CONFLICT",
			wantMsg:    "conflict",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantStatus, tt.err.StatusCode)
			assert.Equal(t, tt.wantCode, tt.err.ErrorCode)
			assert.Equal(t, tt.wantMsg, tt.err.Message)
		})
	}
}

func TestErrValidationDetails(t *testing.T) {
	err := ErrValidation("threshold", "threshold must be a number")

	details, ok := err.Details.(ValidationErrors)
	require.True(t, ok)
	assert.Equal(t, []ValidationError{{Field: "threshold", Message: "threshold must be a number"}}, details.Errors)
}

func TestProblemDetailsJSON(t *testing.T) {
	problem := NewProblemDetails(http.StatusNotFound, TypeNotFound, "Not Found", "dataset income not found", "/api/datasets/income/similarity").
		WithExtension("trace_id", "abc").
		WithExtension("status", 999)

	data, err := json.Marshal(problem)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"type": "/errors/not-found",
		"title": "Not Found",
		"status": 404,
		"detail": "dataset income not found",
		"instance": "/api/datasets/income/similarity",
		"trace_id": "abc"
	}`, string(data))
}

func TestProblemDetailsOmitsEmptyMembers(t *testing.T) {
	problem := &ProblemDetails{Type: TypeInternal, Title: "Internal Server Error", Status: 500}
	problem.WithExtension("trace_id", "t")

	data, err := json.Marshal(problem)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"/errors/internal","title":"Internal Server Error","status":500,"trace_id":"t"}`, string(data))
}
