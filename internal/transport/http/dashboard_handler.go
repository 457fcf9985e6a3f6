package http

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	apierrors "companylens/internal/errors"
	"companylens/internal/middleware"
	"companylens/internal/services"
	api "companylens/pkg/contracts/api/v1"
)

// DashboardHandler serves datasets, similarity indexes, company dashboards,
// benchmarks and metric definitions with RFC 7807 errors
type DashboardHandler struct {
	service      DashboardServiceInterface
	validator    *middleware.RequestValidator
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(service DashboardServiceInterface, validator *middleware.RequestValidator, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DashboardHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if validator == nil {
		validator = middleware.NewRequestValidator(logger)
	}
	if errorHandler == nil {
		errorHandler = apierrors.NewErrorHandler(logger, false)
	}
	return &DashboardHandler{
		service:      service,
		validator:    validator,
		logger:       logger.With(slog.String("component", "dashboard_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the analytics routes on a standalone router
func (h *DashboardHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))
	h.RegisterRoutes(r)
	return r
}

// RegisterRoutes registers the analytics routes on r, normally the /api
// subrouter
func (h *DashboardHandler) RegisterRoutes(r chi.Router) {
	r.Get("/datasets", h.GetDatasets)
	r.Get("/datasets/{dataset}/similarity", h.GetSimilarity)

	r.Route("/companies/{ticker}", func(r chi.Router) {
		r.Get("/dashboard", h.GetDashboard)
		r.Get("/benchmark", h.GetBenchmark)
	})

	r.Get("/definitions/{metric}", h.GetDefinition)
}

// GetDatasets handles GET /api/datasets
func (h *DashboardHandler) GetDatasets(w http.ResponseWriter, r *http.Request) {
	h.logger.DebugContext(r.Context(), "listing datasets",
		slog.String("request_id", chimw.GetReqID(r.Context())))

	summaries, err := h.service.Datasets(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, api.DatasetsResponse{Datasets: summaries})
}

// GetSimilarity handles GET /api/datasets/{dataset}/similarity
func (h *DashboardHandler) GetSimilarity(w http.ResponseWriter, r *http.Request) {
	var req api.SimilarityRequest
	if err := h.validator.Bind(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.DebugContext(r.Context(), "computing similarity index",
		slog.String("request_id", chimw.GetReqID(r.Context())),
		slog.String("dataset", req.Dataset))

	resp, err := h.service.Similarity(r.Context(), req.Dataset, services.QueryOptions{
		Threshold: req.Threshold,
		SignAware: req.SignAware,
	})
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, resp)
}

// GetDashboard handles GET /api/companies/{ticker}/dashboard
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	var req api.DashboardRequest
	if err := h.validator.Bind(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.DebugContext(r.Context(), "building dashboard",
		slog.String("request_id", chimw.GetReqID(r.Context())),
		slog.String("ticker", req.Ticker))

	dashboard, err := h.service.CompanyDashboard(r.Context(), req.Ticker, services.QueryOptions{
		Threshold: req.Threshold,
		SignAware: req.SignAware,
	})
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, dashboard)
}

// GetBenchmark handles GET /api/companies/{ticker}/benchmark
func (h *DashboardHandler) GetBenchmark(w http.ResponseWriter, r *http.Request) {
	var req api.BenchmarkRequest
	if err := h.validator.Bind(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	resp, err := h.service.Benchmark(r.Context(), req.Ticker)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, resp)
}

// GetDefinition handles GET /api/definitions/{metric}. Unknown metrics are
// not an error: the response carries found=false and the placeholder text.
func (h *DashboardHandler) GetDefinition(w http.ResponseWriter, r *http.Request) {
	var req api.DefinitionRequest
	if err := h.validator.Bind(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	metric := req.Metric
	if strings.Contains(metric, "%") {
		if unescaped, err := url.PathUnescape(metric); err == nil {
			metric = unescaped
		}
	}

	def, found, err := h.service.Definition(r.Context(), metric)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, api.DefinitionResponse{Metric: metric, Found: found, Definition: def})
}
