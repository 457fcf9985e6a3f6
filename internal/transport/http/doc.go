// Package http implements the HTTP handlers of the company dashboard API.
// Handlers are a thin layer between the chi router and the services: they
// bind and validate parameters, call one service method and render the
// result or an RFC 7807 problem.
//
// # Request Flow
//
//	HTTP Request → Chi Router → Middleware → Handler → DashboardService → DatasetRepository
//	                                              ↓
//	HTTP Response ← Handler ← Service Response ←─┘
//
// # Handler Structure
//
// Each handler follows this pattern:
//
//	func (h *DashboardHandler) GetBenchmark(w http.ResponseWriter, r *http.Request) {
//	    var req api.BenchmarkRequest
//	    if err := h.validator.Bind(r, &req); err != nil {
//	        h.errorHandler.HandleError(w, r, err)
//	        return
//	    }
//
//	    resp, err := h.service.Benchmark(r.Context(), req.Ticker)
//	    if err != nil {
//	        h.errorHandler.HandleError(w, r, err)
//	        return
//	    }
//
//	    render.JSON(w, r, resp)
//	}
//
// # Error Handling
//
// Service errors are never mapped by hand. The error handler inspects them
// with errors.Is and errors.As, so an unknown ticker becomes:
//
//	{
//	    "type": "/errors/data/not-found",
//	    "title": "Resource Not Found",
//	    "status": 404,
//	    "detail": "ticker not found: ZZZ",
//	    "instance": "/api/companies/ZZZ/dashboard",
//	    "trace_id": "..."
//	}
//
// # Testing
//
// Handlers are tested with httptest against testify mocks of
// DashboardServiceInterface and HealthServiceInterface.
package http
