// Package http exposes the tracker over a JSON API. Handlers parse and
// validate input, delegate to the service layer and map domain errors to
// status codes; no budget arithmetic happens here.
package http

import (
	"context"
	"net/http"
	"time"

	"kharcha/internal/log"
	"kharcha/internal/middleware/ratelimit"
	"kharcha/internal/services"
)

type Server struct {
	http.Server
	service *services.TrackerService
	logger  *log.Logger
	limiter *ratelimit.Limiter
}

func NewServer(addr string, service *services.TrackerService, logger *log.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 5 * time.Second,
		},
		service: service,
		logger:  logger.WithComponent("http"),
		limiter: ratelimit.NewLimiter(ratelimit.DefaultConfig()),
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)

	mux.HandleFunc("GET /api/settings", s.handleGetSettings)
	mux.HandleFunc("PUT /api/settings", s.handleUpdateSettings)

	mux.HandleFunc("GET /api/expenses", s.handleListExpenses)
	mux.HandleFunc("DELETE /api/expenses/{index}", s.handleDeleteExpense)
	mux.HandleFunc("POST /api/expenses/food", s.handleAddFood)
	mux.HandleFunc("POST /api/expenses/petrol", s.handleAddPetrol)
	mux.HandleFunc("POST /api/expenses/bill", s.handleAddBill)

	mux.HandleFunc("GET /api/misc/staged", s.handleListStaged)
	mux.HandleFunc("POST /api/misc/stage", s.handleStageMisc)
	mux.HandleFunc("DELETE /api/misc/staged/{index}", s.handleRemoveStaged)
	mux.HandleFunc("POST /api/misc/commit", s.handleCommitStaged)

	mux.HandleFunc("POST /api/bills/mark-paid", s.handleMarkBillPaid)
	mux.HandleFunc("PUT /api/budget", s.handleUpdateBudget)
	mux.HandleFunc("PUT /api/savings-goal", s.handleSetSavingsGoal)

	mux.HandleFunc("GET /api/dashboard", s.handleDashboard)
	mux.HandleFunc("GET /api/balances", s.handleBalances)
	mux.HandleFunc("GET /api/affordability", s.handleAffordability)

	mux.HandleFunc("GET /api/export", s.handleExport)
	mux.HandleFunc("POST /api/import", s.handleImport)
	mux.HandleFunc("GET /api/analysis.csv", s.handleAnalysisCSV)

	s.Handler = s.limiter.Middleware(s.withSecurityHeaders(s.withRequestLogging(mux)))
	return s
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	s.limiter.Stop()
	return s.Server.Shutdown(ctx)
}

func (s *Server) withSecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "no-referrer")
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the response code for the access log.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) withRequestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.InfoContext(r.Context(), "Request handled",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds())
	})
}
