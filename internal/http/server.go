// Package http exposes the per-user ledgers as a JSON API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"flux/internal/ledger"
	"flux/internal/log"
	"flux/internal/middleware/ratelimit"
	"flux/internal/middleware/security"
	"flux/internal/middleware/trace"
)

// HeaderUserID carries the opaque id of the ledger owner. Authentication
// happens in front of this service.
const HeaderUserID = "X-User-ID"

// ReadyCheck reports whether a dependency can serve requests.
type ReadyCheck func(ctx context.Context) error

// Options tunes a Server.
type Options struct {
	RateLimitRPS   float64
	RateLimitBurst int
	// Checks run by /readyz, keyed by dependency name.
	Checks map[string]ReadyCheck
}

type Server struct {
	http.Server
	registry *ledger.Registry
	validate *validator.Validate
	logger   *log.Logger
	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware
	checks   map[string]ReadyCheck
	started  time.Time

	shutdownOnce sync.Once
}

// NewServer wires routes and middleware over registry, returning a
// ready-to-run server.
func NewServer(addr string, registry *ledger.Registry, logger *log.Logger, opts Options) *Server {
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentHTTP)
	detector := security.NewDetector(logger)

	s := &Server{
		registry: registry,
		validate: newValidator(),
		logger:   logger,
		limiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerSecond: opts.RateLimitRPS,
			Burst:             opts.RateLimitBurst,
		}),
		detector: detector,
		tracer:   trace.NewMiddleware(logger, detector.ExtractClientIP),
		checks:   opts.Checks,
		started:  time.Now(),
	}

	api := http.NewServeMux()
	s.routes(api)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("/api/", s.limiter.Middleware(s.rateLimitKey, s.onRateLimited)(api))

	var handler http.Handler = mux
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = detector.Middleware(handler)
	handler = s.tracer.Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 16,
	}
	return s
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/month", s.withStore(s.handleGetMonth, true))
	mux.HandleFunc("PUT /api/month", s.withStore(s.handleSelectMonth, true))

	mux.HandleFunc("GET /api/transactions", s.withStore(s.handleListTransactions, true))
	mux.HandleFunc("POST /api/transactions", s.withStore(s.handleCreateTransaction, true))
	mux.HandleFunc("PUT /api/transactions/{id}", s.withStore(s.handleUpdateTransaction, true))
	mux.HandleFunc("DELETE /api/transactions/{id}", s.withStore(s.handleDeleteTransaction, true))

	mux.HandleFunc("GET /api/cards", s.withStore(s.handleListCards, true))
	mux.HandleFunc("POST /api/cards", s.withStore(s.handleCreateCard, true))
	mux.HandleFunc("PUT /api/cards/{id}", s.withStore(s.handleUpdateCard, true))
	mux.HandleFunc("DELETE /api/cards/{id}", s.withStore(s.handleDeleteCard, true))
	mux.HandleFunc("GET /api/cards/{id}/statement", s.withStore(s.handleCardStatement, true))

	mux.HandleFunc("GET /api/goals", s.withStore(s.handleListGoals, true))
	mux.HandleFunc("POST /api/goals", s.withStore(s.handleCreateGoal, true))
	mux.HandleFunc("PUT /api/goals/{id}", s.withStore(s.handleUpdateGoal, true))
	mux.HandleFunc("DELETE /api/goals/{id}", s.withStore(s.handleDeleteGoal, true))

	mux.HandleFunc("GET /api/categories", s.withStore(s.handleListCategories, true))
	mux.HandleFunc("POST /api/categories", s.withStore(s.handleCreateCategory, true))
	mux.HandleFunc("PUT /api/categories/{id}", s.withStore(s.handleUpdateCategory, true))
	mux.HandleFunc("DELETE /api/categories/{id}", s.withStore(s.handleDeleteCategory, true))

	// The profile stays reachable without access so a lapsed plan can be seen.
	mux.HandleFunc("GET /api/profile", s.withStore(s.handleGetProfile, false))
	mux.HandleFunc("PUT /api/profile", s.withStore(s.handleUpdateProfile, false))

	mux.HandleFunc("GET /api/notifications", s.withStore(s.handleListNotifications, true))
	mux.HandleFunc("POST /api/notifications/{id}/read", s.withStore(s.handleMarkNotificationRead, true))

	mux.HandleFunc("GET /api/dashboard", s.withStore(s.handleDashboard, true))
	mux.HandleFunc("GET /api/overview", s.withStore(s.handleOverview, true))
	mux.HandleFunc("POST /api/installments/preview", s.withStore(s.handlePreviewInstallments, true))
}

// storeHandler serves a request against the caller's ledger.
type storeHandler func(w http.ResponseWriter, r *http.Request, st *ledger.Store)

// withStore resolves the caller's ledger. gated routes answer 403 while the
// profile has no access.
func (s *Server) withStore(next storeHandler, gated bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get(HeaderUserID)
		if userID == "" {
			writeStatusError(w, http.StatusUnauthorized, "missing "+HeaderUserID+" header")
			return
		}

		ctx := log.IntoContext(r.Context(), log.FromContext(r.Context()).WithUser(userID))
		r = r.WithContext(ctx)

		st, err := s.registry.Get(ctx, userID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if gated && !st.Profile().HasAccess {
			writeStatusError(w, http.StatusForbidden, "access disabled for this account")
			return
		}
		next(w, r, st)
	}
}

func (s *Server) rateLimitKey(r *http.Request) string {
	if id := r.Header.Get(HeaderUserID); id != "" {
		return "user:" + id
	}
	return "ip:" + s.detector.ExtractClientIP(r)
}

func (s *Server) onRateLimited(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldUserID, r.Header.Get(HeaderUserID),
		log.FieldPath, r.URL.Path)
	writeStatusError(w, http.StatusTooManyRequests, "rate limit exceeded, try again later")
}

// Shutdown gracefully shuts down the server and its background routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
