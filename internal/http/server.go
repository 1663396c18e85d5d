// Package http exposes the JSON API over the entity store, ledger and
// report engine.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"aptledger/internal/auth"
	"aptledger/internal/cache"
	"aptledger/internal/core"
	"aptledger/internal/log"
	"aptledger/internal/report"
	"aptledger/internal/services"
	"aptledger/internal/store"
)

// Options carries the collaborators a Server needs.
type Options struct {
	Addr     string
	Store    store.Store
	Payments *services.PaymentService
	Reports  *report.Engine

	// Tokens may be nil, which leaves the API unauthenticated.
	Tokens *auth.TokenManager

	RateLimitPerMinute int
}

type Server struct {
	http.Server

	store    store.Store
	payments *services.PaymentService
	reports  *report.Engine
	tokens   *auth.TokenManager

	validate    *validator.Validate
	rateLimiter *rateLimiter

	// Derived aggregates are cached briefly and dropped whole on every
	// mutation, so reads always reflect the latest ledger state.
	statsCache    *cache.LRUCache[core.DashboardStats]
	monthlyCache  *cache.LRUCache[[]core.MonthlyReportRow]
	categoryCache *cache.LRUCache[[]core.CategoryTotal]
	cacheManager  *cache.Manager

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server.
func NewServer(opts Options) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:         opts.Addr,
			Handler:      mux,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		store:    opts.Store,
		payments: opts.Payments,
		reports:  opts.Reports,
		tokens:   opts.Tokens,

		validate:    validator.New(),
		rateLimiter: newRateLimiter(opts.RateLimitPerMinute),

		statsCache:    cache.NewLRUCache[core.DashboardStats](4, 2*time.Minute),
		monthlyCache:  cache.NewLRUCache[[]core.MonthlyReportRow](16, 2*time.Minute),
		categoryCache: cache.NewLRUCache[[]core.CategoryTotal](16, 2*time.Minute),
		cacheManager:  cache.NewManager(),
	}

	s.cacheManager.Register(s.statsCache)
	s.cacheManager.Register(s.monthlyCache)
	s.cacheManager.Register(s.categoryCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("POST /api/auth/login", s.public(s.handleLogin))

	mux.HandleFunc("GET /api/users", s.protected(s.handleListUsers))
	mux.HandleFunc("POST /api/users", s.protected(s.handleCreateUser))
	mux.HandleFunc("GET /api/users/{id}", s.protected(s.handleGetUser))
	mux.HandleFunc("PATCH /api/users/{id}", s.protected(s.handleUpdateUser))

	mux.HandleFunc("GET /api/rooms", s.protected(s.handleListRooms))
	mux.HandleFunc("POST /api/rooms", s.protected(s.handleCreateRoom))
	mux.HandleFunc("GET /api/rooms/{id}", s.protected(s.handleGetRoom))
	mux.HandleFunc("PATCH /api/rooms/{id}", s.protected(s.handleUpdateRoom))
	mux.HandleFunc("GET /api/rooms/{id}/upi-link", s.protected(s.handleRoomUPILink))

	mux.HandleFunc("GET /api/payments", s.protected(s.handleListPayments))
	mux.HandleFunc("POST /api/payments", s.protected(s.handleCreatePayment))
	mux.HandleFunc("GET /api/payments/{id}", s.protected(s.handleGetPayment))
	mux.HandleFunc("PATCH /api/payments/{id}", s.protected(s.handleUpdatePayment))

	mux.HandleFunc("GET /api/expenses", s.protected(s.handleListExpenses))
	mux.HandleFunc("POST /api/expenses", s.protected(s.handleCreateExpense))
	mux.HandleFunc("GET /api/expenses/{id}", s.protected(s.handleGetExpense))
	mux.HandleFunc("PATCH /api/expenses/{id}", s.protected(s.handleUpdateExpense))

	mux.HandleFunc("GET /api/settings", s.protected(s.handleListSettings))
	mux.HandleFunc("POST /api/settings", s.protected(s.handleUpsertSetting))
	mux.HandleFunc("GET /api/settings/{key}", s.protected(s.handleGetSetting))

	mux.HandleFunc("GET /api/dashboard/stats", s.protected(s.handleDashboardStats))
	mux.HandleFunc("GET /api/reports/monthly", s.protected(s.handleMonthlyReport))
	mux.HandleFunc("GET /api/reports/categories", s.protected(s.handleCategoryReport))

	return s
}

// public wraps a handler with the base middleware only.
func (s *Server) public(next http.HandlerFunc) http.HandlerFunc {
	return s.withMiddleware(next, false)
}

// protected additionally enforces a bearer token when auth is enabled.
func (s *Server) protected(next http.HandlerFunc) http.HandlerFunc {
	return s.withMiddleware(next, true)
}

// withMiddleware adds security headers, request ids, rate limiting on
// mutations, auth and request logging.
func (s *Server) withMiddleware(next http.HandlerFunc, requireAuth bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()
		logger := log.FromContext(r.Context()).With(log.FieldRequestID, requestID)
		ctx := context.WithValue(r.Context(), log.LoggerContextKey, logger)
		r = r.WithContext(ctx)

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("X-Request-ID", requestID)

		if isMutation(r.Method) && !s.rateLimiter.allow(clientIP) {
			logger.WarnContext(ctx, "Rate limit exceeded",
				log.FieldClientIP, clientIP, log.FieldMethod, r.Method, log.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
			return
		}

		if requireAuth && s.tokens != nil {
			claims, err := s.authenticate(r)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			r = r.WithContext(withClaims(r.Context(), claims))
		}

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		logger.InfoContext(ctx, "Request completed",
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldStatusCode, rw.statusCode,
			log.FieldDuration, duration.Milliseconds(),
			log.FieldClientIP, clientIP)
	}
}

func (s *Server) authenticate(r *http.Request) (*auth.Claims, error) {
	token, err := auth.ExtractBearer(r.Header.Get("Authorization"))
	if err != nil {
		return nil, err
	}
	return s.tokens.Validate(token)
}

type claimsKey struct{}

func withClaims(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

// claimsFrom returns the authenticated claims, or nil when auth is off.
func claimsFrom(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(claimsKey{}).(*auth.Claims)
	return claims
}

func isMutation(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// invalidateDerived drops the cached aggregates after any mutation.
func (s *Server) invalidateDerived() {
	s.statsCache.Clear()
	s.monthlyCache.Clear()
	s.categoryCache.Clear()
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// generateRequestID creates a unique request ID for tracing
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
