// Package http exposes the ledger as a JSON API.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"fingenius/internal/analytics"
	"fingenius/internal/services"
)

type Server struct {
	http.Server
	svc         *services.LedgerService
	analytics   *analytics.Service
	rateLimiter *rateLimiter

	shutdownOnce sync.Once
}

// Simple in-memory rate limiter
type rateLimiter struct {
	mu           sync.Mutex
	clients      map[string]*clientInfo
	stopCleanup  chan struct{}
	shutdownOnce sync.Once
}

type clientInfo struct {
	lastRequest time.Time
	requests    int
}

func newRateLimiter() *rateLimiter {
	rl := &rateLimiter{
		clients:     make(map[string]*clientInfo),
		stopCleanup: make(chan struct{}),
	}
	go rl.startCleanup()
	return rl
}

// startCleanup runs periodic cleanup to remove stale client entries
func (rl *rateLimiter) startCleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanupStaleEntries()
		case <-rl.stopCleanup:
			return
		}
	}
}

// cleanupStaleEntries removes client entries older than 10 minutes
func (rl *rateLimiter) cleanupStaleEntries() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-10 * time.Minute)
	for ip, client := range rl.clients {
		if client.lastRequest.Before(cutoff) {
			delete(rl.clients, ip)
		}
	}
}

// stop gracefully shuts down the rate limiter cleanup goroutine
func (rl *rateLimiter) stop() {
	rl.shutdownOnce.Do(func() {
		if rl.stopCleanup != nil {
			close(rl.stopCleanup)
		}
	})
}

func (rl *rateLimiter) allow(clientIP string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	client, exists := rl.clients[clientIP]

	if !exists {
		rl.clients[clientIP] = &clientInfo{
			lastRequest: now,
			requests:    1,
		}
		return true
	}

	// Reset counter if more than 1 minute has passed
	if now.Sub(client.lastRequest) > time.Minute {
		client.requests = 1
		client.lastRequest = now
		return true
	}

	// Allow up to 60 requests per minute
	client.requests++
	client.lastRequest = now

	return client.requests <= 60
}

// NewServer configures routes, returning a ready-to-run http.Server.
func NewServer(addr string, svc *services.LedgerService, an *analytics.Service) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		svc:         svc,
		analytics:   an,
		rateLimiter: newRateLimiter(),
	}

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)

	mux.HandleFunc("GET /api/expenses", s.withSecurityHeaders(s.handleListExpenses))
	mux.HandleFunc("POST /api/expenses", s.withSecurityHeaders(s.handleCreateExpense))
	mux.HandleFunc("PUT /api/expenses/{id}", s.withSecurityHeaders(s.handleUpdateExpense))
	mux.HandleFunc("DELETE /api/expenses/{id}", s.withSecurityHeaders(s.handleDeleteExpense))

	mux.HandleFunc("GET /api/income", s.withSecurityHeaders(s.handleListIncome))
	mux.HandleFunc("POST /api/income", s.withSecurityHeaders(s.handleCreateIncome))
	mux.HandleFunc("PUT /api/income/{id}", s.withSecurityHeaders(s.handleUpdateIncome))
	mux.HandleFunc("DELETE /api/income/{id}", s.withSecurityHeaders(s.handleDeleteIncome))

	mux.HandleFunc("GET /api/goals", s.withSecurityHeaders(s.handleListGoals))
	mux.HandleFunc("POST /api/goals", s.withSecurityHeaders(s.handleCreateGoal))
	mux.HandleFunc("PUT /api/goals/{id}", s.withSecurityHeaders(s.handleUpdateGoal))
	mux.HandleFunc("POST /api/goals/{id}/progress", s.withSecurityHeaders(s.handleGoalProgress))
	mux.HandleFunc("DELETE /api/goals/{id}", s.withSecurityHeaders(s.handleDeleteGoal))

	mux.HandleFunc("GET /api/settings", s.withSecurityHeaders(s.handleGetSettings))
	mux.HandleFunc("PUT /api/settings", s.withSecurityHeaders(s.handleUpdateSettings))
	mux.HandleFunc("DELETE /api/settings", s.withSecurityHeaders(s.handleResetSettings))

	mux.HandleFunc("GET /api/budgets", s.withSecurityHeaders(s.handleListBudgets))
	mux.HandleFunc("POST /api/budgets", s.withSecurityHeaders(s.handleAddBudget))
	mux.HandleFunc("PUT /api/budgets/limit", s.withSecurityHeaders(s.handleSetBudgetLimit))

	mux.HandleFunc("GET /api/groups", s.withSecurityHeaders(s.handleListGroups))
	mux.HandleFunc("POST /api/groups", s.withSecurityHeaders(s.handleCreateGroup))
	mux.HandleFunc("DELETE /api/groups/{id}", s.withSecurityHeaders(s.handleDeleteGroup))

	mux.HandleFunc("GET /api/insights", s.withSecurityHeaders(s.handleInsights))
	mux.HandleFunc("GET /api/charts/category", s.withSecurityHeaders(s.handleCategoryChart))
	mux.HandleFunc("GET /api/charts/monthly", s.withSecurityHeaders(s.handleMonthlyChart))
	mux.HandleFunc("GET /api/calendar/{year}/{month}", s.withSecurityHeaders(s.handleCalendar))

	mux.HandleFunc("GET /api/export", s.withSecurityHeaders(s.handleExport))
	mux.HandleFunc("POST /api/import", s.withSecurityHeaders(s.handleImport))

	return s
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// withSecurityHeaders adds security headers, rate limiting, and request logging to responses
func (s *Server) withSecurityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := extractClientIP(r)

		// Generate request ID for tracing
		requestID := generateRequestID()

		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"client_ip", clientIP,
			"user_agent", r.Header.Get("User-Agent"))

		// Apply rate limiting to mutating requests
		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded", "client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'none'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		// Create a custom response writer to capture status code
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		// Log request completion
		duration := time.Since(start)
		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", duration.Milliseconds(),
			"client_ip", clientIP)
	}
}

type requestIDKey struct{}

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
		// Fallback to timestamp if random fails
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if !s.svc.Ledger.Available() {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("store unavailable"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
