// Package server provides the HTTP API the interviewer UI talks to:
// operator login, candidate management, interview control, and a
// server-sent-events stream of the live session.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/jonathan/interview-agent/internal/config"
	"github.com/jonathan/interview-agent/internal/server/middleware"
	"github.com/jonathan/interview-agent/internal/server/ratelimit"
	"github.com/jonathan/interview-agent/internal/session"
)

// tickInterval drives the countdown while an interview is active.
const tickInterval = 250 * time.Millisecond

// Server is the interview agent's HTTP server.
type Server struct {
	httpServer  *http.Server
	ctrl        *session.Controller
	auth        *config.AuthConfig
	jwtService  *JWTService
	rateLimiter *ratelimit.Limiter
	useBrowser  bool
	verbose     bool
}

// Config holds server configuration.
type Config struct {
	Port       int
	Auth       *config.AuthConfig
	JWT        *config.JWTConfig
	UseBrowser bool
	Verbose    bool
}

// New creates a server wired to a session controller.
func New(cfg Config, ctrl *session.Controller) (*Server, error) {
	if cfg.Auth == nil || cfg.Auth.PasswordHash == "" {
		return nil, fmt.Errorf("operator password hash is required to serve the API")
	}
	if cfg.JWT == nil {
		return nil, fmt.Errorf("JWT configuration is required")
	}

	s := &Server{
		ctrl:        ctrl,
		auth:        cfg.Auth,
		jwtService:  NewJWTService(cfg.JWT),
		rateLimiter: ratelimit.NewLimiter(),
		useBrowser:  cfg.UseBrowser,
		verbose:     cfg.Verbose,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /login", s.handleLogin)
	mux.HandleFunc("GET /health", s.handleHealth)

	protected := http.NewServeMux()
	protected.HandleFunc("GET /candidates", s.handleListCandidates)
	protected.HandleFunc("POST /candidates", s.handleCreateCandidate)
	protected.HandleFunc("GET /candidates/{id}", s.handleGetCandidate)
	protected.HandleFunc("DELETE /candidates/{id}", s.handleDeleteCandidate)

	protected.HandleFunc("POST /interview/start", s.handleStartInterview)
	protected.HandleFunc("POST /interview/question/start", s.handleStartQuestion)
	protected.HandleFunc("POST /interview/draft", s.handleDraft)
	protected.HandleFunc("POST /interview/answer", s.handleAnswer)
	protected.HandleFunc("POST /interview/finish", s.handleFinishEarly)
	protected.HandleFunc("POST /interview/abandon", s.handleAbandon)
	protected.HandleFunc("POST /interview/reset", s.handleReset)
	protected.HandleFunc("POST /interview/dismiss", s.handleDismiss)

	protected.HandleFunc("GET /session", s.handleSession)
	protected.HandleFunc("GET /session/stream", s.handleSessionStream)

	authMiddleware := middleware.Auth(s.jwtService)
	mux.Handle("/", authMiddleware(protected))

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.withRateLimit(s.withLogging(s.withCORS(mux))),
		ReadTimeout:  30 * time.Second,
		// The SSE stream holds its response open for the whole interview.
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Run serves until the context is cancelled, then shuts down gracefully.
// A global ticker drives the countdown so expiry fires even when no
// client is connected.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Printf("[SERVER] listening on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case err := <-errCh:
			return fmt.Errorf("server error: %w", err)
		case <-ticker.C:
			s.ctrl.Tick(ctx)
		case <-ctx.Done():
			log.Println("[SERVER] shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			s.rateLimiter.Stop()
			if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("server shutdown failed: %w", err)
			}
			log.Println("[SERVER] stopped")
			return nil
		}
	}
}

func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.rateLimiter.Allow(clientID(r), r.URL.Path) {
			s.errorResponse(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		if s.verbose {
			log.Printf("[%s] %s completed in %v", r.Method, r.URL.Path, time.Since(start))
		}
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("[SERVER] error encoding JSON response: %v", err)
	}
}

func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

func clientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
