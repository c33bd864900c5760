// Package web exposes the toolkit over a JSON HTTP API.
package web

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"pmtoolkit/pkg/auth"
	"pmtoolkit/pkg/logx"
	"pmtoolkit/pkg/session"
	"pmtoolkit/pkg/toolkit"
)

const sessionCookie = "pmtoolkit_session"

// Server is the JSON API server.
type Server struct {
	toolkit *toolkit.Toolkit
	auth    *auth.Authenticator
	logger  *logx.Logger
	httpSrv *http.Server
}

// NewServer creates the API server listening on addr.
func NewServer(addr string, tk *toolkit.Toolkit, authn *auth.Authenticator) *Server {
	s := &Server{
		toolkit: tk,
		auth:    authn,
		logger:  logx.NewLogger("web"),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/login", s.handleLogin)
	mux.HandleFunc("/api/logout", s.handleLogout)
	mux.HandleFunc("/api/prd/create", s.requireSession(s.handlePRDCreate))
	mux.HandleFunc("/api/prd/improve", s.requireSession(s.handlePRDImprove))
	mux.HandleFunc("/api/tracking", s.requireSession(s.handleTracking))
	mux.HandleFunc("/api/gtm", s.requireSession(s.handleGTM))
	mux.HandleFunc("/api/brainstorm", s.requireSession(s.handleBrainstorm))
	mux.HandleFunc("/api/history", s.requireSession(s.handleHistory))
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())

	s.httpSrv = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the server's HTTP handler, used directly in tests.
func (s *Server) Handler() http.Handler {
	return s.httpSrv.Handler
}

// Start serves until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("listening on %s", s.httpSrv.Addr)
	err := s.httpSrv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

// sessionToken extracts the token from the bearer header or session cookie.
func sessionToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	if c, err := r.Cookie(sessionCookie); err == nil {
		return c.Value
	}
	return ""
}

type sessionHandler func(w http.ResponseWriter, r *http.Request, sess *session.Session)

// requireSession resolves the request's session token or rejects with 401.
func (s *Server) requireSession(next sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := sessionToken(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, "missing session token")
			return
		}
		sess, ok := s.auth.Resolve(token)
		if !ok {
			writeError(w, http.StatusUnauthorized, "invalid session token")
			return
		}
		next(w, r, sess)
	}
}
