package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"pmtoolkit/pkg/auth"
	"pmtoolkit/pkg/session"
	"pmtoolkit/pkg/toolkit"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

// writeToolkitError maps invocation failures to HTTP statuses: rejected
// input is the client's fault, anything else is an upstream engine or
// storage failure.
func writeToolkitError(w http.ResponseWriter, err error) {
	var verr *toolkit.ValidationError
	if errors.As(err, &verr) {
		writeError(w, http.StatusBadRequest, verr.Error())
		return
	}
	writeError(w, http.StatusBadGateway, err.Error())
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
	Owner string `json:"owner"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req loginRequest
	if !decodeBody(w, r, &req) {
		return
	}
	sess, err := s.auth.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		s.logger.Error("login failed for %s: %v", req.Email, err)
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    sess.Token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, loginResponse{Token: sess.Token, Owner: sess.Owner})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if token := sessionToken(r); token != "" {
		s.auth.Logout(token)
	}
	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: "", Path: "/", MaxAge: -1})
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handlePRDCreate(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var in toolkit.PRDCreateInput
	if !decodeBody(w, r, &in) {
		return
	}
	artifact, err := s.toolkit.CreatePRD(r.Context(), sess, &in)
	if err != nil {
		writeToolkitError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, artifact)
}

func (s *Server) handlePRDImprove(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var in toolkit.PRDImproveInput
	if !decodeBody(w, r, &in) {
		return
	}
	artifact, err := s.toolkit.ImprovePRD(r.Context(), sess, &in)
	if err != nil {
		writeToolkitError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, artifact)
}

func (s *Server) handleTracking(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var in toolkit.TrackingPlanInput
	if !decodeBody(w, r, &in) {
		return
	}
	artifact, err := s.toolkit.TrackingPlan(r.Context(), sess, &in)
	if err != nil {
		writeToolkitError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, artifact)
}

func (s *Server) handleGTM(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var in toolkit.GTMPlanInput
	if !decodeBody(w, r, &in) {
		return
	}
	artifact, err := s.toolkit.GTMPlan(r.Context(), sess, &in)
	if err != nil {
		writeToolkitError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, artifact)
}

type brainstormRequest struct {
	Input string `json:"input"`
}

type brainstormResponse struct {
	Reply string `json:"reply"`
}

func (s *Server) handleBrainstorm(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req brainstormRequest
	if !decodeBody(w, r, &req) {
		return
	}
	reply, err := s.toolkit.Brainstorm(r.Context(), sess, req.Input)
	if err != nil {
		writeToolkitError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, brainstormResponse{Reply: reply})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	h, err := s.toolkit.History(sess)
	if err != nil {
		s.logger.Error("history failed for %s: %v", sess.Owner, err)
		writeError(w, http.StatusInternalServerError, "failed to load history")
		return
	}
	writeJSON(w, http.StatusOK, h)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
