package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/agrunetcore/farmhub/internal/session"
)

type contextKey string

const contextSessionKey contextKey = "session"

// ErrorResponse is a simple error payload. Redirect carries the navigation
// target the route guard decided on, when one applies.
type ErrorResponse struct {
	Error    string `json:"error"`
	Redirect string `json:"redirect,omitempty"`
}

// MessageResponse is a simple notice payload.
type MessageResponse struct {
	Message string `json:"message"`
}

func contextWithSession(ctx context.Context, sess *session.Session) context.Context {
	return context.WithValue(ctx, contextSessionKey, sess)
}

func sessionFromContext(ctx context.Context) (*session.Session, error) {
	sess, ok := ctx.Value(contextSessionKey).(*session.Session)
	if !ok || !sess.Active() {
		return nil, errors.New("missing session")
	}
	return sess, nil
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

func writeGuardError(w http.ResponseWriter, status int, message, redirect string) {
	writeJSON(w, status, ErrorResponse{Error: message, Redirect: redirect})
}

// Healthz reports liveness.
func Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
