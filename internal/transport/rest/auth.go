package rest

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/binia1/hyobinwiki/internal/service/identity"
)

// identityService defines the minimal interface needed by AuthHandler.
type identityService interface {
	SignInAnonymously(ctx context.Context) (*identity.Session, error)
	SignInWithToken(ctx context.Context, token string) (*identity.Session, error)
}

// AuthHandler serves session sign-in endpoints.
type AuthHandler struct {
	svc       identityService
	log       *slog.Logger
	authLabel string
}

// NewAuthHandler creates an AuthHandler. authLabel is the display name
// reported for non-anonymous sessions.
func NewAuthHandler(svc identityService, logger *slog.Logger, authLabel string) *AuthHandler {
	return &AuthHandler{svc: svc, log: logger.With("handler", "auth"), authLabel: authLabel}
}

type tokenRequest struct {
	Token string `json:"token"`
}

type sessionResponse struct {
	Token       string `json:"token"`
	Subject     string `json:"subject"`
	Anonymous   bool   `json:"anonymous"`
	DisplayName string `json:"displayName"`
}

// Anonymous handles POST /auth/anonymous.
func (h *AuthHandler) Anonymous(w http.ResponseWriter, r *http.Request) {
	sess, err := h.svc.SignInAnonymously(r.Context())
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, h.toSessionResponse(sess))
}

// Token handles POST /auth/token.
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token := strings.TrimSpace(req.Token)
	if token == "" {
		writeError(w, http.StatusBadRequest, "token is required")
		return
	}

	sess, err := h.svc.SignInWithToken(r.Context(), token)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.toSessionResponse(sess))
}

func (h *AuthHandler) toSessionResponse(sess *identity.Session) sessionResponse {
	return sessionResponse{
		Token:       sess.Token,
		Subject:     sess.Identity.Subject.String(),
		Anonymous:   sess.Identity.IsAnonymous,
		DisplayName: sess.Identity.DisplayName(h.authLabel),
	}
}
