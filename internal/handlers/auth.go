package handlers

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"tubedash-backend/internal/middleware"
	"tubedash-backend/internal/services"
)

// AuthHandler owns the one session operation this core performs
// itself: revoking the current session. Token issuance lives with the
// external OAuth provider.
type AuthHandler struct {
	sessions *middleware.SessionAuth
	audit    *services.AuditLogger
	log      *zap.Logger
}

func NewAuthHandler(sessions *middleware.SessionAuth, audit *services.AuditLogger, log *zap.Logger) *AuthHandler {
	return &AuthHandler{sessions: sessions, audit: audit, log: log}
}

// Logout revokes the presented session token for its remaining
// lifetime.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		badRequest(w, "Missing bearer token")
		return
	}

	if err := h.sessions.Revoke(r.Context(), parts[1]); err != nil {
		h.log.Warn("session revocation failed", zap.Error(err))
		respondError(w, h.log, err)
		return
	}
	okMessage(w, "Logged out")
}
