package server

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"

	apperrors "github.com/roomvoice/roomvoice/internal/platform/errors"
	"github.com/roomvoice/roomvoice/internal/platform/requestctx"
	"github.com/roomvoice/roomvoice/internal/server/httpx"
	"github.com/roomvoice/roomvoice/internal/session"
)

type loginRequest struct {
	Workspace string `json:"workspace"`
	Password  string `json:"password"`
}

// handleLogin checks the shared workspace password and sets the session
// cookie.
func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = httpx.WriteJSONError(w, http.StatusBadRequest, "invalid login payload")
		return
	}

	workspace := strings.TrimSpace(req.Workspace)
	if workspace == "" {
		workspace = h.workspace
	}
	if workspace != h.workspace || subtle.ConstantTimeCompare([]byte(req.Password), []byte(h.password)) != 1 {
		httpx.WriteError(w, apperrors.New(apperrors.CodeBadCredentials, "invalid workspace or password"))
		return
	}

	token, err := h.sessions.Issue(workspace)
	if err != nil {
		httpx.WriteError(w, apperrors.Wrap(apperrors.CodeUnknown, "issue session token", err))
		return
	}
	session.WriteCookie(w, r, token)
	_ = httpx.WriteJSON(w, http.StatusOK, map[string]any{"success": true, "workspace": workspace})
}

// handleLogout clears the session cookie unconditionally.
func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	session.ClearCookie(w, r)
	_ = httpx.WriteJSON(w, http.StatusOK, map[string]any{"success": true})
}

// requireAuth verifies the session cookie and stores the admin identity in
// the request context. API routes answer 401 JSON when the session is
// missing or invalid.
func (h *Handler) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := session.ReadCookie(r)
		if !ok {
			httpx.WriteError(w, apperrors.New(apperrors.CodeUnauthenticated, "authentication required"))
			return
		}
		claims, err := h.sessions.Verify(token)
		if err != nil {
			httpx.WriteError(w, err)
			return
		}
		ctx := requestctx.WithAdminID(r.Context(), claims.AdminID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
