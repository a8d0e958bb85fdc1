package httptransport

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"mayaportal/internal/platform/middleware"
	dErrors "mayaportal/pkg/domain-errors"
	"mayaportal/pkg/gate"
	"mayaportal/pkg/platform/httputil"
)

// AuthService defines the interface for session operations.
type AuthService interface {
	Login(ctx context.Context, password, userAgent string) (*http.Cookie, error)
	Verify(ctx context.Context, token string) (*gate.Claims, error)
	Logout(ctx context.Context) *http.Cookie
}

// AuthHandler handles the login, verify, and logout endpoints.
type AuthHandler struct {
	auth   AuthService
	logger *slog.Logger
}

// NewAuthHandler creates a new auth handler with the given service and logger.
func NewAuthHandler(auth AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, logger: logger}
}

// Register registers the session routes with the chi router. None of them sit
// behind the auth middleware; verify reads the cookie itself so it can answer
// 401 instead of being rejected before reaching the handler.
func (h *AuthHandler) Register(r chi.Router) {
	r.Post("/login", h.HandleLogin)
	r.Get("/verify", h.HandleVerify)
	r.Post("/logout", h.HandleLogout)
}

type loginRequest struct {
	Password string `json:"password"`
}

// HandleLogin implements POST /api/login.
// Checks the shared password and sets the session cookie on success.
//
// Input: { "password": "..." }
// Output: { "ok": true } plus Set-Cookie
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode login request",
			"error", err,
			"request_id", middleware.GetRequestID(ctx),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "Invalid JSON in request body"))
		return
	}

	cookie, err := h.auth.Login(ctx, req.Password, r.UserAgent())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	http.SetCookie(w, cookie)
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// HandleVerify implements GET /api/verify.
// Validates the session cookie and returns the minimal claim set sibling
// services key on. Any failure is the uniform 401.
//
// Output: { "ok": true, "sub": "metrics-portal", "exp": 1700000000 }
func (h *AuthHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	cookie, err := r.Cookie(gate.CookieName)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthenticated, "not authenticated"))
		return
	}

	claims, err := h.auth.Verify(ctx, cookie.Value)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"ok":  true,
		"sub": claims.Subject,
		"exp": claims.ExpiresAt.Unix(),
	})
}

// HandleLogout implements POST /api/logout.
// Always succeeds; the only effect is the cookie deletion instruction.
//
// Output: { "ok": true } plus expiring Set-Cookie
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, h.auth.Logout(r.Context()))
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"ok": true})
}
