// Package handler exposes the login flow over HTTP. The callback endpoint
// is browser-facing: its outcomes are redirects back to the frontend, not
// JSON bodies.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"presadmin/internal/auth/service"
	"presadmin/internal/auth/token"
	dErrors "presadmin/pkg/domain-errors"
	"presadmin/pkg/platform/httputil"
	"presadmin/pkg/requestcontext"
)

// LoginService runs the staff verification flow.
type LoginService interface {
	AuthCodeURL(state string) string
	Login(ctx context.Context, code string) (*service.LoginResult, error)
}

// TokenVerifier decodes session tokens for /auth/me.
type TokenVerifier interface {
	Verify(tokenString string) (*token.Claims, error)
}

// Handler wires the auth endpoints to the login service.
type Handler struct {
	service     LoginService
	tokens      TokenVerifier
	frontendURL string
	logger      *slog.Logger
}

func New(svc LoginService, tokens TokenVerifier, frontendURL string, logger *slog.Logger) *Handler {
	return &Handler{
		service:     svc,
		tokens:      tokens,
		frontendURL: frontendURL,
		logger:      logger,
	}
}

// Register mounts auth endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/auth/login", h.HandleLogin)
	r.Get("/auth/discord/callback", h.HandleCallback)
	r.Get("/auth/me", h.HandleMe)
	r.Post("/auth/logout", h.HandleLogout)
}

// HandleLogin redirects the browser to the Discord authorize URL.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	state := uuid.NewString()
	http.Redirect(w, r, h.service.AuthCodeURL(state), http.StatusTemporaryRedirect)
}

// HandleCallback finishes the OAuth flow. Staff land on the frontend with a
// session token; non-staff land on the unauthorized page; upstream failures
// land on the error page with a human-readable message.
func (h *Handler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	code := r.URL.Query().Get("code")
	if code == "" {
		h.redirectError(w, r, "missing authorization code")
		return
	}

	result, err := h.service.Login(ctx, code)
	if err != nil {
		h.logger.ErrorContext(ctx, "login flow failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		h.redirectError(w, r, loginErrorMessage(err))
		return
	}

	if !result.IsStaff {
		http.Redirect(w, r, h.frontendURL+"/auth/unauthorized", http.StatusTemporaryRedirect)
		return
	}

	redirect := h.frontendURL + "/auth/callback?token=" + url.QueryEscape(result.Token)
	http.Redirect(w, r, redirect, http.StatusTemporaryRedirect)
}

// HandleMe returns the decoded claims for a valid session token, 401
// otherwise.
func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	claims, err := h.tokens.Verify(r.URL.Query().Get("token"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid token"))
		return
	}

	httputil.WriteJSON(w, http.StatusOK, meResponse{
		DiscordID: claims.DiscordID,
		Username:  claims.Username,
		AvatarURL: claims.AvatarURL,
		IsStaff:   claims.IsStaff,
		ExpiresAt: claims.ExpiresAt.Time,
	})
}

// HandleLogout is a stateless no-op: the token lives only on the client,
// so logging out is the client discarding it.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Logged out successfully",
	})
}

func (h *Handler) redirectError(w http.ResponseWriter, r *http.Request, message string) {
	redirect := h.frontendURL + "/auth/error?message=" + url.QueryEscape(message)
	http.Redirect(w, r, redirect, http.StatusTemporaryRedirect)
}

// loginErrorMessage keeps error-page text human-readable without leaking
// wrapped transport details.
func loginErrorMessage(err error) string {
	var de dErrors.Error
	if errors.As(err, &de) {
		return de.Message
	}
	return "login failed"
}

type meResponse struct {
	DiscordID int64     `json:"discord_id"`
	Username  string    `json:"username"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	IsStaff   bool      `json:"is_staff"`
	ExpiresAt time.Time `json:"expires_at"`
}
