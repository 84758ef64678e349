package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"presadmin/internal/auth/models"
	"presadmin/internal/auth/service"
	"presadmin/internal/auth/token"
	dErrors "presadmin/pkg/domain-errors"
)

const frontendURL = "http://localhost:3001"

type fakeLoginService struct {
	result *service.LoginResult
	err    error
}

func (f *fakeLoginService) AuthCodeURL(state string) string {
	return "https://discord.test/oauth2/authorize?state=" + state
}

func (f *fakeLoginService) Login(ctx context.Context, code string) (*service.LoginResult, error) {
	return f.result, f.err
}

func newRouter(svc *fakeLoginService, tokens *token.Service) http.Handler {
	h := New(svc, tokens, frontendURL, slog.New(slog.NewTextHandler(io.Discard, nil)))
	r := chi.NewRouter()
	h.Register(r)
	return r
}

func testTokens() *token.Service {
	return token.NewService("test-signing-key", "presadmin-test")
}

func TestHandleLogin_RedirectsToDiscord(t *testing.T) {
	router := newRouter(&fakeLoginService{}, testTokens())

	req := httptest.NewRequest(http.MethodGet, "/auth/login", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusTemporaryRedirect {
		t.Fatalf("expected 307, got %d", rec.Code)
	}
	location := rec.Header().Get("Location")
	if !strings.HasPrefix(location, "https://discord.test/oauth2/authorize?state=") {
		t.Fatalf("expected redirect to discord authorize URL, got %q", location)
	}
	if strings.HasSuffix(location, "state=") {
		t.Fatalf("expected a non-empty state parameter, got %q", location)
	}
}

func TestHandleCallback_StaffRedirectsWithToken(t *testing.T) {
	tokens := testTokens()
	signed, err := tokens.Issue(models.StaffDecision{
		Identity: models.Identity{DiscordID: 123, Username: "mariposa"},
		IsStaff:  true,
	}, time.Hour)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	router := newRouter(&fakeLoginService{
		result: &service.LoginResult{
			Identity: models.Identity{DiscordID: 123, Username: "mariposa"},
			IsStaff:  true,
			Token:    signed,
		},
	}, tokens)

	req := httptest.NewRequest(http.MethodGet, "/auth/discord/callback?code=the-code", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusTemporaryRedirect {
		t.Fatalf("expected 307, got %d", rec.Code)
	}
	location, err := url.Parse(rec.Header().Get("Location"))
	if err != nil {
		t.Fatalf("parse redirect location: %v", err)
	}
	if got := location.Scheme + "://" + location.Host + location.Path; got != frontendURL+"/auth/callback" {
		t.Fatalf("expected redirect to frontend callback, got %q", got)
	}
	if location.Query().Get("token") != signed {
		t.Fatalf("expected session token in redirect query")
	}
}

func TestHandleCallback_NonStaffRedirectsUnauthorized(t *testing.T) {
	router := newRouter(&fakeLoginService{
		result: &service.LoginResult{
			Identity: models.Identity{DiscordID: 123, Username: "mariposa"},
			IsStaff:  false,
		},
	}, testTokens())

	req := httptest.NewRequest(http.MethodGet, "/auth/discord/callback?code=the-code", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusTemporaryRedirect {
		t.Fatalf("expected 307, got %d", rec.Code)
	}
	if got := rec.Header().Get("Location"); got != frontendURL+"/auth/unauthorized" {
		t.Fatalf("expected redirect to unauthorized page, got %q", got)
	}
}

func TestHandleCallback_UpstreamErrorRedirectsErrorPage(t *testing.T) {
	router := newRouter(&fakeLoginService{
		err: dErrors.New(dErrors.CodeUpstream, "discord token exchange failed"),
	}, testTokens())

	req := httptest.NewRequest(http.MethodGet, "/auth/discord/callback?code=bad-code", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusTemporaryRedirect {
		t.Fatalf("expected 307, got %d", rec.Code)
	}
	location, err := url.Parse(rec.Header().Get("Location"))
	if err != nil {
		t.Fatalf("parse redirect location: %v", err)
	}
	if location.Path != "/auth/error" {
		t.Fatalf("expected redirect to error page, got %q", location.Path)
	}
	if location.Query().Get("message") != "discord token exchange failed" {
		t.Fatalf("expected human-readable message, got %q", location.Query().Get("message"))
	}
}

func TestHandleCallback_MissingCode(t *testing.T) {
	router := newRouter(&fakeLoginService{}, testTokens())

	req := httptest.NewRequest(http.MethodGet, "/auth/discord/callback", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusTemporaryRedirect {
		t.Fatalf("expected 307, got %d", rec.Code)
	}
	if !strings.Contains(rec.Header().Get("Location"), "/auth/error") {
		t.Fatalf("expected redirect to error page, got %q", rec.Header().Get("Location"))
	}
}

func TestHandleMe_ValidToken(t *testing.T) {
	tokens := testTokens()
	signed, err := tokens.Issue(models.StaffDecision{
		Identity: models.Identity{DiscordID: 123, Username: "mariposa", AvatarURL: "https://cdn.discordapp.com/avatars/123/a.png"},
		IsStaff:  true,
	}, time.Hour)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	router := newRouter(&fakeLoginService{}, tokens)
	req := httptest.NewRequest(http.MethodGet, "/auth/me?token="+url.QueryEscape(signed), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body struct {
		DiscordID int64  `json:"discord_id"`
		Username  string `json:"username"`
		AvatarURL string `json:"avatar_url"`
		IsStaff   bool   `json:"is_staff"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.DiscordID != 123 || body.Username != "mariposa" || !body.IsStaff {
		t.Fatalf("unexpected claims in response: %+v", body)
	}
}

func TestHandleMe_InvalidToken(t *testing.T) {
	router := newRouter(&fakeLoginService{}, testTokens())

	req := httptest.NewRequest(http.MethodGet, "/auth/me?token=garbage", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for invalid token, got %d", rec.Code)
	}
}

func TestHandleLogout(t *testing.T) {
	router := newRouter(&fakeLoginService{}, testTokens())

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
