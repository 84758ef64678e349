package auth

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"presadmin/internal/auth/models"
	"presadmin/internal/auth/token"
	"presadmin/pkg/requestcontext"
)

func newGate(t *testing.T) (*token.Service, http.Handler, *requestcontext.StaffPrincipal) {
	t.Helper()
	tokens := token.NewService("test-signing-key", "presadmin-test")

	var seen requestcontext.StaffPrincipal
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = requestcontext.Principal(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	return tokens, RequireStaff(tokens, slog.New(slog.NewTextHandler(io.Discard, nil)))(inner), &seen
}

func issue(t *testing.T, tokens *token.Service, isStaff bool) string {
	t.Helper()
	signed, err := tokens.Issue(models.StaffDecision{
		Identity: models.Identity{DiscordID: 123, Username: "mariposa"},
		IsStaff:  isStaff,
	}, time.Hour)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return signed
}

func TestRequireStaff_MissingToken(t *testing.T) {
	_, gate, _ := newGate(t)

	req := httptest.NewRequest(http.MethodPost, "/api/presentations/1/approve", nil)
	rec := httptest.NewRecorder()
	gate.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}
}

func TestRequireStaff_GarbageToken(t *testing.T) {
	_, gate, _ := newGate(t)

	for _, garbage := range []string{"garbage", "a.b.c", ""} {
		req := httptest.NewRequest(http.MethodPost, "/api/presentations/1/approve?token="+garbage, nil)
		rec := httptest.NewRecorder()
		gate.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401 for token %q, got %d", garbage, rec.Code)
		}
	}
}

func TestRequireStaff_NonStaffForbidden(t *testing.T) {
	tokens, gate, _ := newGate(t)

	req := httptest.NewRequest(http.MethodPost, "/api/presentations/1/approve?token="+issue(t, tokens, false), nil)
	rec := httptest.NewRecorder()
	gate.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-staff token, got %d", rec.Code)
	}
}

func TestRequireStaff_StaffViaQueryParam(t *testing.T) {
	tokens, gate, seen := newGate(t)

	req := httptest.NewRequest(http.MethodPost, "/api/presentations/1/approve?token="+issue(t, tokens, true), nil)
	rec := httptest.NewRecorder()
	gate.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for staff token, got %d", rec.Code)
	}
	if seen.DiscordID != 123 || seen.Username != "mariposa" {
		t.Fatalf("expected principal injected into context, got %+v", *seen)
	}
}

func TestRequireStaff_StaffViaBearerHeader(t *testing.T) {
	tokens, gate, seen := newGate(t)

	req := httptest.NewRequest(http.MethodPost, "/api/presentations/1/approve", nil)
	req.Header.Set("Authorization", "Bearer "+issue(t, tokens, true))
	rec := httptest.NewRecorder()
	gate.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for bearer staff token, got %d", rec.Code)
	}
	if seen.DiscordID != 123 {
		t.Fatalf("expected principal injected into context, got %+v", *seen)
	}
}
