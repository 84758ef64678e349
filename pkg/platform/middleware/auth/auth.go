package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"presadmin/internal/auth/token"
	dErrors "presadmin/pkg/domain-errors"
	"presadmin/pkg/platform/httputil"
	request "presadmin/pkg/platform/middleware/request"
	"presadmin/pkg/requestcontext"
)

// TokenVerifier defines the interface for verifying session tokens.
type TokenVerifier interface {
	Verify(tokenString string) (*token.Claims, error)
}

// RequireStaff guards mutating review routes. It extracts the session
// token, rejects unauthenticated callers with 401 and non-staff callers
// with 403, and injects the acting principal into the request context for
// reviewed_by stamping. Authorization is binary: staff or nothing.
//
// The is_staff re-check is defensive; a token with the flag false cannot
// be minted by a legitimate login, but the gate does not assume that.
func RequireStaff(verifier TokenVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := request.GetRequestID(ctx)

			tokenString := extractToken(r)
			if tokenString == "" {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestID,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "missing session token"))
				return
			}

			claims, err := verifier.Verify(tokenString)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestID,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid or expired token"))
				return
			}

			if !claims.IsStaff {
				logger.WarnContext(ctx, "forbidden access - staff role missing",
					"request_id", requestID,
					"discord_id", claims.DiscordID,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "staff role required"))
				return
			}

			ctx = requestcontext.WithPrincipal(ctx, requestcontext.StaffPrincipal{
				DiscordID: claims.DiscordID,
				Username:  claims.Username,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractToken accepts either an Authorization bearer header or a token
// query parameter. The query form is the contract the frontend already
// uses; the header form is for API clients.
func extractToken(r *http.Request) string {
	const bearerPrefix = "Bearer "
	if after, ok := strings.CutPrefix(r.Header.Get("Authorization"), bearerPrefix); ok {
		return after
	}
	return r.URL.Query().Get("token")
}
