// Package token implements the stateless session token codec. A token is
// the only session record this service keeps: identity and staff flag are
// embedded in a signed JWT, so validity is determined purely by signature
// and expiry with no server-side lookup.
package token

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"presadmin/internal/auth/models"
	dErrors "presadmin/pkg/domain-errors"
)

// ErrInvalidToken is the uniform verification failure. Callers must not
// learn whether a token was malformed, tampered with, or expired; any of
// those means "treat as unauthenticated".
var ErrInvalidToken = dErrors.New(dErrors.CodeUnauthorized, "invalid token")

// Claims is the session claim set carried inside the signed token.
type Claims struct {
	DiscordID int64  `json:"discord_id"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url,omitempty"`
	IsStaff   bool   `json:"is_staff"`
	jwt.RegisteredClaims
}

// Service signs and verifies session tokens with a symmetric secret.
type Service struct {
	signingKey []byte
	issuer     string
}

func NewService(signingKey string, issuer string) *Service {
	return &Service{
		signingKey: []byte(signingKey),
		issuer:     issuer,
	}
}

// Issue mints a signed session token for the given staff decision,
// expiring ttl from now.
func (s *Service) Issue(decision models.StaffDecision, ttl time.Duration) (string, error) {
	now := time.Now()
	newToken := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		DiscordID: decision.Identity.DiscordID,
		Username:  decision.Identity.Username,
		AvatarURL: decision.Identity.AvatarURL,
		IsStaff:   decision.IsStaff,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(decision.Identity.DiscordID, 10),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.issuer,
		},
	})

	signedToken, err := newToken.SignedString(s.signingKey)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to sign session token")
	}
	return signedToken, nil
}

// Verify checks signature and expiry and returns the embedded claims.
// Every failure mode maps to ErrInvalidToken.
func (s *Service) Verify(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	}, jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
