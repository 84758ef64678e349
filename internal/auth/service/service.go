// Package service implements the staff verification flow: the single
// authorization decision point for the whole API. Every protected
// capability downstream depends on the boolean computed here, fresh per
// login and never cached across logins.
package service

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"time"

	"golang.org/x/oauth2"

	"presadmin/internal/auth/device"
	authmetrics "presadmin/internal/auth/metrics"
	"presadmin/internal/auth/models"
	"presadmin/internal/discord"
	"presadmin/pkg/platform/sentinel"
	"presadmin/pkg/requestcontext"
)

// DiscordClient is the outbound surface the flow needs from the Discord API.
type DiscordClient interface {
	AuthCodeURL(state string) string
	ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error)
	FetchCurrentUser(ctx context.Context, accessToken string) (*discord.User, error)
	FetchGuildMember(ctx context.Context, guildID string, userID int64) (*discord.GuildMember, error)
}

// TokenIssuer mints session tokens for authorized staff.
type TokenIssuer interface {
	Issue(decision models.StaffDecision, ttl time.Duration) (string, error)
}

// Config carries the fixed guild/role inputs of the staff check.
type Config struct {
	GuildID     string
	StaffRoleID string
	TokenTTL    time.Duration
}

// LoginResult is the terminal state of one login flow. Token is set only
// when IsStaff is true.
type LoginResult struct {
	Identity models.Identity
	IsStaff  bool
	Token    string
}

// Service orchestrates the OAuth exchange and Discord lookups into a
// staff/non-staff decision and, for staff, a session token.
type Service struct {
	discord DiscordClient
	tokens  TokenIssuer
	cfg     Config
	logger  *slog.Logger
	metrics *authmetrics.Metrics
}

func New(discordClient DiscordClient, tokens TokenIssuer, cfg Config, logger *slog.Logger, m *authmetrics.Metrics) *Service {
	return &Service{
		discord: discordClient,
		tokens:  tokens,
		cfg:     cfg,
		logger:  logger,
		metrics: m,
	}
}

// AuthCodeURL returns the provider authorize URL for the login redirect.
func (s *Service) AuthCodeURL(state string) string {
	return s.discord.AuthCodeURL(state)
}

// VerifyStaffAccess fetches the authenticated user, looks up their guild
// membership, and decides staff status. A user absent from the guild is a
// valid non-staff outcome, not an error. Upstream failures propagate.
func (s *Service) VerifyStaffAccess(ctx context.Context, accessToken string) (models.StaffDecision, error) {
	user, err := s.discord.FetchCurrentUser(ctx, accessToken)
	if err != nil {
		return models.StaffDecision{}, err
	}

	discordID, err := user.DiscordID()
	if err != nil {
		return models.StaffDecision{}, err
	}

	identity := models.Identity{
		DiscordID: discordID,
		Username:  user.Username,
		AvatarURL: user.AvatarURL(),
	}

	member, err := s.discord.FetchGuildMember(ctx, s.cfg.GuildID, discordID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return models.StaffDecision{Identity: identity, IsStaff: false}, nil
		}
		return models.StaffDecision{}, err
	}

	isStaff := slices.Contains(member.Roles, s.cfg.StaffRoleID)
	return models.StaffDecision{Identity: identity, IsStaff: isStaff}, nil
}

// Login runs the full callback flow: exchange the authorization code,
// verify staff access, and mint a session token for staff. The OAuth
// access token is used within this call and then discarded.
func (s *Service) Login(ctx context.Context, code string) (*LoginResult, error) {
	start := time.Now()
	requestID := requestcontext.RequestID(ctx)

	oauthToken, err := s.discord.ExchangeCode(ctx, code)
	if err != nil {
		s.loginFailed()
		return nil, err
	}

	decision, err := s.VerifyStaffAccess(ctx, oauthToken.AccessToken)
	if err != nil {
		s.loginFailed()
		return nil, err
	}

	result := &LoginResult{Identity: decision.Identity, IsStaff: decision.IsStaff}
	if !decision.IsStaff {
		s.logger.WarnContext(ctx, "login denied - staff role missing",
			"request_id", requestID,
			"discord_id", decision.Identity.DiscordID,
			"username", decision.Identity.Username,
		)
		if s.metrics != nil {
			s.metrics.LoginDenied.Inc()
			s.metrics.ObserveCallback(start)
		}
		return result, nil
	}

	signed, err := s.tokens.Issue(decision, s.cfg.TokenTTL)
	if err != nil {
		s.loginFailed()
		return nil, err
	}
	result.Token = signed

	s.logger.InfoContext(ctx, "staff login",
		"request_id", requestID,
		"discord_id", decision.Identity.DiscordID,
		"username", decision.Identity.Username,
		"device", device.ParseUserAgent(requestcontext.UserAgent(ctx)),
		"client_ip", requestcontext.ClientIP(ctx),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	if s.metrics != nil {
		s.metrics.LoginSucceeded.Inc()
		s.metrics.ObserveCallback(start)
	}
	return result, nil
}

func (s *Service) loginFailed() {
	if s.metrics != nil {
		s.metrics.LoginFailed.Inc()
	}
}
