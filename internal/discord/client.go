// Package discord is a thin client for the three Discord API calls this
// service depends on: exchanging an authorization code, fetching the
// authenticated user, and fetching a guild member. Calls are single-shot
// with no retry policy; a transient upstream failure surfaces immediately.
package discord

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"golang.org/x/oauth2"

	dErrors "presadmin/pkg/domain-errors"
	"presadmin/pkg/platform/circuit"
	"presadmin/pkg/platform/sentinel"
)

// DefaultAPIURL is the Discord REST API base.
const DefaultAPIURL = "https://discord.com/api/v10"

// OAuthScopes are the scopes requested for staff login.
var OAuthScopes = []string{"identify", "guilds", "guilds.members.read"}

// User is the Discord /users/@me payload subset this service reads.
// Discord serializes snowflakes as strings.
type User struct {
	ID            string  `json:"id"`
	Username      string  `json:"username"`
	Avatar        *string `json:"avatar"`
	Discriminator string  `json:"discriminator"`
}

// DiscordID parses the snowflake into the numeric form used in claims and
// reviewed_by stamps.
func (u User) DiscordID() (int64, error) {
	id, err := strconv.ParseInt(u.ID, 10, 64)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeUpstream, "discord returned a non-numeric user id")
	}
	return id, nil
}

// AvatarURL builds the CDN URL for the user's avatar, or "" when unset.
func (u User) AvatarURL() string {
	if u.Avatar == nil || *u.Avatar == "" {
		return ""
	}
	return fmt.Sprintf("https://cdn.discordapp.com/avatars/%s/%s.png", u.ID, *u.Avatar)
}

// GuildMember is the guild-member payload subset this service reads.
// Roles are role-id snowflakes as strings.
type GuildMember struct {
	Nick  *string  `json:"nick"`
	Roles []string `json:"roles"`
}

// Client performs the outbound Discord calls. Safe for concurrent use.
// A circuit breaker fails logins fast while Discord is down instead of
// letting every callback wait out a timeout.
type Client struct {
	httpClient *http.Client
	apiURL     string
	oauth      *oauth2.Config
	botToken   string
	breaker    *circuit.Breaker
}

// ErrCircuitOpen is returned without touching the network while the
// breaker is open.
var ErrCircuitOpen = dErrors.New(dErrors.CodeUpstream, "discord api unavailable")

// Config carries the fixed inputs the client needs. Loaded once at process
// start; the client performs no validation or reload logic on them.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	BotToken     string
	APIURL       string
}

func NewClient(cfg Config) *Client {
	apiURL := cfg.APIURL
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	return &Client{
		httpClient: http.DefaultClient,
		apiURL:     apiURL,
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Scopes:       OAuthScopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:   apiURL + "/oauth2/authorize",
				TokenURL:  apiURL + "/oauth2/token",
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		botToken: cfg.BotToken,
		breaker:  circuit.New("discord"),
	}
}

// AuthCodeURL returns the provider authorize URL for the login redirect.
func (c *Client) AuthCodeURL(state string) string {
	return c.oauth.AuthCodeURL(state)
}

// ExchangeCode exchanges an authorization code for an access token. The
// token is used once to establish identity and membership, then discarded.
func (c *Client) ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error) {
	if c.breaker.IsOpen() {
		return nil, ErrCircuitOpen
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	tok, err := c.oauth.Exchange(ctx, code)
	if err != nil {
		c.breaker.RecordFailure()
		return nil, dErrors.Wrap(err, dErrors.CodeUpstream, "discord token exchange failed")
	}
	c.breaker.RecordSuccess()
	return tok, nil
}

// FetchCurrentUser fetches the authenticated user with the per-user bearer
// token obtained from the code exchange.
func (c *Client) FetchCurrentUser(ctx context.Context, accessToken string) (*User, error) {
	var user User
	if err := c.get(ctx, "/users/@me", "Bearer "+accessToken, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// FetchGuildMember fetches a guild member by user id with the service bot
// token. A 404 is a valid outcome meaning "user not in guild" and is
// reported as sentinel.ErrNotFound; any other failure is an upstream error.
func (c *Client) FetchGuildMember(ctx context.Context, guildID string, userID int64) (*GuildMember, error) {
	path := fmt.Sprintf("/guilds/%s/members/%d", guildID, userID)
	var member GuildMember
	if err := c.get(ctx, path, "Bot "+c.botToken, &member); err != nil {
		return nil, err
	}
	return &member, nil
}

func (c *Client) get(ctx context.Context, path string, authorization string, out any) error {
	if c.breaker.IsOpen() {
		return ErrCircuitOpen
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+path, nil)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to build discord request")
	}
	req.Header.Set("Authorization", authorization)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.breaker.RecordFailure()
		return dErrors.Wrap(err, dErrors.CodeUpstream, "discord api unreachable")
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		// A 404 means "not in guild", so Discord itself is healthy.
		c.breaker.RecordSuccess()
		return sentinel.ErrNotFound
	case resp.StatusCode >= 500:
		c.breaker.RecordFailure()
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return dErrors.New(dErrors.CodeUpstream,
			fmt.Sprintf("discord api returned status %d for %s", resp.StatusCode, path))
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		// 4xx is a bad request or token, not a Discord outage.
		c.breaker.RecordSuccess()
		// Drain so the transport can reuse the connection.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return dErrors.New(dErrors.CodeUpstream,
			fmt.Sprintf("discord api returned status %d for %s", resp.StatusCode, path))
	}

	c.breaker.RecordSuccess()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return dErrors.Wrap(err, dErrors.CodeUpstream, "discord api returned malformed JSON")
	}
	return nil
}
