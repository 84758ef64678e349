package discord

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "presadmin/pkg/domain-errors"
	"presadmin/pkg/platform/circuit"
	"presadmin/pkg/platform/sentinel"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(Config{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURI:  "http://localhost:8000/auth/discord/callback",
		BotToken:     "bot-token",
		APIURL:       srv.URL,
	})
}

func TestFetchCurrentUser(t *testing.T) {
	avatar := "a1b2c3"
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/@me", r.URL.Path)
		assert.Equal(t, "Bearer user-access-token", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(User{
			ID:            "123",
			Username:      "mariposa",
			Avatar:        &avatar,
			Discriminator: "0",
		})
	}))

	user, err := client.FetchCurrentUser(context.Background(), "user-access-token")
	require.NoError(t, err)
	assert.Equal(t, "mariposa", user.Username)

	id, err := user.DiscordID()
	require.NoError(t, err)
	assert.Equal(t, int64(123), id)
	assert.Equal(t, "https://cdn.discordapp.com/avatars/123/a1b2c3.png", user.AvatarURL())
}

func TestFetchCurrentUser_UpstreamFailure(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	_, err := client.FetchCurrentUser(context.Background(), "expired-access-token")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUpstream))
}

func TestFetchGuildMember(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/guilds/1057322159590088725/members/123", r.URL.Path)
		assert.Equal(t, "Bot bot-token", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(GuildMember{
			Roles: []string{"1105015111942414356", "999"},
		})
	}))

	member, err := client.FetchGuildMember(context.Background(), "1057322159590088725", 123)
	require.NoError(t, err)
	assert.Contains(t, member.Roles, "1105015111942414356")
}

func TestFetchGuildMember_NotInGuild(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message": "Unknown Member", "code": 10007}`, http.StatusNotFound)
	}))

	_, err := client.FetchGuildMember(context.Background(), "1057322159590088725", 123)
	require.ErrorIs(t, err, sentinel.ErrNotFound)
	assert.False(t, dErrors.HasCode(err, dErrors.CodeUpstream))
}

func TestFetchGuildMember_ServerError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	_, err := client.FetchGuildMember(context.Background(), "1057322159590088725", 123)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUpstream))
}

func TestExchangeCode(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/oauth2/token", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "authorization_code", r.PostForm.Get("grant_type"))
		assert.Equal(t, "the-code", r.PostForm.Get("code"))
		assert.Equal(t, "client-id", r.PostForm.Get("client_id"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "user-access-token",
			"token_type":    "Bearer",
			"expires_in":    604800,
			"refresh_token": "refresh",
			"scope":         "identify guilds guilds.members.read",
		})
	}))

	tok, err := client.ExchangeCode(context.Background(), "the-code")
	require.NoError(t, err)
	assert.Equal(t, "user-access-token", tok.AccessToken)
}

func TestExchangeCode_UpstreamFailure(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "invalid_grant"}`, http.StatusBadRequest)
	}))

	_, err := client.ExchangeCode(context.Background(), "bad-code")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUpstream))
}

func TestAuthCodeURL(t *testing.T) {
	client := NewClient(Config{
		ClientID:    "client-id",
		RedirectURI: "http://localhost:8000/auth/discord/callback",
	})

	url := client.AuthCodeURL("state-token")
	assert.Contains(t, url, "/oauth2/authorize")
	assert.Contains(t, url, "client_id=client-id")
	assert.Contains(t, url, "state=state-token")
	assert.Contains(t, url, "identify+guilds+guilds.members.read")
}

func TestCircuitBreaker_FailsFastAfterRepeatedOutages(t *testing.T) {
	var hits atomic.Int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))

	for i := 0; i < 5; i++ {
		_, err := client.FetchCurrentUser(context.Background(), "access-token")
		require.Error(t, err)
	}
	require.Equal(t, int32(5), hits.Load())

	_, err := client.FetchCurrentUser(context.Background(), "access-token")
	require.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, int32(5), hits.Load(), "open breaker must not reach the network")
}

func TestCircuitBreaker_RecoversAfterCooldown(t *testing.T) {
	var healthy atomic.Bool
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !healthy.Load() {
			http.Error(w, "upstream down", http.StatusBadGateway)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "123", "username": "mariposa"})
	}))
	client.breaker = circuit.New("discord",
		circuit.WithFailureThreshold(1),
		circuit.WithSuccessThreshold(1),
		circuit.WithCooldown(50*time.Millisecond))

	_, err := client.FetchCurrentUser(context.Background(), "access-token")
	require.Error(t, err)

	_, err = client.FetchCurrentUser(context.Background(), "access-token")
	require.ErrorIs(t, err, ErrCircuitOpen)

	healthy.Store(true)
	time.Sleep(60 * time.Millisecond)

	user, err := client.FetchCurrentUser(context.Background(), "access-token")
	require.NoError(t, err)
	assert.Equal(t, "mariposa", user.Username)
	assert.False(t, client.breaker.IsOpen())
}
