package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds everything the server needs from the environment. Discord
// credentials have no sane defaults and must be provided.
type Config struct {
	Addr        string `envconfig:"API_ADDR" default:":8000"`
	FrontendURL string `envconfig:"FRONTEND_URL" default:"http://localhost:3001"`

	DiscordClientID     string `envconfig:"DISCORD_CLIENT_ID" required:"true"`
	DiscordClientSecret string `envconfig:"DISCORD_CLIENT_SECRET" required:"true"`
	DiscordBotToken     string `envconfig:"DISCORD_BOT_TOKEN" required:"true"`
	DiscordRedirectURI  string `envconfig:"DISCORD_REDIRECT_URI" default:"http://localhost:8000/auth/discord/callback"`
	DiscordAPIURL       string `envconfig:"DISCORD_API_URL" default:"https://discord.com/api/v10"`

	GuildID     string `envconfig:"DISCORD_SERVER_ID" default:"1057322159590088725"`
	StaffRoleID string `envconfig:"DISCORD_STAFF_ROLE_ID" default:"1105015111942414356"`

	SecretKey          string `envconfig:"SECRET_KEY" required:"true"`
	TokenExpireMinutes int    `envconfig:"ACCESS_TOKEN_EXPIRE_MINUTES" default:"1440"`

	DatabasePath string `envconfig:"BOT_DATABASE_PATH" default:"presentations.db"`
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &cfg, nil
}

// TokenTTL returns the session token lifetime as a duration.
func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.TokenExpireMinutes) * time.Minute
}
