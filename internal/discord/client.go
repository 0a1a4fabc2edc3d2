// Package discord is a minimal Discord REST client for user profile lookups,
// with a Redis cache in front so repeated lookups of the same member do not
// hit the Discord API.
package discord

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const BaseURL = "https://discord.com/api/v10"

var (
	// ErrNotConfigured means no bot token is set; lookups are disabled.
	ErrNotConfigured = errors.New("discord bot token not configured")
	// ErrNotFound means Discord knows no user with that ID.
	ErrNotFound = errors.New("discord user not found")
	// ErrUnauthorized means the configured bot token was rejected.
	ErrUnauthorized = errors.New("discord bot token rejected")
)

// User is the subset of the Discord user object this service needs.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

// AvatarURL returns the CDN URL of the user's avatar, or "" when they have none.
func (u *User) AvatarURL() string {
	if u.Avatar == "" {
		return ""
	}
	return fmt.Sprintf("https://cdn.discordapp.com/avatars/%s/%s.png", u.ID, u.Avatar)
}

// Client fetches Discord user profiles using a bot token.
type Client struct {
	botToken   string
	httpClient *http.Client
	cache      *redis.Client
	cacheTTL   time.Duration
	logger     *zap.Logger
}

// NewClient creates a Discord client. cache may be nil to disable caching.
func NewClient(botToken string, cache *redis.Client, cacheTTL time.Duration, logger *zap.Logger) *Client {
	return &Client{
		botToken: botToken,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

func cacheKey(id string) string { return "discord:user:" + id }

// GetUser returns the Discord user with the given ID, from cache when fresh.
func (c *Client) GetUser(ctx context.Context, id string) (*User, error) {
	if c.botToken == "" {
		return nil, ErrNotConfigured
	}

	if c.cache != nil {
		if raw, err := c.cache.Get(ctx, cacheKey(id)).Bytes(); err == nil {
			var u User
			if json.Unmarshal(raw, &u) == nil {
				return &u, nil
			}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, BaseURL+"/users/"+id, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bot "+c.botToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("discord request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, ErrNotFound
	case http.StatusUnauthorized:
		return nil, ErrUnauthorized
	default:
		return nil, fmt.Errorf("discord API: status %d", resp.StatusCode)
	}

	var u User
	if err := json.NewDecoder(resp.Body).Decode(&u); err != nil {
		return nil, fmt.Errorf("decode discord user: %w", err)
	}

	if c.cache != nil {
		if raw, err := json.Marshal(&u); err == nil {
			if err := c.cache.Set(ctx, cacheKey(id), raw, c.cacheTTL).Err(); err != nil {
				c.logger.Warn("cache discord user", zap.Error(err))
			}
		}
	}
	return &u, nil
}
