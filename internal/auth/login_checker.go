package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

var ErrNotLoggedIn = errors.New("not logged in")

type LoginChecker struct {
	ttl         time.Duration
	redisClient *redis.Client
}

func NewLoginChecker(ttl time.Duration, redisClient *redis.Client) *LoginChecker {
	return &LoginChecker{
		ttl:         ttl,
		redisClient: redisClient,
	}
}

func (c *LoginChecker) IsLogged(ctx context.Context, token string) (bool, error) {
	_, err := c.LoggedUserID(ctx, token)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrNotLoggedIn):
		return false, nil
	default:
		return false, err
	}
}

// LoggedUserID returns the id of the user owning the session token, or
// ErrNotLoggedIn when the token is unknown or expired.
func (c *LoginChecker) LoggedUserID(ctx context.Context, token string) (int, error) {
	sessionKey := sessionKeyPrefix + token
	cmd := c.redisClient.Get(ctx, sessionKey)
	if err := cmd.Err(); err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrNotLoggedIn
		}
		return 0, err
	}

	userID, createdAt, err := parseSessionValue(cmd.Val())
	if err != nil {
		return 0, fmt.Errorf("check session: %w", err)
	}

	if time.Since(createdAt) > c.ttl {
		return 0, ErrNotLoggedIn
	}

	return userID, nil
}
