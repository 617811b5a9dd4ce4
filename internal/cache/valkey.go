package cache

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

type ValkeyClient struct {
	client       *redis.Client
	usersHashKey string
	showsTTL     time.Duration
}

type Config struct {
	Addr         string
	Password     string
	UsersHashKey string
	ShowsTTL     time.Duration
}

func NewValkeyClient(cfg Config) (*ValkeyClient, error) {
	if cfg.UsersHashKey == "" {
		cfg.UsersHashKey = "users:auth"
	}
	if cfg.ShowsTTL == 0 {
		cfg.ShowsTTL = time.Minute
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           0,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		DialTimeout:  5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Valkey: %w", err)
	}

	return &ValkeyClient{
		client:       rdb,
		usersHashKey: cfg.UsersHashKey,
		showsTTL:     cfg.ShowsTTL,
	}, nil
}

// GetUserIDByAuth resolves credentials to a user id through the auth hash,
// skipping a database round trip on the hot path.
func (v *ValkeyClient) GetUserIDByAuth(ctx context.Context, email, passwordHash string) (int64, error) {
	authString := fmt.Sprintf("%s:%s", email, passwordHash)
	cacheKey := base64.StdEncoding.EncodeToString([]byte(authString))

	userIDStr, err := v.client.HGet(ctx, v.usersHashKey, cacheKey).Result()
	if err != nil {
		if err == redis.Nil {
			return 0, fmt.Errorf("user not found in cache")
		}
		return 0, fmt.Errorf("cache lookup error: %w", err)
	}

	userID, err := strconv.ParseInt(userIDStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid user ID in cache: %w", err)
	}

	return userID, nil
}

func showsListKey(page, pageSize int) string {
	return fmt.Sprintf("shows:list:%d:%d", page, pageSize)
}

// GetShowsListRaw returns the cached show list page as raw JSON, avoiding an
// unmarshal/marshal round trip on cache hits.
func (v *ValkeyClient) GetShowsListRaw(ctx context.Context, page, pageSize int) ([]byte, error) {
	data, err := v.client.Get(ctx, showsListKey(page, pageSize)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, fmt.Errorf("cache miss")
		}
		return nil, fmt.Errorf("cache lookup error: %w", err)
	}
	return data, nil
}

// SetShowsList stores a show list page. Errors are swallowed; a cold cache
// never breaks a request.
func (v *ValkeyClient) SetShowsList(ctx context.Context, page, pageSize int, value interface{}) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	v.client.Set(ctx, showsListKey(page, pageSize), data, v.showsTTL)
}

func (v *ValkeyClient) Close() error {
	return v.client.Close()
}
