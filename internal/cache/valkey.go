package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"skybook/internal/models"

	"github.com/redis/rueidis"
)

type Config struct {
	Addr     string
	Password string
	Prefix   string
	UserTTL  time.Duration
}

// ValkeyClient keeps short-lived state shared by API instances: cached
// users, revoked tokens and purchase idempotency keys
type ValkeyClient struct {
	client rueidis.Client
	prefix string
	ttl    time.Duration
}

func NewValkeyClient(cfg Config) (*ValkeyClient, error) {
	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  []string{cfg.Addr},
		Password:     cfg.Password,
		DisableCache: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Valkey: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping Valkey: %w", err)
	}

	return &ValkeyClient{
		client: client,
		prefix: cfg.Prefix,
		ttl:    cfg.UserTTL,
	}, nil
}

func (v *ValkeyClient) key(parts ...string) string {
	k := v.prefix
	for _, p := range parts {
		k += ":" + p
	}
	return k
}

// GetUser returns the cached user or nil on a miss
func (v *ValkeyClient) GetUser(ctx context.Context, id int64) (*models.User, error) {
	cmd := v.client.B().Get().Key(v.key("user", strconv.FormatInt(id, 10))).Build()

	raw, err := v.client.Do(ctx, cmd).ToString()
	if rueidis.IsRedisNil(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache lookup error: %w", err)
	}

	user := &models.User{}
	if err := json.Unmarshal([]byte(raw), user); err != nil {
		return nil, fmt.Errorf("invalid cached user: %w", err)
	}
	return user, nil
}

func (v *ValkeyClient) SetUser(ctx context.Context, user *models.User) error {
	payload, err := json.Marshal(user)
	if err != nil {
		return err
	}

	cmd := v.client.B().Set().
		Key(v.key("user", strconv.FormatInt(user.ID, 10))).
		Value(string(payload)).
		ExSeconds(int64(v.ttl / time.Second)).
		Build()
	return v.client.Do(ctx, cmd).Error()
}

func (v *ValkeyClient) DeleteUser(ctx context.Context, id int64) error {
	cmd := v.client.B().Del().Key(v.key("user", strconv.FormatInt(id, 10))).Build()
	return v.client.Do(ctx, cmd).Error()
}

// RevokeToken blocks a token id until its natural expiry
func (v *ValkeyClient) RevokeToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl < time.Second {
		ttl = time.Second
	}
	cmd := v.client.B().Set().
		Key(v.key("revoked", tokenID)).
		Value("1").
		ExSeconds(int64(ttl / time.Second)).
		Build()
	return v.client.Do(ctx, cmd).Error()
}

func (v *ValkeyClient) IsTokenRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := v.client.Do(ctx, v.client.B().Exists().Key(v.key("revoked", tokenID)).Build()).AsInt64()
	if err != nil {
		return false, fmt.Errorf("cache lookup error: %w", err)
	}
	return n > 0, nil
}

// AcquireIdempotencyKey reports true when the key was not seen within ttl
func (v *ValkeyClient) AcquireIdempotencyKey(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	cmd := v.client.B().Set().
		Key(v.key("idem", key)).
		Value(strconv.FormatInt(time.Now().Unix(), 10)).
		Nx().
		ExSeconds(int64(ttl / time.Second)).
		Build()

	err := v.client.Do(ctx, cmd).Error()
	if rueidis.IsRedisNil(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache write error: %w", err)
	}
	return true, nil
}

// ReleaseIdempotencyKey lets a failed request be retried with the same key
func (v *ValkeyClient) ReleaseIdempotencyKey(ctx context.Context, key string) error {
	return v.client.Do(ctx, v.client.B().Del().Key(v.key("idem", key)).Build()).Error()
}

func (v *ValkeyClient) Close() error {
	v.client.Close()
	return nil
}
