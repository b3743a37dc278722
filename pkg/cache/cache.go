package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// TTL 상수 정의
const (
	TTLUserSummary = 5 * time.Minute
	TTLDefault     = 5 * time.Minute
)

// 캐시 키 접두사
const (
	PrefixUserSummary = "user:summary:"
)

// ErrCacheMiss is returned when the key is absent or Redis is not configured
var ErrCacheMiss = errors.New("cache miss")

// Service Redis 캐시 서비스 인터페이스
type Service interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error

	// 사용자 요약 캐시 (대화 헤더용)
	GetUserSummary(ctx context.Context, userID string, dest interface{}) error
	SetUserSummary(ctx context.Context, userID string, data interface{}) error
	InvalidateUserSummary(ctx context.Context, userID string) error

	IsAvailable() bool
}

// redisCache Redis 기반 캐시 구현
type redisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewService 새로운 캐시 서비스 생성. client가 nil이면 모든 조회가 miss가 된다.
func NewService(client *redis.Client, summaryTTL time.Duration) Service {
	if summaryTTL <= 0 {
		summaryTTL = TTLUserSummary
	}
	return &redisCache{client: client, ttl: summaryTTL}
}

// IsAvailable Redis 연결 가능 여부
func (c *redisCache) IsAvailable() bool {
	return c.client != nil
}

// Get 캐시에서 값 조회
func (c *redisCache) Get(ctx context.Context, key string, dest interface{}) error {
	if c.client == nil {
		return ErrCacheMiss
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrCacheMiss
	}
	if err != nil {
		return fmt.Errorf("cache get %s: %w", key, err)
	}

	return json.Unmarshal(data, dest)
}

// Set 캐시에 값 저장
func (c *redisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if c.client == nil {
		return nil // Redis 없으면 무시
	}

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, key, data, ttl).Err()
}

// Delete 캐시 삭제
func (c *redisCache) Delete(ctx context.Context, keys ...string) error {
	if c.client == nil {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

func (c *redisCache) GetUserSummary(ctx context.Context, userID string, dest interface{}) error {
	return c.Get(ctx, PrefixUserSummary+userID, dest)
}

func (c *redisCache) SetUserSummary(ctx context.Context, userID string, data interface{}) error {
	return c.Set(ctx, PrefixUserSummary+userID, data, c.ttl)
}

func (c *redisCache) InvalidateUserSummary(ctx context.Context, userID string) error {
	return c.Delete(ctx, PrefixUserSummary+userID)
}
