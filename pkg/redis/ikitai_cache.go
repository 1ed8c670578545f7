package redis

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// IkitaiKeyPrefix イキタイ状态缓存key前缀
const IkitaiKeyPrefix = "ramen:ikitai:user:"

// ErrCacheMiss 缓存未命中
var ErrCacheMiss = errors.New("cache miss")

// CachedIkitai 缓存的イキタイ状态
type CachedIkitai struct {
	UserID    uint      `json:"user_id"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

func ikitaiKey(userID uint) string {
	return fmt.Sprintf("%s%d", IkitaiKeyPrefix, userID)
}

// SetIkitai 缓存状态，TTL 为距离过期的剩余时间
func SetIkitai(status *CachedIkitai, now time.Time) error {
	if client == nil {
		return errNotInitialized
	}

	key := ikitaiKey(status.UserID)
	ttl := status.ExpiresAt.Sub(now)
	if ttl <= 0 {
		// 已过期的状态不缓存
		return client.Del(ctx, key).Err()
	}

	data, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("序列化イキタイ状态失败: %w", err)
	}

	if err := client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("设置イキタイ状态缓存失败: %w", err)
	}
	return nil
}

// GetIkitai 读取缓存状态，未命中返回 ErrCacheMiss
func GetIkitai(userID uint) (*CachedIkitai, error) {
	if client == nil {
		return nil, errNotInitialized
	}

	data, err := client.Get(ctx, ikitaiKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("获取イキタイ状态缓存失败: %w", err)
	}

	var status CachedIkitai
	if err := json.Unmarshal(data, &status); err != nil {
		return nil, fmt.Errorf("反序列化イキタイ状态失败: %w", err)
	}
	return &status, nil
}

// DeleteIkitai 删除缓存状态
func DeleteIkitai(userID uint) error {
	if client == nil {
		return errNotInitialized
	}
	if err := client.Del(ctx, ikitaiKey(userID)).Err(); err != nil {
		return fmt.Errorf("删除イキタイ状态缓存失败: %w", err)
	}
	return nil
}
