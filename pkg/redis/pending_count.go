package redis

import (
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// 待处理关注请求计数相关常量
const (
	PendingCountKeyPrefix = "ramen:pending:" // 待处理请求计数key前缀

	// 回填与失效之间存在竞争，过期时间保持较短以限制脏计数的存活时间
	PendingCountTTL = time.Minute
)

func pendingCountKey(userID uint) string {
	return fmt.Sprintf("%s%d", PendingCountKeyPrefix, userID)
}

// GetPendingCount 获取用户待处理请求数，key不存在时返回-1表示需要从数据库获取
func GetPendingCount(userID uint) (int64, error) {
	if client == nil {
		return 0, errNotInitialized
	}

	count, err := client.Get(ctx, pendingCountKey(userID)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return -1, nil
		}
		return 0, fmt.Errorf("获取待处理请求计数失败: %w", err)
	}
	return count, nil
}

// SetPendingCount 设置用户待处理请求数（从数据库回填）
func SetPendingCount(userID uint, count int64) error {
	if client == nil {
		return errNotInitialized
	}

	if err := client.Set(ctx, pendingCountKey(userID), count, PendingCountTTL).Err(); err != nil {
		return fmt.Errorf("设置待处理请求计数失败: %w", err)
	}
	return nil
}

// ResetPendingCount 使计数失效，下次读取时从数据库重新统计
func ResetPendingCount(userID uint) error {
	if client == nil {
		return errNotInitialized
	}

	if err := client.Del(ctx, pendingCountKey(userID)).Err(); err != nil {
		return fmt.Errorf("重置待处理请求计数失败: %w", err)
	}
	return nil
}
