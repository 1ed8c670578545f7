package redis

import (
	"fmt"
	"time"
)

// 离线通知相关常量
const (
	OfflineNotificationsKeyPrefix = "ramen:offline:"    // 离线通知key前缀
	OfflineNotificationsTTL       = 7 * 24 * time.Hour // 7天过期
	MaxOfflineNotifications       = 100
)

func offlineKey(userID uint) string {
	return fmt.Sprintf("%s%d", OfflineNotificationsKeyPrefix, userID)
}

// AddOfflineNotification 保存一条离线通知（已序列化的JSON）
func AddOfflineNotification(userID uint, payload []byte) error {
	if client == nil {
		return errNotInitialized
	}

	key := offlineKey(userID)

	// LPUSH + LTRIM 只保留最新的通知
	pipe := client.TxPipeline()
	pipe.LPush(ctx, key, payload)
	pipe.LTrim(ctx, key, 0, MaxOfflineNotifications-1)
	pipe.Expire(ctx, key, OfflineNotificationsTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("添加离线通知失败: %w", err)
	}
	return nil
}

// PopOfflineNotifications 取出全部离线通知（按时间先后）并清空
func PopOfflineNotifications(userID uint) ([][]byte, error) {
	if client == nil {
		return nil, errNotInitialized
	}

	key := offlineKey(userID)

	pipe := client.TxPipeline()
	rangeCmd := pipe.LRange(ctx, key, 0, -1)
	pipe.Del(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("获取离线通知失败: %w", err)
	}

	results := rangeCmd.Val()
	notifications := make([][]byte, 0, len(results))
	// 列表头部是最新的通知，倒序还原为时间先后顺序
	for i := len(results) - 1; i >= 0; i-- {
		notifications = append(notifications, []byte(results[i]))
	}
	return notifications, nil
}

// RequeueOfflineNotifications 将未送达的通知（按时间先后）放回列表尾部
// 列表尾部是最旧的通知，放回后仍排在新通知之前
func RequeueOfflineNotifications(userID uint, notifications [][]byte) error {
	if client == nil {
		return errNotInitialized
	}
	if len(notifications) == 0 {
		return nil
	}

	// RPUSH 按参数顺序追加到尾部，最旧的一条需要最后追加
	values := make([]interface{}, 0, len(notifications))
	for i := len(notifications) - 1; i >= 0; i-- {
		values = append(values, notifications[i])
	}

	key := offlineKey(userID)
	pipe := client.TxPipeline()
	pipe.RPush(ctx, key, values...)
	pipe.LTrim(ctx, key, 0, MaxOfflineNotifications-1)
	pipe.Expire(ctx, key, OfflineNotificationsTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("回填离线通知失败: %w", err)
	}
	return nil
}

// GetOfflineNotificationCount 获取离线通知数量
func GetOfflineNotificationCount(userID uint) (int64, error) {
	if client == nil {
		return 0, errNotInitialized
	}

	count, err := client.LLen(ctx, offlineKey(userID)).Result()
	if err != nil {
		return 0, fmt.Errorf("获取离线通知数量失败: %w", err)
	}
	return count, nil
}
