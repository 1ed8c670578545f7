package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ramen-log/config"

	"github.com/redis/go-redis/v9"
)

var (
	client *redis.Client
	ctx    = context.Background()
)

// errNotInitialized Redis未启用或未初始化
var errNotInitialized = errors.New("redis客户端未初始化")

// InitRedis 初始化Redis连接
func InitRedis(cfg config.RedisConfig) error {
	return initClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		// 连接池配置
		PoolSize:     10,              // 连接池大小
		MinIdleConns: 5,               // 最小空闲连接
		MaxRetries:   3,               // 最大重试次数
		DialTimeout:  5 * time.Second, // 连接超时
		ReadTimeout:  3 * time.Second, // 读超时
		WriteTimeout: 3 * time.Second, // 写超时
	})
}

// InitWithAddr 使用地址直接初始化（测试中配合 miniredis 使用）
func InitWithAddr(addr string) error {
	return initClient(&redis.Options{Addr: addr})
}

func initClient(opts *redis.Options) error {
	c := redis.NewClient(opts)
	if _, err := c.Ping(ctx).Result(); err != nil {
		_ = c.Close()
		return fmt.Errorf("redis连接失败: %w", err)
	}
	client = c
	return nil
}

// Enabled Redis是否可用
func Enabled() bool {
	return client != nil
}

// Close 关闭Redis连接
func Close() error {
	if client != nil {
		err := client.Close()
		client = nil
		return err
	}
	return nil
}

// HealthCheck 检查Redis健康状态
func HealthCheck() error {
	if client == nil {
		return errNotInitialized
	}

	_, err := client.Ping(ctx).Result()
	if err != nil {
		return fmt.Errorf("redis连接异常: %w", err)
	}

	return nil
}
