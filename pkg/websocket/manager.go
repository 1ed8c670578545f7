package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"ramen-log/pkg/logger"
	"ramen-log/pkg/redis"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Event 推送给客户端的通知
type Event struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp int64       `json:"timestamp"`
}

// Client 代表一个WebSocket连接的用户
type Client struct {
	UserID uint
	Conn   *websocket.Conn
	Send   chan []byte
}

// Manager 管理所有在线用户的WebSocket连接
// 用户不在线时通知写入Redis离线列表，下次连接时推送
type Manager struct {
	clients map[uint]*Client
	lock    sync.RWMutex
}

// NewManager 创建连接管理器
func NewManager() *Manager {
	return &Manager{clients: make(map[uint]*Client)}
}

var manager = NewManager()

// GetManager 获取全局WebSocket管理器
func GetManager() *Manager {
	return manager
}

// AddClient 添加新连接，同一用户的旧连接会被关闭
func (m *Manager) AddClient(client *Client) {
	m.lock.Lock()
	if old, ok := m.clients[client.UserID]; ok {
		close(old.Send)
	}
	m.clients[client.UserID] = client
	m.lock.Unlock()

	go m.pushOfflineNotifications(client)
}

// RemoveClient 移除连接（仅当仍是当前连接时）
func (m *Manager) RemoveClient(client *Client) {
	m.lock.Lock()
	defer m.lock.Unlock()
	if c, ok := m.clients[client.UserID]; ok && c == client {
		close(c.Send)
		delete(m.clients, client.UserID)
	}
}

// IsOnline 判断用户是否在线
func (m *Manager) IsOnline(userID uint) bool {
	m.lock.RLock()
	defer m.lock.RUnlock()
	_, ok := m.clients[userID]
	return ok
}

// Notify 构造事件并推送给指定用户
func (m *Manager) Notify(userID uint, eventType string, data interface{}) {
	payload, err := json.Marshal(Event{
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now().Unix(),
	})
	if err != nil {
		logger.Warn("序列化通知失败", zap.String("type", eventType), zap.Error(err))
		return
	}
	m.SendToUser(userID, payload)
}

// SendToUser 推送消息给指定用户
// 若用户不在线则存储到Redis离线通知
func (m *Manager) SendToUser(userID uint, msg []byte) {
	m.lock.RLock()
	defer m.lock.RUnlock()

	if client, ok := m.clients[userID]; ok {
		select {
		case client.Send <- msg:
			return
		default:
			// 发送缓冲已满，转存为离线通知
		}
	}
	m.storeOffline(userID, msg)
}

func (m *Manager) storeOffline(userID uint, msg []byte) {
	if !redis.Enabled() {
		return
	}
	if err := redis.AddOfflineNotification(userID, msg); err != nil {
		logger.Warn("存储离线通知失败", zap.Uint("user_id", userID), zap.Error(err))
	}
}

// pushOfflineNotifications 推送离线通知给刚连接的用户
func (m *Manager) pushOfflineNotifications(client *Client) {
	if !redis.Enabled() {
		return
	}
	notifications, err := redis.PopOfflineNotifications(client.UserID)
	if err != nil {
		logger.Warn("获取离线通知失败", zap.Uint("user_id", client.UserID), zap.Error(err))
		return
	}

	m.lock.RLock()
	defer m.lock.RUnlock()
	if m.clients[client.UserID] != client {
		// 连接已被替换，全部放回由新连接领取
		m.requeue(client.UserID, notifications)
		return
	}
	for i, n := range notifications {
		select {
		case client.Send <- n:
		default:
			// 缓冲已满，剩余通知按原顺序放回
			m.requeue(client.UserID, notifications[i:])
			return
		}
	}
}

func (m *Manager) requeue(userID uint, notifications [][]byte) {
	if err := redis.RequeueOfflineNotifications(userID, notifications); err != nil {
		logger.Warn("回填离线通知失败",
			zap.Uint("user_id", userID),
			zap.Int("count", len(notifications)),
			zap.Error(err),
		)
	}
}
