package service

// Notifier 实时通知推送，由 websocket.Manager 实现
type Notifier interface {
	Notify(userID uint, eventType string, data interface{})
}

type nopNotifier struct{}

func (nopNotifier) Notify(uint, string, interface{}) {}

// 通知事件类型
const (
	EventFollowRequest  = "follow_request"
	EventFollowResolved = "follow_resolved"
	EventIkitaiOn       = "ikitai_on"
)
