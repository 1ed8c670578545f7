package websocket

import (
	"net/http"
	"strings"
	"time"

	"ramen-log/config"
	"ramen-log/pkg/jwt"
	"ramen-log/pkg/logger"
	"ramen-log/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // 允许跨域
	},
}

// Handler 通知WebSocket入口
type Handler struct {
	manager *Manager
	jwtSvc  *jwt.JWTService
	cfg     config.WebSocketConfig
}

// NewHandler 创建WebSocket处理器
func NewHandler(m *Manager, jwtSvc *jwt.JWTService, cfg config.WebSocketConfig) *Handler {
	return &Handler{manager: m, jwtSvc: jwtSvc, cfg: cfg}
}

// Serve Gin路由处理函数，token 通过 query 或 Sec-WebSocket-Protocol 传入
func (h *Handler) Serve(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		token = strings.TrimPrefix(c.GetHeader("Sec-WebSocket-Protocol"), "Bearer ")
	}
	if token == "" {
		response.Unauthorized(c, "缺少token")
		return
	}

	claims, err := h.jwtSvc.ValidateToken(token)
	if err != nil {
		response.Unauthorized(c, "token无效或已过期")
		return
	}
	userID, _ := claims.UserID()

	// 回显子协议，避免客户端提示 "Server sent no subprotocol"
	respHeader := http.Header{}
	if protocol := c.GetHeader("Sec-WebSocket-Protocol"); protocol != "" {
		respHeader.Set("Sec-WebSocket-Protocol", protocol)
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, respHeader)
	if err != nil {
		logger.Warn("WebSocket升级失败", zap.Uint("user_id", userID), zap.Error(err))
		return
	}

	client := &Client{
		UserID: userID,
		Conn:   conn,
		Send:   make(chan []byte, 256),
	}
	h.manager.AddClient(client)
	logger.Info("通知连接建立", zap.Uint("user_id", userID))

	go h.writeLoop(client)
	h.readLoop(client)

	h.manager.RemoveClient(client)
	_ = conn.Close()
	logger.Info("通知连接关闭", zap.Uint("user_id", userID))
}

// writeLoop 写协程 + 定时发送ping心跳
func (h *Handler) writeLoop(client *Client) {
	ticker := time.NewTicker(h.cfg.PingInterval)
	defer ticker.Stop()
	for {
		select {
		case msg, ok := <-client.Send:
			if !ok {
				_ = client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := client.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := client.Conn.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(5*time.Second)); err != nil {
				return
			}
		}
	}
}

// readLoop 读协程，仅用于心跳；超时未收到任何读事件则断开
func (h *Handler) readLoop(client *Client) {
	conn := client.Conn
	_ = conn.SetReadDeadline(time.Now().Add(h.cfg.ReadTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(h.cfg.ReadTimeout))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(h.cfg.ReadTimeout))
	}
}
