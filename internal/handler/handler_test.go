package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ramen-log/config"
	"ramen-log/internal/model"
	"ramen-log/internal/repository"
	"ramen-log/internal/service"
	"ramen-log/pkg/db"
	"ramen-log/pkg/jwt"
	"ramen-log/pkg/password"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testServer struct {
	t      *testing.T
	router *gin.Engine
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	password.Cost = bcrypt.MinCost

	orm, err := gorm.Open(sqlite.Open(":memory:"), db.GormConfig(false))
	require.NoError(t, err)
	sqlDB, err := orm.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, orm.AutoMigrate(&model.User{}, &model.FollowRelationship{}, &model.IkitaiStatus{}, &model.RamenLog{}))

	jwtSvc := jwt.NewJWTService(config.JWTConfig{Secret: "test", ExpireTime: time.Hour, Issuer: "ramen-log-test"})
	userRepo := repository.NewUserRepository(orm)
	relRepo := repository.NewRelationshipRepository(orm)

	userSvc := service.NewUserService(userRepo, jwtSvc)
	relSvc := service.NewRelationshipService(relRepo, userRepo, nil)
	ikitaiSvc := service.NewIkitaiService(repository.NewIkitaiRepository(orm), relRepo, nil, time.UTC)
	logSvc := service.NewRamenLogService(repository.NewRamenLogRepository(orm), userRepo, relSvc)

	router := gin.New()
	RegisterRoutes(router.Group("/api/v1"), jwtSvc.AuthMiddleware(), Handlers{
		User:         NewUserHandler(userSvc, logSvc),
		Relationship: NewRelationshipHandler(relSvc),
		Ikitai:       NewIkitaiHandler(ikitaiSvc),
		RamenLog:     NewRamenLogHandler(logSvc),
	})
	return &testServer{t: t, router: router}
}

func (s *testServer) do(method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, "/api/v1"+path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

type registered struct {
	ID    uint
	Token string
}

func (s *testServer) register(name string) registered {
	s.t.Helper()
	w, env := s.do(http.MethodPost, "/users/register", "", gin.H{
		"username": name,
		"email":    name + "@example.com",
		"password": "secret1",
	})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())

	var data struct {
		User struct {
			ID uint `json:"id"`
		} `json:"user"`
		AccessToken string `json:"access_token"`
	}
	require.NoError(s.t, json.Unmarshal(env.Data, &data))
	return registered{ID: data.User.ID, Token: data.AccessToken}
}

func TestUserEndpoints(t *testing.T) {
	s := newTestServer(t)
	taro := s.register("taro")

	w, env := s.do(http.MethodPost, "/users/register", "", gin.H{
		"username": "taro", "email": "other@example.com", "password": "secret1",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, http.StatusConflict, env.Code)

	w, _ = s.do(http.MethodPost, "/users/login", "", gin.H{"usernameOrEmail": "taro", "password": "secret1"})
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = s.do(http.MethodPost, "/users/login", "", gin.H{"usernameOrEmail": "taro", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, env = s.do(http.MethodGet, "/users/profile", taro.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, fmt.Sprintf(`{"id":%d,"username":"taro","email":"taro@example.com"}`, taro.ID), string(env.Data))

	w, _ = s.do(http.MethodGet, "/users/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, env = s.do(http.MethodPost, "/users/token/refresh", taro.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var refreshed struct {
		User struct {
			ID uint `json:"id"`
		} `json:"user"`
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &refreshed))
	assert.Equal(t, taro.ID, refreshed.User.ID)
	assert.NotEmpty(t, refreshed.AccessToken)
	w, _ = s.do(http.MethodGet, "/users/profile", refreshed.AccessToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = s.do(http.MethodPost, "/users/token/refresh", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = s.do(http.MethodGet, "/users/999", taro.Token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w, _ = s.do(http.MethodGet, "/users/abc", taro.Token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFollowWorkflowEndpoints(t *testing.T) {
	s := newTestServer(t)
	a := s.register("alice")
	b := s.register("bob")

	w, _ := s.do(http.MethodPost, "/relationships/follow", a.Token, gin.H{"user_id": a.ID})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w, _ = s.do(http.MethodPost, "/relationships/follow", a.Token, gin.H{"user_id": 999})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, env := s.do(http.MethodPost, "/relationships/follow", a.Token, gin.H{"user_id": b.ID})
	require.Equal(t, http.StatusCreated, w.Code)
	var rel struct {
		Status   string `json:"status"`
		Follower struct {
			ID uint `json:"id"`
		} `json:"follower"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &rel))
	assert.Equal(t, "PENDING", rel.Status)
	assert.Equal(t, a.ID, rel.Follower.ID)

	w, _ = s.do(http.MethodPost, "/relationships/follow", a.Token, gin.H{"user_id": b.ID})
	assert.Equal(t, http.StatusConflict, w.Code)

	w, env = s.do(http.MethodGet, "/relationships/pending-requests/count", b.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"count":1}`, string(env.Data))

	w, _ = s.do(http.MethodPatch, fmt.Sprintf("/relationships/approve/%d", a.ID), b.Token, gin.H{"action": "maybe"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = s.do(http.MethodPatch, fmt.Sprintf("/relationships/approve/%d", a.ID), b.Token, gin.H{"action": "approve"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "follow request approved", env.Message)

	w, _ = s.do(http.MethodPatch, fmt.Sprintf("/relationships/approve/%d", a.ID), b.Token, gin.H{"action": "deny"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	var list []json.RawMessage
	_, env = s.do(http.MethodGet, "/relationships/following", a.Token, nil)
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Len(t, list, 1)
	_, env = s.do(http.MethodGet, "/relationships/followers", b.Token, nil)
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Len(t, list, 1)
	_, env = s.do(http.MethodGet, "/relationships/pending-requests", b.Token, nil)
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Empty(t, list)

	w, _ = s.do(http.MethodDelete, fmt.Sprintf("/relationships/unfollow/%d", b.ID), a.Token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w, _ = s.do(http.MethodDelete, fmt.Sprintf("/relationships/unfollow/%d", b.ID), a.Token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestIkitaiEndpoints(t *testing.T) {
	s := newTestServer(t)
	a := s.register("alice")
	b := s.register("bob")

	w, _ := s.do(http.MethodGet, "/relationships/ikitai", a.Token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = s.do(http.MethodPost, "/relationships/ikitai", a.Token, gin.H{"latitude": 91.0, "longitude": 0.0, "duration_type": "now"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w, _ = s.do(http.MethodPost, "/relationships/ikitai", a.Token, gin.H{"longitude": 0.0, "duration_type": "now"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	body := gin.H{"latitude": 35.0, "longitude": 139.0, "duration_type": "now"}
	w, _ = s.do(http.MethodPost, "/relationships/ikitai", a.Token, body)
	assert.Equal(t, http.StatusCreated, w.Code)
	w, _ = s.do(http.MethodPost, "/relationships/ikitai", a.Token, body)
	assert.Equal(t, http.StatusOK, w.Code)

	w, env := s.do(http.MethodGet, "/relationships/ikitai", a.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var info struct {
		UserID    uint    `json:"user_id"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &info))
	assert.Equal(t, a.ID, info.UserID)
	assert.Equal(t, 35.0, info.Latitude)
	assert.Equal(t, 139.0, info.Longitude)

	// b 关注 a 后可以看到 a 的状态
	s.do(http.MethodPost, "/relationships/follow", b.Token, gin.H{"user_id": a.ID})
	s.do(http.MethodPatch, fmt.Sprintf("/relationships/approve/%d", b.ID), a.Token, gin.H{"action": "approve"})
	w, env = s.do(http.MethodGet, "/relationships/ikitai/friends", b.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var friends []json.RawMessage
	require.NoError(t, json.Unmarshal(env.Data, &friends))
	assert.Len(t, friends, 1)

	w, _ = s.do(http.MethodDelete, "/relationships/ikitai", a.Token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w, _ = s.do(http.MethodDelete, "/relationships/ikitai", a.Token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w, _ = s.do(http.MethodGet, "/relationships/ikitai", a.Token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRamenLogEndpoints(t *testing.T) {
	s := newTestServer(t)
	owner := s.register("owner")
	fan := s.register("fan")

	w, _ := s.do(http.MethodPost, "/ramen/logs", owner.Token, gin.H{"shop_name": "", "rating": 3})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env := s.do(http.MethodPost, "/ramen/logs", owner.Token, gin.H{
		"shop_name":  "Ichiran",
		"rating":     4.5,
		"visited_at": "2026-10-10T12:00:00Z",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		ID     uint    `json:"id"`
		Rating float64 `json:"rating"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, 4.5, created.Rating)

	w, _ = s.do(http.MethodGet, "/ramen/logs", owner.Token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	logsPath := fmt.Sprintf("/users/%d/ramen-logs", owner.ID)
	w, _ = s.do(http.MethodGet, logsPath, fan.Token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w, _ = s.do(http.MethodGet, fmt.Sprintf("/ramen/logs/%d", created.ID), fan.Token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	s.do(http.MethodPost, "/relationships/follow", fan.Token, gin.H{"user_id": owner.ID})
	s.do(http.MethodPatch, fmt.Sprintf("/relationships/approve/%d", fan.ID), owner.Token, gin.H{"action": "approve"})
	w, env = s.do(http.MethodGet, logsPath, fan.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var logs []json.RawMessage
	require.NoError(t, json.Unmarshal(env.Data, &logs))
	assert.Len(t, logs, 1)

	logPath := fmt.Sprintf("/ramen/logs/%d", created.ID)
	w, _ = s.do(http.MethodDelete, logPath, fan.Token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w, _ = s.do(http.MethodDelete, logPath, owner.Token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w, _ = s.do(http.MethodGet, logPath, owner.Token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
