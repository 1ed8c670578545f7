package service

import (
	"errors"
	"fmt"
	"time"

	"ramen-log/internal/model"
	"ramen-log/internal/repository"
	"ramen-log/pkg/logger"
	"ramen-log/pkg/metrics"
	"ramen-log/pkg/redis"
	"ramen-log/pkg/response"

	"go.uber.org/zap"
)

// UpsertResult SetStatus 的结果：新建或覆盖
type UpsertResult int

const (
	UpsertCreated UpsertResult = iota + 1
	UpsertUpdated
)

func (r UpsertResult) String() string {
	switch r {
	case UpsertCreated:
		return "created"
	case UpsertUpdated:
		return "updated"
	}
	return "unknown"
}

// 午餐/晚餐截止时刻（业务时区）
const (
	lunchDeadlineHour  = 14
	dinnerDeadlineHour = 22
)

// ComputeExpiry 根据持续类型计算失效时间
// now: 1小时后；lunch/dinner: 当天14:00/22:00，已过则顺延到次日同一时刻
func ComputeExpiry(now time.Time, loc *time.Location, d model.DurationType) (time.Time, error) {
	if !d.Valid() {
		return time.Time{}, invalid("duration_type must be one of now, lunch, dinner")
	}
	switch d {
	case model.DurationLunch:
		return nextDeadline(now, loc, lunchDeadlineHour), nil
	case model.DurationDinner:
		return nextDeadline(now, loc, dinnerDeadlineHour), nil
	default:
		return now.Add(time.Hour), nil
	}
}

func nextDeadline(now time.Time, loc *time.Location, hour int) time.Time {
	local := now.In(loc)
	y, m, d := local.Date()
	deadline := time.Date(y, m, d, hour, 0, 0, 0, loc)
	if now.After(deadline) {
		deadline = time.Date(y, m, d+1, hour, 0, 0, 0, loc)
	}
	return deadline
}

type ikitaiInput struct {
	Latitude  float64            `validate:"gte=-90,lte=90"`
	Longitude float64            `validate:"gte=-180,lte=180"`
	Duration  model.DurationType `validate:"required,oneof=now lunch dinner"`
}

// IkitaiService イキタイ状态服务
type IkitaiService struct {
	repo     *repository.IkitaiRepository
	relRepo  *repository.RelationshipRepository
	notifier Notifier
	loc      *time.Location
	now      func() time.Time
}

// NewIkitaiService 创建IkitaiService实例
func NewIkitaiService(repo *repository.IkitaiRepository, relRepo *repository.RelationshipRepository, notifier Notifier, loc *time.Location) *IkitaiService {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	if loc == nil {
		loc = time.Local
	}
	return &IkitaiService{
		repo:     repo,
		relRepo:  relRepo,
		notifier: notifier,
		loc:      loc,
		now:      time.Now,
	}
}

// GetStatus 获取用户当前状态，已过期视为不存在（记录保留）
func (s *IkitaiService) GetStatus(userID uint) (*model.IkitaiStatus, error) {
	now := s.now()

	if redis.Enabled() {
		cached, err := redis.GetIkitai(userID)
		switch {
		case err == nil && !now.After(cached.ExpiresAt):
			return fromCache(cached), nil
		case err != nil && !errors.Is(err, redis.ErrCacheMiss):
			logger.Warn("读取イキタイ缓存失败", zap.Uint("user_id", userID), zap.Error(err))
		}
	}

	status, err := s.repo.GetByUserID(userID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, notFound("ikitai status not set")
		}
		return nil, fmt.Errorf("find ikitai status: %w", err)
	}
	if status.Expired(now) {
		return nil, notFound("ikitai status expired")
	}
	s.cache(status, now)
	return status, nil
}

// SetStatus 开启或覆盖状态
func (s *IkitaiService) SetStatus(userID uint, latitude, longitude float64, duration model.DurationType) (*model.IkitaiStatus, UpsertResult, error) {
	if err := validateStruct(ikitaiInput{Latitude: latitude, Longitude: longitude, Duration: duration}); err != nil {
		return nil, 0, err
	}
	now := s.now()
	expiresAt, err := ComputeExpiry(now, s.loc, duration)
	if err != nil {
		return nil, 0, err
	}

	status, result, err := s.upsert(userID, latitude, longitude, expiresAt)
	if err != nil {
		return nil, 0, err
	}

	metrics.IkitaiUpdates.WithLabelValues(result.String()).Inc()
	s.cache(status, now)
	s.notifyFollowers(status)
	logger.Info("イキタイ状态已开启",
		zap.Uint("user_id", userID),
		zap.String("duration", string(duration)),
		zap.Time("expires_at", expiresAt),
		zap.Stringer("result", result),
	)
	return status, result, nil
}

func (s *IkitaiService) upsert(userID uint, latitude, longitude float64, expiresAt time.Time) (*model.IkitaiStatus, UpsertResult, error) {
	existing, err := s.repo.GetByUserID(userID)
	if err != nil && !repository.IsNotFound(err) {
		return nil, 0, fmt.Errorf("find ikitai status: %w", err)
	}

	if existing == nil {
		status := &model.IkitaiStatus{
			UserID:    userID,
			Latitude:  latitude,
			Longitude: longitude,
			ExpiresAt: expiresAt,
		}
		err = s.repo.Create(status)
		if err == nil {
			return status, UpsertCreated, nil
		}
		if !errors.Is(err, repository.ErrDuplicateKey) {
			return nil, 0, fmt.Errorf("create ikitai status: %w", err)
		}
		// 并发插入，改为覆盖
		if existing, err = s.repo.GetByUserID(userID); err != nil {
			return nil, 0, fmt.Errorf("find ikitai status: %w", err)
		}
	}

	existing.Latitude = latitude
	existing.Longitude = longitude
	existing.ExpiresAt = expiresAt
	if err := s.repo.UpdateLocation(existing); err != nil {
		return nil, 0, fmt.Errorf("update ikitai status: %w", err)
	}
	return existing, UpsertUpdated, nil
}

// ClearStatus 关闭状态，不存在时静默成功
// 先删缓存再删库：缓存删除失败时不动数据库，避免读取到已关闭的状态
func (s *IkitaiService) ClearStatus(userID uint) error {
	if err := s.evict(userID); err != nil {
		return err
	}
	affected, err := s.repo.DeleteByUserID(userID)
	if err != nil {
		return fmt.Errorf("delete ikitai status: %w", err)
	}
	// 删库期间并发读取可能回填缓存
	if err := s.evict(userID); err != nil {
		logger.Warn("删除イキタイ缓存失败", zap.Uint("user_id", userID), zap.Error(err))
	}
	if affected > 0 {
		metrics.IkitaiUpdates.WithLabelValues("cleared").Inc()
		logger.Info("イキタイ状态已关闭", zap.Uint("user_id", userID))
	}
	return nil
}

func (s *IkitaiService) evict(userID uint) error {
	if !redis.Enabled() {
		return nil
	}
	if err := redis.DeleteIkitai(userID); err != nil {
		return fmt.Errorf("evict ikitai cache: %w", err)
	}
	return nil
}

// ListFriendsStatuses 已关注用户中处于イキタイ状态的列表
func (s *IkitaiService) ListFriendsStatuses(userID uint) ([]*model.IkitaiStatus, error) {
	ids, err := s.relRepo.FollowedIDs(userID, model.StatusApproved)
	if err != nil {
		return nil, fmt.Errorf("list followed users: %w", err)
	}
	return s.repo.ListActiveByUserIDs(ids, s.now())
}

func (s *IkitaiService) notifyFollowers(status *model.IkitaiStatus) {
	followerIDs, err := s.relRepo.FollowerIDs(status.UserID, model.StatusApproved)
	if err != nil {
		logger.Warn("查询关注者失败", zap.Uint("user_id", status.UserID), zap.Error(err))
		return
	}
	info := response.FilterIkitai(status)
	for _, id := range followerIDs {
		s.notifier.Notify(id, EventIkitaiOn, info)
	}
}

func (s *IkitaiService) cache(status *model.IkitaiStatus, now time.Time) {
	if !redis.Enabled() {
		return
	}
	err := redis.SetIkitai(&redis.CachedIkitai{
		UserID:    status.UserID,
		Latitude:  status.Latitude,
		Longitude: status.Longitude,
		ExpiresAt: status.ExpiresAt,
		CreatedAt: status.CreatedAt,
	}, now)
	if err != nil {
		logger.Warn("写入イキタイ缓存失败", zap.Uint("user_id", status.UserID), zap.Error(err))
	}
}

func fromCache(c *redis.CachedIkitai) *model.IkitaiStatus {
	return &model.IkitaiStatus{
		UserID:    c.UserID,
		Latitude:  c.Latitude,
		Longitude: c.Longitude,
		ExpiresAt: c.ExpiresAt,
		CreatedAt: c.CreatedAt,
	}
}
