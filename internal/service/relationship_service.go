package service

import (
	"errors"
	"fmt"
	"strings"

	"ramen-log/internal/model"
	"ramen-log/internal/repository"
	"ramen-log/pkg/logger"
	"ramen-log/pkg/metrics"
	"ramen-log/pkg/redis"
	"ramen-log/pkg/response"

	"go.uber.org/zap"
)

// FollowAction 审批动作
type FollowAction string

const (
	ActionApprove FollowAction = "approve"
	ActionDeny    FollowAction = "deny"
)

// ParseFollowAction 解析审批动作（不区分大小写）
func ParseFollowAction(s string) (FollowAction, error) {
	switch a := FollowAction(strings.ToLower(strings.TrimSpace(s))); a {
	case ActionApprove, ActionDeny:
		return a, nil
	}
	return "", invalid("action must be %q or %q", ActionApprove, ActionDeny)
}

// RelationshipService 关注关系服务
type RelationshipService struct {
	relRepo  *repository.RelationshipRepository
	userRepo *repository.UserRepository
	notifier Notifier
}

// NewRelationshipService 创建RelationshipService实例，notifier 为空时不推送
func NewRelationshipService(relRepo *repository.RelationshipRepository, userRepo *repository.UserRepository, notifier Notifier) *RelationshipService {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &RelationshipService{relRepo: relRepo, userRepo: userRepo, notifier: notifier}
}

// ensureUser 确认用户存在
func (s *RelationshipService) ensureUser(id uint) (*model.User, error) {
	u, err := s.userRepo.GetByID(id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, notFound("user %d not found", id)
		}
		return nil, fmt.Errorf("find user %d: %w", id, err)
	}
	return u, nil
}

// existingConflict 根据已存在关系的状态给出冲突信息
func existingConflict(rel *model.FollowRelationship) error {
	switch rel.Status {
	case model.StatusApproved:
		return conflict("already following this user")
	case model.StatusDenied:
		return conflict("follow request was denied")
	default:
		return conflict("follow request already pending")
	}
}

// SendFollowRequest 发起关注请求，创建 PENDING 关系
func (s *RelationshipService) SendFollowRequest(requesterID, targetID uint) (*model.FollowRelationship, error) {
	if requesterID == targetID {
		return nil, newError(ErrSelfFollow, "cannot follow yourself")
	}
	target, err := s.ensureUser(targetID)
	if err != nil {
		return nil, err
	}

	existing, err := s.relRepo.GetByPair(requesterID, targetID)
	if err == nil {
		return nil, existingConflict(existing)
	}
	if !repository.IsNotFound(err) {
		return nil, fmt.Errorf("find relationship: %w", err)
	}

	rel := &model.FollowRelationship{
		FollowerID: requesterID,
		FollowedID: targetID,
		Status:     model.StatusPending,
	}
	if err := s.relRepo.Create(rel); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			// 并发请求已抢先插入
			if existing, findErr := s.relRepo.GetByPair(requesterID, targetID); findErr == nil {
				return nil, existingConflict(existing)
			}
			return nil, conflict("follow request already pending")
		}
		return nil, fmt.Errorf("create relationship: %w", err)
	}
	rel.Followed = *target
	if requester, err := s.userRepo.GetByID(requesterID); err == nil {
		rel.Follower = *requester
	}

	metrics.FollowTransitions.WithLabelValues("requested").Inc()
	s.resetPendingCount(targetID)
	s.notifier.Notify(targetID, EventFollowRequest, response.FilterRelationship(rel))
	logger.Info("关注请求已发送",
		zap.Uint("follower_id", requesterID),
		zap.Uint("followed_id", targetID),
	)
	return rel, nil
}

// ResolveFollowRequest 被关注者审批请求，返回更新后的关系与结果描述
func (s *RelationshipService) ResolveFollowRequest(approverID, requesterID uint, action FollowAction) (*model.FollowRelationship, string, error) {
	var to model.RelationshipStatus
	var outcome string
	switch action {
	case ActionApprove:
		to, outcome = model.StatusApproved, "follow request approved"
	case ActionDeny:
		to, outcome = model.StatusDenied, "follow request denied"
	default:
		return nil, "", invalid("action must be %q or %q", ActionApprove, ActionDeny)
	}

	rel, err := s.relRepo.GetByPairAndStatus(requesterID, approverID, model.StatusPending)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, "", notFound("no pending follow request from user %d", requesterID)
		}
		return nil, "", fmt.Errorf("find pending request: %w", err)
	}

	affected, err := s.relRepo.UpdateStatus(rel, model.StatusPending, to)
	if err != nil {
		return nil, "", fmt.Errorf("update relationship: %w", err)
	}
	if affected == 0 {
		// 已被其他请求处理
		return nil, "", notFound("no pending follow request from user %d", requesterID)
	}
	rel.Status = to

	metrics.FollowTransitions.WithLabelValues(strings.ToLower(string(to))).Inc()
	s.resetPendingCount(approverID)
	s.notifier.Notify(requesterID, EventFollowResolved, response.FilterRelationship(rel))
	logger.Info("关注请求已处理",
		zap.Uint("follower_id", requesterID),
		zap.Uint("followed_id", approverID),
		zap.String("status", string(to)),
	)
	return rel, outcome, nil
}

// Unfollow 取消关注，仅 APPROVED 关系可取消
func (s *RelationshipService) Unfollow(followerID, targetID uint) error {
	if _, err := s.ensureUser(targetID); err != nil {
		return err
	}
	rel, err := s.relRepo.GetByPairAndStatus(followerID, targetID, model.StatusApproved)
	if err != nil {
		if repository.IsNotFound(err) {
			return notFound("not following user %d", targetID)
		}
		return fmt.Errorf("find relationship: %w", err)
	}
	affected, err := s.relRepo.Delete(rel)
	if err != nil {
		return fmt.Errorf("delete relationship: %w", err)
	}
	if affected == 0 {
		return notFound("not following user %d", targetID)
	}

	metrics.FollowTransitions.WithLabelValues("unfollowed").Inc()
	logger.Info("已取消关注", zap.Uint("follower_id", followerID), zap.Uint("followed_id", targetID))
	return nil
}

// ListFollowing 用户已关注（APPROVED）的关系
func (s *RelationshipService) ListFollowing(userID uint) ([]*model.FollowRelationship, error) {
	return s.relRepo.ListByFollower(userID, model.StatusApproved)
}

// ListFollowers 关注该用户（APPROVED）的关系
func (s *RelationshipService) ListFollowers(userID uint) ([]*model.FollowRelationship, error) {
	return s.relRepo.ListByFollowed(userID, model.StatusApproved)
}

// ListPendingRequests 待该用户审批的请求
func (s *RelationshipService) ListPendingRequests(userID uint) ([]*model.FollowRelationship, error) {
	return s.relRepo.ListByFollowed(userID, model.StatusPending)
}

// CountPendingRequests 待审批请求数，优先读取Redis计数
func (s *RelationshipService) CountPendingRequests(userID uint) (int64, error) {
	if redis.Enabled() {
		count, err := redis.GetPendingCount(userID)
		if err == nil && count >= 0 {
			return count, nil
		}
		if err != nil {
			logger.Warn("读取待审批计数缓存失败", zap.Uint("user_id", userID), zap.Error(err))
		}
	}

	count, err := s.relRepo.CountByFollowed(userID, model.StatusPending)
	if err != nil {
		return 0, fmt.Errorf("count pending requests: %w", err)
	}
	if redis.Enabled() {
		if err := redis.SetPendingCount(userID, count); err != nil {
			logger.Warn("回填待审批计数失败", zap.Uint("user_id", userID), zap.Error(err))
		}
	}
	return count, nil
}

// IsApprovedFollower followerID 是否已被 followedID 批准关注
func (s *RelationshipService) IsApprovedFollower(followerID, followedID uint) (bool, error) {
	rel, err := s.relRepo.GetByPair(followerID, followedID)
	if err != nil {
		if repository.IsNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("find relationship: %w", err)
	}
	return rel.Status == model.StatusApproved, nil
}

func (s *RelationshipService) resetPendingCount(userID uint) {
	if !redis.Enabled() {
		return
	}
	if err := redis.ResetPendingCount(userID); err != nil {
		logger.Warn("重置待审批计数失败", zap.Uint("user_id", userID), zap.Error(err))
	}
}
