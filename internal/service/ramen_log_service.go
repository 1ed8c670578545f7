package service

import (
	"fmt"
	"math"
	"strings"
	"time"

	"ramen-log/internal/model"
	"ramen-log/internal/repository"
	"ramen-log/pkg/logger"

	"go.uber.org/zap"
)

// RamenLogInput 新建拉面记录的输入
type RamenLogInput struct {
	ShopName       string     `json:"shop_name" validate:"required,max=100"`
	OrderedItem    string     `json:"ordered_item" validate:"max=100"`
	NoodleHardness string     `json:"noodle_hardness" validate:"max=30"`
	Toppings       string     `json:"toppings" validate:"max=200"`
	Rating         *float64   `json:"rating" validate:"omitempty,gte=0,lte=5"`
	VisitedAt      *time.Time `json:"visited_at"`
}

// RamenLogService 拉面记录服务
type RamenLogService struct {
	repo     *repository.RamenLogRepository
	userRepo *repository.UserRepository
	relSvc   *RelationshipService
}

func NewRamenLogService(repo *repository.RamenLogRepository, userRepo *repository.UserRepository, relSvc *RelationshipService) *RamenLogService {
	return &RamenLogService{repo: repo, userRepo: userRepo, relSvc: relSvc}
}

// Create 新建记录，评分保留一位小数
func (s *RamenLogService) Create(userID uint, in RamenLogInput) (*model.RamenLog, error) {
	in.ShopName = strings.TrimSpace(in.ShopName)
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if in.Rating != nil {
		r := math.Round(*in.Rating*10) / 10
		in.Rating = &r
	}

	log := &model.RamenLog{
		UserID:         userID,
		ShopName:       in.ShopName,
		OrderedItem:    in.OrderedItem,
		NoodleHardness: in.NoodleHardness,
		Toppings:       in.Toppings,
		Rating:         in.Rating,
		VisitedAt:      in.VisitedAt,
	}
	if err := s.repo.Create(log); err != nil {
		return nil, fmt.Errorf("create ramen log: %w", err)
	}
	logger.Info("新增拉面记录", zap.Uint("user_id", userID), zap.Uint("log_id", log.ID))
	return s.repo.GetByID(log.ID)
}

// Get 获取单条记录，仅本人或已批准的关注者可见
func (s *RamenLogService) Get(viewerID, id uint) (*model.RamenLog, error) {
	log, err := s.repo.GetByID(id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, notFound("ramen log %d not found", id)
		}
		return nil, fmt.Errorf("find ramen log: %w", err)
	}
	if err := s.checkVisible(viewerID, log.UserID); err != nil {
		return nil, err
	}
	return log, nil
}

// ListMine 当前用户的记录
func (s *RamenLogService) ListMine(userID uint) ([]*model.RamenLog, error) {
	return s.repo.ListByUser(userID)
}

// ListForViewer 查看他人的记录
func (s *RamenLogService) ListForViewer(viewerID, ownerID uint) ([]*model.RamenLog, error) {
	if _, err := s.userRepo.GetByID(ownerID); err != nil {
		if repository.IsNotFound(err) {
			return nil, notFound("user %d not found", ownerID)
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if err := s.checkVisible(viewerID, ownerID); err != nil {
		return nil, err
	}
	return s.repo.ListByUser(ownerID)
}

// Delete 删除记录，仅本人可删
func (s *RamenLogService) Delete(userID, id uint) error {
	log, err := s.repo.GetByID(id)
	if err != nil {
		if repository.IsNotFound(err) {
			return notFound("ramen log %d not found", id)
		}
		return fmt.Errorf("find ramen log: %w", err)
	}
	if log.UserID != userID {
		return newError(ErrForbidden, "cannot delete another user's ramen log")
	}
	if err := s.repo.Delete(log); err != nil {
		return fmt.Errorf("delete ramen log: %w", err)
	}
	return nil
}

func (s *RamenLogService) checkVisible(viewerID, ownerID uint) error {
	if viewerID == ownerID {
		return nil
	}
	ok, err := s.relSvc.IsApprovedFollower(viewerID, ownerID)
	if err != nil {
		return err
	}
	if !ok {
		return newError(ErrForbidden, "follow this user to see their ramen logs")
	}
	return nil
}
