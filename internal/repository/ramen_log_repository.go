package repository

import (
	"ramen-log/internal/model"

	"gorm.io/gorm"
)

// RamenLogRepository 拉面记录数据仓储
type RamenLogRepository struct {
	db *gorm.DB
}

// NewRamenLogRepository 创建RamenLogRepository实例
func NewRamenLogRepository(db *gorm.DB) *RamenLogRepository {
	return &RamenLogRepository{db: db}
}

// Create 创建记录
func (r *RamenLogRepository) Create(log *model.RamenLog) error {
	return r.db.Create(log).Error
}

// GetByID 根据ID获取记录
func (r *RamenLogRepository) GetByID(id uint) (*model.RamenLog, error) {
	var log model.RamenLog
	if err := r.db.Preload("User").First(&log, id).Error; err != nil {
		return nil, err
	}
	return &log, nil
}

// ListByUser 用户的记录列表，按访问时间倒序，未填写访问时间的排在最后
func (r *RamenLogRepository) ListByUser(userID uint) ([]*model.RamenLog, error) {
	var logs []*model.RamenLog
	err := r.db.Preload("User").
		Where("user_id = ?", userID).
		Order("visited_at IS NULL").
		Order("visited_at DESC").
		Order("id DESC").
		Find(&logs).Error
	return logs, err
}

// Delete 删除记录
func (r *RamenLogRepository) Delete(log *model.RamenLog) error {
	return r.db.Delete(log).Error
}
