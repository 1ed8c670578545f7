package repository

import (
	"time"

	"ramen-log/internal/model"

	"gorm.io/gorm"
)

// IkitaiRepository イキタイ状态数据仓储
type IkitaiRepository struct {
	db *gorm.DB
}

// NewIkitaiRepository 创建IkitaiRepository实例
func NewIkitaiRepository(db *gorm.DB) *IkitaiRepository {
	return &IkitaiRepository{db: db}
}

// GetByUserID 获取用户的状态（包含已过期的记录）
func (r *IkitaiRepository) GetByUserID(userID uint) (*model.IkitaiStatus, error) {
	var s model.IkitaiStatus
	if err := r.db.Where("user_id = ?", userID).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// Create 插入状态，同一用户已存在时返回 ErrDuplicateKey
func (r *IkitaiRepository) Create(s *model.IkitaiStatus) error {
	return translateError(r.db.Create(s).Error)
}

// UpdateLocation 覆盖位置与过期时间，CreatedAt 保持不变
func (r *IkitaiRepository) UpdateLocation(s *model.IkitaiStatus) error {
	return r.db.Model(s).Select("latitude", "longitude", "expires_at").Updates(s).Error
}

// DeleteByUserID 删除用户状态，返回受影响行数
func (r *IkitaiRepository) DeleteByUserID(userID uint) (int64, error) {
	result := r.db.Where("user_id = ?", userID).Delete(&model.IkitaiStatus{})
	return result.RowsAffected, result.Error
}

// ListActiveByUserIDs 批量获取未过期的状态（按过期时间升序）
func (r *IkitaiRepository) ListActiveByUserIDs(userIDs []uint, now time.Time) ([]*model.IkitaiStatus, error) {
	var statuses []*model.IkitaiStatus
	if len(userIDs) == 0 {
		return statuses, nil
	}
	err := r.db.Preload("User").
		Where("user_id IN ? AND expires_at >= ?", userIDs, now).
		Order("expires_at ASC").
		Find(&statuses).Error
	return statuses, err
}
