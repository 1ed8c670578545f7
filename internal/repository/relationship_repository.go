package repository

import (
	"ramen-log/internal/model"

	"gorm.io/gorm"
)

// RelationshipRepository 关注关系数据仓储
type RelationshipRepository struct {
	db *gorm.DB
}

// NewRelationshipRepository 创建RelationshipRepository实例
func NewRelationshipRepository(db *gorm.DB) *RelationshipRepository {
	return &RelationshipRepository{db: db}
}

// Create 插入关系，(follower, followed) 已存在时返回 ErrDuplicateKey
func (r *RelationshipRepository) Create(rel *model.FollowRelationship) error {
	return translateError(r.db.Create(rel).Error)
}

// GetByPair 按 (follower, followed) 查询，不区分状态
func (r *RelationshipRepository) GetByPair(followerID, followedID uint) (*model.FollowRelationship, error) {
	var rel model.FollowRelationship
	err := r.db.Where("follower_id = ? AND followed_id = ?", followerID, followedID).First(&rel).Error
	if err != nil {
		return nil, err
	}
	return &rel, nil
}

// GetByPairAndStatus 按 (follower, followed, status) 查询，并加载双方用户信息
func (r *RelationshipRepository) GetByPairAndStatus(followerID, followedID uint, status model.RelationshipStatus) (*model.FollowRelationship, error) {
	var rel model.FollowRelationship
	err := r.db.Preload("Follower").Preload("Followed").
		Where("follower_id = ? AND followed_id = ? AND status = ?", followerID, followedID, status).
		First(&rel).Error
	if err != nil {
		return nil, err
	}
	return &rel, nil
}

// UpdateStatus 仅在当前状态为 from 时更新为 to，返回受影响行数
func (r *RelationshipRepository) UpdateStatus(rel *model.FollowRelationship, from, to model.RelationshipStatus) (int64, error) {
	result := r.db.Model(rel).
		Where("status = ?", from).
		Update("status", to)
	return result.RowsAffected, result.Error
}

// Delete 物理删除关系
func (r *RelationshipRepository) Delete(rel *model.FollowRelationship) (int64, error) {
	result := r.db.Delete(rel)
	return result.RowsAffected, result.Error
}

// ListByFollower 用户作为关注者的关系列表（按创建时间倒序）
func (r *RelationshipRepository) ListByFollower(followerID uint, status model.RelationshipStatus) ([]*model.FollowRelationship, error) {
	var rels []*model.FollowRelationship
	err := r.db.Preload("Follower").Preload("Followed").
		Where("follower_id = ? AND status = ?", followerID, status).
		Order("created_at DESC").Order("id DESC").
		Find(&rels).Error
	return rels, err
}

// ListByFollowed 用户作为被关注者的关系列表（按创建时间倒序）
func (r *RelationshipRepository) ListByFollowed(followedID uint, status model.RelationshipStatus) ([]*model.FollowRelationship, error) {
	var rels []*model.FollowRelationship
	err := r.db.Preload("Follower").Preload("Followed").
		Where("followed_id = ? AND status = ?", followedID, status).
		Order("created_at DESC").Order("id DESC").
		Find(&rels).Error
	return rels, err
}

// CountByFollowed 统计指向用户的指定状态关系数量
func (r *RelationshipRepository) CountByFollowed(followedID uint, status model.RelationshipStatus) (int64, error) {
	var count int64
	err := r.db.Model(&model.FollowRelationship{}).
		Where("followed_id = ? AND status = ?", followedID, status).
		Count(&count).Error
	return count, err
}

// FollowedIDs 用户已关注（指定状态）的对象ID列表
func (r *RelationshipRepository) FollowedIDs(followerID uint, status model.RelationshipStatus) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&model.FollowRelationship{}).
		Where("follower_id = ? AND status = ?", followerID, status).
		Pluck("followed_id", &ids).Error
	return ids, err
}

// FollowerIDs 关注该用户（指定状态）的用户ID列表
func (r *RelationshipRepository) FollowerIDs(followedID uint, status model.RelationshipStatus) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&model.FollowRelationship{}).
		Where("followed_id = ? AND status = ?", followedID, status).
		Pluck("follower_id", &ids).Error
	return ids, err
}
