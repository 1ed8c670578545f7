package model

import "time"

// RelationshipStatus 关注关系状态
type RelationshipStatus string

const (
	StatusPending  RelationshipStatus = "PENDING"
	StatusApproved RelationshipStatus = "APPROVED"
	StatusDenied   RelationshipStatus = "DENIED"
)

// FollowRelationship 有向关注关系（需被关注者审批）
// (FollowerID, FollowedID) 唯一；不使用软删除，取消关注后可重新申请
type FollowRelationship struct {
	ID         uint               `gorm:"primaryKey"`
	FollowerID uint               `gorm:"not null;uniqueIndex:uk_follower_followed,priority:1;comment:关注者ID"`
	FollowedID uint               `gorm:"not null;uniqueIndex:uk_follower_followed,priority:2;index;comment:被关注者ID"`
	Status     RelationshipStatus `gorm:"type:varchar(10);not null;default:'PENDING';index;comment:关系状态"`
	CreatedAt  time.Time          `gorm:"index;comment:创建时间"`
	UpdatedAt  time.Time          `gorm:"comment:更新时间"`

	Follower User `gorm:"foreignKey:FollowerID;constraint:OnDelete:CASCADE"`
	Followed User `gorm:"foreignKey:FollowedID;constraint:OnDelete:CASCADE"`
}

func (FollowRelationship) TableName() string { return "user_relationship" }
