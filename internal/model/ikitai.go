package model

import "time"

// DurationType イキタイ状态的持续类型
type DurationType string

const (
	DurationNow    DurationType = "now"
	DurationLunch  DurationType = "lunch"
	DurationDinner DurationType = "dinner"
)

// Valid 是否为支持的持续类型
func (d DurationType) Valid() bool {
	switch d {
	case DurationNow, DurationLunch, DurationDinner:
		return true
	}
	return false
}

// IkitaiStatus 「ラーメンイキタイ」状态，每个用户最多一条
// 过期不会被主动清理，读取方需比较 ExpiresAt
type IkitaiStatus struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"not null;uniqueIndex;comment:用户ID"`
	Latitude  float64   `gorm:"not null;comment:纬度"`
	Longitude float64   `gorm:"not null;comment:经度"`
	ExpiresAt time.Time `gorm:"not null;index;comment:失效时间"`
	CreatedAt time.Time `gorm:"comment:创建时间"`
	UpdatedAt time.Time `gorm:"comment:更新时间"`

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

func (IkitaiStatus) TableName() string { return "ikitai_status" }

// Expired 在给定时间点是否已过期
func (s *IkitaiStatus) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
