package model

import "time"

// RamenLog 拉面店访问记录
// Rating 与 VisitedAt 允许为空

type RamenLog struct {
	ID             uint       `gorm:"primaryKey"`
	UserID         uint       `gorm:"not null;index;comment:记录者ID"`
	ShopName       string     `gorm:"type:varchar(100);not null;comment:店名"`
	OrderedItem    string     `gorm:"type:varchar(100);comment:点的菜品"`
	NoodleHardness string     `gorm:"type:varchar(30);comment:面的硬度"`
	Toppings       string     `gorm:"type:varchar(200);comment:配料"`
	Rating         *float64   `gorm:"type:decimal(3,1);comment:评分"`
	VisitedAt      *time.Time `gorm:"index;comment:访问时间"`
	CreatedAt      time.Time  `gorm:"comment:创建时间"`
	UpdatedAt      time.Time  `gorm:"comment:更新时间"`

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

func (RamenLog) TableName() string { return "ramen_log" }
