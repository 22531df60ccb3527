package model

import "gorm.io/datatypes"

// MaxAlertsPerUser 每个用户最多保存 5 个搜索提醒
const MaxAlertsPerUser = 5

// SearchAlert 保存的搜索条件
type SearchAlert struct {
	Base
	UserID   string         `gorm:"column:user_id;type:char(36);not null;index;comment:用户id" json:"userId"`
	Filters  datatypes.JSON `gorm:"column:filters;not null;comment:过滤条件" json:"filters"`
	IsActive bool           `gorm:"column:is_active;not null;default:true" json:"isActive"`

	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (SearchAlert) TableName() string {
	return "search_alerts"
}
