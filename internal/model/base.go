// Package model 定义数据库实体模型
// 所有实体使用 UUID 字符串主键，删除均为物理删除
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base 公共字段
// 不使用 gorm.Model：软删除会与唯一索引、级联删除语义冲突
type Base struct {
	ID        string    `gorm:"column:id;primaryKey;type:char(36);comment:主键uuid" json:"id"`
	CreatedAt time.Time `gorm:"column:created_at;index;comment:创建时间" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at;comment:更新时间" json:"updatedAt"`
}

// BeforeCreate 未指定主键时自动生成 uuid
func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}
