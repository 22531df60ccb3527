package repository

import (
	"vedzeb_server/internal/model"

	"gorm.io/gorm"
)

type auditLogRepository struct {
	db *gorm.DB
}

// NewAuditLogRepository 创建审计日志 Repository
// 只提供写入和查询，没有更新和删除
func NewAuditLogRepository(db *gorm.DB) AuditLogRepository {
	return &auditLogRepository{db: db}
}

func (r *auditLogRepository) Create(log *model.AuditLog) error {
	return wrapDBError(r.db.Create(log).Error, "Write audit log")
}

func (r *auditLogRepository) filtered(filter model.AuditLogFilter) *gorm.DB {
	q := r.db.Model(&model.AuditLog{})
	if filter.Action != "" {
		q = q.Where("action = ?", filter.Action)
	}
	if filter.AdminID != "" {
		q = q.Where("admin_id = ?", filter.AdminID)
	}
	return q
}

func (r *auditLogRepository) List(filter model.AuditLogFilter, offset, limit int) ([]model.AuditLog, int64, error) {
	var total int64
	if err := r.filtered(filter).Count(&total).Error; err != nil {
		return nil, 0, wrapDBError(err, "Count audit logs")
	}
	var list []model.AuditLog
	err := r.filtered(filter).
		Order("created_at DESC").
		Scopes(paginate(offset, limit)).
		Find(&list).Error
	return list, total, wrapDBError(err, "List audit logs")
}
