package repository

import (
	"time"

	"vedzeb_server/internal/model"

	"gorm.io/gorm"
)

type contactRequestRepository struct {
	db *gorm.DB
}

// NewContactRequestRepository 创建联系请求 Repository
func NewContactRequestRepository(db *gorm.DB) ContactRequestRepository {
	return &contactRequestRepository{db: db}
}

// Create 重复的 (from, to) 由唯一索引拦截，翻译为 Conflict
func (r *contactRequestRepository) Create(req *model.ContactRequest) error {
	return wrapDBError(r.db.Create(req).Error, "Contact request already sent")
}

func (r *contactRequestRepository) FindByID(id string) (*model.ContactRequest, error) {
	var cr model.ContactRequest
	if err := r.db.Preload("ToProfile").First(&cr, "id = ?", id).Error; err != nil {
		return nil, wrapDBError(err, "Contact request not found")
	}
	return &cr, nil
}

// UpdateStatusIfPending UPDATE ... WHERE status = 'pending'
// 终态的请求不会被改写，RowsAffected 为 0
func (r *contactRequestRepository) UpdateStatusIfPending(id string, status model.ContactStatus) (bool, error) {
	res := r.db.Model(&model.ContactRequest{}).
		Where("id = ? AND status = ?", id, model.ContactPending).
		Updates(map[string]any{"status": status, "updated_at": time.Now()})
	if res.Error != nil {
		return false, wrapDBError(res.Error, "Update contact request")
	}
	return res.RowsAffected == 1, nil
}

func (r *contactRequestRepository) Touch(id string) error {
	err := r.db.Model(&model.ContactRequest{}).Where("id = ?", id).Update("updated_at", time.Now()).Error
	return wrapDBError(err, "Touch contact request")
}

func (r *contactRequestRepository) Delete(id string) error {
	// 先删消息，不依赖数据库是否建好了级联外键
	if err := r.db.Where("contact_request_id = ?", id).Delete(&model.Message{}).Error; err != nil {
		return wrapDBError(err, "Delete messages")
	}
	res := r.db.Delete(&model.ContactRequest{}, "id = ?", id)
	if res.Error != nil {
		return wrapDBError(res.Error, "Delete contact request")
	}
	if res.RowsAffected == 0 {
		return wrapDBError(gorm.ErrRecordNotFound, "Contact request not found")
	}
	return nil
}

func orderedMessages(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC, id ASC")
}

func (r *contactRequestRepository) ListSent(userID string) ([]model.ContactRequest, error) {
	var list []model.ContactRequest
	err := r.db.
		Preload("ToProfile").
		Preload("ToProfile.Photos", primaryPhotoOnly).
		Preload("Messages", orderedMessages).
		Where("from_user_id = ?", userID).
		Order("updated_at DESC").
		Find(&list).Error
	return list, wrapDBError(err, "List sent contact requests")
}

func (r *contactRequestRepository) ListReceived(userID string) ([]model.ContactRequest, error) {
	var list []model.ContactRequest
	err := r.db.
		Preload("FromUser").
		Preload("ToProfile").
		Preload("Messages", orderedMessages).
		Joins("JOIN profiles ON profiles.id = contact_requests.to_profile_id").
		Where("profiles.user_id = ?", userID).
		Order("contact_requests.updated_at DESC").
		Find(&list).Error
	return list, wrapDBError(err, "List received contact requests")
}

func (r *contactRequestRepository) CountByProfiles(profileIDs []string) (map[string]int64, error) {
	out := make(map[string]int64, len(profileIDs))
	if len(profileIDs) == 0 {
		return out, nil
	}
	var rows []struct {
		ToProfileID string
		Total       int64
	}
	err := r.db.Model(&model.ContactRequest{}).
		Select("to_profile_id, COUNT(*) AS total").
		Where("to_profile_id IN ?", profileIDs).
		Group("to_profile_id").
		Scan(&rows).Error
	if err != nil {
		return nil, wrapDBError(err, "Count contact requests")
	}
	for _, row := range rows {
		out[row.ToProfileID] = row.Total
	}
	return out, nil
}

// Count status 为空时统计全部
func (r *contactRequestRepository) Count(status model.ContactStatus) (int64, error) {
	q := r.db.Model(&model.ContactRequest{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var total int64
	err := q.Count(&total).Error
	return total, wrapDBError(err, "Count contact requests")
}
