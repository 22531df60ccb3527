package repository

import (
	"vedzeb_server/internal/model"

	"gorm.io/gorm"
)

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository 创建消息 Repository
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(msg *model.Message) error {
	return wrapDBError(r.db.Create(msg).Error, "Save message")
}

func (r *messageRepository) FindByID(id string) (*model.Message, error) {
	var m model.Message
	if err := r.db.First(&m, "id = ?", id).Error; err != nil {
		return nil, wrapDBError(err, "Message not found")
	}
	return &m, nil
}

func (r *messageRepository) ListByRequest(requestID string) ([]model.Message, error) {
	var list []model.Message
	err := r.db.Where("contact_request_id = ?", requestID).Order("created_at ASC, id ASC").Find(&list).Error
	return list, wrapDBError(err, "List messages")
}

func (r *messageRepository) MarkRead(requestID, readerID string) (int64, error) {
	res := r.db.Model(&model.Message{}).
		Where("contact_request_id = ? AND sender_id <> ? AND is_read = ?", requestID, readerID, false).
		Update("is_read", true)
	return res.RowsAffected, wrapDBError(res.Error, "Mark messages read")
}

func (r *messageRepository) Delete(id string) error {
	res := r.db.Delete(&model.Message{}, "id = ?", id)
	if res.Error != nil {
		return wrapDBError(res.Error, "Delete message")
	}
	if res.RowsAffected == 0 {
		return wrapDBError(gorm.ErrRecordNotFound, "Message not found")
	}
	return nil
}

func (r *messageRepository) filtered(filter model.MessageFilter) *gorm.DB {
	q := r.db.Model(&model.Message{})
	if filter.ContactRequestID != "" {
		q = q.Where("contact_request_id = ?", filter.ContactRequestID)
	}
	return q
}

// List 后台消息列表，按时间倒序
func (r *messageRepository) List(filter model.MessageFilter, offset, limit int) ([]model.Message, int64, error) {
	var total int64
	if err := r.filtered(filter).Count(&total).Error; err != nil {
		return nil, 0, wrapDBError(err, "Count messages")
	}
	var list []model.Message
	err := r.filtered(filter).
		Preload("Sender").
		Order("created_at DESC").
		Scopes(paginate(offset, limit)).
		Find(&list).Error
	return list, total, wrapDBError(err, "List messages")
}

func (r *messageRepository) Count() (int64, error) {
	var total int64
	err := r.db.Model(&model.Message{}).Count(&total).Error
	return total, wrapDBError(err, "Count messages")
}
