package repository

import (
	"vedzeb_server/internal/model"

	"gorm.io/gorm"
)

type searchAlertRepository struct {
	db *gorm.DB
}

// NewSearchAlertRepository 创建搜索提醒 Repository
func NewSearchAlertRepository(db *gorm.DB) SearchAlertRepository {
	return &searchAlertRepository{db: db}
}

func (r *searchAlertRepository) Create(alert *model.SearchAlert) error {
	return wrapDBError(r.db.Create(alert).Error, "Create alert")
}

func (r *searchAlertRepository) FindByID(id string) (*model.SearchAlert, error) {
	var a model.SearchAlert
	if err := r.db.First(&a, "id = ?", id).Error; err != nil {
		return nil, wrapDBError(err, "Alert not found")
	}
	return &a, nil
}

func (r *searchAlertRepository) ListByUser(userID string) ([]model.SearchAlert, error) {
	var list []model.SearchAlert
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&list).Error
	return list, wrapDBError(err, "List alerts")
}

func (r *searchAlertRepository) CountByUser(userID string) (int64, error) {
	var total int64
	err := r.db.Model(&model.SearchAlert{}).Where("user_id = ?", userID).Count(&total).Error
	return total, wrapDBError(err, "Count alerts")
}

func (r *searchAlertRepository) Save(alert *model.SearchAlert) error {
	return wrapDBError(r.db.Save(alert).Error, "Update alert")
}

func (r *searchAlertRepository) Delete(id string) error {
	res := r.db.Delete(&model.SearchAlert{}, "id = ?", id)
	if res.Error != nil {
		return wrapDBError(res.Error, "Delete alert")
	}
	if res.RowsAffected == 0 {
		return wrapDBError(gorm.ErrRecordNotFound, "Alert not found")
	}
	return nil
}
