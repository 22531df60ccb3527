package repository

import (
	"vedzeb_server/internal/model"

	"gorm.io/gorm"
)

type photoRepository struct {
	db *gorm.DB
}

// NewPhotoRepository 创建照片 Repository
func NewPhotoRepository(db *gorm.DB) PhotoRepository {
	return &photoRepository{db: db}
}

func (r *photoRepository) Create(photo *model.Photo) error {
	return wrapDBError(r.db.Create(photo).Error, "Save photo")
}

func (r *photoRepository) FindByID(id string) (*model.Photo, error) {
	var p model.Photo
	if err := r.db.First(&p, "id = ?", id).Error; err != nil {
		return nil, wrapDBError(err, "Photo not found")
	}
	return &p, nil
}

func (r *photoRepository) FindByProfile(profileID string) ([]model.Photo, error) {
	var photos []model.Photo
	err := r.db.Where("profile_id = ?", profileID).Order("created_at ASC, id ASC").Find(&photos).Error
	return photos, wrapDBError(err, "List photos")
}

func (r *photoRepository) FindByProfiles(profileIDs []string) ([]model.Photo, error) {
	if len(profileIDs) == 0 {
		return nil, nil
	}
	var photos []model.Photo
	err := r.db.Where("profile_id IN ?", profileIDs).Find(&photos).Error
	return photos, wrapDBError(err, "List photos")
}

func (r *photoRepository) CountByProfile(profileID string) (int64, error) {
	var total int64
	err := r.db.Model(&model.Photo{}).Where("profile_id = ?", profileID).Count(&total).Error
	return total, wrapDBError(err, "Count photos")
}

func (r *photoRepository) Delete(id string) error {
	res := r.db.Delete(&model.Photo{}, "id = ?", id)
	if res.Error != nil {
		return wrapDBError(res.Error, "Delete photo")
	}
	if res.RowsAffected == 0 {
		return wrapDBError(gorm.ErrRecordNotFound, "Photo not found")
	}
	return nil
}

// FindOldest 主图被删除后由最早上传的照片接替
func (r *photoRepository) FindOldest(profileID string) (*model.Photo, error) {
	var p model.Photo
	err := r.db.Where("profile_id = ?", profileID).Order("created_at ASC, id ASC").First(&p).Error
	if err != nil {
		return nil, wrapDBError(err, "Photo not found")
	}
	return &p, nil
}

func (r *photoRepository) ClearPrimary(profileID string) error {
	err := r.db.Model(&model.Photo{}).
		Where("profile_id = ? AND is_primary = ?", profileID, true).
		Update("is_primary", false).Error
	return wrapDBError(err, "Clear primary photo")
}

func (r *photoRepository) SetPrimary(id string) error {
	err := r.db.Model(&model.Photo{}).Where("id = ?", id).Update("is_primary", true).Error
	return wrapDBError(err, "Set primary photo")
}
