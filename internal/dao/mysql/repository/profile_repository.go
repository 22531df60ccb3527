package repository

import (
	"strings"
	"time"

	"vedzeb_server/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type profileRepository struct {
	db *gorm.DB
}

// NewProfileRepository 创建档案 Repository
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) Create(profile *model.Profile) error {
	return wrapDBError(r.db.Create(profile).Error, "Create profile")
}

func (r *profileRepository) FindByID(id string) (*model.Profile, error) {
	var p model.Profile
	if err := r.db.First(&p, "id = ?", id).Error; err != nil {
		return nil, wrapDBError(err, "Profile not found")
	}
	return &p, nil
}

func (r *profileRepository) FindByIDWithPhotos(id string) (*model.Profile, error) {
	var p model.Profile
	err := r.db.
		Preload("Photos", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		First(&p, "id = ?", id).Error
	if err != nil {
		return nil, wrapDBError(err, "Profile not found")
	}
	return &p, nil
}

// LockByID SELECT ... FOR UPDATE，必须在事务中调用
func (r *profileRepository) LockByID(id string) (*model.Profile, error) {
	var p model.Profile
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&p, "id = ?", id).Error
	if err != nil {
		return nil, wrapDBError(err, "Profile not found")
	}
	return &p, nil
}

func (r *profileRepository) Updates(id string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	res := r.db.Model(&model.Profile{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return wrapDBErrorf(res.Error, "Update profile %s", id)
	}
	return nil
}

func (r *profileRepository) Delete(id string) error {
	res := r.db.Delete(&model.Profile{}, "id = ?", id)
	if res.Error != nil {
		return wrapDBError(res.Error, "Delete profile")
	}
	if res.RowsAffected == 0 {
		return wrapDBError(gorm.ErrRecordNotFound, "Profile not found")
	}
	return nil
}

// filtered 把 ProfileFilter 翻译成 WHERE 条件
func (r *profileRepository) filtered(f model.ProfileFilter) *gorm.DB {
	q := r.db.Model(&model.Profile{})
	if f.IsActive != nil {
		q = q.Where("is_active = ?", *f.IsActive)
	}
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	if f.Region != "" {
		q = q.Where("region = ?", f.Region)
	}
	if f.Gender != "" {
		q = q.Where("gender = ?", f.Gender)
	}
	if f.BirthYearFrom != nil {
		q = q.Where("birth_year >= ?", *f.BirthYearFrom)
	}
	if f.BirthYearTo != nil {
		q = q.Where("birth_year <= ?", *f.BirthYearTo)
	}
	if f.BirthMonth != nil {
		q = q.Where("birth_month = ?", *f.BirthMonth)
	}
	if f.BirthDay != nil {
		q = q.Where("birth_day = ?", *f.BirthDay)
	}
	if f.MaternityHospital != "" {
		q = q.Where("maternity_hospital = ?", f.MaternityHospital)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where(
			"LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(birth_place) LIKE ? OR LOWER(story) LIKE ?",
			like, like, like, like,
		)
	}
	return q
}

func (r *profileRepository) Search(filter model.ProfileFilter, offset, limit int) ([]model.Profile, int64, error) {
	var total int64
	if err := r.filtered(filter).Count(&total).Error; err != nil {
		return nil, 0, wrapDBError(err, "Count profiles")
	}
	var profiles []model.Profile
	err := r.filtered(filter).
		Preload("Photos", primaryPhotoOnly).
		Order("created_at DESC").
		Scopes(paginate(offset, limit)).
		Find(&profiles).Error
	if err != nil {
		return nil, 0, wrapDBError(err, "Search profiles")
	}
	return profiles, total, nil
}

func (r *profileRepository) FindByUser(userID string) ([]model.Profile, error) {
	var profiles []model.Profile
	err := r.db.
		Preload("Photos", primaryPhotoOnly).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&profiles).Error
	return profiles, wrapDBError(err, "List profiles")
}

func (r *profileRepository) Count(filter model.ProfileFilter) (int64, error) {
	var total int64
	err := r.filtered(filter).Count(&total).Error
	return total, wrapDBError(err, "Count profiles")
}

func (r *profileRepository) CountCreatedSince(since time.Time) (int64, error) {
	var total int64
	err := r.db.Model(&model.Profile{}).Where("created_at >= ?", since).Count(&total).Error
	return total, wrapDBError(err, "Count profiles")
}
