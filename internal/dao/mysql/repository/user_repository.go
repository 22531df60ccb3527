package repository

import (
	"time"

	"vedzeb_server/internal/model"
	"vedzeb_server/pkg/rbac"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建用户 Repository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// FindByID 按主键查找用户
func (r *userRepository) FindByID(id string) (*model.User, error) {
	var user model.User
	if err := r.db.First(&user, "id = ?", id).Error; err != nil {
		return nil, wrapDBErrorf(err, "User not found")
	}
	return &user, nil
}

// FindByPhone 按手机号查找用户
func (r *userRepository) FindByPhone(phone string) (*model.User, error) {
	var user model.User
	if err := r.db.First(&user, "phone = ?", phone).Error; err != nil {
		return nil, wrapDBError(err, "User not found")
	}
	return &user, nil
}

// LockByID SELECT ... FOR UPDATE，必须在事务中调用
func (r *userRepository) LockByID(id string) (*model.User, error) {
	var user model.User
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&user, "id = ?", id).Error
	if err != nil {
		return nil, wrapDBError(err, "User not found")
	}
	return &user, nil
}

// FindStaffByUsername 按用户名查找后台人员
func (r *userRepository) FindStaffByUsername(username string) (*model.User, error) {
	var user model.User
	err := r.db.
		Where("username = ?", username).
		Where("role IN ?", []rbac.Role{rbac.RoleModer, rbac.RoleAdministrator, rbac.RoleAdmin}).
		First(&user).Error
	if err != nil {
		return nil, wrapDBError(err, "Staff user not found")
	}
	return &user, nil
}

// UsernameTaken 检查用户名占用
func (r *userRepository) UsernameTaken(username, excludeID string) (bool, error) {
	var count int64
	err := r.db.Model(&model.User{}).
		Where("username = ? AND id <> ?", username, excludeID).
		Count(&count).Error
	if err != nil {
		return false, wrapDBError(err, "Check username")
	}
	return count > 0, nil
}

// Create 创建用户
func (r *userRepository) Create(user *model.User) error {
	return wrapDBError(r.db.Create(user).Error, "Create user")
}

// Save 保存用户全部字段
func (r *userRepository) Save(user *model.User) error {
	return wrapDBErrorf(r.db.Save(user).Error, "Save user %s", user.ID)
}

// MarkPhoneVerified 标记手机号已验证
func (r *userRepository) MarkPhoneVerified(id string) error {
	err := r.db.Model(&model.User{}).Where("id = ?", id).Update("phone_verified", true).Error
	return wrapDBError(err, "Verify phone")
}

// Delete 物理删除用户
func (r *userRepository) Delete(id string) error {
	res := r.db.Delete(&model.User{}, "id = ?", id)
	if res.Error != nil {
		return wrapDBError(res.Error, "Delete user")
	}
	if res.RowsAffected == 0 {
		return wrapDBError(gorm.ErrRecordNotFound, "User not found")
	}
	return nil
}

func (r *userRepository) filtered(filter model.UserFilter) *gorm.DB {
	q := r.db.Model(&model.User{})
	if filter.Role != "" {
		q = q.Where("role = ?", filter.Role)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		q = q.Where("phone LIKE ? OR LOWER(username) LIKE LOWER(?)", like, like)
	}
	if filter.Banned != nil {
		q = q.Where("is_banned = ?", *filter.Banned)
	}
	return q
}

// List 分页查询用户，按注册时间倒序
func (r *userRepository) List(filter model.UserFilter, offset, limit int) ([]model.User, int64, error) {
	var total int64
	if err := r.filtered(filter).Count(&total).Error; err != nil {
		return nil, 0, wrapDBError(err, "Count users")
	}
	var users []model.User
	err := r.filtered(filter).
		Order("created_at DESC").
		Scopes(paginate(offset, limit)).
		Find(&users).Error
	if err != nil {
		return nil, 0, wrapDBError(err, "List users")
	}
	return users, total, nil
}

// CountProfiles 批量统计档案数
func (r *userRepository) CountProfiles(userIDs []string) (map[string]int64, error) {
	out := make(map[string]int64, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}
	var rows []struct {
		UserID string
		Total  int64
	}
	err := r.db.Model(&model.Profile{}).
		Select("user_id, COUNT(*) AS total").
		Where("user_id IN ?", userIDs).
		Group("user_id").
		Scan(&rows).Error
	if err != nil {
		return nil, wrapDBError(err, "Count profiles")
	}
	for _, row := range rows {
		out[row.UserID] = row.Total
	}
	return out, nil
}

// Count 按条件计数
func (r *userRepository) Count(filter model.UserFilter) (int64, error) {
	var total int64
	err := r.filtered(filter).Count(&total).Error
	return total, wrapDBError(err, "Count users")
}

// CountCreatedSince 统计某时间之后注册的用户
func (r *userRepository) CountCreatedSince(filter model.UserFilter, since time.Time) (int64, error) {
	var total int64
	err := r.filtered(filter).Where("created_at >= ?", since).Count(&total).Error
	return total, wrapDBError(err, "Count users")
}
