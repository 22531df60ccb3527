package repository

import (
	"time"

	"vedzeb_server/internal/model"

	"gorm.io/gorm"
)

type refreshTokenRepository struct {
	db *gorm.DB
}

// NewRefreshTokenRepository 创建刷新令牌 Repository
func NewRefreshTokenRepository(db *gorm.DB) RefreshTokenRepository {
	return &refreshTokenRepository{db: db}
}

func (r *refreshTokenRepository) Create(token *model.RefreshToken) error {
	return wrapDBError(r.db.Create(token).Error, "Save refresh token")
}

func (r *refreshTokenRepository) FindByToken(token string) (*model.RefreshToken, error) {
	var rt model.RefreshToken
	if err := r.db.First(&rt, "token = ?", token).Error; err != nil {
		return nil, wrapDBError(err, "Refresh token not found")
	}
	return &rt, nil
}

func (r *refreshTokenRepository) DeleteByToken(token string) (int64, error) {
	res := r.db.Where("token = ?", token).Delete(&model.RefreshToken{})
	return res.RowsAffected, wrapDBError(res.Error, "Revoke refresh token")
}

func (r *refreshTokenRepository) DeleteByUser(userID string) error {
	err := r.db.Where("user_id = ?", userID).Delete(&model.RefreshToken{}).Error
	return wrapDBError(err, "Revoke refresh tokens")
}

func (r *refreshTokenRepository) DeleteExpired(now time.Time) (int64, error) {
	res := r.db.Where("expires_at <= ?", now).Delete(&model.RefreshToken{})
	return res.RowsAffected, wrapDBError(res.Error, "Cleanup refresh tokens")
}
