package repository

import (
	"time"

	"vedzeb_server/internal/model"

	"gorm.io/gorm"
)

type verificationCodeRepository struct {
	db *gorm.DB
}

// NewVerificationCodeRepository 创建验证码 Repository
func NewVerificationCodeRepository(db *gorm.DB) VerificationCodeRepository {
	return &verificationCodeRepository{db: db}
}

func (r *verificationCodeRepository) Create(code *model.VerificationCode) error {
	return wrapDBError(r.db.Create(code).Error, "Save verification code")
}

// InvalidateUnused 新验证码下发前作废旧验证码
func (r *verificationCodeRepository) InvalidateUnused(userID string) error {
	err := r.db.Model(&model.VerificationCode{}).
		Where("user_id = ? AND used = ?", userID, false).
		Update("used", true).Error
	return wrapDBError(err, "Invalidate verification codes")
}

func (r *verificationCodeRepository) FindValid(userID, code string, now time.Time) (*model.VerificationCode, error) {
	var vc model.VerificationCode
	err := r.db.
		Where("user_id = ? AND code = ? AND used = ? AND expires_at > ?", userID, code, false, now).
		Order("created_at DESC").
		First(&vc).Error
	if err != nil {
		return nil, wrapDBError(err, "Verification code not found")
	}
	return &vc, nil
}

// MarkUsed 只有 used=false 的行会被更新，保证验证码只能用一次
func (r *verificationCodeRepository) MarkUsed(id string) (bool, error) {
	res := r.db.Model(&model.VerificationCode{}).
		Where("id = ? AND used = ?", id, false).
		Update("used", true)
	if res.Error != nil {
		return false, wrapDBError(res.Error, "Consume verification code")
	}
	return res.RowsAffected == 1, nil
}
