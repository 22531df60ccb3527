package model

// MaxPhotosPerProfile 每个档案最多 5 张照片
const MaxPhotosPerProfile = 5

// Photo 档案照片
// 有照片时恰好一张 IsPrimary 为 true
type Photo struct {
	Base
	ProfileID string `gorm:"column:profile_id;type:char(36);not null;index;comment:档案id" json:"profileId"`
	URL       string `gorm:"column:url;type:varchar(500);not null;comment:访问地址" json:"url"`
	PublicID  string `gorm:"column:public_id;type:varchar(255);comment:图片存储中的key" json:"publicId"`
	IsPrimary bool   `gorm:"column:is_primary;not null;default:false;comment:是否主图" json:"isPrimary"`
}

func (Photo) TableName() string {
	return "photos"
}
