// Package profile 提供寻亲档案和照片的业务逻辑
package profile

import (
	"context"

	"go.uber.org/zap"

	"vedzeb_server/internal/dao/mysql/repository"
	"vedzeb_server/internal/dto/request"
	"vedzeb_server/internal/dto/respond"
	"vedzeb_server/internal/infrastructure/storage"
	"vedzeb_server/internal/model"
	"vedzeb_server/pkg/errorx"
	"vedzeb_server/pkg/util/imageutil"
)

// 公开搜索的分页默认值
const (
	DefaultPageSize = 12
	MaxPageSize     = 50
)

var (
	ErrProfileNotFound = errorx.New(errorx.CodeNotFound, "Profile not found")
	ErrPhotoNotFound   = errorx.New(errorx.CodeNotFound, "Photo not found")
	ErrNotOwner        = errorx.New(errorx.CodeForbidden, "Not authorized")
	ErrPhotoLimit      = errorx.Newf(errorx.CodeInvalidParam, "Maximum %d photos allowed", model.MaxPhotosPerProfile)
)

// Service 档案服务实现
type Service struct {
	repos  *repository.Repositories
	store  storage.ImageStore
	maxDim int
}

// NewProfileService maxDim 为照片最长边上限
func NewProfileService(repos *repository.Repositories, store storage.ImageStore, maxDim int) *Service {
	return &Service{repos: repos, store: store, maxDim: maxDim}
}

// Search 公开搜索，只返回启用的档案
func (s *Service) Search(ctx context.Context, q request.ProfileQuery) (*respond.ProfileListRespond, error) {
	page, limit := q.Page, q.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	filter := q.Filter()
	active := true
	filter.IsActive = &active

	profiles, total, err := s.repos.Profile.Search(filter, (page-1)*limit, limit)
	if err != nil {
		return nil, err
	}
	return &respond.ProfileListRespond{
		Profiles: nonNil(profiles),
		Pagination: respond.Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: respond.PageCount(total, limit),
		},
	}, nil
}

// Get 档案详情；未启用的档案只有本人可见
func (s *Service) Get(ctx context.Context, id, viewerID string) (*respond.ProfileDetailRespond, error) {
	p, err := s.repos.Profile.FindByIDWithPhotos(id)
	if err != nil {
		return nil, err
	}
	isOwner := viewerID != "" && viewerID == p.UserID
	if !p.IsActive && !isOwner {
		return nil, ErrProfileNotFound
	}

	view := respond.ProfileView{Profile: *p}
	if view.Photos == nil {
		view.Photos = []model.Photo{}
	}
	if isOwner {
		owner, err := s.repos.User.FindByID(p.UserID)
		if err != nil {
			return nil, err
		}
		view.User = &respond.ProfileOwner{ID: owner.ID, CreatedAt: owner.CreatedAt}
	}
	return &respond.ProfileDetailRespond{Profile: view, IsOwner: isOwner}, nil
}

// ListMine 自己的全部档案，带收到的联系请求数
func (s *Service) ListMine(ctx context.Context, userID string) (*respond.MyProfilesRespond, error) {
	profiles, err := s.repos.Profile.FindByUser(userID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(profiles))
	for _, p := range profiles {
		ids = append(ids, p.ID)
	}
	counts, err := s.repos.ContactRequest.CountByProfiles(ids)
	if err != nil {
		return nil, err
	}

	out := make([]respond.MyProfile, 0, len(profiles))
	for _, p := range profiles {
		if p.Photos == nil {
			p.Photos = []model.Photo{}
		}
		out = append(out, respond.MyProfile{
			Profile: p,
			Count:   respond.ProfileCount{ContactRequests: counts[p.ID]},
		})
	}
	return &respond.MyProfilesRespond{Profiles: out}, nil
}

// Create 创建档案，性别缺省为 unknown
func (s *Service) Create(ctx context.Context, userID string, req request.CreateProfileRequest) (*model.Profile, error) {
	p := &model.Profile{
		UserID:               userID,
		Type:                 model.ProfileType(req.Type),
		FirstName:            req.FirstName,
		LastName:             req.LastName,
		BirthDateApproximate: req.BirthDateApproximate,
		BirthYear:            req.BirthYear,
		BirthMonth:           req.BirthMonth,
		BirthDay:             req.BirthDay,
		BirthPlace:           req.BirthPlace,
		MaternityHospital:    req.MaternityHospital,
		LastKnownLocation:    req.LastKnownLocation,
		Region:               req.Region,
		Gender:               model.Gender(req.Gender),
		Story:                req.Story,
		BiologicalMotherInfo: req.BiologicalMotherInfo,
		BiologicalFatherInfo: req.BiologicalFatherInfo,
		MedicalHistory:       req.MedicalHistory,
		MyBirthYear:          req.MyBirthYear,
		MyBirthMonth:         req.MyBirthMonth,
		MyBirthDay:           req.MyBirthDay,
		IsActive:             true,
	}
	if !p.Type.Valid() {
		return nil, errorx.New(errorx.CodeInvalidParam, "Invalid profile type")
	}
	if p.Gender == "" {
		p.Gender = model.GenderUnknown
	}
	if req.BirthDate != nil && *req.BirthDate != "" {
		d, err := request.ParseDate(*req.BirthDate)
		if err != nil {
			return nil, err
		}
		p.BirthDate = d
	}

	if err := s.repos.Profile.Create(p); err != nil {
		return nil, err
	}
	p.Photos = []model.Photo{}
	return p, nil
}

// owned 查找档案并确认归属
func (s *Service) owned(id, userID string) (*model.Profile, error) {
	p, err := s.repos.Profile.FindByID(id)
	if err != nil {
		return nil, err
	}
	if p.UserID != userID {
		return nil, ErrNotOwner
	}
	return p, nil
}

// Update 本人部分更新档案
func (s *Service) Update(ctx context.Context, userID, id string, req request.UpdateProfileRequest) (*model.Profile, error) {
	if _, err := s.owned(id, userID); err != nil {
		return nil, err
	}
	return s.Apply(ctx, id, req, nil)
}

// Apply 不做归属检查的部分更新，后台编辑档案也走这里
// within 非 nil 时与更新在同一事务中执行，返回错误则整体回滚
func (s *Service) Apply(ctx context.Context, id string, req request.UpdateProfileRequest, within func(tx *repository.Repositories, fields map[string]any) error) (*model.Profile, error) {
	fields, err := req.Fields()
	if err != nil {
		return nil, err
	}
	err = s.repos.Transaction(func(tx *repository.Repositories) error {
		if err := tx.Profile.Updates(id, fields); err != nil {
			return err
		}
		if within == nil {
			return nil
		}
		return within(tx, fields)
	})
	if err != nil {
		return nil, err
	}
	return s.repos.Profile.FindByIDWithPhotos(id)
}

// Delete 本人删除档案
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.owned(id, userID); err != nil {
		return err
	}
	return s.Remove(ctx, id, nil)
}

// Remove 先在事务中删除档案及其照片、联系请求和消息，再清理图片存储
// within 与删除同事务；图片清理失败只记录日志
func (s *Service) Remove(ctx context.Context, id string, within func(tx *repository.Repositories) error) error {
	var photos []model.Photo
	err := s.repos.Transaction(func(tx *repository.Repositories) error {
		var err error
		photos, err = tx.Photo.FindByProfile(id)
		if err != nil {
			return err
		}
		if err := tx.Profile.Delete(id); err != nil {
			return err
		}
		if within == nil {
			return nil
		}
		return within(tx)
	})
	if err != nil {
		return err
	}
	s.CleanupImages(ctx, photos)
	return nil
}

// CleanupImages 逐张删除外部图片，失败只告警
func (s *Service) CleanupImages(ctx context.Context, photos []model.Photo) {
	for _, ph := range photos {
		if ph.PublicID == "" {
			continue
		}
		if err := s.store.Delete(ctx, ph.PublicID); err != nil {
			zap.L().Warn("delete stored image failed",
				zap.String("photo_id", ph.ID),
				zap.String("public_id", ph.PublicID),
				zap.Error(err),
			)
		}
	}
}

// UploadPhoto 先写图片存储再插入记录，插入失败时删除刚上传的图片
// 第一张照片自动成为主图
func (s *Service) UploadPhoto(ctx context.Context, userID, profileID string, data []byte) (*model.Photo, error) {
	if _, err := s.owned(profileID, userID); err != nil {
		return nil, err
	}
	count, err := s.repos.Photo.CountByProfile(profileID)
	if err != nil {
		return nil, err
	}
	if count >= model.MaxPhotosPerProfile {
		return nil, ErrPhotoLimit
	}

	img, err := imageutil.Process(data, s.maxDim)
	if err != nil {
		return nil, err
	}
	stored, err := s.store.Upload(ctx, img.Data, img.ContentType)
	if err != nil {
		zap.L().Error("upload image failed", zap.String("profile_id", profileID), zap.Error(err))
		return nil, errorx.Wrap(err, errorx.CodeExternalError, "Failed to upload photo")
	}

	photo := &model.Photo{ProfileID: profileID, URL: stored.URL, PublicID: stored.PublicID}
	err = s.repos.Transaction(func(tx *repository.Repositories) error {
		// 加行锁后重新计数，两个并发上传不会同时突破上限或都成为主图
		if _, err := tx.Profile.LockByID(profileID); err != nil {
			return err
		}
		n, err := tx.Photo.CountByProfile(profileID)
		if err != nil {
			return err
		}
		if n >= model.MaxPhotosPerProfile {
			return ErrPhotoLimit
		}
		photo.IsPrimary = n == 0
		return tx.Photo.Create(photo)
	})
	if err != nil {
		if delErr := s.store.Delete(ctx, stored.PublicID); delErr != nil {
			zap.L().Warn("rollback stored image failed", zap.String("public_id", stored.PublicID), zap.Error(delErr))
		}
		return nil, err
	}
	return photo, nil
}

// photoOf 照片必须属于该档案
func (s *Service) photoOf(profileID, photoID string) (*model.Photo, error) {
	photo, err := s.repos.Photo.FindByID(photoID)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, ErrPhotoNotFound
		}
		return nil, err
	}
	if photo.ProfileID != profileID {
		return nil, ErrPhotoNotFound
	}
	return photo, nil
}

// DeletePhoto 删除主图时，剩余照片中最早上传的一张成为主图
func (s *Service) DeletePhoto(ctx context.Context, userID, profileID, photoID string) error {
	if _, err := s.owned(profileID, userID); err != nil {
		return err
	}
	photo, err := s.photoOf(profileID, photoID)
	if err != nil {
		return err
	}

	err = s.repos.Transaction(func(tx *repository.Repositories) error {
		if err := tx.Photo.Delete(photo.ID); err != nil {
			return err
		}
		if !photo.IsPrimary {
			return nil
		}
		next, err := tx.Photo.FindOldest(profileID)
		if err != nil {
			if errorx.IsNotFound(err) {
				return nil
			}
			return err
		}
		return tx.Photo.SetPrimary(next.ID)
	})
	if err != nil {
		return err
	}
	s.CleanupImages(ctx, []model.Photo{*photo})
	return nil
}

// SetPrimaryPhoto 清除旧主图并设置新主图
func (s *Service) SetPrimaryPhoto(ctx context.Context, userID, profileID, photoID string) error {
	if _, err := s.owned(profileID, userID); err != nil {
		return err
	}
	photo, err := s.photoOf(profileID, photoID)
	if err != nil {
		return err
	}
	return s.repos.Transaction(func(tx *repository.Repositories) error {
		if err := tx.Photo.ClearPrimary(profileID); err != nil {
			return err
		}
		return tx.Photo.SetPrimary(photo.ID)
	})
}

func nonNil(profiles []model.Profile) []model.Profile {
	if profiles == nil {
		return []model.Profile{}
	}
	for i := range profiles {
		if profiles[i].Photos == nil {
			profiles[i].Photos = []model.Photo{}
		}
	}
	return profiles
}

