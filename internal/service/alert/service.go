// Package alert 管理用户保存的搜索提醒
package alert

import (
	"context"
	"encoding/json"

	"gorm.io/datatypes"

	"vedzeb_server/internal/dao/mysql/repository"
	"vedzeb_server/internal/dto/request"
	"vedzeb_server/internal/dto/respond"
	"vedzeb_server/internal/model"
	"vedzeb_server/pkg/errorx"
)

var (
	ErrEmptyFilters  = errorx.New(errorx.CodeInvalidParam, "At least one filter criteria is required")
	ErrAlertLimit    = errorx.Newf(errorx.CodeInvalidParam, "Maximum number of alerts reached (%d)", model.MaxAlertsPerUser)
	ErrAlertNotFound = errorx.New(errorx.CodeNotFound, "Alert not found")
	ErrNotOwner      = errorx.New(errorx.CodeForbidden, "Not authorized")
)

// Service 搜索提醒服务
type Service struct {
	repos *repository.Repositories
}

func NewAlertService(repos *repository.Repositories) *Service {
	return &Service{repos: repos}
}

func encodeFilters(f *model.ProfileFilter) (datatypes.JSON, error) {
	if f == nil || f.Empty() {
		return nil, ErrEmptyFilters
	}
	f.IsActive = nil
	raw, err := json.Marshal(f)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.CodeInvalidParam, "Invalid filters")
	}
	return datatypes.JSON(raw), nil
}

// List 我的全部提醒，新建的在前
func (s *Service) List(ctx context.Context, userID string) (*respond.AlertListRespond, error) {
	alerts, err := s.repos.SearchAlert.ListByUser(userID)
	if err != nil {
		return nil, err
	}
	if alerts == nil {
		alerts = []model.SearchAlert{}
	}
	return &respond.AlertListRespond{Alerts: alerts}, nil
}

// Create 每个用户最多 MaxAlertsPerUser 个提醒
func (s *Service) Create(ctx context.Context, userID string, req request.CreateAlertRequest) (*model.SearchAlert, error) {
	filters, err := encodeFilters(req.Filters)
	if err != nil {
		return nil, err
	}
	a := &model.SearchAlert{UserID: userID, Filters: filters, IsActive: true}
	err = s.repos.Transaction(func(tx *repository.Repositories) error {
		// 锁住用户行再计数，并发创建不会突破上限
		if _, err := tx.User.LockByID(userID); err != nil {
			return err
		}
		n, err := tx.SearchAlert.CountByUser(userID)
		if err != nil {
			return err
		}
		if n >= model.MaxAlertsPerUser {
			return ErrAlertLimit
		}
		return tx.SearchAlert.Create(a)
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) owned(userID, id string) (*model.SearchAlert, error) {
	a, err := s.repos.SearchAlert.FindByID(id)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, ErrAlertNotFound
		}
		return nil, err
	}
	if a.UserID != userID {
		return nil, ErrNotOwner
	}
	return a, nil
}

// Update 替换过滤条件或切换启用状态
func (s *Service) Update(ctx context.Context, userID, id string, req request.UpdateAlertRequest) (*model.SearchAlert, error) {
	a, err := s.owned(userID, id)
	if err != nil {
		return nil, err
	}
	if req.Filters != nil {
		filters, err := encodeFilters(req.Filters)
		if err != nil {
			return nil, err
		}
		a.Filters = filters
	}
	if req.IsActive != nil {
		a.IsActive = *req.IsActive
	}
	if err := s.repos.SearchAlert.Save(a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.owned(userID, id); err != nil {
		return err
	}
	return s.repos.SearchAlert.Delete(id)
}
