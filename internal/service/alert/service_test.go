package alert

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vedzeb_server/internal/dao/mysql/repository/memrepo"
	"vedzeb_server/internal/dto/request"
	"vedzeb_server/internal/model"
	"vedzeb_server/pkg/errorx"
)

func newService(t *testing.T) (*Service, *model.User, *model.User) {
	t.Helper()
	repos, _ := memrepo.New()
	a := &model.User{Phone: "+995555200001"}
	require.NoError(t, repos.User.Create(a))
	b := &model.User{Phone: "+995555200002"}
	require.NoError(t, repos.User.Create(b))
	return NewAlertService(repos), a, b
}

func regionFilter(region string) *model.ProfileFilter {
	return &model.ProfileFilter{Region: region}
}

func TestCreateRequiresFilters(t *testing.T) {
	svc, user, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, user.ID, request.CreateAlertRequest{Filters: &model.ProfileFilter{}})
	assert.ErrorIs(t, err, ErrEmptyFilters)
	_, err = svc.Create(ctx, user.ID, request.CreateAlertRequest{})
	assert.ErrorIs(t, err, ErrEmptyFilters)

	// isActive 不算作用户条件，也不会被持久化
	active := false
	_, err = svc.Create(ctx, user.ID, request.CreateAlertRequest{Filters: &model.ProfileFilter{IsActive: &active}})
	assert.ErrorIs(t, err, ErrEmptyFilters)

	year := 1990
	a, err := svc.Create(ctx, user.ID, request.CreateAlertRequest{Filters: &model.ProfileFilter{
		Region:        "Kutaisi",
		BirthYearFrom: &year,
		IsActive:      &active,
	}})
	require.NoError(t, err)
	assert.True(t, a.IsActive)

	var stored map[string]any
	require.NoError(t, json.Unmarshal(a.Filters, &stored))
	assert.Equal(t, map[string]any{"region": "Kutaisi", "birthYearFrom": float64(1990)}, stored)
}

func TestCreateLimit(t *testing.T) {
	svc, user, other := newService(t)
	ctx := context.Background()

	for i := 0; i < model.MaxAlertsPerUser; i++ {
		_, err := svc.Create(ctx, user.ID, request.CreateAlertRequest{Filters: regionFilter("Tbilisi")})
		require.NoError(t, err)
	}
	_, err := svc.Create(ctx, user.ID, request.CreateAlertRequest{Filters: regionFilter("Tbilisi")})
	assert.ErrorIs(t, err, ErrAlertLimit)
	assert.Equal(t, errorx.CodeInvalidParam, errorx.GetCode(err))

	// 上限按用户计算
	_, err = svc.Create(ctx, other.ID, request.CreateAlertRequest{Filters: regionFilter("Tbilisi")})
	assert.NoError(t, err)

	list, err := svc.List(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, list.Alerts, model.MaxAlertsPerUser)
}

func TestCreateForUnknownUser(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, "00000000-0000-0000-0000-000000000000", request.CreateAlertRequest{Filters: regionFilter("Tbilisi")})
	require.Error(t, err)
	assert.True(t, errorx.IsNotFound(err))

	list, err := svc.List(ctx, "00000000-0000-0000-0000-000000000000")
	require.NoError(t, err)
	assert.Empty(t, list.Alerts)
}

func TestListEmpty(t *testing.T) {
	svc, user, _ := newService(t)
	list, err := svc.List(context.Background(), user.ID)
	require.NoError(t, err)
	assert.NotNil(t, list.Alerts)
	assert.Empty(t, list.Alerts)
}

func TestUpdateAndDelete(t *testing.T) {
	svc, user, other := newService(t)
	ctx := context.Background()

	a, err := svc.Create(ctx, user.ID, request.CreateAlertRequest{Filters: regionFilter("Tbilisi")})
	require.NoError(t, err)

	off := false
	_, err = svc.Update(ctx, other.ID, a.ID, request.UpdateAlertRequest{IsActive: &off})
	assert.ErrorIs(t, err, ErrNotOwner)
	assert.ErrorIs(t, svc.Delete(ctx, other.ID, a.ID), ErrNotOwner)

	_, err = svc.Update(ctx, user.ID, a.ID, request.UpdateAlertRequest{Filters: &model.ProfileFilter{}})
	assert.ErrorIs(t, err, ErrEmptyFilters)

	updated, err := svc.Update(ctx, user.ID, a.ID, request.UpdateAlertRequest{IsActive: &off})
	require.NoError(t, err)
	assert.False(t, updated.IsActive)
	assert.JSONEq(t, `{"region":"Tbilisi"}`, string(updated.Filters))

	updated, err = svc.Update(ctx, user.ID, a.ID, request.UpdateAlertRequest{Filters: &model.ProfileFilter{Gender: model.GenderMale}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"gender":"male"}`, string(updated.Filters))
	assert.False(t, updated.IsActive)

	require.NoError(t, svc.Delete(ctx, user.ID, a.ID))
	_, err = svc.Update(ctx, user.ID, a.ID, request.UpdateAlertRequest{IsActive: &off})
	assert.ErrorIs(t, err, ErrAlertNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, user.ID, a.ID), ErrAlertNotFound)
}
