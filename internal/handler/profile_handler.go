package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"vedzeb_server/internal/dto/request"
	"vedzeb_server/internal/dto/respond"
	"vedzeb_server/internal/infrastructure/middleware"
	"vedzeb_server/internal/service"
	"vedzeb_server/pkg/errorx"
)

var (
	errNoPhoto       = errorx.New(errorx.CodeInvalidParam, "No photo uploaded")
	errPhotoTooLarge = errorx.New(errorx.CodeInvalidParam, "File too large")
)

// ProfileHandler 档案请求处理器
type ProfileHandler struct {
	profileSvc  service.ProfileService
	maxFileSize int64
}

// NewProfileHandler maxFileSize 为单张照片的字节上限
func NewProfileHandler(profileSvc service.ProfileService, maxFileSize int64) *ProfileHandler {
	return &ProfileHandler{profileSvc: profileSvc, maxFileSize: maxFileSize}
}

// Search 公开搜索
// GET /api/profiles?type=&region=&gender=&birthYearFrom=&birthYearTo=&...&page=&limit=
func (h *ProfileHandler) Search(c *gin.Context) {
	var q request.ProfileQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.profileSvc.Search(c.Request.Context(), q)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// Mine 我的档案
// GET /api/profiles/my
func (h *ProfileHandler) Mine(c *gin.Context) {
	data, err := h.profileSvc.ListMine(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// Get 档案详情，登录用户查看自己的档案时 isOwner 为 true
// GET /api/profiles/:id
func (h *ProfileHandler) Get(c *gin.Context) {
	data, err := h.profileSvc.Get(c.Request.Context(), c.Param("id"), middleware.UserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// Create 创建档案
// POST /api/profiles
// 响应: 201 respond.ProfileRespond
func (h *ProfileHandler) Create(c *gin.Context) {
	var req request.CreateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	p, err := h.profileSvc.Create(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleCreated(c, respond.ProfileRespond{Profile: *p})
}

// Update 部分更新，未出现的字段保持不变
// PUT /api/profiles/:id
func (h *ProfileHandler) Update(c *gin.Context) {
	var req request.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	p, err := h.profileSvc.Update(c.Request.Context(), middleware.UserID(c), c.Param("id"), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, respond.ProfileRespond{Profile: *p})
}

// Delete 删除档案及其照片、联系请求
// DELETE /api/profiles/:id
func (h *ProfileHandler) Delete(c *gin.Context) {
	if err := h.profileSvc.Delete(c.Request.Context(), middleware.UserID(c), c.Param("id")); err != nil {
		HandleError(c, err)
		return
	}
	HandleMessage(c, "Profile deleted")
}

// UploadPhoto 上传照片
// POST /api/profiles/:id/photos  multipart 字段名 photo
// 响应: 201 respond.PhotoRespond
func (h *ProfileHandler) UploadPhoto(c *gin.Context) {
	data, err := h.readPhoto(c)
	if err != nil {
		HandleError(c, err)
		return
	}
	photo, err := h.profileSvc.UploadPhoto(c.Request.Context(), middleware.UserID(c), c.Param("id"), data)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleCreated(c, respond.PhotoRespond{Photo: *photo})
}

// readPhoto 读取 multipart 中的 photo 字段，超过大小上限直接拒绝
func (h *ProfileHandler) readPhoto(c *gin.Context) ([]byte, error) {
	// 预留 multipart 头部的余量
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxFileSize+1<<20)
	fh, err := c.FormFile("photo")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, errPhotoTooLarge
		}
		return nil, errNoPhoto
	}
	if fh.Size > h.maxFileSize {
		return nil, errPhotoTooLarge
	}
	f, err := fh.Open()
	if err != nil {
		return nil, errorx.Wrap(err, errorx.CodeServerBusy, "open upload")
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, h.maxFileSize+1))
	if err != nil {
		return nil, errorx.Wrap(err, errorx.CodeServerBusy, "read upload")
	}
	if int64(len(data)) > h.maxFileSize {
		return nil, errPhotoTooLarge
	}
	return data, nil
}

// DeletePhoto 删除照片，删除主图时自动补位
// DELETE /api/profiles/:id/photos/:photoId
func (h *ProfileHandler) DeletePhoto(c *gin.Context) {
	err := h.profileSvc.DeletePhoto(c.Request.Context(), middleware.UserID(c), c.Param("id"), c.Param("photoId"))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleMessage(c, "Photo deleted")
}

// SetPrimaryPhoto 设为主图
// PUT /api/profiles/:id/photos/:photoId/primary
func (h *ProfileHandler) SetPrimaryPhoto(c *gin.Context) {
	err := h.profileSvc.SetPrimaryPhoto(c.Request.Context(), middleware.UserID(c), c.Param("id"), c.Param("photoId"))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleMessage(c, "Primary photo updated")
}
