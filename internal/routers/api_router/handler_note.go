package api_router

import (
	"github.com/notehive/collab-note-service/internal/app"
	"github.com/notehive/collab-note-service/internal/dto"
	pkgapp "github.com/notehive/collab-note-service/pkg/app"
	"github.com/notehive/collab-note-service/pkg/code"
	"github.com/notehive/collab-note-service/pkg/convert"
	apperrors "github.com/notehive/collab-note-service/pkg/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NoteHandler 笔记 API 路由处理器
// 使用 App Container 注入依赖，支持统一错误处理
type NoteHandler struct {
	*Handler
}

// NewNoteHandler 创建 NoteHandler 实例
func NewNoteHandler(a *app.App, wss *pkgapp.WebsocketServer) *NoteHandler {
	return &NoteHandler{
		Handler: NewHandlerWithWSS(a, wss),
	}
}

// noteID 从路径参数解析笔记 ID
func (h *NoteHandler) noteID(c *gin.Context) (int64, bool) {
	id := convert.StrTo(c.Param("id")).MustInt64()
	if id <= 0 {
		pkgapp.NewResponse(c).ToResponse(code.ErrorInvalidParams.WithDetails("invalid note id"))
		return 0, false
	}
	return id, true
}

// List 获取笔记列表
// @Summary 获取笔记列表
// @Description 分页获取当前用户拥有或参与协作的笔记
// @Tags 笔记
// @Security UserAuthToken
// @Produce json
// @Param params query dto.NoteListRequest true "查询参数"
// @Success 200 {object} pkgapp.Res{data=pkgapp.ListRes} "成功"
// @Router /api/notes [get]
func (h *NoteHandler) List(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.NoteListRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("NoteHandler.List.BindAndValid err", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()))
		return
	}

	uid := pkgapp.GetUID(c)
	if uid == 0 {
		response.ToResponse(code.ErrorInvalidUserAuthToken)
		return
	}

	ctx := c.Request.Context()
	list, pagination, err := h.App.NoteService.List(ctx, uid, params)
	if err != nil {
		h.logError(ctx, "NoteHandler.List", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponseList(code.Success, list, *pagination)
}

// Get 获取笔记详情
// @Summary 获取笔记详情
// @Description 获取单条笔记的内容、元数据和当前用户的权限信息
// @Tags 笔记
// @Security UserAuthToken
// @Produce json
// @Success 200 {object} pkgapp.Res{data=dto.NoteDTO} "成功"
// @Router /api/notes/{id} [get]
func (h *NoteHandler) Get(c *gin.Context) {
	response := pkgapp.NewResponse(c)

	id, ok := h.noteID(c)
	if !ok {
		return
	}
	uid := pkgapp.GetUID(c)
	if uid == 0 {
		response.ToResponse(code.ErrorInvalidUserAuthToken)
		return
	}

	ctx := c.Request.Context()
	note, err := h.App.NoteService.Get(ctx, uid, id)
	if err != nil {
		h.logError(ctx, "NoteHandler.Get", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success.WithData(note))
}

// Create 创建笔记
// @Summary 创建笔记
// @Description 创建一条新笔记，当前用户成为所有者
// @Tags 笔记
// @Security UserAuthToken
// @Accept json
// @Produce json
// @Param params body dto.NoteCreateRequest true "创建参数"
// @Success 201 {object} pkgapp.Res{data=dto.NoteDTO} "创建成功"
// @Router /api/notes [post]
func (h *NoteHandler) Create(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.NoteCreateRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("NoteHandler.Create.BindAndValid err", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()))
		return
	}

	uid := pkgapp.GetUID(c)
	if uid == 0 {
		response.ToResponse(code.ErrorInvalidUserAuthToken)
		return
	}

	ctx := c.Request.Context()
	note, err := h.App.NoteService.Create(ctx, uid, params)
	if err != nil {
		h.logError(ctx, "NoteHandler.Create", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.SuccessCreated.WithData(note))
}

// Update 更新笔记
// @Summary 更新笔记
// @Description 部分更新笔记的标题和内容，需要写权限
// @Tags 笔记
// @Security UserAuthToken
// @Accept json
// @Produce json
// @Param params body dto.NoteUpdateRequest true "更新参数"
// @Success 200 {object} pkgapp.Res{data=dto.NoteDTO} "成功"
// @Router /api/notes/{id} [patch]
func (h *NoteHandler) Update(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.NoteUpdateRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("NoteHandler.Update.BindAndValid err", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()))
		return
	}

	id, ok := h.noteID(c)
	if !ok {
		return
	}
	uid := pkgapp.GetUID(c)
	if uid == 0 {
		response.ToResponse(code.ErrorInvalidUserAuthToken)
		return
	}

	ctx := c.Request.Context()
	note, err := h.App.NoteService.Update(ctx, uid, id, params)
	if err != nil {
		h.logError(ctx, "NoteHandler.Update", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success.WithData(note))
}

// Delete 删除笔记
// @Summary 删除笔记
// @Description 删除笔记及其全部协作关系，仅所有者可操作
// @Tags 笔记
// @Security UserAuthToken
// @Produce json
// @Success 200 {object} pkgapp.Res "成功"
// @Router /api/notes/{id} [delete]
func (h *NoteHandler) Delete(c *gin.Context) {
	response := pkgapp.NewResponse(c)

	id, ok := h.noteID(c)
	if !ok {
		return
	}
	uid := pkgapp.GetUID(c)
	if uid == 0 {
		response.ToResponse(code.ErrorInvalidUserAuthToken)
		return
	}

	ctx := c.Request.Context()
	if err := h.App.NoteService.Delete(ctx, uid, id); err != nil {
		h.logError(ctx, "NoteHandler.Delete", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success)
}

// Share 分享笔记
// @Summary 分享笔记
// @Description 将笔记分享给其他用户并授予读或写权限，仅所有者可操作，重复分享仅更新权限
// @Tags 笔记
// @Security UserAuthToken
// @Accept json
// @Produce json
// @Param params body dto.NoteShareRequest true "分享参数"
// @Success 200 {object} pkgapp.Res{data=dto.NoteDTO} "成功"
// @Router /api/notes/{id}/share [post]
func (h *NoteHandler) Share(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.NoteShareRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("NoteHandler.Share.BindAndValid err", zap.Error(errs))
		response.ToResponse(code.ErrorNotePermissionInvalid.WithDetails(errs.ErrorsToString()))
		return
	}

	id, ok := h.noteID(c)
	if !ok {
		return
	}
	uid := pkgapp.GetUID(c)
	if uid == 0 {
		response.ToResponse(code.ErrorInvalidUserAuthToken)
		return
	}

	ctx := c.Request.Context()
	note, err := h.App.NoteService.Share(ctx, uid, id, params)
	if err != nil {
		h.logError(ctx, "NoteHandler.Share", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success.WithData(note))
}

// Archive 修改归档状态
// @Summary 归档或取消归档笔记
// @Description 切换笔记的归档状态，仅所有者可操作
// @Tags 笔记
// @Security UserAuthToken
// @Accept json
// @Produce json
// @Param params body dto.NoteArchiveRequest true "归档参数"
// @Success 200 {object} pkgapp.Res{data=dto.NoteDTO} "成功"
// @Router /api/notes/{id}/archive [put]
func (h *NoteHandler) Archive(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.NoteArchiveRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("NoteHandler.Archive.BindAndValid err", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()))
		return
	}

	id, ok := h.noteID(c)
	if !ok {
		return
	}
	uid := pkgapp.GetUID(c)
	if uid == 0 {
		response.ToResponse(code.ErrorInvalidUserAuthToken)
		return
	}

	ctx := c.Request.Context()
	note, err := h.App.NoteService.SetArchived(ctx, uid, id, params.IsArchived)
	if err != nil {
		h.logError(ctx, "NoteHandler.Archive", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success.WithData(note))
}
