package api_router

import (
	"github.com/notehive/collab-note-service/internal/app"
	"github.com/notehive/collab-note-service/internal/dto"
	pkgapp "github.com/notehive/collab-note-service/pkg/app"
	"github.com/notehive/collab-note-service/pkg/code"
	apperrors "github.com/notehive/collab-note-service/pkg/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserHandler 用户 API 路由处理器
type UserHandler struct {
	*Handler
}

// NewUserHandler 创建 UserHandler 实例
func NewUserHandler(a *app.App) *UserHandler {
	return &UserHandler{Handler: NewHandler(a)}
}

// Register 用户注册
// @Summary 用户注册
// @Description 使用邮箱、昵称和密码注册新用户
// @Tags 用户
// @Accept json
// @Produce json
// @Param params body dto.UserCreateRequest true "注册参数"
// @Success 201 {object} pkgapp.Res{data=dto.UserDTO} "创建成功"
// @Router /api/user/register [post]
func (h *UserHandler) Register(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.UserCreateRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("UserHandler.Register.BindAndValid err", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()))
		return
	}

	ctx := c.Request.Context()
	user, err := h.App.UserService.Register(ctx, params)
	if err != nil {
		h.logError(ctx, "UserHandler.Register", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.SuccessCreated.WithData(user))
}

// Login 用户登录
// @Summary 用户登录
// @Description 邮箱密码登录，成功返回认证 Token
// @Tags 用户
// @Accept json
// @Produce json
// @Param params body dto.UserLoginRequest true "登录参数"
// @Success 200 {object} pkgapp.Res{data=dto.UserDTO} "成功"
// @Router /api/user/login [post]
func (h *UserHandler) Login(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.UserLoginRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("UserHandler.Login.BindAndValid err", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()))
		return
	}

	ctx := c.Request.Context()
	user, err := h.App.UserService.Login(ctx, params, pkgapp.GetRequestIP(c))
	if err != nil {
		h.logError(ctx, "UserHandler.Login", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success.WithData(user))
}

// UserInfo 获取当前用户信息
// @Summary 获取当前用户信息
// @Tags 用户
// @Security UserAuthToken
// @Produce json
// @Success 200 {object} pkgapp.Res{data=dto.UserDTO} "成功"
// @Router /api/user/info [get]
func (h *UserHandler) UserInfo(c *gin.Context) {
	response := pkgapp.NewResponse(c)

	uid := pkgapp.GetUID(c)
	if uid == 0 {
		response.ToResponse(code.ErrorInvalidUserAuthToken)
		return
	}

	ctx := c.Request.Context()
	user, err := h.App.UserService.GetInfo(ctx, uid)
	if err != nil {
		h.logError(ctx, "UserHandler.UserInfo", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success.WithData(user))
}

// UserChangePassword 修改密码
// @Summary 修改当前用户密码
// @Tags 用户
// @Security UserAuthToken
// @Accept json
// @Produce json
// @Param params body dto.UserChangePasswordRequest true "修改密码参数"
// @Success 200 {object} pkgapp.Res "成功"
// @Router /api/user/change_password [post]
func (h *UserHandler) UserChangePassword(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.UserChangePasswordRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("UserHandler.UserChangePassword.BindAndValid err", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()))
		return
	}

	uid := pkgapp.GetUID(c)
	if uid == 0 {
		response.ToResponse(code.ErrorInvalidUserAuthToken)
		return
	}

	ctx := c.Request.Context()
	if err := h.App.UserService.ChangePassword(ctx, uid, params); err != nil {
		h.logError(ctx, "UserHandler.UserChangePassword", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success)
}
