package api_router

import (
	"github.com/notehive/collab-note-service/internal/app"
	pkgapp "github.com/notehive/collab-note-service/pkg/app"
	"github.com/notehive/collab-note-service/pkg/code"

	"github.com/gin-gonic/gin"
)

// VersionHandler 版本信息 API 路由处理器
type VersionHandler struct {
	*Handler
}

// NewVersionHandler 创建 VersionHandler 实例
func NewVersionHandler(a *app.App) *VersionHandler {
	return &VersionHandler{
		Handler: NewHandler(a),
	}
}

// ServerVersion 获取服务端版本信息
// @Summary 获取服务端版本信息
// @Description 获取当前服务软件版本、Git 标签和构建时间
// @Tags 系统
// @Produce json
// @Success 200 {object} pkgapp.Res{data=app.VersionInfo} "成功"
// @Router /api/version [get]
func (h *VersionHandler) ServerVersion(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	response.ToResponse(code.Success.WithData(h.App.Version()))
}
