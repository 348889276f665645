// Package api_router 提供 HTTP API 路由处理器
package api_router

import (
	"context"

	"github.com/notehive/collab-note-service/internal/app"
	"github.com/notehive/collab-note-service/internal/middleware"
	pkgapp "github.com/notehive/collab-note-service/pkg/app"

	"go.uber.org/zap"
)

// Handler 基础 Handler 结构体，封装 App Container
// 所有 API Handler 都应该嵌入此结构体以获得依赖注入能力
type Handler struct {
	App *app.App
	WSS *pkgapp.WebsocketServer
}

// NewHandler 创建基础 Handler 实例
func NewHandler(a *app.App) *Handler {
	return &Handler{App: a}
}

// NewHandlerWithWSS 创建带 WebSocket 服务的 Handler 实例
func NewHandlerWithWSS(a *app.App, wss *pkgapp.WebsocketServer) *Handler {
	return &Handler{App: a, WSS: wss}
}

// logError 记录业务错误，附带 Trace ID
func (h *Handler) logError(ctx context.Context, method string, err error) {
	h.App.Logger().Error(method,
		zap.String("traceId", middleware.GetTraceID(ctx)),
		zap.Error(err),
	)
}
