package websocket_router

import (
	"errors"

	"github.com/notehive/collab-note-service/internal/app"
	"github.com/notehive/collab-note-service/internal/dto"
	pkgapp "github.com/notehive/collab-note-service/pkg/app"
	"github.com/notehive/collab-note-service/pkg/code"

	"go.uber.org/zap"
)

// NoteWSHandler WebSocket 笔记处理器
// 处理笔记变更通知的订阅和退订
type NoteWSHandler struct {
	*WSHandler
	WSS *pkgapp.WebsocketServer
}

// NewNoteWSHandler 创建 NoteWSHandler 实例
func NewNoteWSHandler(a *app.App, wss *pkgapp.WebsocketServer) *NoteWSHandler {
	return &NoteWSHandler{
		WSHandler: NewWSHandler(a),
		WSS:       wss,
	}
}

// NoteWatch 订阅若干笔记的变更通知
// 仅允许订阅当前用户可读取的笔记，无权限的 ID 被静默跳过
func (h *NoteWSHandler) NoteWatch(c *pkgapp.WebsocketClient, msg *pkgapp.WebSocketMessage) {
	params := &dto.NoteWatchRequest{}

	valid, errs := c.BindAndValid(msg.Data, params)
	if !valid {
		h.respondError(c, code.ErrorInvalidParams, errors.New(errs.ErrorsToString()), "websocket_router.note.NoteWatch.BindAndValid")
		return
	}

	ctx := c.Ctx.Request.Context()
	allowed := make([]int64, 0, len(params.NoteIDs))
	for _, noteID := range params.NoteIDs {
		if h.App.NoteService.CanAccess(ctx, c.User.UID, noteID) {
			allowed = append(allowed, noteID)
		}
	}

	h.WSS.Watch(c, allowed)
	h.logInfo(c, "websocket_router.note.NoteWatch",
		zap.Int64("uid", c.User.UID),
		zap.Int64s("noteIds", allowed),
	)
	c.ToResponse(code.Success.WithData(allowed), "NoteWatch")
}

// NoteUnwatch 退订笔记变更通知
func (h *NoteWSHandler) NoteUnwatch(c *pkgapp.WebsocketClient, msg *pkgapp.WebSocketMessage) {
	params := &dto.NoteWatchRequest{}

	valid, errs := c.BindAndValid(msg.Data, params)
	if !valid {
		h.respondError(c, code.ErrorInvalidParams, errors.New(errs.ErrorsToString()), "websocket_router.note.NoteUnwatch.BindAndValid")
		return
	}

	h.WSS.Unwatch(c, params.NoteIDs)
	c.ToResponse(code.Success, "NoteUnwatch")
}

// UserInfo 校验 Token 对应的用户是否仍然存在
// 注册给 WebsocketServer 的 Authorization 流程使用
func (h *NoteWSHandler) UserInfo(c *pkgapp.WebsocketClient, uid int64) error {
	return h.App.UserService.Exists(c.Ctx.Request.Context(), uid)
}
