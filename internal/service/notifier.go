package service

import (
	"context"

	"github.com/notehive/collab-note-service/global"
	"github.com/notehive/collab-note-service/internal/dto"
	"github.com/notehive/collab-note-service/pkg/app"
	"github.com/notehive/collab-note-service/pkg/logger"
	"github.com/notehive/collab-note-service/pkg/workerpool"

	"go.uber.org/zap"
)

// Notifier 笔记变更通知接口
// 投递为尽力而为，失败不影响触发它的写操作
type Notifier interface {
	// NotifyNoteChanged 通知笔记订阅者，excludeUID 为触发变更的用户
	NotifyNoteChanged(noteID int64, message string, excludeUID int64)

	// NotifyUser 仅通知指定用户，用于分享时只告知被分享者
	NotifyUser(uid int64, noteID int64, message string)
}

// wsNotifier 通过 WebSocket 订阅通道异步下发通知
type wsNotifier struct {
	hub  *app.WebsocketServer
	pool *workerpool.Pool
}

// NewWebsocketNotifier 创建基于 WebSocket 的 Notifier
func NewWebsocketNotifier(hub *app.WebsocketServer, pool *workerpool.Pool) Notifier {
	return &wsNotifier{hub: hub, pool: pool}
}

func (n *wsNotifier) NotifyNoteChanged(noteID int64, message string, excludeUID int64) {
	payload := &dto.NoteNotificationDTO{NoteID: noteID, Message: message}
	err := n.pool.SubmitAsync(context.Background(), func(ctx context.Context) error {
		sent := n.hub.NotifyNote(noteID, payload, excludeUID)
		global.Logger.Debug("note notification dispatched",
			zap.Int64(logger.FieldNoteID, noteID),
			zap.Int("receivers", sent),
		)
		return nil
	})
	if err != nil {
		// 队列满或已关闭时丢弃通知，只记录日志
		global.Logger.Warn("note notification dropped",
			zap.Int64(logger.FieldNoteID, noteID),
			zap.Error(err),
		)
	}
}

func (n *wsNotifier) NotifyUser(uid int64, noteID int64, message string) {
	payload := &dto.NoteNotificationDTO{NoteID: noteID, Message: message}
	err := n.pool.SubmitAsync(context.Background(), func(ctx context.Context) error {
		sent := n.hub.NotifyUser(uid, payload)
		global.Logger.Debug("user notification dispatched",
			zap.Int64(logger.FieldUID, uid),
			zap.Int64(logger.FieldNoteID, noteID),
			zap.Int("receivers", sent),
		)
		return nil
	})
	if err != nil {
		global.Logger.Warn("user notification dropped",
			zap.Int64(logger.FieldUID, uid),
			zap.Int64(logger.FieldNoteID, noteID),
			zap.Error(err),
		)
	}
}

// nopNotifier 空实现，用于测试和未启用 WebSocket 的场景
type nopNotifier struct{}

// NewNopNotifier 创建不做任何事的 Notifier
func NewNopNotifier() Notifier {
	return nopNotifier{}
}

func (nopNotifier) NotifyNoteChanged(noteID int64, message string, excludeUID int64) {}

func (nopNotifier) NotifyUser(uid int64, noteID int64, message string) {}
