package task

import (
	"github.com/notehive/collab-note-service/internal/app"
	"github.com/notehive/collab-note-service/pkg/safe_close"

	"go.uber.org/zap"
)

// Manager 任务管理器,负责创建和管理所有任务
type Manager struct {
	scheduler *Scheduler
	logger    *zap.Logger
	app       *app.App
}

// NewManager 创建任务管理器
func NewManager(logger *zap.Logger, sc *safe_close.SafeClose, appContainer *app.App) *Manager {
	return &Manager{
		scheduler: NewScheduler(logger, sc),
		logger:    logger,
		app:       appContainer,
	}
}

// RegisterTasks 注册所有任务
func (m *Manager) RegisterTasks() error {
	pruneTask, err := NewCollaboratorPruneTask(m.app, m.logger)
	if err != nil {
		m.logger.Warn("failed to create collaborator prune task", zap.Error(err))
		return err
	}

	if pruneTask != nil {
		m.scheduler.AddTask(pruneTask)
	} else {
		m.logger.Info("collaborator prune task is disabled (cron not configured)")
	}

	return nil
}

// Start 启动所有已注册的任务
func (m *Manager) Start() {
	m.scheduler.Start()
}
