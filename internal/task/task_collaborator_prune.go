package task

import (
	"context"
	"time"

	"github.com/notehive/collab-note-service/internal/app"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// collaboratorPruneCheckInterval 到期检查间隔
const collaboratorPruneCheckInterval = time.Minute

// CollaboratorPruneTask 定期清理指向已注销用户的协作者记录
type CollaboratorPruneTask struct {
	app      *app.App
	logger   *zap.Logger
	schedule cron.Schedule
	nextRun  time.Time
}

// NewCollaboratorPruneTask 按配置的 cron 表达式创建清理任务
// 表达式为空时任务不启用
func NewCollaboratorPruneTask(appContainer *app.App, logger *zap.Logger) (Task, error) {
	expr := appContainer.Config().App.CollaboratorPruneCron
	if expr == "" {
		return nil, nil
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	schedule, err := parser.Parse(expr)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid collaborator prune cron expression %q", expr)
	}

	return &CollaboratorPruneTask{
		app:      appContainer,
		logger:   logger,
		schedule: schedule,
		nextRun:  schedule.Next(time.Now()),
	}, nil
}

// Name 返回任务名称
func (t *CollaboratorPruneTask) Name() string {
	return "CollaboratorPruneTask"
}

// Run 到期时清理孤儿协作者记录, 未到期直接返回
func (t *CollaboratorPruneTask) Run(ctx context.Context) error {
	now := time.Now()
	if now.Before(t.nextRun) {
		return nil
	}
	t.nextRun = t.schedule.Next(now)

	pruned, err := t.app.NoteRepo.PruneOrphanCollaborators(ctx)
	if err != nil {
		t.logger.Error(t.Name()+" failed", zap.Error(err))
		return err
	}

	if pruned > 0 {
		t.logger.Info(t.Name()+" completed", zap.Int64("pruned", pruned))
	}
	return nil
}

// LoopInterval 返回执行间隔
func (t *CollaboratorPruneTask) LoopInterval() time.Duration {
	return collaboratorPruneCheckInterval
}

// IsStartupRun 是否立即执行一次
func (t *CollaboratorPruneTask) IsStartupRun() bool {
	return false
}
