package task

import (
	"context"
	"time"

	"github.com/notehive/collab-note-service/pkg/safe_close"

	"go.uber.org/zap"
)

// Task 定义任务接口
type Task interface {
	Name() string                  // 任务名称
	Run(ctx context.Context) error // 执行任务
	LoopInterval() time.Duration   // 执行间隔
	IsStartupRun() bool            // 是否立即执行一次
}

// Scheduler 任务调度器
type Scheduler struct {
	logger *zap.Logger
	tasks  []Task
	sc     *safe_close.SafeClose
}

// NewScheduler 创建任务调度器
func NewScheduler(logger *zap.Logger, sc *safe_close.SafeClose) *Scheduler {
	return &Scheduler{
		logger: logger,
		tasks:  make([]Task, 0),
		sc:     sc,
	}
}

// AddTask 添加任务
func (s *Scheduler) AddTask(task Task) {
	s.tasks = append(s.tasks, task)
}

// Start 启动所有任务
func (s *Scheduler) Start() {
	if len(s.tasks) == 0 {
		s.logger.Info("scheduler idle, no tasks registered")
		return
	}

	s.logger.Info("scheduler starting", zap.Int("tasks", len(s.tasks)))

	for _, task := range s.tasks {
		s.startTask(task)
	}
}

// startTask 启动单个任务
func (s *Scheduler) startTask(task Task) {

	s.sc.Attach(func(done func(), closeSignal <-chan struct{}) {
		defer done()

		// 启动时先跑一次
		if task.IsStartupRun() {
			s.logger.Info("task startup run", zap.String("task", task.Name()))
			go s.runOnce(task)
		}

		if task.LoopInterval() <= 0 {
			return
		}

		ticker := time.NewTicker(task.LoopInterval())
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.runOnce(task)
			case <-closeSignal:
				s.logger.Info("task stopped", zap.String("task", task.Name()))
				return
			}
		}
	})
}

// runOnce 执行一轮任务，panic 不会打断调度循环
func (s *Scheduler) runOnce(task Task) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("task panic",
				zap.String("task", task.Name()),
				zap.Any("panic", r),
				zap.Stack("stack"))
		}
	}()
	if err := task.Run(context.Background()); err != nil {
		s.logger.Error("task run failed",
			zap.String("task", task.Name()),
			zap.Error(err))
	}
}
