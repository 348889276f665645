// Package app 提供应用容器，封装所有依赖和服务
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/notehive/collab-note-service/internal/dao"
	"github.com/notehive/collab-note-service/internal/domain"
	"github.com/notehive/collab-note-service/internal/service"
	pkgapp "github.com/notehive/collab-note-service/pkg/app"
	"github.com/notehive/collab-note-service/pkg/workerpool"
	"github.com/notehive/collab-note-service/pkg/writequeue"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// VersionInfo 服务版本信息
type VersionInfo struct {
	Version   string `json:"version"`
	GitTag    string `json:"gitTag"`
	BuildTime string `json:"buildTime"`
}

// swappableNotifier 可替换的通知器
// App 先于 WebSocket Hub 创建，Hub 就绪后通过 SetNotifier 注入真实实现
type swappableNotifier struct {
	mu    sync.RWMutex
	inner service.Notifier
}

func (n *swappableNotifier) NotifyNoteChanged(noteID int64, message string, excludeUID int64) {
	n.mu.RLock()
	inner := n.inner
	n.mu.RUnlock()
	inner.NotifyNoteChanged(noteID, message, excludeUID)
}

func (n *swappableNotifier) NotifyUser(uid int64, noteID int64, message string) {
	n.mu.RLock()
	inner := n.inner
	n.mu.RUnlock()
	inner.NotifyUser(uid, noteID, message)
}

func (n *swappableNotifier) set(inner service.Notifier) {
	n.mu.Lock()
	n.inner = inner
	n.mu.Unlock()
}

// App 应用容器，封装所有依赖和服务
type App struct {
	// 基础设施（注入的依赖）
	config *AppConfig
	logger *zap.Logger
	DB     *gorm.DB
	Dao    *dao.Dao

	// 并发控制组件
	workerPool    *workerpool.Pool
	writeQueueMgr *writequeue.Manager
	notifier      *swappableNotifier

	// Repository 层
	NoteRepo domain.NoteRepository
	UserRepo domain.UserRepository

	// Service 层
	NoteService service.NoteService
	UserService service.UserService

	// 基础设施组件
	TokenManager pkgapp.TokenManager

	// StartTime 服务启动时间
	StartTime time.Time
}

// NewApp 创建应用容器实例
// 初始化所有依赖并进行依赖注入
func NewApp(cfg *AppConfig, logger *zap.Logger, db *gorm.DB) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if db == nil {
		return nil, fmt.Errorf("database is required")
	}

	a := &App{
		config:    cfg,
		logger:    logger,
		DB:        db,
		StartTime: time.Now(),
		notifier:  &swappableNotifier{inner: service.NewNopNotifier()},
	}

	// 初始化 Worker Pool
	wpConfig := cfg.GetWorkerPoolConfig()
	a.workerPool = workerpool.New(&wpConfig, logger)

	// 初始化 Write Queue Manager
	wqConfig := cfg.GetWriteQueueConfig()
	a.writeQueueMgr = writequeue.New(&wqConfig, logger)

	// 初始化 DAO
	a.Dao = dao.New(db)

	// 初始化 TokenManager
	a.TokenManager = pkgapp.NewTokenManager(pkgapp.TokenConfig{
		SecretKey: cfg.Security.AuthTokenKey,
		Issuer:    "collab-note-service",
		Expiry:    cfg.GetTokenExpiry(),
	})

	// 初始化 Repository 层
	a.NoteRepo = dao.NewNoteRepository(a.Dao)
	a.UserRepo = dao.NewUserRepository(a.Dao)

	// 创建 ServiceConfig（从 AppConfig 提取 Service 层需要的配置）
	svcConfig := &service.ServiceConfig{
		User: service.UserServiceConfig{
			RegisterIsEnable: cfg.User.RegisterIsEnable,
		},
		Note: service.NoteServiceConfig{
			DefaultPageSize: cfg.App.DefaultPageSize,
			MaxPageSize:     cfg.App.MaxPageSize,
		},
	}

	// 初始化 Service 层（依赖注入）
	a.NoteService = service.NewNoteService(a.NoteRepo, a.UserRepo, a.notifier, a.writeQueueMgr, svcConfig)
	a.UserService = service.NewUserService(a.UserRepo, a.TokenManager, svcConfig)

	logger.Info("App container initialized successfully",
		zap.Int("workerPoolMaxWorkers", wpConfig.MaxWorkers),
		zap.Int("writeQueueCapacity", wqConfig.QueueCapacity))

	return a, nil
}

// SetNotifier 注入笔记变更通知实现
func (a *App) SetNotifier(n service.Notifier) {
	a.notifier.set(n)
}

// WorkerPool 获取 Worker Pool
func (a *App) WorkerPool() *workerpool.Pool {
	return a.workerPool
}

// WriteQueue 获取写队列管理器
func (a *App) WriteQueue() *writequeue.Manager {
	return a.writeQueueMgr
}

// Close 释放应用容器持有的资源
func (a *App) Close() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.writeQueueMgr.Shutdown(shutdownCtx); err != nil {
		a.logger.Warn("write queue shutdown", zap.Error(err))
	}
	if err := a.workerPool.Shutdown(shutdownCtx); err != nil {
		a.logger.Warn("worker pool shutdown", zap.Error(err))
	}

	if a.DB != nil {
		sqlDB, err := a.DB.DB()
		if err != nil {
			return fmt.Errorf("failed to get sql.DB: %w", err)
		}
		if err := sqlDB.Close(); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
		a.logger.Info("Database connection closed")
	}
	return nil
}

// Config 获取应用配置
func (a *App) Config() *AppConfig {
	return a.config
}

// Logger 获取日志器
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// SubmitTask 提交任务到 Worker Pool
func (a *App) SubmitTask(ctx context.Context, task func(context.Context) error) error {
	return a.workerPool.Submit(ctx, task)
}

// SubmitTaskAsync 异步提交任务到 Worker Pool（不等待结果）
func (a *App) SubmitTaskAsync(ctx context.Context, task func(context.Context) error) error {
	return a.workerPool.SubmitAsync(ctx, task)
}

// Version 获取版本信息
func (a *App) Version() VersionInfo {
	return VersionInfo{
		Version:   Version,
		GitTag:    GitTag,
		BuildTime: BuildTime,
	}
}

// GetAuthTokenKey 获取 Token 密钥
func (a *App) GetAuthTokenKey() string {
	return a.config.Security.AuthTokenKey
}

// IsProductionMode 是否为生产模式
func (a *App) IsProductionMode() bool {
	return a.config.Log.Production
}
