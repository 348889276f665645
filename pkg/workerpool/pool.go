// Package workerpool 提供受限并发的后台任务池
// 用于限制并发 goroutine 数量，通知分发等后台工作都经过这里
package workerpool

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

var (
	// ErrPoolFull 当任务队列已满时返回
	ErrPoolFull = errors.New("worker pool queue is full")
	// ErrPoolClosed 当任务池已关闭时返回
	ErrPoolClosed = errors.New("worker pool is closed")
)

// Config 任务池配置
type Config struct {
	// MaxWorkers 最大并发 worker 数量，默认 32
	MaxWorkers int
	// QueueSize 任务队列大小，默认 1024
	QueueSize int
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		MaxWorkers: 32,
		QueueSize:  1024,
	}
}

type task struct {
	ctx  context.Context
	fn   func(context.Context) error
	done chan error
}

// Pool 管理 goroutine 生命周期的任务池
type Pool struct {
	config Config
	logger *zap.Logger

	taskCh      chan task
	workerWg    sync.WaitGroup
	activeCount atomic.Int64

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.RWMutex
	closed bool
}

// New 创建任务池并启动全部 worker
// cfg 为 nil 时使用默认配置，logger 为 nil 时使用 nop 日志器
func New(cfg *Config, logger *zap.Logger) *Pool {
	if cfg == nil {
		c := DefaultConfig()
		cfg = &c
	}
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = 32
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1024
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		config: *cfg,
		logger: logger,
		taskCh: make(chan task, cfg.QueueSize),
		ctx:    ctx,
		cancel: cancel,
	}

	for i := 0; i < cfg.MaxWorkers; i++ {
		p.workerWg.Add(1)
		go p.worker()
	}

	p.logger.Info("worker pool started",
		zap.Int("maxWorkers", cfg.MaxWorkers),
		zap.Int("queueSize", cfg.QueueSize))

	return p
}

func (p *Pool) worker() {
	defer p.workerWg.Done()
	for {
		select {
		case <-p.ctx.Done():
			return
		case t, ok := <-p.taskCh:
			if !ok {
				return
			}
			p.run(t)
		}
	}
}

func (p *Pool) run(t task) {
	p.activeCount.Add(1)
	defer p.activeCount.Add(-1)

	var err error
	select {
	case <-t.ctx.Done():
		err = t.ctx.Err()
	default:
		err = t.fn(t.ctx)
	}

	if t.done != nil {
		select {
		case t.done <- err:
		default:
		}
	}
}

// enqueue 入队一个任务
// 关闭检查和入队在同一把读锁内完成，Shutdown 的写锁保证
// 已获得读锁的入队先于 close(taskCh) 发生，不会向已关闭通道发送
func (p *Pool) enqueue(t task) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrPoolClosed
	}
	select {
	case p.taskCh <- t:
		return nil
	default:
		return ErrPoolFull
	}
}

// Submit 提交任务并等待完成
func (p *Pool) Submit(ctx context.Context, fn func(context.Context) error) error {
	done := make(chan error, 1)
	if err := p.enqueue(task{ctx: ctx, fn: fn, done: done}); err != nil {
		return err
	}

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-p.ctx.Done():
		return ErrPoolClosed
	}
}

// SubmitAsync 异步提交任务，不等待结果
// 池满或已关闭时返回错误，任务自身的失败只能由任务记录日志
func (p *Pool) SubmitAsync(ctx context.Context, fn func(context.Context) error) error {
	return p.enqueue(task{ctx: ctx, fn: fn})
}

// ActiveCount 返回当前执行中的任务数
func (p *Pool) ActiveCount() int64 {
	return p.activeCount.Load()
}

// QueuedCount 返回队列中等待的任务数
func (p *Pool) QueuedCount() int {
	return len(p.taskCh)
}

// Shutdown 关闭任务池并等待在执行的任务完成
// ctx 超时后强制取消剩余任务
func (p *Pool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	close(p.taskCh)

	done := make(chan struct{})
	go func() {
		p.workerWg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("worker pool shutdown completed")
		return nil
	case <-ctx.Done():
		p.cancel()
		p.logger.Warn("worker pool shutdown timeout, forcing cancellation")
		return ctx.Err()
	}
}
