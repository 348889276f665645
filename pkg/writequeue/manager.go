// Package writequeue 提供按笔记串行化的写队列
// 同一条笔记的协作者列表变更必须串行执行，避免并发分享互相覆盖
package writequeue

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrQueueFull 当笔记写队列已满时返回
	ErrQueueFull = errors.New("write queue is full")
	// ErrQueueClosed 当写队列管理器已关闭时返回
	ErrQueueClosed = errors.New("write queue is closed")
	// ErrWriteTimeout 当写操作超时时返回
	ErrWriteTimeout = errors.New("write operation timeout")
)

// Config 写队列配置
type Config struct {
	// QueueCapacity 每条笔记的队列容量，默认 64
	QueueCapacity int
	// WriteTimeout 单次写操作超时时间，默认 30 秒
	WriteTimeout time.Duration
	// IdleTimeout 空闲队列回收时间，默认 10 分钟
	IdleTimeout time.Duration
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		QueueCapacity: 64,
		WriteTimeout:  30 * time.Second,
		IdleTimeout:   10 * time.Minute,
	}
}

type writeOp struct {
	ctx    context.Context
	fn     func() error
	result chan error
}

// noteQueue 单条笔记的写队列
type noteQueue struct {
	noteID   int64
	ch       chan writeOp
	lastUsed atomic.Int64
	closed   atomic.Bool
	stopCh   chan struct{}
	workerWg sync.WaitGroup
}

// Manager 管理所有笔记的写队列
type Manager struct {
	config Config
	logger *zap.Logger

	queues sync.Map // map[int64]*noteQueue

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.RWMutex
	closed bool

	cleanupWg   sync.WaitGroup
	cleanupDone chan struct{}
}

// New 创建写队列管理器
// cfg 为 nil 时使用默认配置，logger 为 nil 时使用 nop 日志器
func New(cfg *Config, logger *zap.Logger) *Manager {
	if cfg == nil {
		c := DefaultConfig()
		cfg = &c
	}
	if cfg.QueueCapacity <= 0 {
		cfg.QueueCapacity = 64
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 30 * time.Second
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = 10 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager{
		config:      *cfg,
		logger:      logger,
		ctx:         ctx,
		cancel:      cancel,
		cleanupDone: make(chan struct{}),
	}

	m.cleanupWg.Add(1)
	go m.cleanupIdleQueues()

	m.logger.Info("write queue manager started",
		zap.Int("queueCapacity", cfg.QueueCapacity),
		zap.Duration("writeTimeout", cfg.WriteTimeout))

	return m
}

// Execute 执行写操作
// 同一条笔记的写操作按 FIFO 顺序串行执行
func (m *Manager) Execute(ctx context.Context, noteID int64, fn func() error) error {
	queue := m.getOrCreateQueue(noteID)
	if queue == nil {
		return ErrQueueClosed
	}

	result := make(chan error, 1)
	// 关闭检查和入队在同一把读锁内完成，与 Shutdown 的写锁互斥，
	// 保证关闭后不再有新操作入队
	m.mu.RLock()
	if m.closed {
		m.mu.RUnlock()
		return ErrQueueClosed
	}
	select {
	case queue.ch <- writeOp{ctx: ctx, fn: fn, result: result}:
		m.mu.RUnlock()
	default:
		m.mu.RUnlock()
		return ErrQueueFull
	}

	timeout := m.config.WriteTimeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}

	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(timeout):
		return ErrWriteTimeout
	case <-m.ctx.Done():
		return ErrQueueClosed
	}
}

// getOrCreateQueue 获取或创建笔记写队列（懒加载）
func (m *Manager) getOrCreateQueue(noteID int64) *noteQueue {
	if v, ok := m.queues.Load(noteID); ok {
		q := v.(*noteQueue)
		if !q.closed.Load() {
			q.lastUsed.Store(time.Now().UnixNano())
			return q
		}
	}

	m.mu.RLock()
	if m.closed {
		m.mu.RUnlock()
		return nil
	}
	m.mu.RUnlock()

	q := &noteQueue{
		noteID: noteID,
		ch:     make(chan writeOp, m.config.QueueCapacity),
		stopCh: make(chan struct{}),
	}
	q.lastUsed.Store(time.Now().UnixNano())

	actual, loaded := m.queues.LoadOrStore(noteID, q)
	if loaded {
		close(q.stopCh)
		existing := actual.(*noteQueue)
		if !existing.closed.Load() {
			existing.lastUsed.Store(time.Now().UnixNano())
			return existing
		}
		// 已存在的队列刚被回收，用新队列替换
		m.queues.Store(noteID, q)
	}

	q.workerWg.Add(1)
	go m.worker(q)

	return q
}

func (m *Manager) worker(q *noteQueue) {
	defer q.workerWg.Done()
	defer q.closed.Store(true)

	for {
		select {
		case <-m.ctx.Done():
			m.drain(q)
			return
		case <-q.stopCh:
			m.drain(q)
			return
		case op, ok := <-q.ch:
			if !ok {
				return
			}
			m.executeOp(q, op)
		}
	}
}

func (m *Manager) executeOp(q *noteQueue, op writeOp) {
	q.lastUsed.Store(time.Now().UnixNano())

	select {
	case <-op.ctx.Done():
		op.result <- op.ctx.Err()
		return
	default:
	}

	err := op.fn()

	select {
	case op.result <- err:
	default:
	}
}

// drain 排空队列中的剩余操作
func (m *Manager) drain(q *noteQueue) {
	for {
		select {
		case op, ok := <-q.ch:
			if !ok {
				return
			}
			m.executeOp(q, op)
		default:
			return
		}
	}
}

// cleanupIdleQueues 定期回收空闲队列
func (m *Manager) cleanupIdleQueues() {
	defer m.cleanupWg.Done()

	ticker := time.NewTicker(m.config.IdleTimeout / 2)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-m.cleanupDone:
			return
		case <-ticker.C:
			m.doCleanup()
		}
	}
}

func (m *Manager) doCleanup() {
	now := time.Now().UnixNano()
	idle := m.config.IdleTimeout.Nanoseconds()

	m.queues.Range(func(key, value interface{}) bool {
		q := value.(*noteQueue)
		if now-q.lastUsed.Load() > idle && len(q.ch) == 0 && !q.closed.Load() {
			q.closed.Store(true)
			close(q.stopCh)
			m.queues.Delete(key)
		}
		return true
	})
}

// QueueCount 返回当前活跃队列数量
func (m *Manager) QueueCount() int {
	count := 0
	m.queues.Range(func(_, value interface{}) bool {
		if !value.(*noteQueue).closed.Load() {
			count++
		}
		return true
	})
	return count
}

// Shutdown 关闭写队列管理器，等待所有排队操作完成
// ctx 用于控制关闭超时
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	m.mu.Unlock()

	close(m.cleanupDone)

	done := make(chan struct{})
	go func() {
		m.queues.Range(func(_, value interface{}) bool {
			q := value.(*noteQueue)
			if !q.closed.Load() {
				q.closed.Store(true)
				select {
				case <-q.stopCh:
				default:
					close(q.stopCh)
				}
			}
			return true
		})
		m.queues.Range(func(_, value interface{}) bool {
			value.(*noteQueue).workerWg.Wait()
			return true
		})
		m.cleanupWg.Wait()
		close(done)
	}()

	select {
	case <-done:
		m.logger.Info("write queue manager shutdown completed")
		m.cancel()
		return nil
	case <-ctx.Done():
		m.logger.Warn("write queue manager shutdown timeout, forcing cancellation")
		m.cancel()
		return ctx.Err()
	}
}
