// Package safe_close 提供多组件的优雅关闭协调
package safe_close

import (
	"sync"
)

// SafeClose coordinates shutdown across attached goroutines
// SafeClose 协调多个已注册 goroutine 的关闭流程
// Attach 注册的函数收到 closeSignal 后完成清理并调用 done
type SafeClose struct {
	mu          sync.Mutex
	closeSignal chan struct{}
	closed      bool
	err         error
	wg          sync.WaitGroup
}

func NewSafeClose() *SafeClose {
	return &SafeClose{
		closeSignal: make(chan struct{}),
	}
}

// Attach 注册一个受管 goroutine
// f 必须在完成清理后调用 done，并监听 closeSignal
func (s *SafeClose) Attach(f func(done func(), closeSignal <-chan struct{})) {
	s.wg.Add(1)
	var once sync.Once
	done := func() {
		once.Do(s.wg.Done)
	}
	go f(done, s.closeSignal)
}

// SendCloseSignal 发出关闭信号
// err 记录首个导致关闭的错误，可以为 nil
func (s *SafeClose) SendCloseSignal(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.err = err
	close(s.closeSignal)
}

// WaitClosed 等待所有受管 goroutine 完成，返回关闭原因
func (s *SafeClose) WaitClosed() error {
	s.wg.Wait()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// CloseSignal 返回关闭信号通道
func (s *SafeClose) CloseSignal() <-chan struct{} {
	return s.closeSignal
}
