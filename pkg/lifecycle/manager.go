package lifecycle

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/multierr"

	"github.com/junbin-yang/go-vending/pkg/logger"
)

// workerExit 协程退出通知
type workerExit struct {
	name     string
	err      error
	critical bool
}

// Manager 生命周期管理器
type Manager struct {
	mu              sync.Mutex
	workers         []*Worker
	names           map[string]struct{}
	hooks           hooks
	signals         []os.Signal
	shutdownTimeout time.Duration
	rootCtx         context.Context
	log             *logger.Logger
	running         bool
	stopOnce        sync.Once
	stopCh          chan struct{}
	wg              sync.WaitGroup
}

// NewManager 创建生命周期管理器
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		names:           make(map[string]struct{}),
		signals:         []os.Signal{syscall.SIGINT, syscall.SIGTERM},
		shutdownTimeout: 30 * time.Second,
		rootCtx:         context.Background(),
		log:             logger.Default(),
		stopCh:          make(chan struct{}),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// AddWorker 添加协程，必须在 Run 之前调用
func (m *Manager) AddWorker(name string, runFunc RunFunc, opts ...WorkerOption) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return ErrAlreadyRunning
	}
	if _, exists := m.names[name]; exists {
		return ErrWorkerExists
	}

	m.names[name] = struct{}{}
	m.workers = append(m.workers, NewWorker(name, runFunc, opts...))
	return nil
}

// OnStartup 注册启动钩子
func (m *Manager) OnStartup(fn HookFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hooks.onStartup = append(m.hooks.onStartup, fn)
}

// OnWorkerExit 注册协程退出钩子
func (m *Manager) OnWorkerExit(fn WorkerHookFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hooks.onWorkerExit = append(m.hooks.onWorkerExit, fn)
}

// OnShutdown 注册退出钩子
func (m *Manager) OnShutdown(fn HookFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hooks.onShutdown = append(m.hooks.onShutdown, fn)
}

// Shutdown 手动触发退出，可重复调用
func (m *Manager) Shutdown() {
	m.stopOnce.Do(func() { close(m.stopCh) })
}

// Run 启动管理器并阻塞到退出：收到信号、关键协程退出、协程出错或调用 Shutdown
func (m *Manager) Run() error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return ErrAlreadyRunning
	}
	m.running = true
	workers := append([]*Worker(nil), m.workers...)
	m.mu.Unlock()

	ctx, cancel := context.WithCancel(m.rootCtx)
	defer cancel()

	if err := m.hooks.callStartup(ctx); err != nil {
		return err
	}

	exits := make(chan workerExit, len(workers))
	for _, w := range workers {
		m.wg.Add(1)
		go func(w *Worker) {
			defer m.wg.Done()
			err := w.Run(ctx)
			m.hooks.callWorkerExit(w.Name(), err)
			exits <- workerExit{name: w.Name(), err: err, critical: w.critical}
		}(w)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, m.signals...)
	defer signal.Stop(sigChan)

	var runErr error
	remaining := len(workers)
wait:
	for remaining > 0 || len(workers) == 0 {
		select {
		case sig := <-sigChan:
			m.log.Info("收到退出信号", logger.String("signal", sig.String()))
			break wait
		case <-m.stopCh:
			break wait
		case <-ctx.Done():
			break wait
		case exit := <-exits:
			remaining--
			if exit.err != nil && !errors.Is(exit.err, context.Canceled) {
				m.log.Error("协程异常退出", logger.String("worker", exit.name), logger.GetError(exit.err))
				runErr = exit.err
				break wait
			}
			if exit.critical {
				m.log.Info("关键协程退出", logger.String("worker", exit.name))
				break wait
			}
		}
	}

	cancel()
	return multierr.Append(runErr, m.shutdown(workers))
}

// shutdown 执行退出流程
func (m *Manager) shutdown(workers []*Worker) error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), m.shutdownTimeout)
	defer cancel()

	// 调用停止函数（LIFO顺序）
	var errs error
	for i := len(workers) - 1; i >= 0; i-- {
		errs = multierr.Append(errs, workers[i].Stop(shutdownCtx))
	}

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-shutdownCtx.Done():
		m.log.Warn("等待协程退出超时", logger.Duration("timeout", m.shutdownTimeout))
		return multierr.Append(errs, ErrShutdownTimeout)
	}

	return multierr.Append(errs, m.hooks.callShutdown(shutdownCtx))
}
