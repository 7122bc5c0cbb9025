package lifecycle

import "context"

// RunFunc 协程运行函数
type RunFunc func(ctx context.Context) error

// StopFunc 协程停止函数
type StopFunc func(ctx context.Context) error

// Worker 协程抽象
type Worker struct {
	name     string
	runFunc  RunFunc
	stopFunc StopFunc
	critical bool
}

// WorkerOption 协程配置选项
type WorkerOption func(*Worker)

// NewWorker 创建新的协程
func NewWorker(name string, runFunc RunFunc, opts ...WorkerOption) *Worker {
	w := &Worker{
		name:    name,
		runFunc: runFunc,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// WithStopFunc 设置停止函数
func WithStopFunc(stopFunc StopFunc) WorkerOption {
	return func(w *Worker) {
		w.stopFunc = stopFunc
	}
}

// Critical 关键协程：无论正常返回还是出错，退出即触发整个管理器退出
func Critical() WorkerOption {
	return func(w *Worker) {
		w.critical = true
	}
}

// Name 返回协程名称
func (w *Worker) Name() string {
	return w.name
}

// Run 运行协程
func (w *Worker) Run(ctx context.Context) error {
	return w.runFunc(ctx)
}

// Stop 停止协程
func (w *Worker) Stop(ctx context.Context) error {
	if w.stopFunc != nil {
		return w.stopFunc(ctx)
	}
	return nil
}
