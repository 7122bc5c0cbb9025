package lifecycle

import (
	"context"

	"go.uber.org/multierr"
)

// HookFunc 钩子函数
type HookFunc func(ctx context.Context) error

// WorkerHookFunc 协程钩子函数
type WorkerHookFunc func(name string, err error)

// hooks 钩子集合
type hooks struct {
	onStartup    []HookFunc
	onWorkerExit []WorkerHookFunc
	onShutdown   []HookFunc
}

// callStartup 启动钩子遇错即停
func (h *hooks) callStartup(ctx context.Context) error {
	for _, fn := range h.onStartup {
		if err := fn(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (h *hooks) callWorkerExit(name string, err error) {
	for _, fn := range h.onWorkerExit {
		fn(name, err)
	}
}

// callShutdown 退出钩子全部执行，错误合并返回
func (h *hooks) callShutdown(ctx context.Context) error {
	var errs error
	for _, fn := range h.onShutdown {
		errs = multierr.Append(errs, fn(ctx))
	}
	return errs
}
