package driver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/junbin-yang/go-vending/internal/vending"
	"github.com/junbin-yang/go-vending/pkg/logger"
)

const separator = "----------------------------------------"

// Observer 驱动循环的旁路观察者（如指标）
type Observer interface {
	ObserveEffect(e vending.Effect)
	ObserveLogQuery()
}

// Driver 驱动循环：从前端取输入，交给售货机，再把动作转给解释器和前端
type Driver struct {
	machine   *vending.Machine
	interp    *vending.Interpreter
	handler   Handler
	log       *logger.Logger
	observers []Observer
}

// Option 驱动选项
type Option func(*Driver)

// WithLogger 设置日志器
func WithLogger(l *logger.Logger) Option {
	return func(d *Driver) {
		if l != nil {
			d.log = l
		}
	}
}

// WithObserver 注册观察者
func WithObserver(o Observer) Option {
	return func(d *Driver) {
		d.observers = append(d.observers, o)
	}
}

// New 创建驱动
func New(m *vending.Machine, interp *vending.Interpreter, h Handler, opts ...Option) *Driver {
	d := &Driver{
		machine: m,
		interp:  interp,
		handler: h,
		log:     logger.Default().Named("driver"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Step 执行一轮：显示余额，取一个输入并处理
func (d *Driver) Step(ctx context.Context) error {
	d.handler.DisplayMessage(separator)
	d.handler.DisplayMessage(fmt.Sprintf("You have %d cents.", d.machine.Money()))

	in, err := d.handler.ObtainInput(ctx)
	if err != nil {
		return err
	}

	if in == vending.QueryLog {
		d.log.Debug("查询出货记录", logger.Int("entries", d.interp.Log().Len()))
		for _, line := range strings.Split(d.interp.Log().Render(), "\n") {
			d.handler.DisplayMessage(line)
		}
		for _, o := range d.observers {
			o.ObserveLogQuery()
		}
		return nil
	}

	from := d.machine.Current()
	next, action := d.machine.Apply(in)
	d.handler.DisplayMessage("Next state: " + next.String())

	effect := d.interp.Execute(action)
	d.handler.ExecuteAction(effect)
	for _, o := range d.observers {
		o.ObserveEffect(effect)
	}

	d.log.Debug("状态转换",
		logger.Stringer("from", from),
		logger.Stringer("input", in),
		logger.Stringer("to", next),
		logger.Stringer("action", action),
	)
	return nil
}

// Run 循环执行直到输入耗尽、前端退出或 ctx 取消；这些情况都返回 nil
func (d *Driver) Run(ctx context.Context) error {
	d.log.Info("驱动循环启动", logger.Stringer("state", d.machine.Current()))
	for {
		if err := ctx.Err(); err != nil {
			d.log.Info("驱动循环取消")
			return nil
		}

		err := d.Step(ctx)
		switch {
		case err == nil:
			continue
		case errors.Is(err, io.EOF), errors.Is(err, ErrQuit):
			d.log.Info("输入结束，驱动循环退出", logger.Stringer("state", d.machine.Current()))
			return nil
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			d.log.Info("驱动循环取消")
			return nil
		default:
			d.log.Error("读取输入失败", logger.GetError(err))
			return fmt.Errorf("obtain input: %w", err)
		}
	}
}
