package driver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/jonboulle/clockwork"

	"github.com/junbin-yang/go-vending/internal/vending"
)

// ErrQuit 前端请求结束驱动循环
var ErrQuit = errors.New("driver: quit")

// Handler 前端能力接口：取输入、执行动作、显示消息
type Handler interface {
	// ObtainInput 阻塞读取下一个合法输入，非法输入由实现自行拒绝并重新读取。
	// 输入耗尽返回 io.EOF。
	ObtainInput(ctx context.Context) (vending.Input, error)
	ExecuteAction(effect vending.Effect)
	DisplayMessage(msg string)
}

// HandlerOption 前端选项
type HandlerOption func(*display)

// WithClock 指定时间戳使用的时钟
func WithClock(c clockwork.Clock) HandlerOption {
	return func(d *display) {
		d.clock = c
	}
}

// WithTimestamp 是否在消息前加时间戳
func WithTimestamp(enable bool) HandlerOption {
	return func(d *display) {
		d.timestamp = enable
	}
}

const timeLayout = "2006-01-02 15:04:05"

// display 两种前端共用的输出部分
type display struct {
	mu        sync.Mutex
	out       io.Writer
	clock     clockwork.Clock
	timestamp bool
}

func newDisplay(out io.Writer, timestamp bool, opts ...HandlerOption) *display {
	d := &display{out: out, clock: clockwork.NewRealClock(), timestamp: timestamp}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DisplayMessage 输出一条消息
func (d *display) DisplayMessage(msg string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timestamp {
		fmt.Fprintf(d.out, "%s - %s\n", d.clock.Now().Format(timeLayout), msg)
		return
	}
	fmt.Fprintln(d.out, msg)
}

// ExecuteAction 显示动作效果
func (d *display) ExecuteAction(e vending.Effect) {
	d.DisplayMessage(e.Description)
}
