package statemachine

import (
	"fmt"
	"sync"
)

// Machine 表驱动的有限状态机实现
type Machine[S, I comparable, O any] struct {
	mu           sync.RWMutex
	table        *Table[S, I, O]
	current      S
	initial      S
	onTransition []TransitionFunc[S, I, O]
	history      *history[S, I, O]
}

// Option 状态机配置选项
type Option[S, I comparable, O any] func(*Machine[S, I, O])

// WithTransitionHook 注册转换回调
func WithTransitionHook[S, I comparable, O any](fn TransitionFunc[S, I, O]) Option[S, I, O] {
	return func(m *Machine[S, I, O]) {
		m.onTransition = append(m.onTransition, fn)
	}
}

// WithHistoryLimit 保留最近 n 条转换记录，n <= 0 时不记录
func WithHistoryLimit[S, I comparable, O any](n int) Option[S, I, O] {
	return func(m *Machine[S, I, O]) {
		m.history = newHistory[S, I, O](n)
	}
}

// NewMachine 创建状态机，状态表必须完备且包含初始状态
func NewMachine[S, I comparable, O any](table *Table[S, I, O], initial S, opts ...Option[S, I, O]) (*Machine[S, I, O], error) {
	if table == nil {
		return nil, fmt.Errorf("%w: nil table", ErrIncompleteTable)
	}
	if !table.HasState(initial) {
		return nil, fmt.Errorf("%w: initial %v", ErrStateNotFound, initial)
	}
	if err := table.Validate(); err != nil {
		return nil, err
	}

	m := &Machine[S, I, O]{
		table:   table,
		current: initial,
		initial: initial,
		history: newHistory[S, I, O](0),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Current 返回当前状态
func (m *Machine[S, I, O]) Current() S {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Can 检查当前状态下是否可以输入该事件
func (m *Machine[S, I, O]) Can(input I) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, _, ok := m.table.Lookup(m.current, input)
	return ok
}

// Trigger 输入事件进行状态转换，返回新状态与输出
func (m *Machine[S, I, O]) Trigger(input I) (S, O, error) {
	m.mu.Lock()
	from := m.current
	to, output, ok := m.table.Lookup(from, input)
	if !ok {
		m.mu.Unlock()
		var zero O
		return from, zero, fmt.Errorf("%w: (%v, %v)", ErrInvalidTransition, from, input)
	}

	// 更新状态
	m.current = to
	m.history.add(Record[S, I, O]{From: from, Input: input, To: to, Output: output})
	hooks := m.onTransition
	m.mu.Unlock()

	// 回调在锁外执行
	for _, fn := range hooks {
		fn(from, to, input, output)
	}

	return to, output, nil
}

// Reset 重置到初始状态，历史记录一并清空
func (m *Machine[S, I, O]) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = m.initial
	m.history.clear()
}

// History 返回转换历史（按发生顺序）
func (m *Machine[S, I, O]) History() []Record[S, I, O] {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.history.list()
}
