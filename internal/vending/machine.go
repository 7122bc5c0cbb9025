package vending

import (
	"github.com/junbin-yang/go-vending/pkg/statemachine"
)

// Step 一次已提交的状态转换
type Step = statemachine.Record[State, Input, Action]

// StepFunc 转换提交后的观察者
type StepFunc func(Step)

// machineTable 由字面量表格装载，构造时完成完备性校验
var machineTable = mustBuildTable()

func buildTable() (*statemachine.Table[State, Input, Action], error) {
	table := statemachine.NewTable[State, Input, Action](States, MachineInputs)
	for _, s := range table.States() {
		for _, in := range table.Inputs() {
			if err := table.Set(s, in, transitionTable[s][in.column()], actionTable[s][in.column()]); err != nil {
				return nil, err
			}
		}
	}
	return table, table.Validate()
}

func mustBuildTable() *statemachine.Table[State, Input, Action] {
	table, err := buildTable()
	if err != nil {
		panic("vending: " + err.Error())
	}
	return table
}

// Machine 售货机状态机，初始状态 S000
type Machine struct {
	fsm statemachine.StateMachine[State, Input, Action]
}

// Option 售货机选项
type Option func(*options)

type options struct {
	hooks        []StepFunc
	historyLimit int
}

// WithStepHook 注册转换观察者，每次 Apply 提交后调用
func WithStepHook(fn StepFunc) Option {
	return func(o *options) {
		o.hooks = append(o.hooks, fn)
	}
}

// WithHistoryLimit 保留最近 n 次转换
func WithHistoryLimit(n int) Option {
	return func(o *options) {
		o.historyLimit = n
	}
}

// NewMachine 创建售货机
func NewMachine(opts ...Option) *Machine {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	fsmOpts := []statemachine.Option[State, Input, Action]{
		statemachine.WithHistoryLimit[State, Input, Action](o.historyLimit),
	}
	for _, hook := range o.hooks {
		fsmOpts = append(fsmOpts, statemachine.WithTransitionHook[State, Input, Action](func(from, to State, in Input, act Action) {
			hook(Step{From: from, Input: in, To: to, Output: act})
		}))
	}

	fsm, err := statemachine.NewMachine(machineTable, S000, fsmOpts...)
	if err != nil {
		// machineTable 已校验过，不会走到这里
		panic("vending: " + err.Error())
	}
	return &Machine{fsm: fsm}
}

// Apply 输入一个事件，提交新状态并返回 (新状态, 动作)。
// QueryLog 不属于状态表，原样返回当前状态与 NoAction。
func (m *Machine) Apply(in Input) (State, Action) {
	if !m.fsm.Can(in) {
		return m.fsm.Current(), NoAction
	}
	next, action, err := m.fsm.Trigger(in)
	if err != nil {
		return m.fsm.Current(), NoAction
	}
	return next, action
}

// Current 当前状态
func (m *Machine) Current() State {
	return m.fsm.Current()
}

// Money 当前已投金额（分）
func (m *Machine) Money() int {
	return Money(m.fsm.Current())
}

// Reset 回到 S000，不退款
func (m *Machine) Reset() {
	m.fsm.Reset()
}

// History 最近的转换记录（按发生顺序）
func (m *Machine) History() []Step {
	return m.fsm.History()
}
