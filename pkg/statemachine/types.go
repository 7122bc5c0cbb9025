package statemachine

// TransitionFunc 在一次状态转换提交之后调用
type TransitionFunc[S, I comparable, O any] func(from, to S, input I, output O)

// StateMachine 定义表驱动状态机的核心接口
type StateMachine[S, I comparable, O any] interface {
	// Current 返回当前状态
	Current() S

	// Trigger 输入一个事件，返回新状态与输出
	Trigger(input I) (S, O, error)

	// Can 检查当前状态下是否定义了该输入
	Can(input I) bool

	// Reset 重置状态机到初始状态
	Reset()

	// History 返回最近的转换记录
	History() []Record[S, I, O]
}
