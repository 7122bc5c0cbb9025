package statemachine

import (
	"fmt"
	"strings"
)

// Transition 定义一条状态转换规则及其输出
type Transition[S, I comparable, O any] struct {
	From   S // 源状态
	Input  I // 触发输入
	To     S // 目标状态
	Output O // 转换输出
}

// transitionKey 唯一标识一个转换
type transitionKey[S, I comparable] struct {
	from  S
	input I
}

// Table 状态转换表与输出表（Mealy 机）
type Table[S, I comparable, O any] struct {
	states      []S
	inputs      []I
	stateSet    map[S]struct{}
	inputSet    map[I]struct{}
	transitions map[transitionKey[S, I]]Transition[S, I, O]
}

// NewTable 创建状态表，states 与 inputs 声明表的定义域
func NewTable[S, I comparable, O any](states []S, inputs []I) *Table[S, I, O] {
	t := &Table[S, I, O]{
		states:      append([]S(nil), states...),
		inputs:      append([]I(nil), inputs...),
		stateSet:    make(map[S]struct{}, len(states)),
		inputSet:    make(map[I]struct{}, len(inputs)),
		transitions: make(map[transitionKey[S, I]]Transition[S, I, O], len(states)*len(inputs)),
	}
	for _, s := range states {
		t.stateSet[s] = struct{}{}
	}
	for _, in := range inputs {
		t.inputSet[in] = struct{}{}
	}
	return t
}

// Set 添加一条转换规则
func (t *Table[S, I, O]) Set(from S, input I, to S, output O) error {
	if !t.HasState(from) {
		return fmt.Errorf("%w: from %v", ErrStateNotFound, from)
	}
	if !t.HasState(to) {
		return fmt.Errorf("%w: to %v", ErrStateNotFound, to)
	}
	if _, ok := t.inputSet[input]; !ok {
		return fmt.Errorf("%w: %v", ErrEventNotFound, input)
	}

	key := transitionKey[S, I]{from: from, input: input}
	if _, exists := t.transitions[key]; exists {
		return fmt.Errorf("%w: (%v, %v)", ErrDuplicateTransition, from, input)
	}

	t.transitions[key] = Transition[S, I, O]{From: from, Input: input, To: to, Output: output}
	return nil
}

// Lookup 查询 (from, input) 对应的目标状态与输出
func (t *Table[S, I, O]) Lookup(from S, input I) (S, O, bool) {
	trans, ok := t.transitions[transitionKey[S, I]{from: from, input: input}]
	return trans.To, trans.Output, ok
}

// HasState 判断状态是否属于定义域
func (t *Table[S, I, O]) HasState(s S) bool {
	_, ok := t.stateSet[s]
	return ok
}

// States 返回声明的状态列表
func (t *Table[S, I, O]) States() []S {
	return append([]S(nil), t.states...)
}

// Inputs 返回声明的输入列表
func (t *Table[S, I, O]) Inputs() []I {
	return append([]I(nil), t.inputs...)
}

// Len 返回已定义的转换数量
func (t *Table[S, I, O]) Len() int {
	return len(t.transitions)
}

// Validate 检查状态表是否完备：每个 (状态, 输入) 都必须有定义
func (t *Table[S, I, O]) Validate() error {
	var missing []string
	for _, s := range t.states {
		for _, in := range t.inputs {
			if _, ok := t.transitions[transitionKey[S, I]{from: s, input: in}]; !ok {
				missing = append(missing, fmt.Sprintf("(%v, %v)", s, in))
			}
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrIncompleteTable, strings.Join(missing, ", "))
	}
	return nil
}
