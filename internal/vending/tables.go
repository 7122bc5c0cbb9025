package vending

// transitionTable 行：当前状态；列：Insert25, Insert50, Insert100, Refund, BuyA, BuyB
//
// 金额超过 150 时封顶在 S150，找零见 actionTable。单元格逐一固定，不按价格推导。
var transitionTable = [numStates][numInputs]State{
	S000: {S025, S050, S100, S000, S000, S000},
	S025: {S050, S075, S125, S000, S025, S025},
	S050: {S075, S100, S150, S000, S050, S050},
	S075: {S100, S125, S150, S000, S075, S075},
	S100: {S125, S150, S150, S000, S100, S100},
	S125: {S150, S150, S150, S000, S125, S125},
	S150: {S150, S150, S150, S000, S000, S150},
}

// actionTable 与 transitionTable 同形
var actionTable = [numStates][numInputs]Action{
	S000: {NoAction, NoAction, NoAction, NoAction, NoAction, NoAction},
	S025: {NoAction, NoAction, NoAction, Dispense25, NoAction, NoAction},
	S050: {NoAction, NoAction, NoAction, Dispense50, NoAction, NoAction},
	S075: {NoAction, NoAction, Dispense50, Dispense75, NoAction, NoAction},
	S100: {NoAction, NoAction, Dispense50, Dispense100, NoAction, NoAction},
	S125: {NoAction, Dispense25, Dispense100, Dispense125, NoAction, NoAction},
	S150: {Dispense25, Dispense50, Dispense100, Dispense150, DispenseProductA, NoAction},
}

// NextState 转换表查询。QueryLog 或非法值保持原状态
func NextState(s State, in Input) State {
	if !s.Valid() || !in.IsMachineInput() {
		return s
	}
	return transitionTable[s][in.column()]
}

// ActionFor 动作表查询。QueryLog 或非法值返回 NoAction
func ActionFor(s State, in Input) Action {
	if !s.Valid() || !in.IsMachineInput() {
		return NoAction
	}
	return actionTable[s][in.column()]
}
