package vending

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnknownInput 原始输入无法映射到任何已定义的输入
var ErrUnknownInput = errors.New("unknown input")

// State 已投入金额，以 25 分为一档
type State int

const (
	S000 State = iota
	S025
	S050
	S075
	S100
	S125
	S150

	numStates = int(S150) + 1
)

// States 全部状态，按金额升序
var States = []State{S000, S025, S050, S075, S100, S125, S150}

var stateCents = [numStates]int{0, 25, 50, 75, 100, 125, 150}

// Valid 判断是否为已定义状态
func (s State) Valid() bool {
	return s >= S000 && s <= S150
}

// Cents 返回状态代表的金额（分）
func (s State) Cents() int {
	if !s.Valid() {
		return 0
	}
	return stateCents[s]
}

func (s State) String() string {
	if !s.Valid() {
		return "State(" + strconv.Itoa(int(s)) + ")"
	}
	return fmt.Sprintf("S%03d", stateCents[s])
}

// Money 状态到金额的投影
func Money(s State) int {
	return s.Cents()
}

// StateForCents 金额到状态的逆投影
func StateForCents(cents int) (State, bool) {
	for _, s := range States {
		if stateCents[s] == cents {
			return s, true
		}
	}
	return S000, false
}

// Input 外部输入。数值与终端菜单编号一致
type Input int

const (
	QueryLog Input = iota
	Insert25
	Insert50
	Insert100
	Refund
	BuyA
	BuyB

	numInputs = int(BuyB)
)

// MachineInputs 进入状态表的输入（不含 QueryLog）
var MachineInputs = []Input{Insert25, Insert50, Insert100, Refund, BuyA, BuyB}

var inputNames = map[Input]string{
	QueryLog:  "log",
	Insert25:  "insert25",
	Insert50:  "insert50",
	Insert100: "insert100",
	Refund:    "refund",
	BuyA:      "buy-a",
	BuyB:      "buy-b",
}

var inputAliases = map[string]Input{
	"log":       QueryLog,
	"show-log":  QueryLog,
	"insert25":  Insert25,
	"+25":       Insert25,
	"insert50":  Insert50,
	"+50":       Insert50,
	"insert100": Insert100,
	"+100":      Insert100,
	"refund":    Refund,
	"buy-a":     BuyA,
	"buya":      BuyA,
	"buy-b":     BuyB,
	"buyb":      BuyB,
}

// IsMachineInput 是否会进入状态表
func (i Input) IsMachineInput() bool {
	return i >= Insert25 && i <= BuyB
}

func (i Input) String() string {
	if name, ok := inputNames[i]; ok {
		return name
	}
	return "Input(" + strconv.Itoa(int(i)) + ")"
}

// column 输入在状态表中的列号
func (i Input) column() int {
	return int(i) - int(Insert25)
}

// ParseInput 解析原始输入：菜单编号 0-6 或输入名（不区分大小写）
func ParseInput(raw string) (Input, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if in, ok := inputAliases[s]; ok {
		return in, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n >= int(QueryLog) && n <= int(BuyB) {
			return Input(n), nil
		}
		return QueryLog, fmt.Errorf("%w: %q (expected 0-%d)", ErrUnknownInput, raw, numInputs)
	}
	return QueryLog, fmt.Errorf("%w: %q", ErrUnknownInput, raw)
}

// Action 状态转换的输出
type Action int

const (
	NoAction Action = iota
	Dispense25
	Dispense50
	Dispense75
	Dispense100
	Dispense125
	Dispense150
	DispenseProductA
	DispenseProductB
)

// Actions 全部动作
var Actions = []Action{
	NoAction, Dispense25, Dispense50, Dispense75, Dispense100,
	Dispense125, Dispense150, DispenseProductA, DispenseProductB,
}

var actionNames = [...]string{
	NoAction:         "no-action",
	Dispense25:       "dispense-25",
	Dispense50:       "dispense-50",
	Dispense75:       "dispense-75",
	Dispense100:      "dispense-100",
	Dispense125:      "dispense-125",
	Dispense150:      "dispense-150",
	DispenseProductA: "dispense-product-a",
	DispenseProductB: "dispense-product-b",
}

func (a Action) String() string {
	if a < NoAction || int(a) >= len(actionNames) {
		return "Action(" + strconv.Itoa(int(a)) + ")"
	}
	return actionNames[a]
}

// DispensedCents 找零动作退还的金额，其它动作为 0
func (a Action) DispensedCents() int {
	if a >= Dispense25 && a <= Dispense150 {
		return int(a) * 25
	}
	return 0
}

// IsProduct 是否为出货动作
func (a Action) IsProduct() bool {
	return a == DispenseProductA || a == DispenseProductB
}
