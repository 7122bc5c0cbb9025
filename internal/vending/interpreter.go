package vending

import "fmt"

const (
	DefaultProductA = "Meet"
	DefaultProductB = "Etirps"
)

// Effect 一个动作对外可见的效果
type Effect struct {
	Action         Action
	DispensedCents int    // 退还的金额，无找零时为 0
	Product        string // 出货商品名，未出货时为空
	Description    string
}

// Recorded 是否写入了出货记录
func (e Effect) Recorded() bool {
	return e.Product != ""
}

// Interpreter 把抽象动作解释为找零/出货效果；只写出货记录，不触碰售货机状态
type Interpreter struct {
	log      *PurchaseLog
	productA string
	productB string
}

// InterpreterOption 解释器选项
type InterpreterOption func(*Interpreter)

// WithProductNames 设置 A/B 两种商品的名称，空串保留默认值
func WithProductNames(a, b string) InterpreterOption {
	return func(i *Interpreter) {
		if a != "" {
			i.productA = a
		}
		if b != "" {
			i.productB = b
		}
	}
}

// NewInterpreter 创建解释器，log 为空时新建一份
func NewInterpreter(log *PurchaseLog, opts ...InterpreterOption) *Interpreter {
	if log == nil {
		log = NewPurchaseLog()
	}
	i := &Interpreter{log: log, productA: DefaultProductA, productB: DefaultProductB}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Log 返回出货记录
func (i *Interpreter) Log() *PurchaseLog {
	return i.log
}

// ProductName 商品动作对应的商品名
func (i *Interpreter) ProductName(a Action) string {
	switch a {
	case DispenseProductA:
		return i.productA
	case DispenseProductB:
		return i.productB
	}
	return ""
}

// Describe 计算动作的效果，不写出货记录
func (i *Interpreter) Describe(a Action) Effect {
	e := Effect{Action: a}
	switch {
	case a.DispensedCents() > 0:
		e.DispensedCents = a.DispensedCents()
		e.Description = fmt.Sprintf("Dispensing $%d.%02d", e.DispensedCents/100, e.DispensedCents%100)
	case a.IsProduct():
		e.Product = i.ProductName(a)
		e.Description = e.Product + " dispensed"
	default:
		e.Description = "No action"
	}
	return e
}

// Execute 执行动作：出货时追加出货记录
func (i *Interpreter) Execute(a Action) Effect {
	e := i.Describe(a)
	if e.Recorded() {
		i.log.Record(e.Product)
	}
	return e
}
