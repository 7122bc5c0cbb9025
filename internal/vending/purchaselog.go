package vending

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// EmptyLogMessage 没有任何出货记录时的显示内容
const EmptyLogMessage = "No products were purchased."

// Entry 一条出货记录
type Entry struct {
	ID      uuid.UUID
	Product string
	At      time.Time
}

// PurchaseLog 只追加的出货记录，展示时最新的在前
type PurchaseLog struct {
	entries []Entry
	clock   clockwork.Clock
}

// LogOption 出货记录选项
type LogOption func(*PurchaseLog)

// WithClock 指定时钟
func WithClock(c clockwork.Clock) LogOption {
	return func(l *PurchaseLog) {
		l.clock = c
	}
}

// NewPurchaseLog 创建出货记录
func NewPurchaseLog(opts ...LogOption) *PurchaseLog {
	l := &PurchaseLog{clock: clockwork.NewRealClock()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Record 追加一条记录
func (l *PurchaseLog) Record(product string) Entry {
	e := Entry{ID: uuid.New(), Product: product, At: l.clock.Now()}
	l.entries = append(l.entries, e)
	return e
}

// Len 记录条数
func (l *PurchaseLog) Len() int {
	return len(l.entries)
}

// Entries 返回全部记录，最新的在前
func (l *PurchaseLog) Entries() []Entry {
	out := make([]Entry, len(l.entries))
	for i, e := range l.entries {
		out[len(l.entries)-1-i] = e
	}
	return out
}

// Names 商品名列表，顺序同 Entries
func (l *PurchaseLog) Names() []string {
	entries := l.Entries()
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Product
	}
	return names
}

// Render 渲染为可显示文本；没有记录时给出明确提示
func (l *PurchaseLog) Render() string {
	var b strings.Builder
	b.WriteString("Purchase Log:\n")
	if len(l.entries) == 0 {
		b.WriteString(EmptyLogMessage)
		return b.String()
	}
	for i, name := range l.Names() {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("- ")
		b.WriteString(name)
	}
	return b.String()
}
