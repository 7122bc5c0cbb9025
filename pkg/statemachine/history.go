package statemachine

// Record 一条状态转换记录
type Record[S, I comparable, O any] struct {
	From   S `json:"from"`
	Input  I `json:"input"`
	To     S `json:"to"`
	Output O `json:"output"`
}

// history 固定容量的转换记录环形缓冲
type history[S, I comparable, O any] struct {
	records []Record[S, I, O]
	limit   int
	next    int
	full    bool
}

func newHistory[S, I comparable, O any](limit int) *history[S, I, O] {
	if limit < 0 {
		limit = 0
	}
	return &history[S, I, O]{
		records: make([]Record[S, I, O], limit),
		limit:   limit,
	}
}

func (h *history[S, I, O]) add(r Record[S, I, O]) {
	if h.limit == 0 {
		return
	}
	h.records[h.next] = r
	h.next = (h.next + 1) % h.limit
	if h.next == 0 {
		h.full = true
	}
}

// list 按时间顺序返回记录副本
func (h *history[S, I, O]) list() []Record[S, I, O] {
	if !h.full {
		return append([]Record[S, I, O]{}, h.records[:h.next]...)
	}
	out := make([]Record[S, I, O], 0, h.limit)
	out = append(out, h.records[h.next:]...)
	return append(out, h.records[:h.next]...)
}

func (h *history[S, I, O]) clear() {
	h.next = 0
	h.full = false
}
