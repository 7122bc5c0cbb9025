package statemachine

import (
	"errors"
	"strings"
	"testing"
)

func TestTable_Set(t *testing.T) {
	table := NewTable[string, string, string]([]string{"a", "b"}, []string{"x"})

	if err := table.Set("a", "x", "b", "out"); err != nil {
		t.Fatalf("添加转换失败: %v", err)
	}
	if err := table.Set("a", "x", "a", "dup"); !errors.Is(err, ErrDuplicateTransition) {
		t.Errorf("期望 ErrDuplicateTransition, got %v", err)
	}
	if err := table.Set("c", "x", "a", ""); !errors.Is(err, ErrStateNotFound) {
		t.Errorf("未知源状态期望 ErrStateNotFound, got %v", err)
	}
	if err := table.Set("a", "x", "c", ""); !errors.Is(err, ErrStateNotFound) {
		t.Errorf("未知目标状态期望 ErrStateNotFound, got %v", err)
	}
	if err := table.Set("b", "y", "a", ""); !errors.Is(err, ErrEventNotFound) {
		t.Errorf("期望 ErrEventNotFound, got %v", err)
	}

	if table.Len() != 1 {
		t.Errorf("转换数量错误: got %d, want 1", table.Len())
	}
}

func TestTable_Lookup(t *testing.T) {
	table := NewTable[string, string, string]([]string{"a", "b"}, []string{"x"})
	_ = table.Set("a", "x", "b", "out")

	to, out, ok := table.Lookup("a", "x")
	if !ok || to != "b" || out != "out" {
		t.Errorf("查询结果错误: got (%v, %v, %v)", to, out, ok)
	}

	if _, _, ok := table.Lookup("b", "x"); ok {
		t.Error("未定义的转换不应查到")
	}
}

func TestTable_Validate(t *testing.T) {
	table := NewTable[string, string, string]([]string{"a", "b"}, []string{"x", "y"})
	_ = table.Set("a", "x", "a", "")
	_ = table.Set("a", "y", "b", "")
	_ = table.Set("b", "x", "a", "")

	err := table.Validate()
	if !errors.Is(err, ErrIncompleteTable) {
		t.Fatalf("期望 ErrIncompleteTable, got %v", err)
	}
	if !strings.Contains(err.Error(), "(b, y)") {
		t.Errorf("错误信息应包含缺失的组合: %v", err)
	}

	_ = table.Set("b", "y", "b", "")
	if err := table.Validate(); err != nil {
		t.Errorf("完备的状态表校验失败: %v", err)
	}
}

func TestTable_DomainCopies(t *testing.T) {
	states := []string{"a", "b"}
	table := NewTable[string, string, string](states, []string{"x"})
	states[0] = "z"

	if !table.HasState("a") || table.HasState("z") {
		t.Error("状态表不应受外部切片修改影响")
	}
	got := table.States()
	got[1] = "q"
	if table.States()[1] != "b" {
		t.Error("States 应返回副本")
	}

	inputs := []string{"x", "y"}
	table = NewTable[string, string, string](states, inputs)
	inputs[0] = "z"
	gotInputs := table.Inputs()
	if len(gotInputs) != 2 || gotInputs[0] != "x" || gotInputs[1] != "y" {
		t.Errorf("输入列表错误: %v", gotInputs)
	}
	gotInputs[1] = "q"
	if table.Inputs()[1] != "y" {
		t.Error("Inputs 应返回副本")
	}
}
