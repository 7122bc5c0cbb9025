package statemachine

import "fmt"

var (
	// ErrInvalidTransition 当前状态下输入未定义时返回
	ErrInvalidTransition = fmt.Errorf("invalid transition")

	// ErrStateNotFound 当状态不属于状态表时返回
	ErrStateNotFound = fmt.Errorf("state not found")

	// ErrEventNotFound 当输入不属于状态表时返回
	ErrEventNotFound = fmt.Errorf("event not found")

	// ErrDuplicateTransition 当转换规则已存在时返回
	ErrDuplicateTransition = fmt.Errorf("duplicate transition")

	// ErrIncompleteTable 当状态表未覆盖全部 (状态, 输入) 组合时返回
	ErrIncompleteTable = fmt.Errorf("incomplete transition table")
)
