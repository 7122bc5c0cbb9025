package driver

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/junbin-yang/go-vending/internal/vending"
)

// Script 批处理前端：每行一个输入，# 开头为注释，非法行报告后跳过
type Script struct {
	*display
	sc   *bufio.Scanner
	line int
}

// NewScript 从 r 读取输入，消息写到 out（默认不加时间戳）
func NewScript(r io.Reader, out io.Writer, opts ...HandlerOption) *Script {
	return &Script{
		display: newDisplay(out, false, opts...),
		sc:      bufio.NewScanner(r),
	}
}

// ObtainInput 读取下一个合法输入，读完返回 io.EOF
func (s *Script) ObtainInput(ctx context.Context) (vending.Input, error) {
	for {
		if err := ctx.Err(); err != nil {
			return vending.QueryLog, err
		}
		if !s.sc.Scan() {
			if err := s.sc.Err(); err != nil {
				return vending.QueryLog, fmt.Errorf("read script line %d: %w", s.line+1, err)
			}
			return vending.QueryLog, io.EOF
		}
		s.line++

		text := strings.TrimSpace(s.sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		in, err := vending.ParseInput(text)
		if err != nil {
			s.DisplayMessage(fmt.Sprintf("line %d: %v", s.line, err))
			continue
		}
		s.DisplayMessage("> " + in.String())
		return in, nil
	}
}
