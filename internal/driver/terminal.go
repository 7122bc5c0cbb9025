package driver

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/chzyer/readline"
	"github.com/manifoldco/promptui"

	"github.com/junbin-yang/go-vending/internal/vending"
)

// Terminal 终端前端，消息带时间戳。
// stdin 是终端时用 promptui 菜单选择；被重定向时逐行读取编号，非法行提示后重新读取
type Terminal struct {
	*display
	stdin       io.ReadCloser
	stdout      io.WriteCloser
	menu        []string
	label       string
	interactive bool
	choose      func() (int, error)

	once  sync.Once
	lines chan lineResult
}

// NewTerminal 创建终端前端，菜单中显示两种商品名
func NewTerminal(productA, productB string, opts ...HandlerOption) *Terminal {
	interactive := readline.IsTerminal(int(os.Stdin.Fd()))
	return newTerminal(os.Stdin, os.Stdout, interactive, productA, productB, opts...)
}

func newTerminal(in io.ReadCloser, out io.WriteCloser, interactive bool, productA, productB string, opts ...HandlerOption) *Terminal {
	t := &Terminal{
		display:     newDisplay(out, true, opts...),
		stdin:       in,
		stdout:      out,
		menu:        Menu(productA, productB),
		label:       "Choice",
		interactive: interactive,
	}
	t.choose = t.selectMenu
	return t
}

// Menu 输入菜单，编号与 vending.ParseInput 一致
func Menu(productA, productB string) []string {
	return []string{
		fmt.Sprintf("%d: Show purchase log", vending.QueryLog),
		fmt.Sprintf("%d: Insert $0.25", vending.Insert25),
		fmt.Sprintf("%d: Insert $0.50", vending.Insert50),
		fmt.Sprintf("%d: Insert $1.00", vending.Insert100),
		fmt.Sprintf("%d: Request refund", vending.Refund),
		fmt.Sprintf("%d: Buy %s", vending.BuyA, productA),
		fmt.Sprintf("%d: Buy %s", vending.BuyB, productB),
	}
}

type selectResult struct {
	idx int
	err error
}

type lineResult struct {
	text string
	err  error
}

// ObtainInput 读取一个合法输入；Ctrl-C/Ctrl-D 或输入读完视为结束
func (t *Terminal) ObtainInput(ctx context.Context) (vending.Input, error) {
	if t.interactive {
		return t.obtainSelected(ctx)
	}
	return t.obtainLine(ctx)
}

// selectMenu 显示菜单并返回选中项下标，菜单之外的输入无法提交
func (t *Terminal) selectMenu() (int, error) {
	sel := &promptui.Select{
		Label:  t.label,
		Items:  t.menu,
		Size:   len(t.menu),
		Stdin:  t.stdin,
		Stdout: t.stdout,
	}
	idx, _, err := sel.Run()
	return idx, err
}

func (t *Terminal) obtainSelected(ctx context.Context) (vending.Input, error) {
	// promptui 的读取不可取消，放到协程里以便响应 ctx
	done := make(chan selectResult, 1)
	go func() {
		idx, err := t.choose()
		done <- selectResult{idx: idx, err: err}
	}()

	select {
	case <-ctx.Done():
		return vending.QueryLog, ctx.Err()
	case res := <-done:
		if res.err != nil {
			if errors.Is(res.err, promptui.ErrInterrupt) || errors.Is(res.err, promptui.ErrEOF) {
				return vending.QueryLog, io.EOF
			}
			return vending.QueryLog, res.err
		}
		return vending.ParseInput(strconv.Itoa(res.idx))
	}
}

// readLines 唯一读取 stdin 的协程，保证每次只消费一行
func (t *Terminal) readLines() {
	defer close(t.lines)
	sc := bufio.NewScanner(t.stdin)
	for sc.Scan() {
		t.lines <- lineResult{text: sc.Text()}
	}
	if err := sc.Err(); err != nil {
		t.lines <- lineResult{err: err}
	}
}

func (t *Terminal) obtainLine(ctx context.Context) (vending.Input, error) {
	t.once.Do(func() {
		t.lines = make(chan lineResult)
		go t.readLines()
	})

	for _, line := range t.menu {
		t.DisplayMessage(line)
	}
	prompt := fmt.Sprintf("%s [0-%d]:", t.label, len(t.menu)-1)
	for {
		t.DisplayMessage(prompt)
		select {
		case <-ctx.Done():
			return vending.QueryLog, ctx.Err()
		case res, ok := <-t.lines:
			if !ok {
				return vending.QueryLog, io.EOF
			}
			if res.err != nil {
				return vending.QueryLog, fmt.Errorf("read stdin: %w", res.err)
			}
			text := strings.TrimSpace(res.text)
			if text == "" {
				continue
			}
			in, err := vending.ParseInput(text)
			if err != nil {
				t.DisplayMessage("Invalid input: " + err.Error())
				continue
			}
			t.DisplayMessage("> " + in.String())
			return in, nil
		}
	}
}
