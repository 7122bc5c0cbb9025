package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

// ErrNotAFile 配置路径指向目录
var ErrNotAFile = errors.New("config path is a directory")

// pathExpander 展开 {{.AppName}} / {{.ExecDir}} 模板变量
func pathExpander(appName, execDir string) *strings.Replacer {
	return strings.NewReplacer(
		"{{.AppName}}", appName,
		"{{.ExecDir}}", execDir,
	)
}

// checkConfigFile 确认路径是可读取的普通文件；不存在时返回 ErrConfigNotFound
func checkConfigFile(path string) error {
	if path == "" {
		return fmt.Errorf("%w: empty path", ErrConfigNotFound)
	}

	fi, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%w: %s", ErrConfigNotFound, path)
	case err != nil:
		return fmt.Errorf("stat %s: %w", path, err)
	case fi.IsDir():
		return fmt.Errorf("%w: %s", ErrNotAFile, path)
	}
	return nil
}
