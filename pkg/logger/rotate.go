package logger

import (
	"fmt"
	"io"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"gopkg.in/natefinch/lumberjack.v2"
)

// RotateConfig 日志轮转配置
type RotateConfig struct {
	Filename     string        // 日志文件路径
	MaxSize      int           // 单文件最大尺寸(MB)，按大小轮转时生效
	MaxBackups   int           // 保留旧文件个数，按大小轮转时生效
	MaxAge       int           // 旧文件保留天数
	Compress     bool          // 是否gzip压缩旧文件，按大小轮转时生效
	LocalTime    bool          // 文件名中使用本地时间
	RotationTime time.Duration // 轮转周期，按时间轮转时生效
}

// NewRotateBySize 按文件大小轮转
func NewRotateBySize(cfg *RotateConfig) io.Writer {
	return &lumberjack.Logger{
		Filename:   cfg.Filename,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
		LocalTime:  cfg.LocalTime,
	}
}

// NewProductionRotateBySize 生产环境默认的按大小轮转：100MB、保留30天、压缩
func NewProductionRotateBySize(filename string) io.Writer {
	return NewRotateBySize(&RotateConfig{
		Filename:   filename,
		MaxSize:    100,
		MaxBackups: 10,
		MaxAge:     30,
		Compress:   true,
		LocalTime:  true,
	})
}

// NewRotateByTime 按时间轮转，当前文件通过软链接 Filename 访问
func NewRotateByTime(cfg *RotateConfig) (io.Writer, error) {
	if cfg.Filename == "" {
		return nil, fmt.Errorf("rotate filename is empty")
	}

	rotation := cfg.RotationTime
	if rotation <= 0 {
		rotation = 24 * time.Hour
	}

	opts := []rotatelogs.Option{
		rotatelogs.WithLinkName(cfg.Filename),
		rotatelogs.WithRotationTime(rotation),
	}
	if cfg.MaxAge > 0 {
		opts = append(opts, rotatelogs.WithMaxAge(time.Duration(cfg.MaxAge)*24*time.Hour))
	}
	if cfg.LocalTime {
		opts = append(opts, rotatelogs.WithClock(rotatelogs.Local))
	} else {
		opts = append(opts, rotatelogs.WithClock(rotatelogs.UTC))
	}

	w, err := rotatelogs.New(cfg.Filename+".%Y%m%d%H%M", opts...)
	if err != nil {
		return nil, fmt.Errorf("create rotatelogs failed: %w", err)
	}
	return w, nil
}
