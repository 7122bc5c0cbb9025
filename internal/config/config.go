package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/junbin-yang/go-vending/internal/vending"
	"github.com/junbin-yang/go-vending/pkg/logger"
)

// 驱动模式
const (
	DriverTerminal = "terminal"
	DriverScript   = "script"
)

// 日志输出与轮转方式
const (
	OutputStderr = "stderr"
	OutputFile   = "file"
	RotateSize   = "size"
	RotateTime   = "time"
)

var ErrInvalidConfig = errors.New("invalid config")

// Config 应用配置
type Config struct {
	Machine         MachineConfig `yaml:"machine" json:"machine" ini:"machine"`
	Driver          DriverConfig  `yaml:"driver" json:"driver" ini:"driver"`
	Logger          LoggerConfig  `yaml:"logger" json:"logger" ini:"logger"`
	Metrics         MetricsConfig `yaml:"metrics" json:"metrics" ini:"metrics"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" json:"shutdown_timeout" ini:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
	Watch           bool          `yaml:"watch" json:"watch" ini:"watch" env:"WATCH"`
}

// MachineConfig 售货机配置
type MachineConfig struct {
	ProductA     string `yaml:"product_a" json:"product_a" ini:"product_a" env:"PRODUCT_A"`
	ProductB     string `yaml:"product_b" json:"product_b" ini:"product_b" env:"PRODUCT_B"`
	HistoryLimit int    `yaml:"history_limit" json:"history_limit" ini:"history_limit" env:"HISTORY_LIMIT"`
}

// DriverConfig 输入驱动配置
type DriverConfig struct {
	Mode   string `yaml:"mode" json:"mode" ini:"mode" env:"DRIVER_MODE"`
	Script string `yaml:"script" json:"script" ini:"script" env:"DRIVER_SCRIPT"`
}

// LoggerConfig 日志配置
type LoggerConfig struct {
	Level        string        `yaml:"level" json:"level" ini:"level" env:"LOG_LEVEL"`
	Output       string        `yaml:"output" json:"output" ini:"output" env:"LOG_OUTPUT"`
	Filename     string        `yaml:"filename" json:"filename" ini:"filename" env:"LOG_FILENAME"`
	Rotate       string        `yaml:"rotate" json:"rotate" ini:"rotate" env:"LOG_ROTATE"`
	MaxSize      int           `yaml:"max_size" json:"max_size" ini:"max_size"`
	MaxBackups   int           `yaml:"max_backups" json:"max_backups" ini:"max_backups"`
	MaxAge       int           `yaml:"max_age" json:"max_age" ini:"max_age"`
	Compress     bool          `yaml:"compress" json:"compress" ini:"compress"`
	RotationTime time.Duration `yaml:"rotation_time" json:"rotation_time" ini:"rotation_time"`
}

// MetricsConfig 指标服务配置
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled" ini:"enabled" env:"METRICS_ENABLED"`
	Addr    string `yaml:"addr" json:"addr" ini:"addr" env:"METRICS_ADDR"`
	Path    string `yaml:"path" json:"path" ini:"path"`
}

// Defaults 默认配置
func Defaults() *Config {
	return &Config{
		Machine: MachineConfig{
			ProductA:     vending.DefaultProductA,
			ProductB:     vending.DefaultProductB,
			HistoryLimit: 100,
		},
		Driver: DriverConfig{
			Mode: DriverTerminal,
		},
		Logger: LoggerConfig{
			Level:        "info",
			Output:       OutputStderr,
			Filename:     "logs/vending.log",
			Rotate:       RotateSize,
			MaxSize:      100,
			MaxBackups:   7,
			MaxAge:       30,
			Compress:     true,
			RotationTime: 24 * time.Hour,
		},
		Metrics: MetricsConfig{
			Addr: ":9090",
			Path: "/metrics",
		},
		ShutdownTimeout: 5 * time.Second,
	}
}

// Validate 校验配置
func (c *Config) Validate() error {
	if _, err := logger.ParseLevel(c.Logger.Level); err != nil {
		return fmt.Errorf("%w: logger.level: %v", ErrInvalidConfig, err)
	}

	switch c.Driver.Mode {
	case DriverTerminal:
	case DriverScript:
		if c.Driver.Script == "" {
			return fmt.Errorf("%w: driver.script is required in script mode", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: driver.mode %q", ErrInvalidConfig, c.Driver.Mode)
	}

	switch c.Logger.Output {
	case OutputStderr:
	case OutputFile:
		if c.Logger.Filename == "" {
			return fmt.Errorf("%w: logger.filename is required for file output", ErrInvalidConfig)
		}
		if c.Logger.Rotate != RotateSize && c.Logger.Rotate != RotateTime {
			return fmt.Errorf("%w: logger.rotate %q", ErrInvalidConfig, c.Logger.Rotate)
		}
	default:
		return fmt.Errorf("%w: logger.output %q", ErrInvalidConfig, c.Logger.Output)
	}

	if c.Machine.HistoryLimit < 0 {
		return fmt.Errorf("%w: machine.history_limit must not be negative", ErrInvalidConfig)
	}
	if c.Metrics.Enabled {
		if c.Metrics.Addr == "" {
			return fmt.Errorf("%w: metrics.addr is required when metrics are enabled", ErrInvalidConfig)
		}
		if !strings.HasPrefix(c.Metrics.Path, "/") {
			return fmt.Errorf("%w: metrics.path %q must start with /", ErrInvalidConfig, c.Metrics.Path)
		}
	}
	if c.ShutdownTimeout < 0 {
		return fmt.Errorf("%w: shutdown_timeout must not be negative", ErrInvalidConfig)
	}
	return nil
}

// ValidateAny 适配 config.WithValidator
func ValidateAny(v interface{}) error {
	c, ok := v.(*Config)
	if !ok {
		return fmt.Errorf("%w: unexpected type %T", ErrInvalidConfig, v)
	}
	return c.Validate()
}
