package config

import (
	"time"

	"github.com/junbin-yang/go-vending/pkg/logger"
)

// Option 配置管理器选项
type Option func(*ConfigManager)

// WithAppName 设置应用名称（用于默认配置文件名）
func WithAppName(name string) Option {
	return func(cm *ConfigManager) {
		cm.appName = name
	}
}

// WithEnvPrefix 设置环境变量前缀，env:"LOG_LEVEL" 配合前缀 VENDING 读取 VENDING_LOG_LEVEL
func WithEnvPrefix(prefix string) Option {
	return func(cm *ConfigManager) {
		cm.envPrefix = prefix
	}
}

// WithSerializer 设置默认序列化器
func WithSerializer(s Serializer) Option {
	return func(cm *ConfigManager) {
		cm.serializer = s
	}
}

// WithForceFormat 强制指定配置格式（无视文件后缀）
func WithForceFormat(s Serializer) Option {
	return func(cm *ConfigManager) {
		cm.forceFormat = s
	}
}

// WithDefaultPaths 设置默认配置文件查找路径
func WithDefaultPaths(paths ...string) Option {
	return func(cm *ConfigManager) {
		cm.defaultPaths = paths
	}
}

// WithConfigFormats 设置支持的配置格式列表
func WithConfigFormats(formats ...Serializer) Option {
	return func(cm *ConfigManager) {
		cm.supportedFormats = formats
	}
}

// WithAllowMissing 默认路径下没有配置文件时不报错，保留默认值
func WithAllowMissing(allow bool) Option {
	return func(cm *ConfigManager) {
		cm.allowMissing = allow
	}
}

// WithValidator 设置加载/重载后的校验函数，校验失败的重载不会生效
func WithValidator(fn func(cfg interface{}) error) Option {
	return func(cm *ConfigManager) {
		cm.validator = fn
	}
}

// WithLogger 设置内部日志器
func WithLogger(l *logger.Logger) Option {
	return func(cm *ConfigManager) {
		if l != nil {
			cm.log = l
		}
	}
}

// WithConfigWatch 启用配置文件监听（文件变化自动重载）
func WithConfigWatch(enable bool, interval time.Duration) Option {
	return func(cm *ConfigManager) {
		cm.enableWatch = enable
		cm.watchDebounceInterval = interval
		if interval == 0 {
			cm.watchDebounceInterval = 500 * time.Millisecond
		}
	}
}
