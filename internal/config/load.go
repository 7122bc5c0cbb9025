package config

import (
	pkgConfig "github.com/junbin-yang/go-vending/pkg/config"
)

const (
	AppName   = "vending"
	EnvPrefix = "VENDING"
)

// Load 加载配置：默认值 < 配置文件 < VENDING_* 环境变量。
// path 为空时按默认路径查找，找不到则只用默认值。
func Load(path string, opts ...pkgConfig.Option) (*Config, *pkgConfig.ConfigManager, error) {
	cfg := Defaults()

	options := []pkgConfig.Option{
		pkgConfig.WithAppName(AppName),
		pkgConfig.WithEnvPrefix(EnvPrefix),
		pkgConfig.WithAllowMissing(true),
		pkgConfig.WithValidator(ValidateAny),
	}
	options = append(options, opts...)

	mgr := pkgConfig.NewConfigManager(cfg, options...)
	if err := mgr.LoadConfig(path); err != nil {
		mgr.Close()
		return nil, nil, err
	}
	return cfg, mgr, nil
}

// Current 从管理器取当前配置（重载后会变化）
func Current(mgr *pkgConfig.ConfigManager) *Config {
	v, err := mgr.GetConfig()
	if err != nil {
		return nil
	}
	cfg, _ := v.(*Config)
	return cfg
}
