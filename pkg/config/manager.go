package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/junbin-yang/go-vending/pkg/logger"
)

// ErrConfigNotFound 默认路径下找不到配置文件
var ErrConfigNotFound = errors.New("no valid config file found")

// ConfigManager 通用配置管理器
type ConfigManager struct {
	instance         interface{}             // 配置实例
	defaults         reflect.Value           // 构造时的默认值快照
	configPath       string                  // 配置文件路径
	appName          string                  // 应用名称
	envPrefix        string                  // 环境变量前缀
	serializer       Serializer              // 当前使用的序列化器
	forceFormat      Serializer              // 强制指定的格式（优先级最高）
	supportedFormats []Serializer            // 支持的配置格式列表
	defaultPaths     []string                // 默认配置路径模板
	allowMissing     bool                    // 找不到配置文件时保留默认值
	validator        func(interface{}) error // 加载后的校验
	log              *logger.Logger
	once             sync.Once    // 确保配置只加载一次
	mu               sync.RWMutex // 读写锁
	loadErr          error        // 加载错误

	// 配置监听相关
	enableWatch           bool              // 是否启用配置监听
	watchDebounceInterval time.Duration     // 防抖间隔
	watcher               *fsnotify.Watcher // 文件监听器
	watchQuit             chan struct{}     // 监听退出信号
	closeOnce             sync.Once

	// 配置变更回调
	callbacks []func(old, new interface{})
}

// NewConfigManager 创建配置管理器实例
// cfg: 配置结构体指针（必须传入指针），调用前填入的字段即为默认值
func NewConfigManager(cfg interface{}, options ...Option) *ConfigManager {
	if cfg == nil {
		panic("config instance cannot be nil")
	}
	if reflect.ValueOf(cfg).Kind() != reflect.Ptr {
		panic("config instance must be a pointer")
	}

	cm := &ConfigManager{
		instance:         cfg,
		appName:          "app",
		serializer:       &YAMLSerializer{},
		supportedFormats: []Serializer{&YAMLSerializer{}, &JSONSerializer{}, &INISerializer{}},
		defaultPaths: []string{
			"./{{.AppName}}",
			"./configs/{{.AppName}}",
			"{{.ExecDir}}/{{.AppName}}",
			"/etc/{{.AppName}}",
		},
		log:                   logger.Default(),
		watchDebounceInterval: 500 * time.Millisecond,
		watchQuit:             make(chan struct{}),
	}

	snapshot := reflect.New(reflect.TypeOf(cfg).Elem())
	snapshot.Elem().Set(reflect.ValueOf(cfg).Elem())
	cm.defaults = snapshot.Elem()

	for _, opt := range options {
		opt(cm)
	}

	return cm
}

// LoadConfig 加载配置文件
// customPath: 自定义配置路径，空字符串使用默认路径
func (cm *ConfigManager) LoadConfig(customPath string) error {
	cm.once.Do(func() {
		cm.loadErr = cm.load(customPath)
	})
	return cm.loadErr
}

func (cm *ConfigManager) load(customPath string) error {
	var err error

	if customPath != "" {
		if err = checkConfigFile(customPath); err != nil {
			return fmt.Errorf("invalid custom config path: %w", err)
		}
		cm.configPath = customPath
		cm.chooseSerializer(customPath)
	} else if cm.configPath, err = cm.findDefaultConfigPath(); err != nil {
		if !errors.Is(err, ErrConfigNotFound) || !cm.allowMissing {
			return fmt.Errorf("default config not found: %w", err)
		}
		cm.log.Info("未找到配置文件，使用默认配置", logger.String("app", cm.appName))
	}

	if cm.configPath != "" {
		data, err := os.ReadFile(cm.configPath)
		if err != nil {
			return fmt.Errorf("read file failed: %w", err)
		}
		if err := cm.serializer.Unmarshal(data, cm.instance); err != nil {
			return fmt.Errorf("unmarshal failed (%s): %w", cm.serializer.GetName(), err)
		}
	}

	if err = applyEnvOverrides(cm.instance, cm.envPrefix); err != nil {
		return fmt.Errorf("apply env overrides failed: %w", err)
	}

	if cm.validator != nil {
		if err = cm.validator(cm.instance); err != nil {
			return fmt.Errorf("validate config failed: %w", err)
		}
	}

	if cm.enableWatch && cm.configPath != "" {
		if err = cm.startWatch(); err != nil {
			cm.log.Warn("启动配置监听失败", logger.GetError(err))
		}
	}
	return nil
}

// GetConfig 获取配置实例
func (cm *ConfigManager) GetConfig() (interface{}, error) {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	if cm.loadErr != nil {
		return nil, cm.loadErr
	}
	return cm.instance, nil
}

// ConfigPath 返回实际加载的配置文件路径，未找到文件时为空
func (cm *ConfigManager) ConfigPath() string {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.configPath
}

// SaveConfig 保存配置到文件
func (cm *ConfigManager) SaveConfig() error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if cm.configPath == "" {
		return errors.New("config path not initialized")
	}

	data, err := cm.serializer.Marshal(cm.instance)
	if err != nil {
		return fmt.Errorf("marshal config failed: %w", err)
	}

	// 先写入临时文件（避免文件损坏）
	tmpPath := cm.configPath + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("write temp config failed: %w", err)
	}
	if err := os.Rename(tmpPath, cm.configPath); err != nil {
		return fmt.Errorf("rename temp config failed: %w", err)
	}

	return nil
}

// ReloadConfig 手动重新加载配置，成功后触发变更回调
func (cm *ConfigManager) ReloadConfig() error {
	cm.mu.RLock()
	currentPath := cm.configPath
	cm.mu.RUnlock()

	if currentPath == "" {
		return errors.New("config path not initialized")
	}

	data, err := os.ReadFile(currentPath)
	if err != nil {
		return fmt.Errorf("read config file failed: %w", err)
	}

	// 创建新实例避免覆盖原数据
	newInstance := cm.createNewInstance()
	if err := cm.serializer.Unmarshal(data, newInstance); err != nil {
		return fmt.Errorf("unmarshal config failed: %w", err)
	}
	if err := applyEnvOverrides(newInstance, cm.envPrefix); err != nil {
		return fmt.Errorf("apply env overrides failed: %w", err)
	}
	if cm.validator != nil {
		if err := cm.validator(newInstance); err != nil {
			return fmt.Errorf("validate config failed: %w", err)
		}
	}

	cm.mu.Lock()
	oldInstance := cm.instance
	cm.instance = newInstance
	cm.loadErr = nil
	callbacks := make([]func(old, new interface{}), len(cm.callbacks))
	copy(callbacks, cm.callbacks)
	cm.mu.Unlock()

	// 回调在锁外执行
	for _, callback := range callbacks {
		callback(oldInstance, newInstance)
	}

	return nil
}

// OnChange 注册配置变更回调
func (cm *ConfigManager) OnChange(callback func(old, new interface{})) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.callbacks = append(cm.callbacks, callback)
}

// Close 关闭配置管理器（停止监听）
func (cm *ConfigManager) Close() {
	cm.closeOnce.Do(func() {
		close(cm.watchQuit)
		cm.mu.Lock()
		if cm.watcher != nil {
			_ = cm.watcher.Close()
		}
		cm.mu.Unlock()
	})
}

/* ------------------------------ 内部方法 ------------------------------ */

// chooseSerializer 选择序列化器：强制格式 > 后缀识别 > 默认
func (cm *ConfigManager) chooseSerializer(path string) {
	if cm.forceFormat != nil {
		cm.serializer = cm.forceFormat
		return
	}

	ext := filepath.Ext(path)
	for _, format := range cm.supportedFormats {
		for _, e := range format.GetFileExts() {
			if e == ext {
				cm.serializer = format
				return
			}
		}
	}
}

// findDefaultConfigPath 按默认路径顺序查找，先试无后缀文件，再逐个试支持的后缀
func (cm *ConfigManager) findDefaultConfigPath() (string, error) {
	execPath, _ := os.Executable()
	expand := pathExpander(cm.appName, filepath.Dir(execPath))

	for _, pathTpl := range cm.defaultPaths {
		basePath := expand.Replace(pathTpl)

		if checkConfigFile(basePath) == nil {
			cm.chooseSerializer(basePath)
			return basePath, nil
		}

		for _, format := range cm.supportedFormats {
			for _, ext := range format.GetFileExts() {
				if fullPath := basePath + ext; checkConfigFile(fullPath) == nil {
					cm.serializer = format
					if cm.forceFormat != nil {
						cm.serializer = cm.forceFormat
					}
					return fullPath, nil
				}
			}
		}
	}

	return "", ErrConfigNotFound
}

// Watch 在加载完成后开启文件监听；已在监听或没有配置文件时直接返回
func (cm *ConfigManager) Watch(debounce time.Duration) error {
	cm.mu.Lock()
	if cm.watcher != nil || cm.configPath == "" {
		cm.mu.Unlock()
		return nil
	}
	if debounce > 0 {
		cm.watchDebounceInterval = debounce
	}
	cm.enableWatch = true
	cm.mu.Unlock()
	return cm.startWatch()
}

// startWatch 启动配置文件监听，监听所在目录以兼容编辑器的重命名写入
func (cm *ConfigManager) startWatch() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher failed: %w", err)
	}
	if err = watcher.Add(filepath.Dir(cm.configPath)); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("add watch path failed: %w", err)
	}

	cm.mu.Lock()
	cm.watcher = watcher
	cm.mu.Unlock()

	go cm.watchLoop(watcher)
	return nil
}

// watchLoop 监听文件变化循环
func (cm *ConfigManager) watchLoop(watcher *fsnotify.Watcher) {
	debounceTimer := time.NewTimer(time.Hour)
	debounceTimer.Stop()
	target := filepath.Clean(cm.configPath)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				debounceTimer.Reset(cm.watchDebounceInterval)
			}

		case <-debounceTimer.C:
			if err := cm.ReloadConfig(); err != nil {
				cm.log.Warn("配置自动重载失败", logger.GetError(err))
			} else {
				cm.log.Info("配置已自动重载", logger.String("path", cm.configPath))
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			cm.log.Warn("配置监听错误", logger.GetError(err))

		case <-cm.watchQuit:
			debounceTimer.Stop()
			return
		}
	}
}

// createNewInstance 创建新的配置实例，以构造时的默认值填充
func (cm *ConfigManager) createNewInstance() interface{} {
	n := reflect.New(cm.defaults.Type())
	n.Elem().Set(cm.defaults)
	return n.Interface()
}
