package config

import (
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

type TestConfig struct {
	Machine struct {
		ProductA string `yaml:"product_a" json:"product_a" ini:"product_a" env:"CFGTEST_PRODUCT_A"`
		ProductB string `yaml:"product_b" json:"product_b" ini:"product_b"`
	} `yaml:"machine" json:"machine" ini:"machine"`
	Logger struct {
		Level    string `yaml:"level" json:"level" ini:"level" env:"CFGTEST_LOG_LEVEL"`
		Compress bool   `yaml:"compress" json:"compress" ini:"compress"`
	} `yaml:"logger" json:"logger" ini:"logger"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" json:"shutdown_timeout" ini:"-" env:"CFGTEST_SHUTDOWN_TIMEOUT"`
}

const testYAML = `machine:
  product_a: Meet
  product_b: Etirps
logger:
  level: info
shutdown_timeout: 3s
`

const testJSON = `{
  "machine": {"product_a": "Cola", "product_b": "Soda"},
  "logger": {"level": "debug"}
}`

const testINI = `[machine]
product_a = Tea
product_b = Coffee

[logger]
level = warn
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("写入测试配置失败: %v", err)
	}
	return path
}

// 场景1：基础使用（YAML格式）
func TestScenario1_BasicYAML(t *testing.T) {
	cfg := &TestConfig{}
	path := writeFile(t, t.TempDir(), "vending.yml", testYAML)

	cm := NewConfigManager(cfg, WithAppName("vending"))
	if err := cm.LoadConfig(path); err != nil {
		t.Fatalf("加载YAML配置失败: %v", err)
	}

	configData, err := cm.GetConfig()
	if err != nil {
		t.Fatalf("获取配置失败: %v", err)
	}

	testCfg := configData.(*TestConfig)
	if testCfg.Machine.ProductA != "Meet" {
		t.Errorf("期望商品A Meet, 实际 %s", testCfg.Machine.ProductA)
	}
	if testCfg.ShutdownTimeout != 3*time.Second {
		t.Errorf("期望超时 3s, 实际 %v", testCfg.ShutdownTimeout)
	}
}

// 场景2：JSON 与 INI 按后缀识别
func TestScenario2_FormatByExt(t *testing.T) {
	dir := t.TempDir()

	jsonCfg := &TestConfig{}
	cm := NewConfigManager(jsonCfg)
	if err := cm.LoadConfig(writeFile(t, dir, "vending.json", testJSON)); err != nil {
		t.Fatalf("加载JSON配置失败: %v", err)
	}
	if jsonCfg.Machine.ProductA != "Cola" || jsonCfg.Logger.Level != "debug" {
		t.Errorf("JSON配置解析错误: %+v", jsonCfg)
	}

	iniCfg := &TestConfig{}
	cm = NewConfigManager(iniCfg)
	if err := cm.LoadConfig(writeFile(t, dir, "vending.ini", testINI)); err != nil {
		t.Fatalf("加载INI配置失败: %v", err)
	}
	if iniCfg.Machine.ProductB != "Coffee" || iniCfg.Logger.Level != "warn" {
		t.Errorf("INI配置解析错误: %+v", iniCfg)
	}
}

// 场景3：无后缀文件强制格式
func TestScenario3_ForceFormat(t *testing.T) {
	cfg := &TestConfig{}
	path := writeFile(t, t.TempDir(), "config_no_ext", testJSON)

	cm := NewConfigManager(cfg, WithForceFormat(&JSONSerializer{}))
	if err := cm.LoadConfig(path); err != nil {
		t.Fatalf("加载无后缀配置失败: %v", err)
	}
	if cfg.Machine.ProductA != "Cola" {
		t.Errorf("期望商品A Cola, 实际 %s", cfg.Machine.ProductA)
	}
}

// 场景4：默认路径查找
func TestScenario4_DefaultPaths(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "vending.yaml", testYAML)

	cfg := &TestConfig{}
	cm := NewConfigManager(cfg,
		WithAppName("vending"),
		WithDefaultPaths(filepath.Join(dir, "missing", "{{.AppName}}"), filepath.Join(dir, "{{.AppName}}")),
	)
	if err := cm.LoadConfig(""); err != nil {
		t.Fatalf("默认路径加载失败: %v", err)
	}
	if cm.ConfigPath() != filepath.Join(dir, "vending.yaml") {
		t.Errorf("配置路径错误: %s", cm.ConfigPath())
	}
}

// 场景5：找不到配置文件
func TestScenario5_Missing(t *testing.T) {
	dir := t.TempDir()

	cfg := &TestConfig{}
	cm := NewConfigManager(cfg, WithDefaultPaths(filepath.Join(dir, "{{.AppName}}")))
	if err := cm.LoadConfig(""); !errors.Is(err, ErrConfigNotFound) {
		t.Errorf("期望 ErrConfigNotFound, got %v", err)
	}

	cfg2 := &TestConfig{}
	cfg2.Machine.ProductA = "Default"
	cm2 := NewConfigManager(cfg2, WithDefaultPaths(filepath.Join(dir, "{{.AppName}}")), WithAllowMissing(true))
	if err := cm2.LoadConfig(""); err != nil {
		t.Fatalf("允许缺失时不应报错: %v", err)
	}
	if cfg2.Machine.ProductA != "Default" {
		t.Errorf("默认值被覆盖: %s", cfg2.Machine.ProductA)
	}
	if cm2.ConfigPath() != "" {
		t.Errorf("缺失时配置路径应为空: %s", cm2.ConfigPath())
	}
}

// 场景6：环境变量覆盖
func TestScenario6_EnvOverride(t *testing.T) {
	t.Setenv("VENDING_CFGTEST_LOG_LEVEL", "error")
	t.Setenv("VENDING_CFGTEST_SHUTDOWN_TIMEOUT", "250ms")
	t.Setenv("CFGTEST_LOG_LEVEL", "debug")

	cfg := &TestConfig{}
	cm := NewConfigManager(cfg, WithEnvPrefix("VENDING"))
	if err := cm.LoadConfig(writeFile(t, t.TempDir(), "vending.yml", testYAML)); err != nil {
		t.Fatalf("加载配置失败: %v", err)
	}
	if cfg.Logger.Level != "error" {
		t.Errorf("环境变量未覆盖日志级别: %s", cfg.Logger.Level)
	}
	if cfg.ShutdownTimeout != 250*time.Millisecond {
		t.Errorf("环境变量未覆盖超时: %v", cfg.ShutdownTimeout)
	}
}

func TestScenario6_EnvOverrideInvalid(t *testing.T) {
	t.Setenv("CFGTEST_SHUTDOWN_TIMEOUT", "soon")

	cm := NewConfigManager(&TestConfig{})
	if err := cm.LoadConfig(writeFile(t, t.TempDir(), "vending.yml", testYAML)); err == nil {
		t.Error("非法的环境变量值应返回错误")
	}
}

// 场景7：校验失败
func TestScenario7_Validator(t *testing.T) {
	invalid := errors.New("product_a required")
	validator := func(cfg interface{}) error {
		if cfg.(*TestConfig).Machine.ProductA == "" {
			return invalid
		}
		return nil
	}

	cm := NewConfigManager(&TestConfig{}, WithValidator(validator))
	err := cm.LoadConfig(writeFile(t, t.TempDir(), "vending.yml", "logger:\n  level: info\n"))
	if !errors.Is(err, invalid) {
		t.Errorf("期望校验错误, got %v", err)
	}
	if _, err := cm.GetConfig(); err == nil {
		t.Error("加载失败后 GetConfig 应返回错误")
	}
}

// 场景8：保存后重新加载
func TestScenario8_SaveConfig(t *testing.T) {
	cfg := &TestConfig{}
	path := writeFile(t, t.TempDir(), "vending.yml", testYAML)

	cm := NewConfigManager(cfg)
	if err := cm.LoadConfig(path); err != nil {
		t.Fatalf("加载配置失败: %v", err)
	}

	cfg.Machine.ProductB = "Water"
	if err := cm.SaveConfig(); err != nil {
		t.Fatalf("保存配置失败: %v", err)
	}

	cfg2 := &TestConfig{}
	if err := NewConfigManager(cfg2).LoadConfig(path); err != nil {
		t.Fatalf("重新加载配置失败: %v", err)
	}
	if cfg2.Machine.ProductB != "Water" {
		t.Errorf("期望商品B Water, 实际 %s", cfg2.Machine.ProductB)
	}
}

// 场景9：手动重载触发回调，旧实例不被修改
func TestScenario9_ReloadCallback(t *testing.T) {
	cfg := &TestConfig{}
	cfg.Logger.Compress = true
	path := writeFile(t, t.TempDir(), "vending.yml", testYAML)

	cm := NewConfigManager(cfg)
	if err := cm.LoadConfig(path); err != nil {
		t.Fatalf("加载配置失败: %v", err)
	}

	var got *TestConfig
	cm.OnChange(func(old, new interface{}) {
		got = new.(*TestConfig)
	})

	writeFile(t, filepath.Dir(path), "vending.yml", "machine:\n  product_a: Juice\n")
	if err := cm.ReloadConfig(); err != nil {
		t.Fatalf("重载配置失败: %v", err)
	}

	if got == nil || got.Machine.ProductA != "Juice" {
		t.Fatalf("回调未收到新配置: %+v", got)
	}
	if got.Machine.ProductB != "" {
		t.Errorf("文件中删除的字段应回到默认值: %s", got.Machine.ProductB)
	}
	if !got.Logger.Compress {
		t.Error("构造时的默认值应保留")
	}
	if cfg.Machine.ProductA != "Meet" {
		t.Errorf("旧实例不应被修改: %s", cfg.Machine.ProductA)
	}

	current, _ := cm.GetConfig()
	if current.(*TestConfig) != got {
		t.Error("GetConfig 应返回新实例")
	}
}

// 场景10：文件变化自动重载
func TestScenario10_Watch(t *testing.T) {
	cfg := &TestConfig{}
	path := writeFile(t, t.TempDir(), "vending.yml", testYAML)

	cm := NewConfigManager(cfg, WithConfigWatch(true, 50*time.Millisecond))
	if err := cm.LoadConfig(path); err != nil {
		t.Fatalf("加载配置失败: %v", err)
	}
	defer cm.Close()

	var reloaded atomic.Value
	cm.OnChange(func(old, new interface{}) {
		reloaded.Store(new.(*TestConfig).Logger.Level)
	})

	writeFile(t, filepath.Dir(path), "vending.yml", "logger:\n  level: debug\n")

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if v, _ := reloaded.Load().(string); v == "debug" {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Error("配置变化后未自动重载")
}

// 场景11：加载后再开启监听
func TestScenario11_WatchAfterLoad(t *testing.T) {
	cfg := &TestConfig{}
	path := writeFile(t, t.TempDir(), "vending.yml", testYAML)

	cm := NewConfigManager(cfg)
	if err := cm.LoadConfig(path); err != nil {
		t.Fatalf("加载配置失败: %v", err)
	}
	defer cm.Close()

	if err := cm.Watch(50 * time.Millisecond); err != nil {
		t.Fatalf("开启监听失败: %v", err)
	}
	if err := cm.Watch(0); err != nil {
		t.Fatalf("重复开启监听应直接返回: %v", err)
	}

	var reloaded atomic.Value
	cm.OnChange(func(old, new interface{}) {
		reloaded.Store(new.(*TestConfig).Machine.ProductA)
	})

	writeFile(t, filepath.Dir(path), "vending.yml", "machine:\n  product_a: Cola\n")

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if v, _ := reloaded.Load().(string); v == "Cola" {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Error("开启监听后配置变化未重载")
}

func TestCheckConfigFile(t *testing.T) {
	dir := t.TempDir()
	if err := checkConfigFile(filepath.Join(dir, "missing.yml")); !errors.Is(err, ErrConfigNotFound) {
		t.Errorf("期望 ErrConfigNotFound, got %v", err)
	}
	if err := checkConfigFile(dir); !errors.Is(err, ErrNotAFile) {
		t.Errorf("期望 ErrNotAFile, got %v", err)
	}
	if err := checkConfigFile(writeFile(t, dir, "ok.yml", testYAML)); err != nil {
		t.Errorf("合法文件不应报错: %v", err)
	}

	got := pathExpander("vending", "/opt/bin").Replace("{{.ExecDir}}/{{.AppName}}")
	if got != "/opt/bin/vending" {
		t.Errorf("路径展开错误: %s", got)
	}
}
