package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/junbin-yang/go-vending/internal/config"
	"github.com/junbin-yang/go-vending/internal/driver"
	"github.com/junbin-yang/go-vending/internal/metrics"
	"github.com/junbin-yang/go-vending/internal/vending"
	"github.com/junbin-yang/go-vending/pkg/lifecycle"
	"github.com/junbin-yang/go-vending/pkg/logger"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

func run(args []string, stdout io.Writer) int {
	fs := flag.NewFlagSet("vending", flag.ContinueOnError)
	configPath := fs.String("config", "", "配置文件路径，为空时按默认路径查找")
	scriptPath := fs.String("script", "", "批处理输入文件，设置后使用脚本模式")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	// 1. 加载配置
	cfg, mgr, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		return 1
	}
	defer mgr.Close()

	if *scriptPath != "" {
		cfg.Driver.Mode = config.DriverScript
		cfg.Driver.Script = *scriptPath
	}

	// 2. 初始化日志
	log, err := newLogger(cfg.Logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		return 1
	}
	logger.ReplaceDefault(log)
	defer log.Sync()

	log.Info("应用启动",
		logger.String("config", mgr.ConfigPath()),
		logger.String("driver", cfg.Driver.Mode),
		logger.Strings("products", []string{cfg.Machine.ProductA, cfg.Machine.ProductB}),
		logger.Bool("metrics", cfg.Metrics.Enabled),
	)

	// 3. 组装售货机
	reg := prometheus.NewRegistry()
	collector := metrics.New(reg)

	machine := vending.NewMachine(
		vending.WithHistoryLimit(cfg.Machine.HistoryLimit),
		vending.WithStepHook(collector.ObserveStep),
	)
	interp := vending.NewInterpreter(
		vending.NewPurchaseLog(),
		vending.WithProductNames(cfg.Machine.ProductA, cfg.Machine.ProductB),
	)

	handler, closeHandler, err := newHandler(cfg, stdout)
	if err != nil {
		log.Error("创建输入前端失败", logger.GetError(err))
		return 1
	}
	defer closeHandler()

	drv := driver.New(machine, interp, handler,
		driver.WithLogger(log.Named("driver")),
		driver.WithObserver(collector),
	)

	// 4. 生命周期管理
	lm := lifecycle.NewManager(
		lifecycle.WithShutdownTimeout(cfg.ShutdownTimeout),
		lifecycle.WithLogger(log.Named("lifecycle")),
	)

	if err := lm.AddWorker("driver", drv.Run, lifecycle.Critical()); err != nil {
		log.Error("注册驱动失败", logger.GetError(err))
		return 1
	}

	if cfg.Metrics.Enabled {
		if err := addMetricsServer(lm, cfg.Metrics, collector, log); err != nil {
			log.Error("注册指标服务失败", logger.GetError(err))
			return 1
		}
	}

	// 5. 配置热更新：只有日志级别可以在运行时生效
	mgr.OnChange(func(old, new interface{}) {
		c, ok := new.(*config.Config)
		if !ok {
			return
		}
		level, err := logger.ParseLevel(c.Logger.Level)
		if err != nil {
			log.Warn("忽略非法日志级别", logger.String("level", c.Logger.Level))
			return
		}
		log.SetLevel(level)
		log.Info("日志级别已更新", logger.Stringer("level", level))
	})
	if cfg.Watch {
		if err := mgr.Watch(0); err != nil {
			log.Warn("启动配置监听失败", logger.GetError(err))
		}
	}

	lm.OnWorkerExit(func(name string, err error) {
		if err != nil {
			log.Error("协程异常退出", logger.String("worker", name), logger.GetError(err))
		} else {
			log.Info("协程正常退出", logger.String("worker", name))
		}
	})

	lm.OnShutdown(func(ctx context.Context) error {
		log.Info("正在清理资源...",
			logger.Stringer("state", machine.Current()),
			logger.Int("purchases", interp.Log().Len()),
		)
		return nil
	})

	// 6. 启动
	if err := lm.Run(); err != nil {
		log.Error("应用运行错误", logger.GetError(err))
		return 1
	}

	log.Info("应用已退出")
	return 0
}

// newLogger 按配置选择日志输出
func newLogger(c config.LoggerConfig) (*logger.Logger, error) {
	level, err := logger.ParseLevel(c.Level)
	if err != nil {
		return nil, err
	}

	var out io.Writer = os.Stderr
	if c.Output == config.OutputFile {
		rc := &logger.RotateConfig{
			Filename:     c.Filename,
			MaxSize:      c.MaxSize,
			MaxBackups:   c.MaxBackups,
			MaxAge:       c.MaxAge,
			Compress:     c.Compress,
			LocalTime:    true,
			RotationTime: c.RotationTime,
		}
		switch c.Rotate {
		case config.RotateTime:
			if out, err = logger.NewRotateByTime(rc); err != nil {
				return nil, err
			}
		default:
			if c.MaxSize == 0 && c.MaxBackups == 0 && c.MaxAge == 0 {
				// 未配置任何上限时使用生产默认值
				out = logger.NewProductionRotateBySize(c.Filename)
			} else {
				out = logger.NewRotateBySize(rc)
			}
		}
	}

	return logger.New(out, level, logger.AddCaller(), logger.AddStacktrace(logger.ErrorLevel)), nil
}

// newHandler 按驱动模式创建前端
func newHandler(cfg *config.Config, stdout io.Writer) (driver.Handler, func(), error) {
	if cfg.Driver.Mode == config.DriverScript {
		f, err := os.Open(cfg.Driver.Script)
		if err != nil {
			return nil, nil, fmt.Errorf("open script: %w", err)
		}
		return driver.NewScript(f, stdout), func() { _ = f.Close() }, nil
	}
	return driver.NewTerminal(cfg.Machine.ProductA, cfg.Machine.ProductB), func() {}, nil
}

// addMetricsServer 注册 /metrics HTTP 服务
func addMetricsServer(lm *lifecycle.Manager, c config.MetricsConfig, collector *metrics.Collector, log *logger.Logger) error {
	mux := http.NewServeMux()
	mux.Handle(c.Path, collector.Handler())

	server := &http.Server{
		Addr:              c.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return lm.AddWorker("metrics-server",
		func(ctx context.Context) error {
			log.Info("指标服务启动", logger.String("addr", c.Addr), logger.String("path", c.Path))
			if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
		lifecycle.WithStopFunc(func(ctx context.Context) error {
			log.Info("正在关闭指标服务...")
			return server.Shutdown(ctx)
		}),
	)
}
