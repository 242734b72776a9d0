package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"loto-server/common"
	"loto-server/common/logger"
	"loto-server/internal/config"
	infmysql "loto-server/internal/infra/mysql"
	infrds "loto-server/internal/infra/redis"
	"loto-server/internal/worker"
	_ "loto-server/routers"

	beego "github.com/beego/beego/v2/server/web"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ========== 配置加载（Nacos 优先，本地文件兜底） ==========
	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Printf("[Boot] 配置加载失败: %v\n", err)
		os.Exit(1)
	}
	config.Set(cfg)

	// ========== 日志初始化 ==========
	logger.InitLogger()
	defer logger.Sync()
	if cfg.Server.LogLevel != "" {
		logger.SetLevel(cfg.Server.LogLevel)
	}

	// 配置热更新：仅日志级别等可动态项即时生效
	if err := config.StartWatch(ctx, func(oldCfg, newCfg *config.Config) {
		if newCfg.Server.LogLevel != oldCfg.Server.LogLevel {
			logger.SetLevel(newCfg.Server.LogLevel)
		}
		logger.Info("config reloaded")
	}); err != nil {
		logger.Warn("config watch not started", zap.Error(err))
	}

	// ========== MySQL ==========
	db := common.InitDB(cfg.Database.DSN, cfg.Database.MaxIdleConns, cfg.Database.MaxOpenConns)
	infmysql.UseDB(db)
	defer func() { _ = db.Close() }()

	// ========== Redis ==========
	infrds.Init(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err := infrds.Ping(ctx, 3*time.Second); err != nil {
		// Redis 不可用时降级运行：幂等与限流退化为 DB 兜底
		logger.Warn("redis unavailable, running degraded", zap.Error(err))
	}

	// ========== 后台 worker ==========
	var wg sync.WaitGroup
	worker.StartOutboxDispatcher(ctx, &wg)
	// 消费端按开关灰度（feature_flags.inbox_consumer）
	if config.GetFeatureFlag("inbox_consumer") {
		worker.StartInboxConsumer(ctx, &wg)
	} else {
		logger.Info("inbox consumer disabled by feature flag")
	}

	// ========== Prometheus ==========
	if cfg.Observability.EnableProm {
		promAddr := cfg.Observability.PromAddr
		if promAddr == "" {
			promAddr = ":9091"
		}
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			logger.Info("prometheus endpoint listening", zap.String("addr", promAddr))
			if err := http.ListenAndServe(promAddr, mux); err != nil {
				logger.Error("prometheus endpoint stopped", zap.Error(err))
			}
		}()
	}

	// ========== HTTP 服务 ==========
	beego.BConfig.CopyRequestBody = true
	if cfg.Server.Port > 0 {
		beego.BConfig.Listen.HTTPPort = cfg.Server.Port
	}

	// 信号驱动的优雅退出：先停接单，再等 worker 清尾
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("shutdown signal received", zap.String("signal", sig.String()))
		cancel()
		wg.Wait()
		logger.Sync()
		os.Exit(0)
	}()

	logger.Info("server starting", zap.Int("port", beego.BConfig.Listen.HTTPPort))
	beego.Run()
}
