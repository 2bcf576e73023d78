package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/LJTian/DailyRelay/internal/api"
	"github.com/LJTian/DailyRelay/internal/app"
	"github.com/LJTian/DailyRelay/internal/config"
	"github.com/LJTian/DailyRelay/internal/logger"
	"github.com/LJTian/DailyRelay/internal/scheduler"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("load config failed: %v", err)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		logrus.Fatalf("init logger failed: %v", err)
	}
	defer log.Close()
	log.WithFields(logrus.Fields{
		"port":     cfg.AppPort,
		"cron":     cfg.CronSpec,
		"timezone": cfg.Timezone,
		"repo":     cfg.GitHubOwner + "/" + cfg.GitHubRepo,
	}).Info("config loaded")
	if cfg.GitHubToken == "" {
		log.Warn("GITHUB_TOKEN is not set, every run will fail until it is configured")
	}

	p := app.NewPipeline(cfg, log)

	// 定时触发：失败只记录日志
	s, err := scheduler.New(cfg.CronSpec, cfg.Location(), p, log)
	if err != nil {
		log.Fatalf("init scheduler failed: %v", err)
	}
	s.Start()

	// 手动触发
	gin.SetMode(gin.ReleaseMode)
	apiServer := api.NewServer(p, log)
	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: apiServer.NewEngine(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Infof("starting api server at %s ...", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server exit: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("server shutdown: %v", err)
	}
	s.Stop(shutdownCtx)
}
