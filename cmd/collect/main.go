package main

import (
	"context"
	"os"

	"github.com/LJTian/DailyRelay/internal/app"
	"github.com/LJTian/DailyRelay/internal/config"
	"github.com/LJTian/DailyRelay/internal/logger"
	"github.com/LJTian/DailyRelay/internal/pipeline"
	"github.com/sirupsen/logrus"
)

// 仅执行一次发布任务的命令行入口：适合手动触发或交给外部定时器调用
func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("load config failed: %v", err)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		logrus.Fatalf("init logger failed: %v", err)
	}

	res, err := app.NewPipeline(cfg, log).Run(context.Background())
	if err != nil {
		pipeline.LogFailure(log, "once", err)
		// os.Exit 不会执行 defer
		_ = log.Close()
		os.Exit(1)
	}

	log.WithField("issue_url", res.IssueURL).Info("issue created")
	_ = log.Close()
}
