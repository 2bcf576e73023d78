package app

import (
	"github.com/LJTian/DailyRelay/internal/collector"
	"github.com/LJTian/DailyRelay/internal/config"
	"github.com/LJTian/DailyRelay/internal/pipeline"
	"github.com/LJTian/DailyRelay/internal/processor"
	"github.com/LJTian/DailyRelay/internal/publisher"
	"github.com/sirupsen/logrus"
)

// NewPipeline 按配置组装 拉取 → 渲染 → 发布 三个阶段
func NewPipeline(cfg *config.Config, log logrus.FieldLogger) *pipeline.Pipeline {
	fetcher := collector.NewZhihuDailyFetcher(cfg.ZhihuAPIURL, cfg.AlapiToken)
	md := processor.NewMarkdownProcessor(cfg.Location())
	pub := publisher.NewGitHubPublisher(cfg.GitHubAPIURL, cfg.GitHubToken, cfg.IssueLabels)

	return pipeline.New(fetcher, md, pub, cfg.GitHubOwner, cfg.GitHubRepo, log)
}
