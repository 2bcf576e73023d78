package pipeline

import (
	"context"

	"github.com/LJTian/DailyRelay/internal/apperr"
	"github.com/LJTian/DailyRelay/internal/collector"
	"github.com/LJTian/DailyRelay/internal/publisher"
	"github.com/sirupsen/logrus"
)

// Formatter 把日报渲染为 Issue 的标题与正文
type Formatter interface {
	Title(d *collector.Digest) string
	Format(d *collector.Digest) string
}

// Publisher 创建 Issue；Validate 必须在不发起网络请求的前提下检查凭证
type Publisher interface {
	Validate() error
	Publish(ctx context.Context, issue publisher.Issue) (*publisher.PublishedIssue, error)
}

// Result 一次成功运行的产物
type Result struct {
	Title    string
	IssueURL string
	Issue    *publisher.PublishedIssue
}

// Pipeline 拉取 → 渲染 → 发布，顺序执行，不持有任何跨调用的可变状态，
// 因此定时任务与手动触发可以并发调用 Run 而无需加锁。
type Pipeline struct {
	fetcher   collector.DigestFetcher
	formatter Formatter
	publisher Publisher
	owner     string
	repo      string
	log       logrus.FieldLogger
}

func New(f collector.DigestFetcher, fm Formatter, p Publisher, owner, repo string, log logrus.FieldLogger) *Pipeline {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Pipeline{
		fetcher:   f,
		formatter: fm,
		publisher: p,
		owner:     owner,
		repo:      repo,
		log:       log.WithField("component", "pipeline"),
	}
}

// Run 执行一次完整流程，遇到第一个错误即返回；要么完整创建一个 Issue，要么什么都不创建
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	// 缺少 GitHub 凭证时在任何网络请求之前失败
	if err := p.publisher.Validate(); err != nil {
		return nil, err
	}

	p.log.WithField("source", p.fetcher.Name()).Info("fetch digest...")
	digest, err := p.fetcher.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	title := p.formatter.Title(digest)
	body := p.formatter.Format(digest)
	p.log.WithFields(logrus.Fields{
		"date":     digest.Date,
		"stories":  len(digest.Stories),
		"trending": len(digest.TrendingStories),
	}).Info("digest formatted")

	issue, err := p.publisher.Publish(ctx, publisher.Issue{
		Owner: p.owner,
		Repo:  p.repo,
		Title: title,
		Body:  body,
	})
	if err != nil {
		return nil, err
	}

	p.log.WithField("issue_url", issue.URL).Info("issue created")
	return &Result{Title: title, IssueURL: issue.URL, Issue: issue}, nil
}

// LogFailure 统一记录失败，带上错误类别
func LogFailure(log logrus.FieldLogger, trigger string, err error) {
	log.WithFields(logrus.Fields{
		"trigger": trigger,
		"kind":    apperr.KindOf(err).String(),
	}).WithError(err).Error("publish daily digest failed")
}
