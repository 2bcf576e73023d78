package scheduler

import (
	"context"
	"time"

	"github.com/LJTian/DailyRelay/internal/pipeline"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Runner 执行一次完整的发布流程
type Runner interface {
	Run(ctx context.Context) (*pipeline.Result, error)
}

type Scheduler struct {
	cron   *cron.Cron
	runner Runner
	log    logrus.FieldLogger
}

func New(spec string, loc *time.Location, runner Runner, log logrus.FieldLogger) (*Scheduler, error) {
	if loc == nil {
		loc = time.Local
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	log = log.WithField("component", "scheduler")

	// cron 自身的日志只输出错误；任务 panic 会被 Recover 捕获并记录，不会拖垮进程
	cronLog := cron.PrintfLogger(log)
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithLogger(cronLog),
		cron.WithChain(cron.Recover(cronLog)),
	)

	s := &Scheduler{
		cron:   c,
		runner: runner,
		log:    log,
	}

	if _, err := c.AddFunc(spec, s.runOnce); err != nil {
		return nil, err
	}

	return s, nil
}

// Start 只启动定时器，不在启动时补跑，避免重启时重复创建 Issue
func (s *Scheduler) Start() {
	s.cron.Start()
	for _, e := range s.cron.Entries() {
		s.log.WithField("next", e.Next.Format(time.RFC3339)).Info("cron job scheduled")
	}
}

// Stop 停止定时器并等待正在执行的任务结束，ctx 到期则不再等待
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.log.Warn("stop scheduler: running job not finished before deadline")
	}
}

// RunOnce 对外暴露的单次执行入口，错误只记录不返回
func (s *Scheduler) RunOnce() {
	s.runOnce()
}

func (s *Scheduler) runOnce() {
	s.log.Info("start scheduled publish job...")

	res, err := s.runner.Run(context.Background())
	if err != nil {
		pipeline.LogFailure(s.log, "cron", err)
		return
	}

	s.log.WithField("issue_url", res.IssueURL).Info("scheduled publish job done")
}
