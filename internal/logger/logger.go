package logger

import (
	"fmt"
	"io"
	"os"

	"github.com/LJTian/DailyRelay/internal/config"
	"github.com/sirupsen/logrus"
)

// ServiceName 每条日志默认带上的 service 字段
const ServiceName = "daily-relay"

// Logger 包装 logrus，持有可选的日志文件，进程退出前调用 Close
type Logger struct {
	*logrus.Logger
	file *os.File
}

// New 按配置创建日志：控制台输出，可选同时写入文件；format 为 json 时输出 JSON
func New(cfg config.LogConfig) (*Logger, error) {
	l := &Logger{Logger: logrus.New()}

	switch cfg.Format {
	case "json":
		l.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02 15:04:05"})
	default:
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: "2006-01-02 15:04:05"})
	}

	var out io.Writer = os.Stdout
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file %s: %w", cfg.File, err)
		}
		l.file = f
		out = io.MultiWriter(os.Stdout, f)
	}
	l.SetOutput(out)
	l.AddHook(defaultFields{"service": ServiceName})

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
		if cfg.Level != "" {
			l.WithField("level", cfg.Level).Warn("unknown log level, using info")
		}
	}
	l.SetLevel(level)

	return l, nil
}

// Close 关闭日志文件；没有文件时什么都不做
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	l.SetOutput(os.Stdout)
	return err
}

// defaultFields 给未显式设置这些字段的日志补上默认值
type defaultFields logrus.Fields

func (d defaultFields) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (d defaultFields) Fire(e *logrus.Entry) error {
	for k, v := range d {
		if _, ok := e.Data[k]; !ok {
			e.Data[k] = v
		}
	}
	return nil
}
