package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	AppPort  string `yaml:"app_port"`
	CronSpec string `yaml:"cron_spec"`
	Timezone string `yaml:"timezone"`

	AlapiToken  string `yaml:"alapi_token"`
	ZhihuAPIURL string `yaml:"zhihu_api_url"`

	GitHubOwner  string   `yaml:"github_owner"`
	GitHubRepo   string   `yaml:"github_repo"`
	GitHubToken  string   `yaml:"github_token"`
	GitHubAPIURL string   `yaml:"github_api_url"`
	IssueLabels  []string `yaml:"issue_labels"`

	Log LogConfig `yaml:"log"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	File   string `yaml:"file"`
	Format string `yaml:"format"` // text（默认）或 json
}

func defaults() *Config {
	return &Config{
		AppPort:      "8787",
		CronSpec:     "0 9 * * *",
		Timezone:     "Asia/Shanghai",
		ZhihuAPIURL:  "https://v2.alapi.cn/api/zhihu/today",
		GitHubAPIURL: "https://api.github.com",
		IssueLabels:  []string{"documentation"},
		Log:          LogConfig{Level: "info", Format: "text"},
	}
}

// Load 依次应用默认值、可选的 YAML 文件（CONFIG_FILE）与环境变量，环境变量优先。
// 凭证缺失不会在这里报错：GitHub token 缺失由每次运行在发请求前拦截，其余缺失表现为请求失败。
func Load() (*Config, error) {
	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	cfg.AppPort = getEnv("APP_PORT", cfg.AppPort)
	cfg.CronSpec = getEnv("CRON_SPEC", cfg.CronSpec)
	cfg.Timezone = getEnv("TIMEZONE", cfg.Timezone)
	cfg.AlapiToken = getEnv("ALAPI_TOKEN", cfg.AlapiToken)
	cfg.ZhihuAPIURL = getEnv("ZHIHU_API_URL", cfg.ZhihuAPIURL)
	cfg.GitHubOwner = getEnv("GITHUB_OWNER", cfg.GitHubOwner)
	cfg.GitHubRepo = getEnv("GITHUB_REPO", cfg.GitHubRepo)
	cfg.GitHubToken = getEnv("GITHUB_TOKEN", cfg.GitHubToken)
	cfg.GitHubAPIURL = getEnv("GITHUB_API_URL", cfg.GitHubAPIURL)
	if v := os.Getenv("ISSUE_LABELS"); v != "" {
		cfg.IssueLabels = splitList(v)
	}
	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.File = getEnv("LOG_FILE", cfg.Log.File)
	cfg.Log.Format = getEnv("LOG_FORMAT", cfg.Log.Format)

	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// Location 解析时区，失败时退回东八区固定偏移
func (c *Config) Location() *time.Location {
	if loc, err := time.LoadLocation(c.Timezone); err == nil && c.Timezone != "" {
		return loc
	}
	return time.FixedZone("CST", 8*60*60)
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
