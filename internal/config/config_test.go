package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetEnvWithDefault(t *testing.T) {
	const key = "TEST_APP_PORT"

	// 环境变量未设置时，应该返回默认值
	_ = os.Unsetenv(key)
	assert.Equal(t, "9000", getEnv(key, "9000"))

	// 环境变量设置后，应优先返回环境变量
	t.Setenv(key, "8080")
	assert.Equal(t, "8080", getEnv(key, "9000"))
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("GITHUB_TOKEN", "")
	t.Setenv("ISSUE_LABELS", "")
	t.Setenv("APP_PORT", "")
	t.Setenv("CRON_SPEC", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8787", cfg.AppPort)
	assert.Equal(t, "0 9 * * *", cfg.CronSpec)
	assert.Equal(t, []string{"documentation"}, cfg.IssueLabels)
	assert.Empty(t, cfg.GitHubToken)
}

func TestLoadFileThenEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "relay.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
app_port: "9100"
github_owner: file-owner
github_repo: file-repo
issue_labels: [daily, zhihu]
log:
  level: debug
`), 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("GITHUB_OWNER", "env-owner")
	t.Setenv("GITHUB_REPO", "")
	t.Setenv("ISSUE_LABELS", "")
	t.Setenv("APP_PORT", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9100", cfg.AppPort)
	assert.Equal(t, "env-owner", cfg.GitHubOwner)
	assert.Equal(t, "file-repo", cfg.GitHubRepo)
	assert.Equal(t, []string{"daily", "zhihu"}, cfg.IssueLabels)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadLabelsFromEnv(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("ISSUE_LABELS", "documentation, daily , ,zhihu")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"documentation", "daily", "zhihu"}, cfg.IssueLabels)
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "nope.yaml"))
	_, err := Load()
	assert.Error(t, err)
}

func TestLocationFallback(t *testing.T) {
	cfg := &Config{Timezone: "Not/AZone"}
	_, offset := time.Now().In(cfg.Location()).Zone()
	assert.Equal(t, 8*60*60, offset)
}
