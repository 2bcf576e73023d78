package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/LJTian/DailyRelay/internal/apperr"
)

const (
	DefaultGitHubAPIURL = "https://api.github.com"
	DefaultUserAgent    = "DailyRelayBot/1.0"

	// GitHub 对 Issue 标题的硬性上限
	MaxTitleRunes = 100
	ellipsis      = "..."

	githubAPIVersion     = "2022-11-28"
	githubMaxErrorBytes  = 64 * 1024
	githubMaxResultBytes = 1 << 20 // 1MB

	publishOp = "github create issue"
)

// DefaultLabels 未配置标签时使用的固定标签集合
var DefaultLabels = []string{"documentation"}

// Issue 待创建的 Issue
type Issue struct {
	Owner string
	Repo  string
	Title string
	Body  string
}

// PublishedIssue 创建成功后的结果，只作为返回值存在
type PublishedIssue struct {
	URL    string
	Number int
	Raw    map[string]any
}

// GitHubPublisher 通过 REST API 在指定仓库创建 Issue
type GitHubPublisher struct {
	BaseURL   string
	Token     string
	UserAgent string
	Labels    []string
	Client    *http.Client
}

func NewGitHubPublisher(baseURL, token string, labels []string) *GitHubPublisher {
	return &GitHubPublisher{BaseURL: baseURL, Token: token, Labels: labels}
}

// Validate 在任何网络调用之前检查凭证
func (g *GitHubPublisher) Validate() error {
	if strings.TrimSpace(g.Token) == "" {
		return apperr.ConfigError(publishOp, "GITHUB_TOKEN is not configured")
	}
	return nil
}

// TruncateTitle 超过 100 个字符时截为 97 个字符加 "..."，避免被 GitHub 拒绝
func TruncateTitle(title string) string {
	rs := []rune(title)
	if len(rs) <= MaxTitleRunes {
		return title
	}
	return string(rs[:MaxTitleRunes-len(ellipsis)]) + ellipsis
}

type createIssueRequest struct {
	Title  string   `json:"title"`
	Body   string   `json:"body"`
	Labels []string `json:"labels"`
}

func (g *GitHubPublisher) Publish(ctx context.Context, issue Issue) (*PublishedIssue, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}

	labels := g.Labels
	if len(labels) == 0 {
		labels = DefaultLabels
	}

	payload, err := json.Marshal(createIssueRequest{
		Title:  TruncateTitle(issue.Title),
		Body:   issue.Body,
		Labels: labels,
	})
	if err != nil {
		return nil, apperr.PublishError(publishOp, 0, "", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.issuesURL(issue.Owner, issue.Repo), bytes.NewReader(payload))
	if err != nil {
		return nil, apperr.PublishError(publishOp, 0, "", err)
	}
	ua := g.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	req.Header.Set("Authorization", "Bearer "+g.Token)
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", githubAPIVersion)
	req.Header.Set("User-Agent", ua)
	req.Header.Set("Content-Type", "application/json")

	client := g.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, apperr.PublishError(publishOp, 0, "", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, err := io.ReadAll(io.LimitReader(resp.Body, githubMaxErrorBytes))
		if err != nil {
			// Body 只读到一部分
			err = fmt.Errorf("read response body: %w", err)
		}
		return nil, apperr.PublishError(publishOp, resp.StatusCode, string(raw), err)
	}

	var out map[string]any
	if err := json.NewDecoder(io.LimitReader(resp.Body, githubMaxResultBytes)).Decode(&out); err != nil {
		return nil, apperr.PublishError(publishOp, resp.StatusCode, "", fmt.Errorf("decode response: %w", err))
	}

	return toPublished(out), nil
}

func (g *GitHubPublisher) issuesURL(owner, repo string) string {
	base := strings.TrimRight(g.BaseURL, "/")
	if base == "" {
		base = DefaultGitHubAPIURL
	}
	return fmt.Sprintf("%s/repos/%s/%s/issues", base, url.PathEscape(owner), url.PathEscape(repo))
}

func toPublished(raw map[string]any) *PublishedIssue {
	p := &PublishedIssue{Raw: raw}
	if s, ok := raw["html_url"].(string); ok {
		p.URL = s
	}
	if n, ok := raw["number"].(float64); ok {
		p.Number = int(n)
	}
	return p
}
