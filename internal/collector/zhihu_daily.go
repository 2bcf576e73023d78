package collector

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/LJTian/DailyRelay/internal/apperr"
	"github.com/gocolly/colly/v2"
)

const (
	DefaultZhihuDailyURL = "https://v2.alapi.cn/api/zhihu/today"
	DefaultUserAgent     = "DailyRelayBot/1.0"

	zhihuOp = "zhihu daily"
)

// ZhihuDailyFetcher 通过 ALAPI 拉取知乎日报。
// 每次调用都发起一次新的请求：不重试、不缓存。
type ZhihuDailyFetcher struct {
	BaseURL   string
	Token     string
	UserAgent string
	// 为 0 时沿用 colly 的默认超时
	Timeout time.Duration
}

func NewZhihuDailyFetcher(baseURL, token string) *ZhihuDailyFetcher {
	return &ZhihuDailyFetcher{BaseURL: baseURL, Token: token}
}

func (z *ZhihuDailyFetcher) Name() string {
	return "zhihu_daily"
}

// 对应 ALAPI /api/zhihu 的响应结构
type zhihuEnvelope struct {
	Success bool       `json:"success"`
	Code    int        `json:"code"`
	Message string     `json:"message"`
	Data    *zhihuData `json:"data"`
}

type zhihuData struct {
	Date       string        `json:"date"`
	Stories    *[]zhihuStory `json:"stories"`
	TopStories []zhihuStory  `json:"top_stories"`
}

type zhihuStory struct {
	ID     int64    `json:"id"`
	Title  string   `json:"title"`
	Hint   string   `json:"hint"`
	URL    string   `json:"url"`
	Images []string `json:"images"`
	Image  string   `json:"image"`
}

func (z *ZhihuDailyFetcher) Fetch(ctx context.Context) (*Digest, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperr.FetchError(zhihuOp, 0, err)
	}

	reqURL, err := z.requestURL()
	if err != nil {
		return nil, apperr.FetchError(zhihuOp, 0, err)
	}

	ua := z.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}

	// 一次请求一个 collector，避免 colly 记录已访问 URL 导致第二次调用被拒绝
	c := colly.NewCollector(
		colly.UserAgent(ua),
		colly.ParseHTTPErrorResponse(),
	)
	if z.Timeout > 0 {
		c.SetRequestTimeout(z.Timeout)
	}

	var (
		status int
		body   []byte
	)
	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept", "application/json")
	})
	c.OnResponse(func(r *colly.Response) {
		status = r.StatusCode
		body = r.Body
	})

	if err := c.Visit(reqURL); err != nil {
		return nil, apperr.FetchError(zhihuOp, status, z.redact(err))
	}
	if status != http.StatusOK {
		return nil, apperr.FetchError(zhihuOp, status, nil)
	}

	return parseDigest(body)
}

// redact 去掉错误里的请求 URL，避免 token 出现在日志和 /trigger 的响应中
func (z *ZhihuDailyFetcher) redact(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		err = ue.Err
	}
	if z.Token != "" && strings.Contains(err.Error(), z.Token) {
		return errors.New(strings.ReplaceAll(err.Error(), z.Token, "***"))
	}
	return err
}

func (z *ZhihuDailyFetcher) requestURL() (string, error) {
	base := z.BaseURL
	if base == "" {
		base = DefaultZhihuDailyURL
	}
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("token", z.Token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// parseDigest 校验 ALAPI 的响应信封并转换为 Digest
func parseDigest(body []byte) (*Digest, error) {
	var env zhihuEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, apperr.MalformedResponseError(zhihuOp, "decode response", err)
	}

	if !env.Success || env.Code != http.StatusOK {
		return nil, apperr.UpstreamError(zhihuOp, env.Message)
	}

	if env.Data == nil {
		return nil, apperr.MalformedResponseError(zhihuOp, "missing data", nil)
	}
	if env.Data.Stories == nil {
		return nil, apperr.MalformedResponseError(zhihuOp, "missing stories", nil)
	}
	if !isEightDigits(env.Data.Date) {
		return nil, apperr.MalformedResponseError(zhihuOp, "invalid date "+strconv.Quote(env.Data.Date), nil)
	}

	return &Digest{
		Date:            env.Data.Date,
		Stories:         toStories(*env.Data.Stories),
		TrendingStories: toStories(env.Data.TopStories),
	}, nil
}

func toStories(in []zhihuStory) []Story {
	if len(in) == 0 {
		return nil
	}
	out := make([]Story, 0, len(in))
	for _, s := range in {
		out = append(out, Story{
			ID:     s.ID,
			Title:  s.Title,
			Hint:   s.Hint,
			URL:    s.URL,
			Images: s.Images,
			Image:  s.Image,
		})
	}
	return out
}

func isEightDigits(s string) bool {
	if len(s) != 8 {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
