package processor

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/LJTian/DailyRelay/internal/collector"
)

const (
	TitlePrefix   = "知乎日报"
	UnknownAuthor = "未知作者"

	trendingHeading = "热门文章"
	footerLayout    = "2006-01-02 15:04:05"
)

var (
	// "作者 · 5 分钟阅读" 或 "作者 / 5 分钟阅读"
	hintWithAuthorRe = regexp.MustCompile(`^(.*?)\s*[·/]\s*(\d+\s*分钟阅读)$`)

	// 没有分隔符时只取末尾的阅读时间
	readingTimeRe = regexp.MustCompile(`(\d+\s*分钟阅读)$`)
)

// 东八区，用于生成时间展示
var locEast8 *time.Location

func init() {
	locEast8, _ = time.LoadLocation("Asia/Shanghai")
	if locEast8 == nil {
		locEast8 = time.FixedZone("CST", 8*3600)
	}
}

// Hint 从 Story.Hint 中拆出的作者与阅读时间，不做存储，每次渲染时重新计算
type Hint struct {
	Author      string
	ReadingTime string
}

// ParseHint 对任意输入都返回结果，不会 panic。
// 找不到阅读时间时整段视为作者；有阅读时间但没有分隔符时作者记为“未知作者”。
func ParseHint(hint string) Hint {
	h := strings.TrimSpace(hint)
	if h == "" {
		return Hint{Author: UnknownAuthor}
	}

	if m := hintWithAuthorRe.FindStringSubmatch(h); m != nil {
		author := strings.TrimSpace(m[1])
		if author == "" {
			author = UnknownAuthor
		}
		return Hint{Author: author, ReadingTime: m[2]}
	}

	if m := readingTimeRe.FindStringSubmatch(h); m != nil {
		return Hint{Author: UnknownAuthor, ReadingTime: m[1]}
	}

	return Hint{Author: h}
}

// FormatDate 把 YYYYMMDD 转成 YYYY-MM-DD；不是 8 位数字时原样返回
func FormatDate(date string) string {
	if len(date) != 8 {
		return date
	}
	for _, c := range date {
		if c < '0' || c > '9' {
			return date
		}
	}
	return date[0:4] + "-" + date[4:6] + "-" + date[6:8]
}

// IssueTitle 只由日期决定，保证同一天的标题稳定，便于按日期去重检索
func IssueTitle(d *collector.Digest) string {
	return TitlePrefix + " " + FormatDate(d.Date)
}

// MarkdownProcessor 把日报渲染成 Markdown 文档。
// 除了末尾的生成时间外，输出完全由输入决定。
type MarkdownProcessor struct {
	Now      func() time.Time
	Location *time.Location
}

func NewMarkdownProcessor(loc *time.Location) *MarkdownProcessor {
	if loc == nil {
		loc = locEast8
	}
	return &MarkdownProcessor{Now: time.Now, Location: loc}
}

func (p *MarkdownProcessor) Title(d *collector.Digest) string {
	return IssueTitle(d)
}

func (p *MarkdownProcessor) Format(d *collector.Digest) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", IssueTitle(d))

	for i, s := range d.Stories {
		image := ""
		if len(s.Images) > 0 {
			image = s.Images[0]
		}
		writeStory(&b, "##", i+1, s, image)
	}

	if len(d.TrendingStories) > 0 {
		fmt.Fprintf(&b, "# %s\n\n", trendingHeading)
		for i, s := range d.TrendingStories {
			writeStory(&b, "###", i+1, s, s.Image)
		}
	}

	fmt.Fprintf(&b, "*自动生成于 %s*", p.now().Format(footerLayout))
	return b.String()
}

func (p *MarkdownProcessor) now() time.Time {
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	loc := p.Location
	if loc == nil {
		loc = locEast8
	}
	return now().In(loc)
}

func writeStory(b *strings.Builder, level string, index int, s collector.Story, image string) {
	fmt.Fprintf(b, "%s %d. %s\n", level, index, s.Title)

	h := ParseHint(s.Hint)
	if h.ReadingTime != "" {
		fmt.Fprintf(b, "**作者**: %s | **阅读时间**: %s\n\n", h.Author, h.ReadingTime)
	} else {
		fmt.Fprintf(b, "**作者**: %s\n\n", h.Author)
	}

	// 没有图片时不输出空引用
	if image != "" {
		fmt.Fprintf(b, "![图片](%s)\n\n", image)
	}

	fmt.Fprintf(b, "[阅读原文](%s)\n\n", s.URL)
	b.WriteString("---\n\n")
}
