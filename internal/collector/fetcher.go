package collector

import "context"

// Digest 一天的日报内容，拉取后不再修改
type Digest struct {
	Date            string // YYYYMMDD
	Stories         []Story
	TrendingStories []Story
}

// Story 日报中的一篇文章。普通文章使用 Images，热门文章（top_stories）只有单张 Image
type Story struct {
	ID     int64
	Title  string
	Hint   string
	URL    string
	Images []string
	Image  string
}

// DigestFetcher 抽象日报数据源
type DigestFetcher interface {
	Name() string
	Fetch(ctx context.Context) (*Digest, error)
}
