// Package analytics 把评论创建事件异步发送到外部采集服务
//
// 发送在独立的 goroutine 中进行，结果只记录日志和指标，不影响 HTTP 响应，也不重试。
// 连续失败时熔断器打开，暂停向不可用的采集服务发送。
package analytics

import (
	"context"
	"time"
)

// 评论事件的固定字段
const (
	ReviewAction   = "POST /reviews"
	ReviewLabel    = "API Request for Movie Review"
	UnknownGenre   = "Unknown"
	defaultSubject = "moviereviews.analytics"
)

// Event 一次自定义事件
// Dimension 和 Metric 对应 GA 的 cd1 / cm1
type Event struct {
	Category  string `json:"category"`
	Action    string `json:"action"`
	Label     string `json:"label"`
	Value     int    `json:"value"`
	Dimension string `json:"dimension"`
	Metric    int    `json:"metric"`
}

// ReviewEvent 按电影类型和标题构造评论事件，类型为空时记为 Unknown
func ReviewEvent(genre, title string, rating int) Event {
	if genre == "" {
		genre = UnknownGenre
	}
	return Event{
		Category:  genre,
		Action:    ReviewAction,
		Label:     ReviewLabel,
		Value:     rating,
		Dimension: title,
		Metric:    rating,
	}
}

// Collector 事件的接收方
type Collector interface {
	Name() string
	Send(ctx context.Context, event Event) error
	Close() error
}

// Nop 没有配置采集服务时使用，丢弃所有事件
type Nop struct{}

func (Nop) Name() string { return "nop" }

func (Nop) Send(context.Context, Event) error { return nil }

func (Nop) Close() error { return nil }

// CollectorOptions 选择采集服务的配置
type CollectorOptions struct {
	GAKey      string
	GAEndpoint string
	NATSURL    string
	Subject    string
	Timeout    time.Duration
}

// NewCollector 配置了 NATS 时优先使用 NATS，其次是 GA，都没有配置时返回 Nop
func NewCollector(opts CollectorOptions) (Collector, error) {
	switch {
	case opts.NATSURL != "":
		return NewNATSCollector(opts.NATSURL, opts.Subject)
	case opts.GAKey != "":
		return NewHTTPCollector(opts.GAEndpoint, opts.GAKey, opts.Timeout)
	default:
		return Nop{}, nil
	}
}
