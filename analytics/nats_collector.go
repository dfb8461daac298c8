package analytics

import (
	"context"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/nats-io/nats.go"
)

// NATSCollector 把事件以 JSON 发布到 NATS 主题，由下游服务转发到分析平台
type NATSCollector struct {
	nc      *nats.Conn
	subject string
}

// NewNATSCollector 连接 NATS，连接断开后会自动重连
func NewNATSCollector(url, subject string) (*NATSCollector, error) {
	if subject == "" {
		subject = defaultSubject
	}
	nc, err := nats.Connect(url,
		nats.Name("moviereviews-analytics"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(10),
		nats.ReconnectWait(time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	return &NATSCollector{nc: nc, subject: subject}, nil
}

func (n *NATSCollector) Name() string { return "nats" }

// Send 发布后等待服务器确认，连接不可用时返回错误
func (n *NATSCollector) Send(ctx context.Context, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal analytics event: %w", err)
	}
	if err := n.nc.Publish(n.subject, data); err != nil {
		return fmt.Errorf("publish analytics event: %w", err)
	}
	if err := n.nc.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("flush analytics event: %w", err)
	}
	return nil
}

// Close 发送完缓冲区中的消息后关闭连接
func (n *NATSCollector) Close() error {
	if n.nc.IsClosed() {
		return nil
	}
	return n.nc.Drain()
}
