package analytics

import (
	"context"
	"errors"
	"sync"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/KamisAyaka/MovieReviews/Server/MovieReviewsServer/logging"
	"github.com/KamisAyaka/MovieReviews/Server/MovieReviewsServer/metrics"
)

// 发送结果，用作指标标签
const (
	OutcomeSent     = "sent"
	OutcomeFailed   = "failed"
	OutcomeRejected = "rejected" // 熔断器打开
	OutcomeSkipped  = "skipped"  // 调度器已关闭
)

// BuildFunc 在后台 goroutine 中构造事件，返回错误时不发送
type BuildFunc func(ctx context.Context) (Event, error)

// DispatcherConfig 调度器和熔断器参数
type DispatcherConfig struct {
	Timeout          time.Duration // 单个事件的构造和发送时间上限
	FailureThreshold uint32        // 连续失败多少次后打开熔断器
	OpenTimeout      time.Duration // 熔断器打开后多久进入半开状态
}

// DefaultDispatcherConfig 默认参数
func DefaultDispatcherConfig() DispatcherConfig {
	return DispatcherConfig{
		Timeout:          5 * time.Second,
		FailureThreshold: 5,
		OpenTimeout:      30 * time.Second,
	}
}

// Dispatcher 异步发送事件
type Dispatcher struct {
	collector Collector
	breaker   *gobreaker.CircuitBreaker[struct{}]
	timeout   time.Duration

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func NewDispatcher(collector Collector, cfg DispatcherConfig) *Dispatcher {
	if collector == nil {
		collector = Nop{}
	}
	defaults := DefaultDispatcherConfig()
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaults.Timeout
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = defaults.FailureThreshold
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = defaults.OpenTimeout
	}

	breaker := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        "analytics-" + collector.Name(),
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("analytics circuit breaker state changed")
		},
	})

	return &Dispatcher{
		collector: collector,
		breaker:   breaker,
		timeout:   cfg.Timeout,
	}
}

// Dispatch 立即返回，事件在后台构造并发送
// 请求结束后 ctx 会被取消，这里只继承它的值（例如 request_id），不继承取消信号
func (d *Dispatcher) Dispatch(ctx context.Context, build BuildFunc) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.record(OutcomeSkipped)
		return
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
		defer cancel()
		d.send(sendCtx, build)
	}()
}

func (d *Dispatcher) send(ctx context.Context, build BuildFunc) {
	logger := logging.Ctx(ctx)

	event, err := build(ctx)
	if err != nil {
		d.record(OutcomeFailed)
		logger.Warn().Err(err).Msg("failed to build analytics event")
		return
	}

	_, err = d.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, d.collector.Send(ctx, event)
	})
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		d.record(OutcomeRejected)
		logger.Debug().Str("collector", d.collector.Name()).Msg("analytics event dropped: circuit open")
	case err != nil:
		d.record(OutcomeFailed)
		logger.Warn().Err(err).Str("collector", d.collector.Name()).Msg("failed to send analytics event")
	default:
		d.record(OutcomeSent)
		logger.Debug().
			Str("collector", d.collector.Name()).
			Str("category", event.Category).
			Str("dimension", event.Dimension).
			Msg("analytics event sent")
	}
}

func (d *Dispatcher) record(outcome string) {
	metrics.AnalyticsEventsTotal.WithLabelValues(d.collector.Name(), outcome).Inc()
}

// State 熔断器当前状态
func (d *Dispatcher) State() gobreaker.State {
	return d.breaker.State()
}

// Close 停止接收新事件，等待正在发送的事件完成（最多到 ctx 截止）后关闭采集器
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	var waitErr error
	select {
	case <-done:
	case <-ctx.Done():
		waitErr = ctx.Err()
	}
	return errors.Join(waitErr, d.collector.Close())
}
