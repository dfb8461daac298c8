package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/KamisAyaka/MovieReviews/Server/MovieReviewsServer/analytics"
	"github.com/KamisAyaka/MovieReviews/Server/MovieReviewsServer/config"
	controller "github.com/KamisAyaka/MovieReviews/Server/MovieReviewsServer/controllers"
	"github.com/KamisAyaka/MovieReviews/Server/MovieReviewsServer/database"
	"github.com/KamisAyaka/MovieReviews/Server/MovieReviewsServer/logging"
	"github.com/KamisAyaka/MovieReviews/Server/MovieReviewsServer/middleware"
	"github.com/KamisAyaka/MovieReviews/Server/MovieReviewsServer/routes"
	"github.com/KamisAyaka/MovieReviews/Server/MovieReviewsServer/utils"
)

// HTTP 服务器超时设置
const (
	readHeaderTimeout = 5 * time.Second
	readTimeout       = 15 * time.Second
	writeTimeout      = 30 * time.Second
	idleTimeout       = 60 * time.Second

	limiterCleanupInterval = time.Minute
)

func main() {
	if err := run(); err != nil {
		logging.Error().Err(err).Msg("server exited with error")
		os.Exit(1)
	}
}

func run() error {
	// 加载配置：.env 文件 + 环境变量
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// 收到 SIGINT/SIGTERM 时取消 ctx，开始优雅关闭
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 连接到 MongoDB 数据库
	connectCtx, cancel := context.WithTimeout(ctx, cfg.RequestTimeout)
	db, err := database.Connect(connectCtx, cfg.MongoURL, cfg.DatabaseName)
	cancel()
	if err != nil {
		return err
	}
	// 退出时断开数据库连接，放在最后执行
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := db.Close(closeCtx); err != nil {
			logging.Error().Err(err).Msg("failed to disconnect from MongoDB")
		}
	}()

	issuer, err := utils.NewTokenIssuer(cfg.SecretKey, "MovieReviews", cfg.TokenTTL)
	if err != nil {
		return err
	}

	collector, err := analytics.NewCollector(analytics.CollectorOptions{
		GAKey:      cfg.GAKey,
		GAEndpoint: cfg.GAEndpoint,
		NATSURL:    cfg.AnalyticsNATSURL,
		Subject:    cfg.AnalyticsSubject,
		Timeout:    cfg.AnalyticsTimeout,
	})
	if err != nil {
		return fmt.Errorf("failed to create analytics collector: %w", err)
	}
	dispatcherCfg := analytics.DefaultDispatcherConfig()
	dispatcherCfg.Timeout = cfg.AnalyticsTimeout
	dispatcher := analytics.NewDispatcher(collector, dispatcherCfg)
	logging.Info().Str("collector", collector.Name()).Msg("analytics configured")

	limiter := middleware.NewRateLimiter(cfg.AuthRateLimit, cfg.AuthRateBurst)

	router := routes.NewRouter(routes.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		RequestTimeout: cfg.RequestTimeout,
		Cookies:        controller.NewCookieConfig(cfg.IsProduction(), cfg.TokenTTL),
	}, routes.Dependencies{
		DB:          db,
		Users:       database.NewUserStore(db),
		Movies:      database.NewMovieStore(db),
		Reviews:     database.NewReviewStore(db),
		Events:      dispatcher,
		Issuer:      issuer,
		AuthLimiter: limiter,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}

	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", srv.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", srv.Addr, err)
	}

	grp, grpCtx := errgroup.WithContext(ctx)
	grp.Go(func() error {
		logging.Info().Str("addr", srv.Addr).Strs("allowed_origins", cfg.AllowedOrigins).Msg("server starting")
		if err := srv.Serve(listener); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	grp.Go(func() error {
		limiter.Run(grpCtx, limiterCleanupInterval)
		return nil
	})
	grp.Go(func() error {
		<-grpCtx.Done()
		logging.Info().Msg("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(grpCtx), cfg.ShutdownTimeout)
		defer cancel()
		// 先停止接收请求，再等待后台的分析事件发送完成
		return errors.Join(srv.Shutdown(shutdownCtx), dispatcher.Close(shutdownCtx))
	})

	if err := grp.Wait(); err != nil {
		return err
	}
	logging.Info().Msg("server stopped")
	return nil
}
