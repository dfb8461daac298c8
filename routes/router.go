// Package routes 组装 gin 路由：全局中间件、不需要认证的路由和需要认证的路由
package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	controller "github.com/KamisAyaka/MovieReviews/Server/MovieReviewsServer/controllers"
	"github.com/KamisAyaka/MovieReviews/Server/MovieReviewsServer/logging"
	"github.com/KamisAyaka/MovieReviews/Server/MovieReviewsServer/middleware"
	"github.com/KamisAyaka/MovieReviews/Server/MovieReviewsServer/utils"
)

// Options 路由需要的配置
type Options struct {
	AllowedOrigins []string
	RequestTimeout time.Duration
	Cookies        controller.CookieConfig
}

// Dependencies 处理器依赖的存储和服务，由 main 创建并注入
type Dependencies struct {
	DB          controller.Pinger
	Users       controller.UserStore
	Movies      controller.MovieStore
	Reviews     controller.ReviewStore
	Events      controller.EventDispatcher
	Issuer      *utils.TokenIssuer
	AuthLimiter *middleware.RateLimiter
}

// NewRouter 创建配置好全部中间件和路由的 gin 引擎
func NewRouter(opts Options, deps Dependencies) *gin.Engine {
	router := gin.New()

	router.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logging.Ctx(c.Request.Context()).Error().Interface("panic", recovered).Msg("recovered from panic")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}))
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.Metrics())
	router.Use(cors.New(corsConfig(opts.AllowedOrigins)))
	router.Use(middleware.Timeout(opts.RequestTimeout))

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Route not found"})
	})

	// 设置不需要认证的路由（健康检查、指标、注册、登录）
	SetupUnprotectedRoutes(router, opts, deps)

	// 设置需要认证的路由（电影和评论）
	SetupProtectedRoutes(router, deps)

	return router
}

// corsConfig 允许前端跨域访问 API 并携带 Cookie
func corsConfig(origins []string) cors.Config {
	config := cors.DefaultConfig()
	config.AllowOrigins = origins
	config.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader}
	config.ExposeHeaders = []string{"Content-Length", middleware.RequestIDHeader}
	config.AllowCredentials = true
	// 12 小时内浏览器不需要重复发送 OPTIONS 预检请求
	config.MaxAge = 12 * time.Hour
	return config
}

// promHandler /metrics 端点
func promHandler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
