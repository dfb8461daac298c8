package routes

import (
	"github.com/gin-gonic/gin"

	controller "github.com/KamisAyaka/MovieReviews/Server/MovieReviewsServer/controllers"
)

// SetupUnprotectedRoutes 注册不需要令牌的路由
// 注册和登录接口按客户端 IP 限流
func SetupUnprotectedRoutes(router *gin.Engine, opts Options, deps Dependencies) {
	router.GET("/health", controller.Health(deps.DB))
	router.GET("/metrics", promHandler())

	auth := router.Group("/")
	if deps.AuthLimiter != nil {
		auth.Use(deps.AuthLimiter.Middleware())
	}
	auth.POST("/signup", controller.Signup(deps.Users))
	auth.POST("/signin", controller.Signin(deps.Users, deps.Issuer, opts.Cookies))
	auth.POST("/signout", controller.Signout(opts.Cookies))
}
