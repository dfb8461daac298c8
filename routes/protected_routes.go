package routes

import (
	"github.com/gin-gonic/gin"

	controller "github.com/KamisAyaka/MovieReviews/Server/MovieReviewsServer/controllers"
	"github.com/KamisAyaka/MovieReviews/Server/MovieReviewsServer/middleware"
)

// SetupProtectedRoutes 注册需要令牌的路由
// 认证中间件只挂在这个分组上，不影响 /health、/signup 等路由
func SetupProtectedRoutes(router *gin.Engine, deps Dependencies) {
	protected := router.Group("/")
	protected.Use(middleware.AuthMiddleware(deps.Issuer))

	createReview := controller.CreateReview(deps.Reviews, deps.Movies, deps.Events)

	protected.GET("/movies", controller.GetMovies(deps.Movies))
	protected.GET("/movies/:id", controller.GetMovie(deps.Movies))
	protected.POST("/movies", controller.AddMovie(deps.Movies))
	protected.PUT("/movies/:title", controller.UpdateMovie(deps.Movies))
	protected.DELETE("/movies/:title", controller.DeleteMovie(deps.Movies))
	protected.GET("/movies/:id/reviews", controller.GetMovieReviews(deps.Reviews))
	protected.POST("/movies/:id/reviews", createReview)

	protected.GET("/reviews", controller.GetReviews(deps.Reviews))
	protected.POST("/reviews", createReview)
	protected.DELETE("/reviews/:id", controller.DeleteReview(deps.Reviews))
}
