package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/KamisAyaka/MovieReviews/Server/MovieReviewsServer/metrics"
)

// unmatchedRoute 没有匹配到路由的请求统一归到这个标签，避免路径导致标签基数爆炸
const unmatchedRoute = "unmatched"

// Metrics 记录请求数和耗时，route 标签使用路由模板（例如 /movies/:id）
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		metrics.RecordAPIRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
