// Package middleware 提供 gin 中间件：认证、请求 ID、访问日志、指标、限流和超时
package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/KamisAyaka/MovieReviews/Server/MovieReviewsServer/logging"
)

// RequestIDHeader 请求 ID 使用的 HTTP 头
const RequestIDHeader = "X-Request-ID"

// maxRequestIDLength 客户端传入的请求 ID 过长时重新生成
const maxRequestIDLength = 128

// RequestID 为每个请求分配 ID，写入响应头和请求的 context
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" || len(id) > maxRequestIDLength {
			id = logging.NewRequestID()
		}

		c.Header(RequestIDHeader, id)
		c.Request = c.Request.WithContext(logging.ContextWithRequestID(c.Request.Context(), id))
		c.Next()
	}
}
