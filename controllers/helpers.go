package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/KamisAyaka/MovieReviews/Server/MovieReviewsServer/logging"
	"github.com/KamisAyaka/MovieReviews/Server/MovieReviewsServer/models"
)

// 全局数据验证器，注册了 genre 规则
var validate = models.NewValidator()

// wantsReviews 查询参数 reviews=true 时返回 true
func wantsReviews(c *gin.Context) bool {
	v, err := strconv.ParseBool(c.Query("reviews"))
	return err == nil && v
}

// internalError 记录真实错误，只返回通用的错误信息给客户端
func internalError(c *gin.Context, err error, msg string) {
	_ = c.Error(err)
	logging.Ctx(c.Request.Context()).Error().Err(err).Str("path", c.FullPath()).Msg(msg)
	c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
}

// Health 健康检查，数据库不可达时返回 503
func Health(db Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(c.Request.Context()); err != nil {
			logging.Ctx(c.Request.Context()).Warn().Err(err).Msg("health check failed")
			c.JSON(http.StatusServiceUnavailable, gin.H{"message": "Database unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Server is running"})
	}
}
