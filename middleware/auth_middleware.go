package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/KamisAyaka/MovieReviews/Server/MovieReviewsServer/logging"
	"github.com/KamisAyaka/MovieReviews/Server/MovieReviewsServer/utils"
)

// AuthMiddleware 认证中间件
// 保护电影和评论相关的全部端点，只有携带有效令牌的请求才能继续
func AuthMiddleware(issuer *utils.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 步骤 1：读取令牌
		// Authorization 头（"JWT <token>" 或 "Bearer <token>"）优先，其次是登录时写入的 HttpOnly Cookie
		token, err := utils.GetAccessToken(c)
		if err != nil {
			abortUnauthorized(c, err.Error())
			return
		}

		// 步骤 2：验证签名、算法、签发者和有效期
		claims, err := issuer.Validate(token)
		if err != nil {
			logging.Ctx(c.Request.Context()).Debug().Err(err).Msg("token rejected")
			abortUnauthorized(c, "invalid or expired token")
			return
		}

		// 步骤 3：把用户身份放进上下文，后续处理器不需要重复验证
		c.Set(utils.UserIDKey, claims.UserID)
		c.Set(utils.UsernameKey, claims.Username)

		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
}
