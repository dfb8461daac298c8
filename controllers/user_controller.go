package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/KamisAyaka/MovieReviews/Server/MovieReviewsServer/database"
	"github.com/KamisAyaka/MovieReviews/Server/MovieReviewsServer/logging"
	"github.com/KamisAyaka/MovieReviews/Server/MovieReviewsServer/models"
	"github.com/KamisAyaka/MovieReviews/Server/MovieReviewsServer/utils"
)

// CookieConfig 访问令牌 Cookie 的安全设置
// 开发环境(HTTP): Secure=false, SameSite=Lax
// 生产环境(HTTPS): Secure=true, SameSite=None（允许前端跨域携带）
type CookieConfig struct {
	Secure   bool
	SameSite http.SameSite
	MaxAge   time.Duration
}

// NewCookieConfig 根据运行环境生成 Cookie 设置
func NewCookieConfig(production bool, maxAge time.Duration) CookieConfig {
	if production {
		return CookieConfig{Secure: true, SameSite: http.SameSiteNoneMode, MaxAge: maxAge}
	}
	return CookieConfig{Secure: false, SameSite: http.SameSiteLaxMode, MaxAge: maxAge}
}

func (cc CookieConfig) set(c *gin.Context, value string, maxAge int) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     utils.AccessTokenCookie,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true, // JavaScript 无法读取，防止 XSS 窃取令牌
		Secure:   cc.Secure,
		SameSite: cc.SameSite,
	})
}

// Signup 注册新用户
// 重复的用户名返回 409 和 success:false，不会覆盖已有用户
func Signup(users UserStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.SignupRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.AuthResponse{Msg: "Invalid input data"})
			return
		}

		// 在访问数据库之前检查必填项
		if req.Username == "" || req.Password == "" {
			c.JSON(http.StatusBadRequest, models.AuthResponse{Msg: "Please include both username and password to signup."})
			return
		}
		if err := validate.Struct(req); err != nil {
			c.JSON(http.StatusBadRequest, models.AuthResponse{Msg: "Validation failed: " + err.Error()})
			return
		}

		hashedPassword, err := utils.HashPassword(req.Password)
		if err != nil {
			logging.Ctx(c.Request.Context()).Error().Err(err).Msg("failed to hash password")
			c.JSON(http.StatusInternalServerError, models.AuthResponse{Msg: "Error hashing password"})
			return
		}

		user := models.User{Name: req.Name, Username: req.Username, Password: hashedPassword}
		err = users.Create(c.Request.Context(), &user)
		switch {
		case errors.Is(err, database.ErrDuplicateIdentity):
			c.JSON(http.StatusConflict, models.AuthResponse{Msg: "A user with that username already exists."})
			return
		case err != nil:
			logging.Ctx(c.Request.Context()).Error().Err(err).Msg("failed to create user")
			c.JSON(http.StatusServiceUnavailable, models.AuthResponse{Msg: "Service unavailable, please try again later."})
			return
		}

		logging.Ctx(c.Request.Context()).Info().Str("username", user.Username).Msg("user signed up")
		c.JSON(http.StatusCreated, models.AuthResponse{Success: true, Msg: "Successfully created new user."})
	}
}

// Signin 校验用户名和密码并签发令牌
// 令牌同时出现在响应体（"JWT <token>"）和 HttpOnly Cookie 中
func Signin(users UserStore, issuer *utils.TokenIssuer, cookies CookieConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.SigninRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.AuthResponse{Msg: "Invalid input data"})
			return
		}
		if req.Username == "" || req.Password == "" {
			c.JSON(http.StatusBadRequest, models.AuthResponse{Msg: "Please include both username and password to signin."})
			return
		}

		user, err := users.FindByUsername(c.Request.Context(), req.Username)
		if errors.Is(err, database.ErrNotFound) {
			// 用户不存在和密码错误返回同样的信息，不暴露用户名是否已注册
			c.JSON(http.StatusUnauthorized, models.AuthResponse{Msg: "Authentication failed."})
			return
		}
		if err != nil {
			logging.Ctx(c.Request.Context()).Error().Err(err).Msg("failed to look up user")
			c.JSON(http.StatusServiceUnavailable, models.AuthResponse{Msg: "Service unavailable, please try again later."})
			return
		}

		if !utils.VerifyPassword(req.Password, user.Password) {
			c.JSON(http.StatusUnauthorized, models.AuthResponse{Msg: "Authentication failed."})
			return
		}

		token, err := issuer.Issue(user.ID.Hex(), user.Username)
		if err != nil {
			logging.Ctx(c.Request.Context()).Error().Err(err).Msg("failed to issue token")
			c.JSON(http.StatusInternalServerError, models.AuthResponse{Msg: "Error generating token"})
			return
		}

		cookies.set(c, token, int(cookies.MaxAge.Seconds()))
		c.JSON(http.StatusOK, models.AuthResponse{Success: true, Token: utils.TokenScheme + " " + token})
	}
}

// Signout 删除访问令牌 Cookie
// 令牌是无状态的，服务端不需要记录，过期后自动失效
func Signout(cookies CookieConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		cookies.set(c, "", -1) // MaxAge < 0 表示立即删除
		c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
	}
}
