package utils

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	jwt "github.com/golang-jwt/jwt/v5"
)

// TokenScheme signin 返回的令牌前缀，例如 "JWT eyJhbGci..."
const TokenScheme = "JWT"

// AccessTokenCookie 存放访问令牌的 Cookie 名称
const AccessTokenCookie = "access_token"

// ErrNoToken 请求中没有携带令牌
var ErrNoToken = errors.New("authentication required: no token found in authorization header or cookie")

// SignedDetails 令牌中携带的用户身份
type SignedDetails struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// TokenIssuer 签发和验证 HS256 令牌
// 密钥来自配置，不写在源码中
type TokenIssuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer 密钥为空时返回错误
func NewTokenIssuer(secret, issuer string, ttl time.Duration) (*TokenIssuer, error) {
	if secret == "" {
		return nil, errors.New("SECRET_KEY is required but was empty")
	}
	if ttl <= 0 {
		return nil, errors.New("token ttl must be positive")
	}
	return &TokenIssuer{secret: []byte(secret), issuer: issuer, ttl: ttl, now: time.Now}, nil
}

// TTL 令牌有效期，用于设置 Cookie 的 MaxAge
func (t *TokenIssuer) TTL() time.Duration {
	return t.ttl
}

// Issue 为认证成功的用户签发令牌
func (t *TokenIssuer) Issue(userID, username string) (string, error) {
	now := t.now()
	claims := &SignedDetails{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Validate 验证签名、算法、签发者和有效期
// 只接受 HMAC 签名，防止算法替换攻击
func (t *TokenIssuer) Validate(tokenString string) (*SignedDetails, error) {
	claims := &SignedDetails{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	},
		jwt.WithIssuer(t.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.UserID == "" {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

// GetAccessToken 从请求中提取令牌
// 优先读取 Authorization 头（"JWT <token>" 或 "Bearer <token>"），其次读取 access_token Cookie
func GetAccessToken(c *gin.Context) (string, error) {
	if header := c.GetHeader("Authorization"); header != "" {
		scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
		if !found {
			return "", errors.New("malformed authorization header")
		}
		if !strings.EqualFold(scheme, TokenScheme) && !strings.EqualFold(scheme, "Bearer") {
			return "", fmt.Errorf("unsupported authorization scheme %q", scheme)
		}
		token = strings.TrimSpace(token)
		if token == "" {
			return "", errors.New("token is required")
		}
		return token, nil
	}

	tokenCookie, err := c.Cookie(AccessTokenCookie)
	if err != nil || tokenCookie == "" {
		return "", ErrNoToken
	}
	return tokenCookie, nil
}
