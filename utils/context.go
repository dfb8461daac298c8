// Package utils 提供令牌、密码和请求上下文相关的工具函数
package utils

import (
	"errors"

	"github.com/gin-gonic/gin"
)

// 认证中间件写入 gin.Context 的键
const (
	UserIDKey   = "userID"
	UsernameKey = "username"
)

func GetUserIdFromContext(c *gin.Context) (string, error) {
	userId, exists := c.Get(UserIDKey)
	if !exists {
		return "", errors.New("user ID not found in context")
	}
	id, ok := userId.(string)
	if !ok {
		return "", errors.New("user ID is not a string")
	}
	return id, nil
}

func GetUsernameFromContext(c *gin.Context) (string, error) {
	username, exists := c.Get(UsernameKey)
	if !exists {
		return "", errors.New("username not found in context")
	}
	name, ok := username.(string)
	if !ok || name == "" {
		return "", errors.New("username is not a string")
	}
	return name, nil
}
