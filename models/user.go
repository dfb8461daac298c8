package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// User 用户账户，Password 只保存 bcrypt 哈希，永不输出到 JSON
type User struct {
	ID        bson.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string        `bson:"name" json:"name"`
	Username  string        `bson:"username" json:"username"`
	Password  string        `bson:"password" json:"-"`
	CreatedAt time.Time     `bson:"created_at" json:"created_at"`
}

// MaxPasswordBytes bcrypt 能处理的最大密码长度（字节）
const MaxPasswordBytes = 72

// SignupRequest 注册请求体
type SignupRequest struct {
	Name     string `json:"name" validate:"max=100"`
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,bcryptlen"`
}

// SigninRequest 登录请求体
type SigninRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse signup/signin 的响应格式
type AuthResponse struct {
	Success bool   `json:"success"`
	Msg     string `json:"msg,omitempty"`
	Token   string `json:"token,omitempty"`
}
