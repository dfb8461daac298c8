// Package database 封装 MongoDB 连接以及用户、电影、评论三个存储
package database

import (
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

const (
	// ErrNotFound 记录不存在（包括被删除或缺少 title 的电影）
	ErrNotFound Error = "not found"
	// ErrDuplicateIdentity 用户名已被注册
	ErrDuplicateIdentity Error = "duplicate identity"
	// ErrInvalidID 不是合法的 ObjectID
	ErrInvalidID Error = "invalid id"
)

// Error 存储层返回的错误类型
type Error string

func (e Error) Error() string { return string(e) }

// parseID 把十六进制字符串转换为 ObjectID
func parseID(id string) (bson.ObjectID, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return bson.NilObjectID, ErrInvalidID
	}
	return oid, nil
}

// queryErr 查询失败时用于指标统计，找不到文档不算失败
func queryErr(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil
	}
	return err
}
