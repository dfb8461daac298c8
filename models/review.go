package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Review 评论文档，MovieID 引用 Movie 的 _id
// 数据库不保证引用的电影存在，读取时要容忍孤立的引用
type Review struct {
	ID        bson.ObjectID `bson:"_id,omitempty" json:"_id"`
	MovieID   bson.ObjectID `bson:"movieId" json:"movieId"`
	Username  string        `bson:"username" json:"username"`
	Review    string        `bson:"review" json:"review"`
	Rating    int           `bson:"rating" json:"rating"`
	CreatedAt time.Time     `bson:"created_at" json:"created_at"`
}

// ReviewWithMovie 评论连同它引用的电影，电影不存在时 Movie 为 nil
type ReviewWithMovie struct {
	Review `bson:",inline"`
	Movie  *Movie `bson:"movie,omitempty" json:"movie,omitempty"`
}

// ReviewRequest 创建评论的请求体
// 用户名总是取自令牌，请求体中的 username 会被忽略
type ReviewRequest struct {
	MovieID string `json:"movieId" validate:"required"`
	Review  string `json:"review" validate:"required,max=5000"`
	Rating  *int   `json:"rating" validate:"required,min=0,max=5"`
}

// ReviewFilter 列表查询条件，MovieID 为空表示不过滤
type ReviewFilter struct {
	MovieID string
}
