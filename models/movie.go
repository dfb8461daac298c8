// Package models 定义存储在 MongoDB 中的文档结构以及请求/响应结构
package models

import (
	"go.mongodb.org/mongo-driver/v2/bson"
)

// Genres 允许的电影类型
var Genres = []string{
	"Action",
	"Adventure",
	"Comedy",
	"Drama",
	"Fantasy",
	"Horror",
	"Mystery",
	"Thriller",
	"Western",
	"Science Fiction",
}

// Movie 电影文档
// Title 是必填项，同时也是更新和删除时的查找键
type Movie struct {
	ID          bson.ObjectID `bson:"_id,omitempty" json:"_id"`
	Title       string        `bson:"title" json:"title" validate:"required,max=400"`
	ReleaseDate int           `bson:"releaseDate" json:"releaseDate" validate:"required,min=1900,max=2100"`
	Genre       string        `bson:"genre,omitempty" json:"genre,omitempty" validate:"omitempty,genre"`
	Actors      []string      `bson:"actors" json:"actors" validate:"dive,required,max=200"`
	ImageURL    string        `bson:"imageUrl,omitempty" json:"imageUrl,omitempty" validate:"omitempty,url"`
}

// MovieSummary 列表视图，AvgRating 由评论聚合得出，没有评论时为 null
type MovieSummary struct {
	Movie     `bson:",inline"`
	AvgRating *float64 `bson:"avgRating" json:"avgRating"`
}

// MovieDetail 单个电影连同它的全部评论
type MovieDetail struct {
	Movie     `bson:",inline"`
	AvgRating *float64 `bson:"avgRating" json:"avgRating"`
	Reviews   []Review `bson:"reviews" json:"reviews"`
}

// MoviePatch PUT /movies/:title 的部分更新，nil 字段不修改
type MoviePatch struct {
	ReleaseDate *int      `json:"releaseDate" validate:"omitempty,min=1900,max=2100"`
	Genre       *string   `json:"genre" validate:"omitempty,genre"`
	Actors      *[]string `json:"actors" validate:"omitempty,dive,required,max=200"`
	ImageURL    *string   `json:"imageUrl" validate:"omitempty,url"`
}

// IsEmpty 没有任何字段需要更新
func (p MoviePatch) IsEmpty() bool {
	return p.ReleaseDate == nil && p.Genre == nil && p.Actors == nil && p.ImageURL == nil
}

// SetDocument 生成 $set 的内容
func (p MoviePatch) SetDocument() bson.M {
	set := bson.M{}
	if p.ReleaseDate != nil {
		set["releaseDate"] = *p.ReleaseDate
	}
	if p.Genre != nil {
		set["genre"] = *p.Genre
	}
	if p.Actors != nil {
		set["actors"] = *p.Actors
	}
	if p.ImageURL != nil {
		set["imageUrl"] = *p.ImageURL
	}
	return set
}
